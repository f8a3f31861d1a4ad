package web

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"subscription-billing/internal/domain/ports/repository"
	"subscription-billing/internal/infra/logging"
	"subscription-billing/internal/usecase"
)

type Server struct {
	paymentUC  usecase.PaymentUseCase
	webhookUC  usecase.WebhookUseCase
	planUC     usecase.PlanUseCase
	userPlanUC usecase.UserPlanUseCase
	couponUC   usecase.CouponUseCase
	notices    repository.NotificationLogRepository

	auth        *AuthManager
	adminSecret string
	log         *zerolog.Logger

	httpSrv *http.Server
}

func NewServer(
	paymentUC usecase.PaymentUseCase,
	webhookUC usecase.WebhookUseCase,
	planUC usecase.PlanUseCase,
	userPlanUC usecase.UserPlanUseCase,
	couponUC usecase.CouponUseCase,
	notices repository.NotificationLogRepository,
	auth *AuthManager,
	adminSecret string,
	logger *zerolog.Logger,
) *Server {
	srvLog := logger.With().Str("component", "web").Logger()
	return &Server{
		paymentUC:   paymentUC,
		webhookUC:   webhookUC,
		planUC:      planUC,
		userPlanUC:  userPlanUC,
		couponUC:    couponUC,
		notices:     notices,
		auth:        auth,
		adminSecret: adminSecret,
		log:         &srvLog,
	}
}

// Router builds the full route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(s.traceMiddleware)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(s.requestLog)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// gateway intake; no auth, the payload is validated and processed async
	r.Post("/webhooks/payment", s.webhookIntakeHandler())

	r.Route("/api/v1", func(r chi.Router) {
		// public surface
		r.Get("/plans", s.plansListHandler())
		r.Post("/coupons/validate", s.couponValidateHandler())
		r.Post("/auth/session", s.sessionHandler())

		// admin surface
		r.Group(func(r chi.Router) {
			r.Use(s.adminMiddleware)

			r.Post("/plans", s.planCreateHandler())
			r.Get("/plans/all", s.plansListAllHandler())
			r.Put("/plans/{id}", s.planUpdateHandler())
			r.Delete("/plans/{id}", s.planDeleteHandler())

			r.Post("/payments", s.paymentCreateHandler())
			r.Get("/payments", s.paymentListHandler())
			r.Get("/payments/{id}", s.paymentGetHandler())
			r.Post("/payments/{id}/process", s.paymentProcessHandler())
			r.Post("/payments/{id}/approve", s.paymentApproveHandler())
			r.Post("/payments/{id}/reject", s.paymentReasonHandler("reject"))
			r.Post("/payments/{id}/refund", s.paymentRefundHandler())
			r.Post("/payments/{id}/cancel", s.paymentReasonHandler("cancel"))
			r.Post("/payments/{id}/retry", s.paymentRetryHandler())
			r.Post("/payments/{id}/chargeback", s.paymentReasonHandler("chargeback"))
			r.Post("/payments/{id}/chargeback/resolve", s.paymentResolveChargebackHandler())

			r.Get("/user-plans/{id}", s.userPlanGetHandler())
			r.Post("/user-plans/{id}/cancel", s.userPlanCancelHandler())
			r.Post("/user-plans/{id}/metadata", s.userPlanMetadataHandler())

			r.Get("/users/{id}/payments", s.userPaymentsHandler())
			r.Get("/users/{id}/plans", s.userPlansHandler())
			r.Get("/users/{id}/notifications", s.userNotificationsHandler())

			r.Post("/coupons", s.couponCreateHandler())
			r.Get("/coupons", s.couponListHandler())
		})
	})

	return r
}

// Start blocks until the listener fails or Shutdown is called.
func (s *Server) Start(port int) error {
	s.httpSrv = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	s.log.Info().Int("port", port).Msg("http server listening")
	if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) traceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := logging.WithTraceID(r.Context(), uuid.NewString())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		l := logging.With(r.Context(), s.log)
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		l.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("http_request")
	})
}

// adminMiddleware requires a valid admin JWT minted by /auth/session.
func (s *Server) adminMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := s.auth.ParseFromRequest(r)
		if err != nil || claims.Role != "admin" {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
