package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"subscription-billing/internal/domain"
	"subscription-billing/internal/domain/model"
	"subscription-billing/internal/domain/ports/repository"
	"subscription-billing/internal/usecase"
)

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type errResponse struct {
	Error string `json:"error"`
}

// writeErr translates domain sentinels onto HTTP status codes.
func writeErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrCouponInactive),
		errors.Is(err, domain.ErrCouponExpired),
		errors.Is(err, domain.ErrCouponUsageCap),
		errors.Is(err, domain.ErrCouponNotApplicable):
		writeJSON(w, http.StatusBadRequest, errResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrConflict),
		errors.Is(err, domain.ErrAlreadyExists):
		writeJSON(w, http.StatusConflict, errResponse{Error: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, errResponse{Error: "internal error"})
	}
}

// ===== Auth =====

// sessionHandler exchanges the configured admin secret for a short-lived JWT.
func (s *Server) sessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Secret string `json:"secret"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if s.adminSecret == "" || req.Secret != s.adminSecret {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		token, err := s.auth.Mint(w)
		if err != nil {
			http.Error(w, "Failed to mint session", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"token": token})
	}
}

// ===== Webhooks =====

type webhookEnvelope struct {
	Gateway              string  `json:"gateway"`
	EventType            string  `json:"event_type"`
	PaymentID            string  `json:"payment_id"`
	GatewayTransactionID string  `json:"txid"`
	AuthorizationCode    *string `json:"authorization_code,omitempty"`
	ErrorCode            *string `json:"error_code,omitempty"`
	ErrorMessage         *string `json:"error_message,omitempty"`
	EndToEndID           *string `json:"end_to_end_id,omitempty"`
}

func (s *Server) webhookIntakeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var env webhookEnvelope
		if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		ingestID, err := s.webhookUC.Accept(r.Context(), model.WebhookEvent{
			Gateway:              env.Gateway,
			EventType:            env.EventType,
			PaymentID:            env.PaymentID,
			GatewayTransactionID: env.GatewayTransactionID,
			AuthorizationCode:    env.AuthorizationCode,
			ErrorCode:            env.ErrorCode,
			ErrorMessage:         env.ErrorMessage,
			EndToEndID:           env.EndToEndID,
			ReceivedAt:           time.Now(),
		})
		if err != nil {
			// a bad envelope is logged and dropped, never bounced: gateways
			// retry non-2xx responses and we have nothing to retry for
			if errors.Is(err, domain.ErrValidation) {
				s.log.Warn().Err(err).Str("gateway", env.Gateway).Str("event", env.EventType).Msg("webhook event dropped")
				writeJSON(w, http.StatusOK, map[string]string{"status": "dropped"})
				return
			}
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"ingest_id": ingestID})
	}
}

// ===== Plans =====

type planRequest struct {
	Name         string             `json:"name"`
	Description  string             `json:"description"`
	Price        int64              `json:"price"`
	Currency     string             `json:"currency"`
	DurationDays int                `json:"duration_days"`
	Interval     model.PlanInterval `json:"billing_interval"`
	IsActive     bool               `json:"is_active"`
	IsPublic     bool               `json:"is_public"`
	Features     []string           `json:"features"`
	Limits       model.PlanLimits   `json:"limits"`
}

func (req *planRequest) toModel(id string) *model.Plan {
	return &model.Plan{
		ID:           id,
		Name:         req.Name,
		Description:  req.Description,
		Price:        req.Price,
		Currency:     req.Currency,
		DurationDays: req.DurationDays,
		Interval:     req.Interval,
		IsActive:     req.IsActive,
		IsPublic:     req.IsPublic,
		Features:     req.Features,
		Limits:       req.Limits,
	}
}

func (s *Server) planCreateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req planRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		plan, err := s.planUC.Create(r.Context(), req.toModel(""))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, plan)
	}
}

func (s *Server) planUpdateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req planRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		plan, err := s.planUC.Update(r.Context(), req.toModel(chi.URLParam(r, "id")))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, plan)
	}
}

func (s *Server) planDeleteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.planUC.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
			writeErr(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) plansListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		plans, err := s.planUC.ListPublic(r.Context())
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, struct {
			Data []*model.Plan `json:"data"`
		}{Data: plans})
	}
}

func (s *Server) plansListAllHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		plans, err := s.planUC.ListAll(r.Context())
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, struct {
			Data []*model.Plan `json:"data"`
		}{Data: plans})
	}
}

// ===== Payments =====

type paymentCreateRequest struct {
	UserID      string                 `json:"user_id"`
	PlanID      string                 `json:"plan_id"`
	Method      model.PaymentMethod    `json:"payment_method"`
	CouponCode  string                 `json:"coupon_code"`
	AutoRenew   bool                   `json:"auto_renew"`
	TrialEndsAt *time.Time             `json:"trial_ends_at,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

func (s *Server) paymentCreateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req paymentCreateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		p, err := s.paymentUC.Create(r.Context(), usecase.CreatePaymentInput{
			UserID:      req.UserID,
			PlanID:      req.PlanID,
			Method:      req.Method,
			CouponCode:  req.CouponCode,
			AutoRenew:   req.AutoRenew,
			TrialEndsAt: req.TrialEndsAt,
			Metadata:    req.Metadata,
		})
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, p)
	}
}

func (s *Server) paymentProcessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := s.paymentUC.Process(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

type paymentApproveRequest struct {
	ExternalID      *string                `json:"external_id,omitempty"`
	ReceiptURL      *string                `json:"receipt_url,omitempty"`
	EndToEndID      *string                `json:"end_to_end_id,omitempty"`
	TransactionData map[string]interface{} `json:"transaction_data,omitempty"`
}

func (s *Server) paymentApproveHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req paymentApproveRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		p, err := s.paymentUC.Approve(r.Context(), chi.URLParam(r, "id"), usecase.ApproveInput{
			ExternalID:      req.ExternalID,
			ReceiptURL:      req.ReceiptURL,
			EndToEndID:      req.EndToEndID,
			TransactionData: req.TransactionData,
		})
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

type reasonRequest struct {
	Reason string `json:"reason"`
}

// paymentReasonHandler serves the transitions that only carry a reason.
func (s *Server) paymentReasonHandler(verb string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req reasonRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		id := chi.URLParam(r, "id")

		var p *model.Payment
		var err error
		switch verb {
		case "reject":
			p, err = s.paymentUC.Reject(r.Context(), id, req.Reason)
		case "cancel":
			p, err = s.paymentUC.Cancel(r.Context(), id, req.Reason)
		case "chargeback":
			p, err = s.paymentUC.Chargeback(r.Context(), id, req.Reason)
		default:
			http.Error(w, "Unknown action", http.StatusNotFound)
			return
		}
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

type refundRequest struct {
	Reason     string `json:"reason"`
	RefundedBy string `json:"refunded_by"`
}

func (s *Server) paymentRefundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req refundRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		p, err := s.paymentUC.Refund(r.Context(), chi.URLParam(r, "id"), req.Reason, req.RefundedBy)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

func (s *Server) paymentRetryHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := s.paymentUC.Retry(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

func (s *Server) paymentResolveChargebackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := s.paymentUC.ResolveChargeback(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

func (s *Server) paymentGetHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := s.paymentUC.GetByID(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

func (s *Server) paymentListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		limit, _ := strconv.Atoi(q.Get("limit"))
		payments, err := s.paymentUC.List(r.Context(), repository.PaymentFilter{
			Status: model.PaymentStatus(q.Get("status")),
			Method: model.PaymentMethod(q.Get("method")),
			Limit:  limit,
		})
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, struct {
			Data []*model.Payment `json:"data"`
		}{Data: payments})
	}
}

// ===== User plans =====

func (s *Server) userPlanGetHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		up, err := s.userPlanUC.GetByID(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, up)
	}
}

func (s *Server) userPlanCancelHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req reasonRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		up, err := s.userPlanUC.Cancel(r.Context(), nil, chi.URLParam(r, "id"), req.Reason)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, up)
	}
}

func (s *Server) userPlanMetadataHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if err := s.userPlanUC.UpdateMetadata(r.Context(), chi.URLParam(r, "id"), req); err != nil {
			writeErr(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) userPaymentsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payments, err := s.paymentUC.ListByUser(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, struct {
			Data []*model.Payment `json:"data"`
		}{Data: payments})
	}
}

func (s *Server) userPlansHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		plans, err := s.userPlanUC.FindByUser(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, struct {
			Data []*model.UserPlan `json:"data"`
		}{Data: plans})
	}
}

func (s *Server) userNotificationsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		notices, err := s.notices.FindByUser(r.Context(), nil, chi.URLParam(r, "id"), limit)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, struct {
			Data []*model.Notification `json:"data"`
		}{Data: notices})
	}
}

// ===== Coupons =====

type couponCreateRequest struct {
	Code              string             `json:"code"`
	DiscountType      model.DiscountType `json:"discount_type"`
	DiscountValue     int64              `json:"discount_value"`
	ExpirationDate    *time.Time         `json:"expiration_date,omitempty"`
	MaxUses           *int               `json:"max_uses,omitempty"`
	ApplicablePlanIDs []string           `json:"applicable_plan_ids,omitempty"`
	CreatedBy         string             `json:"created_by"`
}

func (s *Server) couponCreateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req couponCreateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		c, err := s.couponUC.Create(r.Context(), &model.Coupon{
			Code:              req.Code,
			DiscountType:      req.DiscountType,
			DiscountValue:     req.DiscountValue,
			ExpirationDate:    req.ExpirationDate,
			MaxUses:           req.MaxUses,
			ApplicablePlanIDs: req.ApplicablePlanIDs,
			CreatedBy:         req.CreatedBy,
		})
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, c)
	}
}

type couponValidateRequest struct {
	Code   string `json:"code"`
	PlanID string `json:"plan_id"`
	Amount int64  `json:"amount"`
}

func (s *Server) couponValidateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req couponValidateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		c, discount, err := s.couponUC.Validate(r.Context(), nil, req.Code, req.PlanID, req.Amount)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, struct {
			Code     string `json:"code"`
			Discount int64  `json:"discount"`
			Total    int64  `json:"total"`
		}{Code: c.Code, Discount: discount, Total: req.Amount - discount})
	}
}

func (s *Server) couponListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		coupons, err := s.couponUC.ListActive(r.Context())
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, struct {
			Data []*model.Coupon `json:"data"`
		}{Data: coupons})
	}
}
