package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"subscription-billing/internal/config"
	"subscription-billing/internal/infra/cache"
	pg "subscription-billing/internal/infra/db/postgres"
	gw "subscription-billing/internal/infra/gateway"
	"subscription-billing/internal/infra/logging"
	"subscription-billing/internal/infra/metrics"
	"subscription-billing/internal/infra/notify"
	red "subscription-billing/internal/infra/redis"
	"subscription-billing/internal/infra/sched"
	"subscription-billing/internal/infra/web"
	"subscription-billing/internal/infra/worker"
	"subscription-billing/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("developer mode enabled")
	}

	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.Connect(ctx, cfg.Database.URL)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres connect failed")
	}
	defer pool.Close()

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis connect failed")
	}
	defer redisClient.Close()
	deduper := red.NewEventDeduper(redisClient)

	// ---- Repositories ----
	txm := pg.NewTxManager(pool)
	planStore := cache.NewTTLStore(cfg.Cache.PlanTTL)
	planRepo := pg.NewPlanRepoCacheDecorator(pg.NewPlanRepo(pool), planStore)
	paymentRepo := pg.NewPaymentRepo(pool)
	userPlanRepo := pg.NewUserPlanRepo(pool)
	couponRepo := pg.NewCouponRepo(pool)
	transferRepo := pg.NewInstantTransferRepo(pool)
	cardRepo := pg.NewCardTransactionRepo(pool)
	noticeRepo := pg.NewNotificationLogRepo(pool)

	// ---- Adapters ----
	gateway := gw.NewHTTPGateway(cfg.Payment.Gateway.Name, cfg.Payment.Gateway.BaseURL, cfg.Payment.Gateway.APIKey)
	notifier := notify.NewLogNotifier(noticeRepo, *logger)

	// ---- Use cases ----
	planUC := usecase.NewPlanUseCase(planRepo)
	couponUC := usecase.NewCouponUseCase(couponRepo)
	userPlanUC := usecase.NewUserPlanUseCase(userPlanRepo)
	paymentUC := usecase.NewPaymentUseCase(
		paymentRepo, transferRepo, cardRepo, planRepo,
		couponUC, userPlanUC, gateway, notifier, txm,
		cfg.Payment.PayCodeTTL, *logger,
	)

	pool2 := worker.NewPool(cfg.Webhook.Workers, cfg.Webhook.Queue, *logger)
	pool2.Start(ctx)
	defer pool2.Stop()

	webhookUC := usecase.NewWebhookUseCase(
		paymentUC, transferRepo, cardRepo, deduper, pool2,
		cfg.Webhook.Gateways, cfg.Webhook.DedupTTL, *logger,
	)

	// ---- Background workers ----
	expiry := sched.NewExpiryWorker(cfg.Sweep.Interval, userPlanUC, logger)
	go func() { _ = expiry.Run(ctx) }()

	reconciler := sched.NewPaymentReconciler(paymentUC, cfg.Reconciler.Interval, cfg.Reconciler.Batch, logger)
	go func() { _ = reconciler.Run(ctx) }()

	// ---- HTTP server ----
	auth := web.NewAuthManager(cfg.Server.AdminSecret, !cfg.Runtime.Dev, 30*time.Minute)
	srv := web.NewServer(paymentUC, webhookUC, planUC, userPlanUC, couponUC, noticeRepo, auth, cfg.Server.AdminSecret, logger)
	go func() {
		if err := srv.Start(cfg.Server.Port); err != nil {
			logger.Error().Err(err).Msg("http server error")
			cancel()
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigc:
		logger.Info().Msg("shutdown requested")
	case <-ctx.Done():
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown error")
	}
	cancel()
}
