package main

import (
	"context"
	"log"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/SimalChaudhari/rebook-aI-backend/api/handler"
	"github.com/SimalChaudhari/rebook-aI-backend/internal/config"
	"github.com/SimalChaudhari/rebook-aI-backend/internal/infrastructure/monitor"
	"github.com/SimalChaudhari/rebook-aI-backend/internal/infrastructure/outbox"
	pgInfra "github.com/SimalChaudhari/rebook-aI-backend/internal/infrastructure/postgres"
	redisInfra "github.com/SimalChaudhari/rebook-aI-backend/internal/infrastructure/redis"
	"github.com/SimalChaudhari/rebook-aI-backend/internal/infrastructure/whatsapp"
	"github.com/SimalChaudhari/rebook-aI-backend/internal/router"
	"github.com/SimalChaudhari/rebook-aI-backend/internal/services"
	"github.com/SimalChaudhari/rebook-aI-backend/internal/services/lifecycle"
	"github.com/SimalChaudhari/rebook-aI-backend/pkg/httpcontext"
	"github.com/SimalChaudhari/rebook-aI-backend/pkg/logger"
	"github.com/SimalChaudhari/rebook-aI-backend/repository/postgres"
	redisRepo "github.com/SimalChaudhari/rebook-aI-backend/repository/redis"
	analyticsUC "github.com/SimalChaudhari/rebook-aI-backend/usecase/analytics"
	businessUC "github.com/SimalChaudhari/rebook-aI-backend/usecase/business"
	customerUC "github.com/SimalChaudhari/rebook-aI-backend/usecase/customer"
	referralUC "github.com/SimalChaudhari/rebook-aI-backend/usecase/referral"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
		zapLogger.Fatal("migrations failed", zap.Error(err))
	}

	pool, err := pgInfra.NewPool(appCtx, cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("postgres connection failed", zap.Error(err))
	}
	manager.Register("postgres", func(ctx context.Context) error {
		pool.Close()
		return nil
	})

	redisClient, err := redisInfra.NewClient(cfg.Redis)
	if err != nil {
		zapLogger.Fatal("redis connection failed", zap.Error(err))
	}
	manager.Register("redis", func(ctx context.Context) error {
		return redisClient.Close()
	})

	outboxStore, err := outbox.Open(cfg.Outbox.Path, "outbox")
	if err != nil {
		zapLogger.Fatal("failed to open outbox store", zap.Error(err))
	}
	manager.Register("outbox", func(ctx context.Context) error {
		return outboxStore.Close()
	})

	mon := monitor.New(pool, redisClient, outboxStore, 10*time.Second, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	customerRepo := postgres.NewCustomerRepository(pool)
	visitRepo := postgres.NewVisitRepository(pool)
	paymentRepo := postgres.NewPaymentRepository(pool)
	ratingRepo := postgres.NewRatingRepository(pool)
	businessRepo := postgres.NewBusinessRepository(pool)
	referralRepo := postgres.NewReferralRepository(pool)
	messageLog := redisRepo.NewMessageLog(redisClient, time.Duration(cfg.Outbox.RetentionHours)*time.Hour)

	waClient := whatsapp.NewClient(whatsapp.Config{
		BaseURL: cfg.WhatsApp.BaseURL,
		APIKey:  cfg.WhatsApp.APIKey,
		Timeout: cfg.WhatsApp.Timeout,
	})

	notifier := services.NewNotifier(waClient, messageLog, outboxStore, mon, zapLogger, services.NotifierConfig{
		DrainInterval: cfg.Outbox.DrainInterval,
		BatchSize:     cfg.Outbox.BatchSize,
		MaxRetries:    cfg.Outbox.MaxRetry,
	})
	notifier.Start()
	manager.Register("notifier", func(ctx context.Context) error {
		notifier.Stop(ctx)
		return nil
	})

	customerUseCase := customerUC.New(customerRepo, visitRepo, paymentRepo, ratingRepo, businessRepo, notifier, zapLogger)
	analyticsUseCase := analyticsUC.New(customerRepo, zapLogger)
	businessUseCase := businessUC.New(businessRepo, zapLogger)
	referralUseCase := referralUC.New(referralRepo, customerRepo, businessRepo, notifier, cfg.Referral.BaseURL, zapLogger)

	reclassifier, err := services.NewReclassifier(customerUseCase, cfg.Reclassify.Schedule, zapLogger)
	if err != nil {
		zapLogger.Fatal("invalid reclassify schedule", zap.Error(err))
	}
	reclassifier.Start()
	manager.Register("reclassifier", func(ctx context.Context) error {
		reclassifier.Stop(ctx)
		return nil
	})

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Webhook:   apiHandler.NewWebhookHandler(customerUseCase, cfg.Webhook.VerifyToken, ctxAdapter, zapLogger),
		Customer:  apiHandler.NewCustomerHandler(customerUseCase, ctxAdapter, zapLogger),
		Dashboard: apiHandler.NewDashboardHandler(analyticsUseCase, ctxAdapter, zapLogger),
		Review:    apiHandler.NewReviewHandler(customerUseCase, ctxAdapter, zapLogger),
		Referral:  apiHandler.NewReferralHandler(referralUseCase, ctxAdapter, zapLogger),
		Business:  apiHandler.NewBusinessHandler(businessUseCase, ctxAdapter, zapLogger),
		Health:    apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	r := router.New(handlers)

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started", zap.String("address", cfg.Address()))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.Shutdown()
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
