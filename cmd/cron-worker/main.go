package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/retailware/tillpoint-backend/internal/credits"
	"github.com/retailware/tillpoint-backend/internal/cron"
	"github.com/retailware/tillpoint-backend/internal/fiscal"
	"github.com/retailware/tillpoint-backend/internal/giftcards"
	"github.com/retailware/tillpoint-backend/internal/sales"
	"github.com/retailware/tillpoint-backend/pkg/config"
	"github.com/retailware/tillpoint-backend/pkg/db"
	"github.com/retailware/tillpoint-backend/pkg/logger"
	"github.com/retailware/tillpoint-backend/pkg/metrics"
	"github.com/retailware/tillpoint-backend/pkg/migrate"
	"github.com/retailware/tillpoint-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "cron-worker"

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	conn := dbClient.DB()
	saleRepo := sales.NewRepository(conn)
	cardRepo := giftcards.NewRepository(conn)
	creditRepo := credits.NewRepository(conn)
	fiscalRepo := fiscal.NewRepository(conn)

	fiscalSvc := fiscal.NewService(fiscalRepo, redisClient, cfg.Fiscal, logg)
	cardSvc := giftcards.NewService(cardRepo, dbClient, saleRepo, fiscalSvc, cfg.GiftCards, logg)
	creditSvc := credits.NewService(creditRepo)

	expiryJob, err := cron.NewGiftCardExpiryJob(cron.GiftCardExpiryJobParams{
		Logger:    logg,
		GiftCards: cardSvc,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create gift card expiry job", err)
		os.Exit(1)
	}
	overdueJob, err := cron.NewCreditOverdueJob(cron.CreditOverdueJobParams{
		Logger:  logg,
		Credits: creditSvc,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create credit overdue job", err)
		os.Exit(1)
	}

	lock, err := cron.NewRedisLock(redisClient, redisClient.LockKey("cron-worker"), cfg.Cron.LockTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(expiryJob, overdueJob),
		Lock:     lock,
		Metrics:  metrics.NewJobMetrics(prometheus.DefaultRegisterer),
		Interval: cfg.Cron.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
	})
	logg.Info(ctx, "starting cron worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}
