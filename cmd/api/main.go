package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/retailware/tillpoint-backend/api/routes"
	"github.com/retailware/tillpoint-backend/internal/credits"
	"github.com/retailware/tillpoint-backend/internal/customers"
	"github.com/retailware/tillpoint-backend/internal/fiscal"
	"github.com/retailware/tillpoint-backend/internal/giftcards"
	"github.com/retailware/tillpoint-backend/internal/loyalty"
	"github.com/retailware/tillpoint-backend/internal/products"
	"github.com/retailware/tillpoint-backend/internal/sales"
	"github.com/retailware/tillpoint-backend/internal/settlement"
	"github.com/retailware/tillpoint-backend/pkg/config"
	"github.com/retailware/tillpoint-backend/pkg/db"
	"github.com/retailware/tillpoint-backend/pkg/logger"
	"github.com/retailware/tillpoint-backend/pkg/migrate"
	"github.com/retailware/tillpoint-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
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
	productRepo := products.NewRepository(conn)
	customerRepo := customers.NewRepository(conn)
	cardRepo := giftcards.NewRepository(conn)
	loyaltyRepo := loyalty.NewRepository(conn)
	creditRepo := credits.NewRepository(conn)
	saleRepo := sales.NewRepository(conn)
	fiscalRepo := fiscal.NewRepository(conn)

	fiscalSvc := fiscal.NewService(fiscalRepo, redisClient, cfg.Fiscal, logg)
	creditSvc := credits.NewService(creditRepo)
	loyaltySvc := loyalty.NewService(loyaltyRepo, customerRepo)
	cardSvc := giftcards.NewService(cardRepo, dbClient, saleRepo, fiscalSvc, cfg.GiftCards, logg)
	saleSvc := sales.NewService(saleRepo, dbClient, productRepo, creditSvc)
	settlementSvc := settlement.NewService(
		dbClient,
		productRepo,
		customerRepo,
		cardRepo,
		cardSvc,
		loyaltySvc,
		creditRepo,
		saleRepo,
		cfg.Loyalty,
		logg,
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.New(routes.Deps{
			Config:     cfg,
			Logger:     logg,
			DB:         dbClient,
			Redis:      redisClient,
			Settlement: settlementSvc,
			Sales:      saleSvc,
			GiftCards:  cardSvc,
			Loyalty:    loyaltySvc,
			Fiscal:     fiscalSvc,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
