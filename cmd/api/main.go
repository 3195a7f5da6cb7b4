package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/billfoldhq/billfold-backend/api/routes"
	"github.com/billfoldhq/billfold-backend/internal/apikeys"
	"github.com/billfoldhq/billfold-backend/internal/categories"
	"github.com/billfoldhq/billfold-backend/internal/extraction"
	"github.com/billfoldhq/billfold-backend/internal/feedback"
	"github.com/billfoldhq/billfold-backend/internal/inventory"
	"github.com/billfoldhq/billfold-backend/internal/invoices"
	"github.com/billfoldhq/billfold-backend/internal/ocr"
	"github.com/billfoldhq/billfold-backend/internal/organizations"
	"github.com/billfoldhq/billfold-backend/internal/reports"
	"github.com/billfoldhq/billfold-backend/internal/vendors"
	"github.com/billfoldhq/billfold-backend/pkg/auth/session"
	"github.com/billfoldhq/billfold-backend/pkg/config"
	"github.com/billfoldhq/billfold-backend/pkg/db"
	"github.com/billfoldhq/billfold-backend/pkg/logger"
	"github.com/billfoldhq/billfold-backend/pkg/metrics"
	"github.com/billfoldhq/billfold-backend/pkg/migrate"
	"github.com/billfoldhq/billfold-backend/pkg/redis"
	"github.com/billfoldhq/billfold-backend/pkg/storage/gcs"
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

	gcsClient, err := gcs.NewClient(context.Background(), cfg.GCS, cfg.GCP, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap gcs", err)
		os.Exit(1)
	}
	defer func() {
		if err := gcsClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing gcs", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	orgRepo := organizations.NewRepository(dbClient.DB())
	invoiceRepo := invoices.NewRepository(dbClient.DB())
	categoryRepo := categories.NewRepository(dbClient.DB())
	vendorRepo := vendors.NewRepository(dbClient.DB())
	inventoryRepo := inventory.NewRepository(dbClient.DB())
	feedbackRepo := feedback.NewRepository(dbClient.DB())
	apiKeyRepo := apikeys.NewRepository(dbClient.DB())

	orgService, err := organizations.NewService(orgRepo)
	requireService(logg, "organizations", err)

	invoiceService, err := invoices.NewService(invoiceRepo, categoryRepo, vendorRepo, dbClient, logg)
	requireService(logg, "invoices", err)

	extractionService, err := extraction.NewService(
		invoiceRepo,
		orgRepo,
		gcsClient,
		ocr.NewChain(cfg.OCR, logg),
		cfg.Upload,
		cfg.GCS,
		logg,
	)
	requireService(logg, "extraction", err)

	categoryService, err := categories.NewService(categoryRepo, invoiceRepo)
	requireService(logg, "categories", err)

	vendorService, err := vendors.NewService(vendorRepo, invoiceRepo)
	requireService(logg, "vendors", err)

	inventoryService, err := inventory.NewService(inventoryRepo, invoiceRepo, dbClient, logg)
	requireService(logg, "inventory", err)

	feedbackService, err := feedback.NewService(feedbackRepo, dbClient)
	requireService(logg, "feedback", err)

	reportService, err := reports.NewService(invoiceRepo, categoryRepo, logg)
	requireService(logg, "reports", err)

	apiKeyService, err := apikeys.NewService(apiKeyRepo, cfg.APIKey, logg)
	requireService(logg, "api keys", err)

	httpMetrics := metrics.NewHTTPMetrics(prometheus.DefaultRegisterer)

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
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			gcsClient,
			sessionManager,
			httpMetrics,
			orgService,
			invoiceService,
			extractionService,
			categoryService,
			vendorService,
			inventoryService,
			feedbackService,
			reportService,
			apiKeyService,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func requireService(logg *logger.Logger, name string, err error) {
	if err == nil {
		return
	}
	logg.Error(context.Background(), "failed to create "+name+" service", err)
	os.Exit(1)
}
