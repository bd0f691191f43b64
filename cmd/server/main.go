package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jafarshop/stockimport/internal/api"
	"github.com/jafarshop/stockimport/internal/config"
	"github.com/jafarshop/stockimport/internal/fingerprint"
	"github.com/jafarshop/stockimport/internal/freepik"
	"github.com/jafarshop/stockimport/internal/repository"
	"github.com/jafarshop/stockimport/internal/repository/postgres"
	"github.com/jafarshop/stockimport/internal/service"
	"github.com/jafarshop/stockimport/internal/shopify"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("Starting stock import server",
		zap.String("port", cfg.Port),
		zap.String("environment", cfg.Environment),
		zap.String("shop", cfg.Shopify.ShopDomain),
		zap.Int("index_max_pages", cfg.Index.MaxPages),
		zap.Bool("import_precheck", cfg.Import.Precheck),
	)

	hasher, err := fingerprint.NewHasher(cfg.Index.FingerprintLength)
	if err != nil {
		logger.Fatal("Invalid fingerprint length", zap.Error(err))
	}

	// One client for every outbound call; its timeout bounds Freepik and Shopify requests
	httpClient := &http.Client{Timeout: cfg.HTTPClient.Timeout}

	freepikClient := freepik.NewClient(cfg.Freepik, httpClient, logger)
	shopifyClient := shopify.NewClient(cfg.Shopify, httpClient, logger)
	index := service.NewIndexBuilder(shopifyClient, service.DefaultExtractors(hasher), cfg.Index.MaxPages, logger)

	svcs := &api.Services{
		Search:   service.NewSearchService(freepikClient, index, hasher, logger),
		Importer: service.NewImporter(shopifyClient, index, cfg.Import, hasher, logger),
		Index:    index,
		OAuth:    shopify.NewOAuth(cfg.OAuth, httpClient, logger),
	}

	// Idempotency store is optional
	var repos *repository.Repositories
	if cfg.Database.Enabled() {
		var db *sql.DB
		db, err = postgres.NewConnection(cfg.Database)
		if err != nil {
			logger.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer db.Close()

		if err := postgres.RunMigrations(context.Background(), db); err != nil {
			logger.Fatal("Failed to run migrations", zap.Error(err))
		}
		repos = postgres.NewRepositories(db, logger)
		logger.Info("Idempotency store enabled")
	} else {
		logger.Info("No database configured, Idempotency-Key headers are ignored")
	}

	// Initialize router
	router := api.NewRouter(cfg, svcs, repos, logger)

	// Index builds page through several listings, so writes get a generous timeout
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	logger.Info("Server started successfully", zap.String("address", srv.Addr))

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	zcfg := zap.NewDevelopmentConfig()
	if cfg.Environment == "production" {
		zcfg = zap.NewProductionConfig()
	}
	if cfg.LogLevel != "" {
		level, err := zap.ParseAtomicLevel(cfg.LogLevel)
		if err != nil {
			return nil, err
		}
		zcfg.Level = level
	}
	return zcfg.Build()
}
