package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bagvo/internal/config"
	"bagvo/internal/coupon"
	"bagvo/internal/database"
	"bagvo/internal/events"
	"bagvo/internal/handler"
	"bagvo/internal/repository"
	"bagvo/internal/router"
	"bagvo/internal/service"

	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting bagvo API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, pool, logger); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	// Initialize repositories
	productRepo := repository.NewProductRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	addressRepo := repository.NewAddressRepository(pool, logger)
	couponRepo := repository.NewCouponRepository(pool, logger)
	settingsRepo := repository.NewSettingsRepository(pool, logger)
	statsRepo := repository.NewStatsRepository(pool, logger)

	txConfig := repository.DefaultTxConfig()
	txConfig.MaxAttempts = cfg.Order.TxMaxAttempts
	txRunner := repository.NewTxRunner(pool, txConfig, logger)

	importCoupons(ctx, cfg, couponRepo, logger)

	publisher, err := newPublisher(cfg.Kafka, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize event publisher: %w", err)
	}
	defer publisher.Close()

	// Initialize services
	settingsService := service.NewSettingsService(settingsRepo, logger)
	productService := service.NewProductService(productRepo, logger)
	orderService := service.NewOrderService(
		txRunner,
		orderRepo,
		productRepo,
		addressRepo,
		coupon.NewValidator(couponRepo, logger),
		settingsService,
		publisher,
		service.OrderPolicy{
			StrictVariantValidation: cfg.Order.StrictVariantValidation,
			StrictPaymentMethod:     cfg.Order.StrictPaymentMethod,
		},
		logger,
	)
	statsService := service.NewStatsService(statsRepo, logger)

	// Initialize HTTP handlers
	productHandler := handler.NewProductHandler(productService, logger)
	orderHandler := handler.NewOrderHandler(orderService, logger)
	adminHandler := handler.NewAdminHandler(settingsService, statsService, logger)

	// Initialize router
	mux := router.New(productHandler, orderHandler, adminHandler, cfg.Auth.AdminAPIKey, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}

// importCoupons loads the configured catalogues into the coupon store.
// A failed import is logged and the server keeps serving the coupons already stored.
func importCoupons(ctx context.Context, cfg *config.Config, coupons repository.CouponRepository, logger zerolog.Logger) {
	if len(cfg.Coupon.CatalogPaths) == 0 {
		logger.Info().Msg("no coupon catalogues configured")
		return
	}

	fileLoader := coupon.NewFileLoader(logger)
	var s3Loader coupon.Loader

	if cfg.S3.Enabled {
		loader, err := coupon.NewS3Loader(ctx, cfg.S3.Bucket, cfg.S3.Region, logger)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to initialise S3 loader, falling back to local file system only")
		} else {
			s3Loader = loader
		}
	} else {
		logger.Info().Msg("using local file system for coupon files (S3 disabled)")
	}

	loader := coupon.NewFallbackLoader(s3Loader, fileLoader, cfg.S3.Prefix, s3Loader != nil, logger)

	imported, err := coupon.NewImporter(loader, coupons, logger).Import(ctx, cfg.Coupon.CatalogPaths)
	if err != nil {
		logger.Error().Err(err).Int("imported", imported).Msg("coupon import incomplete")
		return
	}
	logger.Info().Int("imported", imported).Msg("coupon catalogues imported")
}

func newPublisher(cfg config.KafkaConfig, logger zerolog.Logger) (events.Publisher, error) {
	if !cfg.Enabled {
		logger.Info().Msg("kafka disabled, order events are discarded")
		return events.NopPublisher{}, nil
	}

	publisher, err := events.NewKafkaPublisher(events.KafkaConfig{
		Brokers:  cfg.Brokers,
		Topic:    cfg.Topic,
		Username: cfg.Username,
		Password: cfg.Password,
	}, logger)
	if err != nil {
		return nil, err
	}
	return publisher, nil
}
