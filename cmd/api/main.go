package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"slotbook/internal/api"
	"slotbook/internal/config"
	"slotbook/internal/database"
	"slotbook/internal/domain"
	"slotbook/internal/events"
	"slotbook/internal/gateway"
	"slotbook/internal/logging"
	"slotbook/internal/metrics"
	"slotbook/internal/repository"
	"slotbook/internal/service"
	"slotbook/internal/storage"
	"slotbook/internal/validation"
	"slotbook/internal/worker"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}
	if err := cfg.ValidateServer(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewDB(cfg.Database, &logger)
	if err != nil {
		logger.Error().Err(err).Str("driver", cfg.Database.Driver).Msg("init database")
		return err
	}
	defer db.Close()

	if cfg.Database.Driver == database.DriverSQLite {
		backup := database.NewBackupService(cfg.Database.Path, cfg.Backup, &logger)
		go func() {
			if err := backup.Start(ctx); err != nil {
				logger.Error().Err(err).Msg("backup service stopped")
			}
		}()
	}

	redisClient := initRedis(ctx, cfg, &logger)
	if redisClient != nil {
		defer func() { _ = repository.Close(redisClient) }()
	}
	state := initStateRepository(redisClient, &logger)

	if cfg.Monitoring.PrometheusEnabled {
		metrics.Register()
	}
	bus := events.NewEventBus()
	events.SubscribeMetrics(bus)
	events.SubscribeAudit(bus, &logger)

	gw, err := gateway.New(cfg.Gateway, &logger)
	if err != nil {
		return fmt.Errorf("init gateway: %w", err)
	}
	uploader, err := storage.New(cfg.Uploads, &logger)
	if err != nil {
		return fmt.Errorf("init uploads: %w", err)
	}

	deps, err := buildServices(ctx, cfg, db, state, bus, gw, uploader, &logger)
	if err != nil {
		return err
	}
	httpServer := api.NewHTTPServer(cfg.API, cfg.Uploads.MaxSizeMB, deps, &logger)

	if cfg.Monitoring.PrometheusEnabled {
		go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, &logger)
	}
	if cfg.Sweeper.Enabled {
		sweeper := worker.NewOrderSweeper(db, cfg.Sweeper.Schedule, cfg.Sweeper.OrderTTL, worker.RetryPolicy{}, &logger)
		go func() {
			if err := sweeper.Start(ctx); err != nil {
				logger.Error().Err(err).Msg("order sweeper stopped")
			}
		}()
	}

	return startServer(ctx, httpServer, cfg, &logger)
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := baseLogger.With().Str("component", "api-main").Logger()

	return cfg, logger, closer, nil
}

func initRedis(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if cfg.Redis.Address == "" {
		return nil
	}

	redisClient := repository.NewRedisClient(cfg.Redis)
	if err := repository.Ping(ctx, redisClient); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, starting on in-memory state")
		// The failover repository keeps probing, so the client stays open.
		return redisClient
	}

	logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	return redisClient
}

func initStateRepository(redisClient *redis.Client, logger *zerolog.Logger) domain.StateRepository {
	memory := repository.NewMemoryStateRepository()
	if redisClient == nil {
		logger.Info().Msg("redis not configured, idempotency and login limits are process-local")
		return memory
	}
	return repository.NewFailoverStateRepository(repository.NewRedisStateRepository(redisClient), memory, logger)
}

func buildServices(
	ctx context.Context,
	cfg *config.Config,
	db *database.DB,
	state domain.StateRepository,
	bus *events.EventBus,
	gw domain.PaymentGateway,
	uploader domain.Uploader,
	logger *zerolog.Logger,
) (api.Deps, error) {
	tokens := service.NewTokenGenerator(cfg.Booking.TokenLength)

	catalog := service.NewCatalogService(db, logger)
	if err := catalog.Seed(ctx, cfg.Packages); err != nil {
		return api.Deps{}, fmt.Errorf("seed packages: %w", err)
	}

	authService := service.NewAuthService(db, state, cfg.API.Auth.JWTSecret, cfg.API.Auth.TokenTTL, logger)
	if err := authService.EnsureAdmin(ctx, cfg.API.Auth.AdminEmail, cfg.API.Auth.AdminPassword); err != nil {
		return api.Deps{}, fmt.Errorf("ensure admin: %w", err)
	}

	deps := api.Deps{
		Bookings: service.NewBookingService(db, catalog, uploader, bus,
			validation.Policy{RequireCashProof: cfg.Booking.RequireCashProof},
			cfg.Uploads.Folder, tokens, logger),
		Payments: service.NewPaymentService(db, catalog, gw, bus, cfg.Gateway.Currency, cfg.Gateway.ReceiptPrefix, tokens, logger),
		Catalog:  catalog,
		Site:     service.NewSiteConfigService(db, uploader, cfg.Uploads.Folder, cfg.Workshop, logger),
		Students: service.NewStudentService(db, logger),
		Auth:     authService,
		State:    state,
		Ready:    db.PingContext,
	}
	if local, ok := uploader.(*storage.Local); ok {
		deps.UploadsDir = local.Root()
	}
	return deps, nil
}

func startServer(ctx context.Context, httpServer *api.HTTPServer, cfg *config.Config, logger *zerolog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Start()
	}()

	logger.Info().Int("http_port", cfg.API.HTTP.Port).Str("gateway", cfg.Gateway.Mode).Msg("API server started")

	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			logger.Error().Err(err).Msg("http server stopped")
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(shutdownCtx)

	logger.Info().Msg("API server stopped")
	return nil
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
