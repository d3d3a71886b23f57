package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/bibbank/bib/pkg/auth"
	kafkapkg "github.com/bibbank/bib/pkg/kafka"
	"github.com/bibbank/bib/pkg/observability"
	pgpkg "github.com/bibbank/bib/pkg/postgres"
	"github.com/bibbank/bib/pkg/tlsutil"
	"github.com/bibbank/bib/services/directdebit-service/internal/application/usecase"
	"github.com/bibbank/bib/services/directdebit-service/internal/domain/port"
	"github.com/bibbank/bib/services/directdebit-service/internal/domain/service"
	"github.com/bibbank/bib/services/directdebit-service/internal/infrastructure/config"
	"github.com/bibbank/bib/services/directdebit-service/internal/infrastructure/messaging"
	infraPG "github.com/bibbank/bib/services/directdebit-service/internal/infrastructure/persistence/postgres"
	"github.com/bibbank/bib/services/directdebit-service/internal/infrastructure/storage"
	grpcPresentation "github.com/bibbank/bib/services/directdebit-service/internal/presentation/grpc"
	"github.com/bibbank/bib/services/directdebit-service/internal/presentation/rest"
)

const shutdownTimeout = 15 * time.Second

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Load configuration.
	envErr := config.LoadEnvFile(".env")
	cfg := config.Load()

	// Initialize logger.
	logger := observability.InitLogger(observability.LogConfig{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		ServiceName: cfg.Telemetry.ServiceName,
	})

	if envErr != nil {
		logger.Warn("ignoring .env file", "error", envErr)
	}

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger.Info("starting directdebit-service",
		"http_port", cfg.HTTPPort,
		"grpc_port", cfg.GRPCPort,
		"store", cfg.Sepa.Store,
	)

	// Initialize tracing.
	shutdownTracer, err := observability.InitTracer(ctx, observability.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Endpoint:    cfg.Telemetry.OTLPEndpoint,
		Insecure:    true,
	})
	if err != nil {
		logger.Warn("failed to initialize tracer, continuing without tracing", "error", err)
	} else {
		defer func() {
			if err := shutdownTracer(context.Background()); err != nil {
				logger.Warn("tracer shutdown failed", "error", err)
			}
		}()
	}

	// Initialize metrics.
	meterProvider, metricsHandler, err := observability.InitMetrics(observability.MetricsConfig{
		ServiceName: cfg.Telemetry.ServiceName,
	})
	if err != nil {
		logger.Error("failed to initialize metrics", "error", err)
		os.Exit(1)
	}
	defer meterProvider.Shutdown(context.Background()) //nolint:errcheck

	// Initialize Kafka producer.
	kafkaCfg := kafkapkg.Config{
		Brokers:       cfg.Kafka.Brokers,
		TLS:           cfg.Kafka.TLS,
		SASLEnabled:   cfg.Kafka.SASLUsername != "",
		SASLMechanism: cfg.Kafka.SASLMechanism,
		SASLUsername:  cfg.Kafka.SASLUsername,
		SASLPassword:  cfg.Kafka.SASLPassword,
	}
	if err := kafkaCfg.Validate(); err != nil {
		logger.Error("invalid kafka configuration", "error", err)
		os.Exit(1)
	}
	producer, err := kafkapkg.NewProducer(kafkaCfg)
	if err != nil {
		logger.Error("failed to create kafka producer", "error", err)
		os.Exit(1)
	}
	defer producer.Close()

	readiness := map[string]rest.ReadinessCheck{}
	background := make([]func(context.Context) error, 0, 1)

	// Message store and event publisher.
	var (
		store      port.MessageStore
		publisher  port.EventPublisher
		transactor port.Transactor
	)
	switch cfg.Sepa.Store {
	case config.StorePostgres:
		pool, err := openDatabase(ctx, cfg)
		if err != nil {
			logger.Error("failed to open database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		outbox := infraPG.NewOutboxRepo(pool)
		relay := messaging.NewOutboxRelay(outbox, producer, logger,
			messaging.WithInterval(time.Duration(cfg.Sepa.OutboxInterval)*time.Second),
			messaging.WithBatchSize(cfg.Sepa.OutboxBatchSize),
		)

		store = infraPG.NewMessageRepo(pool)
		publisher = infraPG.NewOutboxPublisher(outbox)
		transactor = infraPG.NewTransactor(pool)
		background = append(background, relay.Run)
		readiness["postgres"] = func(ctx context.Context) error { return pgpkg.HealthCheck(ctx, pool) }

	default:
		fileStore := storage.NewFileStore(cfg.Sepa.OutputDir)
		store = fileStore
		publisher = messaging.NewPublisher(producer)
		readiness["output_dir"] = func(context.Context) error {
			_, err := os.Stat(cfg.Sepa.OutputDir)
			if errors.Is(err, os.ErrNotExist) {
				// Created on first write.
				return nil
			}
			return err
		}
	}

	// Wire dependencies (DI via constructors).
	writer, err := service.NewSepaWriter(store, logger)
	if err != nil {
		logger.Error("failed to create pain.008 writer", "error", err)
		os.Exit(1)
	}

	jwtSvc, err := newJWTService(cfg.Auth)
	if err != nil {
		logger.Error("failed to initialize JWT validation", "error", err)
		os.Exit(1)
	}

	// Use cases.
	generateUC := usecase.NewGenerateCollection(writer, publisher, logger, cfg.Sepa.CollectionDelayDays).
		WithSchemaValidation(cfg.Sepa.ValidateSchema)
	if transactor != nil {
		generateUC.WithTransactor(transactor)
	}
	validateUC := usecase.NewValidateMessage(writer)

	// gRPC server.
	handler := grpcPresentation.NewDirectDebitHandler(generateUC, validateUC, logger)
	grpcServer, err := grpcPresentation.NewServer(handler, jwtSvc, grpcPresentation.ServerConfig{
		TLS: tlsutil.ServerConfig{
			CertFile:     cfg.TLS.CertFile,
			KeyFile:      cfg.TLS.KeyFile,
			ClientCAFile: cfg.TLS.ClientCAFile,
		},
		Reflection: true,
	}, logger)
	if err != nil {
		logger.Error("failed to create gRPC server", "error", err)
		os.Exit(1)
	}

	// HTTP server (health checks + metrics).
	mux := http.NewServeMux()
	rest.NewHealthHandler(logger, readiness).RegisterRoutes(mux, metricsHandler)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           otelhttp.NewHandler(mux, cfg.Telemetry.ServiceName),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start servers.
	errCh := make(chan error, 2+len(background))

	go func() {
		errCh <- grpcServer.Serve(fmt.Sprintf(":%d", cfg.GRPCPort))
	}()

	go func() {
		logger.Info("HTTP server starting", "port", cfg.HTTPPort)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	for _, run := range background {
		go func(run func(context.Context) error) {
			if err := run(ctx); err != nil {
				errCh <- err
			}
		}(run)
	}

	// Wait for shutdown.
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		logger.Error("server error", "error", err)
	}
	cancel()

	// Graceful shutdown.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP server shutdown failed", "error", err)
	}
	grpcServer.GracefulStop()
	logger.Info("directdebit-service stopped")
}

// openDatabase connects to PostgreSQL and applies the embedded migrations.
func openDatabase(ctx context.Context, cfg config.Config) (*pgxpool.Pool, error) {
	dbCfg := pgpkg.Config{
		Host:     cfg.DB.Host,
		Port:     cfg.DB.Port,
		User:     cfg.DB.User,
		Password: cfg.DB.Password,
		Database: cfg.DB.Name,
		SSLMode:  cfg.DB.SSLMode,
		MaxConns: cfg.DB.MaxConns,
		MinConns: cfg.DB.MinConns,

		ApplicationName: cfg.Telemetry.ServiceName,
		ConnectTimeout:  5 * time.Second,
	}

	if err := pgpkg.RunMigrationsFS(dbCfg.DSN(), infraPG.Migrations, infraPG.MigrationsPath); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	pool, err := pgpkg.NewPool(ctx, dbCfg)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	return pool, nil
}

// newJWTService validates tokens with the issuer's RSA public key when one
// is configured and falls back to the shared HMAC secret otherwise.
func newJWTService(cfg config.AuthConfig) (*auth.JWTService, error) {
	jwtCfg := auth.JWTConfig{
		Secret: cfg.Secret,
		Issuer: cfg.Issuer,
		Leeway: 30 * time.Second,
	}
	if cfg.PublicKeyFile != "" {
		pem, err := auth.LoadKeyFromFile(cfg.PublicKeyFile)
		if err != nil {
			return nil, err
		}
		jwtCfg.PublicKeyPEM = string(pem)
	}
	return auth.NewJWTService(jwtCfg)
}
