package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"github.com/njprem/Todo_APP_BackEnd/docs"
	"github.com/njprem/Todo_APP_BackEnd/internal/config"
	"github.com/njprem/Todo_APP_BackEnd/internal/logging"
	"github.com/njprem/Todo_APP_BackEnd/internal/metrics"
	"github.com/njprem/Todo_APP_BackEnd/internal/repository/minio"
	"github.com/njprem/Todo_APP_BackEnd/internal/repository/ports"
	"github.com/njprem/Todo_APP_BackEnd/internal/repository/postgres"
	"github.com/njprem/Todo_APP_BackEnd/internal/service"
	transporthttp "github.com/njprem/Todo_APP_BackEnd/internal/transport/http"
	"github.com/njprem/Todo_APP_BackEnd/internal/transport/mail"
	"github.com/njprem/Todo_APP_BackEnd/internal/util"
)

const shutdownTimeout = 10 * time.Second

func runMigrations(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger, closer := logging.New(cfg.LogLevel, cfg.LogstashTCPAddr)
	defer closer.Close()

	db, err := postgres.New(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := postgres.Migrate(ctx, db); err != nil {
		return err
	}
	logger.Info().Msg("database migrations applied")
	return nil
}

func runServer(ctx context.Context, migrate bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger, closer := logging.New(cfg.LogLevel, cfg.LogstashTCPAddr)
	defer closer.Close()

	db, err := postgres.New(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("postgres: ping: %w", err)
	}
	if migrate {
		if err := postgres.Migrate(ctx, db); err != nil {
			return err
		}
	}

	tokens, err := util.NewJWTManager(cfg.JWTSecret, cfg.JWTAlgorithm, cfg.AccessTokenTTL)
	if err != nil {
		return err
	}
	resets, err := util.NewResetTokenSigner(cfg.JWTSecret, cfg.ResetTokenSalt)
	if err != nil {
		return err
	}

	storage, err := newAttachmentStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	smtp := mail.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom)
	if cfg.SMTPHost == "" {
		logger.Warn().Msg("SMTP_HOST not set; password reset emails will fail")
	}

	authService := service.NewAuthService(
		postgres.NewUserRepo(db),
		tokens,
		resets,
		mail.NewPasswordResetMailer(smtp),
		metrics.NewAuth(registry),
		logger,
		cfg.PasswordResetTTL,
		cfg.ResetLinkBaseURL,
	)
	todoService := service.NewTodoService(postgres.NewTodoRepo(db), storage, cfg.MinIOBucketTodos, cfg.AttachmentMaxSize, logger)

	e := transporthttp.NewRouter(transporthttp.RouterOptions{
		AllowOrigins: cfg.AllowOrigins,
		Logger:       logger,
		Metrics:      metrics.NewHTTP(registry),
		Gatherer:     registry,
	})
	transporthttp.RegisterAuth(e, authService)
	transporthttp.RegisterTodos(e, authService, todoService)
	transporthttp.RegisterPages(e)
	if err := transporthttp.RegisterSwagger(e, docs.Swagger); err != nil {
		return fmt.Errorf("swagger: %w", err)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newAttachmentStorage returns nil when MinIO is not configured, which
// disables todo attachments.
func newAttachmentStorage(ctx context.Context, cfg config.Config, logger zerolog.Logger) (ports.ObjectStorage, error) {
	if !cfg.MinIOEnabled() {
		logger.Info().Msg("MinIO not configured; todo attachments disabled")
		return nil, nil
	}
	client, err := minio.NewClient(cfg.MinIOEndpoint, cfg.MinIOAccessKey, cfg.MinIOSecretKey, cfg.MinIOUseSSL)
	if err != nil {
		return nil, fmt.Errorf("minio: %w", err)
	}
	storage := minio.NewStorage(client, cfg.MinIOPublicURL)
	if err := storage.EnsureBucket(ctx, cfg.MinIOBucketTodos); err != nil {
		return nil, fmt.Errorf("minio: ensure bucket %s: %w", cfg.MinIOBucketTodos, err)
	}
	return storage, nil
}
