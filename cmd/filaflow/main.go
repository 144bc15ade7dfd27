package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/filaflow/filaflow/internal/app"
	"github.com/filaflow/filaflow/internal/auth"
	"github.com/filaflow/filaflow/internal/clients"
	"github.com/filaflow/filaflow/internal/observability"
	"github.com/filaflow/filaflow/internal/platform/cache"
	"github.com/filaflow/filaflow/internal/platform/db"
	"github.com/filaflow/filaflow/internal/queueinstances"
	"github.com/filaflow/filaflow/internal/queues"
	"github.com/filaflow/filaflow/internal/queueusers"
	"github.com/filaflow/filaflow/internal/unities"
	"github.com/filaflow/filaflow/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	tokenIssuer := auth.NewTokenIssuer(cfg.TokenSecret, cfg.TokenTTL)
	authService := auth.NewService(auth.NewRepository(pool), tokenIssuer)
	authMiddleware := auth.NewMiddleware(tokenIssuer, cfg.TokenCookieName)
	authHandler := auth.NewHandler(logger, authService, cfg.TokenCookieName, cfg.IsProduction())

	clientService := clients.NewService(clients.NewRepository(pool))
	clientHandler := clients.NewHandler(logger, clientService)

	unityService := unities.NewService(unities.NewRepository(pool), clientService)
	unityHandler := unities.NewHandler(logger, unityService)

	queueUserService := queueusers.NewService(queueusers.NewRepository(pool))
	queueUserHandler := queueusers.NewHandler(logger, queueUserService)

	queueRepo := queues.NewRepository(pool)
	queueService := queues.NewService(queueRepo, clientService, unityService)
	queueVerifier := queues.NewUnityAccessVerifier(queueService)
	queueHandler := queues.NewHandler(logger, queueService, queueVerifier)

	jobsClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init jobs client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobsClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()

	instanceService := queueinstances.NewService(queueinstances.NewRepository(pool), queueService, queueUserService)
	instanceHandler := queueinstances.NewHandler(logger, instanceService, queueVerifier, jobsClient).
		WithAdmissionCounter(metrics)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:               logger,
		Config:               cfg,
		AuthMiddleware:       authMiddleware,
		AuthHandler:          authHandler,
		ClientHandler:        clientHandler,
		UnityHandler:         unityHandler,
		QueueUserHandler:     queueUserHandler,
		QueueHandler:         queueHandler,
		QueueInstanceHandler: instanceHandler,
		JobHandler:           jobHandler,
		Metrics:              metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
