package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/istun/mezunlar-backend/internal/config"
	"github.com/istun/mezunlar-backend/internal/database"
	"github.com/istun/mezunlar-backend/internal/events"
	"github.com/istun/mezunlar-backend/internal/handler"
	"github.com/istun/mezunlar-backend/internal/logger"
	"github.com/istun/mezunlar-backend/internal/mailer"
	"github.com/istun/mezunlar-backend/internal/middleware"
	"github.com/istun/mezunlar-backend/internal/notify"
	"github.com/istun/mezunlar-backend/internal/repository"
	"github.com/istun/mezunlar-backend/internal/router"
	"github.com/istun/mezunlar-backend/internal/service"
	"github.com/istun/mezunlar-backend/internal/validator"
	"github.com/istun/mezunlar-backend/internal/worker"
	"github.com/rs/zerolog"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.MustLoad()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting Mezunlar Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Schema ────────────────────────────────────────────────────────
	if cfg.AutoMigrate {
		if err := database.MigrateUp(cfg.MigrationsDir, cfg.DatabaseURL); err != nil {
			log.Fatal().Err(err).Msg("Failed to apply migrations")
		}
		log.Info().Str("dir", cfg.MigrationsDir).Msg("Migrations applied")
	}

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Event Fan-out ─────────────────────────────────────────────────
	feed := events.NewRedisPublisher(rdb)
	publishers := events.Multi{feed}
	if cfg.AMQPURL != "" {
		amqpPub, err := events.DialAMQP(cfg.AMQPURL, cfg.AMQPExchange, log)
		if err != nil {
			log.Warn().Err(err).Msg("RabbitMQ unavailable, events stay on the Redis feed only")
		} else {
			defer amqpPub.Close()
			publishers = append(publishers, amqpPub)
		}
	}

	// ─── Initialize Repositories ───────────────────────────────────────
	userRepo := repository.NewUserRepository(pool)
	adminRepo := repository.NewAdminRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	mailQueue := notify.NewQueue(rdb)
	authService := service.NewAuthService(cfg, rdb, userRepo, log)
	mediaService := service.NewMediaService(cfg)
	approvalService := service.NewApprovalService(cfg, userRepo, mailQueue, publishers, log)
	roleService := service.NewRoleService(adminRepo, userRepo, authService, publishers, log)
	registrationService := service.NewRegistrationService(userRepo, authService, mediaService, mailQueue, publishers, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:     handler.NewAuthHandler(cfg, authService, registrationService, log),
		Approval: handler.NewApprovalHandler(approvalService, log),
		Role:     handler.NewRoleHandler(roleService, log),
		WS:       handler.NewWSHandler(feed, log, cfg.AllowedOrigins),
		System:   handler.NewSystemHandler(pool, rdb, log),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())
	var workers sync.WaitGroup

	mailWorker := worker.NewMailWorker(rdb, mailer.New(cfg, log), log)
	workers.Add(1)
	go func() {
		defer workers.Done()
		mailWorker.Start(workerCtx)
	}()

	authLimiter := middleware.NewRateLimiter(workerCtx, cfg.AuthRateLimit, cfg.AuthRateBurst)

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, authLimiter, cfg, log)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := newHTTPServer(cfg, r)

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests. Open streams are cancelled.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.WriteTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop background workers. A mail being sent finishes first.
	workerCancel()
	workers.Wait()

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
