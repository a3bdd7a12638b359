package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mauropillox/chorilocal-sub000/internal/config"
	"github.com/mauropillox/chorilocal-sub000/internal/events"
	"github.com/mauropillox/chorilocal-sub000/internal/infra"
	"github.com/mauropillox/chorilocal-sub000/internal/repository"
	"github.com/mauropillox/chorilocal-sub000/internal/router"
	"github.com/mauropillox/chorilocal-sub000/internal/worker"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Structured logger — dev: pretty, prod: JSON
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := infra.NewDatabase(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}

	// Redis is optional: without it jobs and cross-process events are
	// disabled but the HTTP surface keeps working.
	var rdb *redis.Client
	if cfg.RedisURL != "" {
		rdb, err = infra.NewRedis(cfg.RedisURL)
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, async jobs and event fan-out disabled")
			rdb = nil
		}
	}

	// Async machinery — worker handlers are wired here (composition root) so
	// the pool has full access to all infrastructure dependencies.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mailer := infra.NewMailer(cfg)
	dispatcher := worker.NewDispatcher(rdb)
	broadcaster := events.NewBroadcaster(rdb)

	pedidoRepo := repository.NewPedidoRepository(db)
	auditoriaRepo := repository.NewAuditoriaRepository(db)
	tokenRepo := repository.NewTokenRepository(db)

	if rdb != nil {
		workerHandlers := &worker.Handlers{
			Auditoria: worker.NewAuditWorker(auditoriaRepo),
			Email:     worker.NewEmailWorker(mailer, cfg.AlertRecipient),
			Remito:    worker.NewRemitoWorker(pedidoRepo, cfg.PDFStoragePath),
		}
		worker.StartWorkerPool(ctx, rdb, workerHandlers, cfg.WorkerPoolSize)
	}

	// Periodic sweep of expired revoked sessions
	worker.StartCleanupCron(ctx, tokenRepo)

	r := router.New(cfg, db, rdb, dispatcher, broadcaster)

	srv := &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.Port),
		Handler:     r,
		ReadTimeout: 10 * time.Second,
		// No WriteTimeout: /v1/eventos holds SSE connections open indefinitely.
		IdleTimeout: 60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("chorilocal backend listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}
