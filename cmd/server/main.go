package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/TheYates/bernat-medical-sub000/internal/config"
	"github.com/TheYates/bernat-medical-sub000/internal/infra"
	"github.com/TheYates/bernat-medical-sub000/internal/repository"
	"github.com/TheYates/bernat-medical-sub000/internal/router"
	"github.com/TheYates/bernat-medical-sub000/internal/service"
	"github.com/TheYates/bernat-medical-sub000/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Structured logger: pretty in dev, JSON in production
	if cfg.Env != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	db, err := infra.NewDatabase(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DatabaseDriver).Msg("failed to connect to database")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Email jobs go through the pool; the breaker stops hammering a dead relay.
	mailer := infra.NewMailer(cfg)
	if !mailer.Configured() {
		log.Warn().Msg("SMTP_HOST not set: email jobs will be dropped")
	}
	mailCB := infra.NewCircuitBreaker(infra.BreakerConfig{FailureThreshold: 5, OpenTimeout: time.Minute})
	pool := worker.NewPool(rdb, map[string]worker.JobHandler{
		worker.JobTypeEmail: worker.NewEmailWorker(mailer, mailCB),
	})
	pool.Start(ctx, cfg.WorkerPoolSize)

	notifRepo := repository.NewNotificationRepository(db)
	alerts := service.NewStockAlertService(
		repository.NewDrugRepository(db),
		repository.NewUserRepository(db),
		notifRepo,
		service.NewNotificationService(notifRepo),
		worker.NewDispatcher(rdb),
	)
	worker.StartStockAlertCron(ctx, alerts, time.Duration(cfg.StockAlertIntervalMinutes)*time.Minute)

	r, err := router.New(cfg, db, rdb, mailCB)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build router")
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("clinic pharmacy backend listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}
