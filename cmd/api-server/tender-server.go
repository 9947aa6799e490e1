package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"tenderbid/db"
	"tenderbid/db/migrations"
	"tenderbid/internal/config"
	"tenderbid/internal/handlers"
	"tenderbid/internal/logger"
	"tenderbid/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbConn, err := db.Connect(ctx, cfg.DB.Driver, cfg.DB.DSN, db.PoolOptions{
		MaxOpenConns:    cfg.DB.MaxOpenConns,
		MaxIdleConns:    cfg.DB.MaxIdleConns,
		ConnMaxLifetime: cfg.DB.ConnMaxLifetime,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("cannot connect to DB")
	}
	defer dbConn.Close()

	if err := migrations.Run(ctx, dbConn.DB, cfg.DB.Driver, log); err != nil {
		log.Fatal().Err(err).Msg("migrations failed")
	}

	store := db.NewStorage(dbConn)

	if cfg.SeedFile != "" {
		seed, err := service.LoadSeed(cfg.SeedFile)
		if err != nil {
			log.Fatal().Err(err).Msg("cannot load seed")
		}
		if err := service.ApplySeed(ctx, store, seed, log); err != nil {
			log.Fatal().Err(err).Msg("cannot apply seed")
		}
	}

	opts := service.Options{StrictStatusTransitions: cfg.StrictStatusTransitions}
	h := handlers.NewHandler(
		service.NewTenderService(store, log, opts),
		service.NewBidService(store, log, opts),
		store,
		log,
	)

	srv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: handlers.NewRouter(h, log),
	}

	idle := make(chan struct{})
	go func() {
		defer close(idle)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("graceful shutdown failed")
		}
	}()

	log.Info().Str("addr", cfg.HTTP.Address).Str("driver", cfg.DB.Driver).Msg("starting tender server")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server stopped")
	}
	<-idle
	log.Info().Msg("server stopped")
}
