package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/biharichatkaraa-byte/bihari-chatkara-sub000/internal/config"
	"github.com/biharichatkaraa-byte/bihari-chatkara-sub000/internal/model"
	"github.com/biharichatkaraa-byte/bihari-chatkara-sub000/internal/router"
	"github.com/biharichatkaraa-byte/bihari-chatkara-sub000/internal/service"
	"github.com/biharichatkaraa-byte/bihari-chatkara-sub000/internal/store"
	"github.com/biharichatkaraa-byte/bihari-chatkara-sub000/internal/ws"
)

func main() {
	_ = godotenv.Load()

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st := openStore(ctx, cfg, logger)

	poller := store.NewPoller(st, cfg.PollInterval, logger)
	tracked := poller.Tracked()

	hub := ws.NewHub()
	go hub.Run()

	orders := store.NewCollection[model.Order](tracked, store.Orders)
	ingredients := store.NewCollection[model.Ingredient](tracked, store.Ingredients)
	requisitions := store.NewCollection[model.Requisition](tracked, store.Requisitions)
	expenses := store.NewCollection[model.Expense](tracked, store.Expenses)

	orderSvc := service.NewOrderService(orders, ingredients, hub, logger)
	if err := orderSvc.Start(ctx, poller); err != nil {
		logger.Fatal().Err(err).Msg("start order service")
	}
	reqSvc := service.NewRequisitionService(requisitions, ingredients, expenses, logger)

	go poller.Run(ctx)

	r := router.New(cfg, router.Deps{
		Store:        tracked,
		Orders:       orderSvc,
		Requisitions: reqSvc,
		Hub:          hub,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server stopped")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown")
	}
}

// openStore probes Postgres and falls back to the in-memory store when
// the database is unreachable, so the POS keeps running offline.
func openStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) store.Store {
	probeCtx, cancel := context.WithTimeout(ctx, cfg.ProbeTimeout)
	defer cancel()

	pool, err := pgxpool.New(probeCtx, cfg.DatabaseURL)
	if err == nil {
		err = pool.Ping(probeCtx)
	}
	if err != nil {
		logger.Warn().Err(err).Msg("database unreachable, using in-memory store")
		return store.NewMemory()
	}

	runMigrations(cfg.DatabaseURL, logger)
	logger.Info().Msg("connected to database")
	return store.NewPostgres(pool)
}

func runMigrations(databaseURL string, logger zerolog.Logger) {
	m, err := migrate.New("file://migrations", databaseURL)
	if err != nil {
		logger.Warn().Err(err).Msg("open migrations")
		return
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		logger.Warn().Err(err).Msg("apply migrations")
	}
}
