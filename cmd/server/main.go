package main

import (
	"context"
	"database/sql"
	"delivery-allocation-service/internal/adapters/cache"
	"delivery-allocation-service/internal/adapters/repositories"
	"delivery-allocation-service/internal/api"
	"delivery-allocation-service/internal/config"
	"delivery-allocation-service/internal/platform/db"
	"delivery-allocation-service/internal/platform/metrics"
	"delivery-allocation-service/internal/platform/obs"
	"delivery-allocation-service/internal/services"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// main is the application composition root.
// It wires concrete adapters (SQL, Redis) behind ports and starts the HTTP server.
func main() {
	cfg, foundEnv, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := obs.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	if !foundEnv {
		logger.Info("no .env file found (using environment variables)")
	}

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics.RegisterDefault()

	limits, err := config.LoadLimits(cfg.LimitsFile)
	if err != nil {
		return err
	}

	sqlDB, err := db.Open(cfg.DBDriver, cfg.DSN())
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	dialect := repositories.DialectFor(cfg.DBDriver)

	// Initialize schema and seed demo data on startup for local runs.
	if err := initAndSeed(sqlDB, dialect, cfg.SeedPath, logger); err != nil {
		return err
	}

	fleet := repositories.NewSQLFleetRepository(sqlDB, dialect)
	deps := services.RunAllocationDeps{
		Fleet: fleet,
		Store: repositories.NewSQLAllocationStore(sqlDB, dialect),
	}

	// Redis is optional; without it results are always read from the database.
	if cfg.RedisURL != "" {
		rdb, err := cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer rdb.Close()

		deps.Cache = cache.NewRedisResultCache(rdb, cache.DefaultTTL)
		deps.Publisher = cache.NewRedisEventPublisher(rdb)
		logger.Info("redis result cache enabled")
	}

	router := api.NewRouter(api.RouterDeps{
		Fleet:      fleet,
		Allocation: deps,
		Engine:     services.NewEngine(limits),
		RunLimiter: api.NewRunLimiter(cfg.RunRatePerMin),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr), zap.String("db_driver", dialect.String()))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func initAndSeed(sqlDB *sql.DB, dialect repositories.Dialect, seedPath string, logger *zap.Logger) error {
	if err := repositories.InitSchema(sqlDB); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	if _, err := os.Stat(seedPath); errors.Is(err, os.ErrNotExist) {
		logger.Info("seed file not found, skipping seed", zap.String("path", seedPath))
		return nil
	}

	if err := repositories.SeedFromJSON(sqlDB, dialect, seedPath); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	return nil
}
