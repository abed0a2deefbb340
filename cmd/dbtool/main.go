package main

import (
	"context"
	"database/sql"
	"delivery-allocation-service/internal/adapters/cache"
	"delivery-allocation-service/internal/adapters/repositories"
	"delivery-allocation-service/internal/api/dto"
	"delivery-allocation-service/internal/config"
	"delivery-allocation-service/internal/platform/db"
	"delivery-allocation-service/internal/platform/obs"
	"delivery-allocation-service/internal/services"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var cfg config.Config

var rootCmd = &cobra.Command{
	Use:   "dbtool",
	Short: "Manage the allocation database",
	Long: `Manage the allocation database configured by DB_DRIVER, DB_PATH and DATABASE_URL.

Available subcommands:
  init     - Create tables and indexes
  seed     - Load warehouses, agents and orders from a JSON file
  allocate - Run today's allocation and print the result`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var (
			foundEnv bool
			err      error
		)
		cfg, foundEnv, err = config.Load()
		if err != nil {
			return err
		}

		logger, err := obs.NewLogger(cfg.LogLevel)
		if err != nil {
			return err
		}
		zap.ReplaceGlobals(logger)

		if !foundEnv {
			logger.Debug("no .env file found (using environment variables)")
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create tables and indexes",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqlDB *sql.DB, _ repositories.Dialect) error {
			zap.L().Info("initializing database schema")
			if err := repositories.InitSchema(sqlDB); err != nil {
				return fmt.Errorf("schema initialization failed: %w", err)
			}
			zap.L().Info("schema ready")
			return nil
		})
	},
}

var seedFile string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load fleet data from a JSON file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := seedFile
		if path == "" {
			path = cfg.SeedPath
		}

		return withDB(func(sqlDB *sql.DB, dialect repositories.Dialect) error {
			if err := repositories.InitSchema(sqlDB); err != nil {
				return fmt.Errorf("schema initialization failed: %w", err)
			}

			zap.L().Info("seeding database", zap.String("path", path))
			if err := repositories.SeedFromJSON(sqlDB, dialect, path); err != nil {
				return fmt.Errorf("seeding failed: %w", err)
			}
			zap.L().Info("seeding complete")
			return nil
		})
	},
}

var allocateCmd = &cobra.Command{
	Use:   "allocate",
	Short: "Allocate all open orders and store the result as today's plan",
	RunE: func(cmd *cobra.Command, args []string) error {
		limits, err := config.LoadLimits(cfg.LimitsFile)
		if err != nil {
			return err
		}

		return withDB(func(sqlDB *sql.DB, dialect repositories.Dialect) error {
			deps := services.RunAllocationDeps{
				Fleet: repositories.NewSQLFleetRepository(sqlDB, dialect),
				Store: repositories.NewSQLAllocationStore(sqlDB, dialect),
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
			defer cancel()

			// Keep the server's result cache and subscribers in step with CLI runs.
			if cfg.RedisURL != "" {
				rdb, err := cache.NewRedisClient(ctx, cfg.RedisURL)
				if err != nil {
					return err
				}
				defer rdb.Close()

				deps.Cache = cache.NewRedisResultCache(rdb, cache.DefaultTTL)
				deps.Publisher = cache.NewRedisEventPublisher(rdb)
			}

			run, err := services.RunAllocation(ctx, deps, services.NewEngine(limits), time.Now())
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(dto.RunAllocationResponse{
				RunID:              run.RunID,
				RunDate:            run.RunDate(),
				AllocationResponse: dto.FromResult(run.Result),
			})
		})
	},
}

func withDB(fn func(*sql.DB, repositories.Dialect) error) error {
	sqlDB, err := db.Open(cfg.DBDriver, cfg.DSN())
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	return fn(sqlDB, repositories.DialectFor(cfg.DBDriver))
}

func init() {
	seedCmd.Flags().StringVar(&seedFile, "file", "", "seed JSON path (default SEED_PATH)")

	rootCmd.AddCommand(initCmd, seedCmd, allocateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
