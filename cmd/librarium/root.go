// Command librarium runs the library catalog and lending service.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/librarium/librarium/config"
	"github.com/librarium/librarium/logging"
	"github.com/librarium/librarium/storage"
	"github.com/librarium/librarium/storage/memoryengine"
	"github.com/librarium/librarium/storage/sqlengine"
)

var rootCmd = &cobra.Command{
	Use:           "librarium",
	Short:         "Library catalog and lending service",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(serveCmd, createAdminCmd, seedCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// openStore builds the configured storage engine. The returned closer
// releases the underlying database handle; for the memory engine it is a
// no-op.
func openStore(cmd *cobra.Command, cfg config.Config, logger storage.Logger) (storage.Store, func(), error) {
	switch cfg.StorageDriver {
	case config.DriverMemory:
		return memoryengine.New(memoryengine.WithLogger(logger)), func() {}, nil

	case config.DriverPostgres:
		pool, err := config.OpenPostgresPool(cmd.Context(), cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to postgres: %w", err)
		}

		engine, err := sqlengine.NewFromPGXPool(pool, sqlengine.WithLogger(logger))
		if err != nil {
			pool.Close()
			return nil, nil, err
		}

		if err := engine.Bootstrap(cmd.Context()); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("creating schema: %w", err)
		}

		return engine, pool.Close, nil

	case config.DriverSQLite:
		db, err := config.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("opening sqlite database: %w", err)
		}

		engine, err := sqlengine.NewFromSQLDB(db, sqlengine.DialectSQLite, sqlengine.WithLogger(logger))
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}

		if err := engine.Bootstrap(cmd.Context()); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("creating schema: %w", err)
		}

		return engine, func() { _ = db.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

func newLogger(cfg config.Config) *logging.Logrus {
	return logging.New(cfg.LogLevel)
}
