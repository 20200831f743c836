package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rickgao/binance-collector/internal/config"
	"github.com/rickgao/binance-collector/internal/database"
	"github.com/rickgao/binance-collector/internal/writer"
)

// openStore connects to the configured backend and, if enabled, creates
// the metric tables.
func openStore(ctx context.Context, cfg config.StoreConfig, logger *slog.Logger) (writer.Store, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		logger.Info("connecting to postgres", "dsn", database.RedactedPostgresDSN(cfg.Postgres))
		pool, err := database.Connect(ctx, cfg.Postgres)
		if err != nil {
			return nil, err
		}
		if cfg.Migrate {
			if err := database.MigratePostgres(ctx, pool); err != nil {
				pool.Close()
				return nil, err
			}
		}
		return writer.NewPostgresStore(pool), nil

	case config.DriverClickHouse:
		logger.Info("connecting to clickhouse",
			"host", cfg.ClickHouse.Host,
			"port", cfg.ClickHouse.Port,
			"database", cfg.ClickHouse.Database,
		)
		conn, err := database.OpenClickHouse(ctx, cfg.ClickHouse)
		if err != nil {
			return nil, err
		}
		if cfg.Migrate {
			if err := database.MigrateClickHouse(ctx, conn); err != nil {
				conn.Close()
				return nil, err
			}
		}
		return writer.NewClickHouseStore(conn), nil

	case config.DriverSQLite:
		logger.Info("opening sqlite", "path", cfg.SQLite.Path)
		db, err := database.OpenSQLite(ctx, cfg.SQLite.Path)
		if err != nil {
			return nil, err
		}
		if cfg.Migrate {
			if err := database.MigrateSQLite(ctx, db); err != nil {
				db.Close()
				return nil, err
			}
		}
		return writer.NewSQLiteStore(db), nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
