package database

import (
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/rickgao/binance-collector/internal/config"
)

// ClickHouseOptions converts config into driver options.
func ClickHouseOptions(cfg config.ClickHouseConfig) *clickhouse.Options {
	return &clickhouse.Options{
		Protocol: clickhouse.Native,
		Addr:     []string{fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.User,
			Password: cfg.Password,
		},
		DialTimeout:  cfg.DialTimeout,
		MaxOpenConns: cfg.MaxOpenConns,
	}
}

// OpenClickHouse opens a native ClickHouse connection and verifies it.
func OpenClickHouse(ctx context.Context, cfg config.ClickHouseConfig) (driver.Conn, error) {
	conn, err := clickhouse.Open(ClickHouseOptions(cfg))
	if err != nil {
		return nil, fmt.Errorf("open clickhouse connection: %w", err)
	}

	if err := conn.Ping(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping clickhouse: %w", err)
	}

	return conn, nil
}

// MigrateClickHouse applies the embedded ClickHouse schema. The driver
// does not accept multiple statements per Exec.
func MigrateClickHouse(ctx context.Context, conn driver.Conn) error {
	return migrate(DialectClickHouse, func(stmt string) error {
		return conn.Exec(ctx, stmt)
	})
}
