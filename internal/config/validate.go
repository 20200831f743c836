package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if c.Instance.ID == "" {
		return errors.New("instance.id is required")
	}

	if len(c.Symbols) == 0 {
		return errors.New("symbols is required")
	}
	seen := make(map[string]bool, len(c.Symbols))
	for i, s := range c.Symbols {
		if s == "" {
			return fmt.Errorf("symbols[%d] is empty", i)
		}
		if seen[s] {
			return fmt.Errorf("symbols[%d] duplicates %s", i, s)
		}
		seen[s] = true
	}

	if c.API.DepthLimit < 1 {
		return errors.New("api.depth_limit must be >= 1")
	}
	if c.API.Timeout < 0 {
		return errors.New("api.timeout must be >= 0")
	}
	if c.API.RateLimit < 0 {
		return errors.New("api.rate_limit must be >= 0")
	}

	if sec := c.Schedule.Second(); sec < 0 || sec > 59 {
		return fmt.Errorf("schedule.wake_second must be between 0 and 59, got %d", sec)
	}

	if c.Poller.Concurrency < 0 {
		return errors.New("poller.concurrency must be >= 0")
	}
	if c.Poller.WeightWarnRatio < 0 || c.Poller.WeightWarnRatio > 1 {
		return fmt.Errorf("poller.weight_warn_ratio must be between 0 and 1, got %g", c.Poller.WeightWarnRatio)
	}

	if err := c.Store.validate(); err != nil {
		return err
	}

	if c.Metrics.Port < 1 || c.Metrics.Port > 65535 {
		return fmt.Errorf("metrics.port must be between 1 and 65535, got %d", c.Metrics.Port)
	}
	if !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("metrics.path must start with /, got %q", c.Metrics.Path)
	}

	return c.Logging.validate()
}

func (s *StoreConfig) validate() error {
	switch s.Driver {
	case DriverPostgres:
		return s.Postgres.validate("store.postgres")
	case DriverClickHouse:
		if s.ClickHouse.Host == "" {
			return errors.New("store.clickhouse.host is required")
		}
		if s.ClickHouse.MaxOpenConns < 1 {
			return errors.New("store.clickhouse.max_open_conns must be >= 1")
		}
		return nil
	case DriverSQLite:
		if s.SQLite.Path == "" {
			return errors.New("store.sqlite.path is required")
		}
		return nil
	default:
		return fmt.Errorf("store.driver must be one of postgres, clickhouse, sqlite, got %q", s.Driver)
	}
}

func (db *DBConfig) validate(prefix string) error {
	if db.Host == "" {
		return fmt.Errorf("%s.host is required", prefix)
	}
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.Password == "" {
		return fmt.Errorf("%s.password is required", prefix)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}

func (l *LoggingConfig) validate() error {
	switch strings.ToLower(l.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error, got %q", l.Level)
	}
	switch strings.ToLower(l.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", l.Format)
	}
	if l.Output == "" {
		return errors.New("logging.output is required")
	}
	return nil
}
