package config

import "time"

// Config is the root configuration for a collector instance. It is loaded
// once at startup and never modified afterwards.
type Config struct {
	Instance InstanceConfig `yaml:"instance"`
	Symbols  []string       `yaml:"symbols"`
	API      APIConfig      `yaml:"api"`
	Schedule ScheduleConfig `yaml:"schedule"`
	Poller   PollerConfig   `yaml:"poller"`
	Store    StoreConfig    `yaml:"store"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// InstanceConfig identifies this collector.
type InstanceConfig struct {
	ID string `yaml:"id"`
}

// APIConfig holds Binance REST settings.
type APIConfig struct {
	SpotURL        string        `yaml:"spot_url"`
	FuturesURL     string        `yaml:"futures_url"`
	Timeout        time.Duration `yaml:"timeout"`    // 0 = no timeout
	RateLimit      float64       `yaml:"rate_limit"` // requests per second, 0 = unpaced
	RateBurst      int           `yaml:"rate_burst"`
	CandleInterval string        `yaml:"candle_interval"`
	DepthLimit     int           `yaml:"depth_limit"`
	RatioPeriod    string        `yaml:"ratio_period"`
}

// ScheduleConfig holds cycle timing settings.
type ScheduleConfig struct {
	// WakeSecond is the second of each minute at which a cycle starts.
	// A pointer so that 0 can be configured explicitly.
	WakeSecond *int `yaml:"wake_second"`
}

// Second returns the configured wake second or the default.
func (s ScheduleConfig) Second() int {
	if s.WakeSecond == nil {
		return DefaultWakeSecond
	}
	return *s.WakeSecond
}

// PollerConfig holds fan-out settings.
type PollerConfig struct {
	Concurrency     int     `yaml:"concurrency"` // 0 = unbounded
	WeightWarnRatio float64 `yaml:"weight_warn_ratio"`
}

// StoreConfig selects and configures the persistence backend.
type StoreConfig struct {
	Driver     string           `yaml:"driver"` // postgres, clickhouse or sqlite
	Migrate    bool             `yaml:"migrate"`
	Postgres   DBConfig         `yaml:"postgres"`
	ClickHouse ClickHouseConfig `yaml:"clickhouse"`
	SQLite     SQLiteConfig     `yaml:"sqlite"`
}

// Store drivers.
const (
	DriverPostgres   = "postgres"
	DriverClickHouse = "clickhouse"
	DriverSQLite     = "sqlite"
)

// DBConfig holds a PostgreSQL connection.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// ClickHouseConfig holds a ClickHouse native-protocol connection.
type ClickHouseConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	Database     string        `yaml:"database"`
	User         string        `yaml:"user"`
	Password     string        `yaml:"password"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	MaxOpenConns int           `yaml:"max_open_conns"`
}

// SQLiteConfig holds a local SQLite database.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// MetricsConfig holds Prometheus and CloudWatch settings.
type MetricsConfig struct {
	Port       int              `yaml:"port"`
	Path       string           `yaml:"path"`
	Namespace  string           `yaml:"namespace"`
	CloudWatch CloudWatchConfig `yaml:"cloudwatch"`
}

// CloudWatchConfig enables per-cycle CloudWatch publishing.
type CloudWatchConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Region    string `yaml:"region"`
	Namespace string `yaml:"namespace"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level      string `yaml:"level"`  // debug, info, warn, error
	Format     string `yaml:"format"` // text or json
	Output     string `yaml:"output"` // stdout, stderr or a file path
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxAgeDays int    `yaml:"max_age_days"`
	MaxBackups int    `yaml:"max_backups"`
	Compress   bool   `yaml:"compress"`
}
