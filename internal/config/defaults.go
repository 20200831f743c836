package config

import (
	"strings"
	"time"
)

// Default values for optional configuration fields.
const (
	DefaultSpotURL            = "https://api.binance.com"
	DefaultFuturesURL         = "https://fapi.binance.com"
	DefaultCandleInterval     = "1m"
	DefaultDepthLimit         = 100
	DefaultRatioPeriod        = "5m"
	DefaultRateBurst          = 10
	DefaultWakeSecond         = 59
	DefaultWeightWarnRatio    = 0.8
	DefaultDriver             = DriverPostgres
	DefaultDBPort             = 5432
	DefaultDBSSLMode          = "prefer"
	DefaultMaxConns           = 4
	DefaultMinConns           = 1
	DefaultClickHousePort     = 9000
	DefaultClickHouseDatabase = "default"
	DefaultClickHouseTimeout  = 10 * time.Second
	DefaultClickHouseConns    = 4
	DefaultSQLitePath         = "collector.db"
	DefaultMetricsPort        = 9090
	DefaultMetricsPath        = "/metrics"
	DefaultLogLevel           = "info"
	DefaultLogFormat          = "text"
	DefaultLogOutput          = "stdout"
	DefaultLogMaxSizeMB       = 100
	DefaultLogMaxAgeDays      = 7
)

func (c *Config) applyDefaults() {
	// Symbols are matched case-sensitively by Binance.
	for i, s := range c.Symbols {
		c.Symbols[i] = strings.ToUpper(strings.TrimSpace(s))
	}

	// API defaults
	if c.API.SpotURL == "" {
		c.API.SpotURL = DefaultSpotURL
	}
	if c.API.FuturesURL == "" {
		c.API.FuturesURL = DefaultFuturesURL
	}
	c.API.SpotURL = strings.TrimRight(c.API.SpotURL, "/")
	c.API.FuturesURL = strings.TrimRight(c.API.FuturesURL, "/")
	if c.API.CandleInterval == "" {
		c.API.CandleInterval = DefaultCandleInterval
	}
	if c.API.DepthLimit == 0 {
		c.API.DepthLimit = DefaultDepthLimit
	}
	if c.API.RatioPeriod == "" {
		c.API.RatioPeriod = DefaultRatioPeriod
	}
	if c.API.RateLimit > 0 && c.API.RateBurst == 0 {
		c.API.RateBurst = DefaultRateBurst
	}

	// Schedule defaults
	if c.Schedule.WakeSecond == nil {
		sec := DefaultWakeSecond
		c.Schedule.WakeSecond = &sec
	}

	// Poller defaults
	if c.Poller.WeightWarnRatio == 0 {
		c.Poller.WeightWarnRatio = DefaultWeightWarnRatio
	}

	// Store defaults
	if c.Store.Driver == "" {
		c.Store.Driver = DefaultDriver
	}
	c.Store.Driver = strings.ToLower(c.Store.Driver)
	applyDBDefaults(&c.Store.Postgres)
	if c.Store.ClickHouse.Port == 0 {
		c.Store.ClickHouse.Port = DefaultClickHousePort
	}
	if c.Store.ClickHouse.Database == "" {
		c.Store.ClickHouse.Database = DefaultClickHouseDatabase
	}
	if c.Store.ClickHouse.DialTimeout == 0 {
		c.Store.ClickHouse.DialTimeout = DefaultClickHouseTimeout
	}
	if c.Store.ClickHouse.MaxOpenConns == 0 {
		c.Store.ClickHouse.MaxOpenConns = DefaultClickHouseConns
	}
	if c.Store.SQLite.Path == "" {
		c.Store.SQLite.Path = DefaultSQLitePath
	}

	// Metrics defaults
	if c.Metrics.Port == 0 {
		c.Metrics.Port = DefaultMetricsPort
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}

	// Logging defaults
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	if c.Logging.Format == "" {
		c.Logging.Format = DefaultLogFormat
	}
	if c.Logging.Output == "" {
		c.Logging.Output = DefaultLogOutput
	}
	if c.Logging.MaxSizeMB == 0 {
		c.Logging.MaxSizeMB = DefaultLogMaxSizeMB
	}
	if c.Logging.MaxAgeDays == 0 {
		c.Logging.MaxAgeDays = DefaultLogMaxAgeDays
	}
}

func applyDBDefaults(db *DBConfig) {
	if db.Port == 0 {
		db.Port = DefaultDBPort
	}
	if db.SSLMode == "" {
		db.SSLMode = DefaultDBSSLMode
	}
	if db.MaxConns == 0 {
		db.MaxConns = DefaultMaxConns
	}
	if db.MinConns == 0 {
		db.MinConns = DefaultMinConns
	}
}
