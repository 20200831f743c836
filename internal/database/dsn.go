package database

import (
	"net"
	"net/url"
	"strconv"

	"github.com/rickgao/binance-collector/internal/config"
	"github.com/rickgao/binance-collector/internal/version"
)

// PostgresDSN builds a PostgreSQL connection URL from config. The password
// is escaped and the collector identifies itself via application_name.
func PostgresDSN(cfg config.DBConfig) string {
	return postgresURL(cfg).String()
}

// RedactedPostgresDSN is PostgresDSN with the password masked, for logs.
func RedactedPostgresDSN(cfg config.DBConfig) string {
	return postgresURL(cfg).Redacted()
}

func postgresURL(cfg config.DBConfig) *url.URL {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = config.DefaultDBSSLMode
	}

	q := url.Values{}
	q.Set("sslmode", sslMode)
	q.Set("application_name", version.Name)

	return &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Path:     "/" + cfg.Name,
		RawQuery: q.Encode(),
	}
}

// SQLiteDSN builds a go-sqlite3 DSN for path with WAL journaling and a
// busy timeout so readers do not block the writer.
func SQLiteDSN(path string) string {
	q := url.Values{}
	q.Set("_busy_timeout", "5000")
	q.Set("_journal_mode", "WAL")
	return "file:" + path + "?" + q.Encode()
}
