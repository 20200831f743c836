package writer

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rickgao/binance-collector/internal/model"
)

// SQLiteStore writes to a local SQLite database through database/sql.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore wraps an open database. The store owns the handle.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Session reserves one connection for the cycle.
func (s *SQLiteStore) Session(ctx context.Context) (Session, error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("get connection: %w", err)
	}
	return &sqliteSession{conn: conn}, nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type sqliteSession struct {
	conn *sql.Conn
}

// Append inserts rs inside one transaction.
func (s *sqliteSession) Append(ctx context.Context, rs model.RowSet) (int64, error) {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, insertStatement(rs, questionPlaceholder))
	if err != nil {
		return 0, fmt.Errorf("prepare insert into %s: %w", rs.Kind.Table(), err)
	}
	defer stmt.Close()

	var inserted int64
	for _, row := range rs.Rows {
		res, err := stmt.ExecContext(ctx, row...)
		if err != nil {
			return 0, fmt.Errorf("insert into %s: %w", rs.Kind.Table(), err)
		}
		n, _ := res.RowsAffected()
		inserted += n
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return inserted, nil
}

func (s *sqliteSession) Close() error {
	return s.conn.Close()
}
