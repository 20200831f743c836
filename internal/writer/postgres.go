package writer

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rickgao/binance-collector/internal/model"
)

// PostgresStore writes to PostgreSQL through a pgx pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore wraps an open pool. The store owns the pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Session acquires one pooled connection for the cycle.
func (s *PostgresStore) Session(ctx context.Context) (Session, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	return &postgresSession{conn: conn}, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

type postgresSession struct {
	conn *pgxpool.Conn
}

// Append queues one INSERT per row and sends them in a single batch inside
// a transaction.
func (s *postgresSession) Append(ctx context.Context, rs model.RowSet) (int64, error) {
	stmt := insertStatement(rs, dollarPlaceholder)

	batch := &pgx.Batch{}
	for _, row := range rs.Rows {
		batch.Queue(stmt, row...)
	}

	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	results := tx.SendBatch(ctx, batch)
	var inserted int64
	for range rs.Rows {
		ct, err := results.Exec()
		if err != nil {
			results.Close()
			return 0, fmt.Errorf("insert into %s: %w", rs.Kind.Table(), err)
		}
		inserted += ct.RowsAffected()
	}
	if err := results.Close(); err != nil {
		return 0, fmt.Errorf("close batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return inserted, nil
}

func (s *postgresSession) Close() error {
	s.conn.Release()
	return nil
}
