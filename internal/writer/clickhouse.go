package writer

import (
	"context"
	"fmt"
	"strings"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/rickgao/binance-collector/internal/model"
)

// ClickHouseStore writes to ClickHouse over the native protocol.
type ClickHouseStore struct {
	conn driver.Conn
}

// NewClickHouseStore wraps an open connection. The store owns the connection.
func NewClickHouseStore(conn driver.Conn) *ClickHouseStore {
	return &ClickHouseStore{conn: conn}
}

// Session returns a session on the shared connection.
func (s *ClickHouseStore) Session(context.Context) (Session, error) {
	return &clickhouseSession{conn: s.conn}, nil
}

func (s *ClickHouseStore) Ping(ctx context.Context) error {
	return s.conn.Ping(ctx)
}

func (s *ClickHouseStore) Close() error {
	return s.conn.Close()
}

type clickhouseSession struct {
	conn driver.Conn
}

// Append sends rs as one ClickHouse batch.
func (s *clickhouseSession) Append(ctx context.Context, rs model.RowSet) (int64, error) {
	cols := make([]string, len(rs.Columns))
	for i, c := range rs.Columns {
		cols[i] = "`" + c + "`"
	}
	query := fmt.Sprintf("INSERT INTO `%s` (%s)", rs.Kind.Table(), strings.Join(cols, ", "))

	batch, err := s.conn.PrepareBatch(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("prepare batch: %w", err)
	}

	schema := model.Schema(rs.Kind)
	for _, row := range rs.Rows {
		if err := batch.Append(clickhouseValues(schema, row)...); err != nil {
			_ = batch.Abort()
			return 0, fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return 0, fmt.Errorf("send batch: %w", err)
	}
	return int64(len(rs.Rows)), nil
}

func (s *clickhouseSession) Close() error {
	return nil
}

// clickhouseValues maps NULLs in Nullable(String) columns to typed nil
// pointers, which the driver requires.
func clickhouseValues(schema []model.Column, row []any) []any {
	out := make([]any, len(row))
	for i, v := range row {
		if v == nil && i < len(schema) && schema[i].Nullable {
			out[i] = (*string)(nil)
			continue
		}
		out[i] = v
	}
	return out
}
