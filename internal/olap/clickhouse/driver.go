// Package clickhouse is the concrete Driver implementation backing
// internal/olap's Executor, wrapping clickhouse-go/v2's database/sql
// driver the same way apply.Applier wraps go-sql-driver/mysql: open,
// ping, hold the *sql.DB, execute one statement at a time.
package clickhouse

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/ClickHouse/clickhouse-go/v2" // registers the "clickhouse" database/sql driver
)

// ClickHouse is an internal/olap.Driver backed by a *sql.DB opened
// against a ClickHouse server.
type ClickHouse struct {
	db *sql.DB
}

// Connect opens a connection against dsn (a clickhouse:// DSN as
// understood by clickhouse-go/v2) and verifies it with a ping, mirroring
// apply.Applier.Connect.
func Connect(ctx context.Context, dsn string) (*ClickHouse, error) {
	db, err := sql.Open("clickhouse", dsn)
	if err != nil {
		return nil, fmt.Errorf("clickhouse: failed to open connection: %w", err)
	}
	if pingErr := db.PingContext(ctx); pingErr != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("clickhouse: failed to ping: %w; additionally failed to close: %w", pingErr, closeErr)
		}
		return nil, fmt.Errorf("clickhouse: failed to ping: %w", pingErr)
	}
	return &ClickHouse{db: db}, nil
}

// Exec runs a single DDL/admin statement.
func (c *ClickHouse) Exec(ctx context.Context, statement string) error {
	_, err := c.db.ExecContext(ctx, statement)
	return err
}

// Ping verifies the connection is still alive.
func (c *ClickHouse) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// Close releases the underlying connection pool.
func (c *ClickHouse) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}
