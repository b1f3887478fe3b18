// Package mysql dry-validates a legacy SqlResource's embedded setup SQL
// against a real MySQL engine without mutating it: every statement runs
// inside a transaction that is always rolled back. This is the
// validation path for SqlResources migrated from the MySQL-era schema
// that predates the ClickHouse-native View/MaterializedView model
// (internal/canonicalize's legacy migration), useful when no live
// ClickHouse connection is configured yet but the author still wants to
// know the embedded SQL is well-formed.
package mysql

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"

	"inframap/internal/core"
)

// Connector wraps a database/sql handle opened against a MySQL instance,
// grounded on the teacher's apply.Applier.Connect/Close pair.
type Connector struct {
	db *sql.DB
}

// Connect opens and pings a MySQL connection for the given DSN.
func Connect(ctx context.Context, dsn string) (*Connector, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("introspect/mysql: open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("introspect/mysql: ping: %w; additionally failed to close connection: %w", err, closeErr)
		}
		return nil, fmt.Errorf("introspect/mysql: ping: %w", err)
	}
	return &Connector{db: db}, nil
}

// Close closes the underlying connection, tolerating a never-connected
// Connector.
func (c *Connector) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// ValidationResult reports the outcome of dry-validating one
// SqlResource's setup statements. RunID identifies this validation pass
// in logs and error messages — the resource itself carries no
// identifier stable enough to correlate repeated validation attempts
// against a SqlResource whose Name is reused across legacy migrations.
type ValidationResult struct {
	RunID             uuid.UUID
	Resource          string
	StatementsChecked int
	Err               error
}

// ValidateLegacySQL runs every statement in resource.Setup inside a
// transaction that is always rolled back, so the database is never
// mutated. It stops and reports the first statement that fails to
// execute (first-error-wins, matching the rest of this module's
// transformation discipline).
func ValidateLegacySQL(ctx context.Context, c *Connector, resource *core.SqlResource) (*ValidationResult, error) {
	result := &ValidationResult{RunID: uuid.New(), Resource: resource.Name}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("introspect/mysql: begin validation tx for %q: %w", resource.Name, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, stmt := range resource.Setup {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			result.Err = fmt.Errorf("introspect/mysql: statement %d of %q: %w", result.StatementsChecked+1, resource.Name, err)
			return result, result.Err
		}
		result.StatementsChecked++
	}

	return result, nil
}
