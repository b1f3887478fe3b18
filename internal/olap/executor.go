package olap

import (
	"context"
	"fmt"
	"io"
	"time"

	"inframap/internal/core"
)

// Driver is the minimal collaborator an Executor needs from a concrete
// OLAP connection: execute one statement, report readiness, and close.
// Grounded in the teacher's apply.Applier, which wraps a *sql.DB behind
// the same three responsibilities (Connect/ExecContext/Close) rather
// than exposing database/sql directly to callers.
type Driver interface {
	Exec(ctx context.Context, statement string) error
	Ping(ctx context.Context) error
	Close() error
}

// Options mirrors apply.Options: a DryRun executor only narrates what it
// would run, never calling the driver at all.
type Options struct {
	DryRun bool
}

// Executor applies an InfraChanges' ordered OlapChanges sequentially and
// non-transactionally, narrating progress the way
// apply.Applier.applyWithoutTransaction does: one line per statement,
// numbered, timed, OK-or-error.
type Executor struct {
	driver          Driver
	defaultDatabase string
	options         Options
	out             io.Writer
}

// NewExecutor builds an Executor around an already-connected Driver.
func NewExecutor(driver Driver, defaultDatabase string, options Options, out io.Writer) *Executor {
	if out == nil {
		out = io.Discard
	}
	return &Executor{driver: driver, defaultDatabase: defaultDatabase, options: options, out: out}
}

// Result records the outcome of one Apply call.
type Result struct {
	StatementsRun   int
	StatementsTotal int
	Errors          []StatementError
}

// StatementError pairs a failed statement with the error and the
// OlapChange that produced it.
type StatementError struct {
	Op        *core.OlapChange
	Statement string
	Err       error
}

func (e *StatementError) Error() string {
	return fmt.Sprintf("olap: statement failed: %s: %v", truncate(e.Statement, 120), e.Err)
}

// Apply first issues a CREATE DATABASE IF NOT EXISTS for every database
// the plan references, then executes every OlapChange in teardown-then-
// setup order (§4.6, §5). It stops at the first failing statement —
// unlike the teacher's transactional path there is no rollback here,
// since DDL in the target engines is not transactional; the caller sees
// exactly how far execution got via Result.StatementsRun.
func (e *Executor) Apply(ctx context.Context, changes *core.InfraChanges) (*Result, error) {
	ordered := changes.OrderedOlapChanges()

	var statements []statementWithOp
	for _, db := range ReferencedDatabases(e.defaultDatabase, ordered) {
		statements = append(statements, statementWithOp{sql: createDatabaseSQL(db)})
	}
	for _, op := range ordered {
		stmts, err := BuildStatements(e.defaultDatabase, op)
		if err != nil {
			return nil, err
		}
		for _, s := range stmts {
			statements = append(statements, statementWithOp{op: op, sql: s})
		}
	}

	result := &Result{StatementsTotal: len(statements)}

	if e.options.DryRun {
		for i, s := range statements {
			fmt.Fprintf(e.out, "  [%d/%d] DRY RUN: %s\n", i+1, len(statements), truncate(s.sql, 120))
		}
		return result, nil
	}

	for i, s := range statements {
		start := time.Now()
		if err := e.driver.Exec(ctx, s.sql); err != nil {
			fmt.Fprintf(e.out, "  [%d/%d] FAILED: %s (%.2fs): %v\n", i+1, len(statements), truncate(s.sql, 120), time.Since(start).Seconds(), err)
			result.Errors = append(result.Errors, StatementError{Op: s.op, Statement: s.sql, Err: err})
			return result, &result.Errors[len(result.Errors)-1]
		}
		fmt.Fprintf(e.out, "  [%d/%d] OK: %s (%.2fs)\n", i+1, len(statements), truncate(s.sql, 120), time.Since(start).Seconds())
		result.StatementsRun++
	}

	return result, nil
}

type statementWithOp struct {
	op  *core.OlapChange
	sql string
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
