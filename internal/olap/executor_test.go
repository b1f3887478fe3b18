package olap

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inframap/internal/core"
)

type fakeDriver struct {
	executed []string
	failAt   int // 1-indexed statement number to fail on, 0 means never
}

func (f *fakeDriver) Exec(_ context.Context, statement string) error {
	f.executed = append(f.executed, statement)
	if f.failAt != 0 && len(f.executed) == f.failAt {
		return errors.New("boom")
	}
	return nil
}

func (f *fakeDriver) Ping(_ context.Context) error { return nil }
func (f *fakeDriver) Close() error                 { return nil }

func tableChanges() *core.InfraChanges {
	create := &core.OlapChange{Kind: core.OpCreateTable, Table: &core.Table{
		Name: "events", Database: "analytics",
		Columns: []*core.Column{{Name: "id", Type: core.ColumnType{Kind: core.KindUuid}, Required: true, PrimaryKey: true}},
		OrderBy: core.OrderBy{Fields: []string{"id"}},
		Engine:  core.Engine{Kind: core.EngineMergeTree},
	}}
	drop := &core.OlapChange{Kind: core.OpDropTable, Table: &core.Table{Name: "old_events", Database: "analytics"}}
	return &core.InfraChanges{OlapChanges: []*core.OlapChange{create, drop}}
}

func TestExecutor_Apply_RunsTeardownBeforeSetup(t *testing.T) {
	driver := &fakeDriver{}
	var out bytes.Buffer
	exec := NewExecutor(driver, "analytics", Options{}, &out)

	result, err := exec.Apply(context.Background(), tableChanges())
	require.NoError(t, err)
	assert.Equal(t, 3, result.StatementsRun)
	require.Len(t, driver.executed, 3)
	assert.Contains(t, driver.executed[0], "CREATE DATABASE IF NOT EXISTS")
	assert.Contains(t, driver.executed[1], "DROP TABLE")
	assert.Contains(t, driver.executed[2], "CREATE TABLE")
	assert.Contains(t, out.String(), "[1/3] OK")
	assert.Contains(t, out.String(), "[3/3] OK")
}

func TestExecutor_Apply_CreatesEachReferencedDatabaseOnce(t *testing.T) {
	driver := &fakeDriver{}
	var out bytes.Buffer
	exec := NewExecutor(driver, "default", Options{}, &out)

	changes := &core.InfraChanges{OlapChanges: []*core.OlapChange{
		{Kind: core.OpCreateTable, Database: "analytics", Table: &core.Table{
			Name: "events", Database: "analytics",
			Columns: []*core.Column{{Name: "id", Type: core.ColumnType{Kind: core.KindUuid}, Required: true, PrimaryKey: true}},
			OrderBy: core.OrderBy{Fields: []string{"id"}},
			Engine:  core.Engine{Kind: core.EngineMergeTree},
		}},
		{Kind: core.OpCreateTable, Database: "analytics", Table: &core.Table{
			Name: "clicks", Database: "analytics",
			Columns: []*core.Column{{Name: "id", Type: core.ColumnType{Kind: core.KindUuid}, Required: true, PrimaryKey: true}},
			OrderBy: core.OrderBy{Fields: []string{"id"}},
			Engine:  core.Engine{Kind: core.EngineMergeTree},
		}},
	}}

	result, err := exec.Apply(context.Background(), changes)
	require.NoError(t, err)
	require.Len(t, driver.executed, 3, "one CREATE DATABASE for \"analytics\" plus two CREATE TABLE, never a duplicate database statement")
	assert.Equal(t, "CREATE DATABASE IF NOT EXISTS `analytics`", driver.executed[0])
	assert.Equal(t, 3, result.StatementsRun)
}

func TestExecutor_Apply_DryRunNeverCallsDriver(t *testing.T) {
	driver := &fakeDriver{}
	var out bytes.Buffer
	exec := NewExecutor(driver, "analytics", Options{DryRun: true}, &out)

	result, err := exec.Apply(context.Background(), tableChanges())
	require.NoError(t, err)
	assert.Equal(t, 0, result.StatementsRun)
	assert.Empty(t, driver.executed)
	assert.Contains(t, out.String(), "DRY RUN")
}

func TestExecutor_Apply_StopsAtFirstFailure(t *testing.T) {
	// failAt=2 targets the DROP TABLE statement: statement 1 is the
	// CREATE DATABASE IF NOT EXISTS the executor now issues ahead of
	// the plan itself.
	driver := &fakeDriver{failAt: 2}
	var out bytes.Buffer
	exec := NewExecutor(driver, "analytics", Options{}, &out)

	result, err := exec.Apply(context.Background(), tableChanges())
	require.Error(t, err)
	assert.Equal(t, 1, result.StatementsRun)
	require.Len(t, result.Errors, 1)
	assert.Len(t, driver.executed, 2, "execution must stop after the first failure")

	var stmtErr *StatementError
	require.ErrorAs(t, err, &stmtErr)
	assert.Equal(t, core.OpDropTable, stmtErr.Op.Kind)
}
