package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inframap/internal/core"
)

func TestFor_KnownEngineReturnsRegisteredStrategy(t *testing.T) {
	s := For(core.EngineMergeTree)
	_, ok := s.(DefaultStrategy)
	assert.True(t, ok)
}

func TestFor_UnknownEngineFallsBackToDefault(t *testing.T) {
	s := For(core.EngineKind("SomeFutureEngine"))
	_, ok := s.(DefaultStrategy)
	assert.True(t, ok, "unknown engine kinds must never crash the differ (§7)")
}

func TestFor_WriteOnlySinksUseDropCreate(t *testing.T) {
	assert.IsType(t, DropCreateStrategy{}, For(core.EngineKafka))
	assert.IsType(t, DropCreateStrategy{}, For(core.EngineS3Queue))
}

func TestDefaultStrategy_EmitsAtomicColumnOps(t *testing.T) {
	before := &core.Table{Name: "events", Engine: core.Engine{Kind: core.EngineMergeTree}}
	after := &core.Table{Name: "events", Engine: core.Engine{Kind: core.EngineMergeTree}}

	delta := core.TableDelta{
		Columns: core.TableColumnChanges{
			Added:   []core.AddedColumn{{Column: &core.Column{Name: "age"}, After: strPtr("name")}},
			Removed: []*core.Column{{Name: "legacy"}},
		},
	}

	ops := DefaultStrategy{}.DiffTableUpdate(before, after, delta, "default")
	require.Len(t, ops, 2)
	assert.Equal(t, core.OpAddTableColumn, ops[0].Kind)
	assert.Equal(t, "age", ops[0].Column.Name)
	assert.Equal(t, "name", *ops[0].PrecedingColumn)
	assert.Equal(t, core.OpDropTableColumn, ops[1].Kind)
	assert.Equal(t, "legacy", ops[1].ColumnName)
}

func TestDefaultStrategy_EngineChangeFallsBackToDropCreate(t *testing.T) {
	before := &core.Table{Name: "events", Engine: core.Engine{Kind: core.EngineMergeTree}}
	after := &core.Table{Name: "events", Engine: core.Engine{Kind: core.EngineReplacingMergeTree}}

	delta := core.TableDelta{EngineChanged: true}
	ops := DefaultStrategy{}.DiffTableUpdate(before, after, delta, "default")

	require.Len(t, ops, 2)
	assert.Equal(t, core.OpDropTable, ops[0].Kind)
	assert.Equal(t, core.OpCreateTable, ops[1].Kind)
}

func TestDropCreateStrategy_EmptyDeltaEmitsNothing(t *testing.T) {
	ops := DropCreateStrategy{}.DiffTableUpdate(&core.Table{}, &core.Table{}, core.TableDelta{}, "default")
	assert.Empty(t, ops)
}

func strPtr(s string) *string { return &s }
