package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inframap/internal/core"
)

func col(name string, kind core.ColumnKind) *core.Column {
	return &core.Column{Name: name, Type: core.ColumnType{Kind: kind}, Required: true}
}

func mergeTreeTable(name string, columns []*core.Column, orderBy []string) *core.Table {
	return &core.Table{
		Name:    name,
		Columns: columns,
		OrderBy: core.OrderBy{Fields: orderBy},
		Engine:  core.Engine{Kind: core.EngineMergeTree},
	}
}

func TestDiff_S1_NoChangesIsEmpty(t *testing.T) {
	build := func() *core.InfraMap {
		m := core.NewInfraMap("default")
		idCol := col("id", core.KindBigInt)
		idCol.PrimaryKey = true
		tbl := mergeTreeTable("Foo", []*core.Column{
			idCol,
			col("ts", core.KindFloat),
			{Name: "opt", Type: core.ColumnType{Kind: core.KindNullable, Inner: &core.ColumnType{Kind: core.KindString}}},
		}, []string{"id"})
		m.Tables[tbl.ID("default")] = tbl
		return m
	}

	self, target := build(), build()
	changes := Diff(self, target, Options{RespectLifecycle: true})
	assert.True(t, changes.IsEmpty())
}

// TestDiff_S2_AddedColumnPreservesPosition exercises the column-level
// delta computation directly (computeTableDelta / diffColumns) rather
// than through a full Diff call: the after-table's order_by also
// changes relative to before, which by itself forces the whole update
// onto the DropTable+CreateTable recreate path (see
// TestDiff_OrderByChangeForcesDropCreate), so asserting on individual
// AddTableColumn/ModifyTableColumn/DropTableColumn ops here would be
// testing the wrong layer.
func TestDiff_S2_AddedColumnPreservesPosition(t *testing.T) {
	before := mergeTreeTable("events", []*core.Column{
		col("id", core.KindInt),
		col("to_remove", core.KindString),
	}, []string{"id"})

	after := mergeTreeTable("events", []*core.Column{
		col("id", core.KindBigInt),
		col("name", core.KindString),
		{Name: "age", Required: false, Type: core.ColumnType{Kind: core.KindNullable, Inner: &core.ColumnType{Kind: core.KindInt}}},
	}, []string{"id", "name"})

	delta := computeTableDelta(before, after, Options{})

	assert.True(t, delta.OrderByChanged, "order_by changed from [id] to [id, name]")

	require.Len(t, delta.Columns.Modified, 1)
	assert.Equal(t, "id", delta.Columns.Modified[0].After.Name)

	require.Len(t, delta.Columns.Added, 2)
	assert.Equal(t, "name", delta.Columns.Added[0].Column.Name)
	assert.Equal(t, "id", *delta.Columns.Added[0].After, "position_after pins the stable preceding column in the after list")
	assert.Equal(t, "age", delta.Columns.Added[1].Column.Name)
	assert.Equal(t, "name", *delta.Columns.Added[1].After)

	require.Len(t, delta.Columns.Removed, 1)
	assert.Equal(t, "to_remove", delta.Columns.Removed[0].Name)
}

// TestDiff_OrderByChangeForcesDropCreate pins §2/§4.4's "some engines
// must drop+create for sort-key changes": ClickHouse's ALTER TABLE ...
// MODIFY ORDER BY can only extend an existing key, so DefaultStrategy
// must never emit it for a real order-by change (it emits a column-add
// sequence followed by an unrelated sort-key modify otherwise, silently
// corrupting the key) — it recreates the table instead.
func TestDiff_OrderByChangeForcesDropCreate(t *testing.T) {
	self := core.NewInfraMap("default")
	before := mergeTreeTable("events", []*core.Column{
		col("id", core.KindInt),
		col("to_remove", core.KindString),
	}, []string{"id"})
	self.Tables[before.ID("default")] = before

	target := core.NewInfraMap("default")
	after := mergeTreeTable("events", []*core.Column{
		col("id", core.KindBigInt),
		col("name", core.KindString),
	}, []string{"id", "name"})
	target.Tables[before.ID("default")] = after

	changes := Diff(self, target, Options{RespectLifecycle: true})

	require.Len(t, changes.OlapChanges, 2)
	assert.Equal(t, core.OpDropTable, changes.OlapChanges[0].Kind)
	assert.Equal(t, core.OpCreateTable, changes.OlapChanges[1].Kind)
}

func TestDiff_S3_DeletionProtectedBlocksDestructiveColumnOnly(t *testing.T) {
	self := core.NewInfraMap("default")
	before := mergeTreeTable("events", []*core.Column{col("id", core.KindInt), col("legacy", core.KindString)}, []string{"id"})
	self.Tables[before.ID("default")] = before

	target := core.NewInfraMap("default")
	after := mergeTreeTable("events", []*core.Column{col("id", core.KindInt), col("fresh", core.KindString)}, []string{"id"})
	after.LifeCycle = core.DeletionProtected
	target.Tables[before.ID("default")] = after

	changes := Diff(self, target, Options{RespectLifecycle: true})

	for _, op := range changes.OlapChanges {
		assert.NotEqual(t, core.OpDropTableColumn, op.Kind, "destructive column removal must be blocked under DeletionProtected")
	}
	var sawAdd bool
	for _, op := range changes.OlapChanges {
		if op.Kind == core.OpAddTableColumn && op.Column.Name == "fresh" {
			sawAdd = true
		}
	}
	assert.True(t, sawAdd, "the non-destructive add must still be emitted")

	require.Len(t, changes.FilteredOlapChanges, 1)
	assert.Equal(t, "DropTableColumn", changes.FilteredOlapChanges[0].Operation)
}

func TestDiff_S4_ExternallyManagedBlocksTopicAdd(t *testing.T) {
	self := core.NewInfraMap("default")
	target := core.NewInfraMap("default")
	target.Topics["events-v1"] = &core.Topic{Name: "events", Version: 1, LifeCycle: core.ExternallyManaged}

	changes := Diff(self, target, Options{RespectLifecycle: true})

	assert.Empty(t, changes.StreamingEngineChanges)
	require.Len(t, changes.FilteredOlapChanges, 1)
	assert.Equal(t, "Topic", changes.FilteredOlapChanges[0].EntityKind)
	assert.Equal(t, "ADDED", changes.FilteredOlapChanges[0].Operation)
}

func TestDiff_S5_MaterializedViewPopulationGating(t *testing.T) {
	newMaps := func(sourceEngine core.EngineKind) (*core.InfraMap, *core.InfraMap) {
		self := core.NewInfraMap("default")
		target := core.NewInfraMap("default")
		src := mergeTreeTable("source", []*core.Column{col("id", core.KindInt)}, []string{"id"})
		src.Engine.Kind = sourceEngine
		if sourceEngine == core.EngineKafka {
			src.Engine.Kafka = &core.KafkaParams{Broker: "b", Topic: "t", Group: "g", Format: "JSONEachRow"}
		}
		target.Tables[src.ID("default")] = src
		target.MaterializedViews["mv"] = &core.MaterializedView{
			Name: "mv", SelectStatement: "SELECT * FROM source", SourceTables: []string{"source"},
			TargetTable: "mv_target",
		}
		return self, target
	}

	self, target := newMaps(core.EngineMergeTree)
	changes := Diff(self, target, Options{RespectLifecycle: true, IsProduction: false})
	var sawPopulate bool
	for _, op := range changes.OlapChanges {
		if op.Kind == core.OpCreateMaterializedView {
			require.NotNil(t, op.Populate, "dev + SELECT-capable sources must populate")
			assert.True(t, op.Populate.ShouldTruncate, "populate must always truncate the target table first (§4.4)")
			sawPopulate = true
		}
	}
	assert.True(t, sawPopulate)

	self, target = newMaps(core.EngineMergeTree)
	changes = Diff(self, target, Options{RespectLifecycle: true, IsProduction: true})
	for _, op := range changes.OlapChanges {
		if op.Kind == core.OpCreateMaterializedView {
			assert.Nil(t, op.Populate, "production must never populate")
		}
	}

	self, target = newMaps(core.EngineKafka)
	changes = Diff(self, target, Options{RespectLifecycle: true, IsProduction: false})
	for _, op := range changes.OlapChanges {
		if op.Kind == core.OpCreateMaterializedView {
			assert.Nil(t, op.Populate, "a write-only source engine must block population even in dev")
		}
	}
}

// forceRemoveAddStrategy mocks a strategy that always decomposes a table
// update into an unconditional drop+create, independent of the delta
// (scenario S6).
type forceRemoveAddStrategy struct{}

func (forceRemoveAddStrategy) DiffTableUpdate(before, after *core.Table, delta core.TableDelta, defaultDatabase string) []*core.OlapChange {
	return []*core.OlapChange{
		{Kind: core.OpDropTable, Table: before, Database: before.Database},
		{Kind: core.OpCreateTable, Table: after, Database: after.Database},
	}
}

func TestDiff_S6_AtomicDropCreatePairBlockedHolistically(t *testing.T) {
	self := core.NewInfraMap("default")
	before := mergeTreeTable("events", []*core.Column{col("id", core.KindInt), col("a", core.KindString)}, []string{"id"})
	self.Tables[before.ID("default")] = before

	target := core.NewInfraMap("default")
	after := mergeTreeTable("events", []*core.Column{col("id", core.KindInt), col("b", core.KindString)}, []string{"id"})
	after.LifeCycle = core.DeletionProtected
	target.Tables[before.ID("default")] = after

	changes := Diff(self, target, Options{
		RespectLifecycle: true,
		StrategyFor:      func(core.EngineKind) core.TableDiffStrategy { return forceRemoveAddStrategy{} },
	})

	assert.Empty(t, changes.OlapChanges, "the whole drop+create pair must be blocked, not just the drop")
	require.Len(t, changes.FilteredOlapChanges, 2)
	assert.Equal(t, "DropTable", changes.FilteredOlapChanges[0].Operation)
	assert.Equal(t, "CreateTable", changes.FilteredOlapChanges[1].Operation)
}

func TestDiff_IgnoreOpsSuppressesTableTtlDifference(t *testing.T) {
	self := core.NewInfraMap("default")
	before := mergeTreeTable("events", []*core.Column{col("id", core.KindInt)}, []string{"id"})
	before.TableTTL = "ts + INTERVAL 7 DAY"
	self.Tables[before.ID("default")] = before

	target := core.NewInfraMap("default")
	after := mergeTreeTable("events", []*core.Column{col("id", core.KindInt)}, []string{"id"})
	after.TableTTL = "ts + INTERVAL 30 DAY"
	target.Tables[before.ID("default")] = after

	changes := Diff(self, target, Options{
		RespectLifecycle: true,
		IgnoreOps:        map[IgnoreOp]bool{IgnoreModifyTableTtl: true},
	})
	assert.True(t, changes.IsEmpty())
}

func TestDiff_AlwaysUpdatedProcesses(t *testing.T) {
	self := core.NewInfraMap("default")
	self.FunctionProcesses["fn"] = &core.FunctionProcess{Name: "fn"}
	self.ConsumptionWebServer = &core.ConsumptionWebServer{}

	target := core.NewInfraMap("default")
	target.FunctionProcesses["fn"] = &core.FunctionProcess{Name: "fn"}
	target.ConsumptionWebServer = &core.ConsumptionWebServer{}

	changes := Diff(self, target, Options{RespectLifecycle: true})
	require.Len(t, changes.ProcessesChanges.FunctionProcesses, 1)
	assert.Equal(t, core.Updated, changes.ProcessesChanges.FunctionProcesses[0].Kind)
	require.NotNil(t, changes.ProcessesChanges.ConsumptionWebServer)
	assert.Equal(t, core.Updated, changes.ProcessesChanges.ConsumptionWebServer.Kind)
}

func TestDiff_WorkflowComparesOnlyScheduleRetriesTimeout(t *testing.T) {
	self := core.NewInfraMap("default")
	self.Workflows["wf"] = &core.Workflow{Name: "wf", Schedule: "@daily", Retries: 1, Timeout: "10m", Config: map[string]string{"a": "1"}}

	target := core.NewInfraMap("default")
	target.Workflows["wf"] = &core.Workflow{Name: "wf", Schedule: "@daily", Retries: 1, Timeout: "10m", Config: map[string]string{"a": "2"}}

	changes := Diff(self, target, Options{RespectLifecycle: true})
	assert.Empty(t, changes.WorkflowChanges, "config-only differences are not a diff trigger")
}
