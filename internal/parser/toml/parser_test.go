package toml

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inframap/internal/core"
)

const fullDocument = `
default_database = "analytics"
moose_version = "0.5.1"

[[tables]]
name = "events"
order_by_fields = ["id"]

[tables.engine]
kind = "MergeTree"

[[tables.columns]]
name = "id"
primary_key = true
[tables.columns.type]
kind = "String"

[[tables.columns]]
name = "amount"
[tables.columns.type]
kind = "Decimal"
precision = 18
scale = 4

[[tables.indexes]]
name = "idx_amount"
expression = "amount"
type = "minmax"
granularity = 4

[[topics]]
name = "events_raw"
partition_count = 3

[[topics.columns]]
name = "payload"
[topics.columns.type]
kind = "String"

[[api_endpoints]]
name = "events_ingest"
kind = "INGRESS"

[[views]]
name = "events_view"
database = "analytics"
select_statement = "SELECT * FROM events"
source_tables = ["events"]

[[materialized_views]]
name = "events_mv"
select_statement = "SELECT id FROM events"
source_tables = ["events"]
target_table = "events_rollup"

[[sql_resources]]
name = "seed_data"
setup_sql = "INSERT INTO events VALUES (1); INSERT INTO events VALUES (2);"
teardown = ["DROP TABLE seed_tmp;"]

[[sync_processes]]
name = "events_sync"
kind = "TOPIC_TO_TABLE"
source_topic_id = "events_raw"
target_table_id = "analytics.events"

[[function_processes]]
name = "enrich"

[[orchestration_workers]]
name = "worker_1"

[[web_apps]]
name = "dashboard"

[[workflows]]
name = "nightly_rollup"
schedule = "@daily"
retries = 2

[consumption_web_server]
metadata_source = "infra.toml"
`

func TestParser_Parse_FullDocument(t *testing.T) {
	m, err := NewParser().Parse(strings.NewReader(fullDocument))
	require.NoError(t, err)

	assert.Equal(t, "analytics", m.DefaultDatabase)
	assert.Equal(t, "0.5.1", m.MooseVersion)

	require.Len(t, m.Tables, 1)
	var tbl *core.Table
	for _, v := range m.Tables {
		tbl = v
	}
	require.NotNil(t, tbl)
	assert.Equal(t, "events", tbl.Name)
	require.Len(t, tbl.Columns, 2)
	require.Len(t, tbl.Indexes, 1)
	assert.Equal(t, "idx_amount", tbl.Indexes[0].Name)

	require.Len(t, m.Topics, 1)
	for _, v := range m.Topics {
		assert.Equal(t, "events_raw", v.Name)
		assert.Equal(t, 3, v.PartitionCount)
	}

	require.Len(t, m.ApiEndpoints, 1)
	assert.Equal(t, core.ApiEndpointKind("INGRESS"), m.ApiEndpoints["events_ingest"].Kind)

	require.Len(t, m.Views, 1)
	require.Len(t, m.MaterializedViews, 1)

	require.Len(t, m.SqlResources, 1)
	seed := m.SqlResources["seed_data"]
	require.NotNil(t, seed)
	assert.Len(t, seed.Setup, 2)
	assert.Contains(t, seed.Setup[0], "INSERT INTO `events` VALUES (1)")
	assert.Equal(t, []string{"DROP TABLE seed_tmp;"}, seed.Teardown)

	require.Len(t, m.SyncProcesses, 1)
	require.Len(t, m.FunctionProcesses, 1)
	require.Len(t, m.OrchestrationWorkers, 1)
	require.Len(t, m.WebApps, 1)

	require.Len(t, m.Workflows, 1)
	wf := m.Workflows["nightly_rollup"]
	require.NotNil(t, wf)
	assert.Equal(t, "@daily", wf.Schedule)
	assert.Equal(t, 2, wf.Retries)

	require.NotNil(t, m.ConsumptionWebServer)
	require.NotNil(t, m.ConsumptionWebServer.Metadata)
	assert.Equal(t, "infra.toml", m.ConsumptionWebServer.Metadata.Source)

	for _, v := range m.Tables {
		assert.Equal(t, core.FullyManaged, v.LifeCycle)
	}
}

func TestParser_Parse_DuplicateTableName(t *testing.T) {
	const doc = `
[[tables]]
name = "events"
order_by_fields = ["id"]
[tables.engine]
kind = "MergeTree"
[[tables.columns]]
name = "id"
[tables.columns.type]
kind = "String"

[[tables]]
name = "events"
order_by_fields = ["id"]
[tables.engine]
kind = "MergeTree"
[[tables.columns]]
name = "id"
[tables.columns.type]
kind = "String"
`
	_, err := NewParser().Parse(strings.NewReader(doc))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate table name")
}

func TestParser_Parse_MissingOrderByOnMergeTreeErrors(t *testing.T) {
	const doc = `
[[tables]]
name = "events"
[tables.engine]
kind = "MergeTree"
[[tables.columns]]
name = "id"
[tables.columns.type]
kind = "String"
`
	_, err := NewParser().Parse(strings.NewReader(doc))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires a non-empty order_by")
}

func TestParser_Parse_UnknownEngineKindErrors(t *testing.T) {
	const doc = `
[[tables]]
name = "events"
order_by_fields = ["id"]
[tables.engine]
kind = "NotARealEngine"
[[tables.columns]]
name = "id"
[tables.columns.type]
kind = "String"
`
	_, err := NewParser().Parse(strings.NewReader(doc))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported engine kind")
}

func TestParser_Parse_ReplicatedEngineRequiresParams(t *testing.T) {
	const doc = `
[[tables]]
name = "events"
order_by_fields = ["id"]
[tables.engine]
kind = "ReplicatedMergeTree"
[[tables.columns]]
name = "id"
[tables.columns.type]
kind = "String"
`
	_, err := NewParser().Parse(strings.NewReader(doc))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires a replicated table")
}

func TestConvertColumnType_Array(t *testing.T) {
	ct, err := convertColumnType(&tomlColumnType{
		Kind:    "Array",
		Element: &tomlColumnType{Kind: "Int", IntWidth: "Int32"},
	})
	require.NoError(t, err)
	assert.Equal(t, core.KindArray, ct.Kind)
	require.NotNil(t, ct.Element)
	assert.Equal(t, core.IntWidth("Int32"), ct.Element.IntWidth)
}

func TestConvertColumnType_DecimalRequiresPositivePrecision(t *testing.T) {
	_, err := convertColumnType(&tomlColumnType{Kind: "Decimal", Precision: 0})
	require.Error(t, err)
}

func TestConvertColumnType_UnknownKindErrors(t *testing.T) {
	_, err := convertColumnType(&tomlColumnType{Kind: "Bogus"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported column type kind")
}

func TestSplitSQLStatements_MultiStatement(t *testing.T) {
	stmts := splitSQLStatements("INSERT INTO t VALUES (1); INSERT INTO t VALUES (2);")
	require.Len(t, stmts, 2)
}

func TestSplitSQLStatements_Empty(t *testing.T) {
	assert.Nil(t, splitSQLStatements(""))
	assert.Nil(t, splitSQLStatements("   "))
}

func TestConvertTableIndex_RejectsMissingExpression(t *testing.T) {
	_, err := convertTableIndex(&tomlIndex{Name: "idx", Type: "minmax"})
	require.Error(t, err)
}

func TestConvertApiEndpoint_DefaultsKindToIngress(t *testing.T) {
	ep := convertApiEndpoint(&tomlApiEndpoint{Name: "ep"})
	assert.Equal(t, core.Ingress, ep.Kind)
}
