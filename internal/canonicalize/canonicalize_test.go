package canonicalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inframap/internal/core"
)

func TestCanonicalizeTables_DerivesOrderByFromPrimaryKey(t *testing.T) {
	m := core.NewInfraMap("default")
	m.Tables["t"] = &core.Table{
		Name:   "events",
		Engine: core.Engine{Kind: core.EngineMergeTree},
		Columns: []*core.Column{
			{Name: "id", PrimaryKey: true},
			{Name: "ts"},
		},
	}

	CanonicalizeTables(m)

	assert.Equal(t, []string{"id"}, m.Tables["t"].OrderBy.Fields)
}

func TestCanonicalizeTables_StripsPrimaryKeyOnUnsupportedEngine(t *testing.T) {
	m := core.NewInfraMap("default")
	m.Tables["t"] = &core.Table{
		Name:   "sink",
		Engine: core.Engine{Kind: core.EngineKafka, Kafka: &core.KafkaParams{Broker: "b", Topic: "t"}},
		Columns: []*core.Column{
			{Name: "id", PrimaryKey: true},
		},
	}

	CanonicalizeTables(m)

	assert.False(t, m.Tables["t"].Columns[0].PrimaryKey)
}

func TestCanonicalizeTables_Idempotent(t *testing.T) {
	m := core.NewInfraMap("default")
	m.Tables["t"] = &core.Table{
		Name:   "events",
		Engine: core.Engine{Kind: core.EngineMergeTree},
		Columns: []*core.Column{
			{Name: "id", PrimaryKey: true},
		},
		Settings: map[string]string{"index_granularity": "8192"},
	}

	CanonicalizeTables(m)
	first := m.Tables["t"].EngineParamsHash
	firstSettingsHash := m.Tables["t"].TableSettingsHash
	firstOrderBy := m.Tables["t"].OrderBy.Fields

	CanonicalizeTables(m)

	assert.Equal(t, first, m.Tables["t"].EngineParamsHash)
	assert.Equal(t, firstSettingsHash, m.Tables["t"].TableSettingsHash)
	assert.Equal(t, firstOrderBy, m.Tables["t"].OrderBy.Fields)
}

func TestNormalize_MigratesLegacyView(t *testing.T) {
	m := core.NewInfraMap("default")
	m.SqlResources["v1"] = &core.SqlResource{
		Name:     "active_users",
		Setup:    []string{"CREATE VIEW IF NOT EXISTS active_users AS SELECT * FROM users WHERE active = 1;"},
		Teardown: []string{"DROP VIEW IF EXISTS active_users;"},
	}

	Normalize(m)

	require.Empty(t, m.SqlResources)
	require.Contains(t, m.Views, "v1")
	assert.Equal(t, "active_users", m.Views["v1"].Name)
	assert.Equal(t, []string{"users"}, m.Views["v1"].SourceTables)
}

func TestNormalize_MigratesLegacyMaterializedView(t *testing.T) {
	m := core.NewInfraMap("default")
	m.SqlResources["mv1"] = &core.SqlResource{
		Name:     "daily_rollup",
		Setup:    []string{"CREATE MATERIALIZED VIEW IF NOT EXISTS daily_rollup TO rollups AS SELECT count() FROM events;"},
		Teardown: []string{"DROP VIEW IF EXISTS daily_rollup;"},
	}

	Normalize(m)

	require.Empty(t, m.SqlResources)
	require.Contains(t, m.MaterializedViews, "mv1")
	assert.Equal(t, "rollups", m.MaterializedViews["mv1"].TargetTable)
	assert.Equal(t, []string{"events"}, m.MaterializedViews["mv1"].SourceTables)
}

func TestNormalize_LeavesUnmatchedSqlResourceAlone(t *testing.T) {
	m := core.NewInfraMap("default")
	m.SqlResources["r1"] = &core.SqlResource{
		Name:     "grants",
		Setup:    []string{"GRANT SELECT ON events TO reader;", "GRANT SELECT ON users TO reader;"},
		Teardown: []string{"REVOKE SELECT ON events FROM reader;"},
	}

	Normalize(m)

	assert.Contains(t, m.SqlResources, "r1")
}

func TestNormalize_Idempotent(t *testing.T) {
	m := core.NewInfraMap("default")
	m.SqlResources["v1"] = &core.SqlResource{
		Name:     "active_users",
		Setup:    []string{"CREATE VIEW IF NOT EXISTS active_users AS SELECT * FROM users;"},
		Teardown: []string{"DROP VIEW IF EXISTS active_users;"},
	}

	Normalize(m)
	Normalize(m)

	assert.Len(t, m.Views, 1)
	assert.Empty(t, m.SqlResources)
}
