package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTableID_FoldsLocalAndEmptyIntoDefault(t *testing.T) {
	local := &Table{Name: "events", Database: "local"}
	empty := &Table{Name: "events", Database: ""}
	explicit := &Table{Name: "events", Database: "analytics"}

	assert.Equal(t, local.ID("analytics"), empty.ID("analytics"))
	assert.Equal(t, local.ID("analytics"), explicit.ID("analytics"))
}

func TestTableID_VersionChangesID(t *testing.T) {
	v0 := &Table{Name: "events", Database: "analytics"}
	v1 := &Table{Name: "events", Database: "analytics", Version: 1}

	assert.NotEqual(t, v0.ID("analytics"), v1.ID("analytics"))
}

func TestTableID_DifferentNonDefaultDatabasesDiffer(t *testing.T) {
	a := &Table{Name: "events", Database: "staging"}
	b := &Table{Name: "events", Database: "archive"}

	assert.NotEqual(t, a.ID("analytics"), b.ID("analytics"))
}

func TestTopicID(t *testing.T) {
	a := &Topic{Name: "clicks"}
	b := &Topic{Name: "clicks", Version: 2}

	assert.NotEqual(t, a.ID(), b.ID())
}

func TestFixupDefaultDB_RewritesTableKeysAndSyncProcessReferences(t *testing.T) {
	m := NewInfraMap("local")
	tbl := &Table{Name: "events", Database: "local"}
	oldID := tbl.ID("local")
	m.Tables[oldID] = tbl

	sp := &SyncProcess{Name: "ingest", Kind: TopicToTable, TargetTableID: oldID}
	m.SyncProcesses["ingest"] = sp

	m.FixupDefaultDB("analytics")

	newID := tbl.ID("analytics")
	assert.Equal(t, "analytics", m.DefaultDatabase)
	assert.Contains(t, m.Tables, newID)
	assert.NotContains(t, m.Tables, oldID)
	assert.Equal(t, newID, sp.TargetTableID)
}

func TestFixupDefaultDB_NoopWhenUnchanged(t *testing.T) {
	m := NewInfraMap("analytics")
	tbl := &Table{Name: "events", Database: "analytics"}
	id := tbl.ID("analytics")
	m.Tables[id] = tbl

	m.FixupDefaultDB("analytics")

	assert.Contains(t, m.Tables, id)
}
