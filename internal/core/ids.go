package core

import (
	"strconv"
	"strings"
)

// localDatabaseAliases are spellings of "use the default database" that
// must collide with the empty/default case (§3).
var localDatabaseAliases = map[string]bool{
	"":      true,
	"local": true,
}

// resolveDatabase folds db into defaultDB whenever db is empty or one of
// the recognized "local" aliases, so two tables authored with different
// spellings of "use the default" land on the same qualified name.
func resolveDatabase(db, defaultDB string) string {
	if localDatabaseAliases[db] {
		return defaultDB
	}
	return db
}

// ID returns the table's stable identifier: its qualified name (database
// folded against defaultDB) plus version. Two tables that differ only in
// whether their database was spelled "local", left empty, or spelled out
// as the configured default produce the same ID.
func (t *Table) ID(defaultDB string) string {
	return qualifiedID(resolveDatabase(t.Database, defaultDB), t.Name, t.Version)
}

func qualifiedID(db, name string, version int) string {
	var b strings.Builder
	if db != "" {
		b.WriteString(db)
		b.WriteByte('.')
	}
	b.WriteString(name)
	if version != 0 {
		b.WriteString(":v")
		b.WriteString(strconv.Itoa(version))
	}
	return b.String()
}

// ID returns the topic's stable identifier.
func (t *Topic) ID() string {
	return qualifiedID("", t.Name, t.Version)
}

// ID returns the sync process's stable identifier.
func (s *SyncProcess) ID(defaultDB string) string {
	return qualifiedID("", s.Name, s.Version)
}

// FixupDefaultDB rewrites m in place so that every table keyed under a
// "local"/empty/previous-default spelling of its database is re-keyed
// under newDB, and every SyncProcess TargetTableID reference that
// pointed at the old key is rewritten to the new one. IDs are
// deterministic and stable under this rewrite (testable property 9).
// Two distinct pre-rewrite entries that fold onto the same new ID are
// the same logical table spelled two different ways (§3: "identical
// tables authored with 'local' vs. the configured default collide to
// the same ID") — the rewrite is expected to unify them, not an error.
func (m *InfraMap) FixupDefaultDB(newDB string) {
	if newDB == "" || newDB == m.DefaultDatabase {
		m.DefaultDatabase = newDB
		return
	}

	oldDefault := m.DefaultDatabase
	rewritten := make(map[string]*Table, len(m.Tables))
	idChanges := make(map[string]string, len(m.Tables))

	for oldID, tbl := range m.Tables {
		if localDatabaseAliases[tbl.Database] || tbl.Database == oldDefault {
			tbl.Database = ""
		}
		newID := tbl.ID(newDB)
		rewritten[newID] = tbl
		if newID != oldID {
			idChanges[oldID] = newID
		}
	}
	m.Tables = rewritten
	m.DefaultDatabase = newDB

	for _, sp := range m.SyncProcesses {
		if newID, ok := idChanges[sp.TargetTableID]; ok {
			sp.TargetTableID = newID
		}
	}
}
