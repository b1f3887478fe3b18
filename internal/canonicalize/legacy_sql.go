package canonicalize

import (
	"regexp"
	"strings"

	"inframap/internal/core"
)

// legacyViewPattern recognizes the exact historical emission template for
// a (materialized) view written out as a raw SqlResource: `CREATE
// (MATERIALIZED )?VIEW IF NOT EXISTS <name> [TO <target>] AS <select>`
// (§3, §4.1). Matching is whitespace- and case-insensitive; the select
// body is captured verbatim.
var legacyViewPattern = regexp.MustCompile(`(?is)^CREATE\s+(MATERIALIZED\s+)?VIEW\s+IF\s+NOT\s+EXISTS\s+` +
	`(?:(\S+)\.)?(\S+?)\s*(?:TO\s+(?:(\S+)\.)?(\S+)\s*)?AS\s+(.+)$`)

// legacyDropViewPattern recognizes the paired teardown statement: `DROP
// VIEW IF EXISTS <name>`.
var legacyDropViewPattern = regexp.MustCompile(`(?is)^DROP\s+VIEW\s+IF\s+EXISTS\s+(?:(\S+)\.)?(\S+)\s*;?\s*$`)

// migrateLegacySqlResources migrates every SqlResource whose setup and
// teardown each contain exactly one statement matching the recognized
// template into a structured View or MaterializedView, removing the
// migrated SqlResource entry. Entries that don't match the template
// exactly (wrong statement count, unrecognized shape) are left as-is
// (§3). Idempotent: already-migrated maps have no matching SqlResource
// entries left to touch.
func migrateLegacySqlResources(m *core.InfraMap) {
	for id, res := range m.SqlResources {
		if len(res.Setup) != 1 || len(res.Teardown) != 1 {
			continue
		}

		setup := strings.TrimSpace(trimTrailingSemicolon(res.Setup[0]))
		teardown := strings.TrimSpace(res.Teardown[0])

		setupMatch := legacyViewPattern.FindStringSubmatch(setup)
		if setupMatch == nil {
			continue
		}
		if !legacyDropViewPattern.MatchString(teardown) {
			continue
		}

		isMaterialized := strings.TrimSpace(setupMatch[1]) != ""
		database := setupMatch[2]
		name := setupMatch[3]
		targetDatabase := setupMatch[4]
		targetTable := setupMatch[5]
		selectStatement := strings.TrimSpace(setupMatch[6])

		if isMaterialized && targetTable != "" {
			m.MaterializedViews[id] = &core.MaterializedView{
				Name:            name,
				Database:        database,
				SelectStatement: selectStatement,
				SourceTables:    sourceTablesFromSelect(selectStatement),
				TargetTable:     targetTable,
				TargetDatabase:  targetDatabase,
				Metadata:        res.Metadata,
				LifeCycle:       res.LifeCycle,
			}
		} else if !isMaterialized {
			m.Views[id] = &core.View{
				Name:            name,
				Database:        database,
				SelectStatement: selectStatement,
				SourceTables:    sourceTablesFromSelect(selectStatement),
				Metadata:        res.Metadata,
				LifeCycle:       res.LifeCycle,
			}
		} else {
			// MATERIALIZED VIEW with no TO target: not a shape the
			// historical emitter produced for MVs (they always target a
			// table). Leave as SqlResource.
			continue
		}

		delete(m.SqlResources, id)
	}
}

func trimTrailingSemicolon(s string) string {
	s = strings.TrimSpace(s)
	return strings.TrimSuffix(s, ";")
}

var fromTablePattern = regexp.MustCompile(`(?is)\bFROM\s+([a-zA-Z0-9_.\x60]+)`)

// sourceTablesFromSelect does a best-effort lineage extraction of the
// FROM-clause table referenced by a migrated legacy SELECT, for the MV
// source-table dependency list (§3). Complex joins are not parsed here;
// this is sufficient for the simple single-source template the legacy
// emitter produced.
func sourceTablesFromSelect(selectStatement string) []string {
	m := fromTablePattern.FindStringSubmatch(selectStatement)
	if m == nil {
		return nil
	}
	name := strings.Trim(m[1], "`")
	return []string{name}
}
