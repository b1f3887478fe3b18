package core

import "fmt"

// ValidationError reports a single structural problem found on one
// entity. Entity/Name identify what failed; Field/Message describe how.
type ValidationError struct {
	Entity  string
	Name    string
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s %q: %s: %s", e.Entity, e.Name, e.Field, e.Message)
	}
	return fmt.Sprintf("%s %q: %s", e.Entity, e.Name, e.Message)
}

// Validate walks the map and reports every structural invariant
// violation it finds; it never mutates m. Canonicalization (see
// internal/canonicalize) is expected to have already run — Validate
// reports what canonicalization cannot fix on its own (dangling
// references, invalid lifecycle tags, duplicate column names), and also
// reports the engine-default gaps canonicalization repairs (an empty
// order_by on an engine that requires one, a primary-key flag on an
// engine without primary-key support) when they are still present.
func (m *InfraMap) Validate() []*ValidationError {
	var errs []*ValidationError

	for id, t := range m.Tables {
		errs = append(errs, validateTable(id, t)...)
	}
	for id, mv := range m.MaterializedViews {
		errs = append(errs, validateMaterializedView(id, mv, m)...)
	}
	for id, v := range m.Views {
		if !ValidLifeCycle(v.LifeCycle) {
			errs = append(errs, invalidLifeCycle("View", v.Name, id, v.LifeCycle))
		}
	}
	for id, sp := range m.SyncProcesses {
		errs = append(errs, validateSyncProcess(id, sp, m)...)
	}
	return errs
}

func validateTable(id string, t *Table) []*ValidationError {
	var errs []*ValidationError

	if !ValidLifeCycle(t.LifeCycle) {
		errs = append(errs, invalidLifeCycle("Table", t.Name, id, t.LifeCycle))
	}

	if t.Engine.RequiresOrderBy() && t.OrderBy.Empty() {
		errs = append(errs, &ValidationError{
			Entity:  "Table",
			Name:    t.Name,
			Field:   "order_by",
			Message: "mergeable engine requires a non-empty order_by (canonicalize should have derived one from the primary key)",
		})
	}

	if !t.Engine.RequiresOrderBy() {
		for _, c := range t.Columns {
			if c.PrimaryKey {
				errs = append(errs, &ValidationError{
					Entity:  "Table",
					Name:    t.Name,
					Field:   fmt.Sprintf("columns[%s].primary_key", c.Name),
					Message: "engine does not support primary keys; canonicalize should have stripped this flag",
				})
			}
		}
	}

	seen := make(map[string]bool, len(t.Columns))
	for _, c := range t.Columns {
		if seen[c.Name] {
			errs = append(errs, &ValidationError{
				Entity:  "Table",
				Name:    t.Name,
				Field:   "columns",
				Message: fmt.Sprintf("duplicate column name %q", c.Name),
			})
		}
		seen[c.Name] = true
	}

	return errs
}

func validateMaterializedView(id string, mv *MaterializedView, m *InfraMap) []*ValidationError {
	var errs []*ValidationError

	if !ValidLifeCycle(mv.LifeCycle) {
		errs = append(errs, invalidLifeCycle("MaterializedView", mv.Name, id, mv.LifeCycle))
	}

	if findTableByNameAndDatabase(m, mv.TargetTable, mv.TargetDatabase) == nil {
		errs = append(errs, &ValidationError{
			Entity:  "MaterializedView",
			Name:    mv.Name,
			Field:   "target_table",
			Message: fmt.Sprintf("target table %q not found in map", mv.TargetTable),
		})
	}

	// Source tables not present in the map are tolerated as external
	// dependencies (§3) and are not an error.
	return errs
}

// findTableByNameAndDatabase looks up a table by its authored name
// (Tables is keyed by Table.ID, which folds in the database and an
// optional version, not by bare name). An empty database matches a
// table whose own Database is also empty, deferring "which database is
// this really in" to the caller's default-database resolution.
func findTableByNameAndDatabase(m *InfraMap, name, database string) *Table {
	for _, t := range m.Tables {
		if t.Name == name && t.Database == database {
			return t
		}
	}
	return nil
}

func validateSyncProcess(id string, sp *SyncProcess, m *InfraMap) []*ValidationError {
	var errs []*ValidationError

	if !ValidLifeCycle(sp.LifeCycle) {
		errs = append(errs, invalidLifeCycle("SyncProcess", sp.Name, id, sp.LifeCycle))
	}

	if _, ok := m.Topics[sp.SourceTopicID]; !ok {
		errs = append(errs, &ValidationError{
			Entity:  "SyncProcess",
			Name:    sp.Name,
			Field:   "source_topic_id",
			Message: fmt.Sprintf("source topic %q not found in map", sp.SourceTopicID),
		})
	}

	switch sp.Kind {
	case TopicToTable:
		if sp.TargetTableID == "" {
			errs = append(errs, &ValidationError{Entity: "SyncProcess", Name: sp.Name, Field: "target_table_id", Message: "required for TOPIC_TO_TABLE sync processes"})
		} else if _, ok := m.Tables[sp.TargetTableID]; !ok {
			errs = append(errs, &ValidationError{Entity: "SyncProcess", Name: sp.Name, Field: "target_table_id", Message: fmt.Sprintf("target table %q not found in map", sp.TargetTableID)})
		}
	case TopicToTopic:
		if sp.TargetTopicID == "" {
			errs = append(errs, &ValidationError{Entity: "SyncProcess", Name: sp.Name, Field: "target_topic_id", Message: "required for TOPIC_TO_TOPIC sync processes"})
		} else if _, ok := m.Topics[sp.TargetTopicID]; !ok {
			errs = append(errs, &ValidationError{Entity: "SyncProcess", Name: sp.Name, Field: "target_topic_id", Message: fmt.Sprintf("target topic %q not found in map", sp.TargetTopicID)})
		}
	default:
		errs = append(errs, &ValidationError{Entity: "SyncProcess", Name: sp.Name, Field: "kind", Message: fmt.Sprintf("unrecognized sync process kind %q", sp.Kind)})
	}

	return errs
}

func invalidLifeCycle(entity, name, id string, l LifeCycle) *ValidationError {
	return &ValidationError{
		Entity:  entity,
		Name:    name,
		Field:   "lifecycle",
		Message: fmt.Sprintf("invalid lifecycle tag %q (id=%s)", l, id),
	}
}
