package diff

import (
	"inframap/internal/core"
	"inframap/internal/equivalence"
	"inframap/internal/lifecycle"
)

func diffViews(self, target *core.InfraMap, opts Options) (ops []*core.OlapChange, filtered []*core.FilteredChange) {
	for _, id := range unionKeys(self.Views, target.Views) {
		before, inBefore := self.Views[id]
		after, inAfter := target.Views[id]

		var op *core.OlapChange
		var lc core.LifeCycle
		var name string

		switch {
		case !inBefore && inAfter:
			name, lc = after.Name, after.LifeCycle
			op = &core.OlapChange{Kind: core.OpCreateView, View: after, Database: after.Database}
		case inBefore && !inAfter:
			name, lc = before.Name, before.LifeCycle
			op = &core.OlapChange{Kind: core.OpDropView, View: before, Database: before.Database}
		case inBefore && inAfter:
			name, lc = after.Name, after.LifeCycle
			if equivalence.EqualView(before, after, target.DefaultDatabase) {
				continue
			}
			op = &core.OlapChange{Kind: core.OpUpdateView, View: after, Database: after.Database}
		}

		kept, fc := lifecycle.FilterSingleOp(op, lc, opts.RespectLifecycle, "View", name)
		if kept {
			ops = append(ops, op)
		} else if fc != nil {
			filtered = append(filtered, fc)
		}
	}

	return ops, filtered
}

func diffMaterializedViews(self, target *core.InfraMap, opts Options) (ops []*core.OlapChange, filtered []*core.FilteredChange) {
	for _, id := range unionKeys(self.MaterializedViews, target.MaterializedViews) {
		before, inBefore := self.MaterializedViews[id]
		after, inAfter := target.MaterializedViews[id]

		var op *core.OlapChange
		var lc core.LifeCycle
		var name string
		var populateCandidate *core.MaterializedView

		switch {
		case !inBefore && inAfter:
			name, lc = after.Name, after.LifeCycle
			op = &core.OlapChange{Kind: core.OpCreateMaterializedView, MaterializedView: after, Database: after.Database}
			populateCandidate = after
		case inBefore && !inAfter:
			name, lc = before.Name, before.LifeCycle
			op = &core.OlapChange{Kind: core.OpDropMaterializedView, MaterializedView: before, Database: before.Database}
		case inBefore && inAfter:
			name, lc = after.Name, after.LifeCycle
			if equivalence.EqualMaterializedView(before, after, target.DefaultDatabase) {
				continue
			}
			op = &core.OlapChange{Kind: core.OpUpdateMaterializedView, MaterializedView: after, Database: after.Database}
			populateCandidate = after
		}

		if populateCandidate != nil && shouldPopulate(populateCandidate, target, opts) {
			op.Populate = &core.PopulateMaterializedView{
				ViewName:        populateCandidate.Name,
				TargetTable:     populateCandidate.TargetTable,
				TargetDatabase:  populateCandidate.TargetDatabase,
				SelectStatement: populateCandidate.SelectStatement,
				SourceTables:    populateCandidate.SourceTables,
				ShouldTruncate:  true,
			}
		}

		kept, fc := lifecycle.FilterSingleOp(op, lc, opts.RespectLifecycle, "MaterializedView", name)
		if kept {
			ops = append(ops, op)
		} else if fc != nil {
			filtered = append(filtered, fc)
		}
	}

	return ops, filtered
}

// shouldPopulate implements the materialized-view population gate
// (§4.4): only in non-production environments, and only when every
// source table that is part of the map supports SELECT (i.e. none is a
// write-only sink engine). A source table absent from the map is an
// external dependency and does not block population (§4.2 / validate.go
// already tolerates external MV sources).
func shouldPopulate(mv *core.MaterializedView, target *core.InfraMap, opts Options) bool {
	if opts.IsProduction {
		return false
	}
	for _, sourceName := range mv.SourceTables {
		if t := findTableByName(target, sourceName); t != nil && !t.Engine.SupportsSelect() {
			return false
		}
	}
	return true
}

func findTableByName(m *core.InfraMap, name string) *core.Table {
	for _, t := range m.Tables {
		if t.Name == name {
			return t
		}
	}
	return nil
}

func diffSqlResources(self, target *core.InfraMap, opts Options) (ops []*core.OlapChange, filtered []*core.FilteredChange) {
	for _, id := range unionKeys(self.SqlResources, target.SqlResources) {
		before, inBefore := self.SqlResources[id]
		after, inAfter := target.SqlResources[id]

		var op *core.OlapChange
		var lc core.LifeCycle
		var name string

		switch {
		case !inBefore && inAfter:
			name, lc = after.Name, after.LifeCycle
			op = &core.OlapChange{Kind: core.OpAddSqlResource, SqlResource: after}
		case inBefore && !inAfter:
			name, lc = before.Name, before.LifeCycle
			op = &core.OlapChange{Kind: core.OpRemoveSqlResource, SqlResource: before}
		case inBefore && inAfter:
			name, lc = after.Name, after.LifeCycle
			if equalSqlResource(before, after) {
				continue
			}
			op = &core.OlapChange{Kind: core.OpUpdateSqlResource, SqlResource: after}
		}

		kept, fc := lifecycle.FilterSingleOp(op, lc, opts.RespectLifecycle, "SqlResource", name)
		if kept {
			ops = append(ops, op)
		} else if fc != nil {
			filtered = append(filtered, fc)
		}
	}

	return ops, filtered
}

func equalSqlResource(a, b *core.SqlResource) bool {
	return equalStringSlices(a.Setup, b.Setup) && equalStringSlices(a.Teardown, b.Teardown)
}

func equalStringSlices(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
