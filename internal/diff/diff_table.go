package diff

import (
	"inframap/internal/core"
	"inframap/internal/equivalence"
	"inframap/internal/lifecycle"
)

func diffTables(self, target *core.InfraMap, opts Options) (ops []*core.OlapChange, filtered []*core.FilteredChange) {
	for _, id := range unionKeys(self.Tables, target.Tables) {
		before, inBefore := self.Tables[id]
		after, inAfter := target.Tables[id]

		var candidate []*core.OlapChange
		var tableName string
		var lc core.LifeCycle

		switch {
		case !inBefore && inAfter:
			tableName = after.Name
			lc = after.LifeCycle
			candidate = []*core.OlapChange{{Kind: core.OpCreateTable, Table: after, Database: after.Database, Cluster: after.ClusterName}}

		case inBefore && !inAfter:
			tableName = before.Name
			lc = before.LifeCycle
			candidate = []*core.OlapChange{{Kind: core.OpDropTable, Table: before, Database: before.Database, Cluster: before.ClusterName}}

		case inBefore && inAfter:
			tableName = after.Name
			lc = after.LifeCycle
			delta := computeTableDelta(before, after, opts)
			if delta.Empty() {
				continue
			}
			candidate = opts.strategyFor(after.Engine.EffectiveKind()).DiffTableUpdate(before, after, delta, target.DefaultDatabase)
		}

		if len(candidate) == 0 {
			continue
		}

		kept, blocked := lifecycle.FilterTableOps(candidate, lc, opts.RespectLifecycle, tableName)
		ops = append(ops, kept...)
		filtered = append(filtered, blocked...)
	}

	return ops, filtered
}

// computeTableDelta normalizes away any ignored operation categories
// (§4.4) and then reports every remaining coarse and column-level
// difference between before and after.
func computeTableDelta(before, after *core.Table, opts Options) core.TableDelta {
	nb := normalizeForIgnores(before, opts)
	na := normalizeForIgnores(after, opts)

	changes := fieldChangeSet(equivalence.TableFieldChanges(nb, na))
	if len(changes) == 0 {
		return core.TableDelta{}
	}

	var delta core.TableDelta
	delta.OrderByChanged = changes["order_by"]
	delta.PartitionByChanged = changes["partition_by"]
	delta.SampleByChanged = changes["sample_by"]
	// Changing primary_key_expression has no incremental ALTER surface
	// either (ClickHouse fixes the primary key at table creation), so it
	// forces the same recreate path as an engine-kind change.
	delta.EngineChanged = changes["engine"] || changes["primary_key_expression"]
	delta.TTLChanged = changes["table_ttl"]

	if changes["columns"] {
		delta.Columns = diffColumns(nb.Columns, na.Columns, before.Columns, after.Columns)
	}
	if changes["indexes"] {
		delta.IndexesAdded, delta.IndexesRemoved = diffIndexes(before.Indexes, after.Indexes)
	}
	if changes["settings"] {
		delta.SettingsChanged = true
		delta.BeforeSettings = before.Settings
		delta.AfterSettings = after.Settings
	}

	return delta
}

// normalizeForIgnores returns a shallow clone of t with the fields
// corresponding to any active ignore_ops stripped, so those differences
// never surface as a change (§4.4).
func normalizeForIgnores(t *core.Table, opts Options) *core.Table {
	clone := *t

	if opts.ignore(IgnoreModifyTableTtl) {
		clone.TableTTL = ""
	}
	if opts.ignore(IgnoreModifyPartitionBy) {
		clone.PartitionBy = ""
	}

	if opts.ignore(IgnoreModifyColumnTtl) || opts.ignore(IgnoreStringLowCardinalityDifferences) {
		cols := make([]*core.Column, len(t.Columns))
		for i, c := range t.Columns {
			cc := *c
			if opts.ignore(IgnoreModifyColumnTtl) {
				cc.TTL = ""
			}
			if opts.ignore(IgnoreStringLowCardinalityDifferences) {
				cc.Annotations = stripLowCardinality(cc.Annotations)
			}
			cols[i] = &cc
		}
		clone.Columns = cols
	}

	return &clone
}

func stripLowCardinality(annotations []core.Annotation) []core.Annotation {
	out := make([]core.Annotation, 0, len(annotations))
	for _, a := range annotations {
		if equalFoldASCII(a.Name, "lowCardinality") {
			continue
		}
		out = append(out, a)
	}
	return out
}

func equalFoldASCII(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if 'A' <= ca && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if 'A' <= cb && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}

// diffColumns compares the normalized column lists to decide
// equality/position, but takes its payload (the AddedColumn/ModifiedColumn
// contents actually emitted to the executor) from the original,
// un-normalized columns so an ignored difference never silently strips a
// real attribute from the executed operation.
func diffColumns(normBefore, normAfter, origBefore, origAfter []*core.Column) core.TableColumnChanges {
	normBeforeByName := indexColumns(normBefore)
	normAfterByName := indexColumns(normAfter)
	origBeforeByName := indexColumns(origBefore)
	origAfterByName := indexColumns(origAfter)

	var result core.TableColumnChanges

	for i, nc := range normAfter {
		name := nc.Name
		var precedingName *string
		if i > 0 {
			prev := normAfter[i-1].Name
			precedingName = &prev
		}

		if nb, ok := normBeforeByName[name]; ok {
			if !equivalence.EqualColumn(nb, nc) {
				fieldChanges := equivalence.ColumnFieldChanges(nb, nc)
				result.Modified = append(result.Modified, core.ModifiedColumn{
					Before:      origBeforeByName[name],
					After:       origAfterByName[name],
					CommentOnly: isCommentOnlyChange(fieldChanges),
				})
			}
			continue
		}

		result.Added = append(result.Added, core.AddedColumn{
			Column: origAfterByName[name],
			After:  precedingName,
		})
	}

	for _, c := range normBefore {
		if _, ok := normAfterByName[c.Name]; !ok {
			result.Removed = append(result.Removed, origBeforeByName[c.Name])
		}
	}

	return result
}

func indexColumns(cols []*core.Column) map[string]*core.Column {
	m := make(map[string]*core.Column, len(cols))
	for _, c := range cols {
		m[c.Name] = c
	}
	return m
}

// isCommentOnlyChange reports whether the only field ColumnFieldChanges
// reported is the comment, letting the executor reduce the alter to a
// comment-only statement (§4.4, testable property 10).
func isCommentOnlyChange(changes []*equivalence.FieldChange) bool {
	if len(changes) == 0 {
		return false
	}
	for _, c := range changes {
		if c.Field != "comment" {
			return false
		}
	}
	return true
}

func diffIndexes(before, after []*core.TableIndex) (added, removed []*core.TableIndex) {
	beforeByName := make(map[string]*core.TableIndex, len(before))
	for _, idx := range before {
		beforeByName[idx.Name] = idx
	}
	afterByName := make(map[string]*core.TableIndex, len(after))
	for _, idx := range after {
		afterByName[idx.Name] = idx
	}

	for _, idx := range after {
		prev, ok := beforeByName[idx.Name]
		if !ok {
			added = append(added, idx)
			continue
		}
		if prev.Expression != idx.Expression || prev.Type != idx.Type || prev.Granularity != idx.Granularity {
			// Redefining an index under the same name requires a
			// drop-then-add; ClickHouse has no in-place ALTER INDEX.
			removed = append(removed, prev)
			added = append(added, idx)
		}
	}
	for _, idx := range before {
		if _, ok := afterByName[idx.Name]; !ok {
			removed = append(removed, idx)
		}
	}

	return added, removed
}
