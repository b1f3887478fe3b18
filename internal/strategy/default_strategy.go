package strategy

import "inframap/internal/core"

// DefaultStrategy decomposes a TableDelta into the full set of
// incremental atomic operations (§4.6): column add/drop/modify,
// settings modify, TTL change, index add/drop, sample-by change, and
// (when the engine or the sort key itself changed) a drop+create pair,
// since ClickHouse's ALTER TABLE ... MODIFY ORDER BY can only extend an
// existing key — it can never reorder or remove columns from it — so it
// is not a general substitute for a real order-by change (§2, §4.4).
type DefaultStrategy struct{}

var _ core.TableDiffStrategy = DefaultStrategy{}

func (DefaultStrategy) DiffTableUpdate(before, after *core.Table, delta core.TableDelta, defaultDatabase string) []*core.OlapChange {
	if delta.EngineChanged || delta.OrderByChanged {
		// Changing engine kind entirely (e.g. MergeTree ->
		// ReplacingMergeTree) or the sort key itself has no incremental
		// ALTER surface; treat as recreate.
		return DropCreateStrategy{}.DiffTableUpdate(before, after, delta, defaultDatabase)
	}

	var ops []*core.OlapChange

	for _, ac := range delta.Columns.Added {
		ops = append(ops, &core.OlapChange{
			Kind:            core.OpAddTableColumn,
			Table:           after,
			Database:        after.Database,
			Cluster:         after.ClusterName,
			Column:          ac.Column,
			PrecedingColumn: ac.After,
		})
	}

	for _, rc := range delta.Columns.Removed {
		ops = append(ops, &core.OlapChange{
			Kind:       core.OpDropTableColumn,
			Table:      after,
			Database:   after.Database,
			Cluster:    after.ClusterName,
			ColumnName: rc.Name,
		})
	}

	for _, mc := range delta.Columns.Modified {
		ops = append(ops, &core.OlapChange{
			Kind:         core.OpModifyTableColumn,
			Table:        after,
			Database:     after.Database,
			Cluster:      after.ClusterName,
			BeforeColumn: mc.Before,
			Column:       mc.After,
			CommentOnly:  mc.CommentOnly,
		})
	}

	if delta.PartitionByChanged {
		ops = append(ops, &core.OlapChange{
			Kind:              core.OpModifyPartitionBy,
			Table:             after,
			Database:          after.Database,
			Cluster:           after.ClusterName,
			BeforePartitionBy: before.PartitionBy,
			AfterPartitionBy:  after.PartitionBy,
		})
	}

	if delta.SampleByChanged {
		if after.SampleBy == "" {
			ops = append(ops, &core.OlapChange{Kind: core.OpRemoveSampleBy, Table: after, Database: after.Database, Cluster: after.ClusterName})
		} else {
			ops = append(ops, &core.OlapChange{Kind: core.OpModifySampleBy, Table: after, Database: after.Database, Cluster: after.ClusterName, SampleBy: after.SampleBy})
		}
	}

	for _, idx := range delta.IndexesAdded {
		ops = append(ops, &core.OlapChange{Kind: core.OpAddTableIndex, Table: after, Database: after.Database, Cluster: after.ClusterName, Index: idx})
	}
	for _, idx := range delta.IndexesRemoved {
		ops = append(ops, &core.OlapChange{Kind: core.OpDropTableIndex, Table: after, Database: after.Database, Cluster: after.ClusterName, IndexName: idx.Name})
	}

	if delta.SettingsChanged {
		ops = append(ops, &core.OlapChange{
			Kind:           core.OpModifyTableSettings,
			Table:          after,
			Database:       after.Database,
			Cluster:        after.ClusterName,
			BeforeSettings: delta.BeforeSettings,
			AfterSettings:  delta.AfterSettings,
		})
	}

	if delta.TTLChanged {
		ops = append(ops, &core.OlapChange{
			Kind:      core.OpModifyTableTtl,
			Table:     after,
			Database:  after.Database,
			Cluster:   after.ClusterName,
			BeforeTTL: before.TableTTL,
			AfterTTL:  after.TableTTL,
		})
	}

	return ops
}
