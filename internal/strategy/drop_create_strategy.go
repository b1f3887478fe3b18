package strategy

import "inframap/internal/core"

// DropCreateStrategy is used by engines incapable of altering their sort
// key, partitioning, or engine kind in place (§3, §4.4): it decomposes
// any non-empty delta into a DropTable followed by a CreateTable of the
// new definition. The Lifecycle Filter treats this pair atomically — if
// the drop is blocked, the paired create is blocked too (§4.5, testable
// property 5).
type DropCreateStrategy struct{}

var _ core.TableDiffStrategy = DropCreateStrategy{}

func (DropCreateStrategy) DiffTableUpdate(before, after *core.Table, delta core.TableDelta, defaultDatabase string) []*core.OlapChange {
	if delta.Empty() {
		return nil
	}
	return []*core.OlapChange{
		{Kind: core.OpDropTable, Table: before, Database: before.Database, Cluster: before.ClusterName},
		{Kind: core.OpCreateTable, Table: after, Database: after.Database, Cluster: after.ClusterName},
	}
}
