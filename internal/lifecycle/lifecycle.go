// Package lifecycle implements the Lifecycle Filter (§4.5): the pass
// applied after the Differ computes a candidate change set, which
// blocks operations against resources tagged DeletionProtected or
// ExternallyManaged unless the caller explicitly bypasses it.
package lifecycle

import "inframap/internal/core"

// reason strings are part of the observable FilteredChange contract
// (§8 testable property 5) even though their exact wording isn't pinned
// by the spec; keep them stable once set since downstream tooling may
// match on them.
const (
	reasonExternallyManaged    = "resource is ExternallyManaged; the planner may only observe it"
	reasonDeletionProtected    = "resource is DeletionProtected; destructive operation blocked"
	reasonPairedWithBlockedOp  = "paired with a blocked drop as part of an atomic recreate"
)

// FilterChanges applies the Lifecycle Filter to a homogeneous slice of
// per-kind changes (topics, endpoints, web apps, workflows, sync
// processes, function processes, orchestration workers). Table updates
// go through FilterTableOps instead, since a single table Update can
// decompose into multiple atomic operations that must be filtered (and
// paired) individually.
//
// *T must implement core.LifecycleEntity; every resource kind this is
// called with does (internal/core/lifecycle_entity.go).
func FilterChanges[T any](changes []*core.Change[T], respect bool, entityKind string, nameOf func(*T) string) ([]*core.Change[T], []*core.FilteredChange) {
	if !respect {
		return changes, nil
	}

	var kept []*core.Change[T]
	var filtered []*core.FilteredChange

	for _, ch := range changes {
		entity := ch.After
		if entity == nil {
			entity = ch.Before
		}
		lc := any(entity).(core.LifecycleEntity).GetLifeCycle()

		switch lc {
		case core.ExternallyManaged:
			filtered = append(filtered, &core.FilteredChange{
				EntityKind: entityKind,
				EntityName: nameOf(entity),
				EntityID:   ch.ID,
				Operation:  string(ch.Kind),
				Reason:     reasonExternallyManaged,
			})
		case core.DeletionProtected:
			if ch.Kind == core.Removed {
				filtered = append(filtered, &core.FilteredChange{
					EntityKind: entityKind,
					EntityName: nameOf(entity),
					EntityID:   ch.ID,
					Operation:  string(ch.Kind),
					Reason:     reasonDeletionProtected,
				})
				continue
			}
			kept = append(kept, ch)
		default: // FullyManaged, or an unrecognized tag: no restriction
			kept = append(kept, ch)
		}
	}

	return kept, filtered
}

// FilterSingleOp applies the Lifecycle Filter to one standalone
// OlapChange (a view, materialized view, or legacy SQL resource
// add/remove/update — each of which is always a single op, never a
// strategy-decomposed sequence).
func FilterSingleOp(op *core.OlapChange, lc core.LifeCycle, respect bool, entityKind, entityName string) (kept bool, filtered *core.FilteredChange) {
	if !respect || lc == core.FullyManaged || lc == "" {
		return true, nil
	}

	switch lc {
	case core.ExternallyManaged:
		return false, &core.FilteredChange{EntityKind: entityKind, EntityName: entityName, Operation: string(op.Kind), Reason: reasonExternallyManaged}
	case core.DeletionProtected:
		if isDestructiveSingleOp(op.Kind) {
			return false, &core.FilteredChange{EntityKind: entityKind, EntityName: entityName, Operation: string(op.Kind), Reason: reasonDeletionProtected}
		}
		return true, nil
	default:
		return true, nil
	}
}

func isDestructiveSingleOp(kind core.OlapOpKind) bool {
	switch kind {
	case core.OpDropView, core.OpDropMaterializedView, core.OpRemoveSqlResource:
		return true
	default:
		return false
	}
}

// FilterTableOps applies the Lifecycle Filter to the ordered sequence
// of atomic ops a TableDiffStrategy produced for a single table
// (§4.5). DeletionProtected blocks a bare DropTable (no paired create),
// blocks any DropTableColumn embedded in an otherwise-kept Update, and
// atomically blocks a strategy-emitted DropTable+CreateTable pair
// together: if the drop in the pair is blocked, the paired create is
// blocked too (testable property 5). ExternallyManaged blocks the
// entire sequence.
func FilterTableOps(ops []*core.OlapChange, lc core.LifeCycle, respect bool, tableName string) (kept []*core.OlapChange, filtered []*core.FilteredChange) {
	if !respect || lc == core.FullyManaged || lc == "" || len(ops) == 0 {
		return ops, nil
	}

	if lc == core.ExternallyManaged {
		for _, op := range ops {
			filtered = append(filtered, &core.FilteredChange{
				EntityKind: "Table",
				EntityName: tableName,
				Operation:  string(op.Kind),
				Reason:     reasonExternallyManaged,
			})
		}
		return nil, filtered
	}

	// lc == DeletionProtected
	for i := 0; i < len(ops); i++ {
		op := ops[i]

		if op.Kind == core.OpDropTable {
			// A DropTable immediately followed by a CreateTable is the
			// atomic recreate pair a strategy emits on engine change;
			// block both together.
			if i+1 < len(ops) && ops[i+1].Kind == core.OpCreateTable {
				filtered = append(filtered,
					&core.FilteredChange{EntityKind: "Table", EntityName: tableName, Operation: string(core.OpDropTable), Reason: reasonDeletionProtected},
					&core.FilteredChange{EntityKind: "Table", EntityName: tableName, Operation: string(core.OpCreateTable), Reason: reasonPairedWithBlockedOp},
				)
				i++
				continue
			}
			// A bare DropTable with no paired create is a genuine
			// removal from the desired state.
			filtered = append(filtered, &core.FilteredChange{EntityKind: "Table", EntityName: tableName, Operation: string(core.OpDropTable), Reason: reasonDeletionProtected})
			continue
		}

		if op.Kind == core.OpDropTableColumn {
			filtered = append(filtered, &core.FilteredChange{EntityKind: "Table", EntityName: tableName, Operation: string(core.OpDropTableColumn), Reason: reasonDeletionProtected})
			continue
		}

		kept = append(kept, op)
	}

	return kept, filtered
}
