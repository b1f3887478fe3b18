// Package diff implements the planner's entry point: per-resource-kind
// comparison between a current and a desired InfraMap, producing an
// ordered, lifecycle-filtered InfraChanges (§4.4). The planner itself is
// single-threaded, deterministic, and does no I/O (§5): given the same
// two maps, strategy, and flags it always produces the same
// InfraChanges.
package diff

import (
	"inframap/internal/core"
	"inframap/internal/strategy"
)

// IgnoreOp names one of the operation categories the caller can elect to
// suppress before comparison (§4.4).
type IgnoreOp string

const (
	IgnoreModifyTableTtl                   IgnoreOp = "ModifyTableTtl"
	IgnoreModifyColumnTtl                  IgnoreOp = "ModifyColumnTtl"
	IgnoreModifyPartitionBy                IgnoreOp = "ModifyPartitionBy"
	IgnoreStringLowCardinalityDifferences  IgnoreOp = "IgnoreStringLowCardinalityDifferences"
)

// Options configures a single Diff call.
type Options struct {
	// RespectLifecycle, when false, bypasses the Lifecycle Filter
	// entirely (used for introspection-driven read paths, §4.5).
	RespectLifecycle bool

	// IsProduction gates PopulateMaterializedView emission (§4.4).
	IsProduction bool

	// IgnoreOps is the set of operation categories normalized away
	// before comparison (§4.4).
	IgnoreOps map[IgnoreOp]bool

	// StrategyFor resolves the table-diff strategy for an engine kind.
	// Defaults to strategy.For; tests override this to install a mock
	// strategy (scenario S6).
	StrategyFor func(core.EngineKind) core.TableDiffStrategy
}

func (o Options) ignore(op IgnoreOp) bool {
	return o.IgnoreOps != nil && o.IgnoreOps[op]
}

func (o Options) strategyFor(kind core.EngineKind) core.TableDiffStrategy {
	if o.StrategyFor != nil {
		return o.StrategyFor(kind)
	}
	return strategy.For(kind)
}

// Diff compares self (current state) against target (desired state) and
// returns the ordered set of operations needed to transform one into the
// other, subject to ignore_ops and the Lifecycle Filter (§4.4).
//
// Both maps must share a default_database; if they don't, self is
// rewritten in place via FixupDefaultDB(target.DefaultDatabase) first
// (§4.4 precondition, testable property 9).
func Diff(self, target *core.InfraMap, opts Options) *core.InfraChanges {
	if self.DefaultDatabase != target.DefaultDatabase {
		self.FixupDefaultDB(target.DefaultDatabase)
	}

	changes := &core.InfraChanges{}

	tableOps, tableFiltered := diffTables(self, target, opts)
	changes.OlapChanges = append(changes.OlapChanges, tableOps...)
	changes.FilteredOlapChanges = append(changes.FilteredOlapChanges, tableFiltered...)

	viewOps, viewFiltered := diffViews(self, target, opts)
	changes.OlapChanges = append(changes.OlapChanges, viewOps...)
	changes.FilteredOlapChanges = append(changes.FilteredOlapChanges, viewFiltered...)

	mvOps, mvFiltered := diffMaterializedViews(self, target, opts)
	changes.OlapChanges = append(changes.OlapChanges, mvOps...)
	changes.FilteredOlapChanges = append(changes.FilteredOlapChanges, mvFiltered...)

	sqlOps, sqlFiltered := diffSqlResources(self, target, opts)
	changes.OlapChanges = append(changes.OlapChanges, sqlOps...)
	changes.FilteredOlapChanges = append(changes.FilteredOlapChanges, sqlFiltered...)

	topicChanges, topicFiltered := diffTopics(self, target, opts)
	changes.StreamingEngineChanges = topicChanges
	changes.FilteredOlapChanges = append(changes.FilteredOlapChanges, topicFiltered...)

	apiChanges, apiFiltered := diffApiEndpoints(self, target, opts)
	changes.ApiChanges = apiChanges
	changes.FilteredOlapChanges = append(changes.FilteredOlapChanges, apiFiltered...)

	webAppChanges, webAppFiltered := diffWebApps(self, target, opts)
	changes.WebAppChanges = webAppChanges
	changes.FilteredOlapChanges = append(changes.FilteredOlapChanges, webAppFiltered...)

	workflowChanges, workflowFiltered := diffWorkflows(self, target, opts)
	changes.WorkflowChanges = workflowChanges
	changes.FilteredOlapChanges = append(changes.FilteredOlapChanges, workflowFiltered...)

	processesChanges, processesFiltered := diffProcesses(self, target, opts)
	changes.ProcessesChanges = processesChanges
	changes.FilteredOlapChanges = append(changes.FilteredOlapChanges, processesFiltered...)

	return changes
}
