package diff

import (
	"inframap/internal/core"
	"inframap/internal/lifecycle"
)

// diffProcesses computes the wholesale-redeploy resource kinds (§4.4):
// sync processes compare by their actual routing fields, while function
// processes, orchestration workers, and the consumption web server have
// no structural schema to diff against and are always redeployed when
// present on both sides.
func diffProcesses(self, target *core.InfraMap, opts Options) (core.ProcessesChanges, []*core.FilteredChange) {
	var result core.ProcessesChanges
	var filtered []*core.FilteredChange

	syncChanges := diffSet(self.SyncProcesses, target.SyncProcesses, equalSyncProcess)
	kept, fc := lifecycle.FilterChanges(syncChanges, opts.RespectLifecycle, "SyncProcess", func(s *core.SyncProcess) string { return s.Name })
	result.SyncProcesses = kept
	filtered = append(filtered, fc...)

	fnChanges := diffSet(self.FunctionProcesses, target.FunctionProcesses, alwaysUpdated[core.FunctionProcess])
	kept2, fc2 := lifecycle.FilterChanges(fnChanges, opts.RespectLifecycle, "FunctionProcess", func(f *core.FunctionProcess) string { return f.Name })
	result.FunctionProcesses = kept2
	filtered = append(filtered, fc2...)

	owChanges := diffSet(self.OrchestrationWorkers, target.OrchestrationWorkers, alwaysUpdated[core.OrchestrationWorker])
	kept3, fc3 := lifecycle.FilterChanges(owChanges, opts.RespectLifecycle, "OrchestrationWorker", func(o *core.OrchestrationWorker) string { return o.Name })
	result.OrchestrationWorkers = kept3
	filtered = append(filtered, fc3...)

	result.ConsumptionWebServer = diffConsumptionWebServer(self.ConsumptionWebServer, target.ConsumptionWebServer)

	return result, filtered
}

// alwaysUpdated reports entities present on both sides as always
// differing: FunctionProcess, OrchestrationWorker, and
// ConsumptionWebServer carry no structural schema for the differ to
// compare, so they are always fully redeployed when present in both
// maps (§4.4).
func alwaysUpdated[T any](_, _ *T) bool { return false }

func equalSyncProcess(a, b *core.SyncProcess) bool {
	return a.Kind == b.Kind &&
		a.SourceTopicID == b.SourceTopicID &&
		a.TargetTableID == b.TargetTableID &&
		a.TargetTopicID == b.TargetTopicID &&
		a.Version == b.Version
}

func diffConsumptionWebServer(before, after *core.ConsumptionWebServer) *core.Change[core.ConsumptionWebServer] {
	switch {
	case before == nil && after == nil:
		return nil
	case before == nil:
		return &core.Change[core.ConsumptionWebServer]{Kind: core.Added, ID: "consumption-web-server", After: after}
	case after == nil:
		return &core.Change[core.ConsumptionWebServer]{Kind: core.Removed, ID: "consumption-web-server", Before: before}
	default:
		return &core.Change[core.ConsumptionWebServer]{Kind: core.Updated, ID: "consumption-web-server", Before: before, After: after}
	}
}
