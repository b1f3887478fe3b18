package diff

import (
	"inframap/internal/core"
	"inframap/internal/equivalence"
	"inframap/internal/lifecycle"
)

func diffTopics(self, target *core.InfraMap, opts Options) ([]*core.Change[core.Topic], []*core.FilteredChange) {
	changes := diffSet(self.Topics, target.Topics, equivalence.EqualTopic)
	return lifecycle.FilterChanges(changes, opts.RespectLifecycle, "Topic", func(t *core.Topic) string { return t.Name })
}

func diffApiEndpoints(self, target *core.InfraMap, opts Options) ([]*core.Change[core.ApiEndpoint], []*core.FilteredChange) {
	changes := diffSet(self.ApiEndpoints, target.ApiEndpoints, equivalence.EqualApiEndpoint)
	return lifecycle.FilterChanges(changes, opts.RespectLifecycle, "ApiEndpoint", func(a *core.ApiEndpoint) string { return a.Name })
}

func diffWebApps(self, target *core.InfraMap, opts Options) ([]*core.Change[core.WebApp], []*core.FilteredChange) {
	changes := diffSet(self.WebApps, target.WebApps, equivalence.EqualWebApp)
	return lifecycle.FilterChanges(changes, opts.RespectLifecycle, "WebApp", func(w *core.WebApp) string { return w.Name })
}

func diffWorkflows(self, target *core.InfraMap, opts Options) ([]*core.Change[core.Workflow], []*core.FilteredChange) {
	changes := diffSet(self.Workflows, target.Workflows, equivalence.EqualWorkflow)
	return lifecycle.FilterChanges(changes, opts.RespectLifecycle, "Workflow", func(w *core.Workflow) string { return w.Name })
}
