package toml

import "inframap/internal/core"

type tomlApiEndpoint struct {
	Name           string `toml:"name"`
	Kind           string `toml:"kind"`
	LifeCycle      string `toml:"life_cycle"`
	MetadataSource string `toml:"metadata_source"`
}

func convertApiEndpoint(te *tomlApiEndpoint) *core.ApiEndpoint {
	kind := core.ApiEndpointKind(te.Kind)
	if kind == "" {
		kind = core.Ingress
	}
	return &core.ApiEndpoint{
		Name:      te.Name,
		Kind:      kind,
		Metadata:  metadataOf(te.MetadataSource),
		LifeCycle: lifeCycleOf(te.LifeCycle),
	}
}
