package toml

import (
	"fmt"
	"strings"

	"inframap/internal/core"
)

type tomlIndex struct {
	Name        string `toml:"name"`
	Expression  string `toml:"expression"`
	Type        string `toml:"type"`
	Granularity int    `toml:"granularity"`
}

func convertTableIndex(ti *tomlIndex) (*core.TableIndex, error) {
	if strings.TrimSpace(ti.Name) == "" {
		return nil, fmt.Errorf("index name is empty")
	}
	if strings.TrimSpace(ti.Expression) == "" {
		return nil, fmt.Errorf("index %q has no expression", ti.Name)
	}
	if strings.TrimSpace(ti.Type) == "" {
		return nil, fmt.Errorf("index %q has no type", ti.Name)
	}
	return &core.TableIndex{
		Name:        ti.Name,
		Expression:  ti.Expression,
		Type:        ti.Type,
		Granularity: ti.Granularity,
	}, nil
}

func validateIndexNames(table *core.Table) error {
	seen := make(map[string]bool, len(table.Indexes))
	for _, idx := range table.Indexes {
		lower := strings.ToLower(idx.Name)
		if seen[lower] {
			return fmt.Errorf("table %q: duplicate index name %q", table.Name, idx.Name)
		}
		seen[lower] = true
	}
	return nil
}
