package toml

import (
	"fmt"
	"strings"

	"inframap/internal/core"
)

type tomlTopic struct {
	Name             string       `toml:"name"`
	RetentionSeconds int          `toml:"retention_seconds"`
	PartitionCount   int          `toml:"partition_count"`
	MaxMessageBytes  int          `toml:"max_message_bytes"`
	Columns          []tomlColumn `toml:"columns"`
	Version          int          `toml:"version"`
	SchemaConfig     string       `toml:"schema_config"`
	LifeCycle        string       `toml:"life_cycle"`
	MetadataSource   string       `toml:"metadata_source"`
}

func convertTopic(tt *tomlTopic) (*core.Topic, error) {
	if strings.TrimSpace(tt.Name) == "" {
		return nil, fmt.Errorf("topic name is empty")
	}

	columns := make([]*core.Column, 0, len(tt.Columns))
	for i := range tt.Columns {
		col, err := convertColumn(&tt.Columns[i])
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", tt.Columns[i].Name, err)
		}
		columns = append(columns, col)
	}

	return &core.Topic{
		Name:             tt.Name,
		RetentionSeconds: tt.RetentionSeconds,
		PartitionCount:   tt.PartitionCount,
		MaxMessageBytes:  tt.MaxMessageBytes,
		Columns:          columns,
		Version:          tt.Version,
		SchemaConfig:     tt.SchemaConfig,
		Metadata:         metadataOf(tt.MetadataSource),
		LifeCycle:        lifeCycleOf(tt.LifeCycle),
	}, nil
}
