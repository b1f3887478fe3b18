package toml

import (
	"fmt"
	"strings"

	"inframap/internal/core"
)

type tomlTable struct {
	Name     string `toml:"name"`
	Database string `toml:"database"`

	OrderByFields     []string `toml:"order_by_fields"`
	OrderByExpression string   `toml:"order_by_expression"`

	PartitionBy          string `toml:"partition_by"`
	SampleBy             string `toml:"sample_by"`
	TableTTL             string `toml:"table_ttl"`
	PrimaryKeyExpression string `toml:"primary_key_expression"`
	ClusterName          string `toml:"cluster_name"`
	Version              int    `toml:"version"`
	LifeCycle            string `toml:"life_cycle"`
	MetadataSource       string `toml:"metadata_source"`

	Settings map[string]string `toml:"settings"`

	Engine  tomlEngine   `toml:"engine"`
	Columns []tomlColumn `toml:"columns"`
	Indexes []tomlIndex  `toml:"indexes"`
}

func (c *converter) convertTable(tt *tomlTable) (*core.Table, error) {
	if err := c.validateTableName(tt.Name); err != nil {
		return nil, err
	}

	engine, err := convertEngine(&tt.Engine)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}

	table := &core.Table{
		Name:                 tt.Name,
		Database:             tt.Database,
		OrderBy:              core.OrderBy{Fields: tt.OrderByFields, Expression: tt.OrderByExpression},
		PartitionBy:          tt.PartitionBy,
		SampleBy:             tt.SampleBy,
		Engine:               engine,
		Version:              tt.Version,
		TableTTL:             tt.TableTTL,
		PrimaryKeyExpression: tt.PrimaryKeyExpression,
		ClusterName:          tt.ClusterName,
		Settings:             tt.Settings,
		Metadata:             metadataOf(tt.MetadataSource),
		LifeCycle:            lifeCycleOf(tt.LifeCycle),
	}

	if err := c.convertTableColumns(table, tt); err != nil {
		return nil, err
	}

	table.Indexes = make([]*core.TableIndex, 0, len(tt.Indexes))
	for i := range tt.Indexes {
		idx, err := convertTableIndex(&tt.Indexes[i])
		if err != nil {
			return nil, fmt.Errorf("index %q: %w", tt.Indexes[i].Name, err)
		}
		table.Indexes = append(table.Indexes, idx)
	}
	if err := validateIndexNames(table); err != nil {
		return nil, err
	}

	if engine.RequiresOrderBy() && table.OrderBy.Empty() {
		return nil, fmt.Errorf("table %q: engine %s requires a non-empty order_by", tt.Name, engine.Kind)
	}

	return table, nil
}

// validateTableName checks emptiness and duplicates, mirroring the
// teacher's convertTable name-validation pass before spending any time
// converting columns.
func (c *converter) validateTableName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("table name is empty")
	}
	lower := strings.ToLower(name)
	if c.seenTables[lower] {
		return fmt.Errorf("duplicate table name %q", name)
	}
	c.seenTables[lower] = true
	return nil
}

// convertTableColumns populates table.Columns, rejecting duplicate
// column names and empty tables.
func (c *converter) convertTableColumns(table *core.Table, tt *tomlTable) error {
	table.Columns = make([]*core.Column, 0, len(tt.Columns))
	seenCols := make(map[string]bool, len(tt.Columns))
	for i := range tt.Columns {
		col, err := convertColumn(&tt.Columns[i])
		if err != nil {
			return fmt.Errorf("column %q: %w", tt.Columns[i].Name, err)
		}
		lower := strings.ToLower(col.Name)
		if seenCols[lower] {
			return fmt.Errorf("duplicate column name %q", col.Name)
		}
		seenCols[lower] = true
		table.Columns = append(table.Columns, col)
	}

	if len(table.Columns) == 0 {
		return fmt.Errorf("table %q has no columns", tt.Name)
	}
	return nil
}
