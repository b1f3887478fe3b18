package toml

import "inframap/internal/core"

type tomlView struct {
	Name            string   `toml:"name"`
	Database        string   `toml:"database"`
	SelectStatement string   `toml:"select_statement"`
	SourceTables    []string `toml:"source_tables"`
	LifeCycle       string   `toml:"life_cycle"`
	MetadataSource  string   `toml:"metadata_source"`
}

func convertView(tv *tomlView) *core.View {
	return &core.View{
		Name:            tv.Name,
		Database:        tv.Database,
		SelectStatement: tv.SelectStatement,
		SourceTables:    tv.SourceTables,
		Metadata:        metadataOf(tv.MetadataSource),
		LifeCycle:       lifeCycleOf(tv.LifeCycle),
	}
}

type tomlMaterializedView struct {
	Name            string   `toml:"name"`
	Database        string   `toml:"database"`
	SelectStatement string   `toml:"select_statement"`
	SourceTables    []string `toml:"source_tables"`
	TargetTable     string   `toml:"target_table"`
	TargetDatabase  string   `toml:"target_database"`
	LifeCycle       string   `toml:"life_cycle"`
	MetadataSource  string   `toml:"metadata_source"`
}

func convertMaterializedView(tmv *tomlMaterializedView) *core.MaterializedView {
	return &core.MaterializedView{
		Name:            tmv.Name,
		Database:        tmv.Database,
		SelectStatement: tmv.SelectStatement,
		SourceTables:    tmv.SourceTables,
		TargetTable:     tmv.TargetTable,
		TargetDatabase:  tmv.TargetDatabase,
		Metadata:        metadataOf(tmv.MetadataSource),
		LifeCycle:       lifeCycleOf(tmv.LifeCycle),
	}
}
