// Package olap implements the executor contract (§4.6, §5): given an
// ordered InfraChanges, turn each abstract OlapChange into the concrete
// DDL/admin statement(s) a ClickHouse-family OLAP store understands and
// apply them sequentially, non-transactionally, in plan order. The SQL
// shapes below are grounded in the original implementation's
// execute_create_table/execute_add_table_column/... family (each one
// op kind, one function) rather than invented from scratch.
package olap

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"inframap/internal/core"
)

// BuildStatements returns the sequence of raw SQL statements that apply
// a single OlapChange. Most op kinds produce exactly one statement;
// RawSql operations pass their statements through unchanged, and
// PopulateMaterializedView additionally appends an INSERT...SELECT
// backfill after the view's CREATE/ALTER when Populate is set.
func BuildStatements(defaultDatabase string, op *core.OlapChange) ([]string, error) {
	switch op.Kind {
	case core.OpCreateTable:
		return []string{createTableSQL(defaultDatabase, op.Table)}, nil
	case core.OpDropTable:
		return []string{dropTableSQL(database(defaultDatabase, op.Database), op.Table.Name, op.Cluster)}, nil
	case core.OpAddTableColumn:
		return []string{addColumnSQL(database(defaultDatabase, op.Database), op.Table.Name, op.Column, op.PrecedingColumn, op.Cluster)}, nil
	case core.OpDropTableColumn:
		return []string{dropColumnSQL(database(defaultDatabase, op.Database), op.Table.Name, op.ColumnName, op.Cluster)}, nil
	case core.OpModifyTableColumn:
		return []string{modifyColumnSQL(database(defaultDatabase, op.Database), op.Table.Name, op.Column, op.CommentOnly, op.Cluster)}, nil
	case core.OpRenameTableColumn:
		return []string{renameColumnSQL(database(defaultDatabase, op.Database), op.Table.Name, op.ColumnName, derefOrEmpty(op.AfterColumnName), op.Cluster)}, nil
	case core.OpModifyTableSettings:
		return modifySettingsSQL(database(defaultDatabase, op.Database), op.Table.Name, op.BeforeSettings, op.AfterSettings, op.Cluster), nil
	case core.OpModifyTableTtl:
		return []string{modifyTTLSQL(database(defaultDatabase, op.Database), op.Table.Name, op.AfterTTL, op.Cluster)}, nil
	case core.OpModifyPartitionBy:
		return []string{modifyPartitionBySQL(database(defaultDatabase, op.Database), op.Table.Name, op.AfterPartitionBy, op.Cluster)}, nil
	case core.OpAddTableIndex:
		return []string{addIndexSQL(database(defaultDatabase, op.Database), op.Table.Name, op.Index, op.Cluster)}, nil
	case core.OpDropTableIndex:
		return []string{dropIndexSQL(database(defaultDatabase, op.Database), op.Table.Name, op.IndexName, op.Cluster)}, nil
	case core.OpModifySampleBy:
		return []string{modifySampleBySQL(database(defaultDatabase, op.Database), op.Table.Name, op.SampleBy, op.Cluster)}, nil
	case core.OpRemoveSampleBy:
		return []string{removeSampleBySQL(database(defaultDatabase, op.Database), op.Table.Name, op.Cluster)}, nil
	case core.OpCreateView:
		return []string{createViewSQL(defaultDatabase, op.View)}, nil
	case core.OpUpdateView:
		return []string{dropViewSQL(database(defaultDatabase, op.View.Database), op.View.Name), createViewSQL(defaultDatabase, op.View)}, nil
	case core.OpDropView:
		return []string{dropViewSQL(database(defaultDatabase, op.View.Database), op.View.Name)}, nil
	case core.OpCreateMaterializedView:
		stmts := []string{createMaterializedViewSQL(defaultDatabase, op.MaterializedView)}
		return append(stmts, populateStatements(op.Populate)...), nil
	case core.OpUpdateMaterializedView:
		stmts := []string{dropMaterializedViewSQL(database(defaultDatabase, op.MaterializedView.Database), op.MaterializedView.Name), createMaterializedViewSQL(defaultDatabase, op.MaterializedView)}
		return append(stmts, populateStatements(op.Populate)...), nil
	case core.OpDropMaterializedView:
		return []string{dropMaterializedViewSQL(database(defaultDatabase, op.MaterializedView.Database), op.MaterializedView.Name)}, nil
	case core.OpAddSqlResource:
		return op.SqlResource.Setup, nil
	case core.OpRemoveSqlResource:
		return op.SqlResource.Teardown, nil
	case core.OpUpdateSqlResource:
		stmts := append([]string{}, op.SqlResource.Teardown...)
		return append(stmts, op.SqlResource.Setup...), nil
	case core.OpRawSql:
		return op.RawSQL, nil
	default:
		return nil, fmt.Errorf("olap: no statement builder for operation kind %q", op.Kind)
	}
}

func populateStatements(p *core.PopulateMaterializedView) []string {
	if p == nil {
		return nil
	}
	target := p.TargetTable
	if p.TargetDatabase != "" {
		target = quoteIdent(p.TargetDatabase) + "." + quoteIdent(p.TargetTable)
	} else {
		target = quoteIdent(p.TargetTable)
	}
	var stmts []string
	if p.ShouldTruncate {
		stmts = append(stmts, fmt.Sprintf("TRUNCATE TABLE IF EXISTS %s", target))
	}
	stmts = append(stmts, fmt.Sprintf("INSERT INTO %s %s", target, p.SelectStatement))
	return stmts
}

func database(defaultDatabase, override string) string {
	if override != "" {
		return override
	}
	return defaultDatabase
}

// ReferencedDatabases returns the sorted, deduplicated set of databases
// a plan's operations touch, including a PopulateMaterializedView's
// target database when it differs from the view's own database. The
// executor creates each one ahead of running the plan (§4.6: "must
// ensure each database referenced exists (create-if-absent) before
// use"), grounded in the original implementation's CREATE DATABASE IF
// NOT EXISTS loop over all referenced databases before teardown/setup.
func ReferencedDatabases(defaultDatabase string, ops []*core.OlapChange) []string {
	seen := map[string]bool{}
	for _, op := range ops {
		seen[database(defaultDatabase, op.Database)] = true
		if op.Populate != nil && op.Populate.TargetDatabase != "" {
			seen[op.Populate.TargetDatabase] = true
		}
	}

	dbs := make([]string, 0, len(seen))
	for db := range seen {
		dbs = append(dbs, db)
	}
	sort.Strings(dbs)
	return dbs
}

func createDatabaseSQL(name string) string {
	return "CREATE DATABASE IF NOT EXISTS " + quoteIdent(name)
}

func quoteIdent(name string) string {
	return "`" + name + "`"
}

func clusterClause(cluster string) string {
	if cluster == "" {
		return ""
	}
	return " ON CLUSTER " + cluster
}

func qualified(db, name string) string {
	if db == "" {
		return quoteIdent(name)
	}
	return quoteIdent(db) + "." + quoteIdent(name)
}

func derefOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func createTableSQL(defaultDatabase string, t *core.Table) string {
	db := database(defaultDatabase, t.Database)
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE IF NOT EXISTS %s%s (\n", qualified(db, t.Name), clusterClause(t.ClusterName))
	for i, c := range t.Columns {
		if i > 0 {
			b.WriteString(",\n")
		}
		fmt.Fprintf(&b, "  %s", columnDefinitionSQL(c))
	}
	b.WriteString("\n)\n")
	fmt.Fprintf(&b, "ENGINE = %s\n", engineSQL(t.Engine))
	b.WriteString(orderBySQL(t.OrderBy))
	if t.PartitionBy != "" {
		fmt.Fprintf(&b, "\nPARTITION BY %s", t.PartitionBy)
	}
	if t.SampleBy != "" {
		fmt.Fprintf(&b, "\nSAMPLE BY %s", t.SampleBy)
	}
	if t.PrimaryKeyExpression != "" {
		fmt.Fprintf(&b, "\nPRIMARY KEY %s", t.PrimaryKeyExpression)
	}
	if t.TableTTL != "" {
		fmt.Fprintf(&b, "\nTTL %s", t.TableTTL)
	}
	if len(t.Settings) > 0 {
		fmt.Fprintf(&b, "\nSETTINGS %s", settingsClauseSQL(t.Settings))
	}
	return b.String()
}

func columnDefinitionSQL(c *core.Column) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s", quoteIdent(c.Name), columnTypeSQL(c.Type, c.Required))
	if c.Default != nil {
		fmt.Fprintf(&b, " DEFAULT %s", *c.Default)
	}
	if c.Materialized != "" {
		fmt.Fprintf(&b, " MATERIALIZED %s", c.Materialized)
	}
	if c.Codec != "" {
		fmt.Fprintf(&b, " CODEC(%s)", c.Codec)
	}
	if c.TTL != "" {
		fmt.Fprintf(&b, " TTL %s", c.TTL)
	}
	if c.Comment != "" {
		fmt.Fprintf(&b, " COMMENT %s", quoteString(c.Comment))
	}
	return b.String()
}

// columnTypeSQL renders a ColumnType. Required governs the single
// top-level Nullable() wrap; nested element/field nullability is
// carried on the type tree itself (Array.ElementNullable, Nullable()).
func columnTypeSQL(t core.ColumnType, required bool) string {
	inner := baseColumnTypeSQL(t)
	if !required && t.Kind != core.KindNullable {
		return fmt.Sprintf("Nullable(%s)", inner)
	}
	return inner
}

func baseColumnTypeSQL(t core.ColumnType) string {
	switch t.Kind {
	case core.KindString:
		return "String"
	case core.KindFixedString:
		return fmt.Sprintf("FixedString(%d)", t.FixedLength)
	case core.KindBoolean:
		return "Bool"
	case core.KindInt:
		return string(t.IntWidth)
	case core.KindBigInt:
		return "Int64"
	case core.KindFloat:
		return string(t.FloatWidth)
	case core.KindDecimal:
		return fmt.Sprintf("Decimal(%d, %d)", t.Precision, t.Scale)
	case core.KindDate:
		return "Date"
	case core.KindDate16:
		return "Date32"
	case core.KindDateTime:
		if t.DateTimePrecision != nil {
			return fmt.Sprintf("DateTime64(%d)", *t.DateTimePrecision)
		}
		return "DateTime"
	case core.KindEnum:
		return enumTypeSQL(t.Enum)
	case core.KindArray:
		elem := "String"
		if t.Element != nil {
			elem = columnTypeSQL(*t.Element, !t.ElementNullable)
		}
		return fmt.Sprintf("Array(%s)", elem)
	case core.KindNested:
		return nestedTypeSQL(t.NestedFields)
	case core.KindNamedTuple:
		return namedTupleSQL(t.TupleFields)
	case core.KindJson:
		return jsonTypeSQL(t.Json)
	case core.KindMap:
		key, val := "String", "String"
		if t.MapKey != nil {
			key = columnTypeSQL(*t.MapKey, true)
		}
		if t.MapValue != nil {
			val = columnTypeSQL(*t.MapValue, true)
		}
		return fmt.Sprintf("Map(%s, %s)", key, val)
	case core.KindBytes:
		return "String"
	case core.KindUuid:
		return "UUID"
	case core.KindIpV4:
		return "IPv4"
	case core.KindIpV6:
		return "IPv6"
	case core.KindPoint:
		return "Point"
	case core.KindRing:
		return "Ring"
	case core.KindLineString:
		return "LineString"
	case core.KindMultiLineString:
		return "MultiLineString"
	case core.KindPolygon:
		return "Polygon"
	case core.KindMultiPolygon:
		return "MultiPolygon"
	case core.KindNullable:
		inner := "String"
		if t.Inner != nil {
			inner = baseColumnTypeSQL(*t.Inner)
		}
		return fmt.Sprintf("Nullable(%s)", inner)
	default:
		return "String"
	}
}

func enumTypeSQL(e *core.DataEnum) string {
	if e == nil {
		return "Enum8()"
	}
	parts := make([]string, 0, len(e.Members))
	for i, m := range e.Members {
		val := i
		if m.IntValue != nil {
			val = *m.IntValue
		}
		parts = append(parts, fmt.Sprintf("%s = %d", quoteString(m.Name), val))
	}
	return fmt.Sprintf("Enum8(%s)", strings.Join(parts, ", "))
}

func nestedTypeSQL(fields []*core.Column) string {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s %s", quoteIdent(f.Name), columnTypeSQL(f.Type, f.Required)))
	}
	return fmt.Sprintf("Nested(%s)", strings.Join(parts, ", "))
}

func namedTupleSQL(fields []core.NamedTupleField) string {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s %s", quoteIdent(f.Name), columnTypeSQL(f.Type, true)))
	}
	return fmt.Sprintf("Tuple(%s)", strings.Join(parts, ", "))
}

func jsonTypeSQL(opts *core.JsonOptions) string {
	if opts == nil {
		return "JSON"
	}
	var params []string
	if opts.MaxDynamicPaths != nil {
		params = append(params, fmt.Sprintf("max_dynamic_paths=%d", *opts.MaxDynamicPaths))
	}
	if opts.MaxDynamicTypes != nil {
		params = append(params, fmt.Sprintf("max_dynamic_types=%d", *opts.MaxDynamicTypes))
	}
	for _, tp := range opts.TypedPaths {
		params = append(params, fmt.Sprintf("%s %s", tp.Path, columnTypeSQL(tp.Type, true)))
	}
	for _, sp := range opts.SkipPaths {
		params = append(params, fmt.Sprintf("SKIP %s", sp))
	}
	for _, sr := range opts.SkipRegexps {
		params = append(params, fmt.Sprintf("SKIP REGEXP %s", quoteString(sr)))
	}
	if len(params) == 0 {
		return "JSON"
	}
	return fmt.Sprintf("JSON(%s)", strings.Join(params, ", "))
}

func engineSQL(e core.Engine) string {
	switch e.Kind {
	case core.EngineMergeTree:
		return "MergeTree"
	case core.EngineReplacingMergeTree:
		if e.ReplacingVersionColumn == "" {
			return "ReplacingMergeTree"
		}
		if e.ReplacingIsDeletedColumn != "" {
			return fmt.Sprintf("ReplacingMergeTree(%s, %s)", e.ReplacingVersionColumn, e.ReplacingIsDeletedColumn)
		}
		return fmt.Sprintf("ReplacingMergeTree(%s)", e.ReplacingVersionColumn)
	case core.EngineAggregatingMergeTree:
		return "AggregatingMergeTree"
	case core.EngineSummingMergeTree:
		if len(e.SummingColumns) == 0 {
			return "SummingMergeTree"
		}
		return fmt.Sprintf("SummingMergeTree(%s)", strings.Join(e.SummingColumns, ", "))
	case core.EngineReplicatedMergeTree:
		base := "MergeTree"
		if e.Replicated != nil {
			base = engineSQL(core.Engine{Kind: e.Replicated.BaseKind})
		}
		keeperPath, replica := "", ""
		if e.Replicated != nil {
			keeperPath, replica = e.Replicated.KeeperPath, e.Replicated.ReplicaName
		}
		return fmt.Sprintf("Replicated%s('%s', '%s')", base, keeperPath, replica)
	case core.EngineKafka:
		if e.Kafka == nil {
			return "Kafka"
		}
		return fmt.Sprintf("Kafka('%s', '%s', '%s', '%s')", e.Kafka.Broker, e.Kafka.Topic, e.Kafka.Group, e.Kafka.Format)
	case core.EngineS3Queue:
		if e.S3Queue == nil {
			return "S3Queue"
		}
		return fmt.Sprintf("S3Queue('%s', '%s')", e.S3Queue.Path, e.S3Queue.Format)
	case core.EngineS3:
		if e.S3 == nil {
			return "S3"
		}
		return fmt.Sprintf("S3('%s', '%s')", e.S3.Path, e.S3.Format)
	case core.EngineIcebergS3:
		if e.IcebergS3 == nil {
			return "IcebergS3"
		}
		return fmt.Sprintf("IcebergS3('%s')", e.IcebergS3.Path)
	default:
		return string(e.Kind)
	}
}

func orderBySQL(o core.OrderBy) string {
	if len(o.Fields) > 0 {
		return fmt.Sprintf("ORDER BY (%s)", strings.Join(o.Fields, ", "))
	}
	if o.Expression != "" {
		return fmt.Sprintf("ORDER BY %s", o.Expression)
	}
	return "ORDER BY tuple()"
}

func settingsClauseSQL(settings map[string]string) string {
	keys := make([]string, 0, len(settings))
	for k := range settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s = %s", k, quoteSettingValue(settings[k])))
	}
	return strings.Join(parts, ", ")
}

func quoteSettingValue(v string) string {
	if _, err := strconv.ParseFloat(v, 64); err == nil {
		return v
	}
	return quoteString(v)
}

func quoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "\\'") + "'"
}

func dropTableSQL(db, name, cluster string) string {
	return fmt.Sprintf("DROP TABLE IF EXISTS %s%s", qualified(db, name), clusterClause(cluster))
}

func addColumnSQL(db, table string, c *core.Column, after *string, cluster string) string {
	position := "FIRST"
	if after != nil {
		position = fmt.Sprintf("AFTER %s", quoteIdent(*after))
	}
	return fmt.Sprintf("ALTER TABLE %s%s ADD COLUMN IF NOT EXISTS %s %s", qualified(db, table), clusterClause(cluster), columnDefinitionSQL(c), position)
}

func dropColumnSQL(db, table, column, cluster string) string {
	return fmt.Sprintf("ALTER TABLE %s%s DROP COLUMN IF EXISTS %s", qualified(db, table), clusterClause(cluster), quoteIdent(column))
}

// modifyColumnSQL reduces to a comment-only alter when commentOnly is set
// (testable property 10), matching the original's
// execute_modify_column_comment split.
func modifyColumnSQL(db, table string, c *core.Column, commentOnly bool, cluster string) string {
	if commentOnly {
		return fmt.Sprintf("ALTER TABLE %s%s COMMENT COLUMN %s %s", qualified(db, table), clusterClause(cluster), quoteIdent(c.Name), quoteString(c.Comment))
	}
	return fmt.Sprintf("ALTER TABLE %s%s MODIFY COLUMN %s", qualified(db, table), clusterClause(cluster), columnDefinitionSQL(c))
}

func renameColumnSQL(db, table, before, after, cluster string) string {
	return fmt.Sprintf("ALTER TABLE %s%s RENAME COLUMN %s TO %s", qualified(db, table), clusterClause(cluster), quoteIdent(before), quoteIdent(after))
}

// modifySettingsSQL decomposes a settings delta into one MODIFY SETTING
// for every added/changed key and one RESET SETTING for every removed
// key (§4.6).
func modifySettingsSQL(db, table string, before, after map[string]string, cluster string) []string {
	var modified []string
	for k, v := range after {
		if before[k] != v {
			modified = append(modified, fmt.Sprintf("%s = %s", k, quoteSettingValue(v)))
		}
	}
	sort.Strings(modified)

	var reset []string
	for k := range before {
		if _, ok := after[k]; !ok {
			reset = append(reset, k)
		}
	}
	sort.Strings(reset)

	var stmts []string
	if len(modified) > 0 {
		stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s%s MODIFY SETTING %s", qualified(db, table), clusterClause(cluster), strings.Join(modified, ", ")))
	}
	if len(reset) > 0 {
		stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s%s RESET SETTING %s", qualified(db, table), clusterClause(cluster), strings.Join(reset, ", ")))
	}
	return stmts
}

func modifyTTLSQL(db, table, ttl, cluster string) string {
	if ttl == "" {
		return fmt.Sprintf("ALTER TABLE %s%s REMOVE TTL", qualified(db, table), clusterClause(cluster))
	}
	return fmt.Sprintf("ALTER TABLE %s%s MODIFY TTL %s", qualified(db, table), clusterClause(cluster), ttl)
}

func modifyPartitionBySQL(db, table, expr, cluster string) string {
	if expr == "" {
		return fmt.Sprintf("ALTER TABLE %s%s REMOVE PARTITION BY", qualified(db, table), clusterClause(cluster))
	}
	return fmt.Sprintf("ALTER TABLE %s%s MODIFY PARTITION BY %s", qualified(db, table), clusterClause(cluster), expr)
}

func addIndexSQL(db, table string, idx *core.TableIndex, cluster string) string {
	return fmt.Sprintf("ALTER TABLE %s%s ADD INDEX %s %s TYPE %s GRANULARITY %d",
		qualified(db, table), clusterClause(cluster), quoteIdent(idx.Name), idx.Expression, idx.Type, granularityOrDefault(idx.Granularity))
}

func granularityOrDefault(g int) int {
	if g == 0 {
		return 1
	}
	return g
}

func dropIndexSQL(db, table, indexName, cluster string) string {
	return fmt.Sprintf("ALTER TABLE %s%s DROP INDEX IF EXISTS %s", qualified(db, table), clusterClause(cluster), quoteIdent(indexName))
}

func modifySampleBySQL(db, table, expr, cluster string) string {
	return fmt.Sprintf("ALTER TABLE %s%s MODIFY SAMPLE BY %s", qualified(db, table), clusterClause(cluster), expr)
}

func removeSampleBySQL(db, table, cluster string) string {
	return fmt.Sprintf("ALTER TABLE %s%s REMOVE SAMPLE BY", qualified(db, table), clusterClause(cluster))
}

func createViewSQL(defaultDatabase string, v *core.View) string {
	db := database(defaultDatabase, v.Database)
	return fmt.Sprintf("CREATE VIEW IF NOT EXISTS %s AS %s", qualified(db, v.Name), v.SelectStatement)
}

func dropViewSQL(db, name string) string {
	return fmt.Sprintf("DROP VIEW IF EXISTS %s", qualified(db, name))
}

func createMaterializedViewSQL(defaultDatabase string, mv *core.MaterializedView) string {
	db := database(defaultDatabase, mv.Database)
	target := mv.TargetTable
	if mv.TargetDatabase != "" {
		target = qualified(mv.TargetDatabase, mv.TargetTable)
	} else {
		target = qualified(db, mv.TargetTable)
	}
	return fmt.Sprintf("CREATE MATERIALIZED VIEW IF NOT EXISTS %s TO %s AS %s", qualified(db, mv.Name), target, mv.SelectStatement)
}

func dropMaterializedViewSQL(db, name string) string {
	return fmt.Sprintf("DROP VIEW IF EXISTS %s", qualified(db, name))
}
