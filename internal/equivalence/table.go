package equivalence

import (
	"regexp"
	"strings"

	"inframap/internal/core"
)

// EqualTable reports whether two tables are equivalent: everything
// except metadata (§4.2). ClusterName is a deployment directive, never
// a diff trigger (§3), and is intentionally excluded.
func EqualTable(a, b *core.Table) bool {
	return len(TableFieldChanges(a, b)) == 0
}

// TableFieldChanges returns the coarse set of attributes that differ
// between two tables, independent of the column-level diff (which
// internal/diff computes separately for position-aware add/remove
// tracking).
func TableFieldChanges(a, b *core.Table) []*FieldChange {
	c := &fieldChangeCollector{}

	c.add("name", a.Name, b.Name)
	c.add("order_by", orderByKey(a.OrderBy), orderByKey(b.OrderBy))
	c.add("partition_by", collapseWhitespace(a.PartitionBy), collapseWhitespace(b.PartitionBy))
	c.add("sample_by", collapseWhitespace(a.SampleBy), collapseWhitespace(b.SampleBy))
	c.add("table_ttl", NormalizeTTL(a.TableTTL), NormalizeTTL(b.TableTTL))
	c.add("primary_key_expression", NormalizePrimaryKeyExpr(a.PrimaryKeyExpression), NormalizePrimaryKeyExpr(b.PrimaryKeyExpression))
	c.add("engine", engineKey(a.Engine), engineKey(b.Engine))

	if len(a.Columns) != len(b.Columns) || !equalColumnSlices(a.Columns, b.Columns) {
		c.changes = append(c.changes, &FieldChange{Field: "columns", Old: "differs", New: "differs"})
	}
	if !equalIndexSets(a.Indexes, b.Indexes) {
		c.changes = append(c.changes, &FieldChange{Field: "indexes", Old: "differs", New: "differs"})
	}
	if !equalStringMaps(a.Settings, b.Settings) {
		c.changes = append(c.changes, &FieldChange{Field: "settings", Old: "differs", New: "differs"})
	}

	return c.changes
}

func orderByKey(o core.OrderBy) string {
	if len(o.Fields) > 0 {
		return strings.Join(o.Fields, ",")
	}
	return NormalizePrimaryKeyExpr(o.Expression)
}

func engineKey(e core.Engine) string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	b.WriteString("|")
	b.WriteString(e.ReplacingVersionColumn)
	b.WriteString("|")
	b.WriteString(e.ReplacingIsDeletedColumn)
	b.WriteString("|")
	b.WriteString(strings.Join(e.SummingColumns, ","))
	if e.Replicated != nil {
		b.WriteString("|replicated:")
		b.WriteString(e.Replicated.KeeperPath)
		b.WriteString(",")
		b.WriteString(e.Replicated.ReplicaName)
		b.WriteString(",")
		b.WriteString(string(e.Replicated.BaseKind))
	}
	if e.Kafka != nil {
		b.WriteString("|kafka:")
		b.WriteString(e.Kafka.Broker + "," + e.Kafka.Topic + "," + e.Kafka.Group + "," + e.Kafka.Format)
	}
	if e.S3Queue != nil {
		b.WriteString("|s3queue:")
		b.WriteString(e.S3Queue.Path + "," + e.S3Queue.Format + "," + e.S3Queue.Compression)
	}
	if e.S3 != nil {
		b.WriteString("|s3:")
		b.WriteString(e.S3.Path + "," + e.S3.Format + "," + e.S3.Compression)
	}
	if e.IcebergS3 != nil {
		b.WriteString("|icebergS3:")
		b.WriteString(e.IcebergS3.Path)
	}
	return b.String()
}

func equalIndexSets(a, b []*core.TableIndex) bool {
	if len(a) != len(b) {
		return false
	}
	index := func(items []*core.TableIndex) map[string]*core.TableIndex {
		m := make(map[string]*core.TableIndex, len(items))
		for _, it := range items {
			m[it.Name] = it
		}
		return m
	}
	am, bm := index(a), index(b)
	for name, ai := range am {
		bi, ok := bm[name]
		if !ok || ai.Expression != bi.Expression || ai.Type != bi.Type || ai.Granularity != bi.Granularity {
			return false
		}
	}
	return true
}

func equalStringMaps(a, b map[string]string) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}

var whitespacePattern = regexp.MustCompile(`\s+`)

// normalizeSQL applies the language-agnostic normalization pass used
// for View/MaterializedView SELECT comparison: whitespace collapsing
// and optional database-qualifier stripping when it matches the
// supplied default database (§4.2).
func normalizeSQL(sql, defaultDB string) string {
	sql = strings.TrimSpace(sql)
	sql = whitespacePattern.ReplaceAllString(sql, " ")
	if defaultDB != "" {
		sql = strings.ReplaceAll(sql, defaultDB+".", "")
	}
	return sql
}

// EqualView reports whether two views are equivalent: SELECT SQL after
// normalization, and source-table set.
func EqualView(a, b *core.View, defaultDB string) bool {
	if normalizeSQL(a.SelectStatement, defaultDB) != normalizeSQL(b.SelectStatement, defaultDB) {
		return false
	}
	return equalStringSetsCI(a.SourceTables, b.SourceTables)
}

// EqualMaterializedView reports whether two materialized views are
// equivalent: SELECT SQL after normalization, source-table set, and
// target table/database.
func EqualMaterializedView(a, b *core.MaterializedView, defaultDB string) bool {
	if normalizeSQL(a.SelectStatement, defaultDB) != normalizeSQL(b.SelectStatement, defaultDB) {
		return false
	}
	if a.TargetTable != b.TargetTable || a.TargetDatabase != b.TargetDatabase {
		return false
	}
	return equalStringSetsCI(a.SourceTables, b.SourceTables)
}

// EqualTopic reports whether two topics are equivalent.
func EqualTopic(a, b *core.Topic) bool {
	if a.RetentionSeconds != b.RetentionSeconds || a.PartitionCount != b.PartitionCount || a.MaxMessageBytes != b.MaxMessageBytes {
		return false
	}
	if a.SchemaConfig != b.SchemaConfig {
		return false
	}
	return equalColumnSlices(a.Columns, b.Columns)
}

// EqualApiEndpoint reports whether two API endpoints are equivalent.
func EqualApiEndpoint(a, b *core.ApiEndpoint) bool {
	return a.Kind == b.Kind
}

// EqualWebApp reports whether two web apps are equivalent by config.
func EqualWebApp(a, b *core.WebApp) bool {
	return equalStringMaps(a.Config, b.Config)
}

// EqualWorkflow compares only (schedule, retries, timeout) per §4.4;
// Config/Metadata changes are not triggers.
func EqualWorkflow(a, b *core.Workflow) bool {
	return a.Schedule == b.Schedule && a.Retries == b.Retries && a.Timeout == b.Timeout
}
