// Package canonicalize stabilizes a freshly loaded or legacy InfraMap so
// that equality and diffs are deterministic regardless of provenance
// (§4.1). It is a pure transformation: it never fails and never leaves
// the map in a partially-rewritten state on its own terms — every step
// is total over its input.
package canonicalize

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"

	"inframap/internal/core"
)

// CanonicalizeTables applies engine-mandated invariants to every table in
// m and returns m (mutated in place, matching the teacher's in-place
// validate/repair discipline): a non-empty order_by is ensured for
// mergeable engines by falling back to the primary-key column list,
// array elements are marked non-nullable unless already explicit,
// primary_key is stripped on engines that don't support one, and the
// settings/engine-param hashes are recomputed whenever their inputs
// changed.
func CanonicalizeTables(m *core.InfraMap) *core.InfraMap {
	for _, t := range m.Tables {
		canonicalizeTable(t)
	}
	return m
}

func canonicalizeTable(t *core.Table) {
	markArrayElementsNonNullable(t.Columns)

	if t.Engine.RequiresOrderBy() && t.OrderBy.Empty() {
		if pk := primaryKeyFieldNames(t.Columns); len(pk) > 0 {
			t.OrderBy = core.OrderBy{Fields: pk}
		}
	}

	if !t.Engine.RequiresOrderBy() {
		for _, c := range t.Columns {
			c.PrimaryKey = false
		}
	}

	t.EngineParamsHash = hashEngineParams(t.Engine)
	t.TableSettingsHash = hashSettings(t.Settings)
}

// markArrayElementsNonNullable walks every column (recursively through
// Array/Nested/NamedTuple/Map/Nullable/Json) and ensures Array element
// types are explicit about nullability: non-nullable unless
// ElementNullable was already set (§3 invariant).
func markArrayElementsNonNullable(cols []*core.Column) {
	for _, c := range cols {
		canonicalizeType(&c.Type)
	}
}

func canonicalizeType(t *core.ColumnType) {
	switch t.Kind {
	case core.KindArray:
		if t.Element != nil {
			canonicalizeType(t.Element)
		}
		// ElementNullable defaults to false (Go zero value); nothing to
		// do beyond recursing, the invariant is satisfied by
		// construction once ColumnType.ElementNullable is only ever set
		// true explicitly.
	case core.KindNested:
		markArrayElementsNonNullable(t.NestedFields)
	case core.KindNamedTuple:
		for i := range t.TupleFields {
			canonicalizeType(&t.TupleFields[i].Type)
		}
	case core.KindMap:
		if t.MapKey != nil {
			canonicalizeType(t.MapKey)
		}
		if t.MapValue != nil {
			canonicalizeType(t.MapValue)
		}
	case core.KindNullable:
		if t.Inner != nil {
			canonicalizeType(t.Inner)
		}
	case core.KindJson:
		if t.Json != nil {
			for i := range t.Json.TypedPaths {
				canonicalizeType(&t.Json.TypedPaths[i].Type)
			}
		}
	}
}

func primaryKeyFieldNames(cols []*core.Column) []string {
	var names []string
	for _, c := range cols {
		if c.PrimaryKey {
			names = append(names, c.Name)
		}
	}
	return names
}

func hashSettings(settings map[string]string) string {
	if len(settings) == 0 {
		return ""
	}
	keys := make([]string, 0, len(settings))
	for k := range settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(settings[k])
		b.WriteByte(';')
	}
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

func hashEngineParams(e core.Engine) string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	b.WriteByte(';')
	b.WriteString(e.ReplacingVersionColumn)
	b.WriteByte(';')
	b.WriteString(e.ReplacingIsDeletedColumn)
	b.WriteByte(';')
	b.WriteString(strings.Join(e.SummingColumns, ","))
	if e.Replicated != nil {
		b.WriteString(";replicated:")
		b.WriteString(e.Replicated.KeeperPath)
		b.WriteByte(',')
		b.WriteString(e.Replicated.ReplicaName)
		b.WriteByte(',')
		b.WriteString(string(e.Replicated.BaseKind))
	}
	if e.Kafka != nil {
		b.WriteString(";kafka:")
		b.WriteString(e.Kafka.Broker + "," + e.Kafka.Topic + "," + e.Kafka.Group + "," + e.Kafka.Format)
	}
	if e.S3Queue != nil {
		b.WriteString(";s3queue:")
		b.WriteString(e.S3Queue.Path + "," + e.S3Queue.Format + "," + e.S3Queue.Compression)
	}
	if e.S3 != nil {
		b.WriteString(";s3:")
		b.WriteString(e.S3.Path + "," + e.S3.Format + "," + e.S3.Compression)
	}
	if e.IcebergS3 != nil {
		b.WriteString(";icebergS3:")
		b.WriteString(e.IcebergS3.Path)
	}
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// Normalize runs CanonicalizeTables and additionally migrates qualifying
// legacy SqlResource entries into structured View/MaterializedView
// entries (§3, §4.1). Idempotent: running it twice in a row produces the
// same map as running it once (testable property 2).
func Normalize(m *core.InfraMap) *core.InfraMap {
	CanonicalizeTables(m)
	migrateLegacySqlResources(m)
	return m
}
