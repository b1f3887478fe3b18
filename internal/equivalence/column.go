package equivalence

import (
	"sort"

	"inframap/internal/core"
)

// FieldChange describes one attribute that differs between two values
// of the same entity, mirroring the teacher's diff.FieldChange shape.
type FieldChange struct {
	Field string
	Old   string
	New   string
}

type fieldChangeCollector struct {
	changes []*FieldChange
}

func (c *fieldChangeCollector) add(field, oldV, newV string) {
	if oldV == newV {
		return
	}
	c.changes = append(c.changes, &FieldChange{Field: field, Old: oldV, New: newV})
}

// EqualColumn reports whether two columns are semantically equivalent:
// name, required, unique, primary_key, default, materialized,
// annotations, the user-authored portion of comment, TTL/codec after
// normalization, and data type by the type-aware predicate (§4.2).
func EqualColumn(a, b *core.Column) bool {
	return len(ColumnFieldChanges(a, b)) == 0
}

// ColumnFieldChanges returns every attribute that differs between a and
// b, after normalization. An empty result means the columns are
// equivalent.
func ColumnFieldChanges(a, b *core.Column) []*FieldChange {
	c := &fieldChangeCollector{}

	c.add("name", a.Name, b.Name)
	c.add("required", boolStr(a.Required), boolStr(b.Required))
	c.add("unique", boolStr(a.Unique), boolStr(b.Unique))
	c.add("primary_key", boolStr(a.PrimaryKey), boolStr(b.PrimaryKey))
	c.add("default", ptrStr(a.Default), ptrStr(b.Default))
	c.add("materialized", a.Materialized, b.Materialized)
	c.add("ttl", NormalizeTTL(a.TTL), NormalizeTTL(b.TTL))
	c.add("codec", NormalizeCodec(a.Codec), NormalizeCodec(b.Codec))

	aComment, aEnum, aHasEnum := effectiveComment(a)
	bComment, bEnum, bHasEnum := effectiveComment(b)
	c.add("comment", aComment, bComment)

	if !equalAnnotations(a.Annotations, b.Annotations) {
		c.changes = append(c.changes, &FieldChange{Field: "annotations", Old: "differs", New: "differs"})
	}

	if !equalColumnType(a.Type, b.Type, aEnum, aHasEnum, bEnum, bHasEnum) {
		c.changes = append(c.changes, &FieldChange{Field: "type", Old: "differs", New: "differs"})
	}

	return c.changes
}

// effectiveComment splits a column's raw comment into its user-authored
// portion and, when present, the enum metadata embedded by the
// comment protocol (§4.3, §6.3).
func effectiveComment(col *core.Column) (userComment string, enum *core.DataEnum, ok bool) {
	return ParseEnumComment(col.Comment)
}

func equalColumnType(a, b core.ColumnType, aEnum *core.DataEnum, aHasEnum bool, bEnum *core.DataEnum, bHasEnum bool) bool {
	if a.Kind != b.Kind {
		return false
	}

	switch a.Kind {
	case core.KindFixedString:
		return a.FixedLength == b.FixedLength
	case core.KindInt:
		return a.IntWidth == b.IntWidth
	case core.KindFloat:
		return a.FloatWidth == b.FloatWidth
	case core.KindDecimal:
		return a.Precision == b.Precision && a.Scale == b.Scale
	case core.KindDateTime:
		return intPtrEqual(a.DateTimePrecision, b.DateTimePrecision)
	case core.KindEnum:
		effA, effB := a.Enum, b.Enum
		if aHasEnum {
			effA = aEnum
		}
		if bHasEnum {
			effB = bEnum
		}
		return equalDataEnum(effA, effB)
	case core.KindArray:
		if a.ElementNullable != b.ElementNullable {
			return false
		}
		if a.Element == nil || b.Element == nil {
			return a.Element == b.Element
		}
		return equalColumnType(*a.Element, *b.Element, nil, false, nil, false)
	case core.KindNested:
		// The nested type's own name is ignored — engines often
		// fabricate nested_N (§4.2).
		return equalColumnSlices(a.NestedFields, b.NestedFields) && a.NestedJwt == b.NestedJwt
	case core.KindNamedTuple:
		return equalNamedTupleFields(a.TupleFields, b.TupleFields)
	case core.KindJson:
		return equalJsonOptions(a.Json, b.Json)
	case core.KindMap:
		return equalColumnTypePtr(a.MapKey, b.MapKey) && equalColumnTypePtr(a.MapValue, b.MapValue)
	case core.KindNullable:
		return equalColumnTypePtr(a.Inner, b.Inner)
	default:
		return true
	}
}

func equalColumnTypePtr(a, b *core.ColumnType) bool {
	if a == nil || b == nil {
		return a == b
	}
	return equalColumnType(*a, *b, nil, false, nil, false)
}

func equalDataEnum(a, b *core.DataEnum) bool {
	if a == nil || b == nil {
		return a == b
	}
	if len(a.Members) != len(b.Members) {
		return false
	}
	for i := range a.Members {
		ma, mb := a.Members[i], b.Members[i]
		if ma.Name != mb.Name {
			return false
		}
		if !intPtrEqual(ma.IntValue, mb.IntValue) {
			return false
		}
		if strPtrValue(ma.StringValue) != strPtrValue(mb.StringValue) {
			return false
		}
	}
	return true
}

func equalNamedTupleFields(a, b []core.NamedTupleField) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Name != b[i].Name || !equalColumnType(a[i].Type, b[i].Type, nil, false, nil, false) {
			return false
		}
	}
	return true
}

func equalJsonOptions(a, b *core.JsonOptions) bool {
	if a == nil || b == nil {
		return a == b
	}
	if !intPtrEqual(a.MaxDynamicPaths, b.MaxDynamicPaths) || !intPtrEqual(a.MaxDynamicTypes, b.MaxDynamicTypes) {
		return false
	}
	if !equalStringSetsCI(a.SkipPaths, b.SkipPaths) || !equalStringSetsCI(a.SkipRegexps, b.SkipRegexps) {
		return false
	}
	return equalTypedPathSets(a.TypedPaths, b.TypedPaths)
}

// equalTypedPathSets compares typed_paths as sets (order is not
// significant — §4.2/testable property 4a).
func equalTypedPathSets(a, b []core.TypedPath) bool {
	if len(a) != len(b) {
		return false
	}
	index := func(paths []core.TypedPath) map[string]core.ColumnType {
		m := make(map[string]core.ColumnType, len(paths))
		for _, p := range paths {
			m[p.Path] = p.Type
		}
		return m
	}
	am, bm := index(a), index(b)
	for path, at := range am {
		bt, ok := bm[path]
		if !ok || !equalColumnType(at, bt, nil, false, nil, false) {
			return false
		}
	}
	return true
}

func equalColumnSlices(a, b []*core.Column) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if len(ColumnFieldChanges(a[i], b[i])) != 0 {
			return false
		}
	}
	return true
}

func equalAnnotations(a, b []core.Annotation) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func equalStringSetsCI(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	sa, sb := append([]string(nil), a...), append([]string(nil), b...)
	sort.Strings(sa)
	sort.Strings(sb)
	for i := range sa {
		if sa[i] != sb[i] {
			return false
		}
	}
	return true
}

func boolStr(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func ptrStr(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func strPtrValue(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func intPtrEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
