package equivalence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inframap/internal/core"
)

func TestEqualColumn_IdenticalColumnsAreEqual(t *testing.T) {
	a := &core.Column{Name: "id", Type: core.ColumnType{Kind: core.KindString}, PrimaryKey: true}
	b := &core.Column{Name: "id", Type: core.ColumnType{Kind: core.KindString}, PrimaryKey: true}

	assert.True(t, EqualColumn(a, b))
}

func TestEqualColumn_TTLNormalizationToleratesRewriting(t *testing.T) {
	a := &core.Column{Name: "ts", Type: core.ColumnType{Kind: core.KindDateTime}, TTL: "INTERVAL 30 DAY"}
	b := &core.Column{Name: "ts", Type: core.ColumnType{Kind: core.KindDateTime}, TTL: "toIntervalDay(30)"}

	assert.True(t, EqualColumn(a, b))
}

func TestEqualColumn_CodecDefaultExpansionTolerated(t *testing.T) {
	a := &core.Column{Name: "v", Type: core.ColumnType{Kind: core.KindFloat, FloatWidth: core.Float64}, Codec: "Delta"}
	b := &core.Column{Name: "v", Type: core.ColumnType{Kind: core.KindFloat, FloatWidth: core.Float64}, Codec: "Delta(4)"}

	assert.True(t, EqualColumn(a, b))
}

func TestEqualColumn_NestedNameIgnored(t *testing.T) {
	fields := []*core.Column{{Name: "x", Type: core.ColumnType{Kind: core.KindString}}}
	a := &core.Column{Name: "n", Type: core.ColumnType{Kind: core.KindNested, NestedName: "nested_0", NestedFields: fields}}
	b := &core.Column{Name: "n", Type: core.ColumnType{Kind: core.KindNested, NestedName: "nested_1", NestedFields: fields}}

	assert.True(t, EqualColumn(a, b))
}

func TestEqualColumn_JsonTypedPathsAreComparedAsSet(t *testing.T) {
	a := &core.Column{Name: "j", Type: core.ColumnType{Kind: core.KindJson, Json: &core.JsonOptions{
		TypedPaths: []core.TypedPath{
			{Path: "a.b", Type: core.ColumnType{Kind: core.KindString}},
			{Path: "c.d", Type: core.ColumnType{Kind: core.KindInt, IntWidth: core.Int64}},
		},
	}}}
	b := &core.Column{Name: "j", Type: core.ColumnType{Kind: core.KindJson, Json: &core.JsonOptions{
		TypedPaths: []core.TypedPath{
			{Path: "c.d", Type: core.ColumnType{Kind: core.KindInt, IntWidth: core.Int64}},
			{Path: "a.b", Type: core.ColumnType{Kind: core.KindString}},
		},
	}}}

	assert.True(t, EqualColumn(a, b))
}

func TestEqualColumn_EnumEquivalentViaCommentMetadata(t *testing.T) {
	enum := &core.DataEnum{Name: "Status", Members: []core.EnumMember{
		{Name: "ACTIVE", IntValue: intVal(0)},
		{Name: "INACTIVE", IntValue: intVal(1)},
	}}
	comment := BuildEnumComment("lifecycle state", enum)

	userAuthored := &core.Column{Name: "status", Type: core.ColumnType{Kind: core.KindEnum, Enum: enum}, Comment: "lifecycle state"}
	introspected := &core.Column{Name: "status", Type: core.ColumnType{Kind: core.KindEnum}, Comment: comment}

	assert.True(t, EqualColumn(userAuthored, introspected))
}

func TestColumnFieldChanges_ReportsPrimaryKeyDifference(t *testing.T) {
	a := &core.Column{Name: "id", Type: core.ColumnType{Kind: core.KindString}, PrimaryKey: true}
	b := &core.Column{Name: "id", Type: core.ColumnType{Kind: core.KindString}, PrimaryKey: false}

	changes := ColumnFieldChanges(a, b)

	require.Len(t, changes, 1)
	assert.Equal(t, "primary_key", changes[0].Field)
}
