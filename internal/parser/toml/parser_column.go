package toml

import (
	"fmt"

	"inframap/internal/core"
)

// tomlColumnType mirrors core.ColumnType: a Kind tag plus every per-kind
// payload field, recursively, so Array/Nested/NamedTuple/Map/Nullable
// can nest arbitrarily (§3).
type tomlColumnType struct {
	Kind string `toml:"kind"`

	FixedLength int `toml:"fixed_length"`

	IntWidth string `toml:"int_width"`

	FloatWidth string `toml:"float_width"`

	Precision int `toml:"precision"`
	Scale     int `toml:"scale"`

	DateTimePrecision *int `toml:"datetime_precision"`

	Enum *tomlEnum `toml:"enum"`

	Element         *tomlColumnType `toml:"element"`
	ElementNullable bool            `toml:"element_nullable"`

	NestedName   string       `toml:"nested_name"`
	NestedFields []tomlColumn `toml:"nested_fields"`

	TupleFields []tomlTupleField `toml:"tuple_fields"`

	Json *tomlJsonOptions `toml:"json"`

	MapKey   *tomlColumnType `toml:"map_key"`
	MapValue *tomlColumnType `toml:"map_value"`

	Inner *tomlColumnType `toml:"inner"`
}

type tomlTupleField struct {
	Name string         `toml:"name"`
	Type tomlColumnType `toml:"type"`
}

type tomlEnum struct {
	Name    string           `toml:"name"`
	Members []tomlEnumMember `toml:"members"`
}

type tomlEnumMember struct {
	Name        string  `toml:"name"`
	StringValue *string `toml:"string_value"`
	IntValue    *int    `toml:"int_value"`
}

type tomlJsonOptions struct {
	MaxDynamicPaths *int            `toml:"max_dynamic_paths"`
	MaxDynamicTypes *int            `toml:"max_dynamic_types"`
	TypedPaths      []tomlTypedPath `toml:"typed_paths"`
	SkipPaths       []string        `toml:"skip_paths"`
	SkipRegexps     []string        `toml:"skip_regexps"`
}

type tomlTypedPath struct {
	Path string         `toml:"path"`
	Type tomlColumnType `toml:"type"`
}

// tomlColumn is one column/field definition, shared by tables, topics,
// and every nested Tuple/Nested field.
type tomlColumn struct {
	Name         string         `toml:"name"`
	Type         tomlColumnType `toml:"type"`
	Required     bool           `toml:"required"`
	Unique       bool           `toml:"unique"`
	PrimaryKey   bool           `toml:"primary_key"`
	Default      *string        `toml:"default"`
	TTL          string         `toml:"ttl"`
	Codec        string         `toml:"codec"`
	Materialized string         `toml:"materialized"`
	Comment      string         `toml:"comment"`
}

func convertColumn(tc *tomlColumn) (*core.Column, error) {
	if tc.Name == "" {
		return nil, fmt.Errorf("column name is empty")
	}

	ct, err := convertColumnType(&tc.Type)
	if err != nil {
		return nil, fmt.Errorf("column %q: %w", tc.Name, err)
	}

	return &core.Column{
		Name:         tc.Name,
		Type:         ct,
		Required:     tc.Required,
		Unique:       tc.Unique,
		PrimaryKey:   tc.PrimaryKey,
		Default:      tc.Default,
		TTL:          tc.TTL,
		Codec:        tc.Codec,
		Materialized: tc.Materialized,
		Comment:      tc.Comment,
	}, nil
}

// convertColumnType maps the TOML tagged-union shape onto core.ColumnType
// (§3/§4): one switch arm per ColumnKind, converting only the payload
// fields that kind actually uses.
func convertColumnType(tt *tomlColumnType) (core.ColumnType, error) {
	kind := core.ColumnKind(tt.Kind)

	switch kind {
	case core.KindString, core.KindBoolean, core.KindBigInt, core.KindDate, core.KindDate16,
		core.KindBytes, core.KindUuid, core.KindIpV4, core.KindIpV6, core.KindPoint, core.KindRing,
		core.KindLineString, core.KindMultiLineString, core.KindPolygon, core.KindMultiPolygon:
		return core.ColumnType{Kind: kind}, nil

	case core.KindFixedString:
		if tt.FixedLength <= 0 {
			return core.ColumnType{}, fmt.Errorf("FixedString requires a positive fixed_length")
		}
		return core.ColumnType{Kind: kind, FixedLength: tt.FixedLength}, nil

	case core.KindInt:
		if !validIntWidth(tt.IntWidth) {
			return core.ColumnType{}, fmt.Errorf("unsupported int_width %q", tt.IntWidth)
		}
		return core.ColumnType{Kind: kind, IntWidth: core.IntWidth(tt.IntWidth)}, nil

	case core.KindFloat:
		if tt.FloatWidth != string(core.Float32) && tt.FloatWidth != string(core.Float64) {
			return core.ColumnType{}, fmt.Errorf("unsupported float_width %q", tt.FloatWidth)
		}
		return core.ColumnType{Kind: kind, FloatWidth: core.FloatWidth(tt.FloatWidth)}, nil

	case core.KindDecimal:
		if tt.Precision <= 0 {
			return core.ColumnType{}, fmt.Errorf("Decimal requires a positive precision")
		}
		return core.ColumnType{Kind: kind, Precision: tt.Precision, Scale: tt.Scale}, nil

	case core.KindDateTime:
		return core.ColumnType{Kind: kind, DateTimePrecision: tt.DateTimePrecision}, nil

	case core.KindEnum:
		if tt.Enum == nil || len(tt.Enum.Members) == 0 {
			return core.ColumnType{}, fmt.Errorf("Enum requires at least one member")
		}
		members := make([]core.EnumMember, 0, len(tt.Enum.Members))
		for _, m := range tt.Enum.Members {
			members = append(members, core.EnumMember{Name: m.Name, StringValue: m.StringValue, IntValue: m.IntValue})
		}
		return core.ColumnType{Kind: kind, Enum: &core.DataEnum{Name: tt.Enum.Name, Members: members}}, nil

	case core.KindArray:
		if tt.Element == nil {
			return core.ColumnType{}, fmt.Errorf("Array requires an element type")
		}
		elem, err := convertColumnType(tt.Element)
		if err != nil {
			return core.ColumnType{}, fmt.Errorf("array element: %w", err)
		}
		return core.ColumnType{Kind: kind, Element: &elem, ElementNullable: tt.ElementNullable}, nil

	case core.KindNested:
		fields := make([]*core.Column, 0, len(tt.NestedFields))
		for i := range tt.NestedFields {
			f, err := convertColumn(&tt.NestedFields[i])
			if err != nil {
				return core.ColumnType{}, fmt.Errorf("nested field: %w", err)
			}
			fields = append(fields, f)
		}
		return core.ColumnType{Kind: kind, NestedName: tt.NestedName, NestedFields: fields}, nil

	case core.KindNamedTuple:
		fields := make([]core.NamedTupleField, 0, len(tt.TupleFields))
		for _, tf := range tt.TupleFields {
			ft, err := convertColumnType(&tf.Type)
			if err != nil {
				return core.ColumnType{}, fmt.Errorf("tuple field %q: %w", tf.Name, err)
			}
			fields = append(fields, core.NamedTupleField{Name: tf.Name, Type: ft})
		}
		return core.ColumnType{Kind: kind, TupleFields: fields}, nil

	case core.KindJson:
		opts, err := convertJsonOptions(tt.Json)
		if err != nil {
			return core.ColumnType{}, err
		}
		return core.ColumnType{Kind: kind, Json: opts}, nil

	case core.KindMap:
		if tt.MapKey == nil || tt.MapValue == nil {
			return core.ColumnType{}, fmt.Errorf("Map requires map_key and map_value")
		}
		key, err := convertColumnType(tt.MapKey)
		if err != nil {
			return core.ColumnType{}, fmt.Errorf("map key: %w", err)
		}
		val, err := convertColumnType(tt.MapValue)
		if err != nil {
			return core.ColumnType{}, fmt.Errorf("map value: %w", err)
		}
		return core.ColumnType{Kind: kind, MapKey: &key, MapValue: &val}, nil

	case core.KindNullable:
		if tt.Inner == nil {
			return core.ColumnType{}, fmt.Errorf("Nullable requires an inner type")
		}
		inner, err := convertColumnType(tt.Inner)
		if err != nil {
			return core.ColumnType{}, fmt.Errorf("nullable inner: %w", err)
		}
		return core.ColumnType{Kind: kind, Inner: &inner}, nil

	default:
		return core.ColumnType{}, fmt.Errorf("unsupported column type kind %q", tt.Kind)
	}
}

func convertJsonOptions(tj *tomlJsonOptions) (*core.JsonOptions, error) {
	if tj == nil {
		return nil, nil
	}
	opts := &core.JsonOptions{
		MaxDynamicPaths: tj.MaxDynamicPaths,
		MaxDynamicTypes: tj.MaxDynamicTypes,
		SkipPaths:       tj.SkipPaths,
		SkipRegexps:     tj.SkipRegexps,
	}
	for _, tp := range tj.TypedPaths {
		pt, err := convertColumnType(&tp.Type)
		if err != nil {
			return nil, fmt.Errorf("json typed_path %q: %w", tp.Path, err)
		}
		opts.TypedPaths = append(opts.TypedPaths, core.TypedPath{Path: tp.Path, Type: pt})
	}
	return opts, nil
}

func validIntWidth(w string) bool {
	switch core.IntWidth(w) {
	case core.Int8, core.Int16, core.Int32, core.Int64, core.Int128, core.Int256,
		core.UInt8, core.UInt16, core.UInt32, core.UInt64, core.UInt128, core.UInt256:
		return true
	default:
		return false
	}
}
