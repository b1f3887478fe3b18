package core

// IntWidth enumerates the supported signed/unsigned integer widths.
type IntWidth string

const (
	Int8    IntWidth = "Int8"
	Int16   IntWidth = "Int16"
	Int32   IntWidth = "Int32"
	Int64   IntWidth = "Int64"
	Int128  IntWidth = "Int128"
	Int256  IntWidth = "Int256"
	UInt8   IntWidth = "UInt8"
	UInt16  IntWidth = "UInt16"
	UInt32  IntWidth = "UInt32"
	UInt64  IntWidth = "UInt64"
	UInt128 IntWidth = "UInt128"
	UInt256 IntWidth = "UInt256"
)

// FloatWidth enumerates the supported floating-point widths.
type FloatWidth string

const (
	Float32 FloatWidth = "Float32"
	Float64 FloatWidth = "Float64"
)

// ColumnKind is the tag of the ColumnType sum type.
type ColumnKind string

const (
	KindString           ColumnKind = "String"
	KindFixedString      ColumnKind = "FixedString"
	KindBoolean          ColumnKind = "Boolean"
	KindInt              ColumnKind = "Int"
	KindBigInt           ColumnKind = "BigInt"
	KindFloat            ColumnKind = "Float"
	KindDecimal          ColumnKind = "Decimal"
	KindDate             ColumnKind = "Date"
	KindDate16           ColumnKind = "Date16"
	KindDateTime         ColumnKind = "DateTime"
	KindEnum             ColumnKind = "Enum"
	KindArray            ColumnKind = "Array"
	KindNested           ColumnKind = "Nested"
	KindNamedTuple       ColumnKind = "NamedTuple"
	KindJson             ColumnKind = "Json"
	KindMap              ColumnKind = "Map"
	KindBytes            ColumnKind = "Bytes"
	KindUuid             ColumnKind = "Uuid"
	KindIpV4             ColumnKind = "IpV4"
	KindIpV6             ColumnKind = "IpV6"
	KindPoint            ColumnKind = "Point"
	KindRing             ColumnKind = "Ring"
	KindLineString       ColumnKind = "LineString"
	KindMultiLineString  ColumnKind = "MultiLineString"
	KindPolygon          ColumnKind = "Polygon"
	KindMultiPolygon     ColumnKind = "MultiPolygon"
	KindNullable         ColumnKind = "Nullable"
)

// ColumnType is the tagged union of all portable column data types. Only
// the fields relevant to Kind are meaningful; this mirrors how the
// teacher keeps one dialect-option struct per engine family on Column
// rather than a deeply nested variant tree (see core.Column in the
// teacher repo).
type ColumnType struct {
	Kind ColumnKind `json:"kind"`

	// FixedString
	FixedLength int `json:"fixedLength,omitempty"`

	// Int
	IntWidth IntWidth `json:"intWidth,omitempty"`

	// Float
	FloatWidth FloatWidth `json:"floatWidth,omitempty"`

	// Decimal
	Precision int `json:"precision,omitempty"`
	Scale     int `json:"scale,omitempty"`

	// DateTime
	DateTimePrecision *int `json:"dateTimePrecision,omitempty"`

	// Enum
	Enum *DataEnum `json:"enum,omitempty"`

	// Array
	Element         *ColumnType `json:"element,omitempty"`
	ElementNullable bool        `json:"elementNullable,omitempty"`

	// Nested
	NestedName   string    `json:"nestedName,omitempty"`
	NestedFields []*Column `json:"nestedFields,omitempty"`
	NestedJwt    bool      `json:"nestedJwt,omitempty"`

	// NamedTuple
	TupleFields []NamedTupleField `json:"tupleFields,omitempty"`

	// Json
	Json *JsonOptions `json:"json,omitempty"`

	// Map
	MapKey   *ColumnType `json:"mapKey,omitempty"`
	MapValue *ColumnType `json:"mapValue,omitempty"`

	// Nullable
	Inner *ColumnType `json:"inner,omitempty"`
}

// NamedTupleField is a single ordered field of a NamedTuple type.
type NamedTupleField struct {
	Name string     `json:"name"`
	Type ColumnType `json:"type"`
}

// DataEnum is a named, ordered enum definition. Members may carry either a
// string value or a small signed integer value.
type DataEnum struct {
	Name    string       `json:"name"`
	Members []EnumMember `json:"members"`
}

// EnumMember is a single enum value: either a string or an integer, never
// both.
type EnumMember struct {
	Name        string `json:"name"`
	StringValue *string `json:"stringValue,omitempty"`
	IntValue    *int    `json:"intValue,omitempty"`
}

// JsonOptions configures a dynamic Json column.
type JsonOptions struct {
	MaxDynamicPaths *int         `json:"maxDynamicPaths,omitempty"`
	MaxDynamicTypes *int         `json:"maxDynamicTypes,omitempty"`
	TypedPaths      []TypedPath  `json:"typedPaths,omitempty"`
	SkipPaths       []string     `json:"skipPaths,omitempty"`
	SkipRegexps     []string     `json:"skipRegexps,omitempty"`
}

// TypedPath pins a dot-notation JSON path to an explicit column type.
type TypedPath struct {
	Path string     `json:"path"`
	Type ColumnType `json:"type"`
}

// EngineKind is the tag of the Engine sum type.
type EngineKind string

const (
	EngineMergeTree            EngineKind = "MergeTree"
	EngineReplacingMergeTree   EngineKind = "ReplacingMergeTree"
	EngineAggregatingMergeTree EngineKind = "AggregatingMergeTree"
	EngineSummingMergeTree     EngineKind = "SummingMergeTree"
	EngineReplicatedMergeTree  EngineKind = "ReplicatedMergeTree"
	EngineKafka                EngineKind = "Kafka"
	EngineS3Queue              EngineKind = "S3Queue"
	EngineS3                   EngineKind = "S3"
	EngineIcebergS3            EngineKind = "IcebergS3"
)

// mergeableEngines are the engine kinds that require a non-empty ORDER BY
// (§3 invariant).
var mergeableEngines = map[EngineKind]bool{
	EngineMergeTree:            true,
	EngineReplacingMergeTree:   true,
	EngineAggregatingMergeTree: true,
	EngineSummingMergeTree:     true,
	EngineReplicatedMergeTree:  true,
}

// writeOnlyEngines have no SELECT surface; they are sinks only.
var writeOnlyEngines = map[EngineKind]bool{
	EngineKafka:   true,
	EngineS3Queue: true,
}

// Engine is the tagged union of supported table engines.
type Engine struct {
	Kind EngineKind `json:"kind"`

	// ReplacingMergeTree
	ReplacingVersionColumn string `json:"replacingVersionColumn,omitempty"`
	ReplacingIsDeletedColumn string `json:"replacingIsDeletedColumn,omitempty"`

	// SummingMergeTree
	SummingColumns []string `json:"summingColumns,omitempty"`

	// ReplicatedMergeTree (parameterizes another mergeable kind)
	Replicated *ReplicatedParams `json:"replicated,omitempty"`

	Kafka     *KafkaParams     `json:"kafka,omitempty"`
	S3Queue   *S3QueueParams   `json:"s3Queue,omitempty"`
	S3        *S3Params        `json:"s3,omitempty"`
	IcebergS3 *IcebergS3Params `json:"icebergS3,omitempty"`
}

// ReplicatedParams parameterizes a replicated engine variant.
type ReplicatedParams struct {
	KeeperPath  string `json:"keeperPath"`
	ReplicaName string `json:"replicaName"`
	// BaseKind is the non-replicated engine kind being replicated, e.g.
	// EngineMergeTree or EngineReplacingMergeTree.
	BaseKind EngineKind `json:"baseKind"`
}

// KafkaParams configures a Kafka write-only sink engine.
type KafkaParams struct {
	Broker string `json:"broker"`
	Topic  string `json:"topic"`
	Group  string `json:"group"`
	Format string `json:"format"`
}

// S3QueueParams configures an S3Queue write-only sink engine.
type S3QueueParams struct {
	Path            string            `json:"path"`
	Format          string            `json:"format"`
	Compression     string            `json:"compression,omitempty"`
	Headers         map[string]string `json:"headers,omitempty"`
	AWSAccessKeyID  string            `json:"awsAccessKeyId,omitempty"`
	AWSSecretKey    string            `json:"awsSecretKey,omitempty"`
	AWSRegion       string            `json:"awsRegion,omitempty"`
}

// S3Params configures an S3 table engine.
type S3Params struct {
	Path           string `json:"path"`
	Format         string `json:"format"`
	Compression    string `json:"compression,omitempty"`
	AWSAccessKeyID string `json:"awsAccessKeyId,omitempty"`
	AWSSecretKey   string `json:"awsSecretKey,omitempty"`
	AWSRegion      string `json:"awsRegion,omitempty"`
}

// IcebergS3Params configures an IcebergS3 table engine.
type IcebergS3Params struct {
	Path           string `json:"path"`
	AWSAccessKeyID string `json:"awsAccessKeyId,omitempty"`
	AWSSecretKey   string `json:"awsSecretKey,omitempty"`
	AWSRegion      string `json:"awsRegion,omitempty"`
}

// RequiresOrderBy reports whether this engine kind mandates a non-empty
// ORDER BY (mergeable engine family).
func (e Engine) RequiresOrderBy() bool {
	return mergeableEngines[e.Kind]
}

// SupportsSelect reports whether the engine can serve as a materialized
// view source. Kafka and S3Queue are write-only sinks (§3).
func (e Engine) SupportsSelect() bool {
	return !writeOnlyEngines[e.Kind]
}

// IsReplicated reports whether this is the replicated variant of some
// base mergeable engine.
func (e Engine) IsReplicated() bool {
	return e.Kind == EngineReplicatedMergeTree && e.Replicated != nil
}

// EffectiveKind returns the base engine kind used for capability
// decisions, unwrapping the replicated wrapper.
func (e Engine) EffectiveKind() EngineKind {
	if e.IsReplicated() {
		return e.Replicated.BaseKind
	}
	return e.Kind
}
