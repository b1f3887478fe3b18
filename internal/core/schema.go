// Package core contains the single source of truth for the infrastructure
// map: the declarative, persistable model of every resource the platform
// manages (tables, topics, endpoints, views, processes, workflows), plus
// the identity and lifecycle rules that the differ and executor rely on.
package core

import "fmt"

// LifeCycle is the per-resource management policy.
type LifeCycle string

const (
	FullyManaged      LifeCycle = "FULLY_MANAGED"
	DeletionProtected LifeCycle = "DELETION_PROTECTED"
	ExternallyManaged LifeCycle = "EXTERNALLY_MANAGED"
)

// ValidLifeCycle reports whether l is a recognized lifecycle value.
func ValidLifeCycle(l LifeCycle) bool {
	switch l {
	case FullyManaged, DeletionProtected, ExternallyManaged, "":
		return true
	default:
		return false
	}
}

// Metadata carries provenance information that equivalence predicates
// must ignore (see internal/equivalence).
type Metadata struct {
	Source string `json:"source,omitempty"`
}

// InfraMap is the root of the declarative model: the complete set of
// managed resources, keyed by stable ID, plus the default database used
// to resolve unqualified table references.
type InfraMap struct {
	DefaultDatabase string `json:"defaultDatabase"`

	Tables               map[string]*Table              `json:"tables,omitempty"`
	Topics               map[string]*Topic               `json:"topics,omitempty"`
	ApiEndpoints         map[string]*ApiEndpoint         `json:"apiEndpoints,omitempty"`
	Views                map[string]*View                `json:"views,omitempty"`
	MaterializedViews    map[string]*MaterializedView    `json:"materializedViews,omitempty"`
	SqlResources         map[string]*SqlResource         `json:"sqlResources,omitempty"`
	SyncProcesses        map[string]*SyncProcess         `json:"syncProcesses,omitempty"`
	FunctionProcesses    map[string]*FunctionProcess      `json:"functionProcesses,omitempty"`
	OrchestrationWorkers map[string]*OrchestrationWorker `json:"orchestrationWorkers,omitempty"`
	WebApps              map[string]*WebApp               `json:"webApps,omitempty"`
	Workflows            map[string]*Workflow             `json:"workflows,omitempty"`

	// ConsumptionWebServer is a singleton; nil means the egress web
	// server is not part of the map.
	ConsumptionWebServer *ConsumptionWebServer `json:"consumptionWebServer,omitempty"`

	// MooseVersion is the version of the producing tool. Empty string
	// means "not set", per §6.1.
	MooseVersion string `json:"mooseVersion,omitempty"`
}

// NewInfraMap returns an InfraMap with all maps initialized and the given
// default database.
func NewInfraMap(defaultDatabase string) *InfraMap {
	return &InfraMap{
		DefaultDatabase:      defaultDatabase,
		Tables:               map[string]*Table{},
		Topics:               map[string]*Topic{},
		ApiEndpoints:         map[string]*ApiEndpoint{},
		Views:                map[string]*View{},
		MaterializedViews:    map[string]*MaterializedView{},
		SqlResources:         map[string]*SqlResource{},
		SyncProcesses:        map[string]*SyncProcess{},
		FunctionProcesses:    map[string]*FunctionProcess{},
		OrchestrationWorkers: map[string]*OrchestrationWorker{},
		WebApps:              map[string]*WebApp{},
		Workflows:            map[string]*Workflow{},
	}
}

// ConsumptionWebServer is the singleton egress web-server marker.
type ConsumptionWebServer struct {
	Metadata *Metadata `json:"metadata,omitempty"`
}

// Annotation is an ordered name/value pair attached to a column.
type Annotation struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Table represents a managed OLAP table.
type Table struct {
	Name     string `json:"name"`
	Database string `json:"database,omitempty"`

	Columns []*Column `json:"columns"`

	// OrderBy is either an ordered field-name list or a free expression.
	OrderBy OrderBy `json:"orderBy"`

	PartitionBy string `json:"partitionBy,omitempty"`
	SampleBy    string `json:"sampleBy,omitempty"`

	Engine  Engine `json:"engine"`
	Version int    `json:"version,omitempty"`

	TableTTL             string `json:"tableTtl,omitempty"`
	PrimaryKeyExpression string `json:"primaryKeyExpression,omitempty"`

	// ClusterName is a deployment directive. It is never populated from
	// introspection and is never itself a diff trigger (§3).
	ClusterName string `json:"clusterName,omitempty"`

	Settings map[string]string `json:"settings,omitempty"`

	// TableSettingsHash / EngineParamsHash are recomputed whenever their
	// inputs are normalized (canonicalize) or resolved (credentials).
	TableSettingsHash string `json:"tableSettingsHash,omitempty"`
	EngineParamsHash  string `json:"engineParamsHash,omitempty"`

	Indexes []*TableIndex `json:"indexes,omitempty"`

	Metadata  *Metadata `json:"metadata,omitempty"`
	LifeCycle LifeCycle `json:"lifeCycle,omitempty"`

	LineageSignature string `json:"lineageSignature,omitempty"`
}

// OrderBy models the two ORDER BY shapes the engine understands.
type OrderBy struct {
	// Fields, when non-nil, preserves user-authored field-name intent.
	Fields []string `json:"fields,omitempty"`
	// Expression is a free-form expression, used when Fields is nil.
	Expression string `json:"expression,omitempty"`
}

// Empty reports whether neither a field list nor an expression is set.
func (o OrderBy) Empty() bool {
	return len(o.Fields) == 0 && o.Expression == ""
}

// TableIndex is a secondary (data-skipping) index on a table.
type TableIndex struct {
	Name        string `json:"name"`
	Expression  string `json:"expression"`
	Type        string `json:"type"`
	Granularity int    `json:"granularity,omitempty"`
}

// Column represents a single column inside a table or topic schema.
type Column struct {
	Name     string     `json:"name"`
	Type     ColumnType `json:"type"`
	Required bool       `json:"required"`

	Unique     bool `json:"unique,omitempty"`
	PrimaryKey bool `json:"primaryKey,omitempty"`

	// Default is stored in the form the engine expects: SQL literals are
	// quoted, function calls are not.
	Default *string `json:"default,omitempty"`

	TTL          string `json:"ttl,omitempty"`
	Codec        string `json:"codec,omitempty"`
	Materialized string `json:"materialized,omitempty"`

	Annotations []Annotation `json:"annotations,omitempty"`
	Comment     string       `json:"comment,omitempty"`
}

// FindColumn looks up a column by name.
func (t *Table) FindColumn(name string) *Column {
	for _, c := range t.Columns {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// FindIndex looks up a secondary index by name.
func (t *Table) FindIndex(name string) *TableIndex {
	for _, idx := range t.Indexes {
		if idx.Name == name {
			return idx
		}
	}
	return nil
}

// String renders a short human summary, mirroring core.Table.String in
// the teacher repo.
func (t *Table) String() string {
	return fmt.Sprintf("Table: %s (%d cols, %d indexes, engine=%s)", t.Name, len(t.Columns), len(t.Indexes), t.Engine.Kind)
}

// Topic represents a managed streaming-broker topic.
type Topic struct {
	Name             string    `json:"name"`
	RetentionSeconds int       `json:"retentionSeconds,omitempty"`
	PartitionCount   int       `json:"partitionCount,omitempty"`
	MaxMessageBytes  int       `json:"maxMessageBytes,omitempty"`
	Columns          []*Column `json:"columns"`
	Version          int       `json:"version,omitempty"`
	SchemaConfig     string    `json:"schemaConfig,omitempty"`
	Metadata         *Metadata `json:"metadata,omitempty"`
	LifeCycle        LifeCycle `json:"lifeCycle,omitempty"`
}

// ApiEndpointKind distinguishes ingress from egress HTTP endpoints.
type ApiEndpointKind string

const (
	Ingress ApiEndpointKind = "INGRESS"
	Egress  ApiEndpointKind = "EGRESS"
)

// ApiEndpoint represents a managed ingestion or egress HTTP endpoint.
type ApiEndpoint struct {
	Name      string          `json:"name"`
	Kind      ApiEndpointKind `json:"kind"`
	Metadata  *Metadata       `json:"metadata,omitempty"`
	LifeCycle LifeCycle       `json:"lifeCycle,omitempty"`
}

// View represents a structured (non-legacy) SQL view.
type View struct {
	Name            string    `json:"name"`
	Database        string    `json:"database,omitempty"`
	SelectStatement string    `json:"selectStatement"`
	SourceTables    []string  `json:"sourceTables,omitempty"`
	Metadata        *Metadata `json:"metadata,omitempty"`
	LifeCycle       LifeCycle `json:"lifeCycle,omitempty"`
}

// MaterializedView represents a structured materialized view with a
// target table.
type MaterializedView struct {
	Name            string    `json:"name"`
	Database        string    `json:"database,omitempty"`
	SelectStatement string    `json:"selectStatement"`
	SourceTables    []string  `json:"sourceTables,omitempty"`
	TargetTable     string    `json:"targetTable"`
	TargetDatabase  string    `json:"targetDatabase,omitempty"`
	Metadata        *Metadata `json:"metadata,omitempty"`
	LifeCycle       LifeCycle `json:"lifeCycle,omitempty"`
}

// SqlResource is a legacy one-shot raw-SQL setup/teardown resource.
type SqlResource struct {
	Name             string    `json:"name"`
	Setup            []string  `json:"setup"`
	Teardown         []string  `json:"teardown"`
	LineageSignature string    `json:"lineageSignature,omitempty"`
	Metadata         *Metadata `json:"metadata,omitempty"`
	LifeCycle        LifeCycle `json:"lifeCycle,omitempty"`
}

// SyncProcessKind distinguishes topic-to-table from topic-to-topic sync.
type SyncProcessKind string

const (
	TopicToTable SyncProcessKind = "TOPIC_TO_TABLE"
	TopicToTopic SyncProcessKind = "TOPIC_TO_TOPIC"
)

// SyncProcess moves data from a source topic to a target table or topic.
type SyncProcess struct {
	Name          string          `json:"name"`
	Kind          SyncProcessKind `json:"kind"`
	SourceTopicID string          `json:"sourceTopicId"`
	TargetTableID string          `json:"targetTableId,omitempty"`
	TargetTopicID string          `json:"targetTopicId,omitempty"`
	Version       int             `json:"version,omitempty"`
	Metadata      *Metadata       `json:"metadata,omitempty"`
	LifeCycle     LifeCycle       `json:"lifeCycle,omitempty"`
}

// FunctionProcess represents an ancillary code-driven process (stream
// transform function).
type FunctionProcess struct {
	Name      string            `json:"name"`
	Config    map[string]string `json:"config,omitempty"`
	Metadata  *Metadata         `json:"metadata,omitempty"`
	LifeCycle LifeCycle         `json:"lifeCycle,omitempty"`
}

// OrchestrationWorker represents a long-running orchestration-workflow
// worker process.
type OrchestrationWorker struct {
	Name      string            `json:"name"`
	Config    map[string]string `json:"config,omitempty"`
	Metadata  *Metadata         `json:"metadata,omitempty"`
	LifeCycle LifeCycle         `json:"lifeCycle,omitempty"`
}

// WebApp represents a managed ancillary web application process.
type WebApp struct {
	Name      string            `json:"name"`
	Config    map[string]string `json:"config,omitempty"`
	Metadata  *Metadata         `json:"metadata,omitempty"`
	LifeCycle LifeCycle         `json:"lifeCycle,omitempty"`
}

// Workflow represents a scheduled orchestration workflow. Equality for
// diffing purposes is limited to (Schedule, Retries, Timeout) per §4.4.
type Workflow struct {
	Name      string            `json:"name"`
	Schedule  string            `json:"schedule,omitempty"`
	Retries   int               `json:"retries,omitempty"`
	Timeout   string            `json:"timeout,omitempty"`
	Config    map[string]string `json:"config,omitempty"`
	Metadata  *Metadata         `json:"metadata,omitempty"`
	LifeCycle LifeCycle         `json:"lifeCycle,omitempty"`
}
