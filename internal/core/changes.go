package core

// ChangeKind tags the three shapes every per-resource diff can take:
// Added, Removed, or Updated (before/after both present). Per-kind
// polymorphism is modeled as this generic sum rather than erasing the
// entity type (§9 design notes).
type ChangeKind string

const (
	Added   ChangeKind = "ADDED"
	Removed ChangeKind = "REMOVED"
	Updated ChangeKind = "UPDATED"
)

// Change is the common change shape shared by every non-table resource
// kind: topics, endpoints, web apps, workflows, sync processes, function
// processes, orchestration workers, the consumption web server.
type Change[T any] struct {
	Kind   ChangeKind
	ID     string
	Before *T
	After  *T
}

// AddedColumn records a column introduced by an update, together with
// the preceding column's name in the after-list (nil means "first
// position"). Preserves authored position per §4.4.
type AddedColumn struct {
	Column *Column
	After  *string
}

// ModifiedColumn pairs a column's before/after state. CommentOnly is set
// when data_type and every other attribute are unchanged and only the
// comment differs, so the executor can reduce this to a comment-only
// alter (§4.4, §4.6, testable property 10).
type ModifiedColumn struct {
	Before      *Column
	After       *Column
	CommentOnly bool
}

// TableColumnChanges is the column-level half of a table delta.
type TableColumnChanges struct {
	Added    []AddedColumn
	Removed  []*Column
	Modified []ModifiedColumn
}

func (c TableColumnChanges) Empty() bool {
	return len(c.Added) == 0 && len(c.Removed) == 0 && len(c.Modified) == 0
}

// TableDelta is everything the differ found between two versions of the
// same table, independent of what any particular engine can actually
// perform. A TableDiffStrategy turns this into the atomic operations the
// executor understands (§4.4, §9).
type TableDelta struct {
	Columns TableColumnChanges

	OrderByChanged     bool
	PartitionByChanged bool
	SampleByChanged    bool
	EngineChanged      bool
	TTLChanged         bool

	IndexesAdded   []*TableIndex
	IndexesRemoved []*TableIndex

	SettingsChanged bool
	BeforeSettings  map[string]string
	AfterSettings   map[string]string
}

// Empty reports whether the delta carries no changes at all.
func (d TableDelta) Empty() bool {
	return d.Columns.Empty() && !d.OrderByChanged && !d.PartitionByChanged &&
		!d.SampleByChanged && !d.EngineChanged && !d.TTLChanged &&
		len(d.IndexesAdded) == 0 && len(d.IndexesRemoved) == 0 && !d.SettingsChanged
}

// TableDiffStrategy decomposes a coarse table update into the atomic
// operation sequence a particular engine is actually capable of
// performing (§4.4, §9). A strategy that cannot express the delta
// incrementally (e.g. a sort-key change on an engine that cannot ALTER
// ORDER BY) returns a DropTable+CreateTable pair instead.
type TableDiffStrategy interface {
	DiffTableUpdate(before, after *Table, delta TableDelta, defaultDatabase string) []*OlapChange
}

// OlapOpKind is the tag of the OlapChange sum type: the abstract atomic
// operation set the planner and executor agree on (§4.6).
type OlapOpKind string

const (
	OpCreateTable              OlapOpKind = "CreateTable"
	OpDropTable                OlapOpKind = "DropTable"
	OpAddTableColumn           OlapOpKind = "AddTableColumn"
	OpDropTableColumn          OlapOpKind = "DropTableColumn"
	OpModifyTableColumn        OlapOpKind = "ModifyTableColumn"
	OpRenameTableColumn        OlapOpKind = "RenameTableColumn"
	OpModifyTableSettings      OlapOpKind = "ModifyTableSettings"
	OpModifyTableTtl           OlapOpKind = "ModifyTableTtl"
	OpModifyPartitionBy        OlapOpKind = "ModifyPartitionBy"
	OpAddTableIndex            OlapOpKind = "AddTableIndex"
	OpDropTableIndex           OlapOpKind = "DropTableIndex"
	OpModifySampleBy           OlapOpKind = "ModifySampleBy"
	OpRemoveSampleBy           OlapOpKind = "RemoveSampleBy"
	OpPopulateMaterializedView OlapOpKind = "PopulateMaterializedView"
	OpRawSql                   OlapOpKind = "RawSql"

	OpCreateView             OlapOpKind = "CreateView"
	OpDropView               OlapOpKind = "DropView"
	OpUpdateView             OlapOpKind = "UpdateView"
	OpCreateMaterializedView OlapOpKind = "CreateMaterializedView"
	OpDropMaterializedView   OlapOpKind = "DropMaterializedView"
	OpUpdateMaterializedView OlapOpKind = "UpdateMaterializedView"
	OpAddSqlResource         OlapOpKind = "AddSqlResource"
	OpRemoveSqlResource      OlapOpKind = "RemoveSqlResource"
	OpUpdateSqlResource      OlapOpKind = "UpdateSqlResource"
)

// PopulateMaterializedView is the explicit backfill operation emitted
// alongside a materialized-view add/update in non-production
// environments when every source is a SELECT-capable engine (§4.4).
type PopulateMaterializedView struct {
	ViewName        string
	TargetTable     string
	TargetDatabase  string
	SelectStatement string
	SourceTables    []string
	ShouldTruncate  bool
}

// OlapChange is the abstract DDL/admin operation the planner emits and
// the executor applies (§4.6). Only the fields relevant to Kind are
// meaningful, mirroring the one-struct-per-variant-family shape used
// throughout internal/core (see Engine, ColumnType).
type OlapChange struct {
	Kind OlapOpKind

	Table    *Table
	Database string
	Cluster  string

	// Column operations.
	Column          *Column // AddTableColumn/ModifyTableColumn: after-state
	BeforeColumn    *Column // ModifyTableColumn: before-state
	ColumnName      string  // DropTableColumn, RenameTableColumn before-name
	AfterColumnName *string // RenameTableColumn: new name
	PrecedingColumn *string // AddTableColumn: nil means "first position"
	CommentOnly     bool    // ModifyTableColumn reduced to comment-only (§4.4, testable property 10)

	// Settings.
	BeforeSettings map[string]string
	AfterSettings  map[string]string

	// TTL / partition / sample by.
	BeforeTTL         string
	AfterTTL          string
	BeforePartitionBy string
	AfterPartitionBy  string
	SampleBy          string

	// Indexes.
	Index     *TableIndex
	IndexName string

	// View / MaterializedView / SqlResource payloads.
	View             *View
	MaterializedView *MaterializedView
	SqlResource      *SqlResource

	Populate *PopulateMaterializedView

	// RawSql escape hatch. RawSQLTeardown marks an operation that
	// originates from a removal, so Phase() reports PhaseTeardown for it
	// even though OpRawSql carries no fixed phase of its own (§11,
	// grounded in the original implementation's teardown-vs-setup RawSql
	// split).
	RawSQL         []string
	Description    string
	RawSQLTeardown bool
}

// Phase is the executor-ordering half of an operation: every teardown
// operation runs before every setup operation, regardless of emission
// order (§4.6, §5).
type Phase string

const (
	PhaseTeardown Phase = "TEARDOWN"
	PhaseSetup    Phase = "SETUP"
)

// phaseTeardownKinds are the operation kinds that tear down existing
// state rather than create or modify it. A RawSql escape-hatch
// operation's phase depends on why it was emitted rather than its kind
// alone (§11): RawSQLTeardown marks one that originates from a removal.
var phaseTeardownKinds = map[OlapOpKind]bool{
	OpDropTable:            true,
	OpDropTableColumn:      true,
	OpDropTableIndex:       true,
	OpDropView:             true,
	OpDropMaterializedView: true,
	OpRemoveSqlResource:    true,
}

// Phase reports which half of the teardown/setup split this operation
// belongs to. The executor must run every PhaseTeardown operation before
// any PhaseSetup operation (§4.6, §5); within a phase, operations run in
// emission order.
func (c *OlapChange) Phase() Phase {
	if c.Kind == OpRawSql {
		if c.RawSQLTeardown {
			return PhaseTeardown
		}
		return PhaseSetup
	}
	if phaseTeardownKinds[c.Kind] {
		return PhaseTeardown
	}
	return PhaseSetup
}

// FilteredChange records an operation the planner would have emitted
// but lifecycle policy blocked, surfaced for user feedback rather than
// as an error (§4.5, glossary).
type FilteredChange struct {
	EntityKind string
	EntityName string
	EntityID   string
	Operation  string
	Reason     string
}

// ProcessesChanges groups the resource kinds that are always redeployed
// wholesale rather than incrementally altered (§4.4).
type ProcessesChanges struct {
	SyncProcesses        []*Change[SyncProcess]
	FunctionProcesses    []*Change[FunctionProcess]
	OrchestrationWorkers []*Change[OrchestrationWorker]
	ConsumptionWebServer *Change[ConsumptionWebServer]
}

func (p ProcessesChanges) Empty() bool {
	return len(p.SyncProcesses) == 0 && len(p.FunctionProcesses) == 0 &&
		len(p.OrchestrationWorkers) == 0 && p.ConsumptionWebServer == nil
}

// InfraChanges is the complete output of a single diff (§2, §4.4).
type InfraChanges struct {
	OlapChanges            []*OlapChange
	ProcessesChanges       ProcessesChanges
	ApiChanges             []*Change[ApiEndpoint]
	WebAppChanges          []*Change[WebApp]
	StreamingEngineChanges []*Change[Topic]
	WorkflowChanges        []*Change[Workflow]
	FilteredOlapChanges    []*FilteredChange
}

// IsEmpty reports whether the diff produced no changes at all
// (testable property 1, scenario S1).
func (c *InfraChanges) IsEmpty() bool {
	if c == nil {
		return true
	}
	return len(c.OlapChanges) == 0 &&
		c.ProcessesChanges.Empty() &&
		len(c.ApiChanges) == 0 &&
		len(c.WebAppChanges) == 0 &&
		len(c.StreamingEngineChanges) == 0 &&
		len(c.WorkflowChanges) == 0 &&
		len(c.FilteredOlapChanges) == 0
}

// OrderedOlapChanges returns OlapChanges regrouped so that every
// PhaseTeardown operation precedes every PhaseSetup operation, preserving
// relative emission order within each phase (§4.6, §5: "teardown
// operations are executed in full before setup operations... within each
// phase, operations are executed in the order the planner emitted
// them"). The original slice is left untouched.
func (c *InfraChanges) OrderedOlapChanges() []*OlapChange {
	ordered := make([]*OlapChange, 0, len(c.OlapChanges))
	for _, op := range c.OlapChanges {
		if op.Phase() == PhaseTeardown {
			ordered = append(ordered, op)
		}
	}
	for _, op := range c.OlapChanges {
		if op.Phase() == PhaseSetup {
			ordered = append(ordered, op)
		}
	}
	return ordered
}
