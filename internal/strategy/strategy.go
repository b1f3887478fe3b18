// Package strategy provides engine-specific table-diff strategies: the
// piece of dynamic dispatch that turns a coarse TableDelta into the
// sequence of atomic operations a particular OLAP engine can actually
// perform (§4.4, §9). The registry mirrors
// internal/dialect.RegisterDialect/GetDialect in the teacher repo: a
// mutex-guarded map of constructors keyed by engine kind.
package strategy

import (
	"sync"

	"inframap/internal/core"
)

var (
	registryMu sync.RWMutex
	registry   = map[core.EngineKind]func() core.TableDiffStrategy{}
)

// Register installs the strategy constructor for the given engine kind.
func Register(kind core.EngineKind, ctor func() core.TableDiffStrategy) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[kind] = ctor
}

// For returns the registered strategy for kind, or the DefaultStrategy
// when no engine-specific strategy was registered. The differ must never
// fail to decompose an update merely because a new engine variant
// appeared (§7: "tolerates unknown/new engine variants by falling back
// to coarse Updated").
func For(kind core.EngineKind) core.TableDiffStrategy {
	registryMu.RLock()
	ctor, ok := registry[kind]
	registryMu.RUnlock()
	if !ok {
		return DefaultStrategy{}
	}
	return ctor()
}

func init() {
	// MergeTree-family engines in this pack alter columns, indexes,
	// settings, TTL, sample-by and partition-by in place; they use the
	// incremental default strategy, which recreates the table when the
	// engine or the sort key changes. Registering them explicitly (rather than
	// silently relying on the DefaultStrategy fallback) documents the
	// capability decision instead of leaving it implicit.
	for _, k := range []core.EngineKind{
		core.EngineMergeTree,
		core.EngineReplacingMergeTree,
		core.EngineAggregatingMergeTree,
		core.EngineSummingMergeTree,
		core.EngineReplicatedMergeTree,
	} {
		Register(k, func() core.TableDiffStrategy { return DefaultStrategy{} })
	}

	// Kafka and S3Queue are write-only sink engines with no persisted
	// sort key or partitioning of their own kind; a settings/schema
	// change on these requires recreation since the engine table
	// definition is immutable once the consumer/queue is attached.
	for _, k := range []core.EngineKind{core.EngineKafka, core.EngineS3Queue} {
		Register(k, func() core.TableDiffStrategy { return DropCreateStrategy{} })
	}
}
