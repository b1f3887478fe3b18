package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEngine_SupportsSelect(t *testing.T) {
	cases := []struct {
		name   string
		engine Engine
		want   bool
	}{
		{"MergeTree", Engine{Kind: EngineMergeTree}, true},
		{"ReplacingMergeTree", Engine{Kind: EngineReplacingMergeTree}, true},
		{"Kafka is write-only", Engine{Kind: EngineKafka}, false},
		{"S3Queue is write-only", Engine{Kind: EngineS3Queue}, false},
		{"S3 supports select", Engine{Kind: EngineS3}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.engine.SupportsSelect())
		})
	}
}

func TestEngine_RequiresOrderBy(t *testing.T) {
	assert.True(t, Engine{Kind: EngineMergeTree}.RequiresOrderBy())
	assert.True(t, Engine{Kind: EngineSummingMergeTree}.RequiresOrderBy())
	assert.False(t, Engine{Kind: EngineKafka}.RequiresOrderBy())
	assert.False(t, Engine{Kind: EngineS3}.RequiresOrderBy())
}

func TestEngine_EffectiveKindUnwrapsReplicated(t *testing.T) {
	e := Engine{
		Kind:       EngineReplicatedMergeTree,
		Replicated: &ReplicatedParams{KeeperPath: "/clickhouse/tables/{shard}/events", ReplicaName: "{replica}", BaseKind: EngineReplacingMergeTree},
	}

	assert.True(t, e.IsReplicated())
	assert.Equal(t, EngineReplacingMergeTree, e.EffectiveKind())
}

func TestEngine_EffectiveKindPassesThroughNonReplicated(t *testing.T) {
	e := Engine{Kind: EngineMergeTree}

	assert.False(t, e.IsReplicated())
	assert.Equal(t, EngineMergeTree, e.EffectiveKind())
}
