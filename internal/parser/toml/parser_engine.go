package toml

import (
	"fmt"

	"inframap/internal/core"
)

type tomlEngine struct {
	Kind string `toml:"kind"`

	ReplacingVersionColumn   string `toml:"replacing_version_column"`
	ReplacingIsDeletedColumn string `toml:"replacing_is_deleted_column"`

	SummingColumns []string `toml:"summing_columns"`

	Replicated *tomlReplicatedParams `toml:"replicated"`
	Kafka      *tomlKafkaParams      `toml:"kafka"`
	S3Queue    *tomlS3QueueParams    `toml:"s3_queue"`
	S3         *tomlS3Params         `toml:"s3"`
	IcebergS3  *tomlIcebergS3Params  `toml:"iceberg_s3"`
}

type tomlReplicatedParams struct {
	KeeperPath  string `toml:"keeper_path"`
	ReplicaName string `toml:"replica_name"`
	BaseKind    string `toml:"base_kind"`
}

type tomlKafkaParams struct {
	Broker string `toml:"broker"`
	Topic  string `toml:"topic"`
	Group  string `toml:"group"`
	Format string `toml:"format"`
}

type tomlS3QueueParams struct {
	Path           string            `toml:"path"`
	Format         string            `toml:"format"`
	Compression    string            `toml:"compression"`
	Headers        map[string]string `toml:"headers"`
	AWSAccessKeyID string            `toml:"aws_access_key_id"`
	AWSSecretKey   string            `toml:"aws_secret_key"`
	AWSRegion      string            `toml:"aws_region"`
}

type tomlS3Params struct {
	Path           string `toml:"path"`
	Format         string `toml:"format"`
	Compression    string `toml:"compression"`
	AWSAccessKeyID string `toml:"aws_access_key_id"`
	AWSSecretKey   string `toml:"aws_secret_key"`
	AWSRegion      string `toml:"aws_region"`
}

type tomlIcebergS3Params struct {
	Path           string `toml:"path"`
	AWSAccessKeyID string `toml:"aws_access_key_id"`
	AWSSecretKey   string `toml:"aws_secret_key"`
	AWSRegion      string `toml:"aws_region"`
}

// convertEngine maps the TOML engine table onto core.Engine's tagged
// union (§3/§4), validating the kind is one this module understands
// rather than silently defaulting (an unknown engine is an authoring
// mistake the user needs to see, not a table we'd diff wrong forever).
func convertEngine(te *tomlEngine) (core.Engine, error) {
	kind := core.EngineKind(te.Kind)

	switch kind {
	case core.EngineMergeTree, core.EngineAggregatingMergeTree:
		return core.Engine{Kind: kind}, nil

	case core.EngineReplacingMergeTree:
		return core.Engine{
			Kind:                     kind,
			ReplacingVersionColumn:   te.ReplacingVersionColumn,
			ReplacingIsDeletedColumn: te.ReplacingIsDeletedColumn,
		}, nil

	case core.EngineSummingMergeTree:
		return core.Engine{Kind: kind, SummingColumns: te.SummingColumns}, nil

	case core.EngineReplicatedMergeTree:
		if te.Replicated == nil {
			return core.Engine{}, fmt.Errorf("ReplicatedMergeTree requires a replicated table")
		}
		return core.Engine{Kind: kind, Replicated: &core.ReplicatedParams{
			KeeperPath:  te.Replicated.KeeperPath,
			ReplicaName: te.Replicated.ReplicaName,
			BaseKind:    core.EngineKind(te.Replicated.BaseKind),
		}}, nil

	case core.EngineKafka:
		if te.Kafka == nil {
			return core.Engine{}, fmt.Errorf("Kafka engine requires a kafka table")
		}
		return core.Engine{Kind: kind, Kafka: &core.KafkaParams{
			Broker: te.Kafka.Broker, Topic: te.Kafka.Topic, Group: te.Kafka.Group, Format: te.Kafka.Format,
		}}, nil

	case core.EngineS3Queue:
		if te.S3Queue == nil {
			return core.Engine{}, fmt.Errorf("S3Queue engine requires an s3_queue table")
		}
		return core.Engine{Kind: kind, S3Queue: &core.S3QueueParams{
			Path: te.S3Queue.Path, Format: te.S3Queue.Format, Compression: te.S3Queue.Compression,
			Headers: te.S3Queue.Headers, AWSAccessKeyID: te.S3Queue.AWSAccessKeyID,
			AWSSecretKey: te.S3Queue.AWSSecretKey, AWSRegion: te.S3Queue.AWSRegion,
		}}, nil

	case core.EngineS3:
		if te.S3 == nil {
			return core.Engine{}, fmt.Errorf("S3 engine requires an s3 table")
		}
		return core.Engine{Kind: kind, S3: &core.S3Params{
			Path: te.S3.Path, Format: te.S3.Format, Compression: te.S3.Compression,
			AWSAccessKeyID: te.S3.AWSAccessKeyID, AWSSecretKey: te.S3.AWSSecretKey, AWSRegion: te.S3.AWSRegion,
		}}, nil

	case core.EngineIcebergS3:
		if te.IcebergS3 == nil {
			return core.Engine{}, fmt.Errorf("IcebergS3 engine requires an iceberg_s3 table")
		}
		return core.Engine{Kind: kind, IcebergS3: &core.IcebergS3Params{
			Path: te.IcebergS3.Path, AWSAccessKeyID: te.IcebergS3.AWSAccessKeyID,
			AWSSecretKey: te.IcebergS3.AWSSecretKey, AWSRegion: te.IcebergS3.AWSRegion,
		}}, nil

	default:
		return core.Engine{}, fmt.Errorf("unsupported engine kind %q", te.Kind)
	}
}
