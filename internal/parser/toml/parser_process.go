package toml

import "inframap/internal/core"

type tomlSyncProcess struct {
	Name           string `toml:"name"`
	Kind           string `toml:"kind"`
	SourceTopicID  string `toml:"source_topic_id"`
	TargetTableID  string `toml:"target_table_id"`
	TargetTopicID  string `toml:"target_topic_id"`
	Version        int    `toml:"version"`
	LifeCycle      string `toml:"life_cycle"`
	MetadataSource string `toml:"metadata_source"`
}

func convertSyncProcess(ts *tomlSyncProcess) *core.SyncProcess {
	kind := core.SyncProcessKind(ts.Kind)
	if kind == "" {
		kind = core.TopicToTable
	}
	return &core.SyncProcess{
		Name:          ts.Name,
		Kind:          kind,
		SourceTopicID: ts.SourceTopicID,
		TargetTableID: ts.TargetTableID,
		TargetTopicID: ts.TargetTopicID,
		Version:       ts.Version,
		Metadata:      metadataOf(ts.MetadataSource),
		LifeCycle:     lifeCycleOf(ts.LifeCycle),
	}
}

type tomlFunctionProcess struct {
	Name           string            `toml:"name"`
	Config         map[string]string `toml:"config"`
	LifeCycle      string            `toml:"life_cycle"`
	MetadataSource string            `toml:"metadata_source"`
}

func convertFunctionProcess(tf *tomlFunctionProcess) *core.FunctionProcess {
	return &core.FunctionProcess{
		Name:      tf.Name,
		Config:    tf.Config,
		Metadata:  metadataOf(tf.MetadataSource),
		LifeCycle: lifeCycleOf(tf.LifeCycle),
	}
}

type tomlOrchestrationWorker struct {
	Name           string            `toml:"name"`
	Config         map[string]string `toml:"config"`
	LifeCycle      string            `toml:"life_cycle"`
	MetadataSource string            `toml:"metadata_source"`
}

func convertOrchestrationWorker(tw *tomlOrchestrationWorker) *core.OrchestrationWorker {
	return &core.OrchestrationWorker{
		Name:      tw.Name,
		Config:    tw.Config,
		Metadata:  metadataOf(tw.MetadataSource),
		LifeCycle: lifeCycleOf(tw.LifeCycle),
	}
}

type tomlWebApp struct {
	Name           string            `toml:"name"`
	Config         map[string]string `toml:"config"`
	LifeCycle      string            `toml:"life_cycle"`
	MetadataSource string            `toml:"metadata_source"`
}

func convertWebApp(ta *tomlWebApp) *core.WebApp {
	return &core.WebApp{
		Name:      ta.Name,
		Config:    ta.Config,
		Metadata:  metadataOf(ta.MetadataSource),
		LifeCycle: lifeCycleOf(ta.LifeCycle),
	}
}

type tomlWorkflow struct {
	Name           string            `toml:"name"`
	Schedule       string            `toml:"schedule"`
	Retries        int               `toml:"retries"`
	Timeout        string            `toml:"timeout"`
	Config         map[string]string `toml:"config"`
	LifeCycle      string            `toml:"life_cycle"`
	MetadataSource string            `toml:"metadata_source"`
}

func convertWorkflow(tw *tomlWorkflow) *core.Workflow {
	return &core.Workflow{
		Name:      tw.Name,
		Schedule:  tw.Schedule,
		Retries:   tw.Retries,
		Timeout:   tw.Timeout,
		Config:    tw.Config,
		Metadata:  metadataOf(tw.MetadataSource),
		LifeCycle: lifeCycleOf(tw.LifeCycle),
	}
}

type tomlConsumptionWebServer struct {
	MetadataSource string `toml:"metadata_source"`
}

func convertConsumptionWebServer(tc *tomlConsumptionWebServer) *core.ConsumptionWebServer {
	return &core.ConsumptionWebServer{Metadata: metadataOf(tc.MetadataSource)}
}
