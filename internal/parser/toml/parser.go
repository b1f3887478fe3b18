// Package toml loads a user-authored infrastructure map from the TOML
// source format: a PartialMap-shaped document assembled into a
// core.InfraMap. Follows the teacher's internal/parser/toml layout (one
// file per entity kind: parser_table.go, parser_column.go,
// parser_index.go, ...), extended with the resource kinds the teacher's
// relational-schema parser never had (topics, endpoints, views,
// materialized views, sql resources, sync processes, function
// processes, orchestration workers, web apps, workflows, the
// consumption web server singleton).
package toml

import (
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"

	"inframap/internal/canonicalize"
	"inframap/internal/core"
)

// document is the top-level TOML document shape.
type document struct {
	DefaultDatabase string `toml:"default_database"`
	MooseVersion    string `toml:"moose_version"`

	Tables               []tomlTable              `toml:"tables"`
	Topics               []tomlTopic               `toml:"topics"`
	ApiEndpoints         []tomlApiEndpoint         `toml:"api_endpoints"`
	Views                []tomlView                `toml:"views"`
	MaterializedViews    []tomlMaterializedView    `toml:"materialized_views"`
	SqlResources         []tomlSqlResource         `toml:"sql_resources"`
	SyncProcesses        []tomlSyncProcess         `toml:"sync_processes"`
	FunctionProcesses    []tomlFunctionProcess     `toml:"function_processes"`
	OrchestrationWorkers []tomlOrchestrationWorker `toml:"orchestration_workers"`
	WebApps              []tomlWebApp              `toml:"web_apps"`
	Workflows            []tomlWorkflow            `toml:"workflows"`

	ConsumptionWebServer *tomlConsumptionWebServer `toml:"consumption_web_server"`
}

// Parser reads inframap TOML source files.
type Parser struct{}

// NewParser creates a new TOML source parser.
func NewParser() *Parser {
	return &Parser{}
}

// ParseFile opens the file at path and parses it as a TOML source
// document.
func (p *Parser) ParseFile(path string) (*core.InfraMap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("toml: open file %q: %w", path, err)
	}
	defer f.Close()

	return p.Parse(f)
}

// Parse reads TOML content from r and returns the assembled,
// canonicalized core.InfraMap.
func (p *Parser) Parse(r io.Reader) (*core.InfraMap, error) {
	var doc document
	if _, err := toml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("toml: decode error: %w", err)
	}

	m, err := newConverter(&doc).convert()
	if err != nil {
		return nil, err
	}

	return canonicalize.Normalize(m), nil
}

type converter struct {
	doc        *document
	seenTables map[string]bool
}

func newConverter(doc *document) *converter {
	return &converter{doc: doc, seenTables: make(map[string]bool, len(doc.Tables))}
}

func (c *converter) convert() (*core.InfraMap, error) {
	m := core.NewInfraMap(c.doc.DefaultDatabase)
	m.MooseVersion = c.doc.MooseVersion

	for i := range c.doc.Tables {
		tbl, err := c.convertTable(&c.doc.Tables[i])
		if err != nil {
			return nil, fmt.Errorf("toml: table %q: %w", c.doc.Tables[i].Name, err)
		}
		m.Tables[tbl.ID(m.DefaultDatabase)] = tbl
	}

	for i := range c.doc.Topics {
		topic, err := convertTopic(&c.doc.Topics[i])
		if err != nil {
			return nil, fmt.Errorf("toml: topic %q: %w", c.doc.Topics[i].Name, err)
		}
		m.Topics[topic.ID()] = topic
	}

	for i := range c.doc.ApiEndpoints {
		ep := convertApiEndpoint(&c.doc.ApiEndpoints[i])
		m.ApiEndpoints[ep.Name] = ep
	}

	for i := range c.doc.Views {
		v := convertView(&c.doc.Views[i])
		m.Views[viewKey(v.Database, v.Name)] = v
	}

	for i := range c.doc.MaterializedViews {
		mv := convertMaterializedView(&c.doc.MaterializedViews[i])
		m.MaterializedViews[viewKey(mv.Database, mv.Name)] = mv
	}

	for i := range c.doc.SqlResources {
		res, err := convertSqlResource(&c.doc.SqlResources[i])
		if err != nil {
			return nil, fmt.Errorf("toml: sql resource %q: %w", c.doc.SqlResources[i].Name, err)
		}
		m.SqlResources[res.Name] = res
	}

	for i := range c.doc.SyncProcesses {
		sp := convertSyncProcess(&c.doc.SyncProcesses[i])
		m.SyncProcesses[sp.ID(m.DefaultDatabase)] = sp
	}

	for i := range c.doc.FunctionProcesses {
		fp := convertFunctionProcess(&c.doc.FunctionProcesses[i])
		m.FunctionProcesses[fp.Name] = fp
	}

	for i := range c.doc.OrchestrationWorkers {
		ow := convertOrchestrationWorker(&c.doc.OrchestrationWorkers[i])
		m.OrchestrationWorkers[ow.Name] = ow
	}

	for i := range c.doc.WebApps {
		wa := convertWebApp(&c.doc.WebApps[i])
		m.WebApps[wa.Name] = wa
	}

	for i := range c.doc.Workflows {
		wf := convertWorkflow(&c.doc.Workflows[i])
		m.Workflows[wf.Name] = wf
	}

	if c.doc.ConsumptionWebServer != nil {
		m.ConsumptionWebServer = convertConsumptionWebServer(c.doc.ConsumptionWebServer)
	}

	return m, nil
}

func viewKey(database, name string) string {
	if database == "" {
		return name
	}
	return database + "." + name
}

func metadataOf(source string) *core.Metadata {
	if source == "" {
		return nil
	}
	return &core.Metadata{Source: source}
}

func lifeCycleOf(raw string) core.LifeCycle {
	lc := core.LifeCycle(raw)
	if lc == "" {
		return core.FullyManaged
	}
	return lc
}
