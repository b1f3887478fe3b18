package toml

import (
	"strings"

	"github.com/pingcap/tidb/pkg/parser"
	"github.com/pingcap/tidb/pkg/parser/format"
	_ "github.com/pingcap/tidb/pkg/parser/test_driver"

	"inframap/internal/core"
)

// tomlSqlResource authors a SqlResource either as already-split
// statement lists (setup/teardown) or as a single raw script
// (setup_sql/teardown_sql) that gets split for them.
type tomlSqlResource struct {
	Name             string   `toml:"name"`
	Setup            []string `toml:"setup"`
	Teardown         []string `toml:"teardown"`
	SetupSQL         string   `toml:"setup_sql"`
	TeardownSQL      string   `toml:"teardown_sql"`
	LineageSignature string   `toml:"lineage_signature"`
	LifeCycle        string   `toml:"life_cycle"`
	MetadataSource   string   `toml:"metadata_source"`
}

func convertSqlResource(ts *tomlSqlResource) (*core.SqlResource, error) {
	setup := ts.Setup
	if len(setup) == 0 && ts.SetupSQL != "" {
		setup = splitSQLStatements(ts.SetupSQL)
	}
	teardown := ts.Teardown
	if len(teardown) == 0 && ts.TeardownSQL != "" {
		teardown = splitSQLStatements(ts.TeardownSQL)
	}

	return &core.SqlResource{
		Name:             ts.Name,
		Setup:            setup,
		Teardown:         teardown,
		LineageSignature: ts.LineageSignature,
		Metadata:         metadataOf(ts.MetadataSource),
		LifeCycle:        lifeCycleOf(ts.LifeCycle),
	}, nil
}

// splitSQLStatements splits a raw multi-statement script into individual
// statements, preferring the TiDB AST parser (so a semicolon inside a
// string literal or comment doesn't break a statement in half) and
// falling back to a dumb semicolon split when the parser can't make
// sense of the dialect.
func splitSQLStatements(content string) []string {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil
	}
	if statements := splitSQLStatementsUsingTiDBParser(content); len(statements) > 0 {
		return statements
	}
	return splitSQLStatementsBySemicolon(content)
}

func splitSQLStatementsUsingTiDBParser(content string) []string {
	stmtNodes, _, err := parser.New().Parse(content, "", "")
	if err != nil || len(stmtNodes) == 0 {
		return nil
	}

	statements := make([]string, 0, len(stmtNodes))
	for _, node := range stmtNodes {
		if node == nil {
			continue
		}
		var sb strings.Builder
		ctx := format.NewRestoreCtx(format.DefaultRestoreFlags, &sb)
		if err := node.Restore(ctx); err != nil {
			continue
		}
		if stmt := strings.TrimSpace(sb.String()); stmt != "" {
			statements = append(statements, stmt)
		}
	}

	if len(statements) == 0 {
		return nil
	}
	return statements
}

func splitSQLStatementsBySemicolon(content string) []string {
	var statements []string
	var current strings.Builder

	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "--") || trimmed == "" {
			continue
		}

		current.WriteString(line)
		current.WriteString("\n")
		if strings.HasSuffix(trimmed, ";") {
			if stmt := strings.TrimSpace(current.String()); stmt != "" {
				statements = append(statements, stmt)
			}
			current.Reset()
		}
	}

	if remaining := strings.TrimSpace(current.String()); remaining != "" {
		statements = append(statements, remaining)
	}
	return statements
}
