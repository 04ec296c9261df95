package parse

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scan-io-git/scanio-analysis/pkg/expression"
	"github.com/scan-io-git/scanio-analysis/pkg/issues"
	"github.com/scan-io-git/scanio-analysis/pkg/shared/files"
)

const rulesYAML = `rules:
  - id: gcc
    name: GNU C Compiler
    regexp: '^(.+?):(\d+):(\d+): (warning|error): (.*)$'
    file_name: groups[1]
    line_start: int(groups[2])
    message: groups[5]
    category: groups[4]
    severity: 'groups[4] == "error" ? "ERROR" : "NORMAL"'
`

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func loadRegistry(t *testing.T) *expression.Registry {
	t.Helper()
	registry := expression.NewRegistry()
	require.NoError(t, registry.Load(writeTemp(t, "parsers.yml", rulesYAML)))
	return registry
}

func TestRun(t *testing.T) {
	first := writeTemp(t, "first.log", "src/main.c:12:5: warning: unused variable\n")
	second := writeTemp(t, "second.log", "noise\nsrc/util.c:40:1: error: missing return\n")
	output := filepath.Join(t.TempDir(), "gcc.json")

	report, err := Run(loadRegistry(t), RunOptions{RuleID: "gcc", Inputs: []string{first, second}, OutputPath: output}, hclog.NewNullLogger())
	require.NoError(t, err)
	assert.Equal(t, "gcc", report.ID)
	assert.Equal(t, "GNU C Compiler", report.Name)
	require.Equal(t, 2, report.Size())
	assert.Equal(t, "src/main.c", report.Get(0).FileName)
	assert.Equal(t, issues.SeverityError, report.Get(1).Severity)

	stored := &issues.Report{}
	require.NoError(t, files.ReadJSON(output, stored))
	assert.Equal(t, 2, stored.Size())
}

func TestRunUnknownRule(t *testing.T) {
	_, err := Run(loadRegistry(t), RunOptions{RuleID: "clang"}, hclog.NewNullLogger())
	assert.ErrorIs(t, err, expression.ErrUnknownRule)
}

func TestValidate(t *testing.T) {
	input := writeTemp(t, "build.log", "")

	assert.Error(t, validate(&RunOptions{}))
	assert.NoError(t, validate(&RunOptions{RulesFile: "parsers.yml", List: true}))
	assert.Error(t, validate(&RunOptions{RulesFile: "parsers.yml", Inputs: []string{input}}))
	assert.Error(t, validate(&RunOptions{RulesFile: "parsers.yml", RuleID: "gcc"}))
	assert.Error(t, validate(&RunOptions{RulesFile: "parsers.yml", RuleID: "gcc", Inputs: []string{filepath.Dir(input)}}))
	assert.NoError(t, validate(&RunOptions{RulesFile: "parsers.yml", RuleID: "gcc", Inputs: []string{input}}))
}
