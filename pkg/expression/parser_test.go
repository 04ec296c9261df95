package expression

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scan-io-git/scanio-analysis/pkg/issues"
)

const gccLog = `make: Entering directory 'build'
src/main.c:12:5: warning: unused variable 'x' [-Wunused-variable]
src/util.c:40:1: error: control reaches end of non-void function [-Wreturn-type]
/usr/include/stdio.h:3:1: warning: system header [-Wsystem]
make: Leaving directory 'build'
`

func gccRule() Rule {
	return Rule{
		ID:        "gcc",
		Name:      "GNU C Compiler",
		Regexp:    `^(.+?):(\d+):(\d+): (warning|error): (.*) \[(-W[\w-]+)\]$`,
		FileName:  `groups[1]`,
		LineStart: `int(groups[2])`,
		Message:   `groups[5]`,
		Category:  `groups[4]`,
		Type:      `groups[6]`,
		Severity:  `groups[4] == "error" ? "ERROR" : "NORMAL"`,
		Condition: `!groups[1].startsWith("/usr/")`,
	}
}

func TestParse(t *testing.T) {
	report := issues.NewReport("gcc", "GCC")

	err := NewParser(gccRule(), nil).Parse(strings.NewReader(gccLog), "build.log", report)
	require.NoError(t, err)

	require.Equal(t, 2, report.Size())
	first := report.Get(0)
	assert.Equal(t, "src/main.c", first.FileName)
	assert.Equal(t, 12, first.LineStart)
	assert.Equal(t, "unused variable 'x'", first.Message)
	assert.Equal(t, "warning", first.Category)
	assert.Equal(t, "-Wunused-variable", first.Type)
	assert.Equal(t, issues.SeverityNormal, first.Severity)
	assert.Equal(t, "gcc", first.Origin)
	assert.Equal(t, issues.ContentFingerprint(first), first.Fingerprint)

	second := report.Get(1)
	assert.Equal(t, "src/util.c", second.FileName)
	assert.Equal(t, issues.SeverityError, second.Severity)

	assert.Empty(t, report.ErrorMessages)
	assert.Equal(t, []string{"-> found 2 issues in build.log with parser rule 'GNU C Compiler'"}, report.InfoMessages)
}

func TestParseWithDefaults(t *testing.T) {
	report := issues.NewReport("todo", "TODO")
	rule := Rule{ID: "todo", Regexp: `TODO`}

	err := NewParser(rule, nil).Parse(strings.NewReader("a\n// TODO fix\nb\n"), "main.go", report)
	require.NoError(t, err)

	require.Equal(t, 1, report.Size())
	assert.Equal(t, "main.go", report.Get(0).FileName)
	assert.Equal(t, 2, report.Get(0).LineStart)
	assert.Equal(t, "// TODO fix", report.Get(0).Message)
}

func TestParseLogsEvaluationErrors(t *testing.T) {
	rule := Rule{ID: "broken", Regexp: `^(\w+)$`, LineStart: `int(groups[1])`}
	var input strings.Builder
	for i := 0; i < 7; i++ {
		fmt.Fprintf(&input, "word%d\n", i)
	}
	input.WriteString("42\n")

	report := issues.NewReport("broken", "Broken")
	require.NoError(t, NewParser(rule, nil).Parse(strings.NewReader(input.String()), "in.txt", report))

	assert.Equal(t, 1, report.Size())
	assert.Equal(t, 42, report.Get(0).LineStart)
	require.Len(t, report.ErrorMessages, 7)
	assert.Equal(t, "Errors while evaluating parser rule 'broken':", report.ErrorMessages[0])
	assert.Contains(t, report.ErrorMessages[1], "in.txt:1")
	assert.Equal(t, "  ... skipped logging of 2 additional errors ...", report.ErrorMessages[6])
}

func TestParseWithInvalidExpression(t *testing.T) {
	rule := Rule{ID: "invalid", Regexp: `.*`, Message: `groups[0] +`}
	report := issues.NewReport("invalid", "Invalid")

	require.NoError(t, NewParser(rule, nil).Parse(strings.NewReader("x\n"), "in.txt", report))

	assert.True(t, report.IsEmpty())
	require.Len(t, report.ErrorMessages, 1)
	assert.Contains(t, report.ErrorMessages[0], "Parser rule 'invalid' is invalid")
}

func TestMatchAndBuild(t *testing.T) {
	p := NewParser(gccRule(), nil)

	issue, ok, err := p.MatchAndBuild(
		[]string{"", "/usr/include/x.h", "1", "1", "warning", "text", "-Wx"},
		LineContext{LineNumber: 3, FileName: "build.log"},
	)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, issues.Issue{}, issue)

	issue, ok, err = p.MatchAndBuild(
		[]string{"", "a.c", "7", "1", "error", "text", "-Wx"},
		LineContext{LineNumber: 3, FileName: "build.log"},
	)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 7, issue.LineStart)
	assert.Equal(t, issues.SeverityError, issue.Severity)

	_, _, err = p.MatchAndBuild([]string{""}, LineContext{})
	assert.Error(t, err)
}

func TestRuleValidate(t *testing.T) {
	assert.ErrorIs(t, Rule{Regexp: "x"}.Validate(), ErrInvalidRule)
	assert.ErrorIs(t, Rule{ID: "a"}.Validate(), ErrInvalidRule)
	assert.ErrorIs(t, Rule{ID: "a", Regexp: "("}.Validate(), ErrInvalidRule)
	assert.NoError(t, gccRule().Validate())
}

func TestRegistry(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Add(gccRule()))
	require.NoError(t, registry.Add(Rule{ID: "todo", Regexp: "TODO"}))
	assert.Error(t, registry.Add(Rule{ID: "bad"}))

	path := filepath.Join(t.TempDir(), "rules", "parsers.yml")
	require.NoError(t, registry.Save(path))

	loaded := NewRegistry()
	require.NoError(t, loaded.Load(path))
	assert.Equal(t, []string{"gcc", "todo"}, loaded.IDs())

	rule, ok := loaded.Get("gcc")
	require.True(t, ok)
	assert.Equal(t, gccRule(), rule)

	p, err := loaded.Parser("todo")
	require.NoError(t, err)
	assert.Equal(t, "todo", p.Rule().ID)

	_, err = loaded.Parser("missing")
	assert.ErrorIs(t, err, ErrUnknownRule)

	assert.True(t, loaded.Remove("todo"))
	assert.Equal(t, 1, loaded.Size())
	assert.Error(t, loaded.Load(filepath.Join(t.TempDir(), "missing.yml")))
}
