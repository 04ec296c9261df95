package expression

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"sync"

	"github.com/google/cel-go/cel"
	"github.com/hashicorp/go-hclog"

	"github.com/scan-io-git/scanio-analysis/pkg/issues"
)

const (
	fieldFileName  = "file_name"
	fieldLineStart = "line_start"
	fieldMessage   = "message"
	fieldCategory  = "category"
	fieldType      = "type"
	fieldSeverity  = "severity"
	fieldCondition = "condition"

	maxLineSize = 1024 * 1024
)

// LineContext is the position of a match inside a report.
type LineContext struct {
	Line       string
	LineNumber int
	FileName   string
}

type compiledRule struct {
	pattern  *regexp.Regexp
	programs map[string]cel.Program
}

// Parser applies a single rule. The rule is compiled on first use.
type Parser struct {
	rule   Rule
	logger hclog.Logger

	once     sync.Once
	compiled *compiledRule
	err      error
}

func NewParser(rule Rule, logger hclog.Logger) *Parser {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Parser{rule: rule, logger: logger}
}

// Rule returns the rule of the parser.
func (p *Parser) Rule() Rule {
	return p.rule
}

func (p *Parser) compile() (*compiledRule, error) {
	p.once.Do(func() {
		p.compiled, p.err = compileRule(p.rule)
		if p.err != nil {
			p.logger.Error("failed to compile parser rule", "rule", p.rule.ID, "error", p.err)
		}
	})
	return p.compiled, p.err
}

func compileRule(rule Rule) (*compiledRule, error) {
	if err := rule.Validate(); err != nil {
		return nil, err
	}
	env, err := cel.NewEnv(
		cel.Variable("groups", cel.ListType(cel.StringType)),
		cel.Variable("line", cel.StringType),
		cel.Variable("lineNumber", cel.IntType),
		cel.Variable("fileName", cel.StringType),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create expression environment: %w", err)
	}

	compiled := &compiledRule{
		pattern:  regexp.MustCompile(rule.Regexp),
		programs: map[string]cel.Program{},
	}
	for field, expr := range rule.expressions() {
		if expr == "" {
			continue
		}
		ast, iss := env.Compile(expr)
		if iss != nil && iss.Err() != nil {
			return nil, fmt.Errorf("%w: %s of rule %q: %v", ErrNotCompiled, field, rule.ID, iss.Err())
		}
		prg, err := env.Program(ast)
		if err != nil {
			return nil, fmt.Errorf("%w: %s of rule %q: %v", ErrNotCompiled, field, rule.ID, err)
		}
		compiled.programs[field] = prg
	}
	return compiled, nil
}

// MatchAndBuild creates the issue for a line matched by the rule. The bool
// result is false when the condition of the rule rejects the line.
func (p *Parser) MatchAndBuild(groups []string, ctx LineContext) (issues.Issue, bool, error) {
	compiled, err := p.compile()
	if err != nil {
		return issues.Issue{}, false, err
	}

	vars := map[string]interface{}{
		"groups":     groups,
		"line":       ctx.Line,
		"lineNumber": int64(ctx.LineNumber),
		"fileName":   ctx.FileName,
	}

	accepted, err := evalBool(compiled.programs[fieldCondition], vars)
	if err != nil || !accepted {
		return issues.Issue{}, false, err
	}

	values := map[string]string{}
	for _, field := range []string{fieldFileName, fieldMessage, fieldCategory, fieldType, fieldSeverity} {
		prg, ok := compiled.programs[field]
		if !ok {
			continue
		}
		v, err := evalString(prg, vars)
		if err != nil {
			return issues.Issue{}, false, fmt.Errorf("%s: %w", field, err)
		}
		values[field] = v
	}
	lineStart, err := evalInt(compiled.programs[fieldLineStart], vars)
	if err != nil {
		return issues.Issue{}, false, fmt.Errorf("%s: %w", fieldLineStart, err)
	}

	issue := issues.NewBuilder().
		WithOrigin(p.rule.ID).
		WithFileName(values[fieldFileName]).
		WithLineStart(lineStart).
		WithMessage(values[fieldMessage]).
		WithCategory(values[fieldCategory]).
		WithType(values[fieldType]).
		WithSeverity(issues.SeverityOrDefault(values[fieldSeverity], issues.SeverityNormal)).
		Build()
	return issue, true, nil
}

// Parse matches every line read from r and adds the resulting issues to
// report. Rules that do not compile and expressions that fail are logged to
// the report; only read errors are returned.
func (p *Parser) Parse(r io.Reader, fileName string, report *issues.Report) error {
	compiled, err := p.compile()
	if err != nil {
		report.LogError("Parser rule '%s' is invalid, skipping %s: %v", p.rule.DisplayName(), fileName, err)
		return nil
	}

	evalErrors := issues.NewFilteredLog(report, fmt.Sprintf("Errors while evaluating parser rule '%s':", p.rule.DisplayName()))
	defer evalErrors.LogSummary()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	found := 0
	for lineNumber := 1; scanner.Scan(); lineNumber++ {
		line := scanner.Text()
		groups := compiled.pattern.FindStringSubmatch(line)
		if groups == nil {
			continue
		}
		issue, ok, err := p.MatchAndBuild(groups, LineContext{Line: line, LineNumber: lineNumber, FileName: fileName})
		if err != nil {
			evalErrors.LogError("- %s:%d: %v", fileName, lineNumber, err)
			continue
		}
		if ok {
			report.Add(issue)
			found++
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read %s: %w", fileName, err)
	}
	report.LogInfo("-> found %d issues in %s with parser rule '%s'", found, fileName, p.rule.DisplayName())
	return nil
}

func evalBool(prg cel.Program, vars map[string]interface{}) (bool, error) {
	if prg == nil {
		return true, nil
	}
	out, _, err := prg.Eval(vars)
	if err != nil {
		return false, err
	}
	v, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("%w: %T instead of bool", ErrUnexpectedResult, out.Value())
	}
	return v, nil
}

func evalString(prg cel.Program, vars map[string]interface{}) (string, error) {
	out, _, err := prg.Eval(vars)
	if err != nil {
		return "", err
	}
	switch v := out.Value().(type) {
	case string:
		return v, nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case uint64:
		return strconv.FormatUint(v, 10), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(v), nil
	}
	return "", fmt.Errorf("%w: %T instead of string", ErrUnexpectedResult, out.Value())
}

func evalInt(prg cel.Program, vars map[string]interface{}) (int, error) {
	if prg == nil {
		return 0, nil
	}
	out, _, err := prg.Eval(vars)
	if err != nil {
		return 0, err
	}
	switch v := out.Value().(type) {
	case int64:
		return int(v), nil
	case uint64:
		return int(v), nil
	case float64:
		return int(v), nil
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("%w: %q is not a number", ErrUnexpectedResult, v)
		}
		return n, nil
	}
	return 0, fmt.Errorf("%w: %T instead of int", ErrUnexpectedResult, out.Value())
}
