// Package expression creates issues from arbitrary text reports using rules
// that combine a regular expression with CEL expressions.
package expression

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	ErrInvalidRule      = errors.New("invalid parser rule")
	ErrUnknownRule      = errors.New("unknown parser rule")
	ErrNotCompiled      = errors.New("parser rule could not be compiled")
	ErrUnexpectedResult = errors.New("unexpected expression result")
)

// Rule describes how a matching line of a report is turned into an issue.
//
// Regexp is matched against every line. All other fields except ID and Name
// are CEL expressions evaluated with the variables
//
//	groups     list(string)  sub matches of Regexp, groups[0] is the whole match
//	line       string        the matching line
//	lineNumber int           1 based number of the line in the report
//	fileName   string        name of the report file
//
// Empty expressions fall back to fileName, lineNumber and line for FileName,
// LineStart and Message. Condition must evaluate to a bool; lines for which it
// is false are skipped.
type Rule struct {
	ID        string `yaml:"id"`
	Name      string `yaml:"name"`
	Regexp    string `yaml:"regexp"`
	FileName  string `yaml:"file_name,omitempty"`
	LineStart string `yaml:"line_start,omitempty"`
	Message   string `yaml:"message,omitempty"`
	Category  string `yaml:"category,omitempty"`
	Type      string `yaml:"type,omitempty"`
	Severity  string `yaml:"severity,omitempty"`
	Condition string `yaml:"condition,omitempty"`
}

// Validate checks the static parts of the rule. Expressions are checked when
// the rule is compiled.
func (r Rule) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidRule)
	}
	if strings.TrimSpace(r.Regexp) == "" {
		return fmt.Errorf("%w: rule %q has no regexp", ErrInvalidRule, r.ID)
	}
	if _, err := regexp.Compile(r.Regexp); err != nil {
		return fmt.Errorf("%w: rule %q: %v", ErrInvalidRule, r.ID, err)
	}
	return nil
}

// DisplayName returns the name of the rule, or its id.
func (r Rule) DisplayName() string {
	if r.Name != "" {
		return r.Name
	}
	return r.ID
}

func (r Rule) expressions() map[string]string {
	return map[string]string{
		fieldFileName:  orDefault(r.FileName, "fileName"),
		fieldLineStart: orDefault(r.LineStart, "lineNumber"),
		fieldMessage:   orDefault(r.Message, "line"),
		fieldCategory:  r.Category,
		fieldType:      r.Type,
		fieldSeverity:  r.Severity,
		fieldCondition: orDefault(r.Condition, "true"),
	}
}

func orDefault(expr, def string) string {
	if strings.TrimSpace(expr) == "" {
		return def
	}
	return expr
}
