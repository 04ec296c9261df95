package issues

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// UndefinedValue marks a field that a source could not provide.
const UndefinedValue = "-"

// Issue is a single normalized finding. Issues are values: use the With*
// helpers to derive a changed copy.
type Issue struct {
	Category    string   `json:"category"`
	Type        string   `json:"type"`
	FileName    string   `json:"file_name"`
	Directory   string   `json:"directory,omitempty"`
	LineStart   int      `json:"line_start"`
	LineEnd     int      `json:"line_end"`
	ColumnStart int      `json:"column_start,omitempty"`
	ColumnEnd   int      `json:"column_end,omitempty"`
	Severity    Severity `json:"severity"`
	Message     string   `json:"message"`
	Description string   `json:"description,omitempty"`
	Origin      string   `json:"origin,omitempty"`
	ModuleName  string   `json:"module_name"`
	PackageName string   `json:"package_name"`
	Fingerprint string   `json:"fingerprint"`
	Reference   string   `json:"reference,omitempty"`
}

// WithFileName returns a copy of the issue pointing to another file.
func (i Issue) WithFileName(fileName string) Issue {
	if fileName == "" {
		fileName = UndefinedValue
	}
	i.FileName = fileName
	return i
}

// WithReference returns a copy of the issue tagged with the run that introduced it.
func (i Issue) WithReference(reference string) Issue {
	i.Reference = reference
	return i
}

// WithFingerprint returns a copy of the issue with another fingerprint.
func (i Issue) WithFingerprint(fingerprint string) Issue {
	i.Fingerprint = fingerprint
	return i
}

// HasFileName reports whether the issue is attached to a concrete file.
func (i Issue) HasFileName() bool {
	return i.FileName != "" && i.FileName != UndefinedValue
}

// AbsolutePath resolves the file name against the issue directory, or against
// workspace when the issue carries no directory. Separators are normalized to '/'.
func (i Issue) AbsolutePath(workspace string) string {
	fileName := NormalizePath(i.FileName)
	if IsAbsolutePath(fileName) {
		return fileName
	}
	base := i.Directory
	if base == "" {
		base = workspace
	}
	if base == "" {
		return fileName
	}
	return strings.TrimSuffix(NormalizePath(base), "/") + "/" + strings.TrimPrefix(fileName, "./")
}

// ContentFingerprint derives a fingerprint from the issue content for sources
// that carry no persistent identifier. Line numbers are not part of it, so an
// issue keeps its identity when surrounding code moves.
func ContentFingerprint(i Issue) string {
	h := sha256.New()
	for _, part := range []string{i.Origin, i.Category, i.Type, NormalizePath(i.FileName), i.Message} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Builder assembles issues and applies the defaults of the model.
type Builder struct {
	issue Issue
}

// NewBuilder creates an empty issue builder.
func NewBuilder() *Builder {
	return &Builder{issue: Issue{Severity: SeverityNormal}}
}

func (b *Builder) WithCategory(category string) *Builder {
	b.issue.Category = category
	return b
}

func (b *Builder) WithType(issueType string) *Builder {
	b.issue.Type = issueType
	return b
}

func (b *Builder) WithFileName(fileName string) *Builder {
	b.issue.FileName = fileName
	return b
}

func (b *Builder) WithDirectory(directory string) *Builder {
	b.issue.Directory = directory
	return b
}

func (b *Builder) WithLineStart(line int) *Builder {
	b.issue.LineStart = line
	return b
}

func (b *Builder) WithLineEnd(line int) *Builder {
	b.issue.LineEnd = line
	return b
}

func (b *Builder) WithColumnStart(column int) *Builder {
	b.issue.ColumnStart = column
	return b
}

func (b *Builder) WithColumnEnd(column int) *Builder {
	b.issue.ColumnEnd = column
	return b
}

func (b *Builder) WithSeverity(severity Severity) *Builder {
	b.issue.Severity = severity
	return b
}

func (b *Builder) WithMessage(message string) *Builder {
	b.issue.Message = message
	return b
}

func (b *Builder) WithDescription(description string) *Builder {
	b.issue.Description = description
	return b
}

func (b *Builder) WithOrigin(origin string) *Builder {
	b.issue.Origin = origin
	return b
}

func (b *Builder) WithModuleName(moduleName string) *Builder {
	b.issue.ModuleName = moduleName
	return b
}

func (b *Builder) WithPackageName(packageName string) *Builder {
	b.issue.PackageName = packageName
	return b
}

func (b *Builder) WithFingerprint(fingerprint string) *Builder {
	b.issue.Fingerprint = fingerprint
	return b
}

// Build returns the issue. The builder can be reused afterwards.
func (b *Builder) Build() Issue {
	issue := b.issue
	if issue.FileName == "" {
		issue.FileName = UndefinedValue
	}
	if issue.ModuleName == "" {
		issue.ModuleName = UndefinedValue
	}
	if issue.PackageName == "" {
		issue.PackageName = UndefinedValue
	}
	if issue.Severity == 0 {
		issue.Severity = SeverityNormal
	}
	if issue.LineStart < 0 {
		issue.LineStart = 0
	}
	if issue.LineEnd < issue.LineStart {
		issue.LineEnd = issue.LineStart
	}
	if issue.ColumnStart < 0 {
		issue.ColumnStart = 0
	}
	if issue.ColumnEnd < issue.ColumnStart {
		issue.ColumnEnd = issue.ColumnStart
	}
	if issue.Fingerprint == "" {
		issue.Fingerprint = ContentFingerprint(issue)
	}
	return issue
}
