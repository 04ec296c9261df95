// Package axivion imports the issues of an Axivion dashboard project.
package axivion

import (
	"fmt"
	"strings"
)

const (
	// ToolID identifies reports created from an Axivion dashboard.
	ToolID = "axivion-suite"
	// ToolName is the human readable tool name.
	ToolName = "Axivion Suite"
)

// Kind is one of the violation kinds served by the dashboard.
type Kind string

const (
	KindAV Kind = "AV" // architecture violations
	KindCL Kind = "CL" // clones
	KindCY Kind = "CY" // cycles
	KindDE Kind = "DE" // dead entities
	KindMV Kind = "MV" // metric violations
	KindSV Kind = "SV" // style violations
)

// Kinds returns all kinds in the order they are imported.
func Kinds() []Kind {
	return []Kind{KindAV, KindCL, KindCY, KindDE, KindMV, KindSV}
}

// ParseKind converts a kind name, case-insensitive, into a Kind.
func ParseKind(raw string) (Kind, error) {
	kind := Kind(strings.ToUpper(strings.TrimSpace(raw)))
	if _, ok := transformations[kind]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, raw)
	}
	return kind, nil
}

func (k Kind) String() string {
	return string(k)
}
