package issues

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Severity is an ordered issue severity. Higher values are more severe.
type Severity int

const (
	SeverityLow Severity = iota + 1
	SeverityNormal
	SeverityHigh
	SeverityError
)

var severityNames = map[Severity]string{
	SeverityLow:    "LOW",
	SeverityNormal: "NORMAL",
	SeverityHigh:   "HIGH",
	SeverityError:  "ERROR",
}

// String returns the canonical name of the severity.
func (s Severity) String() string {
	if name, ok := severityNames[s]; ok {
		return name
	}
	return "NORMAL"
}

// IsGreaterOrEqualThan reports whether s is at least as severe as other.
func (s Severity) IsGreaterOrEqualThan(other Severity) bool {
	return s >= other
}

// ParseSeverity converts a name into a Severity. The WARNING_ prefix used by
// some tools is accepted.
func ParseSeverity(raw string) (Severity, error) {
	name := strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(raw)), "WARNING_")
	for severity, n := range severityNames {
		if n == name {
			return severity, nil
		}
	}
	return SeverityNormal, fmt.Errorf("unknown severity %q", raw)
}

// SeverityOrDefault parses raw and falls back to def when it is unknown.
func SeverityOrDefault(raw string, def Severity) Severity {
	if severity, err := ParseSeverity(raw); err == nil {
		return severity
	}
	return def
}

func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Severity) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseSeverity(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
