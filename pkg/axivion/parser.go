package axivion

import (
	"strings"

	"github.com/scan-io-git/scanio-analysis/pkg/issues"
)

// ParserConfig holds the settings shared by all rows of a dashboard project.
type ParserConfig struct {
	DashboardURL                string
	ProjectDir                  string
	IgnoreSuppressedOrJustified bool
}

// Parser converts dashboard payloads into report issues.
type Parser struct {
	cfg ParserConfig
}

// NewParser creates a parser for one dashboard project.
func NewParser(cfg ParserConfig) *Parser {
	cfg.DashboardURL = strings.TrimSuffix(cfg.DashboardURL, "/")
	return &Parser{cfg: cfg}
}

// Parse adds the issues of a single kind payload to report. Problems with the
// payload are logged to the report, they never abort the import.
func (p *Parser) Parse(report *issues.Report, kind Kind, payload map[string]interface{}) {
	if isErrorEnvelope(payload) {
		report.LogError("Dashboard '%v' returned an error for %s issues: %v: %v",
			payload["dashboardVersionNumber"], kind, payload["type"], payload["message"])
		return
	}

	rows, ok := payload["rows"].([]interface{})
	if !ok {
		report.LogError("Dashboard response for %s issues contains no 'rows' array", kind)
		return
	}

	parseErrors := issues.NewFilteredLog(report, "Errors while parsing "+kind.String()+" issues:")
	for i, element := range rows {
		row, ok := element.(map[string]interface{})
		if !ok {
			parseErrors.LogError("Skipping row %d: not a JSON object", i)
			continue
		}
		if p.cfg.IgnoreSuppressedOrJustified && isSuppressedOrJustified(row) {
			continue
		}

		issue, err := Transform(RawIssue{
			Kind:         kind,
			Payload:      row,
			DashboardURL: p.cfg.DashboardURL,
			ProjectDir:   p.cfg.ProjectDir,
		})
		if err != nil {
			parseErrors.LogError("Skipping row %d: %v", i, err)
			continue
		}
		report.Add(issue)
	}
	parseErrors.LogSummary()
}

// isErrorEnvelope detects the error object the dashboard sends instead of rows.
func isErrorEnvelope(payload map[string]interface{}) bool {
	for _, key := range []string{"dashboardVersionNumber", "type", "message"} {
		if _, ok := payload[key]; !ok {
			return false
		}
	}
	return true
}

func isSuppressedOrJustified(row map[string]interface{}) bool {
	if suppressed, ok := row["suppressed"].(bool); ok && suppressed {
		return true
	}
	justification, _ := row["justification"].(string)
	return strings.TrimSpace(justification) != ""
}
