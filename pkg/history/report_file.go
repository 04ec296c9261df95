package history

import (
	"encoding/json"
	"fmt"

	"github.com/scan-io-git/scanio-analysis/pkg/issues"
	"github.com/scan-io-git/scanio-analysis/pkg/shared/files"
)

// ReadReport reads a report file. Both plain reports and analysis results, as
// written by the scan command, are accepted. The report of a result without
// its own id takes the tool id of the result.
func ReadReport(path string) (*issues.Report, error) {
	var data json.RawMessage
	if err := files.ReadJSON(path, &data); err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("failed to parse %q: %w", path, err)
	}

	raw, wrapped := fields["report"]
	if !wrapped {
		report := &issues.Report{}
		if err := json.Unmarshal(data, report); err != nil {
			return nil, fmt.Errorf("failed to parse %q: %w", path, err)
		}
		return report, nil
	}

	report := &issues.Report{}
	if err := json.Unmarshal(raw, report); err != nil {
		return nil, fmt.Errorf("failed to parse report of %q: %w", path, err)
	}
	if report.ID == "" {
		var toolID string
		if err := json.Unmarshal(fields["tool_id"], &toolID); err == nil {
			report.ID = toolID
		}
	}
	return report, nil
}
