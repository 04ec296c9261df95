package aggregate

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgaggregate "github.com/scan-io-git/scanio-analysis/pkg/aggregate"
	"github.com/scan-io-git/scanio-analysis/pkg/history"
	"github.com/scan-io-git/scanio-analysis/pkg/issues"
	"github.com/scan-io-git/scanio-analysis/pkg/shared/files"
)

func reportWith(messages ...string) *issues.Report {
	report := issues.NewReport("axivion-suite", "Axivion Suite")
	for _, message := range messages {
		report.Add(issues.NewBuilder().WithFileName("src/main.c").WithLineStart(1).WithMessage(message).Build())
	}
	return report
}

func writeFile(t *testing.T, dir, name string, v interface{}) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, files.WriteJSON(path, v))
	return path
}

func TestRunMergesAxesInNameOrder(t *testing.T) {
	dir := t.TempDir()
	result := &history.AnalysisResult{ToolID: "axivion-suite", Report: reportWith("w1", "w2")}
	result.Report.ID = ""

	axes := []Axis{
		{Name: "windows", Path: writeFile(t, dir, "windows.json", result)},
		{Name: "linux", Path: writeFile(t, dir, "linux.json", reportWith("l1"))},
	}

	merged, err := Run(context.Background(), axes, hclog.NewNullLogger())
	require.NoError(t, err)
	require.Len(t, merged, 1)

	report := merged["axivion-suite"]
	require.NotNil(t, report)
	require.Equal(t, 3, report.Size())
	assert.Equal(t, "l1", report.Get(0).Message)
	assert.Equal(t, "w1", report.Get(1).Message)
	assert.Equal(t, "w2", report.Get(2).Message)
}

func TestRunFailsForMissingAxisFile(t *testing.T) {
	axes := []Axis{{Name: "linux", Path: filepath.Join(t.TempDir(), "missing.json")}}

	_, err := Run(context.Background(), axes, hclog.NewNullLogger())
	assert.Error(t, err)
}

func TestRunRejectsDuplicateAxes(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "linux.json", reportWith("l1"))

	_, err := Run(context.Background(), []Axis{{Name: "linux", Path: path}, {Name: "linux", Path: path}}, hclog.NewNullLogger())
	assert.True(t, errors.Is(err, pkgaggregate.ErrDuplicateAxis))
}

func TestParseAxes(t *testing.T) {
	axes, err := parseAxes([]string{"linux=out/linux.json", " windows = out/win.json "})
	require.NoError(t, err)
	assert.Equal(t, []Axis{{Name: "linux", Path: "out/linux.json"}, {Name: "windows", Path: "out/win.json"}}, axes)

	for _, invalid := range [][]string{nil, {"linux"}, {"=path"}, {"linux="}} {
		_, err := parseAxes(invalid)
		assert.Error(t, err, "%v", invalid)
	}
}
