package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scan-io-git/scanio-analysis/pkg/history"
	"github.com/scan-io-git/scanio-analysis/pkg/issues"
)

const toolID = "axivion-suite"

func saveRun(t *testing.T, s *Store, job string, result history.BuildResult, status history.QualityGateStatus) *RunRecord {
	t.Helper()
	record, err := s.Start(job, 0, "abc")
	require.NoError(t, err)
	record.Result = result

	report := issues.NewReport(toolID, "Axivion Suite")
	report.Add(issues.NewBuilder().WithFileName("src/main.c").WithLineStart(record.Number).WithMessage("m").Build())
	record.AddResult(&history.AnalysisResult{ID: "r", ToolID: toolID, Report: report, QualityGateStatus: status})

	require.NoError(t, s.Save(record))
	return record
}

func TestStartNumbersRuns(t *testing.T) {
	s := NewStore(t.TempDir(), nil)

	first, err := s.Start("firmware", 0, "")
	require.NoError(t, err)
	assert.Equal(t, 1, first.Number)
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, history.ResultUnknown, first.Result)
	require.NoError(t, s.Save(first))

	second, err := s.Start("firmware", 0, "")
	require.NoError(t, err)
	assert.Equal(t, 2, second.Number)
	assert.NotEqual(t, first.ID, second.ID)

	_, err = s.Start("firmware", 1, "")
	assert.ErrorIs(t, err, ErrRunAlreadySeen)

	_, err = s.Start(" ", 0, "")
	assert.ErrorIs(t, err, ErrJobNotSet)

	_, err = s.Start("firmware", -1, "")
	assert.ErrorIs(t, err, ErrInvalidNumber)
}

func TestSaveAndLoad(t *testing.T) {
	s := NewStore(t.TempDir(), nil)
	saved := saveRun(t, s, "folder/firmware", history.ResultSuccess, history.QualityGatePassed)

	loaded, err := s.Load("folder/firmware", saved.Number)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, loaded.ID)
	assert.Equal(t, "folder/firmware#1", loaded.RunID())
	assert.Equal(t, history.ResultSuccess, loaded.Result)
	require.Len(t, loaded.Results, 1)
	assert.Equal(t, "folder/firmware#1", loaded.Results[0].RunID)
	assert.Equal(t, 1, loaded.Results[0].Issues().Size())

	_, err = s.Load("folder/firmware", 7)
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestAddResultReplacesTool(t *testing.T) {
	record := &RunRecord{Job: "job", Number: 3}
	record.AddResult(&history.AnalysisResult{ID: "a", ToolID: toolID})
	record.AddResult(&history.AnalysisResult{ID: "b", ToolID: "other"})
	record.AddResult(&history.AnalysisResult{ID: "c", ToolID: toolID})

	require.Len(t, record.Results, 2)
	assert.Equal(t, "c", record.Results[0].ID)
	assert.Equal(t, "job#3", record.Results[0].RunID)
}

func TestRunsSkipsUnreadableRecords(t *testing.T) {
	folder := t.TempDir()
	s := NewStore(folder, nil)
	saveRun(t, s, "firmware", history.ResultSuccess, history.QualityGatePassed)
	saveRun(t, s, "firmware", history.ResultSuccess, history.QualityGatePassed)

	jobFolder := filepath.Join(folder, "firmware")
	require.NoError(t, os.WriteFile(filepath.Join(jobFolder, "3.json"), []byte("{"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(jobFolder, "notes.txt"), []byte("x"), 0o644))

	runs, err := s.Runs("firmware")
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, 1, runs[0].Number)
	assert.Equal(t, 2, runs[1].Number)

	empty, err := s.Runs("unknown")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestHistoryFindsReference(t *testing.T) {
	s := NewStore(t.TempDir(), nil)
	saveRun(t, s, "firmware", history.ResultSuccess, history.QualityGatePassed)
	saveRun(t, s, "firmware", history.ResultFailure, history.QualityGatePassed)
	saveRun(t, s, "firmware", history.ResultSuccess, history.QualityGateFailed)

	h, err := s.History("firmware")
	require.NoError(t, err)
	require.Equal(t, 3, h.Len())

	current, err := s.Start("firmware", 0, "")
	require.NoError(t, err)
	baseline := h.Append(current)
	assert.Equal(t, "firmware#4", baseline.ID())

	ref := history.FindReference(baseline, history.ByID(toolID), history.Options{
		QualityGate: history.SuccessfulQualityGate,
		JobResult:   history.JobMustBeSuccessful,
	})
	require.True(t, ref.Found())
	assert.Equal(t, "firmware#1", ref.RunID())

	ref = history.FindReference(baseline, history.ByID(toolID), history.Options{})
	require.True(t, ref.Found())
	assert.Equal(t, "firmware#3", ref.RunID())
}

func TestJobHistory(t *testing.T) {
	h := &JobHistory{}
	assert.Nil(t, h.Last())

	first := h.Append(&RunRecord{Job: "job", Number: 1})
	second := h.Append(&RunRecord{Job: "job", Number: 2})

	assert.Nil(t, first.Previous())
	assert.Equal(t, first, second.Previous())
	assert.Equal(t, second, h.Last())

	run, ok := h.Get(1)
	assert.True(t, ok)
	assert.Equal(t, first, run)
	_, ok = h.Get(5)
	assert.False(t, ok)
	assert.Empty(t, second.Actions())
}

func TestSanitizeJobName(t *testing.T) {
	assert.Equal(t, "folder_job-1.x", sanitizeJobName(" folder/job-1.x "))
}
