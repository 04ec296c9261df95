package issues

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeverityOrdering(t *testing.T) {
	assert.True(t, SeverityError.IsGreaterOrEqualThan(SeverityHigh))
	assert.True(t, SeverityHigh.IsGreaterOrEqualThan(SeverityNormal))
	assert.True(t, SeverityNormal.IsGreaterOrEqualThan(SeverityLow))
	assert.False(t, SeverityLow.IsGreaterOrEqualThan(SeverityNormal))
}

func TestParseSeverity(t *testing.T) {
	testCases := []struct {
		input string
		want  Severity
		fails bool
	}{
		{input: "HIGH", want: SeverityHigh},
		{input: "warning_low", want: SeverityLow},
		{input: " Error ", want: SeverityError},
		{input: "WARNING_NORMAL", want: SeverityNormal},
		{input: "critical", want: SeverityNormal, fails: true},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			got, err := ParseSeverity(tc.input)
			if tc.fails {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestSeverityJSON(t *testing.T) {
	data, err := json.Marshal(Issue{Severity: SeverityHigh})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"severity":"HIGH"`)

	var issue Issue
	require.NoError(t, json.Unmarshal(data, &issue))
	assert.Equal(t, SeverityHigh, issue.Severity)
}

func TestBuilderDefaults(t *testing.T) {
	issue := NewBuilder().WithLineStart(-1).WithLineEnd(-5).Build()

	assert.Equal(t, UndefinedValue, issue.FileName)
	assert.Equal(t, UndefinedValue, issue.ModuleName)
	assert.Equal(t, UndefinedValue, issue.PackageName)
	assert.Equal(t, 0, issue.LineStart)
	assert.Equal(t, 0, issue.LineEnd)
	assert.Equal(t, SeverityNormal, issue.Severity)
	assert.NotEmpty(t, issue.Fingerprint)
	assert.False(t, issue.HasFileName())
}

func TestBuilderKeepsExplicitFingerprint(t *testing.T) {
	issue := NewBuilder().WithFileName("a.c").WithLineStart(3).WithFingerprint("SV12").Build()

	assert.Equal(t, "SV12", issue.Fingerprint)
	assert.Equal(t, 3, issue.LineEnd)
	assert.True(t, issue.HasFileName())
}

func TestContentFingerprintIgnoresLines(t *testing.T) {
	builder := NewBuilder().WithOrigin("tool").WithCategory("c").WithType("t").WithFileName("src/a.c").WithMessage("m")
	first := builder.WithLineStart(10).Build()
	second := builder.WithLineStart(42).Build()
	other := builder.WithMessage("other").Build()

	assert.Equal(t, first.Fingerprint, second.Fingerprint)
	assert.NotEqual(t, first.Fingerprint, other.Fingerprint)
	assert.Equal(t, ContentFingerprint(first), ContentFingerprint(first))
}

func TestWithHelpersCopy(t *testing.T) {
	original := NewBuilder().WithFileName("a.c").Build()
	changed := original.WithFileName("b.c").WithReference("run-1")

	assert.Equal(t, "a.c", original.FileName)
	assert.Empty(t, original.Reference)
	assert.Equal(t, "b.c", changed.FileName)
	assert.Equal(t, "run-1", changed.Reference)
	assert.Equal(t, UndefinedValue, original.WithFileName("").FileName)
}

func TestAbsolutePath(t *testing.T) {
	testCases := []struct {
		name      string
		issue     Issue
		workspace string
		want      string
	}{
		{name: "absolute", issue: Issue{FileName: "/ws/src/a.c"}, workspace: "/other", want: "/ws/src/a.c"},
		{name: "directory", issue: Issue{FileName: "src/a.c", Directory: "/root"}, workspace: "/ws", want: "/root/src/a.c"},
		{name: "workspace", issue: Issue{FileName: "./src/a.c"}, workspace: "/ws/", want: "/ws/src/a.c"},
		{name: "windows", issue: Issue{FileName: `C:\build\a.c`}, workspace: "/ws", want: "C:/build/a.c"},
		{name: "no base", issue: Issue{FileName: "a.c"}, want: "a.c"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.issue.AbsolutePath(tc.workspace))
		})
	}
}

func TestRelativizePaths(t *testing.T) {
	report := NewReport("axivion", "Axivion Suite")
	report.Add(
		NewBuilder().WithFileName("X:/Build/workspace/tasks/src/main/java/Foo.java").Build(),
		NewBuilder().WithFileName(`X:\Build\workspace\tasks\src\main\java\Bar.java`).Build(),
		NewBuilder().WithFileName("X:/Build/workspace/other/Baz.java").Build(),
		NewBuilder().WithFileName("X:/Build/workspace/tasks/srcgen/Gen.java").Build(),
	)

	got := RelativizePaths(report, []string{"X:/Build/workspace/tasks/src"})

	require.Equal(t, 4, got.Size())
	assert.Equal(t, "main/java/Foo.java", got.Get(0).FileName)
	assert.Equal(t, "main/java/Bar.java", got.Get(1).FileName)
	assert.Equal(t, "X:/Build/workspace/other/Baz.java", got.Get(2).FileName)
	assert.Equal(t, "X:/Build/workspace/tasks/srcgen/Gen.java", got.Get(3).FileName)
	assert.Equal(t, "X:/Build/workspace/tasks/src/main/java/Foo.java", report.Get(0).FileName)
}

func TestRelativizePathsLongestDirectoryWins(t *testing.T) {
	report := NewReport("", "")
	report.Add(NewBuilder().WithFileName("/ws/src/main/java/Foo.java").Build())

	got := RelativizePaths(report, []string{"/ws", "/ws/src/main/java"})

	assert.Equal(t, "Foo.java", got.Get(0).FileName)
}

func TestReportAddAll(t *testing.T) {
	first := NewReport("id", "name")
	first.Add(Issue{Origin: "a", Message: "1"})
	first.LogInfo("info %d", 1)
	second := NewReport("id", "name")
	second.Add(Issue{Origin: "a", Message: "2"}, Issue{Origin: "b", Message: "3"})
	second.LogError("error %s", "x")

	merged := first.Copy()
	merged.AddAll(second, nil)

	assert.Equal(t, 3, merged.Size())
	assert.Equal(t, 2, merged.SizeOf("a"))
	assert.Equal(t, 1, merged.SizeOf("b"))
	assert.Equal(t, []string{"info 1"}, merged.InfoMessages)
	assert.Equal(t, []string{"error x"}, merged.ErrorMessages)
	assert.True(t, merged.HasErrors())
	assert.Equal(t, 1, first.Size())
}

func TestReportFilter(t *testing.T) {
	report := NewReport("", "")
	report.Add(Issue{Severity: SeverityHigh}, Issue{Severity: SeverityLow}, Issue{Severity: SeverityHigh})

	high := report.Filter(func(i Issue) bool { return i.Severity == SeverityHigh })

	assert.Equal(t, 2, high.Size())
	assert.Equal(t, 2, report.SizeOfSeverity(SeverityHigh))
	assert.Equal(t, 3, report.Size())
}

func TestFilteredLog(t *testing.T) {
	report := NewReport("", "")
	log := NewFilteredLog(report, "Errors:")
	for i := 1; i <= 8; i++ {
		log.LogError("error %d", i)
	}
	log.LogSummary()

	assert.Equal(t, 8, log.Size())
	assert.Equal(t, []string{
		"Errors:",
		"error 1", "error 2", "error 3", "error 4", "error 5",
		"  ... skipped logging of 3 additional errors ...",
	}, report.ErrorMessages)
}

func TestFilteredLogEmpty(t *testing.T) {
	report := NewReport("", "")
	NewFilteredLog(report, "Errors:").LogSummary()

	assert.Empty(t, report.ErrorMessages)
}
