package issues

import "fmt"

// DefaultMaxLines is the number of messages a FilteredLog writes before it
// starts counting silently.
const DefaultMaxLines = 5

// ErrorLogger receives the messages of a FilteredLog.
type ErrorLogger interface {
	LogError(format string, args ...interface{})
}

// FilteredLog collects error messages and writes at most a fixed number of
// them to a report, followed by a summary of how many were suppressed.
type FilteredLog struct {
	sink     ErrorLogger
	title    string
	maxLines int
	lines    []string
	count    int
}

// NewFilteredLog creates a log that writes to sink under the given title.
func NewFilteredLog(sink ErrorLogger, title string) *FilteredLog {
	return &FilteredLog{sink: sink, title: title, maxLines: DefaultMaxLines}
}

// LogError records a message. Only the first DefaultMaxLines messages are kept.
func (l *FilteredLog) LogError(format string, args ...interface{}) {
	l.count++
	if len(l.lines) < l.maxLines {
		l.lines = append(l.lines, fmt.Sprintf(format, args...))
	}
}

// Size returns the number of recorded messages, including suppressed ones.
func (l *FilteredLog) Size() int {
	return l.count
}

// LogSummary writes the title, the kept messages and a summary line for the
// suppressed ones to the sink. Nothing is written when no message was recorded.
func (l *FilteredLog) LogSummary() {
	if l.count == 0 {
		return
	}
	l.sink.LogError("%s", l.title)
	for _, line := range l.lines {
		l.sink.LogError("%s", line)
	}
	if skipped := l.count - len(l.lines); skipped > 0 {
		l.sink.LogError("  ... skipped logging of %d additional errors ...", skipped)
	}
}
