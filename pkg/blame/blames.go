package blame

import (
	"fmt"
	"sort"

	"github.com/scan-io-git/scanio-analysis/pkg/issues"
)

const maxSkippedFileMessages = 5

// Blames is the set of blame requests of a report, one per workspace file,
// along with the messages logged while creating and answering them.
type Blames struct {
	Workspace     string                   `json:"workspace"`
	Requests      map[string]*BlameRequest `json:"requests"`
	InfoMessages  []string                 `json:"info_messages"`
	ErrorMessages []string                 `json:"error_messages"`
	SkippedFiles  int                      `json:"skipped_files,omitempty"`
}

// NewBlames creates an empty index for files below workspace. The workspace
// is expected in canonical form (see issues.CanonicalPath).
func NewBlames(workspace string) *Blames {
	return &Blames{
		Workspace: workspace,
		Requests:  map[string]*BlameRequest{},
	}
}

// AddLine registers a line of an absolute file name. Files outside of the
// workspace are skipped; the first few of them are logged, followed by one
// summary line.
func (b *Blames) AddLine(absoluteFileName string, line int) bool {
	relative, ok := issues.RelativePath(absoluteFileName, b.Workspace)
	if !ok {
		b.SkippedFiles++
		if b.SkippedFiles <= maxSkippedFileMessages {
			b.LogError("Skipping non-workspace file %s (workspace = %s).", absoluteFileName, b.Workspace)
		} else if b.SkippedFiles == maxSkippedFileMessages+1 {
			b.LogError("  ... skipped logging of additional non-workspace file errors ...")
		}
		return false
	}
	if request, ok := b.Requests[relative]; ok {
		request.AddLine(line)
	} else {
		b.Requests[relative] = NewBlameRequest(relative, line)
	}
	return true
}

// Add merges a request into the index.
func (b *Blames) Add(request *BlameRequest) {
	if request == nil {
		return
	}
	if b.Requests == nil {
		b.Requests = map[string]*BlameRequest{}
	}
	if existing, ok := b.Requests[request.FileName]; ok {
		// file names are equal, merge cannot fail
		_ = existing.Merge(request)
		return
	}
	b.Requests[request.FileName] = request.Copy()
}

// Merge adds all requests and messages of other. Requests of the same file
// are merged line by line, keeping results that are already known.
func (b *Blames) Merge(other *Blames) {
	if other == nil {
		return
	}
	for _, fileName := range other.Files() {
		b.Add(other.Requests[fileName])
	}
	b.InfoMessages = append(b.InfoMessages, other.InfoMessages...)
	b.ErrorMessages = append(b.ErrorMessages, other.ErrorMessages...)
	b.SkippedFiles += other.SkippedFiles
}

// Contains reports whether a request exists for the relative file name.
func (b *Blames) Contains(fileName string) bool {
	_, ok := b.Requests[fileName]
	return ok
}

// Get returns the request for the relative file name.
func (b *Blames) Get(fileName string) (*BlameRequest, bool) {
	request, ok := b.Requests[fileName]
	return request, ok
}

// Files returns the relative file names in sorted order.
func (b *Blames) Files() []string {
	files := make([]string, 0, len(b.Requests))
	for fileName := range b.Requests {
		files = append(files, fileName)
	}
	sort.Strings(files)
	return files
}

// Sorted returns the requests ordered by file name.
func (b *Blames) Sorted() []*BlameRequest {
	out := make([]*BlameRequest, 0, len(b.Requests))
	for _, fileName := range b.Files() {
		out = append(out, b.Requests[fileName])
	}
	return out
}

// Attempted returns the files a blamer tried to process.
func (b *Blames) Attempted() []string {
	var out []string
	for _, request := range b.Sorted() {
		if request.Attempted {
			out = append(out, request.FileName)
		}
	}
	return out
}

func (b *Blames) Size() int {
	return len(b.Requests)
}

func (b *Blames) IsEmpty() bool {
	return len(b.Requests) == 0
}

func (b *Blames) LogInfo(format string, args ...interface{}) {
	b.InfoMessages = append(b.InfoMessages, fmt.Sprintf(format, args...))
}

func (b *Blames) LogError(format string, args ...interface{}) {
	b.ErrorMessages = append(b.ErrorMessages, fmt.Sprintf(format, args...))
}

// CopyMessagesTo appends the messages of the blames to report.
func (b *Blames) CopyMessagesTo(report *issues.Report) {
	for _, message := range b.InfoMessages {
		report.LogInfo("%s", message)
	}
	for _, message := range b.ErrorMessages {
		report.LogError("%s", message)
	}
}

// BuildIndex creates the blame requests for all issues of report that point to
// a line of a file inside workspace. Every file results in a single request.
func BuildIndex(report *issues.Report, workspace string) *Blames {
	blames := NewBlames(issues.CanonicalPath(workspace))
	for _, issue := range report.Issues {
		if issue.LineStart <= 0 || !issue.HasFileName() {
			continue
		}
		blames.AddLine(issues.CanonicalPath(issue.AbsolutePath(workspace)), issue.LineStart)
	}

	if blames.IsEmpty() {
		blames.LogInfo("Created no blame requests - Git blame will be skipped")
	} else {
		blames.LogInfo("Created blame requests for %d files - invoking Git blame on agent for each of the requests",
			blames.Size())
	}
	return blames
}
