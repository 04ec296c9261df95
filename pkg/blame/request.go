package blame

import (
	"fmt"
	"sort"
)

// Unknown is returned for blame fields that have not been determined.
const Unknown = "-"

// BlameRequest collects the lines of one file that need author and commit
// information, together with the results once they are known.
type BlameRequest struct {
	FileName  string         `json:"file_name"`
	Lines     []int          `json:"lines"`
	Commits   map[int]string `json:"commits,omitempty"`
	Names     map[int]string `json:"names,omitempty"`
	Emails    map[int]string `json:"emails,omitempty"`
	Attempted bool           `json:"attempted,omitempty"`
}

// NewBlameRequest creates a request for fileName, a path relative to the workspace.
func NewBlameRequest(fileName string, lines ...int) *BlameRequest {
	r := &BlameRequest{
		FileName: fileName,
		Commits:  map[int]string{},
		Names:    map[int]string{},
		Emails:   map[int]string{},
	}
	for _, line := range lines {
		r.AddLine(line)
	}
	return r
}

// AddLine adds a line to the request. Lines are kept sorted and unique.
func (r *BlameRequest) AddLine(line int) {
	i := sort.SearchInts(r.Lines, line)
	if i < len(r.Lines) && r.Lines[i] == line {
		return
	}
	r.Lines = append(r.Lines, 0)
	copy(r.Lines[i+1:], r.Lines[i:])
	r.Lines[i] = line
}

// HasLine reports whether the line is part of the request.
func (r *BlameRequest) HasLine(line int) bool {
	i := sort.SearchInts(r.Lines, line)
	return i < len(r.Lines) && r.Lines[i] == line
}

func (r *BlameRequest) SetCommit(line int, commit string) {
	r.ensureMaps()
	r.Commits[line] = commit
}

func (r *BlameRequest) SetName(line int, name string) {
	r.ensureMaps()
	r.Names[line] = name
}

func (r *BlameRequest) SetEmail(line int, email string) {
	r.ensureMaps()
	r.Emails[line] = email
}

// Commit returns the commit that last changed the line, or Unknown.
func (r *BlameRequest) Commit(line int) string {
	return valueOrUnknown(r.Commits, line)
}

// Name returns the author name of the line, or Unknown.
func (r *BlameRequest) Name(line int) string {
	return valueOrUnknown(r.Names, line)
}

// Email returns the author email of the line, or Unknown.
func (r *BlameRequest) Email(line int) string {
	return valueOrUnknown(r.Emails, line)
}

// Merge adds the lines of other and takes over its results for all fields
// this request has not determined yet. Values already set are kept.
func (r *BlameRequest) Merge(other *BlameRequest) error {
	if other == nil {
		return nil
	}
	if other.FileName != r.FileName {
		return fmt.Errorf("%w: %q and %q", ErrFileMismatch, r.FileName, other.FileName)
	}
	r.ensureMaps()
	for _, line := range other.Lines {
		r.AddLine(line)
		mergeValue(r.Commits, other.Commits, line)
		mergeValue(r.Names, other.Names, line)
		mergeValue(r.Emails, other.Emails, line)
	}
	r.Attempted = r.Attempted || other.Attempted
	return nil
}

// Copy returns a deep copy of the request.
func (r *BlameRequest) Copy() *BlameRequest {
	out := NewBlameRequest(r.FileName, r.Lines...)
	for line, v := range r.Commits {
		out.Commits[line] = v
	}
	for line, v := range r.Names {
		out.Names[line] = v
	}
	for line, v := range r.Emails {
		out.Emails[line] = v
	}
	out.Attempted = r.Attempted
	return out
}

func (r *BlameRequest) String() string {
	return fmt.Sprintf("%s - %v", r.FileName, r.Lines)
}

func (r *BlameRequest) ensureMaps() {
	if r.Commits == nil {
		r.Commits = map[int]string{}
	}
	if r.Names == nil {
		r.Names = map[int]string{}
	}
	if r.Emails == nil {
		r.Emails = map[int]string{}
	}
}

func valueOrUnknown(values map[int]string, line int) string {
	if v, ok := values[line]; ok && v != "" {
		return v
	}
	return Unknown
}

func mergeValue(dst, src map[int]string, line int) {
	v, ok := src[line]
	if !ok || v == "" || v == Unknown {
		return
	}
	if current, ok := dst[line]; ok && current != "" && current != Unknown {
		return
	}
	dst[line] = v
}
