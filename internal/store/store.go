// Package store keeps analysis runs as JSON records on disk, one folder per
// job, and exposes them as a linear run history.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/scan-io-git/scanio-analysis/pkg/history"
	"github.com/scan-io-git/scanio-analysis/pkg/shared/files"
)

const recordExt = ".json"

var (
	ErrJobNotSet      = errors.New("job name is not set")
	ErrRunNotFound    = errors.New("run not found")
	ErrInvalidNumber  = errors.New("run number must be positive")
	ErrRunAlreadySeen = errors.New("run number already recorded")
)

// RunRecord is the persisted form of one run of a job.
type RunRecord struct {
	ID        string                    `json:"id"`
	Job       string                    `json:"job"`
	Number    int                       `json:"number"`
	Revision  string                    `json:"revision,omitempty"`
	Result    history.BuildResult       `json:"result"`
	StartedAt time.Time                 `json:"started_at"`
	Results   []*history.AnalysisResult `json:"results"`
}

// RunID is the identifier used by analysis results to point to their run.
func (r *RunRecord) RunID() string {
	return fmt.Sprintf("%s#%d", r.Job, r.Number)
}

// AddResult attaches an analysis result, replacing an earlier one of the same tool.
func (r *RunRecord) AddResult(result *history.AnalysisResult) {
	result.RunID = r.RunID()
	for i, existing := range r.Results {
		if existing.ToolID == result.ToolID {
			r.Results[i] = result
			return
		}
	}
	r.Results = append(r.Results, result)
}

// Store reads and writes run records below a root folder.
type Store struct {
	folder string
	logger hclog.Logger
}

// NewStore creates a store rooted at folder.
func NewStore(folder string, logger hclog.Logger) *Store {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Store{folder: folder, logger: logger}
}

// Start creates a new in-progress record for job. A number of 0 picks the
// next free number.
func (s *Store) Start(job string, number int, revision string) (*RunRecord, error) {
	if strings.TrimSpace(job) == "" {
		return nil, ErrJobNotSet
	}
	numbers, err := s.numbers(job)
	if err != nil {
		return nil, err
	}
	if number < 0 {
		return nil, ErrInvalidNumber
	}
	if number == 0 {
		number = 1
		if len(numbers) > 0 {
			number = numbers[len(numbers)-1] + 1
		}
	} else if containsInt(numbers, number) {
		return nil, fmt.Errorf("%w: %s#%d", ErrRunAlreadySeen, job, number)
	}

	return &RunRecord{
		ID:        uuid.New().String(),
		Job:       job,
		Number:    number,
		Revision:  revision,
		Result:    history.ResultUnknown,
		StartedAt: time.Now().UTC(),
	}, nil
}

// Save writes the record. Existing records of the same number are overwritten.
func (s *Store) Save(record *RunRecord) error {
	if record == nil || strings.TrimSpace(record.Job) == "" {
		return ErrJobNotSet
	}
	if record.Number <= 0 {
		return ErrInvalidNumber
	}
	path := s.recordPath(record.Job, record.Number)
	if err := files.WriteJSON(path, record); err != nil {
		return fmt.Errorf("failed to save run %s: %w", record.RunID(), err)
	}
	s.logger.Debug("run saved", "run", record.RunID(), "path", path)
	return nil
}

// Load reads a single record.
func (s *Store) Load(job string, number int) (*RunRecord, error) {
	path := s.recordPath(job, number)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s#%d", ErrRunNotFound, job, number)
	}
	record := &RunRecord{}
	if err := files.ReadJSON(path, record); err != nil {
		return nil, err
	}
	return record, nil
}

// Runs returns the records of job ordered by number. Unreadable records are
// logged and left out.
func (s *Store) Runs(job string) ([]*RunRecord, error) {
	numbers, err := s.numbers(job)
	if err != nil {
		return nil, err
	}
	records := make([]*RunRecord, 0, len(numbers))
	for _, n := range numbers {
		record, err := s.Load(job, n)
		if err != nil {
			s.logger.Warn("skipping unreadable run", "job", job, "number", n, "error", err)
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

// History loads the run history of job.
func (s *Store) History(job string) (*JobHistory, error) {
	records, err := s.Runs(job)
	if err != nil {
		return nil, err
	}
	h := &JobHistory{}
	for _, record := range records {
		h.Append(record)
	}
	return h, nil
}

func (s *Store) jobFolder(job string) string {
	return filepath.Join(s.folder, sanitizeJobName(job))
}

func (s *Store) recordPath(job string, number int) string {
	return filepath.Join(s.jobFolder(job), strconv.Itoa(number)+recordExt)
}

func (s *Store) numbers(job string) ([]int, error) {
	entries, err := os.ReadDir(s.jobFolder(job))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list runs of %q: %w", job, err)
	}

	var numbers []int
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), recordExt) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSuffix(entry.Name(), recordExt))
		if err != nil || n <= 0 {
			continue
		}
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)
	return numbers, nil
}

// sanitizeJobName maps a job name like "folder/job" to a single folder name.
func sanitizeJobName(job string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '.':
			return r
		default:
			return '_'
		}
	}, strings.TrimSpace(job))
}

func containsInt(values []int, v int) bool {
	i := sort.SearchInts(values, v)
	return i < len(values) && values[i] == v
}
