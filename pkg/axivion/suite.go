package axivion

import (
	"context"
	"fmt"
	"os"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"

	"github.com/scan-io-git/scanio-analysis/pkg/issues"
)

// SuiteConfig describes one dashboard project import.
type SuiteConfig struct {
	ProjectURL                  string
	BaseDir                     string
	NamedFilter                 string
	IgnoreSuppressedOrJustified bool
}

// Suite imports all issue kinds of a dashboard project into one report.
type Suite struct {
	cfg        SuiteConfig
	projectDir string
	dashboard  Dashboard
	logger     hclog.Logger
}

// NewSuite creates an importer reading from dashboard.
func NewSuite(cfg SuiteConfig, dashboard Dashboard, logger hclog.Logger) *Suite {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Suite{cfg: cfg, projectDir: ExpandBaseDir(cfg.BaseDir), dashboard: dashboard, logger: logger}
}

// ProjectDir returns the configured base directory with its variables
// expanded. Issue paths of the dashboard are relative to it.
func (s *Suite) ProjectDir() string {
	return s.projectDir
}

// ExpandBaseDir resolves environment variables like $WORKSPACE in the
// configured base directory.
func ExpandBaseDir(baseDir string) string {
	return os.ExpandEnv(baseDir)
}

// Scan fetches all kinds concurrently and parses them in kind order, so the
// issue order of the report does not depend on response timing. The first
// transport failure aborts the scan.
func (s *Suite) Scan(ctx context.Context) (*issues.Report, error) {
	report := issues.NewReport(ToolID, ToolName)
	report.LogInfo("Axivion webservice: %s", s.cfg.ProjectURL)
	report.LogInfo("Local basedir: %s", s.cfg.BaseDir)
	report.LogInfo("Named Filter: %s", s.cfg.NamedFilter)

	kinds := Kinds()
	payloads := make([]map[string]interface{}, len(kinds))

	g, gctx := errgroup.WithContext(ctx)
	for i, kind := range kinds {
		i, kind := i, kind
		g.Go(func() error {
			s.logger.Debug("fetching issues", "kind", kind)
			payload, err := s.dashboard.Issues(gctx, kind)
			if err != nil {
				return fmt.Errorf("failed to fetch %s issues: %w", kind, err)
			}
			payloads[i] = payload
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Error("dashboard import failed", "error", err)
		return nil, err
	}

	parser := NewParser(ParserConfig{
		DashboardURL:                s.cfg.ProjectURL,
		ProjectDir:                  s.projectDir,
		IgnoreSuppressedOrJustified: s.cfg.IgnoreSuppressedOrJustified,
	})
	for i, kind := range kinds {
		before := report.Size()
		parser.Parse(report, kind, payloads[i])
		s.logger.Debug("parsed issues", "kind", kind, "count", report.Size()-before)
	}

	for i := range report.Issues {
		report.Issues[i].Origin = ToolID
	}
	report.OriginSizes = map[string]int{ToolID: report.Size()}

	s.logger.Info("imported dashboard issues", "count", report.Size(), "errors", len(report.ErrorMessages))
	return report, nil
}
