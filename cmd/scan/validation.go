package scan

import (
	"fmt"
	"os"
	"strings"

	"github.com/scan-io-git/scanio-analysis/pkg/shared/config"
	"github.com/scan-io-git/scanio-analysis/pkg/shared/files"
)

// validate checks the options of the scan command and fills in defaults.
func validate(o *RunOptions, cfg *config.Config) error {
	if cfg == nil || cfg.Dashboard.ProjectURL == "" {
		return fmt.Errorf("dashboard.project_url is not configured")
	}
	if strings.TrimSpace(o.Job) == "" {
		return fmt.Errorf("--job is required outside of a CI environment")
	}
	if o.RunNumber < 0 {
		return fmt.Errorf("--run-number must not be negative: %d", o.RunNumber)
	}

	if o.Workspace == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to determine the workspace: %w", err)
		}
		o.Workspace = wd
	}
	workspace, err := files.ExpandPath(o.Workspace)
	if err != nil {
		return fmt.Errorf("invalid --workspace: %w", err)
	}
	if info, err := os.Stat(workspace); err != nil {
		return fmt.Errorf("invalid --workspace: %w", err)
	} else if !info.IsDir() {
		return fmt.Errorf("invalid --workspace: %q is not a directory", workspace)
	}
	o.Workspace = workspace

	for _, path := range []*string{&o.OutputPath, &o.SarifPath} {
		if *path == "" {
			continue
		}
		expanded, err := files.ExpandPath(*path)
		if err != nil {
			return err
		}
		*path = expanded
	}
	return nil
}
