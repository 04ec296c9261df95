// Package blame attributes the issues of a report to the commits and authors
// that last changed the affected lines.
package blame

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/scan-io-git/scanio-analysis/internal/git"
	"github.com/scan-io-git/scanio-analysis/pkg/issues"
)

// Blamer computes blame information for the issues of a report.
//
// Blame never fails because of the repository or the files: problems are
// logged to the returned Blames. The error is only set when ctx is canceled,
// in which case the Blames hold the files attempted so far.
type Blamer interface {
	Blame(ctx context.Context, report *issues.Report) (*Blames, error)
}

// Options select and configure a blamer.
type Options struct {
	Workspace  string
	Revision   string
	Disabled   bool
	PluginPath string
}

// NullBlamer is used when no blame information can be computed.
type NullBlamer struct {
	Reason string
}

// Blame returns empty blames that explain why nothing was computed.
func (n *NullBlamer) Blame(ctx context.Context, report *issues.Report) (*Blames, error) {
	blames := NewBlames("")
	blames.LogInfo("%s", n.Reason)
	return blames, nil
}

// Resolve probes the workspace and returns the most capable blamer that can
// work on it.
func Resolve(opts Options, logger hclog.Logger) Blamer {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	if opts.Disabled {
		logger.Debug("blame disabled")
		return &NullBlamer{Reason: "Skipping blame as requested"}
	}
	if opts.PluginPath != "" {
		logger.Debug("using blamer plugin", "path", opts.PluginPath)
		return NewPluginBlamer(opts, logger)
	}

	repo, err := git.Open(opts.Workspace)
	if err != nil {
		logger.Warn("no repository found, blame is skipped", "workspace", opts.Workspace, "error", err)
		return &NullBlamer{Reason: fmt.Sprintf("Skipping blame: %v in workspace '%s' (%v)", ErrNotSupported, opts.Workspace, err)}
	}
	shallow, err := repo.IsShallow()
	if err != nil {
		logger.Warn("failed to inspect repository", "root", repo.Root, "error", err)
		return &NullBlamer{Reason: fmt.Sprintf("Skipping blame: %v", err)}
	}
	if shallow {
		logger.Warn("shallow clone detected, blame is skipped", "root", repo.Root)
		return &NullBlamer{Reason: fmt.Sprintf(
			"Skipping blame: the repository '%s' is a shallow clone, fetch the full history to get author information", repo.Root)}
	}
	return NewGitBlamer(opts.Workspace, opts.Revision, logger)
}
