package blame

import (
	"context"

	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/hashicorp/go-hclog"

	"github.com/scan-io-git/scanio-analysis/internal/git"
	"github.com/scan-io-git/scanio-analysis/pkg/issues"
)

// GitBlamer runs git blame in-process using go-git.
type GitBlamer struct {
	workspace string
	revision  string
	logger    hclog.Logger
}

// NewGitBlamer creates a blamer for the repository containing workspace. An
// empty revision blames HEAD.
func NewGitBlamer(workspace, revision string, logger hclog.Logger) *GitBlamer {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &GitBlamer{workspace: workspace, revision: revision, logger: logger}
}

// Blame computes author and commit of every issue line of report.
func (g *GitBlamer) Blame(ctx context.Context, report *issues.Report) (*Blames, error) {
	blames := NewBlames(issues.CanonicalPath(g.workspace))
	blames.LogInfo("Invoking Git blamer to create author and commit information for all affected files")
	blames.LogInfo("GIT_COMMIT env = '%s'", g.revision)

	repo, err := git.Open(g.workspace)
	if err != nil {
		blames.LogError("Can't open a Git repository for workspace '%s', skipping blame: %v", g.workspace, err)
		return blames, nil
	}
	blames.LogInfo("Git working tree = '%s'", repo.Root)

	commit, err := repo.ResolveCommit(g.revision)
	if err != nil {
		blames.LogError("Could not retrieve HEAD commit, aborting")
		blames.LogError("%v", err)
		return blames, nil
	}
	blames.LogInfo("Git commit ID = '%s'", commit.Hash)
	blames.LogInfo("Job workspace = '%s'", blames.Workspace)

	blames.Merge(BuildIndex(report, g.workspace))

	g.logger.Debug("running git blame", "files", blames.Size(), "commit", commit.Hash.String())
	err = blameRequests(ctx, repo, commit, blames)
	return blames, err
}

// blameRequests fills all requests of blames, checking for cancellation
// before each file.
func blameRequests(ctx context.Context, repo *git.Repository, commit *object.Commit, blames *Blames) error {
	blameErrors := issues.NewFilteredLog(blames, "Git blame errors:")
	defer blameErrors.LogSummary()

	for _, request := range blames.Sorted() {
		if err := ctx.Err(); err != nil {
			blames.LogInfo("Blame was canceled while computing blame information")
			return err
		}
		request.Attempted = true

		lines, err := repo.BlameFile(commit, request.FileName)
		if err != nil {
			blameErrors.LogError("- error running git blame on '%s' with revision '%s': %v",
				request.FileName, commit.Hash, err)
			continue
		}
		for _, line := range request.Lines {
			index := line - 1
			if index >= len(lines) {
				continue
			}
			author := lines[index]
			if author.Name == "" && author.Email == "" {
				blameErrors.LogError("- no author information found for line %d in file %s", line, request.FileName)
			} else {
				request.SetName(line, author.Name)
				request.SetEmail(line, author.Email)
			}
			request.SetCommit(line, author.Commit)
		}
	}

	blames.LogInfo("-> blamed authors of issues in %d files", blames.Size())
	return nil
}
