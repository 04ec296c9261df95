// Package git wraps the go-git operations needed to attribute issues to
// commits and authors.
package git

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Repository is an opened repository together with the location of the
// workspace inside of it.
type Repository struct {
	repo      *git.Repository
	Root      string
	Subfolder string
}

// Open finds the repository containing workspace and opens it.
func Open(workspace string) (*Repository, error) {
	if workspace == "" {
		return nil, ErrSourceFolderNotSet
	}
	abs, err := filepath.Abs(workspace)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve workspace %q: %w", workspace, err)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}

	root, err := findGitRepositoryPath(abs)
	if err != nil {
		return nil, err
	}
	repo, err := git.PlainOpen(root)
	if err != nil {
		return nil, fmt.Errorf("failed to open repository: %w", err)
	}

	r := &Repository{repo: repo, Root: filepath.Clean(root)}
	if rel, err := filepath.Rel(root, abs); err == nil && rel != "." {
		r.Subfolder = filepath.ToSlash(rel)
	}
	return r, nil
}

// IsShallow reports whether the repository history has been truncated.
func (r *Repository) IsShallow() (bool, error) {
	shallow, err := r.repo.Storer.Shallow()
	if err != nil {
		return false, fmt.Errorf("failed to read shallow commits: %w", err)
	}
	return len(shallow) > 0, nil
}

// ResolveCommit returns the commit for revision. An empty revision means HEAD.
func (r *Repository) ResolveCommit(revision string) (*object.Commit, error) {
	revision = strings.TrimSpace(revision)
	if revision == "" {
		revision = "HEAD"
	}
	hash, err := r.repo.ResolveRevision(plumbing.Revision(revision))
	if err != nil {
		return nil, fmt.Errorf("%w: revision %q: %v", ErrHeadCommit, revision, err)
	}
	commit, err := r.repo.CommitObject(*hash)
	if err != nil {
		return nil, fmt.Errorf("%w: commit %s: %v", ErrHeadCommit, hash, err)
	}
	return commit, nil
}

// RepoPath converts a workspace relative file name into the path git uses.
func (r *Repository) RepoPath(workspaceRelative string) string {
	return joinRepoPath(r.Subfolder, workspaceRelative)
}

// LineAuthor is the blame information of a single line.
type LineAuthor struct {
	Name   string
	Email  string
	Commit string
}

// BlameFile returns the authors of all lines of a workspace relative file at commit.
func (r *Repository) BlameFile(commit *object.Commit, workspaceRelative string) ([]LineAuthor, error) {
	result, err := git.Blame(commit, r.RepoPath(workspaceRelative))
	if err != nil {
		return nil, fmt.Errorf("git blame %q at %s: %w", workspaceRelative, commit.Hash, err)
	}
	lines := make([]LineAuthor, 0, len(result.Lines))
	for _, line := range result.Lines {
		lines = append(lines, LineAuthor{
			Name:   line.AuthorName,
			Email:  line.Author,
			Commit: line.Hash.String(),
		})
	}
	return lines, nil
}
