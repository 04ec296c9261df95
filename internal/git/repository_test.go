package git

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// setupBlameRepo initialises a temporary repository with two commits by
// different authors and returns the repo path along with both commit hashes.
func setupBlameRepo(t *testing.T) (string, plumbing.Hash, plumbing.Hash) {
	t.Helper()

	repoDir := t.TempDir()
	repo, err := git.PlainInit(repoDir, false)
	if err != nil {
		t.Fatalf("PlainInit: %v", err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("Worktree: %v", err)
	}

	baseHash := commitFiles(t, wt, map[string]string{
		"app/src/main.c": "int a;\nint b;\nint c;\n",
	}, "base commit", "alice", "alice@example.com")
	headHash := commitFiles(t, wt, map[string]string{
		"app/src/main.c": "int a;\nint b2;\nint c;\nint d;\n",
	}, "head commit", "bob", "bob@example.com")

	return repoDir, baseHash, headHash
}

func commitFiles(t *testing.T, wt *git.Worktree, files map[string]string, message, name, email string) plumbing.Hash {
	t.Helper()

	for path, content := range files {
		abs := filepath.Join(wt.Filesystem.Root(), path)
		if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", abs, err)
		}
		if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", abs, err)
		}
		if _, err := wt.Add(path); err != nil {
			t.Fatalf("add %s: %v", path, err)
		}
	}

	hash, err := wt.Commit(message, &git.CommitOptions{
		Author: &object.Signature{Name: name, Email: email, When: time.Now()},
	})
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	return hash
}

func TestOpenFromSubfolder(t *testing.T) {
	repoDir, _, _ := setupBlameRepo(t)

	repo, err := Open(filepath.Join(repoDir, "app"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if repo.Subfolder != "app" {
		t.Fatalf("Subfolder = %q, want %q", repo.Subfolder, "app")
	}
	if got := repo.RepoPath("src/main.c"); got != "app/src/main.c" {
		t.Fatalf("RepoPath = %q, want %q", got, "app/src/main.c")
	}
}

func TestOpenOutsideRepository(t *testing.T) {
	if _, err := Open(t.TempDir()); err == nil {
		t.Fatalf("Open expected error for a folder without repository")
	}
	if _, err := Open(""); err != ErrSourceFolderNotSet {
		t.Fatalf("Open(\"\") error = %v, want %v", err, ErrSourceFolderNotSet)
	}
}

func TestResolveCommit(t *testing.T) {
	repoDir, baseHash, headHash := setupBlameRepo(t)
	repo, err := Open(repoDir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	testCases := []struct {
		name     string
		revision string
		want     plumbing.Hash
		wantErr  bool
	}{
		{name: "default head", revision: "", want: headHash},
		{name: "explicit head", revision: "HEAD", want: headHash},
		{name: "hash", revision: baseHash.String(), want: baseHash},
		{name: "parent", revision: "HEAD~1", want: baseHash},
		{name: "unknown", revision: "does-not-exist", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			commit, err := repo.ResolveCommit(tc.revision)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("ResolveCommit(%q) expected error", tc.revision)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveCommit(%q) unexpected error: %v", tc.revision, err)
			}
			if commit.Hash != tc.want {
				t.Fatalf("ResolveCommit(%q) = %s, want %s", tc.revision, commit.Hash, tc.want)
			}
		})
	}
}

func TestBlameFile(t *testing.T) {
	repoDir, baseHash, headHash := setupBlameRepo(t)
	repo, err := Open(filepath.Join(repoDir, "app"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	commit, err := repo.ResolveCommit("")
	if err != nil {
		t.Fatalf("ResolveCommit: %v", err)
	}

	lines, err := repo.BlameFile(commit, "src/main.c")
	if err != nil {
		t.Fatalf("BlameFile: %v", err)
	}
	if len(lines) != 4 {
		t.Fatalf("BlameFile returned %d lines, want 4", len(lines))
	}

	want := []LineAuthor{
		{Name: "alice", Email: "alice@example.com", Commit: baseHash.String()},
		{Name: "bob", Email: "bob@example.com", Commit: headHash.String()},
		{Name: "alice", Email: "alice@example.com", Commit: baseHash.String()},
		{Name: "bob", Email: "bob@example.com", Commit: headHash.String()},
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Fatalf("line %d = %+v, want %+v", i+1, lines[i], want[i])
		}
	}
}

func TestIsShallow(t *testing.T) {
	repoDir, baseHash, _ := setupBlameRepo(t)
	repo, err := Open(repoDir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	shallow, err := repo.IsShallow()
	if err != nil || shallow {
		t.Fatalf("IsShallow() = %v, %v; want false, nil", shallow, err)
	}

	if err := repo.repo.Storer.SetShallow([]plumbing.Hash{baseHash}); err != nil {
		t.Fatalf("SetShallow: %v", err)
	}
	shallow, err = repo.IsShallow()
	if err != nil || !shallow {
		t.Fatalf("IsShallow() = %v, %v; want true, nil", shallow, err)
	}
}
