package issues

import (
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

var drivePrefix = regexp.MustCompile(`^[A-Za-z]:/`)

// NormalizePath converts separators to '/' and removes redundant elements.
// Windows drive letters are kept as they are so reports produced on other
// agents can still be compared.
func NormalizePath(p string) string {
	if p == "" || p == UndefinedValue {
		return p
	}
	p = strings.ReplaceAll(p, "\\", "/")
	p = strings.TrimPrefix(p, "file://")
	return path.Clean(p)
}

// IsAbsolutePath reports whether p is absolute on either a unix or a windows agent.
func IsAbsolutePath(p string) bool {
	p = strings.ReplaceAll(p, "\\", "/")
	return strings.HasPrefix(p, "/") || drivePrefix.MatchString(p)
}

// CanonicalPath returns the absolute, symlink-free form of a local path. Only
// the existing part of the path is resolved, so files that are gone still map
// below their canonical directory. Paths of other agents are only normalized.
func CanonicalPath(p string) string {
	if IsAbsolutePath(p) && !filepath.IsAbs(p) {
		return NormalizePath(p)
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return NormalizePath(p)
	}
	existing, rest := abs, ""
	for {
		if resolved, err := filepath.EvalSymlinks(existing); err == nil {
			return NormalizePath(filepath.ToSlash(filepath.Join(resolved, rest)))
		}
		parent := filepath.Dir(existing)
		if parent == existing {
			return NormalizePath(filepath.ToSlash(abs))
		}
		rest = filepath.Join(filepath.Base(existing), rest)
		existing = parent
	}
}

// PathWithin reports whether p lies inside root. Both paths are expected in
// normalized form.
func PathWithin(p, root string) bool {
	if root == "" {
		return true
	}
	root = strings.TrimSuffix(root, "/")
	return p == root || strings.HasPrefix(p, root+"/")
}

// RelativePath returns p relative to root, or false when p is outside of root.
func RelativePath(p, root string) (string, bool) {
	p = NormalizePath(p)
	root = strings.TrimSuffix(NormalizePath(root), "/")
	if !PathWithin(p, root) || p == root {
		return "", false
	}
	return strings.TrimPrefix(p, root+"/"), true
}

// RelativizePaths rewrites the file names of all issues located below one of
// the source directories to paths relative to that directory. The longest
// matching source directory wins. Issues outside of all directories are kept
// unchanged. A new report is returned; the input is not modified.
func RelativizePaths(report *Report, sourceDirectories []string) *Report {
	dirs := make([]string, 0, len(sourceDirectories))
	for _, dir := range sourceDirectories {
		if dir = strings.TrimSuffix(NormalizePath(dir), "/"); dir != "" {
			dirs = append(dirs, dir)
		}
	}
	sort.SliceStable(dirs, func(i, j int) bool { return len(dirs[i]) > len(dirs[j]) })

	out := report.CopyEmpty()
	changed := 0
	for _, issue := range report.Issues {
		for _, dir := range dirs {
			if rel, ok := RelativePath(issue.FileName, dir); ok {
				issue = issue.WithFileName(rel)
				changed++
				break
			}
		}
		out.Add(issue)
	}
	if changed > 0 {
		out.LogInfo("-> %d issues have been made relative to the source directories", changed)
	}
	return out
}
