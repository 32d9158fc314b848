package workflow

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	devcontext "github.com/randalmurphal/issueflow/context"
)

// excludedDirs are never listed in the repository context. Any other
// directory starting with a dot is skipped as well.
var excludedDirs = map[string]bool{
	"__pycache__":  true,
	".git":         true,
	".github":      true,
	"node_modules": true,
	"dist":         true,
	"build":        true,
	".venv":        true,
	"venv":         true,
	"vendor":       true,
}

// contextExtensions are the file types listed in the repository context.
var contextExtensions = map[string]bool{
	".go":   true,
	".py":   true,
	".md":   true,
	".ts":   true,
	".json": true,
}

// RepositoryContext renders an indented tree of the source files under
// root. Listing stops once more than maxFiles files were written, with a
// "... (truncated)" marker.
func RepositoryContext(root string, maxFiles int) (string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}

	var lines []string
	count := 0
	err = filepath.WalkDir(abs, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable entries are left out of the listing.
			if d != nil && d.IsDir() && path != abs {
				return fs.SkipDir
			}
			return nil
		}

		rel, _ := filepath.Rel(abs, path)
		level := 0
		if rel != "." {
			level = strings.Count(rel, string(filepath.Separator)) + 1
		}

		if d.IsDir() {
			name := d.Name()
			if path != abs && (excludedDirs[name] || strings.HasPrefix(name, ".")) {
				return fs.SkipDir
			}
			lines = append(lines, strings.Repeat("  ", level)+filepath.Base(path)+"/")
			return nil
		}

		if !contextExtensions[filepath.Ext(d.Name())] {
			return nil
		}
		lines = append(lines, strings.Repeat("  ", level)+d.Name())
		count++
		if maxFiles > 0 && count > maxFiles {
			lines = append(lines, strings.Repeat("  ", level)+"... (truncated)")
			return fs.SkipAll
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return strings.Join(lines, "\n"), nil
}

// repoRoot resolves the directory relative target paths live under:
// the configured root, then the injected git repository, then the
// working directory.
func repoRoot(ctx context.Context) string {
	if cfg := NodeConfigFromContext(ctx); cfg.RepoRoot != "" {
		return cfg.RepoRoot
	}
	if g := devcontext.Git(ctx); g != nil {
		return g.RepoPath()
	}
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return "."
}

// resolvePath joins a relative target path onto root. Absolute paths,
// paths climbing out with "..", and symlinks pointing outside root are
// rejected with ErrOutsideRepo.
func resolvePath(root, path string) (string, error) {
	rel := filepath.FromSlash(path)
	if !filepath.IsLocal(rel) {
		return "", ErrOutsideRepo
	}
	full := filepath.Join(root, rel)

	resolved, err := filepath.EvalSymlinks(full)
	if err != nil {
		// Missing files are reported by the caller's read.
		return full, nil
	}
	realRoot, err := filepath.EvalSymlinks(root)
	if err != nil {
		return "", err
	}
	if r, err := filepath.Rel(realRoot, resolved); err != nil || !filepath.IsLocal(r) {
		return "", ErrOutsideRepo
	}
	return full, nil
}
