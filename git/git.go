package git

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Context runs git commands against one repository.
type Context struct {
	repoPath string
	runner   CommandRunner
}

// Option configures Context.
type Option func(*Context)

// WithRunner replaces the exec-based runner, typically with a mock.
func WithRunner(runner CommandRunner) Option {
	return func(g *Context) { g.runner = runner }
}

// NewContext opens the repository at repoPath. It returns ErrNotGitRepo
// when git does not recognise the directory.
func NewContext(repoPath string, opts ...Option) (*Context, error) {
	abs, err := filepath.Abs(repoPath)
	if err != nil {
		return nil, fmt.Errorf("resolve path: %w", err)
	}
	g := &Context{repoPath: abs, runner: NewExecRunner()}
	for _, opt := range opts {
		opt(g)
	}
	if _, err := g.git("rev-parse", "--git-dir"); err != nil {
		return nil, ErrNotGitRepo
	}
	return g, nil
}

// RepoPath returns the absolute repository root.
func (g *Context) RepoPath() string { return g.repoPath }

// CurrentBranch returns the checked-out branch name.
func (g *Context) CurrentBranch() (string, error) {
	return g.run("get current branch", "rev-parse", "--abbrev-ref", "HEAD")
}

// HeadCommit returns the SHA of HEAD.
func (g *Context) HeadCommit() (string, error) {
	return g.run("get HEAD commit", "rev-parse", "HEAD")
}

// GetRemoteURL returns the fetch URL of remote.
func (g *Context) GetRemoteURL(remote string) (string, error) {
	return g.run("get remote URL", "remote", "get-url", remote)
}

// BranchExists reports whether name resolves to a local ref.
func (g *Context) BranchExists(name string) bool {
	_, err := g.git("rev-parse", "--verify", name)
	return err == nil
}

// CreateBranch creates name at HEAD without switching to it.
func (g *Context) CreateBranch(name string) error {
	_, err := g.git("branch", name)
	if err != nil && strings.Contains(err.Error(), "already exists") {
		return ErrBranchExists
	}
	return wrap("create branch", "", err)
}

// Checkout switches to ref.
func (g *Context) Checkout(ref string) error {
	_, err := g.run("checkout", "checkout", ref)
	return err
}

// Commit records the staged changes. It returns ErrNothingToCommit when
// the index matches HEAD.
func (g *Context) Commit(message string) error {
	out, err := g.git("commit", "-m", message)
	if err != nil && (strings.Contains(out, "nothing to commit") || strings.Contains(err.Error(), "nothing to commit")) {
		return ErrNothingToCommit
	}
	return wrap("commit", out, err)
}

// Push sends branch to remote, adding -u when setUpstream is set.
func (g *Context) Push(remote, branch string, setUpstream bool) error {
	args := []string{"push", remote, branch}
	if setUpstream {
		args = []string{"push", "-u", remote, branch}
	}
	_, err := g.run("push", args...)
	return err
}

// ApplyPatch applies a unified diff to the working tree. git apply is
// all-or-nothing, so a rejected patch leaves the tree untouched.
func (g *Context) ApplyPatch(patch string) error {
	return g.apply(patch)
}

// ApplyPatchToIndex applies a unified diff to both the working tree and
// the index, staging exactly the paths the diff touches. The touched
// files must match the index.
func (g *Context) ApplyPatchToIndex(patch string) error {
	return g.apply(patch, "--index")
}

func (g *Context) apply(patch string, flags ...string) error {
	if strings.TrimSpace(patch) == "" {
		return ErrEmptyPatch
	}
	if !strings.HasSuffix(patch, "\n") {
		patch += "\n"
	}

	path, err := writeTemp(patch)
	if err != nil {
		return wrap("apply patch", "", err)
	}
	defer os.Remove(path)

	args := append([]string{"apply", "--whitespace=nowarn"}, flags...)
	if _, err := g.git(append(args, path)...); err != nil {
		return &Error{Op: "apply patch", Cmd: "git apply", Err: err}
	}
	return nil
}

// Status returns `git status --short`.
func (g *Context) Status() (string, error) {
	return g.run("status", "status", "--short")
}

// IsClean reports whether the working tree has no changes.
func (g *Context) IsClean() (bool, error) {
	status, err := g.Status()
	return err == nil && status == "", err
}

func (g *Context) git(args ...string) (string, error) {
	return g.runner.Run(g.repoPath, "git", args...)
}

// run executes git and wraps failures in an *Error naming op.
func (g *Context) run(op string, args ...string) (string, error) {
	out, err := g.git(args...)
	if err != nil {
		return "", wrap(op, "", err)
	}
	return out, nil
}

func wrap(op, output string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Output: output, Err: err}
}

func writeTemp(content string) (string, error) {
	f, err := os.CreateTemp("", "issueflow-*.patch")
	if err != nil {
		return "", err
	}
	if _, err := f.WriteString(content); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}
