package testutil

import (
	"os"
	"os/exec"
	"strings"
	"testing"
)

// gitIdentity pins author and committer so commits work on machines
// without a global git config.
var gitIdentity = []string{
	"GIT_AUTHOR_NAME=issueflow test",
	"GIT_AUTHOR_EMAIL=test@issueflow.invalid",
	"GIT_COMMITTER_NAME=issueflow test",
	"GIT_COMMITTER_EMAIL=test@issueflow.invalid",
}

// SetupTestRepo creates a repository in a temp dir holding one commit
// ("Initial commit") that adds README.md.
func SetupTestRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	mustGit(t, dir, "init")
	mustGit(t, dir, "config", "user.email", "test@issueflow.invalid")
	mustGit(t, dir, "config", "user.name", "issueflow test")
	CommitFile(t, dir, "README.md", "# Test Repository\n", "Initial commit")
	return dir
}

// SetupTestRepoWithFiles is SetupTestRepo plus a second commit adding files.
func SetupTestRepoWithFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := SetupTestRepo(t)
	WriteFiles(t, dir, files)
	mustGit(t, dir, "add", "-A")
	mustGit(t, dir, "commit", "-m", "Add test files")
	return dir
}

// SetupRemote registers a fresh bare repository as "origin" of repoDir
// and returns its path.
func SetupRemote(t *testing.T, repoDir string) string {
	t.Helper()
	bare := t.TempDir()
	mustGit(t, bare, "init", "--bare")
	mustGit(t, repoDir, "remote", "add", "origin", bare)
	return bare
}

// RemoteHasBranch reports whether the bare repository has branch.
func RemoteHasBranch(t *testing.T, bareDir, branch string) bool {
	t.Helper()
	_, err := gitCmd(bareDir, "rev-parse", "--verify", "refs/heads/"+branch).Output()
	return err == nil
}

// CommitFile writes path and commits it with message.
func CommitFile(t *testing.T, repoDir, path, content, message string) {
	t.Helper()
	WriteFiles(t, repoDir, map[string]string{path: content})
	mustGit(t, repoDir, "add", path)
	mustGit(t, repoDir, "commit", "-m", message)
}

// GetCurrentBranch returns the checked-out branch.
func GetCurrentBranch(t *testing.T, repoDir string) string {
	t.Helper()
	return mustGit(t, repoDir, "branch", "--show-current")
}

// GetHeadSHA returns the SHA of HEAD.
func GetHeadSHA(t *testing.T, repoDir string) string {
	t.Helper()
	return mustGit(t, repoDir, "rev-parse", "HEAD")
}

// GetHeadMessage returns the full message of HEAD, trimmed.
func GetHeadMessage(t *testing.T, repoDir string) string {
	t.Helper()
	return mustGit(t, repoDir, "log", "-1", "--format=%B")
}

// mustGit runs git in dir and returns trimmed stdout, failing the test
// with git's output on error.
func mustGit(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := gitCmd(dir, args...)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		t.Fatalf("git %s: %v\n%s", strings.Join(args, " "), err, stderr.String())
	}
	return strings.TrimSpace(string(out))
}

func gitCmd(dir string, args ...string) *exec.Cmd {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), gitIdentity...)
	return cmd
}
