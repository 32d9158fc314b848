// Package git provides the local git operations used to turn a generated
// diff into a pushed branch: branch creation, patch application, commits,
// and pushes.
//
// Core types:
//   - Context: Git repository context
//   - CommandRunner: Interface for executing git commands (with mocks for testing)
//   - BranchNamer: Generates branch names for issues
//   - CommitMessage: Conventional commit message builder
//
// Example usage:
//
//	repo, err := git.NewContext("/path/to/repo")
//	branch := git.DefaultBranchNamer().ForIssue(42, "Fix login crash")
//	msg := git.NewCommitMessage(git.CommitTypeFix, "handle empty password").WithIssueRef("#42")
//	pub, err := repo.Publish(branch, diff, msg.String(), "origin")
package git
