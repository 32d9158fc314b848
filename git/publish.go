package git

import "fmt"

// Publication describes a branch pushed by Publish.
type Publication struct {
	Branch  string
	Remote  string
	SHA     string
	Created bool // the branch did not exist locally
}

// Publish turns a diff into a pushed branch: it checks out branch (creating
// it at HEAD when missing), applies patch to the index, commits with
// message and pushes with upstream tracking. Remote defaults to "origin".
// Only the paths in patch are committed; other local changes and
// untracked files stay out of the commit.
//
// Errors from the individual steps are returned as is, so callers can match
// ErrEmptyPatch, ErrNothingToCommit or inspect *Error.Op.
func (g *Context) Publish(branch, patch, message, remote string) (*Publication, error) {
	if branch == "" {
		return nil, &Error{Op: "publish", Err: fmt.Errorf("branch name is required")}
	}
	if remote == "" {
		remote = "origin"
	}

	pub := &Publication{Branch: branch, Remote: remote}
	if g.BranchExists(branch) {
		if err := g.Checkout(branch); err != nil {
			return nil, err
		}
	} else {
		if err := g.CreateBranch(branch); err != nil {
			return nil, err
		}
		if err := g.Checkout(branch); err != nil {
			return nil, err
		}
		pub.Created = true
	}

	if err := g.ApplyPatchToIndex(patch); err != nil {
		return nil, err
	}
	if err := g.Commit(message); err != nil {
		return nil, err
	}

	sha, err := g.HeadCommit()
	if err != nil {
		return nil, err
	}
	pub.SHA = sha

	if err := g.Push(remote, branch, true); err != nil {
		return nil, err
	}
	return pub, nil
}
