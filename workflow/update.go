package workflow

import (
	"github.com/randalmurphal/issueflow/issue"
	"github.com/randalmurphal/issueflow/plan"
)

// Update is the partial result a node returns. Nil pointers, nil slices and
// nil maps are absent and leave the state untouched; everything present
// overwrites. Trace entries are appended rather than overwritten, and
// ClearError is the only way to remove a field.
type Update struct {
	Repo        *string
	IssueNumber *int
	IssueTitle  *string
	IssueBody   *string
	Issue       *issue.Issue

	Status     *string
	Error      *string
	ClearError bool

	Plan         *plan.Plan
	TargetFiles  []string
	FileContents map[string]string
	Diff         *string
	Branch       *string
	PRURL        *string
	PRData       *PRData

	// Values merge key by key into State.Values.
	Values map[string]any

	// Trace is appended to State.Trace.
	Trace []string
}

// NewUpdate returns an empty update.
func NewUpdate() *Update {
	return &Update{}
}

// Failed returns the update nodes use to report a failure.
func Failed(msg string) *Update {
	return NewUpdate().WithStatus(StatusError).WithError(msg)
}

// WithStatus sets the status.
func (u *Update) WithStatus(status string) *Update {
	u.Status = &status
	return u
}

// WithError sets the error message.
func (u *Update) WithError(msg string) *Update {
	u.Error = &msg
	u.ClearError = false
	return u
}

// ClearingError marks the error field for removal.
func (u *Update) ClearingError() *Update {
	u.Error = nil
	u.ClearError = true
	return u
}

// WithIssue sets the issue object along with the flat title and body.
func (u *Update) WithIssue(iss *issue.Issue) *Update {
	u.Issue = iss.Clone()
	if iss != nil {
		u.IssueTitle = &iss.Title
		u.IssueBody = &iss.Body
	}
	return u
}

// WithPlan sets the plan.
func (u *Update) WithPlan(p *plan.Plan) *Update {
	u.Plan = p.Clone()
	return u
}

// WithTargetFiles sets the target files. An empty call sets an empty list.
func (u *Update) WithTargetFiles(paths ...string) *Update {
	u.TargetFiles = append([]string{}, paths...)
	return u
}

// WithFileContents sets the file contents map.
func (u *Update) WithFileContents(files map[string]string) *Update {
	u.FileContents = cloneStringMap(files)
	if u.FileContents == nil {
		u.FileContents = map[string]string{}
	}
	return u
}

// WithDiff sets the diff.
func (u *Update) WithDiff(diff string) *Update {
	u.Diff = &diff
	return u
}

// WithBranch sets the head branch.
func (u *Update) WithBranch(branch string) *Update {
	u.Branch = &branch
	return u
}

// WithPR sets the pull request URL and data.
func (u *Update) WithPR(url string, data PRData) *Update {
	u.PRURL = &url
	u.PRData = &data
	return u
}

// WithValue sets one open-ended value.
func (u *Update) WithValue(key string, value any) *Update {
	if u.Values == nil {
		u.Values = make(map[string]any)
	}
	u.Values[key] = value
	return u
}

// WithTrace appends node names to the trace.
func (u *Update) WithTrace(names ...string) *Update {
	u.Trace = append(u.Trace, names...)
	return u
}

// Replace converts a full state returned by a node into an update. String
// and number fields are overwritten, an empty Error clears the error, and
// nil pointer, slice or map fields are treated as absent. Values merge by
// key. Only trace entries beyond base's trace are appended.
func Replace(base, next State) *Update {
	n := next.Clone()
	u := &Update{
		Repo:         &n.Repo,
		IssueNumber:  &n.IssueNumber,
		IssueTitle:   &n.IssueTitle,
		IssueBody:    &n.IssueBody,
		Issue:        n.Issue,
		Status:       &n.Status,
		Plan:         n.Plan,
		TargetFiles:  n.TargetFiles,
		FileContents: n.FileContents,
		Diff:         &n.Diff,
		Branch:       &n.Branch,
		PRURL:        &n.PRURL,
		PRData:       n.PRData,
		Values:       n.Values,
	}
	if n.Error == "" {
		u.ClearError = true
	} else {
		u.Error = &n.Error
	}
	if len(n.Trace) > len(base.Trace) {
		u.Trace = n.Trace[len(base.Trace):]
	}
	return u
}

// Apply merges u into a copy of s and returns it. s is not modified.
func (s State) Apply(u *Update) State {
	out := s.Clone()
	if u == nil {
		return out
	}

	setString(&out.Repo, u.Repo)
	if u.IssueNumber != nil {
		out.IssueNumber = *u.IssueNumber
	}
	setString(&out.IssueTitle, u.IssueTitle)
	setString(&out.IssueBody, u.IssueBody)
	if u.Issue != nil {
		out.Issue = u.Issue.Clone()
	}

	setString(&out.Status, u.Status)
	if u.ClearError {
		out.Error = ""
	}
	setString(&out.Error, u.Error)

	if u.Plan != nil {
		out.Plan = u.Plan.Clone()
	}
	if u.TargetFiles != nil {
		out.TargetFiles = cloneStrings(u.TargetFiles)
	}
	if u.FileContents != nil {
		out.FileContents = cloneStringMap(u.FileContents)
	}
	setString(&out.Diff, u.Diff)
	setString(&out.Branch, u.Branch)
	setString(&out.PRURL, u.PRURL)
	if u.PRData != nil {
		pd := *u.PRData
		out.PRData = &pd
	}

	if u.Values != nil {
		if out.Values == nil {
			out.Values = make(map[string]any, len(u.Values))
		}
		for k, v := range u.Values {
			out.Values[k] = cloneValue(v)
		}
	}

	if len(u.Trace) > 0 {
		out.Trace = append(out.Trace, u.Trace...)
	}

	return out
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
