package pr

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// State represents the state of a pull request.
type State string

const (
	StateOpen   State = "open"
	StateClosed State = "closed"
	StateMerged State = "merged"
)

// Provider creates and inspects pull requests.
// Implementations exist for GitHub and GitLab.
type Provider interface {
	// CreatePR creates a new pull request.
	CreatePR(ctx context.Context, opts Options) (*PullRequest, error)

	// GetPR retrieves a pull request by number.
	GetPR(ctx context.Context, id int) (*PullRequest, error)

	// ListPRs lists pull requests matching the filter.
	ListPRs(ctx context.Context, filter Filter) ([]*PullRequest, error)

	// AddComment adds a comment to a pull request.
	AddComment(ctx context.Context, id int, body string) error
}

// Options configures pull request creation.
type Options struct {
	Title     string // required
	Body      string // markdown
	Base      string // default "main"
	Head      string // source branch
	Labels    []string
	Reviewers []string
	Assignees []string
	Draft     bool
}

// Filter configures pull request listing.
type Filter struct {
	State State // empty = all
	Base  string
	Head  string
	Limit int // 0 = provider default
}

// PullRequest represents a pull request on the hosting service.
type PullRequest struct {
	ID           int
	URL          string // API URL
	HTMLURL      string // web URL
	Title        string
	Body         string
	State        State
	Draft        bool
	Head         string
	Base         string
	CreatedAt    time.Time
	MergedAt     *time.Time
	Additions    int
	Deletions    int
	ChangedFiles int
	Labels       []string
}

// WebURL returns the browser URL, falling back to the API URL.
func (p *PullRequest) WebURL() string {
	if p.HTMLURL != "" {
		return p.HTMLURL
	}
	return p.URL
}

// FindOpen returns the open pull request for head. When head only has
// finished pull requests it returns ErrMerged or ErrClosed for the most
// recent one, and ErrNotFound when head has none.
func FindOpen(ctx context.Context, p Provider, head string) (*PullRequest, error) {
	prs, err := p.ListPRs(ctx, Filter{State: StateOpen, Head: head, Limit: 1})
	if err != nil {
		return nil, err
	}
	for _, pr := range prs {
		if pr.Head == head {
			return pr, nil
		}
	}

	all, err := p.ListPRs(ctx, Filter{Head: head})
	if err != nil {
		return nil, err
	}
	var latest *PullRequest
	for _, pr := range all {
		if pr.Head != head {
			continue
		}
		if latest == nil || pr.ID > latest.ID {
			latest = pr
		}
	}
	switch {
	case latest == nil:
		return nil, ErrNotFound
	case latest.State == StateMerged:
		return latest, ErrMerged
	case latest.State == StateClosed:
		return latest, ErrClosed
	}
	return nil, ErrNotFound
}

// Builder constructs PR options using a fluent interface.
type Builder struct {
	opts Options
}

// NewBuilder creates a new PR builder with the given title.
func NewBuilder(title string) *Builder {
	return &Builder{
		opts: Options{
			Title: title,
			Base:  "main",
		},
	}
}

// ForIssue prefixes the title with the issue reference.
// Example: "Fix crash" -> "#42: Fix crash"
func (b *Builder) ForIssue(number int) *Builder {
	if number > 0 {
		b.opts.Title = fmt.Sprintf("#%d: %s", number, b.opts.Title)
	}
	return b
}

// WithBody sets the PR body.
func (b *Builder) WithBody(body string) *Builder {
	b.opts.Body = body
	return b
}

// WithSummary creates a formatted body with summary and a change list.
func (b *Builder) WithSummary(summary string, changes []string) *Builder {
	var body strings.Builder

	body.WriteString("## Summary\n\n")
	body.WriteString(summary)

	if len(changes) > 0 {
		body.WriteString("\n\n## Changes\n\n")
		for _, change := range changes {
			body.WriteString("- ")
			body.WriteString(change)
			body.WriteString("\n")
		}
	}

	b.opts.Body = body.String()
	return b
}

// WithFooter appends the generated-by footer to the body.
func (b *Builder) WithFooter() *Builder {
	b.opts.Body = strings.TrimRight(b.opts.Body, "\n") + "\n\n---\n*Generated by issueflow*"
	return b
}

// WithBase sets the target branch. Empty keeps the current value.
func (b *Builder) WithBase(base string) *Builder {
	if base != "" {
		b.opts.Base = base
	}
	return b
}

// WithHead sets the source branch.
func (b *Builder) WithHead(head string) *Builder {
	b.opts.Head = head
	return b
}

// WithLabels adds labels.
func (b *Builder) WithLabels(labels ...string) *Builder {
	b.opts.Labels = append(b.opts.Labels, labels...)
	return b
}

// WithReviewers adds reviewers.
func (b *Builder) WithReviewers(reviewers ...string) *Builder {
	b.opts.Reviewers = append(b.opts.Reviewers, reviewers...)
	return b
}

// WithAssignees adds assignees.
func (b *Builder) WithAssignees(assignees ...string) *Builder {
	b.opts.Assignees = append(b.opts.Assignees, assignees...)
	return b
}

// AsDraft creates as a draft PR.
func (b *Builder) AsDraft(draft bool) *Builder {
	b.opts.Draft = draft
	return b
}

// Build returns the constructed PR options.
func (b *Builder) Build() Options {
	return b.opts
}
