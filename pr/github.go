package pr

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"
)

// GitHubProvider implements Provider for GitHub repositories.
type GitHubProvider struct {
	client *github.Client
	owner  string
	repo   string
}

// NewGitHubProvider creates a provider authenticated with a personal
// access token or installation token.
func NewGitHubProvider(token, owner, repo string) (*GitHubProvider, error) {
	if token == "" {
		return nil, fmt.Errorf("GitHub token is required")
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	return NewGitHubProviderWithClient(github.NewClient(oauth2.NewClient(context.Background(), ts)), owner, repo)
}

// NewGitHubProviderWithClient creates a provider over an existing client.
func NewGitHubProviderWithClient(client *github.Client, owner, repo string) (*GitHubProvider, error) {
	if client == nil {
		return nil, fmt.Errorf("GitHub client is required")
	}
	if owner == "" || repo == "" {
		return nil, fmt.Errorf("owner and repo are required")
	}
	return &GitHubProvider{client: client, owner: owner, repo: repo}, nil
}

// NewGitHubProviderFromURL creates a GitHub provider from a remote URL.
// Example: "https://github.com/acme/widgets.git"
func NewGitHubProviderFromURL(token, remoteURL string) (*GitHubProvider, error) {
	owner, repo, err := ParseRepoFromURL(remoteURL)
	if err != nil {
		return nil, fmt.Errorf("parse remote URL: %w", err)
	}
	return NewGitHubProvider(token, owner, repo)
}

// CreatePR opens a pull request, then applies labels, reviewers and
// assignees. Those follow-up calls only log on failure.
func (p *GitHubProvider) CreatePR(ctx context.Context, opts Options) (*PullRequest, error) {
	base := opts.Base
	if base == "" {
		base = "main"
	}

	created, resp, err := p.client.PullRequests.Create(ctx, p.owner, p.repo, &github.NewPullRequest{
		Title: github.String(opts.Title),
		Body:  github.String(opts.Body),
		Base:  github.String(base),
		Head:  github.String(opts.Head),
		Draft: github.Bool(opts.Draft),
	})
	if err != nil {
		return nil, classifyCreateError(resp, err)
	}

	n := created.GetNumber()
	followUps := []struct {
		what  string
		items []string
		call  func() error
	}{
		{"labels", opts.Labels, func() error {
			_, _, err := p.client.Issues.AddLabelsToIssue(ctx, p.owner, p.repo, n, opts.Labels)
			return err
		}},
		{"reviewers", opts.Reviewers, func() error {
			_, _, err := p.client.PullRequests.RequestReviewers(ctx, p.owner, p.repo, n,
				github.ReviewersRequest{Reviewers: opts.Reviewers})
			return err
		}},
		{"assignees", opts.Assignees, func() error {
			_, _, err := p.client.Issues.AddAssignees(ctx, p.owner, p.repo, n, opts.Assignees)
			return err
		}},
	}
	for _, f := range followUps {
		if len(f.items) == 0 {
			continue
		}
		if err := f.call(); err != nil {
			slog.Warn("pull request follow-up failed", "step", f.what, "pr", n, "values", f.items, "error", err)
		}
	}

	return fromGitHub(created), nil
}

// classifyCreateError maps GitHub's 422 validation messages onto
// ErrExists and ErrNoChanges.
func classifyCreateError(resp *github.Response, err error) error {
	if resp != nil && resp.StatusCode == http.StatusUnprocessableEntity {
		msg := err.Error()
		switch {
		case strings.Contains(msg, "A pull request already exists"):
			return ErrExists
		case strings.Contains(msg, "No commits between"):
			return ErrNoChanges
		}
	}
	return fmt.Errorf("create PR: %w", err)
}

// GetPR retrieves a pull request by number.
func (p *GitHubProvider) GetPR(ctx context.Context, id int) (*PullRequest, error) {
	pr, resp, err := p.client.PullRequests.Get(ctx, p.owner, p.repo, id)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get PR: %w", err)
	}
	return fromGitHub(pr), nil
}

// ListPRs lists pull requests matching the filter.
func (p *GitHubProvider) ListPRs(ctx context.Context, filter Filter) ([]*PullRequest, error) {
	opts := &github.PullRequestListOptions{
		State:       "all",
		Base:        filter.Base,
		ListOptions: github.ListOptions{PerPage: 30},
	}
	if filter.State == StateOpen || filter.State == StateClosed {
		opts.State = string(filter.State)
	}
	if filter.Head != "" {
		// GitHub filters by "owner:branch".
		opts.Head = p.owner + ":" + filter.Head
	}
	if filter.Limit > 0 {
		opts.PerPage = filter.Limit
	}

	prs, _, err := p.client.PullRequests.List(ctx, p.owner, p.repo, opts)
	if err != nil {
		return nil, fmt.Errorf("list PRs: %w", err)
	}

	result := make([]*PullRequest, 0, len(prs))
	for _, pr := range prs {
		converted := fromGitHub(pr)
		if filter.State == StateMerged && converted.State != StateMerged {
			continue
		}
		result = append(result, converted)
	}
	return result, nil
}

// AddComment adds a comment to a pull request.
func (p *GitHubProvider) AddComment(ctx context.Context, id int, body string) error {
	_, _, err := p.client.Issues.CreateComment(ctx, p.owner, p.repo, id,
		&github.IssueComment{Body: github.String(body)})
	if err != nil {
		return fmt.Errorf("add comment: %w", err)
	}
	return nil
}

func fromGitHub(gh *github.PullRequest) *PullRequest {
	out := &PullRequest{
		ID:           gh.GetNumber(),
		URL:          gh.GetURL(),
		HTMLURL:      gh.GetHTMLURL(),
		Title:        gh.GetTitle(),
		Body:         gh.GetBody(),
		Draft:        gh.GetDraft(),
		Head:         gh.GetHead().GetRef(),
		Base:         gh.GetBase().GetRef(),
		CreatedAt:    gh.GetCreatedAt().Time,
		Additions:    gh.GetAdditions(),
		Deletions:    gh.GetDeletions(),
		ChangedFiles: gh.GetChangedFiles(),
		State:        StateOpen,
	}
	if gh.GetState() == "closed" {
		out.State = StateClosed
	}
	if gh.MergedAt != nil {
		merged := gh.MergedAt.Time
		out.MergedAt = &merged
		out.State = StateMerged
	} else if gh.GetMerged() {
		out.State = StateMerged
	}
	for _, l := range gh.Labels {
		out.Labels = append(out.Labels, l.GetName())
	}
	return out
}
