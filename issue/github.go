package issue

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/go-github/v57/github"
)

// GitHubSource reads issues through the GitHub REST API.
type GitHubSource struct {
	client *github.Client
}

// NewGitHubSource wraps an authenticated go-github client.
func NewGitHubSource(client *github.Client) *GitHubSource {
	return &GitHubSource{client: client}
}

// GetIssue fetches issue number from repo ("owner/name").
func (s *GitHubSource) GetIssue(ctx context.Context, repo string, number int) (*Issue, error) {
	owner, name, err := SplitRepo(repo)
	if err != nil {
		return nil, err
	}

	gh, resp, err := s.client.Issues.Get(ctx, owner, name, number)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s#%d", ErrNotFound, repo, number)
		}
		var rateErr *github.RateLimitError
		if errors.As(err, &rateErr) {
			return nil, fmt.Errorf("%w: resets at %s", ErrRateLimited, rateErr.Rate.Reset.Time)
		}
		return nil, fmt.Errorf("get issue %s#%d: %w", repo, number, err)
	}
	if gh.IsPullRequest() {
		return nil, fmt.Errorf("%w: %s#%d", ErrIsPullRequest, repo, number)
	}

	return issueFromGitHub(gh), nil
}

func issueFromGitHub(gh *github.Issue) *Issue {
	iss := &Issue{
		Number: gh.GetNumber(),
		Title:  gh.GetTitle(),
		Body:   gh.GetBody(),
		URL:    gh.GetHTMLURL(),
		State:  gh.GetState(),
	}
	if gh.User != nil {
		iss.Author = gh.User.GetLogin()
	}
	for _, label := range gh.Labels {
		iss.Labels = append(iss.Labels, label.GetName())
	}
	return iss
}
