package pr

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/xanzy/go-gitlab"
)

// GitLabProvider implements Provider for GitLab merge requests.
type GitLabProvider struct {
	client    *gitlab.Client
	projectID string // numeric ID or "namespace/project"
}

// NewGitLabProvider creates a new GitLab provider. baseURL is empty for
// gitlab.com.
func NewGitLabProvider(token, baseURL, projectID string) (*GitLabProvider, error) {
	if token == "" {
		return nil, fmt.Errorf("GitLab token is required")
	}
	if projectID == "" {
		return nil, fmt.Errorf("project ID is required")
	}

	var opts []gitlab.ClientOptionFunc
	if baseURL != "" {
		opts = append(opts, gitlab.WithBaseURL(baseURL))
	}
	client, err := gitlab.NewClient(token, opts...)
	if err != nil {
		return nil, fmt.Errorf("create GitLab client: %w", err)
	}

	return &GitLabProvider{client: client, projectID: projectID}, nil
}

// NewGitLabProviderFromURL creates a GitLab provider from a remote URL.
// Hosts other than gitlab.com are treated as self-hosted instances.
func NewGitLabProviderFromURL(token, remoteURL string) (*GitLabProvider, error) {
	remote, err := ParseRemote(remoteURL)
	if err != nil {
		return nil, fmt.Errorf("parse remote URL: %w", err)
	}
	var baseURL string
	if remote.Host != "gitlab.com" {
		baseURL = "https://" + remote.Host
	}
	return NewGitLabProvider(token, baseURL, remote.Owner+"/"+remote.Repo)
}

// CreatePR creates a new merge request.
func (p *GitLabProvider) CreatePR(ctx context.Context, opts Options) (*PullRequest, error) {
	target := opts.Base
	if target == "" {
		target = "main"
	}

	title := opts.Title
	if opts.Draft {
		title = "Draft: " + title
	}

	mrOpts := &gitlab.CreateMergeRequestOptions{
		Title:        gitlab.Ptr(title),
		Description:  gitlab.Ptr(opts.Body),
		SourceBranch: gitlab.Ptr(opts.Head),
		TargetBranch: gitlab.Ptr(target),
	}
	if len(opts.Labels) > 0 {
		mrOpts.Labels = gitlab.Ptr(gitlab.LabelOptions(opts.Labels))
	}
	// GitLab takes user IDs; non-numeric names are ignored.
	if ids := numericIDs(opts.Assignees); len(ids) > 0 {
		mrOpts.AssigneeIDs = gitlab.Ptr(ids)
	}
	if ids := numericIDs(opts.Reviewers); len(ids) > 0 {
		mrOpts.ReviewerIDs = gitlab.Ptr(ids)
	}

	mr, resp, err := p.client.MergeRequests.CreateMergeRequest(p.projectID, mrOpts, gitlab.WithContext(ctx))
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusConflict {
			return nil, ErrExists
		}
		if resp != nil && resp.StatusCode == http.StatusBadRequest && strings.Contains(err.Error(), "No commits between") {
			return nil, ErrNoChanges
		}
		return nil, fmt.Errorf("create MR: %w", err)
	}

	return fromGitLab(mr), nil
}

// GetPR retrieves a merge request by IID.
func (p *GitLabProvider) GetPR(ctx context.Context, id int) (*PullRequest, error) {
	mr, resp, err := p.client.MergeRequests.GetMergeRequest(p.projectID, id, nil, gitlab.WithContext(ctx))
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get MR: %w", err)
	}
	return fromGitLab(mr), nil
}

// ListPRs lists merge requests matching the filter.
func (p *GitLabProvider) ListPRs(ctx context.Context, filter Filter) ([]*PullRequest, error) {
	opts := &gitlab.ListProjectMergeRequestsOptions{
		ListOptions: gitlab.ListOptions{PerPage: 20},
	}
	switch filter.State {
	case StateOpen:
		opts.State = gitlab.Ptr("opened")
	case StateClosed, StateMerged:
		opts.State = gitlab.Ptr(string(filter.State))
	}
	if filter.Base != "" {
		opts.TargetBranch = gitlab.Ptr(filter.Base)
	}
	if filter.Head != "" {
		opts.SourceBranch = gitlab.Ptr(filter.Head)
	}
	if filter.Limit > 0 {
		opts.PerPage = filter.Limit
	}

	mrs, _, err := p.client.MergeRequests.ListProjectMergeRequests(p.projectID, opts, gitlab.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("list MRs: %w", err)
	}

	result := make([]*PullRequest, len(mrs))
	for i, mr := range mrs {
		result[i] = fromGitLab(mr)
	}
	return result, nil
}

// AddComment adds a note to a merge request.
func (p *GitLabProvider) AddComment(ctx context.Context, id int, body string) error {
	_, _, err := p.client.Notes.CreateMergeRequestNote(p.projectID, id,
		&gitlab.CreateMergeRequestNoteOptions{Body: gitlab.Ptr(body)}, gitlab.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("add comment: %w", err)
	}
	return nil
}

func numericIDs(names []string) []int {
	var ids []int
	for _, n := range names {
		if id, err := strconv.Atoi(n); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}

// gitlabStates maps merge request states onto State.
var gitlabStates = map[string]State{
	"opened": StateOpen,
	"merged": StateMerged,
	"closed": StateClosed,
	"locked": StateOpen,
}

func fromGitLab(mr *gitlab.MergeRequest) *PullRequest {
	result := &PullRequest{
		ID:      mr.IID,
		URL:     mr.WebURL,
		HTMLURL: mr.WebURL,
		Title:   mr.Title,
		Body:    mr.Description,
		Head:    mr.SourceBranch,
		Base:    mr.TargetBranch,
		Labels:  mr.Labels,
		Draft:   strings.HasPrefix(mr.Title, "Draft:") || strings.HasPrefix(mr.Title, "WIP:"),
	}

	if count, err := strconv.Atoi(mr.ChangesCount); err == nil {
		result.ChangedFiles = count
	}

	result.State = gitlabStates[mr.State]

	if mr.CreatedAt != nil {
		result.CreatedAt = *mr.CreatedAt
	}
	result.MergedAt = mr.MergedAt

	return result
}
