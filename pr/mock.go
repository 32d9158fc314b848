package pr

import (
	"context"
	"fmt"
	"sync"
)

// MockProvider is an in-memory Provider for tests. Func fields override
// the default behavior; created pull requests are recorded.
type MockProvider struct {
	CreatePRFunc   func(ctx context.Context, opts Options) (*PullRequest, error)
	GetPRFunc      func(ctx context.Context, id int) (*PullRequest, error)
	ListPRsFunc    func(ctx context.Context, filter Filter) ([]*PullRequest, error)
	AddCommentFunc func(ctx context.Context, id int, body string) error

	mu       sync.Mutex
	created  []*PullRequest
	comments map[int][]string
}

// NewMockProvider creates an empty mock provider.
func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

// CreatePR implements Provider.
func (m *MockProvider) CreatePR(ctx context.Context, opts Options) (*PullRequest, error) {
	if m.CreatePRFunc != nil {
		return m.CreatePRFunc(ctx, opts)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	id := len(m.created) + 1
	pr := &PullRequest{
		ID:      id,
		URL:     fmt.Sprintf("https://example.com/api/pulls/%d", id),
		HTMLURL: fmt.Sprintf("https://example.com/pull/%d", id),
		Title:   opts.Title,
		Body:    opts.Body,
		State:   StateOpen,
		Draft:   opts.Draft,
		Head:    opts.Head,
		Base:    opts.Base,
		Labels:  append([]string(nil), opts.Labels...),
	}
	m.created = append(m.created, pr)
	return pr, nil
}

// GetPR implements Provider.
func (m *MockProvider) GetPR(ctx context.Context, id int) (*PullRequest, error) {
	if m.GetPRFunc != nil {
		return m.GetPRFunc(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, pr := range m.created {
		if pr.ID == id {
			return pr, nil
		}
	}
	return nil, ErrNotFound
}

// ListPRs implements Provider.
func (m *MockProvider) ListPRs(ctx context.Context, filter Filter) ([]*PullRequest, error) {
	if m.ListPRsFunc != nil {
		return m.ListPRsFunc(ctx, filter)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*PullRequest
	for _, pr := range m.created {
		if filter.Head != "" && pr.Head != filter.Head {
			continue
		}
		if filter.State != "" && pr.State != filter.State {
			continue
		}
		result = append(result, pr)
	}
	return result, nil
}

// AddComment implements Provider.
func (m *MockProvider) AddComment(ctx context.Context, id int, body string) error {
	if m.AddCommentFunc != nil {
		return m.AddCommentFunc(ctx, id, body)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.comments == nil {
		m.comments = make(map[int][]string)
	}
	m.comments[id] = append(m.comments[id], body)
	return nil
}

// Created returns the pull requests created so far.
func (m *MockProvider) Created() []*PullRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*PullRequest(nil), m.created...)
}

// Comments returns the comments added to a pull request.
func (m *MockProvider) Comments(id int) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.comments[id]...)
}
