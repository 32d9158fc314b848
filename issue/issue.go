package issue

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Issue is a tracked issue to be turned into a pull request.
type Issue struct {
	Number int      `json:"number"`
	Title  string   `json:"title"`
	Body   string   `json:"body,omitempty"`
	URL    string   `json:"url,omitempty"`
	State  string   `json:"state,omitempty"`
	Author string   `json:"author,omitempty"`
	Labels []string `json:"labels,omitempty"`
}

// Clone returns a deep copy of the issue.
func (i *Issue) Clone() *Issue {
	if i == nil {
		return nil
	}
	cp := *i
	if i.Labels != nil {
		cp.Labels = append([]string(nil), i.Labels...)
	}
	return &cp
}

// Source fetches issues from a tracker.
type Source interface {
	GetIssue(ctx context.Context, repo string, number int) (*Issue, error)
}

// SplitRepo splits "owner/name" into its parts.
func SplitRepo(repo string) (owner, name string, err error) {
	parts := strings.Split(strings.TrimSpace(repo), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidRepo, repo)
	}
	return parts[0], parts[1], nil
}

// StaticSource serves issues from memory. Useful for tests and dry runs.
type StaticSource struct {
	mu     sync.RWMutex
	issues map[string]*Issue
}

// NewStaticSource creates an empty StaticSource.
func NewStaticSource() *StaticSource {
	return &StaticSource{issues: make(map[string]*Issue)}
}

// Add registers an issue for repo.
func (s *StaticSource) Add(repo string, iss *Issue) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issues[staticKey(repo, iss.Number)] = iss.Clone()
}

// GetIssue returns a copy of the registered issue or ErrNotFound.
func (s *StaticSource) GetIssue(_ context.Context, repo string, number int) (*Issue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	iss, ok := s.issues[staticKey(repo, number)]
	if !ok {
		return nil, fmt.Errorf("%w: %s#%d", ErrNotFound, repo, number)
	}
	return iss.Clone(), nil
}

func staticKey(repo string, number int) string {
	return fmt.Sprintf("%s#%d", repo, number)
}
