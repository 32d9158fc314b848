package pr

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGitLabProvider_CreatePR(t *testing.T) {
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/merge_requests") {
			assert.Equal(t, "token", r.Header.Get("PRIVATE-TOKEN"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{
				"iid": 7,
				"title": "Draft: #42: Fix",
				"state": "opened",
				"web_url": "https://gitlab.example.com/group/project/-/merge_requests/7",
				"source_branch": "issueflow/issue-42-fix",
				"target_branch": "develop",
				"labels": ["issueflow"]
			}`))
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p, err := NewGitLabProvider("token", srv.URL, "group/project")
	require.NoError(t, err)

	got, err := p.CreatePR(context.Background(), Options{
		Title:  "#42: Fix",
		Base:   "develop",
		Head:   "issueflow/issue-42-fix",
		Labels: []string{"issueflow"},
		Draft:  true,
	})
	require.NoError(t, err)

	assert.Equal(t, 7, got.ID)
	assert.Equal(t, StateOpen, got.State)
	assert.True(t, got.Draft)
	assert.Equal(t, "https://gitlab.example.com/group/project/-/merge_requests/7", got.WebURL())
	assert.Equal(t, []string{"issueflow"}, got.Labels)

	assert.Equal(t, "Draft: #42: Fix", gotBody["title"])
	assert.Equal(t, "develop", gotBody["target_branch"])
	assert.Equal(t, "issueflow/issue-42-fix", gotBody["source_branch"])
}

func TestGitLabProvider_CreatePR_Conflict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			w.WriteHeader(http.StatusConflict)
			_, _ = w.Write([]byte(`{"message": ["Another open merge request already exists for this source branch"]}`))
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p, err := NewGitLabProvider("token", srv.URL, "group/project")
	require.NoError(t, err)

	_, err = p.CreatePR(context.Background(), Options{Title: "t", Head: "b"})
	assert.ErrorIs(t, err, ErrExists)
}

func TestNewGitLabProvider_Validation(t *testing.T) {
	_, err := NewGitLabProvider("", "", "group/project")
	assert.Error(t, err)

	_, err = NewGitLabProvider("token", "", "")
	assert.Error(t, err)
}

func TestNewGitLabProviderFromURL(t *testing.T) {
	p, err := NewGitLabProviderFromURL("token", "https://gitlab.example.com/group/project.git")
	require.NoError(t, err)
	assert.Equal(t, "group/project", p.projectID)
	assert.Equal(t, "https://gitlab.example.com/api/v4/", p.client.BaseURL().String())
}
