package integrationtest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-github/v57/github"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"

	"github.com/randalmurphal/issueflow/auth"
	devcontext "github.com/randalmurphal/issueflow/context"
	"github.com/randalmurphal/issueflow/git"
	"github.com/randalmurphal/issueflow/issue"
	"github.com/randalmurphal/issueflow/llm"
	"github.com/randalmurphal/issueflow/notify"
	"github.com/randalmurphal/issueflow/pr"
	"github.com/randalmurphal/issueflow/prompt"
	"github.com/randalmurphal/issueflow/testutil"
	"github.com/randalmurphal/issueflow/workflow"
)

const (
	testToken = "test-token"
	testRepo  = "acme/widgets"
)

// =============================================================================
// Model double
// =============================================================================

// scriptedModel answers plan prompts with planAnswer and every other prompt
// with diffAnswer.
type scriptedModel struct {
	planAnswer string
	diffAnswer string

	mu    sync.Mutex
	calls int
}

func (m *scriptedModel) GenerateContent(_ context.Context, messages []llms.MessageContent, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	answer := m.diffAnswer
	if len(messages) > 0 && strings.Contains(messageText(messages[0]), "definition_of_done") {
		answer = m.planAnswer
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: answer}}}, nil
}

func (m *scriptedModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

func (m *scriptedModel) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func messageText(m llms.MessageContent) string {
	var b strings.Builder
	for _, part := range m.Parts {
		if tc, ok := part.(llms.TextContent); ok {
			b.WriteString(tc.Text)
		}
	}
	return b.String()
}

const planAnswer = "I looked at the repository.\n```json\n" +
	`{"definition_of_done": ["README mentions issueflow"], "steps": ["Append a line to README.md"], "target_files": ["README.md"], "estimated_complexity": "Low"}` +
	"\n```"

var diffAnswer = "```diff\n" + testutil.SampleDiff + "```\n"

// =============================================================================
// GitHub API double
// =============================================================================

// fakeGitHub serves the handful of REST endpoints the pipeline uses.
type fakeGitHub struct {
	t      *testing.T
	server *httptest.Server

	// existingPR makes pull request creation fail with 422 and lists an
	// open pull request for the head branch instead.
	existingPR bool
	// missingIssue makes the issue endpoint return 404.
	missingIssue bool

	mu       sync.Mutex
	authz    []string
	created  []github.NewPullRequest
	labelled map[int][]string
}

func newFakeGitHub(t *testing.T) *fakeGitHub {
	t.Helper()
	f := &fakeGitHub{t: t, labelled: map[int][]string{}}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/acme/widgets/issues/7", f.getIssue)
	mux.HandleFunc("POST /repos/acme/widgets/pulls", f.createPull)
	mux.HandleFunc("GET /repos/acme/widgets/pulls", f.listPulls)
	mux.HandleFunc("POST /repos/acme/widgets/issues/{number}/labels", f.addLabels)

	f.server = httptest.NewServer(f.recordAuth(mux))
	t.Cleanup(f.server.Close)
	return f
}

// Client returns a go-github client pointed at the fake, authenticated the
// way production clients are.
func (f *fakeGitHub) Client(ctx context.Context) *github.Client {
	f.t.Helper()
	ts, err := auth.StaticTokenSource(testToken)
	require.NoError(f.t, err)

	opts := auth.DefaultClientOptions()
	opts.RetryMax = 0
	client := github.NewClient(auth.NewHTTPClient(ctx, ts, opts))

	base, err := url.Parse(f.server.URL + "/")
	require.NoError(f.t, err)
	client.BaseURL = base
	return client
}

func (f *fakeGitHub) recordAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.authz = append(f.authz, r.Header.Get("Authorization"))
		f.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (f *fakeGitHub) getIssue(w http.ResponseWriter, _ *http.Request) {
	if f.missingIssue {
		writeJSON(w, http.StatusNotFound, map[string]any{"message": "Not Found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"number":   7,
		"title":    "Fix greeting punctuation",
		"body":     "Greet() should end with an exclamation mark.",
		"state":    "open",
		"html_url": "https://github.com/acme/widgets/issues/7",
		"user":     map[string]any{"login": "octocat"},
		"labels":   []map[string]any{{"name": "bug"}},
	})
}

func (f *fakeGitHub) createPull(w http.ResponseWriter, r *http.Request) {
	var req github.NewPullRequest
	body, _ := io.ReadAll(r.Body)
	if err := json.Unmarshal(body, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": err.Error()})
		return
	}

	f.mu.Lock()
	f.created = append(f.created, req)
	f.mu.Unlock()

	if f.existingPR {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"message": "A pull request already exists for acme:" + req.GetHead() + ".",
		})
		return
	}
	writeJSON(w, http.StatusCreated, pullJSON(12, req.GetHead(), req.GetBase()))
}

func (f *fakeGitHub) listPulls(w http.ResponseWriter, r *http.Request) {
	head := strings.TrimPrefix(r.URL.Query().Get("head"), "acme:")
	writeJSON(w, http.StatusOK, []map[string]any{pullJSON(3, head, "main")})
}

func (f *fakeGitHub) addLabels(w http.ResponseWriter, r *http.Request) {
	var labels []string
	if err := json.NewDecoder(r.Body).Decode(&labels); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": err.Error()})
		return
	}
	var number int
	fmt.Sscanf(r.PathValue("number"), "%d", &number)

	f.mu.Lock()
	f.labelled[number] = append(f.labelled[number], labels...)
	f.mu.Unlock()

	out := make([]map[string]any, 0, len(labels))
	for _, l := range labels {
		out = append(out, map[string]any{"name": l})
	}
	writeJSON(w, http.StatusOK, out)
}

func (f *fakeGitHub) Created() []github.NewPullRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]github.NewPullRequest(nil), f.created...)
}

func (f *fakeGitHub) Labels(number int) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.labelled[number]...)
}

func (f *fakeGitHub) AuthHeaders() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.authz...)
}

func pullJSON(number int, head, base string) map[string]any {
	return map[string]any{
		"number":   number,
		"url":      fmt.Sprintf("https://api.github.com/repos/acme/widgets/pulls/%d", number),
		"html_url": fmt.Sprintf("https://github.com/acme/widgets/pull/%d", number),
		"state":    "open",
		"head":     map[string]any{"ref": head},
		"base":     map[string]any{"ref": base},
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// =============================================================================
// Environment
// =============================================================================

// env is a complete pipeline environment: a git repository with a bare
// origin, the fake GitHub API and an LLM client over scriptedModel.
type env struct {
	repo     string
	remote   string
	github   *fakeGitHub
	model    *scriptedModel
	recorder *notify.Recorder
	ctx      context.Context
}

func newEnv(t *testing.T) *env {
	t.Helper()

	repo := testutil.SetupTestRepo(t)
	e := &env{
		repo:     repo,
		remote:   testutil.SetupRemote(t, repo),
		github:   newFakeGitHub(t),
		model:    &scriptedModel{planAnswer: planAnswer, diffAnswer: diffAnswer},
		recorder: &notify.Recorder{},
	}
	e.ctx = e.inject(t, testutil.TestContext(t))
	return e
}

func (e *env) inject(t *testing.T, ctx context.Context) context.Context {
	t.Helper()

	gitCtx, err := git.NewContext(e.repo)
	require.NoError(t, err)

	client := e.github.Client(ctx)
	provider, err := pr.NewGitHubProviderWithClient(client, "acme", "widgets")
	require.NoError(t, err)

	logger := testutil.TestLogger(t)
	prompts := prompt.NewLoader(e.repo)
	model := llm.New(e.model, llm.WithPrompts(prompts), llm.WithLogger(logger))

	services := &devcontext.Services{
		Git:      gitCtx,
		Issues:   issue.NewGitHubSource(client),
		Planner:  model,
		Differ:   model,
		PR:       provider,
		Prompts:  prompts,
		Notifier: notify.NewMultiNotifier(notify.NewLogNotifier(logger), e.recorder),
		Logger:   logger,
	}
	ctx = services.InjectAll(ctx)

	cfg := workflow.DefaultNodeConfig()
	cfg.RepoRoot = e.repo
	return workflow.WithNodeConfig(ctx, cfg)
}

func (e *env) branch() string {
	return git.DefaultBranchNamer().ForIssue(7, "Fix greeting punctuation")
}
