package context

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/go-github/v57/github"
	"github.com/randalmurphal/llmkit/model"
	"golang.org/x/oauth2"

	"github.com/randalmurphal/issueflow/auth"
	"github.com/randalmurphal/issueflow/config"
	"github.com/randalmurphal/issueflow/git"
	"github.com/randalmurphal/issueflow/issue"
	"github.com/randalmurphal/issueflow/llm"
	"github.com/randalmurphal/issueflow/notify"
	"github.com/randalmurphal/issueflow/patch"
	"github.com/randalmurphal/issueflow/plan"
	"github.com/randalmurphal/issueflow/pr"
	"github.com/randalmurphal/issueflow/prompt"
)

// Services wraps all issueflow services for convenient injection.
// Nil members are skipped by InjectAll.
type Services struct {
	Git      *git.Context
	Issues   issue.Source
	Planner  plan.Generator
	Differ   patch.Generator
	PR       pr.Provider
	Prompts  *prompt.Loader
	Notifier notify.Notifier
	Logger   *slog.Logger
}

// InjectAll adds all configured services to the context
func (s *Services) InjectAll(ctx context.Context) context.Context {
	if s.Git != nil {
		ctx = WithGit(ctx, s.Git)
	}
	if s.Issues != nil {
		ctx = WithIssues(ctx, s.Issues)
	}
	if s.Planner != nil {
		ctx = WithPlanner(ctx, s.Planner)
	}
	if s.Differ != nil {
		ctx = WithDiffer(ctx, s.Differ)
	}
	if s.PR != nil {
		ctx = WithPR(ctx, s.PR)
	}
	if s.Prompts != nil {
		ctx = WithPrompt(ctx, s.Prompts)
	}
	if s.Notifier != nil {
		ctx = WithNotifier(ctx, s.Notifier)
	}
	if s.Logger != nil {
		ctx = WithLogger(ctx, s.Logger)
	}
	return ctx
}

// NewServices creates the production services for repo ("owner/name")
// from validated settings: a GitHub client authenticated with a token or
// GitHub App, the Anthropic-backed planner and differ, the PR provider
// matching the origin remote, and notifiers for the configured URLs.
func NewServices(ctx context.Context, settings config.Settings, repo string, logger *slog.Logger) (*Services, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Services{Logger: logger}

	gitCtx, err := git.NewContext(settings.RepoPath)
	if err != nil {
		return nil, fmt.Errorf("open repository %s: %w", settings.RepoPath, err)
	}
	s.Git = gitCtx

	ts, err := tokenSource(ctx, settings)
	if err != nil {
		return nil, err
	}
	clientOpts := auth.DefaultClientOptions()
	clientOpts.Logger = logger
	ghClient := github.NewClient(auth.NewHTTPClient(ctx, ts, clientOpts))

	s.Issues = issue.NewGitHubSource(ghClient)

	s.PR, err = prProvider(gitCtx, ghClient, settings, repo)
	if err != nil {
		return nil, err
	}

	s.Prompts = prompt.NewLoader(gitCtx.RepoPath())
	client, err := llm.NewAnthropic(settings.AnthropicAPIKey,
		llm.WithPrompts(s.Prompts),
		llm.WithTierModel(model.TierThinking, settings.Model),
		llm.WithTierModel(model.TierDefault, settings.Model),
		llm.WithTierModel(model.TierFast, settings.FastModel),
		llm.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}
	s.Planner = client
	s.Differ = client

	s.Notifier = notifiers(settings, logger)
	return s, nil
}

func tokenSource(ctx context.Context, settings config.Settings) (oauth2.TokenSource, error) {
	if !settings.UsesGitHubApp() {
		return auth.StaticTokenSource(settings.GitHubToken)
	}
	key, err := os.ReadFile(settings.GitHubPrivateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("read GitHub App private key: %w", err)
	}
	return auth.NewAppTokenSource(ctx, auth.AppConfig{
		AppID:          settings.GitHubAppID,
		InstallationID: settings.GitHubInstallationID,
		PrivateKey:     key,
	})
}

// prProvider uses the shared GitHub client unless origin points at GitLab.
func prProvider(gitCtx *git.Context, ghClient *github.Client, settings config.Settings, repo string) (pr.Provider, error) {
	if remote, err := gitCtx.GetRemoteURL("origin"); err == nil {
		if platform, err := pr.DetectProvider(remote); err == nil && platform == pr.PlatformGitLab {
			return pr.NewGitLabProviderFromURL(os.Getenv("GITLAB_TOKEN"), remote)
		}
	}
	owner, name, err := issue.SplitRepo(repo)
	if err != nil {
		return nil, err
	}
	return pr.NewGitHubProviderWithClient(ghClient, owner, name)
}

func notifiers(settings config.Settings, logger *slog.Logger) notify.Notifier {
	list := []notify.Notifier{notify.NewLogNotifier(logger)}
	if settings.SlackWebhookURL != "" {
		list = append(list, notify.NewSlackNotifier(settings.SlackWebhookURL))
	}
	if settings.WebhookURL != "" {
		list = append(list, notify.NewWebhookNotifier(settings.WebhookURL, nil, nil))
	}
	return notify.NewMultiNotifier(list...)
}
