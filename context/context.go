package context

import (
	"context"
	"log/slog"

	"github.com/randalmurphal/issueflow/git"
	"github.com/randalmurphal/issueflow/issue"
	"github.com/randalmurphal/issueflow/notify"
	"github.com/randalmurphal/issueflow/patch"
	"github.com/randalmurphal/issueflow/plan"
	"github.com/randalmurphal/issueflow/pr"
	"github.com/randalmurphal/issueflow/prompt"
)

// serviceKey identifies one injected collaborator.
type serviceKey int

const (
	gitKey serviceKey = iota
	issuesKey
	plannerKey
	differKey
	prKey
	promptKey
	notifierKey
	loggerKey
)

func lookup[T any](ctx context.Context, key serviceKey) T {
	v, _ := ctx.Value(key).(T)
	return v
}

func must[T comparable](ctx context.Context, key serviceKey, what string) T {
	var zero T
	v := lookup[T](ctx, key)
	if v == zero {
		panic("issueflow/context: " + what + " not found in context")
	}
	return v
}

// WithGit attaches the repository the nodes operate on.
func WithGit(ctx context.Context, gitCtx *git.Context) context.Context {
	return context.WithValue(ctx, gitKey, gitCtx)
}

// Git returns the attached repository, or nil.
func Git(ctx context.Context) *git.Context { return lookup[*git.Context](ctx, gitKey) }

// MustGit is Git but panics when no repository is attached.
func MustGit(ctx context.Context) *git.Context {
	return must[*git.Context](ctx, gitKey, "git.Context")
}

// WithIssues attaches the issue source.
func WithIssues(ctx context.Context, src issue.Source) context.Context {
	return context.WithValue(ctx, issuesKey, src)
}

// Issues returns the issue source, or nil.
func Issues(ctx context.Context) issue.Source { return lookup[issue.Source](ctx, issuesKey) }

// WithPlanner attaches the plan generator.
func WithPlanner(ctx context.Context, g plan.Generator) context.Context {
	return context.WithValue(ctx, plannerKey, g)
}

// Planner returns the plan generator, or nil.
func Planner(ctx context.Context) plan.Generator { return lookup[plan.Generator](ctx, plannerKey) }

// WithDiffer attaches the diff generator.
func WithDiffer(ctx context.Context, g patch.Generator) context.Context {
	return context.WithValue(ctx, differKey, g)
}

// Differ returns the diff generator, or nil.
func Differ(ctx context.Context) patch.Generator { return lookup[patch.Generator](ctx, differKey) }

// WithPR attaches the pull request provider.
func WithPR(ctx context.Context, provider pr.Provider) context.Context {
	return context.WithValue(ctx, prKey, provider)
}

// PR returns the pull request provider, or nil.
func PR(ctx context.Context) pr.Provider { return lookup[pr.Provider](ctx, prKey) }

// MustPR is PR but panics when no provider is attached.
func MustPR(ctx context.Context) pr.Provider {
	return must[pr.Provider](ctx, prKey, "pr.Provider")
}

// WithPrompt attaches a prompt loader.
func WithPrompt(ctx context.Context, loader *prompt.Loader) context.Context {
	return context.WithValue(ctx, promptKey, loader)
}

// Prompt returns the attached loader, falling back to the embedded prompts.
func Prompt(ctx context.Context) *prompt.Loader {
	if loader := lookup[*prompt.Loader](ctx, promptKey); loader != nil {
		return loader
	}
	return prompt.NewLoader("")
}

// WithNotifier attaches the event notifier.
func WithNotifier(ctx context.Context, n notify.Notifier) context.Context {
	return context.WithValue(ctx, notifierKey, n)
}

// Notifier returns the attached notifier. It never returns nil.
func Notifier(ctx context.Context) notify.Notifier {
	if n := lookup[notify.Notifier](ctx, notifierKey); n != nil {
		return n
	}
	return notify.NopNotifier{}
}

// WithLogger attaches the pipeline logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// Logger returns the attached logger, or slog.Default().
func Logger(ctx context.Context) *slog.Logger {
	if l := lookup[*slog.Logger](ctx, loggerKey); l != nil {
		return l
	}
	return slog.Default()
}
