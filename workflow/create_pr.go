package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	devcontext "github.com/randalmurphal/issueflow/context"
	"github.com/randalmurphal/issueflow/git"
	"github.com/randalmurphal/issueflow/notify"
	"github.com/randalmurphal/issueflow/pr"
	"github.com/randalmurphal/issueflow/prompt"
)

// CreatePRNode publishes the diff on a branch and opens a pull request.
// Without an injected git repository the branch is assumed to exist on
// the remote already.
//
// Prerequisites: diff
// Updates: status, branch, pr_url, pr_data
func CreatePRNode(ctx context.Context, state State) (*Update, error) {
	if strings.TrimSpace(state.Diff) == "" {
		return Failed("No diff available; unable to create pull request."), nil
	}

	provider := devcontext.PR(ctx)
	if provider == nil {
		return Failed("Failed to create pull request: " + pr.ErrNoProvider.Error()), nil
	}

	cfg := NodeConfigFromContext(ctx)
	number, title, _ := state.IssueRef()

	branch := state.Branch
	if branch == "" {
		branch = git.DefaultBranchNamer().ForIssue(number, title)
	}

	if gitCtx := devcontext.Git(ctx); gitCtx != nil {
		pub, err := gitCtx.Publish(branch, state.Diff, commitMessage(state), cfg.Remote)
		if err != nil {
			return Failed("Failed to create pull request: " + err.Error()), nil
		}
		devcontext.Logger(ctx).Info("branch published",
			"branch", pub.Branch,
			"remote", pub.Remote,
			"sha", pub.SHA)
	}

	if title == "" {
		title = "Automated change"
	}
	opts := pr.NewBuilder(title).
		ForIssue(number).
		WithBody(prBody(ctx, state, number)).
		WithFooter().
		WithBase(cfg.BaseBranch).
		WithHead(branch).
		WithLabels(cfg.Labels...).
		AsDraft(cfg.Draft).
		Build()

	pull, err := provider.CreatePR(ctx, opts)
	if errors.Is(err, pr.ErrExists) {
		// A rerun after a partial failure finds the pull request it opened.
		existing, findErr := pr.FindOpen(ctx, provider, branch)
		switch {
		case findErr == nil:
			pull, err = existing, nil
		case errors.Is(findErr, pr.ErrClosed), errors.Is(findErr, pr.ErrMerged):
			err = fmt.Errorf("%w: #%d", findErr, existing.ID)
		}
	}
	if err != nil {
		return Failed("Failed to create pull request: " + err.Error()), nil
	}

	url := pull.WebURL()
	data := PRData{
		Number:  pull.ID,
		HTMLURL: url,
		State:   string(pull.State),
		Draft:   pull.Draft,
		Head:    branch,
		Base:    opts.Base,
	}

	event := notify.NewEvent(notify.EventPRCreated, ThreadIDFromContext(ctx), "Pull request opened: "+url)
	event.Repo = state.Repo
	event.IssueNumber = number
	event.Node = NodeCreatePR
	event.Metadata = map[string]any{"pr_url": url, "branch": branch}
	if err := devcontext.Notifier(ctx).Notify(ctx, event); err != nil {
		devcontext.Logger(ctx).Warn("notification failed", "event", event.Type, "error", err)
	}

	return NewUpdate().
		WithStatus(StatusPRCreated).
		WithBranch(branch).
		WithPR(url, data), nil
}

func commitMessage(state State) string {
	number, title, _ := state.IssueRef()
	var labels []string
	if state.Issue != nil {
		labels = state.Issue.Labels
	}
	if title == "" {
		title = "apply generated change"
	}

	msg := git.NewCommitMessage(git.CommitTypeForIssue(title, labels), title)
	if number > 0 {
		msg.WithIssueRef(fmt.Sprintf("#%d", number))
	}
	if state.Plan != nil && len(state.Plan.Steps) > 0 {
		msg.WithBody(strings.Join(state.Plan.Steps, "\n"))
	}
	return msg.String()
}

// prBody renders the pull request body from the plan. A broken template
// falls back to the plan as Markdown.
func prBody(ctx context.Context, state State, number int) string {
	vars := map[string]any{"IssueNumber": number}
	if p := state.Plan; p != nil {
		var done []string
		for _, item := range p.DefinitionOfDone {
			done = append(done, "- "+item)
		}
		vars["DefinitionOfDone"] = strings.Join(done, "\n")
		vars["Steps"] = p.Steps
		vars["Complexity"] = string(p.EstimatedComplexity)
	}

	body, err := devcontext.Prompt(ctx).LoadWithVars(prompt.PRBody, vars)
	if err == nil {
		return body
	}
	devcontext.Logger(ctx).Warn("pr body template failed", "error", err)
	return pr.NewBuilder("").WithSummary(state.Plan.Markdown(), nil).Build().Body
}
