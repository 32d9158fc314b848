package workflow

import (
	"context"
	"errors"
	"strconv"

	devcontext "github.com/randalmurphal/issueflow/context"
	"github.com/randalmurphal/issueflow/plan"
)

// Placeholders used when the state carries no issue details.
const (
	defaultIssueTitle  = "Unknown Title"
	defaultIssueBody   = "No description provided."
	defaultIssueNumber = "Unknown"
)

// errNoPlanner is reported when no plan generator was injected.
var errNoPlanner = errors.New("no plan generator configured")

// PlanIssueNode asks the plan generator for an implementation plan.
//
// Updates: status, plan, target_files (from the plan when the state has none)
func PlanIssueNode(ctx context.Context, state State) (*Update, error) {
	number, title, body := state.IssueRef()
	req := plan.Request{
		Number: defaultIssueNumber,
		Title:  title,
		Body:   body,
	}
	if number != 0 {
		req.Number = strconv.Itoa(number)
	}
	if req.Title == "" {
		req.Title = defaultIssueTitle
	}
	if req.Body == "" {
		req.Body = defaultIssueBody
	}

	cfg := NodeConfigFromContext(ctx)
	repoCtx, err := RepositoryContext(repoRoot(ctx), cfg.MaxContextFiles)
	if err != nil {
		devcontext.Logger(ctx).Warn("repository context unavailable", "error", err)
	}
	req.RepoContext = repoCtx

	generator := devcontext.Planner(ctx)
	if generator == nil {
		return Failed("Failed to generate plan: " + errNoPlanner.Error()), nil
	}

	var p *plan.Plan
	err = callWithAttempts(ctx, cfg.MaxAttempts, "generate plan", func() error {
		var genErr error
		if p, genErr = generator.GeneratePlan(ctx, req); genErr != nil {
			return genErr
		}
		return p.Validate()
	})
	if err != nil {
		return Failed("Failed to generate plan: " + err.Error()), nil
	}

	u := NewUpdate().WithStatus(StatusPlanned).WithPlan(p)
	if len(state.TargetFiles) == 0 && len(p.TargetFiles) > 0 {
		u.WithTargetFiles(p.TargetFiles...)
	}
	return u, nil
}
