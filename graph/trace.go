package graph

import (
	"context"

	"github.com/randalmurphal/issueflow/workflow"
)

// Traced appends name to the state's trace whenever fn runs, including
// when fn fails.
func Traced(name string, fn workflow.NodeFunc) workflow.NodeFunc {
	return func(ctx context.Context, state workflow.State) (*workflow.Update, error) {
		u, err := fn(ctx, state)
		if u == nil {
			u = workflow.NewUpdate()
		}
		return u.WithTrace(name), err
	}
}
