package graph

import (
	"context"

	"github.com/randalmurphal/flowgraph/pkg/flowgraph"

	"github.com/randalmurphal/issueflow/workflow"
)

// FromFlowgraph adapts a flowgraph node, which returns the whole state, to
// a NodeFunc. Scalar fields of the returned state overwrite the working
// state and an empty Error clears a previous one. A nil Issue, Plan,
// PRData, TargetFiles or FileContents keeps the working value, and Values
// entries are merged by key, so a node cannot unset them. On error the
// returned state is discarded.
func FromFlowgraph(fn flowgraph.NodeFunc[workflow.State]) workflow.NodeFunc {
	return func(ctx context.Context, state workflow.State) (*workflow.Update, error) {
		fctx := flowgraph.NewContext(ctx)
		next, err := fn(fctx, state.Clone())
		if err != nil {
			return nil, err
		}
		return workflow.Replace(state, next), nil
	}
}
