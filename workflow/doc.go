// Package workflow defines the pipeline state and the nodes that turn an
// issue into a pull request.
//
// Core types:
//   - State: the record threaded through a run (issue, plan, diff, PR)
//   - Update: the partial result a node returns; State.Apply merges it
//   - NodeFunc: the node contract
//   - NodeConfig: node behavior (repository root, base branch, diff limit)
//
// Pipeline nodes, in order:
//   - LoadContextNode: fetches the issue and reads target files
//   - PlanIssueNode: asks the planner for a structured plan
//   - ExecuteIssueNode: asks the differ for a unified diff
//   - CreatePRNode: commits and pushes the diff and opens a pull request
//
// Nodes report failures by returning Failed(msg); the run continues and the
// failure stays visible in the state. Collaborators come from the context
// package.
//
//	ctx = services.InjectAll(ctx)
//	ctx = workflow.WithNodeConfig(ctx, workflow.DefaultNodeConfig())
//	u, err := workflow.PlanIssueNode(ctx, state)
//	state = state.Apply(u)
package workflow
