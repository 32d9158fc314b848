// Package issueflow turns a tracked issue into a pull request.
//
// A run passes one workflow.State through four nodes: load_context,
// plan_issue, execute_issue and create_pr. The graph executor snapshots
// the state into a checkpoint store after every step, keyed by thread.
//
// The subpackages are organized by concern:
//
//   - workflow: state, partial updates and the pipeline nodes
//   - graph: builder, compiled graph and execution loop
//   - checkpoint: in-memory and SQLite checkpoint stores
//   - plan, patch: planner and diff generator boundaries
//   - llm, prompt, task: the Anthropic-backed planner and differ
//   - issue, pr, git, auth: GitHub, GitLab and local repository access
//   - context: service injection for nodes
//   - config, notify, errors: settings, notifications, CLI errors
//
// # Quick Start
//
//	services, err := devcontext.NewServices(ctx, settings, "acme/widgets", logger)
//	if err != nil {
//	    return err
//	}
//	pipeline, err := issueflow.NewPipeline(checkpoint.NewMemorySaver())
//	if err != nil {
//	    return err
//	}
//	final, err := pipeline.Run(services.InjectAll(ctx),
//	    workflow.NewState("acme/widgets", 42),
//	    graph.RunConfig{ThreadID: "acme-widgets-42"})
package issueflow
