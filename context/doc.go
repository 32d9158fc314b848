// Package context provides dependency injection for pipeline services.
//
// Nodes find their collaborators in the context.Context they receive:
//   - WithGit/Git: local repository operations
//   - WithIssues/Issues: issue retrieval
//   - WithPlanner/Planner and WithDiffer/Differ: plan and diff generation
//   - WithPR/PR: pull request provider
//   - WithPrompt/Prompt: prompt templates
//   - WithNotifier/Notifier and WithLogger/Logger
//
// Services bundles them; NewServices builds the production set from
// config.Settings.
//
//	services, err := context.NewServices(ctx, settings, "acme/widgets", logger)
//	if err != nil {
//	    return err
//	}
//	ctx = services.InjectAll(ctx)
package context
