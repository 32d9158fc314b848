// Package pr creates pull requests on GitHub and GitLab.
//
// Provider is the narrow interface the workflow needs: create a pull
// request, look one up, list by branch and comment. GitHubProvider uses
// go-github; GitLabProvider uses go-gitlab and maps merge requests onto
// the same PullRequest type. ProviderFromEnv picks one from the remote
// URL and the usual token variables.
//
//	provider, _ := pr.NewGitHubProvider(token, "acme", "widgets")
//	pull, err := provider.CreatePR(ctx, pr.NewBuilder("Fix login crash").
//	    ForIssue(42).
//	    WithHead("issueflow/issue-42-fix-login-crash").
//	    WithLabels("issueflow").
//	    Build())
//
// MockProvider records created pull requests for tests.
package pr
