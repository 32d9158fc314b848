// Package errors turns failures into messages a person running the
// issueflow CLI can act on.
//
// WrapAPIError classifies errors from GitHub, GitLab or Anthropic into
// authentication, permission, rate limit and connection failures, each
// carried as a *CLIError with a suggestion. The Is* predicates expose
// the same classification.
//
//	if err := source.GetIssue(ctx, repo, n); err != nil {
//	    return errors.WrapAPIError(err, "GitHub")
//	}
package errors
