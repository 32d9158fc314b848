package workflow

import (
	"context"
	"os"
	"strings"

	devcontext "github.com/randalmurphal/issueflow/context"
)

// LoadContextNode gathers what the later nodes need: the issue from the
// configured issue source and the current contents of any target files.
//
// Prerequisites: github_repo and issue_number when an issue source is configured
// Updates: status, issue, issue_title, issue_body, file_contents, values["context"]
func LoadContextNode(ctx context.Context, state State) (*Update, error) {
	u := NewUpdate()
	logger := devcontext.Logger(ctx)

	if src := devcontext.Issues(ctx); src != nil {
		if missing := missingIdentifiers(state); len(missing) > 0 {
			return Failed("Missing required identifiers: " + strings.Join(missing, ", ")), nil
		}
		if state.Issue == nil {
			iss, err := src.GetIssue(ctx, state.Repo, state.IssueNumber)
			if err != nil {
				return Failed("Failed to load issue: " + err.Error()), nil
			}
			u.WithIssue(iss)
			logger.Debug("issue loaded", "github_repo", state.Repo, "issue_number", iss.Number)
		}
	}

	loaded := 0
	if len(state.TargetFiles) > 0 {
		root := repoRoot(ctx)
		files := make(map[string]string, len(state.TargetFiles))
		for _, path := range state.TargetFiles {
			full, err := resolvePath(root, path)
			if err != nil {
				logger.Warn("target file skipped", "path", path, "error", err)
				continue
			}
			data, err := os.ReadFile(full)
			if err != nil {
				// execute_issue reports missing files.
				logger.Debug("target file not loaded", "path", path, "error", err)
				continue
			}
			files[path] = string(data)
		}
		loaded = len(files)
		u.WithFileContents(files)
	}

	return u.
		WithStatus(StatusContextLoaded).
		ClearingError().
		WithValue("context", map[string]any{"loaded": true, "files": loaded}), nil
}

func missingIdentifiers(state State) []string {
	var missing []string
	if state.Repo == "" {
		missing = append(missing, "github_repo")
	}
	if n, _, _ := state.IssueRef(); n == 0 {
		missing = append(missing, "issue_number")
	}
	return missing
}
