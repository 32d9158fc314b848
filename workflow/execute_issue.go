package workflow

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	devcontext "github.com/randalmurphal/issueflow/context"
	"github.com/randalmurphal/issueflow/patch"
)

// errNoDiffer is reported when no diff generator was injected.
var errNoDiffer = errors.New("no diff generator configured")

// ExecuteIssueNode reads the target files and asks the diff generator for
// a unified diff implementing the plan.
//
// Prerequisites: target_files
// Updates: status, diff, file_contents, values["execution_result"]
func ExecuteIssueNode(ctx context.Context, state State) (*Update, error) {
	if len(state.TargetFiles) == 0 {
		return Failed("No target_files specified; unable to execute issue."), nil
	}

	root := repoRoot(ctx)
	files := make(map[string]string, len(state.TargetFiles))
	for _, path := range state.TargetFiles {
		full, err := resolvePath(root, path)
		if errors.Is(err, ErrOutsideRepo) {
			return Failed("Target file outside repository: " + path), nil
		}
		if err != nil {
			return Failed(fmt.Sprintf("Error reading file %s: %v", path, err)), nil
		}
		data, err := os.ReadFile(full)
		if errors.Is(err, fs.ErrNotExist) {
			return Failed("File not found: " + path), nil
		}
		if err != nil {
			return Failed(fmt.Sprintf("Error reading file %s: %v", path, err)), nil
		}
		files[path] = string(data)
	}

	generator := devcontext.Differ(ctx)
	if generator == nil {
		return Failed("Error generating patch: " + errNoDiffer.Error()), nil
	}

	var raw string
	err := callWithAttempts(ctx, NodeConfigFromContext(ctx).MaxAttempts, "generate diff", func() error {
		var genErr error
		raw, genErr = generator.GenerateDiff(ctx, patch.Request{Plan: state.Plan, Files: files})
		return genErr
	})
	if err != nil {
		return Failed("Error generating patch: " + err.Error()), nil
	}
	diff := patch.StripFences(raw)

	stats := patch.Analyze(diff)
	if limit := NodeConfigFromContext(ctx).MaxDiffLines; limit > 0 && stats.Lines > limit {
		return Failed(fmt.Sprintf("Generated diff exceeds %d lines (got %d)", limit, stats.Lines)), nil
	}

	devcontext.Logger(ctx).Debug("diff generated",
		"files", len(stats.Files),
		"additions", stats.Additions,
		"deletions", stats.Deletions)

	return NewUpdate().
		WithStatus(StatusExecuted).
		WithDiff(diff).
		WithFileContents(files).
		WithValue("execution_result", map[string]any{
			"ok":        true,
			"files":     stats.Files,
			"additions": stats.Additions,
			"deletions": stats.Deletions,
		}), nil
}
