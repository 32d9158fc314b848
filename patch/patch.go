package patch

import (
	"context"
	"fmt"
	"strings"

	"github.com/randalmurphal/issueflow/plan"
)

// Request carries what a Generator needs to produce a diff.
type Request struct {
	Plan  *plan.Plan
	Files map[string]string // repository-relative path -> content
}

// Generator produces a unified diff implementing a plan against the given
// file contents.
type Generator interface {
	GenerateDiff(ctx context.Context, req Request) (string, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, req Request) (string, error)

// GenerateDiff calls f.
func (f GeneratorFunc) GenerateDiff(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// StripFences removes a Markdown code fence around a diff: a leading
// "```diff" or "```" marker, a trailing "```" marker, and surrounding
// whitespace.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(s, "```diff"):
		s = s[len("```diff"):]
	case strings.HasPrefix(s, "```"):
		s = s[len("```"):]
	}
	s = strings.TrimSuffix(strings.TrimRightFunc(s, isSpace), "```")
	return strings.TrimSpace(s)
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\n' || r == '\t' || r == '\r'
}

// Stats summarizes a unified diff.
type Stats struct {
	Files     []string
	Additions int
	Deletions int
	Lines     int
}

// Analyze counts the files and changed lines in a unified diff.
func Analyze(diff string) Stats {
	var st Stats
	if strings.TrimSpace(diff) == "" {
		return st
	}

	lines := strings.Split(strings.TrimRight(diff, "\n"), "\n")
	st.Lines = len(lines)
	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, "+++ "):
			path := strings.TrimPrefix(line, "+++ ")
			if path != "/dev/null" {
				st.Files = append(st.Files, strings.TrimPrefix(path, "b/"))
			}
		case strings.HasPrefix(line, "--- "):
		case strings.HasPrefix(line, "+"):
			st.Additions++
		case strings.HasPrefix(line, "-"):
			st.Deletions++
		}
	}
	return st
}

// CheckSize fails with ErrTooLarge when the diff has more than maxLines
// lines. A non-positive maxLines disables the check.
func CheckSize(diff string, maxLines int) error {
	if maxLines <= 0 {
		return nil
	}
	if n := Analyze(diff).Lines; n > maxLines {
		return fmt.Errorf("%w: %d lines exceeds limit of %d", ErrTooLarge, n, maxLines)
	}
	return nil
}
