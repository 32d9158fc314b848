// Package testutil provides utilities for testing.
package testutil

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/randalmurphal/issueflow/issue"
	"github.com/randalmurphal/issueflow/patch"
	"github.com/randalmurphal/issueflow/plan"
)

// LoadFixture loads a fixture file from the testdata directory.
// The path is relative to the testdata directory.
func LoadFixture(t *testing.T, path string) []byte {
	t.Helper()

	fullPath := filepath.Join("testdata", path)
	data, err := os.ReadFile(fullPath)
	if err != nil {
		t.Fatalf("failed to load fixture %s: %v", path, err)
	}

	return data
}

// LoadFixtureString loads a fixture file as a string.
func LoadFixtureString(t *testing.T, path string) string {
	t.Helper()
	return string(LoadFixture(t, path))
}

// LoadJSONFixture loads a fixture file and unmarshals it as JSON.
func LoadJSONFixture[T any](t *testing.T, path string) T {
	t.Helper()

	data := LoadFixture(t, path)

	var result T
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatalf("failed to parse JSON fixture %s: %v", path, err)
	}

	return result
}

// WriteFiles writes files (relative path -> content) under dir.
func WriteFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()

	for path, content := range files {
		fullPath := filepath.Join(dir, filepath.FromSlash(path))
		if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
			t.Fatalf("failed to create directory for %s: %v", path, err)
		}
		if err := os.WriteFile(fullPath, []byte(content), 0o644); err != nil {
			t.Fatalf("failed to write file %s: %v", path, err)
		}
	}
}

// =============================================================================
// Domain Fixtures
// =============================================================================

// SampleIssue returns a small bug report.
func SampleIssue(number int) *issue.Issue {
	return &issue.Issue{
		Number: number,
		Title:  "Fix greeting punctuation",
		Body:   "Greet() should end with an exclamation mark.",
		State:  "open",
		Labels: []string{"bug"},
	}
}

// SamplePlan returns a valid plan touching targetFiles.
func SamplePlan(targetFiles ...string) *plan.Plan {
	return &plan.Plan{
		DefinitionOfDone:    []string{"Greeting ends with an exclamation mark"},
		Steps:               []string{"Update the greeting string"},
		TargetFiles:         append([]string(nil), targetFiles...),
		EstimatedComplexity: plan.ComplexityLow,
	}
}

// SampleDiff is a diff against the README created by SetupTestRepo.
const SampleDiff = `diff --git a/README.md b/README.md
--- a/README.md
+++ b/README.md
@@ -1 +1,3 @@
 # Test Repository
+
+Managed by issueflow.
`

// =============================================================================
// Fake Collaborators
// =============================================================================

// FakePlanner is a plan.Generator returning a fixed plan or error and
// recording every request.
type FakePlanner struct {
	Plan *plan.Plan
	Err  error

	mu       sync.Mutex
	requests []plan.Request
}

// GeneratePlan implements plan.Generator.
func (f *FakePlanner) GeneratePlan(_ context.Context, req plan.Request) (*plan.Plan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Plan.Clone(), nil
}

// Requests returns the recorded requests.
func (f *FakePlanner) Requests() []plan.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]plan.Request(nil), f.requests...)
}

// FakeDiffer is a patch.Generator returning a fixed diff or error and
// recording every request.
type FakeDiffer struct {
	Diff string
	Err  error

	mu       sync.Mutex
	requests []patch.Request
}

// GenerateDiff implements patch.Generator.
func (f *FakeDiffer) GenerateDiff(_ context.Context, req patch.Request) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.Err != nil {
		return "", f.Err
	}
	return f.Diff, nil
}

// Requests returns the recorded requests.
func (f *FakeDiffer) Requests() []patch.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]patch.Request(nil), f.requests...)
}

var (
	_ plan.Generator  = (*FakePlanner)(nil)
	_ patch.Generator = (*FakeDiffer)(nil)
)
