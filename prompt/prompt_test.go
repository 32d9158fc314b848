package prompt

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoader_Embedded(t *testing.T) {
	l := NewLoader("")

	for _, name := range []string{PlanSystem, PlanUser, ExecuteSystem, ExecuteUser, PRBody} {
		t.Run(name, func(t *testing.T) {
			assert.True(t, l.Exists(name))
			_, err := l.Load(name)
			require.NoError(t, err)
		})
	}
}

func TestLoader_PlanUser(t *testing.T) {
	l := NewLoader("")

	got, err := l.LoadWithVars(PlanUser, map[string]any{
		"Number":      42,
		"Title":       "Fix login crash",
		"Body":        "It crashes.",
		"RepoContext": "main.go",
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(got, "Issue #42: Fix login crash"))
	assert.Contains(t, got, "Description:\nIt crashes.")
	assert.Contains(t, got, "Repository Context:\nmain.go")
}

func TestLoader_DefaultForMissingVar(t *testing.T) {
	l := NewLoader("")

	got, err := l.LoadWithVars(PlanUser, map[string]any{"Number": 1})
	require.NoError(t, err)
	assert.Contains(t, got, "(no repository context available)")
}

func TestLoader_ProjectOverride(t *testing.T) {
	dir := t.TempDir()
	promptDir := filepath.Join(dir, ".issueflow", "prompts")
	require.NoError(t, os.MkdirAll(promptDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(promptDir, "plan_system.txt"), []byte("custom {{upper .Name}}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(promptDir, "extra.txt"), []byte("extra"), 0o644))

	l := NewLoader(dir)

	got, err := l.LoadWithVars(PlanSystem, map[string]any{"Name": "plan"})
	require.NoError(t, err)
	assert.Equal(t, "custom PLAN", got)

	names := l.List()
	assert.Contains(t, names, "extra")
	assert.Contains(t, names, PlanSystem)
}

func TestLoader_NotFound(t *testing.T) {
	l := NewLoader("")

	_, err := l.Load("does_not_exist")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.False(t, l.Exists("does_not_exist"))
}

func TestLoader_AddFunc(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "greet.txt"), []byte("{{shout .Name}}"), 0o644))

	l := NewLoader("")
	l.AddSearchDir(dir)
	l.AddFunc("shout", func(s string) string { return s + "!" })

	got, err := l.LoadWithVars("greet", map[string]any{"Name": "hi"})
	require.NoError(t, err)
	assert.Equal(t, "hi!", got)
}

func TestLoader_Concurrent(t *testing.T) {
	l := NewLoader("")

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := l.Load(ExecuteSystem)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
}

func TestIndentString(t *testing.T) {
	tests := []struct {
		name   string
		indent int
		in     string
		want   string
	}{
		{"empty", 2, "", ""},
		{"single", 2, "a", "  a"},
		{"keeps blank lines", 2, "a\n\nb", "  a\n\n  b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := indentString(tt.indent, tt.in); got != tt.want {
				t.Errorf("indentString() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuilder(t *testing.T) {
	got := NewBuilder().
		Add("intro").
		AddSection("Plan", "do it").
		AddList("Steps", []string{"one", "two"}).
		AddFiles(map[string]string{"b.go": "package b\n", "a.go": "package a"}).
		Build()

	want := "intro\n\n## Plan\n\ndo it\n\n## Steps\n\n- one\n- two\n\n" +
		"<file path=\"a.go\">\npackage a\n</file>\n\n<file path=\"b.go\">\npackage b\n</file>"
	assert.Equal(t, want, got)
}
