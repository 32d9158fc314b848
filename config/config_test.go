package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func writeYAML(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
}

func TestResolver_Priority(t *testing.T) {
	dir := t.TempDir()
	global := filepath.Join(dir, "global.yaml")
	local := filepath.Join(dir, "local.yaml")
	writeYAML(t, global, "base_branch: develop\nmodel: global-model\nlog_level: debug\n")
	writeYAML(t, local, "base_branch: trunk\nmax_diff_lines: 50\n")

	t.Setenv("TESTAPP_LOG_LEVEL", "error")

	r := NewResolverWithPaths(ResolverConfig{
		EnvPrefix: "TESTAPP_",
		Defaults: map[string]string{
			"base_branch":    "main",
			"model":          "default-model",
			"max_diff_lines": "300",
			"log_level":      "info",
			"repo_path":      ".",
		},
	}, global, local)

	cfg := r.Resolve()

	tests := []struct {
		key        string
		wantValue  string
		wantSource Source
	}{
		{"repo_path", ".", SourceDefault},
		{"model", "global-model", SourceGlobal},
		{"base_branch", "trunk", SourceLocal},
		{"max_diff_lines", "50", SourceLocal},
		{"log_level", "error", SourceEnv},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			value, src := cfg.GetWithSource(tt.key)
			if value != tt.wantValue || src != tt.wantSource {
				t.Errorf("%s = (%q, %q), want (%q, %q)", tt.key, value, src, tt.wantValue, tt.wantSource)
			}
		})
	}
}

func TestResolver_ResolveWithFlags(t *testing.T) {
	r := NewResolverWithPaths(ResolverConfig{
		Defaults: map[string]string{"base_branch": "main", "model": "m"},
	}, "", "")

	cfg := r.ResolveWithFlags(map[string]string{"base_branch": "release", "model": ""})

	if got := cfg.Get("base_branch"); got != "release" {
		t.Errorf("base_branch = %q, want release", got)
	}
	if got := cfg.Source("base_branch"); got != SourceFlag {
		t.Errorf("source = %q, want flag", got)
	}
	if got := cfg.Get("model"); got != "m" {
		t.Errorf("empty flag should not override, got %q", got)
	}
}

func TestResolver_EnvAliases(t *testing.T) {
	t.Setenv("TESTAPP_API_KEY", "")
	t.Setenv("VENDOR_API_KEY", "from-alias")

	r := NewResolverWithPaths(ResolverConfig{
		EnvPrefix:  "TESTAPP_",
		EnvAliases: map[string][]string{"api_key": {"VENDOR_API_KEY"}},
	}, "", "")

	if got := r.Resolve().Get("api_key"); got != "from-alias" {
		t.Errorf("api_key = %q, want from-alias", got)
	}

	t.Setenv("TESTAPP_API_KEY", "from-prefix")
	if got := r.Resolve().Get("api_key"); got != "from-prefix" {
		t.Errorf("prefixed variable should win, got %q", got)
	}
}

func TestResolver_ValidKeys(t *testing.T) {
	dir := t.TempDir()
	local := filepath.Join(dir, "local.yaml")
	writeYAML(t, local, "base_branch: dev\ngithub_token: leaked\n")

	var warnings bytes.Buffer
	r := NewResolverWithPaths(ResolverConfig{
		ValidLocalKeys: []string{"base_branch"},
		ErrWriter:      &warnings,
	}, "", local)

	cfg := r.Resolve()
	if got := cfg.Get("base_branch"); got != "dev" {
		t.Errorf("base_branch = %q, want dev", got)
	}
	if got := cfg.Get("github_token"); got != "" {
		t.Errorf("github_token should be ignored in local config, got %q", got)
	}
	if len(r.Warnings) != 1 {
		t.Errorf("Warnings = %v, want one entry", r.Warnings)
	}
	if warnings.Len() == 0 {
		t.Error("expected warning output")
	}
}

func TestResolver_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	global := filepath.Join(dir, "global.yaml")
	writeYAML(t, global, "key: [unclosed")

	r := NewResolverWithPaths(ResolverConfig{
		Defaults:  map[string]string{"key": "default"},
		ErrWriter: &bytes.Buffer{},
	}, global, "")

	if got := r.Resolve().Get("key"); got != "default" {
		t.Errorf("key = %q, want default", got)
	}
	if len(r.Warnings) == 0 {
		t.Error("expected a parse warning")
	}
}

func TestResolver_ScalarValues(t *testing.T) {
	dir := t.TempDir()
	global := filepath.Join(dir, "global.yaml")
	writeYAML(t, global, "stop_on_error: true\nmax_attempts: 5\nnested: {a: 1}\n")

	cfg := NewResolverWithPaths(ResolverConfig{}, global, "").Resolve()

	if got := cfg.Get("stop_on_error"); got != "true" {
		t.Errorf("stop_on_error = %q", got)
	}
	if got := cfg.Get("max_attempts"); got != "5" {
		t.Errorf("max_attempts = %q", got)
	}
	if got := cfg.Get("nested"); got != "" {
		t.Errorf("nested maps are ignored, got %q", got)
	}
	if len(cfg.Keys()) != 2 || len(cfg.All()) != 2 {
		t.Errorf("Keys() = %v", cfg.Keys())
	}
}

func TestNewResolver_GitRootFinder(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("ISSUEFLOW_BASE_BRANCH", "")
	root := t.TempDir()
	writeYAML(t, filepath.Join(root, ".issueflow.yaml"), "base_branch: from-local\n")

	cfg := DefaultResolverConfig()
	cfg.GitRootFinder = func(string) (string, error) { return root, nil }
	r := NewResolver(cfg)

	if r.GitRoot() != root {
		t.Errorf("GitRoot() = %q, want %q", r.GitRoot(), root)
	}
	if r.LocalPath() != filepath.Join(root, ".issueflow.yaml") {
		t.Errorf("LocalPath() = %q", r.LocalPath())
	}
	if got := r.Resolve().Get(KeyBaseBranch); got != "from-local" {
		t.Errorf("base_branch = %q, want from-local", got)
	}
}

func TestFindGitRoot(t *testing.T) {
	root := t.TempDir()
	if err := os.Mkdir(filepath.Join(root, ".git"), 0o755); err != nil {
		t.Fatal(err)
	}
	sub := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}

	got := findGitRoot(sub)
	want, _ := filepath.Abs(root)
	if got != want {
		t.Errorf("findGitRoot() = %q, want %q", got, want)
	}
}
