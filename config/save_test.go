package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func readYAML(t *testing.T, path string) map[string]any {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	var m map[string]any
	if err := yaml.Unmarshal(data, &m); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	return m
}

func TestSaveConfig_SaveGlobal(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg := SaveConfig{
		GlobalConfigDir: "issueflow",
		ValidGlobalKeys: []string{KeyGitHubToken, KeyStopOnError},
	}
	path := filepath.Join(home, ".config", "issueflow", "config.yaml")

	if err := cfg.SaveGlobal(KeyGitHubToken, "ghp_x"); err != nil {
		t.Fatalf("SaveGlobal() error = %v", err)
	}
	if err := cfg.SaveGlobal(KeyStopOnError, "TRUE"); err != nil {
		t.Fatalf("SaveGlobal() error = %v", err)
	}

	saved := readYAML(t, path)
	if saved[KeyGitHubToken] != "ghp_x" {
		t.Errorf("github_token = %v", saved[KeyGitHubToken])
	}
	if saved[KeyStopOnError] != true {
		t.Errorf("stop_on_error = %v, want bool true", saved[KeyStopOnError])
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("mode = %v, want 0600", info.Mode().Perm())
	}

	err = cfg.SaveGlobal("bogus", "x")
	if err == nil || !strings.Contains(err.Error(), "unknown global config key") {
		t.Errorf("expected unknown key error, got %v", err)
	}

	if err := cfg.DeleteGlobalKey(KeyGitHubToken); err != nil {
		t.Fatalf("DeleteGlobalKey() error = %v", err)
	}
	if _, ok := readYAML(t, path)[KeyGitHubToken]; ok {
		t.Error("github_token should be deleted")
	}
}

func TestSaveConfig_SaveGlobal_NoDir(t *testing.T) {
	if err := (SaveConfig{}).SaveGlobal("k", "v"); err == nil {
		t.Error("expected error without global config dir")
	}
	if err := (SaveConfig{}).DeleteGlobalKey("k"); err == nil {
		t.Error("expected error without global config dir")
	}
}

func TestSaveConfig_DeleteGlobalKey_MissingFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	if err := (SaveConfig{GlobalConfigDir: "issueflow"}).DeleteGlobalKey("k"); err != nil {
		t.Errorf("DeleteGlobalKey() error = %v", err)
	}
}

func TestSaveConfig_SaveLocal(t *testing.T) {
	root := t.TempDir()
	cfg := DefaultSaveConfig()
	path := filepath.Join(root, ".issueflow.yaml")

	// Malformed existing content is replaced.
	writeYAML(t, path, "::: not yaml")

	if err := cfg.SaveLocal(root, KeyBaseBranch, "develop"); err != nil {
		t.Fatalf("SaveLocal() error = %v", err)
	}
	if got := readYAML(t, path)[KeyBaseBranch]; got != "develop" {
		t.Errorf("base_branch = %v", got)
	}

	if err := cfg.SaveLocal(root, KeyAnthropicAPIKey, "sk"); err == nil {
		t.Error("secrets must be rejected in local config")
	}
	if err := cfg.SaveLocal("", KeyBaseBranch, "x"); err == nil {
		t.Error("expected error for empty git root")
	}
	if err := (SaveConfig{}).SaveLocal(root, KeyBaseBranch, "x"); err == nil {
		t.Error("expected error without local config name")
	}
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		input string
		want  any
	}{
		{"true", true},
		{"False", false},
		{"main", "main"},
		{"300", "300"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseValue(tt.input); got != tt.want {
				t.Errorf("parseValue(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
