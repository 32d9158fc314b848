package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// SaveConfig writes configuration values back to the config files.
type SaveConfig struct {
	GlobalConfigDir  string
	GlobalConfigFile string // defaults to "config.yaml"
	LocalConfigName  string
	ValidGlobalKeys  []string
	ValidLocalKeys   []string
}

func (c SaveConfig) globalConfigFile() string {
	if c.GlobalConfigFile != "" {
		return c.GlobalConfigFile
	}
	return "config.yaml"
}

// GlobalPath returns the global config file path.
func (c SaveConfig) GlobalPath() (string, error) {
	if c.GlobalConfigDir == "" {
		return "", fmt.Errorf("global config directory not configured")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", c.GlobalConfigDir, c.globalConfigFile()), nil
}

// SaveGlobal saves a key-value pair to the global config file. The file
// may hold secrets and is written owner-only.
func (c SaveConfig) SaveGlobal(key, value string) error {
	path, err := c.GlobalPath()
	if err != nil {
		return err
	}
	if err := checkKey("global", key, c.ValidGlobalKeys); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return updateFile(path, 0o600, func(m map[string]any) { m[key] = parseValue(value) })
}

// SaveLocal saves a key-value pair to the local config in the git root.
func (c SaveConfig) SaveLocal(gitRoot, key, value string) error {
	if gitRoot == "" {
		return fmt.Errorf("git root not found")
	}
	if c.LocalConfigName == "" {
		return fmt.Errorf("local config name not configured")
	}
	if err := checkKey("local", key, c.ValidLocalKeys); err != nil {
		return err
	}
	// Local config is committed with the repository.
	return updateFile(filepath.Join(gitRoot, c.LocalConfigName), 0o644, func(m map[string]any) { //nolint:gosec
		m[key] = parseValue(value)
	})
}

// DeleteGlobalKey removes a key from the global config. A missing file
// is not an error.
func (c SaveConfig) DeleteGlobalKey(key string) error {
	path, err := c.GlobalPath()
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	return updateFile(path, 0o600, func(m map[string]any) { delete(m, key) })
}

func checkKey(scope, key string, valid []string) error {
	if len(valid) > 0 && !slices.Contains(valid, key) {
		return fmt.Errorf("unknown %s config key: %s\n\nValid keys: %s",
			scope, key, strings.Join(valid, ", "))
	}
	return nil
}

// updateFile loads a YAML map (treating unreadable or malformed content
// as empty), applies fn and writes it back.
func updateFile(path string, perm os.FileMode, fn func(map[string]any)) error {
	existing := make(map[string]any)
	if data, err := os.ReadFile(path); err == nil {
		var parsed map[string]any
		if yaml.Unmarshal(data, &parsed) == nil && parsed != nil {
			existing = parsed
		}
	}

	fn(existing)

	data, err := yaml.Marshal(existing)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, perm)
}

// parseValue converts "true"/"false" to booleans for YAML.
func parseValue(value string) any {
	switch strings.ToLower(value) {
	case "true":
		return true
	case "false":
		return false
	default:
		return value
	}
}
