package config

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
)

// Setting keys.
const (
	KeyAnthropicAPIKey      = "anthropic_api_key"
	KeyGitHubToken          = "github_token"
	KeyGitHubAppID          = "github_app_id"
	KeyGitHubInstallationID = "github_installation_id"
	KeyGitHubPrivateKeyPath = "github_private_key_path"
	KeyDatabaseURL          = "database_url"
	KeyModel                = "model"
	KeyFastModel            = "fast_model"
	KeyMaxAttempts          = "max_attempts"
	KeyMaxDiffLines         = "max_diff_lines"
	KeyBaseBranch           = "base_branch"
	KeyStopOnError          = "stop_on_error"
	KeyRepoPath             = "repo_path"
	KeySlackWebhookURL      = "slack_webhook_url"
	KeyWebhookURL           = "webhook_url"
	KeyLogLevel             = "log_level"
	KeyLogFormat            = "log_format"
)

// DefaultModel is the model used when none is configured.
const DefaultModel = "claude-3-5-sonnet-20240620"

// ErrInvalidSettings wraps every settings validation failure.
var ErrInvalidSettings = errors.New("invalid settings")

// Defaults returns the default value of every setting.
func Defaults() map[string]string {
	return map[string]string{
		KeyAnthropicAPIKey:      "",
		KeyGitHubToken:          "",
		KeyGitHubAppID:          "",
		KeyGitHubInstallationID: "",
		KeyGitHubPrivateKeyPath: "",
		KeyDatabaseURL:          "",
		KeyModel:                DefaultModel,
		KeyFastModel:            "",
		KeyMaxAttempts:          "3",
		KeyMaxDiffLines:         "300",
		KeyBaseBranch:           "main",
		KeyStopOnError:          "true",
		KeyRepoPath:             ".",
		KeySlackWebhookURL:      "",
		KeyWebhookURL:           "",
		KeyLogLevel:             "info",
		KeyLogFormat:            "text",
	}
}

// secretKeys may only be set globally or through the environment.
var secretKeys = []string{KeyAnthropicAPIKey, KeyGitHubToken, KeySlackWebhookURL, KeyWebhookURL}

// AllKeys returns every setting key.
func AllKeys() []string {
	keys := make([]string, 0, len(Defaults()))
	for k := range Defaults() {
		keys = append(keys, k)
	}
	return keys
}

// LocalKeys returns the keys allowed in the committed local config.
func LocalKeys() []string {
	var keys []string
	for _, k := range AllKeys() {
		if !slices.Contains(secretKeys, k) {
			keys = append(keys, k)
		}
	}
	return keys
}

// DefaultResolverConfig returns the resolver configuration for issueflow.
func DefaultResolverConfig() ResolverConfig {
	return ResolverConfig{
		EnvPrefix: "ISSUEFLOW_",
		EnvAliases: map[string][]string{
			KeyAnthropicAPIKey: {"ANTHROPIC_API_KEY"},
			KeyGitHubToken:     {"GIT_TOKEN", "GITHUB_TOKEN"},
		},
		GlobalConfigDir: "issueflow",
		LocalConfigName: ".issueflow.yaml",
		Defaults:        Defaults(),
		ValidGlobalKeys: AllKeys(),
		ValidLocalKeys:  LocalKeys(),
	}
}

// DefaultSaveConfig returns the writer matching DefaultResolverConfig.
func DefaultSaveConfig() SaveConfig {
	rc := DefaultResolverConfig()
	return SaveConfig{
		GlobalConfigDir: rc.GlobalConfigDir,
		LocalConfigName: rc.LocalConfigName,
		ValidGlobalKeys: rc.ValidGlobalKeys,
		ValidLocalKeys:  rc.ValidLocalKeys,
	}
}

// Settings is the typed issueflow configuration.
type Settings struct {
	AnthropicAPIKey string

	GitHubToken          string
	GitHubAppID          int64
	GitHubInstallationID int64
	GitHubPrivateKeyPath string

	DatabaseURL string // SQLite path; empty keeps checkpoints in memory

	Model     string
	FastModel string

	MaxAttempts  int
	MaxDiffLines int
	BaseBranch   string
	StopOnError  bool
	RepoPath     string

	SlackWebhookURL string
	WebhookURL      string

	LogLevel  string
	LogFormat string
}

// LoadSettings converts resolved values into Settings. Malformed numbers
// and booleans are reported together.
func LoadSettings(r *Resolved) (Settings, error) {
	var errs []string
	intVal := func(key string) int64 {
		v := strings.TrimSpace(r.Get(key))
		if v == "" {
			return 0
		}
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %q is not a number", key, v))
		}
		return n
	}
	boolVal := func(key string) bool {
		v := strings.TrimSpace(r.Get(key))
		if v == "" {
			return false
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %q is not a boolean", key, v))
		}
		return b
	}

	s := Settings{
		AnthropicAPIKey:      r.Get(KeyAnthropicAPIKey),
		GitHubToken:          r.Get(KeyGitHubToken),
		GitHubAppID:          intVal(KeyGitHubAppID),
		GitHubInstallationID: intVal(KeyGitHubInstallationID),
		GitHubPrivateKeyPath: r.Get(KeyGitHubPrivateKeyPath),
		DatabaseURL:          r.Get(KeyDatabaseURL),
		Model:                r.Get(KeyModel),
		FastModel:            r.Get(KeyFastModel),
		MaxAttempts:          int(intVal(KeyMaxAttempts)),
		MaxDiffLines:         int(intVal(KeyMaxDiffLines)),
		BaseBranch:           r.Get(KeyBaseBranch),
		StopOnError:          boolVal(KeyStopOnError),
		RepoPath:             r.Get(KeyRepoPath),
		SlackWebhookURL:      r.Get(KeySlackWebhookURL),
		WebhookURL:           r.Get(KeyWebhookURL),
		LogLevel:             strings.ToLower(r.Get(KeyLogLevel)),
		LogFormat:            strings.ToLower(r.Get(KeyLogFormat)),
	}

	if len(errs) > 0 {
		return s, fmt.Errorf("%w: %s", ErrInvalidSettings, strings.Join(errs, "; "))
	}
	return s, nil
}

// UsesGitHubApp reports whether any GitHub App field is set.
func (s Settings) UsesGitHubApp() bool {
	return s.GitHubAppID != 0 || s.GitHubInstallationID != 0 || s.GitHubPrivateKeyPath != ""
}

// Validate checks the settings needed for a real run: a model API key
// and either a token or a complete GitHub App configuration.
func (s Settings) Validate() error {
	var problems []string

	if s.AnthropicAPIKey == "" {
		problems = append(problems, "anthropic_api_key is required (or set ANTHROPIC_API_KEY)")
	}

	if s.UsesGitHubApp() {
		if s.GitHubAppID == 0 || s.GitHubInstallationID == 0 || s.GitHubPrivateKeyPath == "" {
			problems = append(problems, "github_app_id, github_installation_id and github_private_key_path must all be set")
		}
	} else if s.GitHubToken == "" {
		problems = append(problems, "github_token is required (or set GITHUB_TOKEN) unless a GitHub App is configured")
	}

	if s.MaxAttempts < 1 {
		problems = append(problems, "max_attempts must be at least 1")
	}
	if s.MaxDiffLines < 0 {
		problems = append(problems, "max_diff_lines must not be negative")
	}
	if _, err := ParseLevel(s.LogLevel); err != nil {
		problems = append(problems, err.Error())
	}
	if s.LogFormat != "text" && s.LogFormat != "json" {
		problems = append(problems, fmt.Sprintf("log_format must be text or json, got %q", s.LogFormat))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidSettings, strings.Join(problems, "; "))
	}
	return nil
}

// ParseLevel maps a log_level value to a slog level.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("log_level must be debug, info, warn or error, got %q", level)
	}
}
