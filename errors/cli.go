package errors

import (
	"fmt"
	"strings"
)

// CLIError wraps an error with user-facing context and a suggestion.
type CLIError struct {
	Err        error
	Message    string
	Suggestion string
	Details    string // optional
}

func (e *CLIError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Message)

	if e.Details != "" {
		sb.WriteString("\n")
		sb.WriteString(e.Details)
	}

	if e.Suggestion != "" {
		sb.WriteString("\n\n")
		sb.WriteString(e.Suggestion)
	}

	return sb.String()
}

func (e *CLIError) Unwrap() error {
	return e.Err
}

// Messenger supplies the message and suggestion for each failure class.
type Messenger interface {
	AuthErrorMessage(service string) (message, suggestion string)
	PermissionDeniedMessage(service string) (message, suggestion string)
	RateLimitedMessage(service string) (message, suggestion string)
	ConnectionErrorMessage(service string) (message, suggestion string)
	TimeoutErrorMessage(service string) (message, suggestion string)
	NotInGitRepoMessage(path string) (message, suggestion string)
	InvalidConfigMessage() (message, suggestion string)
}

// DefaultMessenger provides the issueflow messages.
type DefaultMessenger struct{}

func (DefaultMessenger) AuthErrorMessage(service string) (string, string) {
	if service == "Anthropic" {
		return "The Anthropic API rejected the API key.",
			"Set ANTHROPIC_API_KEY or run 'issueflow config set anthropic_api_key <key>'."
	}
	return fmt.Sprintf("%s rejected the credentials.", service),
		"Set GITHUB_TOKEN, run 'issueflow config set github_token <token>', or configure a GitHub App."
}

func (DefaultMessenger) PermissionDeniedMessage(service string) (string, string) {
	return fmt.Sprintf("The credentials cannot perform this action on %s.", service),
		"Check that the token or app installation can read issues and write pull requests in this repository."
}

func (DefaultMessenger) RateLimitedMessage(service string) (string, string) {
	return fmt.Sprintf("%s rate limit reached.", service),
		"Wait a few minutes and rerun with the same --thread to resume."
}

func (DefaultMessenger) ConnectionErrorMessage(service string) (string, string) {
	return fmt.Sprintf("Cannot connect to %s.", service),
		"Check your network connection and proxy settings."
}

func (DefaultMessenger) TimeoutErrorMessage(service string) (string, string) {
	return fmt.Sprintf("The request to %s timed out.", service),
		"The service may be overloaded. Rerun with the same --thread to resume."
}

func (DefaultMessenger) NotInGitRepoMessage(path string) (string, string) {
	return fmt.Sprintf("%s is not a git repository.", path),
		"Run issueflow from a clone of the target repository or pass --repo-path."
}

func (DefaultMessenger) InvalidConfigMessage() (string, string) {
	return "The configuration is incomplete.",
		"Run 'issueflow config show' to see where each value comes from."
}

// Option configures wrapping.
type Option func(*wrapConfig)

type wrapConfig struct {
	messenger Messenger
}

// WithMessenger sets a custom messenger.
func WithMessenger(m Messenger) Option {
	return func(c *wrapConfig) {
		c.messenger = m
	}
}

func getMessenger(opts []Option) Messenger {
	cfg := &wrapConfig{messenger: DefaultMessenger{}}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg.messenger
}

// WrapAPIError classifies an error returned by a remote service
// (GitHub, GitLab, Anthropic). Unrecognized errors are returned as is.
func WrapAPIError(err error, service string, opts ...Option) error {
	if err == nil {
		return nil
	}
	m := getMessenger(opts)

	switch {
	case IsRateLimitError(err):
		msg, suggestion := m.RateLimitedMessage(service)
		return &CLIError{Err: ErrRateLimited, Message: msg, Suggestion: suggestion}
	case IsAuthError(err):
		msg, suggestion := m.AuthErrorMessage(service)
		return &CLIError{Err: ErrNotAuthenticated, Message: msg, Suggestion: suggestion}
	case IsPermissionError(err):
		msg, suggestion := m.PermissionDeniedMessage(service)
		return &CLIError{Err: ErrPermissionDenied, Message: msg, Suggestion: suggestion}
	case isTimeout(err):
		msg, suggestion := m.TimeoutErrorMessage(service)
		return &CLIError{Err: ErrConnectionFailed, Message: msg, Suggestion: suggestion}
	case IsConnectionError(err):
		msg, suggestion := m.ConnectionErrorMessage(service)
		return &CLIError{Err: ErrConnectionFailed, Message: msg, Details: err.Error(), Suggestion: suggestion}
	}
	return err
}

// NewNotInGitRepoError creates an error for a path that is not a git repository.
func NewNotInGitRepoError(path string, opts ...Option) error {
	msg, suggestion := getMessenger(opts).NotInGitRepoMessage(path)
	return &CLIError{Err: ErrNotInGitRepo, Message: msg, Suggestion: suggestion}
}

// NewConfigError explains a configuration validation failure.
func NewConfigError(err error, opts ...Option) error {
	if err == nil {
		return nil
	}
	msg, suggestion := getMessenger(opts).InvalidConfigMessage()
	return &CLIError{Err: ErrInvalidConfig, Message: msg, Details: err.Error(), Suggestion: suggestion}
}
