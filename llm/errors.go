package llm

import "errors"

var (
	// ErrNoAPIKey indicates the API key is missing.
	ErrNoAPIKey = errors.New("anthropic API key not set")

	// ErrEmptyResponse indicates the model returned no text.
	ErrEmptyResponse = errors.New("empty model response")

	// ErrNoPlan indicates a diff was requested without a plan.
	ErrNoPlan = errors.New("no plan provided")

	// ErrContextTooLarge indicates the file context exceeds its limits.
	ErrContextTooLarge = errors.New("file context too large")
)
