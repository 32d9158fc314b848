package auth

import "errors"

var (
	// ErrNoToken indicates no access token was provided.
	ErrNoToken = errors.New("no access token provided")

	// ErrIncompleteApp indicates a GitHub App configuration is missing fields.
	ErrIncompleteApp = errors.New("incomplete GitHub App configuration")

	// ErrNoPrivateKey indicates no signing key was provided.
	ErrNoPrivateKey = errors.New("no private key provided")

	// ErrInvalidPrivateKey indicates the private key could not be parsed.
	ErrInvalidPrivateKey = errors.New("invalid private key")

	// ErrInvalidToken indicates the token is malformed or has an invalid signature.
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired indicates the token has expired.
	ErrTokenExpired = errors.New("token expired")
)
