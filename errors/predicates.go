package errors

import (
	"errors"
	"strings"
)

func containsAny(err error, needles ...string) bool {
	s := strings.ToLower(err.Error())
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

// IsAuthError checks if an error is authentication-related.
func IsAuthError(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrNotAuthenticated) ||
		containsAny(err, "unauthenticated", "unauthorized", "401", "bad credentials", "invalid x-api-key")
}

// IsPermissionError checks if an error is permission-related.
func IsPermissionError(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrPermissionDenied) ||
		containsAny(err, "permission denied", "forbidden", "403", "resource not accessible")
}

// IsRateLimitError checks if an error reports an exhausted rate limit.
func IsRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrRateLimited) ||
		containsAny(err, "rate limit", "rate_limit", "429")
}

// IsConnectionError checks if an error is a network, TLS or timeout failure.
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrConnectionFailed) || isTimeout(err) ||
		containsAny(err, "connection refused", "no such host", "network is unreachable", "dial tcp",
			"certificate", "tls", "x509")
}

func isTimeout(err error) bool {
	return containsAny(err, "timeout", "deadline exceeded")
}
