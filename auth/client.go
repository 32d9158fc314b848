package auth

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/oauth2"
)

// ClientOptions tunes the retrying HTTP client.
type ClientOptions struct {
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	Logger       *slog.Logger
}

// DefaultClientOptions returns the defaults used for API clients.
func DefaultClientOptions() ClientOptions {
	return ClientOptions{
		RetryMax:     3,
		RetryWaitMin: 500 * time.Millisecond,
		RetryWaitMax: 5 * time.Second,
	}
}

// NewHTTPClient returns an *http.Client that authenticates with ts and
// retries connection errors, 429s and 5xx responses. A nil ts yields an
// unauthenticated client.
func NewHTTPClient(ctx context.Context, ts oauth2.TokenSource, opts ClientOptions) *http.Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = opts.RetryMax
	if opts.RetryWaitMin > 0 {
		rc.RetryWaitMin = opts.RetryWaitMin
	}
	if opts.RetryWaitMax > 0 {
		rc.RetryWaitMax = opts.RetryWaitMax
	}
	// A nil logger silences retryablehttp's default stderr logging.
	rc.Logger = nil
	if opts.Logger != nil {
		rc.Logger = opts.Logger
	}
	if ts != nil {
		rc.HTTPClient = oauth2.NewClient(ctx, ts)
	}
	return rc.StandardClient()
}
