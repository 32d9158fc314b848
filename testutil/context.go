package testutil

import (
	"context"
	"log/slog"
	"testing"
	"time"

	devcontext "github.com/randalmurphal/issueflow/context"
)

// TestContext returns a context that is canceled when the test ends.
// This ensures any goroutines started during the test are properly cleaned up.
func TestContext(t *testing.T) context.Context {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	return ctx
}

// TestContextWithTimeout returns a context with a timeout.
// The context is also canceled when the test ends.
func TestContextWithTimeout(t *testing.T, timeout time.Duration) context.Context {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	t.Cleanup(cancel)

	return ctx
}

// ServicesContext returns a test context carrying services and a logger
// that writes through t.Log.
func ServicesContext(t *testing.T, services *devcontext.Services) context.Context {
	t.Helper()

	if services == nil {
		services = &devcontext.Services{}
	}
	if services.Logger == nil {
		services.Logger = TestLogger(t)
	}
	return services.InjectAll(TestContext(t))
}

// TestLogger returns a debug-level logger that writes to the test log.
func TestLogger(t *testing.T) *slog.Logger {
	t.Helper()
	return slog.New(slog.NewTextHandler(testWriter{t}, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(string(p))
	return len(p), nil
}
