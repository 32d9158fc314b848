package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	devcontext "github.com/randalmurphal/issueflow/context"
)

// Node names of the issue pipeline.
const (
	NodeLoadContext  = "load_context"
	NodePlanIssue    = "plan_issue"
	NodeExecuteIssue = "execute_issue"
	NodeCreatePR     = "create_pr"
)

// =============================================================================
// Node Types
// =============================================================================

// NodeFunc processes a read-only view of the state and returns the fields
// it wants to change. A nil update changes nothing.
//
// A returned error is a node failure. The executor records it in the state
// as an error status and keeps going; it never aborts the run.
type NodeFunc func(ctx context.Context, state State) (*Update, error)

// NodeConfig configures node behavior.
type NodeConfig struct {
	RepoRoot        string   // Root for relative target file paths (default: git repo or cwd)
	BaseBranch      string   // Pull request base branch (default: "main")
	Remote          string   // Remote to push to (default: "origin")
	MaxDiffLines    int      // Reject larger diffs; 0 disables (default: 300)
	MaxAttempts     int      // Attempts per collaborator call (default: 3)
	MaxContextFiles int      // Files listed in the repository context (default: 500)
	Labels          []string // Labels added to created pull requests
	Draft           bool     // Open pull requests as drafts
}

// DefaultNodeConfig returns sensible defaults.
func DefaultNodeConfig() NodeConfig {
	return NodeConfig{
		BaseBranch:      "main",
		Remote:          "origin",
		MaxDiffLines:    300,
		MaxAttempts:     3,
		MaxContextFiles: 500,
		Labels:          []string{"issueflow"},
	}
}

type nodeConfigKey struct{}

// WithNodeConfig stores cfg in the context for the pipeline nodes.
func WithNodeConfig(ctx context.Context, cfg NodeConfig) context.Context {
	return context.WithValue(ctx, nodeConfigKey{}, cfg)
}

// NodeConfigFromContext returns the configured NodeConfig, or the defaults.
func NodeConfigFromContext(ctx context.Context) NodeConfig {
	if cfg, ok := ctx.Value(nodeConfigKey{}).(NodeConfig); ok {
		return cfg
	}
	return DefaultNodeConfig()
}

type threadIDKey struct{}

// WithThreadID records the checkpoint thread of the running graph.
func WithThreadID(ctx context.Context, threadID string) context.Context {
	return context.WithValue(ctx, threadIDKey{}, threadID)
}

// ThreadIDFromContext returns the thread id set by the executor, or "".
func ThreadIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(threadIDKey{}).(string)
	return id
}

// =============================================================================
// Node Wrappers
// =============================================================================

// WithRetry re-runs a node that returns an error, up to maxAttempts times
// in total. Failure updates are results, not errors, and are not retried.
func WithRetry(node NodeFunc, maxAttempts int) NodeFunc {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return func(ctx context.Context, state State) (*Update, error) {
		var lastErr error
		for attempt := 1; attempt <= maxAttempts; attempt++ {
			u, err := node(ctx, state)
			if err == nil {
				return u, nil
			}
			lastErr = err
			if ctx.Err() != nil {
				break
			}
		}
		return nil, fmt.Errorf("after %d attempts: %w", maxAttempts, lastErr)
	}
}

// WithTiming logs how long the node took.
func WithTiming(name string, node NodeFunc) NodeFunc {
	return func(ctx context.Context, state State) (*Update, error) {
		start := time.Now()
		u, err := node(ctx, state)
		slog.Debug("node execution completed",
			"node", name,
			"duration", time.Since(start),
			"failed", err != nil)
		return u, err
	}
}

// callWithAttempts runs fn until it succeeds, at most attempts times.
// Cancellation stops early.
func callWithAttempts(ctx context.Context, attempts int, what string, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for i := 1; i <= attempts; i++ {
		if err = fn(); err == nil || ctx.Err() != nil {
			return err
		}
		devcontext.Logger(ctx).Debug("collaborator call failed",
			"call", what,
			"attempt", i,
			"max_attempts", attempts,
			"error", err)
	}
	return err
}
