package graph

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sort"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/randalmurphal/issueflow/checkpoint"
	"github.com/randalmurphal/issueflow/workflow"
)

// DefaultThreadID is used when a run names no thread.
const DefaultThreadID = "default"

// ThreadIDKey is the Configurable key that selects the thread.
const ThreadIDKey = "thread_id"

// RunConfig selects the checkpoint thread for a run.
type RunConfig struct {
	// ThreadID names the thread when Configurable does not.
	ThreadID string

	// Configurable carries per-run settings; a non-empty string under
	// ThreadIDKey takes precedence over ThreadID.
	Configurable map[string]any
}

// Thread resolves the thread id for the run.
func (c RunConfig) Thread() string {
	if id, ok := c.Configurable[ThreadIDKey].(string); ok && id != "" {
		return id
	}
	if c.ThreadID != "" {
		return c.ThreadID
	}
	return DefaultThreadID
}

// Compiled is an immutable, validated graph. It is safe for concurrent
// Run calls; runs sharing a thread id interleave their checkpoints.
type Compiled struct {
	nodes map[string]workflow.NodeFunc
	edges map[string]string
	entry string
	store checkpoint.Saver
	cfg   compileConfig
}

// EntryPoint returns the first node.
func (c *Compiled) EntryPoint() string {
	return c.entry
}

// Nodes returns the registered node names, sorted.
func (c *Compiled) Nodes() []string {
	names := make([]string, 0, len(c.nodes))
	for name := range c.nodes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Successor returns the node after name, or END.
func (c *Compiled) Successor(name string) string {
	if next, ok := c.edges[name]; ok {
		return next
	}
	return END
}

// GetState returns the latest checkpoint of a thread.
func (c *Compiled) GetState(ctx context.Context, threadID string) (workflow.State, bool, error) {
	return c.store.Get(ctx, threadID)
}

// Run executes the graph from the entry point until END.
//
// The initial state is copied and checkpointed before the first node, and
// the working state is checkpointed after every node. A node's error is
// recorded as an error status and does not stop the run. Run returns an
// error only for configuration problems, checkpoint failures, panics,
// exceeding the step bound, or context cancellation.
func (c *Compiled) Run(ctx context.Context, initial workflow.State, cfg RunConfig) (workflow.State, error) {
	threadID := cfg.Thread()
	logger := c.cfg.logger.With("thread_id", threadID)

	ctx, span := c.cfg.tracer.Start(ctx, "graph.run",
		trace.WithAttributes(attribute.String("graph.thread_id", threadID)))
	defer span.End()
	ctx = workflow.WithThreadID(ctx, threadID)

	start := time.Now()
	state := initial.Clone()
	step := 0

	if err := c.checkpoint(ctx, threadID, step, state); err != nil {
		return c.fail(span, logger, state, err)
	}

	current := c.entry
	for current != END {
		if err := ctx.Err(); err != nil {
			return c.fail(span, logger, state, err)
		}
		if c.cfg.maxSteps > 0 && step >= c.cfg.maxSteps {
			return c.fail(span, logger, state,
				&ConfigurationError{Node: current, Err: fmt.Errorf("%w (%d)", ErrMaxStepsExceeded, c.cfg.maxSteps)})
		}

		fn, ok := c.nodes[current]
		if !ok {
			return c.fail(span, logger, state, &ConfigurationError{Node: current, Err: ErrUnknownNode})
		}

		step++
		update, err := c.runNode(ctx, current, step, fn, state)
		if err != nil {
			return c.fail(span, logger, state, err)
		}
		state = state.Apply(update)

		if err := c.checkpoint(ctx, threadID, step, state); err != nil {
			return c.fail(span, logger, state, err)
		}

		next := c.Successor(current)
		if c.cfg.errorRouting == StopOnError && state.Status == workflow.StatusError {
			next = END
		}

		logger.Debug("graph step completed",
			"node", current,
			"step", step,
			"status", state.Status,
			"next", next)
		current = next
	}

	span.SetAttributes(
		attribute.Int("graph.steps", step),
		attribute.String("graph.status", state.Status))
	logger.Info("graph run completed",
		"steps", step,
		"status", state.Status,
		"duration", time.Since(start))

	return state.Clone(), nil
}

// runNode invokes one node on a private copy of the state. Node errors are
// converted to failure updates; panics become *PanicError.
func (c *Compiled) runNode(ctx context.Context, name string, step int, fn workflow.NodeFunc, state workflow.State) (update *workflow.Update, err error) {
	ctx, span := c.cfg.tracer.Start(ctx, "graph.node",
		trace.WithAttributes(
			attribute.String("graph.node", name),
			attribute.Int("graph.step", step)))
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Node: name, Value: r, Stack: string(debug.Stack())}
			span.SetStatus(codes.Error, err.Error())
		}
	}()

	start := time.Now()
	update, nodeErr := fn(ctx, state.Clone())
	if nodeErr != nil {
		c.cfg.logger.Warn("node failed",
			"node", name,
			"step", step,
			"error", nodeErr)
		span.RecordError(nodeErr)
		span.SetStatus(codes.Error, nodeErr.Error())
		update = workflow.Failed(nodeErr.Error()).WithTrace(traceOf(update)...)
	}
	if update != nil && update.Status != nil {
		span.SetAttributes(attribute.String("graph.status", *update.Status))
	}
	span.SetAttributes(attribute.Int64("graph.duration_ms", time.Since(start).Milliseconds()))

	return update, nil
}

func (c *Compiled) checkpoint(ctx context.Context, threadID string, step int, state workflow.State) error {
	if err := c.store.Put(ctx, threadID, state); err != nil {
		return &CheckpointError{ThreadID: threadID, Step: step, Err: err}
	}
	return nil
}

func (c *Compiled) fail(span trace.Span, logger *slog.Logger, state workflow.State, err error) (workflow.State, error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	logger.Error("graph run aborted", "error", err)
	return state.Clone(), err
}

func traceOf(u *workflow.Update) []string {
	if u == nil {
		return nil
	}
	return u.Trace
}
