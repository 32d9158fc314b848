package graph

import (
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/randalmurphal/issueflow/graph"

// ErrorRouting decides what happens after a node leaves the state with an
// error status.
type ErrorRouting int

const (
	// ContinueOnError follows the edge map as usual. Later nodes see the
	// error status and decide for themselves.
	ContinueOnError ErrorRouting = iota

	// StopOnError ends the run after the failing node.
	StopOnError
)

// DefaultMaxSteps bounds how many nodes one run may execute.
const DefaultMaxSteps = 100

type compileConfig struct {
	logger       *slog.Logger
	tracer       trace.Tracer
	errorRouting ErrorRouting
	maxSteps     int
}

func defaultCompileConfig() compileConfig {
	return compileConfig{
		logger:       slog.Default(),
		tracer:       otel.Tracer(tracerName),
		errorRouting: ContinueOnError,
		maxSteps:     DefaultMaxSteps,
	}
}

// CompileOption configures a compiled graph.
type CompileOption func(*compileConfig)

// WithLogger sets the logger for run and step records.
func WithLogger(logger *slog.Logger) CompileOption {
	return func(c *compileConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithTracer sets the OpenTelemetry tracer. The default comes from the
// global tracer provider.
func WithTracer(tracer trace.Tracer) CompileOption {
	return func(c *compileConfig) {
		if tracer != nil {
			c.tracer = tracer
		}
	}
}

// WithErrorRouting chooses how error statuses affect routing.
func WithErrorRouting(routing ErrorRouting) CompileOption {
	return func(c *compileConfig) {
		c.errorRouting = routing
	}
}

// WithMaxSteps bounds the number of node executions per run. Zero or less
// removes the bound.
func WithMaxSteps(n int) CompileOption {
	return func(c *compileConfig) {
		c.maxSteps = n
	}
}
