package issueflow

import (
	"slices"

	"github.com/randalmurphal/issueflow/checkpoint"
	"github.com/randalmurphal/issueflow/graph"
	"github.com/randalmurphal/issueflow/workflow"
)

var stages = []string{
	workflow.NodeLoadContext,
	workflow.NodePlanIssue,
	workflow.NodeExecuteIssue,
	workflow.NodeCreatePR,
}

// Stages returns the pipeline nodes in execution order. The slice is a
// copy.
func Stages() []string {
	return slices.Clone(stages)
}

// Option configures NewPipeline.
type Option func(*pipelineConfig)

type pipelineConfig struct {
	nodes   map[string]workflow.NodeFunc
	compile []graph.CompileOption
}

// WithNode replaces the implementation of one stage. NewPipeline rejects
// names that are not stages.
func WithNode(name string, fn workflow.NodeFunc) Option {
	return func(c *pipelineConfig) {
		c.nodes[name] = fn
	}
}

// WithCompileOptions passes options through to graph compilation.
func WithCompileOptions(opts ...graph.CompileOption) Option {
	return func(c *pipelineConfig) {
		c.compile = append(c.compile, opts...)
	}
}

// DefaultNodes returns the production node for every stage.
func DefaultNodes() map[string]workflow.NodeFunc {
	return map[string]workflow.NodeFunc{
		workflow.NodeLoadContext:  workflow.LoadContextNode,
		workflow.NodePlanIssue:    workflow.PlanIssueNode,
		workflow.NodeExecuteIssue: workflow.ExecuteIssueNode,
		workflow.NodeCreatePR:     workflow.CreatePRNode,
	}
}

// NewPipeline compiles load_context -> plan_issue -> execute_issue ->
// create_pr -> END against store. Every node records itself in the
// trace and logs its duration.
func NewPipeline(store checkpoint.Saver, opts ...Option) (*graph.Compiled, error) {
	cfg := &pipelineConfig{nodes: DefaultNodes()}
	for _, opt := range opts {
		opt(cfg)
	}

	b := graph.NewBuilder(graph.WithStrictRegistration())
	for i, name := range stages {
		fn, ok := cfg.nodes[name]
		if !ok || fn == nil {
			fn = DefaultNodes()[name]
		}
		b.AddNode(name, graph.Traced(name, workflow.WithTiming(name, fn)))

		next := graph.END
		if i+1 < len(stages) {
			next = stages[i+1]
		}
		b.AddEdge(name, next)
	}
	for name := range cfg.nodes {
		if !isStage(name) {
			return nil, &graph.ConfigurationError{Node: name, Err: graph.ErrUnknownNode}
		}
	}
	b.SetEntryPoint(stages[0])

	return b.Compile(store, cfg.compile...)
}

func isStage(name string) bool {
	return slices.Contains(stages, name)
}
