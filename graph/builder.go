package graph

import (
	"reflect"

	"github.com/randalmurphal/flowgraph/pkg/flowgraph"

	"github.com/randalmurphal/issueflow/checkpoint"
	"github.com/randalmurphal/issueflow/workflow"
)

// END is the terminal marker. An edge to END, or a node with no outgoing
// edge, finishes the run.
const END = flowgraph.END

// Builder accumulates nodes, edges, and the entry point. It is not safe for
// concurrent use; compile it once construction is done.
type Builder struct {
	nodes  map[string]workflow.NodeFunc
	edges  map[string]string
	entry  string
	strict bool
	errs   []error
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithStrictRegistration makes Compile reject a node name or edge source
// registered more than once. By default the last registration wins.
func WithStrictRegistration() BuilderOption {
	return func(b *Builder) {
		b.strict = true
	}
}

// NewBuilder creates an empty graph builder.
func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{
		nodes: make(map[string]workflow.NodeFunc),
		edges: make(map[string]string),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// AddNode registers fn under name. Registering a name again replaces the
// earlier function.
func (b *Builder) AddNode(name string, fn workflow.NodeFunc) *Builder {
	switch {
	case name == "" || name == END:
		b.errs = append(b.errs, &ConfigurationError{Node: name, Err: ErrInvalidNode})
		return b
	case fn == nil:
		b.errs = append(b.errs, &ConfigurationError{Node: name, Err: ErrInvalidNode})
		return b
	}
	if _, exists := b.nodes[name]; exists && b.strict {
		b.errs = append(b.errs, &ConfigurationError{Node: name, Err: ErrDuplicateNode})
	}
	b.nodes[name] = fn
	return b
}

// SetEntryPoint names the first node to run. It is checked by Compile.
func (b *Builder) SetEntryPoint(name string) *Builder {
	b.entry = name
	return b
}

// AddEdge makes dest the successor of source. Each node has at most one
// successor; adding a second edge from source replaces the first.
func (b *Builder) AddEdge(source, dest string) *Builder {
	if _, exists := b.edges[source]; exists && b.strict {
		b.errs = append(b.errs, &ConfigurationError{Node: source, Err: ErrDuplicateEdge})
	}
	b.edges[source] = dest
	return b
}

// Compile validates the graph and freezes a copy of it. Later changes to
// the builder do not affect the returned graph.
func (b *Builder) Compile(store checkpoint.Saver, opts ...CompileOption) (*Compiled, error) {
	if len(b.errs) > 0 {
		return nil, b.errs[0]
	}
	if b.entry == "" {
		return nil, &ConfigurationError{Err: ErrNoEntryPoint}
	}
	if isNilSaver(store) {
		return nil, &ConfigurationError{Err: ErrNoCheckpointer}
	}
	if _, ok := b.nodes[b.entry]; !ok {
		return nil, &ConfigurationError{Node: b.entry, Err: ErrUnknownNode}
	}
	for source, dest := range b.edges {
		if _, ok := b.nodes[source]; !ok {
			return nil, &ConfigurationError{Node: source, Err: ErrUnknownNode}
		}
		if _, ok := b.nodes[dest]; !ok && dest != END {
			return nil, &ConfigurationError{Node: dest, Err: ErrUnknownNode}
		}
	}

	c := &Compiled{
		nodes: make(map[string]workflow.NodeFunc, len(b.nodes)),
		edges: make(map[string]string, len(b.edges)),
		entry: b.entry,
		store: store,
	}
	for name, fn := range b.nodes {
		c.nodes[name] = fn
	}
	for source, dest := range b.edges {
		c.edges[source] = dest
	}

	cfg := defaultCompileConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	c.cfg = cfg

	return c, nil
}

// isNilSaver also catches a nil pointer wrapped in the interface.
func isNilSaver(store checkpoint.Saver) bool {
	if store == nil {
		return true
	}
	v := reflect.ValueOf(store)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Interface, reflect.Chan:
		return v.IsNil()
	}
	return false
}
