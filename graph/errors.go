package graph

import (
	"errors"
	"fmt"
)

// Configuration errors. They are wrapped in *ConfigurationError.
var (
	ErrNoEntryPoint     = errors.New("entry point not set")
	ErrNoCheckpointer   = errors.New("checkpoint store is required")
	ErrUnknownNode      = errors.New("unknown node")
	ErrInvalidNode      = errors.New("invalid node registration")
	ErrDuplicateNode    = errors.New("node registered twice")
	ErrDuplicateEdge    = errors.New("edge registered twice")
	ErrMaxStepsExceeded = errors.New("max steps exceeded")
)

// ConfigurationError reports a graph that cannot be compiled or run as
// built.
type ConfigurationError struct {
	Node string // Offending node, when there is one
	Err  error  // One of the sentinel errors above
}

func (e *ConfigurationError) Error() string {
	if e.Node != "" {
		return fmt.Sprintf("graph configuration: %v: %q", e.Err, e.Node)
	}
	return fmt.Sprintf("graph configuration: %v", e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// PanicError reports a node that panicked. The run stops and the last
// checkpoint is the state before the panicking node.
type PanicError struct {
	Node  string
	Value any
	Stack string
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("node %q panicked: %v", e.Node, e.Value)
}

// CheckpointError reports a checkpoint store failure during a run.
type CheckpointError struct {
	ThreadID string
	Step     int
	Err      error
}

func (e *CheckpointError) Error() string {
	return fmt.Sprintf("checkpoint thread %q step %d: %v", e.ThreadID, e.Step, e.Err)
}

func (e *CheckpointError) Unwrap() error {
	return e.Err
}
