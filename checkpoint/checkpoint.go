package checkpoint

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/randalmurphal/issueflow/workflow"
)

// Checkpoint is a state snapshot taken at a step boundary. Step 0 is the
// snapshot taken before the first node runs.
type Checkpoint struct {
	ID        string         `json:"id"`
	ThreadID  string         `json:"thread_id"`
	Step      int            `json:"step"`
	State     workflow.State `json:"state"`
	CreatedAt time.Time      `json:"created_at"`
}

// Saver stores the latest state per thread.
//
// Implementations must isolate values: Put stores a copy, and Get returns a
// copy that the caller may mutate freely. Saver is safe for concurrent use.
type Saver interface {
	// Get returns the latest state for the thread; ok is false if the
	// thread has no checkpoint.
	Get(ctx context.Context, threadID string) (state workflow.State, ok bool, err error)

	// Put records a snapshot as the thread's latest state.
	Put(ctx context.Context, threadID string, state workflow.State) error
}

// Lister exposes a thread's checkpoint history.
type Lister interface {
	// List returns the thread's checkpoints in step order.
	List(ctx context.Context, threadID string) ([]Checkpoint, error)
}

func newCheckpoint(threadID string, step int, state workflow.State) Checkpoint {
	return Checkpoint{
		ID:        uuid.NewString(),
		ThreadID:  threadID,
		Step:      step,
		State:     state,
		CreatedAt: time.Now().UTC(),
	}
}
