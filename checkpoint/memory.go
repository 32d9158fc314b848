package checkpoint

import (
	"context"
	"sort"
	"sync"

	"github.com/randalmurphal/issueflow/workflow"
)

// MemorySaver keeps every checkpoint in process memory. Nothing is evicted
// unless Delete is called.
type MemorySaver struct {
	mu      sync.RWMutex
	threads map[string][]Checkpoint
}

// NewMemorySaver creates an empty in-memory store.
func NewMemorySaver() *MemorySaver {
	return &MemorySaver{threads: make(map[string][]Checkpoint)}
}

// Get returns a copy of the thread's latest state.
func (m *MemorySaver) Get(_ context.Context, threadID string) (workflow.State, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	history := m.threads[threadID]
	if len(history) == 0 {
		return workflow.State{}, false, nil
	}
	return history[len(history)-1].State.Clone(), true, nil
}

// Put appends a copy of state to the thread's history.
func (m *MemorySaver) Put(_ context.Context, threadID string, state workflow.State) error {
	snapshot := state.Clone()

	m.mu.Lock()
	defer m.mu.Unlock()

	step := len(m.threads[threadID])
	m.threads[threadID] = append(m.threads[threadID], newCheckpoint(threadID, step, snapshot))
	return nil
}

// List returns copies of the thread's checkpoints in step order.
func (m *MemorySaver) List(_ context.Context, threadID string) ([]Checkpoint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	history := m.threads[threadID]
	out := make([]Checkpoint, len(history))
	for i, cp := range history {
		out[i] = cp
		out[i].State = cp.State.Clone()
	}
	return out, nil
}

// Threads returns the known thread ids, sorted.
func (m *MemorySaver) Threads() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.threads))
	for id := range m.threads {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Delete drops a thread's history.
func (m *MemorySaver) Delete(_ context.Context, threadID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.threads, threadID)
	return nil
}

var (
	_ Saver  = (*MemorySaver)(nil)
	_ Lister = (*MemorySaver)(nil)
)
