package checkpoint

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/issueflow/plan"
	"github.com/randalmurphal/issueflow/workflow"
)

type closingSaver interface {
	Saver
	Lister
}

func stores(t *testing.T) map[string]closingSaver {
	t.Helper()

	sqlite, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "checkpoints.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sqlite.Close() })

	return map[string]closingSaver{
		"memory": NewMemorySaver(),
		"sqlite": sqlite,
	}
}

func sampleState() workflow.State {
	s := workflow.NewState("acme/widgets", 42)
	s.TargetFiles = []string{"main.go"}
	s.Plan = &plan.Plan{Steps: []string{"edit"}, EstimatedComplexity: plan.ComplexityLow}
	s.Trace = []string{"load_context"}
	return s
}

func TestSaver_GetMissing(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := store.Get(context.Background(), "nope")
			require.NoError(t, err)
			assert.False(t, ok)

			history, err := store.List(context.Background(), "nope")
			require.NoError(t, err)
			assert.Empty(t, history)
		})
	}
}

func TestSaver_Isolation(t *testing.T) {
	ctx := context.Background()
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			s := sampleState()
			require.NoError(t, store.Put(ctx, "t1", s))

			// Mutating the caller's value after Put must not leak in.
			s.TargetFiles[0] = "mutated.go"
			s.Plan.Steps[0] = "mutated"

			first, ok, err := store.Get(ctx, "t1")
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, []string{"main.go"}, first.TargetFiles)
			assert.Equal(t, "edit", first.Plan.Steps[0])

			// Mutating one Get result must not affect the next.
			first.Trace = append(first.Trace, "extra")
			first.Status = "changed"

			second, ok, err := store.Get(ctx, "t1")
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, []string{"load_context"}, second.Trace)
			assert.Equal(t, workflow.StatusNew, second.Status)
		})
	}
}

func TestSaver_HistoryOrder(t *testing.T) {
	ctx := context.Background()
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			for i := 0; i < 3; i++ {
				s := sampleState()
				s.Status = fmt.Sprintf("step-%d", i)
				require.NoError(t, store.Put(ctx, "t1", s))
			}
			require.NoError(t, store.Put(ctx, "other", sampleState()))

			history, err := store.List(ctx, "t1")
			require.NoError(t, err)
			require.Len(t, history, 3)
			for i, cp := range history {
				assert.Equal(t, i, cp.Step)
				assert.Equal(t, "t1", cp.ThreadID)
				assert.Equal(t, fmt.Sprintf("step-%d", i), cp.State.Status)
				assert.NotEmpty(t, cp.ID)
				assert.False(t, cp.CreatedAt.IsZero())
			}

			latest, ok, err := store.Get(ctx, "t1")
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, "step-2", latest.Status)
		})
	}
}

func TestSaver_ConcurrentPuts(t *testing.T) {
	ctx := context.Background()
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			var wg sync.WaitGroup
			for i := 0; i < 10; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					s := sampleState()
					s.Status = fmt.Sprintf("writer-%d", i)
					assert.NoError(t, store.Put(ctx, fmt.Sprintf("thread-%d", i%2), s))
				}(i)
			}
			wg.Wait()

			for _, thread := range []string{"thread-0", "thread-1"} {
				history, err := store.List(ctx, thread)
				require.NoError(t, err)
				require.Len(t, history, 5)
				for i, cp := range history {
					assert.Equal(t, i, cp.Step)
				}
			}
		})
	}
}

func TestMemorySaver_ThreadsAndDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySaver()
	require.NoError(t, store.Put(ctx, "b", sampleState()))
	require.NoError(t, store.Put(ctx, "a", sampleState()))

	assert.Equal(t, []string{"a", "b"}, store.Threads())

	require.NoError(t, store.Delete(ctx, "a"))
	_, ok, err := store.Get(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, []string{"b"}, store.Threads())
}

func TestSQLiteSaver_ValuesRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := OpenSQLite(ctx, ":memory:")
	require.NoError(t, err)
	defer store.Close()

	s := sampleState()
	s.Values = map[string]any{"attempts": 2, "context": map[string]any{"lang": "go"}}
	require.NoError(t, store.Put(ctx, "t1", s))

	got, ok, err := store.Get(ctx, "t1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, float64(2), got.Values["attempts"])
	assert.Equal(t, map[string]any{"lang": "go"}, got.Values["context"])

	threads, err := store.Threads(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"t1"}, threads)

	require.NoError(t, store.Delete(ctx, "t1"))
	_, ok, err = store.Get(ctx, "t1")
	require.NoError(t, err)
	assert.False(t, ok)
}
