package graph

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/randalmurphal/flowgraph/pkg/flowgraph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/issueflow/checkpoint"
	"github.com/randalmurphal/issueflow/workflow"
)

func setValue(key string, value any) workflow.NodeFunc {
	return func(ctx context.Context, s workflow.State) (*workflow.Update, error) {
		return workflow.NewUpdate().WithValue(key, value), nil
	}
}

func setStatus(status string) workflow.NodeFunc {
	return func(ctx context.Context, s workflow.State) (*workflow.Update, error) {
		return workflow.NewUpdate().WithStatus(status), nil
	}
}

func chain(t *testing.T, store checkpoint.Saver, names []string, fns []workflow.NodeFunc, opts ...CompileOption) *Compiled {
	t.Helper()
	b := NewBuilder()
	for i, name := range names {
		b.AddNode(name, Traced(name, fns[i]))
		next := END
		if i+1 < len(names) {
			next = names[i+1]
		}
		b.AddEdge(name, next)
	}
	b.SetEntryPoint(names[0])
	g, err := b.Compile(store, opts...)
	require.NoError(t, err)
	return g
}

// =============================================================================
// Compile
// =============================================================================

func TestCompile_Errors(t *testing.T) {
	noop := setStatus("ok")
	store := checkpoint.NewMemorySaver()

	tests := []struct {
		name    string
		build   func() *Builder
		store   checkpoint.Saver
		wantErr error
	}{
		{
			name:    "no entry point",
			build:   func() *Builder { return NewBuilder().AddNode("a", noop) },
			store:   store,
			wantErr: ErrNoEntryPoint,
		},
		{
			name:    "entry point not registered",
			build:   func() *Builder { return NewBuilder().AddNode("a", noop).SetEntryPoint("b") },
			store:   store,
			wantErr: ErrUnknownNode,
		},
		{
			name: "edge to unknown node",
			build: func() *Builder {
				return NewBuilder().AddNode("a", noop).AddEdge("a", "ghost").SetEntryPoint("a")
			},
			store:   store,
			wantErr: ErrUnknownNode,
		},
		{
			name: "edge from unknown node",
			build: func() *Builder {
				return NewBuilder().AddNode("a", noop).AddEdge("ghost", "a").SetEntryPoint("a")
			},
			store:   store,
			wantErr: ErrUnknownNode,
		},
		{
			name:    "nil node function",
			build:   func() *Builder { return NewBuilder().AddNode("a", nil).SetEntryPoint("a") },
			store:   store,
			wantErr: ErrInvalidNode,
		},
		{
			name:    "empty node name",
			build:   func() *Builder { return NewBuilder().AddNode("", noop).SetEntryPoint("") },
			store:   store,
			wantErr: ErrInvalidNode,
		},
		{
			name:    "nil store",
			build:   func() *Builder { return NewBuilder().AddNode("a", noop).SetEntryPoint("a") },
			store:   nil,
			wantErr: ErrNoCheckpointer,
		},
		{
			name:    "typed nil memory store",
			build:   func() *Builder { return NewBuilder().AddNode("a", noop).SetEntryPoint("a") },
			store:   (*checkpoint.MemorySaver)(nil),
			wantErr: ErrNoCheckpointer,
		},
		{
			name:    "typed nil sqlite store",
			build:   func() *Builder { return NewBuilder().AddNode("a", noop).SetEntryPoint("a") },
			store:   (*checkpoint.SQLiteSaver)(nil),
			wantErr: ErrNoCheckpointer,
		},
		{
			name: "strict duplicate node",
			build: func() *Builder {
				return NewBuilder(WithStrictRegistration()).AddNode("a", noop).AddNode("a", noop).SetEntryPoint("a")
			},
			store:   store,
			wantErr: ErrDuplicateNode,
		},
		{
			name: "strict duplicate edge",
			build: func() *Builder {
				return NewBuilder(WithStrictRegistration()).
					AddNode("a", noop).AddNode("b", noop).
					AddEdge("a", "b").AddEdge("a", END).
					SetEntryPoint("a")
			},
			store:   store,
			wantErr: ErrDuplicateEdge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.build().Compile(tt.store)
			require.Error(t, err)

			var cfgErr *ConfigurationError
			assert.True(t, errors.As(err, &cfgErr), "want *ConfigurationError, got %T", err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCompile_DuplicateRegistrationLastWins(t *testing.T) {
	g, err := NewBuilder().
		AddNode("a", setStatus("first")).
		AddNode("a", setStatus("second")).
		AddEdge("a", "b").
		AddNode("b", setValue("x", 1)).
		AddEdge("a", END).
		SetEntryPoint("a").
		Compile(checkpoint.NewMemorySaver())
	require.NoError(t, err)

	final, err := g.Run(context.Background(), workflow.State{}, RunConfig{})
	require.NoError(t, err)
	assert.Equal(t, "second", final.Status)
	assert.Nil(t, final.Values, "second edge from a should have replaced a->b")
}

func TestCompile_FreezesBuilder(t *testing.T) {
	b := NewBuilder().AddNode("a", setStatus("original")).SetEntryPoint("a")
	g, err := b.Compile(checkpoint.NewMemorySaver())
	require.NoError(t, err)

	b.AddNode("a", setStatus("replaced"))
	b.AddNode("b", setStatus("b"))
	b.AddEdge("a", "b")

	final, err := g.Run(context.Background(), workflow.State{}, RunConfig{})
	require.NoError(t, err)
	assert.Equal(t, "original", final.Status)
	assert.Equal(t, []string{"a"}, g.Nodes())
	assert.Equal(t, END, g.Successor("a"))
	assert.Equal(t, "a", g.EntryPoint())
}

// =============================================================================
// Run
// =============================================================================

func TestRun_MergeSemantics(t *testing.T) {
	t.Run("disjoint keys are both kept", func(t *testing.T) {
		g := chain(t, checkpoint.NewMemorySaver(), []string{"one", "two"},
			[]workflow.NodeFunc{setValue("a", 1), setValue("b", 2)})

		final, err := g.Run(context.Background(), workflow.State{}, RunConfig{})
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"a": 1, "b": 2}, final.Values)
	})

	t.Run("same key is overwritten", func(t *testing.T) {
		g := chain(t, checkpoint.NewMemorySaver(), []string{"one", "two"},
			[]workflow.NodeFunc{setValue("a", 1), setValue("a", 3)})

		final, err := g.Run(context.Background(), workflow.State{}, RunConfig{})
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"a": 3}, final.Values)
	})

	t.Run("absent fields are untouched", func(t *testing.T) {
		g := chain(t, checkpoint.NewMemorySaver(), []string{"one"},
			[]workflow.NodeFunc{setStatus("done")})

		initial := workflow.NewState("acme/widgets", 7)
		initial.Diff = "keep me"
		final, err := g.Run(context.Background(), initial, RunConfig{})
		require.NoError(t, err)
		assert.Equal(t, "done", final.Status)
		assert.Equal(t, "keep me", final.Diff)
		assert.Equal(t, "acme/widgets", final.Repo)
	})

	t.Run("nil update changes nothing but the trace", func(t *testing.T) {
		nothing := func(ctx context.Context, s workflow.State) (*workflow.Update, error) { return nil, nil }
		g := chain(t, checkpoint.NewMemorySaver(), []string{"noop"}, []workflow.NodeFunc{nothing})

		final, err := g.Run(context.Background(), workflow.State{Status: "new"}, RunConfig{})
		require.NoError(t, err)
		assert.Equal(t, "new", final.Status)
		assert.Equal(t, []string{"noop"}, final.Trace)
	})
}

func TestRun_ClearError(t *testing.T) {
	clear := func(ctx context.Context, s workflow.State) (*workflow.Update, error) {
		return workflow.NewUpdate().WithStatus("recovered").ClearingError(), nil
	}
	g := chain(t, checkpoint.NewMemorySaver(), []string{"clear"}, []workflow.NodeFunc{clear})

	final, err := g.Run(context.Background(), workflow.State{Status: "error", Error: "boom", Diff: "d"}, RunConfig{})
	require.NoError(t, err)
	assert.Equal(t, "recovered", final.Status)
	assert.Empty(t, final.Error)
	assert.Equal(t, "d", final.Diff)
}

func TestRun_CheckpointPerStep(t *testing.T) {
	store := checkpoint.NewMemorySaver()
	g := chain(t, store, []string{"a", "b", "c"},
		[]workflow.NodeFunc{setStatus("s1"), setStatus("s2"), setStatus("s3")})

	_, err := g.Run(context.Background(), workflow.State{Status: "new", Trace: []string{}}, RunConfig{ThreadID: "t"})
	require.NoError(t, err)

	history, err := store.List(context.Background(), "t")
	require.NoError(t, err)
	require.Len(t, history, 4)

	wantStatus := []string{"new", "s1", "s2", "s3"}
	wantTrace := [][]string{{}, {"a"}, {"a", "b"}, {"a", "b", "c"}}
	for i, cp := range history {
		assert.Equal(t, i, cp.Step)
		assert.Equal(t, wantStatus[i], cp.State.Status)
		assert.Equal(t, wantTrace[i], cp.State.Trace)
	}
}

func TestRun_ReturnedStateIsIsolated(t *testing.T) {
	store := checkpoint.NewMemorySaver()
	g := chain(t, store, []string{"a"}, []workflow.NodeFunc{setValue("k", "v")})

	initial := workflow.State{Status: "new", TargetFiles: []string{"x.go"}}
	final, err := g.Run(context.Background(), initial, RunConfig{ThreadID: "iso"})
	require.NoError(t, err)

	final.Values["k"] = "mutated"
	final.Trace[0] = "mutated"
	final.TargetFiles[0] = "mutated.go"

	saved, ok, err := g.GetState(context.Background(), "iso")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "v", saved.Values["k"])
	assert.Equal(t, []string{"a"}, saved.Trace)
	assert.Equal(t, []string{"x.go"}, saved.TargetFiles)

	assert.Equal(t, []string{"x.go"}, initial.TargetFiles, "caller's initial state must not change")
}

func TestRun_ReturnedStateIsIsolated_TypedContainers(t *testing.T) {
	type note struct{ Tags []string }
	store := checkpoint.NewMemorySaver()
	record := func(ctx context.Context, s workflow.State) (*workflow.Update, error) {
		return workflow.NewUpdate().
			WithValue("counts", []int{1, 2}).
			WithValue("scores", map[string]int{"a": 1}).
			WithValue("rows", []map[string]any{{"n": 1}}).
			WithValue("note", &note{Tags: []string{"x"}}), nil
	}
	g := chain(t, store, []string{"record"}, []workflow.NodeFunc{record})

	final, err := g.Run(context.Background(), workflow.State{Status: "new"}, RunConfig{ThreadID: "typed"})
	require.NoError(t, err)

	final.Values["counts"].([]int)[0] = 99
	final.Values["scores"].(map[string]int)["a"] = 99
	final.Values["rows"].([]map[string]any)[0]["n"] = 99
	final.Values["note"].(*note).Tags[0] = "changed"

	saved, ok, err := store.Get(context.Background(), "typed")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []int{1, 2}, saved.Values["counts"])
	assert.Equal(t, map[string]int{"a": 1}, saved.Values["scores"])
	assert.Equal(t, []map[string]any{{"n": 1}}, saved.Values["rows"])
	assert.Equal(t, []string{"x"}, saved.Values["note"].(*note).Tags)
}

func TestRun_NodesCannotMutateWorkingState(t *testing.T) {
	sneaky := func(ctx context.Context, s workflow.State) (*workflow.Update, error) {
		s.TargetFiles[0] = "sneaky.go"
		s.Status = "sneaky"
		return nil, nil
	}
	g := chain(t, checkpoint.NewMemorySaver(), []string{"sneaky"}, []workflow.NodeFunc{sneaky})

	final, err := g.Run(context.Background(), workflow.State{Status: "new", TargetFiles: []string{"a.go"}}, RunConfig{})
	require.NoError(t, err)
	assert.Equal(t, "new", final.Status)
	assert.Equal(t, []string{"a.go"}, final.TargetFiles)
}

func TestRunConfig_Thread(t *testing.T) {
	tests := []struct {
		name string
		cfg  RunConfig
		want string
	}{
		{"configurable wins", RunConfig{ThreadID: "top", Configurable: map[string]any{"thread_id": "nested"}}, "nested"},
		{"top level", RunConfig{ThreadID: "top"}, "top"},
		{"empty configurable value", RunConfig{ThreadID: "top", Configurable: map[string]any{"thread_id": ""}}, "top"},
		{"non-string configurable value", RunConfig{Configurable: map[string]any{"thread_id": 42}}, "default"},
		{"default", RunConfig{}, "default"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.Thread())
		})
	}
}

func TestRun_CheckpointsUnderResolvedThread(t *testing.T) {
	store := checkpoint.NewMemorySaver()
	g := chain(t, store, []string{"a"}, []workflow.NodeFunc{setStatus("done")})

	_, err := g.Run(context.Background(), workflow.State{}, RunConfig{Configurable: map[string]any{"thread_id": "nested"}})
	require.NoError(t, err)
	_, err = g.Run(context.Background(), workflow.State{}, RunConfig{})
	require.NoError(t, err)

	assert.Equal(t, []string{"default", "nested"}, store.Threads())
}

func TestRun_NodesSeeThreadID(t *testing.T) {
	var seen string
	node := func(ctx context.Context, s workflow.State) (*workflow.Update, error) {
		seen = workflow.ThreadIDFromContext(ctx)
		return nil, nil
	}
	g := chain(t, checkpoint.NewMemorySaver(), []string{"a"}, []workflow.NodeFunc{node})

	_, err := g.Run(context.Background(), workflow.State{}, RunConfig{ThreadID: "issue-7"})
	require.NoError(t, err)
	assert.Equal(t, "issue-7", seen)
}

func TestRun_NodeErrorBecomesErrorStatus(t *testing.T) {
	failing := func(ctx context.Context, s workflow.State) (*workflow.Update, error) {
		return nil, errors.New("model unavailable")
	}
	g := chain(t, checkpoint.NewMemorySaver(), []string{"fail", "after"},
		[]workflow.NodeFunc{failing, setValue("after", true)})

	final, err := g.Run(context.Background(), workflow.State{Status: "new"}, RunConfig{})
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusError, final.Status)
	assert.Equal(t, "model unavailable", final.Error)
	assert.Equal(t, []string{"fail", "after"}, final.Trace)
	assert.Equal(t, true, final.Values["after"], "default routing continues after an error")
}

func TestRun_StopOnError(t *testing.T) {
	fail := func(ctx context.Context, s workflow.State) (*workflow.Update, error) {
		return workflow.Failed("nope"), nil
	}
	store := checkpoint.NewMemorySaver()
	g := chain(t, store, []string{"fail", "after"},
		[]workflow.NodeFunc{fail, setValue("after", true)},
		WithErrorRouting(StopOnError))

	final, err := g.Run(context.Background(), workflow.State{}, RunConfig{ThreadID: "t"})
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusError, final.Status)
	assert.Equal(t, []string{"fail"}, final.Trace)
	assert.Nil(t, final.Values)

	history, err := store.List(context.Background(), "t")
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestRun_Panic(t *testing.T) {
	boom := func(ctx context.Context, s workflow.State) (*workflow.Update, error) {
		panic("kaboom")
	}
	store := checkpoint.NewMemorySaver()
	g := chain(t, store, []string{"ok", "boom"}, []workflow.NodeFunc{setStatus("fine"), boom})

	_, err := g.Run(context.Background(), workflow.State{}, RunConfig{ThreadID: "t"})
	var panicErr *PanicError
	require.ErrorAs(t, err, &panicErr)
	assert.Equal(t, "boom", panicErr.Node)
	assert.Equal(t, "kaboom", panicErr.Value)
	assert.NotEmpty(t, panicErr.Stack)

	latest, ok, err := store.Get(context.Background(), "t")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "fine", latest.Status)
}

func TestRun_MaxSteps(t *testing.T) {
	g, err := NewBuilder().
		AddNode("ping", setStatus("ping")).
		AddNode("pong", setStatus("pong")).
		AddEdge("ping", "pong").
		AddEdge("pong", "ping").
		SetEntryPoint("ping").
		Compile(checkpoint.NewMemorySaver(), WithMaxSteps(5))
	require.NoError(t, err)

	_, err = g.Run(context.Background(), workflow.State{}, RunConfig{})
	assert.ErrorIs(t, err, ErrMaxStepsExceeded)
}

func TestRun_UnknownNodeAtRuntime(t *testing.T) {
	g := &Compiled{
		nodes: map[string]workflow.NodeFunc{},
		edges: map[string]string{},
		entry: "ghost",
		store: checkpoint.NewMemorySaver(),
		cfg:   defaultCompileConfig(),
	}

	_, err := g.Run(context.Background(), workflow.State{}, RunConfig{})
	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "ghost", cfgErr.Node)
	assert.ErrorIs(t, err, ErrUnknownNode)
}

type failingSaver struct{ checkpoint.Saver }

func (failingSaver) Put(context.Context, string, workflow.State) error {
	return errors.New("disk full")
}

func TestRun_CheckpointFailure(t *testing.T) {
	g := chain(t, failingSaver{checkpoint.NewMemorySaver()}, []string{"a"}, []workflow.NodeFunc{setStatus("x")})

	_, err := g.Run(context.Background(), workflow.State{}, RunConfig{ThreadID: "t"})
	var cpErr *CheckpointError
	require.ErrorAs(t, err, &cpErr)
	assert.Equal(t, 0, cpErr.Step)
	assert.Equal(t, "t", cpErr.ThreadID)
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancelling := func(context.Context, workflow.State) (*workflow.Update, error) {
		cancel()
		return nil, nil
	}
	g := chain(t, checkpoint.NewMemorySaver(), []string{"a", "b"},
		[]workflow.NodeFunc{cancelling, setStatus("unreached")})

	final, err := g.Run(ctx, workflow.State{}, RunConfig{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotEqual(t, "unreached", final.Status)
}

func TestRun_ConcurrentThreads(t *testing.T) {
	store := checkpoint.NewMemorySaver()
	g := chain(t, store, []string{"a", "b"}, []workflow.NodeFunc{setValue("x", 1), setStatus("done")})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			final, err := g.Run(context.Background(), workflow.State{}, RunConfig{ThreadID: fmt.Sprintf("t%d", i)})
			assert.NoError(t, err)
			assert.Equal(t, []string{"a", "b"}, final.Trace)
		}(i)
	}
	wg.Wait()

	for i := 0; i < 8; i++ {
		history, err := store.List(context.Background(), fmt.Sprintf("t%d", i))
		require.NoError(t, err)
		assert.Len(t, history, 3)
	}
}

// =============================================================================
// Adapters
// =============================================================================

func TestTraced_OnError(t *testing.T) {
	fn := Traced("n", func(context.Context, workflow.State) (*workflow.Update, error) {
		return nil, errors.New("x")
	})

	u, err := fn(context.Background(), workflow.State{})
	assert.Error(t, err)
	require.NotNil(t, u)
	assert.Equal(t, []string{"n"}, u.Trace)
}

func TestFromFlowgraph(t *testing.T) {
	fullState := func(ctx flowgraph.Context, s workflow.State) (workflow.State, error) {
		s.Status = "context_loaded"
		s.Error = ""
		s.Trace = append(s.Trace, "legacy")
		return s, nil
	}
	g := chain(t, checkpoint.NewMemorySaver(), []string{"legacy"},
		[]workflow.NodeFunc{FromFlowgraph(fullState)})

	final, err := g.Run(context.Background(),
		workflow.State{Status: "error", Error: "stale", Repo: "acme/widgets", Trace: []string{"earlier"}},
		RunConfig{})
	require.NoError(t, err)
	assert.Equal(t, "context_loaded", final.Status)
	assert.Empty(t, final.Error)
	assert.Equal(t, "acme/widgets", final.Repo)
	// "legacy" appended by the node itself, then again by Traced
	assert.Equal(t, []string{"earlier", "legacy", "legacy"}, final.Trace)
}
