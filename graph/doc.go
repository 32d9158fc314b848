// Package graph is a small workflow graph executor with per-step
// checkpointing.
//
// A graph is a set of named nodes, one entry point, and at most one
// outgoing edge per node. Running a compiled graph starts at the entry
// point, merges each node's partial update into the working state, saves a
// checkpoint after every step, and follows edges until END:
//
//	g, err := graph.NewBuilder().
//	    AddNode("plan", graph.Traced("plan", planNode)).
//	    AddNode("execute", graph.Traced("execute", executeNode)).
//	    AddEdge("plan", "execute").
//	    AddEdge("execute", graph.END).
//	    SetEntryPoint("plan").
//	    Compile(checkpoint.NewMemorySaver())
//
//	final, err := g.Run(ctx, workflow.NewState("acme/widgets", 42),
//	    graph.RunConfig{ThreadID: "issue-42"})
//
// Nodes report failure by returning an error-status update (or a Go
// error, which the executor converts to one). Run itself fails only for
// configuration problems, checkpoint failures, panics, and cancellation.
//
// Thread safety: Builder is not safe for concurrent use; Compiled is
// immutable and safe for concurrent runs.
package graph
