// Package checkpoint stores per-thread state snapshots taken by the graph
// executor at every step boundary.
//
// Two stores are provided:
//   - MemorySaver: process memory, the default
//   - SQLiteSaver: a SQLite file, for inspecting runs after the process exits
//
// Both isolate stored values from callers, so a snapshot never changes after
// it is written.
package checkpoint
