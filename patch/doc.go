// Package patch defines the diff Generator interface and helpers for
// cleaning up and measuring generated unified diffs.
package patch
