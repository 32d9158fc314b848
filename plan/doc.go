// Package plan defines the structured implementation plan produced for an
// issue and the Generator interface planners implement.
package plan
