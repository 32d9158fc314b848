package task

import (
	"github.com/randalmurphal/llmkit/model"
)

// Type represents the kind of model call issueflow is making.
// It determines which model tier is appropriate.
type Type string

const (
	// Plan turns an issue into an implementation plan.
	Plan Type = "plan"
	// Patch turns a plan and file contents into a unified diff.
	Patch Type = "patch"
	// Review asks for a critique of a generated diff.
	Review Type = "review"
	// Summarize condenses issue text or a plan.
	Summarize Type = "summarize"
)

// TierForTask returns the appropriate tier for a task type.
func TierForTask(t Type) model.Tier {
	switch t {
	case Plan:
		return model.TierThinking
	case Summarize:
		return model.TierFast
	default:
		return model.TierDefault
	}
}
