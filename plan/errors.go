package plan

import "errors"

// Plan errors.
var (
	ErrEmptyPlan         = errors.New("plan is empty")
	ErrNoSteps           = errors.New("plan has no steps")
	ErrInvalidComplexity = errors.New("invalid estimated complexity")
	ErrNoJSON            = errors.New("no JSON object found in response")
)
