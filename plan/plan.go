package plan

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Complexity is the planner's estimate of how hard an issue is.
type Complexity string

const (
	ComplexityLow    Complexity = "low"
	ComplexityMedium Complexity = "medium"
	ComplexityHigh   Complexity = "high"
)

// Valid reports whether c is one of the known complexity levels.
func (c Complexity) Valid() bool {
	switch c {
	case ComplexityLow, ComplexityMedium, ComplexityHigh:
		return true
	}
	return false
}

// Plan is a structured implementation plan for one issue.
type Plan struct {
	DefinitionOfDone    []string   `json:"definition_of_done"`
	Steps               []string   `json:"steps"`
	TargetFiles         []string   `json:"target_files"`
	EstimatedComplexity Complexity `json:"estimated_complexity"`
}

// Validate checks the plan is usable.
func (p *Plan) Validate() error {
	if p == nil {
		return ErrEmptyPlan
	}
	if len(p.Steps) == 0 {
		return ErrNoSteps
	}
	if !p.EstimatedComplexity.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidComplexity, p.EstimatedComplexity)
	}
	return nil
}

// Clone returns a deep copy of the plan.
func (p *Plan) Clone() *Plan {
	if p == nil {
		return nil
	}
	return &Plan{
		DefinitionOfDone:    cloneStrings(p.DefinitionOfDone),
		Steps:               cloneStrings(p.Steps),
		TargetFiles:         cloneStrings(p.TargetFiles),
		EstimatedComplexity: p.EstimatedComplexity,
	}
}

// Markdown renders the plan for pull request bodies and prompts.
func (p *Plan) Markdown() string {
	if p == nil {
		return ""
	}

	var b strings.Builder
	writeList := func(title string, items []string, numbered bool) {
		if len(items) == 0 {
			return
		}
		fmt.Fprintf(&b, "### %s\n\n", title)
		for i, item := range items {
			if numbered {
				fmt.Fprintf(&b, "%d. %s\n", i+1, item)
			} else {
				fmt.Fprintf(&b, "- %s\n", item)
			}
		}
		b.WriteString("\n")
	}

	writeList("Definition of Done", p.DefinitionOfDone, false)
	writeList("Steps", p.Steps, true)
	writeList("Target Files", p.TargetFiles, false)
	if p.EstimatedComplexity != "" {
		fmt.Fprintf(&b, "**Estimated complexity:** %s\n", p.EstimatedComplexity)
	}

	return strings.TrimSpace(b.String())
}

// Request carries the issue details a Generator plans from.
type Request struct {
	Number      string
	Title       string
	Body        string
	RepoContext string
}

// Generator produces a plan for an issue. Implementations call a language
// model or any other planning backend.
type Generator interface {
	GeneratePlan(ctx context.Context, req Request) (*Plan, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, req Request) (*Plan, error)

// GeneratePlan calls f.
func (f GeneratorFunc) GeneratePlan(ctx context.Context, req Request) (*Plan, error) {
	return f(ctx, req)
}

// Parse extracts a plan from model output. The JSON object may be wrapped
// in a code fence or surrounded by prose.
func Parse(text string) (*Plan, error) {
	raw := extractObject(text)
	if raw == "" {
		return nil, ErrNoJSON
	}

	var wire struct {
		Plan
		DefinitionOfDone json.RawMessage `json:"definition_of_done"`
	}
	if err := json.Unmarshal([]byte(raw), &wire); err != nil {
		return nil, fmt.Errorf("decode plan: %w", err)
	}
	p := wire.Plan
	done, err := stringList(wire.DefinitionOfDone)
	if err != nil {
		return nil, fmt.Errorf("decode plan: definition_of_done: %w", err)
	}
	p.DefinitionOfDone = done
	p.EstimatedComplexity = Complexity(strings.ToLower(strings.TrimSpace(string(p.EstimatedComplexity))))

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// stringList decodes a JSON array of strings. Models sometimes answer with
// a single string, which becomes a one-element list.
func stringList(raw json.RawMessage) ([]string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var one string
	if err := json.Unmarshal(raw, &one); err == nil {
		if strings.TrimSpace(one) == "" {
			return nil, nil
		}
		return []string{one}, nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// extractObject returns the outermost {...} span, honoring string literals.
func extractObject(text string) string {
	start := strings.Index(text, "{")
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}
	return ""
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}
