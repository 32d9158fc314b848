package workflow

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/randalmurphal/issueflow/issue"
	"github.com/randalmurphal/issueflow/plan"
)

// Status values written by the pipeline nodes. Status is an open set: nodes
// may write any tag, and the executor never interprets it except when
// error routing is enabled.
const (
	StatusNew           = "new"
	StatusContextLoaded = "context_loaded"
	StatusPlanned       = "planned"
	StatusExecuted      = "executed"
	StatusPRCreated     = "pr_created"
	StatusPRReady       = "pr_ready"
	StatusError         = "error"
)

// =============================================================================
// Pull Request Data
// =============================================================================

// PRData describes the pull request opened for an issue.
type PRData struct {
	Number  int    `json:"number"`
	HTMLURL string `json:"html_url"`
	State   string `json:"state"`
	Draft   bool   `json:"draft,omitempty"`
	Head    string `json:"head,omitempty"`
	Base    string `json:"base,omitempty"`
}

// =============================================================================
// State
// =============================================================================

// State is the record threaded through the pipeline. Every field is
// optional; the zero value means absent.
type State struct {
	// Issue identification
	Repo        string       `json:"github_repo,omitempty"`
	IssueNumber int          `json:"issue_number,omitempty"`
	IssueTitle  string       `json:"issue_title,omitempty"`
	IssueBody   string       `json:"issue_body,omitempty"`
	Issue       *issue.Issue `json:"issue,omitempty"`

	// Progress
	Status string `json:"status,omitempty"`
	Error  string `json:"error,omitempty"`

	// Work products
	Plan         *plan.Plan        `json:"plan,omitempty"`
	TargetFiles  []string          `json:"target_files,omitempty"`
	FileContents map[string]string `json:"file_contents,omitempty"`
	Diff         string            `json:"diff,omitempty"`
	Branch       string            `json:"branch,omitempty"`
	PRURL        string            `json:"pr_url,omitempty"`
	PRData       *PRData           `json:"pr_data,omitempty"`

	// Values holds keys outside the fixed schema.
	Values map[string]any `json:"values,omitempty"`

	// Trace lists executed node names in order.
	Trace []string `json:"trace,omitempty"`
}

// NewState creates a state for an issue in repo.
func NewState(repo string, number int) State {
	return State{
		Repo:        repo,
		IssueNumber: number,
		Status:      StatusNew,
		Trace:       []string{},
	}
}

// WithIssue attaches a full issue object.
func (s State) WithIssue(iss *issue.Issue) State {
	s.Issue = iss.Clone()
	if iss != nil && s.IssueNumber == 0 {
		s.IssueNumber = iss.Number
	}
	return s
}

// WithTargetFiles sets the files the pipeline should change.
func (s State) WithTargetFiles(paths ...string) State {
	s.TargetFiles = append([]string{}, paths...)
	return s
}

// HasError returns true if the state records a failure.
func (s State) HasError() bool {
	return s.Status == StatusError || s.Error != ""
}

// Value returns an open-ended value by key.
func (s State) Value(key string) (any, bool) {
	v, ok := s.Values[key]
	return v, ok
}

// IssueRef returns the number, title and body of the issue, preferring the
// issue object over the flat fields.
func (s State) IssueRef() (number int, title, body string) {
	number, title, body = s.IssueNumber, s.IssueTitle, s.IssueBody
	if s.Issue != nil {
		if s.Issue.Number != 0 {
			number = s.Issue.Number
		}
		if s.Issue.Title != "" {
			title = s.Issue.Title
		}
		if s.Issue.Body != "" {
			body = s.Issue.Body
		}
	}
	return number, title, body
}

// Clone returns a deep copy. Values are copied recursively through
// pointers, maps, slices, arrays and exported struct fields.
func (s State) Clone() State {
	cp := s
	cp.Issue = s.Issue.Clone()
	cp.Plan = s.Plan.Clone()
	cp.TargetFiles = cloneStrings(s.TargetFiles)
	cp.FileContents = cloneStringMap(s.FileContents)
	cp.Trace = cloneStrings(s.Trace)
	if s.PRData != nil {
		pd := *s.PRData
		cp.PRData = &pd
	}
	if s.Values != nil {
		cp.Values = cloneValue(s.Values).(map[string]any)
	}
	return cp
}

// =============================================================================
// State Validation
// =============================================================================

// StateRequirement defines a state prerequisite.
type StateRequirement string

const (
	RequireRepo        StateRequirement = "repo"
	RequireIssue       StateRequirement = "issue"
	RequirePlan        StateRequirement = "plan"
	RequireTargetFiles StateRequirement = "target_files"
	RequireDiff        StateRequirement = "diff"
)

// Validate checks that the state has the required fields. All missing
// requirements are reported together.
func (s State) Validate(requirements ...StateRequirement) error {
	var missing []string
	for _, req := range requirements {
		switch req {
		case RequireRepo:
			if s.Repo == "" {
				missing = append(missing, "github_repo")
			}
		case RequireIssue:
			if n, _, _ := s.IssueRef(); n == 0 {
				missing = append(missing, "issue_number")
			}
		case RequirePlan:
			if s.Plan == nil {
				missing = append(missing, "plan")
			}
		case RequireTargetFiles:
			if len(s.TargetFiles) == 0 {
				missing = append(missing, "target_files")
			}
		case RequireDiff:
			if s.Diff == "" {
				missing = append(missing, "diff")
			}
		default:
			return fmt.Errorf("unknown requirement: %s", req)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingFields, strings.Join(missing, ", "))
	}
	return nil
}

// Summary returns a human-readable summary of the state.
func (s State) Summary() string {
	number, title, _ := s.IssueRef()
	status := s.Status
	if status == "" {
		status = "pending"
	}

	summary := fmt.Sprintf("%s#%d [%s]", s.Repo, number, status)
	if title != "" {
		summary += " " + title
	}
	switch {
	case s.Error != "":
		summary += ": " + s.Error
	case s.PRURL != "":
		summary += ": " + s.PRURL
	}
	return summary
}

// =============================================================================
// Helper Functions
// =============================================================================

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}

func cloneStringMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// cloneValue deep-copies maps, slices, arrays, pointers and the exported
// fields of structs, whatever their element types. Channels and funcs are
// shared. Values must not contain pointer cycles.
func cloneValue(v any) any {
	if v == nil {
		return nil
	}
	return deepCopy(reflect.ValueOf(v)).Interface()
}

func deepCopy(v reflect.Value) reflect.Value {
	switch v.Kind() {
	case reflect.Pointer:
		if v.IsNil() {
			return v
		}
		out := reflect.New(v.Type().Elem())
		out.Elem().Set(deepCopy(v.Elem()))
		return out
	case reflect.Interface:
		if v.IsNil() {
			return v
		}
		out := reflect.New(v.Type()).Elem()
		out.Set(deepCopy(v.Elem()))
		return out
	case reflect.Slice:
		if v.IsNil() {
			return v
		}
		out := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		for i := 0; i < v.Len(); i++ {
			out.Index(i).Set(deepCopy(v.Index(i)))
		}
		return out
	case reflect.Array:
		out := reflect.New(v.Type()).Elem()
		for i := 0; i < v.Len(); i++ {
			out.Index(i).Set(deepCopy(v.Index(i)))
		}
		return out
	case reflect.Map:
		if v.IsNil() {
			return v
		}
		out := reflect.MakeMapWithSize(v.Type(), v.Len())
		for iter := v.MapRange(); iter.Next(); {
			out.SetMapIndex(iter.Key(), deepCopy(iter.Value()))
		}
		return out
	case reflect.Struct:
		out := reflect.New(v.Type()).Elem()
		out.Set(v)
		for i := 0; i < v.NumField(); i++ {
			if f := out.Field(i); f.CanSet() {
				f.Set(deepCopy(v.Field(i)))
			}
		}
		return out
	default:
		return v
	}
}
