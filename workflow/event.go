package workflow

import (
	"fmt"

	"github.com/randalmurphal/issueflow/notify"
)

// CompletionEvent describes a finished run for notifiers: run_failed when
// the final state records an error, run_completed otherwise.
func CompletionEvent(threadID string, s State) notify.Event {
	number, title, _ := s.IssueRef()

	var event notify.Event
	if s.HasError() {
		event = notify.NewEvent(notify.EventRunFailed, threadID, s.Error)
		if event.Message == "" {
			event.Message = fmt.Sprintf("Run ended with status %s", s.Status)
		}
	} else {
		event = notify.NewEvent(notify.EventRunCompleted, threadID, s.Summary())
	}
	event.Repo = s.Repo
	event.IssueNumber = number

	meta := map[string]any{"status": s.Status}
	if title != "" {
		meta["issue_title"] = title
	}
	if len(s.Trace) > 0 {
		meta["trace"] = append([]string(nil), s.Trace...)
		event.Node = s.Trace[len(s.Trace)-1]
	}
	if s.Branch != "" {
		meta["branch"] = s.Branch
	}
	if s.PRURL != "" {
		meta["pr_url"] = s.PRURL
	}
	event.Metadata = meta
	return event
}
