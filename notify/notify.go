package notify

import (
	"context"
	"time"
)

// EventType represents the type of pipeline event.
type EventType string

const (
	EventRunStarted   EventType = "run_started"
	EventRunCompleted EventType = "run_completed"
	EventRunFailed    EventType = "run_failed"
	EventNodeFailed   EventType = "node_failed"
	EventPRCreated    EventType = "pr_created"
)

// Severity levels.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
	SeverityInfo    = "info"
)

// Event describes something that happened during an issue run.
type Event struct {
	Type        EventType      `json:"type"`
	ThreadID    string         `json:"thread_id"`
	Repo        string         `json:"github_repo,omitempty"`
	IssueNumber int            `json:"issue_number,omitempty"`
	Node        string         `json:"node,omitempty"`
	Message     string         `json:"message"`
	Severity    string         `json:"severity"`
	Timestamp   time.Time      `json:"timestamp"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// NewEvent creates an event stamped with the current time. Failures
// default to error severity, everything else to info.
func NewEvent(t EventType, threadID, message string) Event {
	severity := SeverityInfo
	if t == EventRunFailed || t == EventNodeFailed {
		severity = SeverityError
	}
	return Event{
		Type:      t,
		ThreadID:  threadID,
		Message:   message,
		Severity:  severity,
		Timestamp: time.Now().UTC(),
	}
}

// Notifier sends notifications about pipeline events.
type Notifier interface {
	// Notify sends a notification. Callers treat errors as non-fatal.
	Notify(ctx context.Context, event Event) error
}
