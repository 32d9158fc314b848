package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"net/http"
	"slices"
	"time"
)

// SlackNotifier posts events to a Slack incoming webhook.
type SlackNotifier struct {
	WebhookURL string
	Channel    string
	Username   string
	Client     *http.Client
}

// SlackOption configures SlackNotifier.
type SlackOption func(*SlackNotifier)

// WithSlackChannel sets the channel to post to.
func WithSlackChannel(channel string) SlackOption {
	return func(n *SlackNotifier) { n.Channel = channel }
}

// WithSlackUsername sets the bot username.
func WithSlackUsername(username string) SlackOption {
	return func(n *SlackNotifier) { n.Username = username }
}

// WithSlackClient sets the HTTP client.
func WithSlackClient(client *http.Client) SlackOption {
	return func(n *SlackNotifier) {
		if client != nil {
			n.Client = client
		}
	}
}

// NewSlackNotifier creates a Slack webhook notifier.
func NewSlackNotifier(webhookURL string, opts ...SlackOption) *SlackNotifier {
	n := &SlackNotifier{
		WebhookURL: webhookURL,
		Username:   "issueflow",
		Client:     &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Notify implements Notifier.
func (n *SlackNotifier) Notify(ctx context.Context, event Event) error {
	footer := "Thread: " + event.ThreadID
	if event.Repo != "" {
		footer = fmt.Sprintf("%s#%d | %s", event.Repo, event.IssueNumber, footer)
	}

	payload := slackPayload{
		Username: n.Username,
		Channel:  n.Channel,
		Attachments: []slackAttachment{{
			Color:     slackColor(event.Severity),
			Title:     slackTitle(event.Type),
			Text:      event.Message,
			Footer:    footer,
			Timestamp: event.Timestamp.Unix(),
			Fields:    slackFields(event.Metadata),
		}},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal slack payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return send(n.Client, req, "slack message")
}

// slackEmoji prefixes attachment titles; unknown types get a loudspeaker.
var slackEmoji = map[EventType]string{
	EventRunStarted:   ":rocket:",
	EventRunCompleted: ":white_check_mark:",
	EventRunFailed:    ":x:",
	EventNodeFailed:   ":x:",
	EventPRCreated:    ":link:",
}

func slackTitle(t EventType) string {
	emoji, ok := slackEmoji[t]
	if !ok {
		emoji = ":loudspeaker:"
	}
	return emoji + " " + string(t)
}

func slackColor(severity string) string {
	if severity == SeverityError {
		return "danger"
	}
	if severity == SeverityWarning {
		return "warning"
	}
	return "good"
}

func slackFields(metadata map[string]any) []slackField {
	var fields []slackField
	for _, k := range slices.Sorted(maps.Keys(metadata)) {
		fields = append(fields, slackField{Title: k, Value: fmt.Sprint(metadata[k]), Short: true})
	}
	return fields
}

type slackPayload struct {
	Username    string            `json:"username,omitempty"`
	Channel     string            `json:"channel,omitempty"`
	Attachments []slackAttachment `json:"attachments"`
}

type slackAttachment struct {
	Color     string       `json:"color,omitempty"`
	Title     string       `json:"title"`
	Text      string       `json:"text"`
	Footer    string       `json:"footer,omitempty"`
	Timestamp int64        `json:"ts,omitempty"`
	Fields    []slackField `json:"fields,omitempty"`
}

type slackField struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}
