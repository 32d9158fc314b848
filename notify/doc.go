// Package notify reports issue runs to people and systems.
//
// Implementations:
//   - SlackNotifier: Slack incoming webhooks
//   - WebhookNotifier: JSON POST to any endpoint
//   - LogNotifier: slog output
//   - MultiNotifier: fan-out, failures joined
//   - NopNotifier, Recorder: tests
//
// Example usage:
//
//	notifier := notify.NewMultiNotifier(
//	    notify.NewLogNotifier(logger),
//	    notify.NewSlackNotifier(webhookURL, notify.WithSlackChannel("#bots")),
//	)
//	_ = notifier.Notify(ctx, notify.NewEvent(notify.EventRunStarted, threadID, "run started"))
package notify
