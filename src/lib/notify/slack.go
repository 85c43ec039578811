package notify

import (
	"context"
	"fmt"

	"github.com/slack-go/slack"
)

// Slack posts notifications to a Slack incoming webhook.
type Slack struct {
	// WebhookURL is the incoming webhook URL.
	WebhookURL string
}

// Send posts message as the text of a webhook message.
func (s *Slack) Send(ctx context.Context, message string) (string, error) {
	msg := &slack.WebhookMessage{Text: message}
	if err := slack.PostWebhookContext(ctx, s.WebhookURL, msg); err != nil {
		return "", fmt.Errorf("failed to post notification to slack: %v", err)
	}
	return Sent, nil
}
