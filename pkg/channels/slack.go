package channels

import (
	"context"

	"github.com/slack-go/slack"
)

type slackSender struct {
	client *slack.Client
}

// NewSlack builds a sender posting through the Slack web API. recipient is a
// channel or DM id.
func NewSlack(token string) Sender {
	return &slackSender{client: slack.New(token)}
}

func (s *slackSender) Name() string { return "slack" }

func (s *slackSender) Send(ctx context.Context, recipient, text string) error {
	_, _, err := s.client.PostMessageContext(ctx, recipient, slack.MsgOptionText(text, false))
	return err
}
