package actions

import (
	"context"
	"fmt"

	"github.com/clariohq/clario/core/types"
)

// sendLink pushes a URL to the conversation's channel. Channels without a
// registered sender (web chat reads the response body directly) succeed
// without a delivery.
func (s *service) sendLink(ctx context.Context, params types.ActionParams) (string, error) {
	url, err := requireString(params, "url")
	if err != nil {
		return "", err
	}
	convID, err := requireID(params, "conversationId")
	if err != nil {
		return "", err
	}

	conv, err := s.Store.GetConversation(ctx, convID)
	if err != nil {
		return "", err
	}
	if s.Channels == nil || !s.Channels.Has(conv.Channel) || conv.ChannelRecipient == "" {
		return "link included in response", nil
	}
	if err := s.Channels.Deliver(ctx, conv.Channel, conv.ChannelRecipient, url); err != nil {
		return "", err
	}
	return fmt.Sprintf("link sent over %s", conv.Channel), nil
}
