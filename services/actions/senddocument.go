package actions

import (
	"context"
	"fmt"

	"github.com/clariohq/clario/core/types"
)

// sendDocument shares a configured document with the contact. The optional
// "name" param selects which; otherwise the default document goes out.
func (s *service) sendDocument(ctx context.Context, params types.ActionParams) (string, error) {
	convID, err := requireID(params, "conversationId")
	if err != nil {
		return "", err
	}

	name := optionalString(params, "name")
	url, ok := s.Documents[name]
	if !ok {
		return "", fmt.Errorf("%w: no document configured for %q", types.ErrValidation, name)
	}

	conv, err := s.Store.GetConversation(ctx, convID)
	if err != nil {
		return "", err
	}
	if s.Channels == nil || !s.Channels.Has(conv.Channel) || conv.ChannelRecipient == "" {
		return fmt.Sprintf("document available at %s", url), nil
	}
	if err := s.Channels.Deliver(ctx, conv.Channel, conv.ChannelRecipient, url); err != nil {
		return "", err
	}
	return fmt.Sprintf("document sent over %s", conv.Channel), nil
}
