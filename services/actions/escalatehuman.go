package actions

import (
	"context"
	"fmt"
	"time"

	"github.com/mudler/xlog"

	"github.com/clariohq/clario/core/types"
	"github.com/clariohq/clario/db"
	"github.com/clariohq/clario/pkg/events"
)

// escalateToHuman hands the conversation off: automation stops, the open
// assignment closes, and downstream consumers hear about it. Escalating an
// already transferred conversation is a no-op.
func (s *service) escalateToHuman(ctx context.Context, params types.ActionParams) (string, error) {
	convID, err := requireID(params, "conversationId")
	if err != nil {
		return "", err
	}
	reason := optionalString(params, "reason")
	if reason == "" {
		reason = "escalated to human"
	}

	alreadyTransferred := false
	err = s.Store.Transaction(ctx, func(tx db.Store) error {
		conv, err := tx.GetConversation(ctx, convID)
		if err != nil {
			return err
		}
		if conv.TransferredToHuman {
			alreadyTransferred = true
			return nil
		}
		conv.TransferredToHuman = true
		conv.TransferReason = reason
		conv.AIEnabled = false
		if err := tx.SaveConversation(ctx, conv); err != nil {
			return err
		}

		assignment, err := tx.GetOpenAssignment(ctx, convID)
		if err != nil {
			return err
		}
		if assignment != nil {
			now := time.Now()
			assignment.UnassignedAt = &now
			assignment.UnassignReason = reason
			return tx.SaveAssignment(ctx, assignment)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	if alreadyTransferred {
		return "conversation already with a human", nil
	}

	if err := s.Events.Publish(ctx, events.KeyConversationEscalated, map[string]interface{}{
		"conversationId": convID,
		"reason":         reason,
	}); err != nil {
		xlog.Warn("Publishing escalation event", "conversation", convID, "error", err)
	}
	return fmt.Sprintf("transferred to human: %s", reason), nil
}
