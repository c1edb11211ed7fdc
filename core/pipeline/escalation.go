package pipeline

import (
	"context"

	"github.com/google/uuid"

	"github.com/clariohq/clario/core/router"
)

const recentWindow = 3

// CheckEscalation evaluates whether the conversation should move to a human
// without generating anything: configured agent rules against the stored
// message count and sentiment, plus an explicit ask in the last few messages.
func (p *Pipeline) CheckEscalation(ctx context.Context, conversationID, agentID uuid.UUID) (bool, string, error) {
	conv, err := p.store.GetConversation(ctx, conversationID)
	if err != nil {
		return false, "", err
	}
	agent, err := p.store.GetAgent(ctx, agentID)
	if err != nil {
		return false, "", err
	}

	msgs, err := p.store.ListRecentMessages(ctx, conversationID, recentWindow)
	if err != nil {
		return false, "", err
	}
	for _, m := range msgs {
		if wantsHuman(m.Content) {
			return true, "contact asked for a human", nil
		}
	}

	if router.ShouldEscalate(agent, router.EscalationSignals{
		MessageCount: conv.MessageCount,
		Sentiment:    conv.Sentiment,
	}) {
		return true, "escalation rules", nil
	}

	if p.Complexity != nil {
		if hit, reason := p.Complexity(conv, msgs); hit {
			return true, reason, nil
		}
	}
	return false, "", nil
}
