// Package contextbuilder assembles the bounded contact view handed to the
// decision engine and the prompt composer.
package contextbuilder

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/clariohq/clario/core/types"
	"github.com/clariohq/clario/db"
	models "github.com/clariohq/clario/dbmodels"
)

const (
	maxNotes  = 10
	maxTopics = 5
)

type Builder struct {
	store db.Store
}

func NewBuilder(store db.Store) *Builder {
	return &Builder{store: store}
}

// Build aggregates the contact profile, active agreements, recent notes and
// a conversation summary. Read-only; fails with not-found when the contact
// is absent.
func (b *Builder) Build(ctx context.Context, contactID, conversationID uuid.UUID) (*types.ContactContext, error) {
	contact, err := b.store.GetContact(ctx, contactID)
	if err != nil {
		return nil, err
	}

	agreements, err := b.store.ListActiveAgreements(ctx, contactID)
	if err != nil {
		return nil, err
	}
	notes, err := b.store.ListRecentNotes(ctx, contactID, maxNotes)
	if err != nil {
		return nil, err
	}
	messages, err := b.store.ListConversationMessages(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	out := &types.ContactContext{
		Profile:      profileOf(contact),
		Agreements:   make([]types.AgreementSummary, 0, len(agreements)),
		Notes:        make([]types.NoteSummary, 0, len(notes)),
		Conversation: summarize(messages),
	}
	for _, a := range agreements {
		out.Agreements = append(out.Agreements, types.AgreementSummary{
			ID:        a.ID,
			Title:     a.Title,
			Status:    a.Status,
			Value:     a.Value,
			SignedAt:  a.SignedAt,
			ExpiresAt: a.ExpiresAt,
		})
	}
	for _, n := range notes {
		out.Notes = append(out.Notes, types.NoteSummary{
			Content:   n.Content,
			Author:    n.Author,
			CreatedAt: n.CreatedAt,
		})
	}
	return out, nil
}

// BuildMinimal returns only identity and heat, for low-latency paths.
func (b *Builder) BuildMinimal(ctx context.Context, contactID uuid.UUID) (*types.MinimalContext, error) {
	contact, err := b.store.GetContact(ctx, contactID)
	if err != nil {
		return nil, err
	}
	return &types.MinimalContext{
		ID:        contact.ID,
		Name:      contact.FullName(),
		Email:     contact.Email,
		Phone:     contact.Phone,
		HeatScore: contact.HeatScore,
		Tags:      contact.TagList(),
	}, nil
}

func profileOf(c *models.Contact) types.ContactProfile {
	return types.ContactProfile{
		ID:                c.ID,
		FirstName:         c.FirstName,
		LastName:          c.LastName,
		Email:             c.Email,
		Phone:             c.Phone,
		Company:           c.Company,
		HeatScore:         c.HeatScore,
		Tags:              c.TagList(),
		CustomFields:      c.CustomFieldMap(),
		LifetimeValue:     c.LifetimeValue,
		InteractionCount:  c.InteractionCount,
		LastInteractionAt: c.LastInteractionAt,
	}
}

func summarize(messages []models.ConversationMessage) types.ConversationSummary {
	summary := types.ConversationSummary{
		MessageCount: len(messages),
		Topics:       []string{},
		Sentiment:    "neutral",
	}
	if len(messages) == 0 {
		return summary
	}

	first := messages[0].CreatedAt
	last := messages[len(messages)-1].CreatedAt
	summary.FirstMessageAt = &first
	summary.LastMessageAt = &last

	seen := map[string]bool{}
	positives, negatives := 0, 0
	for i := range messages {
		content := strings.ToLower(messages[i].Content)
		for _, kw := range topicKeywords {
			if len(summary.Topics) >= maxTopics {
				break
			}
			if !seen[kw] && strings.Contains(content, kw) {
				seen[kw] = true
				summary.Topics = append(summary.Topics, kw)
			}
		}
		for _, kw := range positiveKeywords {
			positives += strings.Count(content, kw)
		}
		for _, kw := range negativeKeywords {
			negatives += strings.Count(content, kw)
		}
	}

	switch {
	case positives > negatives*2:
		summary.Sentiment = "positive"
	case negatives > positives*2:
		summary.Sentiment = "negative"
	}
	return summary
}
