package types

import (
	"time"

	"github.com/google/uuid"
)

// ContactProfile is the public slice of a contact used for decisioning.
type ContactProfile struct {
	ID                uuid.UUID              `json:"id"`
	FirstName         string                 `json:"firstName"`
	LastName          string                 `json:"lastName"`
	Email             string                 `json:"email,omitempty"`
	Phone             string                 `json:"phone,omitempty"`
	Company           string                 `json:"company,omitempty"`
	HeatScore         int                    `json:"heatScore"`
	Tags              []string               `json:"tags"`
	CustomFields      map[string]interface{} `json:"customFields"`
	LifetimeValue     int64                  `json:"lifetimeValue"`
	InteractionCount  int                    `json:"interactionCount"`
	LastInteractionAt *time.Time             `json:"lastInteractionAt,omitempty"`
}

type AgreementSummary struct {
	ID        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	Status    string     `json:"status"`
	Value     int64      `json:"value"`
	SignedAt  *time.Time `json:"signedAt,omitempty"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

type NoteSummary struct {
	Content   string    `json:"content"`
	Author    string    `json:"author,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// ConversationSummary condenses a thread for prompt building and decisioning.
type ConversationSummary struct {
	MessageCount   int        `json:"messageCount"`
	FirstMessageAt *time.Time `json:"firstMessageAt,omitempty"`
	LastMessageAt  *time.Time `json:"lastMessageAt,omitempty"`
	Topics         []string   `json:"topics"`
	Sentiment      string     `json:"sentiment"` // positive, neutral, negative
}

// ContactContext is the bounded read-only aggregate handed to the decision
// engine and the prompt composer.
type ContactContext struct {
	Profile      ContactProfile      `json:"profile"`
	Agreements   []AgreementSummary  `json:"agreements"`
	Notes        []NoteSummary       `json:"notes"`
	Conversation ConversationSummary `json:"conversation"`
}

// MinimalContext is the low-latency variant: identity and heat only.
type MinimalContext struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	HeatScore int       `json:"heatScore"`
	Tags      []string  `json:"tags"`
}

// GenerationResult is what the generation capability returns.
type GenerationResult struct {
	Text      string `json:"text"`
	CostUnits int    `json:"costUnits"`
	Model     string `json:"model"`
}

// ProcessResult is the terminal output of one pipeline run.
type ProcessResult struct {
	Response     string            `json:"response"`
	Actions      []ExecutionResult `json:"actions"`
	CostUnits    int               `json:"costUnits"`
	Model        string            `json:"model"`
	ContactID    uuid.UUID         `json:"contactId"`
	AgentID      uuid.UUID         `json:"agentId"`
	AssignmentID uuid.UUID         `json:"assignmentId"`
}
