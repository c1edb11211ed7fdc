package models

import (
	"time"

	"github.com/google/uuid"
)

// AgentAssignment binds one agent to one conversation/contact pair. At most
// one assignment per conversation has UnassignedAt == nil; the router
// enforces that, not the schema.
type AgentAssignment struct {
	ID             uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	ConversationID uuid.UUID `gorm:"type:char(36);index;not null" json:"conversationId"`
	ContactID      uuid.UUID `gorm:"type:char(36);index;not null" json:"contactId"`
	AgentID        uuid.UUID `gorm:"type:char(36);index;not null" json:"agentId"`

	AssignedAt     time.Time  `gorm:"not null" json:"assignedAt"`
	UnassignedAt   *time.Time `gorm:"index" json:"unassignedAt,omitempty"`
	UnassignReason string     `gorm:"type:text" json:"unassignReason,omitempty"`

	MessagesHandled   int  `gorm:"default:0" json:"messagesHandled"`
	CostUnits         int  `gorm:"default:0" json:"costUnits"`
	SatisfactionScore *int `json:"satisfactionScore,omitempty"`
}

func (a *AgentAssignment) Open() bool { return a.UnassignedAt == nil }
