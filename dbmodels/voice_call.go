package models

import (
	"time"

	"github.com/google/uuid"
)

type VoiceCall struct {
	ID             uuid.UUID  `gorm:"type:char(36);primaryKey" json:"id"`
	OrganizationID uuid.UUID  `gorm:"type:char(36);index;not null" json:"organizationId"`
	ContactID      uuid.UUID  `gorm:"type:char(36);index;not null" json:"contactId"`
	ConversationID *uuid.UUID `gorm:"type:char(36);index" json:"conversationId,omitempty"`

	Provider   string `gorm:"type:varchar(32)" json:"provider"`
	ExternalID string `gorm:"type:varchar(255)" json:"externalId"`
	Status     string `gorm:"type:varchar(32)" json:"status"`
	Duration   int    `gorm:"default:0" json:"duration"` // seconds

	CreatedAt time.Time `json:"createdAt"`
}
