package models

import (
	"time"

	"github.com/google/uuid"
)

// Conversation is a channel-scoped thread owned by one contact.
type Conversation struct {
	ID             uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	OrganizationID uuid.UUID `gorm:"type:char(36);index;not null" json:"organizationId"`
	ContactID      uuid.UUID `gorm:"type:char(36);index;not null" json:"contactId"`

	Channel          string `gorm:"type:varchar(32);not null" json:"channel"` // web, whatsapp, instagram, sms, email, voice-call
	ChannelRecipient string `gorm:"type:varchar(255)" json:"channelRecipient"`

	MessageCount       int    `gorm:"default:0" json:"messageCount"`
	AIEnabled          bool   `gorm:"default:true" json:"aiEnabled"`
	TransferredToHuman bool   `gorm:"default:false" json:"transferredToHuman"`
	TransferReason     string `gorm:"type:text" json:"transferReason"`

	Sentiment string `gorm:"type:varchar(16)" json:"sentiment"` // positive, neutral, negative
	Summary   string `gorm:"type:text" json:"summary"`

	LastMessageAt *time.Time `json:"lastMessageAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}
