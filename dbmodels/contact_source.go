package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ContactSource records where a contact was seen: one row per
// (contact, source type, source identifier). Uniqueness is logical, not a
// hard constraint; the resolver updates the most specific match it finds.
type ContactSource struct {
	ID        uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	ContactID uuid.UUID `gorm:"type:char(36);index;not null" json:"contactId"`

	SourceType       string         `gorm:"type:varchar(64);not null" json:"sourceType"` // form, whatsapp, instagram, sms, voice, manual
	SourceIdentifier string         `gorm:"type:varchar(255)" json:"sourceIdentifier"`
	Metadata         datatypes.JSON `gorm:"type:json" json:"metadata"`

	FirstSeenAt      time.Time `gorm:"not null" json:"firstSeenAt"`
	LastSeenAt       time.Time `gorm:"not null" json:"lastSeenAt"`
	InteractionCount int       `gorm:"default:1" json:"interactionCount"`
}
