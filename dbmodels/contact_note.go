package models

import (
	"time"

	"github.com/google/uuid"
)

type ContactNote struct {
	ID        uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	ContactID uuid.UUID `gorm:"type:char(36);index;not null" json:"contactId"`

	Content string `gorm:"type:text;not null" json:"content"`
	Author  string `gorm:"type:varchar(255)" json:"author"` // agent name or user identifier

	CreatedAt time.Time `json:"createdAt"`
}
