package models

import (
	"time"

	"github.com/google/uuid"
)

type Agreement struct {
	ID             uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	OrganizationID uuid.UUID `gorm:"type:char(36);index;not null" json:"organizationId"`
	ContactID      uuid.UUID `gorm:"type:char(36);index;not null" json:"contactId"`

	Title  string `gorm:"type:varchar(255);not null" json:"title"`
	Status string `gorm:"type:varchar(16);index;default:draft" json:"status"` // draft, active, expired, cancelled
	Value  int64  `gorm:"default:0" json:"value"`                             // minor currency units

	SignedAt  *time.Time `json:"signedAt,omitempty"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}
