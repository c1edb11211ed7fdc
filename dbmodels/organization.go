package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Organization struct {
	ID   uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	Name string    `gorm:"type:varchar(255);not null" json:"name"`

	CreditBalance int64 `gorm:"default:0" json:"creditBalance"`

	Active    bool      `gorm:"default:true" json:"active"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

const (
	LedgerConsume        = "consume"
	LedgerReconciliation = "reconciliation"
)

// LedgerEntry is one credit movement. Reconciliation entries record failed
// deductions for a response that already went out.
type LedgerEntry struct {
	ID             uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	OrganizationID uuid.UUID `gorm:"type:char(36);index;not null" json:"organizationId"`

	Kind        string         `gorm:"type:varchar(16);not null" json:"kind"`
	Amount      int64          `gorm:"not null" json:"amount"`
	Description string         `gorm:"type:text" json:"description"`
	Metadata    datatypes.JSON `gorm:"type:json" json:"metadata"`

	CreatedAt time.Time `json:"createdAt"`
}
