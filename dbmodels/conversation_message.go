package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	DirectionInbound  = "inbound"
	DirectionOutbound = "outbound"
)

// ConversationMessage is an immutable append-only event. Ordering is by
// CreatedAt with Seq breaking ties in insertion order.
type ConversationMessage struct {
	ID             uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	ConversationID uuid.UUID `gorm:"type:char(36);index;not null" json:"conversationId"`

	Direction   string `gorm:"type:varchar(16);not null" json:"direction"`
	Role        string `gorm:"type:varchar(32);not null" json:"role"` // user, assistant, system
	Content     string `gorm:"type:text;not null" json:"content"`
	ContentType string `gorm:"type:varchar(32);default:text" json:"contentType"`
	Channel     string `gorm:"type:varchar(32)" json:"channel"`

	Model     string `gorm:"type:varchar(128)" json:"model,omitempty"`
	CostUnits int    `gorm:"default:0" json:"costUnits"`

	TriggeredActions datatypes.JSON `gorm:"type:json" json:"triggeredActions,omitempty"`

	Seq       int64     `gorm:"autoIncrement;uniqueIndex" json:"seq"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
}
