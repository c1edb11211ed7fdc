package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// FormField is the typed shape of one entry in the Form.Fields JSON column.
type FormField struct {
	Name     string `json:"name"`
	Label    string `json:"label,omitempty"`
	Type     string `json:"type,omitempty"` // text, email, phone, textarea, select
	Required bool   `json:"required,omitempty"`
}

type Form struct {
	ID             uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	OrganizationID uuid.UUID `gorm:"type:char(36);index;not null" json:"organizationId"`

	Name   string         `gorm:"type:varchar(255);not null" json:"name"`
	Fields datatypes.JSON `gorm:"type:json" json:"fields"`

	PostSubmitAction string     `gorm:"type:varchar(32)" json:"postSubmitAction"` // none, start_conversation
	AgentID          *uuid.UUID `gorm:"type:char(36)" json:"agentId,omitempty"`
	Channel          string     `gorm:"type:varchar(32);default:web" json:"channel"`

	Active    bool      `gorm:"default:true" json:"active"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (f *Form) FieldList() []FormField {
	var fields []FormField
	if len(f.Fields) > 0 {
		_ = json.Unmarshal(f.Fields, &fields)
	}
	return fields
}

type FormSubmission struct {
	ID             uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	FormID         uuid.UUID `gorm:"type:char(36);index;not null" json:"formId"`
	OrganizationID uuid.UUID `gorm:"type:char(36);index;not null" json:"organizationId"`
	ContactID      uuid.UUID `gorm:"type:char(36);index" json:"contactId"`

	Data datatypes.JSON `gorm:"type:json" json:"data"`

	CreatedAt time.Time `json:"createdAt"`
}
