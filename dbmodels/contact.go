package models

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ContactStatus string

const (
	ContactActive ContactStatus = "active"
	ContactMerged ContactStatus = "merged"
)

// Contact is the identity record. It is never physically deleted: merging a
// duplicate flips its status to merged and points MergedWithID at the survivor.
type Contact struct {
	ID             uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	OrganizationID uuid.UUID `gorm:"type:char(36);index;not null" json:"organizationId"`

	FirstName         string `gorm:"type:varchar(255)" json:"firstName"`
	LastName          string `gorm:"type:varchar(255)" json:"lastName"`
	Email             string `gorm:"type:varchar(255);index" json:"email"`
	Phone             string `gorm:"type:varchar(64);index" json:"phone"`
	Company           string `gorm:"type:varchar(255)" json:"company"`
	Timezone          string `gorm:"type:varchar(64)" json:"timezone"`
	ChannelPreference string `gorm:"type:varchar(32)" json:"channelPreference"`

	HeatScore     int            `gorm:"default:0" json:"heatScore"`
	HeatUpdatedAt *time.Time     `json:"heatUpdatedAt,omitempty"`
	Tags          datatypes.JSON `gorm:"type:json" json:"tags"`
	CustomFields  datatypes.JSON `gorm:"type:json" json:"customFields"`

	InteractionCount  int        `gorm:"default:0" json:"interactionCount"`
	LifetimeValue     int64      `gorm:"default:0" json:"lifetimeValue"` // minor currency units
	AvgResponseSecs   *int       `json:"avgResponseSecs,omitempty"`
	LastInteractionAt *time.Time `json:"lastInteractionAt,omitempty"`

	Status       ContactStatus  `gorm:"type:varchar(16);index;default:active" json:"status"`
	MergedWithID *uuid.UUID     `gorm:"type:char(36)" json:"mergedWithId,omitempty"`
	MergedIDs    datatypes.JSON `gorm:"type:json" json:"mergedIds"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (c *Contact) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// TagList parses the JSON tag column. Malformed payloads read as empty.
func (c *Contact) TagList() []string {
	var tags []string
	if len(c.Tags) > 0 {
		_ = json.Unmarshal(c.Tags, &tags)
	}
	return tags
}

func (c *Contact) SetTagList(tags []string) {
	b, _ := json.Marshal(tags)
	c.Tags = b
}

func (c *Contact) HasTag(tag string) bool {
	for _, t := range c.TagList() {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// CustomFieldMap parses the JSON custom-field column. Malformed payloads read as empty.
func (c *Contact) CustomFieldMap() map[string]interface{} {
	fields := map[string]interface{}{}
	if len(c.CustomFields) > 0 {
		_ = json.Unmarshal(c.CustomFields, &fields)
	}
	return fields
}

func (c *Contact) SetCustomFieldMap(fields map[string]interface{}) {
	b, _ := json.Marshal(fields)
	c.CustomFields = b
}

// MergedHistory lists every contact id historically folded into this one.
func (c *Contact) MergedHistory() []uuid.UUID {
	var ids []uuid.UUID
	if len(c.MergedIDs) > 0 {
		_ = json.Unmarshal(c.MergedIDs, &ids)
	}
	return ids
}

func (c *Contact) SetMergedHistory(ids []uuid.UUID) {
	b, _ := json.Marshal(ids)
	c.MergedIDs = b
}
