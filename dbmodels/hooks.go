package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Primary keys are assigned client-side so a row has its id before the
// insert. Ids set explicitly by the caller are kept.
func assignID(id *uuid.UUID) error {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
	return nil
}

func (o *Organization) BeforeCreate(tx *gorm.DB) error        { return assignID(&o.ID) }
func (c *Contact) BeforeCreate(tx *gorm.DB) error             { return assignID(&c.ID) }
func (s *ContactSource) BeforeCreate(tx *gorm.DB) error       { return assignID(&s.ID) }
func (c *Conversation) BeforeCreate(tx *gorm.DB) error        { return assignID(&c.ID) }
func (m *ConversationMessage) BeforeCreate(tx *gorm.DB) error { return assignID(&m.ID) }
func (a *Agent) BeforeCreate(tx *gorm.DB) error               { return assignID(&a.ID) }
func (a *AgentAssignment) BeforeCreate(tx *gorm.DB) error     { return assignID(&a.ID) }
func (a *Agreement) BeforeCreate(tx *gorm.DB) error           { return assignID(&a.ID) }
func (n *ContactNote) BeforeCreate(tx *gorm.DB) error         { return assignID(&n.ID) }
func (f *Form) BeforeCreate(tx *gorm.DB) error                { return assignID(&f.ID) }
func (s *FormSubmission) BeforeCreate(tx *gorm.DB) error      { return assignID(&s.ID) }
func (p *Product) BeforeCreate(tx *gorm.DB) error             { return assignID(&p.ID) }
func (v *VoiceCall) BeforeCreate(tx *gorm.DB) error           { return assignID(&v.ID) }
func (e *LedgerEntry) BeforeCreate(tx *gorm.DB) error         { return assignID(&e.ID) }
