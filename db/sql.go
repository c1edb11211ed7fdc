package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/clariohq/clario/core/types"
	models "github.com/clariohq/clario/dbmodels"
)

// SQLStore is the gorm-backed Store.
type SQLStore struct {
	db *gorm.DB
}

func NewSQLStore(gdb *gorm.DB) *SQLStore {
	return &SQLStore{db: gdb}
}

func (s *SQLStore) Transaction(ctx context.Context, fn func(Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&SQLStore{db: tx})
	})
}

func notFound(entity string, id uuid.UUID) error {
	return fmt.Errorf("%s %s: %w", entity, id, types.ErrNotFound)
}

// Contacts

func (s *SQLStore) CreateContact(ctx context.Context, c *models.Contact) error {
	return s.db.WithContext(ctx).Create(c).Error
}

func (s *SQLStore) SaveContact(ctx context.Context, c *models.Contact) error {
	return s.db.WithContext(ctx).Save(c).Error
}

func (s *SQLStore) GetContact(ctx context.Context, id uuid.UUID) (*models.Contact, error) {
	var c models.Contact
	if err := s.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("contact", id)
		}
		return nil, err
	}
	return &c, nil
}

func (s *SQLStore) FindActiveContactByEmail(ctx context.Context, orgID uuid.UUID, email string) (*models.Contact, error) {
	var c models.Contact
	err := s.db.WithContext(ctx).
		Where("organization_id = ? AND status = ? AND email = ?", orgID, models.ContactActive, email).
		Order("created_at ASC").
		First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *SQLStore) FindActiveContactByPhone(ctx context.Context, orgID uuid.UUID, phone string) (*models.Contact, error) {
	var c models.Contact
	err := s.db.WithContext(ctx).
		Where("organization_id = ? AND status = ? AND phone = ?", orgID, models.ContactActive, phone).
		Order("created_at ASC").
		First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *SQLStore) ListActiveContacts(ctx context.Context, orgID uuid.UUID) ([]models.Contact, error) {
	var contacts []models.Contact
	err := s.db.WithContext(ctx).
		Where("organization_id = ? AND status = ?", orgID, models.ContactActive).
		Order("created_at ASC").
		Find(&contacts).Error
	return contacts, err
}

func (s *SQLStore) ReassignContactOwnership(ctx context.Context, fromIDs []uuid.UUID, toID uuid.UUID) error {
	if len(fromIDs) == 0 {
		return nil
	}
	gdb := s.db.WithContext(ctx)
	for _, step := range []struct {
		model  interface{}
		column string
	}{
		{&models.Conversation{}, "contact_id"},
		{&models.Agreement{}, "contact_id"},
		{&models.ContactNote{}, "contact_id"},
		{&models.ContactSource{}, "contact_id"},
		{&models.AgentAssignment{}, "contact_id"},
		{&models.FormSubmission{}, "contact_id"},
		{&models.VoiceCall{}, "contact_id"},
	} {
		if err := gdb.Model(step.model).
			Where(step.column+" IN ?", fromIDs).
			Update(step.column, toID).Error; err != nil {
			return fmt.Errorf("re-pointing %T: %w", step.model, err)
		}
	}
	return nil
}

// Contact sources

func (s *SQLStore) FindContactSource(ctx context.Context, contactID uuid.UUID, sourceType, identifier string) (*models.ContactSource, error) {
	var src models.ContactSource
	err := s.db.WithContext(ctx).
		Where("contact_id = ? AND source_type = ? AND source_identifier = ?", contactID, sourceType, identifier).
		Order("last_seen_at DESC").
		First(&src).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &src, nil
}

func (s *SQLStore) CreateContactSource(ctx context.Context, src *models.ContactSource) error {
	return s.db.WithContext(ctx).Create(src).Error
}

func (s *SQLStore) SaveContactSource(ctx context.Context, src *models.ContactSource) error {
	return s.db.WithContext(ctx).Save(src).Error
}

// Conversations and messages

func (s *SQLStore) GetConversation(ctx context.Context, id uuid.UUID) (*models.Conversation, error) {
	var c models.Conversation
	if err := s.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("conversation", id)
		}
		return nil, err
	}
	return &c, nil
}

func (s *SQLStore) CreateConversation(ctx context.Context, c *models.Conversation) error {
	return s.db.WithContext(ctx).Create(c).Error
}

func (s *SQLStore) SaveConversation(ctx context.Context, c *models.Conversation) error {
	return s.db.WithContext(ctx).Save(c).Error
}

func (s *SQLStore) AppendMessage(ctx context.Context, m *models.ConversationMessage) error {
	return s.db.WithContext(ctx).Create(m).Error
}

func (s *SQLStore) ListRecentMessages(ctx context.Context, conversationID uuid.UUID, limit int) ([]models.ConversationMessage, error) {
	var msgs []models.ConversationMessage
	err := s.db.WithContext(ctx).
		Where("conversation_id = ? AND role <> ?", conversationID, "system").
		Order("created_at DESC, seq DESC").
		Limit(limit).
		Find(&msgs).Error
	if err != nil {
		return nil, err
	}
	// chronological order
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

func (s *SQLStore) ListConversationMessages(ctx context.Context, conversationID uuid.UUID) ([]models.ConversationMessage, error) {
	var msgs []models.ConversationMessage
	err := s.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC, seq ASC").
		Find(&msgs).Error
	return msgs, err
}

func (s *SQLStore) ListContactMessages(ctx context.Context, contactID uuid.UUID) ([]models.ConversationMessage, error) {
	var msgs []models.ConversationMessage
	err := s.db.WithContext(ctx).
		Joins("JOIN conversations ON conversations.id = conversation_messages.conversation_id").
		Where("conversations.contact_id = ?", contactID).
		Order("conversation_messages.conversation_id, conversation_messages.created_at ASC, conversation_messages.seq ASC").
		Find(&msgs).Error
	return msgs, err
}

// Agents and assignments

func (s *SQLStore) GetAgent(ctx context.Context, id uuid.UUID) (*models.Agent, error) {
	var a models.Agent
	if err := s.db.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("agent", id)
		}
		return nil, err
	}
	return &a, nil
}

func (s *SQLStore) ListActiveAgents(ctx context.Context, orgID uuid.UUID) ([]models.Agent, error) {
	var agents []models.Agent
	err := s.db.WithContext(ctx).
		Where("organization_id = ? AND active = ?", orgID, true).
		Order("created_at ASC").
		Find(&agents).Error
	return agents, err
}

func (s *SQLStore) GetOpenAssignment(ctx context.Context, conversationID uuid.UUID) (*models.AgentAssignment, error) {
	var a models.AgentAssignment
	err := s.db.WithContext(ctx).
		Where("conversation_id = ? AND unassigned_at IS NULL", conversationID).
		Order("assigned_at DESC").
		First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *SQLStore) GetAssignment(ctx context.Context, id uuid.UUID) (*models.AgentAssignment, error) {
	var a models.AgentAssignment
	if err := s.db.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("assignment", id)
		}
		return nil, err
	}
	return &a, nil
}

func (s *SQLStore) CreateAssignment(ctx context.Context, a *models.AgentAssignment) error {
	return s.db.WithContext(ctx).Create(a).Error
}

func (s *SQLStore) SaveAssignment(ctx context.Context, a *models.AgentAssignment) error {
	return s.db.WithContext(ctx).Save(a).Error
}

func (s *SQLStore) CountOpenAssignments(ctx context.Context, agentID uuid.UUID) (int, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.AgentAssignment{}).
		Where("agent_id = ? AND unassigned_at IS NULL", agentID).
		Count(&count).Error
	return int(count), err
}

// Agreements and notes

func (s *SQLStore) ListActiveAgreements(ctx context.Context, contactID uuid.UUID) ([]models.Agreement, error) {
	var agreements []models.Agreement
	err := s.db.WithContext(ctx).
		Where("contact_id = ? AND status = ?", contactID, "active").
		Order("created_at DESC").
		Find(&agreements).Error
	return agreements, err
}

func (s *SQLStore) ListRecentNotes(ctx context.Context, contactID uuid.UUID, limit int) ([]models.ContactNote, error) {
	var notes []models.ContactNote
	err := s.db.WithContext(ctx).
		Where("contact_id = ?", contactID).
		Order("created_at DESC").
		Limit(limit).
		Find(&notes).Error
	return notes, err
}

func (s *SQLStore) CreateNote(ctx context.Context, n *models.ContactNote) error {
	return s.db.WithContext(ctx).Create(n).Error
}

// Forms

func (s *SQLStore) GetForm(ctx context.Context, id uuid.UUID) (*models.Form, error) {
	var f models.Form
	if err := s.db.WithContext(ctx).First(&f, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("form", id)
		}
		return nil, err
	}
	return &f, nil
}

func (s *SQLStore) CreateFormSubmission(ctx context.Context, sub *models.FormSubmission) error {
	return s.db.WithContext(ctx).Create(sub).Error
}

// Products

func (s *SQLStore) ListActiveProducts(ctx context.Context, orgID uuid.UUID) ([]models.Product, error) {
	var products []models.Product
	err := s.db.WithContext(ctx).
		Where("organization_id = ? AND active = ?", orgID, true).
		Find(&products).Error
	return products, err
}

// Voice calls

func (s *SQLStore) CreateVoiceCall(ctx context.Context, v *models.VoiceCall) error {
	return s.db.WithContext(ctx).Create(v).Error
}

func (s *SQLStore) ListContactVoiceCalls(ctx context.Context, contactID uuid.UUID) ([]models.VoiceCall, error) {
	var calls []models.VoiceCall
	err := s.db.WithContext(ctx).
		Where("contact_id = ?", contactID).
		Order("created_at DESC").
		Find(&calls).Error
	return calls, err
}

// Organizations and ledger

func (s *SQLStore) GetOrganization(ctx context.Context, id uuid.UUID) (*models.Organization, error) {
	var o models.Organization
	if err := s.db.WithContext(ctx).First(&o, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("organization", id)
		}
		return nil, err
	}
	return &o, nil
}

func (s *SQLStore) SaveOrganization(ctx context.Context, o *models.Organization) error {
	return s.db.WithContext(ctx).Save(o).Error
}

func (s *SQLStore) CreateLedgerEntry(ctx context.Context, e *models.LedgerEntry) error {
	return s.db.WithContext(ctx).Create(e).Error
}
