package db

import (
	"context"

	"github.com/google/uuid"

	models "github.com/clariohq/clario/dbmodels"
)

// Store is the storage contract the engagement core runs on. Lookups that
// miss by key return (nil, nil); Get* by id return types.ErrNotFound.
// Transaction yields a store whose operations commit or roll back as one
// unit of work.
type Store interface {
	Transaction(ctx context.Context, fn func(Store) error) error

	// Contacts
	CreateContact(ctx context.Context, c *models.Contact) error
	SaveContact(ctx context.Context, c *models.Contact) error
	GetContact(ctx context.Context, id uuid.UUID) (*models.Contact, error)
	FindActiveContactByEmail(ctx context.Context, orgID uuid.UUID, email string) (*models.Contact, error)
	FindActiveContactByPhone(ctx context.Context, orgID uuid.UUID, phone string) (*models.Contact, error)
	ListActiveContacts(ctx context.Context, orgID uuid.UUID) ([]models.Contact, error)
	// ReassignContactOwnership re-points every row owned by any of the from
	// contacts (conversations, agreements, notes, sources, assignments, form
	// submissions, voice calls) at the to contact.
	ReassignContactOwnership(ctx context.Context, fromIDs []uuid.UUID, toID uuid.UUID) error

	// Contact sources
	FindContactSource(ctx context.Context, contactID uuid.UUID, sourceType, identifier string) (*models.ContactSource, error)
	CreateContactSource(ctx context.Context, s *models.ContactSource) error
	SaveContactSource(ctx context.Context, s *models.ContactSource) error

	// Conversations and messages
	GetConversation(ctx context.Context, id uuid.UUID) (*models.Conversation, error)
	CreateConversation(ctx context.Context, c *models.Conversation) error
	SaveConversation(ctx context.Context, c *models.Conversation) error
	AppendMessage(ctx context.Context, m *models.ConversationMessage) error
	// ListRecentMessages returns the last limit non-system messages in
	// chronological order.
	ListRecentMessages(ctx context.Context, conversationID uuid.UUID, limit int) ([]models.ConversationMessage, error)
	ListConversationMessages(ctx context.Context, conversationID uuid.UUID) ([]models.ConversationMessage, error)
	// ListContactMessages returns every message across the contact's
	// conversations, grouped by conversation, oldest first within each.
	ListContactMessages(ctx context.Context, contactID uuid.UUID) ([]models.ConversationMessage, error)

	// Agents and assignments
	GetAgent(ctx context.Context, id uuid.UUID) (*models.Agent, error)
	ListActiveAgents(ctx context.Context, orgID uuid.UUID) ([]models.Agent, error)
	GetOpenAssignment(ctx context.Context, conversationID uuid.UUID) (*models.AgentAssignment, error)
	GetAssignment(ctx context.Context, id uuid.UUID) (*models.AgentAssignment, error)
	CreateAssignment(ctx context.Context, a *models.AgentAssignment) error
	SaveAssignment(ctx context.Context, a *models.AgentAssignment) error
	CountOpenAssignments(ctx context.Context, agentID uuid.UUID) (int, error)

	// Agreements and notes
	ListActiveAgreements(ctx context.Context, contactID uuid.UUID) ([]models.Agreement, error)
	ListRecentNotes(ctx context.Context, contactID uuid.UUID, limit int) ([]models.ContactNote, error)
	CreateNote(ctx context.Context, n *models.ContactNote) error

	// Forms
	GetForm(ctx context.Context, id uuid.UUID) (*models.Form, error)
	CreateFormSubmission(ctx context.Context, s *models.FormSubmission) error

	// Products
	ListActiveProducts(ctx context.Context, orgID uuid.UUID) ([]models.Product, error)

	// Voice calls
	CreateVoiceCall(ctx context.Context, v *models.VoiceCall) error
	// ListContactVoiceCalls returns the contact's calls, newest first.
	ListContactVoiceCalls(ctx context.Context, contactID uuid.UUID) ([]models.VoiceCall, error)

	// Organizations and ledger
	GetOrganization(ctx context.Context, id uuid.UUID) (*models.Organization, error)
	SaveOrganization(ctx context.Context, o *models.Organization) error
	CreateLedgerEntry(ctx context.Context, e *models.LedgerEntry) error
}
