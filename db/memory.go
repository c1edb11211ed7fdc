package db

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	models "github.com/clariohq/clario/dbmodels"
)

// MemoryStore is an in-memory Store used in standalone mode and in tests.
// Transactions hold the store lock for their duration and roll the data back
// on error, so the all-or-nothing contract holds for a single process.
type MemoryStore struct {
	mu sync.Mutex
	d  memData
}

type memData struct {
	contacts      map[uuid.UUID]models.Contact
	sources       []models.ContactSource
	conversations map[uuid.UUID]models.Conversation
	messages      []models.ConversationMessage
	agents        map[uuid.UUID]models.Agent
	assignments   []models.AgentAssignment
	agreements    []models.Agreement
	notes         []models.ContactNote
	forms         map[uuid.UUID]models.Form
	submissions   []models.FormSubmission
	products      []models.Product
	voiceCalls    []models.VoiceCall
	orgs          map[uuid.UUID]models.Organization
	ledger        []models.LedgerEntry
	seq           int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{d: memData{
		contacts:      map[uuid.UUID]models.Contact{},
		conversations: map[uuid.UUID]models.Conversation{},
		agents:        map[uuid.UUID]models.Agent{},
		forms:         map[uuid.UUID]models.Form{},
		orgs:          map[uuid.UUID]models.Organization{},
	}}
}

func (d *memData) clone() memData {
	c := memData{
		contacts:      make(map[uuid.UUID]models.Contact, len(d.contacts)),
		sources:       append([]models.ContactSource(nil), d.sources...),
		conversations: make(map[uuid.UUID]models.Conversation, len(d.conversations)),
		messages:      append([]models.ConversationMessage(nil), d.messages...),
		agents:        make(map[uuid.UUID]models.Agent, len(d.agents)),
		assignments:   append([]models.AgentAssignment(nil), d.assignments...),
		agreements:    append([]models.Agreement(nil), d.agreements...),
		notes:         append([]models.ContactNote(nil), d.notes...),
		forms:         make(map[uuid.UUID]models.Form, len(d.forms)),
		submissions:   append([]models.FormSubmission(nil), d.submissions...),
		products:      append([]models.Product(nil), d.products...),
		voiceCalls:    append([]models.VoiceCall(nil), d.voiceCalls...),
		orgs:          make(map[uuid.UUID]models.Organization, len(d.orgs)),
		ledger:        append([]models.LedgerEntry(nil), d.ledger...),
		seq:           d.seq,
	}
	for k, v := range d.contacts {
		c.contacts[k] = v
	}
	for k, v := range d.conversations {
		c.conversations[k] = v
	}
	for k, v := range d.agents {
		c.agents[k] = v
	}
	for k, v := range d.forms {
		c.forms[k] = v
	}
	for k, v := range d.orgs {
		c.orgs[k] = v
	}
	return c
}

func (m *MemoryStore) Transaction(ctx context.Context, fn func(Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	snapshot := m.d.clone()
	if err := fn(&memView{d: &m.d}); err != nil {
		m.d = snapshot
		return err
	}
	return nil
}

func (m *MemoryStore) view(fn func(*memView) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(&memView{d: &m.d})
}

// memView operates on the data without locking; MemoryStore and Transaction
// wrap it with the store lock.
type memView struct {
	d *memData
}

// Nested transactions just run in the enclosing one.
func (v *memView) Transaction(ctx context.Context, fn func(Store) error) error {
	return fn(v)
}

func ensureTime(t *time.Time) {
	if t.IsZero() {
		*t = time.Now()
	}
}

// Contacts

func (v *memView) CreateContact(ctx context.Context, c *models.Contact) error {
	if err := c.BeforeCreate(nil); err != nil {
		return err
	}
	ensureTime(&c.CreatedAt)
	c.UpdatedAt = c.CreatedAt
	// Column default, same as the SQL schema.
	if c.Status == "" {
		c.Status = models.ContactActive
	}
	v.d.contacts[c.ID] = *c
	return nil
}

func (v *memView) SaveContact(ctx context.Context, c *models.Contact) error {
	c.UpdatedAt = time.Now()
	v.d.contacts[c.ID] = *c
	return nil
}

func (v *memView) GetContact(ctx context.Context, id uuid.UUID) (*models.Contact, error) {
	c, ok := v.d.contacts[id]
	if !ok {
		return nil, notFound("contact", id)
	}
	return &c, nil
}

func (v *memView) findActiveContact(orgID uuid.UUID, match func(*models.Contact) bool) *models.Contact {
	contacts := v.activeContacts(orgID)
	for i := range contacts {
		if match(&contacts[i]) {
			c := contacts[i]
			return &c
		}
	}
	return nil
}

func (v *memView) activeContacts(orgID uuid.UUID) []models.Contact {
	var out []models.Contact
	for _, c := range v.d.contacts {
		if c.OrganizationID == orgID && c.Status == models.ContactActive {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (v *memView) FindActiveContactByEmail(ctx context.Context, orgID uuid.UUID, email string) (*models.Contact, error) {
	return v.findActiveContact(orgID, func(c *models.Contact) bool {
		return c.Email != "" && strings.EqualFold(c.Email, email)
	}), nil
}

func (v *memView) FindActiveContactByPhone(ctx context.Context, orgID uuid.UUID, phone string) (*models.Contact, error) {
	return v.findActiveContact(orgID, func(c *models.Contact) bool {
		return c.Phone != "" && c.Phone == phone
	}), nil
}

func (v *memView) ListActiveContacts(ctx context.Context, orgID uuid.UUID) ([]models.Contact, error) {
	return v.activeContacts(orgID), nil
}

func (v *memView) ReassignContactOwnership(ctx context.Context, fromIDs []uuid.UUID, toID uuid.UUID) error {
	from := map[uuid.UUID]bool{}
	for _, id := range fromIDs {
		from[id] = true
	}
	for id, c := range v.d.conversations {
		if from[c.ContactID] {
			c.ContactID = toID
			v.d.conversations[id] = c
		}
	}
	for i := range v.d.agreements {
		if from[v.d.agreements[i].ContactID] {
			v.d.agreements[i].ContactID = toID
		}
	}
	for i := range v.d.notes {
		if from[v.d.notes[i].ContactID] {
			v.d.notes[i].ContactID = toID
		}
	}
	for i := range v.d.sources {
		if from[v.d.sources[i].ContactID] {
			v.d.sources[i].ContactID = toID
		}
	}
	for i := range v.d.assignments {
		if from[v.d.assignments[i].ContactID] {
			v.d.assignments[i].ContactID = toID
		}
	}
	for i := range v.d.submissions {
		if from[v.d.submissions[i].ContactID] {
			v.d.submissions[i].ContactID = toID
		}
	}
	for i := range v.d.voiceCalls {
		if from[v.d.voiceCalls[i].ContactID] {
			v.d.voiceCalls[i].ContactID = toID
		}
	}
	return nil
}

// Contact sources

func (v *memView) FindContactSource(ctx context.Context, contactID uuid.UUID, sourceType, identifier string) (*models.ContactSource, error) {
	for i := range v.d.sources {
		s := v.d.sources[i]
		if s.ContactID == contactID && s.SourceType == sourceType && s.SourceIdentifier == identifier {
			return &s, nil
		}
	}
	return nil, nil
}

func (v *memView) CreateContactSource(ctx context.Context, s *models.ContactSource) error {
	if err := s.BeforeCreate(nil); err != nil {
		return err
	}
	ensureTime(&s.FirstSeenAt)
	ensureTime(&s.LastSeenAt)
	v.d.sources = append(v.d.sources, *s)
	return nil
}

func (v *memView) SaveContactSource(ctx context.Context, s *models.ContactSource) error {
	for i := range v.d.sources {
		if v.d.sources[i].ID == s.ID {
			v.d.sources[i] = *s
			return nil
		}
	}
	return notFound("contact source", s.ID)
}

// Conversations and messages

func (v *memView) GetConversation(ctx context.Context, id uuid.UUID) (*models.Conversation, error) {
	c, ok := v.d.conversations[id]
	if !ok {
		return nil, notFound("conversation", id)
	}
	return &c, nil
}

func (v *memView) CreateConversation(ctx context.Context, c *models.Conversation) error {
	if err := c.BeforeCreate(nil); err != nil {
		return err
	}
	ensureTime(&c.CreatedAt)
	c.UpdatedAt = c.CreatedAt
	// Column default, same as the SQL schema. Disabling AI on a fresh
	// conversation takes a follow-up save, exactly as it would over gorm.
	c.AIEnabled = true
	v.d.conversations[c.ID] = *c
	return nil
}

func (v *memView) SaveConversation(ctx context.Context, c *models.Conversation) error {
	c.UpdatedAt = time.Now()
	v.d.conversations[c.ID] = *c
	return nil
}

func (v *memView) AppendMessage(ctx context.Context, m *models.ConversationMessage) error {
	if err := m.BeforeCreate(nil); err != nil {
		return err
	}
	ensureTime(&m.CreatedAt)
	v.d.seq++
	m.Seq = v.d.seq
	v.d.messages = append(v.d.messages, *m)
	return nil
}

func (v *memView) conversationMessages(conversationID uuid.UUID, includeSystem bool) []models.ConversationMessage {
	var out []models.ConversationMessage
	for _, m := range v.d.messages {
		if m.ConversationID != conversationID {
			continue
		}
		if !includeSystem && m.Role == "system" {
			continue
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Seq < out[j].Seq
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (v *memView) ListRecentMessages(ctx context.Context, conversationID uuid.UUID, limit int) ([]models.ConversationMessage, error) {
	msgs := v.conversationMessages(conversationID, false)
	if len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	return msgs, nil
}

func (v *memView) ListConversationMessages(ctx context.Context, conversationID uuid.UUID) ([]models.ConversationMessage, error) {
	return v.conversationMessages(conversationID, true), nil
}

func (v *memView) ListContactMessages(ctx context.Context, contactID uuid.UUID) ([]models.ConversationMessage, error) {
	var out []models.ConversationMessage
	for id, c := range v.d.conversations {
		if c.ContactID == contactID {
			out = append(out, v.conversationMessages(id, true)...)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].ConversationID != out[j].ConversationID {
			return out[i].ConversationID.String() < out[j].ConversationID.String()
		}
		return out[i].Seq < out[j].Seq
	})
	return out, nil
}

// Agents and assignments

func (v *memView) GetAgent(ctx context.Context, id uuid.UUID) (*models.Agent, error) {
	a, ok := v.d.agents[id]
	if !ok {
		return nil, notFound("agent", id)
	}
	return &a, nil
}

func (v *memView) ListActiveAgents(ctx context.Context, orgID uuid.UUID) ([]models.Agent, error) {
	var out []models.Agent
	for _, a := range v.d.agents {
		if a.OrganizationID == orgID && a.Active {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (v *memView) GetOpenAssignment(ctx context.Context, conversationID uuid.UUID) (*models.AgentAssignment, error) {
	for i := range v.d.assignments {
		a := v.d.assignments[i]
		if a.ConversationID == conversationID && a.Open() {
			return &a, nil
		}
	}
	return nil, nil
}

func (v *memView) GetAssignment(ctx context.Context, id uuid.UUID) (*models.AgentAssignment, error) {
	for i := range v.d.assignments {
		if v.d.assignments[i].ID == id {
			a := v.d.assignments[i]
			return &a, nil
		}
	}
	return nil, notFound("assignment", id)
}

func (v *memView) CreateAssignment(ctx context.Context, a *models.AgentAssignment) error {
	if err := a.BeforeCreate(nil); err != nil {
		return err
	}
	ensureTime(&a.AssignedAt)
	v.d.assignments = append(v.d.assignments, *a)
	return nil
}

func (v *memView) SaveAssignment(ctx context.Context, a *models.AgentAssignment) error {
	for i := range v.d.assignments {
		if v.d.assignments[i].ID == a.ID {
			v.d.assignments[i] = *a
			return nil
		}
	}
	return notFound("assignment", a.ID)
}

func (v *memView) CountOpenAssignments(ctx context.Context, agentID uuid.UUID) (int, error) {
	count := 0
	for i := range v.d.assignments {
		if v.d.assignments[i].AgentID == agentID && v.d.assignments[i].Open() {
			count++
		}
	}
	return count, nil
}

// Agreements and notes

func (v *memView) ListActiveAgreements(ctx context.Context, contactID uuid.UUID) ([]models.Agreement, error) {
	var out []models.Agreement
	for _, a := range v.d.agreements {
		if a.ContactID == contactID && a.Status == "active" {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (v *memView) ListRecentNotes(ctx context.Context, contactID uuid.UUID, limit int) ([]models.ContactNote, error) {
	var out []models.ContactNote
	for _, n := range v.d.notes {
		if n.ContactID == contactID {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (v *memView) CreateNote(ctx context.Context, n *models.ContactNote) error {
	if err := n.BeforeCreate(nil); err != nil {
		return err
	}
	ensureTime(&n.CreatedAt)
	v.d.notes = append(v.d.notes, *n)
	return nil
}

// Forms

func (v *memView) GetForm(ctx context.Context, id uuid.UUID) (*models.Form, error) {
	f, ok := v.d.forms[id]
	if !ok {
		return nil, notFound("form", id)
	}
	return &f, nil
}

func (v *memView) CreateFormSubmission(ctx context.Context, s *models.FormSubmission) error {
	if err := s.BeforeCreate(nil); err != nil {
		return err
	}
	ensureTime(&s.CreatedAt)
	v.d.submissions = append(v.d.submissions, *s)
	return nil
}

// Products

func (v *memView) ListActiveProducts(ctx context.Context, orgID uuid.UUID) ([]models.Product, error) {
	var out []models.Product
	for _, p := range v.d.products {
		if p.OrganizationID == orgID && p.Active {
			out = append(out, p)
		}
	}
	return out, nil
}

// Voice calls

func (v *memView) CreateVoiceCall(ctx context.Context, call *models.VoiceCall) error {
	if err := call.BeforeCreate(nil); err != nil {
		return err
	}
	ensureTime(&call.CreatedAt)
	v.d.voiceCalls = append(v.d.voiceCalls, *call)
	return nil
}

func (v *memView) ListContactVoiceCalls(ctx context.Context, contactID uuid.UUID) ([]models.VoiceCall, error) {
	var out []models.VoiceCall
	for _, call := range v.d.voiceCalls {
		if call.ContactID == contactID {
			out = append(out, call)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// Organizations and ledger

func (v *memView) GetOrganization(ctx context.Context, id uuid.UUID) (*models.Organization, error) {
	o, ok := v.d.orgs[id]
	if !ok {
		return nil, notFound("organization", id)
	}
	return &o, nil
}

func (v *memView) SaveOrganization(ctx context.Context, o *models.Organization) error {
	o.UpdatedAt = time.Now()
	v.d.orgs[o.ID] = *o
	return nil
}

func (v *memView) CreateLedgerEntry(ctx context.Context, e *models.LedgerEntry) error {
	if err := e.BeforeCreate(nil); err != nil {
		return err
	}
	ensureTime(&e.CreatedAt)
	v.d.ledger = append(v.d.ledger, *e)
	return nil
}

// Public MemoryStore methods delegate to a locked view.

func (m *MemoryStore) CreateContact(ctx context.Context, c *models.Contact) error {
	return m.view(func(v *memView) error { return v.CreateContact(ctx, c) })
}

func (m *MemoryStore) SaveContact(ctx context.Context, c *models.Contact) error {
	return m.view(func(v *memView) error { return v.SaveContact(ctx, c) })
}

func (m *MemoryStore) GetContact(ctx context.Context, id uuid.UUID) (c *models.Contact, err error) {
	err2 := m.view(func(v *memView) error { c, err = v.GetContact(ctx, id); return nil })
	if err2 != nil {
		return nil, err2
	}
	return c, err
}

func (m *MemoryStore) FindActiveContactByEmail(ctx context.Context, orgID uuid.UUID, email string) (c *models.Contact, err error) {
	_ = m.view(func(v *memView) error { c, err = v.FindActiveContactByEmail(ctx, orgID, email); return nil })
	return c, err
}

func (m *MemoryStore) FindActiveContactByPhone(ctx context.Context, orgID uuid.UUID, phone string) (c *models.Contact, err error) {
	_ = m.view(func(v *memView) error { c, err = v.FindActiveContactByPhone(ctx, orgID, phone); return nil })
	return c, err
}

func (m *MemoryStore) ListActiveContacts(ctx context.Context, orgID uuid.UUID) (out []models.Contact, err error) {
	_ = m.view(func(v *memView) error { out, err = v.ListActiveContacts(ctx, orgID); return nil })
	return out, err
}

func (m *MemoryStore) ReassignContactOwnership(ctx context.Context, fromIDs []uuid.UUID, toID uuid.UUID) error {
	return m.view(func(v *memView) error { return v.ReassignContactOwnership(ctx, fromIDs, toID) })
}

func (m *MemoryStore) FindContactSource(ctx context.Context, contactID uuid.UUID, sourceType, identifier string) (s *models.ContactSource, err error) {
	_ = m.view(func(v *memView) error { s, err = v.FindContactSource(ctx, contactID, sourceType, identifier); return nil })
	return s, err
}

func (m *MemoryStore) CreateContactSource(ctx context.Context, s *models.ContactSource) error {
	return m.view(func(v *memView) error { return v.CreateContactSource(ctx, s) })
}

func (m *MemoryStore) SaveContactSource(ctx context.Context, s *models.ContactSource) error {
	return m.view(func(v *memView) error { return v.SaveContactSource(ctx, s) })
}

func (m *MemoryStore) GetConversation(ctx context.Context, id uuid.UUID) (c *models.Conversation, err error) {
	_ = m.view(func(v *memView) error { c, err = v.GetConversation(ctx, id); return nil })
	return c, err
}

func (m *MemoryStore) CreateConversation(ctx context.Context, c *models.Conversation) error {
	return m.view(func(v *memView) error { return v.CreateConversation(ctx, c) })
}

func (m *MemoryStore) SaveConversation(ctx context.Context, c *models.Conversation) error {
	return m.view(func(v *memView) error { return v.SaveConversation(ctx, c) })
}

func (m *MemoryStore) AppendMessage(ctx context.Context, msg *models.ConversationMessage) error {
	return m.view(func(v *memView) error { return v.AppendMessage(ctx, msg) })
}

func (m *MemoryStore) ListRecentMessages(ctx context.Context, conversationID uuid.UUID, limit int) (out []models.ConversationMessage, err error) {
	_ = m.view(func(v *memView) error { out, err = v.ListRecentMessages(ctx, conversationID, limit); return nil })
	return out, err
}

func (m *MemoryStore) ListConversationMessages(ctx context.Context, conversationID uuid.UUID) (out []models.ConversationMessage, err error) {
	_ = m.view(func(v *memView) error { out, err = v.ListConversationMessages(ctx, conversationID); return nil })
	return out, err
}

func (m *MemoryStore) ListContactMessages(ctx context.Context, contactID uuid.UUID) (out []models.ConversationMessage, err error) {
	_ = m.view(func(v *memView) error { out, err = v.ListContactMessages(ctx, contactID); return nil })
	return out, err
}

func (m *MemoryStore) GetAgent(ctx context.Context, id uuid.UUID) (a *models.Agent, err error) {
	_ = m.view(func(v *memView) error { a, err = v.GetAgent(ctx, id); return nil })
	return a, err
}

func (m *MemoryStore) ListActiveAgents(ctx context.Context, orgID uuid.UUID) (out []models.Agent, err error) {
	_ = m.view(func(v *memView) error { out, err = v.ListActiveAgents(ctx, orgID); return nil })
	return out, err
}

func (m *MemoryStore) GetOpenAssignment(ctx context.Context, conversationID uuid.UUID) (a *models.AgentAssignment, err error) {
	_ = m.view(func(v *memView) error { a, err = v.GetOpenAssignment(ctx, conversationID); return nil })
	return a, err
}

func (m *MemoryStore) GetAssignment(ctx context.Context, id uuid.UUID) (a *models.AgentAssignment, err error) {
	_ = m.view(func(v *memView) error { a, err = v.GetAssignment(ctx, id); return nil })
	return a, err
}

func (m *MemoryStore) CreateAssignment(ctx context.Context, a *models.AgentAssignment) error {
	return m.view(func(v *memView) error { return v.CreateAssignment(ctx, a) })
}

func (m *MemoryStore) SaveAssignment(ctx context.Context, a *models.AgentAssignment) error {
	return m.view(func(v *memView) error { return v.SaveAssignment(ctx, a) })
}

func (m *MemoryStore) CountOpenAssignments(ctx context.Context, agentID uuid.UUID) (n int, err error) {
	_ = m.view(func(v *memView) error { n, err = v.CountOpenAssignments(ctx, agentID); return nil })
	return n, err
}

func (m *MemoryStore) ListActiveAgreements(ctx context.Context, contactID uuid.UUID) (out []models.Agreement, err error) {
	_ = m.view(func(v *memView) error { out, err = v.ListActiveAgreements(ctx, contactID); return nil })
	return out, err
}

func (m *MemoryStore) ListRecentNotes(ctx context.Context, contactID uuid.UUID, limit int) (out []models.ContactNote, err error) {
	_ = m.view(func(v *memView) error { out, err = v.ListRecentNotes(ctx, contactID, limit); return nil })
	return out, err
}

func (m *MemoryStore) CreateNote(ctx context.Context, n *models.ContactNote) error {
	return m.view(func(v *memView) error { return v.CreateNote(ctx, n) })
}

func (m *MemoryStore) GetForm(ctx context.Context, id uuid.UUID) (f *models.Form, err error) {
	_ = m.view(func(v *memView) error { f, err = v.GetForm(ctx, id); return nil })
	return f, err
}

func (m *MemoryStore) CreateFormSubmission(ctx context.Context, s *models.FormSubmission) error {
	return m.view(func(v *memView) error { return v.CreateFormSubmission(ctx, s) })
}

func (m *MemoryStore) ListActiveProducts(ctx context.Context, orgID uuid.UUID) (out []models.Product, err error) {
	_ = m.view(func(v *memView) error { out, err = v.ListActiveProducts(ctx, orgID); return nil })
	return out, err
}

func (m *MemoryStore) CreateVoiceCall(ctx context.Context, call *models.VoiceCall) error {
	return m.view(func(v *memView) error { return v.CreateVoiceCall(ctx, call) })
}

func (m *MemoryStore) ListContactVoiceCalls(ctx context.Context, contactID uuid.UUID) (out []models.VoiceCall, err error) {
	_ = m.view(func(v *memView) error { out, err = v.ListContactVoiceCalls(ctx, contactID); return nil })
	return out, err
}

// AddProduct seeds the catalog; standalone mode has no product CRUD surface.
func (m *MemoryStore) AddProduct(p models.Product) {
	_ = m.view(func(v *memView) error {
		_ = p.BeforeCreate(nil)
		v.d.products = append(v.d.products, p)
		return nil
	})
}

// AddAgreement seeds an agreement row.
func (m *MemoryStore) AddAgreement(a models.Agreement) {
	_ = m.view(func(v *memView) error {
		_ = a.BeforeCreate(nil)
		ensureTime(&a.CreatedAt)
		v.d.agreements = append(v.d.agreements, a)
		return nil
	})
}

// PutAgent seeds an agent row.
func (m *MemoryStore) PutAgent(a models.Agent) {
	_ = m.view(func(v *memView) error {
		_ = a.BeforeCreate(nil)
		ensureTime(&a.CreatedAt)
		v.d.agents[a.ID] = a
		return nil
	})
}

// PutForm seeds a form row.
func (m *MemoryStore) PutForm(f models.Form) {
	_ = m.view(func(v *memView) error {
		_ = f.BeforeCreate(nil)
		ensureTime(&f.CreatedAt)
		v.d.forms[f.ID] = f
		return nil
	})
}

// PutOrganization seeds an organization row.
func (m *MemoryStore) PutOrganization(o models.Organization) {
	_ = m.view(func(v *memView) error {
		_ = o.BeforeCreate(nil)
		ensureTime(&o.CreatedAt)
		v.d.orgs[o.ID] = o
		return nil
	})
}

func (m *MemoryStore) GetOrganization(ctx context.Context, id uuid.UUID) (o *models.Organization, err error) {
	_ = m.view(func(v *memView) error { o, err = v.GetOrganization(ctx, id); return nil })
	return o, err
}

func (m *MemoryStore) SaveOrganization(ctx context.Context, o *models.Organization) error {
	return m.view(func(v *memView) error { return v.SaveOrganization(ctx, o) })
}

func (m *MemoryStore) CreateLedgerEntry(ctx context.Context, e *models.LedgerEntry) error {
	return m.view(func(v *memView) error { return v.CreateLedgerEntry(ctx, e) })
}

// LedgerEntries returns a copy of the ledger, newest last.
func (m *MemoryStore) LedgerEntries() []models.LedgerEntry {
	var out []models.LedgerEntry
	_ = m.view(func(v *memView) error {
		out = append(out, v.d.ledger...)
		return nil
	})
	return out
}

var _ Store = (*MemoryStore)(nil)
var _ Store = (*memView)(nil)
