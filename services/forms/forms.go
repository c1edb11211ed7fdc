// Package forms ingests lead-capture submissions: validation, identity
// resolution, and the optional conversation kickoff a form can be configured
// with.
package forms

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/mudler/xlog"

	"github.com/clariohq/clario/core/identity"
	"github.com/clariohq/clario/core/router"
	"github.com/clariohq/clario/core/types"
	"github.com/clariohq/clario/db"
	models "github.com/clariohq/clario/dbmodels"
)

const sourceType = "form"

type Service struct {
	store    db.Store
	resolver *identity.Resolver
	router   *router.Router
}

func NewService(store db.Store, resolver *identity.Resolver, rt *router.Router) *Service {
	return &Service{store: store, resolver: resolver, router: rt}
}

// Result is everything one submission produced. Conversation is nil unless
// the form starts one.
type Result struct {
	Submission   *models.FormSubmission
	Contact      *models.Contact
	Conversation *models.Conversation
}

// Submit validates the payload against the form definition, resolves the
// submitter to a contact, and stores the submission.
func (s *Service) Submit(ctx context.Context, formID uuid.UUID, data map[string]string) (*Result, error) {
	form, err := s.store.GetForm(ctx, formID)
	if err != nil {
		return nil, err
	}
	if !form.Active {
		return nil, fmt.Errorf("%w: form %s is inactive", types.ErrConflict, formID)
	}
	for _, field := range form.FieldList() {
		if field.Required && data[field.Name] == "" {
			return nil, fmt.Errorf("%w: missing required field %q", types.ErrValidation, field.Name)
		}
	}
	if data["email"] == "" && data["phone"] == "" {
		return nil, fmt.Errorf("%w: submission needs an email or phone", types.ErrValidation)
	}

	meta := make(map[string]interface{}, len(data))
	for k, v := range data {
		meta[k] = v
	}
	contact, err := s.resolver.FindOrCreate(ctx, form.OrganizationID, identity.FindOrCreateInput{
		Email:            data["email"],
		Phone:            data["phone"],
		FirstName:        firstName(data),
		LastName:         data["last_name"],
		SourceType:       sourceType,
		SourceIdentifier: form.ID.String(),
		SourceMetadata:   meta,
	})
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	submission := &models.FormSubmission{
		FormID:         form.ID,
		OrganizationID: form.OrganizationID,
		ContactID:      contact.ID,
		Data:           raw,
	}
	if err := s.store.CreateFormSubmission(ctx, submission); err != nil {
		return nil, err
	}

	out := &Result{Submission: submission, Contact: contact}
	if form.PostSubmitAction == "start_conversation" {
		conv, err := s.startConversation(ctx, form, contact)
		if err != nil {
			// The submission is already safe; losing the kickoff is
			// recoverable by hand.
			xlog.Warn("Starting post-submit conversation", "form", form.ID, "error", err)
			return out, nil
		}
		out.Conversation = conv
	}
	return out, nil
}

// startConversation opens a thread on the form's channel and assigns the
// configured agent, falling back to routing when none is pinned.
func (s *Service) startConversation(ctx context.Context, form *models.Form, contact *models.Contact) (*models.Conversation, error) {
	conv := &models.Conversation{
		OrganizationID: form.OrganizationID,
		ContactID:      contact.ID,
		Channel:        form.Channel,
	}
	if err := s.store.CreateConversation(ctx, conv); err != nil {
		return nil, err
	}

	agentID := uuid.Nil
	if form.AgentID != nil {
		agentID = *form.AgentID
	} else {
		agent, err := s.router.FindBestAvailableAgent(ctx, form.OrganizationID, router.Criteria{
			Channel:   form.Channel,
			ContactID: contact.ID,
		})
		if err != nil {
			return nil, err
		}
		if agent != nil {
			agentID = agent.ID
		}
	}
	if agentID != uuid.Nil {
		if _, err := s.router.AssignToConversation(ctx, conv.ID, agentID, contact.ID); err != nil {
			return nil, err
		}
	}
	return conv, nil
}

func firstName(data map[string]string) string {
	if data["first_name"] != "" {
		return data["first_name"]
	}
	return data["name"]
}
