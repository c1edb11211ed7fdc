package webapi

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/clariohq/clario/core/identity"
	"github.com/clariohq/clario/core/pipeline"
	"github.com/clariohq/clario/core/router"
)

type resolveContactRequest struct {
	Email            string                 `json:"email"`
	Phone            string                 `json:"phone"`
	FirstName        string                 `json:"firstName"`
	LastName         string                 `json:"lastName"`
	SourceType       string                 `json:"sourceType"`
	SourceIdentifier string                 `json:"sourceIdentifier"`
	SourceMetadata   map[string]interface{} `json:"sourceMetadata"`
}

func (a *api) resolveContact(c *fiber.Ctx) error {
	var req resolveContactRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "bad payload")
	}
	contact, err := a.Resolver.FindOrCreate(c.Context(), orgID(c), identity.FindOrCreateInput{
		Email:            req.Email,
		Phone:            req.Phone,
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		SourceType:       req.SourceType,
		SourceIdentifier: req.SourceIdentifier,
		SourceMetadata:   req.SourceMetadata,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(contact)
}

func (a *api) contactContext(c *fiber.Ctx) error {
	contactID, err := pathID(c)
	if err != nil {
		return err
	}
	conversationID, err := uuid.Parse(c.Query("conversationId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "bad conversationId")
	}
	out, err := a.Builder.Build(c.Context(), contactID, conversationID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}

func (a *api) contactMinimalContext(c *fiber.Ctx) error {
	contactID, err := pathID(c)
	if err != nil {
		return err
	}
	out, err := a.Builder.BuildMinimal(c.Context(), contactID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}

func (a *api) recalculateHeat(c *fiber.Ctx) error {
	contactID, err := pathID(c)
	if err != nil {
		return err
	}
	score, err := a.Scorer.Recalculate(c.Context(), contactID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"heatScore": score})
}

type detectDuplicatesRequest struct {
	Email     string  `json:"email"`
	Phone     string  `json:"phone"`
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	Threshold float64 `json:"threshold"`
}

func (a *api) detectDuplicates(c *fiber.Ctx) error {
	var req detectDuplicatesRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "bad payload")
	}
	threshold := req.Threshold
	if threshold == 0 {
		threshold = identity.DefaultThreshold
	}
	candidates, err := a.Resolver.DetectDuplicates(c.Context(), orgID(c), identity.DuplicateProbe{
		Email:     req.Email,
		Phone:     req.Phone,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}, threshold)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"candidates": candidates})
}

type mergeRequest struct {
	DuplicateIDs []uuid.UUID `json:"duplicateIds"`
}

func (a *api) mergeContacts(c *fiber.Ctx) error {
	primaryID, err := pathID(c)
	if err != nil {
		return err
	}
	var req mergeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "bad payload")
	}
	merged, err := a.Resolver.Merge(c.Context(), primaryID, req.DuplicateIDs)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(merged)
}

type selectAgentRequest struct {
	Channel   string    `json:"channel"`
	ContactID uuid.UUID `json:"contactId"`
	Intent    string    `json:"intent"`
	Campaign  string    `json:"campaign"`
}

func (a *api) selectAgent(c *fiber.Ctx) error {
	var req selectAgentRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "bad payload")
	}
	agent, err := a.Router.FindBestAvailableAgent(c.Context(), orgID(c), router.Criteria{
		Channel:   req.Channel,
		ContactID: req.ContactID,
		Intent:    req.Intent,
		Campaign:  req.Campaign,
	})
	if err != nil {
		return fail(c, err)
	}
	if agent == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "no active agents"})
	}
	return c.JSON(agent)
}

type assignRequest struct {
	AgentID   uuid.UUID `json:"agentId"`
	ContactID uuid.UUID `json:"contactId"`
}

func (a *api) assignAgent(c *fiber.Ctx) error {
	conversationID, err := pathID(c)
	if err != nil {
		return err
	}
	var req assignRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "bad payload")
	}
	assignment, err := a.Router.AssignToConversation(c.Context(), conversationID, req.AgentID, req.ContactID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(assignment)
}

type unassignRequest struct {
	Reason string `json:"reason"`
}

func (a *api) unassign(c *fiber.Ctx) error {
	assignmentID, err := pathID(c)
	if err != nil {
		return err
	}
	var req unassignRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "bad payload")
	}
	assignment, err := a.Router.Unassign(c.Context(), assignmentID, req.Reason)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(assignment)
}

type messageRequest struct {
	Content  string `json:"content"`
	Intent   string `json:"intent"`
	Campaign string `json:"campaign"`
}

func (a *api) processMessage(c *fiber.Ctx) error {
	conversationID, err := pathID(c)
	if err != nil {
		return err
	}
	var req messageRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "bad payload")
	}
	out, err := a.Pipeline.ProcessMessage(c.Context(), pipeline.Input{
		ConversationID: conversationID,
		Content:        req.Content,
		Intent:         req.Intent,
		Campaign:       req.Campaign,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}

func (a *api) submitForm(c *fiber.Ctx) error {
	formID, err := pathID(c)
	if err != nil {
		return err
	}
	var data map[string]string
	if err := c.BodyParser(&data); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "bad payload")
	}
	out, err := a.Forms.Submit(c.Context(), formID, data)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

func (a *api) searchProducts(c *fiber.Ctx) error {
	query := c.Query("q")
	if query == "" {
		return fiber.NewError(fiber.StatusBadRequest, "missing q")
	}
	hits, err := a.Catalog.Search(c.Context(), orgID(c), query)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"products": hits})
}
