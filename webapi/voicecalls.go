package webapi

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/mudler/xlog"

	"github.com/clariohq/clario/db"
	models "github.com/clariohq/clario/dbmodels"
)

type voiceCallRequest struct {
	ContactID      uuid.UUID  `json:"contactId"`
	ConversationID *uuid.UUID `json:"conversationId"`
	Provider       string     `json:"provider"`
	ExternalID     string     `json:"externalId"`
	Status         string     `json:"status"`
	Duration       int        `json:"duration"`
}

// logVoiceCall records a completed provider call against a contact. Calls
// count as interactions, so the heat score refreshes afterwards.
func (a *api) logVoiceCall(c *fiber.Ctx) error {
	var req voiceCallRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "bad payload")
	}
	if req.ContactID == uuid.Nil {
		return fiber.NewError(fiber.StatusBadRequest, "missing contactId")
	}

	call := &models.VoiceCall{
		OrganizationID: orgID(c),
		ContactID:      req.ContactID,
		ConversationID: req.ConversationID,
		Provider:       req.Provider,
		ExternalID:     req.ExternalID,
		Status:         req.Status,
		Duration:       req.Duration,
	}
	err := a.Store.Transaction(c.Context(), func(tx db.Store) error {
		contact, err := tx.GetContact(c.Context(), req.ContactID)
		if err != nil {
			return err
		}
		now := time.Now()
		contact.InteractionCount++
		contact.LastInteractionAt = &now
		if err := tx.SaveContact(c.Context(), contact); err != nil {
			return err
		}
		return tx.CreateVoiceCall(c.Context(), call)
	})
	if err != nil {
		return fail(c, err)
	}

	if _, err := a.Scorer.Recalculate(c.Context(), req.ContactID); err != nil {
		xlog.Warn("Heat recalculation after voice call", "contact", req.ContactID, "error", err)
	}
	return c.Status(fiber.StatusCreated).JSON(call)
}

func (a *api) contactVoiceCalls(c *fiber.Ctx) error {
	contactID, err := pathID(c)
	if err != nil {
		return err
	}
	calls, err := a.Store.ListContactVoiceCalls(c.Context(), contactID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"calls": calls})
}
