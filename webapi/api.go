// Package webapi exposes the engagement core over HTTP. Every route is
// scoped to the organization the presented API key belongs to.
package webapi

import (
	"errors"

	"github.com/dave-gray101/v2keyauth"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/clariohq/clario/core/contextbuilder"
	"github.com/clariohq/clario/core/heat"
	"github.com/clariohq/clario/core/identity"
	"github.com/clariohq/clario/core/pipeline"
	"github.com/clariohq/clario/core/router"
	"github.com/clariohq/clario/core/types"
	"github.com/clariohq/clario/db"
	"github.com/clariohq/clario/services/forms"
	"github.com/clariohq/clario/services/products"
)

const orgLocal = "organizationID"

// Deps is everything the HTTP layer delegates to.
type Deps struct {
	Store    db.Store
	Resolver *identity.Resolver
	Scorer   *heat.Scorer
	Router   *router.Router
	Builder  *contextbuilder.Builder
	Pipeline *pipeline.Pipeline
	Forms    *forms.Service
	Catalog  *products.Catalog

	// Keys maps an API key to the organization it authenticates.
	Keys map[string]uuid.UUID
}

type api struct {
	Deps
}

// New builds the fiber app with all routes registered.
func New(d Deps) (*fiber.App, error) {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	a := &api{Deps: d}

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	lookup, err := v2keyauth.MultipleKeySourceLookup([]string{"header:Authorization", "header:x-api-key"}, "Bearer")
	if err != nil {
		return nil, err
	}

	v1 := app.Group("/api/v1")
	v1.Use(v2keyauth.New(v2keyauth.Config{
		CustomKeyLookup: lookup,
		Validator:       a.validateKey,
	}))

	v1.Post("/contacts/resolve", a.resolveContact)
	v1.Get("/contacts/:id/context", a.contactContext)
	v1.Get("/contacts/:id/context/minimal", a.contactMinimalContext)
	v1.Post("/contacts/:id/heat/recalculate", a.recalculateHeat)
	v1.Post("/contacts/duplicates", a.detectDuplicates)
	v1.Post("/contacts/:id/merge", a.mergeContacts)

	v1.Post("/agents/select", a.selectAgent)
	v1.Post("/conversations/:id/assign", a.assignAgent)
	v1.Post("/assignments/:id/unassign", a.unassign)
	v1.Post("/conversations/:id/messages", a.processMessage)

	v1.Post("/forms/:id/submissions", a.submitForm)
	v1.Get("/products/search", a.searchProducts)

	v1.Post("/voice-calls", a.logVoiceCall)
	v1.Get("/contacts/:id/voice-calls", a.contactVoiceCalls)

	return app, nil
}

func (a *api) validateKey(c *fiber.Ctx, key string) (bool, error) {
	orgID, ok := a.Keys[key]
	if !ok {
		return false, errors.New("unknown api key")
	}
	c.Locals(orgLocal, orgID)
	return true, nil
}

func orgID(c *fiber.Ctx) uuid.UUID {
	id, _ := c.Locals(orgLocal).(uuid.UUID)
	return id
}

func pathID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "bad id")
	}
	return id, nil
}

// fail maps the core error taxonomy onto HTTP statuses.
func fail(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, types.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, types.ErrValidation):
		status = fiber.StatusBadRequest
	case errors.Is(err, types.ErrConflict):
		status = fiber.StatusConflict
	case errors.Is(err, types.ErrCapability):
		status = fiber.StatusBadGateway
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
