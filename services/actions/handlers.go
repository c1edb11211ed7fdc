package actions

import (
	"github.com/clariohq/clario/core/types"
	"github.com/clariohq/clario/db"
	"github.com/clariohq/clario/pkg/channels"
	"github.com/clariohq/clario/pkg/events"
	"github.com/clariohq/clario/pkg/llm"
	"github.com/clariohq/clario/services/products"
)

// Deps carries everything the built-in handlers touch. Nil members disable
// the dependent behavior rather than failing registration.
type Deps struct {
	Store    db.Store
	Channels *channels.Registry
	Catalog  *products.Catalog
	Events   events.Publisher
	LLM      llm.Client
	Model    string
	QuoteDir string
	// Documents maps a document name to a shareable URL. The empty name is
	// the default document.
	Documents map[string]string
}

type service struct {
	Deps
}

// DefaultExecutor registers the eight built-in handlers.
func DefaultExecutor(d Deps) *Executor {
	if d.Events == nil {
		d.Events = events.NopPublisher{}
	}
	if d.Model == "" {
		d.Model = llm.DefaultModel
	}
	s := &service{Deps: d}
	e := NewExecutor()
	e.Register(types.ActionSendLink, s.sendLink)
	e.Register(types.ActionSendDocument, s.sendDocument)
	e.Register(types.ActionSendQuote, s.sendQuote)
	e.Register(types.ActionScheduleMeeting, s.scheduleMeeting)
	e.Register(types.ActionEscalateToHuman, s.escalateToHuman)
	e.Register(types.ActionCreateNote, s.createNote)
	e.Register(types.ActionUpdateTags, s.updateTags)
	e.Register(types.ActionSearchProduct, s.searchProduct)
	return e
}
