// Package decision maps a generated response plus contact context to a
// prioritized list of side-effecting actions. Pure classification, no I/O.
package decision

import (
	"sort"
	"strings"

	"github.com/google/uuid"
	"mvdan.cc/xurls/v2"

	"github.com/clariohq/clario/core/types"
	models "github.com/clariohq/clario/dbmodels"
)

// Action priorities. Escalation always outranks everything else.
const (
	priorityEscalate = 10
	priorityQuote    = 9
	priorityMeeting  = 8
	priorityDocument = 7
	prioritySearch   = 6
	priorityLink     = 5
	priorityNote     = 3
	priorityTags     = 2
)

// vipValueFloor triggers escalation for tagged VIPs above this lifetime value.
const vipValueFloor = 100000

var urlRegex = xurls.Strict()

// Bilingual phrase lists keyed by intent.
var intentPhrases = map[string][]string{
	"link":        {"here is the link", "aqui esta el enlace", "check this link", "te comparto el enlace", "visit our"},
	"document":    {"document", "documento", "brochure", "folleto", "catalog", "catalogo", "datasheet", "ficha tecnica"},
	"file":        {"attached file", "archivo adjunto", "the file", "el archivo"},
	"quote":       {"quote", "quotation", "cotizacion", "presupuesto"},
	"price":       {"price", "precio", "pricing", "tarifa"},
	"cost":        {"cost", "costo", "cuesta"},
	"meeting":     {"meeting", "reunion", "let's meet", "agendar una reunion"},
	"appointment": {"appointment", "cita"},
	"call":        {"schedule a call", "agendar una llamada", "give you a call"},
	"escalate":    {"transfer you to", "human agent", "agente humano", "un asesor", "a colleague will", "escalate"},
	"product":     {"product", "producto", "our catalog", "nuestro catalogo"},
	"stock":       {"in stock", "en existencia", "disponible", "availability"},
	"important":   {"important", "importante", "please note", "toma en cuenta", "keep in mind"},
}

// Detect returns the set of intents whose phrase lists match the response
// text by case-insensitive substring.
func Detect(responseText string) map[string]bool {
	text := strings.ToLower(responseText)
	intents := map[string]bool{}
	for intent, phrases := range intentPhrases {
		for _, phrase := range phrases {
			if strings.Contains(text, phrase) {
				intents[intent] = true
				break
			}
		}
	}
	return intents
}

// DecideActions classifies the generated response into zero or more actions,
// each gated by the agent's allowed-action set. Output sorts descending by
// priority; equal priorities keep emission order.
func DecideActions(responseText string, agent *models.Agent, contactCtx *types.ContactContext, conversationID uuid.UUID) []types.Action {
	intents := Detect(responseText)
	lower := strings.ToLower(responseText)
	var actions []types.Action

	if agent.AllowsAction(types.ActionSendLink) && (intents["link"] || strings.Contains(lower, "http")) {
		for _, url := range urlRegex.FindAllString(responseText, -1) {
			actions = append(actions, types.Action{
				Type:     types.ActionSendLink,
				Priority: priorityLink,
				Params: types.ActionParams{
					"url":            url,
					"conversationId": conversationID.String(),
				},
			})
		}
	}

	if agent.AllowsAction(types.ActionSendDocument) && (intents["document"] || intents["file"]) {
		actions = append(actions, types.Action{
			Type:     types.ActionSendDocument,
			Priority: priorityDocument,
			Params: types.ActionParams{
				"contactId":      contactCtx.Profile.ID.String(),
				"conversationId": conversationID.String(),
			},
		})
	}

	if agent.AllowsAction(types.ActionSendQuote) && (intents["quote"] || intents["price"] || intents["cost"]) {
		actions = append(actions, types.Action{
			Type:     types.ActionSendQuote,
			Priority: priorityQuote,
			Params: types.ActionParams{
				"contactId":      contactCtx.Profile.ID.String(),
				"conversationId": conversationID.String(),
			},
		})
	}

	if agent.AllowsAction(types.ActionScheduleMeeting) && (intents["meeting"] || intents["appointment"] || intents["call"]) {
		actions = append(actions, types.Action{
			Type:     types.ActionScheduleMeeting,
			Priority: priorityMeeting,
			Params: types.ActionParams{
				"contactId":      contactCtx.Profile.ID.String(),
				"conversationId": conversationID.String(),
			},
		})
	}

	if agent.AllowsAction(types.ActionEscalateToHuman) && shouldEscalate(intents, contactCtx) {
		actions = append(actions, types.Action{
			Type:     types.ActionEscalateToHuman,
			Priority: priorityEscalate,
			Params: types.ActionParams{
				"conversationId": conversationID.String(),
				"reason":         escalateReason(intents),
			},
		})
	}

	if agent.AllowsAction(types.ActionCreateNote) && intents["important"] {
		actions = append(actions, types.Action{
			Type:     types.ActionCreateNote,
			Priority: priorityNote,
			Params: types.ActionParams{
				"contactId": contactCtx.Profile.ID.String(),
				"content":   responseText,
			},
		})
	}

	if agent.AllowsAction(types.ActionUpdateTags) {
		if tags := newTags(lower, contactCtx); len(tags) > 0 {
			actions = append(actions, types.Action{
				Type:     types.ActionUpdateTags,
				Priority: priorityTags,
				Params: types.ActionParams{
					"contactId": contactCtx.Profile.ID.String(),
					"tags":      tags,
				},
			})
		}
	}

	if agent.AllowsAction(types.ActionSearchProduct) && (intents["product"] || intents["stock"]) {
		if query := productQuery(responseText); query != "" {
			actions = append(actions, types.Action{
				Type:     types.ActionSearchProduct,
				Priority: prioritySearch,
				Params: types.ActionParams{
					"query":          query,
					"conversationId": conversationID.String(),
				},
			})
		}
	}

	sort.SliceStable(actions, func(i, j int) bool {
		return actions[i].Priority > actions[j].Priority
	})
	return actions
}

func shouldEscalate(intents map[string]bool, contactCtx *types.ContactContext) bool {
	if intents["escalate"] {
		return true
	}
	for _, tag := range contactCtx.Profile.Tags {
		if strings.EqualFold(tag, "vip") && contactCtx.Profile.LifetimeValue > vipValueFloor {
			return true
		}
	}
	return false
}

func escalateReason(intents map[string]bool) string {
	if intents["escalate"] {
		return "explicit escalation phrase"
	}
	return "high-value vip contact"
}

// newTags derives heuristic tags not already on the contact.
func newTags(lower string, contactCtx *types.ContactContext) []string {
	existing := map[string]bool{}
	for _, t := range contactCtx.Profile.Tags {
		existing[strings.ToLower(t)] = true
	}

	var tags []string
	if (strings.Contains(lower, "interested") || strings.Contains(lower, "me interesa")) && !existing["interested"] {
		tags = append(tags, "interested")
	}
	if (strings.Contains(lower, "quote") || strings.Contains(lower, "cotizacion")) && !existing["quote-requested"] {
		tags = append(tags, "quote-requested")
	}
	return tags
}

// productQuery pulls the text after a product/stock mention as the search
// query, trimmed to one line.
func productQuery(responseText string) string {
	lower := strings.ToLower(responseText)
	for _, marker := range []string{"looking for", "buscas", "interested in", "producto", "product"} {
		idx := strings.Index(lower, marker)
		if idx < 0 {
			continue
		}
		rest := responseText[idx+len(marker):]
		if nl := strings.IndexAny(rest, "\n.?!"); nl >= 0 {
			rest = rest[:nl]
		}
		rest = strings.Trim(rest, " :,-")
		if rest != "" {
			return rest
		}
	}
	return ""
}
