package decision_test

import (
	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/datatypes"

	"github.com/clariohq/clario/core/decision"
	"github.com/clariohq/clario/core/types"
	models "github.com/clariohq/clario/dbmodels"
)

var _ = Describe("Decision engine", func() {
	var (
		agent  *models.Agent
		cctx   *types.ContactContext
		convID uuid.UUID
	)

	allowAll := func() datatypes.JSON {
		return datatypes.JSON(`["send-link","send-document","send-quote","schedule-meeting","escalate-to-human","create-note","update-tags","search-product"]`)
	}

	BeforeEach(func() {
		agent = &models.Agent{
			ID:             uuid.New(),
			Type:           models.AgentSales,
			AllowedActions: allowAll(),
		}
		cctx = &types.ContactContext{
			Profile: types.ContactProfile{
				ID:        uuid.New(),
				FirstName: "Ana",
				Tags:      []string{},
			},
		}
		convID = uuid.New()
	})

	typesOf := func(actions []types.Action) []string {
		out := make([]string, 0, len(actions))
		for _, a := range actions {
			out = append(out, a.Type)
		}
		return out
	}

	It("emits a send-link action per URL in the response", func() {
		text := "Sure, here is the link: https://example.com/promo"
		actions := decision.DecideActions(text, agent, cctx, convID)

		Expect(typesOf(actions)).To(ContainElement(types.ActionSendLink))
		Expect(typesOf(actions)).ToNot(ContainElement(types.ActionEscalateToHuman))
		for _, a := range actions {
			if a.Type == types.ActionSendLink {
				Expect(a.Params["url"]).To(Equal("https://example.com/promo"))
				Expect(a.Params["conversationId"]).To(Equal(convID.String()))
			}
		}
	})

	It("returns nothing for plain small talk", func() {
		actions := decision.DecideActions("Hola Ana, how was your weekend?", agent, cctx, convID)
		Expect(actions).To(BeEmpty())
	})

	It("skips actions the agent does not allow", func() {
		agent.AllowedActions = datatypes.JSON(`["send-quote"]`)
		text := "Here is the link: https://example.com/promo with the price"
		actions := decision.DecideActions(text, agent, cctx, convID)

		Expect(typesOf(actions)).To(ConsistOf(types.ActionSendQuote))
	})

	It("escalates on an explicit handoff phrase with top priority", func() {
		text := "Let me transfer you to a human agent, and here is the quote https://example.com/q"
		actions := decision.DecideActions(text, agent, cctx, convID)

		Expect(actions).ToNot(BeEmpty())
		Expect(actions[0].Type).To(Equal(types.ActionEscalateToHuman))
		Expect(actions[0].Priority).To(Equal(10))
		Expect(actions[0].Params["reason"]).To(Equal("explicit escalation phrase"))
	})

	It("escalates for high-value vip contacts without any phrase", func() {
		cctx.Profile.Tags = []string{"VIP"}
		cctx.Profile.LifetimeValue = 250000

		actions := decision.DecideActions("We value your business", agent, cctx, convID)
		Expect(typesOf(actions)).To(ContainElement(types.ActionEscalateToHuman))
		Expect(actions[0].Params["reason"]).To(Equal("high-value vip contact"))
	})

	It("does not escalate for vip contacts below the value floor", func() {
		cctx.Profile.Tags = []string{"vip"}
		cctx.Profile.LifetimeValue = 5000

		actions := decision.DecideActions("We value your business", agent, cctx, convID)
		Expect(typesOf(actions)).ToNot(ContainElement(types.ActionEscalateToHuman))
	})

	It("orders mixed actions by descending priority", func() {
		text := "I sent the quote and the brochure document, plus this link https://example.com/a"
		actions := decision.DecideActions(text, agent, cctx, convID)

		Expect(typesOf(actions)).To(Equal([]string{
			types.ActionSendQuote,
			types.ActionSendDocument,
			types.ActionSendLink,
			types.ActionUpdateTags,
		}))
	})

	It("tags quote-requested once and not again", func() {
		actions := decision.DecideActions("I will prepare a quote for you", agent, cctx, convID)
		var tagged []types.Action
		for _, a := range actions {
			if a.Type == types.ActionUpdateTags {
				tagged = append(tagged, a)
			}
		}
		Expect(tagged).To(HaveLen(1))
		Expect(tagged[0].Params["tags"]).To(ConsistOf("quote-requested"))

		cctx.Profile.Tags = []string{"quote-requested"}
		actions = decision.DecideActions("I will prepare a quote for you", agent, cctx, convID)
		Expect(typesOf(actions)).ToNot(ContainElement(types.ActionUpdateTags))
	})

	It("creates a note when the response flags something important", func() {
		actions := decision.DecideActions("Important: Ana prefers morning calls", agent, cctx, convID)
		Expect(typesOf(actions)).To(ContainElement(types.ActionCreateNote))
		for _, a := range actions {
			if a.Type == types.ActionCreateNote {
				Expect(a.Params["contactId"]).To(Equal(cctx.Profile.ID.String()))
			}
		}
	})

	It("searches products with the mentioned query", func() {
		actions := decision.DecideActions("We have a product you may like: you seem interested in the Orion X2 laptop. Want specs?", agent, cctx, convID)

		var search *types.Action
		for i := range actions {
			if actions[i].Type == types.ActionSearchProduct {
				search = &actions[i]
			}
		}
		Expect(search).ToNot(BeNil())
		Expect(search.Params["query"]).To(Equal("the Orion X2 laptop"))
	})

	It("schedules a meeting on appointment language", func() {
		actions := decision.DecideActions("Podemos agendar una reunion el martes", agent, cctx, convID)
		Expect(typesOf(actions)).To(ContainElement(types.ActionScheduleMeeting))
	})
})
