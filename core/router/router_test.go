package router_test

import (
	"context"
	"time"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/clariohq/clario/core/router"
	"github.com/clariohq/clario/core/types"
	"github.com/clariohq/clario/db"
	models "github.com/clariohq/clario/dbmodels"
)

func jsonList(items ...string) []byte {
	out := `["` + items[0] + `"`
	for _, s := range items[1:] {
		out += `,"` + s + `"`
	}
	return []byte(out + `]`)
}

var _ = Describe("Router", func() {
	var (
		store *db.MemoryStore
		rt    *router.Router
		ctx   context.Context
		orgID uuid.UUID
	)

	BeforeEach(func() {
		store = db.NewMemoryStore()
		rt = router.NewRouter(store)
		ctx = context.Background()
		orgID = uuid.New()
	})

	seedAgent := func(name string, agentType models.AgentType, channels []byte, created time.Time) uuid.UUID {
		id := uuid.New()
		store.PutAgent(models.Agent{
			ID:             id,
			OrganizationID: orgID,
			Name:           name,
			Type:           agentType,
			Channels:       channels,
			Active:         true,
			CreatedAt:      created,
		})
		return id
	}

	Describe("SelectBestAgent", func() {
		It("returns nil when no active agents exist", func() {
			agent, err := rt.SelectBestAgent(ctx, orgID, router.Criteria{Channel: "web"})
			Expect(err).ToNot(HaveOccurred())
			Expect(agent).To(BeNil())
		})

		It("prefers the agent eligible on the channel", func() {
			base := time.Now().Add(-time.Hour)
			seedAgent("sms-only", models.AgentSales, jsonList("sms"), base)
			wanted := seedAgent("web", models.AgentSales, jsonList("web"), base.Add(time.Minute))
			seedAgent("voice-only", models.AgentSales, jsonList("voice-call"), base.Add(2*time.Minute))

			agent, err := rt.SelectBestAgent(ctx, orgID, router.Criteria{Channel: "web", ContactID: uuid.New()})
			Expect(err).ToNot(HaveOccurred())
			Expect(agent).ToNot(BeNil())
			Expect(agent.ID).To(Equal(wanted))
		})

		It("matches qualifier agents to new leads", func() {
			base := time.Now().Add(-time.Hour)
			seedAgent("sales", models.AgentSales, jsonList("web"), base)
			qualifier := seedAgent("qualifier", models.AgentQualifier, jsonList("web"), base.Add(time.Minute))

			agent, err := rt.SelectBestAgent(ctx, orgID, router.Criteria{Channel: "web"})
			Expect(err).ToNot(HaveOccurred())
			Expect(agent.ID).To(Equal(qualifier))
		})

		It("matches sales agents to purchase intent", func() {
			base := time.Now().Add(-time.Hour)
			sales := seedAgent("sales", models.AgentSales, jsonList("web"), base)
			seedAgent("support", models.AgentSupport, jsonList("web"), base.Add(time.Minute))

			agent, err := rt.SelectBestAgent(ctx, orgID, router.Criteria{
				Channel: "web", ContactID: uuid.New(), Intent: "purchase",
			})
			Expect(err).ToNot(HaveOccurred())
			Expect(agent.ID).To(Equal(sales))
		})

		It("breaks ties by stable input order", func() {
			base := time.Now().Add(-time.Hour)
			first := seedAgent("a", models.AgentSales, jsonList("web"), base)
			seedAgent("b", models.AgentSales, jsonList("web"), base.Add(time.Minute))

			agent, err := rt.SelectBestAgent(ctx, orgID, router.Criteria{Channel: "web", ContactID: uuid.New()})
			Expect(err).ToNot(HaveOccurred())
			Expect(agent.ID).To(Equal(first))
		})

		It("favors voice-capable agents on voice calls", func() {
			base := time.Now().Add(-time.Hour)
			seedAgent("mute", models.AgentSales, jsonList("voice-call"), base)
			voiced := uuid.New()
			store.PutAgent(models.Agent{
				ID: voiced, OrganizationID: orgID, Name: "voiced", Type: models.AgentSales,
				Channels: jsonList("voice-call"), VoiceProvider: "vapi",
				Active: true, CreatedAt: base.Add(time.Minute),
			})

			agent, err := rt.SelectBestAgent(ctx, orgID, router.Criteria{Channel: "voice-call", ContactID: uuid.New()})
			Expect(err).ToNot(HaveOccurred())
			Expect(agent.ID).To(Equal(voiced))
		})
	})

	Describe("assignment lifecycle", func() {
		var convID, contactID, agentA, agentB uuid.UUID

		BeforeEach(func() {
			convID = uuid.New()
			contactID = uuid.New()
			base := time.Now().Add(-time.Hour)
			agentA = seedAgent("a", models.AgentSales, jsonList("web"), base)
			agentB = seedAgent("b", models.AgentSales, jsonList("web"), base.Add(time.Minute))
		})

		It("opens a fresh assignment", func() {
			a, err := rt.AssignToConversation(ctx, convID, agentA, contactID)
			Expect(err).ToNot(HaveOccurred())
			Expect(a.Open()).To(BeTrue())
			Expect(a.MessagesHandled).To(BeZero())

			current, err := rt.CurrentAssignment(ctx, convID)
			Expect(err).ToNot(HaveOccurred())
			Expect(current.ID).To(Equal(a.ID))
		})

		It("closes the previous assignment on reassignment", func() {
			first, err := rt.AssignToConversation(ctx, convID, agentA, contactID)
			Expect(err).ToNot(HaveOccurred())
			second, err := rt.AssignToConversation(ctx, convID, agentB, contactID)
			Expect(err).ToNot(HaveOccurred())

			closed, err := store.GetAssignment(ctx, first.ID)
			Expect(err).ToNot(HaveOccurred())
			Expect(closed.Open()).To(BeFalse())
			Expect(closed.UnassignReason).To(Equal("Reassigned to different agent"))

			current, err := rt.CurrentAssignment(ctx, convID)
			Expect(err).ToNot(HaveOccurred())
			Expect(current.ID).To(Equal(second.ID))
		})

		It("fails unassigning a closed assignment with not-found", func() {
			a, err := rt.AssignToConversation(ctx, convID, agentA, contactID)
			Expect(err).ToNot(HaveOccurred())
			_, err = rt.Unassign(ctx, a.ID, "done")
			Expect(err).ToNot(HaveOccurred())
			_, err = rt.Unassign(ctx, a.ID, "again")
			Expect(err).To(MatchError(types.ErrNotFound))
		})
	})

	Describe("ShouldEscalate", func() {
		agentWithRules := func(rules string) *models.Agent {
			return &models.Agent{EscalationRules: []byte(rules)}
		}

		It("escalates at the message-count threshold", func() {
			a := agentWithRules(`{"maxMessages": 5}`)
			Expect(router.ShouldEscalate(a, router.EscalationSignals{MessageCount: 5})).To(BeTrue())
			Expect(router.ShouldEscalate(a, router.EscalationSignals{MessageCount: 4})).To(BeFalse())
		})

		It("escalates on negative sentiment when configured", func() {
			a := agentWithRules(`{"escalateOnNegativeSentiment": true}`)
			Expect(router.ShouldEscalate(a, router.EscalationSignals{Sentiment: "negative"})).To(BeTrue())
			Expect(router.ShouldEscalate(a, router.EscalationSignals{Sentiment: "neutral"})).To(BeFalse())
		})

		It("escalates on keyword containment, case-insensitively", func() {
			a := agentWithRules(`{"keywords": ["refund"]}`)
			Expect(router.ShouldEscalate(a, router.EscalationSignals{
				Keywords: []string{"I want a REFUND now"},
			})).To(BeTrue())
		})

		It("treats malformed rules as never escalate", func() {
			a := agentWithRules(`{notjson`)
			Expect(router.ShouldEscalate(a, router.EscalationSignals{
				MessageCount: 100, Sentiment: "negative", Keywords: []string{"refund"},
			})).To(BeFalse())
		})
	})

	Describe("FindBestAvailableAgent", func() {
		It("rebalances to the least-loaded agent above the threshold", func() {
			base := time.Now().Add(-time.Hour)
			busy := seedAgent("busy", models.AgentSales, jsonList("web"), base)
			idle := seedAgent("idle", models.AgentSales, jsonList("sms"), base.Add(time.Minute))

			for i := 0; i < 11; i++ {
				Expect(store.CreateAssignment(ctx, &models.AgentAssignment{
					ConversationID: uuid.New(), ContactID: uuid.New(), AgentID: busy,
				})).To(Succeed())
			}

			agent, err := rt.FindBestAvailableAgent(ctx, orgID, router.Criteria{Channel: "web", ContactID: uuid.New()})
			Expect(err).ToNot(HaveOccurred())
			Expect(agent.ID).To(Equal(idle))
		})

		It("keeps the best agent at or under the threshold", func() {
			base := time.Now().Add(-time.Hour)
			busy := seedAgent("busy", models.AgentSales, jsonList("web"), base)
			seedAgent("idle", models.AgentSales, jsonList("sms"), base.Add(time.Minute))

			for i := 0; i < 10; i++ {
				Expect(store.CreateAssignment(ctx, &models.AgentAssignment{
					ConversationID: uuid.New(), ContactID: uuid.New(), AgentID: busy,
				})).To(Succeed())
			}

			agent, err := rt.FindBestAvailableAgent(ctx, orgID, router.Criteria{Channel: "web", ContactID: uuid.New()})
			Expect(err).ToNot(HaveOccurred())
			Expect(agent.ID).To(Equal(busy))
		})
	})
})
