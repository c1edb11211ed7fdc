package contextbuilder_test

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/clariohq/clario/core/contextbuilder"
	"github.com/clariohq/clario/core/types"
	"github.com/clariohq/clario/db"
	models "github.com/clariohq/clario/dbmodels"
)

var _ = Describe("Builder", func() {
	var (
		store   *db.MemoryStore
		builder *contextbuilder.Builder
		ctx     context.Context
		orgID   uuid.UUID
		contact *models.Contact
		conv    *models.Conversation
	)

	BeforeEach(func() {
		store = db.NewMemoryStore()
		builder = contextbuilder.NewBuilder(store)
		ctx = context.Background()
		orgID = uuid.New()

		contact = &models.Contact{
			OrganizationID: orgID,
			FirstName:      "Ana",
			LastName:       "Garcia",
			Email:          "ana@x.com",
			HeatScore:      72,
		}
		contact.SetTagList([]string{"vip"})
		Expect(store.CreateContact(ctx, contact)).To(Succeed())

		conv = &models.Conversation{OrganizationID: orgID, ContactID: contact.ID, Channel: "web"}
		Expect(store.CreateConversation(ctx, conv)).To(Succeed())
	})

	say := func(content string, at time.Time) {
		Expect(store.AppendMessage(ctx, &models.ConversationMessage{
			ConversationID: conv.ID,
			Direction:      models.DirectionInbound,
			Role:           "user",
			Content:        content,
			CreatedAt:      at,
		})).To(Succeed())
	}

	It("fails with not-found for an unknown contact", func() {
		_, err := builder.Build(ctx, uuid.New(), conv.ID)
		Expect(err).To(MatchError(types.ErrNotFound))
	})

	It("aggregates profile, agreements and notes", func() {
		store.AddAgreement(models.Agreement{
			OrganizationID: orgID, ContactID: contact.ID,
			Title: "Annual plan", Status: "active", Value: 120000,
		})
		store.AddAgreement(models.Agreement{
			OrganizationID: orgID, ContactID: contact.ID,
			Title: "Old pilot", Status: "expired", Value: 1000,
		})
		Expect(store.CreateNote(ctx, &models.ContactNote{
			ContactID: contact.ID, Content: "prefers email",
		})).To(Succeed())

		out, err := builder.Build(ctx, contact.ID, conv.ID)
		Expect(err).ToNot(HaveOccurred())
		Expect(out.Profile.FirstName).To(Equal("Ana"))
		Expect(out.Profile.Tags).To(ConsistOf("vip"))
		Expect(out.Agreements).To(HaveLen(1))
		Expect(out.Agreements[0].Title).To(Equal("Annual plan"))
		Expect(out.Notes).To(HaveLen(1))
	})

	It("caps notes at ten, newest first", func() {
		base := time.Now().Add(-time.Hour)
		for i := 0; i < 12; i++ {
			Expect(store.CreateNote(ctx, &models.ContactNote{
				ContactID: contact.ID,
				Content:   fmt.Sprintf("note %d", i),
				CreatedAt: base.Add(time.Duration(i) * time.Minute),
			})).To(Succeed())
		}

		out, err := builder.Build(ctx, contact.ID, conv.ID)
		Expect(err).ToNot(HaveOccurred())
		Expect(out.Notes).To(HaveLen(10))
		Expect(out.Notes[0].Content).To(Equal("note 11"))
	})

	Describe("conversation summary", func() {
		It("summarizes an empty conversation as neutral", func() {
			out, err := builder.Build(ctx, contact.ID, conv.ID)
			Expect(err).ToNot(HaveOccurred())
			Expect(out.Conversation.MessageCount).To(BeZero())
			Expect(out.Conversation.Sentiment).To(Equal("neutral"))
			Expect(out.Conversation.Topics).To(BeEmpty())
		})

		It("collects up to five distinct topics", func() {
			base := time.Now().Add(-time.Hour)
			say("what is the price and do you offer a discount?", base)
			say("also need the invoice and payment details", base.Add(time.Minute))
			say("is there stock? any warranty? can we schedule a demo?", base.Add(2*time.Minute))

			out, err := builder.Build(ctx, contact.ID, conv.ID)
			Expect(err).ToNot(HaveOccurred())
			Expect(out.Conversation.Topics).To(HaveLen(5))
			Expect(out.Conversation.Topics).To(ContainElements("price", "discount"))
		})

		It("classifies a thankful thread as positive", func() {
			base := time.Now().Add(-time.Hour)
			say("thanks, this is great", base)
			say("perfect, gracias", base.Add(time.Minute))

			out, err := builder.Build(ctx, contact.ID, conv.ID)
			Expect(err).ToNot(HaveOccurred())
			Expect(out.Conversation.Sentiment).To(Equal("positive"))
		})

		It("classifies a complaint thread as negative", func() {
			base := time.Now().Add(-time.Hour)
			say("this is terrible, I want a refund", base)
			say("horrible support, cancelar todo", base.Add(time.Minute))

			out, err := builder.Build(ctx, contact.ID, conv.ID)
			Expect(err).ToNot(HaveOccurred())
			Expect(out.Conversation.Sentiment).To(Equal("negative"))
		})

		It("stamps first and last message times", func() {
			first := time.Now().Add(-time.Hour).Truncate(time.Second)
			last := first.Add(30 * time.Minute)
			say("hola", first)
			say("sigo aqui", last)

			out, err := builder.Build(ctx, contact.ID, conv.ID)
			Expect(err).ToNot(HaveOccurred())
			Expect(out.Conversation.FirstMessageAt.Equal(first)).To(BeTrue())
			Expect(out.Conversation.LastMessageAt.Equal(last)).To(BeTrue())
		})
	})

	Describe("BuildMinimal", func() {
		It("returns identity and heat only", func() {
			out, err := builder.BuildMinimal(ctx, contact.ID)
			Expect(err).ToNot(HaveOccurred())
			Expect(out.Name).To(Equal("Ana Garcia"))
			Expect(out.HeatScore).To(Equal(72))
			Expect(out.Tags).To(ConsistOf("vip"))
		})

		It("fails with not-found for an unknown contact", func() {
			_, err := builder.BuildMinimal(ctx, uuid.New())
			Expect(err).To(MatchError(types.ErrNotFound))
		})
	})
})
