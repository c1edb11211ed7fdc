package actions_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sashabaranov/go-openai"

	"github.com/clariohq/clario/core/types"
	"github.com/clariohq/clario/db"
	models "github.com/clariohq/clario/dbmodels"
	"github.com/clariohq/clario/pkg/channels"
	"github.com/clariohq/clario/pkg/llm"
	"github.com/clariohq/clario/services/actions"
	"github.com/clariohq/clario/services/products"
)

type recordingSender struct {
	name string
	sent []string
}

func (r *recordingSender) Name() string { return r.name }

func (r *recordingSender) Send(ctx context.Context, recipient, text string) error {
	r.sent = append(r.sent, text)
	return nil
}

func extractionResponse(arguments string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{
			Message: openai.ChatCompletionMessage{
				ToolCalls: []openai.ToolCall{{
					Function: openai.FunctionCall{Name: "json", Arguments: arguments},
				}},
			},
		}},
	}
}

var _ = Describe("Built-in handlers", func() {
	var (
		store    *db.MemoryStore
		exec     *actions.Executor
		sender   *recordingSender
		ctx      context.Context
		orgID    uuid.UUID
		contact  *models.Contact
		conv     *models.Conversation
		quoteDir string
	)

	BeforeEach(func() {
		store = db.NewMemoryStore()
		sender = &recordingSender{name: "telegram"}
		ctx = context.Background()
		orgID = uuid.New()
		quoteDir = GinkgoT().TempDir()

		exec = actions.DefaultExecutor(actions.Deps{
			Store:    store,
			Channels: channels.NewRegistry(sender),
			Catalog:  products.NewCatalog(store),
			QuoteDir: quoteDir,
			Documents: map[string]string{
				"": "https://example.com/brochure.pdf",
			},
		})

		contact = &models.Contact{OrganizationID: orgID, FirstName: "Ana", LastName: "Garcia"}
		Expect(store.CreateContact(ctx, contact)).To(Succeed())

		conv = &models.Conversation{
			OrganizationID:   orgID,
			ContactID:        contact.ID,
			Channel:          "telegram",
			ChannelRecipient: "12345",
		}
		Expect(store.CreateConversation(ctx, conv)).To(Succeed())
	})

	run := func(actionType string, params types.ActionParams) types.ExecutionResult {
		return exec.Run(ctx, types.Action{Type: actionType, Params: params})
	}

	Describe("send-link", func() {
		It("delivers the url over the conversation channel", func() {
			out := run(types.ActionSendLink, types.ActionParams{
				"url":            "https://example.com/promo",
				"conversationId": conv.ID.String(),
			})
			Expect(out.Success).To(BeTrue())
			Expect(sender.sent).To(ConsistOf("https://example.com/promo"))
		})

		It("succeeds without delivery when the channel has no sender", func() {
			web := &models.Conversation{OrganizationID: orgID, ContactID: contact.ID, Channel: "web"}
			Expect(store.CreateConversation(ctx, web)).To(Succeed())

			out := run(types.ActionSendLink, types.ActionParams{
				"url":            "https://example.com/promo",
				"conversationId": web.ID.String(),
			})
			Expect(out.Success).To(BeTrue())
			Expect(out.Result).To(ContainSubstring("included in response"))
			Expect(sender.sent).To(BeEmpty())
		})

		It("fails validation without a url", func() {
			out := run(types.ActionSendLink, types.ActionParams{"conversationId": conv.ID.String()})
			Expect(out.Success).To(BeFalse())
			Expect(out.Error).To(ContainSubstring("url"))
		})
	})

	Describe("send-document", func() {
		It("shares the default document", func() {
			out := run(types.ActionSendDocument, types.ActionParams{"conversationId": conv.ID.String()})
			Expect(out.Success).To(BeTrue())
			Expect(sender.sent).To(ConsistOf("https://example.com/brochure.pdf"))
		})

		It("fails for unknown document names", func() {
			out := run(types.ActionSendDocument, types.ActionParams{
				"conversationId": conv.ID.String(),
				"name":           "warranty",
			})
			Expect(out.Success).To(BeFalse())
		})
	})

	Describe("send-quote", func() {
		It("renders a pdf from active agreements", func() {
			store.AddAgreement(models.Agreement{
				OrganizationID: orgID, ContactID: contact.ID,
				Title: "Annual plan", Status: "active", Value: 120000,
			})

			out := run(types.ActionSendQuote, types.ActionParams{
				"contactId":      contact.ID.String(),
				"conversationId": conv.ID.String(),
			})
			Expect(out.Success).To(BeTrue())

			files, err := filepath.Glob(filepath.Join(quoteDir, "quote-*.pdf"))
			Expect(err).ToNot(HaveOccurred())
			Expect(files).To(HaveLen(1))
			info, err := os.Stat(files[0])
			Expect(err).ToNot(HaveOccurred())
			Expect(info.Size()).To(BeNumerically(">", 0))
		})
	})

	Describe("schedule-meeting", func() {
		It("files a follow-up note without a model configured", func() {
			out := run(types.ActionScheduleMeeting, types.ActionParams{
				"contactId":      contact.ID.String(),
				"conversationId": conv.ID.String(),
			})
			Expect(out.Success).To(BeTrue())

			notes, err := store.ListRecentNotes(ctx, contact.ID, 10)
			Expect(err).ToNot(HaveOccurred())
			Expect(notes).To(HaveLen(1))
			Expect(notes[0].Content).To(ContainSubstring("Meeting requested"))
		})

		It("extracts details with the default model when none is configured", func() {
			var usedModel string
			mock := &llm.MockClient{CreateChatCompletionFunc: func(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
				usedModel = req.Model
				return extractionResponse(`{"topic":"product demo","date":"2026-09-02","time":"10:00"}`), nil
			}}
			exec = actions.DefaultExecutor(actions.Deps{Store: store, LLM: mock})

			out := run(types.ActionScheduleMeeting, types.ActionParams{
				"contactId":      contact.ID.String(),
				"conversationId": conv.ID.String(),
			})
			Expect(out.Success).To(BeTrue())
			Expect(out.Result).To(ContainSubstring("product demo"))
			Expect(usedModel).To(Equal(llm.DefaultModel))
		})

		It("honors the configured extraction model", func() {
			var usedModel string
			mock := &llm.MockClient{CreateChatCompletionFunc: func(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
				usedModel = req.Model
				return extractionResponse(`{"topic":"renewal"}`), nil
			}}
			exec = actions.DefaultExecutor(actions.Deps{Store: store, LLM: mock, Model: "gpt-4o"})

			out := run(types.ActionScheduleMeeting, types.ActionParams{
				"contactId":      contact.ID.String(),
				"conversationId": conv.ID.String(),
			})
			Expect(out.Success).To(BeTrue())
			Expect(usedModel).To(Equal("gpt-4o"))
		})
	})

	Describe("escalate-to-human", func() {
		It("transfers the conversation and closes the assignment", func() {
			Expect(store.CreateAssignment(ctx, &models.AgentAssignment{
				ConversationID: conv.ID,
				ContactID:      contact.ID,
				AgentID:        uuid.New(),
			})).To(Succeed())

			out := run(types.ActionEscalateToHuman, types.ActionParams{
				"conversationId": conv.ID.String(),
				"reason":         "asked for a human",
			})
			Expect(out.Success).To(BeTrue())

			got, err := store.GetConversation(ctx, conv.ID)
			Expect(err).ToNot(HaveOccurred())
			Expect(got.TransferredToHuman).To(BeTrue())
			Expect(got.AIEnabled).To(BeFalse())
			Expect(got.TransferReason).To(Equal("asked for a human"))

			open, err := store.GetOpenAssignment(ctx, conv.ID)
			Expect(err).ToNot(HaveOccurred())
			Expect(open).To(BeNil())
		})

		It("is idempotent", func() {
			first := run(types.ActionEscalateToHuman, types.ActionParams{"conversationId": conv.ID.String()})
			Expect(first.Success).To(BeTrue())

			second := run(types.ActionEscalateToHuman, types.ActionParams{"conversationId": conv.ID.String()})
			Expect(second.Success).To(BeTrue())
			Expect(second.Result).To(ContainSubstring("already"))
		})
	})

	Describe("create-note", func() {
		It("stores the note", func() {
			out := run(types.ActionCreateNote, types.ActionParams{
				"contactId": contact.ID.String(),
				"content":   "prefers morning calls",
			})
			Expect(out.Success).To(BeTrue())

			notes, err := store.ListRecentNotes(ctx, contact.ID, 10)
			Expect(err).ToNot(HaveOccurred())
			Expect(notes).To(HaveLen(1))
		})
	})

	Describe("update-tags", func() {
		It("unions tags case-insensitively", func() {
			contact.SetTagList([]string{"vip"})
			Expect(store.SaveContact(ctx, contact)).To(Succeed())

			out := run(types.ActionUpdateTags, types.ActionParams{
				"contactId": contact.ID.String(),
				"tags":      []string{"Interested", "vip"},
			})
			Expect(out.Success).To(BeTrue())

			got, err := store.GetContact(ctx, contact.ID)
			Expect(err).ToNot(HaveOccurred())
			Expect(got.TagList()).To(Equal([]string{"interested", "vip"}))
		})
	})

	Describe("search-product", func() {
		It("reports catalog matches", func() {
			store.AddProduct(models.Product{
				OrganizationID: orgID, Name: "Orion X2 Laptop",
				Description: "business laptop", SKU: "OR-X2", Price: 129900, Stock: 4, Active: true,
			})

			out := run(types.ActionSearchProduct, types.ActionParams{
				"query":          "laptop",
				"conversationId": conv.ID.String(),
			})
			Expect(out.Success).To(BeTrue())
			Expect(out.Result).To(ContainSubstring("Orion X2 Laptop"))
			Expect(out.Result).To(ContainSubstring("OR-X2"))
		})

		It("says so when nothing matches", func() {
			out := run(types.ActionSearchProduct, types.ActionParams{
				"query":          "submarine",
				"conversationId": conv.ID.String(),
			})
			Expect(out.Success).To(BeTrue())
			Expect(strings.ToLower(out.Result)).To(ContainSubstring("no matching"))
		})
	})
})
