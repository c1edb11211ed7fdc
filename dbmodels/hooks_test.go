package models_test

import (
	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	models "github.com/clariohq/clario/dbmodels"
)

var _ = Describe("Create hooks", func() {
	It("assigns distinct ids to consecutive rows", func() {
		convID := uuid.New()
		first := models.ConversationMessage{ConversationID: convID}
		second := models.ConversationMessage{ConversationID: convID}

		Expect(first.BeforeCreate(nil)).To(Succeed())
		Expect(second.BeforeCreate(nil)).To(Succeed())

		Expect(first.ID).ToNot(Equal(uuid.Nil))
		Expect(second.ID).ToNot(Equal(uuid.Nil))
		Expect(first.ID).ToNot(Equal(second.ID))
	})

	It("keeps an id the caller already set", func() {
		id := uuid.New()
		note := models.ContactNote{ID: id, Content: "prefers mornings"}

		Expect(note.BeforeCreate(nil)).To(Succeed())
		Expect(note.ID).To(Equal(id))
	})

	It("covers the append-heavy entities", func() {
		submission := models.FormSubmission{}
		call := models.VoiceCall{}
		entry := models.LedgerEntry{}

		Expect(submission.BeforeCreate(nil)).To(Succeed())
		Expect(call.BeforeCreate(nil)).To(Succeed())
		Expect(entry.BeforeCreate(nil)).To(Succeed())

		Expect(submission.ID).ToNot(Equal(uuid.Nil))
		Expect(call.ID).ToNot(Equal(uuid.Nil))
		Expect(entry.ID).ToNot(Equal(uuid.Nil))
	})
})
