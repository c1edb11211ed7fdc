package billing_test

import (
	"context"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/clariohq/clario/core/types"
	"github.com/clariohq/clario/db"
	models "github.com/clariohq/clario/dbmodels"
	"github.com/clariohq/clario/pkg/billing"
)

var _ = Describe("Ledger", func() {
	var (
		store  *db.MemoryStore
		ledger *billing.Ledger
		ctx    context.Context
		orgID  uuid.UUID
	)

	BeforeEach(func() {
		store = db.NewMemoryStore()
		ledger = billing.NewLedger(store, nil)
		ctx = context.Background()
		orgID = uuid.New()
		store.PutOrganization(models.Organization{ID: orgID, Name: "acme", CreditBalance: 100, Active: true})
	})

	It("deducts credits and writes a consume entry", func() {
		Expect(ledger.Consume(ctx, orgID, 3, "message response", map[string]any{"model": "gpt-4o-mini"})).To(Succeed())

		org, err := store.GetOrganization(ctx, orgID)
		Expect(err).ToNot(HaveOccurred())
		Expect(org.CreditBalance).To(Equal(int64(97)))

		entries := store.LedgerEntries()
		Expect(entries).To(HaveLen(1))
		Expect(entries[0].Kind).To(Equal(models.LedgerConsume))
		Expect(entries[0].Amount).To(Equal(int64(-3)))
	})

	It("lets the balance go negative", func() {
		Expect(ledger.Consume(ctx, orgID, 150, "big response", nil)).To(Succeed())

		org, err := store.GetOrganization(ctx, orgID)
		Expect(err).ToNot(HaveOccurred())
		Expect(org.CreditBalance).To(Equal(int64(-50)))
	})

	It("treats zero amount as a no-op", func() {
		Expect(ledger.Consume(ctx, orgID, 0, "noop", nil)).To(Succeed())
		Expect(store.LedgerEntries()).To(BeEmpty())
	})

	It("rejects negative amounts", func() {
		Expect(ledger.Consume(ctx, orgID, -1, "bad", nil)).To(MatchError(types.ErrValidation))
	})

	It("fails with a ledger error for an unknown organization", func() {
		err := ledger.Consume(ctx, uuid.New(), 1, "orphan", nil)
		Expect(err).To(MatchError(types.ErrLedger))

		org, getErr := store.GetOrganization(ctx, orgID)
		Expect(getErr).ToNot(HaveOccurred())
		Expect(org.CreditBalance).To(Equal(int64(100)))
		Expect(store.LedgerEntries()).To(BeEmpty())
	})

	It("records reconciliation entries without touching the balance", func() {
		ledger.Reconcile(ctx, orgID, 5, "deferred charge", context.DeadlineExceeded)

		org, err := store.GetOrganization(ctx, orgID)
		Expect(err).ToNot(HaveOccurred())
		Expect(org.CreditBalance).To(Equal(int64(100)))

		entries := store.LedgerEntries()
		Expect(entries).To(HaveLen(1))
		Expect(entries[0].Kind).To(Equal(models.LedgerReconciliation))
		Expect(entries[0].Amount).To(Equal(int64(-5)))
	})
})
