package products_test

import (
	"context"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/clariohq/clario/db"
	models "github.com/clariohq/clario/dbmodels"
	"github.com/clariohq/clario/services/products"
)

var _ = Describe("Catalog", func() {
	var (
		store   *db.MemoryStore
		catalog *products.Catalog
		ctx     context.Context
		orgID   uuid.UUID
	)

	BeforeEach(func() {
		store = db.NewMemoryStore()
		catalog = products.NewCatalog(store)
		ctx = context.Background()
		orgID = uuid.New()

		store.AddProduct(models.Product{
			OrganizationID: orgID, Name: "Orion X2 Laptop",
			Description: "14 inch business laptop", SKU: "OR-X2", Price: 129900, Stock: 4, Active: true,
		})
		store.AddProduct(models.Product{
			OrganizationID: orgID, Name: "Vega Monitor",
			Description: "27 inch 4k monitor", SKU: "VG-27", Price: 45900, Stock: 12, Active: true,
		})
		store.AddProduct(models.Product{
			OrganizationID: orgID, Name: "Retired Dock",
			Description: "discontinued docking station", SKU: "RD-1", Active: false,
		})
	})

	It("finds products by name", func() {
		hits, err := catalog.Search(ctx, orgID, "laptop")
		Expect(err).ToNot(HaveOccurred())
		Expect(hits).To(HaveLen(1))
		Expect(hits[0].SKU).To(Equal("OR-X2"))
	})

	It("matches against descriptions", func() {
		hits, err := catalog.Search(ctx, orgID, "monitor")
		Expect(err).ToNot(HaveOccurred())
		Expect(hits).To(HaveLen(1))
		Expect(hits[0].Name).To(Equal("Vega Monitor"))
	})

	It("never returns inactive products", func() {
		hits, err := catalog.Search(ctx, orgID, "docking")
		Expect(err).ToNot(HaveOccurred())
		Expect(hits).To(BeEmpty())
	})

	It("isolates organizations", func() {
		hits, err := catalog.Search(ctx, uuid.New(), "laptop")
		Expect(err).ToNot(HaveOccurred())
		Expect(hits).To(BeEmpty())
	})

	It("picks up new products after a rebuild", func() {
		_, err := catalog.Search(ctx, orgID, "keyboard")
		Expect(err).ToNot(HaveOccurred())

		store.AddProduct(models.Product{
			OrganizationID: orgID, Name: "Lyra Keyboard",
			Description: "mechanical keyboard", SKU: "LY-K", Active: true,
		})
		Expect(catalog.Rebuild(ctx, orgID)).To(Succeed())

		hits, err := catalog.Search(ctx, orgID, "keyboard")
		Expect(err).ToNot(HaveOccurred())
		Expect(hits).To(HaveLen(1))
	})
})
