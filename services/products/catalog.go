// Package products keeps a per-organization full-text index over the active
// catalog, so agents can answer availability questions without SQL LIKE
// scans.
package products

import (
	"context"
	"fmt"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/google/uuid"

	"github.com/clariohq/clario/db"
	models "github.com/clariohq/clario/dbmodels"
)

const maxHits = 5

type indexedProduct struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	SKU         string `json:"sku"`
}

type orgIndex struct {
	index bleve.Index
	byID  map[string]models.Product
}

// Catalog wraps in-memory bleve indexes over active products, one per
// organization. Rebuild replaces an organization's index wholesale.
type Catalog struct {
	store db.Store

	mu   sync.RWMutex
	orgs map[uuid.UUID]*orgIndex
}

func NewCatalog(store db.Store) *Catalog {
	return &Catalog{store: store, orgs: map[uuid.UUID]*orgIndex{}}
}

// Rebuild reindexes the organization's active products.
func (c *Catalog) Rebuild(ctx context.Context, orgID uuid.UUID) error {
	list, err := c.store.ListActiveProducts(ctx, orgID)
	if err != nil {
		return err
	}

	index, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return err
	}
	byID := make(map[string]models.Product, len(list))
	for _, p := range list {
		id := p.ID.String()
		byID[id] = p
		if err := index.Index(id, indexedProduct{
			Name:        p.Name,
			Description: p.Description,
			SKU:         p.SKU,
		}); err != nil {
			return err
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if old, ok := c.orgs[orgID]; ok {
		old.index.Close()
	}
	c.orgs[orgID] = &orgIndex{index: index, byID: byID}
	return nil
}

// Search returns up to five matching products, best first. An organization's
// index is built lazily on first use.
func (c *Catalog) Search(ctx context.Context, orgID uuid.UUID, query string) ([]models.Product, error) {
	c.mu.RLock()
	oi, ok := c.orgs[orgID]
	c.mu.RUnlock()
	if !ok {
		if err := c.Rebuild(ctx, orgID); err != nil {
			return nil, err
		}
		c.mu.RLock()
		oi = c.orgs[orgID]
		c.mu.RUnlock()
	}

	match := bleve.NewMatchQuery(query)
	match.SetFuzziness(1)
	req := bleve.NewSearchRequestOptions(match, maxHits, 0, false)
	res, err := oi.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("searching products: %w", err)
	}

	out := make([]models.Product, 0, len(res.Hits))
	for _, hit := range res.Hits {
		if p, ok := oi.byID[hit.ID]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}
