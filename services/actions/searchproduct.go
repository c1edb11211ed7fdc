package actions

import (
	"context"
	"fmt"
	"strings"

	"github.com/clariohq/clario/core/types"
)

// searchProduct runs the catalog query and reports matches inline. The
// pipeline appends the result to the response when relevant.
func (s *service) searchProduct(ctx context.Context, params types.ActionParams) (string, error) {
	query, err := requireString(params, "query")
	if err != nil {
		return "", err
	}
	convID, err := requireID(params, "conversationId")
	if err != nil {
		return "", err
	}
	if s.Catalog == nil {
		return "", fmt.Errorf("%w: product search not configured", types.ErrCapability)
	}

	conv, err := s.Store.GetConversation(ctx, convID)
	if err != nil {
		return "", err
	}
	hits, err := s.Catalog.Search(ctx, conv.OrganizationID, query)
	if err != nil {
		return "", err
	}
	if len(hits) == 0 {
		return "no matching products", nil
	}

	lines := make([]string, 0, len(hits))
	for _, p := range hits {
		lines = append(lines, fmt.Sprintf("%s (%s) %s, %d in stock", p.Name, p.SKU, money(p.Price), p.Stock))
	}
	return strings.Join(lines, "; "), nil
}
