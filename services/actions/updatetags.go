package actions

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/clariohq/clario/core/types"
	"github.com/clariohq/clario/db"
)

// updateTags unions the given tags into the contact's set. Tags are
// lowercased and kept sorted, matching merge semantics.
func (s *service) updateTags(ctx context.Context, params types.ActionParams) (string, error) {
	contactID, err := requireID(params, "contactId")
	if err != nil {
		return "", err
	}
	tags := stringList(params, "tags")
	if len(tags) == 0 {
		return "", fmt.Errorf("%w: missing tags", types.ErrValidation)
	}

	var total int
	err = s.Store.Transaction(ctx, func(tx db.Store) error {
		contact, err := tx.GetContact(ctx, contactID)
		if err != nil {
			return err
		}
		set := map[string]bool{}
		for _, t := range contact.TagList() {
			set[strings.ToLower(t)] = true
		}
		for _, t := range tags {
			set[strings.ToLower(t)] = true
		}
		merged := make([]string, 0, len(set))
		for t := range set {
			merged = append(merged, t)
		}
		sort.Strings(merged)
		total = len(merged)
		contact.SetTagList(merged)
		return tx.SaveContact(ctx, contact)
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("contact has %d tags", total), nil
}
