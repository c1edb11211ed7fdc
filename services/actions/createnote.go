package actions

import (
	"context"

	"github.com/clariohq/clario/core/types"
	models "github.com/clariohq/clario/dbmodels"
)

func (s *service) createNote(ctx context.Context, params types.ActionParams) (string, error) {
	contactID, err := requireID(params, "contactId")
	if err != nil {
		return "", err
	}
	content, err := requireString(params, "content")
	if err != nil {
		return "", err
	}

	author := optionalString(params, "author")
	if author == "" {
		author = "agent"
	}
	if err := s.Store.CreateNote(ctx, &models.ContactNote{
		ContactID: contactID,
		Content:   content,
		Author:    author,
	}); err != nil {
		return "", err
	}
	return "note created", nil
}
