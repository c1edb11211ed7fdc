package actions

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jung-kurt/gofpdf"

	"github.com/clariohq/clario/core/types"
	models "github.com/clariohq/clario/dbmodels"
)

// sendQuote renders a PDF quote for the contact and, when the channel has a
// sender, pushes its location out. Line items come from the contact's active
// agreements; with none, the catalog's active products are quoted instead.
func (s *service) sendQuote(ctx context.Context, params types.ActionParams) (string, error) {
	contactID, err := requireID(params, "contactId")
	if err != nil {
		return "", err
	}
	convID, err := requireID(params, "conversationId")
	if err != nil {
		return "", err
	}

	contact, err := s.Store.GetContact(ctx, contactID)
	if err != nil {
		return "", err
	}
	conv, err := s.Store.GetConversation(ctx, convID)
	if err != nil {
		return "", err
	}

	agreements, err := s.Store.ListActiveAgreements(ctx, contactID)
	if err != nil {
		return "", err
	}
	var items [][2]string
	for _, a := range agreements {
		items = append(items, [2]string{a.Title, money(a.Value)})
	}
	if len(items) == 0 {
		list, err := s.Store.ListActiveProducts(ctx, conv.OrganizationID)
		if err != nil {
			return "", err
		}
		if len(list) > 5 {
			list = list[:5]
		}
		for _, p := range list {
			items = append(items, [2]string{p.Name, money(p.Price)})
		}
	}

	path, err := s.renderQuote(contact, items)
	if err != nil {
		return "", fmt.Errorf("rendering quote: %w", err)
	}

	if s.Channels != nil && s.Channels.Has(conv.Channel) && conv.ChannelRecipient != "" {
		msg := fmt.Sprintf("Your quote is ready: %s", filepath.Base(path))
		if err := s.Channels.Deliver(ctx, conv.Channel, conv.ChannelRecipient, msg); err != nil {
			return "", err
		}
	}
	return fmt.Sprintf("quote generated at %s", path), nil
}

func (s *service) renderQuote(contact *models.Contact, items [][2]string) (string, error) {
	dir := s.QuoteDir
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, fmt.Sprintf("quote-%s.pdf", uuid.NewString()))

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, "Quote")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 11)
	pdf.Cell(0, 8, fmt.Sprintf("Prepared for: %s", contact.FullName()))
	pdf.Ln(8)
	pdf.Cell(0, 8, fmt.Sprintf("Date: %s", time.Now().Format("2006-01-02")))
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(130, 8, "Item", "B", 0, "L", false, 0, "")
	pdf.CellFormat(40, 8, "Amount", "B", 1, "R", false, 0, "")
	pdf.SetFont("Arial", "", 11)
	for _, item := range items {
		pdf.CellFormat(130, 8, item[0], "", 0, "L", false, 0, "")
		pdf.CellFormat(40, 8, item[1], "", 1, "R", false, 0, "")
	}

	if err := pdf.OutputFileAndClose(path); err != nil {
		return "", err
	}
	return path, nil
}

func money(minor int64) string {
	return fmt.Sprintf("$%d.%02d", minor/100, minor%100)
}
