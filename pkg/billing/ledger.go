// Package billing deducts credits for generated responses and records every
// movement in the ledger.
package billing

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/mudler/xlog"

	"github.com/clariohq/clario/core/types"
	"github.com/clariohq/clario/db"
	models "github.com/clariohq/clario/dbmodels"
	"github.com/clariohq/clario/pkg/events"
)

type Ledger struct {
	store  db.Store
	events events.Publisher
}

func NewLedger(store db.Store, pub events.Publisher) *Ledger {
	if pub == nil {
		pub = events.NopPublisher{}
	}
	return &Ledger{store: store, events: pub}
}

// Consume deducts amount credits from the organization and writes a consume
// entry, atomically. A zero amount is a no-op. Balances may go negative;
// responses are never withheld over billing.
func (l *Ledger) Consume(ctx context.Context, orgID uuid.UUID, amount int64, description string, metadata map[string]any) error {
	if amount < 0 {
		return fmt.Errorf("%w: negative amount %d", types.ErrValidation, amount)
	}
	if amount == 0 {
		return nil
	}

	raw, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("%w: encoding metadata: %v", types.ErrLedger, err)
	}

	err = l.store.Transaction(ctx, func(tx db.Store) error {
		org, err := tx.GetOrganization(ctx, orgID)
		if err != nil {
			return err
		}
		org.CreditBalance -= amount
		if err := tx.SaveOrganization(ctx, org); err != nil {
			return err
		}
		return tx.CreateLedgerEntry(ctx, &models.LedgerEntry{
			OrganizationID: orgID,
			Kind:           models.LedgerConsume,
			Amount:         -amount,
			Description:    description,
			Metadata:       raw,
		})
	})
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrLedger, err)
	}
	return nil
}

// Reconcile records a deduction that could not be applied. The response was
// already delivered, so the debt is written down for later settlement instead
// of failing the pipeline.
func (l *Ledger) Reconcile(ctx context.Context, orgID uuid.UUID, amount int64, description string, cause error) {
	meta, _ := json.Marshal(map[string]any{"cause": cause.Error()})
	entry := &models.LedgerEntry{
		OrganizationID: orgID,
		Kind:           models.LedgerReconciliation,
		Amount:         -amount,
		Description:    description,
		Metadata:       meta,
	}
	if err := l.store.CreateLedgerEntry(ctx, entry); err != nil {
		xlog.Error("Writing reconciliation entry", "org", orgID, "amount", amount, "error", err)
		return
	}

	if err := l.events.Publish(ctx, events.KeyLedgerReconciliation, map[string]interface{}{
		"organizationId": orgID,
		"amount":         amount,
		"description":    description,
		"cause":          cause.Error(),
	}); err != nil {
		xlog.Warn("Publishing reconciliation event", "org", orgID, "error", err)
	}
}
