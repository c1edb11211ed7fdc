// Package heat scores contact engagement on a bounded 0-100 scale from
// recency, frequency, value and responsiveness.
package heat

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mudler/xlog"

	"github.com/clariohq/clario/db"
	models "github.com/clariohq/clario/dbmodels"
)

// Dashboard buckets.
const (
	BucketHot  = "hot"  // >= 80
	BucketWarm = "warm" // 50-79
	BucketCold = "cold" // < 50
)

type Scorer struct {
	store db.Store
}

func NewScorer(store db.Store) *Scorer {
	return &Scorer{store: store}
}

// Compute derives the heat score from the contact's current attributes.
// Deterministic and side-effect free; clamped to [0,100].
func Compute(c *models.Contact, now time.Time) int {
	score := recencyScore(c.LastInteractionAt, now) +
		frequencyScore(c.InteractionCount) +
		valueScore(c.LifetimeValue) +
		engagementScore(c.AvgResponseSecs)
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func recencyScore(last *time.Time, now time.Time) int {
	if last == nil {
		return 0
	}
	ly, lm, ld := last.Date()
	ny, nm, nd := now.Date()
	if ly == ny && lm == nm && ld == nd {
		return 30
	}
	days := now.Sub(*last).Hours() / 24
	switch {
	case days <= 1:
		return 28
	case days <= 3:
		return 25
	case days <= 7:
		return 20
	case days <= 14:
		return 15
	case days <= 30:
		return 10
	case days <= 60:
		return 5
	}
	return 0
}

func frequencyScore(interactions int) int {
	switch {
	case interactions >= 16:
		return 30
	case interactions >= 6:
		return 20
	case interactions >= 1:
		return 10
	}
	return 0
}

func valueScore(lifetimeValue int64) int {
	switch {
	case lifetimeValue >= 100000:
		return 20
	case lifetimeValue >= 50000:
		return 15
	case lifetimeValue >= 10000:
		return 10
	case lifetimeValue >= 1000:
		return 5
	}
	return 0
}

func engagementScore(avgResponseSecs *int) int {
	if avgResponseSecs == nil {
		return 0
	}
	switch secs := *avgResponseSecs; {
	case secs < 300:
		return 20
	case secs < 1800:
		return 15
	case secs < 7200:
		return 10
	case secs < 86400:
		return 5
	}
	return 0
}

// Bucket maps a score to its dashboard bucket.
func Bucket(score int) string {
	switch {
	case score >= 80:
		return BucketHot
	case score >= 50:
		return BucketWarm
	}
	return BucketCold
}

// Recalculate recomputes and persists the contact's heat score.
func (s *Scorer) Recalculate(ctx context.Context, contactID uuid.UUID) (int, error) {
	contact, err := s.store.GetContact(ctx, contactID)
	if err != nil {
		return 0, err
	}
	score := Compute(contact, time.Now())
	now := time.Now()
	contact.HeatScore = score
	contact.HeatUpdatedAt = &now
	if err := s.store.SaveContact(ctx, contact); err != nil {
		return 0, err
	}
	return score, nil
}

// RefreshResponseTime re-derives the contact's average response time by
// pairing each inbound message with the next outbound one in the same
// conversation. Pairs with latency <= 0s or >= 24h are discarded as clock
// noise or abandonment.
func (s *Scorer) RefreshResponseTime(ctx context.Context, contactID uuid.UUID) error {
	contact, err := s.store.GetContact(ctx, contactID)
	if err != nil {
		return err
	}
	msgs, err := s.store.ListContactMessages(ctx, contactID)
	if err != nil {
		return err
	}

	var (
		total       int64
		count       int64
		currentConv uuid.UUID
		pendingInAt *time.Time
	)
	for i := range msgs {
		m := &msgs[i]
		if m.ConversationID != currentConv {
			currentConv = m.ConversationID
			pendingInAt = nil
		}
		switch m.Direction {
		case models.DirectionInbound:
			t := m.CreatedAt
			pendingInAt = &t
		case models.DirectionOutbound:
			if pendingInAt == nil {
				continue
			}
			latency := int64(m.CreatedAt.Sub(*pendingInAt).Seconds())
			pendingInAt = nil
			if latency <= 0 || latency >= 86400 {
				continue
			}
			total += latency
			count++
		}
	}

	if count == 0 {
		contact.AvgResponseSecs = nil
	} else {
		avg := int(total / count)
		contact.AvgResponseSecs = &avg
	}
	return s.store.SaveContact(ctx, contact)
}

// RecalculateAll sweeps the organization's active contacts. Per-contact
// failures are logged and skipped, never fatal to the batch.
func (s *Scorer) RecalculateAll(ctx context.Context, orgID uuid.UUID) int {
	contacts, err := s.store.ListActiveContacts(ctx, orgID)
	if err != nil {
		xlog.Error("Listing contacts for heat sweep", "org", orgID, "error", err)
		return 0
	}
	updated := 0
	for i := range contacts {
		if err := s.RefreshResponseTime(ctx, contacts[i].ID); err != nil {
			xlog.Warn("Refreshing response time", "contact", contacts[i].ID, "error", err)
			continue
		}
		if _, err := s.Recalculate(ctx, contacts[i].ID); err != nil {
			xlog.Warn("Recalculating heat", "contact", contacts[i].ID, "error", err)
			continue
		}
		updated++
	}
	return updated
}

// Distribution buckets the organization's active contacts for dashboards.
func (s *Scorer) Distribution(ctx context.Context, orgID uuid.UUID) (map[string]int, error) {
	contacts, err := s.store.ListActiveContacts(ctx, orgID)
	if err != nil {
		return nil, err
	}
	dist := map[string]int{BucketHot: 0, BucketWarm: 0, BucketCold: 0}
	for i := range contacts {
		dist[Bucket(contacts[i].HeatScore)]++
	}
	return dist, nil
}
