// Package identity resolves inbound interactions to contacts: find-or-create
// by email/phone, probabilistic duplicate detection, and transactional merge
// with referential-integrity fan-out.
package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mudler/xlog"

	"github.com/clariohq/clario/core/heat"
	"github.com/clariohq/clario/core/similarity"
	"github.com/clariohq/clario/core/types"
	"github.com/clariohq/clario/db"
	models "github.com/clariohq/clario/dbmodels"
	"github.com/clariohq/clario/pkg/events"
)

// DefaultThreshold gates fuzzy name matches in duplicate detection.
const DefaultThreshold = 0.7

// autoMergeGate and autoMergeCommit bound the unattended merge path: detect
// at 0.9, commit only candidates at or above 0.95.
const (
	autoMergeGate   = 0.9
	autoMergeCommit = 0.95
)

type Resolver struct {
	store  db.Store
	scorer *heat.Scorer
	events events.Publisher
}

func NewResolver(store db.Store, scorer *heat.Scorer, pub events.Publisher) *Resolver {
	if pub == nil {
		pub = events.NopPublisher{}
	}
	return &Resolver{store: store, scorer: scorer, events: pub}
}

// FindOrCreateInput carries the matching material for one inbound
// interaction. Email and phone are both optional; with neither present the
// resolver always creates.
type FindOrCreateInput struct {
	Email            string
	Phone            string
	FirstName        string
	LastName         string
	SourceType       string
	SourceIdentifier string
	SourceMetadata   map[string]interface{}
}

// FindOrCreate resolves the input to an active contact of the organization,
// creating one when no email or phone matches. Runs as a single transaction;
// every call bumps the interaction counter and upserts the source row.
func (r *Resolver) FindOrCreate(ctx context.Context, orgID uuid.UUID, in FindOrCreateInput) (*models.Contact, error) {
	var out *models.Contact
	err := r.store.Transaction(ctx, func(tx db.Store) error {
		now := time.Now()
		phone := similarity.NormalizePhone(in.Phone)

		var contact *models.Contact
		var err error
		if in.Email != "" {
			if contact, err = tx.FindActiveContactByEmail(ctx, orgID, in.Email); err != nil {
				return err
			}
		}
		if contact == nil && phone != "" {
			if contact, err = tx.FindActiveContactByPhone(ctx, orgID, phone); err != nil {
				return err
			}
		}

		if contact == nil {
			contact = &models.Contact{
				ID:                uuid.New(),
				OrganizationID:    orgID,
				FirstName:         in.FirstName,
				LastName:          in.LastName,
				Email:             in.Email,
				Phone:             phone,
				Status:            models.ContactActive,
				InteractionCount:  1,
				LastInteractionAt: &now,
			}
			if err := tx.CreateContact(ctx, contact); err != nil {
				return err
			}
			if err := r.createSource(ctx, tx, contact.ID, in, now); err != nil {
				return err
			}
			out = contact
			return nil
		}

		contact.InteractionCount++
		contact.LastInteractionAt = &now
		if err := tx.SaveContact(ctx, contact); err != nil {
			return err
		}
		if err := r.upsertSource(ctx, tx, contact.ID, in, now); err != nil {
			return err
		}
		out = contact
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Resolver) createSource(ctx context.Context, tx db.Store, contactID uuid.UUID, in FindOrCreateInput, now time.Time) error {
	src := &models.ContactSource{
		ID:               uuid.New(),
		ContactID:        contactID,
		SourceType:       in.SourceType,
		SourceIdentifier: in.SourceIdentifier,
		FirstSeenAt:      now,
		LastSeenAt:       now,
		InteractionCount: 1,
	}
	if in.SourceMetadata != nil {
		b, err := json.Marshal(in.SourceMetadata)
		if err == nil {
			src.Metadata = b
		}
	}
	return tx.CreateContactSource(ctx, src)
}

func (r *Resolver) upsertSource(ctx context.Context, tx db.Store, contactID uuid.UUID, in FindOrCreateInput, now time.Time) error {
	existing, err := tx.FindContactSource(ctx, contactID, in.SourceType, in.SourceIdentifier)
	if err != nil {
		return err
	}
	if existing == nil {
		return r.createSource(ctx, tx, contactID, in, now)
	}
	existing.LastSeenAt = now
	existing.InteractionCount++
	return tx.SaveContactSource(ctx, existing)
}

// DuplicateProbe is the matching material for duplicate detection.
// ExcludeContactID removes the probe's own record when probing from an
// existing contact.
type DuplicateProbe struct {
	Email            string
	Phone            string
	FirstName        string
	LastName         string
	ExcludeContactID uuid.UUID
}

// Candidate is one potential duplicate with its confidence and a
// human-readable reason.
type Candidate struct {
	Contact    models.Contact
	Confidence float64
	Reason     string
}

// DetectDuplicates runs three passes over the organization's active
// contacts: exact email (1.0), exact normalized phone (0.95), then fuzzy
// name with email/phone boosts. A contact matched by an earlier pass is
// never rescored by a later one. Results sort descending by confidence,
// discovery order on ties.
func (r *Resolver) DetectDuplicates(ctx context.Context, orgID uuid.UUID, probe DuplicateProbe, threshold float64) ([]Candidate, error) {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	contacts, err := r.store.ListActiveContacts(ctx, orgID)
	if err != nil {
		return nil, err
	}

	probePhone := similarity.NormalizePhone(probe.Phone)
	seen := map[uuid.UUID]bool{}
	var candidates []Candidate

	add := func(c models.Contact, confidence float64, reason string) {
		if seen[c.ID] {
			return
		}
		seen[c.ID] = true
		candidates = append(candidates, Candidate{Contact: c, Confidence: confidence, Reason: reason})
	}

	// Pass 1: exact email.
	if probe.Email != "" {
		for _, c := range contacts {
			if c.ID == probe.ExcludeContactID {
				continue
			}
			if c.Email != "" && strings.EqualFold(c.Email, probe.Email) {
				add(c, 1.0, "Exact email match")
			}
		}
	}

	// Pass 2: exact normalized phone.
	if probePhone != "" {
		for _, c := range contacts {
			if c.ID == probe.ExcludeContactID {
				continue
			}
			if c.Phone != "" && similarity.NormalizePhone(c.Phone) == probePhone {
				add(c, 0.95, "Exact phone match")
			}
		}
	}

	// Pass 3: fuzzy name with boosts.
	if probe.FirstName != "" || probe.LastName != "" {
		for _, c := range contacts {
			if c.ID == probe.ExcludeContactID || seen[c.ID] {
				continue
			}
			avg := (similarity.Similarity(probe.FirstName, c.FirstName) +
				similarity.Similarity(probe.LastName, c.LastName)) / 2
			if avg < threshold {
				continue
			}
			confidence := avg * 0.7
			reasons := []string{fmt.Sprintf("Similar name (%.0f%%)", avg*100)}
			if emailLocalPartMatches(probe.Email, c.Email) {
				confidence = capBoost(confidence, 0.15)
				reasons = append(reasons, "matching email user")
			}
			if lastFourDigitsMatch(probePhone, similarity.NormalizePhone(c.Phone)) {
				confidence = capBoost(confidence, 0.10)
				reasons = append(reasons, "matching phone suffix")
			}
			add(c, confidence, strings.Join(reasons, ", "))
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Confidence > candidates[j].Confidence
	})
	return candidates, nil
}

func capBoost(confidence, boost float64) float64 {
	confidence += boost
	if confidence > 0.95 {
		return 0.95
	}
	return confidence
}

func emailLocalPartMatches(a, b string) bool {
	la, okA := emailLocalPart(a)
	lb, okB := emailLocalPart(b)
	return okA && okB && strings.EqualFold(la, lb)
}

func emailLocalPart(email string) (string, bool) {
	at := strings.Index(email, "@")
	if at <= 0 {
		return "", false
	}
	return email[:at], true
}

func lastFourDigitsMatch(a, b string) bool {
	if len(a) < 4 || len(b) < 4 {
		return false
	}
	return a[len(a)-4:] == b[len(b)-4:]
}

// Merge folds the duplicate contacts into the primary in one all-or-nothing
// transaction: field precedence favors the primary, tags union, custom
// fields shallow-merge (duplicates override, see DESIGN.md), counters and
// lifetime value sum, and every owned row is re-pointed at the primary.
// Duplicates end up status=merged with MergedWithID set. Heat recalculation
// runs after commit; it is idempotent and safe to skip on crash.
func (r *Resolver) Merge(ctx context.Context, primaryID uuid.UUID, duplicateIDs []uuid.UUID) (*models.Contact, error) {
	var merged *models.Contact
	err := r.store.Transaction(ctx, func(tx db.Store) error {
		primary, err := tx.GetContact(ctx, primaryID)
		if err != nil {
			return err
		}
		if primary.Status != models.ContactActive {
			return fmt.Errorf("merge target %s is not active: %w", primaryID, types.ErrConflict)
		}

		duplicates := make([]*models.Contact, 0, len(duplicateIDs))
		for _, id := range duplicateIDs {
			if id == primaryID {
				return fmt.Errorf("contact %s cannot merge into itself: %w", id, types.ErrConflict)
			}
			dup, err := tx.GetContact(ctx, id)
			if err != nil {
				return err
			}
			if dup.Status != models.ContactActive {
				return fmt.Errorf("duplicate %s already merged: %w", id, types.ErrConflict)
			}
			duplicates = append(duplicates, dup)
		}

		// First-non-empty precedence favoring the primary.
		tagSet := map[string]bool{}
		for _, t := range primary.TagList() {
			tagSet[strings.ToLower(t)] = true
		}
		// Primary's custom fields go into the accumulator first, so a
		// duplicate carrying the same key wins.
		fields := map[string]interface{}{}
		for k, v := range primary.CustomFieldMap() {
			fields[k] = v
		}
		history := primary.MergedHistory()

		for _, dup := range duplicates {
			pickFirst(&primary.Phone, dup.Phone)
			pickFirst(&primary.Email, dup.Email)
			pickFirst(&primary.Company, dup.Company)
			pickFirst(&primary.Timezone, dup.Timezone)
			pickFirst(&primary.ChannelPreference, dup.ChannelPreference)

			for _, t := range dup.TagList() {
				tagSet[strings.ToLower(t)] = true
			}
			for k, v := range dup.CustomFieldMap() {
				fields[k] = v
			}

			primary.LifetimeValue += dup.LifetimeValue
			primary.InteractionCount += dup.InteractionCount
			if dup.LastInteractionAt != nil &&
				(primary.LastInteractionAt == nil || dup.LastInteractionAt.After(*primary.LastInteractionAt)) {
				primary.LastInteractionAt = dup.LastInteractionAt
			}

			history = append(history, dup.MergedHistory()...)
			history = append(history, dup.ID)
		}

		tags := make([]string, 0, len(tagSet))
		for t := range tagSet {
			tags = append(tags, t)
		}
		sort.Strings(tags)
		primary.SetTagList(tags)
		primary.SetCustomFieldMap(fields)
		primary.SetMergedHistory(history)

		if err := tx.ReassignContactOwnership(ctx, duplicateIDs, primaryID); err != nil {
			return err
		}

		for _, dup := range duplicates {
			dup.Status = models.ContactMerged
			dup.MergedWithID = &primaryID
			if err := tx.SaveContact(ctx, dup); err != nil {
				return err
			}
		}

		if err := tx.SaveContact(ctx, primary); err != nil {
			return err
		}
		merged = primary
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Outside the merge transaction on purpose: idempotent, retryable.
	if _, err := r.scorer.Recalculate(ctx, primaryID); err != nil {
		xlog.Warn("Heat recalculation after merge", "contact", primaryID, "error", err)
	}

	if err := r.events.Publish(ctx, events.KeyContactMerged, map[string]interface{}{
		"primaryId":    primaryID,
		"duplicateIds": duplicateIDs,
	}); err != nil {
		xlog.Warn("Publishing merge event", "contact", primaryID, "error", err)
	}

	return merged, nil
}

func pickFirst(dst *string, candidate string) {
	if *dst == "" && candidate != "" {
		*dst = candidate
	}
}

// AutoMergeHighConfidence sweeps the organization's active contacts and
// merges only near-certain duplicates. A failure merging one contact is
// logged and skipped, never fatal to the batch. Returns the number of
// contacts folded away.
func (r *Resolver) AutoMergeHighConfidence(ctx context.Context, orgID uuid.UUID) (int, error) {
	contacts, err := r.store.ListActiveContacts(ctx, orgID)
	if err != nil {
		return 0, err
	}

	mergedAway := map[uuid.UUID]bool{}
	count := 0
	for i := range contacts {
		c := &contacts[i]
		if mergedAway[c.ID] {
			continue
		}
		candidates, err := r.DetectDuplicates(ctx, orgID, DuplicateProbe{
			Email:            c.Email,
			Phone:            c.Phone,
			FirstName:        c.FirstName,
			LastName:         c.LastName,
			ExcludeContactID: c.ID,
		}, autoMergeGate)
		if err != nil {
			xlog.Warn("Duplicate detection during auto-merge", "contact", c.ID, "error", err)
			continue
		}

		var dupIDs []uuid.UUID
		for _, cand := range candidates {
			if cand.Confidence >= autoMergeCommit && !mergedAway[cand.Contact.ID] {
				dupIDs = append(dupIDs, cand.Contact.ID)
			}
		}
		if len(dupIDs) == 0 {
			continue
		}

		if _, err := r.Merge(ctx, c.ID, dupIDs); err != nil {
			xlog.Warn("Auto-merge failed", "contact", c.ID, "error", err)
			continue
		}
		for _, id := range dupIDs {
			mergedAway[id] = true
		}
		count += len(dupIDs)
	}
	return count, nil
}
