// Package router selects and assigns automated agents to conversations and
// evaluates escalation rules.
package router

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mudler/xlog"

	"github.com/clariohq/clario/core/types"
	"github.com/clariohq/clario/db"
	models "github.com/clariohq/clario/dbmodels"
)

// workloadThreshold is the open-assignment count above which selection falls
// back to the least-loaded active agent. Fixed at this layer; see DESIGN.md.
const workloadThreshold = 10

const reassignReason = "Reassigned to different agent"

type Router struct {
	store db.Store
}

func NewRouter(store db.Store) *Router {
	return &Router{store: store}
}

// Criteria describes the conversation needing an agent.
type Criteria struct {
	Channel   string
	ContactID uuid.UUID // Nil for a brand-new lead
	Intent    string    // purchase, help, schedule, ...
	Campaign  string
}

// SelectBestAgent scores every active agent of the organization and returns
// the highest. Nil when the organization has no active agents. Ties keep the
// first agent in stable input order.
func (r *Router) SelectBestAgent(ctx context.Context, orgID uuid.UUID, c Criteria) (*models.Agent, error) {
	agents, err := r.store.ListActiveAgents(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if len(agents) == 0 {
		return nil, nil
	}

	best := 0
	bestScore := -1
	for i := range agents {
		score := scoreAgent(&agents[i], c)
		if score > bestScore {
			best = i
			bestScore = score
		}
	}
	return &agents[best], nil
}

func scoreAgent(a *models.Agent, c Criteria) int {
	score := 0
	if a.HandlesChannel(c.Channel) {
		score += 30
	}
	if c.Campaign != "" {
		for _, campaign := range a.CampaignList() {
			if campaign == c.Campaign {
				score += 25
				break
			}
		}
	}
	switch {
	case a.Type == models.AgentQualifier && c.ContactID == uuid.Nil:
		score += 20 // new lead
	case a.Type == models.AgentSales && c.Intent == "purchase":
		score += 20
	case a.Type == models.AgentSupport && c.Intent == "help":
		score += 20
	case a.Type == models.AgentScheduler && c.Intent == "schedule":
		score += 20
	}
	if c.Channel == "voice-call" && a.VoiceProvider != "" && a.VoiceProvider != "none" {
		score += 15
	}
	// Flat availability baseline, reserved for a future load signal.
	score += 10
	return score
}

// AssignToConversation closes any open assignment for the conversation and
// opens a fresh one with zeroed counters, atomically.
func (r *Router) AssignToConversation(ctx context.Context, conversationID, agentID, contactID uuid.UUID) (*models.AgentAssignment, error) {
	var out *models.AgentAssignment
	err := r.store.Transaction(ctx, func(tx db.Store) error {
		now := time.Now()
		open, err := tx.GetOpenAssignment(ctx, conversationID)
		if err != nil {
			return err
		}
		if open != nil {
			open.UnassignedAt = &now
			open.UnassignReason = reassignReason
			if err := tx.SaveAssignment(ctx, open); err != nil {
				return err
			}
		}

		fresh := &models.AgentAssignment{
			ID:             uuid.New(),
			ConversationID: conversationID,
			ContactID:      contactID,
			AgentID:        agentID,
			AssignedAt:     now,
		}
		if err := tx.CreateAssignment(ctx, fresh); err != nil {
			return err
		}
		out = fresh
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Unassign closes an open assignment. Closing an already-closed or absent
// assignment fails with not-found.
func (r *Router) Unassign(ctx context.Context, assignmentID uuid.UUID, reason string) (*models.AgentAssignment, error) {
	var out *models.AgentAssignment
	err := r.store.Transaction(ctx, func(tx db.Store) error {
		a, err := tx.GetAssignment(ctx, assignmentID)
		if err != nil {
			return err
		}
		if !a.Open() {
			return fmt.Errorf("assignment %s already closed: %w", assignmentID, types.ErrNotFound)
		}
		now := time.Now()
		a.UnassignedAt = &now
		a.UnassignReason = reason
		if err := tx.SaveAssignment(ctx, a); err != nil {
			return err
		}
		out = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CurrentAssignment returns the conversation's unique open assignment, nil
// when none.
func (r *Router) CurrentAssignment(ctx context.Context, conversationID uuid.UUID) (*models.AgentAssignment, error) {
	return r.store.GetOpenAssignment(ctx, conversationID)
}

// EscalationSignals is the observed conversation state checked against an
// agent's escalation rules.
type EscalationSignals struct {
	MessageCount int
	Sentiment    string
	Keywords     []string
}

// ShouldEscalate evaluates the agent's escalation rules against the
// signals. Malformed rule configuration reads as zero rules, which never
// escalate.
func ShouldEscalate(agent *models.Agent, s EscalationSignals) bool {
	rules := agent.Rules()
	if rules.MaxMessages > 0 && s.MessageCount >= rules.MaxMessages {
		return true
	}
	if rules.EscalateOnNegativeSentiment && s.Sentiment == "negative" {
		return true
	}
	for _, supplied := range s.Keywords {
		for _, configured := range rules.Keywords {
			if configured == "" {
				continue
			}
			if strings.Contains(strings.ToLower(supplied), strings.ToLower(configured)) {
				return true
			}
		}
	}
	return false
}

// FindBestAvailableAgent selects the best agent, then rebalances: when the
// winner carries more than workloadThreshold open assignments, the active
// agent with the globally lowest open count wins instead.
func (r *Router) FindBestAvailableAgent(ctx context.Context, orgID uuid.UUID, c Criteria) (*models.Agent, error) {
	best, err := r.SelectBestAgent(ctx, orgID, c)
	if err != nil || best == nil {
		return best, err
	}

	load, err := r.store.CountOpenAssignments(ctx, best.ID)
	if err != nil {
		return nil, err
	}
	if load <= workloadThreshold {
		return best, nil
	}

	xlog.Debug("Best agent over workload threshold, rebalancing", "agent", best.ID, "open", load)
	agents, err := r.store.ListActiveAgents(ctx, orgID)
	if err != nil {
		return nil, err
	}
	lightest := best
	lightestLoad := load
	for i := range agents {
		n, err := r.store.CountOpenAssignments(ctx, agents[i].ID)
		if err != nil {
			return nil, err
		}
		if n < lightestLoad {
			lightest = &agents[i]
			lightestLoad = n
		}
	}
	return lightest, nil
}
