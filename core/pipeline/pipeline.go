// Package pipeline orchestrates one inbound message end to end: persistence,
// routing, context, generation, decided actions, and billing.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mudler/xlog"
	"gorm.io/datatypes"

	"github.com/clariohq/clario/core/contextbuilder"
	"github.com/clariohq/clario/core/decision"
	"github.com/clariohq/clario/core/router"
	"github.com/clariohq/clario/core/types"
	"github.com/clariohq/clario/db"
	models "github.com/clariohq/clario/dbmodels"
	"github.com/clariohq/clario/pkg/billing"
)

const historyLimit = 20

// humanPhrases flag an explicit request for a person in recent messages.
var humanPhrases = []string{
	"talk to a human", "speak to a human", "real person",
	"hablar con una persona", "hablar con un humano", "con un asesor",
}

// Generator produces the agent's reply. Satisfied by llm.Generator.
type Generator interface {
	Generate(ctx context.Context, agent *models.Agent, systemPrompt string, history []models.ConversationMessage, userMessage string) (*types.GenerationResult, error)
}

// Runner executes decided actions. Satisfied by actions.Executor.
type Runner interface {
	RunAll(ctx context.Context, actions []types.Action) []types.ExecutionResult
}

type Pipeline struct {
	store     db.Store
	router    *router.Router
	builder   *contextbuilder.Builder
	generator Generator
	runner    Runner
	ledger    *billing.Ledger

	// Complexity, when set, lets a deployment flag conversations that have
	// outgrown automated handling. Consulted by CheckEscalation alongside
	// the configured agent rules.
	Complexity func(conv *models.Conversation, recent []models.ConversationMessage) (bool, string)
}

func New(store db.Store, rt *router.Router, builder *contextbuilder.Builder, gen Generator, runner Runner, ledger *billing.Ledger) *Pipeline {
	return &Pipeline{
		store:     store,
		router:    rt,
		builder:   builder,
		generator: gen,
		runner:    runner,
		ledger:    ledger,
	}
}

// Input is one inbound message on an existing conversation.
type Input struct {
	ConversationID uuid.UUID
	Content        string
	Intent         string // optional routing hint: purchase, help, schedule
	Campaign       string // optional routing hint
}

// ProcessMessage runs the full per-message flow. The outbound message is
// persisted before any billing happens; a failed deduction is written down
// for reconciliation, never surfaced to the contact.
func (p *Pipeline) ProcessMessage(ctx context.Context, in Input) (*types.ProcessResult, error) {
	if strings.TrimSpace(in.Content) == "" {
		return nil, fmt.Errorf("%w: empty message", types.ErrValidation)
	}

	conv, err := p.store.GetConversation(ctx, in.ConversationID)
	if err != nil {
		return nil, err
	}
	if conv.TransferredToHuman || !conv.AIEnabled {
		return nil, fmt.Errorf("%w: conversation %s is with a human", types.ErrConflict, conv.ID)
	}

	if err := p.appendMessage(ctx, conv, &models.ConversationMessage{
		ConversationID: conv.ID,
		Direction:      models.DirectionInbound,
		Role:           "user",
		Content:        in.Content,
		Channel:        conv.Channel,
	}); err != nil {
		return nil, err
	}

	agent, assignment, err := p.resolveAgent(ctx, conv, in)
	if err != nil {
		return nil, err
	}

	cctx, err := p.builder.Build(ctx, conv.ContactID, conv.ID)
	if err != nil {
		return nil, err
	}

	history, err := p.store.ListRecentMessages(ctx, conv.ID, historyLimit)
	if err != nil {
		return nil, err
	}
	// The inbound message just persisted goes in as the user turn, not as
	// history.
	if n := len(history); n > 0 && history[n-1].Content == in.Content {
		history = history[:n-1]
	}

	prompt, err := ComposePrompt(agent, cctx)
	if err != nil {
		return nil, err
	}

	gen, err := p.generator.Generate(ctx, agent, prompt, history, in.Content)
	if err != nil {
		return nil, err
	}

	decided := decision.DecideActions(gen.Text, agent, cctx, conv.ID)
	decided = p.withRuleEscalation(ctx, agent, conv, cctx, in.Content, decided)

	if err := p.appendMessage(ctx, conv, &models.ConversationMessage{
		ConversationID:   conv.ID,
		Direction:        models.DirectionOutbound,
		Role:             "assistant",
		Content:          gen.Text,
		Channel:          conv.Channel,
		Model:            gen.Model,
		CostUnits:        gen.CostUnits,
		TriggeredActions: actionsJSON(decided),
	}); err != nil {
		return nil, err
	}
	if err := p.updateConversationMood(ctx, conv, cctx); err != nil {
		xlog.Warn("Updating conversation sentiment", "conversation", conv.ID, "error", err)
	}
	p.bumpAssignment(ctx, assignment, gen.CostUnits)

	p.charge(ctx, conv, agent, gen)

	var results []types.ExecutionResult
	if p.runner != nil && len(decided) > 0 {
		results = p.runner.RunAll(ctx, decided)
	}

	return &types.ProcessResult{
		Response:     gen.Text,
		Actions:      results,
		CostUnits:    gen.CostUnits,
		Model:        gen.Model,
		ContactID:    conv.ContactID,
		AgentID:      agent.ID,
		AssignmentID: assignment.ID,
	}, nil
}

func (p *Pipeline) appendMessage(ctx context.Context, conv *models.Conversation, msg *models.ConversationMessage) error {
	return p.store.Transaction(ctx, func(tx db.Store) error {
		if err := tx.AppendMessage(ctx, msg); err != nil {
			return err
		}
		now := time.Now()
		conv.MessageCount++
		conv.LastMessageAt = &now
		return tx.SaveConversation(ctx, conv)
	})
}

// actionsJSON serializes the decided actions for the outbound audit trail.
func actionsJSON(decided []types.Action) datatypes.JSON {
	if len(decided) == 0 {
		return nil
	}
	raw, err := json.Marshal(decided)
	if err != nil {
		return nil
	}
	return datatypes.JSON(raw)
}

// resolveAgent keeps an existing open assignment sticky; a conversation
// without one gets the best available agent assigned.
func (p *Pipeline) resolveAgent(ctx context.Context, conv *models.Conversation, in Input) (*models.Agent, *models.AgentAssignment, error) {
	assignment, err := p.router.CurrentAssignment(ctx, conv.ID)
	if err != nil {
		return nil, nil, err
	}
	if assignment != nil {
		agent, err := p.store.GetAgent(ctx, assignment.AgentID)
		if err != nil {
			return nil, nil, err
		}
		return agent, assignment, nil
	}

	agent, err := p.router.FindBestAvailableAgent(ctx, conv.OrganizationID, router.Criteria{
		Channel:   conv.Channel,
		ContactID: conv.ContactID,
		Intent:    in.Intent,
		Campaign:  in.Campaign,
	})
	if err != nil {
		return nil, nil, err
	}
	if agent == nil {
		return nil, nil, fmt.Errorf("%w: organization %s has no active agents", types.ErrConflict, conv.OrganizationID)
	}
	assignment, err = p.router.AssignToConversation(ctx, conv.ID, agent.ID, conv.ContactID)
	if err != nil {
		return nil, nil, err
	}
	return agent, assignment, nil
}

// withRuleEscalation appends an escalation when the agent's configured rules
// fire and the decision engine has not already escalated.
func (p *Pipeline) withRuleEscalation(ctx context.Context, agent *models.Agent, conv *models.Conversation, cctx *types.ContactContext, lastMessage string, decided []types.Action) []types.Action {
	if !agent.AllowsAction(types.ActionEscalateToHuman) {
		return decided
	}
	for _, a := range decided {
		if a.Type == types.ActionEscalateToHuman {
			return decided
		}
	}

	escalate := router.ShouldEscalate(agent, router.EscalationSignals{
		MessageCount: conv.MessageCount,
		Sentiment:    cctx.Conversation.Sentiment,
		Keywords:     []string{lastMessage},
	})
	reason := "escalation rules"
	if !escalate && wantsHuman(lastMessage) {
		escalate = true
		reason = "contact asked for a human"
	}
	if !escalate {
		return decided
	}

	return append([]types.Action{{
		Type:     types.ActionEscalateToHuman,
		Priority: 10,
		Params: types.ActionParams{
			"conversationId": conv.ID.String(),
			"reason":         reason,
		},
	}}, decided...)
}

func wantsHuman(content string) bool {
	lower := strings.ToLower(content)
	for _, phrase := range humanPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

func (p *Pipeline) updateConversationMood(ctx context.Context, conv *models.Conversation, cctx *types.ContactContext) error {
	conv.Sentiment = cctx.Conversation.Sentiment
	if len(cctx.Conversation.Topics) > 0 {
		conv.Summary = strings.Join(cctx.Conversation.Topics, ", ")
	}
	return p.store.SaveConversation(ctx, conv)
}

func (p *Pipeline) bumpAssignment(ctx context.Context, assignment *models.AgentAssignment, costUnits int) {
	assignment.MessagesHandled++
	assignment.CostUnits += costUnits
	if err := p.store.SaveAssignment(ctx, assignment); err != nil {
		xlog.Warn("Updating assignment counters", "assignment", assignment.ID, "error", err)
	}
}

// charge deducts credits after the response is committed. A failed deduction
// becomes a reconciliation entry; the response already went out.
func (p *Pipeline) charge(ctx context.Context, conv *models.Conversation, agent *models.Agent, gen *types.GenerationResult) {
	if p.ledger == nil {
		return
	}
	description := fmt.Sprintf("response in conversation %s", conv.ID)
	err := p.ledger.Consume(ctx, conv.OrganizationID, int64(gen.CostUnits), description, map[string]any{
		"agentId": agent.ID.String(),
		"model":   gen.Model,
	})
	if err != nil {
		xlog.Error("Credit deduction failed, writing reconciliation", "org", conv.OrganizationID, "error", err)
		p.ledger.Reconcile(ctx, conv.OrganizationID, int64(gen.CostUnits), description, err)
	}
}
