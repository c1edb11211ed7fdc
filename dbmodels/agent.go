package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type AgentType string

const (
	AgentQualifier AgentType = "qualifier"
	AgentSales     AgentType = "sales"
	AgentSupport   AgentType = "support"
	AgentScheduler AgentType = "scheduler"
)

// EscalationRules is the typed shape of the Agent.EscalationRules JSON column.
type EscalationRules struct {
	MaxMessages                 int      `json:"maxMessages,omitempty"`
	EscalateOnNegativeSentiment bool     `json:"escalateOnNegativeSentiment,omitempty"`
	Keywords                    []string `json:"keywords,omitempty"`
}

// Agent is an organization-scoped automated agent configuration.
type Agent struct {
	ID             uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	OrganizationID uuid.UUID `gorm:"type:char(36);index;not null" json:"organizationId"`

	Name         string    `gorm:"type:varchar(255);not null" json:"name"`
	Type         AgentType `gorm:"type:varchar(32);not null" json:"type"`
	SystemPrompt string    `gorm:"type:text" json:"systemPrompt"`

	Objectives      datatypes.JSON `gorm:"type:json" json:"objectives"`
	EscalationRules datatypes.JSON `gorm:"type:json" json:"escalationRules"`
	AllowedActions  datatypes.JSON `gorm:"type:json" json:"allowedActions"`
	Channels        datatypes.JSON `gorm:"type:json" json:"channels"`
	Campaigns       datatypes.JSON `gorm:"type:json" json:"campaigns"`

	KnowledgeBase string `gorm:"type:text" json:"knowledgeBase"`

	VoiceProvider string  `gorm:"type:varchar(32);default:none" json:"voiceProvider"`
	Model         string  `gorm:"type:varchar(128)" json:"model"`
	Temperature   float32 `gorm:"default:0.7" json:"temperature"`
	MaxTokens     int     `gorm:"default:512" json:"maxTokens"`

	Active    bool      `gorm:"default:true;index" json:"active"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func parseStringList(raw datatypes.JSON) []string {
	var out []string
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &out)
	}
	return out
}

func (a *Agent) ObjectiveList() []string { return parseStringList(a.Objectives) }

// Rules parses the escalation-rule column. Malformed configuration reads as
// the zero value, which never escalates.
func (a *Agent) Rules() EscalationRules {
	var rules EscalationRules
	if len(a.EscalationRules) > 0 {
		_ = json.Unmarshal(a.EscalationRules, &rules)
	}
	return rules
}

func (a *Agent) AllowedActionList() []string { return parseStringList(a.AllowedActions) }
func (a *Agent) ChannelList() []string       { return parseStringList(a.Channels) }
func (a *Agent) CampaignList() []string      { return parseStringList(a.Campaigns) }

func (a *Agent) AllowsAction(actionType string) bool {
	for _, allowed := range a.AllowedActionList() {
		if allowed == actionType {
			return true
		}
	}
	return false
}

func (a *Agent) HandlesChannel(channel string) bool {
	for _, c := range a.ChannelList() {
		if c == channel {
			return true
		}
	}
	return false
}
