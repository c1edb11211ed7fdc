package types

import "encoding/json"

// Action type identifiers understood by the executor.
const (
	ActionSendLink        = "send-link"
	ActionSendDocument    = "send-document"
	ActionSendQuote       = "send-quote"
	ActionScheduleMeeting = "schedule-meeting"
	ActionEscalateToHuman = "escalate-to-human"
	ActionCreateNote      = "create-note"
	ActionUpdateTags      = "update-tags"
	ActionSearchProduct   = "search-product"
)

type ActionParams map[string]interface{}

func (ap ActionParams) String() string {
	b, _ := json.Marshal(ap)
	return string(b)
}

func (ap ActionParams) Unmarshal(v interface{}) error {
	b, err := json.Marshal(ap)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

// Action is a decided side effect. Higher priority runs are reported first;
// execution itself is concurrent and order-independent.
type Action struct {
	Type     string       `json:"type"`
	Params   ActionParams `json:"params"`
	Priority int          `json:"priority"`
}

// ExecutionResult is the per-action outcome of one pipeline run. Failures are
// data, never errors: one action failing must not disturb its siblings.
type ExecutionResult struct {
	Type    string `json:"type"`
	Success bool   `json:"success"`
	Result  string `json:"result,omitempty"`
	Error   string `json:"error,omitempty"`
}
