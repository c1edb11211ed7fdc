package pipeline

import (
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	"github.com/clariohq/clario/core/types"
	models "github.com/clariohq/clario/dbmodels"
)

// promptText composes the full system prompt for one generation. The agent's
// own system prompt leads; contact knowledge follows so the model can
// personalize without asking again.
const promptText = `{{ .SystemPrompt }}

{{- if .Objectives }}

Your objectives:
{{- range .Objectives }}
- {{ . }}
{{- end }}
{{- end }}

You are talking to {{ .Name | default "a new lead" }}{{ if .Company }} from {{ .Company }}{{ end }}.
{{- if .Tags }}
Tags: {{ .Tags | join ", " }}.
{{- end }}
{{- if .Agreements }}
Active agreements: {{ .Agreements | join "; " }}.
{{- end }}
{{- if .Notes }}
Notes on file:
{{- range .Notes }}
- {{ . }}
{{- end }}
{{- end }}
{{- if .Topics }}
Recent topics: {{ .Topics | join ", " }}. Conversation sentiment: {{ .Sentiment }}.
{{- end }}
{{- if .KnowledgeBase }}

Reference material:
{{ .KnowledgeBase }}
{{- end }}`

var promptTmpl = template.Must(template.New("prompt").Funcs(sprig.TxtFuncMap()).Parse(promptText))

type promptData struct {
	SystemPrompt  string
	Objectives    []string
	Name          string
	Company       string
	Tags          []string
	Agreements    []string
	Notes         []string
	Topics        []string
	Sentiment     string
	KnowledgeBase string
}

// ComposePrompt renders the system prompt for the agent and contact context.
func ComposePrompt(agent *models.Agent, cctx *types.ContactContext) (string, error) {
	data := promptData{
		SystemPrompt:  agent.SystemPrompt,
		Objectives:    agent.ObjectiveList(),
		Name:          strings.TrimSpace(cctx.Profile.FirstName + " " + cctx.Profile.LastName),
		Company:       cctx.Profile.Company,
		Tags:          cctx.Profile.Tags,
		Topics:        cctx.Conversation.Topics,
		Sentiment:     cctx.Conversation.Sentiment,
		KnowledgeBase: agent.KnowledgeBase,
	}
	for _, a := range cctx.Agreements {
		data.Agreements = append(data.Agreements, a.Title)
	}
	for _, n := range cctx.Notes {
		data.Notes = append(data.Notes, n.Content)
	}

	var b strings.Builder
	if err := promptTmpl.Execute(&b, data); err != nil {
		return "", err
	}
	return b.String(), nil
}
