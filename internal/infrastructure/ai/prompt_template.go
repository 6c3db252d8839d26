package ai

import (
	"bytes"
	"strings"
	"text/template"

	"github.com/m-mizutani/goerr/v2"

	"github.com/webcreatorLuke/roblox-code-bot/internal/domain"
)

// systemPrompt asks for the JSON triple. It is shared by every adapter that
// talks to a model.
const systemPrompt = `You are an expert Roblox Lua script developer. Generate clean, well-commented Roblox Lua code for the user's request.

IMPORTANT: You must respond with a JSON object in this exact format:
{"code": "...", "script_type": "Script" or "LocalScript" or "ModuleScript", "location": "where to place it (e.g., ServerScriptService, StarterPlayer.StarterCharacterScripts, StarterGui, Workspace, etc.)"}

Follow Roblox best practices and include helpful comments in the code.`

// renderPromptMessages expands model prompt templates and ensures a user message exists.
// If the model has no custom prompt template, the default Roblox prompt is used.
//
// Template variables:
//   - {{.Prompt}}: the user's request
//   - {{.Kinds}}: the accepted script_type values
//   - {{.Category}}: the classifier's category for the request
func renderPromptMessages(model domain.ModelDefinition, userPrompt string) ([]domain.PromptMessage, error) {
	data := buildTemplateData(userPrompt)
	messages := model.Prompt
	if len(messages) == 0 {
		messages = defaultTemplateMessages()
	}

	rendered := make([]domain.PromptMessage, 0, len(messages))
	for _, msg := range messages {
		content, err := executeTemplate(msg.Content, data)
		if err != nil {
			return nil, err
		}
		rendered = append(rendered, domain.PromptMessage{
			Role:    msg.Role,
			Content: strings.TrimSpace(content),
		})
	}

	if !hasUserMessage(rendered) {
		fallback, err := executeTemplate("Request: {{.Prompt}}", data)
		if err != nil {
			return nil, err
		}
		rendered = append(rendered, domain.PromptMessage{
			Role:    "user",
			Content: strings.TrimSpace(fallback),
		})
	}

	return rendered, nil
}

type templateData struct {
	Prompt   string
	Kinds    string
	Category string
}

func buildTemplateData(prompt string) templateData {
	return templateData{
		Prompt:   strings.TrimSpace(prompt),
		Kinds:    strings.Join([]string{string(domain.KindScript), string(domain.KindLocalScript), string(domain.KindModuleScript)}, ", "),
		Category: domain.Classify(prompt).Label(),
	}
}

func executeTemplate(raw string, data templateData) (string, error) {
	tmpl, err := template.New("prompt").Parse(raw)
	if err != nil {
		return "", goerr.Wrap(err, "failed to parse prompt template")
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", goerr.Wrap(err, "failed to execute prompt template")
	}
	return buf.String(), nil
}

func hasUserMessage(messages []domain.PromptMessage) bool {
	for _, msg := range messages {
		if strings.EqualFold(msg.Role, "user") {
			return true
		}
	}
	return false
}

func defaultTemplateMessages() []domain.PromptMessage {
	return []domain.PromptMessage{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: "Request: {{.Prompt}}"},
	}
}
