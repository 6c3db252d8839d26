package ai

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"

	"github.com/webcreatorLuke/roblox-code-bot/internal/domain"
	"github.com/webcreatorLuke/roblox-code-bot/internal/ports"
)

const geminiProviderName = "gemini"

// geminiProvider asks a gollem client for structured JSON output.
type geminiProvider struct {
	model  domain.ModelDefinition
	client gollem.LLMClient
}

func newGeminiProvider(model domain.ModelDefinition, client gollem.LLMClient) ports.Provider {
	return &geminiProvider{model: model, client: client}
}

func (p *geminiProvider) Name() string {
	return geminiProviderName
}

func (p *geminiProvider) Model() domain.ModelDefinition {
	return p.model
}

func (p *geminiProvider) Generate(ctx context.Context, req ports.ProviderRequest) (ports.ProviderResponse, error) {
	messages, err := renderPromptMessages(p.model, req.Prompt)
	if err != nil {
		return ports.ProviderResponse{}, goerr.Wrap(err, "failed to render prompt", goerr.V("model", p.model.Name))
	}
	system, user := splitForSession(messages)

	session, err := p.client.NewSession(ctx,
		gollem.WithSessionContentType(gollem.ContentTypeJSON),
		gollem.WithSessionResponseSchema(scriptResponseSchema()),
		gollem.WithSessionSystemPrompt(system),
	)
	if err != nil {
		return ports.ProviderResponse{}, goerr.Wrap(err, "failed to create LLM session", goerr.V("model", p.model.Name))
	}

	resp, err := session.GenerateContent(ctx, gollem.Text(user))
	if err != nil {
		return ports.ProviderResponse{}, goerr.Wrap(err, "failed to generate content from LLM", goerr.V("model", p.model.Name))
	}
	if resp == nil || len(resp.Texts) == 0 {
		return ports.ProviderResponse{}, goerr.Wrap(domain.ErrMalformedResponse, "LLM returned no text", goerr.V("model", p.model.Name))
	}

	content := strings.Join(resp.Texts, "")
	result, err := parseScriptJSON(content)
	if err != nil {
		return ports.ProviderResponse{}, err
	}
	return ports.ProviderResponse{
		Code:       result.Code,
		ScriptType: result.ScriptType,
		Location:   result.Location,
		Raw:        content,
	}, nil
}

// splitForSession folds system messages into the session prompt and the
// rest into the single user input.
func splitForSession(messages []domain.PromptMessage) (string, string) {
	var system, user []string
	for _, msg := range messages {
		if strings.EqualFold(msg.Role, "system") {
			system = append(system, msg.Content)
			continue
		}
		user = append(user, msg.Content)
	}
	return strings.Join(system, "\n\n"), strings.Join(user, "\n\n")
}

// scriptResponseSchema describes the {"code","script_type","location"} object.
func scriptResponseSchema() *gollem.Parameter {
	return &gollem.Parameter{
		Title:       "RobloxScript",
		Description: "A generated Roblox Lua script and where to put it",
		Type:        gollem.TypeObject,
		Properties: map[string]*gollem.Parameter{
			"code": {
				Type:        gollem.TypeString,
				Description: "Complete, commented Roblox Lua source",
				Required:    true,
			},
			"script_type": {
				Type:        gollem.TypeString,
				Description: "One of Script, LocalScript or ModuleScript",
				Required:    true,
			},
			"location": {
				Type:        gollem.TypeString,
				Description: "Where to place the script, e.g. ServerScriptService or StarterGui",
				Required:    true,
			},
		},
	}
}
