// Package ai provides the provider factory and the provider implementations
// that turn a prompt into a Roblox script.
//
// Three adapters exist, selected by the model's provider kind:
//   - http: generic JSON-over-HTTP client driven by the model's APIFormat
//     (Anthropic, OpenAI, Ollama or any compatible API)
//   - gemini: Vertex AI Gemini through gollem with a structured response schema
//   - heuristic: offline templates, used when no service is configured
//
// All adapters answer with the same {"code","script_type","location"} triple.
package ai

import (
	"context"
	"net/http"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gollem/llm/gemini"

	"github.com/webcreatorLuke/roblox-code-bot/internal/domain"
	"github.com/webcreatorLuke/roblox-code-bot/internal/ports"
)

// LLMClientBuilder creates a gollem client for a gemini model.
type LLMClientBuilder func(ctx context.Context, model domain.ModelDefinition) (gollem.LLMClient, error)

// Factory creates provider instances based on model definitions.
// It keeps one HTTP client and caches gollem clients per model.
type Factory struct {
	httpClient *http.Client
	buildLLM   LLMClientBuilder

	mu         sync.Mutex
	llmClients map[string]gollem.LLMClient
}

// FactoryOption configures a Factory.
type FactoryOption func(*Factory)

// WithHTTPClient replaces the shared HTTP client.
func WithHTTPClient(client *http.Client) FactoryOption {
	return func(f *Factory) { f.httpClient = client }
}

// WithLLMClientBuilder replaces how gemini clients are created.
func WithLLMClientBuilder(builder LLMClientBuilder) FactoryOption {
	return func(f *Factory) { f.buildLLM = builder }
}

// NewFactory creates a provider factory with a configured HTTP client.
func NewFactory(opts ...FactoryOption) *Factory {
	f := &Factory{
		httpClient: &http.Client{Timeout: domain.DefaultHTTPClientTimeout},
		buildLLM:   newGeminiClient,
		llmClients: make(map[string]gollem.LLMClient),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// ForModel returns the provider for model.
func (f *Factory) ForModel(ctx context.Context, model domain.ModelDefinition) (ports.Provider, error) {
	switch model.Kind() {
	case domain.ProviderKindHTTP:
		if model.Endpoint == "" {
			return nil, goerr.New("http model requires an endpoint", goerr.V("model", model.Name))
		}
		return newHTTPProvider(model, f.httpClient), nil
	case domain.ProviderKindGemini:
		client, err := f.llmClient(ctx, model)
		if err != nil {
			return nil, err
		}
		return newGeminiProvider(model, client), nil
	default:
		return newHeuristicProvider(model), nil
	}
}

func (f *Factory) llmClient(ctx context.Context, model domain.ModelDefinition) (gollem.LLMClient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if client, ok := f.llmClients[model.Name]; ok {
		return client, nil
	}
	client, err := f.buildLLM(ctx, model)
	if err != nil {
		return nil, err
	}
	f.llmClients[model.Name] = client
	return client, nil
}

func newGeminiClient(ctx context.Context, model domain.ModelDefinition) (gollem.LLMClient, error) {
	if model.Project == "" {
		return nil, goerr.New("gemini model requires a project", goerr.V("model", model.Name))
	}
	location := model.Location
	if location == "" {
		location = domain.DefaultGeminiLocation
	}

	var opts []gemini.Option
	if model.ModelID != "" {
		opts = append(opts, gemini.WithModel(model.ModelID))
	}
	client, err := gemini.New(ctx, model.Project, location, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Gemini client",
			goerr.V("project", model.Project), goerr.V("location", location))
	}
	return client, nil
}

var _ ports.ProviderFactory = (*Factory)(nil)
