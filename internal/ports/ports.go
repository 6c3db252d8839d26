// Package ports defines the interfaces (ports) for the hexagonal architecture.
//
// This package establishes the contract between the application core and external
// adapters (infrastructure). The generation orchestrator and selection synchronizer
// depend only on these interfaces, so providers, stores and surfaces can be swapped
// without touching the core.
//
// Key architectural concepts:
//   - Ports: Interfaces defined here (e.g., Provider, GenerationRepository)
//   - Adapters: Concrete implementations in the infrastructure layer
//   - Dependency inversion: Application depends on abstractions, not implementations
package ports

import (
	"context"

	"github.com/webcreatorLuke/roblox-code-bot/internal/domain"
)

// ConfigProvider loads the latest configuration from persistent storage.
// Implementations typically read from ~/.robloxcoder/config.yaml.
type ConfigProvider interface {
	Load(context.Context) (domain.Config, error)
}

// ProviderFactory builds AI provider instances based on model definitions.
// It abstracts the creation of different provider types (HTTP APIs, Gemini, offline).
type ProviderFactory interface {
	ForModel(context.Context, domain.ModelDefinition) (Provider, error)
}

// Provider turns a natural-language request into a Roblox script.
// Each provider implementation wraps a specific AI service API.
type Provider interface {
	Name() string
	Model() domain.ModelDefinition
	Generate(context.Context, ProviderRequest) (ProviderResponse, error)
}

// ProviderRequest contains all data needed to generate a script.
type ProviderRequest struct {
	Prompt string
	Model  domain.ModelDefinition
	Debug  bool
}

// ProviderResponse is the structured triple returned by the service.
// Raw keeps the unparsed model output for debugging.
type ProviderResponse struct {
	Code       string
	ScriptType string
	Location   string
	Raw        string
}

// Result converts the response into the domain triple.
func (r ProviderResponse) Result() domain.ScriptResult {
	return domain.ScriptResult{Code: r.Code, ScriptType: r.ScriptType, Location: r.Location}
}

// GenerationRepository persists generation records.
// Create must be atomic: a record is either fully visible to List or absent.
type GenerationRepository interface {
	// List returns up to limit records, newest first.
	List(ctx context.Context, limit int) ([]domain.GenerationRecord, error)
	Create(ctx context.Context, gen domain.NewGeneration) (domain.GenerationRecord, error)
	Get(ctx context.Context, id string) (domain.GenerationRecord, error)
	Clear(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}

// DraftSpool keeps generations whose persistence failed until the user retries them.
type DraftSpool interface {
	Put(ctx context.Context, draft domain.Draft) error
	Get(ctx context.Context, key string) (domain.Draft, error)
	List(ctx context.Context) ([]domain.Draft, error)
	Delete(ctx context.Context, key string) error
}

// Clipboard provides cross-platform clipboard integration for copying artifacts.
type Clipboard interface {
	Copy(text string) error
	Enabled() bool
}

// Logger provides structured logging abstraction for the application layer.
// Implementations can route to different backends (stderr, files, external services).
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, err error, fields map[string]interface{})
}
