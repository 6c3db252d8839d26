package domain_test

import (
	"errors"
	"testing"
	"time"

	"github.com/webcreatorLuke/roblox-code-bot/internal/domain"
)

// TestConfig_GetDefaultModel tests retrieving the default model
func TestConfig_GetDefaultModel(t *testing.T) {
	tests := []struct {
		name        string
		config      domain.Config
		wantError   bool
		wantModelID string
	}{
		{
			name: "returns default model successfully",
			config: domain.Config{
				Preferences: domain.Preferences{DefaultModel: "claude"},
				Models: []domain.ModelDefinition{
					{Name: "claude", ModelID: "claude-sonnet-4-5"},
					{Name: "gpt", ModelID: "gpt-4o"},
				},
			},
			wantModelID: "claude-sonnet-4-5",
		},
		{
			name: "returns error when default model not found",
			config: domain.Config{
				Preferences: domain.Preferences{DefaultModel: "nonexistent"},
				Models:      []domain.ModelDefinition{{Name: "claude", ModelID: "claude-sonnet-4-5"}},
			},
			wantError: true,
		},
		{
			name: "falls back to first model when no default configured",
			config: domain.Config{
				Models: []domain.ModelDefinition{{Name: "gemini", ModelID: "gemini-2.0-flash"}},
			},
			wantModelID: "gemini-2.0-flash",
		},
		{
			name:      "returns error when no models configured",
			config:    domain.Config{},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model, err := tt.config.GetDefaultModel()

			if tt.wantError {
				if !errors.Is(err, domain.ErrModelNotConfigured) {
					t.Errorf("expected ErrModelNotConfigured, got %v", err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if model.ModelID != tt.wantModelID {
				t.Errorf("got model ID %s, want %s", model.ModelID, tt.wantModelID)
			}
		})
	}
}

func TestConfig_PickModel(t *testing.T) {
	config := domain.Config{
		Preferences: domain.Preferences{DefaultModel: "claude"},
		Models:      []domain.ModelDefinition{{Name: "claude"}, {Name: "offline"}},
	}

	model, err := config.PickModel("offline")
	if err != nil || model.Name != "offline" {
		t.Fatalf("override not honoured: %v %v", model, err)
	}

	model, err = config.PickModel("")
	if err != nil || model.Name != "claude" {
		t.Fatalf("default not used: %v %v", model, err)
	}

	if _, err := config.PickModel("missing"); !errors.Is(err, domain.ErrModelNotConfigured) {
		t.Errorf("expected ErrModelNotConfigured, got %v", err)
	}
}

// TestConfig_ValidateConsistency tests configuration consistency checks
func TestConfig_ValidateConsistency(t *testing.T) {
	tests := []struct {
		name      string
		config    domain.Config
		wantError bool
	}{
		{
			name: "valid configuration",
			config: domain.Config{
				Preferences: domain.Preferences{DefaultModel: "claude", FallbackModels: []string{"gpt"}},
				Models:      []domain.ModelDefinition{{Name: "claude"}, {Name: "gpt"}},
			},
		},
		{
			name: "invalid: default model doesn't exist",
			config: domain.Config{
				Preferences: domain.Preferences{DefaultModel: "nonexistent"},
				Models:      []domain.ModelDefinition{{Name: "claude"}},
			},
			wantError: true,
		},
		{
			name: "invalid: fallback model doesn't exist",
			config: domain.Config{
				Preferences: domain.Preferences{DefaultModel: "claude", FallbackModels: []string{"nonexistent"}},
				Models:      []domain.ModelDefinition{{Name: "claude"}},
			},
			wantError: true,
		},
		{
			name: "invalid: default model set but no models configured",
			config: domain.Config{
				Preferences: domain.Preferences{DefaultModel: "claude"},
			},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.ValidateConsistency()
			if tt.wantError && err == nil {
				t.Error("expected error but got none")
			}
			if !tt.wantError && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

// TestConfig_GetFallbackModels tests retrieving fallback models
func TestConfig_GetFallbackModels(t *testing.T) {
	config := domain.Config{
		Preferences: domain.Preferences{
			FallbackModels: []string{"gpt", "nonexistent", "claude", "ollama"},
		},
		Models: []domain.ModelDefinition{{Name: "claude"}, {Name: "gpt"}, {Name: "ollama"}},
	}

	fallbacks := config.GetFallbackModels("claude")

	if len(fallbacks) != 2 {
		t.Fatalf("expected 2 fallback models, got %d", len(fallbacks))
	}
	if fallbacks[0].Name != "gpt" || fallbacks[1].Name != "ollama" {
		t.Errorf("unexpected fallback order: %v", fallbacks)
	}
}

func TestConfig_Durations(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    time.Duration
		wantErr bool
	}{
		{name: "empty means no deadline", raw: "", want: 0},
		{name: "zero means no deadline", raw: "0", want: 0},
		{name: "parses go duration", raw: "90s", want: 90 * time.Second},
		{name: "rejects garbage", raw: "soon", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := domain.Config{Generation: domain.GenerationSettings{Timeout: tt.raw}}
			got, err := config.GenerationTimeout()
			if tt.wantErr {
				if err == nil {
					t.Error("expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}

	var empty domain.Config
	if empty.GetHistoryLimit() != domain.HistoryLimit {
		t.Errorf("history limit default = %d", empty.GetHistoryLimit())
	}
	if empty.GetDraftTTL() != domain.DefaultDraftTTL {
		t.Errorf("draft ttl default = %v", empty.GetDraftTTL())
	}
	if empty.GetReadHeaderTimeout() != domain.DefaultReadHeaderTimeout {
		t.Errorf("read header timeout default = %v", empty.GetReadHeaderTimeout())
	}
}

func TestModelDefinition_Kind(t *testing.T) {
	tests := []struct {
		model domain.ModelDefinition
		want  domain.ProviderKind
	}{
		{model: domain.ModelDefinition{Provider: "Gemini"}, want: domain.ProviderKindGemini},
		{model: domain.ModelDefinition{Endpoint: "https://api.anthropic.com/v1/messages"}, want: domain.ProviderKindHTTP},
		{model: domain.ModelDefinition{Provider: "heuristic", Endpoint: "http://localhost"}, want: domain.ProviderKindHeuristic},
		{model: domain.ModelDefinition{}, want: domain.ProviderKindHeuristic},
	}

	for _, tt := range tests {
		if got := tt.model.Kind(); got != tt.want {
			t.Errorf("Kind(%+v) = %s, want %s", tt.model, got, tt.want)
		}
	}
}
