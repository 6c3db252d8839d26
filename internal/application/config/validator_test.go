package config

import (
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/webcreatorLuke/roblox-code-bot/internal/domain"
)

func validConfig() domain.Config {
	return domain.Config{
		Preferences: domain.Preferences{DefaultModel: "offline", FallbackModels: []string{"gpt"}},
		Models: []domain.ModelDefinition{
			{Name: "offline", Provider: domain.ProviderKindHeuristic},
			{Name: "gpt", Endpoint: "https://api.openai.com/v1/chat/completions", AuthEnvVar: "OPENAI_API_KEY"},
		},
		Generation: domain.GenerationSettings{Timeout: "90s", HistoryLimit: 10},
		Storage:    domain.StorageSettings{Backend: domain.BackendSQLite},
		Drafts:     domain.DraftSettings{TTL: "24h", MaxEntries: 5},
		Server:     domain.ServerSettings{Addr: "127.0.0.1:8787", ReadHeaderTimeout: "5s"},
	}
}

func TestValidate(t *testing.T) {
	gt.NoError(t, Validate(validConfig()))

	cases := []struct {
		name   string
		mutate func(*domain.Config)
	}{
		{"no models", func(c *domain.Config) { c.Models = nil; c.Preferences = domain.Preferences{} }},
		{"unknown default", func(c *domain.Config) { c.Preferences.DefaultModel = "missing" }},
		{"unknown fallback", func(c *domain.Config) { c.Preferences.FallbackModels = []string{"missing"} }},
		{"duplicate model", func(c *domain.Config) { c.Models = append(c.Models, domain.ModelDefinition{Name: "gpt", Endpoint: "http://x"}) }},
		{"unknown provider", func(c *domain.Config) { c.Models[0].Provider = "bard" }},
		{"http without endpoint", func(c *domain.Config) { c.Models[1] = domain.ModelDefinition{Name: "gpt", Provider: domain.ProviderKindHTTP} }},
		{"bad system mode", func(c *domain.Config) { c.Models[1].APIFormat.SystemMessageMode = "merged" }},
		{"bad wrapper", func(c *domain.Config) { c.Models[1].APIFormat.ContentWrapper = "xml" }},
		{"bad timeout", func(c *domain.Config) { c.Generation.Timeout = "soon" }},
		{"negative timeout", func(c *domain.Config) { c.Generation.Timeout = "-1s" }},
		{"unknown backend", func(c *domain.Config) { c.Storage.Backend = "postgres" }},
		{"firestore without project", func(c *domain.Config) { c.Storage.Backend = domain.BackendFirestore }},
		{"bad draft ttl", func(c *domain.Config) { c.Drafts.TTL = "week" }},
		{"bad addr", func(c *domain.Config) { c.Server.Addr = "8787" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)
			gt.Error(t, Validate(cfg))
		})
	}
}

func TestValidateAcceptsOptionalFields(t *testing.T) {
	cfg := validConfig()
	cfg.Generation.Timeout = ""
	cfg.Drafts.TTL = "0"
	cfg.Server = domain.ServerSettings{}
	cfg.Storage = domain.StorageSettings{Backend: domain.BackendFirestore, FirestoreProject: "roblox-dev"}
	cfg.Models = append(cfg.Models, domain.ModelDefinition{Name: "gemini", Provider: domain.ProviderKindGemini})
	gt.NoError(t, Validate(cfg))
}
