package domain

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// GetDefaultModel retrieves the default model definition from configuration
// Returns an error if the default model is not found
func (c *Config) GetDefaultModel() (ModelDefinition, error) {
	if c.Preferences.DefaultModel == "" {
		if len(c.Models) > 0 {
			return c.Models[0], nil
		}
		return ModelDefinition{}, goerr.Wrap(ErrModelNotConfigured, "no default model configured")
	}
	if model, ok := c.FindModelByName(c.Preferences.DefaultModel); ok {
		return model, nil
	}
	return ModelDefinition{}, goerr.Wrap(ErrModelNotConfigured, "default model not found in configuration",
		goerr.V("model", c.Preferences.DefaultModel))
}

// FindModelByName searches for a model by its name
func (c *Config) FindModelByName(name string) (ModelDefinition, bool) {
	for _, model := range c.Models {
		if model.Name == name {
			return model, true
		}
	}
	return ModelDefinition{}, false
}

// HasModel checks if a model with the given name exists in the configuration
func (c *Config) HasModel(name string) bool {
	_, exists := c.FindModelByName(name)
	return exists
}

// PickModel resolves an explicit override, falling back to the default model.
func (c *Config) PickModel(override string) (ModelDefinition, error) {
	if override == "" {
		return c.GetDefaultModel()
	}
	if model, ok := c.FindModelByName(override); ok {
		return model, nil
	}
	return ModelDefinition{}, goerr.Wrap(ErrModelNotConfigured, "model not configured", goerr.V("model", override))
}

// GetFallbackModels returns the configured fallback models that actually exist,
// skipping primary when it appears in the list.
func (c *Config) GetFallbackModels(primary string) []ModelDefinition {
	var fallbackModels []ModelDefinition
	for _, name := range c.Preferences.FallbackModels {
		if name == primary {
			continue
		}
		if model, exists := c.FindModelByName(name); exists {
			fallbackModels = append(fallbackModels, model)
		}
	}
	return fallbackModels
}

// GenerationTimeout parses generation.timeout. Zero means no deadline.
func (c *Config) GenerationTimeout() (time.Duration, error) {
	return parseOptionalDuration(c.Generation.Timeout)
}

// GetHistoryLimit returns how many records a history load shows.
func (c *Config) GetHistoryLimit() int {
	if c.Generation.HistoryLimit <= 0 {
		return HistoryLimit
	}
	return c.Generation.HistoryLimit
}

// GetDraftTTL returns how long unsaved drafts are kept.
func (c *Config) GetDraftTTL() time.Duration {
	ttl, err := parseOptionalDuration(c.Drafts.TTL)
	if err != nil || ttl <= 0 {
		return DefaultDraftTTL
	}
	return ttl
}

// GetDraftMaxEntries returns the spool capacity.
func (c *Config) GetDraftMaxEntries() int {
	if c.Drafts.MaxEntries <= 0 {
		return DefaultMaxDraftEntries
	}
	return c.Drafts.MaxEntries
}

// GetReadHeaderTimeout returns the HTTP server read header timeout.
func (c *Config) GetReadHeaderTimeout() time.Duration {
	timeout, err := parseOptionalDuration(c.Server.ReadHeaderTimeout)
	if err != nil || timeout <= 0 {
		return DefaultReadHeaderTimeout
	}
	return timeout
}

// ValidateConsistency reports the first model reference that points nowhere.
func (c *Config) ValidateConsistency() error {
	if name := c.Preferences.DefaultModel; name != "" && !c.HasModel(name) {
		return goerr.Wrap(ErrModelNotConfigured, "default model is not in the models list", goerr.V("model", name))
	}
	for _, name := range c.Preferences.FallbackModels {
		if !c.HasModel(name) {
			return goerr.Wrap(ErrModelNotConfigured, "fallback model is not in the models list", goerr.V("model", name))
		}
	}
	return nil
}

func parseOptionalDuration(raw string) (time.Duration, error) {
	if raw == "" || raw == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, goerr.Wrap(err, "invalid duration", goerr.V("value", raw))
	}
	return d, nil
}
