package helpers

import (
	"os"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"gopkg.in/yaml.v3"

	configapp "github.com/webcreatorLuke/roblox-code-bot/internal/application/config"
	"github.com/webcreatorLuke/roblox-code-bot/internal/domain"
	configinfra "github.com/webcreatorLuke/roblox-code-bot/internal/infrastructure/config"
)

// SaveConfigWithValidation validates and saves configuration with automatic backup.
func SaveConfigWithValidation(loader *configinfra.FileLoader, cfg domain.Config) error {
	if loader == nil {
		return goerr.New(ErrConfigLoaderUnavailable)
	}
	if err := configapp.Validate(cfg); err != nil {
		return goerr.Wrap(err, "configuration validation failed")
	}
	if _, err := os.Stat(loader.Path()); err == nil {
		if _, err := loader.Backup(); err != nil {
			return goerr.Wrap(err, "failed to create configuration backup")
		}
	}
	return loader.Save(cfg)
}

// ParseYAMLValue parses a string value as YAML, falling back to literal string.
func ParseYAMLValue(input string) interface{} {
	var parsed interface{}
	if err := yaml.Unmarshal([]byte(input), &parsed); err != nil {
		return input
	}
	return parsed
}

// SplitKeyPath turns "preferences.default_model" into its segments.
func SplitKeyPath(keyPath string) []string {
	var keys []string
	for _, key := range strings.Split(keyPath, ".") {
		if key = strings.TrimSpace(key); key != "" {
			keys = append(keys, key)
		}
	}
	return keys
}

// SetNestedMapValue sets a value in a nested map using a key path.
// Returns true if successful, false otherwise.
func SetNestedMapValue(root map[string]interface{}, keyPath []string, value interface{}) bool {
	if len(keyPath) == 0 {
		return false
	}

	current := root
	for _, key := range keyPath[:len(keyPath)-1] {
		child, isMap := current[key].(map[string]interface{})
		if !isMap {
			child = map[string]interface{}{}
			current[key] = child
		}
		current = child
	}

	current[keyPath[len(keyPath)-1]] = value
	return true
}

// TraverseNestedMap retrieves a value from a nested map using a key path.
func TraverseNestedMap(data interface{}, keyPath []string) (interface{}, bool) {
	if len(keyPath) == 0 {
		return data, true
	}
	node, ok := data.(map[string]interface{})
	if !ok {
		return nil, false
	}
	next, exists := node[keyPath[0]]
	if !exists {
		return nil, false
	}
	return TraverseNestedMap(next, keyPath[1:])
}

// ConfigToMap converts the config to its YAML map form.
func ConfigToMap(cfg domain.Config) (map[string]interface{}, error) {
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to marshal config")
	}
	var cfgMap map[string]interface{}
	if err := yaml.Unmarshal(raw, &cfgMap); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal config map")
	}
	return cfgMap, nil
}

// MapToConfig converts a YAML map back to the config.
func MapToConfig(cfgMap map[string]interface{}) (domain.Config, error) {
	raw, err := yaml.Marshal(cfgMap)
	if err != nil {
		return domain.Config{}, goerr.Wrap(err, "failed to marshal config map")
	}
	var cfg domain.Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return domain.Config{}, goerr.Wrap(err, "failed to unmarshal config")
	}
	return cfg, nil
}
