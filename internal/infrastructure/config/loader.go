package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"gopkg.in/yaml.v3"

	"github.com/webcreatorLuke/roblox-code-bot/assets"
	"github.com/webcreatorLuke/roblox-code-bot/internal/domain"
	"github.com/webcreatorLuke/roblox-code-bot/internal/pkg/filesystem"
	"github.com/webcreatorLuke/roblox-code-bot/internal/ports"
)

// Environment variables read by the loader.
const (
	EnvConfigPath = "ROBLOXCODER_CONFIG"
	EnvStore      = "ROBLOXCODER_STORE"
	EnvSentryDSN  = "ROBLOXCODER_SENTRY_DSN"
)

// FileLoader loads YAML configuration from ~/.robloxcoder/config.yaml
// (overridable via ROBLOXCODER_CONFIG).
type FileLoader struct {
	overridePath string
}

// NewFileLoader builds a new loader. An empty path uses the default location.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{overridePath: path}
}

// Load implements ports.ConfigProvider.
func (l *FileLoader) Load(context.Context) (domain.Config, error) {
	path := l.resolvePath()
	if err := ensureConfigDir(path); err != nil {
		return domain.Config{}, goerr.Wrap(err, "failed to create config directory", goerr.V("path", path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return domain.Config{}, goerr.Wrap(err, "failed to read config", goerr.V("path", path))
		}
		if err := os.WriteFile(path, assets.DefaultConfigYAML, domain.SecureFilePermissions); err != nil {
			return domain.Config{}, goerr.Wrap(err, "failed to write default config", goerr.V("path", path))
		}
		data = assets.DefaultConfigYAML
	}

	var cfg domain.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return domain.Config{}, goerr.Wrap(err, "failed to parse config", goerr.V("path", path))
	}

	return applyEnv(hydrateDefaults(cfg)), nil
}

// Path returns the resolved config file path.
func (l *FileLoader) Path() string {
	return l.resolvePath()
}

// Save writes the given config back to disk.
func (l *FileLoader) Save(cfg domain.Config) error {
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return goerr.Wrap(err, "failed to encode config")
	}
	path := l.resolvePath()
	if err := ensureConfigDir(path); err != nil {
		return goerr.Wrap(err, "failed to create config directory", goerr.V("path", path))
	}
	if err := os.WriteFile(path, raw, domain.SecureFilePermissions); err != nil {
		return goerr.Wrap(err, "failed to write config", goerr.V("path", path))
	}
	return nil
}

// Backup copies the current config file to a timestamped backup.
func (l *FileLoader) Backup() (string, error) {
	path := l.resolvePath()
	data, err := os.ReadFile(path)
	if err != nil {
		return "", goerr.Wrap(err, "failed to read config", goerr.V("path", path))
	}
	backup := fmt.Sprintf("%s.%s.bak", path, time.Now().Format("20060102T150405"))
	if err := os.WriteFile(backup, data, domain.SecureFilePermissions); err != nil {
		return "", goerr.Wrap(err, "failed to write backup", goerr.V("path", backup))
	}
	return backup, nil
}

func (l *FileLoader) resolvePath() string {
	if l.overridePath != "" {
		return filesystem.ExpandPath(l.overridePath)
	}
	if custom := os.Getenv(EnvConfigPath); custom != "" {
		return filesystem.ExpandPath(custom)
	}
	return filepath.Join(filesystem.AppDir(), "config.yaml")
}

func ensureConfigDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions)
}

// Default returns the embedded default configuration.
func Default() (domain.Config, error) {
	var cfg domain.Config
	if err := yaml.Unmarshal(assets.DefaultConfigYAML, &cfg); err != nil {
		return domain.Config{}, goerr.Wrap(err, "embedded default config is invalid")
	}
	return hydrateDefaults(cfg), nil
}

func hydrateDefaults(cfg domain.Config) domain.Config {
	if cfg.ConfigFormatVersion == "" {
		cfg.ConfigFormatVersion = "1"
	}
	if len(cfg.Models) == 0 {
		cfg.Models = []domain.ModelDefinition{{Name: "offline", Provider: domain.ProviderKindHeuristic}}
	}
	if cfg.Preferences.DefaultModel == "" {
		cfg.Preferences.DefaultModel = cfg.Models[0].Name
	}
	if cfg.Generation.HistoryLimit <= 0 {
		cfg.Generation.HistoryLimit = domain.HistoryLimit
	}
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = domain.BackendSQLite
	}
	if cfg.Drafts.TTL == "" {
		cfg.Drafts.TTL = domain.DefaultDraftTTL.String()
	}
	if cfg.Drafts.MaxEntries <= 0 {
		cfg.Drafts.MaxEntries = domain.DefaultMaxDraftEntries
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = domain.DefaultServerAddr
	}
	for i := range cfg.Models {
		if cfg.Models[i].Kind() == domain.ProviderKindGemini && cfg.Models[i].Location == "" {
			cfg.Models[i].Location = domain.DefaultGeminiLocation
		}
	}
	return cfg
}

// applyEnv lets the environment override deployment-specific settings.
func applyEnv(cfg domain.Config) domain.Config {
	if backend := os.Getenv(EnvStore); backend != "" {
		cfg.Storage.Backend = backend
	}
	if dsn := os.Getenv(EnvSentryDSN); dsn != "" {
		cfg.Telemetry.SentryDSN = dsn
	}
	return cfg
}

var _ ports.ConfigProvider = (*FileLoader)(nil)
