package domain

// Config mirrors ~/.robloxcoder/config.yaml.
type Config struct {
	ConfigFormatVersion string             `yaml:"config_format_version"`
	Preferences         Preferences        `yaml:"preferences"`
	Models              []ModelDefinition  `yaml:"models"`
	Generation          GenerationSettings `yaml:"generation"`
	Storage             StorageSettings    `yaml:"storage"`
	Drafts              DraftSettings      `yaml:"drafts"`
	Server              ServerSettings     `yaml:"server"`
	Telemetry           TelemetrySettings  `yaml:"telemetry"`
}

// Preferences captures user level toggles.
type Preferences struct {
	DefaultModel   string   `yaml:"default_model"`
	FallbackModels []string `yaml:"fallback_models,omitempty"`
	CopyOnGenerate bool     `yaml:"copy_on_generate"`
}

// GenerationSettings tunes the request lifecycle.
type GenerationSettings struct {
	// Timeout bounds a single service call ("90s"). Empty or "0" waits indefinitely.
	Timeout      string `yaml:"timeout,omitempty"`
	HistoryLimit int    `yaml:"history_limit"`
}

// StorageSettings selects and configures the generation store.
type StorageSettings struct {
	Backend          string `yaml:"backend"`
	SQLitePath       string `yaml:"sqlite_path,omitempty"`
	FirestoreProject string `yaml:"firestore_project,omitempty"`
	CollectionPrefix string `yaml:"collection_prefix,omitempty"`
}

// DraftSettings controls the spool of generations that failed to persist.
type DraftSettings struct {
	Enabled    bool   `yaml:"enabled"`
	Dir        string `yaml:"dir,omitempty"`
	TTL        string `yaml:"ttl"`
	MaxEntries int    `yaml:"max_entries"`
}

// ServerSettings configures `robloxcoder serve`.
type ServerSettings struct {
	Addr              string `yaml:"addr"`
	ReadHeaderTimeout string `yaml:"read_header_timeout"`
}

// TelemetrySettings configures error reporting.
type TelemetrySettings struct {
	SentryDSN   string `yaml:"sentry_dsn,omitempty"`
	Environment string `yaml:"environment,omitempty"`
}

// Storage backends.
const (
	BackendSQLite    = "sqlite"
	BackendFirestore = "firestore"
	BackendMemory    = "memory"
)
