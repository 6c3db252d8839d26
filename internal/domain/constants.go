package domain

import "time"

// File permissions constants
const (
	// DirectoryPermissions is the default permission for directories (rwxr-xr-x)
	DirectoryPermissions = 0o755
	// SecureFilePermissions is the permission for sensitive files (rw-------)
	SecureFilePermissions = 0o600
)

// Timeout and duration constants
const (
	// DefaultHTTPClientTimeout is the timeout for provider HTTP requests
	DefaultHTTPClientTimeout = 60 * time.Second
	// DefaultReadHeaderTimeout guards the API server against slowloris clients
	DefaultReadHeaderTimeout = 10 * time.Second
	// DefaultServerAddr is where `serve` listens when no address is configured
	DefaultServerAddr = "127.0.0.1:8787"
	// DefaultShutdownTimeout bounds graceful server shutdown
	DefaultShutdownTimeout = 10 * time.Second
	// DefaultModelTestTimeout bounds `models test`
	DefaultModelTestTimeout = 60 * time.Second
	// CopiedNoticeDuration is how long the "Copied!" notice stays visible
	CopiedNoticeDuration = 2 * time.Second
)

// History constants
const (
	// HistoryLimit is the number of most recent records a history load returns
	HistoryLimit = 10
	// HistoryTimestampLayout renders record timestamps ("Jan 2, 3:04 PM")
	HistoryTimestampLayout = "Jan 2, 3:04 PM"
)

// Draft spool constants
const (
	// DefaultDraftTTL is how long an unsaved generation is kept
	DefaultDraftTTL = 7 * 24 * time.Hour
	// DefaultMaxDraftEntries is the maximum number of unsaved generations kept
	DefaultMaxDraftEntries = 20
)

// Model configuration constants
const (
	// DefaultMaxTokens is the default maximum number of tokens
	DefaultMaxTokens = 2048
	// DefaultGeminiLocation is used when a gemini model has no location
	DefaultGeminiLocation = "us-central1"
)

// Time formats
const (
	// TimestampFormat is the standard machine-readable timestamp format
	TimestampFormat = time.RFC3339
)
