package helpers

// Error messages
const (
	ErrConfigLoaderUnavailable = "config loader unavailable"
	ErrDraftsDisabled          = "draft spool is disabled (drafts.enabled: false)"
	ErrKeyRequired             = "--key is required"
)

// User messages
const (
	MsgConfigurationValid = "Configuration valid"
	MsgNoHistoryRecorded  = "No generations yet. Try `robloxcoder examples` for ideas."
	MsgNoDrafts           = "No unsaved generations."
	MsgHistoryCleared     = "History cleared."
	MsgCancelled          = "Cancelled."
	MsgCopied             = "Copied!"
)
