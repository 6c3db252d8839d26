package config

import (
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/webcreatorLuke/roblox-code-bot/internal/domain"
)

// Validate ensures config structure is consistent.
func Validate(cfg domain.Config) error {
	if len(cfg.Models) == 0 {
		return goerr.New("at least one model must be configured")
	}
	seen := make(map[string]bool, len(cfg.Models))
	for _, model := range cfg.Models {
		if err := validateModel(model); err != nil {
			return err
		}
		if seen[model.Name] {
			return goerr.New("duplicate model name", goerr.V("model", model.Name))
		}
		seen[model.Name] = true
	}
	if err := cfg.ValidateConsistency(); err != nil {
		return goerr.Wrap(err, "invalid preferences")
	}
	if err := validateGeneration(cfg.Generation); err != nil {
		return err
	}
	if err := validateStorage(cfg.Storage); err != nil {
		return err
	}
	if err := validateDrafts(cfg.Drafts); err != nil {
		return err
	}
	return validateServer(cfg.Server)
}

func validateModel(model domain.ModelDefinition) error {
	if strings.TrimSpace(model.Name) == "" {
		return goerr.New("model name must be set")
	}
	switch domain.ProviderKind(strings.ToLower(string(model.Provider))) {
	case "", domain.ProviderKindHTTP, domain.ProviderKindGemini, domain.ProviderKindHeuristic:
	default:
		return goerr.New("unknown model provider", goerr.V("model", model.Name), goerr.V("provider", model.Provider))
	}

	switch model.Kind() {
	case domain.ProviderKindHTTP:
		if model.Endpoint == "" {
			return goerr.New("http model requires an endpoint", goerr.V("model", model.Name))
		}
		switch model.APIFormat.GetSystemMessageMode() {
		case domain.SystemMessageModeInline, domain.SystemMessageModeSeparate:
		default:
			return goerr.New("api_format.system_message_mode must be inline|separate",
				goerr.V("model", model.Name), goerr.V("value", model.APIFormat.SystemMessageMode))
		}
		switch model.APIFormat.GetContentWrapper() {
		case domain.ContentWrapperStandard, domain.ContentWrapperAnthropic:
		default:
			return goerr.New("api_format.content_wrapper must be standard|anthropic",
				goerr.V("model", model.Name), goerr.V("value", model.APIFormat.ContentWrapper))
		}
	case domain.ProviderKindGemini:
		// An empty project is reported by doctor; the model may simply be unused.
	}
	if model.MaxTokens < 0 {
		return goerr.New("max_tokens must be >= 0", goerr.V("model", model.Name))
	}
	return nil
}

func validateGeneration(gen domain.GenerationSettings) error {
	if err := validateDuration("generation.timeout", gen.Timeout); err != nil {
		return err
	}
	if gen.HistoryLimit < 0 {
		return goerr.New("generation.history_limit must be >= 0")
	}
	return nil
}

func validateStorage(storage domain.StorageSettings) error {
	switch storage.Backend {
	case "", domain.BackendSQLite, domain.BackendMemory:
		return nil
	case domain.BackendFirestore:
		if storage.FirestoreProject == "" {
			return goerr.New("storage.firestore_project must be set for the firestore backend")
		}
		return nil
	default:
		return goerr.New(fmt.Sprintf("storage.backend must be %s|%s|%s",
			domain.BackendSQLite, domain.BackendFirestore, domain.BackendMemory),
			goerr.V("backend", storage.Backend))
	}
}

func validateDrafts(drafts domain.DraftSettings) error {
	if err := validateDuration("drafts.ttl", drafts.TTL); err != nil {
		return err
	}
	if drafts.MaxEntries < 0 {
		return goerr.New("drafts.max_entries must be >= 0")
	}
	return nil
}

func validateServer(server domain.ServerSettings) error {
	if server.Addr != "" {
		if _, _, err := net.SplitHostPort(server.Addr); err != nil {
			return goerr.Wrap(err, "server.addr must be host:port", goerr.V("addr", server.Addr))
		}
	}
	return validateDuration("server.read_header_timeout", server.ReadHeaderTimeout)
}

func validateDuration(field, raw string) error {
	if raw == "" || raw == "0" {
		return nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return goerr.Wrap(err, field+" invalid", goerr.V("value", raw))
	}
	if d < 0 {
		return goerr.New(field+" must not be negative", goerr.V("value", raw))
	}
	return nil
}
