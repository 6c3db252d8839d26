package doctor

import (
	"context"
	"fmt"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"

	appconfig "github.com/webcreatorLuke/roblox-code-bot/internal/application/config"
	"github.com/webcreatorLuke/roblox-code-bot/internal/domain"
	"github.com/webcreatorLuke/roblox-code-bot/internal/ports"
)

// Service runs environment diagnostics.
type Service struct {
	ConfigProvider ports.ConfigProvider
	Repository     ports.GenerationRepository
	Drafts         ports.DraftSpool
	Clipboard      ports.Clipboard
}

// Run executes checks and returns a report. Only a config load failure is
// returned as an error; every other problem becomes a check entry.
func (s *Service) Run(ctx context.Context) (domain.HealthReport, error) {
	cfg, err := s.ConfigProvider.Load(ctx)
	if err != nil {
		return domain.HealthReport{Checks: []domain.HealthCheck{
			fail("Config file", fmt.Sprintf("load failed: %v", err)),
		}}, err
	}

	checks := []domain.HealthCheck{ok("Config file", fmt.Sprintf("format version %s", cfg.ConfigFormatVersion))}
	if err := appconfig.Validate(cfg); err != nil {
		checks = append(checks, fail("Config validation", err.Error()))
	} else {
		checks = append(checks, ok("Config validation", fmt.Sprintf("%d models configured", len(cfg.Models))))
	}

	// Independent probes run concurrently; each writes its own slot.
	probes := []func(context.Context) domain.HealthCheck{
		func(ctx context.Context) domain.HealthCheck { return s.storeCheck(ctx, cfg.Storage) },
		func(ctx context.Context) domain.HealthCheck { return s.draftCheck(ctx) },
		func(context.Context) domain.HealthCheck { return s.clipboardCheck() },
	}
	results := make([]domain.HealthCheck, len(probes))
	eg, egCtx := errgroup.WithContext(ctx)
	for i, probe := range probes {
		eg.Go(func() error {
			results[i] = probe(egCtx)
			return nil
		})
	}
	_ = eg.Wait()

	checks = append(checks, results...)
	checks = append(checks, modelChecks(cfg)...)
	return domain.HealthReport{Checks: checks}, nil
}

func (s *Service) storeCheck(ctx context.Context, storage domain.StorageSettings) domain.HealthCheck {
	name := fmt.Sprintf("Store (%s)", backendName(storage.Backend))
	if s.Repository == nil {
		return warn(name, "store not initialized")
	}
	if err := s.Repository.Ping(ctx); err != nil {
		return fail(name, err.Error())
	}
	records, err := s.Repository.List(ctx, 1)
	if err != nil {
		return fail(name, err.Error())
	}
	if len(records) == 0 {
		return ok(name, "reachable, no generations yet")
	}
	return ok(name, fmt.Sprintf("reachable, latest %s", records[0].Timestamp()))
}

func (s *Service) draftCheck(ctx context.Context) domain.HealthCheck {
	if s.Drafts == nil {
		return warn("Drafts", "draft spool disabled")
	}
	drafts, err := s.Drafts.List(ctx)
	if err != nil {
		return fail("Drafts", err.Error())
	}
	if len(drafts) > 0 {
		return warn("Drafts", fmt.Sprintf("%d unsaved generations, run `robloxcoder drafts retry`", len(drafts)))
	}
	return ok("Drafts", "no unsaved generations")
}

func (s *Service) clipboardCheck() domain.HealthCheck {
	if s.Clipboard == nil || !s.Clipboard.Enabled() {
		return warn("Clipboard", "no clipboard tool found (pbcopy, wl-copy, xclip, xsel)")
	}
	return ok("Clipboard", "available")
}

func modelChecks(cfg domain.Config) []domain.HealthCheck {
	var checks []domain.HealthCheck
	for _, model := range cfg.Models {
		name := "Model " + model.Name
		switch model.Kind() {
		case domain.ProviderKindHTTP:
			if model.AuthEnvVar != "" && os.Getenv(model.AuthEnvVar) == "" {
				checks = append(checks, warn(name, model.AuthEnvVar+" missing"))
				continue
			}
			checks = append(checks, ok(name, "http "+model.Endpoint))
		case domain.ProviderKindGemini:
			if strings.TrimSpace(model.Project) == "" {
				checks = append(checks, warn(name, "gemini project not set"))
				continue
			}
			checks = append(checks, ok(name, fmt.Sprintf("gemini %s/%s", model.Project, model.Location)))
		default:
			checks = append(checks, ok(name, "offline templates"))
		}
	}
	return checks
}

func backendName(backend string) string {
	if backend == "" {
		return domain.BackendSQLite
	}
	return backend
}

func ok(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthOK, Details: details}
}

func warn(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthWarn, Details: details}
}

func fail(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthError, Details: details}
}
