package app

import (
	"context"
	"io"
	"os"

	"github.com/m-mizutani/goerr/v2"

	"github.com/webcreatorLuke/roblox-code-bot/internal/application/doctor"
	"github.com/webcreatorLuke/roblox-code-bot/internal/application/generation"
	"github.com/webcreatorLuke/roblox-code-bot/internal/application/selection"
	"github.com/webcreatorLuke/roblox-code-bot/internal/application/session"
	"github.com/webcreatorLuke/roblox-code-bot/internal/domain"
	"github.com/webcreatorLuke/roblox-code-bot/internal/infrastructure/ai"
	"github.com/webcreatorLuke/roblox-code-bot/internal/infrastructure/cache"
	"github.com/webcreatorLuke/roblox-code-bot/internal/infrastructure/clipboard"
	"github.com/webcreatorLuke/roblox-code-bot/internal/infrastructure/config"
	"github.com/webcreatorLuke/roblox-code-bot/internal/infrastructure/store"
	"github.com/webcreatorLuke/roblox-code-bot/internal/pkg/logger"
	"github.com/webcreatorLuke/roblox-code-bot/internal/ports"
)

// Options controls how the container is built.
type Options struct {
	ConfigPath string
	Verbose    bool
	JSONLogs   bool
	// LogWriter receives log output. Defaults to stderr.
	LogWriter io.Writer
	// Ephemeral keeps history in memory regardless of storage.backend.
	Ephemeral bool

	// Overrides for tests.
	ConfigProvider  ports.ConfigProvider
	ProviderFactory ports.ProviderFactory
	Repository      ports.GenerationRepository
	Clipboard       ports.Clipboard
}

// Container wires up application services with infrastructure adapters.
type Container struct {
	Config         domain.Config
	ConfigProvider ports.ConfigProvider
	ConfigLoader   *config.FileLoader
	Logger         *logger.SlogLogger

	State        *session.State
	Synchronizer *selection.Synchronizer
	Orchestrator *generation.Orchestrator
	Doctor       *doctor.Service

	Repository ports.GenerationRepository
	Drafts     ports.DraftSpool
	Clipboard  ports.Clipboard
}

// BuildContainer constructs the dependency graph.
func BuildContainer(ctx context.Context, opts Options) (*Container, error) {
	out := opts.LogWriter
	if out == nil {
		out = os.Stderr
	}
	log := logger.New(out, logger.Options{Verbose: opts.Verbose, JSON: opts.JSONLogs})

	loader := config.NewFileLoader(opts.ConfigPath)
	var cfgProvider ports.ConfigProvider = loader
	if opts.ConfigProvider != nil {
		cfgProvider = opts.ConfigProvider
	}
	cfg, err := cfgProvider.Load(ctx)
	if err != nil {
		return nil, err
	}
	timeout, err := cfg.GenerationTimeout()
	if err != nil {
		return nil, err
	}

	repo := opts.Repository
	if repo == nil {
		storage := cfg.Storage
		if opts.Ephemeral {
			storage.Backend = domain.BackendMemory
		}
		repo, err = store.Open(ctx, storage)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to open generation store", goerr.V("backend", storage.Backend))
		}
	}

	var drafts ports.DraftSpool
	if cfg.Drafts.Enabled {
		drafts = cache.NewFromSettings(&cfg)
	}

	var clip ports.Clipboard = clipboard.New()
	if opts.Clipboard != nil {
		clip = opts.Clipboard
	}

	var factory ports.ProviderFactory = ai.NewFactory()
	if opts.ProviderFactory != nil {
		factory = opts.ProviderFactory
	}

	state := session.New()
	syncer := selection.New(state, repo, log, cfg.GetHistoryLimit())
	orchestrator := &generation.Orchestrator{
		State:           state,
		ConfigProvider:  cfgProvider,
		ProviderFactory: factory,
		Repository:      repo,
		Synchronizer:    syncer,
		Drafts:          drafts,
		Clipboard:       clip,
		Logger:          log,
		Timeout:         timeout,
	}

	return &Container{
		Config:         cfg,
		ConfigProvider: cfgProvider,
		ConfigLoader:   loader,
		Logger:         log,
		State:          state,
		Synchronizer:   syncer,
		Orchestrator:   orchestrator,
		Doctor: &doctor.Service{
			ConfigProvider: cfgProvider,
			Repository:     repo,
			Drafts:         drafts,
			Clipboard:      clip,
		},
		Repository: repo,
		Drafts:     drafts,
		Clipboard:  clip,
	}, nil
}

// Close releases the store.
func (c *Container) Close() error {
	if c.Repository == nil {
		return nil
	}
	return c.Repository.Close()
}
