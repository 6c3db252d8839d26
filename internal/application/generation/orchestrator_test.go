package generation_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/webcreatorLuke/roblox-code-bot/internal/application/generation"
	"github.com/webcreatorLuke/roblox-code-bot/internal/application/selection"
	"github.com/webcreatorLuke/roblox-code-bot/internal/application/session"
	"github.com/webcreatorLuke/roblox-code-bot/internal/domain"
	"github.com/webcreatorLuke/roblox-code-bot/internal/infrastructure/cache"
	"github.com/webcreatorLuke/roblox-code-bot/internal/infrastructure/store"
	"github.com/webcreatorLuke/roblox-code-bot/internal/pkg/logger"
	"github.com/webcreatorLuke/roblox-code-bot/internal/ports"
)

var doubleJump = ports.ProviderResponse{
	Code:       "local UIS = game:GetService(\"UserInputService\")\n-- double jump",
	ScriptType: "LocalScript",
	Location:   "StarterPlayer.StarterCharacterScripts",
}

type stubConfigProvider struct {
	cfg domain.Config
	err error
}

func (s stubConfigProvider) Load(context.Context) (domain.Config, error) {
	return s.cfg, s.err
}

type stubProvider struct {
	name  string
	calls *atomic.Int32
	fn    func(ctx context.Context, req ports.ProviderRequest) (ports.ProviderResponse, error)
}

func (s stubProvider) Name() string                  { return s.name }
func (s stubProvider) Model() domain.ModelDefinition { return domain.ModelDefinition{Name: s.name} }
func (s stubProvider) Generate(ctx context.Context, req ports.ProviderRequest) (ports.ProviderResponse, error) {
	if s.calls != nil {
		s.calls.Add(1)
	}
	return s.fn(ctx, req)
}

type stubProviderFactory struct {
	providers map[string]ports.Provider
}

func (f stubProviderFactory) ForModel(_ context.Context, model domain.ModelDefinition) (ports.Provider, error) {
	p, ok := f.providers[model.Name]
	if !ok {
		return nil, fmt.Errorf("no provider for %s", model.Name)
	}
	return p, nil
}

type stubClipboard struct {
	mu     sync.Mutex
	copied string
}

func (c *stubClipboard) Copy(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.copied = text
	return nil
}
func (c *stubClipboard) Enabled() bool { return true }

// flakyRepo fails Create while failing is set.
type flakyRepo struct {
	*store.MemoryStore
	failing atomic.Bool
}

func (r *flakyRepo) Create(ctx context.Context, gen domain.NewGeneration) (domain.GenerationRecord, error) {
	if r.failing.Load() {
		return domain.GenerationRecord{}, errors.New("database is locked")
	}
	return r.MemoryStore.Create(ctx, gen)
}

func singleModelConfig() domain.Config {
	return domain.Config{
		Preferences: domain.Preferences{DefaultModel: "primary"},
		Models:      []domain.ModelDefinition{{Name: "primary", ModelID: "primary-model"}},
	}
}

type fixture struct {
	state *session.State
	repo  ports.GenerationRepository
	sync  *selection.Synchronizer
	orch  *generation.Orchestrator
	calls *atomic.Int32
}

func newFixture(t *testing.T, repo ports.GenerationRepository, fn func(context.Context, ports.ProviderRequest) (ports.ProviderResponse, error)) *fixture {
	t.Helper()
	if repo == nil {
		repo = store.NewMemory()
	}
	state := session.New()
	log := logger.Discard()
	syncer := selection.New(state, repo, log, domain.HistoryLimit)
	calls := &atomic.Int32{}

	orch := &generation.Orchestrator{
		State:          state,
		ConfigProvider: stubConfigProvider{cfg: singleModelConfig()},
		ProviderFactory: stubProviderFactory{providers: map[string]ports.Provider{
			"primary": stubProvider{name: "primary", calls: calls, fn: fn},
		}},
		Repository:   repo,
		Synchronizer: syncer,
		Drafts:       cache.NewFileDraftSpool(cache.WithDir(t.TempDir())),
		Logger:       log,
	}
	return &fixture{state: state, repo: repo, sync: syncer, orch: orch, calls: calls}
}

func respond(resp ports.ProviderResponse, err error) func(context.Context, ports.ProviderRequest) (ports.ProviderResponse, error) {
	return func(context.Context, ports.ProviderRequest) (ports.ProviderResponse, error) {
		return resp, err
	}
}

func TestSubmitDoubleJump(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil, respond(doubleJump, nil))
	f.state.SetPromptInput("Make a double jump script")

	res, err := f.orch.Submit(ctx, "Make a double jump script")
	gt.NoError(t, err).Required()
	gt.Value(t, res.Status).Equal(generation.StatusDone)
	gt.Value(t, res.ModelUsed).Equal("primary")

	rec := res.Record
	gt.Value(t, rec.Category).Equal(domain.CategoryGameMechanic)
	gt.Value(t, rec.ArtifactKind).Equal(domain.KindLocalScript)
	gt.Value(t, rec.Placement).Equal("StarterPlayer.StarterCharacterScripts")
	gt.Value(t, rec.Artifact).Equal(
		"-- Go in: StarterPlayer.StarterCharacterScripts\n-- This is a: LocalScript\n\n" + doubleJump.Code)

	snap := f.state.Snapshot()
	gt.Value(t, snap.Phase).Equal(session.PhaseIdle)
	gt.Value(t, snap.SelectedID()).Equal(rec.ID)
	gt.Value(t, snap.View).Equal(domain.ViewOf(rec))
	gt.Value(t, snap.PromptInput).Equal("")
	gt.Value(t, snap.LastOutcome).Equal(session.OutcomeDone)
	gt.Array(t, snap.History).Length(1)
	gt.Value(t, snap.History[0].ID).Equal(rec.ID)
}

func TestSubmitSkips(t *testing.T) {
	ctx := context.Background()

	t.Run("blank prompt", func(t *testing.T) {
		f := newFixture(t, nil, respond(doubleJump, nil))
		for _, prompt := range []string{"", "   ", "\n\t"} {
			res, err := f.orch.Submit(ctx, prompt)
			gt.NoError(t, err)
			gt.Value(t, res.Status).Equal(generation.StatusSkipped)
		}
		gt.Value(t, f.calls.Load()).Equal(int32(0))
	})

	t.Run("second submit while pending", func(t *testing.T) {
		started := make(chan struct{})
		release := make(chan struct{})
		f := newFixture(t, nil, func(ctx context.Context, _ ports.ProviderRequest) (ports.ProviderResponse, error) {
			close(started)
			<-release
			return doubleJump, nil
		})

		done := make(chan generation.Result, 1)
		go func() {
			res, _ := f.orch.Submit(ctx, "Make a double jump script")
			done <- res
		}()
		<-started
		gt.Value(t, f.orch.Phase()).Equal(session.PhasePending)

		res, err := f.orch.Submit(ctx, "Create a simple obby checkpoint system")
		gt.NoError(t, err)
		gt.Value(t, res.Status).Equal(generation.StatusSkipped)
		gt.Value(t, f.state.Snapshot().InFlight.Prompt).Equal("Make a double jump script")

		close(release)
		first := <-done
		gt.Value(t, first.Status).Equal(generation.StatusDone)
		gt.Value(t, f.calls.Load()).Equal(int32(1))

		list, err := f.repo.List(ctx, 0)
		gt.NoError(t, err).Required()
		gt.Array(t, list).Length(1)
	})

	t.Run("concurrent submits admit exactly one", func(t *testing.T) {
		release := make(chan struct{})
		f := newFixture(t, nil, func(ctx context.Context, _ ports.ProviderRequest) (ports.ProviderResponse, error) {
			<-release
			return doubleJump, nil
		})

		var wg sync.WaitGroup
		var skipped atomic.Int32
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				res, _ := f.orch.Submit(ctx, fmt.Sprintf("prompt %d", i))
				if res.Status == generation.StatusSkipped {
					skipped.Add(1)
				}
			}(i)
		}
		for f.orch.Phase() != session.PhasePending {
			time.Sleep(time.Millisecond)
		}
		for skipped.Load() < 7 {
			time.Sleep(time.Millisecond)
		}
		close(release)
		wg.Wait()

		gt.Value(t, skipped.Load()).Equal(int32(7))
		gt.Value(t, f.calls.Load()).Equal(int32(1))
	})
}

func TestSubmitFailureLeavesStateUntouched(t *testing.T) {
	ctx := context.Background()
	repo := store.NewMemory()
	for i := 0; i < 3; i++ {
		_, err := repo.Create(ctx, domain.NewGeneration{Prompt: fmt.Sprintf("old %d", i), Category: domain.CategoryScript})
		gt.NoError(t, err).Required()
	}

	f := newFixture(t, repo, respond(ports.ProviderResponse{}, errors.New("503 service unavailable")))
	gt.NoError(t, f.sync.Refresh(ctx)).Required()
	history := f.sync.History()
	gt.Bool(t, f.sync.Pick(history[2].ID)).True()
	f.state.SetPromptInput("Make a teleport GUI with buttons")
	before := f.state.Snapshot()

	res, err := f.orch.Submit(ctx, "Make a teleport GUI with buttons")
	gt.Value(t, res.Status).Equal(generation.StatusFailed)
	gt.Error(t, err).Is(domain.ErrServiceFailure)

	after := f.state.Snapshot()
	gt.Value(t, after.Phase).Equal(session.PhaseIdle)
	gt.Value(t, after.History).Equal(before.History)
	gt.Value(t, after.View).Equal(before.View)
	gt.Value(t, after.PromptInput).Equal("Make a teleport GUI with buttons")
	gt.Value(t, after.LastOutcome).Equal(session.OutcomeFailed)
	gt.Error(t, after.LastError).Is(domain.ErrServiceFailure)

	list, err := repo.List(ctx, 0)
	gt.NoError(t, err).Required()
	gt.Array(t, list).Length(3)

	t.Run("can submit again after failure", func(t *testing.T) {
		f.orch.ProviderFactory = stubProviderFactory{providers: map[string]ports.Provider{
			"primary": stubProvider{name: "primary", fn: respond(doubleJump, nil)},
		}}
		res, err := f.orch.Submit(ctx, "Make a teleport GUI with buttons")
		gt.NoError(t, err).Required()
		gt.Value(t, res.Status).Equal(generation.StatusDone)
		gt.Value(t, f.state.Snapshot().SelectedID()).Equal(res.Record.ID)
	})
}

func TestSubmitMalformedResponse(t *testing.T) {
	f := newFixture(t, nil, respond(ports.ProviderResponse{Code: "print(1)", ScriptType: "Script"}, nil))

	res, err := f.orch.Submit(context.Background(), "Create a coin collect system with leaderstats")
	gt.Value(t, res.Status).Equal(generation.StatusFailed)
	gt.Error(t, err).Is(domain.ErrServiceFailure)
	gt.Error(t, err).Is(domain.ErrMalformedResponse)
	gt.Bool(t, f.state.Snapshot().HasSelection).False()
}

func TestSubmitPersistenceFailureSpoolsDraft(t *testing.T) {
	ctx := context.Background()
	repo := &flakyRepo{MemoryStore: store.NewMemory()}
	repo.failing.Store(true)
	f := newFixture(t, repo, respond(doubleJump, nil))

	res, err := f.orch.Submit(ctx, "Make a double jump script")
	gt.Value(t, res.Status).Equal(generation.StatusFailed)
	gt.Error(t, err).Is(domain.ErrPersistenceFailure)
	gt.Bool(t, res.DraftKey != "").True()
	gt.Bool(t, f.state.Snapshot().HasSelection).False()

	drafts, err := f.orch.Drafts.List(ctx)
	gt.NoError(t, err).Required()
	gt.Array(t, drafts).Length(1)
	gt.Value(t, drafts[0].Generation.Category).Equal(domain.CategoryGameMechanic)

	t.Run("retry while store still fails keeps the draft", func(t *testing.T) {
		res, err := f.orch.RetryDraft(ctx, drafts[0].Key)
		gt.Error(t, err).Is(domain.ErrPersistenceFailure)
		gt.Value(t, res.Status).Equal(generation.StatusFailed)
		_, err = f.orch.Drafts.Get(ctx, drafts[0].Key)
		gt.NoError(t, err)
	})

	t.Run("retry after recovery stores and selects", func(t *testing.T) {
		repo.failing.Store(false)
		res, err := f.orch.RetryDraft(ctx, drafts[0].Key)
		gt.NoError(t, err).Required()
		gt.Value(t, res.Status).Equal(generation.StatusDone)
		gt.Value(t, res.Record.Prompt).Equal("Make a double jump script")
		gt.Value(t, f.state.Snapshot().SelectedID()).Equal(res.Record.ID)

		_, err = f.orch.Drafts.Get(ctx, drafts[0].Key)
		gt.Error(t, err).Is(domain.ErrDraftNotFound)
	})

	t.Run("unknown draft", func(t *testing.T) {
		_, err := f.orch.RetryDraft(ctx, "missing")
		gt.Error(t, err).Is(domain.ErrDraftNotFound)
	})
}

func TestSubmitForceSelectsOverUserPick(t *testing.T) {
	ctx := context.Background()
	repo := store.NewMemory()
	for i := 0; i < 3; i++ {
		_, err := repo.Create(ctx, domain.NewGeneration{Prompt: fmt.Sprintf("old %d", i)})
		gt.NoError(t, err).Required()
	}
	f := newFixture(t, repo, respond(doubleJump, nil))
	gt.NoError(t, f.sync.Refresh(ctx)).Required()
	gt.Bool(t, f.sync.Pick(f.sync.History()[2].ID)).True()

	res, err := f.orch.Submit(ctx, "Make a double jump script")
	gt.NoError(t, err).Required()

	snap := f.state.Snapshot()
	gt.Value(t, snap.SelectedID()).Equal(res.Record.ID)
	gt.Value(t, snap.History[0].ID).Equal(res.Record.ID)
	gt.Array(t, snap.History).Length(4)
}

func TestSubmitFallbackModels(t *testing.T) {
	ctx := context.Background()
	cfg := domain.Config{
		Preferences: domain.Preferences{DefaultModel: "primary", FallbackModels: []string{"backup"}},
		Models: []domain.ModelDefinition{
			{Name: "primary", ModelID: "primary-model"},
			{Name: "backup", ModelID: "backup-model"},
		},
	}

	t.Run("fallback answers when primary fails", func(t *testing.T) {
		f := newFixture(t, nil, nil)
		f.orch.ConfigProvider = stubConfigProvider{cfg: cfg}
		f.orch.ProviderFactory = stubProviderFactory{providers: map[string]ports.Provider{
			"primary": stubProvider{name: "primary", fn: respond(ports.ProviderResponse{}, errors.New("rate limited"))},
			"backup":  stubProvider{name: "backup", fn: respond(doubleJump, nil)},
		}}

		res, err := f.orch.Submit(ctx, "Make a double jump script")
		gt.NoError(t, err).Required()
		gt.Value(t, res.ModelUsed).Equal("backup")
	})

	t.Run("all models failing is a service failure", func(t *testing.T) {
		f := newFixture(t, nil, nil)
		f.orch.ConfigProvider = stubConfigProvider{cfg: cfg}
		f.orch.ProviderFactory = stubProviderFactory{providers: map[string]ports.Provider{
			"primary": stubProvider{name: "primary", fn: respond(ports.ProviderResponse{}, errors.New("rate limited"))},
			"backup":  stubProvider{name: "backup", fn: respond(ports.ProviderResponse{}, errors.New("quota"))},
		}}

		_, err := f.orch.Submit(ctx, "Make a double jump script")
		gt.Error(t, err).Is(domain.ErrServiceFailure)
		gt.String(t, err.Error()).Contains("rate limited")
	})
}

func TestSubmitTimeout(t *testing.T) {
	f := newFixture(t, nil, func(ctx context.Context, _ ports.ProviderRequest) (ports.ProviderResponse, error) {
		<-ctx.Done()
		return ports.ProviderResponse{}, ctx.Err()
	})
	f.orch.Timeout = 20 * time.Millisecond

	res, err := f.orch.Submit(context.Background(), "Make a double jump script")
	gt.Value(t, res.Status).Equal(generation.StatusFailed)
	gt.Error(t, err).Is(domain.ErrServiceFailure)
	gt.Error(t, err).Is(context.DeadlineExceeded)
	gt.Value(t, f.orch.Phase()).Equal(session.PhaseIdle)
}

func TestSubmitCopiesArtifact(t *testing.T) {
	f := newFixture(t, nil, respond(doubleJump, nil))
	clip := &stubClipboard{}
	f.orch.Clipboard = clip

	res, err := f.orch.SubmitRequest(context.Background(), generation.Request{
		Prompt:          "Make a double jump script",
		CopyToClipboard: true,
	})
	gt.NoError(t, err).Required()
	gt.Value(t, clip.copied).Equal(res.Record.Artifact)
}

func TestSubmitUnknownModel(t *testing.T) {
	f := newFixture(t, nil, respond(doubleJump, nil))
	_, err := f.orch.SubmitRequest(context.Background(), generation.Request{Prompt: "x", Model: "nope"})
	gt.Error(t, err).Is(domain.ErrModelNotConfigured)
	gt.Value(t, f.orch.Phase()).Equal(session.PhaseIdle)
}

func TestOrchestratorRequiresDependencies(t *testing.T) {
	_, err := (&generation.Orchestrator{}).Submit(context.Background(), "x")
	gt.Error(t, err)
}
