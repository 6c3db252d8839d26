package httpapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/webcreatorLuke/roblox-code-bot/internal/app"
	"github.com/webcreatorLuke/roblox-code-bot/internal/application/session"
	"github.com/webcreatorLuke/roblox-code-bot/internal/domain"
	"github.com/webcreatorLuke/roblox-code-bot/internal/infrastructure/httpapi"
	"github.com/webcreatorLuke/roblox-code-bot/internal/ports"
)

type stubConfigProvider struct{ cfg domain.Config }

func (s stubConfigProvider) Load(context.Context) (domain.Config, error) { return s.cfg, nil }

type stubProvider struct {
	fn func(ctx context.Context) (ports.ProviderResponse, error)
}

func (p stubProvider) Name() string                  { return "stub" }
func (p stubProvider) Model() domain.ModelDefinition { return domain.ModelDefinition{Name: "stub"} }
func (p stubProvider) Generate(ctx context.Context, _ ports.ProviderRequest) (ports.ProviderResponse, error) {
	return p.fn(ctx)
}

type stubFactory struct{ provider ports.Provider }

func (f stubFactory) ForModel(context.Context, domain.ModelDefinition) (ports.Provider, error) {
	return f.provider, nil
}

func offlineConfig() domain.Config {
	return domain.Config{
		Preferences: domain.Preferences{DefaultModel: "offline"},
		Models:      []domain.ModelDefinition{{Name: "offline", Provider: domain.ProviderKindHeuristic}},
		Storage:     domain.StorageSettings{Backend: domain.BackendMemory},
	}
}

func newTestRouter(t *testing.T, factory ports.ProviderFactory) (http.Handler, *app.Container) {
	t.Helper()
	c, err := app.BuildContainer(context.Background(), app.Options{
		LogWriter:       io.Discard,
		Ephemeral:       true,
		ConfigProvider:  stubConfigProvider{cfg: offlineConfig()},
		ProviderFactory: factory,
	})
	gt.NoError(t, err).Required()
	t.Cleanup(func() { _ = c.Close() })

	h := &httpapi.Handler{
		State:        c.State,
		Orchestrator: c.Orchestrator,
		Synchronizer: c.Synchronizer,
		Repository:   c.Repository,
		Logger:       c.Logger,
	}
	return httpapi.NewRouter(h), c
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		gt.NoError(t, err).Required()
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	gt.NoError(t, json.NewDecoder(rec.Body).Decode(&v)).Required()
	return v
}

func TestHealth(t *testing.T) {
	router, _ := newTestRouter(t, nil)
	rec := do(t, router, http.MethodGet, "/health", nil)
	gt.Value(t, rec.Code).Equal(http.StatusOK)
}

func TestListExamples(t *testing.T) {
	router, _ := newTestRouter(t, nil)
	rec := do(t, router, http.MethodGet, "/api/examples", nil)
	gt.Value(t, rec.Code).Equal(http.StatusOK)

	examples := decode[[]domain.ExamplePrompt](t, rec)
	gt.Array(t, examples).Length(len(domain.ExamplePrompts()))
}

func TestGenerateAndBrowse(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	rec := do(t, router, http.MethodGet, "/api/selection", nil)
	gt.Value(t, rec.Code).Equal(http.StatusNoContent)

	rec = do(t, router, http.MethodPost, "/api/generations", httpapi.GenerateRequest{Prompt: "Make a double jump script"})
	gt.Value(t, rec.Code).Equal(http.StatusCreated)
	created := decode[httpapi.GenerateResponse](t, rec)
	gt.Value(t, created.Status).Equal("done")
	gt.Bool(t, created.Record != nil).True()
	gt.Value(t, created.Record.Category).Equal(domain.CategoryGameMechanic)
	gt.Value(t, created.ModelUsed).Equal("offline")
	id := created.Record.ID

	t.Run("history lists the new record as selected", func(t *testing.T) {
		rec := do(t, router, http.MethodGet, "/api/generations", nil)
		gt.Value(t, rec.Code).Equal(http.StatusOK)
		history := decode[httpapi.HistoryResponse](t, rec)
		gt.Array(t, history.Generations).Length(1)
		gt.Value(t, history.SelectedID).Equal(id)
		gt.Bool(t, history.Pending).False()
	})

	t.Run("get by id", func(t *testing.T) {
		rec := do(t, router, http.MethodGet, "/api/generations/"+id, nil)
		gt.Value(t, rec.Code).Equal(http.StatusOK)
		record := decode[domain.GenerationRecord](t, rec)
		gt.Value(t, record.Prompt).Equal("Make a double jump script")
	})

	t.Run("get unknown id", func(t *testing.T) {
		rec := do(t, router, http.MethodGet, "/api/generations/does-not-exist", nil)
		gt.Value(t, rec.Code).Equal(http.StatusNotFound)
	})

	t.Run("selection follows the new record", func(t *testing.T) {
		rec := do(t, router, http.MethodGet, "/api/selection", nil)
		gt.Value(t, rec.Code).Equal(http.StatusOK)
		view := decode[domain.DisplayView](t, rec)
		gt.Value(t, view.RecordID).Equal(id)
	})

	t.Run("pick existing record", func(t *testing.T) {
		rec := do(t, router, http.MethodPut, "/api/selection", httpapi.SelectRequest{ID: id})
		gt.Value(t, rec.Code).Equal(http.StatusOK)
	})

	t.Run("pick missing record keeps selection", func(t *testing.T) {
		rec := do(t, router, http.MethodPut, "/api/selection", httpapi.SelectRequest{ID: "missing"})
		gt.Value(t, rec.Code).Equal(http.StatusNotFound)

		rec = do(t, router, http.MethodGet, "/api/selection", nil)
		view := decode[domain.DisplayView](t, rec)
		gt.Value(t, view.RecordID).Equal(id)
	})
}

func TestGenerateRejectsBadInput(t *testing.T) {
	router, c := newTestRouter(t, nil)

	rec := do(t, router, http.MethodPost, "/api/generations", httpapi.GenerateRequest{Prompt: "   "})
	gt.Value(t, rec.Code).Equal(http.StatusBadRequest)

	req := httptest.NewRequest(http.MethodPost, "/api/generations", bytes.NewBufferString("{"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	gt.Value(t, w.Code).Equal(http.StatusBadRequest)

	rec = do(t, router, http.MethodPost, "/api/generations", httpapi.GenerateRequest{Prompt: "jump", Model: "nope"})
	gt.Value(t, rec.Code).Equal(http.StatusBadRequest)

	records, err := c.Repository.List(context.Background(), 0)
	gt.NoError(t, err).Required()
	gt.Array(t, records).Length(0)
}

func TestGenerateServiceFailure(t *testing.T) {
	router, c := newTestRouter(t, stubFactory{provider: stubProvider{fn: func(context.Context) (ports.ProviderResponse, error) {
		return ports.ProviderResponse{}, errors.New("upstream unavailable")
	}}})

	rec := do(t, router, http.MethodPost, "/api/generations", httpapi.GenerateRequest{Prompt: "Make a double jump script"})
	gt.Value(t, rec.Code).Equal(http.StatusBadGateway)
	res := decode[httpapi.GenerateResponse](t, rec)
	gt.Value(t, res.Status).Equal("failed")
	gt.String(t, res.Error).Contains("upstream unavailable")

	gt.Value(t, c.State.Phase()).Equal(session.PhaseIdle)
}

func TestGenerateConflictWhilePending(t *testing.T) {
	release := make(chan struct{})
	router, c := newTestRouter(t, stubFactory{provider: stubProvider{fn: func(ctx context.Context) (ports.ProviderResponse, error) {
		select {
		case <-release:
		case <-ctx.Done():
			return ports.ProviderResponse{}, ctx.Err()
		}
		return ports.ProviderResponse{Code: "print('hi')", ScriptType: "Script", Location: "ServerScriptService"}, nil
	}}})

	first := make(chan *httptest.ResponseRecorder, 1)
	go func() {
		first <- do(t, router, http.MethodPost, "/api/generations", httpapi.GenerateRequest{Prompt: "make a part spin"})
	}()

	deadline := time.Now().Add(5 * time.Second)
	for c.State.Phase() != session.PhasePending {
		if time.Now().After(deadline) {
			t.Fatal("first request never became pending")
		}
		time.Sleep(5 * time.Millisecond)
	}

	rec := do(t, router, http.MethodPost, "/api/generations", httpapi.GenerateRequest{Prompt: "another one"})
	gt.Value(t, rec.Code).Equal(http.StatusConflict)

	close(release)
	gt.Value(t, (<-first).Code).Equal(http.StatusCreated)

	records, err := c.Repository.List(context.Background(), 0)
	gt.NoError(t, err).Required()
	gt.Array(t, records).Length(1)
}
