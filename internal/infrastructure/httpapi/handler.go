// Package httpapi exposes the generation session over a small JSON API.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/webcreatorLuke/roblox-code-bot/internal/application/generation"
	"github.com/webcreatorLuke/roblox-code-bot/internal/application/selection"
	"github.com/webcreatorLuke/roblox-code-bot/internal/application/session"
	"github.com/webcreatorLuke/roblox-code-bot/internal/domain"
	"github.com/webcreatorLuke/roblox-code-bot/internal/pkg/errutil"
	"github.com/webcreatorLuke/roblox-code-bot/internal/ports"
)

// maxRequestBody caps POST and PUT bodies.
const maxRequestBody = 64 << 10

// Handler serves the generation endpoints.
type Handler struct {
	State        *session.State
	Orchestrator *generation.Orchestrator
	Synchronizer *selection.Synchronizer
	Repository   ports.GenerationRepository
	Logger       ports.Logger
}

// GenerateRequest is the body of POST /api/generations.
type GenerateRequest struct {
	Prompt string `json:"prompt"`
	Model  string `json:"model,omitempty"`
}

// GenerateResponse is returned by POST /api/generations.
type GenerateResponse struct {
	Status    generation.Status        `json:"status"`
	Record    *domain.GenerationRecord `json:"record,omitempty"`
	ModelUsed string                   `json:"model_used,omitempty"`
	DraftKey  string                   `json:"draft_key,omitempty"`
	Error     string                   `json:"error,omitempty"`
}

// HistoryResponse is returned by GET /api/generations.
type HistoryResponse struct {
	Generations []domain.GenerationRecord `json:"generations"`
	SelectedID  string                    `json:"selected_id,omitempty"`
	Pending     bool                      `json:"pending"`
}

// SelectRequest is the body of PUT /api/selection.
type SelectRequest struct {
	ID string `json:"id"`
}

// RegisterRoutes mounts the API under /api.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/generations", h.ListGenerations)
		r.Post("/generations", h.CreateGeneration)
		r.Get("/generations/{id}", h.GetGeneration)
		r.Get("/selection", h.GetSelection)
		r.Put("/selection", h.PutSelection)
		r.Get("/examples", h.ListExamples)
	})
}

// ListGenerations reloads history and returns it with the current selection.
func (h *Handler) ListGenerations(w http.ResponseWriter, r *http.Request) {
	if err := h.Synchronizer.Refresh(r.Context()); err != nil {
		_ = errutil.Handle(r.Context(), h.Logger, err, "failed to load history")
		Error(w, http.StatusInternalServerError, "failed to load history")
		return
	}
	snap := h.State.Snapshot()
	generations := snap.History
	if generations == nil {
		generations = []domain.GenerationRecord{}
	}
	JSON(w, http.StatusOK, HistoryResponse{
		Generations: generations,
		SelectedID:  snap.SelectedID(),
		Pending:     snap.Phase == session.PhasePending,
	})
}

// CreateGeneration submits a prompt and waits for the outcome.
func (h *Handler) CreateGeneration(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		Error(w, http.StatusBadRequest, "prompt is required")
		return
	}

	res, err := h.Orchestrator.SubmitRequest(r.Context(), generation.Request{
		Prompt: req.Prompt,
		Model:  req.Model,
	})
	switch {
	case res.Status == generation.StatusSkipped:
		JSON(w, http.StatusConflict, GenerateResponse{Status: res.Status, Error: "another generation is pending"})
	case err != nil:
		JSON(w, failureStatus(err), GenerateResponse{
			Status:   generation.StatusFailed,
			DraftKey: res.DraftKey,
			Error:    err.Error(),
		})
	default:
		record := res.Record
		JSON(w, http.StatusCreated, GenerateResponse{
			Status:    res.Status,
			Record:    &record,
			ModelUsed: res.ModelUsed,
		})
	}
}

// GetGeneration returns one stored record.
func (h *Handler) GetGeneration(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	record, err := h.Repository.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			Error(w, http.StatusNotFound, "generation not found")
			return
		}
		_ = errutil.Handle(r.Context(), h.Logger, err, "failed to get generation")
		Error(w, http.StatusInternalServerError, "failed to get generation")
		return
	}
	JSON(w, http.StatusOK, record)
}

// GetSelection returns the displayed view, or 204 when nothing is selected.
func (h *Handler) GetSelection(w http.ResponseWriter, r *http.Request) {
	view, ok := h.Synchronizer.Current()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	JSON(w, http.StatusOK, view)
}

// PutSelection selects a record from the loaded history.
func (h *Handler) PutSelection(w http.ResponseWriter, r *http.Request) {
	var req SelectRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ID == "" {
		Error(w, http.StatusBadRequest, "id is required")
		return
	}
	if len(h.Synchronizer.History()) == 0 {
		if err := h.Synchronizer.Refresh(r.Context()); err != nil {
			_ = errutil.Handle(r.Context(), h.Logger, err, "failed to load history")
			Error(w, http.StatusInternalServerError, "failed to load history")
			return
		}
	}
	if !h.Synchronizer.Pick(req.ID) {
		Error(w, http.StatusNotFound, domain.ErrRecordNotFound.Error())
		return
	}
	view, _ := h.Synchronizer.Current()
	JSON(w, http.StatusOK, view)
}

// ListExamples returns the built-in example prompts.
func (h *Handler) ListExamples(w http.ResponseWriter, _ *http.Request) {
	JSON(w, http.StatusOK, domain.ExamplePrompts())
}

func failureStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrModelNotConfigured):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrServiceFailure), errors.Is(err, domain.ErrMalformedResponse):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// JSON writes v as a JSON response.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}

// Error writes a JSON error body.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}
