// Package generation drives a prompt through the service call, persistence
// and selection. At most one request is in flight per session.
package generation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"

	"github.com/webcreatorLuke/roblox-code-bot/internal/application/selection"
	"github.com/webcreatorLuke/roblox-code-bot/internal/application/session"
	"github.com/webcreatorLuke/roblox-code-bot/internal/domain"
	"github.com/webcreatorLuke/roblox-code-bot/internal/pkg/errutil"
	"github.com/webcreatorLuke/roblox-code-bot/internal/ports"
)

// Status tells the caller what happened to a submit.
type Status string

const (
	// StatusSkipped means the prompt was blank or another request was pending.
	StatusSkipped Status = "skipped"
	StatusDone    Status = "done"
	StatusFailed  Status = "failed"
)

// Request is a single submission.
type Request struct {
	Prompt string
	// Model overrides preferences.default_model.
	Model           string
	CopyToClipboard bool
	Debug           bool
}

// Result is the outcome of a submission.
type Result struct {
	Status Status
	Record domain.GenerationRecord
	// ModelUsed names the model whose answer was kept.
	ModelUsed string
	// DraftKey is set when the artifact was spooled after a persistence failure.
	DraftKey string
}

// Orchestrator implements the Idle -> Pending -> Done/Failed lifecycle.
type Orchestrator struct {
	State           *session.State
	ConfigProvider  ports.ConfigProvider
	ProviderFactory ports.ProviderFactory
	Repository      ports.GenerationRepository
	Synchronizer    *selection.Synchronizer
	Drafts          ports.DraftSpool
	Clipboard       ports.Clipboard
	Logger          ports.Logger

	// Timeout bounds the service call. Zero waits until ctx is done.
	Timeout time.Duration
	Now     func() time.Time
}

// Phase reports whether a request is pending.
func (o *Orchestrator) Phase() session.Phase {
	return o.State.Phase()
}

// Submit runs prompt with the configured default model.
func (o *Orchestrator) Submit(ctx context.Context, prompt string) (Result, error) {
	return o.SubmitRequest(ctx, Request{Prompt: prompt})
}

// SubmitRequest admits req, calls the service, persists and selects the result.
// A skipped submit returns StatusSkipped and a nil error.
func (o *Orchestrator) SubmitRequest(ctx context.Context, req Request) (Result, error) {
	if err := o.validate(); err != nil {
		return Result{}, err
	}
	if !o.State.TryBegin(req.Prompt, o.now()) {
		o.Logger.Debug("submit skipped", map[string]interface{}{"phase": string(o.State.Phase())})
		return Result{Status: StatusSkipped}, nil
	}

	res, err := o.run(ctx, req)
	if err != nil {
		o.State.Finish(session.OutcomeFailed, err)
		_ = errutil.Handle(ctx, o.Logger, err, "generation failed")
		res.Status = StatusFailed
		return res, err
	}

	o.State.Finish(session.OutcomeDone, nil)
	o.afterDone(ctx, res.Record, req.CopyToClipboard)
	res.Status = StatusDone
	return res, nil
}

// RetryDraft persists a spooled draft under the same admission rules as Submit.
// The draft is deleted once it is stored.
func (o *Orchestrator) RetryDraft(ctx context.Context, key string) (Result, error) {
	if err := o.validate(); err != nil {
		return Result{}, err
	}
	if o.Drafts == nil {
		return Result{}, goerr.New("draft spool is not configured")
	}
	draft, err := o.Drafts.Get(ctx, key)
	if err != nil {
		return Result{}, err
	}
	if !o.State.TryBegin(draft.Generation.Prompt, o.now()) {
		return Result{Status: StatusSkipped}, nil
	}

	record, err := o.Repository.Create(ctx, draft.Generation)
	if err != nil {
		err = domain.Failure(domain.ErrPersistenceFailure, err, "failed to store draft", goerr.V("key", key))
		o.State.Finish(session.OutcomeFailed, err)
		_ = errutil.Handle(ctx, o.Logger, err, "draft retry failed")
		return Result{Status: StatusFailed, DraftKey: key}, err
	}
	o.forceSelect(record)
	o.State.Finish(session.OutcomeDone, nil)

	if err := o.Drafts.Delete(ctx, key); err != nil {
		o.Logger.Warn("failed to delete stored draft", map[string]interface{}{"key": key, "error": err.Error()})
	}
	o.afterDone(ctx, record, false)
	return Result{Status: StatusDone, Record: record}, nil
}

func (o *Orchestrator) run(ctx context.Context, req Request) (Result, error) {
	cfg, err := o.ConfigProvider.Load(ctx)
	if err != nil {
		return Result{}, domain.Failure(domain.ErrServiceFailure, err, "failed to load config")
	}
	primary, err := cfg.PickModel(req.Model)
	if err != nil {
		return Result{}, domain.Failure(domain.ErrServiceFailure, err, "failed to pick model", goerr.V("model", req.Model))
	}

	callCtx := ctx
	if o.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, o.Timeout)
		defer cancel()
	}

	resp, modelUsed, err := o.generate(callCtx, &cfg, primary, req)
	if err != nil {
		return Result{}, err
	}

	gen := domain.BuildGeneration(req.Prompt, resp.Result())
	record, err := o.Repository.Create(ctx, gen)
	if err != nil {
		err = domain.Failure(domain.ErrPersistenceFailure, err, "failed to store generation", goerr.V("prompt", req.Prompt))
		return Result{ModelUsed: modelUsed, DraftKey: o.spool(ctx, gen, err)}, err
	}

	// Force-select before leaving Pending so that a concurrent refresh cannot
	// auto-select an older record first.
	o.forceSelect(record)
	return Result{Record: record, ModelUsed: modelUsed}, nil
}

// generate races the primary model and its fallbacks. The first valid answer
// wins and cancels the rest.
func (o *Orchestrator) generate(ctx context.Context, cfg *domain.Config, primary domain.ModelDefinition, req Request) (ports.ProviderResponse, string, error) {
	candidates := append([]domain.ModelDefinition{primary}, cfg.GetFallbackModels(primary.Name)...)

	type result struct {
		resp      ports.ProviderResponse
		modelName string
		err       error
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	results := make(chan result, len(candidates))
	var wg sync.WaitGroup

	for _, model := range candidates {
		wg.Add(1)
		go func(model domain.ModelDefinition) {
			defer wg.Done()
			resp, err := o.generateWithModel(ctx, model, req)
			results <- result{resp: resp, modelName: model.Name, err: err}
		}(model)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	var primaryErr error
	errs := make([]error, 0, len(candidates))
	var success *result
	for res := range results {
		if res.err == nil && success == nil {
			success = &res
			cancel()
			continue
		}
		if res.err == nil {
			continue
		}
		if res.modelName == primary.Name {
			primaryErr = res.err
			continue
		}
		errs = append(errs, fmt.Errorf("%s: %w", res.modelName, res.err))
	}

	if success != nil {
		return success.resp, success.modelName, nil
	}
	if primaryErr != nil {
		errs = append([]error{primaryErr}, errs...)
	}
	return ports.ProviderResponse{}, "", goerr.Wrap(errors.Join(errs...), "all models failed", goerr.V("model", primary.Name))
}

func (o *Orchestrator) generateWithModel(ctx context.Context, model domain.ModelDefinition, req Request) (ports.ProviderResponse, error) {
	provider, err := o.ProviderFactory.ForModel(ctx, model)
	if err != nil {
		return ports.ProviderResponse{}, domain.Failure(domain.ErrServiceFailure, err, "provider init failed", goerr.V("model", model.Name))
	}

	o.Logger.Info("calling provider", map[string]interface{}{
		"provider": provider.Name(),
		"model":    model.ModelID,
	})

	resp, err := provider.Generate(ctx, ports.ProviderRequest{
		Prompt: req.Prompt,
		Model:  model,
		Debug:  req.Debug,
	})
	if err != nil {
		return ports.ProviderResponse{}, domain.Failure(domain.ErrServiceFailure, err, "provider generate failed", goerr.V("model", model.Name))
	}
	if missing := resp.Result().Missing(); len(missing) > 0 {
		return ports.ProviderResponse{}, domain.Failure(domain.ErrServiceFailure, domain.ErrMalformedResponse,
			"provider response incomplete", goerr.V("model", model.Name), goerr.V("missing", missing))
	}
	return resp, nil
}

// spool keeps gen for a manual retry and returns the draft key, or "" when no
// spool is configured or the spool itself failed.
func (o *Orchestrator) spool(ctx context.Context, gen domain.NewGeneration, cause error) string {
	if o.Drafts == nil {
		return ""
	}
	key := uuid.NewString()
	draft := domain.Draft{Key: key, Generation: gen, FailedAt: o.now().UTC(), Reason: cause.Error()}
	if err := o.Drafts.Put(ctx, draft); err != nil {
		o.Logger.Error("failed to spool draft", err, map[string]interface{}{"prompt": gen.Prompt})
		return ""
	}
	o.Logger.Info("generation spooled as draft", map[string]interface{}{"key": key})
	return key
}

func (o *Orchestrator) forceSelect(record domain.GenerationRecord) {
	if o.Synchronizer != nil {
		o.Synchronizer.ForceSelect(record)
	}
}

func (o *Orchestrator) afterDone(ctx context.Context, record domain.GenerationRecord, copyArtifact bool) {
	if o.Synchronizer != nil {
		if err := o.Synchronizer.Refresh(ctx); err != nil {
			o.Logger.Warn("history refresh failed", map[string]interface{}{"error": err.Error()})
		}
	}
	if copyArtifact && o.Clipboard != nil && o.Clipboard.Enabled() {
		if err := o.Clipboard.Copy(record.Artifact); err != nil {
			o.Logger.Warn("clipboard copy failed", map[string]interface{}{"error": err.Error()})
		}
	}
}

func (o *Orchestrator) validate() error {
	if o.State == nil || o.ConfigProvider == nil || o.ProviderFactory == nil ||
		o.Repository == nil || o.Logger == nil {
		return errors.New("generation.Orchestrator dependencies not satisfied")
	}
	return nil
}

func (o *Orchestrator) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}
