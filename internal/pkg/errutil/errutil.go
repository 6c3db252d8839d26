// Package errutil logs errors with their goerr context and forwards them to
// Sentry when a client has been initialised.
package errutil

import (
	"context"
	"errors"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/goerr/v2"

	"github.com/webcreatorLuke/roblox-code-bot/internal/ports"
)

// InitSentry configures the global Sentry client. An empty dsn disables reporting.
func InitSentry(dsn, environment string) error {
	if dsn == "" {
		return nil
	}
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         dsn,
		Environment: environment,
	}); err != nil {
		return goerr.Wrap(err, "failed to initialize sentry")
	}
	return nil
}

// Flush waits for buffered Sentry events.
func Flush() {
	if sentry.CurrentHub().Client() != nil {
		sentry.Flush(2 * time.Second)
	}
}

// Handle logs err with msg and reports it. It returns err unchanged so that
// callers can `return errutil.Handle(...)`.
func Handle(ctx context.Context, log ports.Logger, err error, msg string) error {
	if err == nil {
		return nil
	}

	fields := map[string]interface{}{}
	var ge *goerr.Error
	if errors.As(err, &ge) {
		for k, v := range ge.Values() {
			fields[k] = v
		}
		fields["stack"] = ge.Stacks()
	}
	if log != nil {
		log.Error(msg, err, fields)
	}

	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	if hub.Client() == nil {
		return err
	}
	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("message", msg)
		if ge != nil {
			scope.SetContext("goerr", sentry.Context(ge.Values()))
		}
		hub.CaptureException(err)
	})
	return err
}
