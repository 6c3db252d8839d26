package domain

import (
	"errors"

	"github.com/m-mizutani/goerr/v2"
)

// Failure kinds surfaced by the generation lifecycle. Match with errors.Is.
var (
	ErrServiceFailure     = goerr.New("generation service failure")
	ErrMalformedResponse  = goerr.New("generation response is missing required fields")
	ErrPersistenceFailure = goerr.New("generation persistence failure")
	ErrRecordNotFound     = goerr.New("generation record not found")
	ErrDraftNotFound      = goerr.New("draft not found")
	ErrModelNotConfigured = goerr.New("model not configured")
)

// Failure wraps cause so that it matches both kind and cause with errors.Is.
func Failure(kind, cause error, msg string, options ...goerr.Option) error {
	return goerr.Wrap(errors.Join(kind, cause), msg, options...)
}
