// Package logger adapts log/slog to ports.Logger. Secrets in log fields are
// redacted with masq before they reach any handler.
package logger

import (
	"io"
	"log/slog"
	"os"
	"sort"

	"github.com/m-mizutani/masq"

	"github.com/webcreatorLuke/roblox-code-bot/internal/ports"
)

// MaskedValue replaces secrets that are printed outside of log records.
const MaskedValue = "[REDACTED]"

// Options controls handler selection.
type Options struct {
	// Verbose enables Debug and Info output. Warn and Error are always written.
	Verbose bool
	// JSON switches to the JSON handler (used by `serve`).
	JSON bool
}

// SlogLogger implements ports.Logger on top of *slog.Logger.
type SlogLogger struct {
	l *slog.Logger
}

// New builds a logger writing to w.
func New(w io.Writer, opts Options) *SlogLogger {
	level := slog.LevelWarn
	if opts.Verbose {
		level = slog.LevelDebug
	}
	handlerOpts := &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: Redactor(),
	}

	var h slog.Handler
	if opts.JSON {
		h = slog.NewJSONHandler(w, handlerOpts)
	} else {
		h = slog.NewTextHandler(w, handlerOpts)
	}
	return &SlogLogger{l: slog.New(h)}
}

// NewStd creates a text logger on stderr.
func NewStd(verbose bool) *SlogLogger {
	return New(os.Stderr, Options{Verbose: verbose})
}

// Discard returns a logger that drops everything.
func Discard() *SlogLogger {
	return New(io.Discard, Options{})
}

// Redactor returns the ReplaceAttr hook that masks credentials.
func Redactor() func(groups []string, a slog.Attr) slog.Attr {
	return masq.New(
		masq.WithFieldName("api_key"),
		masq.WithFieldName("authorization"),
		masq.WithFieldName("token"),
		masq.WithFieldName("dsn"),
		masq.WithFieldPrefix("secret"),
		masq.WithContain("sk-"),
	)
}

// Slog exposes the underlying logger, e.g. for slog.SetDefault.
func (l *SlogLogger) Slog() *slog.Logger {
	return l.l
}

func (l *SlogLogger) Debug(msg string, fields map[string]interface{}) {
	l.l.Debug(msg, attrs(fields)...)
}

func (l *SlogLogger) Info(msg string, fields map[string]interface{}) {
	l.l.Info(msg, attrs(fields)...)
}

func (l *SlogLogger) Warn(msg string, fields map[string]interface{}) {
	l.l.Warn(msg, attrs(fields)...)
}

func (l *SlogLogger) Error(msg string, err error, fields map[string]interface{}) {
	args := attrs(fields)
	if err != nil {
		args = append(args, slog.String("error", err.Error()))
	}
	l.l.Error(msg, args...)
}

func attrs(fields map[string]interface{}) []any {
	if len(fields) == 0 {
		return nil
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]any, 0, len(keys))
	for _, k := range keys {
		out = append(out, slog.Any(k, fields[k]))
	}
	return out
}

var _ ports.Logger = (*SlogLogger)(nil)
