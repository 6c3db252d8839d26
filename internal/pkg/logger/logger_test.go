package logger_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/webcreatorLuke/roblox-code-bot/internal/pkg/logger"
)

func TestVerboseGate(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(&buf, logger.Options{})

	log.Debug("hidden", nil)
	log.Info("hidden", nil)
	gt.Value(t, buf.Len()).Equal(0)

	log.Warn("visible", map[string]interface{}{"model": "claude"})
	gt.String(t, buf.String()).Contains("visible")
	gt.String(t, buf.String()).Contains("model=claude")
}

func TestErrorIncludesCause(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(&buf, logger.Options{JSON: true})
	log.Error("generation failed", errors.New("boom"), map[string]interface{}{"prompt": "jump"})

	var entry map[string]interface{}
	gt.NoError(t, json.Unmarshal(buf.Bytes(), &entry)).Required()
	gt.Value(t, entry["msg"]).Equal("generation failed")
	gt.Value(t, entry["error"]).Equal("boom")
	gt.Value(t, entry["prompt"]).Equal("jump")
}

func TestRedaction(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(&buf, logger.Options{Verbose: true, JSON: true})
	log.Info("provider", map[string]interface{}{
		"api_key": "abc123",
		"header":  "Bearer sk-live-0000",
		"model":   "claude",
	})

	out := buf.String()
	gt.Bool(t, bytes.Contains(buf.Bytes(), []byte("abc123"))).False()
	gt.Bool(t, bytes.Contains(buf.Bytes(), []byte("sk-live-0000"))).False()
	gt.String(t, out).Contains("claude")
}
