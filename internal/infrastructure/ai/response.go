package ai

import (
	"encoding/json"
	"strings"

	"github.com/m-mizutani/goerr/v2"

	"github.com/webcreatorLuke/roblox-code-bot/internal/domain"
)

type scriptPayload struct {
	Code       string `json:"code"`
	ScriptType string `json:"script_type"`
	Location   string `json:"location"`
}

// parseScriptJSON decodes the model answer. Models often wrap JSON in a
// ```json fence or add a sentence around it, so the bare text, the fenced
// block and the outermost {...} span are tried in order.
// Missing fields are not an error here; the orchestrator decides on them.
func parseScriptJSON(content string) (domain.ScriptResult, error) {
	raw := strings.TrimSpace(content)
	candidates := []string{raw}
	if block := extractCodeBlock(raw); block != "" {
		candidates = append(candidates, block, extractJSONObject(block))
	}
	candidates = append(candidates, extractJSONObject(raw))

	var lastErr error
	for _, candidate := range candidates {
		if candidate == "" {
			continue
		}
		var payload scriptPayload
		if err := json.Unmarshal([]byte(candidate), &payload); err != nil {
			lastErr = err
			continue
		}
		return domain.ScriptResult{
			Code:       payload.Code,
			ScriptType: payload.ScriptType,
			Location:   payload.Location,
		}, nil
	}

	cause := "no JSON object found"
	if lastErr != nil {
		cause = lastErr.Error()
	}
	return domain.ScriptResult{}, goerr.Wrap(domain.ErrMalformedResponse, "response is not a JSON script object",
		goerr.V("cause", cause), goerr.V("content", truncate(content, maxErrorBody)))
}

// extractCodeBlock finds and extracts the first markdown code block (```...```),
// dropping the language marker.
func extractCodeBlock(content string) string {
	start := strings.Index(content, "```")
	if start == -1 {
		return ""
	}
	suffix := content[start+3:]
	end := strings.Index(suffix, "```")
	if end == -1 {
		return ""
	}

	block := suffix[:end]
	if nl := strings.IndexByte(block, '\n'); nl != -1 {
		marker := strings.TrimSpace(block[:nl])
		if marker == "" || !strings.ContainsAny(marker, "{}") {
			block = block[nl+1:]
		}
	}
	return strings.TrimSpace(block)
}

// extractJSONObject returns the outermost {...} span, or "" if there is none.
func extractJSONObject(content string) string {
	start := strings.IndexByte(content, '{')
	end := strings.LastIndexByte(content, '}')
	if start == -1 || end <= start {
		return ""
	}
	return content[start : end+1]
}
