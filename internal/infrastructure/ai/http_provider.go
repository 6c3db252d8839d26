package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/m-mizutani/goerr/v2"

	"github.com/webcreatorLuke/roblox-code-bot/internal/domain"
	"github.com/webcreatorLuke/roblox-code-bot/internal/ports"
)

const (
	httpProviderName = "http"
	// maxErrorBody bounds how much of a failed response ends up in the error.
	maxErrorBody = 512
)

// httpProvider is a configuration-driven HTTP-based AI provider.
// All provider-specific behavior is controlled through the model's APIFormat configuration.
type httpProvider struct {
	model      domain.ModelDefinition
	httpClient *http.Client
}

func newHTTPProvider(model domain.ModelDefinition, client *http.Client) ports.Provider {
	return &httpProvider{
		model:      model,
		httpClient: client,
	}
}

func (p *httpProvider) Name() string {
	return httpProviderName
}

func (p *httpProvider) Model() domain.ModelDefinition {
	return p.model
}

func (p *httpProvider) Generate(ctx context.Context, req ports.ProviderRequest) (ports.ProviderResponse, error) {
	messages, err := renderPromptMessages(p.model, req.Prompt)
	if err != nil {
		return ports.ProviderResponse{}, goerr.Wrap(err, "failed to render prompt", goerr.V("model", p.model.Name))
	}

	requestBody, err := p.buildRequestBody(messages)
	if err != nil {
		return ports.ProviderResponse{}, goerr.Wrap(err, "failed to build request", goerr.V("model", p.model.Name))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.model.Endpoint, bytes.NewReader(requestBody))
	if err != nil {
		return ports.ProviderResponse{}, goerr.Wrap(err, "failed to create HTTP request", goerr.V("endpoint", p.model.Endpoint))
	}

	httpReq.Header.Set("Content-Type", "application/json")
	if err := p.setAuthHeaders(httpReq); err != nil {
		return ports.ProviderResponse{}, err
	}
	p.setExtraHeaders(httpReq)

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return ports.ProviderResponse{}, goerr.Wrap(err, "HTTP request failed", goerr.V("endpoint", p.model.Endpoint))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return ports.ProviderResponse{}, goerr.Wrap(err, "failed to read response body")
	}
	if resp.StatusCode >= 400 {
		return ports.ProviderResponse{}, goerr.New("provider returned an error status",
			goerr.V("status", resp.StatusCode),
			goerr.V("body", truncate(string(body), maxErrorBody)))
	}

	content, err := p.parseResponse(body)
	if err != nil {
		return ports.ProviderResponse{}, err
	}

	result, err := parseScriptJSON(content)
	if err != nil {
		return ports.ProviderResponse{}, err
	}
	return ports.ProviderResponse{
		Code:       result.Code,
		ScriptType: result.ScriptType,
		Location:   result.Location,
		Raw:        content,
	}, nil
}

type chatMessage struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"`
}

type textBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type chatRequest struct {
	Model     string        `json:"model"`
	MaxTokens int           `json:"max_tokens"`
	System    string        `json:"system,omitempty"`
	Messages  []chatMessage `json:"messages"`
}

// buildRequestBody encodes messages in the shape the model's APIFormat asks for.
// Anthropic-style formats lift system messages into a top-level field.
func (p *httpProvider) buildRequestBody(messages []domain.PromptMessage) ([]byte, error) {
	format := p.model.APIFormat
	req := chatRequest{
		Model:     p.model.ModelID,
		MaxTokens: p.model.MaxTokens,
		Messages:  make([]chatMessage, 0, len(messages)),
	}
	if req.MaxTokens <= 0 {
		req.MaxTokens = domain.DefaultMaxTokens
	}

	var system []string
	for _, msg := range messages {
		role := strings.ToLower(msg.Role)
		if role == "system" && format.IsSystemMessageSeparate() {
			system = append(system, msg.Content)
			continue
		}
		var content interface{} = msg.Content
		if format.IsContentWrapped() {
			content = []textBlock{{Type: "text", Text: msg.Content}}
		}
		req.Messages = append(req.Messages, chatMessage{Role: role, Content: content})
	}
	req.System = strings.TrimSpace(strings.Join(system, "\n"))

	return json.Marshal(req)
}

// setAuthHeaders configures authentication headers based on the model's APIFormat.
// Models without auth_env_var (local Ollama) send no credentials.
func (p *httpProvider) setAuthHeaders(req *http.Request) error {
	if p.model.AuthEnvVar == "" {
		return nil
	}
	apiKey := os.Getenv(p.model.AuthEnvVar)
	if apiKey == "" {
		return goerr.New("missing API key", goerr.V("env", p.model.AuthEnvVar), goerr.V("model", p.model.Name))
	}

	format := p.model.APIFormat
	req.Header.Set(format.GetAuthHeaderName(), format.GetAuthHeaderPrefix()+apiKey)

	if p.model.OrgEnvVar != "" {
		if orgID := os.Getenv(p.model.OrgEnvVar); orgID != "" {
			req.Header.Set("OpenAI-Organization", orgID)
		}
	}
	return nil
}

func (p *httpProvider) setExtraHeaders(req *http.Request) {
	for key, value := range p.model.APIFormat.ExtraHeaders {
		req.Header.Set(key, value)
	}
}

// parseResponse pulls the generated text out of the provider reply.
func (p *httpProvider) parseResponse(body []byte) (string, error) {
	var reply interface{}
	if err := json.Unmarshal(body, &reply); err != nil {
		return "", goerr.Wrap(err, "failed to unmarshal provider response", goerr.V("body", truncate(string(body), maxErrorBody)))
	}

	path := p.model.APIFormat.GetResponseJSONPath()
	content, err := extractJSONPath(reply, path)
	if err != nil {
		return "", goerr.Wrap(err, "failed to extract response content", goerr.V("path", path))
	}
	return strings.TrimSpace(content), nil
}

// pathStep is one hop of a response path: an object key, or an array index when isIndex is set.
type pathStep struct {
	key     string
	index   int
	isIndex bool
}

// parseJSONPath splits "choices[0].message.content" into steps.
// A malformed index such as "[x]" yields index -1, which never matches.
func parseJSONPath(path string) []pathStep {
	var steps []pathStep
	for _, segment := range strings.Split(path, ".") {
		key, rest, _ := strings.Cut(segment, "[")
		if key != "" {
			steps = append(steps, pathStep{key: key})
		}
		for rest != "" {
			raw, after, found := strings.Cut(rest, "]")
			if !found {
				break
			}
			idx, err := strconv.Atoi(raw)
			if err != nil {
				idx = -1
			}
			steps = append(steps, pathStep{index: idx, isIndex: true})
			rest = strings.TrimPrefix(after, "[")
		}
	}
	return steps
}

// extractJSONPath walks a decoded JSON value and returns the string at path.
func extractJSONPath(data interface{}, path string) (string, error) {
	current := data
	for _, step := range parseJSONPath(path) {
		if step.isIndex {
			arr, ok := current.([]interface{})
			if !ok || step.index < 0 || step.index >= len(arr) {
				return "", goerr.New("no array element at index", goerr.V("index", step.index))
			}
			current = arr[step.index]
			continue
		}
		obj, ok := current.(map[string]interface{})
		if !ok {
			return "", goerr.New("expected an object", goerr.V("key", step.key))
		}
		if current, ok = obj[step.key]; !ok {
			return "", goerr.New("key not found", goerr.V("key", step.key))
		}
	}

	str, ok := current.(string)
	if !ok {
		return "", goerr.New("value at path is not a string", goerr.V("path", path))
	}
	return str, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
