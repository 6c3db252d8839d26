// Package domain defines the core entities of robloxcoder: generation records,
// the prompt classifier, artifact annotation and configuration.
//
// This file contains AI model and provider definitions. The domain layer is
// independent of infrastructure concerns.
package domain

import "strings"

// ProviderKind selects the adapter used to talk to a model.
type ProviderKind string

const (
	ProviderKindHTTP      ProviderKind = "http"
	ProviderKindGemini    ProviderKind = "gemini"
	ProviderKindHeuristic ProviderKind = "heuristic"
)

// ModelDefinition describes an AI provider configuration declared in the config file.
// Each model represents a specific AI service endpoint with its authentication and
// generation parameters.
type ModelDefinition struct {
	Name       string          `yaml:"name"`
	Provider   ProviderKind    `yaml:"provider,omitempty"`
	Endpoint   string          `yaml:"endpoint,omitempty"`
	AuthEnvVar string          `yaml:"auth_env_var,omitempty"`
	OrgEnvVar  string          `yaml:"org_env_var,omitempty"`
	ModelID    string          `yaml:"model_id,omitempty"`
	MaxTokens  int             `yaml:"max_tokens,omitempty"`
	Prompt     []PromptMessage `yaml:"prompt,omitempty"`
	APIFormat  APIFormat       `yaml:"api_format,omitempty"`

	// Project and Location address a Vertex AI (gemini) deployment.
	Project  string `yaml:"project,omitempty"`
	Location string `yaml:"location,omitempty"`
}

// Kind resolves the provider adapter. An explicit provider wins; otherwise a
// model with an endpoint is an HTTP model and anything else runs offline.
func (m ModelDefinition) Kind() ProviderKind {
	switch ProviderKind(strings.ToLower(string(m.Provider))) {
	case ProviderKindGemini:
		return ProviderKindGemini
	case ProviderKindHeuristic:
		return ProviderKindHeuristic
	case ProviderKindHTTP:
		return ProviderKindHTTP
	}
	if m.Endpoint != "" {
		return ProviderKindHTTP
	}
	return ProviderKindHeuristic
}

// APIFormat describes the wire shape of a chat-completion style API. The zero
// value speaks the OpenAI dialect, which Ollama and most gateways accept too.
type APIFormat struct {
	// AuthHeaderName and AuthHeaderPrefix build the credential header.
	// Leaving both empty sends "Authorization: Bearer <key>"; naming a header
	// without a prefix sends the raw key (Anthropic's x-api-key).
	AuthHeaderName   string `yaml:"auth_header_name,omitempty"`
	AuthHeaderPrefix string `yaml:"auth_header_prefix,omitempty"`

	// SystemMessageMode is "inline" or "separate" (top-level "system" field).
	SystemMessageMode string `yaml:"system_message_mode,omitempty"`

	// ContentWrapper is "standard" (plain string) or "anthropic" (text blocks).
	ContentWrapper string `yaml:"content_wrapper,omitempty"`

	// ResponseJSONPath locates the reply text, e.g. "content[0].text".
	ResponseJSONPath string `yaml:"response_json_path,omitempty"`

	ExtraHeaders map[string]string `yaml:"extra_headers,omitempty"`
}

// PromptMessage is one role/content pair of a chat prompt.
type PromptMessage struct {
	Role    string `yaml:"role"`
	Content string `yaml:"content"`
}

const (
	DefaultAuthHeaderName   = "Authorization"
	DefaultAuthHeaderPrefix = "Bearer "

	SystemMessageModeInline   = "inline"
	SystemMessageModeSeparate = "separate"

	ContentWrapperStandard  = "standard"
	ContentWrapperAnthropic = "anthropic"

	DefaultResponsePath   = "choices[0].message.content"
	AnthropicResponsePath = "content[0].text"
)

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// GetAuthHeaderName returns the credential header name.
func (f APIFormat) GetAuthHeaderName() string {
	return orDefault(f.AuthHeaderName, DefaultAuthHeaderName)
}

// GetAuthHeaderPrefix returns the credential prefix. A custom header name with
// no prefix means the key is sent as is.
func (f APIFormat) GetAuthHeaderPrefix() string {
	if f.AuthHeaderName == "" {
		return orDefault(f.AuthHeaderPrefix, DefaultAuthHeaderPrefix)
	}
	return f.AuthHeaderPrefix
}

func (f APIFormat) GetSystemMessageMode() string {
	return orDefault(f.SystemMessageMode, SystemMessageModeInline)
}

func (f APIFormat) GetContentWrapper() string {
	return orDefault(f.ContentWrapper, ContentWrapperStandard)
}

func (f APIFormat) GetResponseJSONPath() string {
	return orDefault(f.ResponseJSONPath, DefaultResponsePath)
}

// IsSystemMessageSeparate reports whether system prompts go in their own field.
func (f APIFormat) IsSystemMessageSeparate() bool {
	return f.GetSystemMessageMode() == SystemMessageModeSeparate
}

// IsContentWrapped reports whether message content is sent as text blocks.
func (f APIFormat) IsContentWrapped() bool {
	return f.GetContentWrapper() == ContentWrapperAnthropic
}
