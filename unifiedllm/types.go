package unifiedllm

import (
	"context"
	"fmt"
	"strings"
)

// Role identifies who authored a turn.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	}
	return false
}

// ParseRole converts a wire role string to a Role.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// Turn is one role-tagged entry in a conversation.
type Turn struct {
	Role    Role   `json:"role" yaml:"role"`
	Content string `json:"content" yaml:"content"`
}

// UserTurn creates a user turn.
func UserTurn(content string) Turn { return Turn{Role: RoleUser, Content: content} }

// AssistantTurn creates an assistant turn.
func AssistantTurn(content string) Turn { return Turn{Role: RoleAssistant, Content: content} }

// SystemTurn creates a system turn inside the turn sequence.
func SystemTurn(content string) Turn { return Turn{Role: RoleSystem, Content: content} }

// Conversation pairs a system instruction with an ordered turn sequence.
type Conversation struct {
	SystemMessage string `json:"system" yaml:"system"`
	Turns         []Turn `json:"turns" yaml:"turns"`
}

// Validate checks that the conversation can be sent.
func (c Conversation) Validate() error {
	if len(c.Turns) == 0 {
		return fmt.Errorf("conversation has no turns")
	}
	for i, t := range c.Turns {
		if !t.Role.Valid() {
			return fmt.Errorf("turn %d: unknown role %q", i, t.Role)
		}
	}
	return nil
}

func cloneTurns(turns []Turn) []Turn {
	out := make([]Turn, len(turns))
	copy(out, turns)
	return out
}

// BackendConfig holds the per-adapter settings. It is resolved once at
// construction and never modified afterwards.
type BackendConfig struct {
	ModelName    string  `json:"model" mapstructure:"model"`
	EndpointURL  string  `json:"url,omitempty" mapstructure:"url"`
	APIKey       string  `json:"-" mapstructure:"api_key"`
	MaxTokens    int     `json:"max_tokens" mapstructure:"max_tokens"`
	Temperature  float64 `json:"temperature" mapstructure:"temperature"`
	TopP         float64 `json:"top_p" mapstructure:"top_p"`
	StopSequence string  `json:"stop,omitempty" mapstructure:"stop"`
}

// withDefaults fills zero fields from d. EndpointURL and APIKey are
// left alone so callers can tell whether an override was supplied.
func (c BackendConfig) withDefaults(d BackendConfig) BackendConfig {
	if c.ModelName == "" {
		c.ModelName = d.ModelName
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = d.MaxTokens
	}
	if c.Temperature == 0 {
		c.Temperature = d.Temperature
	}
	if c.TopP == 0 {
		c.TopP = d.TopP
	}
	if c.StopSequence == "" {
		c.StopSequence = d.StopSequence
	}
	return c
}

// EmbedSupport describes how a backend responds to an embedding request.
type EmbedSupport int

const (
	// EmbedUnsupported backends fail with an UnsupportedCapabilityError.
	EmbedUnsupported EmbedSupport = iota
	// EmbedNoop backends log a diagnostic and return no vector.
	EmbedNoop
)

func (s EmbedSupport) String() string {
	switch s {
	case EmbedUnsupported:
		return "unsupported"
	case EmbedNoop:
		return "noop"
	}
	return "unknown"
}

// Capabilities is the set of resilience features a backend variant runs.
type Capabilities struct {
	// OverflowRecovery enables dropping the oldest turn and retrying
	// when the provider reports a context-length violation.
	OverflowRecovery bool

	// ReasoningRepair enables <think> markup inspection and bounded
	// re-requests for reasoning-tagged models.
	ReasoningRepair bool

	Embeddings EmbedSupport
}

// Fixed replies returned when a request cannot produce a usable answer.
const (
	FallbackDisconnected = "My brain disconnected, try again."
	FallbackIncomplete   = "Response incomplete, please try again."
)

// IsFallback reports whether text is one of the fixed failure replies.
func IsFallback(text string) bool {
	return text == FallbackDisconnected || text == FallbackIncomplete
}

// Backend is a text-generation provider behind a common contract.
type Backend interface {
	Name() string
	Model() string
	Capabilities() Capabilities

	// SendRequest never fails: every error path resolves to either a
	// normalized reply or one of the Fallback sentinels.
	SendRequest(ctx context.Context, turns []Turn, systemMessage string, opts ...RequestOption) string

	Embed(ctx context.Context, text string) ([]float64, error)
}

// RequestOption adjusts a single SendRequest call.
type RequestOption func(*requestSettings)

type requestSettings struct {
	stop    string
	stopSet bool
}

// WithStop overrides the adapter's stop sequence for one call. An empty
// string disables the stop sequence.
func WithStop(seq string) RequestOption {
	return func(s *requestSettings) {
		s.stop = seq
		s.stopSet = true
	}
}

func resolveRequestSettings(cfg BackendConfig, opts []RequestOption) requestSettings {
	s := requestSettings{stop: cfg.StopSequence}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// KeyProvider resolves credentials by name.
type KeyProvider interface {
	GetKey(name string) (string, error)
}

// PromptLogger records a prompt and the reply it produced. Implementations
// must not panic and must swallow their own failures.
type PromptLogger interface {
	Log(prompt, response string)
}

type nopPromptLogger struct{}

func (nopPromptLogger) Log(string, string) {}
