package unifiedllm

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

// HyperbolicAdapter implements Backend for the Hyperbolic chat completions
// endpoint over plain HTTP.
type HyperbolicAdapter struct {
	cfg      BackendConfig
	endpoint string
	http     *http.Client
	exchange *exchange
}

// NewHyperbolicAdapter creates a Hyperbolic adapter. cfg.EndpointURL
// replaces the default endpoint when set.
func NewHyperbolicAdapter(cfg BackendConfig, opts ...Option) (*HyperbolicAdapter, error) {
	o := newAdapterOptions(opts)
	def := DefaultConfig(ProviderHyperbolic)
	cfg = cfg.withDefaults(def)

	key, err := o.resolveAPIKey(cfg.APIKey, KeyName(ProviderHyperbolic))
	if err != nil {
		return nil, err
	}
	cfg.APIKey = key

	endpoint := def.EndpointURL
	if cfg.EndpointURL != "" {
		endpoint = strings.TrimRight(cfg.EndpointURL, "/")
	}

	a := &HyperbolicAdapter{
		cfg:      cfg,
		endpoint: endpoint,
		http:     o.httpClient,
	}
	a.exchange = &exchange{
		provider: ProviderHyperbolic,
		model:    cfg.ModelName,
		caps:     a.Capabilities(),
		format:   passthroughFormat,
		call:     a.complete,
		overflow: overflowByMarker,
		opts:     o,
	}
	return a, nil
}

func (a *HyperbolicAdapter) Name() string  { return ProviderHyperbolic }
func (a *HyperbolicAdapter) Model() string { return a.cfg.ModelName }

// Endpoint returns the URL requests are posted to.
func (a *HyperbolicAdapter) Endpoint() string { return a.endpoint }

func (a *HyperbolicAdapter) Capabilities() Capabilities {
	return Capabilities{
		OverflowRecovery: true,
		ReasoningRepair:  true,
		Embeddings:       EmbedUnsupported,
	}
}

// SendRequest sends the conversation and returns the normalized reply.
func (a *HyperbolicAdapter) SendRequest(ctx context.Context, turns []Turn, systemMessage string, opts ...RequestOption) string {
	return a.exchange.send(ctx, turns, systemMessage, resolveRequestSettings(a.cfg, opts))
}

// Embed is not offered by Hyperbolic.
func (a *HyperbolicAdapter) Embed(_ context.Context, _ string) ([]float64, error) {
	return nil, &UnsupportedCapabilityError{
		SDKError:   SDKError{Message: "embeddings are not supported by Hyperbolic"},
		Provider:   ProviderHyperbolic,
		Capability: "embeddings",
	}
}

type hyperbolicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type hyperbolicRequest struct {
	Model       string              `json:"model"`
	Messages    []hyperbolicMessage `json:"messages"`
	MaxTokens   int                 `json:"max_tokens"`
	Temperature float64             `json:"temperature"`
	TopP        float64             `json:"top_p"`
	Stream      bool                `json:"stream"`
	Stop        string              `json:"stop,omitempty"`
}

func (a *HyperbolicAdapter) buildRequestBody(system string, messages []Turn, stop string) ([]byte, error) {
	body := hyperbolicRequest{
		Model:       a.cfg.ModelName,
		MaxTokens:   a.cfg.MaxTokens,
		Temperature: a.cfg.Temperature,
		TopP:        a.cfg.TopP,
		Stream:      false,
		Stop:        stop,
	}
	body.Messages = append(body.Messages, hyperbolicMessage{Role: string(RoleSystem), Content: system})
	for _, m := range messages {
		body.Messages = append(body.Messages, hyperbolicMessage{Role: string(m.Role), Content: m.Content})
	}
	return json.Marshal(body)
}

// complete makes a single request. A finish_reason of "length" is reported
// as a ContextOverflowError.
func (a *HyperbolicAdapter) complete(ctx context.Context, system string, messages []Turn, stop string) (string, error) {
	body, err := a.buildRequestBody(system, messages, stop)
	if err != nil {
		return "", &SDKError{Message: "failed to encode request", Cause: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", &NetworkError{SDKError: SDKError{Message: "failed to create request", Cause: err}}
	}
	httpReq.Header.Set("Authorization", "Bearer "+a.cfg.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := a.http.Do(httpReq)
	if err != nil {
		return "", &NetworkError{SDKError: SDKError{Message: "request failed", Cause: err}}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", buildErrorFromResponse(resp, ProviderHyperbolic)
	}

	return a.parseResponse(resp.Body)
}

func (a *HyperbolicAdapter) parseResponse(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", &NetworkError{SDKError: SDKError{Message: "failed to read response", Cause: err}}
	}
	if !gjson.ValidBytes(data) {
		return "", &ProviderError{
			SDKError:   SDKError{Message: "failed to parse response JSON"},
			Provider:   ProviderHyperbolic,
			StatusCode: http.StatusOK,
		}
	}

	choice := gjson.GetBytes(data, "choices.0")
	if choice.Get("finish_reason").String() == "length" {
		return "", &ContextOverflowError{
			SDKError: SDKError{Message: "context length exceeded"},
			Provider: ProviderHyperbolic,
		}
	}
	return choice.Get("message.content").String(), nil
}
