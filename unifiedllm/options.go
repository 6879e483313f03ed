package unifiedllm

import (
	"log/slog"
	"net/http"
	"os"
)

// Option configures an adapter.
type Option func(*adapterOptions)

type adapterOptions struct {
	logger     *slog.Logger
	sink       PromptLogger
	events     *EventEmitter
	policy     RetryPolicy
	sleeper    Sleeper
	httpClient *http.Client
	keys       KeyProvider
}

func newAdapterOptions(opts []Option) adapterOptions {
	o := adapterOptions{
		logger:  slog.Default(),
		sink:    nopPromptLogger{},
		policy:  DefaultRetryPolicy(),
		sleeper: DefaultSleeper,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.httpClient == nil {
		o.httpClient = newHTTPClient().client
	}
	return o
}

// WithLogger sets the structured logger for diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(o *adapterOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithPromptLogger sets the sink that records accepted prompt/reply pairs.
func WithPromptLogger(sink PromptLogger) Option {
	return func(o *adapterOptions) {
		if sink != nil {
			o.sink = sink
		}
	}
}

// WithEventEmitter publishes request lifecycle events to emitter.
func WithEventEmitter(emitter *EventEmitter) Option {
	return func(o *adapterOptions) {
		o.events = emitter
	}
}

// WithRetryPolicy overrides the reasoning-repair retry policy.
func WithRetryPolicy(policy RetryPolicy) Option {
	return func(o *adapterOptions) {
		o.policy = policy
	}
}

// WithSleeper overrides how the adapter waits between retries.
func WithSleeper(s Sleeper) Option {
	return func(o *adapterOptions) {
		if s != nil {
			o.sleeper = s
		}
	}
}

// WithHTTPClient sets the HTTP client used for provider calls.
func WithHTTPClient(c *http.Client) Option {
	return func(o *adapterOptions) {
		o.httpClient = c
	}
}

// WithKeyProvider sets where API keys are looked up when the config does
// not carry one.
func WithKeyProvider(kp KeyProvider) Option {
	return func(o *adapterOptions) {
		o.keys = kp
	}
}

// resolveAPIKey returns the configured key, or looks name up through the
// key provider, or the environment when no provider is set.
func (o adapterOptions) resolveAPIKey(configured, name string) (string, error) {
	if configured != "" {
		return configured, nil
	}
	if o.keys != nil {
		key, err := o.keys.GetKey(name)
		if err != nil {
			return "", &ConfigurationError{SDKError: SDKError{
				Message: name + " is required",
				Cause:   err,
			}}
		}
		if key != "" {
			return key, nil
		}
	} else if key := os.Getenv(name); key != "" {
		return key, nil
	}
	return "", &ConfigurationError{SDKError: SDKError{
		Message: name + " is required",
	}}
}
