// Package unifiedllm sends a conversation to one of several interchangeable
// text-generation backends and returns a single normalized text reply.
//
// # Backends
//
// Three adapters implement the [Backend] interface:
//
//   - ClaudeAdapter: Anthropic Messages API through anthropic-sdk-go
//   - GroqAdapter: Groq Cloud through the OpenAI-compatible go-openai SDK
//   - HyperbolicAdapter: Hyperbolic chat completions over plain HTTP
//
// Each adapter declares its [Capabilities]; the shared request algorithm
// switches context-overflow recovery and reasoning repair on or off from
// them rather than each adapter carrying its own retry code.
//
// # Replies are always text
//
// SendRequest never returns an error. Transport failures, unrecoverable
// context overflow and empty replies become [FallbackDisconnected];
// reasoning models that keep producing an unterminated <think> block become
// [FallbackIncomplete] after [DefaultMaxAttempts] tries.
//
//	backend, err := unifiedllm.NewBackend("groq", unifiedllm.BackendConfig{
//	    ModelName: "deepseek-r1-distill-llama-70b",
//	}, unifiedllm.WithKeyProvider(store), unifiedllm.WithPromptLogger(sink))
//	if err != nil {
//	    return err // missing credentials are a construction-time error
//	}
//	reply := backend.SendRequest(ctx, []unifiedllm.Turn{
//	    unifiedllm.UserTurn("Hello"),
//	}, "You are a helpful assistant.")
//
// # Context overflow
//
// When a provider reports that the prompt exceeds its context window, the
// oldest non-system turn is dropped and the call repeated until it succeeds
// or a single turn is left.
//
// # Reasoning markup
//
// For models matching [ReasoningModelTags], a reply with an opening <think>
// and no closing tag is requested again; a closing tag with no opening tag
// is treated as if the reply had started inside the block. The accepted raw
// reply is logged and every <think>...</think> span is stripped before it is
// returned.
package unifiedllm
