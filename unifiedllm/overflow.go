package unifiedllm

import (
	"errors"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// OverflowDetector reports whether err is a context-length violation the
// adapter can recover from by shortening the conversation.
type OverflowDetector func(err error) bool

// overflowByMessage recognizes overflow from the error text or an SDK error
// code. Used by the Groq adapter.
func overflowByMessage(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if code, ok := apiErr.Code.(string); ok && code == ErrContextLengthCode {
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "context length")
}

// overflowByMarker recognizes overflow from an explicit marker: a
// ContextOverflowError raised on finish_reason "length", or a provider
// error code. Used by the Hyperbolic adapter.
func overflowByMarker(err error) bool {
	if err == nil {
		return false
	}
	var coe *ContextOverflowError
	if errors.As(err, &coe) {
		return true
	}
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Code == ErrContextLengthCode || contextLengthPhrase(pe.Message)
	}
	return false
}

func neverOverflow(error) bool { return false }

// DropOldestTurn returns a copy of turns without the oldest non-system turn.
// It reports false, and returns turns unchanged, when one non-system turn
// or fewer remain.
func DropOldestTurn(turns []Turn) ([]Turn, bool) {
	idx := -1
	remaining := 0
	for i, t := range turns {
		if t.Role == RoleSystem {
			continue
		}
		if idx < 0 {
			idx = i
		}
		remaining++
	}
	if remaining <= 1 {
		return turns, false
	}

	out := make([]Turn, 0, len(turns)-1)
	out = append(out, turns[:idx]...)
	out = append(out, turns[idx+1:]...)
	return out, true
}
