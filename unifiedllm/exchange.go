package unifiedllm

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

// errorMarkers in a reply suggest the model echoed an error; such replies
// are returned but kept out of the prompt log.
var errorMarkers = []string{"Error:", "exception:"}

// LooksLikeError reports whether text contains an error marker.
func LooksLikeError(text string) bool {
	for _, m := range errorMarkers {
		if strings.Contains(text, m) {
			return true
		}
	}
	return false
}

// callFunc performs one provider call with already formatted messages.
type callFunc func(ctx context.Context, system string, messages []Turn, stop string) (string, error)

// exchange runs the shared SendRequest algorithm for every adapter. The
// adapter contributes the provider call, the message formatter and the
// overflow detector; capabilities switch the resilience steps on and off.
type exchange struct {
	provider string
	model    string
	caps     Capabilities
	format   func([]Turn) []Turn
	call     callFunc
	overflow OverflowDetector
	opts     adapterOptions
}

// request carries the state of one SendRequest invocation.
type request struct {
	id     string
	log    *slog.Logger
	system string
	stop   string
	state  *RetryState
}

func (x *exchange) send(ctx context.Context, turns []Turn, system string, settings requestSettings) string {
	id := uuid.NewString()
	req := &request{
		id:     id,
		log:    x.opts.logger.With("provider", x.provider, "model", x.model, "request_id", id),
		system: system,
		stop:   settings.stop,
		state:  newRetryState(x.opts.policy),
	}

	if len(turns) == 0 {
		req.log.Error("request has no turns")
		return x.fallback(req, FallbackDisconnected, "no turns")
	}

	reasoning := x.caps.ReasoningRepair && IsReasoningModel(x.model)
	if !reasoning {
		req.state.MaxAttempts = 1
	}

	remaining := cloneTurns(turns)
	for req.state.Next() {
		if req.state.AttemptsUsed > 1 {
			x.opts.sleeper.Sleep(ctx, x.opts.policy.Backoff.DelayForAttempt(req.state.AttemptsUsed-1))
		}
		x.emit(req, EventRequestAttempt, map[string]any{
			"attempt": req.state.AttemptsUsed,
			"turns":   len(remaining),
		})

		raw, sent, err := x.resolveOverflow(ctx, req, remaining)
		remaining = sent
		if err != nil {
			req.log.Error("request failed", "error", err, "attempt", req.state.AttemptsUsed)
			return x.fallback(req, FallbackDisconnected, err.Error())
		}

		if !reasoning {
			if strings.TrimSpace(raw) == "" {
				req.log.Warn("empty reply from provider")
				return x.fallback(req, FallbackDisconnected, "empty reply")
			}
			x.record(req, remaining, raw)
			return ReplaceSpecialTokens(raw)
		}

		repaired, ok := RepairMarkup(raw)
		if !ok {
			req.log.Warn("partial <think> block detected, re-generating request",
				"attempt", req.state.AttemptsUsed, "max_attempts", req.state.MaxAttempts)
			x.emit(req, EventReasoningRetry, map[string]any{
				"attempt": req.state.AttemptsUsed,
				"reason":  MarkupIncomplete.String(),
			})
			continue
		}

		text := StripReasoning(repaired)
		if text == "" {
			req.log.Warn("reply is empty once reasoning is removed, re-generating request",
				"attempt", req.state.AttemptsUsed)
			x.emit(req, EventReasoningRetry, map[string]any{
				"attempt": req.state.AttemptsUsed,
				"reason":  "empty",
			})
			continue
		}

		x.record(req, remaining, repaired)
		return ReplaceSpecialTokens(text)
	}

	req.log.Warn("could not obtain a valid <think> block or normal response after max attempts",
		"attempts", req.state.AttemptsUsed)
	return x.fallback(req, FallbackIncomplete, "attempts exhausted")
}

// resolveOverflow issues the provider call, dropping the oldest turn and
// calling again for as long as the provider reports a context-length
// violation and more than one turn remains. It returns the reply and the
// turns that produced it.
func (x *exchange) resolveOverflow(ctx context.Context, req *request, turns []Turn) (string, []Turn, error) {
	current := turns
	for {
		start := time.Now()
		req.log.Debug("awaiting provider response", "turns", len(current))

		raw, err := x.call(ctx, req.system, x.format(current), req.stop)
		if err == nil {
			req.log.Debug("received provider response", "duration", time.Since(start))
			return raw, current, nil
		}
		if !x.caps.OverflowRecovery || !x.overflow(err) {
			return "", current, err
		}

		shorter, ok := DropOldestTurn(current)
		if !ok {
			return "", current, err
		}
		req.log.Info("context length exceeded, trying again with a shorter context",
			"from_turns", len(current), "to_turns", len(shorter))
		x.emit(req, EventContextTruncated, map[string]any{
			"from_turns": len(current),
			"to_turns":   len(shorter),
		})
		current = shorter
	}
}

// record hands the accepted raw reply and the outbound messages to the
// prompt log, unless the reply looks like an error.
func (x *exchange) record(req *request, turns []Turn, raw string) {
	if LooksLikeError(raw) {
		req.log.Warn("not logging due to potential error in model response", "response", raw)
		x.emit(req, EventLogSkipped, nil)
		return
	}
	x.opts.sink.Log(promptRepresentation(req.system, x.format(turns)), raw)
	x.emit(req, EventReplyLogged, nil)
}

func (x *exchange) fallback(req *request, text, reason string) string {
	x.emit(req, EventFallback, map[string]any{
		"reply":  text,
		"reason": reason,
	})
	return ReplaceSpecialTokens(text)
}

func (x *exchange) emit(req *request, typ EventType, data map[string]any) {
	x.opts.events.Emit(Event{
		Type:      typ,
		Timestamp: time.Now(),
		Provider:  x.provider,
		Model:     x.model,
		RequestID: req.id,
		Data:      data,
	})
}

// promptRepresentation serializes the outbound message set, system
// instruction first, as a JSON array of role/content objects.
func promptRepresentation(system string, messages []Turn) string {
	all := make([]Turn, 0, len(messages)+1)
	all = append(all, Turn{Role: RoleSystem, Content: system})
	all = append(all, messages...)
	data, err := json.Marshal(all)
	if err != nil {
		return ""
	}
	return string(data)
}
