package unifiedllm

import (
	"regexp"
	"strings"
)

// Reasoning markup emitted by models such as DeepSeek-R1.
const (
	ThinkOpen  = "<think>"
	ThinkClose = "</think>"
)

// ReasoningModelTags are matched case-insensitively against the model id to
// decide whether a reply carries reasoning markup.
var ReasoningModelTags = []string{"deepseek-r1"}

var thinkSpan = regexp.MustCompile(`(?s)<think>.*?</think>`)

// IsReasoningModel reports whether model is tagged as a reasoning model.
func IsReasoningModel(model string) bool {
	lower := strings.ToLower(model)
	for _, tag := range ReasoningModelTags {
		if strings.Contains(lower, tag) {
			return true
		}
	}
	return false
}

// MarkupState classifies the <think> delimiters found in a reply.
type MarkupState int

const (
	// MarkupBalanced means both delimiters are present.
	MarkupBalanced MarkupState = iota
	// MarkupAbsent means neither delimiter is present.
	MarkupAbsent
	// MarkupMissingOpen means a closing delimiter appears with no opening
	// one; the reply was cut at the front.
	MarkupMissingOpen
	// MarkupIncomplete means an opening delimiter never closes.
	MarkupIncomplete
)

func (s MarkupState) String() string {
	switch s {
	case MarkupBalanced:
		return "balanced"
	case MarkupAbsent:
		return "absent"
	case MarkupMissingOpen:
		return "missing_open"
	case MarkupIncomplete:
		return "incomplete"
	}
	return "unknown"
}

// InspectMarkup detects the opening and closing delimiters independently.
func InspectMarkup(reply string) MarkupState {
	hasOpen := strings.Contains(reply, ThinkOpen)
	hasClose := strings.Contains(reply, ThinkClose)
	switch {
	case hasOpen && !hasClose:
		return MarkupIncomplete
	case hasClose && !hasOpen:
		return MarkupMissingOpen
	case hasOpen:
		return MarkupBalanced
	}
	return MarkupAbsent
}

// RepairMarkup returns the reply with an implicit opening delimiter restored
// and reports whether the reply is usable. Incomplete replies are not
// usable and must be requested again.
func RepairMarkup(reply string) (string, bool) {
	switch InspectMarkup(reply) {
	case MarkupIncomplete:
		return reply, false
	case MarkupMissingOpen:
		return ThinkOpen + reply, true
	}
	return reply, true
}

// StripReasoning removes every <think>...</think> span and trims the result.
func StripReasoning(reply string) string {
	return strings.TrimSpace(thinkSpan.ReplaceAllString(reply, ""))
}
