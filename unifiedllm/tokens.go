package unifiedllm

import "strings"

// SeparatorToken is an internal marker some fine-tuned models emit in place
// of a reply.
const SeparatorToken = "<|separator|>"

// NoResponsePlaceholder replaces SeparatorToken in returned text.
const NoResponsePlaceholder = "*no response*"

// ReplaceSpecialTokens rewrites internal markers to readable placeholders.
// Applying it twice yields the same text.
func ReplaceSpecialTokens(text string) string {
	return strings.ReplaceAll(text, SeparatorToken, NoResponsePlaceholder)
}
