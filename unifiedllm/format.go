package unifiedllm

import "strings"

// fillerTurn separates turns that providers refuse to accept back to back.
var fillerTurn = Turn{Role: RoleUser, Content: "_"}

// StrictFormat rewrites turns into the strict alternating shape required by
// providers such as Anthropic:
//
//   - content is trimmed and system turns become user turns prefixed "SYSTEM: "
//   - consecutive user turns are merged with a newline
//   - consecutive assistant turns are separated by a "_" user turn
//   - the result always starts with a user turn
//
// The input slice is not modified.
func StrictFormat(turns []Turn) []Turn {
	out := make([]Turn, 0, len(turns)+1)
	var prev Role

	for _, t := range turns {
		t.Content = strings.TrimSpace(t.Content)
		if t.Role == RoleSystem {
			t.Role = RoleUser
			t.Content = "SYSTEM: " + t.Content
		}

		switch {
		case t.Role == prev && t.Role == RoleAssistant:
			out = append(out, fillerTurn, t)
		case t.Role == prev:
			out[len(out)-1].Content += "\n" + t.Content
		default:
			out = append(out, t)
		}
		prev = t.Role
	}

	if len(out) == 0 {
		return []Turn{fillerTurn}
	}
	if out[0].Role != RoleUser {
		out = append([]Turn{fillerTurn}, out...)
	}
	return out
}

// passthroughFormat copies turns unchanged for providers that accept
// OpenAI-style message lists directly.
func passthroughFormat(turns []Turn) []Turn {
	return cloneTurns(turns)
}
