package unifiedllm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStrictFormat(t *testing.T) {
	tests := []struct {
		name string
		in   []Turn
		want []Turn
	}{
		{
			name: "empty input",
			in:   nil,
			want: []Turn{UserTurn("_")},
		},
		{
			name: "already alternating",
			in:   []Turn{UserTurn("hi"), AssistantTurn("hello")},
			want: []Turn{UserTurn("hi"), AssistantTurn("hello")},
		},
		{
			name: "leading assistant gets a filler",
			in:   []Turn{AssistantTurn("hello"), UserTurn("hi")},
			want: []Turn{UserTurn("_"), AssistantTurn("hello"), UserTurn("hi")},
		},
		{
			name: "consecutive users merge",
			in:   []Turn{UserTurn("a"), UserTurn("b"), UserTurn("c")},
			want: []Turn{UserTurn("a\nb\nc")},
		},
		{
			name: "consecutive assistants are separated",
			in:   []Turn{UserTurn("q"), AssistantTurn("one"), AssistantTurn("two")},
			want: []Turn{UserTurn("q"), AssistantTurn("one"), UserTurn("_"), AssistantTurn("two")},
		},
		{
			name: "system becomes prefixed user",
			in:   []Turn{SystemTurn("rules"), AssistantTurn("ok")},
			want: []Turn{UserTurn("SYSTEM: rules"), AssistantTurn("ok")},
		},
		{
			name: "system merges into adjacent user",
			in:   []Turn{UserTurn("hi"), SystemTurn("note")},
			want: []Turn{UserTurn("hi\nSYSTEM: note")},
		},
		{
			name: "content is trimmed",
			in:   []Turn{UserTurn("  padded \n")},
			want: []Turn{UserTurn("padded")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StrictFormat(tt.in))
		})
	}
}

func TestStrictFormat_DoesNotModifyInput(t *testing.T) {
	in := []Turn{UserTurn(" a "), UserTurn("b")}
	StrictFormat(in)
	assert.Equal(t, []Turn{UserTurn(" a "), UserTurn("b")}, in)
}

func TestStrictFormat_Alternates(t *testing.T) {
	in := []Turn{
		AssistantTurn("1"), AssistantTurn("2"), SystemTurn("3"),
		UserTurn("4"), AssistantTurn("5"), UserTurn("6"), UserTurn("7"),
	}
	out := StrictFormat(in)

	assert.Equal(t, RoleUser, out[0].Role)
	for i := 1; i < len(out); i++ {
		assert.NotEqual(t, out[i-1].Role, out[i].Role, "turn %d repeats role", i)
	}
}
