package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/martinemde/chatrelay/unifiedllm"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var askCmd = &cobra.Command{
	Use:   "ask [message]",
	Short: "Send a conversation and print the reply",
	Long: `Send a conversation to the configured backend and print the reply.

The conversation is read from --conversation (JSON or YAML with "system" and
"turns") and the positional message, if any, is appended as a user turn.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringP("conversation", "c", "", "Conversation file (.json, .yaml or .yml)")
	askCmd.Flags().StringP("system", "s", "", "System message (overrides the file's)")
	askCmd.Flags().String("stop", "", "Stop sequence for this request")

	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	s, err := loadSettings()
	if err != nil {
		return err
	}
	logger := newLogger(s.Verbose)

	path, _ := cmd.Flags().GetString("conversation")
	system, _ := cmd.Flags().GetString("system")
	message := ""
	if len(args) == 1 {
		message = args[0]
	}

	conv, err := buildConversation(path, system, message)
	if err != nil {
		return err
	}

	backend, err := buildBackend(s, logger)
	if err != nil {
		return err
	}

	var opts []unifiedllm.RequestOption
	if cmd.Flags().Changed("stop") {
		stop, _ := cmd.Flags().GetString("stop")
		opts = append(opts, unifiedllm.WithStop(stop))
	}

	return ask(cmd.Context(), backend, conv, cmd.OutOrStdout(), opts...)
}

func ask(ctx context.Context, backend unifiedllm.Backend, conv unifiedllm.Conversation, out io.Writer, opts ...unifiedllm.RequestOption) error {
	if ctx == nil {
		ctx = context.Background()
	}
	reply := backend.SendRequest(ctx, conv.Turns, conv.SystemMessage, opts...)
	_, err := fmt.Fprintln(out, reply)
	return err
}

// buildConversation loads path, if given, then applies the system override
// and appends message as a user turn.
func buildConversation(path, system, message string) (unifiedllm.Conversation, error) {
	var conv unifiedllm.Conversation
	if path != "" {
		loaded, err := loadConversation(path)
		if err != nil {
			return conv, err
		}
		conv = loaded
	}
	if system != "" {
		conv.SystemMessage = system
	}
	if strings.TrimSpace(message) != "" {
		conv.Turns = append(conv.Turns, unifiedllm.UserTurn(message))
	}
	if err := conv.Validate(); err != nil {
		return conv, err
	}
	return conv, nil
}

// loadConversation reads a JSON or YAML conversation file, chosen by
// extension.
func loadConversation(path string) (unifiedllm.Conversation, error) {
	var conv unifiedllm.Conversation

	var decode func([]byte, any) error
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		decode = json.Unmarshal
	case ".yaml", ".yml":
		decode = yaml.Unmarshal
	default:
		return conv, fmt.Errorf("unsupported conversation file type %q", ext)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return conv, fmt.Errorf("reading %s: %w", path, err)
	}
	if err := decode(data, &conv); err != nil {
		return conv, fmt.Errorf("parsing %s: %w", path, err)
	}

	for i, t := range conv.Turns {
		role, err := unifiedllm.ParseRole(string(t.Role))
		if err != nil {
			return conv, fmt.Errorf("%s: turn %d: %w", path, i, err)
		}
		conv.Turns[i].Role = role
	}
	return conv, nil
}
