package main

import (
	"fmt"

	"github.com/martinemde/chatrelay/unifiedllm"
	"github.com/spf13/cobra"
)

var embedCmd = &cobra.Command{
	Use:   "embed <text>",
	Short: "Request an embedding vector",
	Args:  cobra.ExactArgs(1),
	RunE:  runEmbed,
}

func init() {
	rootCmd.AddCommand(embedCmd)
}

func runEmbed(cmd *cobra.Command, args []string) error {
	s, err := loadSettings()
	if err != nil {
		return err
	}
	backend, err := buildBackend(s, newLogger(s.Verbose))
	if err != nil {
		return err
	}

	vec, err := backend.Embed(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if vec == nil {
		fmt.Fprintf(out, "%s returned no embedding\n", backend.Name())
		return nil
	}
	for _, v := range vec {
		fmt.Fprintln(out, v)
	}
	return nil
}

// describeEmbed summarizes how a provider answers an embedding request.
func describeEmbed(caps unifiedllm.Capabilities) string {
	switch caps.Embeddings {
	case unifiedllm.EmbedNoop:
		return "no (returns nothing)"
	case unifiedllm.EmbedUnsupported:
		return "no (error)"
	}
	return "yes"
}
