package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/martinemde/chatrelay/unifiedllm"
	"github.com/spf13/cobra"
)

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List supported backends and their defaults",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return printProviders(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(providersCmd)
}

func printProviders(out io.Writer) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PROVIDER\tKEY\tMODEL\tMAX TOKENS\tOVERFLOW\tREASONING\tEMBED")
	for _, p := range unifiedllm.ListProviders() {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%t\t%t\t%s\n",
			p.Name, p.KeyName, p.Defaults.ModelName, p.Defaults.MaxTokens,
			p.Capabilities.OverflowRecovery, p.Capabilities.ReasoningRepair,
			describeEmbed(p.Capabilities))
	}
	return w.Flush()
}
