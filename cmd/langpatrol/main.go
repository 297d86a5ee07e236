package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "langpatrol",
		Short: "Static linter for LLM prompts",
		Long:  "langpatrol analyzes prompts for unresolved placeholders, missing context, conflicting instructions, schema risk, and token overage before they're sent to a model.",
	}
	cmd.AddCommand(newAnalyzeCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newInitCmd())
	return cmd
}
