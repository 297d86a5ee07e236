package main

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

//go:embed .env.example
var envExampleContent string

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Generate a .env.example configuration template",
		RunE: func(cmd *cobra.Command, args []string) error {
			const filename = ".env.example"
			if err := os.WriteFile(filename, []byte(envExampleContent), 0644); err != nil {
				return fmt.Errorf("write %s: %w", filename, err)
			}
			fmt.Printf("wrote %s\n", filename)
			fmt.Println("next steps:")
			fmt.Println("  1. cp .env.example .env")
			fmt.Println("  2. edit .env as needed")
			fmt.Println("  3. langpatrol serve")
			return nil
		},
	}
}
