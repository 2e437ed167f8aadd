package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/specdriver/internal/fixtures"
)

func newGrammarsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grammars",
		Short: "List the registered grammar keys",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, key := range fixtures.NewRegistry().Keys() {
				fmt.Fprintln(cmd.OutOrStdout(), key)
			}
			return nil
		},
	}

	return cmd
}
