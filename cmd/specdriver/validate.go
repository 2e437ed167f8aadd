package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/specdriver/internal/domain/spec"
	"github.com/alexisbeaulieu97/specdriver/internal/fixtures"
	"github.com/alexisbeaulieu97/specdriver/internal/infrastructure/specfile"
)

func newValidateCmd() *cobra.Command {
	var specPath string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Parse a specification file and report unresolved grammars",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateSpecPath(specPath); err != nil {
				return err
			}

			specification, err := specfile.Load(specPath, fixtures.NewRegistry())
			if err != nil {
				return err
			}

			gaps := collectGaps(specification.Steps)
			if len(gaps) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%d top-level steps)\n", specification.ID, len(specification.Steps))
				return nil
			}

			for _, gap := range gaps {
				fmt.Fprintln(cmd.OutOrStdout(), gap)
			}
			return fmt.Errorf("%d unresolved step(s)", len(gaps))
		},
	}

	cmd.Flags().StringVarP(&specPath, "spec", "s", "", "Path to specification file")
	cmd.MarkFlagRequired("spec") //nolint:errcheck

	return cmd
}

// collectGaps walks the compiled tree and reports every placeholder step.
func collectGaps(steps []spec.Step) []string {
	var gaps []string
	for _, step := range steps {
		switch s := step.(type) {
		case *spec.Missing:
			gaps = append(gaps, fmt.Sprintf("%s: unknown grammar %q", s.ID(), s.Grammar()))
		case *spec.Invalid:
			gaps = append(gaps, fmt.Sprintf("%s: invalid grammar %q: %s", s.ID(), s.Grammar(), s.Reason()))
		}
		gaps = append(gaps, collectGaps(step.Children())...)
	}
	return gaps
}
