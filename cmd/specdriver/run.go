package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/specdriver/internal/domain/result"
	"github.com/alexisbeaulieu97/specdriver/internal/engine"
	"github.com/alexisbeaulieu97/specdriver/internal/fixtures"
	"github.com/alexisbeaulieu97/specdriver/internal/infrastructure/events"
	"github.com/alexisbeaulieu97/specdriver/internal/infrastructure/specfile"
	"github.com/alexisbeaulieu97/specdriver/internal/logger"
)

type runOptions struct {
	SpecPath      string
	MaxRetries    int
	MaxRetriesSet bool
	Verbose       bool
}

var runCmdRunner = runSpec

func newRunCmd(root *rootFlags) *cobra.Command {
	opts := runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute a specification file and report the verdict",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Verbose = root.verbose
			opts.MaxRetriesSet = cmd.Flags().Changed("max-retries")

			if err := validateSpecPath(opts.SpecPath); err != nil {
				return err
			}

			return runCmdRunner(cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.SpecPath, "spec", "s", "", "Path to specification file")
	cmd.Flags().IntVar(&opts.MaxRetries, "max-retries", 0, "Retries after a failed attempt")
	cmd.MarkFlagRequired("spec") //nolint:errcheck

	return cmd
}

func runSpec(out io.Writer, opts runOptions) error {
	level := "info"
	if opts.Verbose {
		level = "debug"
	}
	log, err := logger.New(logger.Options{Level: level, HumanReadable: true, Writer: os.Stderr})
	if err != nil {
		return err
	}

	specification, err := specfile.Load(opts.SpecPath, fixtures.NewRegistry())
	if err != nil {
		return err
	}

	// An explicit flag wins over the file's max_retries, including zero.
	maxRetries := specification.MaxRetries
	if opts.MaxRetriesSet {
		maxRetries = opts.MaxRetries
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	orc := engine.New(fixtures.ContextFactory,
		engine.WithLogger(log),
		engine.WithPublisher(events.NewLoggingPublisher(log)),
		engine.WithStopConditions(engine.StopConditions{MaxRetries: maxRetries}),
	)

	queue := events.NewMemoryQueue()
	results, err := orc.Execute(ctx, engine.NewRequest(specification), queue)
	if err != nil {
		return err
	}
	if results == nil {
		return fmt.Errorf("run cancelled before execution started")
	}

	printResults(out, results)

	if !results.Passed() {
		return fmt.Errorf("specification %s did not pass: %s", results.SpecID, results.Counts.String())
	}
	return nil
}

func printResults(out io.Writer, res *result.SpecResults) {
	fmt.Fprintf(out, "%s: %s (attempt %d, %s)\n", res.SpecID, res.State, res.Attempt, res.Duration.Round(time.Millisecond))
	fmt.Fprintf(out, "  %s\n", res.Counts.String())

	for _, step := range res.Results {
		if step.Status == result.StatusSuccess {
			continue
		}
		line := fmt.Sprintf("  [%s] %s", step.Status, step.StepID)
		if step.Message != "" {
			line += ": " + step.Message
		}
		fmt.Fprintln(out, line)
	}
}
