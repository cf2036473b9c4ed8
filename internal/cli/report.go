// Package cli implements the command-line survey workflows behind the
// canopy binary: one-shot reports, watch mode, and pane inspection.
package cli

import (
	"context"
	"errors"
	"fmt"
)

// Execute runs the survey workflow selected by the options, after merging
// in the workspace config file.
func Execute(opts RunOptions) error {
	cfg, err := LoadConfig(opts.WorkspacePath)
	if err != nil {
		return err
	}
	applyConfig(&opts, cfg)

	if opts.Watch {
		return RunWatch(opts)
	}
	return RunReport(opts)
}

// RunReport performs a single survey pass and prints a short summary.
func RunReport(opts RunOptions) error {
	logger := createLogger(opts.Debug, opts.LogLevel)

	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	srv, cleanup, err := createSurveyor(opts, logger)
	if err != nil {
		return err
	}
	defer cleanup()
	defer srv.Close()

	summary, err := srv.Survey(sigCtx)
	if errors.Is(err, context.Canceled) {
		if !opts.Quiet {
			printSystemMessage("Interrupted after %d project(s).", summary.Visited)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("survey failed: %w", err)
	}

	if !opts.Quiet {
		printSystemMessage("Surveyed %d project(s) in '%s' (%d skipped).",
			summary.Reported, srv.Name, summary.Skipped)
		if summary.Faulted > 0 {
			printSystemMessage("%d project(s) reported with partial data.", summary.Faulted)
		}
		if summary.Dropped > 0 {
			printSystemMessage("%d write(s) dropped by the output sink.", summary.Dropped)
		}
	}
	return nil
}
