package cli

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aretw0/canopy"
	"github.com/aretw0/canopy/internal/presentation/tui"
)

// RunWatch surveys the workspace and re-surveys on every change.
func RunWatch(opts RunOptions) error {
	logger := createLogger(opts.Debug, opts.LogLevel)
	if !opts.Quiet {
		tui.PrintBanner(canopy.Version)
	}

	logger.Info("Starting Watcher", "path", opts.WorkspacePath)

	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	for {
		if !watchIteration(sigCtx, opts, logger) {
			break
		}
		logger.Info("Watcher restarting")
	}

	if !opts.Quiet {
		printSystemMessage("Watcher stopped.")
	}
	return nil
}

// watchIteration runs one survey pass and blocks until a change or a
// signal. It reports whether the watcher should run another iteration.
func watchIteration(parentCtx *SignalContext, opts RunOptions, logger *slog.Logger) bool {
	// Child context so a reload never cancels the signal context.
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	srv, cleanup, err := createSurveyor(opts, logger)
	if err != nil {
		logger.Error("Surveyor initialization failed", "err", err)
		select {
		case <-parentCtx.Done():
			return false
		case <-time.After(2 * time.Second):
			return true
		}
	}
	defer cleanup()
	defer srv.Close()

	watchCh, err := srv.Watch(ctx)
	if err != nil {
		logger.Error("Watch unavailable, falling back to a single pass", "err", err)
		if _, err := srv.Survey(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Survey failed", "err", err)
		}
		return false
	}

	summary, err := srv.Survey(ctx)
	switch {
	case errors.Is(err, context.Canceled):
		return false
	case err != nil:
		// Wait for the workspace to be fixed before retrying.
		logger.Error("Survey failed", "err", err)
	case !opts.Quiet:
		printSystemMessage("Surveyed %d project(s). Waiting for changes...", summary.Reported)
	}

	select {
	case <-parentCtx.Done():
		logger.Info("Stopping watcher (signal received)", "signal", parentCtx.Signal())
		return false
	case event, ok := <-watchCh:
		if !ok {
			return false
		}
		logger.Info("Change detected, triggering new pass", "event", event)
		if !opts.Quiet {
			printSystemMessage("Change detected in '%s'.", event)
		}
		// Delay slightly to ensure the file system is stable.
		time.Sleep(100 * time.Millisecond)
		return true
	}
}
