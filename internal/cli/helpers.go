package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/aretw0/canopy/internal/logging"
	"github.com/aretw0/canopy/pkg/domain"
)

// SignalContext wraps a context and captures the signal that cancelled it.
type SignalContext struct {
	context.Context
	Cancel func()
	start  sync.Once
	stop   sync.Once
	sigCh  chan os.Signal
	sigVal os.Signal
	mu     sync.Mutex
}

// NewSignalContext creates a context that is cancelled on SIGINT or SIGTERM.
// It acts as a drop-in replacement for signal.NotifyContext but allows
// retrieving the signal.
func NewSignalContext(parent context.Context) *SignalContext {
	ctx, cancel := context.WithCancel(parent)
	sc := &SignalContext{
		Context: ctx,
		Cancel:  cancel,
		sigCh:   make(chan os.Signal, 1),
	}

	sc.start.Do(func() {
		signal.Notify(sc.sigCh, os.Interrupt, syscall.SIGTERM)
		go func() {
			select {
			case sig := <-sc.sigCh:
				sc.mu.Lock()
				sc.sigVal = sig
				sc.mu.Unlock()
				sc.Cancel()
			case <-sc.Context.Done():
				// Context cancelled elsewhere
			}
			sc.stop.Do(func() {
				signal.Stop(sc.sigCh)
			})
		}()
	})

	return sc
}

// Signal returns the signal that caused the context to be cancelled, or nil.
func (sc *SignalContext) Signal() os.Signal {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.sigVal
}

// createLogger configures the command logger. Debug wins over any
// configured level; the silent default keeps stdout clean for pane output.
func createLogger(debug bool, level string) *slog.Logger {
	if debug {
		return logging.New(slog.LevelDebug)
	}
	if level != "" {
		return logging.New(logging.ParseLevel(level))
	}
	return logging.NewNop()
}

// printSystemMessage prints a standardized system message to stdout.
func printSystemMessage(format string, args ...any) {
	fmt.Printf(">>> %s\n", fmt.Sprintf(format, args...))
}

// createDebugHooks logs every survey lifecycle event at debug level.
func createDebugHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnProjectEnter: func(ctx context.Context, e *domain.ProjectEvent) {
			logger.Debug("Enter Project", "index", e.Index)
		},
		OnProjectReport: func(ctx context.Context, e *domain.ProjectEvent) {
			logger.Debug("Project Reported", "index", e.Index, "lines", e.Lines)
		},
		OnProjectSkip: func(ctx context.Context, e *domain.ProjectEvent) {
			logger.Debug("Project Skipped", "index", e.Index)
		},
		OnQueryFault: func(ctx context.Context, e *domain.FaultEvent) {
			logger.Debug("Query Fault", "index", e.Index, "stage", e.Stage, "err", e.Err)
		},
		OnPaneCreate: func(ctx context.Context, e *domain.PaneEvent) {
			logger.Debug("Pane Resolved", "pane", e.Name, "created", e.Created)
		},
		OnPassEnd: func(ctx context.Context, e *domain.PassEvent) {
			logger.Debug("Pass Finished", "visited", e.Summary.Visited, "err", e.Err)
		},
	}
}
