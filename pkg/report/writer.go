// Package report renders project reports and appends them to an output pane.
//
// The format is a contract: hosts and tests parse these blocks, so Format
// is pinned down to the byte. The Writer half owns the pane lifecycle:
// panes are resolved get-or-create on the first write, never earlier, so a
// survey that dies before its first report leaves no trace in the sink.
package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/canopy/internal/logging"
	"github.com/aretw0/canopy/pkg/coord"
	"github.com/aretw0/canopy/pkg/domain"
	"github.com/aretw0/canopy/pkg/ports"
)

// DefaultPaneName is the pane surveys write to unless configured otherwise.
const DefaultPaneName = "Projects"

// Writer appends report blocks to one named pane.
//
// All writes funnel through the coordinating loop when one is attached, so
// the cached pane handle is only ever touched from that loop. Without a
// loop the caller must serialize access itself.
type Writer struct {
	sink      ports.OutputSink
	loop      *coord.Loop
	name      string
	opts      ports.PaneOptions
	logger    *slog.Logger
	onResolve func(ctx context.Context, name string, created bool)

	pane ports.Pane
}

// Option defines a functional option for configuring the Writer.
type Option func(*Writer)

// WithPane overrides the target pane name.
func WithPane(name string) Option {
	return func(w *Writer) {
		if name != "" {
			w.name = name
		}
	}
}

// WithPaneOptions overrides the options used when the pane gets created.
func WithPaneOptions(opts ports.PaneOptions) Option {
	return func(w *Writer) {
		w.opts = opts
	}
}

// WithLoop attaches the coordinating loop writes must run on.
func WithLoop(loop *coord.Loop) Option {
	return func(w *Writer) {
		w.loop = loop
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Writer) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithResolveHook registers a callback fired once per pass when the pane is
// resolved; created says whether the pane had to be created.
func WithResolveHook(fn func(ctx context.Context, name string, created bool)) Option {
	return func(w *Writer) {
		w.onResolve = fn
	}
}

// NewWriter creates a Writer targeting DefaultPaneName on the given sink.
func NewWriter(sink ports.OutputSink, opts ...Option) *Writer {
	w := &Writer{
		sink:   sink,
		name:   DefaultPaneName,
		opts:   ports.PaneOptions{Visible: true, ClearOnReset: true},
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Pane returns the pane name this writer targets.
func (w *Writer) Pane() string {
	return w.name
}

// WriteReport formats and appends one project report. Reports where no
// field succeeded produce no output and no pane. Returns the number of
// report lines written, excluding the closing blank line.
func (w *Writer) WriteReport(ctx context.Context, rep *domain.ProjectReport) (int, error) {
	text := Format(rep)
	if text == "" {
		return 0, nil
	}
	if err := w.Append(ctx, text); err != nil {
		return 0, err
	}
	return Lines(text), nil
}

// Append writes raw text to the pane: resolve lazily, activate, append.
// Failures come back wrapped in domain.ErrSinkUnavailable; the caller
// decides whether that drops the write or aborts.
func (w *Writer) Append(ctx context.Context, text string) error {
	if w.loop != nil {
		return w.loop.Do(ctx, func(ctx context.Context) error {
			return w.append(ctx, text)
		})
	}
	return w.append(ctx, text)
}

func (w *Writer) append(ctx context.Context, text string) error {
	pane, err := w.resolve(ctx)
	if err != nil {
		w.logger.Debug("dropping write, pane unavailable", "pane", w.name, "error", err)
		return sinkErr(err)
	}

	// Activation failure is non-fatal: the report still lands.
	if err := pane.Activate(ctx); err != nil {
		w.logger.Debug("pane activation failed", "pane", w.name, "error", err)
	}

	if err := pane.Append(ctx, text); err != nil {
		// Drop the cached handle so the next write re-resolves.
		w.pane = nil
		w.logger.Debug("dropping write, append failed", "pane", w.name, "error", err)
		return sinkErr(err)
	}
	return nil
}

// resolve returns the cached pane or performs the get-or-create dance.
// Failure is not cached: the next write retries, since sink outages are
// treated as transient.
func (w *Writer) resolve(ctx context.Context) (ports.Pane, error) {
	if w.pane != nil {
		return w.pane, nil
	}

	pane, err := w.sink.Pane(ctx, w.name)
	created := false
	if errors.Is(err, domain.ErrPaneNotFound) {
		pane, err = w.sink.CreatePane(ctx, w.name, w.opts)
		created = true
	}
	if err != nil {
		return nil, err
	}

	w.pane = pane
	if w.onResolve != nil {
		w.onResolve(ctx, w.name, created)
	}
	return pane, nil
}

func sinkErr(err error) error {
	if errors.Is(err, domain.ErrSinkUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %v", domain.ErrSinkUnavailable, err)
}
