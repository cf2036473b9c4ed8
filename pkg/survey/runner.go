// Package survey drives whole passes over a workspace: enumerate projects,
// inspect each one, write its report, and summarize what happened.
//
// A pass is strictly sequential and runs on the coordinating loop. Failures
// are contained at the smallest scope that can absorb them: a field stays a
// missing line, a query fault costs one node's fields, a sink outage costs
// one write. Only failing to enumerate at all aborts the pass.
package survey

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/canopy/internal/logging"
	"github.com/aretw0/canopy/pkg/coord"
	"github.com/aretw0/canopy/pkg/domain"
	"github.com/aretw0/canopy/pkg/inspect"
	"github.com/aretw0/canopy/pkg/ports"
	"github.com/aretw0/canopy/pkg/report"
)

// DefaultLockKey is the distributed lock key guarding survey passes.
const DefaultLockKey = "canopy:survey"

// DefaultLockTTL bounds how long a crashed holder can wedge the pass lock.
const DefaultLockTTL = 30 * time.Second

// CompletionMarker renders the line appended after a successful pass.
func CompletionMarker(reported int) string {
	return fmt.Sprintf("Surveyed %d project(s).\n", reported)
}

// Runner owns one workspace survey pipeline.
type Runner struct {
	provider  ports.WorkspaceProvider
	inspector *inspect.Inspector
	writer    *report.Writer
	loop      *coord.Loop
	ownLoop   bool
	logger    *slog.Logger
	hooks     domain.LifecycleHooks

	locker  ports.PassLocker
	lockKey string
	lockTTL time.Duration

	marker bool
	mu     sync.Mutex
}

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithInspector replaces the default inspector (standard field sets).
func WithInspector(ins *inspect.Inspector) Option {
	return func(r *Runner) {
		if ins != nil {
			r.inspector = ins
		}
	}
}

// WithLoop runs passes on an existing coordinating loop instead of a
// runner-owned one. The caller keeps ownership of the loop.
func WithLoop(loop *coord.Loop) Option {
	return func(r *Runner) {
		r.loop = loop
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(r *Runner) {
		r.hooks = hooks
	}
}

// WithLocker guards passes with a distributed lock, for deployments where
// several replicas watch the same workspace.
func WithLocker(locker ports.PassLocker) Option {
	return func(r *Runner) {
		r.locker = locker
	}
}

// WithLockKey overrides the distributed lock key.
func WithLockKey(key string) Option {
	return func(r *Runner) {
		if key != "" {
			r.lockKey = key
		}
	}
}

// WithLockTTL overrides the distributed lock TTL.
func WithLockTTL(ttl time.Duration) Option {
	return func(r *Runner) {
		if ttl > 0 {
			r.lockTTL = ttl
		}
	}
}

// WithoutMarker suppresses the completion marker line.
func WithoutMarker() Option {
	return func(r *Runner) {
		r.marker = false
	}
}

// New creates a Runner. The provider and writer are required; everything
// else has defaults.
func New(provider ports.WorkspaceProvider, writer *report.Writer, opts ...Option) *Runner {
	r := &Runner{
		provider:  provider,
		writer:    writer,
		inspector: inspect.New(),
		logger:    logging.NewNop(),
		marker:    true,
		lockKey:   DefaultLockKey,
		lockTTL:   DefaultLockTTL,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.loop == nil {
		r.loop = coord.New()
		r.ownLoop = true
	}
	return r
}

// Loop returns the coordinating loop passes run on.
func (r *Runner) Loop() *coord.Loop {
	return r.loop
}

// Close releases the runner-owned loop. Loops injected via WithLoop are
// left alone.
func (r *Runner) Close() {
	if r.ownLoop {
		r.loop.Close()
	}
}

// Survey runs one full pass and returns its summary. Passes are
// single-flight per runner: a call while another pass runs fails fast with
// domain.ErrPassInFlight.
func (r *Runner) Survey(ctx context.Context) (domain.PassSummary, error) {
	if !r.mu.TryLock() {
		return domain.PassSummary{}, domain.ErrPassInFlight
	}
	defer r.mu.Unlock()

	if r.locker != nil {
		unlock, err := r.locker.Lock(ctx, r.lockKey, r.lockTTL)
		if err != nil {
			return domain.PassSummary{}, fmt.Errorf("acquire pass lock: %w", err)
		}
		defer func() {
			// Release even when the pass context died.
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				r.logger.Warn("failed to release pass lock", "key", r.lockKey, "error", err)
			}
		}()
	}

	start := time.Now()
	var summary domain.PassSummary
	err := r.loop.Do(ctx, func(ctx context.Context) error {
		return r.pass(ctx, &summary)
	})
	summary.Duration = time.Since(start)

	if r.hooks.OnPassEnd != nil {
		r.hooks.OnPassEnd(ctx, &domain.PassEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventPassEnd},
			Summary:   summary,
			Err:       err,
		})
	}

	r.logger.Info("survey pass finished",
		"visited", summary.Visited,
		"reported", summary.Reported,
		"skipped", summary.Skipped,
		"faulted", summary.Faulted,
		"dropped", summary.Dropped,
		"duration", summary.Duration,
		"error", err,
	)
	return summary, err
}

// pass is the sequential survey body. It runs on the coordinating loop.
func (r *Runner) pass(ctx context.Context, summary *domain.PassSummary) error {
	cursor, err := r.provider.Projects(ctx)
	if err != nil {
		r.logger.Error("workspace enumeration failed", "error", err)
		return fmt.Errorf("enumerate projects: %w", err)
	}

	for {
		// Cancellation check once per node: stop issuing provider calls,
		// write no marker, roll nothing back.
		if err := ctx.Err(); err != nil {
			return err
		}

		handle, err := cursor.Next(ctx)
		if errors.Is(err, domain.ErrEndOfProjects) {
			break
		}
		if err != nil {
			r.logger.Error("project enumeration failed", "visited", summary.Visited, "error", err)
			return fmt.Errorf("advance project cursor: %w", err)
		}

		idx := summary.Visited
		summary.Visited++
		r.fireProject(ctx, r.hooks.OnProjectEnter, domain.EventProjectEnter, idx, 0)

		rep := r.inspector.Inspect(ctx, handle)

		if r.hooks.OnQueryFault != nil {
			for _, fault := range rep.Faults {
				r.hooks.OnQueryFault(ctx, &domain.FaultEvent{
					EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventQueryFault},
					Index:     idx,
					Stage:     fault.Stage,
					Err:       fault.Err,
				})
			}
		}
		if len(rep.Faults) > 0 {
			summary.Faulted++
		}

		if rep.Skipped {
			summary.Skipped++
			r.fireProject(ctx, r.hooks.OnProjectSkip, domain.EventProjectSkip, idx, 0)
			continue
		}

		lines, err := r.writer.WriteReport(ctx, rep)
		if err != nil {
			// Sink trouble drops this write, never the pass.
			summary.Dropped++
			r.logger.Warn("project report dropped", "project", idx, "error", err)
			continue
		}
		if lines > 0 {
			summary.Reported++
			r.fireProject(ctx, r.hooks.OnProjectReport, domain.EventProjectReport, idx, lines)
		}
	}

	if r.marker {
		if err := r.writer.Append(ctx, CompletionMarker(summary.Reported)); err != nil {
			summary.Dropped++
			r.logger.Warn("completion marker dropped", "error", err)
		}
	}
	return nil
}

// Inspect enumerates and queries every project without writing anything.
func (r *Runner) Inspect(ctx context.Context) ([]*domain.ProjectReport, error) {
	var reports []*domain.ProjectReport
	err := r.loop.Do(ctx, func(ctx context.Context) error {
		cursor, err := r.provider.Projects(ctx)
		if err != nil {
			return fmt.Errorf("enumerate projects: %w", err)
		}
		for {
			handle, err := cursor.Next(ctx)
			if errors.Is(err, domain.ErrEndOfProjects) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("advance project cursor: %w", err)
			}
			reports = append(reports, r.inspector.Inspect(ctx, handle))
		}
	})
	if err != nil {
		return nil, err
	}
	return reports, nil
}

func (r *Runner) fireProject(ctx context.Context, hook func(context.Context, *domain.ProjectEvent), typ domain.EventType, idx, lines int) {
	if hook == nil {
		return
	}
	hook(ctx, &domain.ProjectEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: typ},
		Index:     idx,
		Lines:     lines,
	})
}
