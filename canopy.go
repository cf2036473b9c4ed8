package canopy

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aretw0/canopy/pkg/adapters/console"
	loamAdapter "github.com/aretw0/canopy/pkg/adapters/loam"
	"github.com/aretw0/canopy/pkg/coord"
	"github.com/aretw0/canopy/pkg/domain"
	"github.com/aretw0/canopy/pkg/ports"
	"github.com/aretw0/canopy/pkg/report"
	"github.com/aretw0/canopy/pkg/survey"
)

// Surveyor is the high-level entry point for the Canopy library.
// It wires a workspace provider, an output sink, and the coordinating loop
// into a ready-to-run survey pipeline.
type Surveyor struct {
	runner   *survey.Runner
	provider ports.WorkspaceProvider
	sink     ports.OutputSink
	loop     *coord.Loop
	writer   *report.Writer
	hooks    domain.LifecycleHooks
	locker   ports.PassLocker
	logger   *slog.Logger
	paneName string

	runnerOpts []survey.Option

	// Name labels the workspace in logs. Defaults to the base of the
	// workspace path.
	Name string
}

// Option defines a functional option for configuring the Surveyor.
type Option func(*Surveyor)

// WithProvider injects a custom workspace provider, bypassing the default
// Loam initialization.
func WithProvider(p ports.WorkspaceProvider) Option {
	return func(s *Surveyor) {
		s.provider = p
	}
}

// WithSink replaces the default stdout sink.
func WithSink(sink ports.OutputSink) Option {
	return func(s *Surveyor) {
		s.sink = sink
	}
}

// WithPane overrides the report pane name.
func WithPane(name string) Option {
	return func(s *Surveyor) {
		s.paneName = name
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(s *Surveyor) {
		s.hooks = hooks
	}
}

// WithLocker guards passes with a distributed lock, for deployments where
// several replicas survey the same workspace.
func WithLocker(locker ports.PassLocker) Option {
	return func(s *Surveyor) {
		s.locker = locker
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Surveyor) {
		s.logger = logger
	}
}

// WithoutMarker suppresses the completion marker line after a pass.
func WithoutMarker() Option {
	return func(s *Surveyor) {
		s.runnerOpts = append(s.runnerOpts, survey.WithoutMarker())
	}
}

// New initializes a new Canopy Surveyor.
// By default, it reads the workspace from a Loam repository at the given
// path and writes reports to stdout. If WithProvider is given, workspacePath
// can be empty and Loam is skipped.
func New(workspacePath string, opts ...Option) (*Surveyor, error) {
	s := &Surveyor{}

	// Apply options first to check if a provider is injected
	for _, opt := range opts {
		opt(s)
	}

	if s.provider == nil {
		if workspacePath == "" {
			return nil, fmt.Errorf("workspacePath is required when no custom provider is given")
		}

		absPath, err := filepath.Abs(workspacePath)
		if err != nil {
			return nil, fmt.Errorf("invalid path: %w", err)
		}
		s.Name = filepath.Base(absPath)

		provider, err := loamAdapter.Open(absPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open workspace: %w", err)
		}
		s.provider = provider
	} else if workspacePath != "" {
		// A custom provider still gets a descriptive label.
		s.Name = filepath.Base(workspacePath)
	}

	// Ensure logger is initialized so nil never reaches the runner.
	if s.logger == nil {
		s.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if s.Name != "" {
		s.logger = s.logger.With("workspace", s.Name)
	}

	if s.sink == nil {
		s.sink = console.NewSink(os.Stdout)
	}
	if s.paneName == "" {
		s.paneName = report.DefaultPaneName
	}

	s.loop = coord.New()

	hooks := s.hooks
	s.writer = report.NewWriter(s.sink,
		report.WithPane(s.paneName),
		report.WithLoop(s.loop),
		report.WithLogger(s.logger),
		report.WithResolveHook(func(ctx context.Context, name string, created bool) {
			if hooks.OnPaneCreate != nil {
				hooks.OnPaneCreate(ctx, &domain.PaneEvent{Name: name, Created: created})
			}
		}),
	)

	runnerOpts := []survey.Option{
		survey.WithLoop(s.loop),
		survey.WithLogger(s.logger),
		survey.WithLifecycleHooks(s.hooks),
	}
	if s.locker != nil {
		runnerOpts = append(runnerOpts, survey.WithLocker(s.locker))
	}
	runnerOpts = append(runnerOpts, s.runnerOpts...)

	s.runner = survey.New(s.provider, s.writer, runnerOpts...)

	return s, nil
}

// Survey runs one full pass over the workspace: every project is queried
// and its report appended to the pane. Concurrent calls fail fast with
// domain.ErrPassInFlight.
func (s *Surveyor) Survey(ctx context.Context) (domain.PassSummary, error) {
	return s.runner.Survey(ctx)
}

// Inspect queries every project without writing anything to the sink.
func (s *Surveyor) Inspect(ctx context.Context) ([]*domain.ProjectReport, error) {
	return s.runner.Inspect(ctx)
}

// Watch returns a channel that signals when the underlying workspace
// changes. Returns an error if the provider does not support watching.
func (s *Surveyor) Watch(ctx context.Context) (<-chan string, error) {
	if w, ok := s.provider.(ports.Watchable); ok {
		return w.Watch(ctx)
	}
	return nil, fmt.Errorf("current provider does not support watching")
}

// Pane returns the report pane name.
func (s *Surveyor) Pane() string {
	return s.paneName
}

// Provider returns the underlying workspace provider.
func (s *Surveyor) Provider() ports.WorkspaceProvider {
	return s.provider
}

// Close releases the coordinating loop. The provider and sink are owned by
// the caller when injected and are not closed here.
func (s *Surveyor) Close() {
	s.loop.Close()
}
