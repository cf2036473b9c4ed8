package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/aretw0/canopy/pkg/domain"
	"github.com/aretw0/canopy/pkg/ports"
)

// Sink implements ports.OutputSink in memory.
// Safe for concurrent use.
type Sink struct {
	mu      sync.Mutex
	panes   map[string]*Pane
	creates int
	err     error
}

// NewSink creates a new in-memory sink with no panes.
func NewSink() *Sink {
	return &Sink{panes: make(map[string]*Pane)}
}

// Fail makes every subsequent sink operation return err, simulating an
// unavailable host surface. Fail(nil) restores service.
func (s *Sink) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// Pane looks up an existing pane.
func (s *Sink) Pane(ctx context.Context, name string) (ports.Pane, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	p, ok := s.panes[name]
	if !ok {
		return nil, domain.ErrPaneNotFound
	}
	return p, nil
}

// CreatePane creates the named pane or returns the existing one.
func (s *Sink) CreatePane(ctx context.Context, name string, opts ports.PaneOptions) (ports.Pane, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	if p, ok := s.panes[name]; ok {
		return p, nil
	}
	p := &Pane{name: name, opts: opts}
	s.panes[name] = p
	s.creates++
	return p, nil
}

// Contents implements ports.PaneReader.
func (s *Sink) Contents(ctx context.Context, name string) (string, error) {
	s.mu.Lock()
	p, ok := s.panes[name]
	s.mu.Unlock()
	if !ok {
		return "", domain.ErrPaneNotFound
	}
	return p.Contents(), nil
}

// Creates returns how many distinct panes were actually created. Idempotent
// re-creates do not count.
func (s *Sink) Creates() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.creates
}

// Reset simulates the host reopening its workspace: panes created with
// ClearOnReset lose their content, the rest keep theirs.
func (s *Sink) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.panes {
		if p.opts.ClearOnReset {
			p.clear()
		}
	}
}

// Pane is one in-memory output channel.
type Pane struct {
	name string
	opts ports.PaneOptions

	mu          sync.Mutex
	buf         strings.Builder
	activations int
}

// Activate counts foreground requests; it never fails in memory.
func (p *Pane) Activate(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.activations++
	return nil
}

// Append adds text at the end of the pane.
func (p *Pane) Append(ctx context.Context, text string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.buf.WriteString(text)
	return nil
}

// Contents returns the accumulated pane text.
func (p *Pane) Contents() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.buf.String()
}

// Activations returns how many times the pane was brought forward.
func (p *Pane) Activations() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.activations
}

func (p *Pane) clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.buf.Reset()
}
