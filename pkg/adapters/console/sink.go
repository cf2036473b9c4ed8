// Package console adapts a plain io.Writer to the OutputSink port, for CLI
// runs where the report pane is simply stdout. Pane names are tracked only
// for get-or-create semantics; all content lands on the one writer.
package console

import (
	"context"
	"io"
	"sync"

	"github.com/aretw0/canopy/pkg/domain"
	"github.com/aretw0/canopy/pkg/ports"
)

// Sink implements ports.OutputSink over one io.Writer.
// Safe for concurrent use.
type Sink struct {
	mu    sync.Mutex
	out   io.Writer
	panes map[string]*pane
}

// NewSink creates a console sink writing to out.
func NewSink(out io.Writer) *Sink {
	return &Sink{
		out:   out,
		panes: make(map[string]*pane),
	}
}

// Pane looks up a previously created pane.
func (s *Sink) Pane(ctx context.Context, name string) (ports.Pane, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.panes[name]
	if !ok {
		return nil, domain.ErrPaneNotFound
	}
	return p, nil
}

// CreatePane registers the named pane, or returns the existing one.
func (s *Sink) CreatePane(ctx context.Context, name string, opts ports.PaneOptions) (ports.Pane, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.panes[name]; ok {
		return p, nil
	}
	p := &pane{sink: s}
	s.panes[name] = p
	return p, nil
}

type pane struct {
	sink *Sink
}

// Activate is a no-op: a terminal has no background panes.
func (p *pane) Activate(ctx context.Context) error {
	return nil
}

// Append writes text straight through to the sink's writer.
func (p *pane) Append(ctx context.Context, text string) error {
	p.sink.mu.Lock()
	defer p.sink.mu.Unlock()
	_, err := io.WriteString(p.sink.out, text)
	return err
}
