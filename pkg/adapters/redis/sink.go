// Package redis adapts Redis to the Canopy output and locking ports.
//
// Each pane is a Redis list of appended chunks; a set tracks which panes
// exist so lookup and idempotent creation work without sentinel values.
// Activation publishes the pane name, which lets viewers (dashboards,
// tails) react to focus changes.
package redis

import (
	"context"
	"fmt"
	"strings"

	"github.com/aretw0/canopy/pkg/domain"
	"github.com/aretw0/canopy/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

// Sink implements ports.OutputSink using Redis.
type Sink struct {
	client *backend.Client
	prefix string
}

type Option func(*Sink)

// WithPrefix sets the key prefix for panes.
func WithPrefix(prefix string) Option {
	return func(s *Sink) {
		s.prefix = prefix
	}
}

// New creates a new Redis sink with options.
func New(address, password string, db int, opts ...Option) *Sink {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis sink from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Sink {
	sink := &Sink{
		client: client,
		prefix: "canopy:",
	}
	for _, opt := range opts {
		opt(sink)
	}
	return sink
}

func (s *Sink) registryKey() string {
	return s.prefix + "panes"
}

func (s *Sink) optionsKey() string {
	return s.prefix + "pane-options"
}

func (s *Sink) contentKey(name string) string {
	return s.prefix + "pane:" + name
}

func (s *Sink) activeChannel() string {
	return s.prefix + "active"
}

// Pane looks up an existing pane in the registry.
func (s *Sink) Pane(ctx context.Context, name string) (ports.Pane, error) {
	exists, err := s.client.SIsMember(ctx, s.registryKey(), name).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: redis error: %v", domain.ErrSinkUnavailable, err)
	}
	if !exists {
		return nil, domain.ErrPaneNotFound
	}
	return &pane{sink: s, name: name}, nil
}

// CreatePane registers the named pane, or returns the existing one.
func (s *Sink) CreatePane(ctx context.Context, name string, opts ports.PaneOptions) (ports.Pane, error) {
	clear := "0"
	if opts.ClearOnReset {
		clear = "1"
	}

	pipe := s.client.Pipeline()
	added := pipe.SAdd(ctx, s.registryKey(), name)
	pipe.HSet(ctx, s.optionsKey(), name, clear)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("%w: failed to create pane: %v", domain.ErrSinkUnavailable, err)
	}

	p := &pane{sink: s, name: name}
	// Surface brand-new visible panes right away.
	if opts.Visible && added.Val() == 1 {
		if err := p.Activate(ctx); err != nil {
			return p, nil
		}
	}
	return p, nil
}

// Contents implements ports.PaneReader by joining the appended chunks.
func (s *Sink) Contents(ctx context.Context, name string) (string, error) {
	exists, err := s.client.SIsMember(ctx, s.registryKey(), name).Result()
	if err != nil {
		return "", fmt.Errorf("%w: redis error: %v", domain.ErrSinkUnavailable, err)
	}
	if !exists {
		return "", domain.ErrPaneNotFound
	}

	chunks, err := s.client.LRange(ctx, s.contentKey(name), 0, -1).Result()
	if err != nil {
		return "", fmt.Errorf("%w: failed to read pane: %v", domain.ErrSinkUnavailable, err)
	}
	return strings.Join(chunks, ""), nil
}

// Panes returns the names of all registered panes.
func (s *Sink) Panes(ctx context.Context) ([]string, error) {
	names, err := s.client.SMembers(ctx, s.registryKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list panes: %v", domain.ErrSinkUnavailable, err)
	}
	return names, nil
}

// Reset wipes the content of every pane created with ClearOnReset,
// mirroring a host reopening its workspace. Other panes are untouched.
func (s *Sink) Reset(ctx context.Context) error {
	names, err := s.client.SMembers(ctx, s.registryKey()).Result()
	if err != nil {
		return fmt.Errorf("failed to list panes: %w", err)
	}
	for _, name := range names {
		flag, err := s.client.HGet(ctx, s.optionsKey(), name).Result()
		if err == backend.Nil {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to read pane options: %w", err)
		}
		if flag != "1" {
			continue
		}
		if err := s.client.Del(ctx, s.contentKey(name)).Err(); err != nil {
			return fmt.Errorf("failed to clear pane %q: %w", name, err)
		}
	}
	return nil
}

// Close closes the redis client.
func (s *Sink) Close() error {
	return s.client.Close()
}

type pane struct {
	sink *Sink
	name string
}

// Activate publishes the pane name on the active channel.
func (p *pane) Activate(ctx context.Context) error {
	return p.sink.client.Publish(ctx, p.sink.activeChannel(), p.name).Err()
}

// Append pushes one chunk onto the pane's list.
func (p *pane) Append(ctx context.Context, text string) error {
	if err := p.sink.client.RPush(ctx, p.sink.contentKey(p.name), text).Err(); err != nil {
		return fmt.Errorf("%w: failed to append: %v", domain.ErrSinkUnavailable, err)
	}
	return nil
}
