package loam

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/canopy/pkg/domain"
	"github.com/aretw0/canopy/pkg/ports"
	"github.com/aretw0/loam"
	"github.com/google/uuid"
)

// Provider adapts the Loam library to the Canopy WorkspaceProvider port.
// Every document in the repository becomes one project handle; folder
// documents become opaque handles without the query capability.
type Provider struct {
	Repo *loam.TypedRepository[ProjectMetadata]
}

// New creates a new Loam adapter.
func New(repo *loam.TypedRepository[ProjectMetadata]) *Provider {
	return &Provider{Repo: repo}
}

// Open initializes a Loam repository at path and wraps it.
// Strict mode keeps numeric frontmatter types stable, and ReadOnly avoids
// Loam's sandbox behavior in dev mode; a survey never mutates the workspace.
func Open(path string) (*Provider, error) {
	repo, err := loam.Init(path,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}
	return New(loam.NewTypedRepository[ProjectMetadata](repo)), nil
}

// Projects lists the repository and yields a cursor over its documents,
// sorted by document ID for deterministic report order.
func (p *Provider) Projects(ctx context.Context) (ports.ProjectCursor, error) {
	docs, err := p.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: loam list failed: %v", domain.ErrNoWorkspace, err)
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })

	handles := make([]domain.NodeHandle, 0, len(docs))
	for _, doc := range docs {
		if strings.EqualFold(doc.Data.Kind, KindFolder) {
			handles = append(handles, folderHandle{id: doc.ID})
			continue
		}
		handles = append(handles, &projectHandle{id: doc.ID, meta: doc.Data})
	}
	return &cursor{handles: handles}, nil
}

// Watch implements ports.Watchable by forwarding changed document IDs.
func (p *Provider) Watch(ctx context.Context) (<-chan string, error) {
	events, err := p.Repo.Watch(ctx, "**/*.{md,json,yaml,yml}")
	if err != nil {
		return nil, fmt.Errorf("failed to start loam watcher: %w", err)
	}

	ch := make(chan string, 1)
	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-events:
				if !ok {
					return
				}
				select {
				case ch <- evt.ID:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return ch, nil
}

type cursor struct {
	handles []domain.NodeHandle
	pos     int
}

func (c *cursor) Next(ctx context.Context) (domain.NodeHandle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if c.pos >= len(c.handles) {
		return nil, domain.ErrEndOfProjects
	}
	h := c.handles[c.pos]
	c.pos++
	return h, nil
}

// folderHandle is deliberately opaque: no AttributeQuerier methods.
type folderHandle struct {
	id string
}

// projectHandle answers attribute queries from parsed frontmatter.
// A key that is absent or malformed degrades to FieldUnsupported.
type projectHandle struct {
	id   string
	meta ProjectMetadata
}

func (h *projectHandle) ScalarAttributes(ctx context.Context, fields []domain.ScalarField) ([]domain.ScalarResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	res := make([]domain.ScalarResult, len(fields))
	for i, f := range fields {
		var v string
		switch f {
		case domain.FieldName:
			v = h.meta.Name
		case domain.FieldDirectory:
			v = h.meta.Dir
		}
		if v == "" {
			res[i] = domain.ScalarResult{Status: domain.FieldUnsupported}
			continue
		}
		res[i] = domain.ScalarResult{Value: v, Status: domain.FieldOK}
	}
	return res, nil
}

func (h *projectHandle) IdentityAttributes(ctx context.Context, fields []domain.IdentityField) ([]domain.IdentityResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	res := make([]domain.IdentityResult, len(fields))
	for i, f := range fields {
		var raw string
		switch f {
		case domain.FieldInstanceID:
			raw = h.meta.InstanceID
		case domain.FieldTypeID:
			raw = h.meta.TypeID
		}
		id, err := uuid.Parse(raw)
		if raw == "" || err != nil {
			res[i] = domain.IdentityResult{Status: domain.FieldUnsupported}
			continue
		}
		res[i] = domain.IdentityResult{Value: id, Status: domain.FieldOK}
	}
	return res, nil
}
