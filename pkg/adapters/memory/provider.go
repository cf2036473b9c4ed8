package memory

import (
	"context"

	"github.com/aretw0/canopy/pkg/domain"
	"github.com/aretw0/canopy/pkg/ports"
	"github.com/google/uuid"
)

// Provider implements ports.WorkspaceProvider over a fixed handle list.
// It is the reference backend for tests, demos, and embedding.
type Provider struct {
	handles []domain.NodeHandle
	err     error
}

// NewProvider creates a provider that enumerates the given handles in order.
// Handles may be *Project, Opaque, or any external implementation.
func NewProvider(handles ...domain.NodeHandle) *Provider {
	return &Provider{handles: handles}
}

// NewFailingProvider creates a provider whose enumeration always fails with
// err. A nil err defaults to domain.ErrNoWorkspace.
func NewFailingProvider(err error) *Provider {
	if err == nil {
		err = domain.ErrNoWorkspace
	}
	return &Provider{err: err}
}

// Projects returns a fresh single-use cursor over the handle list.
func (p *Provider) Projects(ctx context.Context) (ports.ProjectCursor, error) {
	if p.err != nil {
		return nil, p.err
	}
	return &cursor{handles: p.handles}, nil
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

// Project is an in-memory project node exposing the attribute query
// capability. A field missing from its maps reports FieldUnsupported.
type Project struct {
	scalars    map[domain.ScalarField]string
	identities map[domain.IdentityField]uuid.UUID
}

// NewProject creates a project supporting all four standard fields.
func NewProject(name, dir string, instanceID, typeID uuid.UUID) *Project {
	return &Project{
		scalars: map[domain.ScalarField]string{
			domain.FieldName:      name,
			domain.FieldDirectory: dir,
		},
		identities: map[domain.IdentityField]uuid.UUID{
			domain.FieldInstanceID: instanceID,
			domain.FieldTypeID:     typeID,
		},
	}
}

// NewSparseProject creates a project that only supports the given fields.
// Useful for exercising per-field Unsupported behavior.
func NewSparseProject(scalars map[domain.ScalarField]string, identities map[domain.IdentityField]uuid.UUID) *Project {
	return &Project{scalars: scalars, identities: identities}
}

// ScalarAttributes answers the batched scalar query slot by slot.
func (p *Project) ScalarAttributes(ctx context.Context, fields []domain.ScalarField) ([]domain.ScalarResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	res := make([]domain.ScalarResult, len(fields))
	for i, f := range fields {
		if v, ok := p.scalars[f]; ok {
			res[i] = domain.ScalarResult{Value: v, Status: domain.FieldOK}
		} else {
			res[i] = domain.ScalarResult{Status: domain.FieldUnsupported}
		}
	}
	return res, nil
}

// IdentityAttributes answers the batched identity query slot by slot.
func (p *Project) IdentityAttributes(ctx context.Context, fields []domain.IdentityField) ([]domain.IdentityResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	res := make([]domain.IdentityResult, len(fields))
	for i, f := range fields {
		if v, ok := p.identities[f]; ok {
			res[i] = domain.IdentityResult{Value: v, Status: domain.FieldOK}
		} else {
			res[i] = domain.IdentityResult{Status: domain.FieldUnsupported}
		}
	}
	return res, nil
}

// Opaque is a project handle without the attribute query capability.
// Surveys skip it silently.
type Opaque struct {
	Label string
}
