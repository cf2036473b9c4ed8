// Package inspect turns opaque project handles into attribute reports.
//
// The inspector is where capability dispatch and fault containment live:
// handles that cannot answer queries are marked skipped, provider errors
// and panics become contained QueryFaults, and a fault in one query stage
// never disturbs the other.
package inspect

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/canopy/internal/logging"
	"github.com/aretw0/canopy/pkg/domain"
	"github.com/aretw0/canopy/pkg/ports"
)

// Inspector runs the two batched attribute queries against one node at a
// time. The requested field sets are fixed at construction and reused for
// every node in a pass, so every report in a pass has the same shape.
type Inspector struct {
	scalarFields   []domain.ScalarField
	identityFields []domain.IdentityField
	logger         *slog.Logger
}

// Option defines a functional option for configuring the Inspector.
type Option func(*Inspector)

// WithScalarFields overrides the scalar fields requested per node.
func WithScalarFields(fields ...domain.ScalarField) Option {
	return func(i *Inspector) {
		i.scalarFields = fields
	}
}

// WithIdentityFields overrides the identity fields requested per node.
func WithIdentityFields(fields ...domain.IdentityField) Option {
	return func(i *Inspector) {
		i.identityFields = fields
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Inspector) {
		if logger != nil {
			i.logger = logger
		}
	}
}

// New creates an Inspector requesting the standard survey fields.
func New(opts ...Option) *Inspector {
	ins := &Inspector{
		scalarFields:   domain.DefaultScalarFields(),
		identityFields: domain.DefaultIdentityFields(),
		logger:         logging.NewNop(),
	}
	for _, opt := range opts {
		opt(ins)
	}
	return ins
}

// Inspect interrogates a single node handle. It never fails the pass:
// handles without the query capability come back marked Skipped, and a
// faulted query stage is logged, recorded on the report, and replaced by
// all-unsupported slots so the report keeps its shape.
func (i *Inspector) Inspect(ctx context.Context, handle domain.NodeHandle) *domain.ProjectReport {
	rep := &domain.ProjectReport{
		ScalarFields:   i.scalarFields,
		IdentityFields: i.identityFields,
	}

	querier, ok := handle.(ports.AttributeQuerier)
	if !ok {
		rep.Skipped = true
		return rep
	}

	scalars, fault := i.queryScalars(ctx, querier)
	if fault != nil {
		i.logger.Warn("attribute query faulted", "stage", fault.Stage, "error", fault.Err)
		rep.Faults = append(rep.Faults, fault)
		scalars = domain.UnsupportedScalars(i.scalarFields)
	}
	rep.Scalars = scalars

	identities, fault := i.queryIdentities(ctx, querier)
	if fault != nil {
		i.logger.Warn("attribute query faulted", "stage", fault.Stage, "error", fault.Err)
		rep.Faults = append(rep.Faults, fault)
		identities = domain.UnsupportedIdentities(i.identityFields)
	}
	rep.Identities = identities

	return rep
}

// queryScalars guards one batched scalar query. Provider panics are caught
// here so a misbehaving backend cannot take down the pass.
func (i *Inspector) queryScalars(ctx context.Context, q ports.AttributeQuerier) (res []domain.ScalarResult, fault *domain.QueryFault) {
	defer func() {
		if r := recover(); r != nil {
			res = nil
			fault = &domain.QueryFault{Stage: domain.StageScalar, Err: fmt.Errorf("provider panic: %v", r)}
		}
	}()

	res, err := q.ScalarAttributes(ctx, i.scalarFields)
	if err != nil {
		return nil, &domain.QueryFault{Stage: domain.StageScalar, Err: err}
	}
	if len(res) != len(i.scalarFields) {
		return nil, &domain.QueryFault{
			Stage: domain.StageScalar,
			Err:   fmt.Errorf("provider returned %d slots for %d fields", len(res), len(i.scalarFields)),
		}
	}
	return res, nil
}

func (i *Inspector) queryIdentities(ctx context.Context, q ports.AttributeQuerier) (res []domain.IdentityResult, fault *domain.QueryFault) {
	defer func() {
		if r := recover(); r != nil {
			res = nil
			fault = &domain.QueryFault{Stage: domain.StageIdentity, Err: fmt.Errorf("provider panic: %v", r)}
		}
	}()

	res, err := q.IdentityAttributes(ctx, i.identityFields)
	if err != nil {
		return nil, &domain.QueryFault{Stage: domain.StageIdentity, Err: err}
	}
	if len(res) != len(i.identityFields) {
		return nil, &domain.QueryFault{
			Stage: domain.StageIdentity,
			Err:   fmt.Errorf("provider returned %d slots for %d fields", len(res), len(i.identityFields)),
		}
	}
	return res, nil
}
