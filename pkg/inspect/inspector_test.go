package inspect_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/canopy/pkg/adapters/memory"
	"github.com/aretw0/canopy/pkg/domain"
	"github.com/aretw0/canopy/pkg/inspect"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// faultyProject lets each query stage be failed independently: with an
// error, a panic, or a result of the wrong length.
type faultyProject struct {
	scalarErr     error
	identityErr   error
	scalarPanic   string
	identityPanic string
	truncate      bool
}

func (f *faultyProject) ScalarAttributes(ctx context.Context, fields []domain.ScalarField) ([]domain.ScalarResult, error) {
	if f.scalarPanic != "" {
		panic(f.scalarPanic)
	}
	if f.scalarErr != nil {
		return nil, f.scalarErr
	}
	res := make([]domain.ScalarResult, len(fields))
	for i := range res {
		res[i] = domain.ScalarResult{Value: "v", Status: domain.FieldOK}
	}
	if f.truncate && len(res) > 0 {
		res = res[:len(res)-1]
	}
	return res, nil
}

func (f *faultyProject) IdentityAttributes(ctx context.Context, fields []domain.IdentityField) ([]domain.IdentityResult, error) {
	if f.identityPanic != "" {
		panic(f.identityPanic)
	}
	if f.identityErr != nil {
		return nil, f.identityErr
	}
	res := make([]domain.IdentityResult, len(fields))
	for i := range res {
		res[i] = domain.IdentityResult{Value: uuid.New(), Status: domain.FieldOK}
	}
	return res, nil
}

func TestInspect_FullProject(t *testing.T) {
	instance := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	typ := uuid.MustParse("22222222-2222-2222-2222-222222222222")
	handle := memory.NewProject("App", "/src/App", instance, typ)

	rep := inspect.New().Inspect(context.Background(), handle)

	assert.False(t, rep.Skipped)
	assert.Empty(t, rep.Faults)
	require.Len(t, rep.Scalars, 2)
	require.Len(t, rep.Identities, 2)

	name, _ := rep.Scalar(domain.FieldName)
	assert.Equal(t, "App", name.Value)
	id, _ := rep.Identity(domain.FieldInstanceID)
	assert.Equal(t, instance, id.Value)
}

func TestInspect_OpaqueHandleIsSkipped(t *testing.T) {
	rep := inspect.New().Inspect(context.Background(), memory.Opaque{Label: "misc"})

	assert.True(t, rep.Skipped)
	assert.Empty(t, rep.Scalars)
	assert.Empty(t, rep.Identities)
	assert.Empty(t, rep.Faults)
}

func TestInspect_ScalarFaultLeavesIdentitiesAlone(t *testing.T) {
	boom := errors.New("RPC channel dropped")
	rep := inspect.New().Inspect(context.Background(), &faultyProject{scalarErr: boom})

	require.Len(t, rep.Faults, 1)
	assert.Equal(t, domain.StageScalar, rep.Faults[0].Stage)
	assert.ErrorIs(t, rep.Faults[0], boom)

	// Faulted stage collapses to unsupported slots of the right length.
	require.Len(t, rep.Scalars, 2)
	for _, s := range rep.Scalars {
		assert.Equal(t, domain.FieldUnsupported, s.Status)
	}

	// The other stage is untouched.
	require.Len(t, rep.Identities, 2)
	for _, id := range rep.Identities {
		assert.Equal(t, domain.FieldOK, id.Status)
	}
}

func TestInspect_PanicIsContained(t *testing.T) {
	rep := inspect.New().Inspect(context.Background(), &faultyProject{identityPanic: "nil deref in provider"})

	require.Len(t, rep.Faults, 1)
	assert.Equal(t, domain.StageIdentity, rep.Faults[0].Stage)
	assert.Contains(t, rep.Faults[0].Error(), "nil deref in provider")

	require.Len(t, rep.Scalars, 2)
	for _, s := range rep.Scalars {
		assert.Equal(t, domain.FieldOK, s.Status)
	}
	require.Len(t, rep.Identities, 2)
	for _, id := range rep.Identities {
		assert.Equal(t, domain.FieldUnsupported, id.Status)
	}
}

func TestInspect_WrongLengthResultIsAFault(t *testing.T) {
	rep := inspect.New().Inspect(context.Background(), &faultyProject{truncate: true})

	require.Len(t, rep.Faults, 1)
	assert.Equal(t, domain.StageScalar, rep.Faults[0].Stage)
	assert.Contains(t, rep.Faults[0].Error(), "slots")
	require.Len(t, rep.Scalars, 2, "report keeps request shape even after a fault")
}

func TestInspect_BothStagesCanFault(t *testing.T) {
	rep := inspect.New().Inspect(context.Background(), &faultyProject{
		scalarErr:   errors.New("scalar down"),
		identityErr: errors.New("identity down"),
	})

	require.Len(t, rep.Faults, 2)
	assert.Equal(t, domain.StageScalar, rep.Faults[0].Stage)
	assert.Equal(t, domain.StageIdentity, rep.Faults[1].Stage)
	assert.False(t, rep.Supported())
}

func TestInspect_CustomFieldSets(t *testing.T) {
	ins := inspect.New(
		inspect.WithScalarFields(domain.FieldName),
		inspect.WithIdentityFields(),
	)
	rep := ins.Inspect(context.Background(), memory.NewProject("App", "/src/App", uuid.New(), uuid.New()))

	require.Len(t, rep.Scalars, 1)
	assert.Empty(t, rep.Identities)

	_, ok := rep.Scalar(domain.FieldDirectory)
	assert.False(t, ok)
}

func TestInspect_SparseProjectKeepsSlotIndependence(t *testing.T) {
	handle := memory.NewSparseProject(
		map[domain.ScalarField]string{domain.FieldName: "App"},
		map[domain.IdentityField]uuid.UUID{},
	)

	rep := inspect.New().Inspect(context.Background(), handle)

	assert.Empty(t, rep.Faults, "unsupported fields are not faults")
	name, _ := rep.Scalar(domain.FieldName)
	assert.Equal(t, domain.FieldOK, name.Status)
	dir, _ := rep.Scalar(domain.FieldDirectory)
	assert.Equal(t, domain.FieldUnsupported, dir.Status)
	assert.True(t, rep.Supported())
}
