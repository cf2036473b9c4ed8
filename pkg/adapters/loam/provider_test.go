package loam_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	loamAdapter "github.com/aretw0/canopy/pkg/adapters/loam"
	"github.com/aretw0/canopy/pkg/domain"
	"github.com/aretw0/canopy/pkg/inspect"
	"github.com/aretw0/canopy/pkg/ports/tests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupWorkspace writes a small project repository into a temp dir:
// two full projects, one folder, one project with sparse frontmatter.
func setupWorkspace(t *testing.T) *loamAdapter.Provider {
	t.Helper()
	tmpDir := t.TempDir()

	write := func(name, content string) {
		t.Helper()
		require.NoError(t, os.WriteFile(filepath.Join(tmpDir, name), []byte(content), 0644))
	}

	write("app.md", `---
name: App
dir: /src/App
instance_id: 11111111-1111-1111-1111-111111111111
type_id: 22222222-2222-2222-2222-222222222222
---
Primary application project.`)

	write("lib.md", `---
name: Lib
dir: /src/Lib
instance_id: 33333333-3333-3333-3333-333333333333
type_id: 44444444-4444-4444-4444-444444444444
---
Shared library.`)

	write("misc.md", `---
kind: folder
name: Miscellaneous
---
Grouping folder, not a queryable project.`)

	write("legacy.md", `---
name: Legacy
type_id: not-a-guid
---
Old project with incomplete metadata.`)

	provider, err := loamAdapter.Open(tmpDir)
	require.NoError(t, err)
	return provider
}

func TestLoamProvider_Contract(t *testing.T) {
	tests.WorkspaceProviderContractTest(t, setupWorkspace(t), 4)
}

func TestLoamProvider_FullProject(t *testing.T) {
	provider := setupWorkspace(t)
	ctx := context.Background()

	cursor, err := provider.Projects(ctx)
	require.NoError(t, err)

	// Documents come back sorted by ID: app, legacy, lib, misc.
	handle, err := cursor.Next(ctx)
	require.NoError(t, err)

	rep := inspect.New().Inspect(ctx, handle)
	require.False(t, rep.Skipped)

	name, _ := rep.Scalar(domain.FieldName)
	assert.Equal(t, domain.ScalarResult{Value: "App", Status: domain.FieldOK}, name)
	dir, _ := rep.Scalar(domain.FieldDirectory)
	assert.Equal(t, "/src/App", dir.Value)

	instance, _ := rep.Identity(domain.FieldInstanceID)
	assert.Equal(t, domain.FieldOK, instance.Status)
	assert.Equal(t, "11111111-1111-1111-1111-111111111111", instance.Value.String())
}

func TestLoamProvider_SparseFrontmatterDegradesPerField(t *testing.T) {
	provider := setupWorkspace(t)
	ctx := context.Background()

	cursor, err := provider.Projects(ctx)
	require.NoError(t, err)

	// Skip "app" to reach "legacy".
	_, err = cursor.Next(ctx)
	require.NoError(t, err)
	handle, err := cursor.Next(ctx)
	require.NoError(t, err)

	rep := inspect.New().Inspect(ctx, handle)
	require.False(t, rep.Skipped)
	assert.Empty(t, rep.Faults, "missing or malformed keys are not faults")

	name, _ := rep.Scalar(domain.FieldName)
	assert.Equal(t, domain.FieldOK, name.Status)
	dir, _ := rep.Scalar(domain.FieldDirectory)
	assert.Equal(t, domain.FieldUnsupported, dir.Status, "absent key degrades to unsupported")

	instance, _ := rep.Identity(domain.FieldInstanceID)
	assert.Equal(t, domain.FieldUnsupported, instance.Status)
	typ, _ := rep.Identity(domain.FieldTypeID)
	assert.Equal(t, domain.FieldUnsupported, typ.Status, "malformed GUID degrades to unsupported")
}

func TestLoamProvider_FolderIsOpaque(t *testing.T) {
	provider := setupWorkspace(t)
	ctx := context.Background()

	cursor, err := provider.Projects(ctx)
	require.NoError(t, err)

	skipped := 0
	for {
		handle, err := cursor.Next(ctx)
		if err != nil {
			break
		}
		if inspect.New().Inspect(ctx, handle).Skipped {
			skipped++
		}
	}
	assert.Equal(t, 1, skipped, "exactly the folder document lacks the query capability")
}

func TestLoamProvider_EmptyWorkspace(t *testing.T) {
	provider, err := loamAdapter.Open(t.TempDir())
	require.NoError(t, err)

	cursor, err := provider.Projects(context.Background())
	require.NoError(t, err)

	_, err = cursor.Next(context.Background())
	assert.ErrorIs(t, err, domain.ErrEndOfProjects)
}
