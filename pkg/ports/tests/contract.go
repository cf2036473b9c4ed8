package tests

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/canopy/pkg/domain"
	"github.com/aretw0/canopy/pkg/ports"
)

// WorkspaceProviderContractTest is a reusable test suite that verifies if an
// adapter complies with ports.WorkspaceProvider.
func WorkspaceProviderContractTest(t *testing.T, provider ports.WorkspaceProvider, wantProjects int) {
	t.Helper()

	ctx := context.Background()

	// 1. Enumeration yields exactly the advertised number of handles.
	t.Run("Enumerate_Count", func(t *testing.T) {
		cursor, err := provider.Projects(ctx)
		if err != nil {
			t.Fatalf("unexpected error opening cursor: %v", err)
		}

		count := 0
		for {
			handle, err := cursor.Next(ctx)
			if errors.Is(err, domain.ErrEndOfProjects) {
				break
			}
			if err != nil {
				t.Fatalf("unexpected error on Next: %v", err)
			}
			if handle == nil {
				t.Fatal("cursor yielded a nil handle")
			}
			count++
			if count > wantProjects {
				t.Fatalf("cursor yielded more than %d handles", wantProjects)
			}
		}

		if count != wantProjects {
			t.Errorf("expected %d projects, got %d", wantProjects, count)
		}
	})

	// 2. An exhausted cursor stays exhausted.
	t.Run("Exhausted_Stays_Exhausted", func(t *testing.T) {
		cursor, err := provider.Projects(ctx)
		if err != nil {
			t.Fatalf("unexpected error opening cursor: %v", err)
		}

		for {
			if _, err := cursor.Next(ctx); err != nil {
				break
			}
		}

		for i := 0; i < 3; i++ {
			_, err := cursor.Next(ctx)
			if !errors.Is(err, domain.ErrEndOfProjects) {
				t.Fatalf("Next after exhaustion returned %v, want ErrEndOfProjects", err)
			}
		}
	})

	// 3. Cursors are independent: opening a second enumeration starts over.
	t.Run("Fresh_Cursor_Per_Call", func(t *testing.T) {
		first, err := provider.Projects(ctx)
		if err != nil {
			t.Fatalf("unexpected error opening first cursor: %v", err)
		}
		// Drain the first cursor completely.
		for {
			if _, err := first.Next(ctx); err != nil {
				break
			}
		}

		second, err := provider.Projects(ctx)
		if err != nil {
			t.Fatalf("unexpected error opening second cursor: %v", err)
		}
		count := 0
		for {
			_, err := second.Next(ctx)
			if errors.Is(err, domain.ErrEndOfProjects) {
				break
			}
			if err != nil {
				t.Fatalf("unexpected error on Next: %v", err)
			}
			count++
		}
		if count != wantProjects {
			t.Errorf("second cursor yielded %d projects, want %d", count, wantProjects)
		}
	})
}
