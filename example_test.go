package canopy_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/canopy"
	"github.com/aretw0/canopy/pkg/adapters/memory"
	"github.com/aretw0/canopy/pkg/domain"
	"github.com/google/uuid"
)

// ExampleNew_memory demonstrates how to run a survey against an in-memory
// workspace. This is useful for testing, embedded scenarios, or when you
// don't want to rely on the file system.
func ExampleNew_memory() {
	// 1. Define the workspace: one fully described project.
	// Note: We leave path empty ("") because we are providing a provider.
	provider := memory.NewProvider(
		memory.NewSparseProject(
			map[domain.ScalarField]string{domain.FieldName: "App"},
			nil,
		),
	)

	srv, err := canopy.New("", canopy.WithProvider(provider))
	if err != nil {
		log.Fatal(err)
	}
	defer srv.Close()

	// 2. Run one pass. The default sink prints the pane to stdout.
	if _, err := srv.Survey(context.Background()); err != nil {
		log.Fatal(err)
	}
	// Output:
	// Project name: App
	//
	// Surveyed 1 project(s).
}

// ExampleSurveyor_Inspect reads project attributes without writing to the
// output pane.
func ExampleSurveyor_Inspect() {
	provider := memory.NewProvider(
		memory.NewProject("App", "/src/App",
			uuid.MustParse("11111111-1111-1111-1111-111111111111"),
			uuid.MustParse("22222222-2222-2222-2222-222222222222")),
		&memory.Opaque{Label: "solution items"},
	)

	srv, err := canopy.New("", canopy.WithProvider(provider))
	if err != nil {
		log.Fatal(err)
	}
	defer srv.Close()

	reports, err := srv.Inspect(context.Background())
	if err != nil {
		log.Fatal(err)
	}

	for _, rep := range reports {
		if rep.Skipped {
			fmt.Println("skipped: not queryable")
			continue
		}
		if name, ok := rep.Scalar(domain.FieldName); ok {
			fmt.Printf("project: %s\n", name.Value)
		}
	}
	// Output:
	// project: App
	// skipped: not queryable
}
