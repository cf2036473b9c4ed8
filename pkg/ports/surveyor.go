package ports

import (
	"context"

	"github.com/aretw0/canopy/pkg/domain"
)

// Surveyor defines the survey core as consumed by serving adapters
// (HTTP, MCP). Adapters stay decoupled from the concrete pass driver.
type Surveyor interface {
	// Survey runs one full pass over the workspace, writing reports to the
	// output sink, and returns the pass summary.
	Survey(ctx context.Context) (domain.PassSummary, error)

	// Inspect enumerates and queries every project without writing
	// anything. This is the introspection surface for tooling.
	Inspect(ctx context.Context) ([]*domain.ProjectReport, error)
}

// PaneReader is implemented by sinks whose pane content can be read back
// (memory, redis). Serving adapters use it to expose pane contents.
type PaneReader interface {
	// Contents returns the full accumulated text of the named pane.
	// Returns domain.ErrPaneNotFound when the pane does not exist.
	Contents(ctx context.Context, name string) (string, error)
}
