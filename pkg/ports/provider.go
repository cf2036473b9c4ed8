package ports

import (
	"context"

	"github.com/aretw0/canopy/pkg/domain"
)

// WorkspaceProvider defines how the survey obtains project nodes.
// This allows the workspace backend (Loam, Memory, a remote host) to be
// decoupled from the pass driver.
type WorkspaceProvider interface {
	// Projects opens a fresh enumeration of the workspace's project nodes.
	// It returns domain.ErrNoWorkspace (possibly wrapped) when no workspace
	// is available; that error aborts the whole pass.
	Projects(ctx context.Context) (ProjectCursor, error)
}

// ProjectCursor is a single-use, forward-only iterator over project nodes.
// It is not safe for concurrent use; the pass drives it from the
// coordinating loop only.
type ProjectCursor interface {
	// Next yields the next project handle. Once the cursor is exhausted it
	// returns domain.ErrEndOfProjects, and keeps returning it on every
	// further call.
	Next(ctx context.Context) (domain.NodeHandle, error)
}

// AttributeQuerier is the optional capability a node handle exposes to
// answer batched attribute queries. Handles lacking it are silently skipped.
//
// Both methods share the same contract: the result is parallel to the
// request (len(result) == len(fields), slot i answers field i), each slot
// carries its own FieldStatus, and one unsupported field does not disturb
// its siblings. A non-nil error means the whole query faulted and no result
// may be used.
type AttributeQuerier interface {
	ScalarAttributes(ctx context.Context, fields []domain.ScalarField) ([]domain.ScalarResult, error)
	IdentityAttributes(ctx context.Context, fields []domain.IdentityField) ([]domain.IdentityResult, error)
}

// Watchable defines an interface for providers that can notify about
// workspace changes. This is typically used for re-survey-on-change
// dev-mode functionality.
type Watchable interface {
	// Watch returns a channel that receives the ID of each changed project
	// document. The channel is closed when ctx is canceled.
	Watch(ctx context.Context) (<-chan string, error)
}
