package ports

import "context"

// PaneOptions configures pane creation.
type PaneOptions struct {
	// Visible asks the sink to surface the pane to the user on creation.
	Visible bool
	// ClearOnReset asks the sink to wipe the pane's content whenever the
	// owning workspace is reset or reopened.
	ClearOnReset bool
}

// OutputSink is the host-owned surface the survey writes reports to. Panes
// are named, append-only text channels; the sink owns their lifecycle.
type OutputSink interface {
	// Pane looks up an existing pane by name. Returns domain.ErrPaneNotFound
	// when no pane with that name exists.
	Pane(ctx context.Context, name string) (Pane, error)

	// CreatePane creates the named pane, or returns the existing one: pane
	// creation is idempotent per name. Returns domain.ErrSinkUnavailable
	// (possibly wrapped) when the sink cannot host panes right now.
	CreatePane(ctx context.Context, name string, opts PaneOptions) (Pane, error)
}

// Pane is one named output channel.
type Pane interface {
	// Activate brings the pane to the foreground. Activation failure is
	// non-fatal; callers log it and append anyway.
	Activate(ctx context.Context) error

	// Append writes text at the end of the pane. Panes are append-only;
	// there is no seek, truncate, or overwrite.
	Append(ctx context.Context, text string) error
}
