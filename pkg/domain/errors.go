package domain

import "errors"

// ErrNoWorkspace is returned when the provider cannot enumerate projects at
// all (no workspace open, backend unreachable). It aborts the pass.
var ErrNoWorkspace = errors.New("no workspace available")

// ErrEndOfProjects is returned by a project cursor once it is exhausted.
// Cursors are forward-only; after this, every further Next returns it again.
var ErrEndOfProjects = errors.New("end of projects")

// ErrPaneNotFound is returned when an output pane does not exist yet.
var ErrPaneNotFound = errors.New("pane not found")

// ErrSinkUnavailable is returned when the output sink cannot take writes.
// Writes lost to it are dropped; the pass keeps going.
var ErrSinkUnavailable = errors.New("output sink unavailable")

// ErrPassInFlight is returned when a survey pass is requested while another
// pass is still running on the same runner.
var ErrPassInFlight = errors.New("survey pass already in flight")
