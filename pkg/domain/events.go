package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventProjectEnter  EventType = "project_enter"
	EventProjectReport EventType = "project_report"
	EventProjectSkip   EventType = "project_skip"
	EventQueryFault    EventType = "query_fault"
	EventPaneCreate    EventType = "pane_create"
	EventPassEnd       EventType = "pass_end"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// ProjectEvent marks progress on a single node: entered, reported, or
// skipped for lacking the query capability.
type ProjectEvent struct {
	EventBase
	// Index is the zero-based position of the node in enumeration order.
	Index int `json:"index"`
	// Lines is the number of report lines written (report events only).
	Lines int `json:"lines,omitempty"`
}

// FaultEvent marks a contained attribute query fault.
type FaultEvent struct {
	EventBase
	Index int        `json:"index"`
	Stage QueryStage `json:"stage"`
	Err   error      `json:"-"`
}

// PaneEvent marks output pane resolution. Created is false when an existing
// pane was reused.
type PaneEvent struct {
	EventBase
	Name    string `json:"name"`
	Created bool   `json:"created"`
}

// PassEvent marks the end of a survey pass, successful or not.
type PassEvent struct {
	EventBase
	Summary PassSummary `json:"summary"`
	Err     error       `json:"-"`
}

// LifecycleHooks defines callbacks for survey observability. All fields are
// optional; nil hooks are skipped. Per-project hooks run on the
// coordinating loop, so they must not block; OnPassEnd fires from the
// calling goroutine once the pass has settled.
type LifecycleHooks struct {
	OnProjectEnter  func(context.Context, *ProjectEvent)
	OnProjectReport func(context.Context, *ProjectEvent)
	OnProjectSkip   func(context.Context, *ProjectEvent)
	OnQueryFault    func(context.Context, *FaultEvent)
	OnPaneCreate    func(context.Context, *PaneEvent)
	OnPassEnd       func(context.Context, *PassEvent)
}
