// Package frontend defines the contract rendering backends implement and
// the session loop that drives the registry, matcher, and dispatcher.
package frontend

import "github.com/lumen-sh/lumen/internal/entry"

// EventType identifies a frontend input event.
type EventType int

const (
	// EventNone is the zero event.
	EventNone EventType = iota
	// EventQueryChanged carries the full new query text.
	EventQueryChanged
	// EventSelectionMoved carries a selection delta.
	EventSelectionMoved
	// EventActivate launches the selected entry.
	EventActivate
	// EventCancel exits the launcher.
	EventCancel
	// EventRefresh rebuilds the corpus from all plugin units.
	EventRefresh
)

// Event is one frontend input event.
type Event struct {
	Type EventType

	// Query is the full query text for EventQueryChanged.
	Query string

	// Delta is the selection movement for EventSelectionMoved.
	Delta int
}

// Row is one rendered result line.
type Row struct {
	ID     entry.ID
	Name   string
	Exec   string
	Plugin string
	Score  int
}

// View is the render state handed to a backend.
type View struct {
	// Query is the current query text.
	Query string

	// Rows are the ranked results, best first.
	Rows []Row

	// Selected indexes Rows; -1 when Rows is empty.
	Selected int

	// Total is the number of matches before the list-size cap.
	Total int

	// Status is a one-line user-visible message (launch failures, plugin
	// diagnostics). Empty when there is nothing to say.
	Status string
}

// Backend is the rendering contract. Backends own the display surface and
// input decoding; everything else lives in the session. Exactly one backend
// is selected at startup.
type Backend interface {
	// Init prepares the display surface.
	Init() error

	// Close restores the display surface. Safe to call after a failed Init.
	Close()

	// Render draws the view. Called after every state change.
	Render(view View)

	// PollEvent blocks for the next input event.
	PollEvent() Event
}
