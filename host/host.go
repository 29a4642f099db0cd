// Package host defines the window system the emulated display runs on.
//
// A host provides top-level windows, pixel buffers and a single event
// queue. The emulation realizes only top-level X windows as host
// windows; everything below them is composited into host buffers.
// Buffers are golang.org/x/exp/shiny screen.Buffers, so the shiny
// driver can be used directly, and event bodies are the
// golang.org/x/mobile events shiny delivers, extended by the types
// below for notifications the mobile events cannot express.
package host

import (
	"image"

	"golang.org/x/exp/shiny/screen"
)

// A Screen is a connection to a host window system.
type Screen interface {
	// NewWindow creates a new, hidden host window.
	NewWindow(opts *WindowOptions) (Window, error)

	// NewBuffer allocates a pixel buffer of the given size.
	NewBuffer(size image.Point) (screen.Buffer, error)

	// Size returns the size of the host display.
	Size() image.Point

	// Events returns the queue all host windows deliver to.
	Events() *Queue

	// Close releases the host connection.
	Close() error
}

// WindowOptions are the initial attributes of a host window.
type WindowOptions struct {
	Bounds image.Rectangle // position and size in screen coordinates
	Title  string
}

// A Window is a realized top-level host window.
type Window interface {
	// ID returns the identifier the host uses in Event.Window.
	// IDs are never zero.
	ID() uint32

	// Bounds returns the current position and size, in screen coordinates.
	// The host is authoritative: the user may move or resize the window.
	Bounds() image.Rectangle

	Move(p image.Point)
	Resize(size image.Point)
	Show()
	Hide()
	SetTitle(title string)

	// Upload copies sr from buf to dp in the window's back buffer.
	Upload(dp image.Point, buf screen.Buffer, sr image.Rectangle)

	// Publish makes uploaded pixels visible.
	Publish()

	Release()
}

// An Event is a host notification.
// Window is the ID of the host window it concerns, or zero.
//
// Body is one of key.Event, mouse.Event, lifecycle.Event, size.Event,
// paint.Event from golang.org/x/mobile/event, or one of the event
// types defined in this package.
type Event struct {
	Window uint32
	Body   any
}

// MoveEvent reports that a window moved to (X, Y) in screen coordinates.
type MoveEvent struct {
	X, Y int
}

// CrossingEvent reports the pointer entering or leaving a window.
type CrossingEvent struct {
	Entered bool
	X, Y    int // window coordinates
}

// FocusEvent reports keyboard focus changes.
type FocusEvent struct {
	Gained bool
}

// TextEvent carries committed text from the host input method.
type TextEvent struct {
	Text string
}

// CloseEvent reports that the user asked to close a window.
type CloseEvent struct{}

// ResetEvent reports that the contents of every host window were lost,
// for example after a graphics device reset.
type ResetEvent struct{}

// RestoreEvent reports that a minimized window was restored.
type RestoreEvent struct{}
