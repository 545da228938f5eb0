// Package viewer implements the paginated document viewer: a render
// scheduler that serializes paints onto one drawing surface while coalescing
// page requests, and the navigation/zoom/edit controls that drive it.
package viewer

import (
	"context"
	"errors"
	"fmt"
)

// Viewport is the size of a page at a given scale, in surface pixels.
type Viewport struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Scale  float64 `json:"scale"`
}

// PixelSize returns the integer surface dimensions for the viewport.
func (v Viewport) PixelSize() (int, int) {
	return int(v.Width), int(v.Height)
}

// Document is a loaded, paginated document.
type Document interface {
	PageCount() int
	// Page fetches a 1-based page.
	Page(ctx context.Context, number int) (Page, error)
}

// Page is a single renderable page of a Document.
type Page interface {
	Viewport(scale float64) Viewport
	Render(ctx context.Context, surface Surface, vp Viewport) error
}

// Surface is the drawing target shared by every render of a viewer.
// Concrete surfaces expose their own drawing API to the pages that
// understand them.
type Surface interface {
	Resize(width, height int)
}

// Loader opens documents by URL or path.
type Loader interface {
	Load(ctx context.Context, url string) (Document, error)
}

// Editor performs server-side edits on the open document.
type Editor interface {
	DeletePage(ctx context.Context, page int) error
	Save(ctx context.Context) error
}

// EventType identifies what a notification is about.
type EventType string

const (
	EventRendered EventType = "rendered"
	EventFailed   EventType = "failed"
)

// Event is delivered to a Notifier after each render and on every failure.
type Event struct {
	Type     EventType
	Page     int
	Viewport Viewport
	Err      error
}

// Notifier is the operator-visible channel for render results and failures.
type Notifier interface {
	Notify(Event)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(Event)

// Notify calls f(ev).
func (f NotifierFunc) Notify(ev Event) { f(ev) }

type nopNotifier struct{}

func (nopNotifier) Notify(Event) {}

// Kind classifies viewer failures.
type Kind string

const (
	LoadFailure          Kind = "load_failure"
	RenderFailure        Kind = "render_failure"
	ServerRequestFailure Kind = "server_request_failure"
)

// Error is a classified viewer failure. None of them are fatal.
type Error struct {
	Kind Kind
	Page int // 0 when not page specific
	Err  error
}

func (e *Error) Error() string {
	if e.Page > 0 {
		return fmt.Sprintf("viewer: %s (page %d): %v", e.Kind, e.Page, e.Err)
	}
	return fmt.Sprintf("viewer: %s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the Kind of a viewer error, or "" when err is not one.
func KindOf(err error) Kind {
	var ve *Error
	if errors.As(err, &ve) {
		return ve.Kind
	}
	return ""
}

// ErrInvalidScale is returned when a zoom factor is not a positive number.
var ErrInvalidScale = errors.New("viewer: scale must be positive")
