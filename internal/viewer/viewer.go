package viewer

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"
)

const (
	zoomStep     = 0.2
	minZoomScale = 0.4
)

// MaxZoomScale is the largest zoom factor a viewer renders at.
const MaxZoomScale = 4.0

// Snapshot is what a front end needs to draw the viewer controls.
type Snapshot struct {
	Page        int     `json:"page"`
	PageCount   int     `json:"page_count"`
	Scale       float64 `json:"scale"`
	ZoomPercent int     `json:"zoom_percent"`
	CanPrev     bool    `json:"can_prev"`
	CanNext     bool    `json:"can_next"`
	Rendering   bool    `json:"rendering"`
}

// Viewer maps navigation, zoom, reload and edit intents onto a Scheduler.
type Viewer struct {
	sched    *Scheduler
	loader   Loader
	editor   Editor
	notifier Notifier
	now      func() time.Time

	mu  sync.Mutex // serializes intents
	url string
}

// NewViewer creates a viewer. editor may be nil for read-only viewers.
func NewViewer(sched *Scheduler, loader Loader, editor Editor, notifier Notifier) *Viewer {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &Viewer{
		sched:    sched,
		loader:   loader,
		editor:   editor,
		notifier: notifier,
		now:      time.Now,
	}
}

// Scheduler returns the underlying render scheduler.
func (v *Viewer) Scheduler() *Scheduler { return v.sched }

// Load opens the document at url and renders the current page.
func (v *Viewer) Load(ctx context.Context, url string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if err := v.loadLocked(ctx, url); err != nil {
		return err
	}
	v.url = url
	return nil
}

func (v *Viewer) loadLocked(ctx context.Context, url string) error {
	doc, err := v.loader.Load(ctx, url)
	if err != nil {
		return v.fail(&Error{Kind: LoadFailure, Err: err})
	}
	v.sched.OnDocumentLoaded(doc)
	return nil
}

// Next moves one page forward; false at the last page.
func (v *Viewer) Next() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.sched.Step(1)
}

// Prev moves one page back; false at the first page.
func (v *Viewer) Prev() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.sched.Step(-1)
}

// GoTo jumps to page; false when out of range.
func (v *Viewer) GoTo(page int) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.sched.GoTo(page)
}

// ZoomIn enlarges the page by one step unless that would pass
// MaxZoomScale.
func (v *Viewer) ZoomIn() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	scale := roundScale(v.sched.State().Scale + zoomStep)
	if scale > MaxZoomScale {
		return false
	}
	_ = v.sched.SetScale(scale)
	return true
}

// ZoomOut shrinks the page by one step unless it is already at the floor.
func (v *Viewer) ZoomOut() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	scale := v.sched.State().Scale
	if scale <= minZoomScale {
		return false
	}
	_ = v.sched.SetScale(roundScale(scale - zoomStep))
	return true
}

// Reload re-fetches the current document, bypassing caches.
func (v *Viewer) Reload(ctx context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.url == "" {
		return v.fail(&Error{Kind: LoadFailure, Err: errors.New("no document loaded")})
	}
	return v.loadLocked(ctx, cacheBust(v.url, v.now()))
}

// DeleteCurrentPage asks the editor to remove the current page, then reloads
// the document. The scheduler clamps the current page if the last page went.
func (v *Viewer) DeleteCurrentPage(ctx context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.editor == nil {
		return v.fail(&Error{Kind: ServerRequestFailure, Err: errors.New("document is read-only")})
	}

	page := v.sched.State().CurrentPage
	if err := v.editor.DeletePage(ctx, page); err != nil {
		return v.fail(asServerFailure(err, page))
	}
	return v.loadLocked(ctx, cacheBust(v.url, v.now()))
}

// Save asks the editor to persist the document.
func (v *Viewer) Save(ctx context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.editor == nil {
		return v.fail(&Error{Kind: ServerRequestFailure, Err: errors.New("document is read-only")})
	}
	if err := v.editor.Save(ctx); err != nil {
		return v.fail(asServerFailure(err, 0))
	}
	return nil
}

// Snapshot reports the control state.
func (v *Viewer) Snapshot() Snapshot {
	st := v.sched.State()
	return Snapshot{
		Page:        st.CurrentPage,
		PageCount:   st.PageCount,
		Scale:       st.Scale,
		ZoomPercent: int(math.Round(st.Scale * 100)),
		CanPrev:     st.CurrentPage > 1,
		CanNext:     st.CurrentPage < st.PageCount,
		Rendering:   st.Rendering,
	}
}

func (v *Viewer) fail(err *Error) error {
	v.notifier.Notify(Event{Type: EventFailed, Page: err.Page, Err: err})
	return err
}

func asServerFailure(err error, page int) *Error {
	var ve *Error
	if errors.As(err, &ve) {
		return ve
	}
	return &Error{Kind: ServerRequestFailure, Page: page, Err: err}
}

// cacheBust appends a t=<unix millis> query parameter to url.
func cacheBust(url string, now time.Time) string {
	sep := "?"
	if strings.Contains(url, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%st=%d", url, sep, now.UnixMilli())
}

// roundScale keeps repeated zoom steps on exact hundredths.
func roundScale(s float64) float64 {
	return math.Round(s*100) / 100
}
