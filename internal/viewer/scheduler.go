package viewer

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"
)

// ViewerState is the mutable session state of one open document.
type ViewerState struct {
	CurrentPage int     `json:"current_page"`
	PageCount   int     `json:"page_count"`
	Scale       float64 `json:"scale"`
	Rendering   bool    `json:"rendering"`
	PendingPage int     `json:"pending_page,omitempty"` // 0 when absent
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithRenderTimeout bounds each page fetch + paint. The deadline reaches the
// document through the render context; zero disables it.
func WithRenderTimeout(d time.Duration) Option {
	return func(s *Scheduler) { s.timeout = d }
}

// WithStartPage sets the page shown after the first load. It is clamped
// into the document's range like any other page.
func WithStartPage(page int) Option {
	return func(s *Scheduler) { s.state.CurrentPage = page }
}

// WithLogger sets the scheduler's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) { s.logger = logger.With("component", "scheduler") }
}

// Scheduler owns the current page, the zoom scale and the in-flight flag.
// At most one render touches the surface at a time; requests that arrive
// while a render is in flight collapse into a single pending page and the
// latest one wins.
type Scheduler struct {
	surface  Surface
	notifier Notifier
	logger   *slog.Logger
	timeout  time.Duration

	mu    sync.Mutex
	doc   Document
	state ViewerState
	idle  chan struct{} // closed while no render is in flight
}

// NewScheduler creates an idle scheduler painting onto surface.
func NewScheduler(surface Surface, notifier Notifier, opts ...Option) *Scheduler {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	s := &Scheduler{
		surface:  surface,
		notifier: notifier,
		logger:   slog.Default().With("component", "scheduler"),
		state:    ViewerState{CurrentPage: 1, Scale: 1.0},
		idle:     make(chan struct{}),
	}
	close(s.idle)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns a copy of the current state.
func (s *Scheduler) State() ViewerState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Document returns the loaded document, or nil before the first load.
func (s *Scheduler) Document() Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc
}

// RequestRender renders page now if idle, otherwise records it as the
// pending page, replacing any earlier pending request. It never blocks.
func (s *Scheduler) RequestRender(page int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requestLocked(page)
}

// OnDocumentLoaded installs doc, clamps the current page into its range,
// drops any pending request and renders the current page.
func (s *Scheduler) OnDocumentLoaded(doc Document) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.doc = doc
	s.state.PageCount = doc.PageCount()
	if s.state.CurrentPage > s.state.PageCount {
		s.state.CurrentPage = s.state.PageCount
	}
	if s.state.CurrentPage < 1 {
		s.state.CurrentPage = 1
	}
	s.state.PendingPage = 0
	s.requestLocked(s.state.CurrentPage)
}

// SetScale changes the zoom factor and re-renders the current page. A render
// already in flight keeps the scale it started with.
func (s *Scheduler) SetScale(scale float64) error {
	if scale <= 0 || math.IsNaN(scale) || math.IsInf(scale, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidScale, scale)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Scale = scale
	s.requestLocked(s.state.CurrentPage)
	return nil
}

// GoTo moves to page and renders it. Pages outside [1, PageCount] are
// ignored and GoTo reports false.
func (s *Scheduler) GoTo(page int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if page < 1 || page > s.state.PageCount {
		return false
	}
	s.state.CurrentPage = page
	s.requestLocked(page)
	return true
}

// Step moves delta pages from the current one, as GoTo.
func (s *Scheduler) Step(delta int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	page := s.state.CurrentPage + delta
	if page < 1 || page > s.state.PageCount {
		return false
	}
	s.state.CurrentPage = page
	s.requestLocked(page)
	return true
}

// WaitIdle blocks until no render is in flight and no page is pending.
func (s *Scheduler) WaitIdle(ctx context.Context) error {
	for {
		s.mu.Lock()
		if !s.state.Rendering {
			s.mu.Unlock()
			return nil
		}
		idle := s.idle
		s.mu.Unlock()

		select {
		case <-idle:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

type renderJob struct {
	doc   Document
	page  int
	scale float64
}

func (s *Scheduler) requestLocked(page int) {
	if s.state.Rendering {
		s.state.PendingPage = page
		return
	}
	s.startLocked(page)
}

// startLocked flips the in-flight flag before anything can suspend, so the
// check in requestLocked and this set are one critical section.
func (s *Scheduler) startLocked(page int) {
	if s.doc == nil {
		return
	}
	s.state.Rendering = true
	s.idle = make(chan struct{})
	go s.run(renderJob{doc: s.doc, page: page, scale: s.state.Scale})
}

func (s *Scheduler) run(job renderJob) {
	vp, err := s.render(job)

	if err != nil {
		s.logger.Warn("render failed", "page", job.page, "error", err)
		s.notifier.Notify(Event{
			Type: EventFailed,
			Page: job.page,
			Err:  &Error{Kind: RenderFailure, Page: job.page, Err: err},
		})
	} else {
		s.logger.Debug("rendered", "page", job.page, "scale", job.scale)
		s.notifier.Notify(Event{Type: EventRendered, Page: job.page, Viewport: vp})
	}

	s.finish()
}

// finish releases the in-flight flag and starts the pending page, if any.
// It runs after every render regardless of outcome.
func (s *Scheduler) finish() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Rendering = false
	close(s.idle)
	next := s.state.PendingPage
	s.state.PendingPage = 0
	if next != 0 {
		s.startLocked(next)
	}
}

func (s *Scheduler) render(job renderJob) (vp Viewport, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("render panicked: %v", r)
		}
	}()

	ctx := context.Background()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	page, err := job.doc.Page(ctx, job.page)
	if err != nil {
		return Viewport{}, fmt.Errorf("fetching page %d: %w", job.page, err)
	}

	vp = page.Viewport(job.scale)
	s.surface.Resize(vp.PixelSize())

	if err := page.Render(ctx, s.surface, vp); err != nil {
		return Viewport{}, fmt.Errorf("painting page %d: %w", job.page, err)
	}
	return vp, nil
}
