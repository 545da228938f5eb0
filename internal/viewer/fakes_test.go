package viewer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

const testTimeout = 2 * time.Second

// fakeDoc is a Document whose renders can be held open and released one at
// a time through gate, and whose page fetches can be made to fail.
type fakeDoc struct {
	pages   int
	gate    chan struct{} // nil renders immediately
	started chan int      // receives the page number once painting begins

	mu        sync.Mutex
	fetchErrs map[int]error
	panics    map[int]bool
}

func newFakeDoc(pages int, gated bool) *fakeDoc {
	d := &fakeDoc{
		pages:     pages,
		started:   make(chan int, 64),
		fetchErrs: make(map[int]error),
		panics:    make(map[int]bool),
	}
	if gated {
		d.gate = make(chan struct{})
	}
	return d
}

func (d *fakeDoc) PageCount() int { return d.pages }

func (d *fakeDoc) Page(ctx context.Context, n int) (Page, error) {
	d.mu.Lock()
	err := d.fetchErrs[n]
	d.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if n < 1 || n > d.pages {
		return nil, errors.New("no such page")
	}
	return &fakePage{doc: d, n: n}, nil
}

func (d *fakeDoc) failFetch(n int, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.fetchErrs[n] = err
}

func (d *fakeDoc) panicOn(n int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.panics[n] = true
}

// release lets exactly one held render finish.
func (d *fakeDoc) release(t *testing.T) {
	t.Helper()
	select {
	case d.gate <- struct{}{}:
	case <-time.After(testTimeout):
		t.Fatal("no render waiting to be released")
	}
}

func (d *fakeDoc) waitStarted(t *testing.T) int {
	t.Helper()
	select {
	case n := <-d.started:
		return n
	case <-time.After(testTimeout):
		t.Fatal("timed out waiting for a render to start")
		return 0
	}
}

func (d *fakeDoc) assertNoStart(t *testing.T) {
	t.Helper()
	select {
	case n := <-d.started:
		t.Fatalf("unexpected render of page %d", n)
	case <-time.After(20 * time.Millisecond):
	}
}

type fakePage struct {
	doc *fakeDoc
	n   int
}

func (p *fakePage) Viewport(scale float64) Viewport {
	return Viewport{Width: 100 * scale, Height: 200 * scale, Scale: scale}
}

func (p *fakePage) Render(ctx context.Context, s Surface, vp Viewport) error {
	p.doc.mu.Lock()
	shouldPanic := p.doc.panics[p.n]
	p.doc.mu.Unlock()
	if shouldPanic {
		panic("paint exploded")
	}

	p.doc.started <- p.n
	if p.doc.gate != nil {
		select {
		case <-p.doc.gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	s.(*fakeSurface).paint(p.n)
	return nil
}

// fakeSurface records every resize and paint.
type fakeSurface struct {
	mu      sync.Mutex
	sizes   [][2]int
	painted []int
}

func (s *fakeSurface) Resize(w, h int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sizes = append(s.sizes, [2]int{w, h})
}

func (s *fakeSurface) paint(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.painted = append(s.painted, n)
}

func (s *fakeSurface) Painted() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int(nil), s.painted...)
}

func (s *fakeSurface) Sizes() [][2]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][2]int(nil), s.sizes...)
}

// recorder is a Notifier that keeps every event.
type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) Notify(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) Failures() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Event
	for _, ev := range r.events {
		if ev.Type == EventFailed {
			out = append(out, ev)
		}
	}
	return out
}

func waitIdle(t *testing.T, s *Scheduler) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()
	if err := s.WaitIdle(ctx); err != nil {
		t.Fatalf("WaitIdle: %v", err)
	}
}

// fakeLoader serves fakeDocs by URL and records what was asked for.
type fakeLoader struct {
	mu   sync.Mutex
	docs []Document // returned in order; the last one repeats
	err  error
	urls []string
}

func (l *fakeLoader) Load(ctx context.Context, url string) (Document, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.urls = append(l.urls, url)
	if l.err != nil {
		return nil, l.err
	}
	doc := l.docs[0]
	if len(l.docs) > 1 {
		l.docs = l.docs[1:]
	}
	return doc, nil
}

func (l *fakeLoader) URLs() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.urls...)
}

type fakeEditor struct {
	mu        sync.Mutex
	deleted   []int
	saves     int
	deleteErr error
	saveErr   error
}

func (e *fakeEditor) DeletePage(ctx context.Context, page int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.deleteErr != nil {
		return e.deleteErr
	}
	e.deleted = append(e.deleted, page)
	return nil
}

func (e *fakeEditor) Save(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.saveErr != nil {
		return e.saveErr
	}
	e.saves++
	return nil
}
