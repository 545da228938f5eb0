package viewer

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func newTestViewer(t *testing.T, loader *fakeLoader, editor Editor) (*Viewer, *recorder) {
	t.Helper()
	rec := &recorder{}
	s := NewScheduler(&fakeSurface{}, rec)
	v := NewViewer(s, loader, editor, rec)
	v.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return v, rec
}

func TestViewerLoadAndNavigate(t *testing.T) {
	loader := &fakeLoader{docs: []Document{newFakeDoc(3, false)}}
	v, _ := newTestViewer(t, loader, nil)
	ctx := context.Background()

	if err := v.Load(ctx, "/files/uploads/a.pdf"); err != nil {
		t.Fatalf("Load: %v", err)
	}
	waitIdle(t, v.Scheduler())

	snap := v.Snapshot()
	if snap.Page != 1 || snap.PageCount != 3 || snap.CanPrev || !snap.CanNext {
		t.Errorf("snapshot after load = %+v", snap)
	}

	if v.Prev() {
		t.Error("Prev on first page accepted")
	}
	if !v.Next() || !v.Next() {
		t.Fatal("Next rejected")
	}
	if v.Next() {
		t.Error("Next on last page accepted")
	}
	waitIdle(t, v.Scheduler())

	snap = v.Snapshot()
	if snap.Page != 3 || snap.CanNext || !snap.CanPrev {
		t.Errorf("snapshot at end = %+v", snap)
	}
	if !v.GoTo(2) || v.GoTo(4) {
		t.Error("GoTo range check wrong")
	}
}

func TestViewerZoomSteps(t *testing.T) {
	loader := &fakeLoader{docs: []Document{newFakeDoc(1, false)}}
	v, _ := newTestViewer(t, loader, nil)
	if err := v.Load(context.Background(), "doc.pdf"); err != nil {
		t.Fatalf("Load: %v", err)
	}

	v.ZoomIn()
	if snap := v.Snapshot(); snap.Scale != 1.2 || snap.ZoomPercent != 120 {
		t.Errorf("after zoom in: %+v", snap)
	}

	for i := 0; i < 4; i++ {
		v.ZoomOut()
	}
	if got := v.Snapshot().Scale; got != 0.4 {
		t.Errorf("scale after zooming out = %v, want 0.4", got)
	}
	if v.ZoomOut() {
		t.Error("ZoomOut below floor accepted")
	}
	if got := v.Snapshot().ZoomPercent; got != 40 {
		t.Errorf("ZoomPercent = %d, want 40", got)
	}

	steps := 0
	for v.ZoomIn() {
		steps++
		if steps > 100 {
			t.Fatal("ZoomIn never reached a ceiling")
		}
	}
	if steps != 18 {
		t.Errorf("zoom in steps from 0.4 = %d, want 18", steps)
	}
	if got := v.Snapshot().Scale; got != MaxZoomScale {
		t.Errorf("scale at ceiling = %v, want %v", got, MaxZoomScale)
	}
	if v.ZoomIn() {
		t.Error("ZoomIn above ceiling accepted")
	}
	waitIdle(t, v.Scheduler())
}

func TestViewerLoadFailure(t *testing.T) {
	loader := &fakeLoader{err: errors.New("404")}
	v, rec := newTestViewer(t, loader, nil)

	err := v.Load(context.Background(), "missing.pdf")
	if KindOf(err) != LoadFailure {
		t.Fatalf("Load error kind = %q, want %q", KindOf(err), LoadFailure)
	}
	if n := len(rec.Failures()); n != 1 {
		t.Errorf("failures notified = %d, want 1", n)
	}
}

func TestViewerDeleteCurrentPageReloads(t *testing.T) {
	loader := &fakeLoader{docs: []Document{newFakeDoc(3, false), newFakeDoc(2, false)}}
	editor := &fakeEditor{}
	v, _ := newTestViewer(t, loader, editor)
	ctx := context.Background()

	if err := v.Load(ctx, "/files/new/processed_a.pdf"); err != nil {
		t.Fatalf("Load: %v", err)
	}
	v.GoTo(3)
	waitIdle(t, v.Scheduler())

	if err := v.DeleteCurrentPage(ctx); err != nil {
		t.Fatalf("DeleteCurrentPage: %v", err)
	}
	waitIdle(t, v.Scheduler())

	if len(editor.deleted) != 1 || editor.deleted[0] != 3 {
		t.Errorf("deleted = %v, want [3]", editor.deleted)
	}
	urls := loader.URLs()
	if len(urls) != 2 {
		t.Fatalf("loads = %v, want 2", urls)
	}
	if urls[1] != "/files/new/processed_a.pdf?t=1700000000000" {
		t.Errorf("reload url = %q", urls[1])
	}
	if snap := v.Snapshot(); snap.Page != 2 || snap.PageCount != 2 {
		t.Errorf("snapshot after delete = %+v", snap)
	}
}

func TestCacheBustKeepsExistingQuery(t *testing.T) {
	got := cacheBust("/files/a.pdf?x=1", time.UnixMilli(42))
	if got != "/files/a.pdf?x=1&t=42" {
		t.Errorf("cacheBust = %q", got)
	}
}

func TestViewerDeleteFailureKeepsViewerUsable(t *testing.T) {
	loader := &fakeLoader{docs: []Document{newFakeDoc(3, false)}}
	editor := &fakeEditor{deleteErr: errors.New("Invalid page number")}
	v, rec := newTestViewer(t, loader, editor)
	ctx := context.Background()

	if err := v.Load(ctx, "a.pdf"); err != nil {
		t.Fatalf("Load: %v", err)
	}
	err := v.DeleteCurrentPage(ctx)
	if KindOf(err) != ServerRequestFailure {
		t.Fatalf("error kind = %q, want %q", KindOf(err), ServerRequestFailure)
	}
	if !strings.Contains(err.Error(), "Invalid page number") {
		t.Errorf("error = %v", err)
	}
	if n := len(rec.Failures()); n != 1 {
		t.Errorf("failures notified = %d, want 1", n)
	}
	if len(loader.URLs()) != 1 {
		t.Error("document reloaded after failed delete")
	}

	if !v.Next() {
		t.Error("navigation broken after failed delete")
	}
	v.ZoomIn()
	waitIdle(t, v.Scheduler())
}

func TestViewerSave(t *testing.T) {
	loader := &fakeLoader{docs: []Document{newFakeDoc(1, false)}}
	editor := &fakeEditor{}
	v, _ := newTestViewer(t, loader, editor)
	ctx := context.Background()

	if err := v.Save(ctx); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if editor.saves != 1 {
		t.Errorf("saves = %d, want 1", editor.saves)
	}

	editor.saveErr = &Error{Kind: ServerRequestFailure, Err: errors.New("disk full")}
	if err := v.Save(ctx); KindOf(err) != ServerRequestFailure {
		t.Errorf("Save error = %v", err)
	}
}

func TestViewerReadOnlyRejectsEdits(t *testing.T) {
	loader := &fakeLoader{docs: []Document{newFakeDoc(1, false)}}
	v, _ := newTestViewer(t, loader, nil)
	if err := v.DeleteCurrentPage(context.Background()); KindOf(err) != ServerRequestFailure {
		t.Errorf("DeleteCurrentPage on read-only viewer = %v", err)
	}
}

func TestViewerReloadWithoutDocument(t *testing.T) {
	v, _ := newTestViewer(t, &fakeLoader{}, nil)
	if err := v.Reload(context.Background()); KindOf(err) != LoadFailure {
		t.Errorf("Reload = %v, want load failure", err)
	}
}
