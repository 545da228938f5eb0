package audit

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/ziadkadry99/pdfeditor/internal/db"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return NewStore(database)
}

func TestLogAndGetByID(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	entry := Entry{
		ID:        "test-1",
		ActorType: ActorUser,
		ActorID:   "alice",
		Action:    ActionDeletePage,
		Scope:     ScopeNew,
		Filename:  "processed_scan.pdf",
		Summary:   "Deleted page 3",
	}
	if err := store.Log(ctx, entry); err != nil {
		t.Fatalf("Log: %v", err)
	}

	got, err := store.GetByID(ctx, "test-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.ActorID != "alice" {
		t.Errorf("ActorID = %q, want %q", got.ActorID, "alice")
	}
	if got.Action != ActionDeletePage {
		t.Errorf("Action = %q, want %q", got.Action, ActionDeletePage)
	}
	if got.Scope != ScopeNew || got.Filename != "processed_scan.pdf" {
		t.Errorf("Scope/Filename = %q/%q", got.Scope, got.Filename)
	}
	if got.Timestamp.IsZero() {
		t.Error("Timestamp not parsed")
	}
}

func TestLogGeneratesUUIDAndDefaultsActorType(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	if err := store.Log(ctx, Entry{ActorID: "bob", Action: ActionUpload, Scope: ScopeUploads}); err != nil {
		t.Fatalf("Log: %v", err)
	}
	entries, err := store.Query(ctx, QueryFilter{ActorID: "bob"})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	if len(entries[0].ID) != 36 {
		t.Errorf("ID = %q, want a UUID", entries[0].ID)
	}
	if entries[0].ActorType != ActorUser {
		t.Errorf("ActorType = %q, want %q", entries[0].ActorType, ActorUser)
	}
}

func TestGetByIDNotFound(t *testing.T) {
	store := setupStore(t)
	if _, err := store.GetByID(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestQueryFilters(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	seed := []Entry{
		{ActorID: "alice", Action: ActionUpload, Scope: ScopeOld, Filename: "a.pdf"},
		{ActorID: "alice", Action: ActionSlice, Scope: ScopeNew, Filename: "processed_a.pdf"},
		{ActorID: "alice", Action: ActionSave, Scope: ScopeLibrary, Filename: "processed_a.pdf"},
		{ActorID: "bob", Action: ActionUpload, Scope: ScopeUploads, Filename: "b.pdf"},
	}
	for _, e := range seed {
		if err := store.Log(ctx, e); err != nil {
			t.Fatalf("Log: %v", err)
		}
	}

	tests := []struct {
		name   string
		filter QueryFilter
		want   int
	}{
		{"all", QueryFilter{}, 4},
		{"by actor", QueryFilter{ActorID: "alice"}, 3},
		{"by action", QueryFilter{Action: ActionUpload}, 2},
		{"by scope", QueryFilter{Scope: ScopeNew}, 1},
		{"by filename", QueryFilter{Filename: "processed_a.pdf"}, 2},
		{"limit", QueryFilter{Limit: 2}, 2},
		{"offset", QueryFilter{Offset: 3}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.Query(ctx, tt.filter)
			if err != nil {
				t.Fatalf("Query: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("got %d entries, want %d", len(got), tt.want)
			}
		})
	}

	newest, err := store.Query(ctx, QueryFilter{Limit: 1})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if newest[0].ActorID != "bob" {
		t.Errorf("newest entry actor = %q, want bob", newest[0].ActorID)
	}
}

func TestDeleteBefore(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	if err := store.Log(ctx, Entry{ActorID: "alice", Action: ActionUpload, Scope: ScopeUploads}); err != nil {
		t.Fatalf("Log: %v", err)
	}
	n, err := store.DeleteBefore(ctx, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("DeleteBefore: %v", err)
	}
	if n != 1 {
		t.Errorf("deleted %d, want 1", n)
	}
}

func TestRecordNilStoreIsNoop(t *testing.T) {
	var s *Store
	s.Record(context.Background(), slog.New(slog.NewTextHandler(io.Discard, nil)), Entry{})
}

func TestRoutesScopeToActor(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	for _, e := range []Entry{
		{ID: "a1", ActorID: "alice", Action: ActionUpload, Scope: ScopeUploads},
		{ID: "b1", ActorID: "bob", Action: ActionUpload, Scope: ScopeUploads},
	} {
		if err := store.Log(ctx, e); err != nil {
			t.Fatalf("Log: %v", err)
		}
	}

	r := chi.NewRouter()
	RegisterRoutes(r, store, func(*http.Request) string { return "alice" })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/audit/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var entries []Entry
	if err := json.NewDecoder(rec.Body).Decode(&entries); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(entries) != 1 || entries[0].ID != "a1" {
		t.Errorf("entries = %+v, want only a1", entries)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/audit/b1", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("other actor's entry status = %d, want 404", rec.Code)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/audit/a1", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("own entry status = %d, want 200", rec.Code)
	}
}
