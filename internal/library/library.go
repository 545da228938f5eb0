package library

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/ziadkadry99/pdfeditor/internal/audit"
	"github.com/ziadkadry99/pdfeditor/internal/pdfops"
	"github.com/ziadkadry99/pdfeditor/internal/storage"
	"github.com/ziadkadry99/pdfeditor/internal/workspace"
)

// Library copies workspace files into a storage backend and remembers them.
type Library struct {
	store     *Store
	backend   storage.Backend
	workspace *workspace.Workspace
	audit     *audit.Store
	logger    *slog.Logger
	now       func() time.Time
}

// New creates a Library. auditStore may be nil.
func New(store *Store, backend storage.Backend, ws *workspace.Workspace, auditStore *audit.Store, logger *slog.Logger) *Library {
	return &Library{
		store:     store,
		backend:   backend,
		workspace: ws,
		audit:     auditStore,
		logger:    logger.With("component", "library"),
		now:       time.Now,
	}
}

// Save stores the user's workspace file under <user>/<uuid>-<filename>.
func (l *Library) Save(ctx context.Context, userID string, folder workspace.Folder, filename string) (*SavedFile, error) {
	path, err := l.workspace.For(userID).Existing(folder, filename)
	if err != nil {
		return nil, err
	}

	in, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("library: opening %s: %w", filepath.Base(path), err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return nil, fmt.Errorf("library: %w", err)
	}

	pages, err := pdfops.PageCount(path)
	if err != nil {
		l.logger.Warn("counting pages", "file", filepath.Base(path), "error", err)
	}

	f := &SavedFile{
		ID:        uuid.New().String(),
		UserID:    userID,
		Filename:  filepath.Base(path),
		Folder:    string(folder),
		Backend:   l.backend.Name(),
		SizeBytes: info.Size(),
		PageCount: pages,
		CreatedAt: l.now().UTC(),
	}
	f.StorageKey = userID + "/" + f.ID + "-" + f.Filename

	f.Location, err = l.backend.Put(ctx, f.StorageKey, in)
	if err != nil {
		return nil, fmt.Errorf("library: storing %s: %w", f.Filename, err)
	}
	if err := l.store.Insert(ctx, f); err != nil {
		if derr := l.backend.Delete(ctx, f.StorageKey); derr != nil {
			l.logger.Warn("removing orphaned object", "key", f.StorageKey, "error", derr)
		}
		return nil, err
	}

	l.logger.Info("file saved", "file", f.Filename, "backend", f.Backend, "size", humanize.Bytes(uint64(f.SizeBytes)))
	l.audit.Record(ctx, l.logger, audit.Entry{
		ActorID:  userID,
		Action:   audit.ActionSave,
		Scope:    audit.ScopeLibrary,
		Filename: f.Filename,
		Summary:  fmt.Sprintf("saved %s (%d pages) to %s", f.Filename, f.PageCount, f.Backend),
		Detail:   f.Location,
	})
	return f, nil
}

// History lists the user's saved files, newest first.
func (l *Library) History(ctx context.Context, userID string, limit int) ([]HistoryItem, error) {
	files, err := l.store.List(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	now := l.now()
	items := make([]HistoryItem, 0, len(files))
	for _, f := range files {
		items = append(items, HistoryItem{
			SavedFile: f,
			Size:      humanize.Bytes(uint64(f.SizeBytes)),
			Saved:     humanize.RelTime(f.CreatedAt, now, "ago", "from now"),
		})
	}
	return items, nil
}

// Open returns the content of one of the user's saved files.
func (l *Library) Open(ctx context.Context, userID, id string) (io.ReadCloser, *SavedFile, error) {
	f, err := l.store.Get(ctx, userID, id)
	if err != nil {
		return nil, nil, err
	}
	rc, err := l.backend.Open(ctx, f.StorageKey)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil, fmt.Errorf("%w: %s", ErrNotFound, f.Filename)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("library: opening %s: %w", f.Filename, err)
	}
	return rc, f, nil
}

// Remove deletes one of the user's saved files from the backend and the
// history.
func (l *Library) Remove(ctx context.Context, userID, id string) error {
	f, err := l.store.Get(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := l.backend.Delete(ctx, f.StorageKey); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("library: deleting %s: %w", f.Filename, err)
	}
	return l.store.Delete(ctx, userID, id)
}
