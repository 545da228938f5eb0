// Package editor applies page edits to a user's workspace files.
package editor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/ziadkadry99/pdfeditor/internal/audit"
	"github.com/ziadkadry99/pdfeditor/internal/library"
	"github.com/ziadkadry99/pdfeditor/internal/pdfops"
	"github.com/ziadkadry99/pdfeditor/internal/viewer"
	"github.com/ziadkadry99/pdfeditor/internal/workspace"
)

// Service deletes pages and saves documents on behalf of users.
type Service struct {
	workspace *workspace.Workspace
	library   *library.Library
	audit     *audit.Store
	logger    *slog.Logger
}

// New creates a Service. lib and auditStore may be nil; without a library
// Save fails.
func New(ws *workspace.Workspace, lib *library.Library, auditStore *audit.Store, logger *slog.Logger) *Service {
	return &Service{
		workspace: ws,
		library:   lib,
		audit:     auditStore,
		logger:    logger.With("component", "editor"),
	}
}

// DeletePage removes the 1-based page from the user's file and returns the
// remaining page count.
func (s *Service) DeletePage(ctx context.Context, userID string, folder workspace.Folder, filename string, page int) (int, error) {
	path, err := s.workspace.For(userID).Existing(folder, filename)
	if err != nil {
		return 0, err
	}
	if err := pdfops.DeletePage(path, page); err != nil {
		return 0, err
	}
	remaining, err := pdfops.PageCount(path)
	if err != nil {
		return 0, err
	}

	name := filepath.Base(path)
	s.logger.Info("page deleted", "file", name, "page", page, "remaining", remaining)
	s.audit.Record(ctx, s.logger, audit.Entry{
		ActorID:  userID,
		Action:   audit.ActionDeletePage,
		Scope:    audit.Scope(folder),
		Filename: name,
		Summary:  fmt.Sprintf("deleted page %d, %d left", page, remaining),
	})
	return remaining, nil
}

// Save copies the user's file into their library.
func (s *Service) Save(ctx context.Context, userID string, folder workspace.Folder, filename string) (*library.SavedFile, error) {
	if s.library == nil {
		return nil, errors.New("editor: no library configured")
	}
	return s.library.Save(ctx, userID, folder, filename)
}

// For binds the service to one document of one user.
func (s *Service) For(userID string, folder workspace.Folder, filename string) viewer.Editor {
	return &documentEditor{svc: s, userID: userID, folder: folder, filename: filename}
}

type documentEditor struct {
	svc      *Service
	userID   string
	folder   workspace.Folder
	filename string
}

func (e *documentEditor) DeletePage(ctx context.Context, page int) error {
	_, err := e.svc.DeletePage(ctx, e.userID, e.folder, e.filename, page)
	return err
}

func (e *documentEditor) Save(ctx context.Context) error {
	_, err := e.svc.Save(ctx, e.userID, e.folder, e.filename)
	return err
}
