package server

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/pdfeditor/internal/audit"
	"github.com/ziadkadry99/pdfeditor/internal/auth"
	"github.com/ziadkadry99/pdfeditor/internal/pdfops"
	"github.com/ziadkadry99/pdfeditor/internal/workspace"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// pageData feeds every page template.
type pageData struct {
	User       *auth.User
	Error      string
	PDFURL     string
	Filename   string
	FolderType string
	Folder     string
	Actions    []actionChoice
}

type actionChoice struct {
	Value, Label string
}

var sliceActions = []actionChoice{
	{"booklet_rtl", "Booklet, right to left"},
	{"booklet_ltr", "Booklet, left to right"},
	{"spreads_rtl", "Spreads, right to left"},
	{"spreads_ltr", "Spreads, left to right"},
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data pageData) {
	data.User = auth.UserFromContext(r.Context())
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pages.ExecuteTemplate(w, name, data); err != nil {
		s.logger.Error("rendering page", "page", name, "error", err)
	}
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "index.html", pageData{})
}

func (s *Server) handleSlicePage(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "slice.html", pageData{Actions: sliceActions})
}

// handleSlice stores the upload in the old folder, slices and reorders it
// into the new folder and shows the result in the viewer.
func (s *Server) handleSlice(w http.ResponseWriter, r *http.Request) {
	fail := func(status int, msg string) {
		s.render(w, r, status, "slice.html", pageData{Actions: sliceActions, Error: msg})
	}

	name, input, ok := s.receiveUpload(w, r, workspace.FolderOld, fail)
	if !ok {
		return
	}

	action := r.FormValue("action")
	if _, err := pdfops.ParseAction(action); err != nil {
		fail(http.StatusBadRequest, "Invalid action selected")
		return
	}

	userID := auth.UserID(r)
	ws := s.workspace.For(userID)
	out, err := pdfops.Process(input, ws.Dir(workspace.FolderOld), ws.Dir(workspace.FolderNew), action)
	if err != nil {
		s.logger.Warn("slice failed", "file", name, "action", action, "error", err)
		status := http.StatusInternalServerError
		if errors.Is(err, pdfops.ErrOddPageCount) {
			status = http.StatusUnprocessableEntity
		}
		fail(status, "Error processing file: "+err.Error())
		return
	}

	processed := filepath.Base(out)
	s.audit.Record(r.Context(), s.logger, audit.Entry{
		ActorID:  userID,
		Action:   audit.ActionSlice,
		Scope:    audit.ScopeNew,
		Filename: processed,
		Summary:  fmt.Sprintf("sliced %s as %s", name, action),
	})

	s.render(w, r, http.StatusOK, "slice.html", pageData{
		Actions:    sliceActions,
		PDFURL:     workspace.URL(workspace.FolderNew, processed),
		Filename:   processed,
		FolderType: "processed",
		Folder:     string(workspace.FolderNew),
	})
}

func (s *Server) handleOCRPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "ocr.html", pageData{})
}

// handleOCR stores the upload and opens it in the viewer.
func (s *Server) handleOCR(w http.ResponseWriter, r *http.Request) {
	fail := func(status int, msg string) {
		s.render(w, r, status, "ocr.html", pageData{Error: msg})
	}
	name, _, ok := s.receiveUpload(w, r, workspace.FolderUploads, fail)
	if !ok {
		return
	}

	s.render(w, r, http.StatusOK, "ocr.html", pageData{
		PDFURL:     workspace.URL(workspace.FolderUploads, name),
		Filename:   name,
		FolderType: "uploads",
		Folder:     string(workspace.FolderUploads),
	})
}

// receiveUpload saves the pdf_file form field into folder and returns its
// sanitized name and path. On failure it reports through fail.
func (s *Server) receiveUpload(w http.ResponseWriter, r *http.Request, folder workspace.Folder, fail func(int, string)) (string, string, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes())

	file, header, err := r.FormFile("pdf_file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			fail(http.StatusRequestEntityTooLarge, fmt.Sprintf("File is larger than %d MB", s.cfg.MaxUploadMB))
		case errors.Is(err, http.ErrMissingFile):
			fail(http.StatusBadRequest, "No file part")
		default:
			fail(http.StatusBadRequest, "Invalid upload")
		}
		return "", "", false
	}
	defer file.Close()

	if header.Filename == "" {
		fail(http.StatusBadRequest, "No selected file")
		return "", "", false
	}
	if !strings.EqualFold(filepath.Ext(header.Filename), ".pdf") {
		fail(http.StatusBadRequest, "Invalid file type")
		return "", "", false
	}

	userID := auth.UserID(r)
	path, err := s.workspace.For(userID).Save(folder, header.Filename, file)
	if errors.Is(err, workspace.ErrInvalidName) {
		fail(http.StatusBadRequest, "Invalid file name")
		return "", "", false
	}
	if err != nil {
		s.logger.Error("storing upload", "file", header.Filename, "error", err)
		fail(http.StatusInternalServerError, "Could not store the upload")
		return "", "", false
	}

	name := filepath.Base(path)
	s.audit.Record(r.Context(), s.logger, audit.Entry{
		ActorID:  userID,
		Action:   audit.ActionUpload,
		Scope:    audit.Scope(folder),
		Filename: name,
		Summary:  fmt.Sprintf("uploaded %s", name),
	})
	return name, path, true
}

// handleFile serves a PDF from the caller's workspace.
func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	folder, err := workspace.ParseFolder(chi.URLParam(r, "folder"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	path, err := s.workspace.For(auth.UserID(r)).Existing(folder, chi.URLParam(r, "filename"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	http.ServeFile(w, r, path)
}
