package library

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/pdfeditor/internal/workspace"
)

// SaveRequest is the body of POST /save_file.
type SaveRequest struct {
	Filename   string `json:"filename"`
	FolderType string `json:"folder_type"`
}

// Result is the {success, error} envelope the editor endpoints answer with.
type Result struct {
	Success bool       `json:"success"`
	Error   string     `json:"error,omitempty"`
	File    *SavedFile `json:"file,omitempty"`
}

// RegisterRoutes mounts the library endpoints. actor returns the caller's
// user id.
func RegisterRoutes(r chi.Router, lib *Library, actor func(*http.Request) string) {
	r.Post("/save_file", handleSave(lib, actor))
	r.Route("/history", func(r chi.Router) {
		r.Get("/", handleHistory(lib, actor))
		r.Get("/{id}", handleDownload(lib, actor))
		r.Delete("/{id}", handleRemove(lib, actor))
	})
}

func handleSave(lib *Library, actor func(*http.Request) string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SaveRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, Result{Error: "invalid request body"})
			return
		}
		if req.Filename == "" {
			writeJSON(w, http.StatusBadRequest, Result{Error: "Missing filename"})
			return
		}

		f, err := lib.Save(r.Context(), actor(r), workspace.FolderFor(req.FolderType), req.Filename)
		switch {
		case errors.Is(err, workspace.ErrNotFound):
			writeJSON(w, http.StatusNotFound, Result{Error: "File not found"})
		case errors.Is(err, workspace.ErrInvalidName):
			writeJSON(w, http.StatusBadRequest, Result{Error: "Invalid filename"})
		case err != nil:
			lib.logger.Error("save failed", "file", req.Filename, "error", err)
			writeJSON(w, http.StatusInternalServerError, Result{Error: err.Error()})
		default:
			writeJSON(w, http.StatusOK, Result{Success: true, File: f})
		}
	}
}

func handleHistory(lib *Library, actor func(*http.Request) string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 0
		if v := r.URL.Query().Get("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				limit = n
			}
		}
		items, err := lib.History(r.Context(), actor(r), limit)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, items)
	}
}

func handleDownload(lib *Library, actor func(*http.Request) string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rc, f, err := lib.Open(r.Context(), actor(r), chi.URLParam(r, "id"))
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		defer rc.Close()

		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="`+f.Filename+`"`)
		if _, err := io.Copy(w, rc); err != nil {
			lib.logger.Warn("download interrupted", "file", f.Filename, "error", err)
		}
	}
}

func handleRemove(lib *Library, actor func(*http.Request) string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := lib.Remove(r.Context(), actor(r), chi.URLParam(r, "id"))
		if errors.Is(err, ErrNotFound) {
			writeJSON(w, http.StatusNotFound, Result{Error: "not found"})
			return
		}
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, Result{Error: err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, Result{Success: true})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
