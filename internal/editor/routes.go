package editor

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/pdfeditor/internal/pdfops"
	"github.com/ziadkadry99/pdfeditor/internal/workspace"
)

// DeleteRequest is the body of POST /delete_page.
type DeleteRequest struct {
	Filename   string     `json:"filename"`
	PageNumber PageNumber `json:"page_number"`
	FolderType string     `json:"folder_type"`
}

// PageNumber accepts both 3 and "3".
type PageNumber int

func (p *PageNumber) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*p = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	*p = PageNumber(n)
	return nil
}

type deleteResult struct {
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
	PageCount int    `json:"page_count,omitempty"`
}

// RegisterRoutes mounts POST /delete_page. actor returns the caller's user id.
func RegisterRoutes(r chi.Router, svc *Service, actor func(*http.Request) string) {
	r.Post("/delete_page", handleDeletePage(svc, actor))
}

func handleDeletePage(svc *Service, actor func(*http.Request) string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req DeleteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, deleteResult{Error: "Invalid request body"})
			return
		}
		if req.Filename == "" || req.PageNumber == 0 {
			writeJSON(w, http.StatusBadRequest, deleteResult{Error: "Missing filename or page number"})
			return
		}

		remaining, err := svc.DeletePage(r.Context(), actor(r), workspace.FolderFor(req.FolderType), req.Filename, int(req.PageNumber))
		switch {
		case errors.Is(err, workspace.ErrNotFound):
			writeJSON(w, http.StatusNotFound, deleteResult{Error: "File not found"})
		case errors.Is(err, workspace.ErrInvalidName):
			writeJSON(w, http.StatusBadRequest, deleteResult{Error: "Invalid filename"})
		case errors.Is(err, pdfops.ErrInvalidPage):
			writeJSON(w, http.StatusBadRequest, deleteResult{Error: "Invalid page number"})
		case errors.Is(err, pdfops.ErrLastPage):
			writeJSON(w, http.StatusBadRequest, deleteResult{Error: "Cannot delete the only page"})
		case err != nil:
			svc.logger.Error("delete page failed", "file", req.Filename, "page", req.PageNumber, "error", err)
			writeJSON(w, http.StatusInternalServerError, deleteResult{Error: err.Error()})
		default:
			writeJSON(w, http.StatusOK, deleteResult{Success: true, PageCount: remaining})
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
