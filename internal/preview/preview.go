// Package preview serves page previews: single PNGs over HTTP and live
// viewer sessions over a websocket.
package preview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/pdfeditor/internal/editor"
	"github.com/ziadkadry99/pdfeditor/internal/pdfdoc"
	"github.com/ziadkadry99/pdfeditor/internal/pdfops"
	"github.com/ziadkadry99/pdfeditor/internal/raster"
	"github.com/ziadkadry99/pdfeditor/internal/viewer"
	"github.com/ziadkadry99/pdfeditor/internal/workspace"
)

// Handler serves previews of workspace files.
type Handler struct {
	workspace *workspace.Workspace
	editor    *editor.Service
	actor     func(*http.Request) string
	timeout   time.Duration
	logger    *slog.Logger
}

// New creates a preview handler. svc may be nil, which makes websocket
// sessions read-only. actor returns the caller's user id.
func New(ws *workspace.Workspace, svc *editor.Service, actor func(*http.Request) string, renderTimeout time.Duration, logger *slog.Logger) *Handler {
	return &Handler{
		workspace: ws,
		editor:    svc,
		actor:     actor,
		timeout:   renderTimeout,
		logger:    logger.With("component", "preview"),
	}
}

// RegisterRoutes mounts the preview endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/api/preview/{folder}/{filename}/{page}", h.handlePNG)
	r.Get("/ws/viewer", h.handleWebSocket)
}

// RenderPNG paints one page of the PDF at path.
func RenderPNG(ctx context.Context, path string, page int, scale float64) ([]byte, error) {
	doc, err := pdfdoc.Open(path)
	if err != nil {
		return nil, err
	}
	p, err := doc.Page(ctx, page)
	if err != nil {
		return nil, err
	}
	vp := p.Viewport(scale)
	surface := raster.New()
	surface.Resize(vp.PixelSize())
	if err := p.Render(ctx, surface, vp); err != nil {
		return nil, err
	}
	return surface.PNG()
}

func (h *Handler) handlePNG(w http.ResponseWriter, r *http.Request) {
	folder, err := workspace.ParseFolder(chi.URLParam(r, "folder"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	page, err := strconv.Atoi(chi.URLParam(r, "page"))
	if err != nil {
		http.Error(w, "invalid page number", http.StatusBadRequest)
		return
	}
	scale, err := parseScale(r.URL.Query().Get("scale"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	path, err := h.workspace.For(h.actor(r)).Existing(folder, chi.URLParam(r, "filename"))
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, workspace.ErrNotFound) {
			status = http.StatusNotFound
		}
		http.Error(w, err.Error(), status)
		return
	}

	ctx := r.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	png, err := RenderPNG(ctx, path, page, scale)
	if errors.Is(err, pdfops.ErrInvalidPage) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		h.logger.Error("preview failed", "page", page, "error", err)
		http.Error(w, "preview failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.Write(png)
}

func parseScale(s string) (float64, error) {
	if s == "" {
		return 1.0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || !(v > 0 && v <= viewer.MaxZoomScale) {
		return 0, fmt.Errorf("scale must be in (0, %g]", viewer.MaxZoomScale)
	}
	return v, nil
}
