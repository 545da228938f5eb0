package preview

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ziadkadry99/pdfeditor/internal/pdfdoc"
	"github.com/ziadkadry99/pdfeditor/internal/raster"
	"github.com/ziadkadry99/pdfeditor/internal/viewer"
	"github.com/ziadkadry99/pdfeditor/internal/workspace"
)

const (
	writeWait   = 10 * time.Second
	closeWait   = 5 * time.Second
	frameBuffer = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 64 * 1024,
}

// intent is the incoming WebSocket message format.
type intent struct {
	Type string `json:"type"` // next, prev, goto, zoom_in, zoom_out, delete, save, reload
	Page int    `json:"page,omitempty"`
}

// frame is the outgoing WebSocket message format.
type frame struct {
	Type string `json:"type"` // frame, state, saved or error
	*viewer.Snapshot
	RenderedPage  int     `json:"rendered_page,omitempty"`
	RenderedScale float64 `json:"rendered_scale,omitempty"`
	Width         int     `json:"width,omitempty"`
	Height        int     `json:"height,omitempty"`
	PNG           string  `json:"png,omitempty"`
	Kind          string  `json:"kind,omitempty"`
	Message       string  `json:"message,omitempty"`
}

// session is one live viewer bound to a websocket connection. Only
// writeLoop writes to conn.
type session struct {
	h       *Handler
	conn    *websocket.Conn
	surface *raster.Surface
	viewer  *viewer.Viewer
	out     chan frame
	done    chan struct{}
}

func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filename := q.Get("filename")
	if filename == "" {
		http.Error(w, "filename is required", http.StatusBadRequest)
		return
	}
	folder, err := workspace.ParseFolder(q.Get("folder"))
	if err != nil {
		folder = workspace.FolderFor(q.Get("folder"))
	}
	userID := h.actor(r)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade", "error", err)
		return
	}

	s := &session{
		h:       h,
		conn:    conn,
		surface: raster.New(),
		out:     make(chan frame, frameBuffer),
		done:    make(chan struct{}),
	}

	sched := viewer.NewScheduler(s.surface, viewer.NotifierFunc(s.notify),
		viewer.WithRenderTimeout(h.timeout),
		viewer.WithLogger(h.logger),
	)
	loader := pdfdoc.Loader{Resolve: h.workspace.For(userID).Resolve}
	var ed viewer.Editor
	if h.editor != nil {
		ed = h.editor.For(userID, folder, filename)
	}
	s.viewer = viewer.NewViewer(sched, loader, ed, viewer.NotifierFunc(s.notify))

	go s.writeLoop()
	defer s.close()

	ctx := r.Context()
	// A failed load is reported as an error frame; the client may reload.
	_ = s.viewer.Load(ctx, workspace.URL(folder, filename))
	s.readLoop(ctx)
}

func (s *session) readLoop(ctx context.Context) {
	for {
		_, msg, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.h.logger.Warn("websocket read", "error", err)
			}
			return
		}

		var in intent
		if err := json.Unmarshal(msg, &in); err != nil {
			s.send(frame{Type: "error", Kind: "bad_request", Message: "invalid message format"})
			continue
		}
		s.dispatch(ctx, in)
	}
}

// dispatch applies one intent. Rejected navigation answers with the
// unchanged state; failures arrive through notify.
func (s *session) dispatch(ctx context.Context, in intent) {
	v := s.viewer
	ok := true
	switch in.Type {
	case "next":
		ok = v.Next()
	case "prev":
		ok = v.Prev()
	case "goto":
		ok = v.GoTo(in.Page)
	case "zoom_in":
		ok = v.ZoomIn()
	case "zoom_out":
		ok = v.ZoomOut()
	case "delete":
		_ = v.DeleteCurrentPage(ctx)
	case "reload":
		_ = v.Reload(ctx)
	case "save":
		if err := v.Save(ctx); err == nil {
			snap := v.Snapshot()
			s.send(frame{Type: "saved", Snapshot: &snap})
		}
	default:
		s.send(frame{Type: "error", Kind: "bad_request", Message: "unknown message type: " + in.Type})
		return
	}
	if !ok {
		snap := v.Snapshot()
		s.send(frame{Type: "state", Snapshot: &snap})
	}
}

// notify runs on the scheduler's render goroutine, before the next render
// may start, so the surface is stable while it is encoded.
func (s *session) notify(ev viewer.Event) {
	switch ev.Type {
	case viewer.EventRendered:
		png, err := s.surface.PNG()
		if err != nil {
			s.send(errorFrame(&viewer.Error{Kind: viewer.RenderFailure, Page: ev.Page, Err: err}))
			return
		}
		snap := s.viewer.Snapshot()
		w, h := ev.Viewport.PixelSize()
		s.send(frame{
			Type:          "frame",
			Snapshot:      &snap,
			RenderedPage:  ev.Page,
			RenderedScale: ev.Viewport.Scale,
			Width:         w,
			Height:        h,
			PNG:           base64.StdEncoding.EncodeToString(png),
		})
	case viewer.EventFailed:
		s.send(errorFrame(ev.Err))
	}
}

func errorFrame(err error) frame {
	f := frame{Type: "error", Kind: string(viewer.KindOf(err)), Message: err.Error()}
	var ve *viewer.Error
	if errors.As(err, &ve) && ve.Err != nil {
		f.Message = ve.Err.Error()
	}
	return f
}

func (s *session) send(f frame) {
	select {
	case s.out <- f:
	case <-s.done:
	}
}

func (s *session) writeLoop() {
	for {
		select {
		case f := <-s.out:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteJSON(f); err != nil {
				s.h.logger.Warn("websocket write", "error", err)
				return
			}
		case <-s.done:
			return
		}
	}
}

// close stops the writer, lets an in-flight render drain and closes the
// connection.
func (s *session) close() {
	close(s.done)
	ctx, cancel := context.WithTimeout(context.Background(), closeWait)
	defer cancel()
	if err := s.viewer.Scheduler().WaitIdle(ctx); err != nil {
		s.h.logger.Warn("render still in flight at close", "error", err)
	}
	s.conn.Close()
}
