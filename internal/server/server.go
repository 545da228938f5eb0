package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ziadkadry99/pdfeditor/internal/audit"
	"github.com/ziadkadry99/pdfeditor/internal/auth"
	"github.com/ziadkadry99/pdfeditor/internal/config"
	"github.com/ziadkadry99/pdfeditor/internal/db"
	"github.com/ziadkadry99/pdfeditor/internal/editor"
	"github.com/ziadkadry99/pdfeditor/internal/library"
	"github.com/ziadkadry99/pdfeditor/internal/logging"
	"github.com/ziadkadry99/pdfeditor/internal/preview"
	"github.com/ziadkadry99/pdfeditor/internal/storage"
	"github.com/ziadkadry99/pdfeditor/internal/workspace"
)

// Server is the pdfeditor web application.
type Server struct {
	cfg        *config.Config
	db         *db.DB
	logger     *slog.Logger
	workspace  *workspace.Workspace
	users      *auth.Store
	sessions   *auth.SessionManager
	audit      *audit.Store
	library    *library.Library
	editor     *editor.Service
	router     chi.Router
	httpServer *http.Server
}

// New creates a server with all feature packages wired to database and
// the library backend.
func New(cfg *config.Config, database *db.DB, backend storage.Backend, logger *slog.Logger) *Server {
	ws := workspace.New(workspace.Dirs{
		Uploads: cfg.Dir(cfg.UploadDir),
		Old:     cfg.Dir(cfg.OldDir),
		New:     cfg.Dir(cfg.NewDir),
	}, cfg.CleanupPatterns)

	s := &Server{
		cfg:       cfg,
		db:        database,
		logger:    logger,
		workspace: ws,
		users:     auth.NewStore(database),
		sessions:  auth.NewSessionManager(database, cfg.SessionTTL, cfg.CookieSecure),
		audit:     audit.NewStore(database),
	}
	s.library = library.New(library.NewStore(database), backend, ws, s.audit, logger)
	s.editor = editor.New(ws, s.library, s.audit, logger)

	s.router = s.buildRouter()
	return s
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.Middleware(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(noCache)

	// CORS
	corsOpts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if s.cfg.AllowAllOrigins {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	// Health check
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	auth.NewHandler(s.users, s.sessions, s.workspace, s.audit, s.logger).RegisterRoutes(r)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireUser(s.sessions, s.logger))

		r.Get("/", s.handleHome)
		r.Get("/slice", s.handleSlicePage)
		r.Post("/slice", s.handleSlice)
		r.Get("/ocr", s.handleOCRPage)
		r.Post("/ocr", s.handleOCR)
		r.Get("/files/{folder}/{filename}", s.handleFile)

		editor.RegisterRoutes(r, s.editor, auth.UserID)
		library.RegisterRoutes(r, s.library, auth.UserID)
		audit.RegisterRoutes(r, s.audit, auth.UserID)
		preview.New(s.workspace, s.editor, auth.UserID, s.cfg.RenderTimeout, s.logger).RegisterRoutes(r)
	})

	return r
}

// noCache marks every response as uncacheable; edited PDFs keep their URL.
func noCache(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Cache-Control", "no-cache, no-store, must-revalidate")
		h.Set("Expires", "0")
		h.Set("Pragma", "no-cache")
		next.ServeHTTP(w, r)
	})
}

// Router returns the chi router for registering additional routes.
func (s *Server) Router() chi.Router { return s.router }

// Database returns the database connection.
func (s *Server) Database() *db.DB { return s.db }

// Users returns the account store.
func (s *Server) Users() *auth.Store { return s.users }

// Sessions returns the session manager.
func (s *Server) Sessions() *auth.SessionManager { return s.sessions }

// Workspace returns the shared working folders.
func (s *Server) Workspace() *workspace.Workspace { return s.workspace }

// RunMaintenance removes expired sessions and audit entries older than
// retention every interval until ctx is done.
func (s *Server) RunMaintenance(ctx context.Context, interval, retention time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n, err := s.sessions.CleanupExpired(ctx); err != nil {
				s.logger.Warn("session cleanup failed", "error", err)
			} else if n > 0 {
				s.logger.Info("expired sessions removed", "count", n)
			}
			if retention > 0 {
				if n, err := s.audit.DeleteBefore(ctx, time.Now().Add(-retention)); err != nil {
					s.logger.Warn("audit cleanup failed", "error", err)
				} else if n > 0 {
					s.logger.Info("old audit entries removed", "count", n)
				}
			}
		}
	}
}

// Start begins listening on the configured address.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	s.logger.Info("pdfeditor server listening", "addr", s.cfg.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
