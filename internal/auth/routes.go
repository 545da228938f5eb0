package auth

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/pdfeditor/internal/audit"
	"github.com/ziadkadry99/pdfeditor/internal/workspace"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// Handler serves the login, register and logout pages.
type Handler struct {
	users     *Store
	sessions  *SessionManager
	workspace *workspace.Workspace
	audit     *audit.Store
	logger    *slog.Logger
}

// NewHandler creates the account pages. ws is the shared workspace whose
// per-user old and new folders are emptied whenever a session starts or
// ends. auditStore may be nil.
func NewHandler(users *Store, sessions *SessionManager, ws *workspace.Workspace, auditStore *audit.Store, logger *slog.Logger) *Handler {
	return &Handler{
		users:     users,
		sessions:  sessions,
		workspace: ws,
		audit:     auditStore,
		logger:    logger.With("component", "auth"),
	}
}

// RegisterRoutes mounts the account pages on r. They must sit outside
// RequireUser.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/login", h.handleLoginPage)
	r.Post("/login", h.handleLogin)
	r.Get("/register", h.handleRegisterPage)
	r.Post("/register", h.handleRegister)
	r.Get("/logout", h.handleLogout)
}

type pageData struct {
	Error    string
	Username string
}

func (h *Handler) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	h.endSession(w, r)
	h.render(w, http.StatusOK, "login.html", pageData{})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	h.endSession(w, r)

	username := r.PostFormValue("username")
	password := r.PostFormValue("password")
	if msg := validateLogin(username, password); msg != "" {
		h.render(w, http.StatusBadRequest, "login.html", pageData{Error: msg, Username: username})
		return
	}

	user, err := h.users.Authenticate(r.Context(), username, password)
	if errors.Is(err, ErrInvalidCredentials) {
		h.render(w, http.StatusUnauthorized, "login.html", pageData{Error: "Invalid username and/or password", Username: username})
		return
	}
	if err != nil {
		h.logger.Error("login failed", "error", err)
		h.render(w, http.StatusInternalServerError, "login.html", pageData{Error: "Login failed, please try again"})
		return
	}

	h.startSession(w, r, user)
}

func (h *Handler) handleRegisterPage(w http.ResponseWriter, r *http.Request) {
	h.endSession(w, r)
	h.render(w, http.StatusOK, "register.html", pageData{})
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	h.endSession(w, r)

	username := r.PostFormValue("username")
	password := r.PostFormValue("password")
	confirmation := r.PostFormValue("confirmation")
	if msg := validateRegister(username, password, confirmation); msg != "" {
		h.render(w, http.StatusBadRequest, "register.html", pageData{Error: msg, Username: username})
		return
	}

	user, err := h.users.Register(r.Context(), username, password)
	if errors.Is(err, ErrUserExists) {
		h.render(w, http.StatusConflict, "register.html", pageData{Error: "User name is already in use", Username: username})
		return
	}
	if err != nil {
		h.logger.Error("register failed", "error", err)
		h.render(w, http.StatusInternalServerError, "register.html", pageData{Error: "Registration failed, please try again"})
		return
	}

	h.logger.Info("user registered", "user", user.Username)
	h.startSession(w, r, user)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	h.endSession(w, r)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) startSession(w http.ResponseWriter, r *http.Request, user *User) {
	h.clean(r, user.ID)

	sess, err := h.sessions.Create(r.Context(), user)
	if err != nil {
		h.logger.Error("creating session", "user", user.Username, "error", err)
		http.Error(w, "could not start session", http.StatusInternalServerError)
		return
	}
	h.sessions.SetCookie(w, sess)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// endSession forgets the caller's session, if any, and empties their
// working folders.
func (h *Handler) endSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessions.FromRequest(r)
	if err != nil {
		h.logger.Warn("session lookup failed", "error", err)
	}
	if sess == nil {
		return
	}
	if err := h.sessions.Delete(r.Context(), sess.ID); err != nil {
		h.logger.Warn("deleting session", "error", err)
	}
	h.sessions.ClearCookie(w)
	h.clean(r, sess.UserID)
}

func (h *Handler) clean(r *http.Request, userID string) {
	if h.workspace == nil {
		return
	}
	n, err := h.workspace.For(userID).Clean()
	if err != nil {
		h.logger.Warn("cleaning workspace", "user_id", userID, "error", err)
		return
	}
	if n > 0 {
		h.audit.Record(r.Context(), h.logger, audit.Entry{
			ActorType: audit.ActorSystem,
			ActorID:   userID,
			Action:    audit.ActionClean,
			Scope:     audit.ScopeNew,
			Summary:   fmt.Sprintf("removed %d working files", n),
		})
	}
}

func (h *Handler) render(w http.ResponseWriter, status int, name string, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pages.ExecuteTemplate(w, name, data); err != nil {
		h.logger.Error("rendering page", "page", name, "error", err)
	}
}

func validateLogin(username, password string) string {
	if username == "" {
		return "Must provide username"
	}
	if password == "" {
		return "Must provide password"
	}
	return ""
}

func validateRegister(username, password, confirmation string) string {
	if msg := validateLogin(username, password); msg != "" {
		return msg
	}
	if confirmation == "" {
		return "Must provide confirmation"
	}
	if password != confirmation {
		return "Passwords don't match"
	}
	return ""
}
