package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/ziadkadry99/pdfeditor/internal/db"
	"github.com/ziadkadry99/pdfeditor/internal/workspace"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func setup(t *testing.T) (*Store, *SessionManager) {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	users := NewStore(database)
	users.cost = bcrypt.MinCost
	return users, NewSessionManager(database, time.Hour, false)
}

func TestRegisterAndAuthenticate(t *testing.T) {
	users, _ := setup(t)
	ctx := context.Background()

	u, err := users.Register(ctx, " alice ", "s3cret")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if u.ID == "" || u.Username != "alice" {
		t.Errorf("registered user = %+v", u)
	}

	got, err := users.Authenticate(ctx, "alice", "s3cret")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if got.ID != u.ID {
		t.Errorf("authenticated id = %q, want %q", got.ID, u.ID)
	}

	if _, err := users.Authenticate(ctx, "alice", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password: err = %v", err)
	}
	if _, err := users.Authenticate(ctx, "bob", "s3cret"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown user: err = %v", err)
	}
	if _, err := users.Register(ctx, "alice", "other"); !errors.Is(err, ErrUserExists) {
		t.Errorf("duplicate register: err = %v", err)
	}
}

func TestSessionLifecycle(t *testing.T) {
	users, sm := setup(t)
	ctx := context.Background()
	u, err := users.Register(ctx, "alice", "pw")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	sess, err := sm.Create(ctx, u)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !strings.HasPrefix(sess.ID, "sess_") || len(sess.ID) != len("sess_")+64 {
		t.Errorf("session id = %q", sess.ID)
	}

	got, err := sm.Get(ctx, sess.ID)
	if err != nil || got == nil {
		t.Fatalf("Get: %v, %v", got, err)
	}
	if got.UserID != u.ID || got.Username != "alice" {
		t.Errorf("session = %+v", got)
	}

	sm.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	got, err = sm.Get(ctx, sess.ID)
	if err != nil || got != nil {
		t.Fatalf("expired Get = %v, %v; want nil", got, err)
	}

	sm.now = time.Now
	if got, _ := sm.Get(ctx, sess.ID); got != nil {
		t.Error("expired session was not removed")
	}
}

func TestCleanupExpired(t *testing.T) {
	users, sm := setup(t)
	ctx := context.Background()
	u, _ := users.Register(ctx, "alice", "pw")

	for i := 0; i < 2; i++ {
		if _, err := sm.Create(ctx, u); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
	sm.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	if _, err := sm.Create(ctx, u); err != nil {
		t.Fatalf("Create: %v", err)
	}

	sm.now = time.Now
	n, err := sm.CleanupExpired(ctx)
	if err != nil {
		t.Fatalf("CleanupExpired: %v", err)
	}
	if n != 1 {
		t.Errorf("removed %d sessions, want 1", n)
	}
}

func TestRequireUser(t *testing.T) {
	users, sm := setup(t)
	ctx := context.Background()
	u, _ := users.Register(ctx, "alice", "pw")
	sess, _ := sm.Create(ctx, u)

	r := chi.NewRouter()
	r.Use(RequireUser(sm, quiet))
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, UserFromContext(r.Context()).Username)
	})
	r.Get("/api/thing", func(w http.ResponseWriter, r *http.Request) {})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))
	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/login" {
		t.Errorf("browser without session: %d %q", w.Code, w.Header().Get("Location"))
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/api/thing", nil))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("api without session: %d, want 401", w.Code)
	}

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: sess.ID})
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK || w.Body.String() != "alice" {
		t.Errorf("with session: %d %q", w.Code, w.Body.String())
	}
}

func newRouter(t *testing.T) (chi.Router, *Store, *workspace.Workspace) {
	t.Helper()
	users, sm := setup(t)
	root := t.TempDir()
	ws := workspace.New(workspace.Dirs{
		Uploads: filepath.Join(root, "uploads"),
		Old:     filepath.Join(root, "old"),
		New:     filepath.Join(root, "new"),
	}, nil)

	r := chi.NewRouter()
	NewHandler(users, sm, ws, nil, quiet).RegisterRoutes(r)
	return r, users, ws
}

func postForm(r http.Handler, path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func sessionCookie(w *httptest.ResponseRecorder) *http.Cookie {
	var found *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == SessionCookieName && c.Value != "" {
			found = c
		}
	}
	return found
}

func TestRegisterValidation(t *testing.T) {
	r, _, _ := newRouter(t)

	tests := []struct {
		name string
		form url.Values
		want string
		code int
	}{
		{"missing username", url.Values{"password": {"a"}, "confirmation": {"a"}}, "Must provide username", http.StatusBadRequest},
		{"missing password", url.Values{"username": {"u"}, "confirmation": {"a"}}, "Must provide password", http.StatusBadRequest},
		{"missing confirmation", url.Values{"username": {"u"}, "password": {"a"}}, "Must provide confirmation", http.StatusBadRequest},
		{"mismatch", url.Values{"username": {"u"}, "password": {"a"}, "confirmation": {"b"}}, "match", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postForm(r, "/register", tt.form)
			if w.Code != tt.code {
				t.Errorf("status = %d, want %d", w.Code, tt.code)
			}
			if !strings.Contains(w.Body.String(), tt.want) {
				t.Errorf("body missing %q", tt.want)
			}
		})
	}
}

func TestRegisterLoginLogout(t *testing.T) {
	r, users, ws := newRouter(t)
	form := url.Values{"username": {"alice"}, "password": {"pw"}, "confirmation": {"pw"}}

	w := postForm(r, "/register", form)
	if w.Code != http.StatusSeeOther {
		t.Fatalf("register status = %d", w.Code)
	}
	if sessionCookie(w) == nil {
		t.Fatal("register set no session cookie")
	}

	w = postForm(r, "/register", form)
	if w.Code != http.StatusConflict || !strings.Contains(w.Body.String(), "already in use") {
		t.Errorf("duplicate register: %d", w.Code)
	}

	w = postForm(r, "/login", url.Values{"username": {"alice"}, "password": {"nope"}})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("bad login status = %d", w.Code)
	}

	// A leftover processed file is removed when the user logs in.
	u, err := users.Authenticate(context.Background(), "alice", "pw")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	own := ws.For(u.ID)
	leftover, err := own.Save(workspace.FolderNew, "processed_x.pdf", strings.NewReader("%PDF"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	w = postForm(r, "/login", url.Values{"username": {"alice"}, "password": {"pw"}})
	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/" {
		t.Fatalf("login: %d %q", w.Code, w.Header().Get("Location"))
	}
	if _, err := os.Stat(leftover); !os.IsNotExist(err) {
		t.Error("working file survived login")
	}
	cookie := sessionCookie(w)
	if cookie == nil {
		t.Fatal("login set no session cookie")
	}

	req := httptest.NewRequest("GET", "/logout", nil)
	req.AddCookie(cookie)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusSeeOther {
		t.Errorf("logout status = %d", w.Code)
	}
	cleared := false
	for _, c := range w.Result().Cookies() {
		if c.Name == SessionCookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("logout did not clear the cookie")
	}
}
