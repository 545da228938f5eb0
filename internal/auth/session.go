package auth

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ziadkadry99/pdfeditor/internal/db"
)

// SessionCookieName is the name of the session cookie.
const SessionCookieName = "pdfeditor_session"

// SessionManager handles session creation, validation, and cleanup.
type SessionManager struct {
	db     *db.DB
	ttl    time.Duration
	secure bool
	now    func() time.Time
}

// NewSessionManager creates a session manager whose sessions live for ttl.
func NewSessionManager(database *db.DB, ttl time.Duration, secure bool) *SessionManager {
	return &SessionManager{db: database, ttl: ttl, secure: secure, now: time.Now}
}

// Create starts a session for user.
func (sm *SessionManager) Create(ctx context.Context, user *User) (*Session, error) {
	id, err := generateSessionID()
	if err != nil {
		return nil, fmt.Errorf("generate session id: %w", err)
	}

	now := sm.now().UTC().Truncate(time.Second)
	sess := &Session{
		ID:        id,
		UserID:    user.ID,
		Username:  user.Username,
		CreatedAt: now,
		ExpiresAt: now.Add(sm.ttl),
	}

	_, err = sm.db.ExecContext(ctx, `
		INSERT INTO sessions (id, user_id, username, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?)`,
		sess.ID, sess.UserID, sess.Username, formatTime(sess.CreatedAt), formatTime(sess.ExpiresAt))
	if err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	return sess, nil
}

// Get retrieves a session by ID. It returns nil if the session doesn't
// exist or has expired; expired sessions are removed.
func (sm *SessionManager) Get(ctx context.Context, id string) (*Session, error) {
	var (
		sess             Session
		created, expires string
	)
	err := sm.db.QueryRowContext(ctx,
		`SELECT id, user_id, username, created_at, expires_at FROM sessions WHERE id = ?`, id,
	).Scan(&sess.ID, &sess.UserID, &sess.Username, &created, &expires)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	sess.CreatedAt = parseTime(created)
	sess.ExpiresAt = parseTime(expires)

	if sess.IsExpired(sm.now()) {
		_ = sm.Delete(ctx, id)
		return nil, nil
	}
	return &sess, nil
}

// Delete removes a session.
func (sm *SessionManager) Delete(ctx context.Context, id string) error {
	if _, err := sm.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// CleanupExpired removes all expired sessions.
func (sm *SessionManager) CleanupExpired(ctx context.Context) (int64, error) {
	res, err := sm.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE expires_at <= ?`, formatTime(sm.now()))
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return res.RowsAffected()
}

// FromRequest extracts the session from the request cookie.
func (sm *SessionManager) FromRequest(r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return nil, nil
	}
	return sm.Get(r.Context(), cookie.Value)
}

// SetCookie sets the session cookie on the response.
func (sm *SessionManager) SetCookie(w http.ResponseWriter, sess *Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    sess.ID,
		Path:     "/",
		HttpOnly: true,
		Secure:   sm.secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  sess.ExpiresAt,
	})
}

// ClearCookie removes the session cookie.
func (sm *SessionManager) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   sm.secure,
		MaxAge:   -1,
	})
}

// generateSessionID generates a cryptographically secure random session ID.
func generateSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return "sess_" + hex.EncodeToString(b), nil
}
