// Package auth provides user accounts, cookie sessions and the login,
// register and logout pages.
package auth

import (
	"errors"
	"time"
)

var (
	ErrUserExists         = errors.New("auth: username is already in use")
	ErrInvalidCredentials = errors.New("auth: invalid username and/or password")
	ErrUserNotFound       = errors.New("auth: user not found")
)

// User is a registered account.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// Session is a logged-in browser.
type Session struct {
	ID        string
	UserID    string
	Username  string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// IsExpired reports whether the session is past its expiry at now.
func (s *Session) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// User returns the account the session belongs to.
func (s *Session) User() *User {
	return &User{ID: s.UserID, Username: s.Username}
}

// parseTime accepts both SQLite's datetime() text and RFC 3339.
func parseTime(ts string) time.Time {
	if t, err := time.Parse(time.DateTime, ts); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, ts); err == nil {
		return t
	}
	return time.Time{}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.DateTime)
}
