// Package audit keeps the activity trail of file operations.
package audit

import "time"

// ActorType identifies who performed an action.
type ActorType string

const (
	ActorUser   ActorType = "user"
	ActorSystem ActorType = "system"
	ActorCLI    ActorType = "cli"
)

// Action describes what was done.
type Action string

const (
	ActionUpload     Action = "upload"
	ActionSlice      Action = "slice"
	ActionDeletePage Action = "delete_page"
	ActionSave       Action = "save"
	ActionClean      Action = "clean"
)

// Scope is the workspace folder an action touched.
type Scope string

const (
	ScopeUploads Scope = "uploads"
	ScopeOld     Scope = "old"
	ScopeNew     Scope = "new"
	ScopeLibrary Scope = "library"
)

// Entry is a single audit trail record.
type Entry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	ActorType ActorType `json:"actor_type"`
	ActorID   string    `json:"actor_id"`
	Action    Action    `json:"action"`
	Scope     Scope     `json:"scope"`
	Filename  string    `json:"filename,omitempty"`
	Summary   string    `json:"summary,omitempty"`
	Detail    string    `json:"detail,omitempty"`
}
