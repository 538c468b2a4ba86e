package repository

import (
	"stratoguide/internal/domain/model"
)

// -----------------------------
// Chat Sessions
// -----------------------------

// SessionStore owns the session collection and the active pointer.
// Mutations on unknown ids are no-ops and report false.
// Reads return copies; callers never share the store's slices.
type SessionStore interface {
	Create() model.ChatSession
	Delete(id string) bool
	SetActive(id string) bool
	Append(id string, msg model.ChatMessage) bool
	Rename(id, title string) bool

	Get(id string) (model.ChatSession, error)
	List() []model.ChatSession
	Active() model.ChatSession
	ActiveID() string
	Len() int
}
