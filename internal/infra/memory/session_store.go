// File: internal/infra/memory/session_store.go
package memory

import (
	"fmt"
	"sync"

	"github.com/oklog/ulid/v2"

	"stratoguide/internal/domain"
	"stratoguide/internal/domain/model"
	"stratoguide/internal/domain/ports/repository"
)

// Compile-time check
var _ repository.SessionStore = (*SessionStore)(nil)

// SessionStore keeps the chat sessions of one client process in memory.
// The collection is never empty and the active id always names a member.
type SessionStore struct {
	mu       sync.RWMutex
	sessions []*model.ChatSession // display order, oldest first
	activeID string
	greeting string
	newID    func() string
}

// NewSessionStore seeds the store with one session titled seedTitle.
func NewSessionStore(seedTitle, greeting string) *SessionStore {
	st := &SessionStore{
		greeting: greeting,
		newID:    func() string { return ulid.Make().String() },
	}
	seed := model.NewChatSession(st.newID(), seedTitle, greeting)
	st.sessions = []*model.ChatSession{seed}
	st.activeID = seed.ID
	return st
}

// Create appends a fresh session titled "Chat N" and makes it active.
func (st *SessionStore) Create() model.ChatSession {
	st.mu.Lock()
	defer st.mu.Unlock()

	title := fmt.Sprintf("Chat %d", len(st.sessions)+1)
	s := model.NewChatSession(st.newID(), title, st.greeting)
	st.sessions = append(st.sessions, s)
	st.activeID = s.ID
	return s.Clone()
}

// Delete removes id unless it is the last session. Deleting the active
// session promotes the first remaining one.
func (st *SessionStore) Delete(id string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()

	if len(st.sessions) <= 1 {
		return false
	}
	idx := st.indexOf(id)
	if idx < 0 {
		return false
	}
	st.sessions = append(st.sessions[:idx], st.sessions[idx+1:]...)
	if st.activeID == id {
		st.activeID = st.sessions[0].ID
	}
	return true
}

func (st *SessionStore) SetActive(id string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()

	if st.indexOf(id) < 0 {
		return false
	}
	st.activeID = id
	return true
}

func (st *SessionStore) Append(id string, msg model.ChatMessage) bool {
	st.mu.Lock()
	defer st.mu.Unlock()

	idx := st.indexOf(id)
	if idx < 0 {
		return false
	}
	st.sessions[idx].Append(msg)
	return true
}

// Rename overwrites the title and marks the session as titled.
func (st *SessionStore) Rename(id, title string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()

	idx := st.indexOf(id)
	if idx < 0 {
		return false
	}
	st.sessions[idx].Title = title
	st.sessions[idx].Titled = true
	return true
}

func (st *SessionStore) Get(id string) (model.ChatSession, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()

	idx := st.indexOf(id)
	if idx < 0 {
		return model.ChatSession{}, domain.ErrNotFound
	}
	return st.sessions[idx].Clone(), nil
}

func (st *SessionStore) List() []model.ChatSession {
	st.mu.RLock()
	defer st.mu.RUnlock()

	out := make([]model.ChatSession, 0, len(st.sessions))
	for _, s := range st.sessions {
		out = append(out, s.Clone())
	}
	return out
}

func (st *SessionStore) Active() model.ChatSession {
	st.mu.RLock()
	defer st.mu.RUnlock()

	return st.sessions[st.indexOf(st.activeID)].Clone()
}

func (st *SessionStore) ActiveID() string {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.activeID
}

func (st *SessionStore) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// indexOf must be called with mu held.
func (st *SessionStore) indexOf(id string) int {
	for i, s := range st.sessions {
		if s.ID == id {
			return i
		}
	}
	return -1
}
