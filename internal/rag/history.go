package rag

import (
	"strings"
	"sync"

	"docqa/internal/models"
)

const defaultSessionID = "default"

// Session holds one conversation's ordered turns. Turn methods do not lock
// on their own: the engine holds the embedded mutex for the whole duration
// of an Ask so a session only ever has a single writer.
type Session struct {
	sync.Mutex
	turns []models.Turn
}

func (s *Session) Append(role, text string) {
	s.turns = append(s.turns, models.Turn{Role: role, Text: text})
}

// Replace swaps in a caller-supplied history wholesale.
func (s *Session) Replace(turns []models.Turn) {
	s.turns = make([]models.Turn, len(turns))
	copy(s.turns, turns)
}

// RecentWindow formats the last n turns as "<role>: <text>" lines for the
// rephrase prompt. Older turns stay stored but are not formatted.
func (s *Session) RecentWindow(n int) string {
	turns := s.turns
	if len(turns) > n {
		turns = turns[len(turns)-n:]
	}
	lines := make([]string, len(turns))
	for i, t := range turns {
		lines[i] = t.Role + ": " + t.Text
	}
	return strings.Join(lines, "\n")
}

// Snapshot copies the current history for handing back to callers.
func (s *Session) Snapshot() []models.Turn {
	out := make([]models.Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

// SessionStore keys conversation state by session id. The empty id maps to
// a process-wide default session.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]*Session)}
}

func (st *SessionStore) Get(id string) *Session {
	if id == "" {
		id = defaultSessionID
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[id]
	if !ok {
		s = &Session{}
		st.sessions[id] = s
	}
	return s
}
