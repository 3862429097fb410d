package assistant

import (
	"sync"
)

// maxSessionTurns bounds the conversation window sent to the model.
// Older turns fall off the front once the cap is reached.
const maxSessionTurns = 10

const (
	roleUser      = "user"
	roleAssistant = "assistant"
)

// Turn is one message in a conversation session
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Session holds the bounded history for one conversation
type Session struct {
	mu    sync.Mutex
	turns []Turn
}

// NewSession creates an empty session
func NewSession() *Session {
	return &Session{}
}

// Append records a completed turn, evicting the oldest when full
func (s *Session) Append(role, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.turns = append(s.turns, Turn{Role: role, Content: content})
	if len(s.turns) > maxSessionTurns {
		s.turns = s.turns[len(s.turns)-maxSessionTurns:]
	}
}

// Snapshot returns a copy of the current history, oldest first
func (s *Session) Snapshot() []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

// Len returns the number of retained turns
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.turns)
}

// Clear discards all history
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = nil
}

// SessionStore tracks sessions by client-provided ID
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewSessionStore creates an empty session store
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]*Session)}
}

// Get returns the session for id, creating it on first use
func (st *SessionStore) Get(id string) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()

	sess, ok := st.sessions[id]
	if !ok {
		sess = NewSession()
		st.sessions[id] = sess
	}
	return sess
}

// Delete discards the session for id
func (st *SessionStore) Delete(id string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, id)
}
