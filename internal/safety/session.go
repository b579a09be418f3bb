package safety

import (
	"strings"
	"sync"
)

// Session remembers which commands the user has already confirmed, so a
// repeated command skips the prompt. The reported risk level is never
// affected, only the confirmation requirement.
type Session struct {
	mu        sync.Mutex
	confirmed map[string]bool
}

// NewSession builds an empty confirmation memory.
func NewSession() *Session {
	return &Session{confirmed: make(map[string]bool)}
}

// MarkConfirmed records a user confirmation for the command.
func (s *Session) MarkConfirmed(command string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.confirmed[normalize(command)] = true
}

// WasConfirmed reports whether the command was confirmed this session.
func (s *Session) WasConfirmed(command string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.confirmed[normalize(command)]
}

func normalize(command string) string {
	return strings.Join(strings.Fields(command), " ")
}
