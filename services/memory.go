package services

import (
	"sync"

	"policy-chatbot/models"
)

// DefaultSession is the conversation used for requests that carry no
// session id. All such callers share one history, matching the original
// single-conversation behavior.
const DefaultSession = "default"

type session struct {
	mu    sync.Mutex
	turns []models.ConversationTurn
}

// ConversationMemory keeps an ordered, append-only turn log per
// session. Each session has its own lock, so concurrent requests on the
// same conversation never drop turns; requests on different sessions do
// not contend.
type ConversationMemory struct {
	mu       sync.Mutex
	sessions map[string]*session
}

func NewConversationMemory() *ConversationMemory {
	return &ConversationMemory{
		sessions: make(map[string]*session),
	}
}

func (m *ConversationMemory) session(id string) *session {
	if id == "" {
		id = DefaultSession
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		s = &session{}
		m.sessions[id] = s
	}
	return s
}

// Append records a completed question/answer turn.
func (m *ConversationMemory) Append(sessionID, question, answer string) {
	s := m.session(sessionID)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = append(s.turns, models.ConversationTurn{Question: question, Answer: answer})
}

// History returns a copy of the session's turns, oldest first.
func (m *ConversationMemory) History(sessionID string) []models.ConversationTurn {
	s := m.session(sessionID)
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.ConversationTurn, len(s.turns))
	copy(out, s.turns)
	return out
}

// TurnCount reports how many turns the session holds.
func (m *ConversationMemory) TurnCount(sessionID string) int {
	s := m.session(sessionID)
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.turns)
}
