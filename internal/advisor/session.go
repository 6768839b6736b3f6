package advisor

import (
	"time"

	"github.com/google/uuid"
)

// Turn is one question and its answer.
type Turn struct {
	Question string          `json:"question"`
	Answer   string          `json:"answer"`
	Prompt   string          `json:"prompt,omitempty"`
	Sources  []SourceSummary `json:"sources,omitempty"`
	NoMatch  bool            `json:"no_match,omitempty"`
	At       time.Time       `json:"at"`
}

// Session is a caller-owned conversation. It is not safe for concurrent use.
type Session struct {
	ID    uuid.UUID `json:"id"`
	Turns []Turn    `json:"turns"`

	now func() time.Time
}

// NewSession starts an empty conversation with a random id.
func NewSession() *Session {
	return &Session{ID: uuid.New(), now: time.Now}
}

func (s *Session) record(t Turn) {
	if s.now == nil {
		s.now = time.Now
	}
	t.At = s.now().UTC()
	s.Turns = append(s.Turns, t)
}

// Last returns the most recent turn.
func (s *Session) Last() (Turn, bool) {
	if len(s.Turns) == 0 {
		return Turn{}, false
	}
	return s.Turns[len(s.Turns)-1], true
}
