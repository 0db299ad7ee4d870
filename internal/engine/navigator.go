package engine

import (
	"github.com/Oksidation/iq-testing-app/internal/model"
	"github.com/google/uuid"
)

// Navigator holds the ordered question list and the current position.
// Movement is forward-only; there is no rewind. Not safe for concurrent use —
// the engine serializes access.
type Navigator struct {
	questions []model.Question
	index     int
}

// NewNavigator creates a navigator positioned at the first question.
func NewNavigator(questions []model.Question) *Navigator {
	return &Navigator{questions: questions}
}

// Current returns the active question.
func (n *Navigator) Current() *model.Question {
	return &n.questions[n.index]
}

// Index returns the zero-based position of the current question.
func (n *Navigator) Index() int {
	return n.index
}

// Count returns the total number of questions.
func (n *Navigator) Count() int {
	return len(n.questions)
}

// Questions returns the full ordered question list.
func (n *Navigator) Questions() []model.Question {
	return n.questions
}

// IsLast reports whether the current question is the final one. Callers must
// check this to decide between advancing and finalizing.
func (n *Navigator) IsLast() bool {
	return n.index >= len(n.questions)-1
}

// Advance moves to the next question. On the last question it is a no-op and
// returns false.
func (n *Navigator) Advance() bool {
	if n.IsLast() {
		return false
	}
	n.index++
	return true
}

// Find returns the question with the given id, or nil if it does not belong
// to this session's question set.
func (n *Navigator) Find(id uuid.UUID) *model.Question {
	for i := range n.questions {
		if n.questions[i].ID == id {
			return &n.questions[i]
		}
	}
	return nil
}
