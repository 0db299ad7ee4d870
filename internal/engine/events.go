package engine

import (
	"github.com/Oksidation/iq-testing-app/internal/model"
	"github.com/Oksidation/iq-testing-app/internal/scoring"
	"github.com/google/uuid"
)

// EventType enumerates engine-emitted events consumed by the transport layer.
type EventType string

const (
	// EventState reports the current question, progress and seconds left.
	EventState EventType = "state"
	// EventGraded carries the scoring result after a completed finalize.
	EventGraded EventType = "graded"
	// EventDisqualified carries the attention-loss reason after a failed
	// transition.
	EventDisqualified EventType = "disqualified"
)

// State is the externally observable snapshot of a running session.
type State struct {
	SessionID     uuid.UUID               `json:"session_id"`
	Status        model.SessionStatus     `json:"status"`
	QuestionIndex int                     `json:"question_index"`
	QuestionCount int                     `json:"question_count"`
	SecondsLeft   int                     `json:"seconds_left"`
	Question      *model.QuestionForTaker `json:"question,omitempty"`
}

// Event is one engine notification. PersistError carries a downstream write
// failure surfaced at a terminal transition; the local state is already
// terminal when it is set.
type Event struct {
	Type         EventType       `json:"type"`
	State        State           `json:"state"`
	Result       *scoring.Result `json:"result,omitempty"`
	Reason       string          `json:"reason,omitempty"`
	PersistError string          `json:"persist_error,omitempty"`
}
