package websocket

import (
	"github.com/Oksidation/iq-testing-app/internal/engine"
	"github.com/Oksidation/iq-testing-app/internal/scoring"
)

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionSelect Action = "select"
	ActionNext   Action = "next"
	ActionSubmit Action = "submit"
	ActionHidden Action = "hidden"
	ActionBlur   Action = "blur"
	ActionPing   Action = "ping"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// SelectRequest is sent by the client to choose an option for a question.
type SelectRequest struct {
	Action     Action `json:"action"`
	QuestionID string `json:"question_id"`
	Option     string `json:"option"`
}

// NextRequest is sent by the client to move to the next question.
type NextRequest struct {
	Action Action `json:"action"`
}

// SubmitRequest is sent by the client to finish and grade the attempt.
type SubmitRequest struct {
	Action Action `json:"action"`
}

// AttentionRequest covers both attention-loss actions ("hidden" when the tab
// loses visibility, "blur" when the window loses focus).
type AttentionRequest struct {
	Action Action `json:"action"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError        Event = "error"
	EventState        Event = "state"
	EventSaved        Event = "saved"
	EventGraded       Event = "graded"
	EventDisqualified Event = "disqualified"
	EventPong         Event = "pong"
)

// StateResponse carries the session snapshot: current question, progress and
// seconds left on the countdown.
type StateResponse struct {
	Event Event        `json:"event"`
	State engine.State `json:"state"`
}

// SavedResponse acknowledges a recorded selection.
type SavedResponse struct {
	Event  Event  `json:"event"`
	Status string `json:"status"`
}

// GradedResponse delivers the scored result after a completed attempt.
type GradedResponse struct {
	Event  Event          `json:"event"`
	State  engine.State   `json:"state"`
	Result scoring.Result `json:"result"`
}

// DisqualifiedResponse delivers the attention-loss reason after a failed
// attempt.
type DisqualifiedResponse struct {
	Event  Event        `json:"event"`
	State  engine.State `json:"state"`
	Reason string       `json:"reason"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
