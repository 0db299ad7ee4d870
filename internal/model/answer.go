package model

import (
	"time"

	"github.com/google/uuid"
)

// Answer is one user response to one question within a session. Written once
// at finalize, never updated. SelectedOption is nil when the question timed
// out unanswered.
type Answer struct {
	ID             uuid.UUID `json:"id"`
	SessionID      uuid.UUID `json:"session_id"`
	QuestionID     uuid.UUID `json:"question_id"`
	SelectedOption *string   `json:"selected_option"`
	CreatedAt      time.Time `json:"created_at"`
}

// AnswerReview is an answer joined with its question for result rendering.
type AnswerReview struct {
	Answer
	Prompt        string `json:"prompt"`
	CorrectOption string `json:"correct_option"`
	Category      string `json:"category,omitempty"`
	Correct       bool   `json:"correct"`
}
