package model

import (
	"time"

	"github.com/google/uuid"
)

// SessionStatus enumerates test session states. Transitions are monotonic:
// in_progress may move to completed or failed, never back.
type SessionStatus string

const (
	SessionStatusInProgress SessionStatus = "in_progress"
	SessionStatusCompleted  SessionStatus = "completed"
	SessionStatusFailed     SessionStatus = "failed"
)

// Terminal reports whether the status is an end state.
func (s SessionStatus) Terminal() bool {
	return s == SessionStatusCompleted || s == SessionStatusFailed
}

// TestSession represents one timed attempt at one test by one user.
// CompletedAt is set exactly once, at finalize; Score is non-nil only when
// the status is completed.
type TestSession struct {
	ID          uuid.UUID     `json:"id"`
	TestID      uuid.UUID     `json:"test_id"`
	UserID      uuid.UUID     `json:"user_id"`
	StartedAt   time.Time     `json:"started_at"`
	CompletedAt *time.Time    `json:"completed_at,omitempty"`
	Status      SessionStatus `json:"status"`
	Score       *int          `json:"score,omitempty"`
	// SubScores holds per-category scores for norm-referenced tests.
	// Categories without questions are omitted.
	SubScores map[string]int `json:"sub_scores,omitempty"`
	// FailReason records why a session was disqualified.
	FailReason string `json:"fail_reason,omitempty"`

	AdvancedReportRedeemed   bool       `json:"advanced_report_redeemed"`
	AdvancedReportRedeemedAt *time.Time `json:"advanced_report_redeemed_at,omitempty"`
}
