package engine

import (
	"context"
	"time"

	"github.com/Oksidation/iq-testing-app/internal/model"
	"github.com/Oksidation/iq-testing-app/internal/scoring"
	"github.com/google/uuid"
)

// Store is the persistence port the engine drives. Calls go over the network
// and may fail; the engine surfaces those failures but never retries and —
// past setup — never rolls back a local transition because of them.
type Store interface {
	// CreateSession inserts an in_progress session record and returns its id.
	CreateSession(ctx context.Context, userID, testID uuid.UUID) (uuid.UUID, error)

	// ListQuestions returns the ordered question set for a test.
	ListQuestions(ctx context.Context, testID uuid.UUID) ([]model.Question, error)

	// InsertAnswer writes one answer row. selected is nil for questions that
	// timed out unanswered.
	InsertAnswer(ctx context.Context, sessionID, questionID uuid.UUID, selected *string) error

	// CompleteSession marks the session completed with its score fields.
	CompleteSession(ctx context.Context, sessionID uuid.UUID, completedAt time.Time, result scoring.Result) error

	// FailSession marks the session failed with its reason. No score.
	FailSession(ctx context.Context, sessionID uuid.UUID, reason string) error
}
