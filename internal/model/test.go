package model

import (
	"time"

	"github.com/google/uuid"
)

// TestKind selects the scoring strategy for a test. Resolved once when a
// session starts; new kinds are added here, not in the finalize path.
type TestKind string

const (
	// TestKindPlainCount scores the raw number of correct answers.
	TestKindPlainCount TestKind = "PLAIN_COUNT"
	// TestKindWeightedScale maps option weights onto a 0–20 scale with a
	// qualitative band (symptom-inventory style tests).
	TestKindWeightedScale TestKind = "WEIGHTED_SCALE"
	// TestKindNormReferenced rescales accuracy onto a 100-centered scale with
	// per-category sub-scores (cognitive-ability style tests).
	TestKindNormReferenced TestKind = "NORM_REFERENCED"
)

// Test represents one test definition in the catalog.
type Test struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Kind        TestKind  `json:"kind"`
	// QuestionSeconds is the fixed countdown per question for this test.
	QuestionSeconds int       `json:"question_seconds"`
	QuestionCount   int       `json:"question_count"`
	CreatedAt       time.Time `json:"created_at"`
}

// TestPaper is the Redis-cached taker-facing view of a test: full question
// list with correct options stripped.
type TestPaper struct {
	TestID          uuid.UUID          `json:"test_id"`
	Title           string             `json:"title"`
	Kind            TestKind           `json:"kind"`
	QuestionSeconds int                `json:"question_seconds"`
	Questions       []QuestionForTaker `json:"questions"`
}
