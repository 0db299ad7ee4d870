package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Oksidation/iq-testing-app/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNoCredits       = errors.New("user has no report credits")
	ErrAlreadyRedeemed = errors.New("advanced report already redeemed for this session")
)

// SessionRepository handles test session data access.
type SessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

// Create inserts a new in_progress session for a user/test pair.
func (r *SessionRepository) Create(ctx context.Context, userID, testID uuid.UUID) (*model.TestSession, error) {
	s := &model.TestSession{
		TestID: testID,
		UserID: userID,
		Status: model.SessionStatusInProgress,
	}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO test_sessions (test_id, user_id, status)
		 VALUES ($1, $2, $3)
		 RETURNING id, started_at`,
		testID, userID, model.SessionStatusInProgress,
	).Scan(&s.ID, &s.StartedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// GetByID retrieves a session by ID.
func (r *SessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.TestSession, error) {
	s := &model.TestSession{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, test_id, user_id, started_at, completed_at, status, score, sub_scores,
		        fail_reason, advanced_report_redeemed, advanced_report_redeemed_at
		 FROM test_sessions WHERE id = $1`, id,
	).Scan(&s.ID, &s.TestID, &s.UserID, &s.StartedAt, &s.CompletedAt, &s.Status, &s.Score,
		&s.SubScores, &s.FailReason, &s.AdvancedReportRedeemed, &s.AdvancedReportRedeemedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// ListByUser retrieves a user's sessions, newest first.
func (r *SessionRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.TestSession, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, test_id, user_id, started_at, completed_at, status, score, sub_scores,
		        fail_reason, advanced_report_redeemed, advanced_report_redeemed_at
		 FROM test_sessions
		 WHERE user_id = $1
		 ORDER BY started_at DESC`, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []model.TestSession
	for rows.Next() {
		var s model.TestSession
		if err := rows.Scan(&s.ID, &s.TestID, &s.UserID, &s.StartedAt, &s.CompletedAt, &s.Status, &s.Score,
			&s.SubScores, &s.FailReason, &s.AdvancedReportRedeemed, &s.AdvancedReportRedeemedAt); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// Complete marks a session completed with its score. Only an in_progress
// session is updated; the WHERE clause makes terminal states sticky even if
// two writers race.
func (r *SessionRepository) Complete(ctx context.Context, id uuid.UUID, completedAt time.Time, score int, subScores map[string]int) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE test_sessions
		 SET status = $1, completed_at = $2, score = $3, sub_scores = $4
		 WHERE id = $5 AND status = $6`,
		model.SessionStatusCompleted, completedAt, score, subScores, id, model.SessionStatusInProgress,
	)
	return err
}

// Fail marks a session failed with the disqualification reason. No score is
// recorded on this path.
func (r *SessionRepository) Fail(ctx context.Context, id uuid.UUID, reason string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE test_sessions
		 SET status = $1, completed_at = CURRENT_TIMESTAMP, fail_reason = $2
		 WHERE id = $3 AND status = $4`,
		model.SessionStatusFailed, reason, id, model.SessionStatusInProgress,
	)
	return err
}

// RedeemAdvancedReport atomically spends one user credit and flags the session
// as redeemed. The credit decrement and the session flag commit together or
// not at all.
func (r *SessionRepository) RedeemAdvancedReport(ctx context.Context, sessionID, userID uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var redeemed bool
	if err := tx.QueryRow(ctx,
		`SELECT advanced_report_redeemed FROM test_sessions WHERE id = $1 FOR UPDATE`, sessionID,
	).Scan(&redeemed); err != nil {
		return err
	}
	if redeemed {
		return ErrAlreadyRedeemed
	}

	tag, err := tx.Exec(ctx,
		`UPDATE users SET credits = credits - 1 WHERE id = $1 AND credits > 0`, userID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNoCredits
	}

	if _, err := tx.Exec(ctx,
		`UPDATE test_sessions
		 SET advanced_report_redeemed = TRUE, advanced_report_redeemed_at = CURRENT_TIMESTAMP
		 WHERE id = $1`, sessionID,
	); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
