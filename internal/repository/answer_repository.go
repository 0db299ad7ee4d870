package repository

import (
	"context"

	"github.com/Oksidation/iq-testing-app/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AnswerRepository handles answer data access. Answers are written once at
// session finalize and never updated.
type AnswerRepository struct {
	pool *pgxpool.Pool
}

// NewAnswerRepository creates a new AnswerRepository.
func NewAnswerRepository(pool *pgxpool.Pool) *AnswerRepository {
	return &AnswerRepository{pool: pool}
}

// Insert writes one answer row. A nil selectedOption records a question that
// timed out unanswered.
func (r *AnswerRepository) Insert(ctx context.Context, sessionID, questionID uuid.UUID, selectedOption *string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO answers (session_id, question_id, selected_option)
		 VALUES ($1, $2, $3)`,
		sessionID, questionID, selectedOption,
	)
	return err
}

// ListBySession retrieves a session's answers joined with their questions,
// in question order.
func (r *AnswerRepository) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]model.AnswerReview, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT a.id, a.session_id, a.question_id, a.selected_option, a.created_at,
		        q.prompt, q.correct_option, q.category
		 FROM answers a
		 JOIN questions q ON q.id = a.question_id
		 WHERE a.session_id = $1
		 ORDER BY q.order_num`, sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []model.AnswerReview
	for rows.Next() {
		var rev model.AnswerReview
		if err := rows.Scan(&rev.ID, &rev.SessionID, &rev.QuestionID, &rev.SelectedOption, &rev.CreatedAt,
			&rev.Prompt, &rev.CorrectOption, &rev.Category); err != nil {
			return nil, err
		}
		rev.Correct = rev.SelectedOption != nil && *rev.SelectedOption == rev.CorrectOption
		reviews = append(reviews, rev)
	}
	return reviews, rows.Err()
}
