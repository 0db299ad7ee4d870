package repository

import (
	"context"

	"github.com/Oksidation/iq-testing-app/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TestRepository handles test catalog data access.
type TestRepository struct {
	pool *pgxpool.Pool
}

// NewTestRepository creates a new TestRepository.
func NewTestRepository(pool *pgxpool.Pool) *TestRepository {
	return &TestRepository{pool: pool}
}

// List retrieves all tests ordered by title, with their question counts.
func (r *TestRepository) List(ctx context.Context) ([]model.Test, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT t.id, t.title, t.description, t.kind, t.question_seconds, t.created_at,
		        (SELECT COUNT(*) FROM questions q WHERE q.test_id = t.id) AS question_count
		 FROM tests t
		 ORDER BY t.title`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tests []model.Test
	for rows.Next() {
		var t model.Test
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.Kind, &t.QuestionSeconds, &t.CreatedAt, &t.QuestionCount); err != nil {
			return nil, err
		}
		tests = append(tests, t)
	}
	return tests, rows.Err()
}

// GetByID retrieves a test by ID.
func (r *TestRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Test, error) {
	t := &model.Test{}
	err := r.pool.QueryRow(ctx,
		`SELECT t.id, t.title, t.description, t.kind, t.question_seconds, t.created_at,
		        (SELECT COUNT(*) FROM questions q WHERE q.test_id = t.id) AS question_count
		 FROM tests t WHERE t.id = $1`, id,
	).Scan(&t.ID, &t.Title, &t.Description, &t.Kind, &t.QuestionSeconds, &t.CreatedAt, &t.QuestionCount)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Create inserts a new test definition. Used by seed tooling.
func (r *TestRepository) Create(ctx context.Context, t *model.Test) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO tests (title, description, kind, question_seconds)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		t.Title, t.Description, t.Kind, t.QuestionSeconds,
	).Scan(&t.ID, &t.CreatedAt)
}
