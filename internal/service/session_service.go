package service

import (
	"context"
	"errors"
	"time"

	"github.com/Oksidation/iq-testing-app/internal/model"
	"github.com/Oksidation/iq-testing-app/internal/repository"
	"github.com/Oksidation/iq-testing-app/internal/scoring"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Session access errors.
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrNotSessionOwner = errors.New("session belongs to another user")
)

// SessionService is the persistence boundary for test attempts. It backs the
// attempt engine's store port and serves session reads for the HTTP API.
type SessionService struct {
	sessions  *repository.SessionRepository
	answers   *repository.AnswerRepository
	questions *repository.QuestionRepository
}

// NewSessionService creates a new SessionService.
func NewSessionService(sessions *repository.SessionRepository, answers *repository.AnswerRepository, questions *repository.QuestionRepository) *SessionService {
	return &SessionService{sessions: sessions, answers: answers, questions: questions}
}

// CreateSession opens a new in_progress session record.
func (s *SessionService) CreateSession(ctx context.Context, userID, testID uuid.UUID) (uuid.UUID, error) {
	session, err := s.sessions.Create(ctx, userID, testID)
	if err != nil {
		return uuid.Nil, err
	}
	return session.ID, nil
}

// ListQuestions loads a test's full question set in presentation order.
func (s *SessionService) ListQuestions(ctx context.Context, testID uuid.UUID) ([]model.Question, error) {
	return s.questions.ListByTest(ctx, testID)
}

// InsertAnswer writes one answer row for a finalized session.
func (s *SessionService) InsertAnswer(ctx context.Context, sessionID, questionID uuid.UUID, selectedOption *string) error {
	return s.answers.Insert(ctx, sessionID, questionID, selectedOption)
}

// CompleteSession writes the terminal completed record with the scored result.
func (s *SessionService) CompleteSession(ctx context.Context, sessionID uuid.UUID, completedAt time.Time, result scoring.Result) error {
	return s.sessions.Complete(ctx, sessionID, completedAt, result.Overall, result.PersistedSubScores())
}

// FailSession writes the terminal failed record with the disqualification reason.
func (s *SessionService) FailSession(ctx context.Context, sessionID uuid.UUID, reason string) error {
	return s.sessions.Fail(ctx, sessionID, reason)
}

// GetOwned retrieves a session and verifies it belongs to the given user.
func (s *SessionService) GetOwned(ctx context.Context, sessionID, userID uuid.UUID) (*model.TestSession, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	if session.UserID != userID {
		return nil, ErrNotSessionOwner
	}
	return session, nil
}

// ListByUser retrieves a user's session history, newest first.
func (s *SessionService) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.TestSession, error) {
	return s.sessions.ListByUser(ctx, userID)
}
