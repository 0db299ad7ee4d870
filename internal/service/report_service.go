package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Oksidation/iq-testing-app/internal/config"
	"github.com/Oksidation/iq-testing-app/internal/model"
	"github.com/Oksidation/iq-testing-app/internal/repository"
	"github.com/Oksidation/iq-testing-app/internal/scoring"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// Report access errors.
var (
	ErrSessionNotFinished = errors.New("session is not completed yet")
	ErrSessionFailed      = errors.New("failed session has no report")
	ErrNotRedeemed        = errors.New("advanced report not unlocked for this session")
	ErrNoCredits          = repository.ErrNoCredits
	ErrAlreadyRedeemed    = repository.ErrAlreadyRedeemed
)

// ReportService builds result reports for completed sessions and handles the
// credit-gated advanced report unlock.
type ReportService struct {
	cfg      *config.Config
	sessions *repository.SessionRepository
	answers  *repository.AnswerRepository
	tests    *repository.TestRepository
	users    *repository.UserRepository
	log      zerolog.Logger
}

// NewReportService creates a new ReportService.
func NewReportService(cfg *config.Config, sessions *repository.SessionRepository, answers *repository.AnswerRepository, tests *repository.TestRepository, users *repository.UserRepository, log zerolog.Logger) *ReportService {
	return &ReportService{
		cfg:      cfg,
		sessions: sessions,
		answers:  answers,
		tests:    tests,
		users:    users,
		log:      log.With().Str("component", "report_service").Logger(),
	}
}

// GetReport returns the basic report for a completed session owned by userID.
// The basic report carries the overall score, sub-scores and band but not the
// per-question review.
func (s *ReportService) GetReport(ctx context.Context, sessionID, userID uuid.UUID) (*model.Report, error) {
	session, t, err := s.loadCompleted(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	return s.buildReport(session, t), nil
}

// GetAdvancedReport returns the full report including the per-question answer
// review. The session's advanced report must have been redeemed first.
func (s *ReportService) GetAdvancedReport(ctx context.Context, sessionID, userID uuid.UUID) (*model.Report, error) {
	session, t, err := s.loadCompleted(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	if !session.AdvancedReportRedeemed {
		return nil, ErrNotRedeemed
	}

	report := s.buildReport(session, t)
	report.Answers, err = s.answers.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}
	return report, nil
}

// Redeem spends one credit to unlock the advanced report for a session. When
// the user has no credits, the response carries the checkout URL instead of
// an error so the client can send the user to the payment page.
func (s *ReportService) Redeem(ctx context.Context, sessionID, userID uuid.UUID) (*model.RedeemResponse, error) {
	session, _, err := s.loadCompleted(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}

	if err := s.sessions.RedeemAdvancedReport(ctx, session.ID, userID); err != nil {
		if errors.Is(err, repository.ErrNoCredits) {
			return &model.RedeemResponse{
				Redeemed:    false,
				CheckoutURL: s.CheckoutURL(session.ID),
			}, nil
		}
		return nil, err
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("reload user: %w", err)
	}

	s.log.Info().
		Str("session_id", session.ID.String()).
		Str("user_id", userID.String()).
		Int("credits_left", u.Credits).
		Msg("Advanced report redeemed")

	return &model.RedeemResponse{Redeemed: true, CreditsLeft: u.Credits}, nil
}

// CheckoutURL builds the external payment link for a session. The session id
// rides along as client_reference_id so the purchase can be attributed.
func (s *ReportService) CheckoutURL(sessionID uuid.UUID) string {
	return fmt.Sprintf("%s?client_reference_id=%s", s.cfg.CheckoutURL, sessionID)
}

func (s *ReportService) loadCompleted(ctx context.Context, sessionID, userID uuid.UUID) (*model.TestSession, *model.Test, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, ErrSessionNotFound
		}
		return nil, nil, err
	}
	if session.UserID != userID {
		return nil, nil, ErrNotSessionOwner
	}

	switch session.Status {
	case model.SessionStatusCompleted:
		// Reportable.
	case model.SessionStatusFailed:
		return nil, nil, ErrSessionFailed
	default:
		return nil, nil, ErrSessionNotFinished
	}

	t, err := s.tests.GetByID(ctx, session.TestID)
	if err != nil {
		return nil, nil, fmt.Errorf("load test: %w", err)
	}
	return session, t, nil
}

func (s *ReportService) buildReport(session *model.TestSession, t *model.Test) *model.Report {
	report := &model.Report{
		Session:   *session,
		TestTitle: t.Title,
		Kind:      t.Kind,
	}
	if t.Kind == model.TestKindWeightedScale && session.Score != nil {
		report.Band = scoring.BandFor(*session.Score)
	}
	return report
}
