// Package engine implements the per-attempt test session state machine: it
// sequences questions, runs the per-question countdown, latches attention
// loss, collects answers, and scores and persists the attempt at finalize.
// One engine instance owns one attempt; nothing is shared across sessions.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Oksidation/iq-testing-app/internal/model"
	"github.com/Oksidation/iq-testing-app/internal/scoring"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Engine errors.
var (
	ErrNotInProgress   = errors.New("session is not in progress")
	ErrAlreadyStarted  = errors.New("session already started")
	ErrUnknownQuestion = errors.New("question does not belong to this session")
	ErrUnknownOption   = errors.New("option is not offered by this question")
	ErrNoQuestions     = errors.New("test has no questions")
)

// SetupError wraps failures during session creation or question loading.
// The state machine never starts when one occurs.
type SetupError struct {
	Err error
}

func (e *SetupError) Error() string { return fmt.Sprintf("session setup: %v", e.Err) }
func (e *SetupError) Unwrap() error { return e.Err }

// persistTimeout bounds the store calls issued from the timer goroutine,
// which has no request context to inherit.
const persistTimeout = 15 * time.Second

// Engine is the session lifecycle controller. Every mutating transition —
// user input, timer expiry, attention loss — funnels through one mutex, and
// a terminal check at the top of each handler makes terminal states sticky.
type Engine struct {
	store Store
	log   zerolog.Logger
	emit  func(Event)

	userID          uuid.UUID
	testID          uuid.UUID
	kind            scoring.Kind
	questionSeconds int
	tick            time.Duration

	mu        sync.Mutex
	sessionID uuid.UUID
	status    model.SessionStatus
	nav       *Navigator
	ledger    *Ledger
	countdown *Countdown
	monitor   *AttentionMonitor
}

// Option customizes an engine, mainly for tests.
type Option func(*Engine)

// WithTick overrides the one-second countdown tick.
func WithTick(d time.Duration) Option {
	return func(e *Engine) { e.tick = d }
}

// WithQuestionSeconds overrides the per-question duration.
func WithQuestionSeconds(n int) Option {
	return func(e *Engine) { e.questionSeconds = n }
}

// New creates an engine for one attempt at the given test. emit receives
// engine events and must not call back into the engine; it may be nil.
func New(store Store, test *model.Test, userID uuid.UUID, emit func(Event), log zerolog.Logger, opts ...Option) *Engine {
	if emit == nil {
		emit = func(Event) {}
	}

	e := &Engine{
		store:           store,
		log:             log.With().Str("component", "session_engine").Str("test_id", test.ID.String()).Logger(),
		emit:            emit,
		userID:          userID,
		testID:          test.ID,
		kind:            scoring.KindForTest(test.Kind),
		questionSeconds: test.QuestionSeconds,
		tick:            time.Second,
		monitor:         NewAttentionMonitor(),
		ledger:          NewLedger(),
	}
	if e.questionSeconds <= 0 {
		e.questionSeconds = 90
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Start creates the session record, loads the question set and begins the
// first countdown. Any failure here is a SetupError: no partial state is
// exposed and the machine never enters in_progress.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.status != "" {
		return ErrAlreadyStarted
	}

	sessionID, err := e.store.CreateSession(ctx, e.userID, e.testID)
	if err != nil {
		return &SetupError{Err: fmt.Errorf("create session: %w", err)}
	}

	questions, err := e.store.ListQuestions(ctx, e.testID)
	if err != nil {
		// The created record stays orphaned in_progress server-side; the
		// engine has no cleanup pass in scope.
		e.log.Warn().Str("session_id", sessionID.String()).Msg("Question load failed after session create")
		return &SetupError{Err: fmt.Errorf("load questions: %w", err)}
	}
	if len(questions) == 0 {
		return &SetupError{Err: ErrNoQuestions}
	}

	e.sessionID = sessionID
	e.nav = NewNavigator(questions)
	e.status = model.SessionStatusInProgress
	e.countdown = NewCountdown(e.tick, e.handleExpiry)
	e.countdown.Start(e.questionSeconds)

	e.log.Info().
		Str("session_id", sessionID.String()).
		Int("questions", len(questions)).
		Msg("Session started")

	e.emit(Event{Type: EventState, State: e.stateLocked()})
	return nil
}

// Select records the chosen option for a question. Re-selecting overwrites
// the previous choice while the session is in progress.
func (e *Engine) Select(questionID uuid.UUID, option string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.status != model.SessionStatusInProgress {
		return ErrNotInProgress
	}

	q := e.nav.Find(questionID)
	if q == nil {
		return ErrUnknownQuestion
	}
	if !q.HasOption(option) {
		return ErrUnknownOption
	}

	e.ledger.Record(questionID, option)
	return nil
}

// Advance moves to the next question and re-arms the countdown. On the last
// question it is a no-op returning false; callers should check IsLast and
// submit instead.
func (e *Engine) Advance() (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.status != model.SessionStatusInProgress {
		return false, ErrNotInProgress
	}

	if !e.nav.Advance() {
		return false, nil
	}

	e.countdown.Reset(e.questionSeconds)
	e.emit(Event{Type: EventState, State: e.stateLocked()})
	return true, nil
}

// IsLast reports whether the current question is the final one.
func (e *Engine) IsLast() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.nav != nil && e.nav.IsLast()
}

// Submit finalizes the session explicitly: scores it, persists answers and
// the terminal record, and transitions to completed. A latched attention loss
// takes precedence and aborts the finalize.
func (e *Engine) Submit(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.status != model.SessionStatusInProgress {
		return ErrNotInProgress
	}

	return e.finalizeLocked(ctx)
}

// AttentionLost handles a disqualification signal. The monitor latch makes
// it idempotent: only the first cause produces a failed transition and a
// status write, every later signal is a no-op.
func (e *Engine) AttentionLost(ctx context.Context, cause Cause) error {
	if !e.monitor.Trip(cause) {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	return e.disqualifyLocked(ctx, cause)
}

// disqualifyLocked runs the failed transition. Callers hold e.mu. A session
// already terminal stays untouched.
func (e *Engine) disqualifyLocked(ctx context.Context, cause Cause) error {
	if e.status != model.SessionStatusInProgress {
		return nil
	}

	reason := cause.Reason()
	e.status = model.SessionStatusFailed
	e.countdown.Stop()

	var persistErr string
	err := e.store.FailSession(ctx, e.sessionID, reason)
	if err != nil {
		persistErr = err.Error()
		e.log.Error().Err(err).Str("session_id", e.sessionID.String()).Msg("Failed-status write error")
	}

	e.log.Info().
		Str("session_id", e.sessionID.String()).
		Str("cause", string(cause)).
		Msg("Session disqualified")

	e.emit(Event{
		Type:         EventDisqualified,
		State:        e.stateLocked(),
		Reason:       reason,
		PersistError: persistErr,
	})
	return err
}

// State returns the externally observable snapshot of the session.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stateLocked()
}

// SessionID returns the persisted session id, or uuid.Nil before Start.
func (e *Engine) SessionID() uuid.UUID {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sessionID
}

// Close releases the countdown goroutine. A close before a terminal state
// abandons the attempt: the record stays in_progress server-side and no
// terminal write is issued.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.countdown != nil {
		e.countdown.Stop()
		e.countdown.Close()
	}
	if e.status == model.SessionStatusInProgress {
		e.log.Info().Str("session_id", e.sessionID.String()).Msg("Attempt abandoned while in progress")
	}
}

// handleExpiry runs on the countdown goroutine when the timer hits zero.
// Non-last question: advance and re-arm. Last question: finalize.
func (e *Engine) handleExpiry() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.status != model.SessionStatusInProgress {
		return
	}

	if e.nav.Advance() {
		e.countdown.Reset(e.questionSeconds)
		e.emit(Event{Type: EventState, State: e.stateLocked()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	if err := e.finalizeLocked(ctx); err != nil {
		e.log.Error().Err(err).Str("session_id", e.sessionID.String()).Msg("Finalize on expiry failed")
	}
}

// finalizeLocked scores and persists the attempt. Callers hold e.mu.
// The disqualify latch is checked first: if an attention loss raced this
// finalize, the session must end failed, never completed. Persistence
// failures are surfaced but do not reverse the local completed transition.
func (e *Engine) finalizeLocked(ctx context.Context) error {
	if e.monitor.Tripped() {
		return nil
	}

	result := scoring.Score(e.kind, e.nav.Questions(), e.ledger.Snapshot())
	completedAt := time.Now()

	e.status = model.SessionStatusCompleted
	e.countdown.Stop()

	var firstErr error
	for _, q := range e.nav.Questions() {
		var selected *string
		if opt, ok := e.ledger.Get(q.ID); ok {
			selected = &opt
		}
		if err := e.store.InsertAnswer(ctx, e.sessionID, q.ID, selected); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("insert answer: %w", err)
		}
	}

	if err := e.store.CompleteSession(ctx, e.sessionID, completedAt, result); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("complete session: %w", err)
	}

	var persistErr string
	if firstErr != nil {
		persistErr = firstErr.Error()
		e.log.Error().Err(firstErr).Str("session_id", e.sessionID.String()).Msg("Finalize persistence error")
	}

	e.log.Info().
		Str("session_id", e.sessionID.String()).
		Int("score", result.Overall).
		Int("answered", e.ledger.Len()).
		Msg("Session completed")

	e.emit(Event{
		Type:         EventGraded,
		State:        e.stateLocked(),
		Result:       &result,
		PersistError: persistErr,
	})
	return firstErr
}

// stateLocked builds a State snapshot. Callers hold e.mu.
func (e *Engine) stateLocked() State {
	s := State{
		SessionID: e.sessionID,
		Status:    e.status,
	}
	if e.nav != nil {
		s.QuestionIndex = e.nav.Index()
		s.QuestionCount = e.nav.Count()
		if e.status == model.SessionStatusInProgress {
			view := e.nav.Current().ForTaker()
			s.Question = &view
		}
	}
	if e.countdown != nil && e.status == model.SessionStatusInProgress {
		s.SecondsLeft = e.countdown.Remaining()
	}
	return s
}
