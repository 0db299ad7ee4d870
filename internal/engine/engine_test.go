package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Oksidation/iq-testing-app/internal/model"
	"github.com/Oksidation/iq-testing-app/internal/scoring"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory engine.Store that records every call.
type fakeStore struct {
	mu        sync.Mutex
	questions []model.Question

	createErr   error
	listErr     error
	insertErr   error
	completeErr error
	failErr     error

	sessionID     uuid.UUID
	answers       map[uuid.UUID]*string
	completeCalls int
	failCalls     int
	failReason    string
	result        scoring.Result
}

func newFakeStore(questions []model.Question) *fakeStore {
	return &fakeStore{
		questions: questions,
		sessionID: uuid.New(),
		answers:   make(map[uuid.UUID]*string),
	}
}

func (s *fakeStore) CreateSession(_ context.Context, _, _ uuid.UUID) (uuid.UUID, error) {
	if s.createErr != nil {
		return uuid.Nil, s.createErr
	}
	return s.sessionID, nil
}

func (s *fakeStore) ListQuestions(_ context.Context, _ uuid.UUID) ([]model.Question, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.questions, nil
}

func (s *fakeStore) InsertAnswer(_ context.Context, _, questionID uuid.UUID, selected *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertErr != nil {
		return s.insertErr
	}
	s.answers[questionID] = selected
	return nil
}

func (s *fakeStore) CompleteSession(_ context.Context, _ uuid.UUID, _ time.Time, result scoring.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.completeErr != nil {
		return s.completeErr
	}
	s.completeCalls++
	s.result = result
	return nil
}

func (s *fakeStore) FailSession(_ context.Context, _ uuid.UUID, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failErr != nil {
		return s.failErr
	}
	s.failCalls++
	s.failReason = reason
	return nil
}

func (s *fakeStore) answerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.answers)
}

func (s *fakeStore) completeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.completeCalls
}

func (s *fakeStore) lastResult() scoring.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// eventSink collects engine events for assertions.
type eventSink struct {
	mu     sync.Mutex
	events []Event
}

func (s *eventSink) emit(e Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

func (s *eventSink) byType(t EventType) []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Event
	for _, e := range s.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

func abOptions() []model.Option {
	return []model.Option{
		{Label: "A", Text: "first"},
		{Label: "B", Text: "second"},
		{Label: "C", Text: "third"},
	}
}

func twoQuestions(testID uuid.UUID) []model.Question {
	return []model.Question{
		{ID: uuid.New(), TestID: testID, Prompt: "1+1?", Options: abOptions(), CorrectOption: "A", OrderNum: 0},
		{ID: uuid.New(), TestID: testID, Prompt: "2+2?", Options: abOptions(), CorrectOption: "B", OrderNum: 1},
	}
}

func plainTest() *model.Test {
	return &model.Test{
		ID:              uuid.New(),
		Title:           "Generic Test",
		Kind:            model.TestKindPlainCount,
		QuestionSeconds: 90,
	}
}

func newTestEngine(t *testing.T, store *fakeStore, sink *eventSink, opts ...Option) *Engine {
	t.Helper()
	var emit func(Event)
	if sink != nil {
		emit = sink.emit
	}
	opts = append([]Option{WithTick(5 * time.Millisecond)}, opts...)
	e := New(store, plainTest(), uuid.New(), emit, zerolog.Nop(), opts...)
	t.Cleanup(e.Close)
	return e
}

func TestStartSetupErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("CreateSessionFails", func(t *testing.T) {
		store := newFakeStore(nil)
		store.createErr = errors.New("network down")

		e := newTestEngine(t, store, nil)
		err := e.Start(ctx)

		var setupErr *SetupError
		require.ErrorAs(t, err, &setupErr)
		assert.NotEqual(t, model.SessionStatusInProgress, e.State().Status)
	})

	t.Run("QuestionLoadFails", func(t *testing.T) {
		store := newFakeStore(nil)
		store.listErr = errors.New("timeout")

		e := newTestEngine(t, store, nil)
		var setupErr *SetupError
		require.ErrorAs(t, e.Start(ctx), &setupErr)
	})

	t.Run("EmptyQuestionSet", func(t *testing.T) {
		store := newFakeStore(nil)

		e := newTestEngine(t, store, nil)
		err := e.Start(ctx)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrNoQuestions)
	})

	t.Run("DoubleStart", func(t *testing.T) {
		store := newFakeStore(twoQuestions(uuid.New()))

		e := newTestEngine(t, store, nil)
		require.NoError(t, e.Start(ctx))
		assert.ErrorIs(t, e.Start(ctx), ErrAlreadyStarted)
	})
}

func TestSelectValidation(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore(twoQuestions(uuid.New()))
	e := newTestEngine(t, store, nil)
	require.NoError(t, e.Start(ctx))

	assert.ErrorIs(t, e.Select(uuid.New(), "A"), ErrUnknownQuestion)
	assert.ErrorIs(t, e.Select(store.questions[0].ID, "Z"), ErrUnknownOption)
	assert.NoError(t, e.Select(store.questions[0].ID, "A"))
}

func TestSelectOverwriteKeepsLastChoice(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore(twoQuestions(uuid.New()))
	e := newTestEngine(t, store, nil)
	require.NoError(t, e.Start(ctx))

	q := store.questions[0]
	require.NoError(t, e.Select(q.ID, "A"))
	require.NoError(t, e.Select(q.ID, "B"))

	snapshot := e.ledger.Snapshot()
	assert.Equal(t, "B", snapshot[q.ID])
	assert.Equal(t, 1, e.ledger.Len())
}

func TestAdvanceStopsAtLastQuestion(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore(twoQuestions(uuid.New()))
	e := newTestEngine(t, store, nil)
	require.NoError(t, e.Start(ctx))

	advanced, err := e.Advance()
	require.NoError(t, err)
	assert.True(t, advanced)
	assert.True(t, e.IsLast())

	// Advancing past the end is a no-op, not an error.
	advanced, err = e.Advance()
	require.NoError(t, err)
	assert.False(t, advanced)
	assert.Equal(t, 1, e.State().QuestionIndex)
}

func TestSubmitScoresAndPersists(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore(twoQuestions(uuid.New()))
	sink := &eventSink{}
	e := newTestEngine(t, store, sink)
	require.NoError(t, e.Start(ctx))

	// Correct options are A and B; the user answers A then C.
	require.NoError(t, e.Select(store.questions[0].ID, "A"))
	_, err := e.Advance()
	require.NoError(t, err)
	require.NoError(t, e.Select(store.questions[1].ID, "C"))
	require.NoError(t, e.Submit(ctx))

	assert.Equal(t, model.SessionStatusCompleted, e.State().Status)
	assert.Equal(t, 1, store.completeCalls)
	assert.Equal(t, 1, store.result.Overall)
	assert.Equal(t, 2, store.answerCount())

	graded := sink.byType(EventGraded)
	require.Len(t, graded, 1)
	require.NotNil(t, graded[0].Result)
	assert.Equal(t, 1, graded[0].Result.Overall)
	assert.Empty(t, graded[0].PersistError)

	// A second submit must not re-finalize.
	assert.ErrorIs(t, e.Submit(ctx), ErrNotInProgress)
	assert.Equal(t, 1, store.completeCalls)
}

func TestUnansweredQuestionsPersistNullSelections(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore(twoQuestions(uuid.New()))
	e := newTestEngine(t, store, nil)
	require.NoError(t, e.Start(ctx))

	require.NoError(t, e.Select(store.questions[0].ID, "A"))
	require.NoError(t, e.Submit(ctx))

	require.Equal(t, 2, store.answerCount())
	require.NotNil(t, store.answers[store.questions[0].ID])
	assert.Equal(t, "A", *store.answers[store.questions[0].ID])
	assert.Nil(t, store.answers[store.questions[1].ID])
}

func TestTimerExpiryAdvancesThenFinalizes(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore(twoQuestions(uuid.New()))
	sink := &eventSink{}
	e := newTestEngine(t, store, sink, WithQuestionSeconds(1))
	require.NoError(t, e.Start(ctx))

	// First expiry moves to the second question and keeps the session alive.
	require.Eventually(t, func() bool {
		return e.State().QuestionIndex == 1
	}, time.Second, 2*time.Millisecond)
	assert.Equal(t, model.SessionStatusInProgress, e.State().Status)

	// Expiry on the last question finalizes with everything unanswered.
	require.Eventually(t, func() bool {
		return e.State().Status == model.SessionStatusCompleted
	}, time.Second, 2*time.Millisecond)
	assert.Equal(t, 1, store.completeCount())
	assert.Equal(t, 0, store.lastResult().Overall)
}

func TestDisqualificationIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore(twoQuestions(uuid.New()))
	sink := &eventSink{}
	e := newTestEngine(t, store, sink)
	require.NoError(t, e.Start(ctx))

	require.NoError(t, e.AttentionLost(ctx, CauseWindowBlur))
	require.NoError(t, e.AttentionLost(ctx, CauseWindowBlur))
	require.NoError(t, e.AttentionLost(ctx, CauseTabHidden))

	assert.Equal(t, model.SessionStatusFailed, e.State().Status)
	assert.Equal(t, 1, store.failCalls)
	assert.Equal(t, CauseWindowBlur.Reason(), store.failReason)
	assert.Len(t, sink.byType(EventDisqualified), 1)
}

func TestFailedPathWritesNoAnswers(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore(twoQuestions(uuid.New()))
	e := newTestEngine(t, store, nil)
	require.NoError(t, e.Start(ctx))

	// Selections made before the blur stay in memory only.
	require.NoError(t, e.Select(store.questions[0].ID, "A"))
	require.NoError(t, e.AttentionLost(ctx, CauseWindowBlur))

	assert.Equal(t, model.SessionStatusFailed, e.State().Status)
	assert.Equal(t, 0, store.answerCount())
	assert.Equal(t, 0, store.completeCalls)

	// Submitting after disqualification is rejected.
	assert.ErrorIs(t, e.Submit(ctx), ErrNotInProgress)
}

func TestDisqualifyBeatsPendingFinalize(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore(twoQuestions(uuid.New()))
	e := newTestEngine(t, store, nil)
	require.NoError(t, e.Start(ctx))

	_, err := e.Advance()
	require.NoError(t, err)
	require.True(t, e.IsLast())

	// The attention signal latches before the expiry handler runs; the
	// finalize must yield even though it gets the critical section first.
	require.True(t, e.monitor.Trip(CauseTabHidden))
	e.handleExpiry()

	assert.Equal(t, model.SessionStatusInProgress, e.State().Status)
	assert.Equal(t, 0, store.completeCalls)

	// The disqualify handler then lands the failed transition.
	e.mu.Lock()
	err = e.disqualifyLocked(ctx, CauseTabHidden)
	e.mu.Unlock()
	require.NoError(t, err)

	assert.Equal(t, model.SessionStatusFailed, e.State().Status)
	assert.Equal(t, 1, store.failCalls)
	assert.Equal(t, 0, store.completeCalls)
}

func TestWriteFailureStillCompletesLocally(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore(twoQuestions(uuid.New()))
	store.completeErr = errors.New("connection reset")
	sink := &eventSink{}
	e := newTestEngine(t, store, sink)
	require.NoError(t, e.Start(ctx))

	err := e.Submit(ctx)
	require.Error(t, err)

	// The computed result is not rolled back because of a downstream write
	// failure; the error is surfaced once.
	assert.Equal(t, model.SessionStatusCompleted, e.State().Status)
	graded := sink.byType(EventGraded)
	require.Len(t, graded, 1)
	assert.NotEmpty(t, graded[0].PersistError)
}

func TestAbandonedAttemptDoesNotTransition(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore(twoQuestions(uuid.New()))
	e := newTestEngine(t, store, nil)
	require.NoError(t, e.Start(ctx))

	// Walking away mid-attempt issues no terminal write; the record is left
	// orphaned in_progress server-side.
	e.Close()

	assert.Equal(t, model.SessionStatusInProgress, e.State().Status)
	assert.Equal(t, 0, store.completeCalls)
	assert.Equal(t, 0, store.failCalls)
	assert.Equal(t, 0, store.answerCount())
}
