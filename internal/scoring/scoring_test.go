package scoring

import (
	"testing"

	"github.com/Oksidation/iq-testing-app/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// makeQuestions builds n questions whose correct option is always "A".
func makeQuestions(n int, category string) []model.Question {
	qs := make([]model.Question, 0, n)
	for i := 0; i < n; i++ {
		qs = append(qs, model.Question{
			ID:            uuid.New(),
			CorrectOption: "A",
			Category:      category,
			OrderNum:      i,
		})
	}
	return qs
}

func answerAll(qs []model.Question, option string) map[uuid.UUID]string {
	answers := make(map[uuid.UUID]string, len(qs))
	for _, q := range qs {
		answers[q.ID] = option
	}
	return answers
}

func TestKindForTest(t *testing.T) {
	assert.Equal(t, KindWeightedScale, KindForTest(model.TestKindWeightedScale))
	assert.Equal(t, KindNormReferenced, KindForTest(model.TestKindNormReferenced))
	assert.Equal(t, KindPlainCount, KindForTest(model.TestKindPlainCount))
	assert.Equal(t, KindPlainCount, KindForTest(model.TestKind("SOMETHING_ELSE")))
}

func TestPlainCount(t *testing.T) {
	t.Run("CountsOnlyMatchingOptions", func(t *testing.T) {
		qs := makeQuestions(4, "")
		answers := map[uuid.UUID]string{
			qs[0].ID: "A",
			qs[1].ID: "B",
			qs[2].ID: "A",
			// qs[3] unanswered
		}

		res := Score(KindPlainCount, qs, answers)
		assert.Equal(t, 2, res.Overall)
		assert.Equal(t, 2, res.Correct)
		assert.Equal(t, 4, res.Total)
		assert.Empty(t, res.SubScores)
	})

	t.Run("ScoreWithinBounds", func(t *testing.T) {
		qs := makeQuestions(10, "")
		for _, answers := range []map[uuid.UUID]string{
			nil,
			answerAll(qs, "A"),
			answerAll(qs, "E"),
		} {
			res := Score(KindPlainCount, qs, answers)
			assert.GreaterOrEqual(t, res.Overall, 0)
			assert.LessOrEqual(t, res.Overall, len(qs))
		}
	})

	t.Run("EmptySnapshotScoresZero", func(t *testing.T) {
		qs := makeQuestions(3, "")
		res := Score(KindPlainCount, qs, nil)
		assert.Equal(t, 0, res.Overall)
	})
}

func TestWeightedScale(t *testing.T) {
	t.Run("AllDScoresTwentyVeryLikely", func(t *testing.T) {
		qs := makeQuestions(5, "")
		res := Score(KindWeightedScale, qs, answerAll(qs, "D"))

		assert.Equal(t, 20, res.Overall)
		assert.Equal(t, "very likely", res.Band)
	})

	t.Run("AllAScoresZeroUnlikely", func(t *testing.T) {
		qs := makeQuestions(5, "")
		res := Score(KindWeightedScale, qs, answerAll(qs, "A"))

		assert.Equal(t, 0, res.Overall)
		assert.Equal(t, "unlikely", res.Band)
	})

	t.Run("UnansweredContributesZero", func(t *testing.T) {
		qs := makeQuestions(4, "")
		answers := map[uuid.UUID]string{qs[0].ID: "D", qs[1].ID: "D"}

		// raw=6, max=12, scale=round(0.5*20)=10 → "likely"
		res := Score(KindWeightedScale, qs, answers)
		assert.Equal(t, 10, res.Overall)
		assert.Equal(t, "likely", res.Band)
	})

	t.Run("Bands", func(t *testing.T) {
		assert.Equal(t, "very likely", BandFor(15))
		assert.Equal(t, "likely", BandFor(14))
		assert.Equal(t, "likely", BandFor(10))
		assert.Equal(t, "possible", BandFor(9))
		assert.Equal(t, "possible", BandFor(5))
		assert.Equal(t, "unlikely", BandFor(4))
		assert.Equal(t, "unlikely", BandFor(0))
	})

	t.Run("NoQuestionsScoresZero", func(t *testing.T) {
		res := Score(KindWeightedScale, nil, nil)
		assert.Equal(t, 0, res.Overall)
		assert.Equal(t, "unlikely", res.Band)
	})
}

func TestNormReferenced(t *testing.T) {
	t.Run("ZeroCorrectScoresFifty", func(t *testing.T) {
		qs := makeQuestions(10, "logical")
		res := Score(KindNormReferenced, qs, nil)
		assert.Equal(t, 50, res.Overall)
	})

	t.Run("AllCorrectScoresOneFifty", func(t *testing.T) {
		qs := makeQuestions(10, "logical")
		res := Score(KindNormReferenced, qs, answerAll(qs, "A"))
		assert.Equal(t, 150, res.Overall)
	})

	t.Run("SixOfTenScoresOneTen", func(t *testing.T) {
		qs := makeQuestions(10, "numerical")
		answers := make(map[uuid.UUID]string)
		for i, q := range qs {
			if i < 6 {
				answers[q.ID] = "A"
			} else {
				answers[q.ID] = "B"
			}
		}

		res := Score(KindNormReferenced, qs, answers)
		assert.Equal(t, 110, res.Overall)
	})

	t.Run("CategorySubScores", func(t *testing.T) {
		numerical := makeQuestions(4, "numerical")
		logical := makeQuestions(2, "logical")
		qs := append(append([]model.Question{}, numerical...), logical...)

		answers := make(map[uuid.UUID]string)
		// 2 of 4 numerical correct, 2 of 2 logical correct.
		answers[numerical[0].ID] = "A"
		answers[numerical[1].ID] = "A"
		answers[numerical[2].ID] = "C"
		answers[logical[0].ID] = "A"
		answers[logical[1].ID] = "A"

		res := Score(KindNormReferenced, qs, answers)
		require.Contains(t, res.SubScores, "numerical")
		require.Contains(t, res.SubScores, "logical")
		require.Contains(t, res.SubScores, "spatial")

		assert.Equal(t, 100, res.SubScores["numerical"].Score)
		assert.Equal(t, 150, res.SubScores["logical"].Score)
		assert.Equal(t, 0, res.SubScores["spatial"].Score)
	})

	t.Run("EmptyCategoryIsZeroNotMissing", func(t *testing.T) {
		qs := makeQuestions(5, "numerical")
		res := Score(KindNormReferenced, qs, answerAll(qs, "A"))

		// Every configured category appears in the result, even with no
		// questions behind it.
		require.Contains(t, res.SubScores, "spatial")
		assert.Equal(t, 0, res.SubScores["spatial"].Score)
		assert.Equal(t, 0, res.SubScores["spatial"].Total)

		// But empty categories never reach persistence.
		persisted := res.PersistedSubScores()
		assert.Contains(t, persisted, "numerical")
		assert.NotContains(t, persisted, "spatial")
		assert.NotContains(t, persisted, "logical")
	})

	t.Run("NoQuestionsDoesNotPanic", func(t *testing.T) {
		res := Score(KindNormReferenced, nil, nil)
		assert.Equal(t, 0, res.Overall)
		assert.Nil(t, res.PersistedSubScores())
	})
}
