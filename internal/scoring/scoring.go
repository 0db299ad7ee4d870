// Package scoring holds the pure scoring strategies applied when a test
// session is finalized. Every strategy is deterministic over the full
// question list and the final answer snapshot; an absent snapshot entry is an
// unanswered question and never counts as correct.
package scoring

import (
	"math"

	"github.com/Oksidation/iq-testing-app/internal/model"
	"github.com/google/uuid"
)

// Kind identifies a scoring strategy. It is resolved once from the test's
// metadata when the session starts.
type Kind string

const (
	KindPlainCount     Kind = "PLAIN_COUNT"
	KindWeightedScale  Kind = "WEIGHTED_SCALE"
	KindNormReferenced Kind = "NORM_REFERENCED"
)

// KindForTest maps test metadata to a scoring kind. Unknown kinds fall back
// to plain counting.
func KindForTest(t model.TestKind) Kind {
	switch t {
	case model.TestKindWeightedScale:
		return KindWeightedScale
	case model.TestKindNormReferenced:
		return KindNormReferenced
	default:
		return KindPlainCount
	}
}

// optionWeights maps option labels to weights for the weighted-scale variant.
// Unlisted labels weigh 0, as do unanswered questions.
var optionWeights = map[string]int{
	"A": 0,
	"B": 1,
	"C": 2,
	"D": 3,
}

// maxOptionWeight is the highest per-question weight (option D).
const maxOptionWeight = 3

// band maps a minimum scale score onto a qualitative likelihood label.
type band struct {
	Min   int
	Label string
}

// scaleBands are checked top-down; the first threshold at or below the scale
// score wins.
var scaleBands = []band{
	{Min: 15, Label: "very likely"},
	{Min: 10, Label: "likely"},
	{Min: 5, Label: "possible"},
	{Min: 0, Label: "unlikely"},
}

// normCategories is the fixed category set reported by the norm-referenced
// variant. Categories absent from the question set still appear in the
// result with a 0 score, but are omitted from persistence.
var normCategories = []string{"numerical", "logical", "spatial"}

// SubScore is a per-category score with the counts that produced it.
type SubScore struct {
	Score   int `json:"score"`
	Correct int `json:"correct"`
	Total   int `json:"total"`
}

// Result is the outcome of scoring one session. Overall is always set; Band
// only for weighted-scale tests; SubScores only for norm-referenced tests.
type Result struct {
	Kind      Kind                `json:"kind"`
	Overall   int                 `json:"overall"`
	Band      string              `json:"band,omitempty"`
	Correct   int                 `json:"correct"`
	Total     int                 `json:"total"`
	SubScores map[string]SubScore `json:"sub_scores,omitempty"`
}

// PersistedSubScores returns the sub-score map to store on the session
// record. Categories with no questions are dropped here but kept (as 0) in
// the Result itself.
func (r Result) PersistedSubScores() map[string]int {
	if len(r.SubScores) == 0 {
		return nil
	}
	out := make(map[string]int)
	for cat, s := range r.SubScores {
		if s.Total > 0 {
			out[cat] = s.Score
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Score runs the strategy for kind over the question list and answer
// snapshot. answers maps question id to the selected option label; missing
// entries are unanswered.
func Score(kind Kind, questions []model.Question, answers map[uuid.UUID]string) Result {
	switch kind {
	case KindWeightedScale:
		return scoreWeightedScale(questions, answers)
	case KindNormReferenced:
		return scoreNormReferenced(questions, answers)
	default:
		return scorePlainCount(questions, answers)
	}
}

// scorePlainCount counts questions whose selected option equals the correct
// option.
func scorePlainCount(questions []model.Question, answers map[uuid.UUID]string) Result {
	correct := 0
	for _, q := range questions {
		if answers[q.ID] == q.CorrectOption {
			correct++
		}
	}
	return Result{
		Kind:    KindPlainCount,
		Overall: correct,
		Correct: correct,
		Total:   len(questions),
	}
}

// scoreWeightedScale sums option weights, rescales the raw score onto [0,20]
// and attaches a likelihood band.
func scoreWeightedScale(questions []model.Question, answers map[uuid.UUID]string) Result {
	raw := 0
	for _, q := range questions {
		raw += optionWeights[answers[q.ID]]
	}

	scale := 0
	if len(questions) > 0 {
		maxPossible := len(questions) * maxOptionWeight
		scale = int(math.Round(float64(raw) / float64(maxPossible) * 20))
	}

	return Result{
		Kind:    KindWeightedScale,
		Overall: scale,
		Band:    BandFor(scale),
		Total:   len(questions),
	}
}

// BandFor maps a [0,20] scale score onto its likelihood band. Exposed so
// reports can re-derive the band from a persisted score.
func BandFor(scale int) string {
	for _, b := range scaleBands {
		if scale >= b.Min {
			return b.Label
		}
	}
	return scaleBands[len(scaleBands)-1].Label
}

// scoreNormReferenced rescales overall and per-category accuracy onto a
// 100-centered scale: floor(100 + fraction*100 - 50). The floor semantics and
// the constants keep historical scores comparable, so they must not change.
func scoreNormReferenced(questions []model.Question, answers map[uuid.UUID]string) Result {
	type tally struct{ correct, total int }
	byCategory := make(map[string]*tally, len(normCategories))
	for _, cat := range normCategories {
		byCategory[cat] = &tally{}
	}

	overallCorrect := 0
	for _, q := range questions {
		isCorrect := answers[q.ID] == q.CorrectOption
		if isCorrect {
			overallCorrect++
		}
		if t, ok := byCategory[q.Category]; ok {
			t.total++
			if isCorrect {
				t.correct++
			}
		}
	}

	subScores := make(map[string]SubScore, len(byCategory))
	for cat, t := range byCategory {
		subScores[cat] = SubScore{
			Score:   normScale(t.correct, t.total),
			Correct: t.correct,
			Total:   t.total,
		}
	}

	return Result{
		Kind:      KindNormReferenced,
		Overall:   normScale(overallCorrect, len(questions)),
		Correct:   overallCorrect,
		Total:     len(questions),
		SubScores: subScores,
	}
}

// normScale maps correct/total onto the 100-centered scale. A zero-question
// set scores 0, never NaN.
func normScale(correct, total int) int {
	if total == 0 {
		return 0
	}
	fraction := float64(correct) / float64(total)
	return int(math.Floor(100 + (fraction*100 - 50)))
}
