package model

import (
	"github.com/google/uuid"
)

// Option is one labeled choice on a question. Labels are single letters
// ("A".."E"); text or image may carry the content.
type Option struct {
	Label    string `json:"label"`
	Text     string `json:"text,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
}

// Question represents a single immutable test question. Authored out-of-band;
// read-only to the session engine.
type Question struct {
	ID             uuid.UUID `json:"id"`
	TestID         uuid.UUID `json:"test_id"`
	Prompt         string    `json:"prompt"`
	PromptImageURL string    `json:"prompt_image_url,omitempty"`
	Options        []Option  `json:"options"`
	CorrectOption  string    `json:"correct_option"`
	// Category tags a question for sub-score computation (e.g. numerical,
	// logical, spatial). Empty for untagged questions.
	Category string `json:"category,omitempty"`
	OrderNum int    `json:"order_num"`
}

// HasOption reports whether the question offers an option with the given
// label.
func (q *Question) HasOption(label string) bool {
	for _, opt := range q.Options {
		if opt.Label == label {
			return true
		}
	}
	return false
}

// QuestionForTaker is a question with the correct answer stripped, safe to
// send to the client.
type QuestionForTaker struct {
	ID             uuid.UUID `json:"id"`
	Prompt         string    `json:"prompt"`
	PromptImageURL string    `json:"prompt_image_url,omitempty"`
	Options        []Option  `json:"options"`
	OrderNum       int       `json:"order_num"`
}

// ForTaker strips the correct option and category from a question.
func (q *Question) ForTaker() QuestionForTaker {
	return QuestionForTaker{
		ID:             q.ID,
		Prompt:         q.Prompt,
		PromptImageURL: q.PromptImageURL,
		Options:        q.Options,
		OrderNum:       q.OrderNum,
	}
}
