package model

// Report is the result view for a completed session. Band is set only for
// weighted-scale tests; Answers only after the advanced report is unlocked.
type Report struct {
	Session   TestSession    `json:"session"`
	TestTitle string         `json:"test_title"`
	Kind      TestKind       `json:"kind"`
	Band      string         `json:"band,omitempty"`
	Answers   []AnswerReview `json:"answers,omitempty"`
}

// RedeemResponse is returned by the advanced-report redeem endpoint.
type RedeemResponse struct {
	Redeemed bool `json:"redeemed"`
	// CheckoutURL points at the external payment page when the user has no
	// credits left. Empty on successful redeem.
	CheckoutURL string `json:"checkout_url,omitempty"`
	CreditsLeft int    `json:"credits_left"`
}
