package engine

import "github.com/google/uuid"

// Ledger is the in-memory map of selected options, keyed by question id.
// Selections may be overwritten freely while the session is in progress; the
// snapshot is read once, at finalize. Unanswered questions are simply absent.
type Ledger struct {
	selections map[uuid.UUID]string
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{selections: make(map[uuid.UUID]string)}
}

// Record upserts the selection for a question.
func (l *Ledger) Record(questionID uuid.UUID, option string) {
	l.selections[questionID] = option
}

// Get returns the recorded selection, if any.
func (l *Ledger) Get(questionID uuid.UUID) (string, bool) {
	opt, ok := l.selections[questionID]
	return opt, ok
}

// Len returns the number of answered questions.
func (l *Ledger) Len() int {
	return len(l.selections)
}

// Snapshot returns a copy of the full selection map.
func (l *Ledger) Snapshot() map[uuid.UUID]string {
	out := make(map[uuid.UUID]string, len(l.selections))
	for k, v := range l.selections {
		out[k] = v
	}
	return out
}
