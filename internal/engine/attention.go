package engine

import "sync"

// Cause identifies which attention signal disqualified a session.
type Cause string

const (
	// CauseTabHidden fires when the page visibility turns hidden (tab switch
	// or window minimize).
	CauseTabHidden Cause = "tab_hidden"
	// CauseWindowBlur fires when the test window loses focus.
	CauseWindowBlur Cause = "window_blur"
)

// Reason returns the user-facing explanation for a cause.
func (c Cause) Reason() string {
	switch c {
	case CauseTabHidden:
		return "You switched to another tab or minimized the window."
	case CauseWindowBlur:
		return "You clicked outside the test window."
	default:
		return "You left the test window."
	}
}

// AttentionMonitor latches the first attention-loss signal for a session.
// It is a latch, not a counter: the first Trip wins and every later signal
// is a no-op, so a second blur after disqualification never re-fires.
type AttentionMonitor struct {
	mu      sync.Mutex
	tripped bool
	cause   Cause
}

// NewAttentionMonitor creates an un-tripped monitor.
func NewAttentionMonitor() *AttentionMonitor {
	return &AttentionMonitor{}
}

// Trip records the cause and returns true only on the first call.
func (m *AttentionMonitor) Trip(cause Cause) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.tripped {
		return false
	}
	m.tripped = true
	m.cause = cause
	return true
}

// Tripped reports whether an attention-loss signal has been latched.
func (m *AttentionMonitor) Tripped() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tripped
}

// Cause returns the latched cause, or the zero Cause if untripped.
func (m *AttentionMonitor) Cause() Cause {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cause
}
