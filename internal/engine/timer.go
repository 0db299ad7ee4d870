package engine

import (
	"sync"
	"time"
)

// Countdown is the per-question timer for one session. It ticks down in whole
// seconds and fires onExpire exactly once when it reaches zero, then stays
// stopped until restarted. One Countdown instance exists per engine; the
// engine re-arms it on every question change and stops it on terminal states.
type Countdown struct {
	interval time.Duration
	onExpire func()

	mu        sync.Mutex
	remaining int
	running   bool
	started   bool

	done      chan struct{}
	closeOnce sync.Once
}

// NewCountdown creates a countdown that decrements once per interval. The
// interval is one second in production; tests shrink it.
func NewCountdown(interval time.Duration, onExpire func()) *Countdown {
	return &Countdown{
		interval: interval,
		onExpire: onExpire,
		done:     make(chan struct{}),
	}
}

// Start begins counting down from seconds. The first call launches the tick
// loop; later calls behave like Reset.
func (c *Countdown) Start(seconds int) {
	c.mu.Lock()
	c.remaining = seconds
	c.running = true
	launch := !c.started
	c.started = true
	c.mu.Unlock()

	if launch {
		go c.run()
	}
}

// Reset restarts the countdown from seconds.
func (c *Countdown) Reset(seconds int) {
	c.Start(seconds)
}

// Stop halts the countdown without firing expiry. A stopped countdown can be
// restarted with Reset.
func (c *Countdown) Stop() {
	c.mu.Lock()
	c.running = false
	c.mu.Unlock()
}

// Remaining returns the seconds left on the current question.
func (c *Countdown) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

// Close terminates the tick loop. Idempotent.
func (c *Countdown) Close() {
	c.closeOnce.Do(func() { close(c.done) })
}

func (c *Countdown) run() {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.mu.Lock()
			if !c.running {
				c.mu.Unlock()
				continue
			}
			c.remaining--
			expired := c.remaining <= 0
			if expired {
				// Stay stopped until the engine re-arms.
				c.running = false
			}
			c.mu.Unlock()

			if expired {
				c.onExpire()
			}
		}
	}
}
