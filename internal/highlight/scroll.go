package highlight

import "time"

// Scroll arbitration constants. The cooldown requirement allows 3-5
// seconds; 4000ms is the canonical value.
const (
	// DefaultScrollCooldown is how long after a user scroll auto-scroll
	// stays suppressed.
	DefaultScrollCooldown = 4000 * time.Millisecond

	// programmaticScrollWindow is how long a system-originated scroll
	// masks the scroll events it causes, so they are not mistaken for a
	// new user scroll.
	programmaticScrollWindow = 500 * time.Millisecond
)

// ScrollArbiter decides whether an auto-scroll may run, so the system
// never fights the user's own scrolling.
type ScrollArbiter struct {
	lastManual        time.Time
	programmaticUntil time.Time
	cooldown          time.Duration
	now               func() time.Time
}

// NewScrollArbiter creates an arbiter with the given cooldown; zero or
// negative uses DefaultScrollCooldown.
func NewScrollArbiter(cooldown time.Duration) *ScrollArbiter {
	if cooldown <= 0 {
		cooldown = DefaultScrollCooldown
	}
	return &ScrollArbiter{cooldown: cooldown, now: time.Now}
}

// NoteUserScroll records a user-initiated scroll. Scroll events arriving
// inside the programmatic window were caused by the system's own scroll
// and are not counted against the user.
func (a *ScrollArbiter) NoteUserScroll() {
	now := a.now()
	if now.Before(a.programmaticUntil) {
		return
	}
	a.lastManual = now
}

// ShouldAutoScroll reports whether enough time has passed since the last
// user scroll for an auto-scroll to proceed.
func (a *ScrollArbiter) ShouldAutoScroll() bool {
	if a.lastManual.IsZero() {
		return true
	}
	return a.now().Sub(a.lastManual) >= a.cooldown
}

// NoteProgrammaticScroll flags the immediately following scroll events as
// system-originated. Call it right before performing an auto-scroll.
func (a *ScrollArbiter) NoteProgrammaticScroll() {
	a.programmaticUntil = a.now().Add(programmaticScrollWindow)
}
