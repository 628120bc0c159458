package lineserver

import "time"

const (
	minAcceptBackoff = 50 * time.Millisecond
	maxAcceptBackoff = time.Second
)

// acceptGate keeps the listener disarmed for a while after accept fails
// for a reason other than an empty backlog. Out of descriptors, the
// pending connection stays queued and the listener stays readable, so
// re-arming at once would spin. The delay doubles while failures repeat.
type acceptGate struct {
	until time.Time
	delay time.Duration
}

// pause disarms the listener and returns how long for.
func (g *acceptGate) pause(now time.Time) time.Duration {
	switch {
	case g.delay == 0:
		g.delay = minAcceptBackoff
	case g.delay < maxAcceptBackoff:
		g.delay = min(2*g.delay, maxAcceptBackoff)
	}
	g.until = now.Add(g.delay)
	return g.delay
}

func (g *acceptGate) paused() bool { return !g.until.IsZero() }

// due reports whether a paused listener should be re-armed.
func (g *acceptGate) due(now time.Time) bool {
	return g.paused() && !now.Before(g.until)
}

func (g *acceptGate) resume() { g.until = time.Time{} }

// reset forgets earlier failures once an accept pass ends cleanly.
func (g *acceptGate) reset() { g.delay = 0 }

// timeout shortens a poll so a paused listener is re-armed on time.
func (g *acceptGate) timeout(now time.Time, poll time.Duration) time.Duration {
	if !g.paused() {
		return poll
	}
	return max(min(g.until.Sub(now), poll), 0)
}
