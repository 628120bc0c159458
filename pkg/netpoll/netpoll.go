package netpoll

import (
	"errors"
	"strings"
	"time"
)

// ErrWouldBlock reports that a non-blocking call could not make progress now.
// It is a signal, not a failure: retry after the next readiness event.
var ErrWouldBlock = errors.New("netpoll: operation would block")

// ErrClosed is returned when a closed Poller or Listener is used.
var ErrClosed = errors.New("netpoll: use of closed poller")

// Interest is a set of readiness conditions.
type Interest uint8

const (
	// Readable means the descriptor has data or a pending connection.
	Readable Interest = 1 << iota
	// Writable means the descriptor accepts more outbound bytes.
	Writable
	// Hangup means the peer is gone or the descriptor is in an error state.
	// It is always reported, whether or not it was requested.
	Hangup
)

// Has reports whether all bits of o are set in i.
func (i Interest) Has(o Interest) bool {
	return i&o == o && o != 0
}

func (i Interest) String() string {
	if i == 0 {
		return "none"
	}
	var parts []string
	if i&Readable != 0 {
		parts = append(parts, "readable")
	}
	if i&Writable != 0 {
		parts = append(parts, "writable")
	}
	if i&Hangup != 0 {
		parts = append(parts, "hangup")
	}
	return strings.Join(parts, "|")
}

// Token identifies a registration. The poller hands it back untouched.
type Token uint64

// Event is one entry of a readiness batch.
type Event struct {
	Token    Token
	Interest Interest
}

// Poller registers descriptors and delivers readiness batches.
type Poller interface {
	// Register arms fd for in, reporting readiness under tok.
	Register(fd int, tok Token, in Interest) error
	// Reregister re-arms a registered fd after an event was delivered.
	Reregister(fd int, tok Token, in Interest) error
	// Deregister removes fd. It must be called before fd is closed.
	Deregister(fd int) error
	// Wait blocks until at least one event is ready or timeout expires,
	// filling events and returning how many were written. A negative
	// timeout blocks indefinitely.
	Wait(events []Event, timeout time.Duration) (int, error)
	// Close releases the poller descriptor.
	Close() error
}
