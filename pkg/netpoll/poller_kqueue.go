//go:build darwin || freebsd

package netpoll

import (
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// kqueue keeps the token table itself; Udata is a pointer on these
// platforms and cannot carry a plain integer safely.
type kqueuer struct {
	fd     int
	tokens map[int]Token
	events []unix.Kevent_t
}

// New creates a kqueue-backed Poller.
func New() (Poller, error) {
	fd, err := unix.Kqueue()
	if err != nil {
		return nil, os.NewSyscallError("kqueue", err)
	}
	unix.CloseOnExec(fd)
	return &kqueuer{fd: fd, tokens: make(map[int]Token)}, nil
}

func (p *kqueuer) Register(fd int, tok Token, in Interest) error {
	if p.fd < 0 {
		return ErrClosed
	}
	p.tokens[fd] = tok
	return p.arm(fd, in)
}

func (p *kqueuer) Reregister(fd int, tok Token, in Interest) error {
	if p.fd < 0 {
		return ErrClosed
	}
	p.tokens[fd] = tok
	return p.arm(fd, in)
}

func (p *kqueuer) Deregister(fd int) error {
	if p.fd < 0 {
		return ErrClosed
	}
	delete(p.tokens, fd)
	if err := p.change(fd, unix.EVFILT_READ, unix.EV_DELETE); err != nil {
		return err
	}
	return p.change(fd, unix.EVFILT_WRITE, unix.EV_DELETE)
}

// arm adds a one-shot filter per requested condition and drops the others.
func (p *kqueuer) arm(fd int, in Interest) error {
	readFlags, writeFlags := unix.EV_DELETE, unix.EV_DELETE
	if in&Readable != 0 {
		readFlags = unix.EV_ADD | unix.EV_ONESHOT | unix.EV_CLEAR
	}
	if in&Writable != 0 {
		writeFlags = unix.EV_ADD | unix.EV_ONESHOT | unix.EV_CLEAR
	}
	if err := p.change(fd, unix.EVFILT_READ, readFlags); err != nil {
		return err
	}
	return p.change(fd, unix.EVFILT_WRITE, writeFlags)
}

func (p *kqueuer) change(fd, filter, flags int) error {
	var kev [1]unix.Kevent_t
	unix.SetKevent(&kev[0], fd, filter, flags)
	_, err := unix.Kevent(p.fd, kev[:], nil, nil)
	if err != nil {
		// Deleting a filter that already fired (one-shot) is not an error.
		if flags == unix.EV_DELETE && err == unix.ENOENT {
			return nil
		}
		return os.NewSyscallError("kevent", err)
	}
	return nil
}

func (p *kqueuer) Wait(events []Event, timeout time.Duration) (int, error) {
	if p.fd < 0 {
		return 0, ErrClosed
	}
	if len(events) == 0 {
		return 0, nil
	}
	if cap(p.events) < len(events) {
		p.events = make([]unix.Kevent_t, len(events))
	}
	buf := p.events[:len(events)]

	var ts *unix.Timespec
	if timeout >= 0 {
		t := unix.NsecToTimespec(int64(timeout))
		ts = &t
	}

	n, err := unix.Kevent(p.fd, nil, buf, ts)
	if err != nil {
		if err == unix.EINTR {
			return 0, nil
		}
		return 0, os.NewSyscallError("kevent", err)
	}

	out := 0
	for i := 0; i < n; i++ {
		e := &buf[i]
		fd := int(e.Ident)
		tok, ok := p.tokens[fd]
		if !ok {
			continue
		}
		var in Interest
		switch {
		case e.Flags&unix.EV_ERROR != 0:
			in = Hangup
		case e.Filter == unix.EVFILT_READ:
			// EV_EOF on the read side is a half close; the read reports it.
			in = Readable
		case e.Filter == unix.EVFILT_WRITE:
			in = Writable
			if e.Flags&unix.EV_EOF != 0 {
				in |= Hangup
			}
		}
		events[out] = Event{Token: tok, Interest: in}
		out++
	}
	return out, nil
}

func (p *kqueuer) Close() error {
	if p.fd < 0 {
		return ErrClosed
	}
	err := unix.Close(p.fd)
	p.fd = -1
	p.tokens = nil
	if err != nil {
		return os.NewSyscallError("close", err)
	}
	return nil
}
