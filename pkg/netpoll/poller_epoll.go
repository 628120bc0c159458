//go:build linux

package netpoll

import (
	"os"
	"time"

	"golang.org/x/sys/unix"
)

type epoller struct {
	fd     int
	events []unix.EpollEvent
}

// New creates an epoll-backed Poller.
func New() (Poller, error) {
	fd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, os.NewSyscallError("epoll_create1", err)
	}
	return &epoller{fd: fd}, nil
}

func (p *epoller) Register(fd int, tok Token, in Interest) error {
	return p.ctl(unix.EPOLL_CTL_ADD, fd, tok, in)
}

func (p *epoller) Reregister(fd int, tok Token, in Interest) error {
	return p.ctl(unix.EPOLL_CTL_MOD, fd, tok, in)
}

func (p *epoller) Deregister(fd int) error {
	if p.fd < 0 {
		return ErrClosed
	}
	// A non-nil event is required by kernels older than 2.6.9.
	var ev unix.EpollEvent
	if err := unix.EpollCtl(p.fd, unix.EPOLL_CTL_DEL, fd, &ev); err != nil {
		return os.NewSyscallError("epoll_ctl", err)
	}
	return nil
}

func (p *epoller) ctl(op, fd int, tok Token, in Interest) error {
	if p.fd < 0 {
		return ErrClosed
	}
	ev := unix.EpollEvent{Events: toEpoll(in) | unix.EPOLLET | unix.EPOLLONESHOT}
	// The 64-bit epoll_data union is split over Fd and Pad.
	ev.Fd = int32(uint32(tok))
	ev.Pad = int32(uint32(tok >> 32))
	if err := unix.EpollCtl(p.fd, op, fd, &ev); err != nil {
		return os.NewSyscallError("epoll_ctl", err)
	}
	return nil
}

func (p *epoller) Wait(events []Event, timeout time.Duration) (int, error) {
	if p.fd < 0 {
		return 0, ErrClosed
	}
	if len(events) == 0 {
		return 0, nil
	}
	if cap(p.events) < len(events) {
		p.events = make([]unix.EpollEvent, len(events))
	}
	buf := p.events[:len(events)]

	msec := -1
	if timeout >= 0 {
		// Round up: a sub-millisecond timeout must not become a busy poll.
		msec = int((timeout + time.Millisecond - 1) / time.Millisecond)
	}

	n, err := unix.EpollWait(p.fd, buf, msec)
	if err != nil {
		if err == unix.EINTR {
			return 0, nil
		}
		return 0, os.NewSyscallError("epoll_wait", err)
	}
	for i := 0; i < n; i++ {
		e := &buf[i]
		events[i] = Event{
			Token:    Token(uint64(uint32(e.Fd)) | uint64(uint32(e.Pad))<<32),
			Interest: fromEpoll(e.Events),
		}
	}
	return n, nil
}

func (p *epoller) Close() error {
	if p.fd < 0 {
		return ErrClosed
	}
	err := unix.Close(p.fd)
	p.fd = -1
	if err != nil {
		return os.NewSyscallError("close", err)
	}
	return nil
}

func toEpoll(in Interest) uint32 {
	var ev uint32
	if in&Readable != 0 {
		ev |= unix.EPOLLIN | unix.EPOLLRDHUP
	}
	if in&Writable != 0 {
		ev |= unix.EPOLLOUT
	}
	return ev
}

func fromEpoll(ev uint32) Interest {
	var in Interest
	// EPOLLRDHUP is a half close: data may still be queued, and the
	// zero-length read that follows reports end-of-stream.
	if ev&(unix.EPOLLIN|unix.EPOLLRDHUP) != 0 {
		in |= Readable
	}
	if ev&unix.EPOLLOUT != 0 {
		in |= Writable
	}
	if ev&(unix.EPOLLHUP|unix.EPOLLERR) != 0 {
		in |= Hangup
	}
	return in
}
