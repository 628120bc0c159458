//go:build linux || darwin || freebsd

package netpoll

import (
	"fmt"
	"net"
	"os"

	"golang.org/x/sys/unix"
)

// Listener is a non-blocking TCP listening socket.
type Listener struct {
	fd   int
	addr *net.TCPAddr
}

// Listen binds a non-blocking TCP listener on addr ("host:port").
func Listen(addr string, backlog int) (*Listener, error) {
	tcpAddr, err := net.ResolveTCPAddr("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", addr, err)
	}
	family, sa, err := sockaddr(tcpAddr)
	if err != nil {
		return nil, err
	}
	if backlog <= 0 {
		backlog = unix.SOMAXCONN
	}

	fd, err := unix.Socket(family, unix.SOCK_STREAM, unix.IPPROTO_TCP)
	if err != nil {
		return nil, os.NewSyscallError("socket", err)
	}
	ln := &Listener{fd: fd}
	if err := ln.setup(sa, backlog); err != nil {
		unix.Close(fd)
		return nil, err
	}
	return ln, nil
}

func (l *Listener) setup(sa unix.Sockaddr, backlog int) error {
	unix.CloseOnExec(l.fd)
	if err := unix.SetNonblock(l.fd, true); err != nil {
		return os.NewSyscallError("setnonblock", err)
	}
	if err := unix.SetsockoptInt(l.fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		return os.NewSyscallError("setsockopt", err)
	}
	if err := unix.Bind(l.fd, sa); err != nil {
		return os.NewSyscallError("bind", err)
	}
	if err := unix.Listen(l.fd, backlog); err != nil {
		return os.NewSyscallError("listen", err)
	}
	bound, err := unix.Getsockname(l.fd)
	if err != nil {
		return os.NewSyscallError("getsockname", err)
	}
	l.addr = tcpAddrOf(bound)
	return nil
}

// Fd returns the listening descriptor for poller registration.
func (l *Listener) Fd() int { return l.fd }

// Addr returns the bound address, with the kernel-chosen port if 0 was asked.
func (l *Listener) Addr() net.Addr { return l.addr }

// Accept takes one pending connection. It returns ErrWouldBlock when the
// backlog is empty. Other errors, such as EMFILE, leave the connection
// queued.
func (l *Listener) Accept() (*Socket, net.Addr, error) {
	if l.fd < 0 {
		return nil, nil, ErrClosed
	}
	for {
		fd, sa, err := accept(l.fd)
		switch {
		case err == nil:
			// Small response lines must not wait for Nagle.
			_ = unix.SetsockoptInt(fd, unix.IPPROTO_TCP, unix.TCP_NODELAY, 1)
			return &Socket{fd: fd}, tcpAddrOf(sa), nil
		case err == unix.EINTR, err == unix.ECONNABORTED:
			// Aborted: the peer reset before we got to it. Try the next one.
			continue
		case err == unix.EAGAIN:
			return nil, nil, ErrWouldBlock
		default:
			return nil, nil, os.NewSyscallError("accept", err)
		}
	}
}

// Close closes the listening descriptor.
func (l *Listener) Close() error {
	if l.fd < 0 {
		return ErrClosed
	}
	err := unix.Close(l.fd)
	l.fd = -1
	if err != nil {
		return os.NewSyscallError("close", err)
	}
	return nil
}

// Socket is a non-blocking connected stream.
type Socket struct {
	fd int
}

// Fd returns the descriptor for poller registration.
func (s *Socket) Fd() int { return s.fd }

// Read reads into p. It returns ErrWouldBlock when no data is queued and
// (0, nil) at end-of-stream.
func (s *Socket) Read(p []byte) (int, error) {
	for {
		n, err := unix.Read(s.fd, p)
		switch {
		case err == nil:
			return n, nil
		case err == unix.EINTR:
			continue
		case err == unix.EAGAIN:
			return 0, ErrWouldBlock
		default:
			return 0, os.NewSyscallError("read", err)
		}
	}
}

// Write writes from p. It returns ErrWouldBlock, possibly after a short
// count, when the send buffer is full.
func (s *Socket) Write(p []byte) (int, error) {
	for {
		n, err := unix.Write(s.fd, p)
		switch {
		case err == nil:
			return n, nil
		case err == unix.EINTR:
			continue
		case err == unix.EAGAIN:
			return 0, ErrWouldBlock
		default:
			return 0, os.NewSyscallError("write", err)
		}
	}
}

// Close closes the descriptor. Deregister it from the poller first.
func (s *Socket) Close() error {
	if s.fd < 0 {
		return ErrClosed
	}
	err := unix.Close(s.fd)
	s.fd = -1
	if err != nil {
		return os.NewSyscallError("close", err)
	}
	return nil
}

func sockaddr(addr *net.TCPAddr) (int, unix.Sockaddr, error) {
	if addr.IP == nil || (addr.IP.IsUnspecified() && addr.IP.To4() != nil) {
		return unix.AF_INET, &unix.SockaddrInet4{Port: addr.Port}, nil
	}
	if ip4 := addr.IP.To4(); ip4 != nil {
		sa := &unix.SockaddrInet4{Port: addr.Port}
		copy(sa.Addr[:], ip4)
		return unix.AF_INET, sa, nil
	}
	if ip6 := addr.IP.To16(); ip6 != nil {
		sa := &unix.SockaddrInet6{Port: addr.Port}
		copy(sa.Addr[:], ip6)
		return unix.AF_INET6, sa, nil
	}
	return 0, nil, fmt.Errorf("netpoll: unsupported address %s", addr)
}

func tcpAddrOf(sa unix.Sockaddr) *net.TCPAddr {
	switch sa := sa.(type) {
	case *unix.SockaddrInet4:
		return &net.TCPAddr{IP: net.IP(sa.Addr[:]).To16(), Port: sa.Port}
	case *unix.SockaddrInet6:
		return &net.TCPAddr{IP: net.IP(sa.Addr[:]), Port: sa.Port}
	default:
		return &net.TCPAddr{}
	}
}
