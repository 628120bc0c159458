// Package netpoll provides a thin readiness-notification driver for linekv.
//
// It wraps the operating system primitive directly through golang.org/x/sys/unix
// instead of the Go runtime netpoller, so that the caller owns connection identity
// and interest registration:
//
//   - poller_epoll.go: epoll backend (linux)
//   - poller_kqueue.go: kqueue backend (darwin, freebsd)
//   - socket.go: non-blocking TCP listener and stream sockets on raw descriptors
//
// Every registration is edge-triggered and one-shot: after an event for a
// descriptor is delivered by Wait, nothing more is reported for it until the
// caller calls Reregister.
//
// Usage:
//
//	p, _ := netpoll.New()
//	ln, _ := netpoll.Listen("127.0.0.1:7070", 128)
//	_ = p.Register(ln.Fd(), 0, netpoll.Readable)
//	events := make([]netpoll.Event, 128)
//	n, _ := p.Wait(events, 200*time.Millisecond)
//
// A Poller is not safe for concurrent use; it belongs to one event loop.
package netpoll
