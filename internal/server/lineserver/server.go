package lineserver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/yndnr/linekv/internal/telemetry/metric"
	"github.com/yndnr/linekv/pkg/netpoll"
)

// ErrServerClosed is returned by Listen and Serve after Shutdown.
var ErrServerClosed = errors.New("lineserver: server closed")

// listenerToken is the poller token of the listening socket. Handles are
// never 0, so it cannot collide with a connection.
const listenerToken netpoll.Token = 0

// DefaultMaxPendingBytes is the outbound backlog at which a client stops
// being read.
const DefaultMaxPendingBytes = 4 << 20

// Config holds the line server configuration.
type Config struct {
	// Address is the TCP listen address (default: 127.0.0.1:7070).
	Address string
	// Backlog is the listen backlog. 0 uses the system maximum.
	Backlog int
	// MaxConnections caps registered clients (default: 10000).
	// Set to 0 for no limit.
	MaxConnections int
	// MaxLineBytes bounds a single request line (default: 4096).
	MaxLineBytes int
	// ReadChunkBytes is the read step of the inbound accumulator (default: 4096).
	ReadChunkBytes int
	// MaxReadsPerEvent caps reads per readable event (default: 16).
	MaxReadsPerEvent int
	// MaxPendingBytes pauses reading from a client while this many response
	// bytes are still queued for it (default: 4MB).
	MaxPendingBytes int
	// EventBatchSize is the maximum number of events per poll (default: 256).
	EventBatchSize int
	// PollTimeout bounds each poll so shutdown is noticed (default: 200ms).
	PollTimeout time.Duration
	// RateLimit is the maximum number of commands per second per IP (default: 0).
	// Set to 0 to disable rate limiting.
	RateLimit int
	// RateBurst is the token bucket depth. 0 uses RateLimit.
	RateBurst int
	// RateLimitClients bounds how many IPs are tracked (default: 1024).
	RateLimitClients int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Address:          "127.0.0.1:7070",
		MaxConnections:   10000,
		MaxLineBytes:     DefaultMaxLineBytes,
		ReadChunkBytes:   DefaultReadChunkBytes,
		MaxReadsPerEvent: DefaultMaxReadsPerEvent,
		MaxPendingBytes:  DefaultMaxPendingBytes,
		EventBatchSize:   256,
		PollTimeout:      200 * time.Millisecond,
		RateLimitClients: DefaultRateLimitClients,
	}
}

// Store is the key-value map the server applies commands to. It is only
// called from the event loop goroutine.
type Store interface {
	Get(key string) (string, bool)
	Put(key, value string)
	Len() int
}

// Server is the event-loop line protocol server.
type Server struct {
	cfg     *Config
	store   Store
	metrics *metric.Registry
	logger  *slog.Logger
	limiter *ipLimiter

	listener *netpoll.Listener
	poller   netpoll.Poller
	conns    *Registry
	events   []netpoll.Event
	accepts  acceptGate

	addr atomic.Pointer[net.TCPAddr]

	running  atomic.Bool
	stopping atomic.Bool
	release  sync.Once
	done     chan struct{}

	errMu sync.Mutex
	err   error
}

// New creates a line server. A nil metrics registry gets a private one.
func New(cfg *Config, store Store, metrics *metric.Registry, logger *slog.Logger) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if metrics == nil {
		metrics = metric.NewRegistry()
	}
	if logger == nil {
		logger = slog.Default()
	}

	c := *cfg
	def := DefaultConfig()
	if c.MaxLineBytes <= 0 {
		c.MaxLineBytes = def.MaxLineBytes
	}
	if c.ReadChunkBytes <= 0 {
		c.ReadChunkBytes = def.ReadChunkBytes
	}
	if c.MaxReadsPerEvent <= 0 {
		c.MaxReadsPerEvent = def.MaxReadsPerEvent
	}
	if c.MaxPendingBytes <= 0 {
		c.MaxPendingBytes = def.MaxPendingBytes
	}
	if c.EventBatchSize <= 0 {
		c.EventBatchSize = def.EventBatchSize
	}
	if c.PollTimeout <= 0 {
		c.PollTimeout = def.PollTimeout
	}

	return &Server{
		cfg:     &c,
		store:   store,
		metrics: metrics,
		logger:  logger.With("component", "lineserver"),
		limiter: newIPLimiter(c.RateLimit, c.RateBurst, c.RateLimitClients),
		conns:   NewRegistry(),
		events:  make([]netpoll.Event, c.EventBatchSize),
		done:    make(chan struct{}),
	}
}

// Listen binds the listening socket and creates the poller. Serve calls it
// when it has not been called yet.
func (s *Server) Listen() error {
	if s.stopping.Load() {
		return ErrServerClosed
	}
	if s.listener != nil {
		return nil
	}

	ln, err := netpoll.Listen(s.cfg.Address, s.cfg.Backlog)
	if err != nil {
		return fmt.Errorf("lineserver: listen on %s: %w", s.cfg.Address, err)
	}
	p, err := netpoll.New()
	if err != nil {
		_ = ln.Close()
		return fmt.Errorf("lineserver: create poller: %w", err)
	}
	if err := p.Register(ln.Fd(), listenerToken, netpoll.Readable); err != nil {
		_ = p.Close()
		_ = ln.Close()
		return fmt.Errorf("lineserver: register listener: %w", err)
	}

	s.listener, s.poller = ln, p
	if tcp, ok := ln.Addr().(*net.TCPAddr); ok {
		s.addr.Store(tcp)
	}
	return nil
}

// Serve runs the event loop on the calling goroutine until ctx is done or
// Shutdown is called. It returns nil on a requested stop and an error when
// polling fails.
func (s *Server) Serve(ctx context.Context) error {
	if err := s.Listen(); err != nil {
		return err
	}
	if !s.running.CompareAndSwap(false, true) {
		return errors.New("lineserver: already serving")
	}

	s.logger.Info("line server listening", "address", s.Addr().String())

	err := s.loop(ctx)
	s.closeAll()
	s.setErr(err)
	if err != nil {
		s.logger.Error("line server stopped", "error", err)
	} else {
		s.logger.Info("line server stopped")
	}
	return err
}

// Start binds synchronously and runs Serve on a new goroutine.
func (s *Server) Start(ctx context.Context) error {
	if err := s.Listen(); err != nil {
		return err
	}
	go func() {
		_ = s.Serve(ctx)
	}()
	return nil
}

// Shutdown stops the loop and waits for it to close every connection.
func (s *Server) Shutdown(ctx context.Context) error {
	s.stopping.Store(true)
	if !s.running.Load() {
		s.closeAll()
		return nil
	}

	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Addr returns the bound address, or nil before Listen.
func (s *Server) Addr() net.Addr {
	if a := s.addr.Load(); a != nil {
		return a
	}
	return nil
}

// Done is closed once the server has released its sockets.
func (s *Server) Done() <-chan struct{} {
	return s.done
}

// Err returns the error that stopped Serve, if any.
func (s *Server) Err() error {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.err
}

func (s *Server) setErr(err error) {
	s.errMu.Lock()
	s.err = err
	s.errMu.Unlock()
}

func (s *Server) loop(ctx context.Context) error {
	for {
		if s.stopping.Load() || ctx.Err() != nil {
			return nil
		}

		if s.accepts.due(time.Now()) {
			s.accepts.resume()
			if err := s.armListener(); err != nil {
				return err
			}
		}

		n, err := s.poller.Wait(s.events, s.accepts.timeout(time.Now(), s.cfg.PollTimeout))
		if err != nil {
			return fmt.Errorf("lineserver: poll: %w", err)
		}
		if n == 0 {
			continue
		}
		s.metrics.PollBatchSize.Observe(float64(n))

		for _, ev := range s.events[:n] {
			if ev.Token == listenerToken {
				if err := s.acceptPending(); err != nil {
					delay := s.accepts.pause(time.Now())
					s.logger.Warn("accept failed, pausing accepts", "error", err, "retry_in", delay)
					continue
				}
				s.accepts.reset()
				if err := s.armListener(); err != nil {
					return err
				}
				continue
			}

			h := Handle(ev.Token)
			c := s.conns.Get(h)
			if c == nil {
				s.logger.Debug("event for stale handle", "conn", h.String())
				continue
			}
			s.service(h, c, ev.Interest)
		}
	}
}

func (s *Server) armListener() error {
	if err := s.poller.Reregister(s.listener.Fd(), listenerToken, netpoll.Readable); err != nil {
		return fmt.Errorf("lineserver: rearm listener: %w", err)
	}
	return nil
}

// acceptPending accepts until the backlog is empty. Any other accept error
// is returned and the listener is left disarmed.
func (s *Server) acceptPending() error {
	for {
		sock, remote, err := s.listener.Accept()
		if errors.Is(err, netpoll.ErrWouldBlock) {
			return nil
		}
		if err != nil {
			return err
		}

		if s.cfg.MaxConnections > 0 && s.conns.Len() >= s.cfg.MaxConnections {
			s.reject(sock, remote)
			continue
		}

		c := newConn(sock, sock.Fd(), remote, s.cfg.MaxLineBytes, s.cfg.ReadChunkBytes)
		c.readBudget = s.cfg.MaxReadsPerEvent
		h := s.conns.Insert(c)
		if err := s.poller.Register(sock.Fd(), netpoll.Token(h), c.Interest()); err != nil {
			s.conns.Remove(h)
			_ = sock.Close()
			s.logger.Warn("register connection failed", "remote", remote.String(), "error", err)
			continue
		}

		s.metrics.ConnectionsAccepted.Inc()
		s.metrics.ConnectionsActive.Set(float64(s.conns.Len()))
		s.logger.Debug("connection accepted", "conn", h.String(), "remote", remote.String())
	}
}

// reject writes one best-effort error line and closes sock.
func (s *Server) reject(sock *netpoll.Socket, remote net.Addr) {
	line := make([]byte, 0, len(respMaxClients)+1)
	line = append(append(line, respMaxClients...), Delimiter)
	s.metrics.ConnectionsRejected.Inc()
	_, _ = sock.Write(line)
	_ = sock.Close()

	s.logger.Warn("connection rejected", "remote", remote.String(), "max_connections", s.cfg.MaxConnections)
}

// service handles one readiness event for a client connection.
func (s *Server) service(h Handle, c *Conn, in netpoll.Interest) {
	if in.Has(netpoll.Readable) && !c.Closing() {
		before := c.BytesRead()
		cmds, err := c.DrainReadable()
		s.metrics.BytesRead.Add(float64(c.BytesRead() - before))

		for _, cmd := range cmds {
			s.apply(c, cmd)
		}

		switch {
		case err == nil:
		case errors.Is(err, io.EOF):
			c.MarkClosing()
			c.reason = metric.ReasonPeerClosed
		case errors.Is(err, ErrLineTooLong):
			c.EnqueueResponse(respLineTooLong)
			c.MarkClosing()
			c.reason = metric.ReasonProtocol
			s.metrics.Commands.WithLabelValues(OpMalformed.String(), "too_long").Inc()
			s.logger.Warn("line too long", "conn", h.String(), "remote", c.RemoteAddr().String(),
				"max_line_bytes", s.cfg.MaxLineBytes)
		default:
			s.teardown(h, c, metric.ReasonIOError, err)
			return
		}
	}

	if in.Has(netpoll.Hangup) {
		s.teardown(h, c, metric.ReasonHangup, nil)
		return
	}

	if c.Pending() > 0 {
		before := c.BytesWritten()
		err := c.DrainWritable()
		s.metrics.BytesWritten.Add(float64(c.BytesWritten() - before))
		if err != nil {
			s.teardown(h, c, metric.ReasonIOError, err)
			return
		}
	}

	s.rearm(h, c)
}

// apply runs one command against the store and queues its response.
func (s *Server) apply(c *Conn, cmd Command) {
	op := cmd.Op.String()

	if !s.limiter.allow(c.ip) {
		c.EnqueueResponse(respRateLimited)
		s.metrics.Commands.WithLabelValues(op, "rate_limited").Inc()
		return
	}

	switch cmd.Op {
	case OpGet:
		if v, ok := s.store.Get(cmd.Key); ok {
			c.enqueueValue(v)
			s.metrics.Commands.WithLabelValues(op, "hit").Inc()
		} else {
			c.EnqueueResponse(respNotFound)
			s.metrics.Commands.WithLabelValues(op, "miss").Inc()
		}
	case OpPut:
		s.store.Put(cmd.Key, cmd.Value)
		c.EnqueueResponse(respOK)
		s.metrics.Commands.WithLabelValues(op, "ok").Inc()
		s.metrics.StoreKeys.Set(float64(s.store.Len()))
		if s.logger.Enabled(context.Background(), slog.LevelDebug) {
			// The logger masks "value" down to its size.
			s.logger.Debug("put", "remote", c.RemoteAddr().String(), "key", cmd.Key, "value", cmd.Value)
		}
	default:
		c.EnqueueResponse(respInvalid)
		s.metrics.Commands.WithLabelValues(op, "invalid").Inc()
	}
}

// rearm re-registers c, or tears it down once a closing connection has
// flushed everything. A client with MaxPendingBytes queued is only watched
// for writability until the backlog drains.
func (s *Server) rearm(h Handle, c *Conn) {
	if c.Closing() && c.Pending() == 0 {
		s.teardown(h, c, c.reason, nil)
		return
	}

	if c.Pending() < s.cfg.MaxPendingBytes {
		c.ArmReadable()
	}
	if err := s.poller.Reregister(c.Fd(), netpoll.Token(h), c.Interest()); err != nil {
		s.teardown(h, c, metric.ReasonIOError, err)
	}
}

func (s *Server) teardown(h Handle, c *Conn, reason string, cause error) {
	if err := s.poller.Deregister(c.Fd()); err != nil {
		s.logger.Debug("deregister failed", "conn", h.String(), "error", err)
	}
	s.conns.Remove(h)

	if reason == "" {
		reason = metric.ReasonPeerClosed
	}
	s.metrics.ConnectionsClosed.WithLabelValues(reason).Inc()
	s.metrics.ConnectionsActive.Set(float64(s.conns.Len()))

	if err := c.Close(); err != nil {
		s.logger.Debug("close failed", "conn", h.String(), "error", err)
	}

	attrs := []any{"conn", h.String(), "remote", c.RemoteAddr().String(), "reason", reason}
	if cause != nil {
		attrs = append(attrs, "error", cause)
	}
	s.logger.Debug("connection closed", attrs...)
}

// closeAll tears down every connection, then the listener and the poller.
// Only the first call does anything.
func (s *Server) closeAll() {
	s.release.Do(func() {
		defer close(s.done)
		if s.poller == nil {
			return
		}

		var handles []Handle
		s.conns.Range(func(h Handle, _ *Conn) bool {
			handles = append(handles, h)
			return true
		})
		for _, h := range handles {
			s.teardown(h, s.conns.Get(h), metric.ReasonShutdown, nil)
		}

		_ = s.poller.Deregister(s.listener.Fd())
		if err := s.listener.Close(); err != nil {
			s.logger.Warn("close listener failed", "error", err)
		}
		if err := s.poller.Close(); err != nil {
			s.logger.Warn("close poller failed", "error", err)
		}
	})
}
