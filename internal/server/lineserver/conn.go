package lineserver

import (
	"bytes"
	"errors"
	"io"
	"net"
	"slices"

	"github.com/yndnr/linekv/pkg/netpoll"
)

// DefaultReadChunkBytes is how much spare inbound capacity is offered to
// each read.
const DefaultReadChunkBytes = 4 * 1024

// DefaultMaxReadsPerEvent caps the reads one readable event may perform, so
// a fast sender cannot hold the loop.
const DefaultMaxReadsPerEvent = 16

// ErrLineTooLong is returned by DrainReadable when a frame, or an
// unterminated tail, exceeds the connection's line limit.
var ErrLineTooLong = errors.New("lineserver: line too long")

// Stream is the non-blocking byte stream behind a Conn. Read and Write
// return netpoll.ErrWouldBlock when they cannot make progress; Read
// returns (0, nil) at end-of-stream.
type Stream interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	Close() error
}

// Conn is the per-client state owned by the event loop: the inbound
// accumulator, the outbound queue and the interest to re-arm with.
//
// A Conn is not safe for concurrent use.
type Conn struct {
	stream Stream
	fd     int
	remote net.Addr
	ip     string

	interest netpoll.Interest

	inbound []byte
	// inbound[:scanned] holds no delimiter.
	scanned int

	outbound []byte

	closing bool
	reason  string

	maxLine int
	chunk   int
	// readBudget caps reads per DrainReadable; 0 is unlimited.
	readBudget int

	bytesRead    uint64
	bytesWritten uint64
}

func newConn(stream Stream, fd int, remote net.Addr, maxLine, chunk int) *Conn {
	if maxLine <= 0 {
		maxLine = DefaultMaxLineBytes
	}
	if chunk <= 0 {
		chunk = DefaultReadChunkBytes
	}
	c := &Conn{
		stream:   stream,
		fd:       fd,
		remote:   remote,
		interest: netpoll.Readable,
		maxLine:  maxLine,
		chunk:    chunk,
	}
	if tcp, ok := remote.(*net.TCPAddr); ok {
		c.ip = tcp.IP.String()
	} else if remote != nil {
		c.ip = remote.String()
	}
	return c
}

// DrainReadable reads until the stream would block, or until the read
// budget is spent, and returns every complete command found, in arrival
// order. Readable interest is cleared. Data left in the socket is reported
// again once readable interest is re-armed.
//
// At end-of-stream it returns the commands extracted so far with io.EOF.
// ErrLineTooLong and I/O errors are returned the same way.
func (c *Conn) DrainReadable() ([]Command, error) {
	c.interest &^= netpoll.Readable

	var cmds []Command
	for reads := 0; ; {
		if c.readBudget > 0 && reads == c.readBudget {
			return cmds, nil
		}
		c.inbound = slices.Grow(c.inbound, c.chunk)
		free := c.inbound[len(c.inbound) : len(c.inbound)+c.chunk]

		n, err := c.stream.Read(free)
		reads++
		if n > 0 {
			c.inbound = c.inbound[:len(c.inbound)+n]
			c.bytesRead += uint64(n)

			var extractErr error
			cmds, extractErr = c.extract(cmds)
			if extractErr != nil {
				return cmds, extractErr
			}
		}

		switch {
		case err == nil && n == 0:
			return cmds, io.EOF
		case err == nil:
			continue
		case errors.Is(err, netpoll.ErrWouldBlock):
			return cmds, nil
		default:
			return cmds, err
		}
	}
}

// extract appends one command per complete frame and drops the consumed
// bytes from the front of the accumulator.
func (c *Conn) extract(cmds []Command) ([]Command, error) {
	start := 0
	for {
		i := bytes.IndexByte(c.inbound[c.scanned:], Delimiter)
		if i < 0 {
			break
		}
		end := c.scanned + i
		if end-start > c.maxLine {
			c.inbound, c.scanned = c.inbound[:0], 0
			return cmds, ErrLineTooLong
		}
		cmds = append(cmds, Parse(c.inbound[start:end]))
		start = end + 1
		c.scanned = start
	}

	if start > 0 {
		n := copy(c.inbound, c.inbound[start:])
		c.inbound = c.inbound[:n]
	}
	c.scanned = len(c.inbound)

	if len(c.inbound) > c.maxLine {
		c.inbound, c.scanned = c.inbound[:0], 0
		return cmds, ErrLineTooLong
	}
	return cmds, nil
}

// EnqueueResponse queues b followed by the delimiter and asks for
// writable readiness.
func (c *Conn) EnqueueResponse(b []byte) {
	c.outbound = append(c.outbound, b...)
	c.outbound = append(c.outbound, Delimiter)
	c.interest |= netpoll.Writable
}

func (c *Conn) enqueueValue(v string) {
	c.outbound = append(c.outbound, v...)
	c.outbound = append(c.outbound, Delimiter)
	c.interest |= netpoll.Writable
}

// DrainWritable writes queued output until the queue is empty or the
// stream would block. Unwritten bytes stay queued, in order. Once the
// queue is empty writable interest is cleared.
func (c *Conn) DrainWritable() error {
	sent := 0
	for sent < len(c.outbound) {
		n, err := c.stream.Write(c.outbound[sent:])
		if n > 0 {
			sent += n
			c.bytesWritten += uint64(n)
		}
		if err != nil {
			c.dropSent(sent)
			if errors.Is(err, netpoll.ErrWouldBlock) {
				return nil
			}
			return err
		}
		if n == 0 {
			c.dropSent(sent)
			return io.ErrNoProgress
		}
	}

	c.outbound = c.outbound[:0]
	c.interest &^= netpoll.Writable
	return nil
}

func (c *Conn) dropSent(sent int) {
	if sent == 0 {
		return
	}
	n := copy(c.outbound, c.outbound[sent:])
	c.outbound = c.outbound[:n]
}

// ArmReadable restores readable interest unless the connection is closing.
func (c *Conn) ArmReadable() {
	if !c.closing {
		c.interest |= netpoll.Readable
	}
}

// MarkClosing stops further reads. Queued output is still flushed.
func (c *Conn) MarkClosing() {
	c.closing = true
	c.interest &^= netpoll.Readable
}

// Closing reports whether MarkClosing was called.
func (c *Conn) Closing() bool { return c.closing }

// Interest returns the readiness to register for.
func (c *Conn) Interest() netpoll.Interest { return c.interest }

// Pending returns the number of queued outbound bytes.
func (c *Conn) Pending() int { return len(c.outbound) }

// Fd returns the socket descriptor.
func (c *Conn) Fd() int { return c.fd }

// RemoteAddr returns the peer address.
func (c *Conn) RemoteAddr() net.Addr { return c.remote }

// BytesRead returns the total bytes read from the stream.
func (c *Conn) BytesRead() uint64 { return c.bytesRead }

// BytesWritten returns the total bytes written to the stream.
func (c *Conn) BytesWritten() uint64 { return c.bytesWritten }

// Close closes the underlying stream.
func (c *Conn) Close() error {
	return c.stream.Close()
}
