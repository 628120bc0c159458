package connection

import (
	"bufio"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"
)

// DefaultTimeout bounds dialing and each request/reply exchange.
const DefaultTimeout = 5 * time.Second

const errPrefix = "ERR "

// ErrInvalidLine is returned for request lines the protocol cannot carry.
var ErrInvalidLine = errors.New("connection: request line must not contain a newline")

// ServerError is an "ERR ..." reply from the server.
type ServerError struct {
	Reply string
}

func (e *ServerError) Error() string {
	return e.Reply
}

// NotFound reports whether the server had no value for the key.
func (e *ServerError) NotFound() bool {
	return e.Reply == "ERR not found"
}

// Client is a connection to a linekv server. It is not safe for
// concurrent use.
type Client struct {
	addr    string
	timeout time.Duration
	conn    net.Conn
	reader  *bufio.Reader
}

// NewClient creates a client for addr. A timeout of 0 disables deadlines.
func NewClient(addr string, timeout time.Duration) *Client {
	return &Client{addr: addr, timeout: timeout}
}

// Addr returns the server address.
func (c *Client) Addr() string {
	return c.addr
}

// Connect dials the server.
func (c *Client) Connect() error {
	conn, err := net.DialTimeout("tcp", c.addr, c.timeout)
	if err != nil {
		return fmt.Errorf("connect to %s: %w", c.addr, err)
	}
	c.conn = conn
	c.reader = bufio.NewReader(conn)
	return nil
}

// Close closes the connection.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	c.reader = nil
	return err
}

// Execute sends one request line and returns the reply without its
// delimiter. An "ERR ..." reply is returned as a *ServerError.
func (c *Client) Execute(line string) (string, error) {
	if strings.ContainsRune(line, '\n') {
		return "", ErrInvalidLine
	}
	if c.conn == nil {
		if err := c.Connect(); err != nil {
			return "", err
		}
	}
	if c.timeout > 0 {
		if err := c.conn.SetDeadline(time.Now().Add(c.timeout)); err != nil {
			return "", err
		}
	}

	if _, err := c.conn.Write([]byte(line + "\n")); err != nil {
		return "", fmt.Errorf("send: %w", err)
	}

	reply, err := c.reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read reply: %w", err)
	}
	reply = strings.TrimSuffix(reply, "\n")

	if strings.HasPrefix(reply, errPrefix) {
		return "", &ServerError{Reply: reply}
	}
	return reply, nil
}

// Get returns the value stored under key.
func (c *Client) Get(key string) (string, error) {
	return c.Execute("GET " + key)
}

// Put stores value under key.
func (c *Client) Put(key, value string) error {
	_, err := c.Execute("PUT " + key + " " + value)
	return err
}
