package connection

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/yndnr/respkv/pkg/resp"
)

// DefaultTimeout bounds dialing and each request/reply exchange.
const DefaultTimeout = 5 * time.Second

// ErrNotConnected is returned by Do after Close.
var ErrNotConnected = errors.New("connection: not connected")

// Client speaks RESP to a single server over TCP. It is not safe for
// concurrent use.
type Client struct {
	addr    string
	timeout time.Duration
	conn    net.Conn
	r       *resp.Reader
	closed  bool
}

// NewClient creates a client for addr. A zero timeout means DefaultTimeout.
func NewClient(addr string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{addr: addr, timeout: timeout}
}

// Addr returns the server address.
func (c *Client) Addr() string {
	return c.addr
}

// Connect dials the server. Do connects lazily, so calling Connect is
// only needed to surface dial errors early.
func (c *Client) Connect(ctx context.Context) error {
	if c.conn != nil {
		return nil
	}
	d := net.Dialer{Timeout: c.timeout}
	conn, err := d.DialContext(ctx, "tcp", c.addr)
	if err != nil {
		return fmt.Errorf("connect %s: %w", c.addr, err)
	}
	c.conn = conn
	c.r = resp.NewReader(conn)
	c.closed = false
	return nil
}

// Close closes the connection.
func (c *Client) Close() error {
	c.closed = true
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn, c.r = nil, nil
	return err
}

// Do sends one command and returns the reply. Error replies are returned
// as values; the returned error covers transport and framing failures,
// after which the connection is dropped.
func (c *Client) Do(ctx context.Context, args ...string) (resp.Value, error) {
	if c.closed {
		return resp.Value{}, ErrNotConnected
	}
	if err := c.Connect(ctx); err != nil {
		return resp.Value{}, err
	}

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := c.conn.SetDeadline(deadline); err != nil {
		return resp.Value{}, c.fail(err)
	}

	if _, err := c.conn.Write(resp.Encode(resp.Command(args...))); err != nil {
		return resp.Value{}, c.fail(fmt.Errorf("send: %w", err))
	}
	v, err := c.r.ReadValue()
	if err != nil {
		return resp.Value{}, c.fail(fmt.Errorf("read reply: %w", err))
	}
	return v.Clone(), nil
}

func (c *Client) fail(err error) error {
	_ = c.conn.Close()
	c.conn, c.r = nil, nil
	return err
}
