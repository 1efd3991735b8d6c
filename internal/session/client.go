package session

import (
	"net"
	"sync"

	"github.com/Andromalius22/Nexora/internal/players"
	"github.com/Andromalius22/Nexora/pkg/frame"
	"golang.org/x/time/rate"
)

// Client :
// One accepted connection. A client is written to by its own
// session goroutine and by tick-driven pushes targeting its
// player; the send mutex serializes those framed writes so a
// header and its payload never interleave with another frame.
//
// The `limiter` bounds the rate of inbound commands. Commands
// beyond the budget are dropped with a warning; the connection
// survives.
type Client struct {
	conn    net.Conn
	codec   *frame.Codec
	player  *players.Player
	limiter *rate.Limiter

	sendLock sync.Mutex
}

// Inbound command budget: sustained rate and burst.
const (
	commandRate  = 20
	commandBurst = 40
)

// newClient :
// Wraps an accepted connection with its codec and command
// rate limiter.
func newClient(conn net.Conn, maxFrameSize uint32) *Client {
	return &Client{
		conn:    conn,
		codec:   frame.NewCodec(conn).WithMaxFrameSize(maxFrameSize),
		limiter: rate.NewLimiter(rate.Limit(commandRate), commandBurst),
	}
}

// Send :
// Writes one framed message to the client under the send
// mutex.
//
// The `v` defines the payload to frame.
//
// Returns any error from the codec.
func (c *Client) Send(v interface{}) error {
	c.sendLock.Lock()
	defer c.sendLock.Unlock()

	return c.codec.Write(v)
}

// Close : Closes the underlying connection.
func (c *Client) Close() {
	c.conn.Close()
}
