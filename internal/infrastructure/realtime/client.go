package realtime

import (
	"context"
	"time"

	"github.com/avocado/teamhub/internal/domain/identity"
	"nhooyr.io/websocket"
)

// Client is one websocket connection of an authenticated user
type Client struct {
	conn    *websocket.Conn
	send    chan []byte
	session identity.Session
}

// NewClient wraps a connection; bufferSize bounds the pending outbound frames
func NewClient(conn *websocket.Conn, session identity.Session, bufferSize int) *Client {
	if bufferSize <= 0 {
		bufferSize = 32
	}
	return &Client{
		conn:    conn,
		send:    make(chan []byte, bufferSize),
		session: session,
	}
}

// Session returns the authenticated caller
func (c *Client) Session() identity.Session {
	return c.session
}

// writeLoop drains the send channel and pings the peer.
// It returns when the hub closes the channel, a write fails, or ctx ends.
func (c *Client) writeLoop(ctx context.Context, writeTimeout, pingInterval time.Duration) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-c.send:
			if !ok {
				_ = c.conn.Close(websocket.StatusPolicyViolation, "connection too slow")
				return
			}
			wctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := c.conn.Write(wctx, websocket.MessageText, msg)
			cancel()
			if err != nil {
				return
			}
		case <-ticker.C:
			pctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := c.conn.Ping(pctx)
			cancel()
			if err != nil {
				return
			}
		}
	}
}
