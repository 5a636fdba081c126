// Package internal holds the websocket plumbing shared by the client.
package internal

import (
	"context"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

// readLimit caps one inbound frame. Board history replays arrive as
// individual events, so this only bounds a single chat line or record.
const readLimit = 1 << 20

// Conn wraps websocket.Conn with timeouts.
type Conn struct {
	ws           *websocket.Conn
	readTimeout  time.Duration
	writeTimeout time.Duration
}

// DialOptions controls Dial.
type DialOptions struct {
	Token            string
	HandshakeTimeout time.Duration
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
}

// Dial opens a websocket to url. A non-empty token is also sent as a
// bearer Authorization header for servers that check it at upgrade time.
func Dial(ctx context.Context, url string, opts DialOptions) (*Conn, error) {
	if opts.HandshakeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.HandshakeTimeout)
		defer cancel()
	}

	var dopts websocket.DialOptions
	if opts.Token != "" {
		dopts.HTTPHeader = http.Header{"Authorization": []string{"Bearer " + opts.Token}}
	}
	ws, _, err := websocket.Dial(ctx, url, &dopts)
	if err != nil {
		return nil, err
	}
	ws.SetReadLimit(readLimit)
	return NewConn(ws, opts.ReadTimeout, opts.WriteTimeout), nil
}

func NewConn(ws *websocket.Conn, readTimeout, writeTimeout time.Duration) *Conn {
	return &Conn{ws: ws, readTimeout: readTimeout, writeTimeout: writeTimeout}
}

// Read returns the next message. Decoding is left to the caller so that a
// malformed frame does not end the read loop.
func (c *Conn) Read(ctx context.Context) ([]byte, error) {
	if c.readTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.readTimeout)
		defer cancel()
	}
	_, data, err := c.ws.Read(ctx)
	return data, err
}

func (c *Conn) Write(ctx context.Context, v any) error {
	if c.writeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.writeTimeout)
		defer cancel()
	}
	return wsjson.Write(ctx, c.ws, v)
}

func (c *Conn) Close(code websocket.StatusCode, reason string) error {
	return c.ws.Close(code, reason)
}

// CloseNow drops the connection without a closing handshake.
func (c *Conn) CloseNow() error {
	return c.ws.CloseNow()
}
