package whiteboard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

// frame is an envelope as seen by the server.
type frame struct {
	Type  string          `json:"type"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// fakeServer accepts websocket clients and hands every frame to the test.
type fakeServer struct {
	t      *testing.T
	srv    *httptest.Server
	frames chan frame
	conns  chan *websocket.Conn
}

func newFakeServer(t *testing.T) *fakeServer {
	t.Helper()
	fs := &fakeServer{
		t:      t,
		frames: make(chan frame, 64),
		conns:  make(chan *websocket.Conn, 4),
	}
	fs.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer c.CloseNow()
		fs.conns <- c
		for {
			var f frame
			if err := wsjson.Read(r.Context(), c, &f); err != nil {
				return
			}
			fs.frames <- f
		}
	}))
	t.Cleanup(fs.srv.Close)
	return fs
}

func (fs *fakeServer) url() string {
	return "ws" + strings.TrimPrefix(fs.srv.URL, "http")
}

// next waits for the next frame from any client.
func (fs *fakeServer) next() frame {
	fs.t.Helper()
	select {
	case f := <-fs.frames:
		return f
	case <-time.After(2 * time.Second):
		fs.t.Fatalf("timed out waiting for a frame")
		return frame{}
	}
}

// accept waits for the next client connection.
func (fs *fakeServer) accept() *websocket.Conn {
	fs.t.Helper()
	select {
	case c := <-fs.conns:
		return c
	case <-time.After(2 * time.Second):
		fs.t.Fatalf("timed out waiting for a connection")
		return nil
	}
}

// emit sends one server event to c.
func (fs *fakeServer) emit(c *websocket.Conn, event string, data any) {
	fs.t.Helper()
	raw, err := json.Marshal(data)
	if err != nil {
		fs.t.Fatalf("marshal: %v", err)
	}
	fs.emitRaw(c, Outbound{Type: outboundEvent, Event: event, Data: raw})
}

func (fs *fakeServer) emitRaw(c *websocket.Conn, out Outbound) {
	fs.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := wsjson.Write(ctx, c, out); err != nil {
		fs.t.Fatalf("server write: %v", err)
	}
}

// client returns an unconnected client pointed at the server.
func (fs *fakeServer) client(mut func(*Config)) *Client {
	cfg := DefaultConfig()
	cfg.URL = fs.url()
	cfg.User = "tester"
	if mut != nil {
		mut(&cfg)
	}
	return NewClient(&cfg)
}

// connect returns a connected client whose hello has been consumed.
func (fs *fakeServer) connect(mut func(*Config)) (*Client, *websocket.Conn) {
	fs.t.Helper()
	c := fs.client(mut)
	return c, fs.start(c)
}

// start connects c and consumes its hello.
func (fs *fakeServer) start(c *Client) *websocket.Conn {
	fs.t.Helper()
	if err := c.Connect(context.Background()); err != nil {
		fs.t.Fatalf("connect: %v", err)
	}
	fs.t.Cleanup(func() { _ = c.Close() })
	conn := fs.accept()
	if f := fs.next(); f.Type != inboundHello {
		fs.t.Fatalf("expected hello, got %+v", f)
	}
	return conn
}

func waitFor[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out")
		var zero T
		return zero
	}
}
