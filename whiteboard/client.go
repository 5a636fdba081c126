// Package whiteboard is a client SDK for collaborative whiteboard servers:
// it streams stroke records, board clears and chat lines over a websocket.
package whiteboard

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"math"
	"slices"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/vovakirdan/whiteboard-sdk-go/whiteboard/internal"
	"github.com/vovakirdan/whiteboard-sdk-go/whiteboard/rest"
	"github.com/vovakirdan/whiteboard-sdk-go/whiteboard/stroke"
)

// Client provides high-level SDK for a whiteboard server.
type Client struct {
	cfg        Config
	writeCh    chan Inbound
	dispatcher Dispatcher

	// REST is set when Config.RESTBaseURL is not empty.
	REST *rest.Client

	life context.Context
	stop context.CancelFunc

	mu      sync.Mutex
	logger  Logger
	state   ConnectionState
	link    *link
	gen     uint64 // id of the newest link
	onState func(StateEvent)

	// joinMu orders Join/Leave against the re-join that follows a reconnect.
	joinMu sync.Mutex
	boards []string
}

// link is one live websocket and the loops serving it.
type link struct {
	conn   *internal.Conn
	cancel context.CancelFunc
	gen    uint64
	once   sync.Once
}

// NewClient constructs a client with provided config. A nil config means
// DefaultConfig(). Set a timeout to 0 to disable it.
func NewClient(cfg *Config) *Client {
	c := DefaultConfig()
	if cfg != nil {
		c = *cfg
	}
	life, stop := context.WithCancel(context.Background())
	client := &Client{
		cfg:     c,
		logger:  noopLogger{},
		writeCh: make(chan Inbound, max(c.QueueSize, 0)),
		life:    life,
		stop:    stop,
	}
	if c.RESTBaseURL != "" {
		client.REST = rest.NewClient(c.RESTBaseURL)
		client.REST.SetToken(c.Token)
	}
	return client
}

// SetLogger overrides logger (optional). It may be called at any time.
func (c *Client) SetLogger(l Logger) {
	if l == nil {
		return
	}
	c.mu.Lock()
	c.logger = l
	c.mu.Unlock()
	c.dispatcher.SetLogger(l)
}

func (c *Client) log() Logger {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.logger
}

// Config returns a copy of the client configuration.
func (c *Client) Config() Config { return c.cfg }

// OnStroke registers callback for draw events. Malformed records are
// reported to OnError instead.
func (c *Client) OnStroke(fn func(stroke.Record)) { c.dispatcher.SetOnStroke(fn) }

// OnClear registers callback for clear_board events.
func (c *Client) OnClear(fn func(ClearEvent)) { c.dispatcher.SetOnClear(fn) }

// OnChat registers callback for chat_message events.
func (c *Client) OnChat(fn func(ChatMessage)) { c.dispatcher.SetOnChat(fn) }

// OnError registers callback for errors.
func (c *Client) OnError(fn func(error)) { c.dispatcher.SetOnError(fn) }

// OnStateChanged registers callback for connection state transitions.
func (c *Client) OnStateChanged(fn func(StateEvent)) {
	c.mu.Lock()
	c.onState = fn
	c.mu.Unlock()
}

// State returns the current connection state.
func (c *Client) State() ConnectionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// linkState returns the state together with the id of the newest link.
func (c *Client) linkState() (ConnectionState, uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state, c.gen
}

// Boards returns the boards joined so far, in join order.
func (c *Client) Boards() []string {
	c.joinMu.Lock()
	defer c.joinMu.Unlock()
	return slices.Clone(c.boards)
}

// Connect dials the server, sends hello, and starts internal loops.
func (c *Client) Connect(ctx context.Context) error {
	if err := c.cfg.Validate(); err != nil {
		return err
	}

	c.mu.Lock()
	switch {
	case c.state.Active():
		c.mu.Unlock()
		return NewError(ErrorConnection, "already connected")
	case c.state == StateClosed:
		c.mu.Unlock()
		return NewError(ErrorDisconnected, "client closed")
	}
	c.mu.Unlock()
	c.setState(StateConnecting, nil)

	conn, err := c.dial(ctx)
	if err != nil {
		c.setState(StateError, err)
		return err
	}
	c.attach(conn)()
	return nil
}

// Join subscribes to a board. Joined boards are joined again after a
// reconnect; while reconnecting the board is only remembered.
func (c *Client) Join(ctx context.Context, board string) error {
	c.joinMu.Lock()
	defer c.joinMu.Unlock()
	if state, gen := c.linkState(); state != StateReconnecting {
		if err := c.send(ctx, Inbound{Type: inboundJoin, Data: JoinPayload{BoardID: board}, gen: gen}); err != nil {
			return err
		}
	}
	if !slices.Contains(c.boards, board) {
		c.boards = append(c.boards, board)
	}
	return nil
}

// Leave unsubscribes from a board.
func (c *Client) Leave(ctx context.Context, board string) error {
	c.joinMu.Lock()
	defer c.joinMu.Unlock()
	if state, gen := c.linkState(); state != StateReconnecting {
		if err := c.send(ctx, Inbound{Type: inboundLeave, Data: JoinPayload{BoardID: board}, gen: gen}); err != nil {
			return err
		}
	}
	c.boards = slices.DeleteFunc(c.boards, func(b string) bool { return b == board })
	return nil
}

// SendStroke publishes a stroke record. Invalid records are rejected
// before they are queued.
func (c *Client) SendStroke(ctx context.Context, r stroke.Record) error {
	if err := stroke.Validate(r); err != nil {
		return WrapError(ErrorInvalidRecord, "refusing to send stroke", err)
	}
	return c.send(ctx, Inbound{Type: inboundEvent, Event: EventDraw, Data: r})
}

// EmitStroke implements stroke.Emitter.
func (c *Client) EmitStroke(ctx context.Context, r stroke.Record) error {
	return c.SendStroke(ctx, r)
}

// ClearBoard asks every participant of board to wipe their canvas.
func (c *Client) ClearBoard(ctx context.Context, board string) error {
	return c.send(ctx, Inbound{Type: inboundEvent, Event: EventClear, Data: ClearEvent{BoardID: board}})
}

// SendChat posts a chat line to board as Config.User. The text is
// trimmed; blank messages are rejected.
func (c *Client) SendChat(ctx context.Context, board, text string) error {
	msg, err := normalizeChat(ChatMessage{User: c.cfg.User, Message: text, BoardID: board})
	if err != nil {
		return err
	}
	return c.send(ctx, Inbound{Type: inboundEvent, Event: EventChat, Data: msg})
}

// Close shuts down client and closes WebSocket. A closed client cannot be
// connected again.
func (c *Client) Close() error {
	c.mu.Lock()
	old := c.state
	if old == StateClosed {
		c.mu.Unlock()
		return nil
	}
	c.state = StateClosed
	l := c.link
	c.link = nil
	fn := c.onState
	c.mu.Unlock()

	if fn != nil {
		fn(StateEvent{OldState: old, NewState: StateClosed})
	}
	var err error
	if l != nil {
		// Closing before cancelling lets the closing handshake complete;
		// a cancelled read tears the socket down immediately.
		err = l.conn.Close(websocket.StatusNormalClosure, "client close")
		l.cancel()
	}
	c.stop()
	return err
}

// Flush blocks until every event queued before the call has been written
// to the socket.
func (c *Client) Flush(ctx context.Context) error {
	done := make(chan struct{})
	if err := c.send(ctx, Inbound{flushed: done}); err != nil {
		return err
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return WrapError(ErrorTimeout, "flush", ctx.Err())
	}
}

func (c *Client) send(ctx context.Context, in Inbound) error {
	if !c.State().Queueing() {
		return NewError(ErrorNotConnected, "not connected")
	}

	select {
	case c.writeCh <- in:
		return nil
	default:
	}
	select {
	case c.writeCh <- in:
		return nil
	case <-ctx.Done():
		return WrapError(ErrorQueueFull, "outbound queue is full", ctx.Err())
	}
}

func (c *Client) dial(ctx context.Context) (*internal.Conn, error) {
	conn, err := internal.Dial(ctx, c.cfg.URL, internal.DialOptions{
		Token:            c.cfg.Token,
		HandshakeTimeout: c.cfg.HandshakeTimeout,
		ReadTimeout:      c.cfg.ReadTimeout,
		WriteTimeout:     c.cfg.WriteTimeout,
	})
	if err != nil {
		return nil, WrapError(ErrorConnection, "dial "+c.cfg.URL, err)
	}

	hello := Inbound{
		Type: inboundHello,
		Data: HelloPayload{
			Protocol: ProtocolVersion,
			Token:    c.cfg.Token,
			User:     c.cfg.User,
			ClientID: c.cfg.ClientID,
		},
	}
	if err := conn.Write(ctx, hello); err != nil {
		_ = conn.Close(websocket.StatusInternalError, "handshake error")
		return nil, WrapError(ErrorConnection, "send hello", err)
	}
	return conn, nil
}

// attach installs conn as the live link and moves to StateConnected. The
// returned func reports the change and starts the link's loops; callers
// run it after releasing joinMu, so state handlers may call Join, Leave
// or Boards.
func (c *Client) attach(conn *internal.Conn) (run func()) {
	runCtx, cancel := context.WithCancel(c.life)

	c.mu.Lock()
	if c.state == StateClosed {
		c.mu.Unlock()
		cancel()
		_ = conn.Close(websocket.StatusNormalClosure, "client close")
		return func() {}
	}
	c.gen++
	l := &link{conn: conn, cancel: cancel, gen: c.gen}
	c.link = l
	old := c.state
	c.state = StateConnected
	fn := c.onState
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		live := c.link == l
		c.mu.Unlock()
		if live && fn != nil && old != StateConnected {
			fn(StateEvent{OldState: old, NewState: StateConnected})
		}
		go c.readLoop(runCtx, l)
		go c.writeLoop(runCtx, l)
	}
}

func (c *Client) readLoop(ctx context.Context, l *link) {
	for {
		data, err := l.conn.Read(ctx)
		if err != nil {
			c.lost(ctx, l, err)
			return
		}
		var out Outbound
		if err := json.Unmarshal(data, &out); err != nil {
			c.dispatcher.fireError(WrapError(ErrorSerialization, "failed to unmarshal envelope", err))
			continue
		}
		c.dispatcher.Dispatch(out)
	}
}

func (c *Client) writeLoop(ctx context.Context, l *link) {
	for {
		select {
		case in := <-c.writeCh:
			if in.flushed != nil {
				close(in.flushed)
				continue
			}
			if in.gen != 0 && in.gen != l.gen {
				// Queued for an earlier link; rejoin already sent the
				// current membership.
				c.log().Debug("dropping stale membership change", map[string]any{"type": in.Type})
				continue
			}
			if err := l.conn.Write(ctx, in); err != nil {
				c.log().Warn("write failed, event dropped", map[string]any{"type": in.Type, "event": in.Event, "error": err.Error()})
				c.lost(ctx, l, err)
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// lost tears down a link after its first read or write failure and starts
// reconnecting when configured to.
func (c *Client) lost(ctx context.Context, l *link, err error) {
	l.once.Do(func() {
		expected := isExpectedDisconnect(ctx, err)
		l.cancel()
		_ = l.conn.CloseNow()

		c.mu.Lock()
		if c.link != l || c.state == StateClosed {
			c.mu.Unlock()
			return
		}
		c.link = nil
		c.mu.Unlock()

		c.log().Warn("connection lost", map[string]any{"error": err.Error(), "expected": expected})

		if !c.cfg.AutoReconnect {
			if expected {
				c.setState(StateDisconnected, err)
				return
			}
			werr := WrapError(ErrorDisconnected, "connection lost", err)
			c.setState(StateError, werr)
			c.dispatcher.fireError(werr)
			return
		}
		c.setState(StateReconnecting, err)
		go c.reconnect()
	})
}

func (c *Client) reconnect() {
	for attempt := 1; ; attempt++ {
		if c.cfg.MaxReconnectTries > 0 && attempt > c.cfg.MaxReconnectTries {
			err := NewError(ErrorConnection, "reconnect attempts exhausted")
			c.setState(StateError, err)
			c.dispatcher.fireError(err)
			return
		}

		delay := backoff(c.cfg.ReconnectInterval, c.cfg.MaxReconnectDelay, attempt)
		timer := time.NewTimer(delay)
		select {
		case <-c.life.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		c.log().Info("reconnecting", map[string]any{"attempt": attempt, "url": c.cfg.URL})
		conn, err := c.dial(c.life)
		if err != nil {
			c.log().Warn("reconnect failed", map[string]any{"attempt": attempt, "error": err.Error()})
			continue
		}

		var run func()
		c.joinMu.Lock()
		boards := len(c.boards)
		err = c.rejoin(c.life, conn)
		if err == nil {
			run = c.attach(conn)
		}
		c.joinMu.Unlock()
		if err != nil {
			_ = conn.CloseNow()
			c.log().Warn("rejoin failed", map[string]any{"attempt": attempt, "error": err.Error()})
			continue
		}
		c.log().Info("reconnected", map[string]any{"attempt": attempt, "boards": boards})
		run()
		return
	}
}

// rejoin writes joins for every known board directly on conn, before the
// writer starts draining queued events. Callers hold joinMu.
func (c *Client) rejoin(ctx context.Context, conn *internal.Conn) error {
	for _, b := range c.boards {
		if err := conn.Write(ctx, Inbound{Type: inboundJoin, Data: JoinPayload{BoardID: b}}); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) setState(s ConnectionState, err error) {
	c.mu.Lock()
	old := c.state
	if old == StateClosed && s != StateClosed {
		c.mu.Unlock()
		return
	}
	c.state = s
	fn := c.onState
	c.mu.Unlock()

	if fn != nil && old != s {
		fn(StateEvent{OldState: old, NewState: s, Error: err})
	}
}

// backoff returns the delay before reconnect attempt n (1-based): base
// doubled per attempt, capped at limit when limit is positive.
func backoff(base, limit time.Duration, n int) time.Duration {
	d := base
	for i := 1; i < n && d <= math.MaxInt64/2; i++ {
		d *= 2
	}
	if limit > 0 && d > limit {
		return limit
	}
	return d
}

func isExpectedDisconnect(ctx context.Context, err error) bool {
	if err == nil {
		return false
	}
	if ctx != nil && ctx.Err() != nil {
		return true
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
		return true
	}
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		return true
	default:
		return false
	}
}
