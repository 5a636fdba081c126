package whiteboard

import (
	"context"
	"errors"
	"sync"

	"github.com/vovakirdan/whiteboard-sdk-go/whiteboard/stroke"
)

// Board binds a Client to one drawing surface and one chat log. Pointer
// input and inbound events are serialized by the board, so a Board may be
// driven from any goroutine.
type Board struct {
	client *Client
	logger Logger

	mu      sync.Mutex
	session *stroke.Session
	chat    *ChatLog

	onChat      func(ChatMessage)
	onClear     func(ClearEvent)
	sessionOpts []stroke.Option
}

// BoardOption configures a Board.
type BoardOption func(*Board)

// WithBoardLogger sets the logger used for discarded inbound events. By
// default the board logs through its client's current logger.
func WithBoardLogger(l Logger) BoardOption {
	return func(b *Board) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithSessionOptions passes options such as stroke.WithTool to the
// board's drawing session.
func WithSessionOptions(opts ...stroke.Option) BoardOption {
	return func(b *Board) { b.sessionOpts = append(b.sessionOpts, opts...) }
}

// WithChatLimit bounds the board's chat history.
func WithChatLimit(n int) BoardOption {
	return func(b *Board) { b.chat = NewChatLog(n) }
}

// WithChatHandler is called for every chat message accepted by the board.
func WithChatHandler(fn func(ChatMessage)) BoardOption {
	return func(b *Board) { b.onChat = fn }
}

// WithClearHandler is called after the surface has been wiped by a clear
// event.
func WithClearHandler(fn func(ClearEvent)) BoardOption {
	return func(b *Board) { b.onClear = fn }
}

// NewBoard draws board id on surface and registers itself for the client's
// stroke, clear and chat callbacks. An empty id accepts events for every
// board.
func NewBoard(c *Client, id string, surface stroke.Surface, opts ...BoardOption) *Board {
	b := &Board{
		client: c,
		chat:   NewChatLog(DefaultChatLimit),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.session = stroke.NewSession(surface, c, append(b.sessionOpts, stroke.WithBoard(id))...)

	c.OnStroke(b.applyStroke)
	c.OnClear(b.applyClear)
	c.OnChat(b.applyChat)
	return b
}

// ID returns the board identity.
func (b *Board) ID() string { return b.session.Board() }

// Chat returns the board's chat history.
func (b *Board) Chat() *ChatLog { return b.chat }

// Join subscribes the client to this board.
func (b *Board) Join(ctx context.Context) error { return b.client.Join(ctx, b.ID()) }

// Leave unsubscribes the client from this board.
func (b *Board) Leave(ctx context.Context) error { return b.client.Leave(ctx, b.ID()) }

// PointerDown starts a gesture with the current tool at p.
func (b *Board) PointerDown(p stroke.Point) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.session.PointerDown(p)
}

// PointerMove extends the gesture. Freehand segments are painted and
// sent as they are drawn; shapes are only previewed.
func (b *Board) PointerMove(ctx context.Context, p stroke.Point) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.session.PointerMove(ctx, p)
}

// PointerUp ends the gesture, sending the finished shape if there is one.
func (b *Board) PointerUp(ctx context.Context, p stroke.Point) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.session.PointerUp(ctx, p)
}

// PointerLeave abandons the gesture without sending anything.
func (b *Board) PointerLeave() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.session.PointerLeave()
}

// SetTool selects the kind drawn by the next gesture.
func (b *Board) SetTool(k stroke.Kind) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.session.SetTool(k)
}

// SetColor sets the color of the next gesture.
func (b *Board) SetColor(c string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.session.SetColor(c)
}

// SetSize sets the stroke width, in pixels, of the next gesture.
func (b *Board) SetSize(px float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.session.SetSize(px)
}

// Clear asks every participant to wipe the board and, once the request is
// queued, wipes the local surface. A failed request leaves the surface
// untouched.
func (b *Board) Clear(ctx context.Context) error {
	if err := b.client.ClearBoard(ctx, b.ID()); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.session.Clear(b.ID())
}

// SendChat posts a chat line to this board.
func (b *Board) SendChat(ctx context.Context, text string) error {
	return b.client.SendChat(ctx, b.ID(), text)
}

// Replay paints records without emitting them, e.g. history fetched over
// REST. Records that cannot be drawn are skipped and counted.
func (b *Board) Replay(records []stroke.Record) (skipped int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, r := range records {
		if err := b.session.Apply(r); err != nil {
			b.discard("replay", r.BoardID, err)
			skipped++
		}
	}
	return skipped
}

// Do runs fn with exclusive access to the session, for callers that draw
// on or inspect the surface directly.
func (b *Board) Do(fn func(*stroke.Session)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fn(b.session)
}

func (b *Board) applyStroke(r stroke.Record) {
	b.mu.Lock()
	err := b.session.Apply(r)
	b.mu.Unlock()
	if err != nil {
		b.discard(EventDraw, r.BoardID, err)
	}
}

func (b *Board) applyClear(ev ClearEvent) {
	b.mu.Lock()
	err := b.session.Clear(ev.BoardID)
	b.mu.Unlock()
	if err != nil {
		b.discard(EventClear, ev.BoardID, err)
		return
	}
	if b.onClear != nil {
		b.onClear(ev)
	}
}

func (b *Board) applyChat(m ChatMessage) {
	if !b.session.Accepts(m.BoardID) {
		b.discard(EventChat, m.BoardID, stroke.ErrForeignBoard)
		return
	}
	if !b.chat.Add(m) {
		return
	}
	if b.onChat != nil {
		b.onChat(m)
	}
}

func (b *Board) log() Logger {
	if b.logger != nil {
		return b.logger
	}
	return b.client.log()
}

// discard logs an inbound event that was not applied. Events for other
// boards are routine; anything else points at a broken peer.
func (b *Board) discard(event, board string, err error) {
	fields := map[string]any{"event": event, "board": board, "error": err.Error()}
	if errors.Is(err, stroke.ErrForeignBoard) {
		b.log().Debug("ignoring event for another board", fields)
		return
	}
	b.log().Warn("discarding inbound event", fields)
}
