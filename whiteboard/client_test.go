package whiteboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/vovakirdan/whiteboard-sdk-go/whiteboard/stroke"
)

func TestDispatcherStroke(t *testing.T) {
	var got stroke.Record
	var errCalled bool
	var d Dispatcher
	d.SetOnStroke(func(r stroke.Record) { got = r })
	d.SetOnError(func(err error) { errCalled = true; _ = err })

	raw, _ := json.Marshal(stroke.Record{Kind: stroke.KindRect, X0: 0.1, Y0: 0.2, X1: 0.3, Y1: 0.4, Color: "#abc", Size: 2, BoardID: "b1"})
	d.Dispatch(Outbound{Type: outboundEvent, Event: EventDraw, Data: raw})

	if got.Kind != stroke.KindRect || got.BoardID != "b1" || got.X1 != 0.3 {
		t.Fatalf("unexpected record: %+v", got)
	}
	if errCalled {
		t.Fatalf("unexpected error callback")
	}
}

func TestDispatcherMalformedStroke(t *testing.T) {
	cases := map[string]struct {
		data string
		code ErrorCode
	}{
		"missing field": {`{"kind":"line","x0":0,"y0":0,"x1":1,"color":"#000","size":1}`, ErrorInvalidRecord},
		"unknown kind":  {`{"kind":"star","x0":0,"y0":0,"x1":1,"y1":1,"color":"#000","size":1}`, ErrorInvalidRecord},
		"not an object": {`"line"`, ErrorSerialization},
	}
	for name, tc := range cases {
		var strokes int
		var errGot error
		var d Dispatcher
		d.SetOnStroke(func(stroke.Record) { strokes++ })
		d.SetOnError(func(err error) { errGot = err })

		d.Dispatch(Outbound{Type: outboundEvent, Event: EventDraw, Data: json.RawMessage(tc.data)})
		if strokes != 0 {
			t.Fatalf("%s: malformed record reached the stroke callback", name)
		}
		if !errors.Is(errGot, NewError(tc.code, "")) {
			t.Fatalf("%s: expected %s, got %v", name, tc.code, errGot)
		}
	}
}

func TestDispatcherClearAndChat(t *testing.T) {
	var clear *ClearEvent
	var chat ChatMessage
	var d Dispatcher
	d.SetOnClear(func(ev ClearEvent) { clear = &ev })
	d.SetOnChat(func(m ChatMessage) { chat = m })

	d.Dispatch(Outbound{Type: outboundEvent, Event: EventClear})
	if clear == nil || clear.BoardID != "" {
		t.Fatalf("bare clear_board should address every board, got %+v", clear)
	}
	d.Dispatch(Outbound{Type: outboundEvent, Event: EventClear, Data: json.RawMessage(`{"board_id":"old"}`)})
	if clear.BoardID != "old" {
		t.Fatalf("legacy board id not read: %+v", clear)
	}

	d.Dispatch(Outbound{Type: outboundEvent, Event: EventChat, Data: json.RawMessage(`{"user":"ann","message":"hi","timestamp":"2024-01-02T03:04:05","board_id":"b"}`)})
	if chat.User != "ann" || chat.Message != "hi" || chat.BoardID != "b" || chat.Timestamp == "" {
		t.Fatalf("unexpected chat %+v", chat)
	}
}

func TestDispatcherError(t *testing.T) {
	var errGot error
	var d Dispatcher
	d.SetOnError(func(err error) { errGot = err })

	d.Dispatch(Outbound{Type: outboundError, Error: &ProtocolError{Code: "unauthorized", Msg: "no token"}})
	if errGot == nil {
		t.Fatalf("expected error callback")
	}
	if !IsProtocolError(errGot) || !errors.Is(errGot, NewError(ErrorUnauthorized, "")) {
		t.Fatalf("unexpected error %v", errGot)
	}
}

func TestClientSendNotConnected(t *testing.T) {
	cfg := DefaultConfig()
	c := NewClient(&cfg)
	err := c.ClearBoard(testCtx(), "board")
	if err == nil {
		t.Fatalf("expected error when not connected")
	}
	if !errors.Is(err, NewError(ErrorNotConnected, "")) {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestClientRejectsBeforeQueueing(t *testing.T) {
	c := NewClient(nil)
	if err := c.SendStroke(testCtx(), stroke.Record{Kind: "blob"}); !errors.Is(err, NewError(ErrorInvalidRecord, "")) {
		t.Fatalf("expected invalid_record, got %v", err)
	}
	if err := c.SendChat(testCtx(), "b", "   "); !errors.Is(err, NewError(ErrorInvalidMessage, "")) {
		t.Fatalf("expected invalid_message, got %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); !errors.Is(err, NewError(ErrorInvalidConfig, "")) {
		t.Fatalf("empty URL should be invalid, got %v", err)
	}
	cfg.URL = "ftp://example.com"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("ftp scheme should be invalid")
	}
	cfg.URL = "ws://localhost:5000/ws"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cfg.AutoReconnect = true
	cfg.ReconnectInterval = 0
	if err := cfg.Validate(); err == nil {
		t.Fatalf("zero reconnect interval should be invalid")
	}
	if DefaultConfig().ClientID == DefaultConfig().ClientID {
		t.Fatalf("client ids should be unique")
	}
}

func TestBackoff(t *testing.T) {
	base, limit := time.Second, 10*time.Second
	want := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second, 10 * time.Second, 10 * time.Second}
	for i, w := range want {
		if got := backoff(base, limit, i+1); got != w {
			t.Fatalf("attempt %d: got %v, want %v", i+1, got, w)
		}
	}
	if got := backoff(base, 0, 40); got <= 0 {
		t.Fatalf("unbounded backoff overflowed: %v", got)
	}
}

func TestClientRoundTrip(t *testing.T) {
	fs := newFakeServer(t)
	c := fs.client(nil)

	strokes := make(chan stroke.Record, 4)
	errs := make(chan error, 4)
	c.OnStroke(func(r stroke.Record) { strokes <- r })
	c.OnError(func(err error) { errs <- err })

	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	conn := fs.accept()

	hello := fs.next()
	var hp HelloPayload
	if err := json.Unmarshal(hello.Data, &hp); err != nil {
		t.Fatalf("hello payload: %v", err)
	}
	if hp.Protocol != ProtocolVersion || hp.User != "tester" || hp.ClientID == "" {
		t.Fatalf("unexpected hello %+v", hp)
	}
	if c.State() != StateConnected {
		t.Fatalf("expected connected, got %s", c.State())
	}
	if err := c.Connect(context.Background()); err == nil {
		t.Fatalf("second connect should fail")
	}

	ctx := context.Background()
	if err := c.Join(ctx, "b1"); err != nil {
		t.Fatalf("join: %v", err)
	}
	rec := stroke.Record{Kind: stroke.KindLine, X0: 0.1, Y0: 0.1, X1: 0.2, Y1: 0.2, Color: "#ff0000", Size: 3, BoardID: "b1"}
	if err := c.SendStroke(ctx, rec); err != nil {
		t.Fatalf("send stroke: %v", err)
	}
	if err := c.SendChat(ctx, "b1", "  hello  "); err != nil {
		t.Fatalf("send chat: %v", err)
	}

	if f := fs.next(); f.Type != inboundJoin || !strings.Contains(string(f.Data), `"boardId":"b1"`) {
		t.Fatalf("expected join, got %+v", f)
	}
	f := fs.next()
	if f.Type != inboundEvent || f.Event != EventDraw {
		t.Fatalf("expected draw_event, got %+v", f)
	}
	var sent stroke.Record
	if err := json.Unmarshal(f.Data, &sent); err != nil || sent != rec {
		t.Fatalf("record changed on the wire: %+v (%v)", sent, err)
	}
	f = fs.next()
	var chat ChatMessage
	if err := json.Unmarshal(f.Data, &chat); err != nil {
		t.Fatalf("chat payload: %v", err)
	}
	if f.Event != EventChat || chat.Message != "hello" || chat.User != "tester" || chat.BoardID != "b1" {
		t.Fatalf("unexpected chat frame %+v", chat)
	}

	fs.emit(conn, EventDraw, rec)
	if got := waitFor(t, strokes); got != rec {
		t.Fatalf("inbound record %+v", got)
	}

	fs.emitRaw(conn, Outbound{Type: outboundEvent, Event: EventDraw, Data: json.RawMessage(`{"kind":"line"}`)})
	if err := waitFor(t, errs); !errors.Is(err, NewError(ErrorInvalidRecord, "")) {
		t.Fatalf("expected invalid_record, got %v", err)
	}

	if err := c.Flush(ctx); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if c.State() != StateClosed {
		t.Fatalf("expected closed, got %s", c.State())
	}
	if err := c.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
	if err := c.Join(ctx, "b2"); !errors.Is(err, NewError(ErrorNotConnected, "")) {
		t.Fatalf("expected not_connected after close, got %v", err)
	}
}

func TestClientReconnectRejoins(t *testing.T) {
	fs := newFakeServer(t)
	c := fs.client(func(cfg *Config) {
		cfg.AutoReconnect = true
		cfg.ReconnectInterval = 10 * time.Millisecond
		cfg.MaxReconnectDelay = 50 * time.Millisecond
	})
	states := make(chan StateEvent, 16)
	c.OnStateChanged(func(ev StateEvent) { states <- ev })

	conn := fs.start(c)
	ctx := context.Background()
	if err := c.Join(ctx, "b1"); err != nil {
		t.Fatalf("join: %v", err)
	}
	if f := fs.next(); f.Type != inboundJoin {
		t.Fatalf("expected join, got %+v", f)
	}

	_ = conn.CloseNow()

	fs.accept()
	if f := fs.next(); f.Type != inboundHello {
		t.Fatalf("expected hello after reconnect, got %+v", f)
	}
	if f := fs.next(); f.Type != inboundJoin || !strings.Contains(string(f.Data), "b1") {
		t.Fatalf("expected rejoin, got %+v", f)
	}

	var sawReconnecting bool
	for {
		ev := waitFor(t, states)
		if ev.NewState == StateReconnecting {
			sawReconnecting = true
		}
		if sawReconnecting && ev.NewState == StateConnected {
			break
		}
	}
	if got := c.Boards(); len(got) != 1 || got[0] != "b1" {
		t.Fatalf("unexpected boards %v", got)
	}
}

func TestClientStateHandlerCanJoinDuringReconnect(t *testing.T) {
	fs := newFakeServer(t)
	c := fs.client(func(cfg *Config) {
		cfg.AutoReconnect = true
		cfg.ReconnectInterval = 10 * time.Millisecond
		cfg.MaxReconnectDelay = 50 * time.Millisecond
	})
	type result struct {
		boards []string
		err    error
	}
	results := make(chan result, 1)
	c.OnStateChanged(func(ev StateEvent) {
		if ev.OldState != StateReconnecting || ev.NewState != StateConnected {
			return
		}
		boards := c.Boards()
		results <- result{boards: boards, err: c.Join(context.Background(), "b2")}
	})

	conn := fs.start(c)
	if err := c.Join(context.Background(), "b1"); err != nil {
		t.Fatalf("join: %v", err)
	}
	if f := fs.next(); f.Type != inboundJoin {
		t.Fatalf("expected join, got %+v", f)
	}

	_ = conn.CloseNow()

	fs.accept()
	if f := fs.next(); f.Type != inboundHello {
		t.Fatalf("expected hello after reconnect, got %+v", f)
	}
	if f := fs.next(); f.Type != inboundJoin || !strings.Contains(string(f.Data), "b1") {
		t.Fatalf("expected rejoin of b1, got %+v", f)
	}

	r := waitFor(t, results)
	if r.err != nil {
		t.Fatalf("join from state handler: %v", r.err)
	}
	if len(r.boards) != 1 || r.boards[0] != "b1" {
		t.Fatalf("unexpected boards in state handler %v", r.boards)
	}
	if f := fs.next(); f.Type != inboundJoin || !strings.Contains(string(f.Data), "b2") {
		t.Fatalf("expected join of b2, got %+v", f)
	}
	if got := c.Boards(); len(got) != 2 {
		t.Fatalf("unexpected boards %v", got)
	}
}

func TestClientDropsStaleMembership(t *testing.T) {
	fs := newFakeServer(t)
	c, _ := fs.connect(nil)
	ctx := context.Background()

	// A join queued for an earlier link must not reach the new one.
	if err := c.send(ctx, Inbound{Type: inboundJoin, Data: JoinPayload{BoardID: "old"}, gen: 999}); err != nil {
		t.Fatalf("send: %v", err)
	}
	if err := c.SendChat(ctx, "b1", "after"); err != nil {
		t.Fatalf("chat: %v", err)
	}
	if f := fs.next(); f.Type != inboundEvent || f.Event != EventChat {
		t.Fatalf("stale join was written: %+v", f)
	}
}

func TestClientConnectFailure(t *testing.T) {
	cfg := DefaultConfig()
	cfg.URL = "ws://127.0.0.1:1/ws"
	cfg.HandshakeTimeout = time.Second
	c := NewClient(&cfg)
	err := c.Connect(context.Background())
	if !IsConnectionError(err) {
		t.Fatalf("expected connection error, got %v", err)
	}
	if c.State() != StateError {
		t.Fatalf("expected error state, got %s", c.State())
	}
}

func TestLogFunc(t *testing.T) {
	var line string
	l := LogFunc(func(format string, args ...any) {
		line = strings.TrimSpace(fmt.Sprintf(format, args...))
	})
	l.Warn("dropped", map[string]any{"b": 2, "a": "x"})
	if line != "WARN: dropped a=x b=2" {
		t.Fatalf("unexpected line %q", line)
	}
}

// testCtx returns a cancelled context for unit tests.
func testCtx() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	return ctx
}

func TestConnectionState(t *testing.T) {
	if StateReconnecting.String() != "reconnecting" || ConnectionState(42).String() != "unknown" {
		t.Fatalf("unexpected state names")
	}
	if !StateReconnecting.Queueing() || StateConnecting.Queueing() || !StateConnecting.Active() || StateClosed.Active() {
		t.Fatalf("unexpected state predicates")
	}
}

func TestParseErrorCode(t *testing.T) {
	if got := ParseErrorCode("board_not_found"); got != ErrorBoardNotFound {
		t.Fatalf("got %s", got)
	}
	if got := ParseErrorCode("timeout"); got != ErrorUnknown {
		t.Fatalf("client codes must not parse from the wire, got %s", got)
	}
	err := WrapError(ErrorConnection, "dial", errors.New("refused"))
	if err.Error() != "connection_error: dial: refused" || IsProtocolError(err) {
		t.Fatalf("unexpected error %q", err)
	}
}
