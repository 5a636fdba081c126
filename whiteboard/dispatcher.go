package whiteboard

import (
	"errors"
	"sync"

	"github.com/vovakirdan/whiteboard-sdk-go/whiteboard/stroke"
)

// Dispatcher routes outbound events to registered callbacks. Callbacks
// may be replaced at any time, e.g. when a Board attaches to a live client.
type Dispatcher struct {
	mu       sync.RWMutex
	onStroke func(stroke.Record)
	onClear  func(ClearEvent)
	onChat   func(ChatMessage)
	onError  func(error)

	logger Logger
}

// Setters replace one callback each; nil removes it.
func (d *Dispatcher) SetOnStroke(fn func(stroke.Record)) { d.set(func() { d.onStroke = fn }) }
func (d *Dispatcher) SetOnClear(fn func(ClearEvent))     { d.set(func() { d.onClear = fn }) }
func (d *Dispatcher) SetOnChat(fn func(ChatMessage))     { d.set(func() { d.onChat = fn }) }
func (d *Dispatcher) SetOnError(fn func(error))          { d.set(func() { d.onError = fn }) }
func (d *Dispatcher) SetLogger(l Logger)                 { d.set(func() { d.logger = l }) }

func (d *Dispatcher) set(fn func()) {
	d.mu.Lock()
	fn()
	d.mu.Unlock()
}

// Dispatch decodes one envelope. A draw event that does not decode into a
// valid record is reported through the error callback and never reaches
// the stroke callback.
func (d *Dispatcher) Dispatch(out Outbound) {
	if out.Type == outboundError {
		if out.Error != nil {
			d.fireError(FromProtocolError(out.Error))
		}
		return
	}
	d.mu.RLock()
	onStroke, onClear, onChat := d.onStroke, d.onClear, d.onChat
	d.mu.RUnlock()

	switch out.Event {
	case EventDraw:
		if onStroke == nil {
			return
		}
		var r stroke.Record
		if err := UnmarshalData(out.Data, &r); err != nil {
			code := ErrorSerialization
			if errors.Is(err, stroke.ErrMissingField) {
				code = ErrorInvalidRecord
			}
			d.discard(WrapError(code, "failed to unmarshal draw_event", err))
			return
		}
		if err := stroke.Validate(r); err != nil {
			d.discard(WrapError(ErrorInvalidRecord, "invalid draw_event", err))
			return
		}
		onStroke(r)
	case EventClear:
		if onClear == nil {
			return
		}
		var ev ClearEvent
		if len(out.Data) > 0 && string(out.Data) != "null" {
			if err := UnmarshalData(out.Data, &ev); err != nil {
				d.fireError(WrapError(ErrorSerialization, "failed to unmarshal clear_board event", err))
				return
			}
		}
		onClear(ev)
	case EventChat:
		if onChat == nil {
			return
		}
		var ev ChatMessage
		if err := UnmarshalData(out.Data, &ev); err != nil {
			d.fireError(WrapError(ErrorSerialization, "failed to unmarshal chat_message event", err))
			return
		}
		onChat(ev)
	}
}

// discard reports a draw event that will not be rendered.
func (d *Dispatcher) discard(err *Error) {
	d.mu.RLock()
	l := d.logger
	d.mu.RUnlock()
	if l != nil {
		l.Warn("discarding draw_event", map[string]any{"code": err.Code.String(), "error": err.Error()})
	}
	d.fireError(err)
}

func (d *Dispatcher) fireError(err error) {
	d.mu.RLock()
	fn := d.onError
	d.mu.RUnlock()
	if fn != nil && err != nil {
		fn(err)
	}
}
