package whiteboard

import (
	"encoding/json"
	"strings"
)

const (
	ProtocolVersion = 1

	inboundHello = "hello"
	inboundJoin  = "join"
	inboundLeave = "leave"
	inboundEvent = "event"

	outboundEvent = "event"
	outboundError = "error"
)

// Event names carried in both directions.
const (
	EventDraw  = "draw_event"
	EventClear = "clear_board"
	EventChat  = "chat_message"
)

// DefaultUser names chat participants that did not pick a name.
const DefaultUser = "Anonymous"

// Inbound represents the envelope from client to server.
type Inbound struct {
	Type  string `json:"type"`
	Event string `json:"event,omitempty"`
	Data  any    `json:"data,omitempty"`

	// flushed marks a Flush barrier. It is closed by the writer instead
	// of being sent.
	flushed chan struct{}
	// gen is the link a join or leave was queued for. Writers of later
	// links drop it, since rejoin has already replayed membership.
	gen uint64
}

// Outbound is the envelope server -> client.
type Outbound struct {
	Type  string          `json:"type"`
	Event string          `json:"event,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
	Error *ProtocolError  `json:"error,omitempty"`
}

// HelloPayload initiates the session.
type HelloPayload struct {
	Protocol int    `json:"protocol,omitempty"`
	Token    string `json:"token,omitempty"`
	User     string `json:"user,omitempty"`
	ClientID string `json:"clientId,omitempty"`
}

// JoinPayload subscribes to or leaves a board.
type JoinPayload struct {
	BoardID string `json:"boardId"`
}

// ClearEvent wipes a board. An empty BoardID addresses every board.
type ClearEvent struct {
	BoardID string `json:"boardId,omitempty"`
}

func (e *ClearEvent) UnmarshalJSON(data []byte) error {
	var w struct {
		BoardID    string `json:"boardId"`
		OldBoardID string `json:"board_id"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	e.BoardID = firstNonEmpty(w.BoardID, w.OldBoardID)
	return nil
}

// ChatMessage is one line of board chat. Timestamp is set by the server,
// usually in ISO 8601 form.
type ChatMessage struct {
	User      string `json:"user"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp,omitempty"`
	BoardID   string `json:"boardId,omitempty"`
}

func (m *ChatMessage) UnmarshalJSON(data []byte) error {
	type plain ChatMessage
	var w struct {
		plain
		OldBoardID string `json:"board_id"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*m = ChatMessage(w.plain)
	m.BoardID = firstNonEmpty(m.BoardID, w.OldBoardID)
	return nil
}

// String renders the message the way a chat panel shows it.
func (m ChatMessage) String() string {
	return m.User + ": " + m.Message
}

// normalizeChat trims an outbound message and fills in the user name.
func normalizeChat(m ChatMessage) (ChatMessage, error) {
	m.Message = strings.TrimSpace(m.Message)
	if m.Message == "" {
		return m, NewError(ErrorInvalidMessage, "empty chat message")
	}
	m.User = strings.TrimSpace(m.User)
	if m.User == "" {
		m.User = DefaultUser
	}
	return m, nil
}

// ProtocolError describes a protocol error.
type ProtocolError struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}

func (e *ProtocolError) Error() string {
	if e == nil {
		return ""
	}
	return e.Code + ": " + e.Msg
}

// UnmarshalData decodes RawMessage into target.
func UnmarshalData(data json.RawMessage, v any) error {
	return json.Unmarshal(data, v)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
