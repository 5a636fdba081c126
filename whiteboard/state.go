package whiteboard

// ConnectionState is the lifecycle state of a Client's link to the board
// server.
type ConnectionState int

const (
	// StateDisconnected means there is no link, either before Connect or
	// after the server closed it normally.
	StateDisconnected ConnectionState = iota

	// StateConnecting means Connect is dialing.
	StateConnecting

	// StateConnected means the link is up and events flow both ways.
	StateConnected

	// StateReconnecting means the link dropped and the client is dialing
	// again. Outbound events keep queueing and are flushed after re-join.
	StateReconnecting

	// StateError means the link failed and will not be retried.
	StateError

	// StateClosed is terminal. A closed client cannot be reconnected.
	StateClosed
)

var stateNames = [...]string{
	StateDisconnected: "disconnected",
	StateConnecting:   "connecting",
	StateConnected:    "connected",
	StateReconnecting: "reconnecting",
	StateError:        "error",
	StateClosed:       "closed",
}

// String returns the lower-case state name.
func (s ConnectionState) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Active reports whether a link is up or being brought up.
func (s ConnectionState) Active() bool {
	return s == StateConnecting || s == StateConnected || s == StateReconnecting
}

// Queueing reports whether outbound events are accepted.
func (s ConnectionState) Queueing() bool {
	return s == StateConnected || s == StateReconnecting
}

// StateEvent is passed to OnStateChanged handlers.
type StateEvent struct {
	OldState ConnectionState
	NewState ConnectionState
	Error    error // cause of the change, if any
}
