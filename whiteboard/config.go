package whiteboard

import (
	"net/url"
	"time"

	"github.com/google/uuid"
)

// Config controls how the SDK connects.
type Config struct {
	URL              string
	Token            string // bearer token sent in hello
	User             string // display name for chat
	ClientID         string // stable identity of this participant
	HandshakeTimeout time.Duration
	ReadTimeout      time.Duration // 0 disables it; idle boards are normal
	WriteTimeout     time.Duration

	// Auto-reconnect
	AutoReconnect     bool
	ReconnectInterval time.Duration // first retry delay, doubled per attempt
	MaxReconnectDelay time.Duration
	MaxReconnectTries int // 0 = unlimited

	// RESTBaseURL enables Client.REST, e.g. "http://localhost:5000/api".
	RESTBaseURL string

	// QueueSize bounds outbound events waiting for the writer.
	QueueSize int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		ClientID:          uuid.NewString(),
		HandshakeTimeout:  10 * time.Second,
		ReadTimeout:       0,
		WriteTimeout:      10 * time.Second,
		ReconnectInterval: 1 * time.Second,
		MaxReconnectDelay: 30 * time.Second,
		QueueSize:         64,
	}
}

// Validate reports the first unusable setting as an ErrorInvalidConfig.
func (c *Config) Validate() error {
	if c.URL == "" {
		return NewError(ErrorInvalidConfig, "empty URL")
	}
	u, err := url.Parse(c.URL)
	if err != nil {
		return WrapError(ErrorInvalidConfig, "invalid URL", err)
	}
	switch u.Scheme {
	case "ws", "wss", "http", "https":
	default:
		return NewError(ErrorInvalidConfig, "unsupported URL scheme "+u.Scheme)
	}
	if c.HandshakeTimeout < 0 || c.ReadTimeout < 0 || c.WriteTimeout < 0 {
		return NewError(ErrorInvalidConfig, "timeouts must not be negative")
	}
	if c.AutoReconnect && c.ReconnectInterval <= 0 {
		return NewError(ErrorInvalidConfig, "reconnect interval must be positive")
	}
	if c.MaxReconnectTries < 0 {
		return NewError(ErrorInvalidConfig, "max reconnect tries must not be negative")
	}
	if c.QueueSize < 0 {
		return NewError(ErrorInvalidConfig, "queue size must not be negative")
	}
	return nil
}
