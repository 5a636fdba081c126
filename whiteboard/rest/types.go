package rest

import (
	"fmt"
	"time"
)

// Board types

// BoardInfo represents board metadata kept by the board registry.
type BoardInfo struct {
	ID        string    `json:"id"`
	Name      string    `json:"name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateBoardRequest is the request body for creating a board.
type CreateBoardRequest struct {
	Name string `json:"name,omitempty"`
	// ID asks for a specific identity; the server picks one when empty.
	ID string `json:"id,omitempty"`
}

// History types

// ChatEntry is one persisted chat line.
type ChatEntry struct {
	User      string `json:"user"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp,omitempty"`
}

// ErrorResponse represents an API error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// APIError is returned for responses with status 400 and above.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (status %d): %s", e.Status, e.Message)
}
