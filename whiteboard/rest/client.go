// Package rest is a client for the board registry and history API that
// sits next to a whiteboard server.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/vovakirdan/whiteboard-sdk-go/whiteboard/stroke"
)

// maxBody bounds how much of a response is read. Stroke histories of busy
// boards run to a few megabytes.
const maxBody = 32 << 20

// Client talks to the history API. The zero value is not usable; use
// NewClient.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient returns a client for the API rooted at baseURL, for example
// "http://localhost:5000/api".
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// SetHTTPClient replaces the default client, which times out after 30s.
func (c *Client) SetHTTPClient(client *http.Client) {
	if client != nil {
		c.httpClient = client
	}
}

// SetToken sets the bearer token passed to the API on every request.
func (c *Client) SetToken(token string) { c.token = token }

// CreateBoard registers a new board.
func (c *Client) CreateBoard(ctx context.Context, req CreateBoardRequest) (*BoardInfo, error) {
	var info BoardInfo
	if err := c.call(ctx, http.MethodPost, "/boards", nil, req, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// ListBoards returns every board known to the registry.
func (c *Client) ListBoards(ctx context.Context) ([]BoardInfo, error) {
	var boards []BoardInfo
	err := c.call(ctx, http.MethodGet, "/boards", nil, nil, &boards)
	return boards, err
}

// GetStrokes returns the stroke history of a board in drawing order.
// Records are decoded leniently, the same way live draw events are.
func (c *Client) GetStrokes(ctx context.Context, board string) ([]stroke.Record, error) {
	var records []stroke.Record
	err := c.call(ctx, http.MethodGet, boardPath(board, "strokes"), nil, nil, &records)
	return records, err
}

// GetChat returns up to limit of the most recent chat lines of a board,
// oldest first. A non-positive limit leaves the choice to the server.
func (c *Client) GetChat(ctx context.Context, board string, limit int) ([]ChatEntry, error) {
	var q url.Values
	if limit > 0 {
		q = url.Values{"limit": {strconv.Itoa(limit)}}
	}
	var entries []ChatEntry
	err := c.call(ctx, http.MethodGet, boardPath(board, "chat"), q, nil, &entries)
	return entries, err
}

func boardPath(board, sub string) string {
	return "/boards/" + url.PathEscape(board) + "/" + sub
}

// call sends body as JSON when it is not nil and decodes the response
// into dest when dest is not nil.
func (c *Client) call(ctx context.Context, method, path string, q url.Values, body, dest any) error {
	target := c.baseURL + path
	if len(q) > 0 {
		target += "?" + q.Encode()
	}

	var payload io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		payload = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, payload)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return apiError(resp.StatusCode, data)
	}
	if dest == nil {
		return nil
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

// apiError prefers the JSON {"error": ...} body, then the raw body, then
// the status text.
func apiError(status int, body []byte) *APIError {
	var er ErrorResponse
	if json.Unmarshal(body, &er) == nil && er.Error != "" {
		return &APIError{Status: status, Message: er.Error}
	}
	if msg := strings.TrimSpace(string(body)); msg != "" {
		return &APIError{Status: status, Message: msg}
	}
	return &APIError{Status: status, Message: http.StatusText(status)}
}
