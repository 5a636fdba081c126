package whiteboard

import (
	"net/url"
	"strings"
)

// BoardIDFromURL returns the board identity carried by a board page URL:
// its last non-empty path segment. A URL without one yields "", which
// matches every board.
func BoardIDFromURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", WrapError(ErrorInvalidConfig, "invalid board URL", err)
	}
	segs := strings.Split(u.Path, "/")
	for i := len(segs) - 1; i >= 0; i-- {
		if segs[i] != "" {
			return segs[i], nil
		}
	}
	return "", nil
}

// BoardURL joins a page base URL and a board identity, the inverse of
// BoardIDFromURL.
func BoardURL(base, board string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", WrapError(ErrorInvalidConfig, "invalid base URL", err)
	}
	if board == "" {
		return u.String(), nil
	}
	return u.JoinPath(board).String(), nil
}
