package service

import "strings"

// WSConfig holds the WebSocket URL base returned in session create responses.
type WSConfig struct {
	BaseURL string
}

// WSURL returns the WebSocket endpoint clients connect to before sending
// join-session (e.g. wss://host/ws/sessions).
func (c *WSConfig) WSURL() string {
	if c == nil || c.BaseURL == "" {
		return "/ws/sessions"
	}
	return strings.TrimRight(c.BaseURL, "/") + "/ws/sessions"
}
