package snowflake

import (
	"net/url"
	"time"
)

// Session is an authenticated handle used to submit queries.
type Session struct {
	client  *Client
	base    *url.URL
	token   string
	account string
	timeout time.Duration
}

// Token returns the session token (for diagnostics; never logged by this
// package at info level or above).
func (s *Session) Token() string { return s.token }
