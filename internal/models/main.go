// Package models defines the core data structures for sessions, users and notes.
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// User represents an authenticated account of the hosted service.
type User struct {
	// ID is the opaque identifier assigned by the auth service.
	ID string `json:"id"`
	// Email is the login address of the user.
	Email string `json:"email,omitempty"`
}

// Session is the proof of authentication issued by the auth service.
type Session struct {
	// AccessToken is sent as a bearer token on every authenticated request.
	AccessToken string `json:"access_token"`
	// RefreshToken is exchanged for a new session once the access token expires.
	RefreshToken string `json:"refresh_token"`
	// TokenType is normally "bearer".
	TokenType string `json:"token_type"`
	// ExpiresIn is the access token lifetime in seconds at issue time.
	ExpiresIn int64 `json:"expires_in"`
	// ExpiresAt is the unix time at which the access token stops being valid.
	ExpiresAt int64 `json:"expires_at"`
	// User is the account the session belongs to.
	User *User `json:"user,omitempty"`
}

// Expired reports whether the access token is no longer usable at now.
// A session without a known expiry never expires locally.
func (s *Session) Expired(now time.Time) bool {
	if s.ExpiresAt == 0 {
		return false
	}
	return now.Unix() >= s.ExpiresAt
}

// ID identifies a note row. Hosted tables use either bigint or uuid keys,
// so the value is kept as text and accepts a JSON number or string.
type ID string

// UnmarshalJSON accepts both 42 and "42".
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("note id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// Note is a user-owned text record.
type Note struct {
	// ID is assigned by the backend.
	ID ID `json:"id"`
	// Content is the user-supplied text, stored and shown verbatim.
	Content string `json:"content"`
	// UserID references the owning user.
	UserID string `json:"user_id"`
	// CreatedAt is assigned by the backend and drives the listing order.
	CreatedAt time.Time `json:"created_at"`
}

// NewNote is the row sent when creating a note.
type NewNote struct {
	Content string `json:"content"`
	UserID  string `json:"user_id"`
}

// Credentials are the email and password typed into the auth form.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
