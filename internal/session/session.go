// Package session stores per-client OAuth credential state keyed by an
// opaque cookie value. The adapter itself stays stateless: handlers
// receive a Store and read or write their own session entry only.
package session

import (
	"context"
)

// tokenPreviewLen is how many characters of an access token may be
// echoed back to clients.
const tokenPreviewLen = 20

// Credentials is the per-session credential record created by a
// successful OAuth callback. PendingState holds the state nonce issued
// by the authorization initiator and not yet consumed by the callback.
type Credentials struct {
	AccessToken  string `json:"access_token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
	UserID       string `json:"user_id,omitempty"`
	ExpiresIn    int    `json:"expires_in,omitempty"`
	PendingState string `json:"pending_state,omitempty"`
}

// Authenticated reports whether the record carries a usable identity.
// Access token and user id must both be present; a record with only
// one of them is treated as unauthenticated.
func (c *Credentials) Authenticated() bool {
	return c != nil && c.AccessToken != "" && c.UserID != ""
}

// TokenPreview returns the first 20 characters of token followed by an
// ellipsis. Full tokens are never echoed back to clients.
func TokenPreview(token string) string {
	if len(token) > tokenPreviewLen {
		token = token[:tokenPreviewLen]
	}
	return token + "..."
}

// Store defines how credential records are stored and retrieved.
// Implementations must treat records as opaque and scope them to a
// single session id.
type Store interface {
	// Get returns the record for id, or (nil, nil) when absent.
	Get(ctx context.Context, id string) (*Credentials, error)
	// Put stores the record for id, replacing any existing one.
	Put(ctx context.Context, id string, creds *Credentials) error
	// Delete removes the record for id. Deleting a missing record is
	// not an error.
	Delete(ctx context.Context, id string) error
	// Ping reports whether the backing store is reachable.
	Ping(ctx context.Context) error
}
