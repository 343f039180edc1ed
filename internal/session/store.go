// Package session implements the server-side session store. A session
// is an opaque random ID handed to the browser in an HttpOnly cookie;
// the data behind it ({user_id, username, role}) lives only on the
// server, so destroying the entry invalidates the session immediately.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/iliyamo/equipment-inventory/internal/utils"
)

// CookieName is the name of the session cookie set on login.
const CookieName = "session_id"

// ErrNotFound is returned when a session ID is unknown or expired.
var ErrNotFound = errors.New("session not found")

// Data is the payload stored for the lifetime of a browser session.
// It is written once at login and read on every authenticated request.
type Data struct {
	UserID   uint64 `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// Store abstracts the session backend. The Redis implementation is
// used in deployments; the memory implementation serves single-process
// development runs and tests.
type Store interface {
	// Create stores the data under a freshly generated ID and returns it.
	Create(ctx context.Context, d Data) (string, error)
	// Get returns the data for an ID, or ErrNotFound.
	Get(ctx context.Context, id string) (Data, error)
	// Destroy removes a session. Destroying an unknown ID is not an error.
	Destroy(ctx context.Context, id string) error
	// TTL reports the configured session lifetime (used for cookie MaxAge).
	TTL() time.Duration
}

// newID produces the opaque session identifier.
func newID() (string, error) {
	return utils.NewSessionID()
}
