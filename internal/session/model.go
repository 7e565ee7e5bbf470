package session

import "bluecarbon/admin-console/internal/gateway"

// State is the authentication lifecycle state
type State string

const (
	StateUnauthenticated State = "unauthenticated"
	StateAuthenticating  State = "authenticating"
	StateAuthenticated   State = "authenticated"
)

// Snapshot is a point-in-time view of the current session for the view layer
type Snapshot struct {
	User  *gateway.User `json:"user"`
	Token string        `json:"token"`
	State State         `json:"state"`
}

// IsLoading reports whether a credential exchange is in flight
func (s Snapshot) IsLoading() bool {
	return s.State == StateAuthenticating
}

// Durable storage slot names. Both must be present for a session to restore.
const (
	slotToken = "token"
	slotUser  = "user"
)
