// Package session implements the per-scope sign-in state machine.
//
// A Manager starts Initializing, restores any persisted user exactly once, and from then on moves
// between Anonymous, Authenticating and Authenticated through Login, Signup, Logout and
// UpdateProfile. A Registry owns one Manager per session scope.
package session

import "krishi/internal/model"

// State is the lifecycle position of a Manager.
type State int

const (
	StateInitializing State = iota
	StateAnonymous
	StateAuthenticating
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// MarshalText renders the state by name in JSON payloads.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Snapshot is a copy of a Manager's state. User is set only when State is StateAuthenticated.
type Snapshot struct {
	State State       `json:"state"`
	User  *model.User `json:"user"`
}

// Loading reports whether the session is unsettled: still being restored, or waiting on a login
// or signup.
func (s Snapshot) Loading() bool {
	return s.State == StateInitializing || s.State == StateAuthenticating
}

// Authenticated reports whether a user is signed in.
func (s Snapshot) Authenticated() bool {
	return s.State == StateAuthenticated && s.User != nil
}
