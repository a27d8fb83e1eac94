package domain

// SessionState is the lifecycle state of the client session.
type SessionState string

const (
	SessionUnresolved    SessionState = "unresolved"
	SessionAnonymous     SessionState = "anonymous"
	SessionAuthenticated SessionState = "authenticated"
)

// Session is a read-only snapshot of the authentication state. User is
// non-nil iff State is SessionAuthenticated.
type Session struct {
	State   SessionState `json:"state"`
	User    *User        `json:"user"`
	Error   string       `json:"error,omitempty"`
	Loading bool         `json:"is_loading"`
}

// Authenticated reports whether the snapshot is bound to a user.
func (s Session) Authenticated() bool {
	return s.State == SessionAuthenticated && s.User != nil
}

// UserID returns the bound user's id, or 0 when anonymous.
func (s Session) UserID() int {
	if s.User == nil {
		return 0
	}
	return s.User.ID
}
