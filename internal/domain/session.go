package domain

import "time"

type SessionState string

const (
	SessionUnauthenticated SessionState = "unauthenticated"
	SessionAuthenticated   SessionState = "authenticated"
)

// RestoreOutcome describes how a session cookie was resolved for a request.
type RestoreOutcome string

const (
	RestoreAnonymous RestoreOutcome = "anonymous"
	RestoreInvalid   RestoreOutcome = "invalid"
	RestoreStale     RestoreOutcome = "stale"
	RestoreRestored  RestoreOutcome = "restored"
)

// State maps the outcome onto the session token lifecycle.
func (o RestoreOutcome) State() SessionState {
	if o == RestoreRestored {
		return SessionAuthenticated
	}
	return SessionUnauthenticated
}

// Grant is the result of a successful login: the user view plus the signed
// token that must be handed to the client as a cookie.
type Grant struct {
	User      *PublicUser
	Token     string
	ExpiresAt time.Time
}
