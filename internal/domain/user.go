package domain

import "time"

// User represents a stored account of the system.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string `json:"-"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PublicUser is the sanitized view of a User, the only user shape sent to clients.
type PublicUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Public strips secret fields from the user.
func (u *User) Public() *PublicUser {
	if u == nil {
		return nil
	}
	return &PublicUser{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
	}
}

// Credential is the identifier + password pair submitted at login.
// It lives for the duration of a request and is never persisted or logged.
type Credential struct {
	Identifier string
	Password   string
}
