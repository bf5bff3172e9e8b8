package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"session-portal/internal/domain"
)

var (
	// ErrUserNotFound is returned when no user matches a lookup.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserExists is returned when a unique column already holds the value.
	ErrUserExists = errors.New("user already exists")
)

// CredentialMatch selects which columns a login identifier is compared against.
type CredentialMatch string

const (
	MatchEither   CredentialMatch = "either"
	MatchEmail    CredentialMatch = "email"
	MatchUsername CredentialMatch = "username"
)

// LookupPolicy is the store's contract for resolving a login identifier.
// FoldCase compares case-insensitively; surrounding whitespace is always trimmed.
type LookupPolicy struct {
	Match    CredentialMatch
	FoldCase bool
}

// DefaultLookupPolicy matches username or email, ignoring case.
func DefaultLookupPolicy() LookupPolicy {
	return LookupPolicy{Match: MatchEither, FoldCase: true}
}

// ParseCredentialMatch validates a configured match mode.
func ParseCredentialMatch(s string) (CredentialMatch, error) {
	switch m := CredentialMatch(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return MatchEither, nil
	case MatchEither, MatchEmail, MatchUsername:
		return m, nil
	default:
		return "", fmt.Errorf("unknown credential match %q", s)
	}
}

// UserRepository defines persistence operations for User entities.
type UserRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, user *domain.User) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	FindByCredential(ctx context.Context, credential string, policy LookupPolicy) (*domain.User, error)
}
