package service

import (
	"context"
	"errors"
	"time"

	"session-portal/internal/apperr"
	"session-portal/internal/domain"
	"session-portal/internal/metrics"
	"session-portal/internal/validation"
)

// MsgInvalidCredentials is the only detail a failed login ever reveals.
const MsgInvalidCredentials = "The provided credentials were invalid."

// CredentialStore verifies a login identifier and password.
type CredentialStore interface {
	Verify(ctx context.Context, cred domain.Credential) (*domain.User, error)
}

// UserStore resolves user ids carried by session tokens.
type UserStore interface {
	FindByID(ctx context.Context, id int64) (*domain.User, error)
}

// Registrar creates accounts.
type Registrar interface {
	Register(ctx context.Context, username, email, password string) (*domain.User, error)
}

// TokenCodec signs and verifies session tokens.
type TokenCodec interface {
	Issue(user *domain.PublicUser) (string, time.Time, error)
	Verify(raw string) (int64, error)
}

// SessionObserver is notified of session outcomes.
type SessionObserver interface {
	LoginAttempt(outcome string)
	Restore(outcome domain.RestoreOutcome)
	Logout()
}

// SessionService implements login, logout and session restoration on top of
// injected collaborators. It holds no per-request state and is safe for
// concurrent use.
type SessionService struct {
	credentials CredentialStore
	users       UserStore
	registrar   Registrar
	tokens      TokenCodec
	validator   *validation.Validator
	observer    SessionObserver
}

type SessionDeps struct {
	Credentials CredentialStore
	Users       UserStore
	Registrar   Registrar
	Tokens      TokenCodec
	Validator   *validation.Validator
	Observer    SessionObserver
}

func NewSessionService(deps SessionDeps) *SessionService {
	if deps.Validator == nil {
		deps.Validator = validation.New()
	}
	if deps.Observer == nil {
		deps.Observer = nopObserver{}
	}
	return &SessionService{
		credentials: deps.Credentials,
		users:       deps.Users,
		registrar:   deps.Registrar,
		tokens:      deps.Tokens,
		validator:   deps.Validator,
		observer:    deps.Observer,
	}
}

// Login validates input, verifies the credential and issues a session token.
// Validation failures never reach the credential store.
func (s *SessionService) Login(ctx context.Context, in validation.LoginInput) (*domain.Grant, error) {
	if err := s.validator.Login(&in); err != nil {
		s.observer.LoginAttempt(metrics.LoginInvalid)
		return nil, err
	}

	user, err := s.credentials.Verify(ctx, domain.Credential{
		Identifier: in.Credential,
		Password:   in.Password,
	})
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			s.observer.LoginAttempt(metrics.LoginRejected)
			return nil, apperr.Authentication(apperr.TitleLoginFailed, MsgInvalidCredentials)
		}
		s.observer.LoginAttempt(metrics.LoginErrored)
		return nil, apperr.Internal(err)
	}

	grant, err := s.grant(user)
	if err != nil {
		s.observer.LoginAttempt(metrics.LoginErrored)
		return nil, err
	}
	s.observer.LoginAttempt(metrics.LoginSucceeded)
	return grant, nil
}

// Signup registers a user and logs them in.
func (s *SessionService) Signup(ctx context.Context, in validation.SignupInput) (*domain.Grant, error) {
	if err := s.validator.Signup(&in); err != nil {
		return nil, err
	}
	if s.registrar == nil {
		return nil, apperr.Internal(errors.New("signup is not configured"))
	}

	user, err := s.registrar.Register(ctx, in.Username, in.Email, in.Password)
	if err != nil {
		if errors.Is(err, ErrUserAlreadyExists) {
			return nil, apperr.Conflict("User with that email or username already exists.")
		}
		if errors.Is(err, ErrPasswordTooLong) {
			return nil, apperr.Validation(validation.MsgPasswordTooLong)
		}
		return nil, apperr.Internal(err)
	}
	return s.grant(user)
}

// Restore resolves a raw session token. A missing, invalid or expired token
// yields an anonymous result without error; so does a token whose user no
// longer exists, reported as RestoreStale so the caller can drop the cookie.
// Only store failures are returned as errors.
func (s *SessionService) Restore(ctx context.Context, raw string) (*domain.PublicUser, domain.RestoreOutcome, error) {
	outcome, user, err := s.restore(ctx, raw)
	if err != nil {
		return nil, outcome, apperr.Internal(err)
	}
	s.observer.Restore(outcome)
	return user, outcome, nil
}

func (s *SessionService) restore(ctx context.Context, raw string) (domain.RestoreOutcome, *domain.PublicUser, error) {
	if raw == "" {
		return domain.RestoreAnonymous, nil, nil
	}

	id, err := s.tokens.Verify(raw)
	if err != nil {
		return domain.RestoreInvalid, nil, nil
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return domain.RestoreStale, nil, nil
		}
		return domain.RestoreInvalid, nil, err
	}
	return domain.RestoreRestored, user.Public(), nil
}

// Logout has no server-side state to drop; tokens are stateless and the
// transport clears the cookie. It always succeeds.
func (s *SessionService) Logout(context.Context) {
	s.observer.Logout()
}

func (s *SessionService) grant(user *domain.User) (*domain.Grant, error) {
	public := user.Public()
	token, expiresAt, err := s.tokens.Issue(public)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &domain.Grant{
		User:      public,
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

type nopObserver struct{}

func (nopObserver) LoginAttempt(string)           {}
func (nopObserver) Restore(domain.RestoreOutcome) {}
func (nopObserver) Logout()                       {}
