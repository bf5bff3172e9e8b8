package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"session-portal/internal/domain"
	"session-portal/internal/repository"
)

// memoryUsers is an in-memory UserRepository matching on exact username or email.
type memoryUsers struct {
	mu      sync.Mutex
	users   []*domain.User
	findErr error
	lookups int
}

func (m *memoryUsers) Init(context.Context) error { return nil }

func (m *memoryUsers) Create(_ context.Context, user *domain.User) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == user.Username || u.Email == user.Email {
			return 0, repository.ErrUserExists
		}
	}
	user.ID = int64(len(m.users) + 1)
	stored := *user
	m.users = append(m.users, &stored)
	return user.ID, nil
}

func (m *memoryUsers) GetByID(_ context.Context, id int64) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *memoryUsers) FindByCredential(_ context.Context, credential string, _ repository.LookupPolicy) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lookups++
	if m.findErr != nil {
		return nil, m.findErr
	}
	for _, u := range m.users {
		if u.Username == credential || u.Email == credential {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func newTestService(t *testing.T) (UserService, *memoryUsers) {
	t.Helper()
	repo := &memoryUsers{}
	svc := NewUserService(repo, repository.DefaultLookupPolicy(), bcrypt.MinCost)
	_, err := svc.Register(context.Background(), "ann", "ann@example.com", "correct")
	require.NoError(t, err)
	return svc, repo
}

func TestRegister(t *testing.T) {
	svc, repo := newTestService(t)

	require.Len(t, repo.users, 1)
	stored := repo.users[0]
	assert.NotEqual(t, "correct", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("correct")))

	_, err := svc.Register(context.Background(), "ann", "other@example.com", "whatever")
	assert.ErrorIs(t, err, ErrUserAlreadyExists)

	_, err = svc.Register(context.Background(), " ", "x@example.com", "whatever")
	assert.Error(t, err)
}

func TestRegister_PasswordTooLong(t *testing.T) {
	svc, repo := newTestService(t)

	_, err := svc.Register(context.Background(), "bob", "bob@example.com", strings.Repeat("a", 80))
	assert.ErrorIs(t, err, ErrPasswordTooLong)
	assert.Len(t, repo.users, 1)
}

func TestRegister_ReturnsSanitizedUser(t *testing.T) {
	svc := NewUserService(&memoryUsers{}, repository.DefaultLookupPolicy(), bcrypt.MinCost)

	user, err := svc.Register(context.Background(), "bob", "bob@example.com", "hunter22")
	require.NoError(t, err)
	assert.Empty(t, user.PasswordHash)
	assert.Equal(t, "bob", user.Username)
}

func TestVerify(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	user, err := svc.Verify(ctx, domain.Credential{Identifier: "ann@example.com", Password: "correct"})
	require.NoError(t, err)
	assert.Equal(t, "ann", user.Username)
	assert.Empty(t, user.PasswordHash)

	user, err = svc.Verify(ctx, domain.Credential{Identifier: " ann ", Password: "correct"})
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", user.Email)
}

func TestVerify_FailuresAreIndistinguishable(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	_, wrongPassword := svc.Verify(ctx, domain.Credential{Identifier: "ann", Password: "wrong"})
	_, unknownUser := svc.Verify(ctx, domain.Credential{Identifier: "nobody", Password: "correct"})

	assert.ErrorIs(t, wrongPassword, ErrInvalidCredentials)
	assert.ErrorIs(t, unknownUser, ErrInvalidCredentials)
	assert.Equal(t, wrongPassword.Error(), unknownUser.Error())
	assert.Equal(t, 2, repo.lookups)
}

func TestVerify_EmptyInputSkipsLookup(t *testing.T) {
	svc, repo := newTestService(t)

	_, err := svc.Verify(context.Background(), domain.Credential{Identifier: "", Password: "correct"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Verify(context.Background(), domain.Credential{Identifier: "ann", Password: ""})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Zero(t, repo.lookups)
}

func TestVerify_StoreFailurePropagates(t *testing.T) {
	svc, repo := newTestService(t)
	boom := errors.New("store unavailable")
	repo.findErr = boom

	_, err := svc.Verify(context.Background(), domain.Credential{Identifier: "ann", Password: "correct"})
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}

func TestFindByID(t *testing.T) {
	svc, _ := newTestService(t)

	user, err := svc.FindByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "ann", user.Username)
	assert.Empty(t, user.PasswordHash)

	_, err = svc.FindByID(context.Background(), 42)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
