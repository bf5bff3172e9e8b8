package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"session-portal/internal/domain"
	"session-portal/internal/repository"
)

func newTestRepo(t *testing.T) repository.UserRepository {
	t.Helper()

	db, err := Open(filepath.Join(t.TempDir(), "nested", "users.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := NewUserRepository(db)
	require.NoError(t, repo.Init(context.Background()))
	return repo
}

func seed(t *testing.T, repo repository.UserRepository, username, email string) *domain.User {
	t.Helper()

	user := &domain.User{Username: username, Email: email, PasswordHash: "hash"}
	_, err := repo.Create(context.Background(), user)
	require.NoError(t, err)
	return user
}

func TestUserRepository_CreateAndGetByID(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created := seed(t, repo, "ann", "ann@example.com")
	assert.NotZero(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "ann", got.Username)
	assert.Equal(t, "ann@example.com", got.Email)
	assert.Equal(t, "hash", got.PasswordHash)

	_, err = repo.GetByID(ctx, created.ID+100)
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}

func TestUserRepository_CreateDuplicate(t *testing.T) {
	repo := newTestRepo(t)
	seed(t, repo, "ann", "ann@example.com")

	_, err := repo.Create(context.Background(), &domain.User{Username: "ANN", Email: "other@example.com", PasswordHash: "x"})
	assert.ErrorIs(t, err, repository.ErrUserExists)

	_, err = repo.Create(context.Background(), &domain.User{Username: "other", Email: "Ann@Example.com", PasswordHash: "x"})
	assert.ErrorIs(t, err, repository.ErrUserExists)
}

func TestUserRepository_FindByCredential(t *testing.T) {
	repo := newTestRepo(t)
	ann := seed(t, repo, "Ann", "ann@example.com")

	tests := []struct {
		name       string
		credential string
		policy     repository.LookupPolicy
		wantFound  bool
	}{
		{"username either fold", "ann", repository.DefaultLookupPolicy(), true},
		{"email either fold", "ANN@example.com", repository.DefaultLookupPolicy(), true},
		{"trimmed", "  ann@example.com ", repository.DefaultLookupPolicy(), true},
		{"exact username", "Ann", repository.LookupPolicy{Match: repository.MatchUsername}, true},
		{"exact username wrong case", "ann", repository.LookupPolicy{Match: repository.MatchUsername}, false},
		{"email only rejects username", "Ann", repository.LookupPolicy{Match: repository.MatchEmail, FoldCase: true}, false},
		{"username only rejects email", "ann@example.com", repository.LookupPolicy{Match: repository.MatchUsername, FoldCase: true}, false},
		{"unknown", "bob", repository.DefaultLookupPolicy(), false},
		{"empty", "   ", repository.DefaultLookupPolicy(), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.FindByCredential(context.Background(), tt.credential, tt.policy)
			if !tt.wantFound {
				assert.ErrorIs(t, err, repository.ErrUserNotFound)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, ann.ID, got.ID)
		})
	}
}

func TestOpen_RequiresPath(t *testing.T) {
	_, err := Open("  ")
	assert.Error(t, err)
}
