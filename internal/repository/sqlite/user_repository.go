package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"session-portal/internal/domain"
	"session-portal/internal/repository"
)

const createUsersTable = `
CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	username TEXT NOT NULL UNIQUE COLLATE NOCASE,
	email TEXT NOT NULL UNIQUE COLLATE NOCASE,
	password_hash TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
`

const selectUser = `
SELECT id, username, email, password_hash, created_at, updated_at
FROM users
`

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createUsersTable); err != nil {
		return fmt.Errorf("create users table: %w", err)
	}
	return nil
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (int64, error) {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	res, err := r.db.ExecContext(ctx, `
INSERT INTO users (username, email, password_hash, created_at, updated_at)
VALUES (?, ?, ?, ?, ?)`,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "unique") {
			return 0, fmt.Errorf("insert user: %w", repository.ErrUserExists)
		}
		return 0, fmt.Errorf("insert user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("user last insert id: %w", err)
	}
	user.ID = id
	return id, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, selectUser+`WHERE id = ?`, id)
	return scanUser(row)
}

// FindByCredential resolves a login identifier according to policy. When the
// identifier matches more than one row (a username equal to another user's
// email), the oldest account wins.
func (r *UserRepository) FindByCredential(ctx context.Context, credential string, policy repository.LookupPolicy) (*domain.User, error) {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return nil, repository.ErrUserNotFound
	}

	where, err := credentialClause(policy)
	if err != nil {
		return nil, err
	}

	args := []any{credential}
	if policy.Match == repository.MatchEither || policy.Match == "" {
		args = append(args, credential)
	}

	row := r.db.QueryRowContext(ctx, selectUser+where+` ORDER BY id LIMIT 1`, args...)
	return scanUser(row)
}

func credentialClause(policy repository.LookupPolicy) (string, error) {
	collate := "BINARY"
	if policy.FoldCase {
		collate = "NOCASE"
	}

	switch policy.Match {
	case repository.MatchEither, "":
		return fmt.Sprintf(`WHERE username = ? COLLATE %[1]s OR email = ? COLLATE %[1]s`, collate), nil
	case repository.MatchEmail:
		return fmt.Sprintf(`WHERE email = ? COLLATE %s`, collate), nil
	case repository.MatchUsername:
		return fmt.Sprintf(`WHERE username = ? COLLATE %s`, collate), nil
	default:
		return "", fmt.Errorf("unsupported credential match %q", policy.Match)
	}
}

func scanUser(row interface {
	Scan(dest ...any) error
}) (*domain.User, error) {
	var user domain.User
	if err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrUserNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &user, nil
}
