package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tastelog/tastelog/internal/domain"
)

// UsersRepository provides persistence for user accounts.
type UsersRepository struct {
	pool *pgxpool.Pool
}

const userColumns = `id, username, email, password_hash, created_at, updated_at`

// ByID fetches a user by its identifier.
func (r *UsersRepository) ByID(ctx context.Context, id string) (domain.User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE id = $1"
	return r.one(ctx, query, id)
}

// ByLogin fetches a user by username or email.
func (r *UsersRepository) ByLogin(ctx context.Context, usernameOrEmail string) (domain.User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE username = $1 OR email = $1"
	return r.one(ctx, query, usernameOrEmail)
}

// Insert creates a user. Username and email collisions surface as
// field-level validation errors.
func (r *UsersRepository) Insert(ctx context.Context, username, email, passwordHash string) (domain.User, error) {
	query := `
        INSERT INTO users (id, username, email, password_hash)
        VALUES ($1,$2,$3,$4)
        RETURNING ` + userColumns
	user, err := scanUser(r.pool.QueryRow(ctx, query, uuid.NewString(), username, email, passwordHash))
	if err != nil {
		switch constraint := uniqueConstraint(err); {
		case strings.Contains(constraint, "username"):
			return domain.User{}, domain.Invalid("username", "already taken")
		case strings.Contains(constraint, "email"):
			return domain.User{}, domain.Invalid("email", "already registered")
		}
		return domain.User{}, fmt.Errorf("insert user: %w", err)
	}
	return user, nil
}

func (r *UsersRepository) one(ctx context.Context, query string, args ...interface{}) (domain.User, error) {
	user, err := scanUser(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, domain.NotFound("user")
		}
		return domain.User{}, err
	}
	return user, nil
}

func scanUser(row pgx.Row) (domain.User, error) {
	var user domain.User
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, err
		}
		return domain.User{}, fmt.Errorf("scan user: %w", err)
	}
	return user, nil
}
