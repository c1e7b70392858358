// Package repository implements Postgres persistence for the catalog and
// identity layers. Not-found and constraint violations are translated into
// the domain error taxonomy at this boundary.
package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tastelog/tastelog/internal/store"
)

// Repository aggregates all entity-specific repositories.
type Repository struct {
	Dishes    *DishesRepository
	Locations *LocationsRepository
	Ratings   *RatingsRepository
	Tags      *TagsRepository
	Users     *UsersRepository
}

// New constructs a Repository backed by the provided store.
func New(st *store.Store) *Repository {
	return NewWithPool(st.Pool())
}

// NewWithPool allows constructing repositories directly from a pgx pool.
func NewWithPool(pool *pgxpool.Pool) *Repository {
	return &Repository{
		Dishes:    &DishesRepository{pool: pool},
		Locations: &LocationsRepository{pool: pool},
		Ratings:   &RatingsRepository{pool: pool},
		Tags:      &TagsRepository{pool: pool},
		Users:     &UsersRepository{pool: pool},
	}
}

const uniqueViolation = "23505"

// uniqueConstraint returns the violated unique constraint name, or "".
func uniqueConstraint(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return pgErr.ConstraintName
	}
	return ""
}
