package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tastelog/tastelog/internal/domain"
)

// LocationsRepository provides persistence for locations.
type LocationsRepository struct {
	pool *pgxpool.Pool
}

const locationColumns = `id, name, address, postal_code, created_at, updated_at`

// ByID fetches a location by its identifier.
func (r *LocationsRepository) ByID(ctx context.Context, id string) (domain.Location, error) {
	query := "SELECT " + locationColumns + " FROM locations WHERE id = $1"
	location, err := scanLocation(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Location{}, domain.NotFound("location")
		}
		return domain.Location{}, err
	}
	return location, nil
}

// List fetches all locations in creation order.
func (r *LocationsRepository) List(ctx context.Context) ([]domain.Location, error) {
	query := "SELECT " + locationColumns + " FROM locations ORDER BY created_at, id"
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query locations: %w", err)
	}
	defer rows.Close()

	locations := make([]domain.Location, 0)
	for rows.Next() {
		location, err := scanLocation(rows)
		if err != nil {
			return nil, err
		}
		locations = append(locations, location)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scan locations: %w", err)
	}
	return locations, nil
}

// UpsertByName creates a location or reuses the existing one with the same
// name; an existing location's address is left untouched.
func (r *LocationsRepository) UpsertByName(ctx context.Context, name, address string, postalCode *string) (domain.Location, error) {
	query := `
        INSERT INTO locations (id, name, address, postal_code)
        VALUES ($1,$2,$3,$4)
        ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
        RETURNING ` + locationColumns
	location, err := scanLocation(r.pool.QueryRow(ctx, query, uuid.NewString(), name, address, postalCode))
	if err != nil {
		return domain.Location{}, fmt.Errorf("upsert location: %w", err)
	}
	return location, nil
}

func scanLocation(row pgx.Row) (domain.Location, error) {
	var location domain.Location
	err := row.Scan(
		&location.ID,
		&location.Name,
		&location.Address,
		&location.PostalCode,
		&location.CreatedAt,
		&location.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Location{}, err
		}
		return domain.Location{}, fmt.Errorf("scan location: %w", err)
	}
	return location, nil
}
