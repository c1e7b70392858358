package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tastelog/tastelog/internal/catalog"
	"github.com/tastelog/tastelog/internal/domain"
)

// RatingsRepository provides persistence for multi-axis dish ratings.
type RatingsRepository struct {
	pool *pgxpool.Pool
}

const ratingColumns = `
    r.id,
    r.dish_id,
    r.user_id,
    r.taste_rating,
    r.portion_rating,
    r.presentation_rating,
    r.notes,
    r.created_at,
    r.updated_at,
    u.id,
    u.username,
    u.email,
    u.created_at,
    u.updated_at
`

const ratingFrom = ` FROM ratings r JOIN users u ON u.id = r.user_id`

// ByID fetches a single rating with its author.
func (r *RatingsRepository) ByID(ctx context.Context, id string) (domain.Rating, error) {
	query := "SELECT " + ratingColumns + ratingFrom + " WHERE r.id = $1"
	rating, err := scanRating(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Rating{}, domain.NotFound("rating")
		}
		return domain.Rating{}, err
	}
	return rating, nil
}

// ListByUser fetches a user's ratings in creation order.
func (r *RatingsRepository) ListByUser(ctx context.Context, userID string) ([]domain.Rating, error) {
	query := "SELECT " + ratingColumns + ratingFrom + " WHERE r.user_id = $1 ORDER BY r.created_at, r.id"
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query user ratings: %w", err)
	}
	defer rows.Close()

	ratings := make([]domain.Rating, 0)
	for rows.Next() {
		rating, err := scanRating(rows)
		if err != nil {
			return nil, err
		}
		ratings = append(ratings, rating)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scan user ratings: %w", err)
	}
	return ratings, nil
}

// Insert persists a rating with a server-assigned id and timestamp. A foreign
// key violation means the dish or user vanished between validation and write.
func (r *RatingsRepository) Insert(ctx context.Context, draft catalog.RatingDraft) (domain.Rating, error) {
	const query = `
        INSERT INTO ratings (id, dish_id, user_id, taste_rating, portion_rating, presentation_rating, notes)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
    `
	id := uuid.NewString()
	_, err := r.pool.Exec(ctx, query, id, draft.DishID, draft.UserID, draft.Taste, draft.Portion, draft.Presentation, draft.Notes)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return domain.Rating{}, domain.NotFound("dish")
		}
		return domain.Rating{}, fmt.Errorf("insert rating: %w", err)
	}
	return r.ByID(ctx, id)
}

// Update applies a partial update; nil patch fields are left unchanged.
func (r *RatingsRepository) Update(ctx context.Context, id string, patch catalog.RatingPatch) (domain.Rating, error) {
	const query = `
        UPDATE ratings
        SET taste_rating = COALESCE($2, taste_rating),
            portion_rating = COALESCE($3, portion_rating),
            presentation_rating = COALESCE($4, presentation_rating),
            notes = COALESCE($5, notes),
            updated_at = now()
        WHERE id = $1
    `
	tag, err := r.pool.Exec(ctx, query, id, patch.Taste, patch.Portion, patch.Presentation, patch.Notes)
	if err != nil {
		return domain.Rating{}, fmt.Errorf("update rating: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.Rating{}, domain.NotFound("rating")
	}
	return r.ByID(ctx, id)
}

// Delete removes a rating.
func (r *RatingsRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM ratings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete rating: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("rating")
	}
	return nil
}

// ExistsFor reports whether the user has already rated the dish.
func (r *RatingsRepository) ExistsFor(ctx context.Context, dishID, userID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM ratings WHERE dish_id = $1 AND user_id = $2)`
	var exists bool
	if err := r.pool.QueryRow(ctx, query, dishID, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check rating exists: %w", err)
	}
	return exists, nil
}

func scanRating(row pgx.Row) (domain.Rating, error) {
	var (
		rating domain.Rating
		user   domain.User
	)
	err := row.Scan(
		&rating.ID,
		&rating.DishID,
		&rating.UserID,
		&rating.Taste,
		&rating.Portion,
		&rating.Presentation,
		&rating.Notes,
		&rating.CreatedAt,
		&rating.UpdatedAt,
		&user.ID,
		&user.Username,
		&user.Email,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Rating{}, err
		}
		return domain.Rating{}, fmt.Errorf("scan rating: %w", err)
	}
	rating.User = &user
	return rating, nil
}
