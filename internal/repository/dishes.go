package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tastelog/tastelog/internal/catalog"
	"github.com/tastelog/tastelog/internal/domain"
)

// DishesRepository provides persistence for dishes, hydrated with their
// location, tags, and ratings.
type DishesRepository struct {
	pool *pgxpool.Pool
}

const dishColumns = `
    d.id,
    d.name,
    d.description,
    d.price::float8,
    d.portion_size,
    d.location_id,
    d.created_at,
    d.updated_at,
    l.id,
    l.name,
    l.address,
    l.postal_code,
    l.created_at,
    l.updated_at
`

const dishFrom = ` FROM dishes d JOIN locations l ON l.id = d.location_id`

// ByID fetches a single hydrated dish.
func (r *DishesRepository) ByID(ctx context.Context, id string) (domain.Dish, error) {
	dishes, err := r.fetch(ctx, "WHERE d.id = $1", id)
	if err != nil {
		return domain.Dish{}, err
	}
	if len(dishes) == 0 {
		return domain.Dish{}, domain.NotFound("dish")
	}
	return dishes[0], nil
}

// ByIDs fetches the hydrated dishes for the given ids, in creation order.
// Missing ids are silently skipped.
func (r *DishesRepository) ByIDs(ctx context.Context, ids []string) ([]domain.Dish, error) {
	if len(ids) == 0 {
		return []domain.Dish{}, nil
	}
	return r.fetch(ctx, "WHERE d.id = ANY($1)", ids)
}

// List fetches all hydrated dishes, optionally restricted to a location,
// in creation order.
func (r *DishesRepository) List(ctx context.Context, locationID *string) ([]domain.Dish, error) {
	if locationID != nil {
		return r.fetch(ctx, "WHERE d.location_id = $1", *locationID)
	}
	return r.fetch(ctx, "")
}

// Insert creates a dish and its tag links in one transaction and returns the
// hydrated entity.
func (r *DishesRepository) Insert(ctx context.Context, draft catalog.DishDraft) (domain.Dish, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return domain.Dish{}, fmt.Errorf("begin insert dish: %w", err)
	}
	defer tx.Rollback(ctx)

	id := uuid.NewString()
	const insert = `
        INSERT INTO dishes (id, name, description, price, portion_size, location_id)
        VALUES ($1,$2,$3,$4,$5,$6)
    `
	if _, err := tx.Exec(ctx, insert, id, draft.Name, draft.Description, draft.Price, draft.PortionSize, draft.LocationID); err != nil {
		return domain.Dish{}, fmt.Errorf("insert dish: %w", err)
	}
	if err := replaceDishTags(ctx, tx, id, draft.TagIDs); err != nil {
		return domain.Dish{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.Dish{}, fmt.Errorf("commit insert dish: %w", err)
	}

	return r.ByID(ctx, id)
}

// Update applies a partial update; nil patch fields are left unchanged. A nil
// TagIDs slice keeps existing tags, an empty one clears them.
func (r *DishesRepository) Update(ctx context.Context, id string, patch catalog.DishPatch) (domain.Dish, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return domain.Dish{}, fmt.Errorf("begin update dish: %w", err)
	}
	defer tx.Rollback(ctx)

	const update = `
        UPDATE dishes
        SET name = COALESCE($2, name),
            description = COALESCE($3, description),
            price = COALESCE($4, price),
            portion_size = COALESCE($5, portion_size),
            location_id = COALESCE($6, location_id),
            updated_at = now()
        WHERE id = $1
    `
	tag, err := tx.Exec(ctx, update, id, patch.Name, patch.Description, patch.Price, patch.PortionSize, patch.LocationID)
	if err != nil {
		return domain.Dish{}, fmt.Errorf("update dish: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.Dish{}, domain.NotFound("dish")
	}
	if patch.TagIDs != nil {
		if _, err := tx.Exec(ctx, `DELETE FROM dish_tags WHERE dish_id = $1`, id); err != nil {
			return domain.Dish{}, fmt.Errorf("clear dish tags: %w", err)
		}
		if err := replaceDishTags(ctx, tx, id, patch.TagIDs); err != nil {
			return domain.Dish{}, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.Dish{}, fmt.Errorf("commit update dish: %w", err)
	}

	return r.ByID(ctx, id)
}

func replaceDishTags(ctx context.Context, tx pgx.Tx, dishID string, tagIDs []string) error {
	for _, tagID := range tagIDs {
		const link = `INSERT INTO dish_tags (dish_id, tag_id) VALUES ($1,$2) ON CONFLICT DO NOTHING`
		if _, err := tx.Exec(ctx, link, dishID, tagID); err != nil {
			return fmt.Errorf("link dish tag: %w", err)
		}
	}
	return nil
}

// fetch loads dishes matching the where clause and hydrates their tags and
// ratings with two batched queries, never one query per dish.
func (r *DishesRepository) fetch(ctx context.Context, where string, args ...interface{}) ([]domain.Dish, error) {
	query := "SELECT " + dishColumns + dishFrom
	if where != "" {
		query += " " + where
	}
	query += " ORDER BY d.created_at, d.id"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query dishes: %w", err)
	}
	defer rows.Close()

	dishes := make([]domain.Dish, 0)
	index := make(map[string]int)
	for rows.Next() {
		dish, err := scanDish(rows)
		if err != nil {
			return nil, err
		}
		index[dish.ID] = len(dishes)
		dishes = append(dishes, dish)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scan dishes: %w", err)
	}
	if len(dishes) == 0 {
		return dishes, nil
	}

	ids := make([]string, len(dishes))
	for i, d := range dishes {
		ids[i] = d.ID
	}
	if err := r.attachTags(ctx, dishes, index, ids); err != nil {
		return nil, err
	}
	if err := r.attachRatings(ctx, dishes, index, ids); err != nil {
		return nil, err
	}
	return dishes, nil
}

func (r *DishesRepository) attachTags(ctx context.Context, dishes []domain.Dish, index map[string]int, ids []string) error {
	const query = `
        SELECT dt.dish_id, t.id, t.name, t.created_at
        FROM dish_tags dt
        JOIN tags t ON t.id = dt.tag_id
        WHERE dt.dish_id = ANY($1)
        ORDER BY t.name
    `
	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("query dish tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var dishID string
		var tag domain.Tag
		if err := rows.Scan(&dishID, &tag.ID, &tag.Name, &tag.CreatedAt); err != nil {
			return fmt.Errorf("scan dish tag: %w", err)
		}
		if i, ok := index[dishID]; ok {
			dishes[i].Tags = append(dishes[i].Tags, tag)
		}
	}
	return rows.Err()
}

func (r *DishesRepository) attachRatings(ctx context.Context, dishes []domain.Dish, index map[string]int, ids []string) error {
	const query = `
        SELECT ` + ratingColumns + `
        FROM ratings r
        JOIN users u ON u.id = r.user_id
        WHERE r.dish_id = ANY($1)
        ORDER BY r.created_at, r.id
    `
	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("query dish ratings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		rating, err := scanRating(rows)
		if err != nil {
			return err
		}
		if i, ok := index[rating.DishID]; ok {
			dishes[i].Ratings = append(dishes[i].Ratings, rating)
		}
	}
	return rows.Err()
}

func scanDish(row pgx.Row) (domain.Dish, error) {
	var (
		dish      domain.Dish
		createdAt time.Time
		updatedAt time.Time
	)
	err := row.Scan(
		&dish.ID,
		&dish.Name,
		&dish.Description,
		&dish.Price,
		&dish.PortionSize,
		&dish.LocationID,
		&createdAt,
		&updatedAt,
		&dish.Location.ID,
		&dish.Location.Name,
		&dish.Location.Address,
		&dish.Location.PostalCode,
		&dish.Location.CreatedAt,
		&dish.Location.UpdatedAt,
	)
	if err != nil {
		return domain.Dish{}, fmt.Errorf("scan dish: %w", err)
	}
	dish.CreatedAt = createdAt
	dish.UpdatedAt = updatedAt
	return dish, nil
}
