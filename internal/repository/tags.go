package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tastelog/tastelog/internal/domain"
)

// TagsRepository provides persistence for tags.
type TagsRepository struct {
	pool *pgxpool.Pool
}

// List fetches all tags ordered by name.
func (r *TagsRepository) List(ctx context.Context) ([]domain.Tag, error) {
	const query = `SELECT id, name, created_at FROM tags ORDER BY name`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query tags: %w", err)
	}
	defer rows.Close()
	return collectTags(rows)
}

// ByIDs fetches the tags matching the given ids; unknown ids are skipped.
func (r *TagsRepository) ByIDs(ctx context.Context, ids []string) ([]domain.Tag, error) {
	if len(ids) == 0 {
		return []domain.Tag{}, nil
	}
	const query = `SELECT id, name, created_at FROM tags WHERE id = ANY($1) ORDER BY name`
	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("query tags by ids: %w", err)
	}
	defer rows.Close()
	return collectTags(rows)
}

// UpsertByName creates a tag or reuses the existing one with the same name.
func (r *TagsRepository) UpsertByName(ctx context.Context, name string) (domain.Tag, error) {
	const query = `
        INSERT INTO tags (id, name)
        VALUES ($1,$2)
        ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
        RETURNING id, name, created_at
    `
	var tag domain.Tag
	if err := r.pool.QueryRow(ctx, query, uuid.NewString(), name).Scan(&tag.ID, &tag.Name, &tag.CreatedAt); err != nil {
		return domain.Tag{}, fmt.Errorf("upsert tag: %w", err)
	}
	return tag, nil
}

func collectTags(rows pgx.Rows) ([]domain.Tag, error) {
	tags := make([]domain.Tag, 0)
	for rows.Next() {
		var tag domain.Tag
		if err := rows.Scan(&tag.ID, &tag.Name, &tag.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scan tags: %w", err)
	}
	return tags, nil
}
