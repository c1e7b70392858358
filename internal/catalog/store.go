package catalog

import (
	"context"

	"github.com/tastelog/tastelog/internal/domain"
)

// Storage contracts implemented by internal/repository. Entities come back
// hydrated (location, tags, ratings with users) and are treated as borrowed
// per-request copies. Absent entities surface as *domain.NotFoundError.

// DishStore reads and writes dishes.
type DishStore interface {
	ByID(ctx context.Context, id string) (domain.Dish, error)
	ByIDs(ctx context.Context, ids []string) ([]domain.Dish, error)
	List(ctx context.Context, locationID *string) ([]domain.Dish, error)
	Insert(ctx context.Context, draft DishDraft) (domain.Dish, error)
	Update(ctx context.Context, id string, patch DishPatch) (domain.Dish, error)
}

// LocationStore reads and upserts locations.
type LocationStore interface {
	ByID(ctx context.Context, id string) (domain.Location, error)
	List(ctx context.Context) ([]domain.Location, error)
	UpsertByName(ctx context.Context, name, address string, postalCode *string) (domain.Location, error)
}

// RatingStore reads and writes ratings.
type RatingStore interface {
	ByID(ctx context.Context, id string) (domain.Rating, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Rating, error)
	Insert(ctx context.Context, draft RatingDraft) (domain.Rating, error)
	Update(ctx context.Context, id string, patch RatingPatch) (domain.Rating, error)
	Delete(ctx context.Context, id string) error
	ExistsFor(ctx context.Context, dishID, userID string) (bool, error)
}

// TagStore reads tags.
type TagStore interface {
	List(ctx context.Context) ([]domain.Tag, error)
	ByIDs(ctx context.Context, ids []string) ([]domain.Tag, error)
}

// DishDraft bundles the fields required to insert a dish.
type DishDraft struct {
	Name        string
	Description *string
	Price       float64
	PortionSize string
	LocationID  string
	TagIDs      []string
}

// DishPatch carries optional updates; nil fields are left unchanged.
type DishPatch struct {
	Name        *string
	Description *string
	Price       *float64
	PortionSize *string
	LocationID  *string
	TagIDs      []string
}

// RatingDraft bundles the fields required to insert a rating.
type RatingDraft struct {
	DishID       string
	UserID       string
	Taste        int
	Portion      int
	Presentation int
	Notes        *string
}

// RatingPatch carries optional updates; nil fields are left unchanged.
type RatingPatch struct {
	Taste        *int
	Portion      *int
	Presentation *int
	Notes        *string
}
