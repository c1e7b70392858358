package catalog

import (
	"context"

	"github.com/tastelog/tastelog/internal/domain"
	"github.com/tastelog/tastelog/internal/scoring"
)

// ShapedDish attaches the computed aggregate score to a fetched dish. The
// stored entity is embedded untouched.
type ShapedDish struct {
	domain.Dish
	AggregateScore float64
}

// ShapedRating pairs a rating with its dish, shaped for profile views.
type ShapedRating struct {
	domain.Rating
	Dish ShapedDish
}

// QueryService resolves read queries: it fetches hydrated entities from
// storage, runs the aggregator, applies the filter engine, and shapes the
// result. Aggregates are recomputed on every call, never cached.
type QueryService struct {
	dishes    DishStore
	locations LocationStore
	ratings   RatingStore
	tags      TagStore
}

// NewQueryService wires a QueryService to its storage collaborators.
func NewQueryService(dishes DishStore, locations LocationStore, ratings RatingStore, tags TagStore) *QueryService {
	return &QueryService{dishes: dishes, locations: locations, ratings: ratings, tags: tags}
}

// ListDishes returns dishes matching the filter in storage fetch order.
// A nil filter matches everything.
func (s *QueryService) ListDishes(ctx context.Context, filter *FilterSpec) ([]ShapedDish, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	var locationID *string
	if filter != nil {
		locationID = filter.LocationID
	}
	dishes, err := s.dishes.List(ctx, locationID)
	if err != nil {
		return nil, domain.Transient("list dishes", err)
	}

	shaped := make([]ShapedDish, 0, len(dishes))
	for _, dish := range dishes {
		score := scoring.Aggregate(dish.Ratings)
		if !filter.Matches(dish, score) {
			continue
		}
		shaped = append(shaped, ShapedDish{Dish: dish, AggregateScore: score})
	}
	return shaped, nil
}

// GetDish returns a single shaped dish or a NotFoundError.
func (s *QueryService) GetDish(ctx context.Context, id string) (ShapedDish, error) {
	dish, err := s.dishes.ByID(ctx, id)
	if err != nil {
		return ShapedDish{}, domain.Transient("get dish", err)
	}
	return ShapedDish{Dish: dish, AggregateScore: scoring.Aggregate(dish.Ratings)}, nil
}

// FeaturedDishes lists dishes whose aggregate score is at least minRating.
func (s *QueryService) FeaturedDishes(ctx context.Context, minRating float64) ([]ShapedDish, error) {
	return s.ListDishes(ctx, &FilterSpec{MinRating: &minRating})
}

// SearchDishes lists dishes matching a free-text query.
func (s *QueryService) SearchDishes(ctx context.Context, query string) ([]ShapedDish, error) {
	return s.ListDishes(ctx, &FilterSpec{Search: &query})
}

// UserRatings returns a user's ratings with their dishes shaped for profile
// views. Dishes are batch-loaded rather than fetched per rating.
func (s *QueryService) UserRatings(ctx context.Context, userID string) ([]ShapedRating, error) {
	ratings, err := s.ratings.ListByUser(ctx, userID)
	if err != nil {
		return nil, domain.Transient("list user ratings", err)
	}
	if len(ratings) == 0 {
		return []ShapedRating{}, nil
	}

	ids := make([]string, 0, len(ratings))
	seen := make(map[string]struct{}, len(ratings))
	for _, r := range ratings {
		if _, ok := seen[r.DishID]; ok {
			continue
		}
		seen[r.DishID] = struct{}{}
		ids = append(ids, r.DishID)
	}

	dishes, err := s.dishes.ByIDs(ctx, ids)
	if err != nil {
		return nil, domain.Transient("load rated dishes", err)
	}
	byID := make(map[string]ShapedDish, len(dishes))
	for _, dish := range dishes {
		byID[dish.ID] = ShapedDish{Dish: dish, AggregateScore: scoring.Aggregate(dish.Ratings)}
	}

	shaped := make([]ShapedRating, 0, len(ratings))
	for _, r := range ratings {
		shaped = append(shaped, ShapedRating{Rating: r, Dish: byID[r.DishID]})
	}
	return shaped, nil
}

// Locations lists all locations.
func (s *QueryService) Locations(ctx context.Context) ([]domain.Location, error) {
	locations, err := s.locations.List(ctx)
	if err != nil {
		return nil, domain.Transient("list locations", err)
	}
	return locations, nil
}

// Location returns a single location or a NotFoundError.
func (s *QueryService) Location(ctx context.Context, id string) (domain.Location, error) {
	location, err := s.locations.ByID(ctx, id)
	if err != nil {
		return domain.Location{}, domain.Transient("get location", err)
	}
	return location, nil
}

// Tags lists all tags.
func (s *QueryService) Tags(ctx context.Context) ([]domain.Tag, error) {
	tags, err := s.tags.List(ctx)
	if err != nil {
		return nil, domain.Transient("list tags", err)
	}
	return tags, nil
}
