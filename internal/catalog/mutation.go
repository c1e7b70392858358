package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/tastelog/tastelog/internal/domain"
)

// Policy carries product decisions that are configuration, not code.
type Policy struct {
	// OneRatingPerUserPerDish rejects a second rating by the same user for
	// the same dish. Default off: repeated submissions create distinct
	// ratings.
	OneRatingPerUserPerDish bool
}

// DishInput is the payload for CreateDish. The location is referenced by id
// or supplied inline, in which case it is created or reused by name.
type DishInput struct {
	Name        string
	Description *string
	Price       float64
	PortionSize string
	LocationID  *string
	Location    *LocationInput
	TagIDs      []string
}

// LocationInput is an inline location payload.
type LocationInput struct {
	Name       string
	Address    string
	PostalCode *string
}

// RatingInput is the payload for CreateRating.
type RatingInput struct {
	DishID       string
	Taste        int
	Portion      int
	Presentation int
	Notes        *string
}

// MutationService validates and persists dish and rating writes. Identity is
// passed explicitly by the caller; the service decides whether anonymous is
// acceptable per operation.
type MutationService struct {
	dishes    DishStore
	locations LocationStore
	ratings   RatingStore
	tags      TagStore
	policy    Policy
}

// NewMutationService wires a MutationService to its storage collaborators.
func NewMutationService(dishes DishStore, locations LocationStore, ratings RatingStore, tags TagStore, policy Policy) *MutationService {
	return &MutationService{dishes: dishes, locations: locations, ratings: ratings, tags: tags, policy: policy}
}

// CreateDish validates the input, resolves the location reference, and
// persists the dish.
func (s *MutationService) CreateDish(ctx context.Context, input DishInput) (domain.Dish, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return domain.Dish{}, domain.Invalid("name", "must not be empty")
	}
	if input.Price < 0 {
		return domain.Dish{}, domain.Invalid("price", "must be non-negative")
	}
	portion := strings.TrimSpace(input.PortionSize)
	if portion == "" {
		return domain.Dish{}, domain.Invalid("portion_size", "must not be empty")
	}

	locationID, err := s.resolveLocation(ctx, input.LocationID, input.Location)
	if err != nil {
		return domain.Dish{}, err
	}
	if err := s.checkTags(ctx, input.TagIDs); err != nil {
		return domain.Dish{}, err
	}

	dish, err := s.dishes.Insert(ctx, DishDraft{
		Name:        name,
		Description: input.Description,
		Price:       input.Price,
		PortionSize: portion,
		LocationID:  locationID,
		TagIDs:      input.TagIDs,
	})
	if err != nil {
		return domain.Dish{}, domain.Transient("create dish", err)
	}
	return dish, nil
}

// UpdateDish applies a partial update to an existing dish.
func (s *MutationService) UpdateDish(ctx context.Context, id string, patch DishPatch) (domain.Dish, error) {
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return domain.Dish{}, domain.Invalid("name", "must not be empty")
	}
	if patch.Price != nil && *patch.Price < 0 {
		return domain.Dish{}, domain.Invalid("price", "must be non-negative")
	}
	if patch.PortionSize != nil && strings.TrimSpace(*patch.PortionSize) == "" {
		return domain.Dish{}, domain.Invalid("portion_size", "must not be empty")
	}
	if patch.LocationID != nil {
		if _, err := s.locations.ByID(ctx, *patch.LocationID); err != nil {
			return domain.Dish{}, domain.Transient("resolve location", err)
		}
	}
	if err := s.checkTags(ctx, patch.TagIDs); err != nil {
		return domain.Dish{}, err
	}

	dish, err := s.dishes.Update(ctx, id, patch)
	if err != nil {
		return domain.Dish{}, domain.Transient("update dish", err)
	}
	return dish, nil
}

// CreateRating persists a rating on behalf of actor. Anonymous callers are
// rejected before any storage access.
func (s *MutationService) CreateRating(ctx context.Context, input RatingInput, actor *domain.User) (domain.Rating, error) {
	if actor == nil {
		return domain.Rating{}, &domain.AuthenticationError{Reason: "rating requires a signed-in user"}
	}
	if err := validateAxes(input.Taste, input.Portion, input.Presentation); err != nil {
		return domain.Rating{}, err
	}

	if _, err := s.dishes.ByID(ctx, input.DishID); err != nil {
		return domain.Rating{}, domain.Transient("resolve dish", err)
	}

	if s.policy.OneRatingPerUserPerDish {
		exists, err := s.ratings.ExistsFor(ctx, input.DishID, actor.ID)
		if err != nil {
			return domain.Rating{}, domain.Transient("check existing rating", err)
		}
		if exists {
			return domain.Rating{}, domain.Invalid("dish_id", "user has already rated this dish")
		}
	}

	rating, err := s.ratings.Insert(ctx, RatingDraft{
		DishID:       input.DishID,
		UserID:       actor.ID,
		Taste:        input.Taste,
		Portion:      input.Portion,
		Presentation: input.Presentation,
		Notes:        input.Notes,
	})
	if err != nil {
		return domain.Rating{}, domain.Transient("create rating", err)
	}
	return rating, nil
}

// UpdateRating applies a partial update to a rating owned by actor.
func (s *MutationService) UpdateRating(ctx context.Context, id string, patch RatingPatch, actor *domain.User) (domain.Rating, error) {
	if actor == nil {
		return domain.Rating{}, &domain.AuthenticationError{Reason: "rating requires a signed-in user"}
	}
	for field, score := range map[string]*int{
		"taste_rating":        patch.Taste,
		"portion_rating":      patch.Portion,
		"presentation_rating": patch.Presentation,
	} {
		if score != nil && (*score < domain.AxisScoreMin || *score > domain.AxisScoreMax) {
			return domain.Rating{}, domain.Invalid(field, axisRangeMessage)
		}
	}

	existing, err := s.ratings.ByID(ctx, id)
	if err != nil {
		return domain.Rating{}, domain.Transient("resolve rating", err)
	}
	if existing.UserID != actor.ID {
		return domain.Rating{}, &domain.AuthenticationError{Reason: "rating belongs to another user"}
	}

	rating, err := s.ratings.Update(ctx, id, patch)
	if err != nil {
		return domain.Rating{}, domain.Transient("update rating", err)
	}
	return rating, nil
}

// DeleteRating removes a rating owned by actor.
func (s *MutationService) DeleteRating(ctx context.Context, id string, actor *domain.User) error {
	if actor == nil {
		return &domain.AuthenticationError{Reason: "rating requires a signed-in user"}
	}
	existing, err := s.ratings.ByID(ctx, id)
	if err != nil {
		return domain.Transient("resolve rating", err)
	}
	if existing.UserID != actor.ID {
		return &domain.AuthenticationError{Reason: "rating belongs to another user"}
	}
	if err := s.ratings.Delete(ctx, id); err != nil {
		return domain.Transient("delete rating", err)
	}
	return nil
}

func (s *MutationService) resolveLocation(ctx context.Context, id *string, inline *LocationInput) (string, error) {
	switch {
	case id != nil:
		location, err := s.locations.ByID(ctx, *id)
		if err != nil {
			return "", domain.Transient("resolve location", err)
		}
		return location.ID, nil
	case inline != nil:
		name := strings.TrimSpace(inline.Name)
		address := strings.TrimSpace(inline.Address)
		if name == "" {
			return "", domain.Invalid("location.name", "must not be empty")
		}
		if address == "" {
			return "", domain.Invalid("location.address", "must not be empty")
		}
		location, err := s.locations.UpsertByName(ctx, name, address, inline.PostalCode)
		if err != nil {
			return "", domain.Transient("upsert location", err)
		}
		return location.ID, nil
	default:
		return "", domain.Invalid("location", "location_id or location payload is required")
	}
}

func (s *MutationService) checkTags(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	tags, err := s.tags.ByIDs(ctx, ids)
	if err != nil {
		return domain.Transient("resolve tags", err)
	}
	if len(tags) != len(ids) {
		return domain.Invalid("tag_ids", "one or more tags do not exist")
	}
	return nil
}

var axisRangeMessage = fmt.Sprintf("must be between %d and %d", domain.AxisScoreMin, domain.AxisScoreMax)

func validateAxes(taste, portion, presentation int) error {
	for field, score := range map[string]int{
		"taste_rating":        taste,
		"portion_rating":      portion,
		"presentation_rating": presentation,
	} {
		if score < domain.AxisScoreMin || score > domain.AxisScoreMax {
			return domain.Invalid(field, axisRangeMessage)
		}
	}
	return nil
}
