package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/tastelog/tastelog/internal/domain"
)

// memStore is an in-memory implementation of the storage contracts so the
// services can be exercised without Postgres. Dishes are kept hydrated the
// way the repositories return them.
type memStore struct {
	dishes    map[string]*domain.Dish
	dishOrder []string
	locations map[string]domain.Location
	ratings   map[string]domain.Rating
	tags      map[string]domain.Tag
	seq       int

	// failWith, when set, is returned by every storage call.
	failWith error
}

func newMemStore() *memStore {
	return &memStore{
		dishes:    map[string]*domain.Dish{},
		locations: map[string]domain.Location{},
		ratings:   map[string]domain.Rating{},
		tags:      map[string]domain.Tag{},
	}
}

func (m *memStore) nextID(kind string) string {
	m.seq++
	return fmt.Sprintf("%s-%d", kind, m.seq)
}

func (m *memStore) addLocation(name, address string) domain.Location {
	loc := domain.Location{ID: m.nextID("loc"), Name: name, Address: address, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	m.locations[loc.ID] = loc
	return loc
}

func (m *memStore) addTag(name string) domain.Tag {
	tag := domain.Tag{ID: m.nextID("tag"), Name: name, CreatedAt: time.Now()}
	m.tags[tag.ID] = tag
	return tag
}

func (m *memStore) addDish(name string, price float64, loc domain.Location, tags ...domain.Tag) *domain.Dish {
	dish := &domain.Dish{
		ID:          m.nextID("dish"),
		Name:        name,
		Price:       price,
		PortionSize: "regular",
		LocationID:  loc.ID,
		Location:    loc,
		Tags:        tags,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	m.dishes[dish.ID] = dish
	m.dishOrder = append(m.dishOrder, dish.ID)
	return dish
}

func (m *memStore) addRating(dish *domain.Dish, userID string, taste, portion, presentation int) domain.Rating {
	rating := domain.Rating{
		ID:           m.nextID("rating"),
		DishID:       dish.ID,
		UserID:       userID,
		Taste:        taste,
		Portion:      portion,
		Presentation: presentation,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	m.ratings[rating.ID] = rating
	dish.Ratings = append(dish.Ratings, rating)
	return rating
}

// DishStore

func (m *memStore) ByID(ctx context.Context, id string) (domain.Dish, error) {
	if m.failWith != nil {
		return domain.Dish{}, m.failWith
	}
	dish, ok := m.dishes[id]
	if !ok {
		return domain.Dish{}, domain.NotFound("dish")
	}
	return *dish, nil
}

func (m *memStore) ByIDs(ctx context.Context, ids []string) ([]domain.Dish, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	out := make([]domain.Dish, 0, len(ids))
	for _, id := range ids {
		if dish, ok := m.dishes[id]; ok {
			out = append(out, *dish)
		}
	}
	return out, nil
}

func (m *memStore) List(ctx context.Context, locationID *string) ([]domain.Dish, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	out := make([]domain.Dish, 0, len(m.dishOrder))
	for _, id := range m.dishOrder {
		dish := m.dishes[id]
		if locationID != nil && dish.LocationID != *locationID {
			continue
		}
		out = append(out, *dish)
	}
	return out, nil
}

func (m *memStore) Insert(ctx context.Context, draft DishDraft) (domain.Dish, error) {
	if m.failWith != nil {
		return domain.Dish{}, m.failWith
	}
	loc, ok := m.locations[draft.LocationID]
	if !ok {
		return domain.Dish{}, domain.NotFound("location")
	}
	tags := make([]domain.Tag, 0, len(draft.TagIDs))
	for _, id := range draft.TagIDs {
		tags = append(tags, m.tags[id])
	}
	dish := &domain.Dish{
		ID:          m.nextID("dish"),
		Name:        draft.Name,
		Description: draft.Description,
		Price:       draft.Price,
		PortionSize: draft.PortionSize,
		LocationID:  loc.ID,
		Location:    loc,
		Tags:        tags,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	m.dishes[dish.ID] = dish
	m.dishOrder = append(m.dishOrder, dish.ID)
	return *dish, nil
}

func (m *memStore) Update(ctx context.Context, id string, patch DishPatch) (domain.Dish, error) {
	if m.failWith != nil {
		return domain.Dish{}, m.failWith
	}
	dish, ok := m.dishes[id]
	if !ok {
		return domain.Dish{}, domain.NotFound("dish")
	}
	if patch.Name != nil {
		dish.Name = *patch.Name
	}
	if patch.Description != nil {
		dish.Description = patch.Description
	}
	if patch.Price != nil {
		dish.Price = *patch.Price
	}
	if patch.PortionSize != nil {
		dish.PortionSize = *patch.PortionSize
	}
	if patch.LocationID != nil {
		loc, ok := m.locations[*patch.LocationID]
		if !ok {
			return domain.Dish{}, domain.NotFound("location")
		}
		dish.LocationID = loc.ID
		dish.Location = loc
	}
	if patch.TagIDs != nil {
		tags := make([]domain.Tag, 0, len(patch.TagIDs))
		for _, tid := range patch.TagIDs {
			tags = append(tags, m.tags[tid])
		}
		dish.Tags = tags
	}
	dish.UpdatedAt = time.Now()
	return *dish, nil
}

// locationStore wraps memStore so method sets with clashing names can
// coexist; catalog services take each contract separately anyway.
type locationStore struct{ m *memStore }

func (s locationStore) ByID(ctx context.Context, id string) (domain.Location, error) {
	if s.m.failWith != nil {
		return domain.Location{}, s.m.failWith
	}
	loc, ok := s.m.locations[id]
	if !ok {
		return domain.Location{}, domain.NotFound("location")
	}
	return loc, nil
}

func (s locationStore) List(ctx context.Context) ([]domain.Location, error) {
	if s.m.failWith != nil {
		return nil, s.m.failWith
	}
	out := make([]domain.Location, 0, len(s.m.locations))
	for _, loc := range s.m.locations {
		out = append(out, loc)
	}
	return out, nil
}

func (s locationStore) UpsertByName(ctx context.Context, name, address string, postalCode *string) (domain.Location, error) {
	if s.m.failWith != nil {
		return domain.Location{}, s.m.failWith
	}
	for _, loc := range s.m.locations {
		if loc.Name == name {
			return loc, nil
		}
	}
	loc := domain.Location{ID: s.m.nextID("loc"), Name: name, Address: address, PostalCode: postalCode, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	s.m.locations[loc.ID] = loc
	return loc, nil
}

type ratingStore struct{ m *memStore }

func (s ratingStore) ByID(ctx context.Context, id string) (domain.Rating, error) {
	if s.m.failWith != nil {
		return domain.Rating{}, s.m.failWith
	}
	rating, ok := s.m.ratings[id]
	if !ok {
		return domain.Rating{}, domain.NotFound("rating")
	}
	return rating, nil
}

func (s ratingStore) ListByUser(ctx context.Context, userID string) ([]domain.Rating, error) {
	if s.m.failWith != nil {
		return nil, s.m.failWith
	}
	out := make([]domain.Rating, 0)
	for _, dishID := range s.m.dishOrder {
		for _, rating := range s.m.dishes[dishID].Ratings {
			if rating.UserID == userID {
				out = append(out, rating)
			}
		}
	}
	return out, nil
}

func (s ratingStore) Insert(ctx context.Context, draft RatingDraft) (domain.Rating, error) {
	if s.m.failWith != nil {
		return domain.Rating{}, s.m.failWith
	}
	dish, ok := s.m.dishes[draft.DishID]
	if !ok {
		return domain.Rating{}, domain.NotFound("dish")
	}
	rating := domain.Rating{
		ID:           s.m.nextID("rating"),
		DishID:       draft.DishID,
		UserID:       draft.UserID,
		Taste:        draft.Taste,
		Portion:      draft.Portion,
		Presentation: draft.Presentation,
		Notes:        draft.Notes,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	s.m.ratings[rating.ID] = rating
	dish.Ratings = append(dish.Ratings, rating)
	return rating, nil
}

func (s ratingStore) Update(ctx context.Context, id string, patch RatingPatch) (domain.Rating, error) {
	if s.m.failWith != nil {
		return domain.Rating{}, s.m.failWith
	}
	rating, ok := s.m.ratings[id]
	if !ok {
		return domain.Rating{}, domain.NotFound("rating")
	}
	if patch.Taste != nil {
		rating.Taste = *patch.Taste
	}
	if patch.Portion != nil {
		rating.Portion = *patch.Portion
	}
	if patch.Presentation != nil {
		rating.Presentation = *patch.Presentation
	}
	if patch.Notes != nil {
		rating.Notes = patch.Notes
	}
	rating.UpdatedAt = time.Now()
	s.m.ratings[id] = rating
	if dish, ok := s.m.dishes[rating.DishID]; ok {
		for i := range dish.Ratings {
			if dish.Ratings[i].ID == id {
				dish.Ratings[i] = rating
			}
		}
	}
	return rating, nil
}

func (s ratingStore) Delete(ctx context.Context, id string) error {
	if s.m.failWith != nil {
		return s.m.failWith
	}
	rating, ok := s.m.ratings[id]
	if !ok {
		return domain.NotFound("rating")
	}
	delete(s.m.ratings, id)
	if dish, ok := s.m.dishes[rating.DishID]; ok {
		kept := dish.Ratings[:0]
		for _, r := range dish.Ratings {
			if r.ID != id {
				kept = append(kept, r)
			}
		}
		dish.Ratings = kept
	}
	return nil
}

func (s ratingStore) ExistsFor(ctx context.Context, dishID, userID string) (bool, error) {
	if s.m.failWith != nil {
		return false, s.m.failWith
	}
	for _, rating := range s.m.ratings {
		if rating.DishID == dishID && rating.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

type tagStore struct{ m *memStore }

func (s tagStore) List(ctx context.Context) ([]domain.Tag, error) {
	if s.m.failWith != nil {
		return nil, s.m.failWith
	}
	out := make([]domain.Tag, 0, len(s.m.tags))
	for _, tag := range s.m.tags {
		out = append(out, tag)
	}
	return out, nil
}

func (s tagStore) ByIDs(ctx context.Context, ids []string) ([]domain.Tag, error) {
	if s.m.failWith != nil {
		return nil, s.m.failWith
	}
	out := make([]domain.Tag, 0, len(ids))
	for _, id := range ids {
		if tag, ok := s.m.tags[id]; ok {
			out = append(out, tag)
		}
	}
	return out, nil
}

func newTestServices(m *memStore, policy Policy) (*QueryService, *MutationService) {
	queries := NewQueryService(m, locationStore{m}, ratingStore{m}, tagStore{m})
	mutations := NewMutationService(m, locationStore{m}, ratingStore{m}, tagStore{m}, policy)
	return queries, mutations
}
