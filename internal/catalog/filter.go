// Package catalog holds the dish query and mutation services together with
// the filter engine they share. Storage is reached through interfaces so
// tests can substitute in-memory doubles.
package catalog

import (
	"strings"

	"github.com/tastelog/tastelog/internal/domain"
)

// FilterSpec narrows a dish listing. All fields are optional; absence means
// no constraint. Multiple tag ids combine with OR: a dish matches if it
// carries any requested tag.
type FilterSpec struct {
	Search     *string
	LocationID *string
	TagIDs     []string
	MinPrice   *float64
	MaxPrice   *float64
	MinRating  *float64
}

// Validate rejects contradictory bounds as a caller error rather than
// silently matching nothing.
func (f *FilterSpec) Validate() error {
	if f == nil {
		return nil
	}
	if f.MinPrice != nil && f.MaxPrice != nil && *f.MinPrice > *f.MaxPrice {
		return domain.Invalid("min_price", "must not exceed max_price")
	}
	return nil
}

// Matches reports whether a dish, with its already computed aggregate score,
// satisfies every present predicate. Cheap equality checks run before the
// substring scan and the rating threshold.
func (f *FilterSpec) Matches(dish domain.Dish, score float64) bool {
	if f == nil {
		return true
	}
	if f.LocationID != nil && dish.LocationID != *f.LocationID {
		return false
	}
	if len(f.TagIDs) > 0 && !hasAnyTag(dish.Tags, f.TagIDs) {
		return false
	}
	if f.MinPrice != nil && dish.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && dish.Price > *f.MaxPrice {
		return false
	}
	if f.Search != nil && !matchesSearch(dish, *f.Search) {
		return false
	}
	if f.MinRating != nil && score < *f.MinRating {
		return false
	}
	return true
}

// matchesSearch does a case-insensitive substring match against the dish
// name and the location's name and address.
func matchesSearch(dish domain.Dish, search string) bool {
	needle := strings.ToLower(strings.TrimSpace(search))
	if needle == "" {
		return true
	}
	for _, haystack := range []string{dish.Name, dish.Location.Name, dish.Location.Address} {
		if strings.Contains(strings.ToLower(haystack), needle) {
			return true
		}
	}
	return false
}

func hasAnyTag(tags []domain.Tag, wanted []string) bool {
	for _, tag := range tags {
		for _, id := range wanted {
			if tag.ID == id {
				return true
			}
		}
	}
	return false
}
