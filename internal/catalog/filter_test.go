package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tastelog/tastelog/internal/domain"
)

func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }
func intPtr(i int) *int           { return &i }

func sampleDish() domain.Dish {
	return domain.Dish{
		ID:         "dish-1",
		Name:       "Laksa",
		Price:      6.50,
		LocationID: "loc-1",
		Location:   domain.Location{ID: "loc-1", Name: "Maxwell Food Centre", Address: "1 Kadayanallur St"},
		Tags:       []domain.Tag{{ID: "tag-spicy", Name: "spicy"}, {ID: "tag-noodles", Name: "noodles"}},
	}
}

func TestFilterSpecNilMatchesEverything(t *testing.T) {
	var f *FilterSpec
	require.NoError(t, f.Validate())
	assert.True(t, f.Matches(sampleDish(), 0))
}

func TestFilterSpecEmptyMatchesEverything(t *testing.T) {
	f := &FilterSpec{}
	require.NoError(t, f.Validate())
	assert.True(t, f.Matches(sampleDish(), 0))
}

func TestFilterSpecRejectsInvertedPriceBounds(t *testing.T) {
	f := &FilterSpec{MinPrice: floatPtr(10), MaxPrice: floatPtr(5)}
	err := f.Validate()
	require.Error(t, err)

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "min_price", verr.Field)
}

func TestFilterSpecLocation(t *testing.T) {
	dish := sampleDish()
	assert.True(t, (&FilterSpec{LocationID: strPtr("loc-1")}).Matches(dish, 0))
	assert.False(t, (&FilterSpec{LocationID: strPtr("loc-2")}).Matches(dish, 0))
}

func TestFilterSpecTagsCombineWithOr(t *testing.T) {
	dish := sampleDish()
	assert.True(t, (&FilterSpec{TagIDs: []string{"tag-spicy"}}).Matches(dish, 0))
	assert.True(t, (&FilterSpec{TagIDs: []string{"tag-unknown", "tag-noodles"}}).Matches(dish, 0))
	assert.False(t, (&FilterSpec{TagIDs: []string{"tag-unknown"}}).Matches(dish, 0))
}

func TestFilterSpecPriceBoundsAreInclusive(t *testing.T) {
	dish := sampleDish() // price 6.50
	assert.True(t, (&FilterSpec{MinPrice: floatPtr(6.50)}).Matches(dish, 0))
	assert.True(t, (&FilterSpec{MaxPrice: floatPtr(6.50)}).Matches(dish, 0))
	assert.False(t, (&FilterSpec{MinPrice: floatPtr(6.51)}).Matches(dish, 0))
	assert.False(t, (&FilterSpec{MaxPrice: floatPtr(6.49)}).Matches(dish, 0))
}

func TestFilterSpecSearchIsCaseInsensitive(t *testing.T) {
	dish := sampleDish()
	assert.True(t, (&FilterSpec{Search: strPtr("LAKSA")}).Matches(dish, 0))
	assert.True(t, (&FilterSpec{Search: strPtr("aks")}).Matches(dish, 0))
	assert.False(t, (&FilterSpec{Search: strPtr("ramen")}).Matches(dish, 0))
}

func TestFilterSpecSearchCoversLocationNameAndAddress(t *testing.T) {
	dish := sampleDish()
	assert.True(t, (&FilterSpec{Search: strPtr("maxwell")}).Matches(dish, 0))
	assert.True(t, (&FilterSpec{Search: strPtr("kadayanallur")}).Matches(dish, 0))
}

func TestFilterSpecBlankSearchMatchesEverything(t *testing.T) {
	dish := sampleDish()
	assert.True(t, (&FilterSpec{Search: strPtr("   ")}).Matches(dish, 0))
}

func TestFilterSpecRatingThresholdIsInclusive(t *testing.T) {
	dish := sampleDish()
	f := &FilterSpec{MinRating: floatPtr(4.0)}
	assert.True(t, f.Matches(dish, 4.0))
	assert.False(t, f.Matches(dish, 3.9))
}

func TestFilterSpecCombinesAllPredicates(t *testing.T) {
	dish := sampleDish()
	f := &FilterSpec{
		Search:     strPtr("laksa"),
		LocationID: strPtr("loc-1"),
		TagIDs:     []string{"tag-spicy"},
		MinPrice:   floatPtr(5),
		MaxPrice:   floatPtr(10),
		MinRating:  floatPtr(4),
	}
	require.NoError(t, f.Validate())
	assert.True(t, f.Matches(dish, 4.3))
	assert.False(t, f.Matches(dish, 3.9))
}
