package httpserver

import (
	"github.com/tastelog/tastelog/internal/catalog"
)

// Argument decoding for graphql-go, which hands coerced values over as
// map[string]interface{}. Schema non-null constraints run before these
// helpers, so required keys are present by the time they execute.

func argMap(value interface{}) map[string]interface{} {
	m, _ := value.(map[string]interface{})
	return m
}

func reqString(args map[string]interface{}, key string) string {
	s, _ := args[key].(string)
	return s
}

func optString(args map[string]interface{}, key string) *string {
	if s, ok := args[key].(string); ok {
		return &s
	}
	return nil
}

func reqInt(args map[string]interface{}, key string) int {
	switch v := args[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return 0
}

func optInt(args map[string]interface{}, key string) *int {
	if _, ok := args[key]; !ok {
		return nil
	}
	v := reqInt(args, key)
	return &v
}

func reqFloat(args map[string]interface{}, key string) float64 {
	switch v := args[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return 0
}

func optFloat(args map[string]interface{}, key string) *float64 {
	if _, ok := args[key]; !ok {
		return nil
	}
	v := reqFloat(args, key)
	return &v
}

func optStringList(args map[string]interface{}, key string) []string {
	raw, ok := args[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func decodeDishFilter(value interface{}) *catalog.FilterSpec {
	m := argMap(value)
	if m == nil {
		return nil
	}
	return &catalog.FilterSpec{
		Search:     optString(m, "search"),
		LocationID: optString(m, "location_id"),
		TagIDs:     optStringList(m, "tag_ids"),
		MinPrice:   optFloat(m, "min_price"),
		MaxPrice:   optFloat(m, "max_price"),
		MinRating:  optFloat(m, "min_rating"),
	}
}

func decodeDishInput(value interface{}) catalog.DishInput {
	m := argMap(value)
	input := catalog.DishInput{
		Name:        reqString(m, "name"),
		Description: optString(m, "description"),
		Price:       reqFloat(m, "price"),
		PortionSize: reqString(m, "portion_size"),
		LocationID:  optString(m, "location_id"),
		TagIDs:      optStringList(m, "tag_ids"),
	}
	if loc := argMap(m["location"]); loc != nil {
		input.Location = &catalog.LocationInput{
			Name:       reqString(loc, "name"),
			Address:    reqString(loc, "address"),
			PostalCode: optString(loc, "postal_code"),
		}
	}
	return input
}

func decodeDishPatch(value interface{}) catalog.DishPatch {
	m := argMap(value)
	return catalog.DishPatch{
		Name:        optString(m, "name"),
		Description: optString(m, "description"),
		Price:       optFloat(m, "price"),
		PortionSize: optString(m, "portion_size"),
		LocationID:  optString(m, "location_id"),
		TagIDs:      optStringList(m, "tag_ids"),
	}
}

func decodeRatingInput(value interface{}) catalog.RatingInput {
	m := argMap(value)
	return catalog.RatingInput{
		DishID:       reqString(m, "dish_id"),
		Taste:        reqInt(m, "taste_rating"),
		Portion:      reqInt(m, "portion_rating"),
		Presentation: reqInt(m, "presentation_rating"),
		Notes:        optString(m, "notes"),
	}
}

func decodeRatingPatch(value interface{}) catalog.RatingPatch {
	m := argMap(value)
	return catalog.RatingPatch{
		Taste:        optInt(m, "taste_rating"),
		Portion:      optInt(m, "portion_rating"),
		Presentation: optInt(m, "presentation_rating"),
		Notes:        optString(m, "notes"),
	}
}
