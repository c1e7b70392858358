// Package scoring derives a dish's aggregate score from its ratings. It is
// the single aggregation implementation in the repository; every view (list,
// detail, featured, profile) must call it rather than recomputing.
package scoring

import (
	"math"

	"github.com/tastelog/tastelog/internal/domain"
)

// Aggregate computes the mean across all ratings of each rating's three-axis
// mean, rounded to one decimal place half-away-from-zero. An empty input
// yields 0. The result is always in [0,5] for validated axis scores.
func Aggregate(ratings []domain.Rating) float64 {
	if len(ratings) == 0 {
		return 0
	}
	var sum float64
	for _, r := range ratings {
		sum += float64(r.Taste+r.Portion+r.Presentation) / 3
	}
	return roundToOneDecimal(sum / float64(len(ratings)))
}

// math.Round rounds half away from zero.
func roundToOneDecimal(value float64) float64 {
	return math.Round(value*10) / 10
}
