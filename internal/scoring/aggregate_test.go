package scoring

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tastelog/tastelog/internal/domain"
)

func rating(taste, portion, presentation int) domain.Rating {
	return domain.Rating{Taste: taste, Portion: portion, Presentation: presentation}
}

func TestAggregate_Empty(t *testing.T) {
	assert.Equal(t, 0.0, Aggregate(nil))
	assert.Equal(t, 0.0, Aggregate([]domain.Rating{}))
}

func TestAggregate(t *testing.T) {
	tests := []struct {
		name    string
		ratings []domain.Rating
		want    float64
	}{
		{"single perfect", []domain.Rating{rating(5, 5, 5)}, 5.0},
		{"single lowest", []domain.Rating{rating(1, 1, 1)}, 1.0},
		{"mixed axes", []domain.Rating{rating(5, 4, 5), rating(3, 3, 3)}, 3.8},
		{"midpoint mean", []domain.Rating{rating(4, 4, 4), rating(3, 3, 3)}, 3.5},
		{"uneven axes", []domain.Rating{rating(5, 1, 3)}, 3.0},
		{"three raters", []domain.Rating{rating(5, 5, 4), rating(2, 3, 2), rating(4, 4, 4)}, 3.7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Aggregate(tt.ratings), 1e-9)
		})
	}
}

func TestAggregate_OrderInvariant(t *testing.T) {
	ratings := []domain.Rating{
		rating(5, 4, 5), rating(3, 3, 3), rating(1, 2, 1), rating(4, 5, 4),
	}
	want := Aggregate(ratings)

	rnd := rand.New(rand.NewSource(1))
	for i := 0; i < 20; i++ {
		shuffled := append([]domain.Rating(nil), ratings...)
		rnd.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})
		assert.InDelta(t, want, Aggregate(shuffled), 1e-9)
	}
}

func TestAggregate_Bounds(t *testing.T) {
	rnd := rand.New(rand.NewSource(2))
	for i := 0; i < 200; i++ {
		n := rnd.Intn(8)
		ratings := make([]domain.Rating, n)
		for j := range ratings {
			ratings[j] = rating(1+rnd.Intn(5), 1+rnd.Intn(5), 1+rnd.Intn(5))
		}
		got := Aggregate(ratings)
		assert.GreaterOrEqual(t, got, 0.0)
		assert.LessOrEqual(t, got, 5.0)
		if n == 0 {
			assert.Equal(t, 0.0, got)
		}
	}
}
