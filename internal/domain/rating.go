package domain

import "time"

// Axis scores are integers in [1,5], validated at write time.
const (
	AxisScoreMin = 1
	AxisScoreMax = 5
)

// Rating is a single user's multi-axis evaluation of one dish.
type Rating struct {
	ID           string
	DishID       string
	UserID       string
	User         *User
	Taste        int
	Portion      int
	Presentation int
	Notes        *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
