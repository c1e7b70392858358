package httpserver

import (
	"time"

	"github.com/tastelog/tastelog/internal/catalog"
	"github.com/tastelog/tastelog/internal/domain"
)

// View structs shape domain entities for the GraphQL layer. Field resolution
// relies on the json tags, which mirror the public schema names.

type locationView struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Address    string  `json:"address"`
	PostalCode *string `json:"postal_code"`
	CreatedAt  string  `json:"created_at"`
	UpdatedAt  string  `json:"updated_at"`
}

type tagView struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
}

type userView struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type dishView struct {
	ID             string        `json:"id"`
	Name           string        `json:"name"`
	Description    *string       `json:"description"`
	Price          float64       `json:"price"`
	PortionSize    string        `json:"portion_size"`
	Location       locationView  `json:"location"`
	Tags           []tagView     `json:"tags"`
	Ratings        []*ratingView `json:"ratings"`
	AggregateScore float64       `json:"aggregate_score"`
	RatingCount    int           `json:"rating_count"`
	CreatedAt      string        `json:"created_at"`
	UpdatedAt      string        `json:"updated_at"`
}

type ratingView struct {
	ID                 string    `json:"id"`
	Dish               *dishView `json:"dish"`
	User               *userView `json:"user"`
	TasteRating        int       `json:"taste_rating"`
	PortionRating      int       `json:"portion_rating"`
	PresentationRating int       `json:"presentation_rating"`
	Notes              *string   `json:"notes"`
	CreatedAt          string    `json:"created_at"`
	UpdatedAt          string    `json:"updated_at"`
}

type authPayloadView struct {
	Token string    `json:"token"`
	User  *userView `json:"user"`
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func toLocationView(location domain.Location) locationView {
	return locationView{
		ID:         location.ID,
		Name:       location.Name,
		Address:    location.Address,
		PostalCode: location.PostalCode,
		CreatedAt:  formatTime(location.CreatedAt),
		UpdatedAt:  formatTime(location.UpdatedAt),
	}
}

func toTagView(tag domain.Tag) tagView {
	return tagView{ID: tag.ID, Name: tag.Name, CreatedAt: formatTime(tag.CreatedAt)}
}

func toUserView(user domain.User) *userView {
	return &userView{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		CreatedAt: formatTime(user.CreatedAt),
		UpdatedAt: formatTime(user.UpdatedAt),
	}
}

func toRatingView(rating domain.Rating) *ratingView {
	view := &ratingView{
		ID:                 rating.ID,
		TasteRating:        rating.Taste,
		PortionRating:      rating.Portion,
		PresentationRating: rating.Presentation,
		Notes:              rating.Notes,
		CreatedAt:          formatTime(rating.CreatedAt),
		UpdatedAt:          formatTime(rating.UpdatedAt),
	}
	if rating.User != nil {
		view.User = toUserView(*rating.User)
	}
	return view
}

// toDishView shapes a dish. Each nested rating points back at the enclosing
// dish so rating.dish resolves with the same aggregate the dish itself shows.
func toDishView(shaped catalog.ShapedDish) *dishView {
	view := &dishView{
		ID:             shaped.ID,
		Name:           shaped.Name,
		Description:    shaped.Description,
		Price:          shaped.Price,
		PortionSize:    shaped.PortionSize,
		Location:       toLocationView(shaped.Location),
		AggregateScore: shaped.AggregateScore,
		RatingCount:    len(shaped.Dish.Ratings),
		CreatedAt:      formatTime(shaped.CreatedAt),
		UpdatedAt:      formatTime(shaped.UpdatedAt),
	}
	view.Tags = make([]tagView, 0, len(shaped.Dish.Tags))
	for _, tag := range shaped.Dish.Tags {
		view.Tags = append(view.Tags, toTagView(tag))
	}
	view.Ratings = make([]*ratingView, 0, len(shaped.Dish.Ratings))
	for _, rating := range shaped.Dish.Ratings {
		rv := toRatingView(rating)
		rv.Dish = view
		view.Ratings = append(view.Ratings, rv)
	}
	return view
}

func toDishViews(shaped []catalog.ShapedDish) []*dishView {
	views := make([]*dishView, 0, len(shaped))
	for _, dish := range shaped {
		views = append(views, toDishView(dish))
	}
	return views
}

func toProfileRatingView(shaped catalog.ShapedRating) *ratingView {
	view := toRatingView(shaped.Rating)
	view.Dish = toDishView(shaped.Dish)
	return view
}
