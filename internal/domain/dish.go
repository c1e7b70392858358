package domain

import "time"

// Location is a physical place serving one or more dishes.
type Location struct {
	ID         string
	Name       string
	Address    string
	PostalCode *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Tag labels a dish (e.g. "spicy", "vegetarian").
type Tag struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// Dish represents a ratable food item tied to a location. Location, Tags and
// Ratings are hydrated by the storage layer; the core never mutates them.
type Dish struct {
	ID          string
	Name        string
	Description *string
	Price       float64
	PortionSize string
	LocationID  string
	Location    Location
	Tags        []Tag
	Ratings     []Rating
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
