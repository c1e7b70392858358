package domain

import "time"

// User is a registered account. PasswordHash is owned by the identity layer
// and must never cross the API boundary.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
