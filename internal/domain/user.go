package domain

import "time"

// User is the domain entity for a user account.
// ID is a UUID in datasource mode and a slot position in in-memory mode.
// PasswordHash never leaves the process; see dto.UserResponse.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
