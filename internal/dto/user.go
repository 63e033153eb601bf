package dto

import dom "github.com/sylvain-bouchard/capture-api/internal/domain"

// CreateUserRequest is the JSON body for POST /users.
// ID is optional; when the datasource backend is active it must be a UUID,
// otherwise the backend assigns one.
type CreateUserRequest struct {
	ID       string `json:"id" binding:"omitempty,uuid"`
	Username string `json:"username" binding:"required,min=1,max=120"`
	Password string `json:"password" binding:"required,min=1"`
}

// UserResponse is the outward projection of a user. It intentionally has no
// password hash field, so the hash can never serialize out.
type UserResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// FromUser maps a domain user to its response projection.
func FromUser(u dom.User) UserResponse {
	return UserResponse{ID: u.ID, Username: u.Username}
}

// FromUsers maps a slice of users. Always returns a non-nil slice so an
// empty store serializes as [] rather than null.
func FromUsers(list []dom.User) []UserResponse {
	out := make([]UserResponse, len(list))
	for i := range list {
		out[i] = FromUser(list[i])
	}
	return out
}
