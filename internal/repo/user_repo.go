package repo

import (
	"context"
	"errors"

	dom "github.com/sylvain-bouchard/capture-api/internal/domain"
)

var (
	// ErrNotFound is returned when no user exists under the given id.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicateUsername is returned when the username is already taken.
	ErrDuplicateUsername = errors.New("username already exists")
)

// UserRepo provides user persistence. Exactly one implementation is chosen
// at startup (Postgres or in-memory); the contract is identical for both.
type UserRepo interface {
	// Create persists u and returns the stored user. If u.ID is empty the
	// backend assigns one.
	Create(ctx context.Context, u dom.User) (dom.User, error)
	GetByID(ctx context.Context, id string) (dom.User, error)
	// List returns all users in backend order: insertion order for the
	// in-memory store, unspecified for Postgres.
	List(ctx context.Context) ([]dom.User, error)
	// Delete removes the user and returns the removed entity.
	Delete(ctx context.Context, id string) (dom.User, error)
}
