package repo

import (
	"context"
	"strconv"
	"sync"
	"time"

	dom "github.com/sylvain-bouchard/capture-api/internal/domain"
)

// MemoryUserRepo implements UserRepo with a mutex-guarded slice of slots.
// A deleted slot is left nil so positional ids stay stable: re-reading a
// deleted id reports not found instead of shifting later users. Intended as
// the dev/fallback mode when no datasource is configured.
type MemoryUserRepo struct {
	mu    sync.Mutex
	users []*dom.User
}

// NewMemoryUserRepo returns an empty in-memory store.
func NewMemoryUserRepo() *MemoryUserRepo {
	return &MemoryUserRepo{}
}

// Create appends a user. The id is always the slot position; a
// client-supplied id is ignored in this mode. Username uniqueness is
// enforced to match the database constraint.
func (r *MemoryUserRepo) Create(_ context.Context, u dom.User) (dom.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing != nil && existing.Username == u.Username {
			return dom.User{}, ErrDuplicateUsername
		}
	}
	now := time.Now().UTC()
	u.ID = strconv.Itoa(len(r.users))
	u.CreatedAt = now
	u.UpdatedAt = now
	stored := u
	r.users = append(r.users, &stored)
	return u, nil
}

// GetByID returns the user at the given slot.
func (r *MemoryUserRepo) GetByID(_ context.Context, id string) (dom.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, err := r.lookup(id)
	if err != nil {
		return dom.User{}, err
	}
	return *u, nil
}

// List returns all live users in insertion order.
func (r *MemoryUserRepo) List(_ context.Context) ([]dom.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := make([]dom.User, 0, len(r.users))
	for _, u := range r.users {
		if u != nil {
			list = append(list, *u)
		}
	}
	return list, nil
}

// Delete empties the slot and returns the removed user. A second delete of
// the same id reports not found.
func (r *MemoryUserRepo) Delete(_ context.Context, id string) (dom.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, err := r.lookup(id)
	if err != nil {
		return dom.User{}, err
	}
	removed := *u
	i, _ := strconv.Atoi(id)
	r.users[i] = nil
	return removed, nil
}

// lookup resolves a slot id to a live user. Caller must hold r.mu.
func (r *MemoryUserRepo) lookup(id string) (*dom.User, error) {
	i, err := strconv.Atoi(id)
	if err != nil || i < 0 || i >= len(r.users) || r.users[i] == nil {
		return nil, ErrNotFound
	}
	return r.users[i], nil
}
