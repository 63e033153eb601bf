package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/sylvain-bouchard/capture-api/internal/cache"
	dom "github.com/sylvain-bouchard/capture-api/internal/domain"
	"github.com/sylvain-bouchard/capture-api/internal/password"
	"github.com/sylvain-bouchard/capture-api/internal/repo"
)

// UserServiceName is the registry key the app registers the service under.
const UserServiceName = "UserService"

var (
	ErrInvalidInput  = errors.New("username and password required")
	ErrNotFound      = errors.New("user not found")
	ErrUsernameTaken = errors.New("username already taken")
	// ErrNoBackend means the process was wired without a user store. The two
	// backend modes are never mixed at runtime, so there is nothing to fall
	// back to.
	ErrNoBackend = errors.New("no user store configured")
)

// UserService orchestrates user operations: validate input, hash
// credentials, delegate to the active backend and map its errors into
// domain errors. If c is nil, caching is disabled.
type UserService struct {
	repo  repo.UserRepo
	cache *cache.UserCache
	sf    singleflight.Group
}

// NewUserService returns a new UserService backed by r.
func NewUserService(r repo.UserRepo, c *cache.UserCache) *UserService {
	return &UserService{repo: r, cache: c}
}

// Name implements registry.Service.
func (s *UserService) Name() string { return UserServiceName }

// Create hashes the password and stores a new user. The id is optional:
// the datasource backend generates a UUID when it is empty, the in-memory
// backend always assigns the next slot.
func (s *UserService) Create(ctx context.Context, id, username, plain string) (dom.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || plain == "" {
		return dom.User{}, ErrInvalidInput
	}
	if s.repo == nil {
		return dom.User{}, ErrNoBackend
	}
	hash, err := password.Hash(plain)
	if err != nil {
		return dom.User{}, fmt.Errorf("hash password: %w", err)
	}
	u, err := s.repo.Create(ctx, dom.User{ID: id, Username: username, PasswordHash: hash})
	if err != nil {
		if errors.Is(err, repo.ErrDuplicateUsername) {
			return dom.User{}, ErrUsernameTaken
		}
		return dom.User{}, fmt.Errorf("create user: %w", err)
	}
	s.invalidateCache(ctx)
	return u, nil
}

// GetByID returns the user with the given id.
func (s *UserService) GetByID(ctx context.Context, id string) (dom.User, error) {
	if s.repo == nil {
		return dom.User{}, ErrNoBackend
	}
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return dom.User{}, ErrNotFound
		}
		return dom.User{}, fmt.Errorf("read user: %w", err)
	}
	return u, nil
}

// List returns all users. An empty store yields an empty slice.
func (s *UserService) List(ctx context.Context) ([]dom.User, error) {
	if s.repo == nil {
		return nil, ErrNoBackend
	}
	if s.cache != nil {
		v, err, _ := s.sf.Do("list", func() (interface{}, error) {
			if list, err := s.cache.GetList(ctx); err == nil && list != nil {
				return list, nil
			}
			list, err := s.repo.List(ctx)
			if err != nil {
				return nil, err
			}
			_ = s.cache.SetList(ctx, list)
			return list, nil
		})
		if err != nil {
			return nil, fmt.Errorf("list users: %w", err)
		}
		return v.([]dom.User), nil
	}
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return list, nil
}

// Delete removes the user and returns the removed entity. Deleting an id
// that is already gone reports ErrNotFound.
func (s *UserService) Delete(ctx context.Context, id string) (dom.User, error) {
	if s.repo == nil {
		return dom.User{}, ErrNoBackend
	}
	u, err := s.repo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return dom.User{}, ErrNotFound
		}
		return dom.User{}, fmt.Errorf("delete user: %w", err)
	}
	s.invalidateCache(ctx)
	return u, nil
}

func (s *UserService) invalidateCache(ctx context.Context) {
	if s.cache != nil {
		_ = s.cache.Invalidate(ctx)
	}
}
