package repo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	dom "github.com/sylvain-bouchard/capture-api/internal/domain"
)

const pgUniqueViolation = "23505"

// PGUserRepo implements UserRepo with Postgres.
type PGUserRepo struct {
	db *pgxpool.Pool
}

// NewPGUserRepo returns a new PGUserRepo.
func NewPGUserRepo(db *pgxpool.Pool) *PGUserRepo {
	return &PGUserRepo{db: db}
}

// Create inserts a new user. An empty ID gets a generated UUID.
func (r *PGUserRepo) Create(ctx context.Context, u dom.User) (dom.User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	query := `
		INSERT INTO users (id, username, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id, username, password_hash, created_at, updated_at`
	var out dom.User
	err := r.db.QueryRow(ctx, query, u.ID, u.Username, u.PasswordHash).Scan(
		&out.ID, &out.Username, &out.PasswordHash, &out.CreatedAt, &out.UpdatedAt,
	)
	if err != nil {
		return dom.User{}, convertPGError(err)
	}
	return out, nil
}

// GetByID returns the user by id.
func (r *PGUserRepo) GetByID(ctx context.Context, id string) (dom.User, error) {
	// Ids this backend issues are UUIDs; anything else can't exist.
	if _, err := uuid.Parse(id); err != nil {
		return dom.User{}, ErrNotFound
	}
	query := `
		SELECT id, username, password_hash, created_at, updated_at
		FROM users WHERE id = $1`
	var u dom.User
	err := r.db.QueryRow(ctx, query, id).Scan(
		&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return dom.User{}, convertPGError(err)
	}
	return u, nil
}

// List returns all users.
func (r *PGUserRepo) List(ctx context.Context) ([]dom.User, error) {
	query := `
		SELECT id, username, password_hash, created_at, updated_at
		FROM users`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, convertPGError(err)
	}
	defer rows.Close()
	list := make([]dom.User, 0)
	for rows.Next() {
		var u dom.User
		if err := rows.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, convertPGError(err)
		}
		list = append(list, u)
	}
	return list, convertPGError(rows.Err())
}

// Delete removes the user by id and returns the removed row.
func (r *PGUserRepo) Delete(ctx context.Context, id string) (dom.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return dom.User{}, ErrNotFound
	}
	query := `
		DELETE FROM users WHERE id = $1
		RETURNING id, username, password_hash, created_at, updated_at`
	var u dom.User
	err := r.db.QueryRow(ctx, query, id).Scan(
		&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return dom.User{}, convertPGError(err)
	}
	return u, nil
}

// convertPGError maps driver errors onto repo sentinels so raw pgx errors
// never cross the repo boundary.
func convertPGError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pge *pgconn.PgError
	if errors.As(err, &pge) && pge.Code == pgUniqueViolation {
		return ErrDuplicateUsername
	}
	return err
}
