package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/ErlanBelekov/superlists/internal/domain"
	"github.com/jackc/pgx/v5"
)

type UserRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT id, email, created_at, updated_at FROM users WHERE email = $1`

	row := r.db.QueryRow(ctx, query, email)
	return scanUser(row)
}

// GetOrCreate is a single upsert so two first logins for the same email
// cannot both insert. The no-op DO UPDATE makes RETURNING yield the existing
// row; xmax = 0 only holds for freshly inserted tuples.
func (r *UserRepository) GetOrCreate(ctx context.Context, email string) (*domain.User, bool, error) {
	query := `
		INSERT INTO users (email) VALUES ($1)
		ON CONFLICT (email) DO UPDATE SET email = EXCLUDED.email
		RETURNING id, email, created_at, updated_at, (xmax = 0) AS created`

	var (
		u       domain.User
		created bool
	)
	err := r.db.QueryRow(ctx, query, email).Scan(&u.ID, &u.Email, &u.CreatedAt, &u.UpdatedAt, &created)
	if err != nil {
		return nil, false, fmt.Errorf("get or create user: %w", err)
	}
	return &u, created, nil
}

func scanUser(row rowScanner) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Email, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}
