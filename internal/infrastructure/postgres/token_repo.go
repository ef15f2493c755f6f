package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ErlanBelekov/superlists/internal/domain"
	"github.com/jackc/pgx/v5"
)

type TokenRepository struct {
	db DBTX
}

func NewTokenRepository(db DBTX) *TokenRepository {
	return &TokenRepository{db: db}
}

func (r *TokenRepository) Create(ctx context.Context, tokenHash, email string) (*domain.LoginToken, error) {
	query := `
		INSERT INTO login_tokens (token_hash, email)
		VALUES ($1, $2)
		RETURNING token_hash, email, created_at`

	t, err := scanToken(r.db.QueryRow(ctx, query, tokenHash, email))
	if err != nil {
		return nil, fmt.Errorf("create login token: %w", err)
	}
	return t, nil
}

func (r *TokenRepository) FindByHash(ctx context.Context, tokenHash string) (*domain.LoginToken, error) {
	query := `SELECT token_hash, email, created_at FROM login_tokens WHERE token_hash = $1`

	return scanToken(r.db.QueryRow(ctx, query, tokenHash))
}

func (r *TokenRepository) Claim(ctx context.Context, tokenHash string) (*domain.LoginToken, error) {
	query := `
		DELETE FROM login_tokens
		WHERE token_hash = $1
		RETURNING token_hash, email, created_at`

	return scanToken(r.db.QueryRow(ctx, query, tokenHash))
}

// DeleteCreatedBefore deletes in bounded batches so the reaper never holds a
// long lock on the table.
func (r *TokenRepository) DeleteCreatedBefore(ctx context.Context, cutoff time.Time, limit int) (int, error) {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM login_tokens
		WHERE token_hash IN (
			SELECT token_hash FROM login_tokens
			WHERE created_at < $1
			LIMIT $2
		)`,
		cutoff, limit,
	)
	if err != nil {
		return 0, fmt.Errorf("delete stale login tokens: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func scanToken(row rowScanner) (*domain.LoginToken, error) {
	var t domain.LoginToken
	err := row.Scan(&t.TokenHash, &t.Email, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTokenNotFound
		}
		return nil, fmt.Errorf("scan login token: %w", err)
	}
	return &t, nil
}
