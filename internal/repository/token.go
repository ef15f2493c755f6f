package repository

import (
	"context"
	"time"

	"github.com/ErlanBelekov/superlists/internal/domain"
)

// TokenRepository stores login tokens by the hash of their UID.
type TokenRepository interface {
	Create(ctx context.Context, tokenHash, email string) (*domain.LoginToken, error)

	// FindByHash returns domain.ErrTokenNotFound for unknown hashes.
	// The token stays redeemable.
	FindByHash(ctx context.Context, tokenHash string) (*domain.LoginToken, error)

	// Claim deletes the token and returns it in one step, so only one caller
	// can ever redeem it. Returns domain.ErrTokenNotFound when already gone.
	Claim(ctx context.Context, tokenHash string) (*domain.LoginToken, error)

	// DeleteCreatedBefore removes up to limit tokens older than cutoff and
	// reports how many were removed.
	DeleteCreatedBefore(ctx context.Context, cutoff time.Time, limit int) (int, error)
}
