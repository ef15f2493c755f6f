package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ErlanBelekov/superlists/internal/domain"
	"github.com/ErlanBelekov/superlists/internal/metrics"
	"github.com/ErlanBelekov/superlists/internal/repository"
)

// Resolver turns a presented login token into a user. A missing token or
// user is not an error: both methods return (nil, nil) and leave the
// decision to the caller. Errors are reserved for storage failures.
type Resolver struct {
	users     repository.UserRepository
	tokens    repository.TokenRepository
	singleUse bool
	logger    *slog.Logger
}

// NewResolver builds a Resolver. With singleUse set, redeeming a token
// deletes it; otherwise it stays valid until the reaper removes it.
func NewResolver(users repository.UserRepository, tokens repository.TokenRepository, singleUse bool, logger *slog.Logger) *Resolver {
	return &Resolver{
		users:     users,
		tokens:    tokens,
		singleUse: singleUse,
		logger:    logger.With("component", "resolver"),
	}
}

// Authenticate looks up the token by its UID and returns the user for the
// token's email, creating that user on first login.
func (r *Resolver) Authenticate(ctx context.Context, credential string) (*domain.User, error) {
	if credential == "" {
		metrics.AuthenticationsTotal.WithLabelValues("unknown_token").Inc()
		return nil, nil
	}

	lookup := r.tokens.FindByHash
	if r.singleUse {
		lookup = r.tokens.Claim
	}

	tok, err := lookup(ctx, hashToken(credential))
	if err != nil {
		if errors.Is(err, domain.ErrTokenNotFound) {
			metrics.AuthenticationsTotal.WithLabelValues("unknown_token").Inc()
			return nil, nil
		}
		metrics.AuthenticationsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("find login token: %w", err)
	}

	user, created, err := r.users.GetOrCreate(ctx, tok.Email)
	if err != nil {
		metrics.AuthenticationsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("get or create user: %w", err)
	}

	if created {
		metrics.AuthenticationsTotal.WithLabelValues("new_user").Inc()
		r.logger.InfoContext(ctx, "user created on first login", "user_id", user.ID)
	} else {
		metrics.AuthenticationsTotal.WithLabelValues("existing_user").Inc()
	}
	return user, nil
}

// GetUser is a side-effect free lookup by email.
func (r *Resolver) GetUser(ctx context.Context, email string) (*domain.User, error) {
	user, err := r.users.GetByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}
