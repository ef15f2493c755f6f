package repository

import (
	"context"

	"github.com/ErlanBelekov/superlists/internal/domain"
)

type UserRepository interface {
	// GetByEmail returns domain.ErrUserNotFound when no user has that email.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// GetOrCreate returns the user with the given email, inserting it first if
	// needed. created reports whether this call inserted the row. Concurrent
	// calls for the same email converge on a single user.
	GetOrCreate(ctx context.Context, email string) (user *domain.User, created bool, err error)
}
