package usecase

import (
	"context"
	"crypto/sha256"
	"fmt"

	"github.com/ErlanBelekov/superlists/internal/domain"
	"github.com/ErlanBelekov/superlists/internal/repository"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// TokenIssuer creates login tokens. Only the SHA-256 of the UID is stored.
type TokenIssuer struct {
	tokens   repository.TokenRepository
	validate *validator.Validate
	newUID   func() string
}

func NewTokenIssuer(tokens repository.TokenRepository) *TokenIssuer {
	return &TokenIssuer{
		tokens:   tokens,
		validate: validator.New(),
		newUID:   uuid.NewString,
	}
}

func (i *TokenIssuer) Issue(ctx context.Context, email string) (*domain.Token, error) {
	email = domain.NormalizeEmail(email)
	if err := i.validate.Var(email, "required,email"); err != nil {
		return nil, domain.ErrInvalidEmail
	}

	uid := i.newUID()
	stored, err := i.tokens.Create(ctx, hashToken(uid), email)
	if err != nil {
		return nil, fmt.Errorf("store login token: %w", err)
	}

	return &domain.Token{UID: uid, Email: stored.Email, CreatedAt: stored.CreatedAt}, nil
}

func hashToken(raw string) string {
	return fmt.Sprintf("%x", sha256.Sum256([]byte(raw)))
}
