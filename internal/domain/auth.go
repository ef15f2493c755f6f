package domain

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrTokenNotFound = errors.New("login token not found")
	ErrTokenInvalid  = errors.New("token is invalid or expired")
	ErrInvalidEmail  = errors.New("invalid email address")
	ErrUnauthorized  = errors.New("unauthorized")
)

// User is keyed by Email. ID is a surrogate used as the session subject.
type User struct {
	ID        string
	Email     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Token is a freshly issued login credential. UID is only ever known at
// issue time; the store keeps a hash of it.
type Token struct {
	UID       string
	Email     string
	CreatedAt time.Time
}

// LoginToken is the persisted form of a Token.
type LoginToken struct {
	TokenHash string
	Email     string
	CreatedAt time.Time
}

// NormalizeEmail trims and lowercases an address so lookups are
// case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
