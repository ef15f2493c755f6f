package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/ErlanBelekov/superlists/internal/domain"
	ctxlog "github.com/ErlanBelekov/superlists/internal/log"
	"github.com/gin-gonic/gin"
)

const userKey = "user"

// UserResolver looks a session's user up by email. A nil user with a nil
// error means the user no longer exists.
type UserResolver interface {
	CurrentUser(ctx context.Context, email string) (*domain.User, error)
}

// EnsureUser runs after Auth or OptionalAuth. It resolves the session email
// to a user and stores it under "user". Anonymous requests pass through; a
// session whose user is gone is rejected.
func EnsureUser(users UserResolver, logger *slog.Logger) gin.HandlerFunc {
	return resolveUser(users, logger, false)
}

// OptionalUser is EnsureUser for routes that also serve anonymous callers:
// a session whose user is gone is dropped and the request continues
// anonymously.
func OptionalUser(users UserResolver, logger *slog.Logger) gin.HandlerFunc {
	return resolveUser(users, logger, true)
}

func resolveUser(users UserResolver, logger *slog.Logger, optional bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		email := c.GetString(emailKey)
		if email == "" {
			c.Next()
			return
		}

		user, err := users.CurrentUser(c.Request.Context(), email)
		if err != nil {
			logger.ErrorContext(c.Request.Context(), "ensure user lookup", "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError,
				gin.H{"error": "Internal server error"})
			return
		}
		if user == nil {
			if optional {
				logger.InfoContext(c.Request.Context(), "session user no longer exists, continuing anonymously")
				c.Set(emailKey, "")
				c.Next()
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errUnauthorized})
			return
		}

		c.Set(userKey, user)
		c.Request = c.Request.WithContext(ctxlog.WithUserEmail(c.Request.Context(), user.Email))
		c.Next()
	}
}

// UserFromContext returns the user set by EnsureUser, or nil.
func UserFromContext(c *gin.Context) *domain.User {
	v, ok := c.Get(userKey)
	if !ok {
		return nil
	}
	user, _ := v.(*domain.User)
	return user
}
