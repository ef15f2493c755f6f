package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const errUnauthorized = "Unauthorized"

// SessionCookie holds the session JWT for browser clients.
const SessionCookie = "session"

const emailKey = "email"

// Auth validates the session JWT from a Bearer header or the session cookie
// and sets "email" in the gin context.
func Auth(jwtKey []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		email, ok := parseSession(c, jwtKey)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errUnauthorized})
			return
		}
		c.Set(emailKey, email)
		c.Next()
	}
}

// OptionalAuth is Auth for routes that also serve anonymous callers. A
// missing or bad session leaves the request anonymous.
func OptionalAuth(jwtKey []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		if email, ok := parseSession(c, jwtKey); ok {
			c.Set(emailKey, email)
		}
		c.Next()
	}
}

func parseSession(c *gin.Context, jwtKey []byte) (string, bool) {
	rawToken := bearerToken(c)
	if rawToken == "" {
		rawToken, _ = c.Cookie(SessionCookie)
	}
	if rawToken == "" {
		return "", false
	}

	token, err := jwt.Parse(rawToken, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return jwtKey, nil
	})
	if err != nil || !token.Valid {
		return "", false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", false
	}

	email, ok := claims["email"].(string)
	if !ok || email == "" {
		return "", false
	}
	return email, true
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}
