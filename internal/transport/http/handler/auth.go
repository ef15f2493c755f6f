package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/ErlanBelekov/superlists/internal/domain"
	"github.com/ErlanBelekov/superlists/internal/transport/http/middleware"
	"github.com/ErlanBelekov/superlists/internal/usecase"
	"github.com/gin-gonic/gin"
)

// authUsecaser is the subset of AuthUsecase the handler needs.
// Defined here (point of use) so tests can inject a fake.
type authUsecaser interface {
	SendLoginEmail(ctx context.Context, email string) error
	Login(ctx context.Context, rawToken string) (*usecase.Session, error)
}

type AuthHandler struct {
	authUsecase  authUsecaser
	logger       *slog.Logger
	secureCookie bool
}

// NewAuthHandler builds the accounts handler. secureCookie marks the
// session cookie Secure and should be off only for plain-HTTP local runs.
func NewAuthHandler(authUsecase authUsecaser, logger *slog.Logger, secureCookie bool) *AuthHandler {
	return &AuthHandler{
		authUsecase:  authUsecase,
		logger:       logger.With("component", "auth_handler"),
		secureCookie: secureCookie,
	}
}

// Format is checked by the use case after trimming and lowercasing.
type sendLoginEmailRequest struct {
	Email string `json:"email" binding:"required"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}

type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// POST /accounts/send-login-email
// Returns 200 for any well-formed address so the endpoint does not reveal
// whether an account exists or whether delivery worked.
func (h *AuthHandler) SendLoginEmail(c *gin.Context) {
	var req sendLoginEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidEmail})
		return
	}

	if err := h.authUsecase.SendLoginEmail(c.Request.Context(), req.Email); err != nil {
		if errors.Is(err, domain.ErrInvalidEmail) {
			c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidEmail})
			return
		}
		h.logger.ErrorContext(c.Request.Context(), "send login email", "error", err)
	}

	c.JSON(http.StatusOK, gin.H{"message": loginEmailSent})
}

// GET /accounts/login?token=<uid>
// Sets the session cookie and returns {"token", "email"}; 401 on an
// unknown token.
func (h *AuthHandler) Login(c *gin.Context) {
	rawToken := c.Query("token")
	if rawToken == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": errTokenInvalid})
		return
	}

	session, err := h.authUsecase.Login(c.Request.Context(), rawToken)
	if err != nil {
		if errors.Is(err, domain.ErrTokenInvalid) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": errTokenInvalid})
			return
		}
		h.logger.ErrorContext(c.Request.Context(), "login", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	maxAge := int(time.Until(session.ExpiresAt).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, session.Token, maxAge, "/", "", h.secureCookie, true)

	c.JSON(http.StatusOK, loginResponse{
		Token:     session.Token,
		Email:     session.User.Email,
		ExpiresAt: session.ExpiresAt,
	})
}

// POST /accounts/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", h.secureCookie, true)
	c.Status(http.StatusNoContent)
}

// GET /accounts/me
func (h *AuthHandler) Me(c *gin.Context) {
	user := middleware.UserFromContext(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": errUnauthorized})
		return
	}
	c.JSON(http.StatusOK, userResponse{ID: user.ID, Email: user.Email})
}
