package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/ErlanBelekov/superlists/internal/domain"
	"github.com/ErlanBelekov/superlists/internal/email"
	"github.com/ErlanBelekov/superlists/internal/metrics"
	"github.com/golang-jwt/jwt/v5"
)

const (
	defaultSessionTTL = 24 * time.Hour
	loginPath         = "/accounts/login"
	loginEmailSubject = "Your login link for Superlists"
)

// Session is what a successful login hands back to the client.
type Session struct {
	Token     string
	User      *domain.User
	ExpiresAt time.Time
}

type AuthUsecase struct {
	issuer        *TokenIssuer
	resolver      *Resolver
	email         email.Sender
	jwtKey        []byte
	sessionTTL    time.Duration
	loginLinkBase string
	now           func() time.Time
}

func NewAuthUsecase(
	issuer *TokenIssuer,
	resolver *Resolver,
	emailSender email.Sender,
	jwtKey []byte,
	sessionTTL time.Duration,
	loginLinkBase string,
) *AuthUsecase {
	if sessionTTL <= 0 {
		sessionTTL = defaultSessionTTL
	}
	return &AuthUsecase{
		issuer:        issuer,
		resolver:      resolver,
		email:         emailSender,
		jwtKey:        jwtKey,
		sessionTTL:    sessionTTL,
		loginLinkBase: loginLinkBase,
		now:           time.Now,
	}
}

// SendLoginEmail issues a token for emailAddr and emails the login link.
func (u *AuthUsecase) SendLoginEmail(ctx context.Context, emailAddr string) error {
	tok, err := u.issuer.Issue(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidEmail) {
			metrics.LoginEmailsTotal.WithLabelValues("invalid_email").Inc()
			return err
		}
		metrics.LoginEmailsTotal.WithLabelValues("failed").Inc()
		return fmt.Errorf("issue login token: %w", err)
	}

	link := u.loginLinkBase + loginPath + "?token=" + url.QueryEscape(tok.UID)
	msg := email.Message{
		To:      tok.Email,
		Subject: loginEmailSubject,
		Text:    "Use this link to log in:\n\n" + link,
		HTML:    fmt.Sprintf(`<p>Use this link to log in:</p><p><a href="%s">%s</a></p>`, link, link),
	}
	if err := u.email.Send(ctx, msg); err != nil {
		metrics.LoginEmailsTotal.WithLabelValues("failed").Inc()
		return fmt.Errorf("send login email: %w", err)
	}

	metrics.LoginEmailsTotal.WithLabelValues("sent").Inc()
	return nil
}

// Login redeems rawToken and signs a session JWT for the resolved user.
// An unknown token yields domain.ErrTokenInvalid.
func (u *AuthUsecase) Login(ctx context.Context, rawToken string) (*Session, error) {
	user, err := u.resolver.Authenticate(ctx, rawToken)
	if err != nil {
		return nil, fmt.Errorf("authenticate: %w", err)
	}
	if user == nil {
		return nil, domain.ErrTokenInvalid
	}

	now := u.now()
	expiresAt := now.Add(u.sessionTTL)
	claims := jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"iat":   now.Unix(),
		"exp":   expiresAt.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(u.jwtKey)
	if err != nil {
		return nil, fmt.Errorf("sign jwt: %w", err)
	}

	return &Session{Token: signed, User: user, ExpiresAt: expiresAt}, nil
}

// CurrentUser resolves the user behind an authenticated session. nil means
// the user no longer exists.
func (u *AuthUsecase) CurrentUser(ctx context.Context, email string) (*domain.User, error) {
	return u.resolver.GetUser(ctx, email)
}
