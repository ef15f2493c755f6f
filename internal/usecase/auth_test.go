package usecase_test

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/ErlanBelekov/superlists/internal/domain"
	"github.com/ErlanBelekov/superlists/internal/email"
	"github.com/ErlanBelekov/superlists/internal/usecase"
	"github.com/golang-jwt/jwt/v5"
)

// ---- fakes ----

type fakeUserRepo struct {
	getByEmail  func(ctx context.Context, email string) (*domain.User, error)
	getOrCreate func(ctx context.Context, email string) (*domain.User, bool, error)
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getByEmail(ctx, email)
}

func (r *fakeUserRepo) GetOrCreate(ctx context.Context, email string) (*domain.User, bool, error) {
	return r.getOrCreate(ctx, email)
}

type fakeTokenRepo struct {
	create     func(ctx context.Context, tokenHash, email string) (*domain.LoginToken, error)
	findByHash func(ctx context.Context, tokenHash string) (*domain.LoginToken, error)
	claim      func(ctx context.Context, tokenHash string) (*domain.LoginToken, error)
}

func (r *fakeTokenRepo) Create(ctx context.Context, tokenHash, email string) (*domain.LoginToken, error) {
	return r.create(ctx, tokenHash, email)
}

func (r *fakeTokenRepo) FindByHash(ctx context.Context, tokenHash string) (*domain.LoginToken, error) {
	return r.findByHash(ctx, tokenHash)
}

func (r *fakeTokenRepo) Claim(ctx context.Context, tokenHash string) (*domain.LoginToken, error) {
	return r.claim(ctx, tokenHash)
}

func (r *fakeTokenRepo) DeleteCreatedBefore(context.Context, time.Time, int) (int, error) {
	return 0, nil
}

type fakeEmailSender struct {
	send func(ctx context.Context, msg email.Message) error
}

func (s *fakeEmailSender) Send(ctx context.Context, msg email.Message) error {
	return s.send(ctx, msg)
}

// ---- helpers ----

const (
	testJWTKey        = "test-jwt-secret-at-least-32-chars!!"
	testLoginLinkBase = "http://localhost:8080"
)

func newUsecase(users *fakeUserRepo, tokens *fakeTokenRepo, sender *fakeEmailSender) *usecase.AuthUsecase {
	issuer := usecase.NewTokenIssuer(tokens)
	resolver := usecase.NewResolver(users, tokens, false, slog.Default())
	return usecase.NewAuthUsecase(issuer, resolver, sender, []byte(testJWTKey), time.Hour, testLoginLinkBase)
}

func storeToken(_ context.Context, tokenHash, email string) (*domain.LoginToken, error) {
	return &domain.LoginToken{TokenHash: tokenHash, Email: email, CreatedAt: time.Now()}, nil
}

var testUser = &domain.User{ID: "user-1", Email: "edith@example.com"}

// ---- SendLoginEmail ----

func TestSendLoginEmail_StoresHashOfEmailedToken(t *testing.T) {
	var capturedHash string
	var captured email.Message

	tokens := &fakeTokenRepo{
		create: func(ctx context.Context, tokenHash, email string) (*domain.LoginToken, error) {
			capturedHash = tokenHash
			return storeToken(ctx, tokenHash, email)
		},
	}
	sender := &fakeEmailSender{
		send: func(_ context.Context, msg email.Message) error {
			captured = msg
			return nil
		},
	}

	if err := newUsecase(&fakeUserRepo{}, tokens, sender).SendLoginEmail(context.Background(), testUser.Email); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	idx := strings.Index(captured.Text, "?token=")
	if idx == -1 {
		t.Fatal("email body does not contain ?token=")
	}
	rawToken := strings.TrimSpace(captured.Text[idx+len("?token="):])

	wantHash := fmt.Sprintf("%x", sha256.Sum256([]byte(rawToken)))
	if capturedHash != wantHash {
		t.Errorf("stored hash %q != SHA-256 of emailed token %q", capturedHash, wantHash)
	}
}

func TestSendLoginEmail_AddressesNormalisedRecipient(t *testing.T) {
	var captured email.Message

	tokens := &fakeTokenRepo{create: storeToken}
	sender := &fakeEmailSender{
		send: func(_ context.Context, msg email.Message) error {
			captured = msg
			return nil
		},
	}

	if err := newUsecase(&fakeUserRepo{}, tokens, sender).SendLoginEmail(context.Background(), "  Edith@Example.COM "); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if captured.To != "edith@example.com" {
		t.Errorf("To = %q, want %q", captured.To, "edith@example.com")
	}
	if !strings.HasPrefix(captured.Text, "Use this link to log in:") {
		t.Errorf("unexpected body %q", captured.Text)
	}
	if !strings.Contains(captured.HTML, testLoginLinkBase+"/accounts/login?token=") {
		t.Errorf("HTML body missing login link: %q", captured.HTML)
	}
}

func TestSendLoginEmail_InvalidEmail(t *testing.T) {
	tokens := &fakeTokenRepo{
		create: func(context.Context, string, string) (*domain.LoginToken, error) {
			t.Fatal("token must not be stored for an invalid email")
			return nil, nil
		},
	}
	sender := &fakeEmailSender{
		send: func(context.Context, email.Message) error {
			t.Fatal("email must not be sent for an invalid email")
			return nil
		},
	}

	err := newUsecase(&fakeUserRepo{}, tokens, sender).SendLoginEmail(context.Background(), "not-an-email")
	if !errors.Is(err, domain.ErrInvalidEmail) {
		t.Errorf("expected ErrInvalidEmail, got %v", err)
	}
}

func TestSendLoginEmail_SendFailure(t *testing.T) {
	sendErr := errors.New("smtp down")
	tokens := &fakeTokenRepo{create: storeToken}
	sender := &fakeEmailSender{
		send: func(context.Context, email.Message) error { return sendErr },
	}

	err := newUsecase(&fakeUserRepo{}, tokens, sender).SendLoginEmail(context.Background(), testUser.Email)
	if !errors.Is(err, sendErr) {
		t.Errorf("expected wrapped send error, got %v", err)
	}
}

// ---- Login ----

func TestLogin_ReturnsSignedSession(t *testing.T) {
	tokens := &fakeTokenRepo{
		findByHash: func(_ context.Context, tokenHash string) (*domain.LoginToken, error) {
			return &domain.LoginToken{TokenHash: tokenHash, Email: testUser.Email}, nil
		},
	}
	users := &fakeUserRepo{
		getOrCreate: func(_ context.Context, email string) (*domain.User, bool, error) {
			if email != testUser.Email {
				t.Errorf("GetOrCreate called with %q", email)
			}
			return testUser, false, nil
		},
	}

	session, err := newUsecase(users, tokens, &fakeEmailSender{}).Login(context.Background(), "raw-token")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if session.User != testUser {
		t.Errorf("session user = %+v, want %+v", session.User, testUser)
	}

	claims := jwt.MapClaims{}
	_, err = jwt.ParseWithClaims(session.Token, claims, func(*jwt.Token) (any, error) {
		return []byte(testJWTKey), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		t.Fatalf("session token does not verify: %v", err)
	}
	if claims["sub"] != testUser.ID {
		t.Errorf("sub = %v, want %q", claims["sub"], testUser.ID)
	}
	if claims["email"] != testUser.Email {
		t.Errorf("email = %v, want %q", claims["email"], testUser.Email)
	}
	if !session.ExpiresAt.After(time.Now()) {
		t.Errorf("session expires in the past: %v", session.ExpiresAt)
	}
}

func TestLogin_UnknownToken(t *testing.T) {
	tokens := &fakeTokenRepo{
		findByHash: func(context.Context, string) (*domain.LoginToken, error) {
			return nil, domain.ErrTokenNotFound
		},
	}
	users := &fakeUserRepo{
		getOrCreate: func(context.Context, string) (*domain.User, bool, error) {
			t.Fatal("no user should be created for an unknown token")
			return nil, false, nil
		},
	}

	_, err := newUsecase(users, tokens, &fakeEmailSender{}).Login(context.Background(), "bogus")
	if !errors.Is(err, domain.ErrTokenInvalid) {
		t.Errorf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestLogin_StorageError(t *testing.T) {
	dbErr := errors.New("connection refused")
	tokens := &fakeTokenRepo{
		findByHash: func(context.Context, string) (*domain.LoginToken, error) {
			return nil, dbErr
		},
	}

	_, err := newUsecase(&fakeUserRepo{}, tokens, &fakeEmailSender{}).Login(context.Background(), "raw")
	if !errors.Is(err, dbErr) {
		t.Errorf("expected wrapped db error, got %v", err)
	}
	if errors.Is(err, domain.ErrTokenInvalid) {
		t.Error("storage failure must not look like an invalid token")
	}
}

// ---- CurrentUser ----

func TestCurrentUser_Missing(t *testing.T) {
	users := &fakeUserRepo{
		getByEmail: func(context.Context, string) (*domain.User, error) {
			return nil, domain.ErrUserNotFound
		},
	}

	user, err := newUsecase(users, &fakeTokenRepo{}, &fakeEmailSender{}).CurrentUser(context.Background(), "gone@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user != nil {
		t.Errorf("expected nil user, got %+v", user)
	}
}
