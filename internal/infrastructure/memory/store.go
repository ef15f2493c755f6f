// Package memory implements the repositories on process memory. It backs
// STORE=memory for local development and the use-case tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ErlanBelekov/superlists/internal/domain"
	"github.com/google/uuid"
)

// Store satisfies repository.UserRepository, repository.TokenRepository and
// repository.ListRepository. It is safe for concurrent use.
type Store struct {
	mu     sync.Mutex
	now    func() time.Time
	users  map[string]*domain.User // by email
	tokens map[string]*domain.LoginToken
	lists  map[string]*domain.List
}

func NewStore() *Store {
	return &Store{
		now:    time.Now,
		users:  make(map[string]*domain.User),
		tokens: make(map[string]*domain.LoginToken),
		lists:  make(map[string]*domain.List),
	}
}

// Ping lets the store stand in for the database in readiness checks.
func (s *Store) Ping(_ context.Context) error { return nil }

func (s *Store) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *Store) GetOrCreate(_ context.Context, email string) (*domain.User, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u, ok := s.users[email]; ok {
		cp := *u
		return &cp, false, nil
	}

	now := s.now()
	u := &domain.User{ID: uuid.NewString(), Email: email, CreatedAt: now, UpdatedAt: now}
	s.users[email] = u
	cp := *u
	return &cp, true, nil
}

func (s *Store) Create(_ context.Context, tokenHash, email string) (*domain.LoginToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := &domain.LoginToken{TokenHash: tokenHash, Email: email, CreatedAt: s.now()}
	s.tokens[tokenHash] = t
	cp := *t
	return &cp, nil
}

func (s *Store) FindByHash(_ context.Context, tokenHash string) (*domain.LoginToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tokens[tokenHash]
	if !ok {
		return nil, domain.ErrTokenNotFound
	}
	cp := *t
	return &cp, nil
}

func (s *Store) Claim(_ context.Context, tokenHash string) (*domain.LoginToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tokens[tokenHash]
	if !ok {
		return nil, domain.ErrTokenNotFound
	}
	delete(s.tokens, tokenHash)
	return t, nil
}

func (s *Store) DeleteCreatedBefore(_ context.Context, cutoff time.Time, limit int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for hash, t := range s.tokens {
		if n >= limit {
			break
		}
		if t.CreatedAt.Before(cutoff) {
			delete(s.tokens, hash)
			n++
		}
	}
	return n, nil
}

func (s *Store) CreateWithItem(_ context.Context, ownerEmail *string, text string) (*domain.List, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	l := &domain.List{ID: uuid.NewString(), CreatedAt: now}
	if ownerEmail != nil {
		owner := *ownerEmail
		l.OwnerEmail = &owner
	}
	l.Items = []domain.Item{{
		ID:        uuid.NewString(),
		ListID:    l.ID,
		Text:      text,
		Position:  1,
		CreatedAt: now,
	}}
	s.lists[l.ID] = l
	return copyList(l), nil
}

func (s *Store) GetByID(_ context.Context, id string) (*domain.List, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.lists[id]
	if !ok {
		return nil, domain.ErrListNotFound
	}
	return copyList(l), nil
}

func (s *Store) AddItem(_ context.Context, listID, text string) (*domain.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.lists[listID]
	if !ok {
		return nil, domain.ErrListNotFound
	}
	for _, it := range l.Items {
		if it.Text == text {
			return nil, domain.ErrDuplicateItem
		}
	}

	item := domain.Item{
		ID:        uuid.NewString(),
		ListID:    listID,
		Text:      text,
		Position:  len(l.Items) + 1,
		CreatedAt: s.now(),
	}
	l.Items = append(l.Items, item)
	return &item, nil
}

func (s *Store) ListByOwner(_ context.Context, ownerEmail string) ([]*domain.List, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*domain.List
	for _, l := range s.lists {
		if l.OwnerEmail != nil && *l.OwnerEmail == ownerEmail {
			out = append(out, copyList(l))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func copyList(l *domain.List) *domain.List {
	cp := *l
	cp.Items = append([]domain.Item(nil), l.Items...)
	return &cp
}
