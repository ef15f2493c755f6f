package repository

import (
	"context"

	"github.com/ErlanBelekov/superlists/internal/domain"
)

type ListRepository interface {
	// CreateWithItem creates a list and its first item atomically.
	CreateWithItem(ctx context.Context, ownerEmail *string, text string) (*domain.List, error)

	// GetByID returns the list with its items ordered by position.
	GetByID(ctx context.Context, id string) (*domain.List, error)

	// AddItem appends an item. Returns domain.ErrListNotFound or
	// domain.ErrDuplicateItem.
	AddItem(ctx context.Context, listID, text string) (*domain.Item, error)

	// ListByOwner returns the owner's lists, newest first, with items.
	ListByOwner(ctx context.Context, ownerEmail string) ([]*domain.List, error)
}
