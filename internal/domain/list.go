package domain

import (
	"errors"
	"time"
)

var (
	ErrListNotFound  = errors.New("list not found")
	ErrEmptyItem     = errors.New("empty list item")
	ErrDuplicateItem = errors.New("duplicate list item")
)

type List struct {
	ID         string
	OwnerEmail *string // nil for lists created anonymously
	Items      []Item  // ordered by Position
	CreatedAt  time.Time
}

type Item struct {
	ID        string
	ListID    string
	Text      string
	Position  int // 1-based, insertion order
	CreatedAt time.Time
}

// Name is the text of the first item, used as the list's title.
func (l *List) Name() string {
	if len(l.Items) == 0 {
		return ""
	}
	return l.Items[0].Text
}
