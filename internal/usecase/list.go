package usecase

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/ErlanBelekov/superlists/internal/domain"
	"github.com/ErlanBelekov/superlists/internal/metrics"
	"github.com/ErlanBelekov/superlists/internal/repository"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
)

type ListUsecase struct {
	repo      repository.ListRepository
	stripTags *bluemonday.Policy
}

func NewListUsecase(repo repository.ListRepository) *ListUsecase {
	return &ListUsecase{repo: repo, stripTags: bluemonday.StrictPolicy()}
}

// CreateList starts a new list with text as its first item. Nothing is
// stored when the item is invalid. ownerEmail may be nil.
func (u *ListUsecase) CreateList(ctx context.Context, ownerEmail *string, text string) (*domain.List, error) {
	text, err := u.cleanItemText(text)
	if err != nil {
		return nil, err
	}

	if ownerEmail != nil {
		owner := domain.NormalizeEmail(*ownerEmail)
		ownerEmail = &owner
	}

	l, err := u.repo.CreateWithItem(ctx, ownerEmail, text)
	if err != nil {
		return nil, fmt.Errorf("create list: %w", err)
	}
	metrics.ItemsAddedTotal.WithLabelValues("added").Inc()
	return l, nil
}

func (u *ListUsecase) AddItem(ctx context.Context, listID, text string) (*domain.Item, error) {
	if _, err := uuid.Parse(listID); err != nil {
		return nil, domain.ErrListNotFound
	}

	text, err := u.cleanItemText(text)
	if err != nil {
		return nil, err
	}

	item, err := u.repo.AddItem(ctx, listID, text)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateItem) {
			metrics.ItemsAddedTotal.WithLabelValues("duplicate").Inc()
		}
		return nil, fmt.Errorf("add item: %w", err)
	}
	metrics.ItemsAddedTotal.WithLabelValues("added").Inc()
	return item, nil
}

func (u *ListUsecase) GetList(ctx context.Context, listID string) (*domain.List, error) {
	if _, err := uuid.Parse(listID); err != nil {
		return nil, domain.ErrListNotFound
	}

	l, err := u.repo.GetByID(ctx, listID)
	if err != nil {
		return nil, fmt.Errorf("get list: %w", err)
	}
	return l, nil
}

func (u *ListUsecase) ListsForOwner(ctx context.Context, ownerEmail string) ([]*domain.List, error) {
	lists, err := u.repo.ListByOwner(ctx, domain.NormalizeEmail(ownerEmail))
	if err != nil {
		return nil, fmt.Errorf("list lists: %w", err)
	}
	return lists, nil
}

// cleanItemText trims text and stores it as typed; escaping is the
// renderer's job. Text that is blank once markup is ignored, such as
// "<b></b>", is rejected with domain.ErrEmptyItem.
func (u *ListUsecase) cleanItemText(text string) (string, error) {
	text = strings.TrimSpace(text)
	visible := strings.TrimSpace(html.UnescapeString(u.stripTags.Sanitize(text)))
	if text == "" || visible == "" {
		metrics.ItemsAddedTotal.WithLabelValues("empty").Inc()
		return "", domain.ErrEmptyItem
	}
	return text, nil
}
