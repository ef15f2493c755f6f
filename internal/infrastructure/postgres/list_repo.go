package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/ErlanBelekov/superlists/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type ListRepository struct {
	db DBTX
}

func NewListRepository(db DBTX) *ListRepository {
	return &ListRepository{db: db}
}

const itemColumns = `id, list_id, text, position, created_at`

func (r *ListRepository) CreateWithItem(ctx context.Context, ownerEmail *string, text string) (*domain.List, error) {
	var l *domain.List

	err := withTx(ctx, r.db, func(tx pgx.Tx) error {
		created, err := scanList(tx.QueryRow(ctx,
			`INSERT INTO lists (owner_email) VALUES ($1) RETURNING id, owner_email, created_at`,
			ownerEmail,
		))
		if err != nil {
			return err
		}

		item, err := scanItem(tx.QueryRow(ctx,
			`INSERT INTO items (list_id, text, position) VALUES ($1, $2, 1)
			 RETURNING `+itemColumns,
			created.ID, text,
		))
		if err != nil {
			return err
		}

		created.Items = []domain.Item{*item}
		l = created
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("create list: %w", err)
	}
	return l, nil
}

func (r *ListRepository) GetByID(ctx context.Context, id string) (*domain.List, error) {
	l, err := scanList(r.db.QueryRow(ctx,
		`SELECT id, owner_email, created_at FROM lists WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx,
		`SELECT `+itemColumns+` FROM items WHERE list_id = $1 ORDER BY position ASC`, id)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		l.Items = append(l.Items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}
	return l, nil
}

// AddItem locks the list row so positions are assigned without gaps or
// collisions under concurrent adds.
func (r *ListRepository) AddItem(ctx context.Context, listID, text string) (*domain.Item, error) {
	var item *domain.Item

	err := withTx(ctx, r.db, func(tx pgx.Tx) error {
		var id string
		err := tx.QueryRow(ctx, `SELECT id FROM lists WHERE id = $1 FOR UPDATE`, listID).Scan(&id)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrListNotFound
			}
			return fmt.Errorf("lock list: %w", err)
		}

		item, err = scanItem(tx.QueryRow(ctx, `
			INSERT INTO items (list_id, text, position)
			SELECT $1, $2, COALESCE(MAX(position), 0) + 1 FROM items WHERE list_id = $1
			RETURNING `+itemColumns,
			listID, text,
		))
		return err
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return nil, domain.ErrDuplicateItem
		}
		if errors.Is(err, domain.ErrListNotFound) {
			return nil, domain.ErrListNotFound
		}
		return nil, fmt.Errorf("add item: %w", err)
	}
	return item, nil
}

func (r *ListRepository) ListByOwner(ctx context.Context, ownerEmail string) ([]*domain.List, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, owner_email, created_at
		FROM lists
		WHERE owner_email = $1
		ORDER BY created_at DESC, id DESC`,
		ownerEmail,
	)
	if err != nil {
		return nil, fmt.Errorf("list lists: %w", err)
	}

	var (
		lists []*domain.List
		ids   []string
	)
	byID := make(map[string]*domain.List)
	for rows.Next() {
		l, err := scanList(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		lists = append(lists, l)
		ids = append(ids, l.ID)
		byID[l.ID] = l
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate lists: %w", err)
	}
	if len(lists) == 0 {
		return lists, nil
	}

	itemRows, err := r.db.Query(ctx, `
		SELECT `+itemColumns+`
		FROM items
		WHERE list_id = ANY($1::uuid[])
		ORDER BY list_id, position ASC`,
		ids,
	)
	if err != nil {
		return nil, fmt.Errorf("list owner items: %w", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		item, err := scanItem(itemRows)
		if err != nil {
			return nil, err
		}
		if l, ok := byID[item.ListID]; ok {
			l.Items = append(l.Items, *item)
		}
	}
	if err := itemRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate owner items: %w", err)
	}
	return lists, nil
}

func withTx(ctx context.Context, db DBTX, fn func(tx pgx.Tx) error) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func scanList(row rowScanner) (*domain.List, error) {
	var l domain.List
	err := row.Scan(&l.ID, &l.OwnerEmail, &l.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrListNotFound
		}
		return nil, fmt.Errorf("scan list: %w", err)
	}
	return &l, nil
}

func scanItem(row rowScanner) (*domain.Item, error) {
	var i domain.Item
	err := row.Scan(&i.ID, &i.ListID, &i.Text, &i.Position, &i.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("scan item: %w", err)
	}
	return &i, nil
}
