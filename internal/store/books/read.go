package books

import (
	"context"
	"fmt"

	"github.com/5w1tchy/library-api/internal/apperr"
	"github.com/5w1tchy/library-api/internal/models"
	"github.com/5w1tchy/library-api/internal/store/dbx"
)

// Get returns one enriched book or apperr.ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (models.Book, error) {
	items, _, err := s.Query(ctx, Filter{IDs: []string{id}})
	if err != nil {
		return models.Book{}, err
	}
	if len(items) == 0 {
		return models.Book{}, fmt.Errorf("book %s: %w", id, apperr.ErrNotFound)
	}
	return items[0], nil
}

func (s *Store) Exists(ctx context.Context, id string) (bool, error) {
	return Exists(ctx, s.db, id)
}

func Exists(ctx context.Context, q dbx.DBTX, id string) (bool, error) {
	var exists bool
	err := q.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM books WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}
