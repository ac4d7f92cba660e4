package books

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/5w1tchy/library-api/internal/models"
	"github.com/5w1tchy/library-api/internal/store/dbx"
	"github.com/5w1tchy/library-api/internal/store/shared"
)

// Create inserts b with its relations in one transaction and returns the book id.
// An empty b.ID gets the next B#### id. A taken id surfaces as apperr.ErrConflict.
func (s *Store) Create(ctx context.Context, b models.Book, rel Relations) (string, error) {
	var id string
	err := dbx.WithinTx(ctx, s.db, func(tx *sql.Tx) error {
		id = strings.TrimSpace(b.ID)
		if id == "" {
			var err error
			if id, err = shared.GenerateUniqueID(ctx, tx, "books", shared.BookIDPrefix, shared.DefaultIDWidth); err != nil {
				return err
			}
		}
		if err := insertBook(ctx, tx, id, b); err != nil {
			return err
		}
		return applyRelations(ctx, tx, id, rel)
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

func insertBook(ctx context.Context, tx *sql.Tx, id string, b models.Book) error {
	_, err := tx.ExecContext(ctx, `
INSERT INTO books (id, title, subtitle, description, publication_year, isbn,
                   total_copies, available_copies, author, category, cover_image)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		id,
		b.Title,
		shared.NullIfNil(b.Subtitle),
		shared.NullIfNil(b.Description),
		shared.NullIfNil(b.PublicationYear),
		shared.NullIfNil(b.ISBN),
		b.TotalCopies,
		b.AvailableCopies,
		shared.NullIfEmpty(b.Author),
		shared.NullIfEmpty(b.Category),
		shared.NullIfNil(b.CoverImage),
	)
	if err != nil {
		return fmt.Errorf("insert book %s: %w", id, dbx.MapPGError(err))
	}
	return nil
}
