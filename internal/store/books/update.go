package books

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/5w1tchy/library-api/internal/apperr"
	"github.com/5w1tchy/library-api/internal/models"
	"github.com/5w1tchy/library-api/internal/store/dbx"
	"github.com/5w1tchy/library-api/internal/store/shared"
)

// Update rewrites the scalar columns of b and replaces the relations whose pointer is set.
// A missing book is apperr.ErrNotFound. available_copies is recomputed under the row lock
// as total_copies minus copies on loan; a total below that is apperr.ErrInvalid.
func (s *Store) Update(ctx context.Context, b models.Book, rel Relations) error {
	return dbx.WithinTx(ctx, s.db, func(tx *sql.Tx) error {
		cur, err := LockForLoan(ctx, tx, b.ID)
		if err != nil {
			return err
		}
		onLoan := cur.TotalCopies - cur.AvailableCopies
		if b.TotalCopies < onLoan {
			return fmt.Errorf("book %s has %d copies on loan: %w", b.ID, onLoan, apperr.ErrInvalid)
		}
		b.AvailableCopies = b.TotalCopies - onLoan
		if err := updateBookFields(ctx, tx, b); err != nil {
			return err
		}
		return applyRelations(ctx, tx, b.ID, rel)
	})
}

func updateBookFields(ctx context.Context, tx *sql.Tx, b models.Book) error {
	res, err := tx.ExecContext(ctx, `
UPDATE books SET
    title            = $2,
    subtitle         = $3,
    description      = $4,
    publication_year = $5,
    isbn             = $6,
    total_copies     = $7,
    available_copies = $8,
    author           = $9,
    category         = $10,
    cover_image      = $11
WHERE id = $1`,
		b.ID,
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
		return fmt.Errorf("update book %s: %w", b.ID, dbx.MapPGError(err))
	}
	if err := dbx.Affected(res); err != nil {
		return dbx.MapPGError(err)
	}
	return nil
}
