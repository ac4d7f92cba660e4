package exhibitions

import (
	"context"
	"fmt"

	"github.com/5w1tchy/library-api/internal/store/dbx"
)

// CountBooks counts the books placed in an exhibition.
func CountBooks(ctx context.Context, q dbx.DBTX, exhibitionID int64) (int, error) {
	var n int
	err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM exhibition_books WHERE exhibition_id = $1`, exhibitionID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count exhibition %d books: %w", exhibitionID, err)
	}
	return n, nil
}

func HasBook(ctx context.Context, q dbx.DBTX, exhibitionID int64, bookID string) (bool, error) {
	var ok bool
	err := q.QueryRowContext(ctx, `
SELECT EXISTS (SELECT 1 FROM exhibition_books WHERE exhibition_id = $1 AND book_id = $2)`,
		exhibitionID, bookID).Scan(&ok)
	return ok, err
}

func NextOrder(ctx context.Context, q dbx.DBTX, exhibitionID int64) (int, error) {
	var n int
	err := q.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(display_order), 0) + 1 FROM exhibition_books WHERE exhibition_id = $1`, exhibitionID,
	).Scan(&n)
	return n, err
}

// UpsertBook places bookID at order, moving it when already present.
func UpsertBook(ctx context.Context, q dbx.DBTX, exhibitionID int64, bookID string, order int) error {
	_, err := q.ExecContext(ctx, `
INSERT INTO exhibition_books (exhibition_id, book_id, display_order)
VALUES ($1, $2, $3)
ON CONFLICT (exhibition_id, book_id) DO UPDATE SET display_order = EXCLUDED.display_order`,
		exhibitionID, bookID, order)
	if err != nil {
		return fmt.Errorf("place book %s in exhibition %d: %w", bookID, exhibitionID, dbx.MapPGError(err))
	}
	return nil
}

func RemoveBook(ctx context.Context, q dbx.DBTX, exhibitionID int64, bookID string) error {
	res, err := q.ExecContext(ctx,
		`DELETE FROM exhibition_books WHERE exhibition_id = $1 AND book_id = $2`, exhibitionID, bookID)
	if err != nil {
		return fmt.Errorf("remove book %s from exhibition %d: %w", bookID, exhibitionID, err)
	}
	return dbx.Affected(res)
}

// SetOrder rewrites one book's display_order; unknown books match nothing.
func SetOrder(ctx context.Context, q dbx.DBTX, exhibitionID int64, bookID string, order int) error {
	res, err := q.ExecContext(ctx, `
UPDATE exhibition_books SET display_order = $3
WHERE exhibition_id = $1 AND book_id = $2`, exhibitionID, bookID, order)
	if err != nil {
		return fmt.Errorf("reorder book %s in exhibition %d: %w", bookID, exhibitionID, err)
	}
	return dbx.Affected(res)
}
