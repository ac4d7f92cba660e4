package books

import (
	"context"
	"fmt"

	"github.com/5w1tchy/library-api/internal/models"
	"github.com/5w1tchy/library-api/internal/store/dbx"
)

// LockForLoan reads the copy counters under FOR UPDATE so concurrent issues on one book serialize.
func LockForLoan(ctx context.Context, q dbx.DBTX, id string) (models.Book, error) {
	const query = `
SELECT id, title, total_copies, available_copies
FROM books
WHERE id = $1
FOR UPDATE`
	var b models.Book
	if err := q.QueryRowContext(ctx, query, id).Scan(&b.ID, &b.Title, &b.TotalCopies, &b.AvailableCopies); err != nil {
		return models.Book{}, dbx.MapPGError(err)
	}
	return b, nil
}

// AdjustAvailable moves available_copies by delta, refusing to leave 0..total_copies.
// Returns sql.ErrNoRows when the guard (or the id) did not match.
func AdjustAvailable(ctx context.Context, q dbx.DBTX, id string, delta int) error {
	const query = `
UPDATE books
SET available_copies = available_copies + $2
WHERE id = $1
  AND available_copies + $2 >= 0
  AND available_copies + $2 <= total_copies`
	res, err := q.ExecContext(ctx, query, id, delta)
	if err != nil {
		return fmt.Errorf("adjust copies %s by %d: %w", id, delta, err)
	}
	return dbx.Affected(res)
}
