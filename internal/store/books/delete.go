package books

import (
	"context"
	"database/sql"

	"github.com/5w1tchy/library-api/internal/apperr"
	"github.com/5w1tchy/library-api/internal/store/dbx"
)

// Delete removes a book; covers, themes, author links and exhibition slots cascade.
// It refuses with apperr.ErrActiveLoans while any copy is still issued.
func (s *Store) Delete(ctx context.Context, id string) error {
	return dbx.WithinTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := LockForLoan(ctx, tx, id); err != nil {
			return err
		}

		var active int
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM issues WHERE book_id = $1 AND status = 'issued'`, id,
		).Scan(&active); err != nil {
			return err
		}
		if active > 0 {
			return apperr.ErrActiveLoans
		}

		res, err := tx.ExecContext(ctx, `DELETE FROM books WHERE id = $1`, id)
		if err != nil {
			return err
		}
		return dbx.MapPGError(dbx.Affected(res))
	})
}
