package issues

import (
	"context"
	"fmt"
	"time"

	"github.com/5w1tchy/library-api/internal/models"
	"github.com/5w1tchy/library-api/internal/store/dbx"
)

// Lock reads one issue FOR UPDATE.
func Lock(ctx context.Context, q dbx.DBTX, id int64) (models.Issue, error) {
	var r row
	err := q.QueryRowContext(ctx, selectCols+` WHERE id = $1 FOR UPDATE`, id).Scan(
		&r.ID, &r.BookID, &r.BookTitle, &r.CustomerID, &r.CustomerName,
		&r.DateIssued, &r.DateReturn, &r.Status, &r.Extended,
	)
	if err != nil {
		return models.Issue{}, dbx.MapPGError(err)
	}
	return r.toModel(), nil
}

func Insert(ctx context.Context, q dbx.DBTX, i models.Issue) (int64, error) {
	var id int64
	err := q.QueryRowContext(ctx, `
INSERT INTO issues (book_id, book_title, customer_id, customer_name, date_issued, status, extended)
VALUES ($1, $2, $3, $4, $5, 'issued', FALSE)
RETURNING id`,
		i.BookID, i.BookTitle, i.CustomerID, i.CustomerName, models.Date(i.DateIssued),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert issue: %w", dbx.MapPGError(err))
	}
	return id, nil
}

// MarkReturned flips an issued loan to returned; a loan already returned matches nothing.
func MarkReturned(ctx context.Context, q dbx.DBTX, id int64, on time.Time) error {
	res, err := q.ExecContext(ctx, `
UPDATE issues
SET status = 'returned', date_return = $2
WHERE id = $1 AND status = 'issued'`, id, models.Date(on))
	if err != nil {
		return fmt.Errorf("return issue %d: %w", id, err)
	}
	return dbx.Affected(res)
}

// MarkExtended sets the one-time extension flag.
func MarkExtended(ctx context.Context, q dbx.DBTX, id int64) error {
	res, err := q.ExecContext(ctx, `
UPDATE issues
SET extended = TRUE
WHERE id = $1 AND status = 'issued' AND extended = FALSE`, id)
	if err != nil {
		return fmt.Errorf("extend issue %d: %w", id, err)
	}
	return dbx.Affected(res)
}
