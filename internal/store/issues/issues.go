package issues

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/5w1tchy/library-api/internal/models"
	"github.com/5w1tchy/library-api/internal/store/dbx"
	"github.com/jmoiron/sqlx"
)

const selectCols = `
SELECT id, book_id, book_title, customer_id, customer_name,
       date_issued, date_return, status, extended
FROM issues`

type row struct {
	ID           int64        `db:"id"`
	BookID       string       `db:"book_id"`
	BookTitle    string       `db:"book_title"`
	CustomerID   string       `db:"customer_id"`
	CustomerName string       `db:"customer_name"`
	DateIssued   time.Time    `db:"date_issued"`
	DateReturn   sql.NullTime `db:"date_return"`
	Status       string       `db:"status"`
	Extended     bool         `db:"extended"`
}

func (r row) toModel() models.Issue {
	i := models.Issue{
		ID:           r.ID,
		BookID:       r.BookID,
		BookTitle:    r.BookTitle,
		CustomerID:   r.CustomerID,
		CustomerName: r.CustomerName,
		DateIssued:   models.Date(r.DateIssued),
		Status:       models.IssueStatus(r.Status),
		Extended:     r.Extended,
	}
	if r.DateReturn.Valid {
		d := models.Date(r.DateReturn.Time)
		i.DateReturn = &d
	}
	return i
}

type Store struct {
	x *sqlx.DB
}

func New(db *sql.DB) *Store {
	return &Store{x: sqlx.NewDb(db, "pgx")}
}

func (s *Store) All(ctx context.Context) ([]models.Issue, error) {
	return s.selectMany(ctx, selectCols+` ORDER BY date_issued DESC, id DESC`)
}

func (s *Store) Active(ctx context.Context) ([]models.Issue, error) {
	return s.selectMany(ctx, selectCols+` WHERE status = 'issued' ORDER BY date_issued, id`)
}

func (s *Store) ByCustomer(ctx context.Context, customerID string) ([]models.Issue, error) {
	return s.selectMany(ctx, selectCols+` WHERE customer_id = $1 ORDER BY date_issued DESC, id DESC`, customerID)
}

func (s *Store) ActiveByCustomer(ctx context.Context, customerID string) ([]models.Issue, error) {
	return s.selectMany(ctx, selectCols+`
WHERE customer_id = $1 AND status = 'issued'
ORDER BY date_issued, id`, customerID)
}

// Search matches book title, customer name or customer id; newest first.
func (s *Store) Search(ctx context.Context, term string) ([]models.Issue, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return s.All(ctx)
	}
	return s.selectMany(ctx, selectCols+`
WHERE book_title ILIKE $1 OR customer_name ILIKE $1 OR customer_id ILIKE $1
ORDER BY date_issued DESC, id DESC`, "%"+term+"%")
}

// Overdue lists issued loans whose age on today exceeds periodDays, plus graceDays when extended.
func (s *Store) Overdue(ctx context.Context, today time.Time, periodDays, graceDays int) ([]models.Issue, error) {
	return s.selectMany(ctx, selectCols+`
WHERE status = 'issued'
  AND ($1::date - date_issued) > $2 + CASE WHEN extended THEN $3 ELSE 0 END
ORDER BY date_issued, id`, models.Date(today), periodDays, graceDays)
}

func (s *Store) Get(ctx context.Context, id int64) (models.Issue, error) {
	var r row
	if err := s.x.GetContext(ctx, &r, selectCols+` WHERE id = $1`, id); err != nil {
		return models.Issue{}, dbx.MapPGError(err)
	}
	return r.toModel(), nil
}

func (s *Store) selectMany(ctx context.Context, query string, args ...any) ([]models.Issue, error) {
	var rows []row
	if err := s.x.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list issues: %w", err)
	}
	out := make([]models.Issue, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toModel())
	}
	return out, nil
}
