package stats

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/5w1tchy/library-api/internal/models"
)

// DefaultTopN is how many customers/books the leaderboards return.
const DefaultTopN = 5

type Store struct{ db *sql.DB }

func New(db *sql.DB) *Store { return &Store{db: db} }

// Thresholds carries the overdue rule into SQL so counts agree with the loan manager.
type Thresholds struct {
	Today      time.Time
	PeriodDays int
	GraceDays  int
}

// CountIssues returns total, active and overdue loans.
func (s *Store) CountIssues(ctx context.Context, th Thresholds) (total, active, overdue int, err error) {
	const q = `
SELECT COUNT(*),
       COUNT(*) FILTER (WHERE status = 'issued'),
       COUNT(*) FILTER (WHERE status = 'issued'
                          AND ($1::date - date_issued) > $2 + CASE WHEN extended THEN $3 ELSE 0 END)
FROM issues`
	err = s.db.QueryRowContext(ctx, q, models.Date(th.Today), th.PeriodDays, th.GraceDays).
		Scan(&total, &active, &overdue)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("count issues: %w", err)
	}
	return total, active, overdue, nil
}

func (s *Store) CountCustomers(ctx context.Context) (int, error) {
	const q = `SELECT COUNT(*) FROM customers`
	var n int
	if err := s.db.QueryRowContext(ctx, q).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// CountBooks returns the number of titles and the number with a copy on the shelf.
func (s *Store) CountBooks(ctx context.Context) (int, int, error) {
	const q = `SELECT COUNT(*), COUNT(*) FILTER (WHERE available_copies > 0) FROM books`
	var total, available int
	if err := s.db.QueryRowContext(ctx, q).Scan(&total, &available); err != nil {
		return 0, 0, err
	}
	return total, available, nil
}

func (s *Store) TopCustomers(ctx context.Context, limit int) ([]models.CustomerLoanCount, error) {
	if limit <= 0 {
		limit = DefaultTopN
	}
	const q = `
SELECT customer_id, MAX(customer_name), COUNT(*) AS n
FROM issues
GROUP BY customer_id
ORDER BY n DESC, customer_id
LIMIT $1`
	rows, err := s.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.CustomerLoanCount, 0, limit)
	for rows.Next() {
		var c models.CustomerLoanCount
		if err := rows.Scan(&c.CustomerID, &c.CustomerName, &c.Count); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) TopBooks(ctx context.Context, limit int) ([]models.BookLoanCount, error) {
	if limit <= 0 {
		limit = DefaultTopN
	}
	const q = `
SELECT book_id, MAX(book_title), COUNT(*) AS n
FROM issues
GROUP BY book_id
ORDER BY n DESC, book_id
LIMIT $1`
	rows, err := s.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.BookLoanCount, 0, limit)
	for rows.Next() {
		var b models.BookLoanCount
		if err := rows.Scan(&b.BookID, &b.BookTitle, &b.Count); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// Summary assembles every aggregate in one call.
func (s *Store) Summary(ctx context.Context, th Thresholds) (models.Stats, error) {
	var st models.Stats
	var err error
	if st.TotalIssues, st.ActiveIssues, st.OverdueIssues, err = s.CountIssues(ctx, th); err != nil {
		return models.Stats{}, err
	}
	if st.TotalCustomers, err = s.CountCustomers(ctx); err != nil {
		return models.Stats{}, fmt.Errorf("count customers: %w", err)
	}
	if st.TotalBooks, st.AvailableBooks, err = s.CountBooks(ctx); err != nil {
		return models.Stats{}, fmt.Errorf("count books: %w", err)
	}
	if st.TopCustomers, err = s.TopCustomers(ctx, DefaultTopN); err != nil {
		return models.Stats{}, fmt.Errorf("top customers: %w", err)
	}
	if st.TopBooks, err = s.TopBooks(ctx, DefaultTopN); err != nil {
		return models.Stats{}, fmt.Errorf("top books: %w", err)
	}
	return st, nil
}
