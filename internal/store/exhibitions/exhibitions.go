package exhibitions

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/5w1tchy/library-api/internal/models"
	"github.com/5w1tchy/library-api/internal/store/dbx"
	"github.com/5w1tchy/library-api/internal/store/shared"
	"github.com/jmoiron/sqlx"
)

const selectCols = `
SELECT id, title, description, start_date, end_date, is_active, created_at
FROM exhibitions`

type row struct {
	ID          int64          `db:"id"`
	Title       string         `db:"title"`
	Description sql.NullString `db:"description"`
	StartDate   sql.NullTime   `db:"start_date"`
	EndDate     sql.NullTime   `db:"end_date"`
	IsActive    bool           `db:"is_active"`
	CreatedAt   time.Time      `db:"created_at"`
}

func (r row) toModel() models.Exhibition {
	e := models.Exhibition{ID: r.ID, Title: r.Title, IsActive: r.IsActive, CreatedAt: r.CreatedAt}
	if r.Description.Valid {
		e.Description = &r.Description.String
	}
	if r.StartDate.Valid {
		d := models.Date(r.StartDate.Time)
		e.StartDate = &d
	}
	if r.EndDate.Valid {
		d := models.Date(r.EndDate.Time)
		e.EndDate = &d
	}
	return e
}

// Slot is one book placed in an exhibition.
type Slot struct {
	BookID       string `db:"book_id"`
	Title        string `db:"title"`
	DisplayOrder int    `db:"display_order"`
}

type Store struct {
	db *sql.DB
	x  *sqlx.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db, x: sqlx.NewDb(db, "pgx")}
}

func (s *Store) All(ctx context.Context) ([]models.Exhibition, error) {
	return s.selectMany(ctx, selectCols+` ORDER BY created_at DESC, id DESC`)
}

// Active lists switched-on exhibitions whose window contains today (missing bounds are open).
func (s *Store) Active(ctx context.Context, today time.Time) ([]models.Exhibition, error) {
	return s.selectMany(ctx, selectCols+`
WHERE is_active
  AND (start_date IS NULL OR start_date <= $1::date)
  AND (end_date IS NULL OR end_date >= $1::date)
ORDER BY start_date NULLS FIRST, id`, models.Date(today))
}

func (s *Store) selectMany(ctx context.Context, query string, args ...any) ([]models.Exhibition, error) {
	var rows []row
	if err := s.x.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list exhibitions: %w", err)
	}
	out := make([]models.Exhibition, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toModel())
	}
	return out, nil
}

func (s *Store) Get(ctx context.Context, id int64) (models.Exhibition, error) {
	return Get(ctx, s.db, id, false)
}

// Get loads one exhibition; forUpdate locks the row for the surrounding tx.
func Get(ctx context.Context, q dbx.DBTX, id int64, forUpdate bool) (models.Exhibition, error) {
	query := selectCols + ` WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	var r row
	err := q.QueryRowContext(ctx, query, id).Scan(
		&r.ID, &r.Title, &r.Description, &r.StartDate, &r.EndDate, &r.IsActive, &r.CreatedAt)
	if err != nil {
		return models.Exhibition{}, dbx.MapPGError(err)
	}
	return r.toModel(), nil
}

func (s *Store) Create(ctx context.Context, e models.Exhibition) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
INSERT INTO exhibitions (title, description, start_date, end_date, is_active)
VALUES ($1, $2, $3, $4, $5)
RETURNING id`,
		e.Title, shared.NullIfNil(e.Description), shared.NullIfNil(e.StartDate),
		shared.NullIfNil(e.EndDate), e.IsActive,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert exhibition: %w", dbx.MapPGError(err))
	}
	return id, nil
}

func (s *Store) Update(ctx context.Context, e models.Exhibition) error {
	res, err := s.db.ExecContext(ctx, `
UPDATE exhibitions
SET title = $2, description = $3, start_date = $4, end_date = $5, is_active = $6
WHERE id = $1`,
		e.ID, e.Title, shared.NullIfNil(e.Description), shared.NullIfNil(e.StartDate),
		shared.NullIfNil(e.EndDate), e.IsActive)
	if err != nil {
		return fmt.Errorf("update exhibition %d: %w", e.ID, dbx.MapPGError(err))
	}
	return dbx.MapPGError(dbx.Affected(res))
}

func (s *Store) SetActive(ctx context.Context, id int64, active bool) error {
	res, err := s.db.ExecContext(ctx, `UPDATE exhibitions SET is_active = $2 WHERE id = $1`, id, active)
	if err != nil {
		return fmt.Errorf("toggle exhibition %d: %w", id, err)
	}
	return dbx.MapPGError(dbx.Affected(res))
}

func (s *Store) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM exhibitions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete exhibition %d: %w", id, err)
	}
	return dbx.MapPGError(dbx.Affected(res))
}

// Books lists the exhibition's slots by display_order; ties keep the order the books were added in.
func (s *Store) Books(ctx context.Context, exhibitionID int64) ([]Slot, error) {
	out := []Slot{}
	err := s.x.SelectContext(ctx, &out, `
SELECT eb.book_id, b.title, eb.display_order
FROM exhibition_books eb
JOIN books b ON b.id = eb.book_id
WHERE eb.exhibition_id = $1
ORDER BY eb.display_order, eb.id`, exhibitionID)
	if err != nil {
		return nil, fmt.Errorf("exhibition %d books: %w", exhibitionID, err)
	}
	return out, nil
}
