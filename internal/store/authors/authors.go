package authors

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/5w1tchy/library-api/internal/models"
	"github.com/5w1tchy/library-api/internal/store/dbx"
	"github.com/5w1tchy/library-api/internal/store/shared"
	"github.com/jmoiron/sqlx"
)

const selectCols = `SELECT a.id, a.full_name, a.birth_date, a.death_date, a.biography, a.wikipedia_url FROM authors a`

type row struct {
	ID           int64          `db:"id"`
	FullName     string         `db:"full_name"`
	BirthDate    sql.NullTime   `db:"birth_date"`
	DeathDate    sql.NullTime   `db:"death_date"`
	Biography    sql.NullString `db:"biography"`
	WikipediaURL sql.NullString `db:"wikipedia_url"`
}

func (r row) toModel() models.Author {
	a := models.Author{ID: r.ID, FullName: r.FullName}
	a.BirthDate = optDate(r.BirthDate)
	a.DeathDate = optDate(r.DeathDate)
	if r.Biography.Valid {
		a.Biography = &r.Biography.String
	}
	if r.WikipediaURL.Valid {
		a.WikipediaURL = &r.WikipediaURL.String
	}
	return a
}

func optDate(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	d := models.Date(nt.Time)
	return &d
}

type Store struct {
	db *sql.DB
	x  *sqlx.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db, x: sqlx.NewDb(db, "pgx")}
}

func (s *Store) All(ctx context.Context) ([]models.Author, error) {
	return s.selectMany(ctx, selectCols+` ORDER BY a.full_name, a.id`)
}

func (s *Store) Search(ctx context.Context, term string) ([]models.Author, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return s.All(ctx)
	}
	return s.selectMany(ctx, selectCols+` WHERE a.full_name ILIKE $1 ORDER BY a.full_name, a.id`, "%"+term+"%")
}

// ByBook lists the authors linked to a book, alphabetically.
func (s *Store) ByBook(ctx context.Context, bookID string) ([]models.Author, error) {
	return s.selectMany(ctx, selectCols+`
JOIN book_authors ba ON ba.author_id = a.id
WHERE ba.book_id = $1
ORDER BY a.full_name, a.id`, bookID)
}

func (s *Store) selectMany(ctx context.Context, query string, args ...any) ([]models.Author, error) {
	var rows []row
	if err := s.x.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list authors: %w", err)
	}
	out := make([]models.Author, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toModel())
	}
	return out, nil
}

func (s *Store) Get(ctx context.Context, id int64) (models.Author, error) {
	var r row
	if err := s.x.GetContext(ctx, &r, selectCols+` WHERE a.id = $1`, id); err != nil {
		return models.Author{}, dbx.MapPGError(err)
	}
	return r.toModel(), nil
}

func (s *Store) Create(ctx context.Context, a models.Author) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
INSERT INTO authors (full_name, birth_date, death_date, biography, wikipedia_url)
VALUES ($1, $2, $3, $4, $5)
RETURNING id`,
		a.FullName, shared.NullIfNil(a.BirthDate), shared.NullIfNil(a.DeathDate),
		shared.NullIfNil(a.Biography), shared.NullIfNil(a.WikipediaURL),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert author: %w", dbx.MapPGError(err))
	}
	return id, nil
}

func (s *Store) Update(ctx context.Context, a models.Author) error {
	res, err := s.db.ExecContext(ctx, `
UPDATE authors
SET full_name = $2, birth_date = $3, death_date = $4, biography = $5, wikipedia_url = $6
WHERE id = $1`,
		a.ID, a.FullName, shared.NullIfNil(a.BirthDate), shared.NullIfNil(a.DeathDate),
		shared.NullIfNil(a.Biography), shared.NullIfNil(a.WikipediaURL))
	if err != nil {
		return fmt.Errorf("update author %d: %w", a.ID, dbx.MapPGError(err))
	}
	return dbx.MapPGError(dbx.Affected(res))
}

// Delete removes the author; book links cascade, books stay.
func (s *Store) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM authors WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete author %d: %w", id, err)
	}
	return dbx.MapPGError(dbx.Affected(res))
}
