package books

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/5w1tchy/library-api/internal/models"
	"github.com/5w1tchy/library-api/internal/store/dbx"
	"github.com/5w1tchy/library-api/internal/store/shared"
)

// SetAuthors replaces the book's author links. Authors are matched by name
// case-insensitively and reused; unknown names become new authors. Author rows are never deleted here.
func SetAuthors(ctx context.Context, q dbx.DBTX, bookID string, in []AuthorInput) ([]models.AuthorRef, error) {
	if _, err := q.ExecContext(ctx, `DELETE FROM book_authors WHERE book_id = $1`, bookID); err != nil {
		return nil, fmt.Errorf("failed to clear book authors: %w", err)
	}

	refs := make([]models.AuthorRef, 0, len(in))
	for _, a := range dedupAuthors(in) {
		ref, err := upsertAuthor(ctx, q, a)
		if err != nil {
			return nil, fmt.Errorf("failed linking author '%s': %w", a.Name, err)
		}
		if err := linkBookAuthor(ctx, q, bookID, ref.ID); err != nil {
			return nil, fmt.Errorf("failed to link book to author '%s': %w", a.Name, err)
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

func dedupAuthors(in []AuthorInput) []AuthorInput {
	seen := make(map[string]int, len(in))
	out := make([]AuthorInput, 0, len(in))
	for _, a := range in {
		a.Name = shared.SanitizeString(a.Name)
		a.WikipediaURL = strings.TrimSpace(a.WikipediaURL)
		if a.Name == "" {
			continue
		}
		k := shared.FoldName(a.Name)
		if i, ok := seen[k]; ok {
			if out[i].WikipediaURL == "" {
				out[i].WikipediaURL = a.WikipediaURL
			}
			continue
		}
		seen[k] = len(out)
		out = append(out, a)
	}
	return out
}

// upsertAuthor finds an author by case-insensitive name (backfilling a missing URL) or creates one.
func upsertAuthor(ctx context.Context, q dbx.DBTX, a AuthorInput) (models.AuthorRef, error) {
	ref := models.AuthorRef{FullName: a.Name}

	var url string
	err := q.QueryRowContext(ctx, `
SELECT id, full_name, COALESCE(wikipedia_url, '')
FROM authors
WHERE lower(full_name) = lower($1)
ORDER BY id
LIMIT 1`, a.Name).Scan(&ref.ID, &ref.FullName, &url)

	switch {
	case err == nil:
		if url == "" && a.WikipediaURL != "" {
			if _, err := q.ExecContext(ctx, `UPDATE authors SET wikipedia_url = $2 WHERE id = $1`, ref.ID, a.WikipediaURL); err != nil {
				return models.AuthorRef{}, fmt.Errorf("backfill wikipedia_url: %w", err)
			}
			url = a.WikipediaURL
		}
		ref.WikipediaURL = url
		return ref, nil
	case !errors.Is(err, sql.ErrNoRows):
		return models.AuthorRef{}, fmt.Errorf("failed to lookup author '%s': %w", a.Name, err)
	}

	if err := q.QueryRowContext(ctx, `
INSERT INTO authors (full_name, wikipedia_url)
VALUES ($1, $2)
RETURNING id`, a.Name, shared.NullIfEmpty(a.WikipediaURL)).Scan(&ref.ID); err != nil {
		return models.AuthorRef{}, fmt.Errorf("failed to create author '%s': %w", a.Name, err)
	}
	ref.WikipediaURL = a.WikipediaURL
	return ref, nil
}

func linkBookAuthor(ctx context.Context, q dbx.DBTX, bookID string, authorID int64) error {
	_, err := q.ExecContext(ctx, `
INSERT INTO book_authors (book_id, author_id)
VALUES ($1, $2)
ON CONFLICT (book_id, author_id) DO NOTHING`, bookID, authorID)
	return err
}

// SetThemes replaces the book's theme tags.
func SetThemes(ctx context.Context, q dbx.DBTX, bookID string, themes []string) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM book_themes WHERE book_id = $1`, bookID); err != nil {
		return fmt.Errorf("failed to clear book themes: %w", err)
	}
	for _, name := range shared.DedupFold(themes) {
		if _, err := q.ExecContext(ctx, `
INSERT INTO book_themes (book_id, theme_name)
VALUES ($1, $2)
ON CONFLICT (book_id, theme_name) DO NOTHING`, bookID, name); err != nil {
			return fmt.Errorf("failed to tag book with theme '%s': %w", name, err)
		}
	}
	return nil
}

// SetCovers deletes every cover of the book and inserts files in the given order.
func SetCovers(ctx context.Context, q dbx.DBTX, bookID string, files []string) ([]models.BookCover, error) {
	if _, err := q.ExecContext(ctx, `DELETE FROM book_covers WHERE book_id = $1`, bookID); err != nil {
		return nil, fmt.Errorf("failed to clear book covers: %w", err)
	}
	out := make([]models.BookCover, 0, len(files))
	for _, f := range files {
		if strings.TrimSpace(f) == "" {
			continue
		}
		c, err := AddCover(ctx, q, bookID, f)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func AddCover(ctx context.Context, q dbx.DBTX, bookID, file string) (models.BookCover, error) {
	c := models.BookCover{BookID: bookID, FileName: strings.TrimSpace(file)}
	if err := q.QueryRowContext(ctx, `
INSERT INTO book_covers (book_id, file_name)
VALUES ($1, $2)
RETURNING id`, bookID, c.FileName).Scan(&c.ID); err != nil {
		return models.BookCover{}, fmt.Errorf("failed to add cover '%s': %w", c.FileName, dbx.MapPGError(err))
	}
	return c, nil
}

func applyRelations(ctx context.Context, q dbx.DBTX, bookID string, rel Relations) error {
	if rel.Authors != nil {
		if _, err := SetAuthors(ctx, q, bookID, *rel.Authors); err != nil {
			return err
		}
	}
	if rel.Themes != nil {
		if err := SetThemes(ctx, q, bookID, *rel.Themes); err != nil {
			return err
		}
	}
	if rel.Covers != nil {
		if _, err := SetCovers(ctx, q, bookID, *rel.Covers); err != nil {
			return err
		}
	}
	return nil
}

// The Store methods below each run one relationship change in its own transaction.

func (s *Store) SetAuthors(ctx context.Context, bookID string, in []AuthorInput) ([]models.AuthorRef, error) {
	var refs []models.AuthorRef
	err := dbx.WithinTx(ctx, s.db, func(tx *sql.Tx) error {
		var err error
		refs, err = SetAuthors(ctx, tx, bookID, in)
		return err
	})
	return refs, err
}

func (s *Store) SetThemes(ctx context.Context, bookID string, themes []string) error {
	return dbx.WithinTx(ctx, s.db, func(tx *sql.Tx) error {
		return SetThemes(ctx, tx, bookID, themes)
	})
}

func (s *Store) SetCovers(ctx context.Context, bookID string, files []string) ([]models.BookCover, error) {
	var covers []models.BookCover
	err := dbx.WithinTx(ctx, s.db, func(tx *sql.Tx) error {
		var err error
		covers, err = SetCovers(ctx, tx, bookID, files)
		return err
	})
	return covers, err
}

func (s *Store) AddCover(ctx context.Context, bookID, file string) (models.BookCover, error) {
	return AddCover(ctx, s.db, bookID, file)
}

func (s *Store) DeleteCover(ctx context.Context, bookID string, coverID int64) (models.BookCover, error) {
	c := models.BookCover{ID: coverID, BookID: bookID}
	err := s.db.QueryRowContext(ctx, `
DELETE FROM book_covers
WHERE id = $1 AND book_id = $2
RETURNING file_name`, coverID, bookID).Scan(&c.FileName)
	if err != nil {
		return models.BookCover{}, dbx.MapPGError(err)
	}
	return c, nil
}
