package books

import (
	"context"
	"database/sql"
	"strings"
)

// Themes returns every distinct theme tag for autocomplete.
func (s *Store) Themes(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT DISTINCT theme_name FROM book_themes
ORDER BY theme_name`)
	if err != nil {
		return nil, err
	}
	return scanNames(rows)
}

// ThemesByPrefix returns up to limit tags starting with prefix, case-insensitively.
func (s *Store) ThemesByPrefix(ctx context.Context, prefix string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT DISTINCT theme_name FROM book_themes
WHERE theme_name ILIKE $1
ORDER BY theme_name
LIMIT $2`, strings.TrimSpace(prefix)+"%", limit)
	if err != nil {
		return nil, err
	}
	return scanNames(rows)
}

func scanNames(rows *sql.Rows) ([]string, error) {
	defer rows.Close()
	out := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}
