package books

import (
	"context"
	"fmt"
	"strings"

	"github.com/5w1tchy/library-api/internal/models"
	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/doug-martin/goqu/v9/exp"
)

var dialect = goqu.Dialect("postgres")

const (
	authorsAgg = `COALESCE((SELECT json_agg(json_build_object('id', a.id, 'full_name', a.full_name, 'wikipedia_url', COALESCE(a.wikipedia_url, '')) ORDER BY a.full_name)
  FROM book_authors ba JOIN authors a ON a.id = ba.author_id WHERE ba.book_id = b.id), '[]')::text`
	themesAgg = `COALESCE((SELECT json_agg(bt.theme_name ORDER BY bt.theme_name)
  FROM book_themes bt WHERE bt.book_id = b.id), '[]')::text`
	coversAgg = `COALESCE((SELECT json_agg(json_build_object('id', bc.id, 'book_id', bc.book_id, 'file_name', bc.file_name) ORDER BY bc.id)
  FROM book_covers bc WHERE bc.book_id = b.id), '[]')::text`
)

func enrichedColumns() []any {
	return []any{
		goqu.I("b.id"), goqu.I("b.title"), goqu.I("b.subtitle"), goqu.I("b.description"),
		goqu.I("b.publication_year"), goqu.I("b.isbn"), goqu.I("b.total_copies"), goqu.I("b.available_copies"),
		goqu.I("b.author"), goqu.I("b.category"), goqu.I("b.cover_image"),
		goqu.L(authorsAgg).As("authors_json"),
		goqu.L(themesAgg).As("themes_json"),
		goqu.L(coversAgg).As("covers_json"),
	}
}

func contains(s string) string { return "%" + strings.TrimSpace(s) + "%" }

func catalogWhere(f Filter) []exp.Expression {
	var where []exp.Expression
	if strings.TrimSpace(f.Term) != "" {
		p := contains(f.Term)
		where = append(where, goqu.Or(
			goqu.I("b.id").ILike(p),
			goqu.I("b.title").ILike(p),
			goqu.I("b.author").ILike(p),
		))
	}
	if strings.TrimSpace(f.Title) != "" {
		where = append(where, goqu.I("b.title").ILike(contains(f.Title)))
	}
	if strings.TrimSpace(f.Author) != "" {
		p := contains(f.Author)
		linked := dialect.From(goqu.T("book_authors").As("ba")).
			Join(goqu.T("authors").As("a"), goqu.On(goqu.I("a.id").Eq(goqu.I("ba.author_id")))).
			Select(goqu.I("ba.book_id")).
			Where(goqu.I("a.full_name").ILike(p))
		where = append(where, goqu.Or(goqu.I("b.author").ILike(p), goqu.I("b.id").In(linked)))
	}
	if strings.TrimSpace(f.Theme) != "" {
		p := contains(f.Theme)
		tagged := dialect.From(goqu.T("book_themes").As("bt")).
			Select(goqu.I("bt.book_id")).
			Where(goqu.I("bt.theme_name").ILike(p))
		where = append(where, goqu.Or(goqu.I("b.category").ILike(p), goqu.I("b.id").In(tagged)))
	}
	if f.AvailableOnly {
		where = append(where, goqu.I("b.available_copies").Gt(0))
	}
	if len(f.IDs) > 0 {
		where = append(where, goqu.I("b.id").In(f.IDs))
	}
	return where
}

// buildCatalogQuery renders the enriched list query and, when paging, the matching count query.
func buildCatalogQuery(f Filter) (listSQL string, listArgs []any, countSQL string, countArgs []any, err error) {
	base := dialect.From(goqu.T("books").As("b")).Where(catalogWhere(f)...).Prepared(true)

	list := base.Select(enrichedColumns()...).Order(goqu.I("b.title").Asc(), goqu.I("b.id").Asc())
	if f.Limit > 0 {
		list = list.Limit(uint(f.Limit)).Offset(uint(max(f.Offset, 0)))
		if countSQL, countArgs, err = base.Select(goqu.COUNT(goqu.Star())).ToSQL(); err != nil {
			return "", nil, "", nil, fmt.Errorf("build count: %w", err)
		}
	}
	if listSQL, listArgs, err = list.ToSQL(); err != nil {
		return "", nil, "", nil, fmt.Errorf("build list: %w", err)
	}
	return listSQL, listArgs, countSQL, countArgs, nil
}

// Query returns enriched books matching f plus the total match count.
func (s *Store) Query(ctx context.Context, f Filter) ([]models.Book, int, error) {
	listSQL, listArgs, countSQL, countArgs, err := buildCatalogQuery(f)
	if err != nil {
		return nil, 0, err
	}

	var rows []bookRow
	if err := s.x.SelectContext(ctx, &rows, listSQL, listArgs...); err != nil {
		return nil, 0, fmt.Errorf("catalog query: %w", err)
	}
	out := make([]models.Book, 0, len(rows))
	for _, r := range rows {
		b, err := r.toModel()
		if err != nil {
			return nil, 0, err
		}
		out = append(out, b)
	}

	total := len(out)
	if countSQL != "" {
		if err := s.x.GetContext(ctx, &total, countSQL, countArgs...); err != nil {
			return nil, 0, fmt.Errorf("catalog count: %w", err)
		}
	}
	return out, total, nil
}
