package books

import "database/sql"

// Filter drives the single catalog query. Zero value = whole catalog, title-ordered.
type Filter struct {
	Term          string // id, title or legacy author (substring, case-insensitive)
	Title         string
	Author        string // legacy author field OR any linked author
	Theme         string // legacy category field OR any theme tag
	AvailableOnly bool
	IDs           []string
	Limit         int // 0 = no paging
	Offset        int
}

// AuthorInput names an author to link; WikipediaURL is optional.
type AuthorInput struct {
	Name         string
	WikipediaURL string
}

// Relations are replaced only when the slice pointer is non-nil.
type Relations struct {
	Authors *[]AuthorInput
	Themes  *[]string
	Covers  *[]string
}

type bookRow struct {
	ID              string         `db:"id"`
	Title           string         `db:"title"`
	Subtitle        sql.NullString `db:"subtitle"`
	Description     sql.NullString `db:"description"`
	PublicationYear sql.NullInt64  `db:"publication_year"`
	ISBN            sql.NullString `db:"isbn"`
	TotalCopies     int            `db:"total_copies"`
	AvailableCopies int            `db:"available_copies"`
	Author          sql.NullString `db:"author"`
	Category        sql.NullString `db:"category"`
	CoverImage      sql.NullString `db:"cover_image"`
	AuthorsJSON     string         `db:"authors_json"`
	ThemesJSON      string         `db:"themes_json"`
	CoversJSON      string         `db:"covers_json"`
}
