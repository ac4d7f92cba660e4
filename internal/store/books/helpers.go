package books

import (
	"database/sql"
	"fmt"

	"github.com/5w1tchy/library-api/internal/models"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func (r bookRow) toModel() (models.Book, error) {
	b := models.Book{
		ID:              r.ID,
		Title:           r.Title,
		Subtitle:        nullString(r.Subtitle),
		Description:     nullString(r.Description),
		ISBN:            nullString(r.ISBN),
		TotalCopies:     r.TotalCopies,
		AvailableCopies: r.AvailableCopies,
		Author:          r.Author.String,
		Category:        r.Category.String,
		CoverImage:      nullString(r.CoverImage),
		Authors:         []models.AuthorRef{},
		Themes:          []string{},
		Covers:          []models.BookCover{},
	}
	if r.PublicationYear.Valid {
		y := int(r.PublicationYear.Int64)
		b.PublicationYear = &y
	}
	if err := decodeList(r.AuthorsJSON, &b.Authors); err != nil {
		return models.Book{}, fmt.Errorf("book %s authors: %w", r.ID, err)
	}
	if err := decodeList(r.ThemesJSON, &b.Themes); err != nil {
		return models.Book{}, fmt.Errorf("book %s themes: %w", r.ID, err)
	}
	if err := decodeList(r.CoversJSON, &b.Covers); err != nil {
		return models.Book{}, fmt.Errorf("book %s covers: %w", r.ID, err)
	}
	return b, nil
}

// decodeList leaves dst as an empty slice for "", "null" and "[]".
func decodeList[T any](raw string, dst *[]T) error {
	if raw == "" || raw == "null" || raw == "[]" {
		return nil
	}
	var out []T
	if err := json.UnmarshalFromString(raw, &out); err != nil {
		return err
	}
	if out != nil {
		*dst = out
	}
	return nil
}

func nullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
