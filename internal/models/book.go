package models

import (
	"errors"
	"fmt"
)

// AuthorRef is the short author form embedded in a book.
type AuthorRef struct {
	ID           int64  `json:"id"`
	FullName     string `json:"full_name"`
	WikipediaURL string `json:"wikipedia_url,omitempty"`
}

type Book struct {
	ID              string      `json:"id"`
	Title           string      `json:"title"`
	Subtitle        *string     `json:"subtitle,omitempty"`
	Description     *string     `json:"description,omitempty"`
	PublicationYear *int        `json:"publication_year,omitempty"`
	ISBN            *string     `json:"isbn,omitempty"`
	TotalCopies     int         `json:"total_copies"`
	AvailableCopies int         `json:"available_copies"`
	Author          string      `json:"author"`   // legacy flat field
	Category        string      `json:"category"` // legacy flat field
	CoverImage      *string     `json:"cover_image,omitempty"`
	Authors         []AuthorRef `json:"authors"`
	Themes          []string    `json:"themes"`
	Covers          []BookCover `json:"covers"`
}

func (b Book) IsAvailable() bool { return b.AvailableCopies > 0 }

func (b Book) ToRecord() Record {
	authors := make([]Record, 0, len(b.Authors))
	for _, a := range b.Authors {
		authors = append(authors, Record{"id": a.ID, "full_name": a.FullName, "wikipedia_url": a.WikipediaURL})
	}
	covers := make([]Record, 0, len(b.Covers))
	for _, c := range b.Covers {
		covers = append(covers, c.ToRecord())
	}
	themes := append(make([]string, 0, len(b.Themes)), b.Themes...)
	return Record{
		"id":               b.ID,
		"title":            b.Title,
		"subtitle":         optStringValue(b.Subtitle),
		"description":      optStringValue(b.Description),
		"publication_year": optIntValue(b.PublicationYear),
		"isbn":             optStringValue(b.ISBN),
		"total_copies":     b.TotalCopies,
		"available_copies": b.AvailableCopies,
		"author":           b.Author,
		"category":         b.Category,
		"cover_image":      optStringValue(b.CoverImage),
		"authors":          authors,
		"themes":           themes,
		"covers":           covers,
	}
}

func BookFromRecord(r Record) (Book, error) {
	b := Book{
		ID:          r.String("id"),
		Title:       r.String("title"),
		Subtitle:    r.OptString("subtitle"),
		Description: r.OptString("description"),
		ISBN:        r.OptString("isbn"),
		Author:      r.String("author"),
		Category:    r.String("category"),
		CoverImage:  r.OptString("cover_image"),
	}
	if b.Title == "" {
		return Book{}, errors.New("book: title is required")
	}
	var err error
	if b.PublicationYear, err = r.OptInt("publication_year"); err != nil {
		return Book{}, fmt.Errorf("book: %w", err)
	}
	if b.TotalCopies, err = r.Int("total_copies"); err != nil {
		return Book{}, fmt.Errorf("book: %w", err)
	}
	if b.AvailableCopies, err = r.Int("available_copies"); err != nil {
		return Book{}, fmt.Errorf("book: %w", err)
	}
	if b.AvailableCopies < 0 || b.AvailableCopies > b.TotalCopies {
		return Book{}, fmt.Errorf("book: available_copies %d outside 0..%d", b.AvailableCopies, b.TotalCopies)
	}

	authors, err := r.records("authors")
	if err != nil {
		return Book{}, fmt.Errorf("book: %w", err)
	}
	b.Authors = make([]AuthorRef, 0, len(authors))
	for _, ar := range authors {
		id, err := ar.Int64("id")
		if err != nil {
			return Book{}, fmt.Errorf("book: authors: %w", err)
		}
		b.Authors = append(b.Authors, AuthorRef{ID: id, FullName: ar.String("full_name"), WikipediaURL: ar.String("wikipedia_url")})
	}

	if b.Themes, err = r.strings("themes"); err != nil {
		return Book{}, fmt.Errorf("book: %w", err)
	}

	covers, err := r.records("covers")
	if err != nil {
		return Book{}, fmt.Errorf("book: %w", err)
	}
	b.Covers = make([]BookCover, 0, len(covers))
	for _, cr := range covers {
		c, err := BookCoverFromRecord(cr)
		if err != nil {
			return Book{}, fmt.Errorf("book: %w", err)
		}
		b.Covers = append(b.Covers, c)
	}
	return b, nil
}
