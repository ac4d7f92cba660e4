package models

import (
	"errors"
	"fmt"
	"time"
)

// MaxExhibitionBooks and MinExhibitionBooks bound an exhibition's book list.
const (
	MaxExhibitionBooks = 12
	MinExhibitionBooks = 1
)

type Exhibition struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	IsActive    bool       `json:"is_active"`
	CreatedAt   time.Time  `json:"created_at"`
}

// IsCurrentlyActive reports whether the exhibition is switched on and today
// falls inside its window. Missing bounds are open.
func (e Exhibition) IsCurrentlyActive(today time.Time) bool {
	if !e.IsActive {
		return false
	}
	day := Date(today)
	if e.StartDate != nil && day.Before(Date(*e.StartDate)) {
		return false
	}
	if e.EndDate != nil && day.After(Date(*e.EndDate)) {
		return false
	}
	return true
}

// BookOrder positions one book inside an exhibition.
type BookOrder struct {
	BookID       string `json:"book_id"`
	DisplayOrder int    `json:"display_order"`
}

func (e Exhibition) ToRecord() Record {
	created := ""
	if !e.CreatedAt.IsZero() {
		created = e.CreatedAt.UTC().Format(time.RFC3339)
	}
	return Record{
		"id":          e.ID,
		"title":       e.Title,
		"description": optStringValue(e.Description),
		"start_date":  optDateValue(e.StartDate),
		"end_date":    optDateValue(e.EndDate),
		"is_active":   e.IsActive,
		"created_at":  created,
	}
}

func ExhibitionFromRecord(r Record) (Exhibition, error) {
	e := Exhibition{
		Title:       r.String("title"),
		Description: r.OptString("description"),
		IsActive:    r.Bool("is_active"),
	}
	if e.Title == "" {
		return Exhibition{}, errors.New("exhibition: title is required")
	}
	var err error
	if e.ID, err = r.Int64("id"); err != nil {
		return Exhibition{}, fmt.Errorf("exhibition: %w", err)
	}
	if e.StartDate, err = r.OptDate("start_date"); err != nil {
		return Exhibition{}, fmt.Errorf("exhibition: %w", err)
	}
	if e.EndDate, err = r.OptDate("end_date"); err != nil {
		return Exhibition{}, fmt.Errorf("exhibition: %w", err)
	}
	if s := r.String("created_at"); s != "" {
		if e.CreatedAt, err = time.Parse(time.RFC3339, s); err != nil {
			return Exhibition{}, fmt.Errorf("exhibition: created_at: %w", err)
		}
	}
	return e, nil
}
