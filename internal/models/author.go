package models

import (
	"errors"
	"fmt"
	"time"
)

type Author struct {
	ID           int64      `json:"id"`
	FullName     string     `json:"full_name"`
	BirthDate    *time.Time `json:"birth_date,omitempty"`
	DeathDate    *time.Time `json:"death_date,omitempty"`
	Biography    *string    `json:"biography,omitempty"`
	WikipediaURL *string    `json:"wikipedia_url,omitempty"`
}

func (a Author) Ref() AuthorRef {
	ref := AuthorRef{ID: a.ID, FullName: a.FullName}
	if a.WikipediaURL != nil {
		ref.WikipediaURL = *a.WikipediaURL
	}
	return ref
}

func (a Author) ToRecord() Record {
	return Record{
		"id":            a.ID,
		"full_name":     a.FullName,
		"birth_date":    optDateValue(a.BirthDate),
		"death_date":    optDateValue(a.DeathDate),
		"biography":     optStringValue(a.Biography),
		"wikipedia_url": optStringValue(a.WikipediaURL),
	}
}

func AuthorFromRecord(r Record) (Author, error) {
	a := Author{
		FullName:     r.String("full_name"),
		Biography:    r.OptString("biography"),
		WikipediaURL: r.OptString("wikipedia_url"),
	}
	if a.FullName == "" {
		return Author{}, errors.New("author: full_name is required")
	}
	var err error
	if a.ID, err = r.Int64("id"); err != nil {
		return Author{}, fmt.Errorf("author: %w", err)
	}
	if a.BirthDate, err = r.OptDate("birth_date"); err != nil {
		return Author{}, fmt.Errorf("author: %w", err)
	}
	if a.DeathDate, err = r.OptDate("death_date"); err != nil {
		return Author{}, fmt.Errorf("author: %w", err)
	}
	return a, nil
}
