package models

import "fmt"

type BookCover struct {
	ID       int64  `json:"id"`
	BookID   string `json:"book_id"`
	FileName string `json:"file_name"`
}

func (c BookCover) ToRecord() Record {
	return Record{"id": c.ID, "book_id": c.BookID, "file_name": c.FileName}
}

func BookCoverFromRecord(r Record) (BookCover, error) {
	id, err := r.Int64("id")
	if err != nil {
		return BookCover{}, fmt.Errorf("cover: %w", err)
	}
	c := BookCover{ID: id, BookID: r.String("book_id"), FileName: r.String("file_name")}
	if c.FileName == "" {
		return BookCover{}, fmt.Errorf("cover: file_name is required")
	}
	return c, nil
}
