package models

import (
	"errors"
	"fmt"
	"time"
)

type IssueStatus string

const (
	StatusIssued   IssueStatus = "issued"
	StatusReturned IssueStatus = "returned"
)

// Issue is one loan. BookTitle and CustomerName are snapshots taken at issue time
// and are not updated when the book or customer is renamed.
type Issue struct {
	ID           int64       `json:"id"`
	BookID       string      `json:"book_id"`
	BookTitle    string      `json:"book_title"`
	CustomerID   string      `json:"customer_id"`
	CustomerName string      `json:"customer_name"`
	DateIssued   time.Time   `json:"date_issued"`
	DateReturn   *time.Time  `json:"date_return,omitempty"`
	Status       IssueStatus `json:"status"`
	Extended     bool        `json:"extended"`
}

func (i Issue) IsReturned() bool { return i.Status == StatusReturned }

func (i Issue) ToRecord() Record {
	issued := ""
	if !i.DateIssued.IsZero() {
		issued = FormatDate(i.DateIssued)
	}
	return Record{
		"id":            i.ID,
		"book_id":       i.BookID,
		"book_title":    i.BookTitle,
		"customer_id":   i.CustomerID,
		"customer_name": i.CustomerName,
		"date_issued":   issued,
		"date_return":   optDateValue(i.DateReturn),
		"status":        string(i.Status),
		"extended":      i.Extended,
	}
}

func IssueFromRecord(r Record) (Issue, error) {
	i := Issue{
		BookID:       r.String("book_id"),
		BookTitle:    r.String("book_title"),
		CustomerID:   r.String("customer_id"),
		CustomerName: r.String("customer_name"),
		Status:       IssueStatus(r.String("status")),
		Extended:     r.Bool("extended"),
	}
	if i.BookID == "" || i.CustomerID == "" {
		return Issue{}, errors.New("issue: book_id and customer_id are required")
	}
	if i.Status == "" {
		i.Status = StatusIssued
	}
	if i.Status != StatusIssued && i.Status != StatusReturned {
		return Issue{}, fmt.Errorf("issue: unknown status %q", i.Status)
	}
	var err error
	if i.ID, err = r.Int64("id"); err != nil {
		return Issue{}, fmt.Errorf("issue: %w", err)
	}
	issued, err := r.OptDate("date_issued")
	if err != nil {
		return Issue{}, fmt.Errorf("issue: %w", err)
	}
	if issued != nil {
		i.DateIssued = *issued
	}
	if i.DateReturn, err = r.OptDate("date_return"); err != nil {
		return Issue{}, fmt.Errorf("issue: %w", err)
	}
	if (i.DateReturn != nil) != (i.Status == StatusReturned) {
		return Issue{}, errors.New("issue: date_return must be set exactly when status is returned")
	}
	return i, nil
}
