package apperr

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// Map well-known constraint names to fields (extend as you add constraints)
var constraintField = map[string]string{
	"books_pkey":                                 "id",
	"customers_pkey":                             "id",
	"books_copies_check":                         "available_copies",
	"book_themes_book_id_theme_name_key":         "theme_name",
	"book_authors_book_id_author_id_key":         "author_id",
	"exhibition_books_exhibition_id_book_id_key": "book_id",
	"issues_book_id_fkey":                        "book_id",
	"issues_customer_id_fkey":                    "customer_id",
}

// PGError is the normalized view of a postgres failure.
type PGError struct {
	Kind      Kind
	Field     string
	Message   string
	Retryable bool
}

func fieldFromDetail(detail string) string {
	for _, k := range []string{"book_id", "customer_id", "author_id", "exhibition_id", "theme_name", "id"} {
		if strings.Contains(detail, k) {
			return k
		}
	}
	return ""
}

// FromPG maps a pgconn.PgError to a PGError. Returns (PGError, true) if mapped.
func FromPG(err error) (PGError, bool) {
	var pg *pgconn.PgError
	if !errors.As(err, &pg) {
		return PGError{}, false
	}

	p := PGError{Kind: KindStorage, Message: strings.TrimSpace(pg.Message)}
	p.Field = constraintField[pg.ConstraintName]
	if p.Field == "" && pg.Detail != "" {
		p.Field = fieldFromDetail(pg.Detail)
	}

	switch pg.Code {
	case "23505": // unique_violation
		p.Kind = KindConflict
		p.Message = "value already exists"
	case "23503": // foreign_key_violation
		p.Kind = KindConflict
		p.Message = "referenced record does not exist or is still in use"
	case "23502": // not_null_violation
		p.Kind = KindValidation
		p.Message = "required field is missing"
		if p.Field == "" {
			p.Field = pg.ColumnName
		}
	case "23514": // check_violation
		p.Kind = KindValidation
		p.Message = "constraint failed"
	case "22P02", "22007", "22008": // invalid text / datetime format
		p.Kind = KindValidation
		p.Message = "invalid format"
	case "22001": // string_data_right_truncation
		p.Kind = KindValidation
		p.Message = "value is too long"
	case "40001": // serialization_failure
		p.Kind = KindConflict
		p.Message = "transaction conflict, please retry"
		p.Retryable = true
	case "40P01": // deadlock_detected
		p.Kind = KindConflict
		p.Message = "deadlock detected, please retry"
		p.Retryable = true
	}
	return p, true
}

// IsUniqueViolation reports whether err is a postgres unique_violation.
func IsUniqueViolation(err error) bool {
	var pg *pgconn.PgError
	return errors.As(err, &pg) && pg.Code == "23505"
}

// KindOf classifies any error coming out of a store.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrInvalid):
		return KindValidation
	case errors.Is(err, ErrConflict):
		return KindConflict
	}
	if p, ok := FromPG(err); ok {
		return p.Kind
	}
	return KindStorage
}
