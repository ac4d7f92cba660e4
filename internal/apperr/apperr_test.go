package apperr_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/5w1tchy/library-api/internal/apperr"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromPG(t *testing.T) {
	cases := []struct {
		code, constraint string
		kind             apperr.Kind
		field            string
		retry            bool
	}{
		{"23505", "books_pkey", apperr.KindConflict, "id", false},
		{"23503", "issues_customer_id_fkey", apperr.KindConflict, "customer_id", false},
		{"23514", "books_copies_check", apperr.KindValidation, "available_copies", false},
		{"22P02", "", apperr.KindValidation, "", false},
		{"40001", "", apperr.KindConflict, "", true},
		{"XX000", "", apperr.KindStorage, "", false},
	}
	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			err := fmt.Errorf("insert: %w", &pgconn.PgError{Code: tc.code, ConstraintName: tc.constraint})
			p, ok := apperr.FromPG(err)
			require.True(t, ok)
			assert.Equal(t, tc.kind, p.Kind)
			assert.Equal(t, tc.field, p.Field)
			assert.Equal(t, tc.retry, p.Retryable)
		})
	}

	_, ok := apperr.FromPG(errors.New("plain"))
	assert.False(t, ok)
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, apperr.KindNone, apperr.KindOf(nil))
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(fmt.Errorf("book B1: %w", apperr.ErrNotFound)))
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(&pgconn.PgError{Code: "23505"}))
	assert.Equal(t, apperr.KindStorage, apperr.KindOf(errors.New("connection reset")))
	assert.True(t, apperr.IsUniqueViolation(&pgconn.PgError{Code: "23505"}))
}

func TestOutcome(t *testing.T) {
	ok := apperr.Success("Book issued successfully")

	res, err := apperr.Outcome(nil, ok)
	require.NoError(t, err)
	assert.True(t, res.OK)

	res, err = apperr.Outcome(fmt.Errorf("tx: %w", apperr.Abort(apperr.NotFound("Book not found"))), ok)
	require.NoError(t, err)
	assert.False(t, res.OK)
	assert.Equal(t, apperr.KindNotFound, res.Kind)
	assert.Equal(t, "Book not found", res.Message)

	_, err = apperr.Outcome(errors.New("commit failed"), ok)
	assert.Error(t, err)
}
