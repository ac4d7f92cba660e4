package authors_test

import (
	"regexp"
	"testing"
	"time"

	"github.com/5w1tchy/library-api/internal/apperr"
	"github.com/5w1tchy/library-api/internal/store/authors"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var cols = []string{"id", "full_name", "birth_date", "death_date", "biography", "wikipedia_url"}

func TestByBook(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	born := time.Date(1828, 9, 9, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(`JOIN book_authors ba ON ba.author_id = a.id`)).
		WithArgs("B0001").
		WillReturnRows(sqlmock.NewRows(cols).AddRow(7, "Lev Tolstoy", born, nil, nil, "https://w/tolstoy"))

	got, err := authors.New(db).ByBook(t.Context(), "B0001")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.NotNil(t, got[0].BirthDate)
	assert.Equal(t, born, *got[0].BirthDate)
	assert.Nil(t, got[0].DeathDate)
	assert.Equal(t, "Lev Tolstoy", got[0].Ref().FullName)
	assert.Equal(t, "https://w/tolstoy", got[0].Ref().WikipediaURL)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGet_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE a.id = $1`)).
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows(cols))

	_, err = authors.New(db).Get(t.Context(), 99)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestDelete_Missing(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM authors WHERE id = $1`)).
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = authors.New(db).Delete(t.Context(), 3)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
