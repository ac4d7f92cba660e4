package shared_test

import (
	"database/sql"
	"regexp"
	"testing"

	"github.com/5w1tchy/library-api/internal/store/dbx"
	"github.com/5w1tchy/library-api/internal/store/shared"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextID(t *testing.T) {
	cases := []struct {
		name     string
		prefix   string
		width    int
		existing []string
		want     string
	}{
		{"gap is not filled", "B", 4, []string{"B0001", "B0003"}, "B0004"},
		{"empty table", "C", 4, nil, "C0001"},
		{"foreign ids ignored", "B", 4, []string{"B0002", "Bxx", "X0009", "B"}, "B0003"},
		{"unpadded ids", "B", 2, []string{"B9", "B10"}, "B11"},
		{"grows past width", "B", 4, []string{"B9999"}, "B10000"},
		{"default width", "C", 0, []string{"C0007"}, "C0008"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, shared.NextID(tc.prefix, tc.width, tc.existing))
		})
	}
}

func TestGenerateUniqueID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`SELECT pg_advisory_xact_lock(hashtext($1))`)).
		WithArgs("books:B").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM books WHERE id ~ $1`)).
		WithArgs(`^B[0-9]+$`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("B0001").AddRow("B0003"))
	mock.ExpectCommit()

	var got string
	err = dbx.WithinTx(t.Context(), db, func(tx *sql.Tx) error {
		var err error
		got, err = shared.GenerateUniqueID(t.Context(), tx, "books", "B", 4)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, "B0004", got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGenerateUniqueID_RejectsUnknownTable(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectRollback()
	err = dbx.WithinTx(t.Context(), db, func(tx *sql.Tx) error {
		_, err := shared.GenerateUniqueID(t.Context(), tx, "issues; DROP TABLE books", "B", 4)
		return err
	})
	assert.Error(t, err)
}

func TestDedupFold(t *testing.T) {
	got := shared.DedupFold([]string{"Lev Tolstoy", "  lev   tolstoy ", "", "LEV TOLSTOY", "Anna Akhmatova"})
	assert.Equal(t, []string{"Lev Tolstoy", "Anna Akhmatova"}, got)
	assert.Equal(t, shared.FoldName("Émile Zola"), shared.FoldName("émile  ZOLA"))
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "cafe-noir-jpg", shared.Slugify("Café  Noir.jpg"))
	assert.Equal(t, "n-a", shared.Slugify("  "))
}
