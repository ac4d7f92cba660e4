package catalog_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/5w1tchy/library-api/internal/apperr"
	"github.com/5w1tchy/library-api/internal/models"
	"github.com/5w1tchy/library-api/internal/service/catalog"
	"github.com/5w1tchy/library-api/internal/store/books"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	lastFilter books.Filter
	total      int
	stored     map[string]models.Book
	created    models.Book
	updated    models.Book
	createErr  error
	updateErr  error
	deleteErr  error
}

func (f *fakeStore) Query(_ context.Context, flt books.Filter) ([]models.Book, int, error) {
	f.lastFilter = flt
	return []models.Book{{ID: "B0001", Title: "War and Peace"}}, f.total, nil
}
func (f *fakeStore) Get(_ context.Context, id string) (models.Book, error) {
	if b, ok := f.stored[id]; ok {
		return b, nil
	}
	return models.Book{}, fmt.Errorf("book %s: %w", id, apperr.ErrNotFound)
}
func (f *fakeStore) Create(_ context.Context, b models.Book, _ books.Relations) (string, error) {
	f.created = b
	if f.createErr != nil {
		return "", f.createErr
	}
	return "B0007", nil
}
func (f *fakeStore) Update(_ context.Context, b models.Book, _ books.Relations) error {
	f.updated = b
	return f.updateErr
}
func (f *fakeStore) Delete(context.Context, string) error     { return f.deleteErr }
func (f *fakeStore) Themes(context.Context) ([]string, error) { return []string{"war"}, nil }
func (f *fakeStore) ThemesByPrefix(context.Context, string, int) ([]string, error) {
	return []string{"war"}, nil
}

func intp(n int) *int { return &n }

type countingCache struct{ n int }

func (c *countingCache) Invalidate(context.Context) { c.n++ }

// onLoanStore holds B0001 with every one of its 3 copies lent out.
func onLoanStore() *fakeStore {
	return &fakeStore{stored: map[string]models.Book{
		"B0001": {ID: "B0001", Title: "War and Peace", TotalCopies: 3, AvailableCopies: 0},
	}}
}

func TestPaginate_ClampsAndComputesPages(t *testing.T) {
	store := &fakeStore{total: 41}
	svc := catalog.New(store, nil)

	page, err := svc.Paginate(t.Context(), books.Filter{}, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, catalog.DefaultPerPage, page.PerPage)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, 20, store.lastFilter.Limit)
	assert.Equal(t, 0, store.lastFilter.Offset)

	page, err = svc.Paginate(t.Context(), books.Filter{AvailableOnly: true}, 2, 1000)
	require.NoError(t, err)
	assert.Equal(t, catalog.MaxPerPage, page.PerPage)
	assert.Equal(t, 100, store.lastFilter.Offset)
	assert.True(t, store.lastFilter.AvailableOnly)
	assert.Equal(t, 1, page.TotalPages)
}

func TestAdvancedSearch_PassesCriteria(t *testing.T) {
	store := &fakeStore{}
	_, err := catalog.New(store, nil).AdvancedSearch(t.Context(), "peace", "tolstoy", "")
	require.NoError(t, err)
	assert.Equal(t, books.Filter{Title: "peace", Author: "tolstoy"}, store.lastFilter)
}

func TestCreate(t *testing.T) {
	t.Run("title required", func(t *testing.T) {
		res, _, err := catalog.New(&fakeStore{}, nil).Create(t.Context(), catalog.BookInput{Title: "  "})
		require.NoError(t, err)
		assert.Equal(t, apperr.Invalid("Book title is required"), res)
	})

	t.Run("copy defaults", func(t *testing.T) {
		store := &fakeStore{}
		res, id, err := catalog.New(store, nil).Create(t.Context(), catalog.BookInput{Title: "Dune", TotalCopies: intp(3)})
		require.NoError(t, err)
		assert.True(t, res.OK)
		assert.Equal(t, "B0007", id)
		assert.Equal(t, 3, store.created.AvailableCopies)
	})

	t.Run("bad bounds", func(t *testing.T) {
		res, _, err := catalog.New(&fakeStore{}, nil).Create(t.Context(),
			catalog.BookInput{Title: "Dune", TotalCopies: intp(1), AvailableCopies: intp(2)})
		require.NoError(t, err)
		assert.Equal(t, apperr.KindValidation, res.Kind)
	})

	t.Run("duplicate id", func(t *testing.T) {
		store := &fakeStore{createErr: fmt.Errorf("insert book B0001: %w", apperr.ErrConflict)}
		res, _, err := catalog.New(store, nil).Create(t.Context(), catalog.BookInput{ID: "B0001", Title: "Dune"})
		require.NoError(t, err)
		assert.Equal(t, "Book with this ID already exists", res.Message)
	})
}

func TestUpdateDelete_Messages(t *testing.T) {
	svc := catalog.New(&fakeStore{updateErr: apperr.ErrNotFound, deleteErr: apperr.ErrActiveLoans}, nil)

	res, err := svc.Update(t.Context(), catalog.BookInput{Title: "Dune"})
	require.NoError(t, err)
	assert.Equal(t, "Book ID is required", res.Message)

	res, err = svc.Update(t.Context(), catalog.BookInput{ID: "B0404", Title: "Dune"})
	require.NoError(t, err)
	assert.Equal(t, apperr.NotFound("Book not found"), res)

	// deleted between the read and the write
	store := onLoanStore()
	store.updateErr = apperr.ErrNotFound
	res, err = catalog.New(store, nil).Update(t.Context(), catalog.BookInput{ID: "B0001", Title: "Dune"})
	require.NoError(t, err)
	assert.Equal(t, apperr.NotFound("Book not found"), res)

	res, err = svc.Delete(t.Context(), "B0001")
	require.NoError(t, err)
	assert.Equal(t, apperr.Conflict("Book has active loans"), res)
}

func TestGet_NotFound(t *testing.T) {
	_, err := catalog.New(&fakeStore{}, nil).Get(t.Context(), "B0404")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestUpdate_RenameKeepsCopyCounts(t *testing.T) {
	store := onLoanStore()
	cache := &countingCache{}
	svc := catalog.New(store, nil, catalog.WithInvalidator(cache))

	res, err := svc.Update(t.Context(), catalog.BookInput{ID: "B0001", Title: "War & Peace"})
	require.NoError(t, err)
	require.True(t, res.OK, res.Message)
	assert.Equal(t, "War & Peace", store.updated.Title)
	assert.Equal(t, 3, store.updated.TotalCopies)
	assert.Equal(t, 0, store.updated.AvailableCopies)
	assert.Equal(t, 1, cache.n)
}

func TestUpdate_CopiesFollowLoans(t *testing.T) {
	cases := []struct {
		name             string
		total, available *int
		wantTotal        int
		wantAvailable    int
		wantMsg          string
	}{
		{name: "more copies", total: intp(5), wantTotal: 5, wantAvailable: 2},
		{name: "explicit consistent", total: intp(4), available: intp(1), wantTotal: 4, wantAvailable: 1},
		{name: "below loans", total: intp(2), wantMsg: "Total copies cannot be less than copies on loan (3)"},
		{name: "available too high", available: intp(3),
			wantMsg: "Available copies must equal total copies minus copies on loan (0)"},
		{name: "available with new total", total: intp(5), available: intp(5),
			wantMsg: "Available copies must equal total copies minus copies on loan (2)"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := onLoanStore()
			cache := &countingCache{}
			res, err := catalog.New(store, nil, catalog.WithInvalidator(cache)).Update(t.Context(),
				catalog.BookInput{ID: "B0001", Title: "War and Peace", TotalCopies: tc.total, AvailableCopies: tc.available})
			require.NoError(t, err)

			if tc.wantMsg != "" {
				assert.Equal(t, apperr.Invalid(tc.wantMsg), res)
				assert.Empty(t, store.updated.ID)
				assert.Zero(t, cache.n)
				return
			}
			require.True(t, res.OK, res.Message)
			assert.Equal(t, tc.wantTotal, store.updated.TotalCopies)
			assert.Equal(t, tc.wantAvailable, store.updated.AvailableCopies)
		})
	}
}

func TestUpdate_LoanRaceReportedAsInvalid(t *testing.T) {
	store := onLoanStore()
	store.updateErr = fmt.Errorf("book B0001 has 4 copies on loan: %w", apperr.ErrInvalid)

	res, err := catalog.New(store, nil).Update(t.Context(), catalog.BookInput{ID: "B0001", Title: "War and Peace"})
	require.NoError(t, err)
	assert.Equal(t, apperr.Invalid("Total copies cannot be less than copies on loan"), res)
}

func TestWrites_InvalidateStats(t *testing.T) {
	store := onLoanStore()
	cache := &countingCache{}
	svc := catalog.New(store, nil, catalog.WithInvalidator(cache))

	res, _, err := svc.Create(t.Context(), catalog.BookInput{Title: "Dune"})
	require.NoError(t, err)
	require.True(t, res.OK)
	assert.Equal(t, 1, cache.n)

	res, err = svc.Delete(t.Context(), "B0001")
	require.NoError(t, err)
	require.True(t, res.OK)
	assert.Equal(t, 2, cache.n)

	store.deleteErr = apperr.ErrActiveLoans
	_, err = svc.Delete(t.Context(), "B0001")
	require.NoError(t, err)
	assert.Equal(t, 2, cache.n)
}
