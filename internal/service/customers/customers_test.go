package customers_test

import (
	"context"
	"testing"

	"github.com/5w1tchy/library-api/internal/apperr"
	"github.com/5w1tchy/library-api/internal/models"
	"github.com/5w1tchy/library-api/internal/service/customers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	created   models.Customer
	createErr error
	deleteErr error
}

func (f *fakeStore) All(context.Context) ([]models.Customer, error)            { return nil, nil }
func (f *fakeStore) Search(context.Context, string) ([]models.Customer, error) { return nil, nil }
func (f *fakeStore) Get(context.Context, string) (models.Customer, error) {
	return models.Customer{}, apperr.ErrNotFound
}
func (f *fakeStore) Create(_ context.Context, c models.Customer) (string, error) {
	f.created = c
	return "C0003", f.createErr
}
func (f *fakeStore) Update(context.Context, models.Customer) error { return apperr.ErrNotFound }
func (f *fakeStore) Delete(context.Context, string) error          { return f.deleteErr }

func strp(s string) *string { return &s }

func TestCreate(t *testing.T) {
	store := &fakeStore{}
	svc := customers.New(store, nil)

	res, err := svc.Create(t.Context(), models.Customer{Name: "  "})
	require.NoError(t, err)
	assert.Equal(t, apperr.Invalid("Customer name is required"), res)

	res, err = svc.Create(t.Context(), models.Customer{Name: "Anna", Email: strp("not-an-email")})
	require.NoError(t, err)
	assert.Equal(t, apperr.KindValidation, res.Kind)

	res, err = svc.Create(t.Context(), models.Customer{Name: " Anna  Ivanova ", Email: strp(" ")})
	require.NoError(t, err)
	assert.Equal(t, "Customer created successfully with ID: C0003", res.Message)
	assert.Equal(t, "Anna Ivanova", store.created.Name)
	assert.Nil(t, store.created.Email)
}

func TestCreate_DuplicateID(t *testing.T) {
	svc := customers.New(&fakeStore{createErr: apperr.ErrConflict}, nil)
	res, err := svc.Create(t.Context(), models.Customer{ID: "C0001", Name: "Anna"})
	require.NoError(t, err)
	assert.Equal(t, "Customer with this ID already exists", res.Message)
}

func TestUpdateAndDelete(t *testing.T) {
	svc := customers.New(&fakeStore{deleteErr: apperr.ErrActiveLoans}, nil)

	res, err := svc.Update(t.Context(), models.Customer{Name: "Anna"})
	require.NoError(t, err)
	assert.Equal(t, "Customer ID is required", res.Message)

	res, err = svc.Update(t.Context(), models.Customer{ID: "C0404", Name: "Anna"})
	require.NoError(t, err)
	assert.Equal(t, apperr.NotFound("Customer not found"), res)

	res, err = svc.Delete(t.Context(), "C0001")
	require.NoError(t, err)
	assert.Equal(t, apperr.Conflict("Customer has active loans"), res)
}

type countingCache struct{ n int }

func (c *countingCache) Invalidate(context.Context) { c.n++ }

func TestWrites_InvalidateStats(t *testing.T) {
	store := &fakeStore{}
	cache := &countingCache{}
	svc := customers.New(store, nil, customers.WithInvalidator(cache))

	res, err := svc.Create(t.Context(), models.Customer{Name: "Anna"})
	require.NoError(t, err)
	require.True(t, res.OK)
	assert.Equal(t, 1, cache.n)

	res, err = svc.Update(t.Context(), models.Customer{ID: "C0404", Name: "Anna"})
	require.NoError(t, err)
	require.False(t, res.OK)
	assert.Equal(t, 1, cache.n)

	res, err = svc.Delete(t.Context(), "C0003")
	require.NoError(t, err)
	require.True(t, res.OK)
	assert.Equal(t, 2, cache.n)
}
