package covers

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/5w1tchy/library-api/internal/apperr"
	"github.com/5w1tchy/library-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memObjects struct {
	data    map[string]string
	failPut bool
}

func (m *memObjects) Put(_ context.Context, key, _ string, body io.Reader) error {
	if m.failPut {
		return errors.New("bucket unavailable")
	}
	b, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.data[key] = string(b)
	return nil
}

func (m *memObjects) Delete(_ context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func (m *memObjects) PresignGet(_ context.Context, key string) (string, error) {
	return "https://cdn.test/" + key + "?sig=get", nil
}

func (m *memObjects) PresignPut(_ context.Context, key, _ string) (string, error) {
	return "https://cdn.test/" + key + "?sig=put", nil
}

type memStore struct {
	books   map[string]bool
	covers  []models.BookCover
	failAdd bool
}

func (m *memStore) Exists(_ context.Context, id string) (bool, error) { return m.books[id], nil }

func (m *memStore) AddCover(_ context.Context, bookID, file string) (models.BookCover, error) {
	if m.failAdd {
		return models.BookCover{}, apperr.ErrConflict
	}
	c := models.BookCover{ID: int64(len(m.covers) + 1), BookID: bookID, FileName: file}
	m.covers = append(m.covers, c)
	return c, nil
}

func (m *memStore) SetCovers(_ context.Context, bookID string, files []string) ([]models.BookCover, error) {
	m.covers = m.covers[:0]
	for _, f := range files {
		m.covers = append(m.covers, models.BookCover{ID: int64(len(m.covers) + 1), BookID: bookID, FileName: f})
	}
	return m.covers, nil
}

func (m *memStore) DeleteCover(_ context.Context, bookID string, id int64) (models.BookCover, error) {
	for i, c := range m.covers {
		if c.ID == id && c.BookID == bookID {
			m.covers = append(m.covers[:i], m.covers[i+1:]...)
			return c, nil
		}
	}
	return models.BookCover{}, apperr.ErrNotFound
}

func newTestService() (*Service, *memStore, *memObjects) {
	st := &memStore{books: map[string]bool{"B0001": true}}
	obj := &memObjects{data: map[string]string{}}
	svc := New(st, obj, nil)
	svc.newID = func() string { return "0f8e" }
	return svc, st, obj
}

func TestKey(t *testing.T) {
	assert.Equal(t, "covers/b0001/0f8e.jpg", Key("B0001", "0f8e", "War and Peace.JPG"))
	assert.Equal(t, "covers/b0001/0f8e", Key("B0001", "0f8e", "noext"))
}

func TestUpload(t *testing.T) {
	svc, st, obj := newTestService()

	res, up, err := svc.Upload(t.Context(), "B0001", "front.png", "image/png", strings.NewReader("png"))
	require.NoError(t, err)
	require.True(t, res.OK, res.Message)
	assert.Equal(t, "covers/b0001/0f8e.png", up.Cover.FileName)
	assert.Contains(t, up.URL, "sig=get")
	assert.Equal(t, "png", obj.data["covers/b0001/0f8e.png"])
	assert.Len(t, st.covers, 1)

	res, _, err = svc.Upload(t.Context(), "B0404", "front.png", "image/png", strings.NewReader("png"))
	require.NoError(t, err)
	assert.Equal(t, apperr.NotFound("Book not found"), res)
}

func TestUpload_RowFailureRemovesObject(t *testing.T) {
	svc, st, obj := newTestService()
	st.failAdd = true

	res, _, err := svc.Upload(t.Context(), "B0001", "front.png", "image/png", strings.NewReader("png"))
	require.NoError(t, err)
	assert.Equal(t, apperr.StorageErr("Failed to save cover"), res)
	assert.Empty(t, obj.data)
}

func TestUpload_PutFailure(t *testing.T) {
	svc, st, obj := newTestService()
	obj.failPut = true

	res, _, err := svc.Upload(t.Context(), "B0001", "front.png", "image/png", strings.NewReader("png"))
	require.NoError(t, err)
	assert.Equal(t, apperr.StorageErr("Failed to upload cover"), res)
	assert.Empty(t, st.covers)
}

func TestReplaceAndDelete(t *testing.T) {
	svc, st, obj := newTestService()
	obj.data["covers/b0001/a.jpg"] = "x"

	res, covers, err := svc.Replace(t.Context(), "B0001", []string{"covers/b0001/a.jpg", "legacy.jpg"})
	require.NoError(t, err)
	require.True(t, res.OK)
	require.Len(t, covers, 2)

	res, err = svc.Delete(t.Context(), "B0001", covers[0].ID)
	require.NoError(t, err)
	assert.True(t, res.OK)
	assert.NotContains(t, obj.data, "covers/b0001/a.jpg")
	assert.Len(t, st.covers, 1)

	res, err = svc.Delete(t.Context(), "B0001", 99)
	require.NoError(t, err)
	assert.Equal(t, apperr.NotFound("Cover not found"), res)
}

func TestPresignUploadThenRegister(t *testing.T) {
	svc, st, _ := newTestService()

	res, key, url, err := svc.PresignUpload(t.Context(), "B0001", "back.webp", "image/webp")
	require.NoError(t, err)
	require.True(t, res.OK)
	assert.Equal(t, "covers/b0001/0f8e.webp", key)
	assert.Contains(t, url, "sig=put")

	res, _, err = svc.Register(t.Context(), "B0001", "../etc/passwd")
	require.NoError(t, err)
	assert.Equal(t, apperr.KindValidation, res.Kind)

	res, c, err := svc.Register(t.Context(), "B0001", key)
	require.NoError(t, err)
	assert.True(t, res.OK)
	assert.Equal(t, key, c.FileName)
	assert.Len(t, st.covers, 1)
}
