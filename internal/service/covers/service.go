// Package covers keeps book cover images in object storage and their keys in book_covers.
package covers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"path/filepath"
	"strings"

	"github.com/5w1tchy/library-api/internal/apperr"
	"github.com/5w1tchy/library-api/internal/models"
	"github.com/5w1tchy/library-api/internal/store/shared"
	"github.com/google/uuid"
)

const keyPrefix = "covers"

type Objects interface {
	Put(ctx context.Context, key, contentType string, body io.Reader) error
	Delete(ctx context.Context, key string) error
	PresignGet(ctx context.Context, key string) (string, error)
	PresignPut(ctx context.Context, key, contentType string) (string, error)
}

type Store interface {
	Exists(ctx context.Context, id string) (bool, error)
	AddCover(ctx context.Context, bookID, file string) (models.BookCover, error)
	SetCovers(ctx context.Context, bookID string, files []string) ([]models.BookCover, error)
	DeleteCover(ctx context.Context, bookID string, coverID int64) (models.BookCover, error)
}

type Service struct {
	store   Store
	objects Objects
	log     *slog.Logger
	newID   func() string
}

func New(store Store, objects Objects, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{store: store, objects: objects, log: log.With("component", "covers"), newID: uuid.NewString}
}

// Key builds covers/<book>/<id><ext> with a lower-cased extension taken from fileName.
func Key(bookID, id, fileName string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	return path.Join(keyPrefix, shared.Slugify(bookID), id+ext)
}

// Uploaded is a stored cover plus a presigned download URL.
type Uploaded struct {
	Cover models.BookCover `json:"cover"`
	URL   string           `json:"url"`
}

func (s *Service) checkBook(ctx context.Context, bookID string) (*apperr.Result, error) {
	ok, err := s.store.Exists(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if !ok {
		r := apperr.NotFound("Book not found")
		return &r, nil
	}
	return nil, nil
}

// Upload stores body and appends a cover row. The object is removed again if the row cannot be written.
func (s *Service) Upload(ctx context.Context, bookID, fileName, contentType string, body io.Reader) (apperr.Result, Uploaded, error) {
	bookID = strings.TrimSpace(bookID)
	if bad, err := s.checkBook(ctx, bookID); bad != nil || err != nil {
		return deref(bad), Uploaded{}, err
	}

	key := Key(bookID, s.newID(), fileName)
	if err := s.objects.Put(ctx, key, contentType, body); err != nil {
		s.log.Error("cover upload failed", "book_id", bookID, "key", key, "err", err)
		return apperr.StorageErr("Failed to upload cover"), Uploaded{}, nil
	}

	cover, err := s.store.AddCover(ctx, bookID, key)
	if err != nil {
		if derr := s.objects.Delete(ctx, key); derr != nil {
			s.log.Warn("orphaned cover object", "key", key, "err", derr)
		}
		s.log.Error("cover row failed", "book_id", bookID, "err", err)
		return apperr.StorageErr("Failed to save cover"), Uploaded{}, nil
	}

	url, err := s.objects.PresignGet(ctx, key)
	if err != nil {
		return apperr.Result{}, Uploaded{}, err
	}
	return apperr.Success("Cover uploaded successfully"), Uploaded{Cover: cover, URL: url}, nil
}

// Replace swaps the whole cover list for fileNames. Stored objects are not touched.
func (s *Service) Replace(ctx context.Context, bookID string, fileNames []string) (apperr.Result, []models.BookCover, error) {
	if bad, err := s.checkBook(ctx, bookID); bad != nil || err != nil {
		return deref(bad), nil, err
	}
	covers, err := s.store.SetCovers(ctx, bookID, fileNames)
	if err != nil {
		s.log.Error("replace covers failed", "book_id", bookID, "err", err)
		return apperr.StorageErr("Failed to update covers"), nil, nil
	}
	return apperr.Success("Covers updated successfully"), covers, nil
}

// PresignUpload reserves a key and returns a URL the caller can PUT the image to.
// The cover row is added later via Replace or Register.
func (s *Service) PresignUpload(ctx context.Context, bookID, fileName, contentType string) (apperr.Result, string, string, error) {
	if bad, err := s.checkBook(ctx, bookID); bad != nil || err != nil {
		return deref(bad), "", "", err
	}
	key := Key(bookID, s.newID(), fileName)
	url, err := s.objects.PresignPut(ctx, key, contentType)
	if err != nil {
		return apperr.Result{}, "", "", fmt.Errorf("presign %s: %w", key, err)
	}
	return apperr.Success("Upload URL created"), key, url, nil
}

// Register records an object uploaded through a presigned URL.
func (s *Service) Register(ctx context.Context, bookID, key string) (apperr.Result, models.BookCover, error) {
	if !strings.HasPrefix(key, keyPrefix+"/") {
		return apperr.Invalid("Invalid cover key"), models.BookCover{}, nil
	}
	if bad, err := s.checkBook(ctx, bookID); bad != nil || err != nil {
		return deref(bad), models.BookCover{}, err
	}
	c, err := s.store.AddCover(ctx, bookID, key)
	if err != nil {
		return apperr.StorageErr("Failed to save cover"), models.BookCover{}, nil
	}
	return apperr.Success("Cover uploaded successfully"), c, nil
}

// Delete drops the cover row, then its object when the key lives in our prefix.
func (s *Service) Delete(ctx context.Context, bookID string, coverID int64) (apperr.Result, error) {
	c, err := s.store.DeleteCover(ctx, bookID, coverID)
	if errors.Is(err, apperr.ErrNotFound) {
		return apperr.NotFound("Cover not found"), nil
	}
	if err != nil {
		return apperr.Result{}, err
	}
	if strings.HasPrefix(c.FileName, keyPrefix+"/") {
		if err := s.objects.Delete(ctx, c.FileName); err != nil {
			s.log.Warn("cover object not deleted", "key", c.FileName, "err", err)
		}
	}
	return apperr.Success("Cover deleted successfully"), nil
}

// URL presigns a download link for a stored cover.
func (s *Service) URL(ctx context.Context, c models.BookCover) (string, error) {
	return s.objects.PresignGet(ctx, c.FileName)
}

func deref(r *apperr.Result) apperr.Result {
	if r == nil {
		return apperr.Result{}
	}
	return *r
}
