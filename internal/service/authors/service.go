package authors

import (
	"context"
	"errors"
	"log/slog"

	"github.com/5w1tchy/library-api/internal/apperr"
	"github.com/5w1tchy/library-api/internal/models"
	"github.com/5w1tchy/library-api/internal/store/shared"
)

type Store interface {
	All(ctx context.Context) ([]models.Author, error)
	Search(ctx context.Context, term string) ([]models.Author, error)
	ByBook(ctx context.Context, bookID string) ([]models.Author, error)
	Get(ctx context.Context, id int64) (models.Author, error)
	Create(ctx context.Context, a models.Author) (int64, error)
	Update(ctx context.Context, a models.Author) error
	Delete(ctx context.Context, id int64) error
}

type Service struct {
	store Store
	log   *slog.Logger
}

func New(store Store, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{store: store, log: log.With("component", "authors")}
}

func (s *Service) All(ctx context.Context) ([]models.Author, error) { return s.store.All(ctx) }

func (s *Service) Search(ctx context.Context, term string) ([]models.Author, error) {
	return s.store.Search(ctx, term)
}

func (s *Service) ByBook(ctx context.Context, bookID string) ([]models.Author, error) {
	return s.store.ByBook(ctx, bookID)
}

func (s *Service) Get(ctx context.Context, id int64) (models.Author, error) {
	return s.store.Get(ctx, id)
}

func check(a models.Author) (models.Author, *apperr.Result) {
	a.FullName = shared.SanitizeString(a.FullName)
	if a.FullName == "" {
		r := apperr.Invalid("Author name is required")
		return a, &r
	}
	if a.BirthDate != nil && a.DeathDate != nil && a.DeathDate.Before(*a.BirthDate) {
		r := apperr.Invalid("Death date cannot be before birth date")
		return a, &r
	}
	return a, nil
}

func (s *Service) Create(ctx context.Context, a models.Author) (apperr.Result, int64, error) {
	a, bad := check(a)
	if bad != nil {
		return *bad, 0, nil
	}
	id, err := s.store.Create(ctx, a)
	if err != nil {
		s.log.Error("create author failed", "name", a.FullName, "err", err)
		return apperr.StorageErr("Failed to create author"), 0, nil
	}
	return apperr.Success("Author created successfully"), id, nil
}

func (s *Service) Update(ctx context.Context, a models.Author) (apperr.Result, error) {
	a, bad := check(a)
	if bad != nil {
		return *bad, nil
	}
	err := s.store.Update(ctx, a)
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return apperr.NotFound("Author not found"), nil
	case err != nil:
		s.log.Error("update author failed", "author_id", a.ID, "err", err)
		return apperr.StorageErr("Failed to update author"), nil
	}
	return apperr.Success("Author updated successfully"), nil
}

func (s *Service) Delete(ctx context.Context, id int64) (apperr.Result, error) {
	err := s.store.Delete(ctx, id)
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return apperr.NotFound("Author not found"), nil
	case err != nil:
		s.log.Error("delete author failed", "author_id", id, "err", err)
		return apperr.StorageErr("Failed to delete author"), nil
	}
	return apperr.Success("Author deleted successfully"), nil
}
