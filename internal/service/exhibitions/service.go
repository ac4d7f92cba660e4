// Package exhibitions curates small, ordered book displays.
package exhibitions

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/5w1tchy/library-api/internal/apperr"
	"github.com/5w1tchy/library-api/internal/clock"
	"github.com/5w1tchy/library-api/internal/models"
	"github.com/5w1tchy/library-api/internal/store/exhibitions"
	"github.com/5w1tchy/library-api/internal/store/shared"
)

// Tx is what one curation transaction touches. Exhibition locks the row.
type Tx interface {
	Exhibition(ctx context.Context, id int64) (models.Exhibition, error)
	BookExists(ctx context.Context, bookID string) (bool, error)
	CountBooks(ctx context.Context, exhibitionID int64) (int, error)
	HasBook(ctx context.Context, exhibitionID int64, bookID string) (bool, error)
	NextOrder(ctx context.Context, exhibitionID int64) (int, error)
	UpsertBook(ctx context.Context, exhibitionID int64, bookID string, order int) error
	RemoveBook(ctx context.Context, exhibitionID int64, bookID string) error
	SetOrder(ctx context.Context, exhibitionID int64, bookID string, order int) error
}

type Repo interface {
	All(ctx context.Context) ([]models.Exhibition, error)
	Active(ctx context.Context, today time.Time) ([]models.Exhibition, error)
	Get(ctx context.Context, id int64) (models.Exhibition, error)
	Create(ctx context.Context, e models.Exhibition) (int64, error)
	Update(ctx context.Context, e models.Exhibition) error
	SetActive(ctx context.Context, id int64, active bool) error
	Delete(ctx context.Context, id int64) error
	Books(ctx context.Context, exhibitionID int64) ([]exhibitions.Slot, error)
	InTx(ctx context.Context, fn func(Tx) error) error
}

type Service struct {
	repo  Repo
	clock clock.Clock
	log   *slog.Logger
}

func New(repo Repo, clk clock.Clock, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{repo: repo, clock: clk, log: log.With("component", "exhibitions")}
}

// Detail is an exhibition with its ordered books.
type Detail struct {
	models.Exhibition
	Books             []exhibitions.Slot `json:"books"`
	IsCurrentlyActive bool               `json:"is_currently_active"`
}

func (s *Service) All(ctx context.Context) ([]models.Exhibition, error) { return s.repo.All(ctx) }

// Active lists exhibitions that are switched on and running today.
func (s *Service) Active(ctx context.Context) ([]models.Exhibition, error) {
	return s.repo.Active(ctx, s.clock.Today())
}

func (s *Service) Get(ctx context.Context, id int64) (models.Exhibition, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) IsCurrentlyActive(e models.Exhibition) bool {
	return e.IsCurrentlyActive(s.clock.Today())
}

func (s *Service) WithBooks(ctx context.Context, id int64) (Detail, error) {
	e, err := s.repo.Get(ctx, id)
	if err != nil {
		return Detail{}, err
	}
	slots, err := s.repo.Books(ctx, id)
	if err != nil {
		return Detail{}, err
	}
	return Detail{Exhibition: e, Books: slots, IsCurrentlyActive: s.IsCurrentlyActive(e)}, nil
}

// AddBook places bookID in the exhibition. A nil order appends after the current last slot.
// Re-adding a present book only moves it.
func (s *Service) AddBook(ctx context.Context, exhibitionID int64, bookID string, order *int) (apperr.Result, error) {
	bookID = strings.TrimSpace(bookID)
	err := s.repo.InTx(ctx, func(tx Tx) error {
		if err := s.lockExhibition(ctx, tx, exhibitionID); err != nil {
			return err
		}
		ok, err := tx.BookExists(ctx, bookID)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.Abort(apperr.NotFound("Book not found"))
		}

		present, err := tx.HasBook(ctx, exhibitionID, bookID)
		if err != nil {
			return err
		}
		if !present {
			n, err := tx.CountBooks(ctx, exhibitionID)
			if err != nil {
				return err
			}
			if n >= models.MaxExhibitionBooks {
				return apperr.Abort(apperr.Fail(apperr.KindConflict,
					"Exhibition cannot contain more than %d books", models.MaxExhibitionBooks))
			}
		}

		pos := 0
		if order != nil {
			pos = *order
		} else if pos, err = tx.NextOrder(ctx, exhibitionID); err != nil {
			return err
		}
		if err := tx.UpsertBook(ctx, exhibitionID, bookID, pos); err != nil {
			s.log.Error("add book failed", "exhibition_id", exhibitionID, "book_id", bookID, "err", err)
			return apperr.Abort(apperr.StorageErr("Failed to add book to exhibition"))
		}
		return nil
	})
	return apperr.Outcome(err, apperr.Success("Book added to exhibition successfully"))
}

// RemoveBook takes a book out, never leaving the exhibition empty.
func (s *Service) RemoveBook(ctx context.Context, exhibitionID int64, bookID string) (apperr.Result, error) {
	err := s.repo.InTx(ctx, func(tx Tx) error {
		if err := s.lockExhibition(ctx, tx, exhibitionID); err != nil {
			return err
		}
		n, err := tx.CountBooks(ctx, exhibitionID)
		if err != nil {
			return err
		}
		if n <= models.MinExhibitionBooks {
			return apperr.Abort(apperr.Conflict("Exhibition must contain at least one book"))
		}
		if err := tx.RemoveBook(ctx, exhibitionID, strings.TrimSpace(bookID)); err != nil {
			s.log.Warn("remove book failed", "exhibition_id", exhibitionID, "book_id", bookID, "err", err)
			return apperr.Abort(apperr.StorageErr("Failed to remove book from exhibition"))
		}
		return nil
	})
	return apperr.Outcome(err, apperr.Success("Book removed from exhibition successfully"))
}

// Reorder applies every position in one transaction. Equal positions are allowed.
func (s *Service) Reorder(ctx context.Context, exhibitionID int64, orders []models.BookOrder) (apperr.Result, error) {
	err := s.repo.InTx(ctx, func(tx Tx) error {
		if err := s.lockExhibition(ctx, tx, exhibitionID); err != nil {
			return err
		}
		for _, o := range orders {
			if err := tx.SetOrder(ctx, exhibitionID, o.BookID, o.DisplayOrder); err != nil {
				s.log.Warn("reorder failed", "exhibition_id", exhibitionID, "book_id", o.BookID, "err", err)
				return apperr.Abort(apperr.StorageErr("Failed to update book order"))
			}
		}
		return nil
	})
	return apperr.Outcome(err, apperr.Success("Book order updated successfully"))
}

func (s *Service) lockExhibition(ctx context.Context, tx Tx, id int64) error {
	_, err := tx.Exhibition(ctx, id)
	if errors.Is(err, apperr.ErrNotFound) {
		return apperr.Abort(apperr.NotFound("Exhibition not found"))
	}
	return err
}

// Input is the editable part of an exhibition; dates are YYYY-MM-DD or blank.
type Input struct {
	ID          int64
	Title       string
	Description *string
	StartDate   string
	EndDate     string
	IsActive    *bool
}

func (in Input) parse() (models.Exhibition, *apperr.Result) {
	fail := func(msg string) (models.Exhibition, *apperr.Result) {
		r := apperr.Invalid(msg)
		return models.Exhibition{}, &r
	}
	e := models.Exhibition{ID: in.ID, Title: shared.SanitizeString(in.Title), Description: in.Description, IsActive: true}
	if in.IsActive != nil {
		e.IsActive = *in.IsActive
	}
	if e.Title == "" {
		return fail("Exhibition title is required")
	}
	if v := strings.TrimSpace(in.StartDate); v != "" {
		d, err := models.ParseDate(v)
		if err != nil {
			return fail("Invalid start date format (use YYYY-MM-DD)")
		}
		e.StartDate = &d
	}
	if v := strings.TrimSpace(in.EndDate); v != "" {
		d, err := models.ParseDate(v)
		if err != nil {
			return fail("Invalid end date format (use YYYY-MM-DD)")
		}
		e.EndDate = &d
	}
	if e.StartDate != nil && e.EndDate != nil && e.StartDate.After(*e.EndDate) {
		return fail("Start date cannot be after end date")
	}
	return e, nil
}

func (s *Service) Create(ctx context.Context, in Input) (apperr.Result, int64, error) {
	e, bad := in.parse()
	if bad != nil {
		return *bad, 0, nil
	}
	id, err := s.repo.Create(ctx, e)
	if err != nil {
		s.log.Error("create exhibition failed", "title", e.Title, "err", err)
		return apperr.StorageErr("Failed to create exhibition"), 0, nil
	}
	return apperr.Success("Exhibition created successfully"), id, nil
}

func (s *Service) Update(ctx context.Context, in Input) (apperr.Result, error) {
	if in.ID == 0 {
		return apperr.Invalid("Exhibition ID is required"), nil
	}
	if in.IsActive == nil {
		cur, err := s.repo.Get(ctx, in.ID)
		if errors.Is(err, apperr.ErrNotFound) {
			return apperr.NotFound("Exhibition not found"), nil
		}
		if err != nil {
			return apperr.Result{}, err
		}
		in.IsActive = &cur.IsActive
	}
	e, bad := in.parse()
	if bad != nil {
		return *bad, nil
	}
	err := s.repo.Update(ctx, e)
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return apperr.NotFound("Exhibition not found"), nil
	case err != nil:
		s.log.Error("update exhibition failed", "exhibition_id", in.ID, "err", err)
		return apperr.StorageErr("Failed to update exhibition"), nil
	}
	return apperr.Success("Exhibition updated successfully"), nil
}

func (s *Service) Delete(ctx context.Context, id int64) (apperr.Result, error) {
	err := s.repo.Delete(ctx, id)
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return apperr.NotFound("Exhibition not found"), nil
	case err != nil:
		s.log.Error("delete exhibition failed", "exhibition_id", id, "err", err)
		return apperr.StorageErr("Failed to delete exhibition"), nil
	}
	return apperr.Success("Exhibition deleted successfully"), nil
}

// ToggleStatus flips is_active.
func (s *Service) ToggleStatus(ctx context.Context, id int64) (apperr.Result, error) {
	e, err := s.repo.Get(ctx, id)
	if errors.Is(err, apperr.ErrNotFound) {
		return apperr.NotFound("Exhibition not found"), nil
	}
	if err != nil {
		return apperr.Result{}, err
	}
	if err := s.repo.SetActive(ctx, id, !e.IsActive); err != nil {
		s.log.Error("toggle exhibition failed", "exhibition_id", id, "err", err)
		return apperr.StorageErr("Failed to update exhibition status"), nil
	}
	status := "activated"
	if e.IsActive {
		status = "deactivated"
	}
	return apperr.Success("Exhibition %s successfully", status), nil
}
