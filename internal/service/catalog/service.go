// Package catalog is the book-facing service: search, paging and book maintenance.
package catalog

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/5w1tchy/library-api/internal/apperr"
	"github.com/5w1tchy/library-api/internal/models"
	"github.com/5w1tchy/library-api/internal/store/books"
	"github.com/5w1tchy/library-api/internal/store/shared"
	"github.com/5w1tchy/library-api/internal/validate"
)

const (
	DefaultPerPage = 20
	MaxPerPage     = 100
)

type Store interface {
	Query(ctx context.Context, f books.Filter) ([]models.Book, int, error)
	Get(ctx context.Context, id string) (models.Book, error)
	Create(ctx context.Context, b models.Book, rel books.Relations) (string, error)
	Update(ctx context.Context, b models.Book, rel books.Relations) error
	Delete(ctx context.Context, id string) error
	Themes(ctx context.Context) ([]string, error)
	ThemesByPrefix(ctx context.Context, prefix string, limit int) ([]string, error)
}

type Page struct {
	Items      []models.Book `json:"items"`
	Total      int           `json:"total"`
	Page       int           `json:"page"`
	PerPage    int           `json:"per_page"`
	TotalPages int           `json:"total_pages"`
}

// Invalidator is told after every successful book write.
type Invalidator interface {
	Invalidate(ctx context.Context)
}

type Service struct {
	store Store
	log   *slog.Logger
	cache Invalidator
}

type Option func(*Service)

func WithInvalidator(inv Invalidator) Option { return func(s *Service) { s.cache = inv } }

func New(store Store, log *slog.Logger, opts ...Option) *Service {
	if log == nil {
		log = slog.Default()
	}
	s := &Service{store: store, log: log.With("component", "catalog")}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Service) changed(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
}

func (s *Service) list(ctx context.Context, f books.Filter) ([]models.Book, error) {
	items, _, err := s.store.Query(ctx, f)
	return items, err
}

func (s *Service) All(ctx context.Context) ([]models.Book, error) {
	return s.list(ctx, books.Filter{})
}

// Available lists books with at least one copy on the shelf.
func (s *Service) Available(ctx context.Context) ([]models.Book, error) {
	return s.list(ctx, books.Filter{AvailableOnly: true})
}

// Search matches id, title or the legacy author field. Empty returns the catalog.
func (s *Service) Search(ctx context.Context, term string) ([]models.Book, error) {
	return s.list(ctx, books.Filter{Term: term})
}

// AdvancedSearch ANDs the given criteria; blanks are ignored.
func (s *Service) AdvancedSearch(ctx context.Context, title, author, theme string) ([]models.Book, error) {
	return s.list(ctx, books.Filter{Title: title, Author: author, Theme: theme})
}

// Paginate returns one title-ordered page of f. page < 1 is 1; perPage is clamped to 1..MaxPerPage.
func (s *Service) Paginate(ctx context.Context, f books.Filter, page, perPage int) (Page, error) {
	page, perPage = validate.ClampPage(page, perPage, DefaultPerPage, MaxPerPage)
	f.Limit, f.Offset = perPage, (page-1)*perPage

	items, total, err := s.store.Query(ctx, f)
	if err != nil {
		return Page{}, err
	}
	return Page{
		Items:      items,
		Total:      total,
		Page:       page,
		PerPage:    perPage,
		TotalPages: validate.TotalPages(total, perPage),
	}, nil
}

// Get returns apperr.ErrNotFound for unknown ids.
func (s *Service) Get(ctx context.Context, id string) (models.Book, error) {
	return s.store.Get(ctx, strings.TrimSpace(id))
}

func (s *Service) Themes(ctx context.Context) ([]string, error) {
	return s.store.Themes(ctx)
}

func (s *Service) SuggestThemes(ctx context.Context, prefix string, limit int) ([]string, error) {
	return s.store.ThemesByPrefix(ctx, prefix, limit)
}

// BookInput carries create/update fields. Nil relation pointers leave the relation untouched on update.
type BookInput struct {
	ID              string
	Title           string
	Subtitle        *string
	Description     *string
	PublicationYear *int
	ISBN            *string
	TotalCopies     *int
	AvailableCopies *int
	Author          string
	Category        string
	CoverImage      *string

	Authors *[]books.AuthorInput
	Themes  *[]string
	Covers  *[]string
}

func (in BookInput) relations() books.Relations {
	return books.Relations{Authors: in.Authors, Themes: in.Themes, Covers: in.Covers}
}

// toBook applies defaults (total 1, available = total) and checks the copy bounds.
func (in BookInput) toBook() (models.Book, *apperr.Result) {
	b := models.Book{
		ID:              strings.TrimSpace(in.ID),
		Title:           shared.SanitizeString(in.Title),
		Subtitle:        in.Subtitle,
		Description:     in.Description,
		PublicationYear: in.PublicationYear,
		ISBN:            in.ISBN,
		Author:          shared.SanitizeString(in.Author),
		Category:        shared.SanitizeString(in.Category),
		CoverImage:      in.CoverImage,
		TotalCopies:     1,
	}
	if b.Title == "" {
		r := apperr.Invalid("Book title is required")
		return b, &r
	}
	if in.TotalCopies != nil {
		b.TotalCopies = *in.TotalCopies
	}
	b.AvailableCopies = b.TotalCopies
	if in.AvailableCopies != nil {
		b.AvailableCopies = *in.AvailableCopies
	}
	if b.TotalCopies < 0 || b.AvailableCopies < 0 || b.AvailableCopies > b.TotalCopies {
		r := apperr.Invalid("Available copies must be between 0 and total copies")
		return b, &r
	}
	if b.ISBN != nil && strings.TrimSpace(*b.ISBN) != "" && !validate.ISBN(*b.ISBN) {
		r := apperr.Invalid("Invalid ISBN format")
		return b, &r
	}
	return b, nil
}

// Create inserts a book; the new id comes back on success.
func (s *Service) Create(ctx context.Context, in BookInput) (apperr.Result, string, error) {
	b, bad := in.toBook()
	if bad != nil {
		return *bad, "", nil
	}
	id, err := s.store.Create(ctx, b, in.relations())
	switch {
	case errors.Is(err, apperr.ErrConflict):
		return apperr.Conflict("Book with this ID already exists"), "", nil
	case err != nil:
		s.log.Error("create book failed", "book_id", b.ID, "err", err)
		return apperr.StorageErr("Failed to create book"), "", nil
	}
	s.log.Info("book created", "book_id", id)
	s.changed(ctx)
	return apperr.Success("Book created successfully"), id, nil
}

// Update rewrites a book. Nil copy counts keep the stored ones. Copies on loan stay on loan:
// total may not drop below them and available is always total minus them.
func (s *Service) Update(ctx context.Context, in BookInput) (apperr.Result, error) {
	in.ID = strings.TrimSpace(in.ID)
	if in.ID == "" {
		return apperr.Invalid("Book ID is required"), nil
	}
	cur, err := s.store.Get(ctx, in.ID)
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return apperr.NotFound("Book not found"), nil
	case err != nil:
		return apperr.Result{}, err
	}
	if bad := in.reconcileCopies(cur); bad != nil {
		return *bad, nil
	}
	b, bad := in.toBook()
	if bad != nil {
		return *bad, nil
	}
	err = s.store.Update(ctx, b, in.relations())
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return apperr.NotFound("Book not found"), nil
	case errors.Is(err, apperr.ErrInvalid):
		return apperr.Invalid("Total copies cannot be less than copies on loan"), nil
	case err != nil:
		s.log.Error("update book failed", "book_id", b.ID, "err", err)
		return apperr.StorageErr("Failed to update book"), nil
	}
	s.changed(ctx)
	return apperr.Success("Book updated successfully"), nil
}

// reconcileCopies fills nil counts from cur and checks them against the copies on loan.
func (in *BookInput) reconcileCopies(cur models.Book) *apperr.Result {
	onLoan := cur.TotalCopies - cur.AvailableCopies
	total := cur.TotalCopies
	if in.TotalCopies != nil {
		total = *in.TotalCopies
	}
	if total < onLoan {
		r := apperr.Fail(apperr.KindValidation, "Total copies cannot be less than copies on loan (%d)", onLoan)
		return &r
	}
	available := total - onLoan
	if in.AvailableCopies != nil && *in.AvailableCopies != available {
		r := apperr.Fail(apperr.KindValidation,
			"Available copies must equal total copies minus copies on loan (%d)", available)
		return &r
	}
	in.TotalCopies, in.AvailableCopies = &total, &available
	return nil
}

func (s *Service) Delete(ctx context.Context, id string) (apperr.Result, error) {
	err := s.store.Delete(ctx, strings.TrimSpace(id))
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return apperr.NotFound("Book not found"), nil
	case errors.Is(err, apperr.ErrActiveLoans):
		return apperr.Conflict("Book has active loans"), nil
	case err != nil:
		s.log.Error("delete book failed", "book_id", id, "err", err)
		return apperr.StorageErr("Failed to delete book"), nil
	}
	s.changed(ctx)
	return apperr.Success("Book deleted successfully"), nil
}
