package customers

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/5w1tchy/library-api/internal/apperr"
	"github.com/5w1tchy/library-api/internal/models"
	"github.com/5w1tchy/library-api/internal/store/shared"
	"github.com/5w1tchy/library-api/internal/validate"
)

type Store interface {
	All(ctx context.Context) ([]models.Customer, error)
	Search(ctx context.Context, term string) ([]models.Customer, error)
	Get(ctx context.Context, id string) (models.Customer, error)
	Create(ctx context.Context, c models.Customer) (string, error)
	Update(ctx context.Context, c models.Customer) error
	Delete(ctx context.Context, id string) error
}

// Invalidator is told after every successful customer write.
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
	s := &Service{store: store, log: log.With("component", "customers")}
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

func (s *Service) All(ctx context.Context) ([]models.Customer, error) { return s.store.All(ctx) }

func (s *Service) Search(ctx context.Context, term string) ([]models.Customer, error) {
	return s.store.Search(ctx, term)
}

func (s *Service) Get(ctx context.Context, id string) (models.Customer, error) {
	return s.store.Get(ctx, strings.TrimSpace(id))
}

func clean(c models.Customer) (models.Customer, *apperr.Result) {
	c.ID = strings.TrimSpace(c.ID)
	c.Name = shared.SanitizeString(c.Name)
	if c.Name == "" {
		r := apperr.Invalid("Customer name is required")
		return c, &r
	}
	if c.Email != nil {
		e := strings.TrimSpace(*c.Email)
		if e == "" {
			c.Email = nil
		} else if !validate.Email(e) {
			r := apperr.Invalid("Invalid email format")
			return c, &r
		} else {
			c.Email = &e
		}
	}
	return c, nil
}

// Create registers a customer; a blank id gets the next C#### id.
func (s *Service) Create(ctx context.Context, c models.Customer) (apperr.Result, error) {
	c, bad := clean(c)
	if bad != nil {
		return *bad, nil
	}
	id, err := s.store.Create(ctx, c)
	switch {
	case errors.Is(err, apperr.ErrConflict):
		return apperr.Conflict("Customer with this ID already exists"), nil
	case err != nil:
		s.log.Error("create customer failed", "customer_id", c.ID, "err", err)
		return apperr.StorageErr("Failed to create customer"), nil
	}
	s.changed(ctx)
	return apperr.Success("Customer created successfully with ID: %s", id), nil
}

func (s *Service) Update(ctx context.Context, c models.Customer) (apperr.Result, error) {
	if strings.TrimSpace(c.ID) == "" {
		return apperr.Invalid("Customer ID is required"), nil
	}
	c, bad := clean(c)
	if bad != nil {
		return *bad, nil
	}
	err := s.store.Update(ctx, c)
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return apperr.NotFound("Customer not found"), nil
	case err != nil:
		s.log.Error("update customer failed", "customer_id", c.ID, "err", err)
		return apperr.StorageErr("Failed to update customer"), nil
	}
	s.changed(ctx)
	return apperr.Success("Customer updated successfully"), nil
}

func (s *Service) Delete(ctx context.Context, id string) (apperr.Result, error) {
	err := s.store.Delete(ctx, strings.TrimSpace(id))
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return apperr.NotFound("Customer not found"), nil
	case errors.Is(err, apperr.ErrActiveLoans):
		return apperr.Conflict("Customer has active loans"), nil
	case err != nil:
		s.log.Error("delete customer failed", "customer_id", id, "err", err)
		return apperr.StorageErr("Failed to delete customer"), nil
	}
	s.changed(ctx)
	return apperr.Success("Customer deleted successfully"), nil
}
