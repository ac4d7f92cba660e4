// Package stats aggregates loan and catalog counts for dashboards and reports.
package stats

import (
	"context"
	"time"

	"github.com/5w1tchy/library-api/internal/models"
	"github.com/5w1tchy/library-api/internal/service/loans"
	statstore "github.com/5w1tchy/library-api/internal/store/stats"
)

type Store interface {
	Summary(ctx context.Context, th statstore.Thresholds) (models.Stats, error)
}

// Loans is the slice of the loan manager the reports need.
type Loans interface {
	Policy() loans.Policy
	Today() time.Time
	ActiveIssues(ctx context.Context) ([]models.Issue, error)
	OverdueIssues(ctx context.Context) ([]models.Issue, error)
}

type Service struct {
	store Store
	loans Loans
	cache *Cache
}

// New wires the aggregator; cache may be nil.
func New(store Store, l Loans, cache *Cache) *Service {
	return &Service{store: store, loans: l, cache: cache}
}

// Summary serves the cached aggregate when present, otherwise recomputes and caches it.
func (s *Service) Summary(ctx context.Context) (models.Stats, error) {
	if st, ok := s.cache.Get(ctx); ok {
		return st, nil
	}
	return s.Refresh(ctx)
}

// Refresh recomputes the aggregate and overwrites the cache.
func (s *Service) Refresh(ctx context.Context) (models.Stats, error) {
	p := s.loans.Policy()
	st, err := s.store.Summary(ctx, statstore.Thresholds{
		Today:      s.loans.Today(),
		PeriodDays: p.PeriodDays,
		GraceDays:  p.ExtensionDays,
	})
	if err != nil {
		return models.Stats{}, err
	}
	if st.TopCustomers == nil {
		st.TopCustomers = []models.CustomerLoanCount{}
	}
	if st.TopBooks == nil {
		st.TopBooks = []models.BookLoanCount{}
	}
	s.cache.Set(ctx, st)
	return st, nil
}

// FullReport bundles the statistics with the active and overdue loan lists.
func (s *Service) FullReport(ctx context.Context) (models.FullReport, error) {
	st, err := s.Summary(ctx)
	if err != nil {
		return models.FullReport{}, err
	}
	active, err := s.loans.ActiveIssues(ctx)
	if err != nil {
		return models.FullReport{}, err
	}
	overdue, err := s.loans.OverdueIssues(ctx)
	if err != nil {
		return models.FullReport{}, err
	}
	return models.FullReport{Statistics: st, ActiveIssues: active, OverdueIssues: overdue}, nil
}
