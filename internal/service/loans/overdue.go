package loans

import (
	"context"

	"github.com/5w1tchy/library-api/internal/models"
)

// DaysBorrowed is the loan age in days: up to the return date when returned, up to today otherwise.
// Bad data yields 0 and a warning.
func (s *Service) DaysBorrowed(i models.Issue) int {
	if i.DateIssued.IsZero() {
		s.log.Warn("issue has no issue date", "issue_id", i.ID)
		return 0
	}
	end := s.clock.Today()
	if i.IsReturned() {
		if i.DateReturn == nil {
			s.log.Warn("returned issue has no return date", "issue_id", i.ID)
			return 0
		}
		end = *i.DateReturn
	}
	days := models.DaysBetween(i.DateIssued, end)
	if days < 0 {
		s.log.Warn("negative loan age", "issue_id", i.ID,
			"date_issued", models.FormatDate(i.DateIssued), "until", models.FormatDate(end))
		return 0
	}
	return days
}

// IsOverdue is true for an issued loan older than its deadline.
func (s *Service) IsOverdue(i models.Issue) bool {
	if i.IsReturned() {
		return false
	}
	if i.DateIssued.IsZero() {
		s.log.Warn("cannot judge overdue without issue date", "issue_id", i.ID)
		return false
	}
	return models.DaysBetween(i.DateIssued, s.clock.Today()) > s.policy.Deadline(i.Extended)
}

func (s *Service) AllIssues(ctx context.Context) ([]models.Issue, error) {
	return s.repo.All(ctx)
}

func (s *Service) ActiveIssues(ctx context.Context) ([]models.Issue, error) {
	return s.repo.Active(ctx)
}

func (s *Service) CustomerIssues(ctx context.Context, customerID string) ([]models.Issue, error) {
	return s.repo.ByCustomer(ctx, customerID)
}

func (s *Service) CustomerActiveIssues(ctx context.Context, customerID string) ([]models.Issue, error) {
	return s.repo.ActiveByCustomer(ctx, customerID)
}

// SearchIssues matches book title, customer name or customer id. Empty lists everything.
func (s *Service) SearchIssues(ctx context.Context, term string) ([]models.Issue, error) {
	return s.repo.Search(ctx, term)
}

func (s *Service) OverdueIssues(ctx context.Context) ([]models.Issue, error) {
	return s.repo.Overdue(ctx, s.clock.Today(), s.policy.PeriodDays, s.policy.ExtensionDays)
}

// OverdueReport lists every overdue loan with its age and the days past the deadline.
func (s *Service) OverdueReport(ctx context.Context) ([]models.OverdueEntry, error) {
	issues, err := s.OverdueIssues(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.OverdueEntry, 0, len(issues))
	for _, i := range issues {
		days := s.DaysBorrowed(i)
		out = append(out, models.OverdueEntry{
			IssueID:      i.ID,
			BookTitle:    i.BookTitle,
			CustomerName: i.CustomerName,
			DateIssued:   models.FormatDate(i.DateIssued),
			DaysBorrowed: days,
			DaysOverdue:  days - s.policy.Deadline(i.Extended),
		})
	}
	return out, nil
}
