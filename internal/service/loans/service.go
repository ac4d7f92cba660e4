// Package loans owns the loan lifecycle: issue, return, extend and the overdue rules.
package loans

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/5w1tchy/library-api/internal/apperr"
	"github.com/5w1tchy/library-api/internal/clock"
	"github.com/5w1tchy/library-api/internal/config"
	"github.com/5w1tchy/library-api/internal/models"
)

// Policy holds the loan limits.
type Policy struct {
	PeriodDays      int
	ExtensionDays   int
	MaxBooksPerUser int
}

func PolicyFrom(c config.Loans) Policy {
	p := Policy{PeriodDays: c.PeriodDays, ExtensionDays: c.ExtensionDays, MaxBooksPerUser: c.MaxBooksPerUser}
	if p.PeriodDays <= 0 {
		p.PeriodDays = config.DefaultLoanPeriodDays
	}
	if p.ExtensionDays <= 0 {
		p.ExtensionDays = config.DefaultExtensionDays
	}
	if p.MaxBooksPerUser <= 0 {
		p.MaxBooksPerUser = config.DefaultMaxBooksPerUser
	}
	return p
}

// Deadline is the number of days a loan may run before it is overdue.
func (p Policy) Deadline(extended bool) int {
	if extended {
		return p.PeriodDays + p.ExtensionDays
	}
	return p.PeriodDays
}

// Tx is the set of row operations one loan transaction needs.
type Tx interface {
	LockBook(ctx context.Context, bookID string) (models.Book, error)
	LockCustomer(ctx context.Context, customerID string) (models.Customer, error)
	ActiveLoanCount(ctx context.Context, customerID string) (int, error)
	InsertIssue(ctx context.Context, i models.Issue) (int64, error)
	AdjustAvailable(ctx context.Context, bookID string, delta int) error
	LockIssue(ctx context.Context, id int64) (models.Issue, error)
	MarkReturned(ctx context.Context, id int64, on time.Time) error
	MarkExtended(ctx context.Context, id int64) error
}

type Reader interface {
	All(ctx context.Context) ([]models.Issue, error)
	Active(ctx context.Context) ([]models.Issue, error)
	ByCustomer(ctx context.Context, customerID string) ([]models.Issue, error)
	ActiveByCustomer(ctx context.Context, customerID string) ([]models.Issue, error)
	Search(ctx context.Context, term string) ([]models.Issue, error)
	Overdue(ctx context.Context, today time.Time, periodDays, graceDays int) ([]models.Issue, error)
}

// Repo runs fn inside one transaction: commit on nil, rollback otherwise.
type Repo interface {
	Reader
	InTx(ctx context.Context, fn func(Tx) error) error
}

// Invalidator is told after every committed loan write.
type Invalidator interface {
	Invalidate(ctx context.Context)
}

type Service struct {
	repo   Repo
	clock  clock.Clock
	policy Policy
	log    *slog.Logger
	cache  Invalidator
}

type Option func(*Service)

func WithLogger(l *slog.Logger) Option { return func(s *Service) { s.log = l } }

func WithInvalidator(inv Invalidator) Option { return func(s *Service) { s.cache = inv } }

func New(repo Repo, clk clock.Clock, p Policy, opts ...Option) *Service {
	s := &Service{repo: repo, clock: clk, policy: p, log: slog.Default()}
	for _, o := range opts {
		o(s)
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	s.log = s.log.With("component", "loans")
	return s
}

func (s *Service) Policy() Policy { return s.policy }

func (s *Service) Today() time.Time { return s.clock.Today() }

func (s *Service) changed(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
}

// Issue lends one copy of bookID to customerID.
func (s *Service) Issue(ctx context.Context, bookID, customerID string) (apperr.Result, error) {
	today := s.clock.Today()
	err := s.repo.InTx(ctx, func(tx Tx) error {
		book, err := tx.LockBook(ctx, bookID)
		if errors.Is(err, apperr.ErrNotFound) {
			return apperr.Abort(apperr.NotFound("Book not found"))
		}
		if err != nil {
			return err
		}
		if !book.IsAvailable() {
			return apperr.Abort(apperr.Conflict("Book is not available"))
		}

		cust, err := tx.LockCustomer(ctx, customerID)
		if errors.Is(err, apperr.ErrNotFound) {
			return apperr.Abort(apperr.NotFound("Customer not found"))
		}
		if err != nil {
			return err
		}

		active, err := tx.ActiveLoanCount(ctx, cust.ID)
		if err != nil {
			return err
		}
		if active >= s.policy.MaxBooksPerUser {
			return apperr.Abort(apperr.Fail(apperr.KindConflict,
				"Customer has reached maximum limit of %d books", s.policy.MaxBooksPerUser))
		}

		id, err := tx.InsertIssue(ctx, models.Issue{
			BookID:       book.ID,
			BookTitle:    book.Title,
			CustomerID:   cust.ID,
			CustomerName: cust.Name,
			DateIssued:   today,
			Status:       models.StatusIssued,
		})
		if err != nil {
			s.log.Error("insert issue failed", "book_id", bookID, "customer_id", customerID, "err", err)
			return apperr.Abort(apperr.StorageErr("Failed to create issue"))
		}
		if err := tx.AdjustAvailable(ctx, book.ID, -1); err != nil {
			s.log.Error("decrement copies failed", "book_id", bookID, "issue_id", id, "err", err)
			return apperr.Abort(apperr.StorageErr("Failed to update book availability"))
		}
		s.log.Info("book issued", "issue_id", id, "book_id", book.ID, "customer_id", cust.ID)
		return nil
	})
	return s.finish(ctx, err, apperr.Success("Book issued successfully"))
}

// Return closes an issued loan on today's date and puts the copy back.
func (s *Service) Return(ctx context.Context, issueID int64) (apperr.Result, error) {
	today := s.clock.Today()
	err := s.repo.InTx(ctx, func(tx Tx) error {
		issue, err := tx.LockIssue(ctx, issueID)
		if errors.Is(err, apperr.ErrNotFound) {
			return apperr.Abort(apperr.NotFound("Issue not found"))
		}
		if err != nil {
			return err
		}
		if issue.IsReturned() {
			return apperr.Abort(apperr.Conflict("Book has already been returned"))
		}

		if err := tx.MarkReturned(ctx, issue.ID, today); err != nil {
			s.log.Error("mark returned failed", "issue_id", issueID, "err", err)
			return apperr.Abort(apperr.StorageErr("Failed to return book"))
		}
		if err := tx.AdjustAvailable(ctx, issue.BookID, +1); err != nil {
			s.log.Error("increment copies failed", "issue_id", issueID, "book_id", issue.BookID, "err", err)
			return apperr.Abort(apperr.StorageErr("Failed to update book availability"))
		}
		s.log.Info("book returned", "issue_id", issue.ID, "book_id", issue.BookID)
		return nil
	})
	return s.finish(ctx, err, apperr.Success("Book returned successfully"))
}

// Extend grants the one-time extension; due dates move by ExtensionDays, stored dates do not.
func (s *Service) Extend(ctx context.Context, issueID int64) (apperr.Result, error) {
	err := s.repo.InTx(ctx, func(tx Tx) error {
		issue, err := tx.LockIssue(ctx, issueID)
		if errors.Is(err, apperr.ErrNotFound) {
			return apperr.Abort(apperr.NotFound("Issue not found"))
		}
		if err != nil {
			return err
		}
		if issue.IsReturned() {
			return apperr.Abort(apperr.Conflict("Book has already been returned"))
		}
		if issue.Extended {
			return apperr.Abort(apperr.Conflict("Loan has already been extended"))
		}
		if err := tx.MarkExtended(ctx, issue.ID); err != nil {
			s.log.Error("mark extended failed", "issue_id", issueID, "err", err)
			return apperr.Abort(apperr.StorageErr("Failed to extend loan"))
		}
		return nil
	})
	return s.finish(ctx, err, apperr.Success("Loan extended successfully"))
}

func (s *Service) finish(ctx context.Context, err error, success apperr.Result) (apperr.Result, error) {
	res, err := apperr.Outcome(err, success)
	if err != nil {
		return apperr.Result{}, err
	}
	if res.OK {
		s.changed(ctx)
	}
	return res, nil
}
