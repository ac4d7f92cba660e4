package loans_test

import (
	"context"
	"errors"
	"maps"
	"sort"
	"strings"
	"time"

	"github.com/5w1tchy/library-api/internal/apperr"
	"github.com/5w1tchy/library-api/internal/models"
	"github.com/5w1tchy/library-api/internal/service/loans"
)

// memRepo is an in-memory Repo whose InTx restores a snapshot when fn fails.
type memRepo struct {
	books     map[string]models.Book
	customers map[string]models.Customer
	issues    map[int64]models.Issue
	nextID    int64

	failInsert bool
	failAdjust bool
	failMark   bool
}

func newMemRepo() *memRepo {
	return &memRepo{
		books:     map[string]models.Book{},
		customers: map[string]models.Customer{},
		issues:    map[int64]models.Issue{},
		nextID:    1,
	}
}

func (m *memRepo) InTx(ctx context.Context, fn func(loans.Tx) error) error {
	books, custs, iss, next := maps.Clone(m.books), maps.Clone(m.customers), maps.Clone(m.issues), m.nextID
	if err := fn(m); err != nil {
		m.books, m.customers, m.issues, m.nextID = books, custs, iss, next
		return err
	}
	return nil
}

func (m *memRepo) LockBook(_ context.Context, id string) (models.Book, error) {
	b, ok := m.books[id]
	if !ok {
		return models.Book{}, apperr.ErrNotFound
	}
	return b, nil
}

func (m *memRepo) LockCustomer(_ context.Context, id string) (models.Customer, error) {
	c, ok := m.customers[id]
	if !ok {
		return models.Customer{}, apperr.ErrNotFound
	}
	return c, nil
}

func (m *memRepo) ActiveLoanCount(_ context.Context, customerID string) (int, error) {
	n := 0
	for _, i := range m.issues {
		if i.CustomerID == customerID && !i.IsReturned() {
			n++
		}
	}
	return n, nil
}

func (m *memRepo) InsertIssue(_ context.Context, i models.Issue) (int64, error) {
	if m.failInsert {
		return 0, errors.New("insert failed")
	}
	i.ID = m.nextID
	m.nextID++
	m.issues[i.ID] = i
	return i.ID, nil
}

func (m *memRepo) AdjustAvailable(_ context.Context, bookID string, delta int) error {
	b := m.books[bookID]
	next := b.AvailableCopies + delta
	if m.failAdjust || next < 0 || next > b.TotalCopies {
		return errors.New("no rows")
	}
	b.AvailableCopies = next
	m.books[bookID] = b
	return nil
}

func (m *memRepo) LockIssue(_ context.Context, id int64) (models.Issue, error) {
	i, ok := m.issues[id]
	if !ok {
		return models.Issue{}, apperr.ErrNotFound
	}
	return i, nil
}

func (m *memRepo) MarkReturned(_ context.Context, id int64, on time.Time) error {
	if m.failMark {
		return errors.New("update failed")
	}
	i := m.issues[id]
	i.Status = models.StatusReturned
	i.DateReturn = &on
	m.issues[id] = i
	return nil
}

func (m *memRepo) MarkExtended(_ context.Context, id int64) error {
	if m.failMark {
		return errors.New("update failed")
	}
	i := m.issues[id]
	i.Extended = true
	m.issues[id] = i
	return nil
}

func (m *memRepo) list(keep func(models.Issue) bool) []models.Issue {
	out := []models.Issue{}
	for _, i := range m.issues {
		if keep(i) {
			out = append(out, i)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out
}

func (m *memRepo) All(context.Context) ([]models.Issue, error) {
	return m.list(func(models.Issue) bool { return true }), nil
}

func (m *memRepo) Active(context.Context) ([]models.Issue, error) {
	return m.list(func(i models.Issue) bool { return !i.IsReturned() }), nil
}

func (m *memRepo) ByCustomer(_ context.Context, id string) ([]models.Issue, error) {
	return m.list(func(i models.Issue) bool { return i.CustomerID == id }), nil
}

func (m *memRepo) ActiveByCustomer(_ context.Context, id string) ([]models.Issue, error) {
	return m.list(func(i models.Issue) bool { return i.CustomerID == id && !i.IsReturned() }), nil
}

func (m *memRepo) Search(_ context.Context, term string) ([]models.Issue, error) {
	term = strings.ToLower(term)
	return m.list(func(i models.Issue) bool {
		return strings.Contains(strings.ToLower(i.BookTitle), term) ||
			strings.Contains(strings.ToLower(i.CustomerName), term) ||
			strings.Contains(strings.ToLower(i.CustomerID), term)
	}), nil
}

func (m *memRepo) Overdue(_ context.Context, today time.Time, period, grace int) ([]models.Issue, error) {
	return m.list(func(i models.Issue) bool {
		limit := period
		if i.Extended {
			limit += grace
		}
		return !i.IsReturned() && models.DaysBetween(i.DateIssued, today) > limit
	}), nil
}
