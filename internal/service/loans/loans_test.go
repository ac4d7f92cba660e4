package loans_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/5w1tchy/library-api/internal/apperr"
	"github.com/5w1tchy/library-api/internal/clock"
	"github.com/5w1tchy/library-api/internal/models"
	"github.com/5w1tchy/library-api/internal/service/loans"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var policy = loans.Policy{PeriodDays: 14, ExtensionDays: 7, MaxBooksPerUser: 2}

func day(s string) time.Time {
	d, err := models.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

type countingCache struct{ n int }

func (c *countingCache) Invalidate(context.Context) { c.n++ }

func setup(t *testing.T, today string) (*loans.Service, *memRepo, *countingCache) {
	t.Helper()
	repo := newMemRepo()
	repo.books["B0001"] = models.Book{ID: "B0001", Title: "War and Peace", TotalCopies: 2, AvailableCopies: 2}
	repo.books["B0002"] = models.Book{ID: "B0002", Title: "Anna Karenina", TotalCopies: 1, AvailableCopies: 0}
	repo.books["B0003"] = models.Book{ID: "B0003", Title: "Resurrection", TotalCopies: 3, AvailableCopies: 3}
	repo.customers["C0001"] = models.Customer{ID: "C0001", Name: "Anna"}
	cache := &countingCache{}
	svc := loans.New(repo, clock.Fixed{Day: day(today)}, policy, loans.WithInvalidator(cache))
	return svc, repo, cache
}

func TestIssue_FailureOrder(t *testing.T) {
	svc, repo, _ := setup(t, "2024-03-01")
	ctx := t.Context()

	cases := []struct {
		name, book, customer string
		kind                 apperr.Kind
		msg                  string
	}{
		{"unknown book", "B9999", "C0404", apperr.KindNotFound, "Book not found"},
		{"no copies", "B0002", "C0404", apperr.KindConflict, "Book is not available"},
		{"unknown customer", "B0001", "C0404", apperr.KindNotFound, "Customer not found"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := svc.Issue(ctx, tc.book, tc.customer)
			require.NoError(t, err)
			assert.False(t, res.OK)
			assert.Equal(t, tc.kind, res.Kind)
			assert.Equal(t, tc.msg, res.Message)
		})
	}
	assert.Empty(t, repo.issues)
}

func TestIssue_LimitReached(t *testing.T) {
	svc, repo, _ := setup(t, "2024-03-01")
	ctx := t.Context()

	for _, id := range []string{"B0001", "B0003"} {
		res, err := svc.Issue(ctx, id, "C0001")
		require.NoError(t, err)
		require.True(t, res.OK, res.Message)
	}
	res, err := svc.Issue(ctx, "B0001", "C0001")
	require.NoError(t, err)
	assert.False(t, res.OK)
	assert.Equal(t, "Customer has reached maximum limit of 2 books", res.Message)
	assert.Len(t, repo.issues, 2)
	assert.Equal(t, 1, repo.books["B0001"].AvailableCopies)
}

func TestIssueThenReturn_RestoresCopies(t *testing.T) {
	svc, repo, cache := setup(t, "2024-03-01")
	ctx := t.Context()

	res, err := svc.Issue(ctx, "B0001", "C0001")
	require.NoError(t, err)
	require.Equal(t, "Book issued successfully", res.Message)
	assert.Equal(t, 1, repo.books["B0001"].AvailableCopies)

	issue := repo.issues[1]
	assert.Equal(t, day("2024-03-01"), issue.DateIssued)
	assert.Equal(t, "War and Peace", issue.BookTitle)
	assert.Equal(t, "Anna", issue.CustomerName)

	res, err = svc.Return(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, "Book returned successfully", res.Message)
	assert.Equal(t, 2, repo.books["B0001"].AvailableCopies)
	require.NotNil(t, repo.issues[1].DateReturn)
	assert.Equal(t, day("2024-03-01"), *repo.issues[1].DateReturn)
	assert.Equal(t, 2, cache.n)

	res, err = svc.Return(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, apperr.Conflict("Book has already been returned"), res)
	assert.Equal(t, 2, repo.books["B0001"].AvailableCopies)

	res, err = svc.Return(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, apperr.NotFound("Issue not found"), res)
	assert.Equal(t, 2, cache.n)
}

func TestIssue_RollsBackWhenCopiesCannotMove(t *testing.T) {
	svc, repo, cache := setup(t, "2024-03-01")
	repo.failAdjust = true

	res, err := svc.Issue(t.Context(), "B0001", "C0001")
	require.NoError(t, err)
	assert.Equal(t, apperr.StorageErr("Failed to update book availability"), res)
	assert.Empty(t, repo.issues)
	assert.Equal(t, 2, repo.books["B0001"].AvailableCopies)
	assert.Zero(t, cache.n)
}

func TestIssue_InsertFailure(t *testing.T) {
	svc, repo, _ := setup(t, "2024-03-01")
	repo.failInsert = true

	res, err := svc.Issue(t.Context(), "B0001", "C0001")
	require.NoError(t, err)
	assert.Equal(t, "Failed to create issue", res.Message)
	assert.Equal(t, 2, repo.books["B0001"].AvailableCopies)
}

func TestCopiesStayInBounds(t *testing.T) {
	svc, repo, _ := setup(t, "2024-03-01")
	repo.customers["C0002"] = models.Customer{ID: "C0002", Name: "Boris"}
	ctx := t.Context()

	steps := []func() (apperr.Result, error){
		func() (apperr.Result, error) { return svc.Issue(ctx, "B0001", "C0001") },
		func() (apperr.Result, error) { return svc.Issue(ctx, "B0001", "C0002") },
		func() (apperr.Result, error) { return svc.Issue(ctx, "B0001", "C0002") },
		func() (apperr.Result, error) { return svc.Return(ctx, 1) },
		func() (apperr.Result, error) { return svc.Return(ctx, 1) },
		func() (apperr.Result, error) { return svc.Return(ctx, 2) },
		func() (apperr.Result, error) { return svc.Return(ctx, 3) },
	}
	for i, step := range steps {
		_, err := step()
		require.NoError(t, err, "step %d", i)
		b := repo.books["B0001"]
		assert.GreaterOrEqual(t, b.AvailableCopies, 0, "step %d", i)
		assert.LessOrEqual(t, b.AvailableCopies, b.TotalCopies, "step %d", i)
	}
	assert.Equal(t, 2, repo.books["B0001"].AvailableCopies)
}

func TestExtend_OnlyOnce(t *testing.T) {
	svc, repo, _ := setup(t, "2024-03-01")
	ctx := t.Context()

	_, err := svc.Issue(ctx, "B0001", "C0001")
	require.NoError(t, err)

	res, err := svc.Extend(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Loan extended successfully", res.Message)
	before := repo.issues[1]
	require.True(t, before.Extended)

	res, err = svc.Extend(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, apperr.Conflict("Loan has already been extended"), res)
	assert.Equal(t, before, repo.issues[1])

	_, err = svc.Return(ctx, 1)
	require.NoError(t, err)
	res, err = svc.Extend(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Book has already been returned", res.Message)
}

func TestIsOverdue_Thresholds(t *testing.T) {
	issued := day("2024-03-01")
	cases := []struct {
		name     string
		today    string
		extended bool
		returned bool
		want     bool
	}{
		{"day 14", "2024-03-15", false, false, false},
		{"day 15", "2024-03-16", false, false, true},
		{"day 15 extended", "2024-03-16", true, false, false},
		{"day 22 extended", "2024-03-23", true, false, true},
		{"returned long ago", "2024-06-01", false, true, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := loans.New(newMemRepo(), clock.Fixed{Day: day(tc.today)}, policy)
			i := models.Issue{ID: 1, DateIssued: issued, Status: models.StatusIssued, Extended: tc.extended}
			if tc.returned {
				ret := day("2024-03-05")
				i.Status, i.DateReturn = models.StatusReturned, &ret
			}
			assert.Equal(t, tc.want, svc.IsOverdue(i))
		})
	}
}

func TestDaysBorrowed(t *testing.T) {
	svc := loans.New(newMemRepo(), clock.Fixed{Day: day("2024-03-11")}, policy)

	active := models.Issue{ID: 1, DateIssued: day("2024-03-01"), Status: models.StatusIssued}
	assert.Equal(t, 10, svc.DaysBorrowed(active))

	ret := day("2024-03-04")
	returned := models.Issue{ID: 2, DateIssued: day("2024-03-01"), DateReturn: &ret, Status: models.StatusReturned}
	assert.Equal(t, 3, svc.DaysBorrowed(returned))

	future := models.Issue{ID: 3, DateIssued: day("2024-04-01"), Status: models.StatusIssued}
	assert.Equal(t, 0, svc.DaysBorrowed(future))

	assert.Equal(t, 0, svc.DaysBorrowed(models.Issue{ID: 4, Status: models.StatusIssued}))
	assert.False(t, svc.IsOverdue(models.Issue{ID: 4, Status: models.StatusIssued}))
}

func TestOverdueReport(t *testing.T) {
	svc, repo, _ := setup(t, "2024-03-30")
	repo.issues[1] = models.Issue{ID: 1, BookTitle: "War and Peace", CustomerName: "Anna",
		DateIssued: day("2024-03-01"), Status: models.StatusIssued}
	repo.issues[2] = models.Issue{ID: 2, BookTitle: "Resurrection", CustomerName: "Anna",
		DateIssued: day("2024-03-01"), Status: models.StatusIssued, Extended: true}
	repo.issues[3] = models.Issue{ID: 3, BookTitle: "Anna Karenina", CustomerName: "Boris",
		DateIssued: day("2024-03-20"), Status: models.StatusIssued}

	report, err := svc.OverdueReport(t.Context())
	require.NoError(t, err)
	require.Len(t, report, 2)
	assert.Equal(t, models.OverdueEntry{
		IssueID: 1, BookTitle: "War and Peace", CustomerName: "Anna",
		DateIssued: "2024-03-01", DaysBorrowed: 29, DaysOverdue: 15,
	}, report[0])
	assert.Equal(t, 8, report[1].DaysOverdue)
}

type brokenRepo struct{ *memRepo }

func (brokenRepo) InTx(context.Context, func(loans.Tx) error) error {
	return errors.New("begin tx: connection refused")
}

func TestIssue_InfrastructureErrorIsReturned(t *testing.T) {
	svc := loans.New(brokenRepo{newMemRepo()}, clock.Fixed{Day: day("2024-03-01")}, policy)
	_, err := svc.Issue(t.Context(), "B0001", "C0001")
	assert.Error(t, err)
}
