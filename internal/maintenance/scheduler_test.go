package maintenance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/5w1tchy/library-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReporter struct {
	entries []models.OverdueEntry
	err     error
	calls   int
}

func (f *fakeReporter) OverdueReport(context.Context) ([]models.OverdueEntry, error) {
	f.calls++
	return f.entries, f.err
}

type fakeWarmer struct{ calls int }

func (f *fakeWarmer) Refresh(context.Context) (models.Stats, error) {
	f.calls++
	return models.Stats{}, nil
}

func TestValidateSchedule(t *testing.T) {
	require.NoError(t, ValidateSchedule("0 7 * * *"))
	require.Error(t, ValidateSchedule("0 7 * *"))
	require.Error(t, ValidateSchedule("every morning"))
}

func TestNextRun(t *testing.T) {
	from := time.Date(2024, 6, 15, 8, 0, 0, 0, time.UTC)
	next, err := NextRun("0 7 * * *", from)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 6, 16, 7, 0, 0, 0, time.UTC), next)
}

func TestRunOnce(t *testing.T) {
	r := &fakeReporter{entries: []models.OverdueEntry{{IssueID: 3, BookTitle: "Anna Karenina", DaysOverdue: 2}}}
	w := &fakeWarmer{}
	s := New(r, w, nil)

	got, err := s.RunOnce(t.Context())
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, 1, w.calls)
}

func TestRunOnce_ReportErrorSkipsWarmup(t *testing.T) {
	r := &fakeReporter{err: errors.New("db down")}
	w := &fakeWarmer{}

	_, err := New(r, w, nil).RunOnce(t.Context())
	require.Error(t, err)
	assert.Zero(t, w.calls)
}

func TestRunOnce_SkipsOverlap(t *testing.T) {
	r := &fakeReporter{}
	s := New(r, nil, nil)
	s.busy.Lock()
	defer s.busy.Unlock()

	got, err := s.RunOnce(t.Context())
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Zero(t, r.calls)
}

func TestStartStop(t *testing.T) {
	s := New(&fakeReporter{}, nil, nil)
	require.Error(t, s.Start(t.Context(), "bad"))

	ctx, cancel := context.WithCancel(t.Context())
	require.NoError(t, s.Start(ctx, "0 7 * * *"))
	cancel()
	assert.Eventually(t, func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		return !s.running
	}, time.Second, 10*time.Millisecond)
}
