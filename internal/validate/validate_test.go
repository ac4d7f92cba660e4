package validate_test

import (
	"testing"
	"time"

	"github.com/5w1tchy/library-api/internal/config"
	"github.com/5w1tchy/library-api/internal/validate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClampPage(t *testing.T) {
	p, n := validate.ClampPage(0, 0, 20, 100)
	assert.Equal(t, 1, p)
	assert.Equal(t, 20, n)

	p, n = validate.ClampPage(3, 500, 20, 100)
	assert.Equal(t, 3, p)
	assert.Equal(t, 100, n)

	p, n = validate.ClampPage(2, 10, 20, 100)
	assert.Equal(t, 2, p)
	assert.Equal(t, 10, n)
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 0, validate.TotalPages(0, 10))
	assert.Equal(t, 1, validate.TotalPages(10, 10))
	assert.Equal(t, 2, validate.TotalPages(11, 10))
	assert.Equal(t, 0, validate.TotalPages(11, 0))
}

func TestParseThemesCSV(t *testing.T) {
	assert.Nil(t, validate.ParseThemesCSV("  "))
	assert.Equal(t, []string{"war", "Russia"}, validate.ParseThemesCSV("war, Russia ,WAR,,"))
}

func TestOptionalDate(t *testing.T) {
	d, err := validate.OptionalDate("")
	require.NoError(t, err)
	assert.Nil(t, d)

	d, err = validate.OptionalDate("2024-02-29")
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, 29, d.Day())

	_, err = validate.OptionalDate("29/02/2024")
	assert.ErrorIs(t, err, validate.ErrInvalid)
}

func validConfig() *config.Config {
	return &config.Config{
		Database: config.Database{URL: "postgres://localhost/library"},
		Loans:    config.Loans{PeriodDays: 14, ExtensionDays: 7, MaxBooksPerUser: 5},
		Stats:    config.Stats{CacheTTL: 30 * time.Second},
		Worker:   config.Worker{OverdueSchedule: "0 7 * * *"},
	}
}

func TestEnv(t *testing.T) {
	require.NoError(t, validate.Env(validConfig()))

	c := validConfig()
	c.Database.URL = ""
	assert.Error(t, validate.Env(c))

	c = validConfig()
	c.Loans.MaxBooksPerUser = 0
	assert.Error(t, validate.Env(c))

	c = validConfig()
	c.Loans.UseSystemDate = true
	c.Loans.SystemDate = "not-a-date"
	assert.Error(t, validate.Env(c))

	c = validConfig()
	c.Worker.OverdueSchedule = "every day"
	assert.Error(t, validate.Env(c))
}

func TestHardeningWarnings(t *testing.T) {
	c := validConfig()
	c.AppEnv = "production"
	c.Loans.UseSystemDate = true
	c.Loans.SystemDate = "2024-01-01"
	c.Redis.URL = "redis://cache:6379"

	warns := validate.HardeningWarnings(c)
	assert.Len(t, warns, 3)
}
