package validate

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/5w1tchy/library-api/internal/models"
)

var (
	ErrInvalid = errors.New("invalid")
	isbnRe     = regexp.MustCompile(`^[0-9Xx-]{10,17}$`)
	emailRe    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// RequireBounded trims and ensures length bounds.
func RequireBounded(name, s string, min, max int) (string, error) {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) < min || utf8.RuneCountInString(s) > max {
		return "", errors.New(name + " must be between " + strconv.Itoa(min) + " and " + strconv.Itoa(max) + " characters")
	}
	return s, nil
}

// ParseThemesCSV: "war, Russia ,war" -> {"war","Russia"} (trimmed, case-insensitive dedup, first spelling wins).
func ParseThemesCSV(csv string) []string {
	if strings.TrimSpace(csv) == "" {
		return nil
	}
	seen := map[string]struct{}{}
	out := []string{}
	for _, p := range strings.Split(csv, ",") {
		s := strings.TrimSpace(p)
		if s == "" {
			continue
		}
		k := strings.ToLower(s)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, s)
	}
	return out
}

// ClampPage normalizes 1-indexed paging input.
func ClampPage(page, perPage, def, max int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = def
	}
	if perPage > max {
		perPage = max
	}
	return page, perPage
}

// TotalPages is ceil(total / perPage).
func TotalPages(total, perPage int) int {
	if perPage <= 0 || total <= 0 {
		return 0
	}
	return (total + perPage - 1) / perPage
}

// OptionalDate parses a YYYY-MM-DD value; blank means "not provided".
func OptionalDate(s string) (*time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	d, err := models.ParseDate(s)
	if err != nil {
		return nil, ErrInvalid
	}
	return &d, nil
}

func ISBN(s string) bool { return isbnRe.MatchString(strings.TrimSpace(s)) }

func Email(s string) bool { return emailRe.MatchString(strings.TrimSpace(s)) }
