package shared

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var spaceRe = regexp.MustCompile(`\s+`)

// SanitizeString NFC-normalizes, strips NULs and collapses whitespace.
func SanitizeString(s string) string {
	s = norm.NFC.String(s)
	s = strings.ReplaceAll(s, "\x00", "")
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

// FoldName is the identity key for case-insensitive name matching (authors, themes).
func FoldName(s string) string {
	return cases.Fold().String(SanitizeString(s))
}

// DedupFold drops blanks and case-insensitive duplicates, keeping the first spelling.
func DedupFold(xs []string) []string {
	seen := make(map[string]struct{}, len(xs))
	out := make([]string, 0, len(xs))
	for _, s := range xs {
		s = SanitizeString(s)
		if s == "" {
			continue
		}
		k := FoldName(s)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, s)
	}
	return out
}

// Slugify builds a stable ASCII-ish slug: [a-z0-9] with single '-' separators.
func Slugify(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "n-a"
	}

	// accent folding
	t := transform.Chain(
		norm.NFKD,
		transform.RemoveFunc(func(r rune) bool { return unicode.Is(unicode.Mn, r) }),
		norm.NFC,
	)
	normed, _, _ := transform.String(t, s)

	var b strings.Builder
	b.Grow(len(normed))
	prevDash := false
	for _, r := range normed {
		if r >= 'A' && r <= 'Z' {
			r += 'a' - 'A'
		}
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			prevDash = false
		case r == ' ' || r == '_' || r == '-' || r == '.' || unicode.IsSpace(r):
			if !prevDash && b.Len() > 0 {
				b.WriteByte('-')
				prevDash = true
			}
		}
	}
	out := strings.Trim(b.String(), "-")
	if out == "" {
		return "n-a"
	}
	return out
}

func NullIfEmpty(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}

func NullIfNil[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}
