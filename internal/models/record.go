package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Record is the flat key/value form of an entity (snake_case keys, dates as YYYY-MM-DD).
type Record map[string]any

const DateLayout = "2006-01-02"

// Date truncates t to its calendar day in UTC.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}

func FormatDate(t time.Time) string { return t.Format(DateLayout) }

// DaysBetween counts whole calendar days from a to b (negative when b is before a).
func DaysBetween(a, b time.Time) int {
	return int(Date(b).Sub(Date(a)).Hours() / 24)
}

func (r Record) String(key string) string {
	switch v := r[key].(type) {
	case string:
		return v
	case *string:
		if v != nil {
			return *v
		}
	case nil:
	default:
		return fmt.Sprint(v)
	}
	return ""
}

func (r Record) OptString(key string) *string {
	switch v := r[key].(type) {
	case nil:
		return nil
	case *string:
		return v
	}
	s := r.String(key)
	return &s
}

func (r Record) Bool(key string) bool {
	switch v := r[key].(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(v)
		return b
	case int:
		return v != 0
	case int64:
		return v != 0
	case float64:
		return v != 0
	}
	return false
}

func (r Record) Int(key string) (int, error) {
	n, err := r.Int64(key)
	return int(n), err
}

func (r Record) Int64(key string) (int64, error) {
	switch v := r[key].(type) {
	case nil:
		return 0, nil
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case float64:
		return int64(v), nil
	case *int:
		if v == nil {
			return 0, nil
		}
		return int64(*v), nil
	case string:
		if strings.TrimSpace(v) == "" {
			return 0, nil
		}
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", key, err)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("%s: unsupported type %T", key, v)
	}
}

func (r Record) OptInt(key string) (*int, error) {
	if v, ok := r[key]; !ok || v == nil {
		return nil, nil
	}
	if p, ok := r[key].(*int); ok {
		return p, nil
	}
	n, err := r.Int(key)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r Record) OptDate(key string) (*time.Time, error) {
	switch v := r[key].(type) {
	case nil:
		return nil, nil
	case time.Time:
		d := Date(v)
		return &d, nil
	case *time.Time:
		if v == nil {
			return nil, nil
		}
		d := Date(*v)
		return &d, nil
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, nil
		}
		d, err := ParseDate(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		return &d, nil
	default:
		return nil, fmt.Errorf("%s: unsupported type %T", key, v)
	}
}

// records normalizes nested list values ([]Record, []map[string]any or []any).
func (r Record) records(key string) ([]Record, error) {
	switch v := r[key].(type) {
	case nil:
		return nil, nil
	case []Record:
		return v, nil
	case []map[string]any:
		out := make([]Record, 0, len(v))
		for _, m := range v {
			out = append(out, Record(m))
		}
		return out, nil
	case []any:
		out := make([]Record, 0, len(v))
		for i, item := range v {
			switch m := item.(type) {
			case Record:
				out = append(out, m)
			case map[string]any:
				out = append(out, Record(m))
			default:
				return nil, fmt.Errorf("%s[%d]: unsupported type %T", key, i, item)
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%s: unsupported type %T", key, v)
	}
}

func (r Record) strings(key string) ([]string, error) {
	switch v := r[key].(type) {
	case nil:
		return []string{}, nil
	case []string:
		return append([]string{}, v...), nil
	case []any:
		out := make([]string, 0, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%s[%d]: unsupported type %T", key, i, item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%s: unsupported type %T", key, v)
	}
}

func optDateValue(t *time.Time) any {
	if t == nil {
		return nil
	}
	return FormatDate(*t)
}

func optStringValue(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func optIntValue(n *int) any {
	if n == nil {
		return nil
	}
	return *n
}
