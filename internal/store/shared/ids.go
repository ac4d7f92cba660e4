package shared

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/5w1tchy/library-api/internal/store/dbx"
)

// Tables whose text ids are generated as prefix + zero-padded number.
var idTables = map[string]struct{}{
	"books":     {},
	"customers": {},
}

const (
	BookIDPrefix     = "B"
	CustomerIDPrefix = "C"
	DefaultIDWidth   = 4
)

// NextID returns prefix+(max numeric suffix + 1) zero-padded to width,
// stepping past any id already in existing.
func NextID(prefix string, width int, existing []string) string {
	if width <= 0 {
		width = DefaultIDWidth
	}
	taken := make(map[string]struct{}, len(existing))
	max := 0
	for _, id := range existing {
		taken[id] = struct{}{}
		rest, ok := strings.CutPrefix(id, prefix)
		if !ok || rest == "" {
			continue
		}
		n, err := strconv.Atoi(rest)
		if err != nil || n < 0 {
			continue
		}
		if n > max {
			max = n
		}
	}
	for n := max + 1; ; n++ {
		id := fmt.Sprintf("%s%0*d", prefix, width, n)
		if _, ok := taken[id]; !ok {
			return id
		}
	}
}

// GenerateUniqueID serializes id allocation per table/prefix with an advisory lock
// held until tx ends, then scans the existing ids.
func GenerateUniqueID(ctx context.Context, tx *sql.Tx, table, prefix string, width int) (string, error) {
	if _, ok := idTables[table]; !ok {
		return "", fmt.Errorf("generate id: unsupported table %q", table)
	}
	if err := dbx.AdvisoryXactLock(ctx, tx, table+":"+prefix); err != nil {
		return "", err
	}

	pattern := "^" + regexp.QuoteMeta(prefix) + "[0-9]+$"
	rows, err := tx.QueryContext(ctx, `SELECT id FROM `+table+` WHERE id ~ $1`, pattern)
	if err != nil {
		return "", fmt.Errorf("generate id: scan %s: %w", table, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}
	return NextID(prefix, width, ids), nil
}
