// Package schema bootstraps the library tables on an empty database.
package schema

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
)

//go:embed schema.sql
var DDL string

// Apply runs the idempotent DDL in one statement batch.
func Apply(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, DDL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	slog.Default().Info("schema applied", "component", "schema")
	return nil
}
