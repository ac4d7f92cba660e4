package sqlconnect

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/5w1tchy/library-api/internal/config"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// ConnectDB opens the pgx-backed pool and fails fast when the server is unreachable.
func ConnectDB(ctx context.Context, cfg config.Database) (*sql.DB, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("DATABASE_URL not set")
	}

	db, err := sql.Open("pgx", cfg.URL)
	if err != nil {
		return nil, err
	}

	timeout := cfg.PingTimeout
	if timeout <= 0 {
		timeout = defaultPingTimeout
	}
	pctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := db.PingContext(pctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	applyPool(db, cfg)
	return db, nil
}
