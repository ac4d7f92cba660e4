package sqlconnect

import (
	"database/sql"
	"time"

	"github.com/5w1tchy/library-api/internal/config"
)

const defaultPingTimeout = 3 * time.Second

func applyPool(db *sql.DB, cfg config.Database) {
	db.SetMaxOpenConns(orInt(cfg.MaxOpenConns, 10))
	db.SetMaxIdleConns(orInt(cfg.MaxIdleConns, 10))
	db.SetConnMaxIdleTime(orDuration(cfg.ConnMaxIdleTime, 5*time.Minute))
	db.SetConnMaxLifetime(orDuration(cfg.ConnMaxLifetime, 30*time.Minute))
}

func orInt(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}

func orDuration(v, def time.Duration) time.Duration {
	if v > 0 {
		return v
	}
	return def
}
