package books

import (
	"database/sql"

	"github.com/jmoiron/sqlx"
)

// Store is the book repository: catalog reads go through sqlx, writes through database/sql transactions.
type Store struct {
	db *sql.DB
	x  *sqlx.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db, x: sqlx.NewDb(db, "pgx")}
}
