package exhibitions

import (
	"context"
	"database/sql"

	"github.com/5w1tchy/library-api/internal/models"
	"github.com/5w1tchy/library-api/internal/store/books"
	"github.com/5w1tchy/library-api/internal/store/dbx"
	"github.com/5w1tchy/library-api/internal/store/exhibitions"
)

type PostgresRepo struct {
	*exhibitions.Store
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{Store: exhibitions.New(db), db: db}
}

func (r *PostgresRepo) InTx(ctx context.Context, fn func(Tx) error) error {
	return dbx.WithinTx(ctx, r.db, func(tx *sql.Tx) error {
		return fn(pgTx{tx: tx})
	})
}

type pgTx struct{ tx *sql.Tx }

func (t pgTx) Exhibition(ctx context.Context, id int64) (models.Exhibition, error) {
	return exhibitions.Get(ctx, t.tx, id, true)
}

func (t pgTx) BookExists(ctx context.Context, bookID string) (bool, error) {
	return books.Exists(ctx, t.tx, bookID)
}

func (t pgTx) CountBooks(ctx context.Context, exhibitionID int64) (int, error) {
	return exhibitions.CountBooks(ctx, t.tx, exhibitionID)
}

func (t pgTx) HasBook(ctx context.Context, exhibitionID int64, bookID string) (bool, error) {
	return exhibitions.HasBook(ctx, t.tx, exhibitionID, bookID)
}

func (t pgTx) NextOrder(ctx context.Context, exhibitionID int64) (int, error) {
	return exhibitions.NextOrder(ctx, t.tx, exhibitionID)
}

func (t pgTx) UpsertBook(ctx context.Context, exhibitionID int64, bookID string, order int) error {
	return exhibitions.UpsertBook(ctx, t.tx, exhibitionID, bookID, order)
}

func (t pgTx) RemoveBook(ctx context.Context, exhibitionID int64, bookID string) error {
	return exhibitions.RemoveBook(ctx, t.tx, exhibitionID, bookID)
}

func (t pgTx) SetOrder(ctx context.Context, exhibitionID int64, bookID string, order int) error {
	return exhibitions.SetOrder(ctx, t.tx, exhibitionID, bookID, order)
}
