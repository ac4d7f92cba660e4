package loans

import (
	"context"
	"database/sql"
	"time"

	"github.com/5w1tchy/library-api/internal/models"
	"github.com/5w1tchy/library-api/internal/store/books"
	"github.com/5w1tchy/library-api/internal/store/customers"
	"github.com/5w1tchy/library-api/internal/store/dbx"
	"github.com/5w1tchy/library-api/internal/store/issues"
)

// PostgresRepo backs Repo with the issues/books/customers stores.
type PostgresRepo struct {
	*issues.Store
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{Store: issues.New(db), db: db}
}

func (r *PostgresRepo) InTx(ctx context.Context, fn func(Tx) error) error {
	return dbx.WithinTx(ctx, r.db, func(tx *sql.Tx) error {
		return fn(pgTx{tx: tx})
	})
}

type pgTx struct{ tx *sql.Tx }

func (t pgTx) LockBook(ctx context.Context, bookID string) (models.Book, error) {
	return books.LockForLoan(ctx, t.tx, bookID)
}

func (t pgTx) LockCustomer(ctx context.Context, customerID string) (models.Customer, error) {
	return customers.Lock(ctx, t.tx, customerID)
}

func (t pgTx) ActiveLoanCount(ctx context.Context, customerID string) (int, error) {
	return customers.ActiveLoanCount(ctx, t.tx, customerID)
}

func (t pgTx) InsertIssue(ctx context.Context, i models.Issue) (int64, error) {
	return issues.Insert(ctx, t.tx, i)
}

func (t pgTx) AdjustAvailable(ctx context.Context, bookID string, delta int) error {
	return books.AdjustAvailable(ctx, t.tx, bookID, delta)
}

func (t pgTx) LockIssue(ctx context.Context, id int64) (models.Issue, error) {
	return issues.Lock(ctx, t.tx, id)
}

func (t pgTx) MarkReturned(ctx context.Context, id int64, on time.Time) error {
	return issues.MarkReturned(ctx, t.tx, id, on)
}

func (t pgTx) MarkExtended(ctx context.Context, id int64) error {
	return issues.MarkExtended(ctx, t.tx, id)
}
