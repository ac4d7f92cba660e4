package customers

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/5w1tchy/library-api/internal/apperr"
	"github.com/5w1tchy/library-api/internal/models"
	"github.com/5w1tchy/library-api/internal/store/dbx"
	"github.com/5w1tchy/library-api/internal/store/shared"
	"github.com/jmoiron/sqlx"
)

const selectCols = `SELECT id, name, address, zip, city, phone, email FROM customers`

type row struct {
	ID      string         `db:"id"`
	Name    string         `db:"name"`
	Address sql.NullString `db:"address"`
	Zip     sql.NullInt64  `db:"zip"`
	City    sql.NullString `db:"city"`
	Phone   sql.NullString `db:"phone"`
	Email   sql.NullString `db:"email"`
}

func (r row) toModel() models.Customer {
	c := models.Customer{
		ID:      r.ID,
		Name:    r.Name,
		Address: optString(r.Address),
		City:    optString(r.City),
		Phone:   optString(r.Phone),
		Email:   optString(r.Email),
	}
	if r.Zip.Valid {
		z := int(r.Zip.Int64)
		c.Zip = &z
	}
	return c
}

func optString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

type Store struct {
	db *sql.DB
	x  *sqlx.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db, x: sqlx.NewDb(db, "pgx")}
}

func (s *Store) All(ctx context.Context) ([]models.Customer, error) {
	return s.selectMany(ctx, selectCols+` ORDER BY name, id`)
}

// Search matches id, name or email by substring. An empty term lists everyone.
func (s *Store) Search(ctx context.Context, term string) ([]models.Customer, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return s.All(ctx)
	}
	return s.selectMany(ctx, selectCols+`
WHERE id ILIKE $1 OR name ILIKE $1 OR email ILIKE $1
ORDER BY name, id`, "%"+term+"%")
}

func (s *Store) selectMany(ctx context.Context, query string, args ...any) ([]models.Customer, error) {
	var rows []row
	if err := s.x.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	out := make([]models.Customer, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toModel())
	}
	return out, nil
}

func (s *Store) Get(ctx context.Context, id string) (models.Customer, error) {
	return Get(ctx, s.db, id)
}

// Get loads one customer through q so loan transactions can read inside their tx.
func Get(ctx context.Context, q dbx.DBTX, id string) (models.Customer, error) {
	var r row
	err := q.QueryRowContext(ctx, selectCols+` WHERE id = $1`, id).
		Scan(&r.ID, &r.Name, &r.Address, &r.Zip, &r.City, &r.Phone, &r.Email)
	if err != nil {
		return models.Customer{}, dbx.MapPGError(err)
	}
	return r.toModel(), nil
}

// Lock reads the customer FOR UPDATE, serializing concurrent loans for the same customer.
func Lock(ctx context.Context, q dbx.DBTX, id string) (models.Customer, error) {
	var r row
	err := q.QueryRowContext(ctx, selectCols+` WHERE id = $1 FOR UPDATE`, id).
		Scan(&r.ID, &r.Name, &r.Address, &r.Zip, &r.City, &r.Phone, &r.Email)
	if err != nil {
		return models.Customer{}, dbx.MapPGError(err)
	}
	return r.toModel(), nil
}

// Create inserts c, generating the next C#### id when c.ID is empty.
func (s *Store) Create(ctx context.Context, c models.Customer) (string, error) {
	var id string
	err := dbx.WithinTx(ctx, s.db, func(tx *sql.Tx) error {
		id = strings.TrimSpace(c.ID)
		if id == "" {
			var err error
			if id, err = shared.GenerateUniqueID(ctx, tx, "customers", shared.CustomerIDPrefix, shared.DefaultIDWidth); err != nil {
				return err
			}
		}
		_, err := tx.ExecContext(ctx, `
INSERT INTO customers (id, name, address, zip, city, phone, email)
VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			id, c.Name,
			shared.NullIfNil(c.Address), shared.NullIfNil(c.Zip), shared.NullIfNil(c.City),
			shared.NullIfNil(c.Phone), shared.NullIfNil(c.Email))
		if err != nil {
			return fmt.Errorf("insert customer %s: %w", id, dbx.MapPGError(err))
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) Update(ctx context.Context, c models.Customer) error {
	res, err := s.db.ExecContext(ctx, `
UPDATE customers
SET name = $2, address = $3, zip = $4, city = $5, phone = $6, email = $7
WHERE id = $1`,
		c.ID, c.Name,
		shared.NullIfNil(c.Address), shared.NullIfNil(c.Zip), shared.NullIfNil(c.City),
		shared.NullIfNil(c.Phone), shared.NullIfNil(c.Email))
	if err != nil {
		return fmt.Errorf("update customer %s: %w", c.ID, dbx.MapPGError(err))
	}
	return dbx.MapPGError(dbx.Affected(res))
}

// Delete refuses with apperr.ErrActiveLoans while the customer holds issued books.
func (s *Store) Delete(ctx context.Context, id string) error {
	return dbx.WithinTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `SELECT 1 FROM customers WHERE id = $1 FOR UPDATE`, id); err != nil {
			return err
		}
		n, err := ActiveLoanCount(ctx, tx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return apperr.ErrActiveLoans
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM customers WHERE id = $1`, id)
		if err != nil {
			return err
		}
		return dbx.MapPGError(dbx.Affected(res))
	})
}

// ActiveLoanCount counts the customer's issues still in status issued.
func ActiveLoanCount(ctx context.Context, q dbx.DBTX, customerID string) (int, error) {
	var n int
	err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM issues WHERE customer_id = $1 AND status = 'issued'`, customerID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count active loans for %s: %w", customerID, err)
	}
	return n, nil
}
