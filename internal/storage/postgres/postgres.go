// Package postgres provides a PostgreSQL-backed implementation of the storage.Store interface.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/mmynk/billing/internal/models"
	"github.com/mmynk/billing/internal/storage"
)

var _ storage.Store = (*PostgresStore)(nil)

const (
	findCustomerQuery = `SELECT customer_id, name FROM customers WHERE email = $1 ORDER BY customer_id LIMIT 1`
	insertCustomer    = `INSERT INTO customers (name, email) VALUES ($1, $2) RETURNING customer_id`
	insertBill        = `INSERT INTO bills (customer_id, amount, bill_date, time_slot)
		VALUES ($1, $2, CURRENT_DATE, $3) RETURNING bill_id, to_char(bill_date, 'YYYY-MM-DD')`
	listRecordsQuery = `
		SELECT b.bill_id, c.name, c.email, b.amount::text, to_char(b.bill_date, 'YYYY-MM-DD'), b.time_slot
		FROM bills b
		JOIN customers c ON b.customer_id = c.customer_id
		ORDER BY b.bill_id`
	deleteBillsByCustomer = `DELETE FROM bills WHERE customer_id = $1`
	deleteCustomerByID    = `DELETE FROM customers WHERE customer_id = $1`
)

// PostgresStore implements storage.Store on a pgx connection pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// New connects to PostgreSQL, verifies the connection and ensures the schema exists.
func New(ctx context.Context, connString string) (*PostgresStore, error) {
	slog.Info("Connecting to PostgreSQL")

	poolConfig, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse connection string: %w", err)
	}

	poolConfig.MaxConns = 10
	poolConfig.MinConns = 1
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	if err := runMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	slog.Info("Successfully connected to PostgreSQL")
	return &PostgresStore{pool: pool}, nil
}

// Close closes the pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// SaveBill finds or creates the customer and inserts the bill in one transaction.
func (s *PostgresStore) SaveBill(ctx context.Context, customer *models.Customer, bill *models.Bill) (bool, error) {
	var created bool
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		existing, err := findCustomer(ctx, tx, customer.Email)
		if err != nil {
			return err
		}

		created = existing == nil
		if created {
			if err := tx.QueryRow(ctx, insertCustomer, customer.Name, customer.Email).Scan(&customer.ID); err != nil {
				return fmt.Errorf("failed to insert customer: %w", mapError(err))
			}
		} else {
			customer.ID = existing.ID
			customer.Name = existing.Name
		}

		bill.CustomerID = customer.ID
		err = tx.QueryRow(ctx, insertBill, bill.CustomerID, models.FormatAmount(bill.Amount), bill.Time).
			Scan(&bill.ID, &bill.Date)
		if err != nil {
			return fmt.Errorf("failed to insert bill: %w", mapError(err))
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return created, nil
}

// ListRecords returns all bills joined with their customers.
func (s *PostgresStore) ListRecords(ctx context.Context) ([]models.Record, error) {
	rows, err := s.pool.Query(ctx, listRecordsQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer rows.Close()

	records := []models.Record{}
	for rows.Next() {
		var (
			r      models.Record
			amount string
		)
		if err := rows.Scan(&r.BillID, &r.CustomerName, &r.Email, &amount, &r.Date, &r.Time); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		if r.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("failed to parse amount %q: %w", amount, err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate records: %w", err)
	}

	return records, nil
}

// DeleteCustomer removes the customer matched by email and their bills.
func (s *PostgresStore) DeleteCustomer(ctx context.Context, email string) (bool, error) {
	var found bool
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		existing, err := findCustomer(ctx, tx, email)
		if err != nil || existing == nil {
			return err
		}
		found = true

		if _, err := tx.Exec(ctx, deleteBillsByCustomer, existing.ID); err != nil {
			return fmt.Errorf("failed to delete bills: %w", err)
		}
		if _, err := tx.Exec(ctx, deleteCustomerByID, existing.ID); err != nil {
			return fmt.Errorf("failed to delete customer: %w", err)
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return found, nil
}

func findCustomer(ctx context.Context, tx pgx.Tx, email string) (*models.Customer, error) {
	c := &models.Customer{Email: email}
	err := tx.QueryRow(ctx, findCustomerQuery, email).Scan(&c.ID, &c.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find customer by email: %w", err)
	}
	return c, nil
}

// mapError translates constraint violations into storage sentinels.
func mapError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return fmt.Errorf("%w: %s", storage.ErrDuplicate, pgErr.ConstraintName)
	}
	return err
}
