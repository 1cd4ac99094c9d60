// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/mmynk/billing/internal/models"
	"github.com/mmynk/billing/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// dsnPragmas are applied by the driver to every pooled connection.
const dsnPragmas = "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

const (
	findCustomerQuery = `SELECT customer_id, name FROM customers WHERE email = ? ORDER BY customer_id LIMIT 1`
	insertCustomer    = `INSERT INTO customers (name, email) VALUES (?, ?) RETURNING customer_id`
	insertBill        = `INSERT INTO bills (customer_id, amount, bill_date, time_slot)
		VALUES (?, ?, date('now', 'localtime'), ?) RETURNING bill_id, bill_date`
	listRecordsQuery = `
		SELECT bills.bill_id, customers.name, customers.email, bills.amount, bills.bill_date, bills.time_slot
		FROM bills
		JOIN customers ON bills.customer_id = customers.customer_id
		ORDER BY bills.bill_id`
	deleteBillsByCustomer = `DELETE FROM bills WHERE customer_id = ?`
	deleteCustomerByID    = `DELETE FROM customers WHERE customer_id = ?`
)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+dsnPragmas)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := runMigrations(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// NewWithDB wraps an already opened database. No migrations are run.
func NewWithDB(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveBill finds or creates the customer and inserts the bill in one transaction.
func (s *SQLiteStore) SaveBill(ctx context.Context, customer *models.Customer, bill *models.Bill) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	existing, err := findCustomer(ctx, tx, customer.Email)
	if err != nil {
		return false, err
	}

	created := existing == nil
	if created {
		err = tx.QueryRowContext(ctx, insertCustomer, customer.Name, customer.Email).Scan(&customer.ID)
		if err != nil {
			return false, fmt.Errorf("failed to insert customer: %w", err)
		}
	} else {
		customer.ID = existing.ID
		customer.Name = existing.Name
	}

	bill.CustomerID = customer.ID
	err = tx.QueryRowContext(ctx, insertBill,
		bill.CustomerID, models.FormatAmount(bill.Amount), bill.Time,
	).Scan(&bill.ID, &bill.Date)
	if err != nil {
		return false, fmt.Errorf("failed to insert bill: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return created, nil
}

// ListRecords returns all bills joined with their customers.
func (s *SQLiteStore) ListRecords(ctx context.Context) ([]models.Record, error) {
	rows, err := s.db.QueryContext(ctx, listRecordsQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer rows.Close()

	records := []models.Record{}
	for rows.Next() {
		var r models.Record
		if err := rows.Scan(&r.BillID, &r.CustomerName, &r.Email, &r.Amount, &r.Date, &r.Time); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate records: %w", err)
	}

	return records, nil
}

// DeleteCustomer removes the customer matched by email and their bills.
func (s *SQLiteStore) DeleteCustomer(ctx context.Context, email string) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	existing, err := findCustomer(ctx, tx, email)
	if err != nil {
		return false, err
	}
	if existing == nil {
		return false, nil
	}

	// Bills first: the foreign key rejects deleting a customer that still owns bills.
	if _, err := tx.ExecContext(ctx, deleteBillsByCustomer, existing.ID); err != nil {
		return false, fmt.Errorf("failed to delete bills: %w", err)
	}
	if _, err := tx.ExecContext(ctx, deleteCustomerByID, existing.ID); err != nil {
		return false, fmt.Errorf("failed to delete customer: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return true, nil
}

// findCustomer returns the first customer with the given email, or nil.
func findCustomer(ctx context.Context, tx *sql.Tx, email string) (*models.Customer, error) {
	c := &models.Customer{Email: email}
	err := tx.QueryRowContext(ctx, findCustomerQuery, email).Scan(&c.ID, &c.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find customer by email: %w", err)
	}
	return c, nil
}
