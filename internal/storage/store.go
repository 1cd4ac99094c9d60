// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/billing/internal/models"
)

// ErrDuplicate is wrapped by stores when the database rejects a write on a
// uniqueness constraint.
var ErrDuplicate = errors.New("duplicate record")

// Store defines the interface for customer and bill persistence.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, memory)
// without changing the billing layer.
type Store interface {
	// SaveBill looks up the customer by email and reuses it, or inserts
	// customer as a new row. It then inserts bill for that customer. Both
	// writes commit together or not at all.
	// On success customer.ID, bill.ID, bill.CustomerID and bill.Date are set,
	// and created reports whether a new customer row was inserted.
	SaveBill(ctx context.Context, customer *models.Customer, bill *models.Bill) (created bool, err error)

	// ListRecords returns every bill joined with its customer, ordered by bill ID.
	// Returns an empty slice when there are no bills.
	ListRecords(ctx context.Context) ([]models.Record, error)

	// DeleteCustomer removes the customer found by email and all of their
	// bills in one transaction. found is false when no customer matches,
	// in which case nothing is written.
	DeleteCustomer(ctx context.Context, email string) (found bool, err error)

	// Close releases any resources held by the store.
	Close() error
}
