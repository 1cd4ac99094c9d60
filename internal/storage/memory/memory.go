// Package memory provides an in-process storage.Store for tests and demos.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/mmynk/billing/internal/models"
	"github.com/mmynk/billing/internal/storage"
)

var _ storage.Store = (*Store)(nil)

// Store keeps customers and bills in maps keyed by ID.
type Store struct {
	mu        sync.Mutex
	customers map[int64]models.Customer
	bills     map[int64]models.Bill
	nextCust  int64
	nextBill  int64
	today     func() time.Time

	// FailNext, when set, is returned by the next operation instead of
	// touching any data. It is cleared once returned.
	FailNext error
}

// New returns an empty store.
func New() *Store {
	return &Store{
		customers: make(map[int64]models.Customer),
		bills:     make(map[int64]models.Bill),
		today:     time.Now,
	}
}

// Close is a no-op.
func (s *Store) Close() error { return nil }

func (s *Store) takeFailure() error {
	err := s.FailNext
	s.FailNext = nil
	return err
}

// findLocked returns the lowest-ID customer with the email. Callers hold mu.
func (s *Store) findLocked(email string) (models.Customer, bool) {
	var (
		best  models.Customer
		found bool
	)
	for _, c := range s.customers {
		if c.Email == email && (!found || c.ID < best.ID) {
			best, found = c, true
		}
	}
	return best, found
}

// SaveBill finds or creates the customer and appends the bill.
func (s *Store) SaveBill(ctx context.Context, customer *models.Customer, bill *models.Bill) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return false, err
	}

	existing, ok := s.findLocked(customer.Email)
	if ok {
		customer.ID = existing.ID
		customer.Name = existing.Name
	} else {
		s.nextCust++
		customer.ID = s.nextCust
		s.customers[customer.ID] = *customer
	}

	s.nextBill++
	bill.ID = s.nextBill
	bill.CustomerID = customer.ID
	bill.Date = s.today().Format(models.DateLayout)
	s.bills[bill.ID] = *bill

	return !ok, nil
}

// ListRecords returns bills joined with customers ordered by bill ID.
func (s *Store) ListRecords(ctx context.Context) ([]models.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return nil, err
	}

	records := make([]models.Record, 0, len(s.bills))
	for _, b := range s.bills {
		c := s.customers[b.CustomerID]
		records = append(records, models.Record{
			BillID:       b.ID,
			CustomerName: c.Name,
			Email:        c.Email,
			Amount:       b.Amount,
			Date:         b.Date,
			Time:         b.Time,
		})
	}
	sort.Slice(records, func(i, j int) bool { return records[i].BillID < records[j].BillID })
	return records, nil
}

// DeleteCustomer removes the matched customer and their bills.
func (s *Store) DeleteCustomer(ctx context.Context, email string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return false, err
	}

	c, ok := s.findLocked(email)
	if !ok {
		return false, nil
	}
	for id, b := range s.bills {
		if b.CustomerID == c.ID {
			delete(s.bills, id)
		}
	}
	delete(s.customers, c.ID)
	return true, nil
}

// Counts reports the number of stored customers and bills.
func (s *Store) Counts() (customers, bills int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.customers), len(s.bills)
}

// AddCustomer inserts a customer row directly, bypassing find-or-create.
// It exists to seed duplicate emails.
func (s *Store) AddCustomer(name, email string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextCust++
	s.customers[s.nextCust] = models.Customer{ID: s.nextCust, Name: name, Email: email}
	return s.nextCust
}
