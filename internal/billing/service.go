// Package billing implements the customer and bill workflows: save a bill,
// list records, export records and delete a customer with their bills.
//
// Inputs are validated before any storage call. Storage faults are wrapped in
// *StorageError, export file faults in *IOError. A delete for an unknown
// email is the NotFound outcome, not an error.
package billing

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/mmynk/billing/internal/export"
	"github.com/mmynk/billing/internal/metrics"
	"github.com/mmynk/billing/internal/middleware"
	"github.com/mmynk/billing/internal/models"
	"github.com/mmynk/billing/internal/storage"
)

// Operation names used in logs, metrics and StorageError.Op.
const (
	OpSaveBill       = "save_bill"
	OpListRecords    = "list_records"
	OpExportRecords  = "export_records"
	OpDeleteCustomer = "delete_customer"
)

// DeleteResult is the outcome of DeleteCustomer.
type DeleteResult int

const (
	Deleted DeleteResult = iota + 1
	NotFound
)

func (r DeleteResult) String() string {
	switch r {
	case Deleted:
		return "deleted"
	case NotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// SavedBill is the result of SaveBill.
type SavedBill struct {
	Bill            models.Bill
	Customer        models.Customer
	CustomerCreated bool
}

// BillingStore is the set of operations offered to a presentation layer.
type BillingStore interface {
	SaveBill(ctx context.Context, name, email, amount string) (*SavedBill, error)
	ListRecords(ctx context.Context) ([]models.Record, error)
	ExportRecords(ctx context.Context, destination string) error
	DeleteCustomer(ctx context.Context, email string) (DeleteResult, error)
}

var _ BillingStore = (*Service)(nil)

// Service implements BillingStore on top of a storage.Store.
type Service struct {
	store   storage.Store
	metrics metrics.Recorder
	logger  *slog.Logger
	now     func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithMetrics reports operation outcomes to m.
func WithMetrics(m metrics.Recorder) Option {
	return func(s *Service) { s.metrics = m }
}

// WithLogger replaces the default slog logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithClock sets the clock used to capture a bill's time of day.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a Service backed by store.
func NewService(store storage.Store, opts ...Option) *Service {
	s := &Service{
		store:   store,
		metrics: metrics.Nop{},
		logger:  slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SaveBill records a bill for the customer identified by email, creating the
// customer on their first bill. The time of day is captured here; the date is
// assigned by the database.
func (s *Service) SaveBill(ctx context.Context, name, email, amount string) (*SavedBill, error) {
	start := time.Now()
	logger := s.log(ctx)

	in := saveBillInput{
		Name:   strings.TrimSpace(name),
		Email:  strings.TrimSpace(email),
		Amount: strings.TrimSpace(amount),
	}
	parsed, err := in.check()
	if err != nil {
		logger.Warn("SaveBill rejected", "email", in.Email, "error", err)
		s.observe(OpSaveBill, metrics.OutcomeInvalid, start)
		return nil, err
	}

	customer := &models.Customer{Name: in.Name, Email: in.Email}
	bill := &models.Bill{
		Amount: parsed,
		Time:   s.now().Format(models.TimeLayout),
	}

	created, err := s.store.SaveBill(ctx, customer, bill)
	if err != nil {
		logger.Error("SaveBill failed", "email", in.Email, "error", err)
		s.observe(OpSaveBill, metrics.OutcomeStorageErr, start)
		return nil, &StorageError{Op: OpSaveBill, Err: err}
	}

	if created {
		s.metrics.IncCustomerCreated()
		logger.Info("New customer added", "customer_id", customer.ID, "email", customer.Email)
	} else {
		logger.Debug("Customer already exists", "customer_id", customer.ID, "email", customer.Email)
	}
	s.metrics.ObserveBillAmount(bill.Amount.InexactFloat64())
	s.observe(OpSaveBill, metrics.OutcomeOK, start)
	logger.Info("Bill saved",
		"bill_id", bill.ID,
		"customer_id", bill.CustomerID,
		"amount", models.FormatAmount(bill.Amount),
		"date", bill.Date,
		"time", bill.Time,
	)

	return &SavedBill{Bill: *bill, Customer: *customer, CustomerCreated: created}, nil
}

// ListRecords returns every bill joined with its customer.
func (s *Service) ListRecords(ctx context.Context) ([]models.Record, error) {
	start := time.Now()
	logger := s.log(ctx)

	records, err := s.store.ListRecords(ctx)
	if err != nil {
		logger.Error("ListRecords failed", "error", err)
		s.observe(OpListRecords, metrics.OutcomeStorageErr, start)
		return nil, &StorageError{Op: OpListRecords, Err: err}
	}

	s.observe(OpListRecords, metrics.OutcomeOK, start)
	logger.Info("ListRecords successful", "count", len(records))
	return records, nil
}

// ExportRecords writes all records to destination, replacing any existing
// file. The extension picks the format; an empty destination writes
// export.DefaultFilename in the working directory.
func (s *Service) ExportRecords(ctx context.Context, destination string) error {
	start := time.Now()
	logger := s.log(ctx)
	if strings.TrimSpace(destination) == "" {
		destination = export.DefaultFilename
	}
	destination = filepath.Clean(destination)

	records, err := s.store.ListRecords(ctx)
	if err != nil {
		logger.Error("ExportRecords failed - could not list records", "error", err)
		s.observe(OpExportRecords, metrics.OutcomeStorageErr, start)
		return &StorageError{Op: OpExportRecords, Err: err}
	}

	if err := export.WriteFile(destination, records); err != nil {
		logger.Error("ExportRecords failed - could not write file", "path", destination, "error", err)
		s.observe(OpExportRecords, metrics.OutcomeIOErr, start)
		return &IOError{Path: destination, Err: err}
	}

	s.observe(OpExportRecords, metrics.OutcomeOK, start)
	logger.Info("Records exported", "path", destination, "rows", len(records))
	return nil
}

// DeleteCustomer removes the customer with the given email and all of their
// bills. An unknown email yields NotFound with a nil error.
func (s *Service) DeleteCustomer(ctx context.Context, email string) (DeleteResult, error) {
	start := time.Now()
	logger := s.log(ctx)

	in := deleteCustomerInput{Email: strings.TrimSpace(email)}
	if err := in.check(); err != nil {
		logger.Warn("DeleteCustomer rejected", "error", err)
		s.observe(OpDeleteCustomer, metrics.OutcomeInvalid, start)
		return 0, err
	}

	found, err := s.store.DeleteCustomer(ctx, in.Email)
	if err != nil {
		logger.Error("DeleteCustomer failed", "email", in.Email, "error", err)
		s.observe(OpDeleteCustomer, metrics.OutcomeStorageErr, start)
		return 0, &StorageError{Op: OpDeleteCustomer, Err: err}
	}
	if !found {
		logger.Warn("Customer not found", "email", in.Email)
		s.observe(OpDeleteCustomer, metrics.OutcomeNotFound, start)
		return NotFound, nil
	}

	s.observe(OpDeleteCustomer, metrics.OutcomeOK, start)
	logger.Info("Customer and associated bills deleted", "email", in.Email)
	return Deleted, nil
}

// log returns the service logger tagged with the caller's request ID, if any.
func (s *Service) log(ctx context.Context) *slog.Logger {
	if id := middleware.GetRequestID(ctx); id != "" {
		return s.logger.With("request_id", id)
	}
	return s.logger
}

func (s *Service) observe(op, outcome string, start time.Time) {
	s.metrics.ObserveOperation(op, outcome, time.Since(start))
}

// IsDuplicate reports whether err came from a uniqueness constraint.
func IsDuplicate(err error) bool {
	return errors.Is(err, storage.ErrDuplicate)
}
