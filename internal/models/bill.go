package models

import "github.com/shopspring/decimal"

const (
	// DateLayout is the format of Bill.Date.
	DateLayout = "2006-01-02"
	// TimeLayout is the format of Bill.Time.
	TimeLayout = "15:04:05"

	// AmountScale is the number of decimal places an amount carries.
	AmountScale = 2
)

// MaxAmount is the exclusive upper bound of an amount (NUMERIC(14,2)).
var MaxAmount = decimal.New(1, 12)

// FormatAmount renders d with exactly AmountScale decimal places.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(AmountScale)
}

// Bill represents one billing transaction.
type Bill struct {
	// ID is assigned by the database on insert.
	ID int64

	// CustomerID references the owning Customer.
	CustomerID int64

	// Amount is the billed amount.
	Amount decimal.Decimal

	// Date is the calendar date the database assigned at insert (DateLayout).
	Date string

	// Time is the wall-clock time captured by the caller at save (TimeLayout).
	Time string
}

// Record is a Bill joined with its Customer, one row of a listing or export.
type Record struct {
	BillID       int64
	CustomerName string
	Email        string
	Amount       decimal.Decimal
	Date         string
	Time         string
}
