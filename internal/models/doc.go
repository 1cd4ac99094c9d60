// Package models defines the core domain models for the billing service.
//
// # Models
//
//   - Customer: a named, emailed entity that owns zero or more bills
//   - Bill: one billing transaction tied to a customer
//   - Record: a bill joined with its customer's name and email, as listed and exported
//
// # Relationships
//
// A Bill references its Customer by CustomerID. Customers are found by email,
// and when several customers share an email the one with the lowest ID wins.
// Customers are created on the first bill for a new email and are never updated.
package models
