package models

// Customer represents a billed person.
type Customer struct {
	// ID is assigned by the database on insert.
	ID int64

	// Name is the display name captured on the customer's first bill.
	Name string

	// Email is the lookup key for find-or-create. It is not unique in the
	// schema; lookups return the lowest ID among matches.
	Email string
}
