package billing

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidation matches any ValidationErrors value.
	ErrValidation = errors.New("validation failed")

	// ErrStorage matches any *StorageError.
	ErrStorage = errors.New("storage failure")

	// ErrIO matches any *IOError.
	ErrIO = errors.New("export file failure")
)

// FieldError describes one rejected input.
type FieldError struct {
	Field   string
	Message string
}

// ValidationErrors is returned when inputs are missing or malformed. No
// storage call has been made when it is returned.
type ValidationErrors []FieldError

func (e ValidationErrors) Error() string {
	switch len(e) {
	case 0:
		return ErrValidation.Error()
	case 1:
		return fmt.Sprintf("validation failed: %s %s", e[0].Field, e[0].Message)
	}
	parts := make([]string, len(e))
	for i, fe := range e {
		parts[i] = fe.Field + " " + fe.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e ValidationErrors) Is(target error) bool {
	return target == ErrValidation
}

// Add appends a field error.
func (e *ValidationErrors) Add(field, message string) {
	*e = append(*e, FieldError{Field: field, Message: message})
}

// Fields lists the rejected field names in order.
func (e ValidationErrors) Fields() []string {
	fields := make([]string, len(e))
	for i, fe := range e {
		fields[i] = fe.Field
	}
	return fields
}

// StorageError wraps a database fault. For writes the transaction was rolled back.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error in %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool { return target == ErrStorage }

// IOError wraps a failure writing an export file.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("export to %s failed: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

func (e *IOError) Is(target error) bool { return target == ErrIO }
