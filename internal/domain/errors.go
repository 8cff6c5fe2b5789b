package domain

import (
	"errors"
	"fmt"
)

// RecordError describes a malformed session record. The book never sees such a record.
type RecordError struct {
	Line  int    // 1-based line number in the session file
	Field string // "id", "side", "quantity", "reference_price"
	Err   error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("line %d: invalid %s: %v", e.Line, e.Field, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return "config error [" + e.Field + "]: " + e.Err.Error()
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

var (
	// ErrInvalidSide is returned when a record's side is neither B nor S.
	ErrInvalidSide = errors.New("invalid side")

	// ErrInvalidQuantity is returned when a quantity is not a positive integer.
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")

	// ErrMissingField is returned when a record has fewer than three fields.
	ErrMissingField = errors.New("missing field")

	// ErrDuplicateOrderID is returned when a session reuses an order id.
	ErrDuplicateOrderID = errors.New("duplicate order id")

	// ErrMissingReferencePrice is returned when the session has no reference price line.
	ErrMissingReferencePrice = errors.New("missing reference price")

	// ErrInvalidReferencePrice is returned when the reference price is unparsable or not positive.
	ErrInvalidReferencePrice = errors.New("reference price must be a positive number")

	// ErrSessionNotFound is returned when the session input cannot be opened.
	ErrSessionNotFound = errors.New("cannot open session input")

	// ErrConfigNotFound is returned when configuration file is missing
	ErrConfigNotFound = errors.New("configuration not found")
)

// IsRecordError reports whether err is (or wraps) a malformed-record error.
func IsRecordError(err error) bool {
	var re *RecordError
	return errors.As(err, &re)
}
