package billing

import "fmt"

// DuplicateError reports an attempt to insert a second bill for a period that
// already has one. It carries the conflicting key for user-facing messages.
type DuplicateError struct {
	UserNumber string
	Month      int
	Year       int
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("record already exists for %s in %d/%d", e.UserNumber, e.Month, e.Year)
}

// ValidationError reports a bad input field, raised before any store call.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
