package model

import "fmt"

// ValidationError reports missing or invalid user input. No state is
// changed when it is returned.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError builds a ValidationError for the given field.
func NewValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// InsufficientStockError is returned when a cut job needs more feet than
// the material has in stock.
type InsufficientStockError struct {
	MaterialID string
	Available  float64 // feet
	Needed     float64 // feet
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for material %s: available %.2fft, needed %.2fft",
		e.MaterialID, e.Available, e.Needed)
}

// NotFoundError is returned when an operation targets a material or job
// that does not exist.
type NotFoundError struct {
	Kind string // "material" or "job"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// AuthorizationError is a user-correctable confirmation failure, such as
// a wrong manager code on a bulk reorder.
type AuthorizationError struct {
	Message string
}

func (e *AuthorizationError) Error() string {
	return e.Message
}
