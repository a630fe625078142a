package nutrition

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrUnrecognizedEnum   = errors.New("unrecognized enum value")
	ErrInvalidMeasurement = errors.New("invalid measurement")
)

// FieldError names the offending input field. Reason is safe to show to end users.
type FieldError struct {
	Field  string
	Reason string
	kind   error
}

func (err *FieldError) Error() string {
	return err.Field + " " + err.Reason
}

func (err *FieldError) Unwrap() error {
	return err.kind
}

func missingField(field string) *FieldError {
	return &FieldError{Field: field, Reason: "is required", kind: ErrInvalidInput}
}

func notFinite(field string) *FieldError {
	return &FieldError{Field: field, Reason: "must be a finite number", kind: ErrInvalidInput}
}

func outOfRange(field string, min float64, max float64) *FieldError {
	return &FieldError{
		Field:  field,
		Reason: fmt.Sprintf("must be between %g and %g", min, max),
		kind:   ErrInvalidInput,
	}
}

func notWholeNumber(field string) *FieldError {
	return &FieldError{Field: field, Reason: "must be a whole number", kind: ErrInvalidInput}
}

func unknownEnum(field string, allowed string) *FieldError {
	return &FieldError{Field: field, Reason: "must be one of: " + allowed, kind: ErrUnrecognizedEnum}
}

// NewFieldError builds an input error for callers that parse raw values
// before handing them to Validate.
func NewFieldError(field string, reason string) *FieldError {
	return &FieldError{Field: field, Reason: reason, kind: ErrInvalidInput}
}
