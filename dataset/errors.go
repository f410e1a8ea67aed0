package dataset

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedData     = errors.New("unsupported data")
	ErrValidation          = errors.New("validation failed")
	ErrIndexOutOfRange     = errors.New("index out of range")
	ErrNotFound            = errors.New("dataset not found")
	ErrCategoryUnsupported = errors.New("category lookup is not supported")
	ErrLabelOutOfRange     = errors.New("label out of range")
)

// UnsupportedDataError is returned when raw data can't be interpreted as points.
type UnsupportedDataError struct {
	Message string
}

func (e *UnsupportedDataError) Error() string {
	if e.Message == "" {
		return "datatype not understood for dataset"
	}
	return e.Message
}

func (e *UnsupportedDataError) Is(target error) bool {
	return target == ErrUnsupportedData
}

func unsupported(format string, args ...any) error {
	return &UnsupportedDataError{Message: fmt.Sprintf(format, args...)}
}

// ValidationError is returned by constructors on inconsistent user input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

func checkIndex(i, n int) error {
	if i < 0 || i >= n {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, i, n)
	}
	return nil
}
