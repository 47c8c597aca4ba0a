package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Input errors
	ErrEmptyInput       = errors.New("empty input sequence")
	ErrEmptyDataset     = errors.New("dataset contains no observations")
	ErrMalformedRecord  = errors.New("malformed observation record")
	ErrUnknownMeasure   = errors.New("unknown measure")
	ErrUnsupportedInput = errors.New("unsupported input format")

	// Design errors
	ErrEmptyCell        = fmt.Errorf("%w: factor cell", ErrEmptyInput)
	ErrUnbalancedDesign = errors.New("unbalanced design: cells have unequal sizes")

	// Storage errors
	ErrNotFound = errors.New("resource not found")
)

// Error constructors with context
func NewMalformedRecordError(line int, field string, err error) error {
	return fmt.Errorf("%w: line %d field %s: %v", ErrMalformedRecord, line, field, err)
}

func NewUnbalancedDesignError(sizes map[string]int) error {
	return fmt.Errorf("%w: %v", ErrUnbalancedDesign, sizes)
}

func NewUnknownMeasureError(key string) error {
	return fmt.Errorf("%w: %q", ErrUnknownMeasure, key)
}

func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsInputError(err error) bool {
	return errors.Is(err, ErrEmptyInput) ||
		errors.Is(err, ErrEmptyDataset) ||
		errors.Is(err, ErrMalformedRecord) ||
		errors.Is(err, ErrUnknownMeasure) ||
		errors.Is(err, ErrUnsupportedInput)
}

func IsDesignError(err error) bool {
	return errors.Is(err, ErrEmptyCell) ||
		errors.Is(err, ErrUnbalancedDesign)
}
