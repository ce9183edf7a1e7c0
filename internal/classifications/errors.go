package classifications

import "errors"

var (
	// ErrNotFound indicates a classification was not found.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates validation or bad input.
	ErrInvalidInput = errors.New("invalid input")
)
