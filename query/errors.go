package query

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument is returned when a builder method receives a value
	// of the wrong type or shape.
	ErrInvalidArgument = errors.New("query: invalid argument")

	// ErrReadOnly is returned when a statement created with a fixed table is
	// asked to change or reset that table.
	ErrReadOnly = errors.New("query: read-only table")
)

func invalidArgument(op, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidArgument, op, fmt.Sprintf(format, args...))
}

func readOnly(op string) error {
	return fmt.Errorf("%w: %s: table was fixed at construction", ErrReadOnly, op)
}
