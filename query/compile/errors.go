package compile

import "errors"

var (
	// ErrMalformedExpression is returned when an expression cannot be
	// rendered, e.g. its placeholder count differs from its argument count.
	ErrMalformedExpression = errors.New("compile: malformed expression")

	// ErrUnsupportedValue is returned when a value has no SphinxQL literal
	// form.
	ErrUnsupportedValue = errors.New("compile: unsupported value")

	// ErrInvalidStatement is returned for statements the compiler cannot
	// handle: nil, unknown kinds, or missing required parts.
	ErrInvalidStatement = errors.New("compile: invalid statement")
)
