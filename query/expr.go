package query

import "strings"

// Expr is the interface for every fragment that can be rendered into a
// SphinxQL statement: raw expressions, predicates and predicate sets.
type Expr interface {
	exprNode() // marker method to identify expression types
}

// Identifier marks an expression argument that must be rendered as a quoted
// identifier instead of a value.
type Identifier string

// Literal marks an expression argument that is inserted verbatim.
type Literal string

// Expression is a raw SQL fragment. Every '?' in Text is replaced by the
// argument at the same position. Arguments are rendered by their Go type:
//
//   - Identifier: quoted identifier
//   - Literal: inserted as-is
//   - Expr: rendered recursively
//   - *Select: compiled as a parenthesized sub-query
//   - slices (except []byte): parenthesized, comma-separated value list
//   - anything else: a value (placeholder or quoted literal)
//
// An Expression without arguments is emitted as-is, whatever its text.
type Expression struct {
	Text string
	Args []any
}

func (*Expression) exprNode() {}

// Expression returns e, so a raw expression can be used as a predicate.
func (e *Expression) Expression() *Expression { return e }

// NewExpression builds an Expression from a template and its arguments.
func NewExpression(text string, args ...any) *Expression {
	return &Expression{Text: text, Args: args}
}

// Raw builds an argument-free expression emitted verbatim.
func Raw(text string) *Expression {
	return &Expression{Text: text}
}

// Placeholders counts the '?' markers in the template.
func (e *Expression) Placeholders() int {
	return strings.Count(e.Text, "?")
}

// Column is one entry of the select list.
type Column struct {
	// Alias is the explicit AS name, empty when none was given.
	Alias string

	// Value is a column name (string) or an Expr.
	Value any
}

// As builds an aliased column. value is a column name or an Expr.
func As(alias string, value any) Column {
	return Column{Alias: alias, Value: value}
}

// Compile-time interface checks
var (
	_ Expr      = (*Expression)(nil)
	_ Predicate = (*Expression)(nil)
)
