package compile

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/shipq/sphinxql/query"
)

// state holds the mutable state of one compilation. Sub-queries get a copy
// that shares the parameter container and counters, so parameter names stay
// unique across the whole statement.
type state struct {
	driver     Driver              // nil when compiling to literal SQL
	params     *ParameterContainer // nil when compiling to literal SQL
	counters   map[string]int
	subselects *int
	prefix     string

	// open holds the selects being compiled, outermost first.
	open map[*query.Select]bool
}

func newState(d Driver, params *ParameterContainer) *state {
	return &state{
		driver:     d,
		params:     params,
		counters:   make(map[string]int),
		subselects: new(int),
		open:       make(map[*query.Select]bool),
	}
}

func (st *state) prepared() bool { return st.params != nil }

// nextName returns prefix followed by the next number for that prefix.
func (st *state) nextName(prefix string) string {
	full := st.prefix + prefix
	st.counters[full]++
	return full + strconv.Itoa(st.counters[full])
}

// bind registers value and returns its placeholder token.
func (st *state) bind(name string, value any) string {
	st.params.Set(name, value)
	return st.driver.FormatParameterName(name)
}

// sub returns the state for the next sub-query.
func (st *state) sub() *state {
	*st.subselects++
	child := *st
	child.prefix = "subselect" + strconv.Itoa(*st.subselects)
	return &child
}

// DecoratedExpr wraps an expression so that every identifier and value it
// emits goes through a Platform, and every value placeholder is registered
// under a clause-scoped name.
type DecoratedExpr struct {
	query.Expr
	platform Platform
}

// Decorate wraps e for rendering with p. Decorating a *DecoratedExpr returns
// it unchanged.
func Decorate(e query.Expr, p Platform) *DecoratedExpr {
	if d, ok := e.(*DecoratedExpr); ok {
		return d
	}
	if p == nil {
		p = SphinxQL
	}
	return &DecoratedExpr{Expr: e, platform: p}
}

// Platform returns the platform the expression renders with.
func (d *DecoratedExpr) Platform() Platform { return d.platform }

// Unwrap returns the decorated expression.
func (d *DecoratedExpr) Unwrap() query.Expr { return d.Expr }

// SQL renders the expression. With a nil container every value is inlined
// as a literal; otherwise values become placeholders formatted by drv and
// registered as prefix1, prefix2, ...
func (d *DecoratedExpr) SQL(params *ParameterContainer, drv Driver, prefix string) (string, error) {
	if params != nil && drv == nil {
		drv = Positional
	}
	return d.render(newState(drv, params), prefix)
}

func (d *DecoratedExpr) render(st *state, prefix string) (string, error) {
	if prefix == "" {
		prefix = "expr"
	}
	switch e := d.Expr.(type) {
	case nil:
		return "", fmt.Errorf("%w: nil expression", ErrMalformedExpression)
	case *query.Where:
		return d.renderSet(st, e, prefix)
	case query.Predicate:
		expr := e.Expression()
		if expr == nil {
			return "", fmt.Errorf("%w: %T lowered to nil", ErrMalformedExpression, e)
		}
		return d.renderTemplate(st, expr, prefix)
	}
	return "", fmt.Errorf("%w: cannot render %T", ErrMalformedExpression, d.Expr)
}

func (d *DecoratedExpr) renderNested(st *state, e query.Expr, prefix string) (string, error) {
	return Decorate(e, d.platform).render(st, prefix)
}

func (d *DecoratedExpr) renderSet(st *state, w *query.Where, prefix string) (string, error) {
	var b strings.Builder
	for _, part := range w.Parts() {
		var sql string
		var err error
		if set, ok := part.Expr.(*query.Where); ok {
			if set.IsEmpty() {
				continue
			}
			sql, err = d.renderSet(st, set, prefix)
			sql = "(" + sql + ")"
		} else {
			sql, err = d.renderNested(st, part.Expr, prefix)
		}
		if err != nil {
			return "", err
		}
		if b.Len() > 0 {
			conj := part.Conjunction
			if conj == "" {
				conj = query.And
			}
			b.WriteString(" " + string(conj) + " ")
		}
		b.WriteString(sql)
	}
	return b.String(), nil
}

func (d *DecoratedExpr) renderTemplate(st *state, e *query.Expression, prefix string) (string, error) {
	if len(e.Args) == 0 {
		return e.Text, nil
	}
	if n := e.Placeholders(); n != len(e.Args) {
		return "", fmt.Errorf("%w: %q has %d placeholders but %d arguments", ErrMalformedExpression, e.Text, n, len(e.Args))
	}
	chunks := strings.Split(e.Text, "?")
	var b strings.Builder
	b.WriteString(chunks[0])
	for i, arg := range e.Args {
		sql, err := d.renderArg(st, arg, prefix)
		if err != nil {
			return "", err
		}
		b.WriteString(sql)
		b.WriteString(chunks[i+1])
	}
	return b.String(), nil
}

func (d *DecoratedExpr) renderArg(st *state, arg any, prefix string) (string, error) {
	switch v := arg.(type) {
	case query.Identifier:
		return d.platform.QuoteIdentifier(string(v)), nil
	case query.Literal:
		return string(v), nil
	case *query.Select:
		if v == nil {
			return "", fmt.Errorf("%w: nil sub-query", ErrMalformedExpression)
		}
		sql, err := NewCompiler(d.platform).selectSQL(st.sub(), v)
		if err != nil {
			return "", err
		}
		return "(" + sql + ")", nil
	case query.Expr:
		return d.renderNested(st, v, prefix)
	}
	if rv, ok := isList(arg); ok {
		if rv.Len() == 0 {
			return "", fmt.Errorf("%w: empty value list", ErrMalformedExpression)
		}
		parts := make([]string, rv.Len())
		for i := range parts {
			sql, err := d.renderValue(st, rv.Index(i).Interface(), prefix)
			if err != nil {
				return "", err
			}
			parts[i] = sql
		}
		return "(" + strings.Join(parts, ", ") + ")", nil
	}
	return d.renderValue(st, arg, prefix)
}

func (d *DecoratedExpr) renderValue(st *state, v any, prefix string) (string, error) {
	if !st.prepared() || (isFloat(v) && d.platform.FloatAsLiteral()) {
		return d.platform.QuoteValue(v)
	}
	return st.bind(st.nextName(prefix), v), nil
}

func isFloat(v any) bool {
	switch reflect.ValueOf(v).Kind() {
	case reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

var _ query.Expr = (*DecoratedExpr)(nil)
