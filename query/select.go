package query

import (
	"errors"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// Field names one piece of a Select's state for Reset and RawState.
type Field string

const (
	FieldTable            Field = "table"
	FieldColumns          Field = "columns"
	FieldWhere            Field = "where"
	FieldGroup            Field = "group"
	FieldWithinGroupOrder Field = "withingrouporder"
	FieldHaving           Field = "having"
	FieldOrder            Field = "order"
	FieldLimit            Field = "limit"
	FieldOffset           Field = "offset"
	FieldOption           Field = "option"
	FieldJoins            Field = "joins"
	FieldQuantifier       Field = "quantifier"
	FieldCombine          Field = "combine"
)

// Quantifiers accepted by Quantifier. searchd supports neither.
const (
	QuantifierDistinct = "DISTINCT"
	QuantifierAll      = "ALL"
)

// Join records a Join call. Joins are never compiled.
type Join struct {
	Table   any
	On      any
	Columns []any
}

// Combination records a Combine call. Combinations are never compiled.
type Combination struct {
	Select   *Select
	Type     string
	Modifier string
}

// Ignored reports which relational features were requested on a Select.
// searchd cannot run them, so the compiler drops them.
type Ignored struct {
	Joins      int
	Quantifier bool
	Combine    bool
}

// Any reports whether any ignored feature was requested.
func (i Ignored) Any() bool {
	return i.Joins > 0 || i.Quantifier || i.Combine
}

func (i Ignored) String() string {
	var parts []string
	if i.Joins > 0 {
		parts = append(parts, "join x"+strconv.Itoa(i.Joins))
	}
	if i.Quantifier {
		parts = append(parts, "quantifier")
	}
	if i.Combine {
		parts = append(parts, "combine")
	}
	return strings.Join(parts, ", ")
}

// State is a read-only snapshot of everything the compiler consumes.
type State struct {
	// Table is nil, a string (possibly comma-separated), a []string or a
	// *Select.
	Table            any
	Columns          []Column
	Where            *Where
	Group            []any // string or Expr per entry
	WithinGroupOrder []Ordering
	Having           *Where
	Order            []Ordering
	Limit            *int
	Offset           *int
	Options          Options
}

// Select builds a SphinxQL SELECT statement.
//
// Methods return the receiver so calls chain. A misuse leaves the state
// unchanged and is recorded: Err reports it right away and compilation
// refuses to run.
type Select struct {
	state      State
	tableFixed bool

	joins      []Join
	quantifier any
	combine    *Combination

	err error
}

// NewSelect returns an empty Select with a mutable table.
func NewSelect() *Select {
	return &Select{state: State{Where: NewWhere(), Having: NewWhere()}}
}

// SelectFrom returns a Select whose table is fixed: From and
// Reset(FieldTable) fail with ErrReadOnly.
func SelectFrom(table any) *Select {
	s := NewSelect()
	t, err := normalizeTable("select", table)
	if err != nil {
		s.fail(err)
		return s
	}
	s.state.Table = t
	s.tableFixed = true
	return s
}

func (s *Select) fail(err error) *Select {
	s.err = errors.Join(s.err, err)
	return s
}

// Kind implements Statement.
func (s *Select) Kind() Kind { return SelectStatement }

// Err returns the recorded misuses, joined, or nil.
func (s *Select) Err() error { return s.err }

// State returns the current state. Slices are shared with the builder and
// must not be modified.
func (s *Select) State() State { return s.state }

// TableFixed reports whether the table was set by SelectFrom.
func (s *Select) TableFixed() bool { return s.tableFixed }

// From sets the table: a name, a comma-separated list of names, a []string,
// a TableIdentifier (schema dropped), a TableAlias (alias dropped) or a
// sub-query.
func (s *Select) From(table any) *Select {
	if s.tableFixed {
		return s.fail(readOnly("from"))
	}
	if sub, ok := table.(*Select); ok && sub.readsFrom(s) {
		return s.fail(invalidArgument("from", "a select cannot read from itself"))
	}
	t, err := normalizeTable("from", table)
	if err != nil {
		return s.fail(err)
	}
	s.state.Table = t
	return s
}

// readsFrom reports whether target is s or appears in the chain of
// sub-queries s reads from.
func (s *Select) readsFrom(target *Select) bool {
	for cur := s; cur != nil; {
		if cur == target {
			return true
		}
		next, ok := cur.state.Table.(*Select)
		if !ok {
			return false
		}
		cur = next
	}
	return false
}

// Columns replaces the select list. Each entry is a column name, a Column
// built with As, an Expr, a []string, or a map[string]any of alias to column
// name or Expr (sorted by alias).
func (s *Select) Columns(items ...any) *Select {
	cols, err := lowerColumns("columns", items)
	if err != nil {
		return s.fail(err)
	}
	s.state.Columns = cols
	return s
}

// PrefixColumnsWithTable exists for API parity. searchd cannot qualify
// columns with a table name, so true is rejected.
func (s *Select) PrefixColumnsWithTable(prefix bool) *Select {
	if prefix {
		return s.fail(invalidArgument("columns", "prefixing columns with the table name is not supported"))
	}
	return s
}

func lowerColumns(op string, items []any) ([]Column, error) {
	cols := make([]Column, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case string:
			if v == "" {
				return nil, invalidArgument(op, "column name must not be empty")
			}
			cols = append(cols, Column{Value: v})
		case Column:
			switch v.Value.(type) {
			case string, Expr:
			default:
				return nil, invalidArgument(op, "column %q must be a name or an Expr, got %T", v.Alias, v.Value)
			}
			cols = append(cols, v)
		case Expr:
			cols = append(cols, Column{Value: v})
		case []string:
			nested, err := lowerColumns(op, toAnySlice(v))
			if err != nil {
				return nil, err
			}
			cols = append(cols, nested...)
		case []any:
			nested, err := lowerColumns(op, v)
			if err != nil {
				return nil, err
			}
			cols = append(cols, nested...)
		case map[string]any:
			aliases := make([]string, 0, len(v))
			for k := range v {
				aliases = append(aliases, k)
			}
			sort.Strings(aliases)
			for _, alias := range aliases {
				nested, err := lowerColumns(op, []any{As(alias, v[alias])})
				if err != nil {
					return nil, err
				}
				cols = append(cols, nested...)
			}
		default:
			return nil, invalidArgument(op, "unsupported column type %T", item)
		}
	}
	return cols, nil
}

// Where merges p into the WHERE set with AND. p is a raw string, Pairs or a
// map[string]any shorthand, a Predicate, a *Where, or a func(*Where) called
// with the statement's own set.
func (s *Select) Where(p any) *Select {
	return s.mergeWhere("where", s.state.Where, And, p)
}

// OrWhere is Where combining with OR.
func (s *Select) OrWhere(p any) *Select {
	return s.mergeWhere("where", s.state.Where, Or, p)
}

// Having merges p into the HAVING set with AND. It accepts the same shapes
// as Where.
func (s *Select) Having(p any) *Select {
	return s.mergeWhere("having", s.state.Having, And, p)
}

// OrHaving is Having combining with OR.
func (s *Select) OrHaving(p any) *Select {
	return s.mergeWhere("having", s.state.Having, Or, p)
}

func (s *Select) mergeWhere(op string, set *Where, conj Conjunction, p any) *Select {
	if fn, ok := p.(func(*Where)); ok {
		fn(set)
		return s
	}
	if err := set.merge(op, conj, p); err != nil {
		return s.fail(err)
	}
	return s
}

// Group appends grouping entries: names, comma-separated names, []string or
// Expr.
func (s *Select) Group(cols ...any) *Select {
	group, err := lowerGroup("group", cols)
	if err != nil {
		return s.fail(err)
	}
	s.state.Group = append(s.state.Group, group...)
	return s
}

// Order appends ORDER BY entries. Each entry is "col", "col dir", a
// comma-separated list of those, a Sort, a map[string]string of column to
// direction (sorted by column) or an Expr rendered without a direction.
func (s *Select) Order(items ...any) *Select {
	order, err := lowerOrderings("order", items)
	if err != nil {
		return s.fail(err)
	}
	s.state.Order = append(s.state.Order, order...)
	return s
}

// WithinGroupOrder appends WITHIN GROUP ORDER BY entries. It accepts the
// same entries as Order and only renders when the statement has a GROUP BY.
func (s *Select) WithinGroupOrder(items ...any) *Select {
	order, err := lowerOrderings("within group order", items)
	if err != nil {
		return s.fail(err)
	}
	s.state.WithinGroupOrder = append(s.state.WithinGroupOrder, order...)
	return s
}

// Limit sets the row count. n is an integer or a numeric string.
func (s *Select) Limit(n any) *Select {
	v, err := toCount("limit", n)
	if err != nil {
		return s.fail(err)
	}
	s.state.Limit = &v
	return s
}

// Offset sets the number of rows to skip. n is an integer or a numeric
// string.
func (s *Select) Offset(n any) *Select {
	v, err := toCount("offset", n)
	if err != nil {
		return s.fail(err)
	}
	s.state.Offset = &v
	return s
}

func toCount(op string, n any) (int, error) {
	var v int64
	switch x := n.(type) {
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
		if err != nil {
			return 0, invalidArgument(op, "%q is not an integer", x)
		}
		v = parsed
	default:
		rv := reflect.ValueOf(n)
		switch rv.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			v = rv.Int()
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			if rv.Uint() > math.MaxInt32 {
				return 0, invalidArgument(op, "%d is out of range", rv.Uint())
			}
			v = int64(rv.Uint())
		case reflect.Float32, reflect.Float64:
			f := rv.Float()
			if f != math.Trunc(f) {
				return 0, invalidArgument(op, "%v is not an integer", f)
			}
			v = int64(f)
		default:
			return 0, invalidArgument(op, "expected an integer, got %T", n)
		}
	}
	if v < 0 {
		return 0, invalidArgument(op, "%d must not be negative", v)
	}
	if v > math.MaxInt32 {
		return 0, invalidArgument(op, "%d is out of range", v)
	}
	return int(v), nil
}

// Option sets OPTION clause entries. opts is Options, an OptionValue or a
// map with string keys (sorted by name).
func (s *Select) Option(opts any, mode OptionMode) *Select {
	in, err := lowerOptions("option", opts)
	if err != nil {
		return s.fail(err)
	}
	if mode == OptionsSet {
		s.state.Options = in
		return s
	}
	s.state.Options = s.state.Options.merge(in)
	return s
}

// Join is accepted and recorded, never compiled.
func (s *Select) Join(table, on any, columns ...any) *Select {
	s.joins = append(s.joins, Join{Table: table, On: on, Columns: columns})
	return s
}

// Quantifier is accepted and recorded, never compiled.
func (s *Select) Quantifier(q any) *Select {
	s.quantifier = q
	return s
}

// Combine is accepted and recorded, never compiled.
func (s *Select) Combine(other *Select, typ, modifier string) *Select {
	s.combine = &Combination{Select: other, Type: typ, Modifier: modifier}
	return s
}

// Ignored reports the join, quantifier and combine calls made so far.
func (s *Select) Ignored() Ignored {
	return Ignored{
		Joins:      len(s.joins),
		Quantifier: s.quantifier != nil,
		Combine:    s.combine != nil,
	}
}

// Reset clears one field back to its empty value.
func (s *Select) Reset(field Field) *Select {
	switch field {
	case FieldTable:
		if s.tableFixed {
			return s.fail(readOnly("reset"))
		}
		s.state.Table = nil
	case FieldColumns:
		s.state.Columns = nil
	case FieldWhere:
		s.state.Where = NewWhere()
	case FieldGroup:
		s.state.Group = nil
	case FieldWithinGroupOrder:
		s.state.WithinGroupOrder = nil
	case FieldHaving:
		s.state.Having = NewWhere()
	case FieldOrder:
		s.state.Order = nil
	case FieldLimit:
		s.state.Limit = nil
	case FieldOffset:
		s.state.Offset = nil
	case FieldOption:
		s.state.Options = nil
	case FieldJoins:
		s.joins = nil
	case FieldQuantifier:
		s.quantifier = nil
	case FieldCombine:
		s.combine = nil
	default:
		return s.fail(invalidArgument("reset", "unknown field %q", field))
	}
	return s
}

// RawState returns the raw value of one field. Limit and Offset are
// returned as ints, or nil when unset.
func (s *Select) RawState(field Field) any {
	switch field {
	case FieldTable:
		return s.state.Table
	case FieldColumns:
		return s.state.Columns
	case FieldWhere:
		return s.state.Where
	case FieldGroup:
		return s.state.Group
	case FieldWithinGroupOrder:
		return s.state.WithinGroupOrder
	case FieldHaving:
		return s.state.Having
	case FieldOrder:
		return s.state.Order
	case FieldLimit:
		if s.state.Limit == nil {
			return nil
		}
		return *s.state.Limit
	case FieldOffset:
		if s.state.Offset == nil {
			return nil
		}
		return *s.state.Offset
	case FieldOption:
		return s.state.Options
	case FieldJoins:
		return s.joins
	case FieldQuantifier:
		return s.quantifier
	case FieldCombine:
		return s.combine
	}
	return nil
}
