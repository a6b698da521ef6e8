package query

import (
	"reflect"
	"sort"
	"strings"
)

// Conjunction joins two conditions of a predicate set.
type Conjunction string

const (
	And Conjunction = "AND"
	Or  Conjunction = "OR"
)

// WherePart is one condition of a predicate set together with the
// conjunction joining it to the previous condition.
type WherePart struct {
	Conjunction Conjunction
	Expr        Expr // a Predicate or a nested *Where
}

// Where is an ordered predicate set used for WHERE and HAVING clauses.
// Nested sets render in parentheses.
type Where struct {
	parts  []WherePart
	next   Conjunction
	parent *Where
}

// NewWhere returns an empty predicate set.
func NewWhere() *Where {
	return &Where{}
}

func (*Where) exprNode() {}

// Parts returns the conditions in insertion order.
func (w *Where) Parts() []WherePart {
	return w.parts
}

// Len returns the number of top-level conditions.
func (w *Where) Len() int {
	return len(w.parts)
}

// IsEmpty reports whether the set renders nothing.
func (w *Where) IsEmpty() bool {
	return len(w.parts) == 0
}

func (w *Where) add(conj Conjunction, e Expr) *Where {
	if w.next != "" {
		conj = w.next
		w.next = ""
	}
	w.parts = append(w.parts, WherePart{Conjunction: conj, Expr: e})
	return w
}

// Or makes the next added condition combine with OR.
func (w *Where) Or() *Where {
	w.next = Or
	return w
}

// And makes the next added condition combine with AND (the default).
func (w *Where) And() *Where {
	w.next = And
	return w
}

// AddPredicate appends p.
func (w *Where) AddPredicate(p Predicate) *Where {
	return w.add(And, p)
}

// EqualTo appends `column = value`.
func (w *Where) EqualTo(column string, value any) *Where {
	return w.add(And, Operator{Left: column, Op: OpEqualTo, Right: value})
}

// NotEqualTo appends `column != value`.
func (w *Where) NotEqualTo(column string, value any) *Where {
	return w.add(And, Operator{Left: column, Op: OpNotEqualTo, Right: value})
}

// LessThan appends `column < value`.
func (w *Where) LessThan(column string, value any) *Where {
	return w.add(And, Operator{Left: column, Op: OpLessThan, Right: value})
}

// LessThanOrEqualTo appends `column <= value`.
func (w *Where) LessThanOrEqualTo(column string, value any) *Where {
	return w.add(And, Operator{Left: column, Op: OpLessThanOrEqualTo, Right: value})
}

// GreaterThan appends `column > value`.
func (w *Where) GreaterThan(column string, value any) *Where {
	return w.add(And, Operator{Left: column, Op: OpGreaterThan, Right: value})
}

// GreaterThanOrEqualTo appends `column >= value`.
func (w *Where) GreaterThanOrEqualTo(column string, value any) *Where {
	return w.add(And, Operator{Left: column, Op: OpGreaterThanOrEqualTo, Right: value})
}

func (w *Where) Like(column, pattern string) *Where {
	return w.add(And, Like{Column: column, Pattern: pattern})
}

func (w *Where) NotLike(column, pattern string) *Where {
	return w.add(And, NotLike{Column: column, Pattern: pattern})
}

func (w *Where) IsNull(column string) *Where {
	return w.add(And, IsNull{Column: column})
}

func (w *Where) IsNotNull(column string) *Where {
	return w.add(And, IsNotNull{Column: column})
}

// In appends `column IN (...)`. values is a slice or a *Select.
func (w *Where) In(column string, values any) *Where {
	return w.add(And, In{Column: column, Values: values})
}

func (w *Where) NotIn(column string, values any) *Where {
	return w.add(And, NotIn{Column: column, Values: values})
}

func (w *Where) Between(column string, min, max any) *Where {
	return w.add(And, Between{Column: column, Min: min, Max: max})
}

func (w *Where) NotBetween(column string, min, max any) *Where {
	return w.add(And, NotBetween{Column: column, Min: min, Max: max})
}

// Match appends the full-text MATCH() condition.
func (w *Where) Match(q string) *Where {
	return w.add(And, Match{Query: q})
}

// Expression appends a template condition.
func (w *Where) Expression(text string, args ...any) *Where {
	return w.add(And, NewExpression(text, args...))
}

// Literal appends a raw condition.
func (w *Where) Literal(text string) *Where {
	return w.add(And, Raw(text))
}

// Nest opens a parenthesized sub-set and returns it. Call Unnest to get back
// to w.
func (w *Where) Nest() *Where {
	child := &Where{parent: w}
	w.add(And, child)
	return child
}

// Unnest returns the set that opened w with Nest. On a top-level set it
// returns w.
func (w *Where) Unnest() *Where {
	if w.parent == nil {
		return w
	}
	return w.parent
}

// Pair is one key/value shorthand entry. An empty Key means Value is a
// condition on its own (string, Predicate or *Where).
type Pair struct {
	Key   string
	Value any
}

// Pairs is an ordered key/value shorthand:
//
//   - a key containing '?' is a template; Value is its argument ([]any
//     values are spread)
//   - a nil Value means IS NULL
//   - a slice or *Select Value means IN
//   - anything else means equality
type Pairs []Pair

// merge lowers p into conditions and appends them with conj.
func (w *Where) merge(op string, conj Conjunction, p any) error {
	exprs, err := lowerPredicate(op, p)
	if err != nil {
		return err
	}
	for _, e := range exprs {
		w.add(conj, e)
	}
	return nil
}

func lowerPredicate(op string, p any) ([]Expr, error) {
	switch v := p.(type) {
	case nil:
		return nil, invalidArgument(op, "predicate must not be nil")
	case string:
		return []Expr{Raw(v)}, nil
	case *Where:
		switch {
		case v == nil || v.IsEmpty():
			return nil, nil
		case v.Len() == 1:
			return []Expr{v.parts[0].Expr}, nil
		}
		return []Expr{v}, nil
	case Predicate:
		return []Expr{v}, nil
	case Expr:
		return []Expr{v}, nil
	case func(*Where):
		set := NewWhere()
		v(set)
		return lowerPredicate(op, set)
	case Pair:
		return lowerPairs(op, Pairs{v})
	case Pairs:
		return lowerPairs(op, v)
	case []Pair:
		return lowerPairs(op, Pairs(v))
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		pairs := make(Pairs, 0, len(keys))
		for _, k := range keys {
			pairs = append(pairs, Pair{Key: k, Value: v[k]})
		}
		return lowerPairs(op, pairs)
	case []any:
		var out []Expr
		for _, item := range v {
			exprs, err := lowerPredicate(op, item)
			if err != nil {
				return nil, err
			}
			out = append(out, exprs...)
		}
		return out, nil
	}
	return nil, invalidArgument(op, "unsupported predicate type %T", p)
}

func lowerPairs(op string, pairs Pairs) ([]Expr, error) {
	out := make([]Expr, 0, len(pairs))
	for _, pair := range pairs {
		if pair.Key == "" {
			exprs, err := lowerPredicate(op, pair.Value)
			if err != nil {
				return nil, err
			}
			out = append(out, exprs...)
			continue
		}
		out = append(out, lowerPair(pair))
	}
	return out, nil
}

func lowerPair(pair Pair) Expr {
	if strings.Contains(pair.Key, "?") {
		if args, ok := pair.Value.([]any); ok {
			return NewExpression(pair.Key, args...)
		}
		return NewExpression(pair.Key, pair.Value)
	}
	switch v := pair.Value.(type) {
	case nil:
		return IsNull{Column: pair.Key}
	case *Select:
		return In{Column: pair.Key, Values: v}
	case Expr:
		return Operator{Left: pair.Key, Op: OpEqualTo, Right: v}
	}
	if isList(pair.Value) {
		return In{Column: pair.Key, Values: pair.Value}
	}
	return Operator{Left: pair.Key, Op: OpEqualTo, Right: pair.Value}
}

// isList reports whether v is a slice or array other than []byte.
func isList(v any) bool {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return rv.Type().Elem().Kind() != reflect.Uint8
	}
	return false
}

var _ Expr = (*Where)(nil)
