package query

import (
	"sort"
	"strings"
)

// Direction is a sort direction.
type Direction string

const (
	Ascending  Direction = "ASC"
	Descending Direction = "DESC"
)

// ParseDirection maps "desc" (any case) to Descending and everything else
// to Ascending.
func ParseDirection(s string) Direction {
	if strings.EqualFold(strings.TrimSpace(s), string(Descending)) {
		return Descending
	}
	return Ascending
}

// Sort is a column with an explicit direction.
type Sort struct {
	Column    string
	Direction Direction
}

// Asc sorts column ascending.
func Asc(column string) Sort { return Sort{Column: column, Direction: Ascending} }

// Desc sorts column descending.
func Desc(column string) Sort { return Sort{Column: column, Direction: Descending} }

// Ordering is a normalized ORDER BY or WITHIN GROUP ORDER BY entry: either a
// column with a direction, or a bare expression with none.
type Ordering struct {
	Column    string
	Direction Direction
	Expr      Expr
}

func lowerOrderings(op string, items []any) ([]Ordering, error) {
	var out []Ordering
	for _, item := range items {
		switch v := item.(type) {
		case string:
			nested, err := splitOrderString(op, v)
			if err != nil {
				return nil, err
			}
			out = append(out, nested...)
		case []string:
			for _, s := range v {
				nested, err := splitOrderString(op, s)
				if err != nil {
					return nil, err
				}
				out = append(out, nested...)
			}
		case Sort:
			if v.Column == "" {
				return nil, invalidArgument(op, "sort column must not be empty")
			}
			out = append(out, Ordering{Column: v.Column, Direction: ParseDirection(string(v.Direction))})
		case []Sort:
			nested, err := lowerOrderings(op, toAnySlice(v))
			if err != nil {
				return nil, err
			}
			out = append(out, nested...)
		case map[string]string:
			keys := make([]string, 0, len(v))
			for k := range v {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				if k == "" {
					return nil, invalidArgument(op, "sort column must not be empty")
				}
				out = append(out, Ordering{Column: k, Direction: ParseDirection(v[k])})
			}
		case Expr:
			out = append(out, Ordering{Expr: v})
		case []any:
			nested, err := lowerOrderings(op, v)
			if err != nil {
				return nil, err
			}
			out = append(out, nested...)
		default:
			return nil, invalidArgument(op, "unsupported sort type %T", item)
		}
	}
	return out, nil
}

// splitOrderString handles "c1", "c1 desc" and "c1, c2 desc".
func splitOrderString(op, s string) ([]Ordering, error) {
	var out []Ordering
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, invalidArgument(op, "empty sort column in %q", s)
		}
		column, dir, found := strings.Cut(part, " ")
		if !found {
			out = append(out, Ordering{Column: column, Direction: Ascending})
			continue
		}
		out = append(out, Ordering{Column: column, Direction: ParseDirection(dir)})
	}
	return out, nil
}

func lowerGroup(op string, cols []any) ([]any, error) {
	var out []any
	for _, col := range cols {
		switch v := col.(type) {
		case string:
			for _, part := range strings.Split(v, ",") {
				part = strings.TrimSpace(part)
				if part == "" {
					return nil, invalidArgument(op, "empty group column in %q", v)
				}
				out = append(out, part)
			}
		case []string:
			nested, err := lowerGroup(op, toAnySlice(v))
			if err != nil {
				return nil, err
			}
			out = append(out, nested...)
		case Expr:
			out = append(out, v)
		case []any:
			nested, err := lowerGroup(op, v)
			if err != nil {
				return nil, err
			}
			out = append(out, nested...)
		default:
			return nil, invalidArgument(op, "unsupported group entry type %T", col)
		}
	}
	return out, nil
}

func toAnySlice[T any](in []T) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}
