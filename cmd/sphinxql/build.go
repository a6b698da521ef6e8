package main

import (
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/shipq/sphinxql/query"
	"github.com/shipq/sphinxql/query/compile"
)

// listFlag collects a repeatable string flag.
type listFlag []string

func (l *listFlag) String() string { return strings.Join(*l, "; ") }

func (l *listFlag) Set(v string) error {
	*l = append(*l, v)
	return nil
}

// selectFlags are the statement flags shared by compile and query.
type selectFlags struct {
	index   string
	columns string
	match   string
	where   listFlag
	group   string
	within  string
	having  listFlag
	order   string
	limit   int
	offset  int
	options listFlag
}

func (f *selectFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.index, "index", "", "index to search, comma-separated for several")
	fs.StringVar(&f.columns, "columns", "", "comma-separated select list (default *)")
	fs.StringVar(&f.match, "match", "", "full-text query for MATCH()")
	fs.Var(&f.where, "where", "raw WHERE condition (repeatable)")
	fs.StringVar(&f.group, "group", "", "comma-separated GROUP BY columns")
	fs.StringVar(&f.within, "within", "", "WITHIN GROUP ORDER BY list, e.g. 'weight DESC'")
	fs.Var(&f.having, "having", "raw HAVING condition (repeatable)")
	fs.StringVar(&f.order, "order", "", "ORDER BY list, e.g. 'id DESC, title'")
	fs.IntVar(&f.limit, "limit", -1, "row count")
	fs.IntVar(&f.offset, "offset", -1, "row offset")
	fs.Var(&f.options, "option", "OPTION name=value (repeatable)")
}

// warnings reports flag combinations the compiler drops silently.
func (f *selectFlags) warnings() []string {
	var out []string
	if f.within != "" && f.group == "" {
		out = append(out, "-within has no effect without -group")
	}
	if f.offset >= 0 && f.limit < 0 {
		out = append(out, fmt.Sprintf("-offset without -limit returns at most %d rows", compile.DefaultLimit))
	}
	return out
}

// build turns the flags into a Select. Builder misuse is returned as the
// statement's Err.
func (f *selectFlags) build() (*query.Select, error) {
	if f.index == "" {
		return nil, fmt.Errorf("-index is required")
	}
	s := query.NewSelect().From(f.index)

	if f.columns != "" {
		var cols []any
		for _, c := range strings.Split(f.columns, ",") {
			if c = strings.TrimSpace(c); c != "" {
				cols = append(cols, columnSpec(c))
			}
		}
		s.Columns(cols...)
	}
	if f.match != "" {
		s.Where(query.Match{Query: f.match})
	}
	for _, w := range f.where {
		s.Where(w)
	}
	if f.group != "" {
		s.Group(f.group)
	}
	if f.within != "" {
		s.WithinGroupOrder(f.within)
	}
	for _, h := range f.having {
		s.Having(h)
	}
	if f.order != "" {
		s.Order(f.order)
	}
	if f.limit >= 0 {
		s.Limit(f.limit)
	}
	if f.offset >= 0 {
		s.Offset(f.offset)
	}
	for _, opt := range f.options {
		name, value, ok := strings.Cut(opt, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("-option %q: expected name=value", opt)
		}
		s.Option(query.OptionValue{Name: strings.TrimSpace(name), Value: optionValue(strings.TrimSpace(value))}, query.OptionsMerge)
	}
	return s, s.Err()
}

// columnSpec keeps plain names as identifiers. Anything else, such as
// "COUNT(*) AS cnt" or "WEIGHT()", is an expression.
func columnSpec(c string) any {
	if c == "*" || isName(c) {
		return c
	}
	return query.Raw(c)
}

func isName(s string) bool {
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return s != ""
}

// optionValue binds numbers as values. Anything else is emitted verbatim,
// so both ranker=bm25 and comment='text' work.
func optionValue(v string) any {
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil && strings.Contains(v, ".") {
		return f
	}
	return query.Raw(v)
}
