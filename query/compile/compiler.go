package compile

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shipq/sphinxql/query"
)

// DefaultLimit is the row count searchd applies when a query has no LIMIT.
// It is emitted when only an offset was set.
const DefaultLimit = 20

// Compiler compiles statements to SphinxQL for a Platform.
type Compiler struct {
	platform Platform
}

// NewCompiler creates a compiler. A nil platform means SphinxQL.
func NewCompiler(p Platform) *Compiler {
	if p == nil {
		p = SphinxQL
	}
	return &Compiler{platform: p}
}

// Platform returns the platform used for quoting.
func (c *Compiler) Platform() Platform { return c.platform }

// Prepare compiles stmt with placeholders formatted by d. A nil driver means
// Positional.
func (c *Compiler) Prepare(stmt query.Statement, d Driver) (Result, error) {
	if d == nil {
		d = Positional
	}
	st := newState(d, NewParameterContainer())
	sql, err := c.compile(st, stmt)
	if err != nil {
		return Result{}, err
	}
	return Result{
		SQL:        sql,
		ParamOrder: st.params.Names(),
		Params:     st.params.Map(),
	}, nil
}

// SQLString compiles stmt to a single SQL string with every value inlined.
func (c *Compiler) SQLString(stmt query.Statement) (string, error) {
	return c.compile(newState(nil, nil), stmt)
}

func (c *Compiler) compile(st *state, stmt query.Statement) (string, error) {
	switch s := stmt.(type) {
	case *query.Select:
		if s == nil {
			break
		}
		return c.selectSQL(st, s)
	case *query.Delete:
		if s == nil {
			break
		}
		return c.deleteSQL(st, s)
	case nil:
	default:
		return "", fmt.Errorf("%w: unknown statement kind %q", ErrInvalidStatement, stmt.Kind())
	}
	return "", fmt.Errorf("%w: nil statement", ErrInvalidStatement)
}

// =============================================================================
// SELECT Compilation
// =============================================================================

func (c *Compiler) selectSQL(st *state, s *query.Select) (string, error) {
	if err := s.Err(); err != nil {
		return "", err
	}
	if st.open[s] {
		return "", fmt.Errorf("%w: select reads from itself through a sub-query", ErrInvalidStatement)
	}
	st.open[s] = true
	defer delete(st.open, s)
	raw := s.State()

	var b strings.Builder

	// SELECT list and FROM
	columns, table, err := c.processSelect(st, raw)
	if err != nil {
		return "", err
	}
	b.WriteString("SELECT ")
	for i, col := range columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(col[0])
		if len(col) > 1 {
			b.WriteString(" AS ")
			b.WriteString(col[1])
		}
	}
	if table != "" {
		b.WriteString(" FROM ")
		b.WriteString(table)
	}

	// WHERE clause
	where, err := c.processWhere(st, raw.Where, "where")
	if err != nil {
		return "", err
	}
	if where != "" {
		b.WriteString(" WHERE ")
		b.WriteString(where)
	}

	// GROUP BY and WITHIN GROUP ORDER BY
	group, err := c.processGroup(st, raw.Group)
	if err != nil {
		return "", err
	}
	if len(group) > 0 {
		b.WriteString(" GROUP BY ")
		b.WriteString(strings.Join(group, ", "))

		within, err := c.processOrderings(st, raw.WithinGroupOrder, "withingrouporder")
		if err != nil {
			return "", err
		}
		if len(within) > 0 {
			b.WriteString(" WITHIN GROUP ORDER BY ")
			writeOrderings(&b, within)
		}
	}

	// HAVING clause
	having, err := c.processWhere(st, raw.Having, "having")
	if err != nil {
		return "", err
	}
	if having != "" {
		b.WriteString(" HAVING ")
		b.WriteString(having)
	}

	// ORDER BY clause
	order, err := c.processOrderings(st, raw.Order, "order")
	if err != nil {
		return "", err
	}
	if len(order) > 0 {
		b.WriteString(" ORDER BY ")
		writeOrderings(&b, order)
	}

	// LIMIT offset,count
	limit := c.processLimitOffset(st, raw.Limit, raw.Offset)
	if limit != nil {
		b.WriteString(" LIMIT ")
		b.WriteString(limit[0])
		b.WriteString(",")
		b.WriteString(limit[1])
	}

	// OPTION clause
	options, err := c.processOption(st, raw.Options)
	if err != nil {
		return "", err
	}
	if len(options) > 0 {
		b.WriteString(" OPTION ")
		for i, opt := range options {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(opt[0])
			b.WriteString(" = ")
			b.WriteString(opt[1])
		}
	}

	return b.String(), nil
}

// processSelect returns one fragment per column, either [expr] or
// [expr, alias], and the FROM fragment (empty when there is no table).
func (c *Compiler) processSelect(st *state, raw query.State) ([][]string, string, error) {
	var columns [][]string
	if len(raw.Columns) == 0 {
		columns = append(columns, []string{"*"})
	}

	anonymous := 0
	for _, col := range raw.Columns {
		var sql string
		switch v := col.Value.(type) {
		case string:
			if v == "*" {
				sql = "*"
			} else {
				sql = c.platform.QuoteIdentifier(v)
			}
		case query.Expr:
			prefix := "column"
			if col.Alias != "" {
				prefix = "column_" + col.Alias + "_"
			}
			rendered, err := Decorate(v, c.platform).render(st, prefix)
			if err != nil {
				return nil, "", fmt.Errorf("compile: columns: %w", err)
			}
			sql = rendered
			if col.Alias == "" && !hasAlias(sql) {
				anonymous++
				columns = append(columns, []string{sql, c.platform.QuoteIdentifier("Expression" + strconv.Itoa(anonymous))})
				continue
			}
		default:
			return nil, "", fmt.Errorf("%w: column value of type %T", ErrInvalidStatement, col.Value)
		}
		if col.Alias != "" {
			columns = append(columns, []string{sql, c.platform.QuoteIdentifier(col.Alias)})
			continue
		}
		columns = append(columns, []string{sql})
	}

	table, err := c.processTable(st, raw.Table)
	if err != nil {
		return nil, "", err
	}
	return columns, table, nil
}

func hasAlias(sql string) bool {
	return strings.Contains(strings.ToLower(sql), " as ")
}

func (c *Compiler) processTable(st *state, table any) (string, error) {
	switch t := table.(type) {
	case nil:
		return "", nil
	case string:
		return c.quoteTableList(strings.Split(t, ",")), nil
	case []string:
		return c.quoteTableList(t), nil
	case *query.Select:
		sql, err := c.selectSQL(st.sub(), t)
		if err != nil {
			return "", err
		}
		return "(" + sql + ")", nil
	}
	return "", fmt.Errorf("%w: table of type %T", ErrInvalidStatement, table)
}

func (c *Compiler) quoteTableList(names []string) string {
	quoted := make([]string, 0, len(names))
	for _, name := range names {
		quoted = append(quoted, c.platform.QuoteIdentifier(strings.TrimSpace(name)))
	}
	return strings.Join(quoted, ", ")
}

// processWhere renders a WHERE or HAVING set. prefix names its parameters.
func (c *Compiler) processWhere(st *state, w *query.Where, prefix string) (string, error) {
	if w == nil || w.IsEmpty() {
		return "", nil
	}
	sql, err := Decorate(w, c.platform).render(st, prefix)
	if err != nil {
		return "", fmt.Errorf("compile: %s: %w", prefix, err)
	}
	return sql, nil
}

func (c *Compiler) processGroup(st *state, group []any) ([]string, error) {
	out := make([]string, 0, len(group))
	for _, item := range group {
		switch v := item.(type) {
		case string:
			out = append(out, c.platform.QuoteIdentifier(v))
		case query.Expr:
			sql, err := Decorate(v, c.platform).render(st, "group")
			if err != nil {
				return nil, fmt.Errorf("compile: group: %w", err)
			}
			out = append(out, sql)
		default:
			return nil, fmt.Errorf("%w: group entry of type %T", ErrInvalidStatement, item)
		}
	}
	return out, nil
}

// processOrderings returns [column, direction] per entry, or [expr] for bare
// expressions.
func (c *Compiler) processOrderings(st *state, orders []query.Ordering, prefix string) ([][]string, error) {
	out := make([][]string, 0, len(orders))
	for _, o := range orders {
		if o.Expr != nil {
			sql, err := Decorate(o.Expr, c.platform).render(st, prefix)
			if err != nil {
				return nil, fmt.Errorf("compile: %s: %w", prefix, err)
			}
			out = append(out, []string{sql})
			continue
		}
		dir := o.Direction
		if dir != query.Descending {
			dir = query.Ascending
		}
		out = append(out, []string{c.platform.QuoteIdentifier(o.Column), string(dir)})
	}
	return out, nil
}

func writeOrderings(b *strings.Builder, orders [][]string) {
	for i, o := range orders {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(strings.Join(o, " "))
	}
}

// processLimitOffset returns [offset, count], or nil when neither is set.
// The offset parameter is registered first to match its position in the
// SQL.
func (c *Compiler) processLimitOffset(st *state, limit, offset *int) []string {
	if limit == nil && offset == nil {
		return nil
	}
	off, count := 0, DefaultLimit
	if offset != nil {
		off = *offset
	}
	if limit != nil {
		count = *limit
	}
	if !st.prepared() {
		return []string{strconv.Itoa(off), strconv.Itoa(count)}
	}
	return []string{
		st.bind(st.prefix+"offset", off),
		st.bind(st.prefix+"limit", count),
	}
}

// processOption returns [name, value] per option.
func (c *Compiler) processOption(st *state, opts query.Options) ([][]string, error) {
	out := make([][]string, 0, len(opts))
	for _, opt := range opts {
		name := c.platform.QuoteIdentifier(opt.Name)
		param := "option_" + opt.Name

		if e, ok := opt.Value.(query.Expr); ok {
			sql, err := Decorate(e, c.platform).render(st, param)
			if err != nil {
				return nil, fmt.Errorf("compile: option %s: %w", opt.Name, err)
			}
			out = append(out, []string{name, sql})
			continue
		}

		if !st.prepared() || (isFloat(opt.Value) && c.platform.FloatAsLiteral()) {
			sql, err := c.platform.QuoteValue(opt.Value)
			if err != nil {
				return nil, fmt.Errorf("compile: option %s: %w", opt.Name, err)
			}
			out = append(out, []string{name, sql})
			continue
		}
		out = append(out, []string{name, st.bind(st.prefix+param, opt.Value)})
	}
	return out, nil
}
