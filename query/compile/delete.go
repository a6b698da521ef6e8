package compile

import (
	"fmt"
	"strings"

	"github.com/shipq/sphinxql/query"
)

// =============================================================================
// DELETE Compilation
// =============================================================================

func (c *Compiler) deleteSQL(st *state, d *query.Delete) (string, error) {
	if err := d.Err(); err != nil {
		return "", err
	}
	if d.Table() == "" {
		return "", fmt.Errorf("%w: delete requires a table", ErrInvalidStatement)
	}

	var b strings.Builder
	b.WriteString("DELETE FROM ")
	b.WriteString(c.platform.QuoteIdentifier(d.Table()))

	where, err := c.processWhere(st, d.Predicates(), "where")
	if err != nil {
		return "", err
	}
	if where != "" {
		b.WriteString(" WHERE ")
		b.WriteString(where)
	}
	return b.String(), nil
}
