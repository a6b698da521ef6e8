package query

import "errors"

// Delete builds a SphinxQL DELETE statement.
type Delete struct {
	table      string
	tableFixed bool
	where      *Where
	err        error
}

// NewDelete returns an empty Delete.
func NewDelete() *Delete {
	return &Delete{where: NewWhere()}
}

// DeleteFrom returns a Delete whose table is fixed.
func DeleteFrom(table any) *Delete {
	d := NewDelete()
	d.From(table)
	d.tableFixed = d.table != ""
	return d
}

func (d *Delete) fail(err error) *Delete {
	d.err = errors.Join(d.err, err)
	return d
}

// Kind implements Statement.
func (d *Delete) Kind() Kind { return DeleteStatement }

// Err returns the recorded misuses, joined, or nil.
func (d *Delete) Err() error { return d.err }

// Table returns the bare table name.
func (d *Delete) Table() string { return d.table }

// Predicates returns the WHERE set.
func (d *Delete) Predicates() *Where { return d.where }

// From sets the table. A TableIdentifier loses its schema.
func (d *Delete) From(table any) *Delete {
	if d.tableFixed {
		return d.fail(readOnly("from"))
	}
	var name string
	switch t := table.(type) {
	case string:
		name = t
	case TableIdentifier:
		name = t.Table
	case *TableIdentifier:
		if t != nil {
			name = t.Table
		}
	default:
		return d.fail(invalidArgument("from", "table must be a string or TableIdentifier, got %T", table))
	}
	if name == "" {
		return d.fail(invalidArgument("from", "table name must not be empty"))
	}
	d.table = name
	return d
}

// Where merges p into the WHERE set with AND. It accepts the same shapes as
// Select.Where.
func (d *Delete) Where(p any) *Delete {
	return d.mergeWhere(And, p)
}

// OrWhere is Where combining with OR.
func (d *Delete) OrWhere(p any) *Delete {
	return d.mergeWhere(Or, p)
}

func (d *Delete) mergeWhere(conj Conjunction, p any) *Delete {
	if fn, ok := p.(func(*Where)); ok {
		fn(d.where)
		return d
	}
	if err := d.where.merge("where", conj, p); err != nil {
		return d.fail(err)
	}
	return d
}
