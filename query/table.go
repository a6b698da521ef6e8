package query

import "strings"

// TableIdentifier names a table with an optional schema. searchd has no
// schemas, so Schema is dropped.
type TableIdentifier struct {
	Table  string
	Schema string
}

// TableAlias is a table with an alias. searchd has no table aliases, so
// Alias is dropped.
type TableAlias struct {
	Alias string
	Table any
}

const tableTypes = "string, []string, TableIdentifier or *Select"

// normalizeTable lowers the accepted table shapes to a string, a []string
// or a *Select.
func normalizeTable(op string, table any) (any, error) {
	switch t := table.(type) {
	case string:
		if _, err := splitTableNames(op, t); err != nil {
			return nil, err
		}
		return t, nil
	case []string:
		if len(t) == 0 {
			return nil, invalidArgument(op, "table list must not be empty")
		}
		names := make([]string, 0, len(t))
		for _, entry := range t {
			split, err := splitTableNames(op, entry)
			if err != nil {
				return nil, err
			}
			names = append(names, split...)
		}
		return names, nil
	case []any:
		names := make([]string, 0, len(t))
		for _, item := range t {
			name, ok := item.(string)
			if !ok {
				return nil, invalidArgument(op, "table list entries must be strings, got %T", item)
			}
			names = append(names, name)
		}
		return normalizeTable(op, names)
	case TableIdentifier:
		return normalizeTable(op, t.Table)
	case *TableIdentifier:
		if t == nil {
			break
		}
		return normalizeTable(op, t.Table)
	case TableAlias:
		return normalizeTable(op, t.Table)
	case map[string]string:
		if len(t) != 1 {
			return nil, invalidArgument(op, "aliased table map must hold exactly one table")
		}
		for _, name := range t {
			return normalizeTable(op, name)
		}
	case *Select:
		if t == nil {
			break
		}
		return t, nil
	}
	return nil, invalidArgument(op, "table must be a %s, got %T", tableTypes, table)
}

// splitTableNames splits a comma-separated table list and trims each name.
// Every name must be non-empty.
func splitTableNames(op, s string) ([]string, error) {
	parts := strings.Split(s, ",")
	names := make([]string, 0, len(parts))
	for _, part := range parts {
		name := strings.TrimSpace(part)
		if name == "" {
			return nil, invalidArgument(op, "table name must not be empty in %q", s)
		}
		names = append(names, name)
	}
	return names, nil
}
