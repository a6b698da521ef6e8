package compile

// Result holds the output of compiling a statement with placeholders.
type Result struct {
	// SQL is the compiled SQL with driver-formatted placeholders.
	SQL string

	// ParamOrder contains the parameter names in the order their
	// placeholders appear in SQL.
	ParamOrder []string

	// Params maps every parameter name to its value.
	Params map[string]any
}

// Args returns the parameter values in placeholder order, ready for
// database/sql.
func (r Result) Args() []any {
	args := make([]any, len(r.ParamOrder))
	for i, name := range r.ParamOrder {
		args[i] = r.Params[name]
	}
	return args
}
