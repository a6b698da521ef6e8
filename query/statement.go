package query

// Kind identifies the statement type.
type Kind string

const (
	SelectStatement Kind = "SELECT"
	DeleteStatement Kind = "DELETE"
)

// Statement is a built query ready for compilation.
type Statement interface {
	Kind() Kind

	// Err returns every misuse recorded while the statement was built.
	// Statements with a non-nil Err are never compiled.
	Err() error
}

var (
	_ Statement = (*Select)(nil)
	_ Statement = (*Delete)(nil)
)
