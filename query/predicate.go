package query

// Predicate is a single condition of a WHERE or HAVING clause.
type Predicate interface {
	Expr

	// Expression lowers the predicate to a template expression. Columns are
	// passed as Identifier arguments, so they are quoted on render.
	Expression() *Expression
}

// Comparison operators accepted by Operator.
const (
	OpEqualTo              = "="
	OpNotEqualTo           = "!="
	OpLessThan             = "<"
	OpLessThanOrEqualTo    = "<="
	OpGreaterThan          = ">"
	OpGreaterThanOrEqualTo = ">="
)

// Operator compares a column against a value. Right may be an Identifier to
// compare two columns, or an Expr.
type Operator struct {
	Left  string
	Op    string
	Right any
}

func (Operator) exprNode() {}

func (p Operator) Expression() *Expression {
	return NewExpression("? "+p.Op+" ?", Identifier(p.Left), p.Right)
}

// IsNull matches rows where Column is NULL.
type IsNull struct {
	Column string
}

func (IsNull) exprNode() {}

func (p IsNull) Expression() *Expression {
	return NewExpression("? IS NULL", Identifier(p.Column))
}

// IsNotNull matches rows where Column is not NULL.
type IsNotNull struct {
	Column string
}

func (IsNotNull) exprNode() {}

func (p IsNotNull) Expression() *Expression {
	return NewExpression("? IS NOT NULL", Identifier(p.Column))
}

// In matches rows whose Column is one of Values. Values is a slice or a
// *Select sub-query.
type In struct {
	Column string
	Values any
}

func (In) exprNode() {}

func (p In) Expression() *Expression {
	return NewExpression("? IN ?", Identifier(p.Column), p.Values)
}

// NotIn is the negation of In.
type NotIn struct {
	Column string
	Values any
}

func (NotIn) exprNode() {}

func (p NotIn) Expression() *Expression {
	return NewExpression("? NOT IN ?", Identifier(p.Column), p.Values)
}

// Like matches Column against a LIKE pattern.
type Like struct {
	Column  string
	Pattern string
}

func (Like) exprNode() {}

func (p Like) Expression() *Expression {
	return NewExpression("? LIKE ?", Identifier(p.Column), p.Pattern)
}

// NotLike is the negation of Like.
type NotLike struct {
	Column  string
	Pattern string
}

func (NotLike) exprNode() {}

func (p NotLike) Expression() *Expression {
	return NewExpression("? NOT LIKE ?", Identifier(p.Column), p.Pattern)
}

// Between matches Column within the inclusive range [Min, Max].
type Between struct {
	Column   string
	Min, Max any
}

func (Between) exprNode() {}

func (p Between) Expression() *Expression {
	return NewExpression("? BETWEEN ? AND ?", Identifier(p.Column), p.Min, p.Max)
}

// NotBetween is the negation of Between.
type NotBetween struct {
	Column   string
	Min, Max any
}

func (NotBetween) exprNode() {}

func (p NotBetween) Expression() *Expression {
	return NewExpression("? NOT BETWEEN ? AND ?", Identifier(p.Column), p.Min, p.Max)
}

// Match is the full-text MATCH() condition. searchd accepts at most one per
// query.
type Match struct {
	Query string
}

func (Match) exprNode() {}

func (p Match) Expression() *Expression {
	return NewExpression("MATCH(?)", p.Query)
}

// Compile-time interface checks
var (
	_ Predicate = Operator{}
	_ Predicate = IsNull{}
	_ Predicate = IsNotNull{}
	_ Predicate = In{}
	_ Predicate = NotIn{}
	_ Predicate = Like{}
	_ Predicate = NotLike{}
	_ Predicate = Between{}
	_ Predicate = NotBetween{}
	_ Predicate = Match{}
)
