package compile

import (
	"errors"
	"reflect"
	"testing"

	"github.com/shipq/sphinxql/query"
)

func TestDecorateIsIdempotent(t *testing.T) {
	e := query.NewExpression("? > ?", query.Identifier("price"), 10)
	once := Decorate(e, SphinxQL)
	twice := Decorate(once, SphinxQL)
	if once != twice {
		t.Fatal("expected decorating a decorated expression to return the same instance")
	}

	a, err := once.SQL(nil, nil, "")
	if err != nil {
		t.Fatalf("SQL failed: %v", err)
	}
	b, err := twice.SQL(nil, nil, "")
	if err != nil {
		t.Fatalf("SQL failed: %v", err)
	}
	if a != b {
		t.Errorf("expected identical output, got %q and %q", a, b)
	}
	if a != "`price` > 10" {
		t.Errorf("got %q", a)
	}
}

func TestDecoratedFloatIsLiteralInBothModes(t *testing.T) {
	e := query.NewExpression("?", 10.1)

	params := NewParameterContainer()
	plain, err := Decorate(e, SphinxQL).SQL(params, Positional, "")
	if err != nil {
		t.Fatalf("SQL failed: %v", err)
	}
	predecorated, err := Decorate(Decorate(e, NewSphinxQL()), SphinxQL).SQL(params, Positional, "")
	if err != nil {
		t.Fatalf("SQL failed: %v", err)
	}

	if plain != "10.1" || predecorated != plain {
		t.Errorf("expected 10.1 twice, got %q and %q", plain, predecorated)
	}
	if params.Len() != 0 {
		t.Errorf("expected no parameters, got %v", params.Map())
	}
}

func TestDecoratedFloatCanBeBound(t *testing.T) {
	p := NewSphinxQL(WithFloatAsLiteral(false))
	params := NewParameterContainer()
	sql, err := Decorate(query.NewExpression("price > ?", 9.5), p).SQL(params, Positional, "where")
	if err != nil {
		t.Fatalf("SQL failed: %v", err)
	}
	if sql != "price > ?" {
		t.Errorf("got %q", sql)
	}
	if v, _ := params.Get("where1"); v != 9.5 {
		t.Errorf("expected where1 = 9.5, got %v", v)
	}
}

func TestDecoratedExpressionArguments(t *testing.T) {
	tests := []struct {
		name       string
		expr       query.Expr
		wantPrep   string
		wantParams []string
		wantLit    string
	}{
		{
			name:     "raw text keeps question marks",
			expr:     query.Raw("a = ?"),
			wantPrep: "a = ?",
			wantLit:  "a = ?",
		},
		{
			name:       "identifier and value",
			expr:       query.NewExpression("? = ?", query.Identifier("a"), "b"),
			wantPrep:   "`a` = ?",
			wantParams: []string{"p1"},
			wantLit:    "`a` = 'b'",
		},
		{
			name:     "literal argument",
			expr:     query.NewExpression("a = ?", query.Literal("NOW()")),
			wantPrep: "a = NOW()",
			wantLit:  "a = NOW()",
		},
		{
			name:       "list argument",
			expr:       query.NewExpression("a IN ?", []string{"x", "y"}),
			wantPrep:   "a IN (?, ?)",
			wantParams: []string{"p1", "p2"},
			wantLit:    "a IN ('x', 'y')",
		},
		{
			name:       "nested expression",
			expr:       query.NewExpression("IF(?, ?, 0)", query.NewExpression("? > ?", query.Identifier("a"), 1), 2),
			wantPrep:   "IF(`a` > ?, ?, 0)",
			wantParams: []string{"p1", "p2"},
			wantLit:    "IF(`a` > 1, 2, 0)",
		},
		{
			name:       "predicate",
			expr:       query.Like{Column: "title", Pattern: "%phone%"},
			wantPrep:   "`title` LIKE ?",
			wantParams: []string{"p1"},
			wantLit:    "`title` LIKE '%phone%'",
		},
		{
			name:       "sub-query argument",
			expr:       query.NewExpression("a IN ?", query.NewSelect().From("t").Columns("id").Where(query.Pairs{{Key: "b", Value: 1}})),
			wantPrep:   "a IN (SELECT `id` FROM `t` WHERE `b` = ?)",
			wantParams: []string{"subselect1where1"},
			wantLit:    "a IN (SELECT `id` FROM `t` WHERE `b` = 1)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := NewParameterContainer()
			prep, err := Decorate(tt.expr, SphinxQL).SQL(params, Positional, "p")
			if err != nil {
				t.Fatalf("SQL failed: %v", err)
			}
			if prep != tt.wantPrep {
				t.Errorf("expected prepared %q, got %q", tt.wantPrep, prep)
			}
			names := params.Names()
			if len(names) == 0 {
				names = nil
			}
			if !reflect.DeepEqual(names, tt.wantParams) {
				t.Errorf("expected params %v, got %v", tt.wantParams, names)
			}

			lit, err := Decorate(tt.expr, SphinxQL).SQL(nil, nil, "p")
			if err != nil {
				t.Fatalf("SQL failed: %v", err)
			}
			if lit != tt.wantLit {
				t.Errorf("expected literal %q, got %q", tt.wantLit, lit)
			}
		})
	}
}

func TestDecoratedMalformedExpression(t *testing.T) {
	_, err := Decorate(query.NewExpression("? ?", 1), SphinxQL).SQL(nil, nil, "")
	if !errors.Is(err, ErrMalformedExpression) {
		t.Fatalf("expected ErrMalformedExpression, got %v", err)
	}
}

func TestDecoratedDefaultPrefix(t *testing.T) {
	params := NewParameterContainer()
	if _, err := Decorate(query.NewExpression("?", "v"), SphinxQL).SQL(params, nil, ""); err != nil {
		t.Fatalf("SQL failed: %v", err)
	}
	if _, ok := params.Get("expr1"); !ok {
		t.Errorf("expected expr1 parameter, got %v", params.Names())
	}
}

func TestDecoratedExpressionInPredicates(t *testing.T) {
	c := NewCompiler(SphinxQL)
	e := query.NewExpression("`price` > ?", 10)

	plain := query.NewSelect().From("foo").Where(e).Having(e)
	decorated := query.NewSelect().From("foo").Where(Decorate(e, SphinxQL)).Having(Decorate(e, SphinxQL))
	if err := decorated.Err(); err != nil {
		t.Fatalf("unexpected builder error: %v", err)
	}

	want, err := c.Prepare(plain, Positional)
	if err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}
	got, err := c.Prepare(decorated, Positional)
	if err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}
	if got.SQL != want.SQL {
		t.Errorf("expected SQL %q, got %q", want.SQL, got.SQL)
	}
	if !reflect.DeepEqual(got.ParamOrder, want.ParamOrder) {
		t.Errorf("expected param order %v, got %v", want.ParamOrder, got.ParamOrder)
	}

	wantLiteral, err := c.SQLString(plain)
	if err != nil {
		t.Fatalf("SQLString failed: %v", err)
	}
	gotLiteral, err := c.SQLString(decorated)
	if err != nil {
		t.Fatalf("SQLString failed: %v", err)
	}
	if gotLiteral != wantLiteral {
		t.Errorf("expected SQL %q, got %q", wantLiteral, gotLiteral)
	}

	del, err := c.SQLString(query.NewDelete().From("foo").Where(Decorate(e, SphinxQL)))
	if err != nil {
		t.Fatalf("SQLString failed: %v", err)
	}
	if del != "DELETE FROM `foo` WHERE `price` > 10" {
		t.Errorf("unexpected DELETE: %q", del)
	}
}
