package compile

import (
	"reflect"
	"testing"

	"github.com/shipq/sphinxql/query"
)

func TestProcessSelect(t *testing.T) {
	tests := []struct {
		name        string
		sel         *query.Select
		wantColumns [][]string
		wantTable   string
	}{
		{
			name:        "star",
			sel:         query.NewSelect().From("foo"),
			wantColumns: [][]string{{"*"}},
			wantTable:   "`foo`",
		},
		{
			name:        "table list",
			sel:         query.NewSelect().From([]string{"foo", "bar"}),
			wantColumns: [][]string{{"*"}},
			wantTable:   "`foo`, `bar`",
		},
		{
			name:        "aliased and bare",
			sel:         query.NewSelect().From("foo").Columns(query.As("bar", "baz"), "bam"),
			wantColumns: [][]string{{"`baz`", "`bar`"}, {"`bam`"}},
			wantTable:   "`foo`",
		},
		{
			name:        "expression with parameters",
			sel:         query.NewSelect().From("foo").Columns(query.NewExpression("EXIST(?, 5) AS ?", "baz", query.Identifier("bar"))),
			wantColumns: [][]string{{"EXIST(?, 5) AS `bar`"}},
			wantTable:   "`foo`",
		},
		{
			name:        "anonymous expression without table",
			sel:         query.NewSelect().Columns(query.Raw("1+1")),
			wantColumns: [][]string{{"1+1", "`Expression1`"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := newState(Positional, NewParameterContainer())
			columns, table, err := NewCompiler(SphinxQL).processSelect(st, tt.sel.State())
			if err != nil {
				t.Fatalf("processSelect failed: %v", err)
			}
			if !reflect.DeepEqual(columns, tt.wantColumns) {
				t.Errorf("expected columns %v, got %v", tt.wantColumns, columns)
			}
			if table != tt.wantTable {
				t.Errorf("expected table %q, got %q", tt.wantTable, table)
			}
		})
	}
}

func TestProcessOrderings(t *testing.T) {
	sel := query.NewSelect().From("foo").
		Order(map[string]string{"c1": "asc"}).
		Order("c2 desc").
		Order([]any{"c3", query.Desc("baz"), query.Raw("RAND()")})

	st := newState(Positional, NewParameterContainer())
	got, err := NewCompiler(SphinxQL).processOrderings(st, sel.State().Order, "order")
	if err != nil {
		t.Fatalf("processOrderings failed: %v", err)
	}

	want := [][]string{
		{"`c1`", "ASC"},
		{"`c2`", "DESC"},
		{"`c3`", "ASC"},
		{"`baz`", "DESC"},
		{"RAND()"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestProcessGroup(t *testing.T) {
	sel := query.NewSelect().From("foo").Group("c1, c2", query.NewExpression("DAY(?)", query.Identifier("c3")))

	st := newState(nil, nil)
	got, err := NewCompiler(SphinxQL).processGroup(st, sel.State().Group)
	if err != nil {
		t.Fatalf("processGroup failed: %v", err)
	}

	want := []string{"`c1`", "`c2`", "DAY(`c3`)"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestProcessLimitOffset(t *testing.T) {
	five := 5
	c := NewCompiler(SphinxQL)

	st := newState(Positional, NewParameterContainer())
	if got := c.processLimitOffset(st, &five, nil); !reflect.DeepEqual(got, []string{"?", "?"}) {
		t.Errorf("expected [? ?], got %v", got)
	}
	if names := st.params.Names(); !reflect.DeepEqual(names, []string{"offset", "limit"}) {
		t.Errorf("expected offset registered before limit, got %v", names)
	}

	if got := c.processLimitOffset(newState(nil, nil), &five, nil); !reflect.DeepEqual(got, []string{"0", "5"}) {
		t.Errorf("expected [0 5], got %v", got)
	}

	if got := c.processLimitOffset(newState(nil, nil), nil, nil); got != nil {
		t.Errorf("expected nil, got %v", got)
	}
}

func TestProcessOption(t *testing.T) {
	opts := query.Options{
		{Name: "ranker", Value: "bm25"},
		{Name: "max_matches", Value: 500},
		{Name: "field_weights", Value: query.Raw("(title=10, body=3)")},
	}

	st := newState(Positional, NewParameterContainer())
	got, err := NewCompiler(SphinxQL).processOption(st, opts)
	if err != nil {
		t.Fatalf("processOption failed: %v", err)
	}

	want := [][]string{
		{"`ranker`", "?"},
		{"`max_matches`", "?"},
		{"`field_weights`", "(title=10, body=3)"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestProcessWhereEmpty(t *testing.T) {
	st := newState(nil, nil)
	got, err := NewCompiler(SphinxQL).processWhere(st, query.NewWhere(), "where")
	if err != nil {
		t.Fatalf("processWhere failed: %v", err)
	}
	if got != "" {
		t.Errorf("expected empty clause, got %q", got)
	}

	nested := query.NewWhere()
	nested.Nest().Unnest()
	got, err = NewCompiler(SphinxQL).processWhere(st, nested, "where")
	if err != nil {
		t.Fatalf("processWhere failed: %v", err)
	}
	if got != "" {
		t.Errorf("expected empty nested set to render nothing, got %q", got)
	}
}
