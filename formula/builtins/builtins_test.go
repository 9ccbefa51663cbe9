package builtins

import (
	"errors"
	"iter"
	"strings"
	"testing"

	"github.com/midbel/xlcalc/formula"
	"github.com/midbel/xlcalc/value"
)

type testCell struct {
	formula formula.Formula
	value   value.Value
}

type testRange struct {
	name  string
	cells []testCell
}

func (r testRange) String() string {
	return r.name
}

func (r testRange) Value() (value.Value, error) {
	if len(r.cells) == 0 {
		return value.Empty(), nil
	}
	return r.cells[0].value, nil
}

func (r testRange) Values() iter.Seq2[value.Value, error] {
	return func(yield func(value.Value, error) bool) {
		for _, c := range r.cells {
			if !yield(c.value, nil) {
				return
			}
		}
	}
}

func (r testRange) Without(skip func(formula.Expr) bool) formula.Reference {
	var cells []testCell
	for _, c := range r.cells {
		if c.formula.IsFormula() {
			expr, err := formula.ParseFormula(c.formula.Value(), New())
			if err == nil && skip(expr) {
				continue
			}
		}
		cells = append(cells, c)
	}
	return testRange{name: r.name, cells: cells}
}

func numbers(list ...float64) []testCell {
	var cells []testCell
	for _, n := range list {
		cells = append(cells, testCell{value: value.Float(n)})
	}
	return cells
}

func testResolver() formula.Resolver {
	ranges := map[string][]testCell{
		"A1:A3": numbers(2, 4, 6),
		"B1:B4": {
			{value: value.Float(1)},
			{value: value.Text("x")},
			{value: value.Empty()},
			{value: value.Boolean(true)},
		},
		"C1:C3": {
			{value: value.Float(1)},
			{value: value.ErrDiv0},
			{value: value.Float(3)},
		},
		"D1:D4": {
			{value: value.Float(10)},
			{value: value.Float(20)},
			{formula: formula.NewFormula("=SUBTOTAL(9,D1:D2)"), value: value.Float(30)},
			{value: value.Float(5)},
		},
		"E1:E3": {
			{value: value.Empty()},
			{value: value.Text("")},
			{value: value.Text("a")},
		},
		"F1": {
			{value: value.Empty()},
		},
		"G1": {
			{value: value.Text("  hello   world ")},
		},
		"H1:H2": {
			{value: value.Float(10)},
			{formula: formula.NewFormula("=LEN(\"SUBTOTAL(\")"), value: value.Float(9)},
		},
	}
	return formula.ResolverFunc(func(ident string) (formula.Reference, error) {
		cells, ok := ranges[strings.ToUpper(ident)]
		if !ok {
			return nil, &formula.InvalidReferenceError{Ident: ident}
		}
		return testRange{name: ident, cells: cells}, nil
	})
}

func evaluate(t *testing.T, str string) (value.Value, error) {
	t.Helper()
	expr, err := formula.ParseFormula(str, New())
	if err != nil {
		return nil, err
	}
	return formula.Eval(expr, testResolver())
}

func TestBuiltins(t *testing.T) {
	tests := []struct {
		Expr string
		Want string
	}{
		{Expr: "SUM(A1:A3)", Want: "12"},
		{Expr: "sum(A1:A3, 3, \"5\")", Want: "20"},
		{Expr: "SUM(B1:B4)", Want: "1"},
		{Expr: "SUM(\"abc\", 1)", Want: "#VALUE!"},
		{Expr: "SUM(C1:C3)", Want: "#DIV/0!"},
		{Expr: "AVERAGE(A1:A3)", Want: "4"},
		{Expr: "AVERAGE(B1:B4)", Want: "1"},
		{Expr: "AVERAGE(F1)", Want: "#DIV/0!"},
		{Expr: "COUNT(B1:B4)", Want: "1"},
		{Expr: "COUNT(C1:C3)", Want: "2"},
		{Expr: "COUNTA(B1:B4)", Want: "3"},
		{Expr: "COUNTBLANK(E1:E3)", Want: "2"},
		{Expr: "MAX(A1:A3, 1)", Want: "6"},
		{Expr: "MIN(A1:A3, 1)", Want: "1"},
		{Expr: "MAX(F1)", Want: "0"},
		{Expr: "PRODUCT(A1:A3)", Want: "48"},
		{Expr: "VAR(A1:A3)", Want: "4"},
		{Expr: "VARP(2, 4)", Want: "1"},
		{Expr: "STDEV(A1:A3)", Want: "2"},
		{Expr: "STDEVP(2, 4)", Want: "1"},
		{Expr: "STDEV(2)", Want: "#DIV/0!"},
		{Expr: "ABS(-3.5)", Want: "3.5"},
		{Expr: "ROUND(2.5, 0)", Want: "3"},
		{Expr: "ROUND(-2.5, 0)", Want: "-3"},
		{Expr: "ROUND(1234, -2)", Want: "1200"},
		{Expr: "INT(-1.5)", Want: "-2"},
		{Expr: "MOD(-3, 2)", Want: "1"},
		{Expr: "MOD(1, 0)", Want: "#DIV/0!"},
		{Expr: "POWER(2, 10)", Want: "1024"},
		{Expr: "SQRT(-1)", Want: "#NUM!"},
		{Expr: "SQRT(16)", Want: "4"},
		{Expr: "ROUND(PI(), 2)", Want: "3.14"},
		{Expr: "IF(1>2, \"yes\", \"no\")", Want: "no"},
		{Expr: "IF(TRUE, 1)", Want: "1"},
		{Expr: "IF(FALSE, 1)", Want: "FALSE"},
		{Expr: "IF(TRUE, 1, 1/0)", Want: "1"},
		{Expr: "IF(\"abc\", 1, 2)", Want: "#VALUE!"},
		{Expr: "IFERROR(1/0, \"none\")", Want: "none"},
		{Expr: "IFERROR(10, \"none\")", Want: "10"},
		{Expr: "AND(TRUE, 1, A1:A3)", Want: "TRUE"},
		{Expr: "AND(TRUE, 0)", Want: "FALSE"},
		{Expr: "OR(FALSE, B1:B4)", Want: "TRUE"},
		{Expr: "OR(E1:E3)", Want: "#VALUE!"},
		{Expr: "NOT(FALSE)", Want: "TRUE"},
		{Expr: "ISBLANK(F1)", Want: "TRUE"},
		{Expr: "ISBLANK(\"\")", Want: "FALSE"},
		{Expr: "ISERROR(1/0)", Want: "TRUE"},
		{Expr: "ISNUMBER(A1:A3)", Want: "TRUE"},
		{Expr: "ISTEXT(\"a\")", Want: "TRUE"},
		{Expr: "CONCATENATE(\"a\", 1, TRUE)", Want: "a1TRUE"},
		{Expr: "CONCAT(A1:A3, \"-\")", Want: "246-"},
		{Expr: "CONCATENATE(\"a\", 1/0)", Want: "#DIV/0!"},
		{Expr: "LEN(\"héllo\")", Want: "5"},
		{Expr: "UPPER(\"abc\")", Want: "ABC"},
		{Expr: "LOWER(\"ABC\")", Want: "abc"},
		{Expr: "TRIM(G1)", Want: "hello world"},
		{Expr: "LEFT(\"hello\", 2)", Want: "he"},
		{Expr: "LEFT(\"hello\")", Want: "h"},
		{Expr: "RIGHT(\"hello\", 3)", Want: "llo"},
		{Expr: "RIGHT(\"hi\", 10)", Want: "hi"},
		{Expr: "LEFT(\"hi\", -1)", Want: "#VALUE!"},
		{Expr: "LEFT(\"abc\", 1e30)", Want: "abc"},
		{Expr: "RIGHT(\"abc\", 1e30)", Want: "abc"},
		{Expr: "ROUND(1.5, 400)", Want: "1.5"},
		{Expr: "ROUND(1234, -400)", Want: "0"},
		{Expr: "ROUND(1.25, 1)", Want: "1.3"},
	}
	for _, c := range tests {
		got, err := evaluate(t, c.Expr)
		if err != nil {
			t.Errorf("%s: unexpected error: %s", c.Expr, err)
			continue
		}
		if got.String() != c.Want {
			t.Errorf("%s: result mismatched! want %s, got %s", c.Expr, c.Want, got)
		}
	}
}

func TestSubtotal(t *testing.T) {
	tests := []struct {
		Expr string
		Want string
	}{
		{Expr: "SUBTOTAL(1, A1:A3)", Want: "4"},
		{Expr: "SUBTOTAL(101, A1:A3)", Want: "4"},
		{Expr: "SUBTOTAL(2, B1:B4)", Want: "1"},
		{Expr: "SUBTOTAL(3, B1:B4)", Want: "3"},
		{Expr: "SUBTOTAL(4, A1:A3)", Want: "6"},
		{Expr: "SUBTOTAL(5, A1:A3)", Want: "2"},
		{Expr: "SUBTOTAL(6, A1:A3)", Want: "48"},
		{Expr: "SUBTOTAL(7, A1:A3)", Want: "2"},
		{Expr: "SUBTOTAL(9, A1:A3, A1:A3)", Want: "24"},
		{Expr: "SUBTOTAL(10, A1:A3)", Want: "4"},
		{Expr: "SUBTOTAL(109, D1:D4)", Want: "35"},
		{Expr: "SUBTOTAL(2, D1:D4)", Want: "3"},
		{Expr: "SUM(D1:D4)", Want: "65"},
		{Expr: "SUBTOTAL(9, H1:H2)", Want: "19"},
	}
	for _, c := range tests {
		got, err := evaluate(t, c.Expr)
		if err != nil {
			t.Errorf("%s: unexpected error: %s", c.Expr, err)
			continue
		}
		if got.String() != c.Want {
			t.Errorf("%s: result mismatched! want %s, got %s", c.Expr, c.Want, got)
		}
	}
}

func TestSubtotalUnsupported(t *testing.T) {
	for _, str := range []string{"SUBTOTAL(0, A1:A3)", "SUBTOTAL(12, A1:A3)", "SUBTOTAL(112, A1:A3)"} {
		_, err := evaluate(t, str)
		var uerr *formula.UnsupportedFunctionError
		if !errors.As(err, &uerr) {
			t.Errorf("%s: expected unsupported function error, got %v", str, err)
		}
	}
}

func TestRegistry(t *testing.T) {
	reg := New()
	for _, name := range []string{"sum", "Sum", "SUBTOTAL", "stdev.s", "iferror"} {
		if _, ok := reg.Lookup(name); !ok {
			t.Errorf("%s: function not found", name)
		}
	}
	if _, ok := reg.Lookup("VLOOKUP"); ok {
		t.Errorf("VLOOKUP should not be registered")
	}
	reg.Register(formula.Builtin{
		Name: "answer",
		Call: func(_ []formula.Arg) (value.Value, error) {
			return value.Float(42), nil
		},
	})
	got, err := formula.ParseFormula("ANSWER()*2", reg)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	res, err := formula.Eval(got, nil)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if res.String() != "84" {
		t.Errorf("result mismatched! want 84, got %s", res)
	}
	if other := New(); len(other.Names()) == len(reg.Names()) {
		t.Errorf("registries should not share their functions")
	}
}

func TestArity(t *testing.T) {
	for _, str := range []string{"SUM()", "ABS(1, 2)", "PI(1)", "IF(TRUE)", "SUBTOTAL(9)"} {
		_, err := formula.ParseFormula(str, New())
		if !errors.Is(err, formula.ErrParse) {
			t.Errorf("%s: expected parse error, got %v", str, err)
		}
	}
}
