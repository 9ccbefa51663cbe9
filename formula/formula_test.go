package formula

import (
	"errors"
	"iter"
	"slices"
	"strings"
	"testing"

	"github.com/midbel/xlcalc/formula/op"
	"github.com/midbel/xlcalc/value"
)

type fakeRef struct {
	name   string
	values []value.Value
}

func (r fakeRef) String() string {
	return r.name
}

func (r fakeRef) Value() (value.Value, error) {
	if len(r.values) == 0 {
		return value.Empty(), nil
	}
	return r.values[0], nil
}

func (r fakeRef) Values() iter.Seq2[value.Value, error] {
	return func(yield func(value.Value, error) bool) {
		for _, v := range r.values {
			if !yield(v, nil) {
				return
			}
		}
	}
}

type fakeContext map[string][]value.Value

func (c fakeContext) Resolve(ident string) (Reference, error) {
	vs, ok := c[strings.ToUpper(ident)]
	if !ok {
		return nil, &InvalidReferenceError{
			Ident: ident,
		}
	}
	return fakeRef{name: ident, values: vs}, nil
}

type fakeTable map[string]Builtin

func (t fakeTable) Lookup(name string) (Builtin, bool) {
	fn, ok := t[strings.ToUpper(name)]
	return fn, ok
}

func sum(args []Arg) (value.Value, error) {
	var total value.Float
	for _, a := range args {
		for v, err := range a.Values() {
			if err != nil {
				return nil, err
			}
			n, err := value.CastToFloat(v)
			if err != nil {
				return value.ErrValue, nil
			}
			total += n
		}
	}
	return total, nil
}

func fake() (fakeContext, fakeTable) {
	ctx := fakeContext{
		"A1":        {value.Float(5)},
		"B1":        {value.Text("foo")},
		"C1":        {value.ErrNA},
		"D1":        {value.Empty()},
		"A1:A3":     {value.Float(1), value.Float(2), value.Float(3)},
		"SHEET2!C3": {value.Float(42)},
	}
	table := fakeTable{
		"SUM": {
			Name: "SUM",
			Min:  1,
			Max:  -1,
			Call: sum,
		},
		"STDEV.S": {
			Name: "STDEV.S",
			Min:  1,
			Max:  1,
			Call: sum,
		},
	}
	return ctx, table
}

func TestFormulaValue(t *testing.T) {
	tests := []struct {
		Input     string
		Want      string
		IsFormula bool
	}{
		{
			Input:     "=A1+1",
			Want:      "A1+1",
			IsFormula: true,
		},
		{
			Input:     "  = SUM(A1:A3) ",
			Want:      "SUM(A1:A3)",
			IsFormula: true,
		},
		{
			Input:     "5",
			Want:      "5",
			IsFormula: false,
		},
		{
			Input:     "",
			Want:      "",
			IsFormula: false,
		},
	}
	for _, c := range tests {
		var f Formula
		f.SetValue(c.Input)
		if got := f.Value(); got != c.Want {
			t.Errorf("%q: value mismatched! want %q, got %q", c.Input, c.Want, got)
		}
		if f.IsFormula() != c.IsFormula {
			t.Errorf("%q: formula flag mismatched! want %t, got %t", c.Input, c.IsFormula, f.IsFormula())
		}
	}
}

func TestFormulaReassign(t *testing.T) {
	f := NewFormula("=A1*2")
	f.SetValue("5")
	if f.IsFormula() {
		t.Errorf("formula flag should be cleared after assigning a literal")
	}
	if f.String() != "5" {
		t.Errorf("string mismatched! want 5, got %s", f.String())
	}
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		Input string
		Want  []Token
	}{
		{
			Input: "$A2:B$4",
			Want: []Token{
				{Literal: "$A2:B$4", Type: op.Ident},
			},
		},
		{
			Input: "Sheet2!C3 + 1",
			Want: []Token{
				{Literal: "Sheet2!C3", Type: op.Ident},
				{Type: op.Add},
				{Literal: "1", Type: op.Number},
			},
		},
		{
			Input: "'My Sheet'!A1:B2",
			Want: []Token{
				{Literal: "'My Sheet'!A1:B2", Type: op.Ident},
			},
		},
		{
			Input: "\"say \"\"hi\"\"\" & #n/a",
			Want: []Token{
				{Literal: "say \"hi\"", Type: op.Literal},
				{Type: op.Concat},
				{Literal: "#N/A", Type: op.Error},
			},
		},
		{
			Input: "SUM( 1.5e2 ; .5 )<>3%",
			Want: []Token{
				{Literal: "SUM", Type: op.Ident},
				{Type: op.BegGrp},
				{Literal: "1.5e2", Type: op.Number},
				{Type: op.Comma},
				{Literal: ".5", Type: op.Number},
				{Type: op.EndGrp},
				{Type: op.Ne},
				{Literal: "3", Type: op.Number},
				{Type: op.Percent},
			},
		},
		{
			Input: "1<=2>=3<4>5",
			Want: []Token{
				{Literal: "1", Type: op.Number},
				{Type: op.Le},
				{Literal: "2", Type: op.Number},
				{Type: op.Ge},
				{Literal: "3", Type: op.Number},
				{Type: op.Lt},
				{Literal: "4", Type: op.Number},
				{Type: op.Gt},
				{Literal: "5", Type: op.Number},
			},
		},
	}
	for _, c := range tests {
		got, err := Tokenize(c.Input)
		if err != nil {
			t.Errorf("%s: unexpected error: %s", c.Input, err)
			continue
		}
		if len(got) != len(c.Want) {
			t.Errorf("%s: number of tokens mismatched! want %d, got %d (%v)", c.Input, len(c.Want), len(got), got)
			continue
		}
		for i := range got {
			if got[i].Type != c.Want[i].Type || got[i].Literal != c.Want[i].Literal {
				t.Errorf("%s: token mismatched! want %s, got %s", c.Input, c.Want[i], got[i])
			}
		}
	}
}

func TestTokenizeInvalid(t *testing.T) {
	tests := []string{
		"\"unterminated",
		"1.2.3",
		"1e",
		"12abc",
		"1 @ 2",
		"#FOO!",
		"'My Sheet",
		"'My Sheet' + 1",
	}
	for _, str := range tests {
		_, err := Tokenize(str)
		if err == nil {
			t.Errorf("%s: expected error but succeed", str)
			continue
		}
		var perr *ParseError
		if !errors.As(err, &perr) || !errors.Is(err, ErrParse) {
			t.Errorf("%s: expected parse error, got %T (%s)", str, err, err)
		}
	}
}

func TestParse(t *testing.T) {
	_, table := fake()
	tests := []struct {
		Expr string
		Dump string
		Text string
	}{
		{
			Expr: "2+3*4",
			Dump: "binary(number(2), binary(number(3), number(4), *), +)",
			Text: "2+3*4",
		},
		{
			Expr: "(2+3)*4",
			Dump: "binary(binary(number(2), number(3), +), number(4), *)",
			Text: "(2+3)*4",
		},
		{
			Expr: "1-(2-3)",
			Dump: "binary(number(1), binary(number(2), number(3), -), -)",
			Text: "1-(2-3)",
		},
		{
			Expr: "-2^2",
			Dump: "binary(unary(number(2), -), number(2), ^)",
			Text: "-2^2",
		},
		{
			Expr: "1&2=\"12\"",
			Dump: "binary(binary(number(1), number(2), &), literal(12), =)",
			Text: "1&2=\"12\"",
		},
		{
			Expr: "sum(A1:A3, 10%) > true",
			Dump: "binary(call(SUM, reference(A1:A3), postfix(number(10), %)), boolean(TRUE), >)",
			Text: "SUM(A1:A3,10%)>TRUE",
		},
		{
			Expr: "_xlfn.STDEV.S(Sheet2!C3)",
			Dump: "call(STDEV.S, reference(Sheet2!C3))",
			Text: "STDEV.S(Sheet2!C3)",
		},
	}
	for _, c := range tests {
		expr, err := ParseFormula(c.Expr, table)
		if err != nil {
			t.Errorf("%s: unexpected error: %s", c.Expr, err)
			continue
		}
		if got := Dump(expr); got != c.Dump {
			t.Errorf("%s: tree mismatched! want %s, got %s", c.Expr, c.Dump, got)
		}
		if got := expr.String(); got != c.Text {
			t.Errorf("%s: text mismatched! want %s, got %s", c.Expr, c.Text, got)
		}
	}
}

func TestParseInvalid(t *testing.T) {
	_, table := fake()
	tests := []struct {
		Expr string
		Err  error
	}{
		{
			Expr: "",
			Err:  ErrParse,
		},
		{
			Expr: "=",
			Err:  ErrParse,
		},
		{
			Expr: "=1",
			Err:  ErrParse,
		},
		{
			Expr: "(1+2",
			Err:  ErrParse,
		},
		{
			Expr: "1+2)",
			Err:  ErrParse,
		},
		{
			Expr: "1+",
			Err:  ErrParse,
		},
		{
			Expr: "1 2",
			Err:  ErrParse,
		},
		{
			Expr: "*2",
			Err:  ErrParse,
		},
		{
			Expr: "SUM(1,",
			Err:  ErrParse,
		},
		{
			Expr: "SUM(1,)",
			Err:  ErrParse,
		},
		{
			Expr: "SUM()",
			Err:  ErrParse,
		},
		{
			Expr: "STDEV.S(1, 2)",
			Err:  ErrParse,
		},
		{
			Expr: "\"abc",
			Err:  ErrParse,
		},
		{
			Expr: "FOOBAR(1)",
			Err:  ErrUnsupported,
		},
	}
	for _, c := range tests {
		_, err := ParseFormula(c.Expr, table)
		if !errors.Is(err, c.Err) {
			t.Errorf("%q: error mismatched! want %v, got %v", c.Expr, c.Err, err)
		}
	}
}

func TestParseWithResolver(t *testing.T) {
	ctx, table := fake()
	var seen []string
	resolver := ResolverFunc(func(ident string) (Reference, error) {
		seen = append(seen, ident)
		return ctx.Resolve(ident)
	})
	p := NewParser(table, resolver)
	expr, err := p.Parse("A1 + SUM(A1:A3) * Sheet2!C3")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	want := []string{"A1", "A1:A3", "Sheet2!C3"}
	if !slices.Equal(seen, want) {
		t.Errorf("resolved identifiers mismatched! want %v, got %v", want, seen)
	}
	got, err := Eval(expr, nil)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if got.String() != "257" {
		t.Errorf("result mismatched! want 257, got %s", got)
	}

	_, err = p.Parse("A1 + ZZ99")
	if !errors.Is(err, ErrReference) {
		t.Errorf("expected reference error, got %v", err)
	}
}

func TestEval(t *testing.T) {
	ctx, table := fake()
	tests := []struct {
		Expr string
		Want string
	}{
		{
			Expr: "2+3*4",
			Want: "14",
		},
		{
			Expr: "(2+3)*4",
			Want: "20",
		},
		{
			Expr: "10-4-3",
			Want: "3",
		},
		{
			Expr: "2^3^2",
			Want: "64",
		},
		{
			Expr: "-2^2",
			Want: "4",
		},
		{
			Expr: "-(2^2)",
			Want: "-4",
		},
		{
			Expr: "50%*4",
			Want: "2",
		},
		{
			Expr: "\"3\"+4",
			Want: "7",
		},
		{
			Expr: "TRUE+1",
			Want: "2",
		},
		{
			Expr: "\"abc\"*2",
			Want: "#VALUE!",
		},
		{
			Expr: "1/0",
			Want: "#DIV/0!",
		},
		{
			Expr: "0^-1",
			Want: "#NUM!",
		},
		{
			Expr: "1&2",
			Want: "12",
		},
		{
			Expr: "\"x\"&TRUE&1.5",
			Want: "xTRUE1.5",
		},
		{
			Expr: "1+2&\"!\"",
			Want: "3!",
		},
		{
			Expr: "A1*2",
			Want: "10",
		},
		{
			Expr: "A1:A3",
			Want: "1",
		},
		{
			Expr: "SUM(A1:A3, A1)",
			Want: "11",
		},
		{
			Expr: "a1 & B1",
			Want: "5foo",
		},
		{
			Expr: "D1+1",
			Want: "1",
		},
		{
			Expr: "C1+1",
			Want: "#N/A",
		},
		{
			Expr: "#DIV/0! & C1",
			Want: "#DIV/0!",
		},
		{
			Expr: "-B1",
			Want: "#VALUE!",
		},
		{
			Expr: "1 < \"a\"",
			Want: "TRUE",
		},
		{
			Expr: "\"zzz\" < FALSE",
			Want: "TRUE",
		},
		{
			Expr: "\"ABC\" = \"abc\"",
			Want: "TRUE",
		},
		{
			Expr: "2 >= 3",
			Want: "FALSE",
		},
		{
			Expr: "1 <> 1",
			Want: "FALSE",
		},
		{
			Expr: "1+1 = 2",
			Want: "TRUE",
		},
		{
			Expr: "D1 = 0",
			Want: "TRUE",
		},
		{
			Expr: "D1 = \"\"",
			Want: "TRUE",
		},
	}
	for _, c := range tests {
		expr, err := ParseFormula(c.Expr, table)
		if err != nil {
			t.Errorf("%s: fail to parse: %s", c.Expr, err)
			continue
		}
		got, err := Eval(expr, ctx)
		if err != nil {
			t.Errorf("%s: fail to evaluate: %s", c.Expr, err)
			continue
		}
		if got.String() != c.Want {
			t.Errorf("%s: result mismatched! want %s, got %s", c.Expr, c.Want, got)
		}
	}
}

func TestEvalIdempotent(t *testing.T) {
	ctx, table := fake()
	expr, err := ParseFormula("SUM(A1:A3)/A1", table)
	if err != nil {
		t.Fatal(err)
	}
	first, err := Eval(expr, ctx)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Eval(expr, ctx)
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Errorf("results differ between evaluations: %s and %s", first, second)
	}
}

func TestEvalUnknownReference(t *testing.T) {
	ctx, table := fake()
	expr, err := ParseFormula("A1 + Nowhere!A1", table)
	if err != nil {
		t.Fatal(err)
	}
	_, err = Eval(expr, ctx)
	var ref *InvalidReferenceError
	if !errors.As(err, &ref) {
		t.Fatalf("expected invalid reference error, got %v", err)
	}
	if ref.Ident != "Nowhere!A1" {
		t.Errorf("identifier mismatched! want Nowhere!A1, got %s", ref.Ident)
	}
}

func TestOffset(t *testing.T) {
	tests := []struct {
		Expr    string
		Lines   int64
		Columns int64
		Want    string
	}{
		{
			Expr:    "A1+$B$2",
			Lines:   1,
			Columns: 1,
			Want:    "B2+$B$2",
		},
		{
			Expr:    "SUM(A$1:$A3, Sheet2!C3)",
			Lines:   2,
			Columns: 0,
			Want:    "SUM(A$1:$A5,Sheet2!C5)",
		},
		{
			Expr:    "A1*2",
			Lines:   -1,
			Columns: 0,
			Want:    "#REF!*2",
		},
	}
	_, table := fake()
	for _, c := range tests {
		expr, err := ParseFormula(c.Expr, table)
		if err != nil {
			t.Errorf("%s: fail to parse: %s", c.Expr, err)
			continue
		}
		got := Offset(expr, c.Lines, c.Columns).String()
		if got != c.Want {
			t.Errorf("%s: offset mismatched! want %s, got %s", c.Expr, c.Want, got)
		}
	}
}

func TestReferences(t *testing.T) {
	_, table := fake()
	expr, err := ParseFormula("SUM(A1:A3)+B1*Sheet2!C3", table)
	if err != nil {
		t.Fatal(err)
	}
	got := References(expr)
	want := []string{"A1:A3", "B1", "Sheet2!C3"}
	if !slices.Equal(got, want) {
		t.Errorf("references mismatched! want %v, got %v", want, got)
	}
}

func TestCalls(t *testing.T) {
	_, table := fake()
	tests := []struct {
		Expr string
		Want bool
	}{
		{Expr: "SUM(A1:A3)", Want: true},
		{Expr: "1+sum(A1)", Want: true},
		{Expr: "A1*2", Want: false},
		{Expr: "\"SUM(\"&A1", Want: false},
		{Expr: "STDEV.S(A1)", Want: false},
	}
	for _, c := range tests {
		expr, err := ParseFormula(c.Expr, table)
		if err != nil {
			t.Errorf("%s: fail to parse: %s", c.Expr, err)
			continue
		}
		if got := Calls(expr, "SUM"); got != c.Want {
			t.Errorf("%s: call mismatched! want %t, got %t", c.Expr, c.Want, got)
		}
	}
}
