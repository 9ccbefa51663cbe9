package formula

import (
	"fmt"
	"iter"

	"github.com/midbel/xlcalc/value"
)

// Reference is the value an external identifier is bound to: usually a range
// of cells, possibly a single one.
type Reference interface {
	fmt.Stringer
	// Value gives the value of the first cell.
	Value() (value.Value, error)
	// Values yields the value of every cell in row-major order.
	Values() iter.Seq2[value.Value, error]
}

// FilterableReference is implemented by references able to leave out the
// cells whose formula matches a predicate.
type FilterableReference interface {
	Reference
	Without(func(Expr) bool) Reference
}

// SparseReference is implemented by references whose Values leave out the
// empty cells lying outside the used part of their sheet. Len gives the number
// of cells covered, walked or not.
type SparseReference interface {
	Reference
	Len() int64
}

type Resolver interface {
	Resolve(ident string) (Reference, error)
}

type ResolverFunc func(string) (Reference, error)

func (f ResolverFunc) Resolve(ident string) (Reference, error) {
	return f(ident)
}

// Builtin describes a callable function. Max set to a negative number means
// the function accepts any number of arguments from Min.
type Builtin struct {
	Name string
	Min  int
	Max  int
	Call func([]Arg) (value.Value, error)
}

func (b Builtin) Accept(n int) bool {
	return n >= b.Min && (b.Max < 0 || n <= b.Max)
}

type FunctionTable interface {
	Lookup(name string) (Builtin, bool)
}

// Arg is an argument given to a function. It is not evaluated until the
// function asks for it.
type Arg struct {
	expr Expr
	ctx  Resolver
}

func NewArg(expr Expr, ctx Resolver) Arg {
	return Arg{
		expr: expr,
		ctx:  ctx,
	}
}

func (a Arg) Expr() Expr {
	return a.expr
}

func (a Arg) Eval() (value.Value, error) {
	return Eval(a.expr, a.ctx)
}

func (a Arg) IsReference() bool {
	_, ok := a.expr.(reference)
	return ok
}

func (a Arg) Reference() (Reference, error) {
	r, ok := a.expr.(reference)
	if !ok {
		return nil, fmt.Errorf("%s: %w: not a reference", a.expr, ErrEval)
	}
	return bind(r, a.ctx)
}

// Values yields all the values of the argument. A reference gives the values
// of all its cells, any other expression its own value.
func (a Arg) Values() iter.Seq2[value.Value, error] {
	if !a.IsReference() {
		return func(yield func(value.Value, error) bool) {
			yield(a.Eval())
		}
	}
	ref, err := a.Reference()
	if err != nil {
		return func(yield func(value.Value, error) bool) {
			yield(nil, err)
		}
	}
	return ref.Values()
}

type constant struct {
	name  string
	value value.Value
}

// Constant binds a name to a single value.
func Constant(name string, val value.Value) Reference {
	return constant{
		name:  name,
		value: val,
	}
}

func (c constant) String() string {
	return c.name
}

func (c constant) Value() (value.Value, error) {
	return c.value, nil
}

func (c constant) Values() iter.Seq2[value.Value, error] {
	return func(yield func(value.Value, error) bool) {
		yield(c.value, nil)
	}
}
