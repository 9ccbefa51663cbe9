package value

var (
	ErrNull  = createError("#NULL!")
	ErrDiv0  = createError("#DIV/0!")
	ErrValue = createError("#VALUE!")
	ErrRef   = createError("#REF!")
	ErrName  = createError("#NAME?")
	ErrNum   = createError("#NUM!")
	ErrNA    = createError("#N/A")
)

var errorCodes = map[string]Error{
	ErrNull.code:  ErrNull,
	ErrDiv0.code:  ErrDiv0,
	ErrValue.code: ErrValue,
	ErrRef.code:   ErrRef,
	ErrName.code:  ErrName,
	ErrNum.code:   ErrNum,
	ErrNA.code:    ErrNA,
}

// Error is an in-cell error marker. It flows through formulas like any other
// value.
type Error struct {
	code string
}

func createError(code string) Error {
	return Error{
		code: code,
	}
}

func ErrorFromString(code string) (Error, bool) {
	e, ok := errorCodes[code]
	return e, ok
}

func (Error) Type() string {
	return TypeError
}

func (Error) Kind() ValueKind {
	return KindError
}

func (e Error) Error() string {
	return e.code
}

func (e Error) String() string {
	return e.code
}

func (e Error) Scalar() any {
	return e.code
}
