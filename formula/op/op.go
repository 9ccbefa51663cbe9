package op

type Op rune

const (
	Invalid Op = 0

	EOF Op = 1 << iota
	Ident
	Number
	Literal
	Error
	Add
	Sub
	Mul
	Div
	Percent
	Pow
	Concat
	Eq
	Ne
	Lt
	Le
	Gt
	Ge
	Comma
	BegGrp
	EndGrp
)

var mapping = map[Op]string{
	Add:     "+",
	Sub:     "-",
	Mul:     "*",
	Pow:     "^",
	Div:     "/",
	Percent: "%",
	Concat:  "&",
	Eq:      "=",
	Ne:      "<>",
	Lt:      "<",
	Le:      "<=",
	Gt:      ">",
	Ge:      ">=",
}

func Symbol(oper Op) string {
	return mapping[oper]
}

func IsComparison(oper Op) bool {
	switch oper {
	case Eq, Ne, Lt, Le, Gt, Ge:
		return true
	default:
		return false
	}
}
