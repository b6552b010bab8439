package funcs

// Operator function names. Operators are registered as ordinary Functions
// under these names so the binder's single function-resolution path
// (arity + type-signature checks) applies to them exactly as it does to
// builtin calls like abs or sum.
const (
	OpNeg = "__neg__"
	OpAdd = "__add__"
	OpSub = "__sub__"
	OpMul = "__mul__"
	OpDiv = "__div__"
	OpMod = "__mod__"
	OpEq  = "__eq__"
	OpNe  = "__ne__"
	OpLt  = "__lt__"
	OpLe  = "__le__"
	OpGt  = "__gt__"
	OpGe  = "__ge__"
)
