package exprlang

import (
	"fmt"
	"strings"
)

// opSymbols maps the internal operator function names back to the infix
// symbols the parser accepts, so Unparse produces text Parse can re-read.
var opSymbols = map[string]string{
	OpAdd: "+",
	OpSub: "-",
	OpMul: "*",
	OpDiv: "/",
	OpMod: "%",
	OpEq:  "==",
	OpNe:  "!=",
	OpLt:  "<",
	OpLe:  "<=",
	OpGt:  ">",
	OpGe:  ">=",
}

// Unparse renders an Expr back to formula text. It always parenthesises
// binary subexpressions, so the result is unambiguous regardless of how
// precedence-sensitive the original text was: Parse(Unparse(e)) evaluates
// identically to e on every state (TP6), even though the text need not be
// byte-identical to what produced e.
func Unparse(e Expr) string {
	var b strings.Builder
	unparse(&b, e)
	return b.String()
}

func unparse(b *strings.Builder, e Expr) {
	switch x := e.(type) {
	case Literal:
		b.WriteString(x.Value.Render())
	case Variable:
		b.WriteString(x.Name)
	case Unary:
		b.WriteString("-")
		unparse(b, x.X)
	case Binary:
		sym, ok := opSymbols[x.Op]
		if !ok {
			sym = x.Op
		}
		b.WriteString("(")
		unparse(b, x.X)
		b.WriteString(sym)
		unparse(b, x.Y)
		b.WriteString(")")
	case Call:
		b.WriteString(x.Name)
		b.WriteString("(")
		for i, a := range x.Args {
			if i > 0 {
				b.WriteString(", ")
			}
			unparse(b, a)
		}
		b.WriteString(")")
	default:
		b.WriteString(fmt.Sprintf("<?%T>", e))
	}
}
