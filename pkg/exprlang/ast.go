// Package exprlang implements the formula language parser: text in,
// UnboundExpression AST out (Parse), plus the Unparse pretty-printer.
// Binding to state indices lives in package binder. Parsing is
// side-effect-free and restartable, matching §4.1 of the specification.
package exprlang

import (
	"github.com/stockflow/sdsim/pkg/funcs"
	"github.com/stockflow/sdsim/pkg/variant"
)

// Expr is the unbound expression AST: a sum type over literal, variable,
// unary, binary, and call nodes. Operators are modelled as named function
// calls (see the Op* constants below) so the binder treats them uniformly with builtin
// functions.
type Expr interface {
	exprNode()
}

// Literal is a constant value appearing verbatim in the formula text.
type Literal struct {
	Value variant.Value
}

// Variable is an identifier reference, resolved during binding to either a
// builtin or a state-variable index.
type Variable struct {
	Name string
}

// Unary applies a named unary operator (currently only __neg__) to X.
type Unary struct {
	Op string
	X  Expr
}

// Binary applies a named binary operator to X and Y.
type Binary struct {
	Op string
	X  Expr
	Y  Expr
}

// Call invokes a named function (builtin or operator) with Args.
type Call struct {
	Name string
	Args []Expr
}

func (Literal) exprNode()  {}
func (Variable) exprNode() {}
func (Unary) exprNode()    {}
func (Binary) exprNode()   {}
func (Call) exprNode()     {}

// Operator function names, aliased from the builtin function registry so
// the parser and the binder agree on a single name for each operator.
const (
	OpNeg = funcs.OpNeg
	OpAdd = funcs.OpAdd
	OpSub = funcs.OpSub
	OpMul = funcs.OpMul
	OpDiv = funcs.OpDiv
	OpMod = funcs.OpMod
	OpEq  = funcs.OpEq
	OpNe  = funcs.OpNe
	OpLt  = funcs.OpLt
	OpLe  = funcs.OpLe
	OpGt  = funcs.OpGt
	OpGe  = funcs.OpGe
)

// FreeVars returns the set of identifier names referenced anywhere in the
// expression, excluding function/operator names (those are resolved
// through the function table, not the symbol table).
func FreeVars(e Expr) map[string]bool {
	out := make(map[string]bool)
	collectFreeVars(e, out)
	return out
}

func collectFreeVars(e Expr, out map[string]bool) {
	switch x := e.(type) {
	case Literal:
	case Variable:
		out[x.Name] = true
	case Unary:
		collectFreeVars(x.X, out)
	case Binary:
		collectFreeVars(x.X, out)
		collectFreeVars(x.Y, out)
	case Call:
		for _, a := range x.Args {
			collectFreeVars(a, out)
		}
	}
}
