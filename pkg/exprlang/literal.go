package exprlang

import "github.com/stockflow/sdsim/pkg/variant"

func exprLiteralDouble(v float64) Expr {
	return Literal{Value: variant.Double(v)}
}

func exprLiteralInt(v int) Expr {
	return Literal{Value: variant.Int(v)}
}
