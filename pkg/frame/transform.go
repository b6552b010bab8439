package frame

import (
	"github.com/stockflow/sdsim/pkg/exprlang"
	"github.com/stockflow/sdsim/pkg/ids"
	"github.com/stockflow/sdsim/pkg/model"
	"github.com/stockflow/sdsim/pkg/variant"
)

// Mutator extends Reader with the two operations the implicit-flows pass
// needs to keep the system plane's synthesised edges in sync with the
// user-authored Drains/Fills edges. model.Store satisfies this.
type Mutator interface {
	Reader
	AddEdge(e *model.Edge) (ids.ObjectID, error)
	RemoveEdge(id ids.ObjectID)
}

// TransformResult is the output of running the pre-compilation transform
// passes over a frame: the cached ASTs the compiler will bind, and any
// issues raised along the way. An idempotent rerun over an unchanged
// frame produces an equivalent result.
type TransformResult struct {
	ASTs   *ASTCache
	Issues *NodeIssuesError
}

// Run executes the three pre-compilation passes in order (§4.3):
// issue cleaner, formula parser, implicit flows. It never aborts after a
// pass with issues — every pass runs regardless, and the caller decides
// whether TransformResult.Issues.empty() before proceeding to compile.
func Run(m Mutator) *TransformResult {
	issues := newNodeIssuesError() // pass 1: issue cleaner — start from a clean ledger
	asts := NewASTCache()

	parseFormulas(m, asts, issues) // pass 2
	syncImplicitFlows(m)           // pass 3

	return &TransformResult{ASTs: asts, Issues: issues}
}

// parseFormulas is the formula parser pass: for every object carrying a
// formula attribute, parse it once and cache the AST, or attach an
// ExpressionSyntax issue on failure.
func parseFormulas(r Reader, asts *ASTCache, issues *NodeIssuesError) {
	for _, o := range r.Objects() {
		v, err := o.Attribute(model.AttrFormula)
		if err != nil || v.Type != variant.TypeString {
			continue
		}
		e, perr := exprlang.Parse(v.String)
		if perr != nil {
			issues.add(o.ID, NodeIssue{Kind: ExpressionSyntax, Err: perr})
			continue
		}
		asts.Put(o.ID, e)
	}
}
