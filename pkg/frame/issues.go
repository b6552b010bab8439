package frame

import (
	"fmt"

	"github.com/stockflow/sdsim/pkg/ids"
)

// IssueKind enumerates the per-object diagnostics the transform pass and
// compiler can attach (§6 error taxonomy).
type IssueKind int

const (
	ExpressionSyntax IssueKind = iota
	ExpressionError
	UnusedInput
	UnknownParameter
	DuplicateName
	MissingRequiredParameter
	ComputationCycle
	FlowCycle
	MissingDelayInitialValue
)

func (k IssueKind) String() string {
	switch k {
	case ExpressionSyntax:
		return "ExpressionSyntax"
	case ExpressionError:
		return "ExpressionError"
	case UnusedInput:
		return "UnusedInput"
	case UnknownParameter:
		return "UnknownParameter"
	case DuplicateName:
		return "DuplicateName"
	case MissingRequiredParameter:
		return "MissingRequiredParameter"
	case ComputationCycle:
		return "ComputationCycle"
	case FlowCycle:
		return "FlowCycle"
	case MissingDelayInitialValue:
		return "MissingDelayInitialValue"
	default:
		return "Unknown"
	}
}

// NodeIssue is a single diagnostic attached to one design-graph object.
// Name carries the offending identifier for the kinds that reference one
// (UnusedInput, UnknownParameter, DuplicateName); Err carries the
// underlying error for ExpressionSyntax/ExpressionError.
type NodeIssue struct {
	Kind IssueKind
	Name string
	Err  error
}

func (i NodeIssue) String() string {
	if i.Err != nil {
		return fmt.Sprintf("%s: %v", i.Kind, i.Err)
	}
	if i.Name != "" {
		return fmt.Sprintf("%s(%s)", i.Kind, i.Name)
	}
	return i.Kind.String()
}

// NodeIssuesError aggregates every NodeIssue raised during a transform or
// compile pass, keyed by the ObjectID they were raised against. A phase
// collects every issue before returning rather than failing on the first.
type NodeIssuesError struct {
	Issues map[ids.ObjectID][]NodeIssue
}

func newNodeIssuesError() *NodeIssuesError {
	return &NodeIssuesError{Issues: make(map[ids.ObjectID][]NodeIssue)}
}

func (e *NodeIssuesError) add(id ids.ObjectID, issue NodeIssue) {
	e.Issues[id] = append(e.Issues[id], issue)
}

func (e *NodeIssuesError) empty() bool { return len(e.Issues) == 0 }

func (e *NodeIssuesError) Error() string {
	count := 0
	for _, v := range e.Issues {
		count += len(v)
	}
	return fmt.Sprintf("frame: %d issue(s) across %d object(s)", count, len(e.Issues))
}
