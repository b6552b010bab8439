package compiler

import (
	"github.com/stockflow/sdsim/pkg/frame"
	"github.com/stockflow/sdsim/pkg/ids"
)

// issueSet accumulates per-object diagnostics across every compiler
// phase without stopping at the first one (§4.4, §7): each phase adds
// what it finds and the caller decides whether to continue once a phase
// completes.
type issueSet struct {
	byID map[ids.ObjectID][]frame.NodeIssue
}

func newIssues() *issueSet {
	return &issueSet{byID: make(map[ids.ObjectID][]frame.NodeIssue)}
}

func (s *issueSet) add(id ids.ObjectID, issue frame.NodeIssue) {
	s.byID[id] = append(s.byID[id], issue)
}

func (s *issueSet) forNode(id ids.ObjectID) []frame.NodeIssue {
	return s.byID[id]
}

func (s *issueSet) empty() bool { return len(s.byID) == 0 }

func (s *issueSet) err() *frame.NodeIssuesError {
	out := &frame.NodeIssuesError{Issues: make(map[ids.ObjectID][]frame.NodeIssue, len(s.byID))}
	for id, list := range s.byID {
		out.Issues[id] = list
	}
	return out
}
