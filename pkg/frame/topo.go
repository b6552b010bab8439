package frame

import (
	"fmt"

	"github.com/stockflow/sdsim/pkg/ids"
)

// vertexColor is the three-state DFS marker: White (unvisited), Gray
// (on the current recursion stack), Black (fully explored).
type vertexColor int

const (
	white vertexColor = iota
	gray
	black
)

// GraphCycle reports a cycle found during topological sort: the full set
// of vertices on the cycle, in the order the DFS stack held them, so
// callers can attribute a ComputationCycle or FlowCycle to every member
// rather than just the one vertex that closed the loop.
type GraphCycle struct {
	Nodes []ids.ObjectID
}

func (e *GraphCycle) Error() string {
	return fmt.Sprintf("frame: cycle detected involving %d node(s)", len(e.Nodes))
}

// TopologicalSort orders vertices such that for every edge u->v recorded
// in adjacency, u precedes v in the result. vertices fixes both the
// universe of nodes to visit and a deterministic starting order so the
// result is stable across runs given the same input order (TP7). Exported
// for the compiler's stock-dependency sort, which needs to retry with
// edges removed after a delayed-inflow cycle exception (§4.4 step 6).
func TopologicalSort(vertices []ids.ObjectID, adjacency map[ids.ObjectID][]ids.ObjectID) ([]ids.ObjectID, error) {
	return topologicalSort(vertices, adjacency)
}

func topologicalSort(vertices []ids.ObjectID, adjacency map[ids.ObjectID][]ids.ObjectID) ([]ids.ObjectID, error) {
	color := make(map[ids.ObjectID]vertexColor, len(vertices))
	order := make([]ids.ObjectID, 0, len(vertices))
	var stack []ids.ObjectID

	var visit func(u ids.ObjectID) error
	visit = func(u ids.ObjectID) error {
		if color[u] == black {
			return nil
		}
		if color[u] == gray {
			// u is already on the stack: the cycle is the stack suffix
			// from u's position to the top, closed by u again.
			start := 0
			for i, v := range stack {
				if v == u {
					start = i
					break
				}
			}
			cycle := append([]ids.ObjectID(nil), stack[start:]...)
			return &GraphCycle{Nodes: cycle}
		}
		color[u] = gray
		stack = append(stack, u)
		for _, v := range adjacency[u] {
			if err := visit(v); err != nil {
				return err
			}
		}
		stack = stack[:len(stack)-1]
		color[u] = black
		order = append(order, u)
		return nil
	}

	for _, v := range vertices {
		if color[v] == white {
			if err := visit(v); err != nil {
				return nil, err
			}
		}
	}

	// order was built post-order (dependencies after dependents' recursion
	// returns); reverse it so u precedes v for every edge u->v.
	for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
		order[i], order[j] = order[j], order[i]
	}
	return order, nil
}
