package compiler

import (
	"sort"

	"github.com/stockflow/sdsim/pkg/funcs"
	"github.com/stockflow/sdsim/pkg/variant"
)

// buildGraphicalFunction compiles a curve's points into a unary Function
// implementing nearest-point (step) interpolation (§4.5): for input x,
// return the y of the point whose x is closest, ties broken toward the
// smaller x; an empty curve evaluates to the origin.
func buildGraphicalFunction(name string, points []variant.Point) *funcs.Function {
	sorted := append([]variant.Point(nil), points...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].X < sorted[j].X })

	return &funcs.Function{
		Name: "__gf_" + name + "__",
		Signature: funcs.Signature{
			ArgTypes:   []variant.Type{variant.TypeDouble},
			ReturnType: variant.TypeDouble,
		},
		Impl: func(args []variant.Value) (variant.Value, error) {
			x, err := args[0].AsDouble()
			if err != nil {
				return variant.Value{}, err
			}
			if len(sorted) == 0 {
				return variant.Double(0), nil
			}
			best := sorted[0]
			bestDist := abs(x - best.X)
			for _, p := range sorted[1:] {
				dist := abs(x - p.X)
				if dist < bestDist || (dist == bestDist && p.X < best.X) {
					best, bestDist = p, dist
				}
			}
			return variant.Double(best.Y), nil
		},
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
