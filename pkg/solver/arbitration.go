package solver

import (
	"github.com/stockflow/sdsim/pkg/compiler"
	"github.com/stockflow/sdsim/pkg/variant"
)

// stockDelta computes a single stock's instantaneous delta against a
// mid-step working state, enforcing non-negativity by priority
// arbitration when the stock disallows negative values (§4.5 "Stock
// delta with non-negativity arbitration").
//
// When arbitrating, the clamped outflow rate is written back into
// working so any downstream consumer reading that flow's state slot
// within the same mid-step state sees the actual, clamped rate rather
// than the requested one.
func stockDelta(working State, stock compiler.CompiledStock) float64 {
	totalInflow := 0.0
	for _, idx := range stock.Inflows {
		totalInflow += max0(working.Get(idx).Double)
	}

	if stock.AllowsNegative {
		totalOutflow := 0.0
		for _, idx := range stock.Outflows {
			totalOutflow += working.Get(idx).Double
		}
		return totalInflow - totalOutflow
	}

	available := working.Get(stock.VariableIndex).Double + totalInflow
	totalOutflow := 0.0
	for _, idx := range stock.Outflows {
		requested := max0(working.Get(idx).Double)
		actual := requested
		if actual > available {
			actual = available
		}
		available -= actual
		working[idx] = variant.Double(actual)
		totalOutflow += actual
	}
	// Post-condition (§4.5 step 3): total_outflow <= state[S] + total_inflow.
	// available never goes negative above, so this always holds; no panic
	// is raised, since the arithmetic above guarantees it by construction.
	return totalInflow - totalOutflow
}

func max0(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

// stockDifference computes the per-stock Δ-vector at (time, dt) against
// a copy of state, writing each stock's provisional new value back into
// the working copy as it goes so later stocks (in stock-dependency
// order) observe already-updated upstream stocks (§4.5
// stock_difference).
func (s *Solver) stockDifference(state State, time, dt float64) []float64 {
	working := append(State(nil), state...)
	s.updateBuiltins(working, time, dt)

	deltas := make([]float64, len(s.Model.Stocks))
	for i, stock := range s.Model.Stocks {
		d := stockDelta(working, stock) * dt
		deltas[i] = d
		working[stock.VariableIndex] = variant.Double(working.Get(stock.VariableIndex).Double + d)
	}
	return deltas
}

// accumulateStocks adds each Δ component to its stock's state variable.
func (s *Solver) accumulateStocks(state State, delta []float64) {
	for i, stock := range s.Model.Stocks {
		state[stock.VariableIndex] = variant.Double(state.Get(stock.VariableIndex).Double + delta[i])
	}
}
