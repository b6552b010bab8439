package solver

import (
	"math"

	"github.com/stockflow/sdsim/pkg/compiler"
	"github.com/stockflow/sdsim/pkg/variant"
)

// evalDelay advances a Delay's FIFO queue by one step and returns the
// value the delay emits this step (§4.2 Delay, §4.5).
//
// The current parameter reading is enqueued every call. While time is
// still within the first duration window the delay emits its
// compile-time-guaranteed initial value (the compiler rejects a Delay
// with no initial_value, so cd.InitialValue is always present here);
// once the window has elapsed it dequeues and emits the oldest reading.
// The queue is trimmed to ceil(duration/dt)+1 entries, the longest
// history a duration/dt-step delay can ever need.
func evalDelay(state State, time, dt float64, cd compiler.CompiledDelay) (variant.Value, error) {
	queue := append([]float64(nil), state.Get(cd.QueueStateIndex).Floats...)

	param := state.Get(cd.ParameterStateIndex)
	paramVal, err := param.AsDouble()
	if err != nil {
		return variant.Value{}, err
	}
	queue = append(queue, paramVal)

	maxLen := int(math.Ceil(cd.Duration/nonZero(dt))) + 1
	if len(queue) > maxLen {
		queue = queue[len(queue)-maxLen:]
	}

	var result float64
	if time < cd.Duration {
		result, err = cd.InitialValue.AsDouble()
		if err != nil {
			return variant.Value{}, err
		}
	} else if len(queue) > 0 {
		result = queue[0]
		queue = queue[1:]
	}

	state[cd.QueueStateIndex] = variant.Value{Type: variant.TypeDoubleArray, Floats: queue}
	return variant.Double(result), nil
}

func nonZero(dt float64) float64 {
	if dt == 0 {
		return 1
	}
	return dt
}
