package solver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockflow/sdsim/pkg/compiler"
	"github.com/stockflow/sdsim/pkg/variant"
)

func TestEvalDelay_EmitsInitialValueWithinWindow(t *testing.T) {
	state := State{variant.Double(7)} // parameter slot
	state = append(state, variant.Value{Type: variant.TypeDoubleArray})
	cd := compiler.CompiledDelay{QueueStateIndex: 1, Duration: 3, InitialValue: variant.Double(42), HasInitialValue: true, ParameterStateIndex: 0}

	v, err := evalDelay(state, 0, 1, cd)
	require.NoError(t, err)
	assert.Equal(t, 42.0, v.Double)

	v, err = evalDelay(state, 1, 1, cd)
	require.NoError(t, err)
	assert.Equal(t, 42.0, v.Double)
}

func TestEvalDelay_DequeuesAfterWindow(t *testing.T) {
	state := State{variant.Double(0)}
	state = append(state, variant.Value{Type: variant.TypeDoubleArray})
	cd := compiler.CompiledDelay{QueueStateIndex: 1, Duration: 2, InitialValue: variant.Double(0), HasInitialValue: true, ParameterStateIndex: 0}

	// Feed a distinct reading each step; once time >= duration the delay
	// should start emitting the oldest enqueued reading (FIFO).
	readings := []float64{10, 20, 30, 40}
	var emitted []float64
	for i, r := range readings {
		state[0] = variant.Double(r)
		v, err := evalDelay(state, float64(i), 1, cd)
		require.NoError(t, err)
		emitted = append(emitted, v.Double)
	}

	assert.Equal(t, []float64{0, 0, 10, 20}, emitted)
}

func TestEvalDelay_QueueBounded(t *testing.T) {
	state := State{variant.Double(0)}
	state = append(state, variant.Value{Type: variant.TypeDoubleArray})
	cd := compiler.CompiledDelay{QueueStateIndex: 1, Duration: 2, InitialValue: variant.Double(0), HasInitialValue: true, ParameterStateIndex: 0}

	for i := 0; i < 20; i++ {
		state[0] = variant.Double(float64(i))
		_, err := evalDelay(state, float64(i), 1, cd)
		require.NoError(t, err)
	}

	assert.LessOrEqual(t, len(state.Get(1).Floats), 3) // ceil(2/1)+1
}
