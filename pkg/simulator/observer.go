package simulator

import "github.com/rs/zerolog/log"

// Observer receives side-effect-only notifications about a Simulator's
// lifecycle (§4.6) — a control-binding writer is the typical consumer,
// pushing control values back out to a host UI after each step. An
// Observer must never mutate the SimulationState it is handed.
type Observer interface {
	OnInitialize(state State)
	OnStep(step int, state State)
	OnRun(steps int, final State)
}

// safeNotify guards against a misbehaving Observer panicking mid-run, the
// same defensive boundary the workflow engine's notifier dispatch uses.
func safeNotify(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("simulator: observer panicked")
		}
	}()
	fn()
}
