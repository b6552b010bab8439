package model

// Well-known attribute names. The design graph's attribute map is
// free-form (string -> Variant); these constants fix the keys the core
// itself reads and writes, so every package spells them the same way.
const (
	AttrFormula        = "formula"
	AttrInterpolation  = "interpolation"
	AttrPoints         = "points"
	AttrAllowsNegative = "allows_negative"
	AttrDelayedInflow  = "delayed_inflow"
	AttrPriority       = "priority"
	AttrDuration       = "duration"
	AttrInitialValue   = "initial_value"
	AttrInitialTime    = "initial_time"
	AttrTimeDelta      = "time_delta"
	AttrSteps          = "steps"
)

// TypeSimulationDefaults names the unstructured object carrying
// run-configuration overrides (§4.4 step 9).
const TypeSimulationDefaults ObjectType = "SimulationDefaults"

const (
	// InterpolationStep is the only implemented graphical-function
	// interpolation method; any other declared value is treated as step
	// with a warning (§12 Open Question decision).
	InterpolationStep = "step"
)
