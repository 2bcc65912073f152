package condition

import (
	"time"

	"github.com/kidcosmo/sovereign-controller/internal/telemetry"
)

// #region kinds

// Kind names one denied-environment trigger condition.
type Kind string

const (
	GPSLoss          Kind = "GPS_LOSS"
	CommsLoss        Kind = "COMMS_LOSS"
	SensorDivergence Kind = "SENSOR_DIVERGENCE"
	AcousticLoss     Kind = "ACOUSTIC_LOSS"
	DepthSpike       Kind = "DEPTH_SPIKE"
	BatteryCritical  Kind = "BATTERY_CRITICAL"
)

// #endregion

// #region severity

// Severity ranks how urgently a trigger demands autonomous action.
type Severity int

const (
	SeverityAdvisory Severity = iota
	SeverityCaution
	SeverityCritical
)

// #endregion

// #region rule

// Rule pairs a trigger kind with its detection predicate. Predicates are pure
// functions of the snapshot history; no side effects, no wall clock.
type Rule struct {
	Kind      Kind
	Severity  Severity
	Predicate func(h *telemetry.History) bool
}

// #endregion

// #region window-state

// WindowState is the classifier's persistent state across ticks.
type WindowState string

const (
	StateNormal     WindowState = "NORMAL"
	StateEntering   WindowState = "ENTERING"
	StateActive     WindowState = "ACTIVE"
	StateRecovering WindowState = "RECOVERING"
)

// Dark reports whether the state is inside a dark window pass, i.e. the
// pipeline must produce a reasoned decision and a manifest this tick.
func (s WindowState) Dark() bool {
	return s == StateEntering || s == StateActive || s == StateRecovering
}

// #endregion

// #region result

// Active is one currently-holding trigger.
type Active struct {
	Kind     Kind
	Severity Severity
}

// Result is the classifier output for one tick: the full set of holding
// triggers (not just the most severe) plus the window state after transition.
type Result struct {
	Active []Active
	State  WindowState
}

// Kinds returns the active trigger kinds in rule order.
func (r Result) Kinds() []Kind {
	out := make([]Kind, len(r.Active))
	for i, a := range r.Active {
		out[i] = a.Kind
	}
	return out
}

// #endregion

// #region bitmask

// bitFor maps trigger kinds to stable bit positions for the acoustic profile.
var bitFor = map[Kind]uint16{
	GPSLoss:          1 << 0,
	CommsLoss:        1 << 1,
	SensorDivergence: 1 << 2,
	AcousticLoss:     1 << 3,
	DepthSpike:       1 << 4,
	BatteryCritical:  1 << 5,
}

// Bitmask packs a set of trigger kinds into a 16-bit mask.
func Bitmask(kinds []Kind) uint16 {
	var m uint16
	for _, k := range kinds {
		m |= bitFor[k]
	}
	return m
}

// #endregion

// #region config

// ClassifierConfig holds the debounce windows. Both are explicit, documented
// parameters rather than baked-in defaults.
type ClassifierConfig struct {
	DebounceIn  time.Duration // continuous hold required for ENTERING -> ACTIVE
	DebounceOut time.Duration // continuous clear required for RECOVERING -> NORMAL
}

// DefaultClassifierConfig mirrors the bridge's 3s heartbeat timeout on entry
// and biases recovery longer.
func DefaultClassifierConfig() ClassifierConfig {
	return ClassifierConfig{
		DebounceIn:  3 * time.Second,
		DebounceOut: 5 * time.Second,
	}
}

// #endregion
