package physics

import (
	"fmt"
	"math"

	"github.com/kidcosmo/sovereign-controller/internal/command"
	"github.com/kidcosmo/sovereign-controller/internal/telemetry"
)

// #region constants

const (
	gravity       = 9.81
	rhoWater      = 1025.0  // kg/m^3
	atmosphericPa = 101325.0
)

// #endregion constants

// #region formulas

// HydrostaticPressure returns absolute pressure at depth: P = P_atm + rho*g*h.
func HydrostaticPressure(depth float64) float64 {
	return atmosphericPa + rhoWater*gravity*depth
}

// Buoyancy returns the buoyant force for a displaced volume: rho * g * V.
func Buoyancy(volume float64) float64 {
	return rhoWater * gravity * volume
}

// DragForce returns the drag magnitude for speed through water:
// 0.5 * rho * v^2 * Cd * A.
func DragForce(speed, area, cd float64) float64 {
	return 0.5 * rhoWater * speed * speed * cd * area
}

// #endregion formulas

// #region marine-oracle

// MarineConfig bounds the underwater operating envelope.
type MarineConfig struct {
	MaxDepthMeters float64 // hull depth rating
	MaxPressurePa  float64 // sensor/hull pressure ceiling
}

// DefaultMarineConfig returns a 100m-class AUV envelope.
func DefaultMarineConfig() MarineConfig {
	return MarineConfig{
		MaxDepthMeters: 100,
		MaxPressurePa:  HydrostaticPressure(100),
	}
}

// MarineOracle validates underwater commands against hydrostatic limits.
type MarineOracle struct {
	config MarineConfig
}

// NewMarineOracle creates the underwater physics oracle.
func NewMarineOracle(config MarineConfig) *MarineOracle {
	return &MarineOracle{config: config}
}

// DepthCeiling is the deepest commandable depth: the hull rating or the
// pressure ceiling, whichever is shallower.
func (o *MarineOracle) DepthCeiling() float64 {
	pressureDepth := (o.config.MaxPressurePa - atmosphericPa) / (rhoWater * gravity)
	return math.Min(o.config.MaxDepthMeters, pressureDepth)
}

// Check clamps depth targets to the ceiling and channel overrides to the RC
// pulse range. Surfacing is always feasible.
func (o *MarineOracle) Check(cmd command.Command, snap telemetry.Snapshot) Outcome {
	ceiling := o.DepthCeiling()

	if cmd.TargetDepth != nil && *cmd.TargetDepth > ceiling {
		adj := cmd
		d := ceiling
		adj.TargetDepth = &d
		return Outcome{
			Disposition: DispositionAdjusted,
			Adjusted:    adj,
			Reason:      fmt.Sprintf("target depth %.1fm exceeds ceiling %.1fm", *cmd.TargetDepth, ceiling),
		}
	}

	// Holding below the ceiling is not a legal steady state even when the
	// mode itself is: pin the hold target back to the ceiling.
	if cmd.Mode == command.ModeDepthHold && cmd.TargetDepth == nil && snap.Depth() > ceiling {
		adj := cmd
		d := ceiling
		adj.TargetDepth = &d
		return Outcome{
			Disposition: DispositionAdjusted,
			Adjusted:    adj,
			Reason:      fmt.Sprintf("current depth %.1fm exceeds pressure ceiling, hold target pinned to %.1fm", snap.Depth(), ceiling),
		}
	}

	if cmd.Override != nil {
		if adj, clamped := clampOverride(cmd); clamped {
			return Outcome{Disposition: DispositionAdjusted, Adjusted: adj, Reason: "rc override pulses clamped to legal range"}
		}
	}

	return Outcome{Disposition: DispositionOK}
}

// #endregion marine-oracle

// #region override-clamp

// clampOverride bounds every override channel to [RCPulseMin, RCPulseMax].
func clampOverride(cmd command.Command) (command.Command, bool) {
	ov := *cmd.Override
	clamped := false
	for _, ch := range []*int{&ov.Roll, &ov.Pitch, &ov.Throttle, &ov.Yaw} {
		if *ch < command.RCPulseMin {
			*ch = command.RCPulseMin
			clamped = true
		} else if *ch > command.RCPulseMax {
			*ch = command.RCPulseMax
			clamped = true
		}
	}
	if !clamped {
		return cmd, false
	}
	adj := cmd
	adj.Override = &ov
	return adj, true
}

// #endregion override-clamp
