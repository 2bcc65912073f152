package condition

import (
	"math"
	"time"

	"github.com/kidcosmo/sovereign-controller/internal/telemetry"
)

// #region trigger-config

// TriggerConfig holds the numeric thresholds behind the trigger predicates.
type TriggerConfig struct {
	HeartbeatTimeout  time.Duration // link heartbeat age treated as comms/acoustic loss
	MinFixQuality     int           // GPS fix below this is GPS loss (3 = 3D lock)
	AttitudeRateLimit float64       // rad per inter-snapshot step before divergence
	DepthSpikeMeters  float64       // depth change per step before a spike
	BatteryFloorPct   float64       // battery percent below this is critical
}

// DefaultTriggerConfig returns the stock thresholds.
func DefaultTriggerConfig() TriggerConfig {
	return TriggerConfig{
		HeartbeatTimeout:  3 * time.Second,
		MinFixQuality:     telemetry.Fix3D,
		AttitudeRateLimit: 0.8,
		DepthSpikeMeters:  5,
		BatteryFloorPct:   15,
	}
}

// #endregion trigger-config

// #region rule-sets

// AerialRules returns the trigger set for the aerial domain.
func AerialRules(cfg TriggerConfig) []Rule {
	return []Rule{
		{Kind: GPSLoss, Severity: SeverityCaution, Predicate: gpsLoss(cfg)},
		{Kind: CommsLoss, Severity: SeverityCritical, Predicate: linkLoss(cfg)},
		{Kind: SensorDivergence, Severity: SeverityCaution, Predicate: attitudeDivergence(cfg)},
		{Kind: BatteryCritical, Severity: SeverityCritical, Predicate: batteryCritical(cfg)},
	}
}

// UnderwaterRules returns the trigger set for the underwater domain. The
// heartbeat here is the acoustic link, so its loss is reported as
// ACOUSTIC_LOSS rather than COMMS_LOSS.
func UnderwaterRules(cfg TriggerConfig) []Rule {
	return []Rule{
		{Kind: AcousticLoss, Severity: SeverityCritical, Predicate: linkLoss(cfg)},
		{Kind: DepthSpike, Severity: SeverityCritical, Predicate: depthSpike(cfg)},
		{Kind: SensorDivergence, Severity: SeverityCaution, Predicate: attitudeDivergence(cfg)},
		{Kind: BatteryCritical, Severity: SeverityCritical, Predicate: batteryCritical(cfg)},
	}
}

// #endregion rule-sets

// #region predicates

func gpsLoss(cfg TriggerConfig) func(*telemetry.History) bool {
	return func(h *telemetry.History) bool {
		cur, ok := h.Latest()
		if !ok {
			return false
		}
		return cur.GPSFix < cfg.MinFixQuality
	}
}

func linkLoss(cfg TriggerConfig) func(*telemetry.History) bool {
	return func(h *telemetry.History) bool {
		cur, ok := h.Latest()
		if !ok {
			return false
		}
		return cur.HeartbeatAge > cfg.HeartbeatTimeout
	}
}

// attitudeDivergence fires when orientation jumps between consecutive
// snapshots faster than the vehicle can physically rotate.
func attitudeDivergence(cfg TriggerConfig) func(*telemetry.History) bool {
	return func(h *telemetry.History) bool {
		cur, ok := h.Latest()
		if !ok {
			return false
		}
		prev, ok := h.At(1)
		if !ok {
			return false
		}
		dp := math.Abs(cur.Attitude.Pitch - prev.Attitude.Pitch)
		dr := math.Abs(cur.Attitude.Roll - prev.Attitude.Roll)
		return dp > cfg.AttitudeRateLimit || dr > cfg.AttitudeRateLimit
	}
}

func depthSpike(cfg TriggerConfig) func(*telemetry.History) bool {
	return func(h *telemetry.History) bool {
		cur, ok := h.Latest()
		if !ok {
			return false
		}
		prev, ok := h.At(1)
		if !ok {
			return false
		}
		return math.Abs(cur.Depth()-prev.Depth()) > cfg.DepthSpikeMeters
	}
}

func batteryCritical(cfg TriggerConfig) func(*telemetry.History) bool {
	return func(h *telemetry.History) bool {
		cur, ok := h.Latest()
		if !ok || !cur.BatteryKnown {
			return false
		}
		return cur.BatteryPct < cfg.BatteryFloorPct
	}
}

// #endregion predicates
