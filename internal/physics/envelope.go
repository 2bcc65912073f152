package physics

import (
	"fmt"

	"github.com/kidcosmo/sovereign-controller/internal/command"
	"github.com/kidcosmo/sovereign-controller/internal/telemetry"
)

// #region envelope-oracle

// EnvelopeConfig bounds the aerial operating envelope.
type EnvelopeConfig struct {
	MinAltMeters float64 // below this, position-hold modes give way to LAND
}

// DefaultEnvelopeConfig returns the stock copter envelope.
func DefaultEnvelopeConfig() EnvelopeConfig {
	return EnvelopeConfig{MinAltMeters: 2}
}

// EnvelopeOracle validates aerial commands against flight-envelope limits.
// GPS-dependent modes are adjusted, not rejected, when the fix is gone;
// a feasible conservative mode always exists.
type EnvelopeOracle struct {
	config EnvelopeConfig
}

// NewEnvelopeOracle creates the aerial physics oracle.
func NewEnvelopeOracle(config EnvelopeConfig) *EnvelopeOracle {
	return &EnvelopeOracle{config: config}
}

// Check applies the GPS degradation rule and clamps channel overrides.
func (o *EnvelopeOracle) Check(cmd command.Command, snap telemetry.Snapshot) Outcome {
	// LOITER and RTL hold position off the GPS solution; without a 3D fix
	// they drift. Degrade to ALT_HOLD.
	if (cmd.Mode == command.ModeLoiter || cmd.Mode == command.ModeRTL) && snap.GPSFix < telemetry.Fix3D {
		adj := cmd
		adj.Mode = command.ModeAltHold
		return Outcome{
			Disposition: DispositionAdjusted,
			Adjusted:    adj,
			Reason:      fmt.Sprintf("%s requires 3D fix (have %d), degraded to ALT_HOLD", cmd.Mode, snap.GPSFix),
		}
	}

	// Too low for a hold: holding attitude into the ground is worse than a
	// controlled landing.
	if cmd.Mode == command.ModeAltHold && snap.Alt > 0 && snap.Alt < o.config.MinAltMeters {
		adj := cmd
		adj.Mode = command.ModeLand
		return Outcome{
			Disposition: DispositionAdjusted,
			Adjusted:    adj,
			Reason:      fmt.Sprintf("altitude %.1fm below hold floor %.1fm, landing", snap.Alt, o.config.MinAltMeters),
		}
	}

	if cmd.Override != nil {
		if adj, clamped := clampOverride(cmd); clamped {
			return Outcome{Disposition: DispositionAdjusted, Adjusted: adj, Reason: "rc override pulses clamped to legal range"}
		}
	}

	return Outcome{Disposition: DispositionOK}
}

// #endregion envelope-oracle

// #region oracle-for

// OracleFor returns the stock oracle for a domain profile.
func OracleFor(profile command.Profile) Oracle {
	if profile.Domain == command.DomainUnderwater {
		return NewMarineOracle(DefaultMarineConfig())
	}
	return NewEnvelopeOracle(DefaultEnvelopeConfig())
}

// #endregion oracle-for
