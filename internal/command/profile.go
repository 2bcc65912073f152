package command

import "github.com/kidcosmo/sovereign-controller/internal/telemetry"

// #region domain

// Domain selects the vehicle class a session controls.
type Domain string

const (
	DomainAerial     Domain = "aerial"
	DomainUnderwater Domain = "underwater"
)

// #endregion

// #region profile

// Profile fixes the per-domain safety envelope: the enumerated safe-mode
// allowlist, the designated fail-safe mode, and manifest naming.
type Profile struct {
	Domain        Domain
	Environment   string // environment tag recorded in manifests
	MissionPrefix string // mission_id prefix
	Allowlist     []Mode
	FailSafeMode  Mode
}

// AerialProfile is the ArduPilot copter envelope.
func AerialProfile() Profile {
	return Profile{
		Domain:        DomainAerial,
		Environment:   "ARDUPILOT_SITL",
		MissionPrefix: "cosmo",
		Allowlist:     []Mode{ModeAltHold, ModeLoiter, ModeLand, ModeStabilize, ModeRTL},
		FailSafeMode:  ModeLoiter,
	}
}

// UnderwaterProfile is the ArduSub envelope.
func UnderwaterProfile() Profile {
	return Profile{
		Domain:        DomainUnderwater,
		Environment:   "DEEPBLUE",
		MissionPrefix: "sub",
		Allowlist:     []Mode{ModeDepthHold, ModeStabilize, ModeSurface, ModeManualHold},
		FailSafeMode:  ModeDepthHold,
	}
}

// ProfileFor returns the profile for a domain, defaulting to aerial.
func ProfileFor(domain Domain) Profile {
	if domain == DomainUnderwater {
		return UnderwaterProfile()
	}
	return AerialProfile()
}

// Allowed reports whether mode is on the profile's safe-mode allowlist.
func (p Profile) Allowed(mode Mode) bool {
	for _, m := range p.Allowlist {
		if m == mode {
			return true
		}
	}
	return false
}

// #endregion profile

// #region fail-safe

// FailSafe returns the deterministic fail-safe command for the current
// snapshot. Aerial LOITER needs a 3D fix to hold position, so it degrades to
// ALT_HOLD when the fix is gone.
func (p Profile) FailSafe(snap telemetry.Snapshot) Command {
	mode := p.FailSafeMode
	if p.Domain == DomainAerial && mode == ModeLoiter && snap.GPSFix < telemetry.Fix3D {
		mode = ModeAltHold
	}
	return Command{Mode: mode}
}

// #endregion fail-safe
