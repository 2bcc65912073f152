package physics

import (
	"fmt"

	"github.com/kidcosmo/sovereign-controller/internal/command"
	"github.com/kidcosmo/sovereign-controller/internal/telemetry"
)

// #region adapter

// Adapter sequences the oracle call and maps its output into a Result. The
// allowlist check runs locally first: even if the oracle is bypassed or
// compromised, an off-list mode never validates.
type Adapter struct {
	oracle  Oracle
	profile command.Profile
}

// NewAdapter creates a validation adapter for the profile's domain.
func NewAdapter(oracle Oracle, profile command.Profile) *Adapter {
	return &Adapter{oracle: oracle, profile: profile}
}

// Validate checks a proposed command against the allowlist and the oracle.
func (a *Adapter) Validate(cmd command.Command, snap telemetry.Snapshot) Result {
	if !a.profile.Allowed(cmd.Mode) {
		return Result{
			Status:   StatusRejected,
			Reason:   fmt.Sprintf("mode %s not on %s allowlist", cmd.Mode, a.profile.Domain),
			Original: cmd,
		}
	}

	out := a.oracle.Check(cmd, snap)
	switch out.Disposition {
	case DispositionOK:
		return Result{Status: StatusAccepted, Original: cmd, Adjusted: cmd}
	case DispositionAdjusted:
		// The adjusted command re-passes the allowlist; an oracle may tighten
		// parameters, never widen mode legality.
		if !a.profile.Allowed(out.Adjusted.Mode) {
			return Result{
				Status:   StatusRejected,
				Reason:   fmt.Sprintf("oracle adjustment produced off-list mode %s", out.Adjusted.Mode),
				Original: cmd,
			}
		}
		return Result{Status: StatusClamped, Reason: out.Reason, Original: cmd, Adjusted: out.Adjusted}
	default:
		return Result{Status: StatusRejected, Reason: out.Reason, Original: cmd}
	}
}

// #endregion adapter
