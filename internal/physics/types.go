package physics

import (
	"errors"

	"github.com/kidcosmo/sovereign-controller/internal/command"
	"github.com/kidcosmo/sovereign-controller/internal/telemetry"
)

// #region status

// Status is the validation disposition for a proposed command.
type Status string

const (
	StatusAccepted Status = "ACCEPTED"
	StatusClamped  Status = "CLAMPED"
	StatusRejected Status = "REJECTED"
)

// #endregion status

// #region result

// Result is the adapter's verdict. A CLAMPED result carries the adjusted
// command that must be dispatched in place of the original; a REJECTED
// command must never reach dispatch.
type Result struct {
	Status   Status
	Reason   string
	Original command.Command
	Adjusted command.Command // equals Original when ACCEPTED
}

// Final returns the command that may actually be dispatched. Never call for
// REJECTED results.
func (r Result) Final() command.Command {
	return r.Adjusted
}

// #endregion result

// #region errors

// ErrRejected marks commands that failed oracle or allowlist validation.
var ErrRejected = errors.New("validation rejected")

// #endregion errors

// #region oracle

// Disposition is the oracle's raw answer.
type Disposition string

const (
	DispositionOK       Disposition = "ok"
	DispositionAdjusted Disposition = "adjusted"
	DispositionRejected Disposition = "rejected"
)

// Outcome is the oracle's output: ok as-is, adjusted parameters, or rejected.
type Outcome struct {
	Disposition Disposition
	Adjusted    command.Command // meaningful when Disposition == adjusted
	Reason      string
}

// Oracle checks a proposed command against the domain's dynamic limits.
// Implementations are pure with respect to the inputs.
type Oracle interface {
	Check(cmd command.Command, snap telemetry.Snapshot) Outcome
}

// #endregion oracle
