package pilot

import (
	"context"
	"errors"

	"github.com/kidcosmo/sovereign-controller/internal/command"
	"github.com/kidcosmo/sovereign-controller/internal/condition"
	"github.com/kidcosmo/sovereign-controller/internal/manifest"
)

// #region interfaces

// CommandSink accepts validated actuator commands for the vehicle. The core
// dispatches at-least-once intent and does not retry; acknowledgement and
// retry are the sink's contract.
type CommandSink interface {
	Dispatch(ctx context.Context, cmd command.Command) error
}

// ManifestEmitter receives completed manifests. Implementations must not
// block the control loop.
type ManifestEmitter interface {
	Emit(m manifest.Manifest)
}

// #endregion interfaces

// #region errors

// ErrDispatch marks sink-side dispatch failures. Surfaced to the operator,
// not retried internally.
var ErrDispatch = errors.New("dispatch failure")

// #endregion errors

// #region tick-result

// TickResult reports what one pipeline pass did.
type TickResult struct {
	Skipped    bool // malformed telemetry, tick skipped
	State      condition.WindowState
	Conditions []condition.Kind
	Dispatched *command.Command // nil when no command was issued this pass
	FailSafe   bool             // the dispatched command was the fail-safe substitute
	Manifest   *manifest.Manifest
	DispatchErr error
}

// #endregion tick-result
