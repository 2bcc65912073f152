package reasoning

import (
	"context"
	"errors"
	"fmt"

	"github.com/kidcosmo/sovereign-controller/internal/command"
	"github.com/kidcosmo/sovereign-controller/internal/condition"
	"github.com/kidcosmo/sovereign-controller/internal/telemetry"
)

// #region engine

// Engine is the black-box reasoning function. Implementations give no latency
// guarantee; the invoker imposes its own deadline and schema validation on
// top. Infer must honor ctx cancellation.
type Engine interface {
	Infer(ctx context.Context, system, prompt string) (string, error)
}

// #endregion engine

// #region request

// Request packages the context handed to the reasoning function for one pass.
type Request struct {
	MissionID   string
	Environment string
	DarkWindow  bool
	Conditions  []condition.Kind
	Snapshot    telemetry.Snapshot
}

// #endregion request

// #region response

// Response is the validated interpretation of the engine's output. Command is
// always a member of the domain allowlist; anything else never leaves the
// invoker.
type Response struct {
	Inputs          []string
	Interpretation  string
	CommandText     string // raw actuator_command string as proposed
	Command         command.Command
	ExpectedOutcome string
	RiskLevel       string
	CognitiveLoad   float64
	SelfReflection  string
	Fallback        bool // true when this is the deterministic fail-safe response
}

// #endregion response

// #region errors

// ErrUnavailable marks any reasoning outcome that cannot be trusted: timeout,
// provider error, or a response violating the schema or the allowlist. The
// pipeline substitutes the fail-safe command; raw output is never propagated.
var ErrUnavailable = errors.New("reasoning unavailable")

// Cause distinguishes why reasoning was unavailable.
type Cause string

const (
	CauseTimeout  Cause = "timeout"
	CauseProvider Cause = "provider_error"
	CauseSchema   Cause = "schema_violation"
)

// UnavailableError carries the unavailability cause for the manifest record.
type UnavailableError struct {
	Cause  Cause
	Detail string
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("reasoning unavailable (%s): %s", e.Cause, e.Detail)
}

func (e *UnavailableError) Unwrap() error {
	return ErrUnavailable
}

// #endregion errors

// #region wire

// wireReasoning is the untrusted JSON schema the engine is asked to produce.
type wireReasoning struct {
	SensorySynthesis struct {
		Inputs         []string `json:"inputs"`
		Interpretation string   `json:"interpretation"`
	} `json:"sensory_synthesis"`
	CognitiveLoad        float64 `json:"cognitive_load"`
	InternalDeliberation []struct {
		Thought        string  `json:"thought"`
		Confidence     float64 `json:"confidence"`
		ActionRejected string  `json:"action_rejected"`
	} `json:"internal_deliberation"`
	MissionAssuranceCheck struct {
		RiskLevel             string `json:"risk_level"`
		FailureModePrediction string `json:"failure_mode_prediction"`
		MitigationStrategy    string `json:"mitigation_strategy"`
	} `json:"mission_assurance_check"`
	Decision struct {
		ActuatorCommand string `json:"actuator_command"`
		ExpectedOutcome string `json:"expected_outcome"`
	} `json:"decision"`
	SelfReflection string `json:"self_reflection"`
}

// #endregion wire
