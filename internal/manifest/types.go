package manifest

import "time"

// #region schema

// SchemaVersion versions the manifest JSON shape for additive evolution.
const SchemaVersion = 1

// Epistemic status values recorded per manifest.
const (
	EpistemicBlackout = "503_BLACKOUT"
	EpistemicNominal  = "NOMINAL_LINK"
)

// #endregion schema

// #region reasoning-block

// SensorySynthesis is the reasoning function's reading of the sensors.
type SensorySynthesis struct {
	Inputs         []string `json:"inputs"`
	Interpretation string   `json:"interpretation"`
}

// Decision is the chosen actuator command and its expected outcome.
type Decision struct {
	ActuatorCommand string `json:"actuator_command"`
	ExpectedOutcome string `json:"expected_outcome"`
}

// AgentReasoning groups the reasoning content of one decision.
type AgentReasoning struct {
	SensorySynthesis SensorySynthesis `json:"sensory_synthesis"`
	Decision         Decision         `json:"decision"`
	RiskLevel        string           `json:"risk_level,omitempty"`
	CognitiveLoad    float64          `json:"cognitive_load,omitempty"`
	SelfReflection   string           `json:"self_reflection,omitempty"`
	Fallback         bool             `json:"fallback,omitempty"`
}

// #endregion reasoning-block

// #region validation-block

// ValidationRecord is the physics validator's verdict as audited.
type ValidationRecord struct {
	Status   string `json:"status"`
	Reason   string `json:"reason,omitempty"`
	Original string `json:"original,omitempty"`
	Adjusted string `json:"adjusted,omitempty"`
}

// TrajectoryContext ties the decision back to the triggering telemetry.
type TrajectoryContext struct {
	AnomalyType         string         `json:"anomaly_type"`
	TimestepOfDecision  int64          `json:"timestep_of_decision"`
	TelemetryAtDecision map[string]any `json:"telemetry_at_decision"`
}

// #endregion validation-block

// #region manifest

// Manifest is the immutable audit record of one autonomous decision. Created
// exactly once per pipeline pass that reaches a decision, never mutated;
// ownership transfers to the store on emission.
type Manifest struct {
	SchemaVersion     int               `json:"schema_version"`
	MissionID         string            `json:"mission_id"`
	DecisionID        string            `json:"decision_id"`
	Environment       string            `json:"environment"`
	Timestamp         time.Time         `json:"timestamp"`
	IsDarkWindow      bool              `json:"is_dark_window"`
	WindowState       string            `json:"window_state"`
	EpistemicStatus   string            `json:"epistemic_status"`
	ActiveConditions  []string          `json:"active_conditions"`
	AgentReasoning    AgentReasoning    `json:"agent_reasoning"`
	ValidationResult  ValidationRecord  `json:"validation_result"`
	DispatchedCommand string            `json:"dispatched_command"`
	TrajectoryContext TrajectoryContext `json:"trajectory_context"`
	SHA256Proof       string            `json:"sha256_proof"`
}

// #endregion manifest
